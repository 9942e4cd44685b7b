package inventory

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/example/orderflow/internal/domain/product"
	"github.com/example/orderflow/internal/httpx"
)

type Handlers struct {
	svc      *Service
	validate *validatorv10.Validate
	logger   *zap.Logger
}

func NewHandlers(svc *Service, logger *zap.Logger) *Handlers {
	return &Handlers{svc: svc, validate: validatorv10.New(), logger: logger}
}

func NewRouter(h *Handlers) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			h.CreateProduct(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/products/", func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/reserve") && r.Method == http.MethodPost:
			h.ReserveProduct(w, r)
		case r.Method == http.MethodGet:
			h.GetProduct(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/health", httpx.Health)

	return httpx.WithLogging(mux, h.logger)
}

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.svc.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create product", zap.Error(err))
		httpx.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.JSON(w, http.StatusCreated, map[string]string{"id": p.ID})
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/products/")
	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrProductNotFound) {
			httpx.Error(w, http.StatusNotFound, "Product does not exist")
			return
		}
		h.logger.Error("get product", zap.String("product_id", id), zap.Error(err))
		httpx.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.JSON(w, http.StatusOK, p)
}

// ReserveProduct answers the orchestrator's reservation call. The response
// is always a 200 with a success flag, so the caller can distinguish a
// rejected reservation from an unreachable service.
func (h *Handlers) ReserveProduct(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/products/"), "/reserve")

	err := h.svc.Reserve(r.Context(), id)
	switch {
	case err == nil:
		httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "message": "Product reserved"})
	case errors.Is(err, product.ErrProductNotFound):
		httpx.JSON(w, http.StatusOK, map[string]any{"success": false, "message": "Product does not exist"})
	case errors.Is(err, product.ErrSoldOut):
		httpx.JSON(w, http.StatusOK, map[string]any{"success": false, "message": "Product is sold out"})
	default:
		h.logger.Error("reserve product", zap.String("product_id", id), zap.Error(err))
		httpx.Error(w, http.StatusInternalServerError, "internal error")
	}
}
