package orders

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/example/orderflow/internal/domain/order"
	"github.com/example/orderflow/internal/httpx"
)

// Handlers exposes the orchestrator over HTTP.
type Handlers struct {
	svc      *Service
	validate *validatorv10.Validate
	logger   *zap.Logger
}

func NewHandlers(svc *Service, logger *zap.Logger) *Handlers {
	return &Handlers{
		svc:      svc,
		validate: validatorv10.New(),
		logger:   logger,
	}
}

func NewRouter(h *Handlers) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			h.CreateOrder(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/orders/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.GetOrder(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/health", httpx.Health)

	return httpx.WithLogging(mux, h.logger)
}

func (h *Handlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.svc.Create(r.Context(), req)
	if err != nil {
		if IsValidationError(err) {
			httpx.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("create order", zap.Error(err))
		httpx.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.JSON(w, http.StatusCreated, map[string]string{"id": o.ID})
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/orders/")
	view, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			httpx.Error(w, http.StatusNotFound, "Order does not exist")
			return
		}
		h.logger.Error("get order", zap.String("order_id", id), zap.Error(err))
		httpx.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.JSON(w, http.StatusOK, view)
}
