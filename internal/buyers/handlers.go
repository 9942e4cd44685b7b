// Package buyers is the buyer directory service: CRUD-only, outside the
// saga core, but a required synchronous collaborator of the orchestrator
// and the notifier.
package buyers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/orderflow/internal/domain/buyer"
	"github.com/example/orderflow/internal/httpx"
	"github.com/example/orderflow/internal/infrastructure/store"
)

type CreateRequest struct {
	Name        string `json:"name" validate:"required"`
	SSN         string `json:"ssn" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
}

type Handlers struct {
	store    store.BuyerStore
	validate *validatorv10.Validate
	logger   *zap.Logger
}

func NewHandlers(buyerStore store.BuyerStore, logger *zap.Logger) *Handlers {
	return &Handlers{store: buyerStore, validate: validatorv10.New(), logger: logger}
}

func NewRouter(h *Handlers) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/buyers", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			h.CreateBuyer(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/buyers/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.GetBuyer(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/health", httpx.Health)

	return httpx.WithLogging(mux, h.logger)
}

func (h *Handlers) CreateBuyer(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	b := &buyer.Buyer{
		ID:          uuid.New().String(),
		Name:        req.Name,
		SSN:         req.SSN,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		CreatedAt:   time.Now(),
	}
	if err := h.store.Insert(r.Context(), b); err != nil {
		h.logger.Error("create buyer", zap.Error(err))
		httpx.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.JSON(w, http.StatusCreated, map[string]string{"id": b.ID})
}

func (h *Handlers) GetBuyer(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/buyers/")
	b, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, buyer.ErrBuyerNotFound) {
			httpx.Error(w, http.StatusNotFound, "Buyer not found")
			return
		}
		h.logger.Error("get buyer", zap.String("buyer_id", id), zap.Error(err))
		httpx.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.JSON(w, http.StatusOK, b)
}
