// Package merchants is the merchant directory service. The saga reads one
// flag from it: allowsDiscount.
package merchants

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/orderflow/internal/domain/merchant"
	"github.com/example/orderflow/internal/httpx"
	"github.com/example/orderflow/internal/infrastructure/store"
)

type CreateRequest struct {
	Name           string `json:"name" validate:"required"`
	SSN            string `json:"ssn" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	PhoneNumber    string `json:"phoneNumber" validate:"required"`
	AllowsDiscount bool   `json:"allowsDiscount"`
}

type Handlers struct {
	store    store.MerchantStore
	validate *validatorv10.Validate
	logger   *zap.Logger
}

func NewHandlers(merchantStore store.MerchantStore, logger *zap.Logger) *Handlers {
	return &Handlers{store: merchantStore, validate: validatorv10.New(), logger: logger}
}

func NewRouter(h *Handlers) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/merchants", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			h.CreateMerchant(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/merchants/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.GetMerchant(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/health", httpx.Health)

	return httpx.WithLogging(mux, h.logger)
}

func (h *Handlers) CreateMerchant(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	m := &merchant.Merchant{
		ID:             uuid.New().String(),
		Name:           req.Name,
		SSN:            req.SSN,
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		AllowsDiscount: req.AllowsDiscount,
		CreatedAt:      time.Now(),
	}
	if err := h.store.Insert(r.Context(), m); err != nil {
		h.logger.Error("create merchant", zap.Error(err))
		httpx.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.JSON(w, http.StatusCreated, map[string]string{"id": m.ID})
}

func (h *Handlers) GetMerchant(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/merchants/")
	m, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, merchant.ErrMerchantNotFound) {
			httpx.Error(w, http.StatusNotFound, "Merchant not found")
			return
		}
		h.logger.Error("get merchant", zap.String("merchant_id", id), zap.Error(err))
		httpx.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.JSON(w, http.StatusOK, m)
}
