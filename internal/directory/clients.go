// Package directory holds the HTTP clients for the synchronous
// collaborators of the order orchestrator: the merchant and buyer
// directories and the inventory service.
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Status distinguishes genuine absence from a transport failure. Callers
// that conflate the two for client-facing rejection still log them apart.
type Status int

const (
	Found Status = iota
	NotFound
	Unavailable
)

// Client wraps an http.Client with a base URL and a bounded timeout.
type Client struct {
	base   string
	http   *http.Client
	logger *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		base:   baseURL,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// get fetches path and decodes the body into out on 200. A 404 maps to
// NotFound; any network error or non-2xx status maps to Unavailable and is
// logged with its cause so a partition never masquerades as absence in the
// logs.
func (c *Client) get(ctx context.Context, path string, out any) Status {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		c.logger.Warn("build request", zap.String("path", path), zap.Error(err))
		return Unavailable
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("collaborator unreachable",
			zap.String("url", c.base+path),
			zap.String("cause", "transport"),
			zap.Error(err))
		return Unavailable
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return NotFound
	case resp.StatusCode != http.StatusOK:
		c.logger.Warn("collaborator error status",
			zap.String("url", c.base+path),
			zap.Int("status", resp.StatusCode))
		return Unavailable
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.logger.Warn("decode collaborator response",
				zap.String("url", c.base+path), zap.Error(err))
			return Unavailable
		}
	}
	return Found
}

// MerchantRecord is the slice of the merchant payload the saga reads.
type MerchantRecord struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	AllowsDiscount bool   `json:"allowsDiscount"`
}

// BuyerRecord is the slice of the buyer payload the saga reads.
type BuyerRecord struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ProductRecord is the slice of the product payload the saga reads.
type ProductRecord struct {
	MerchantID string  `json:"merchantId"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
	Reserved   int     `json:"reserved"`
}

// ReserveResult is the inventory service's reservation response.
type ReserveResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// MerchantClient reads the merchant directory.
type MerchantClient struct{ *Client }

func NewMerchantClient(baseURL string, timeout time.Duration, logger *zap.Logger) *MerchantClient {
	return &MerchantClient{NewClient(baseURL, timeout, logger)}
}

func (c *MerchantClient) Get(ctx context.Context, id string) (*MerchantRecord, Status) {
	var rec MerchantRecord
	st := c.get(ctx, "/merchants/"+id, &rec)
	if st != Found {
		return nil, st
	}
	return &rec, Found
}

// BuyerClient reads the buyer directory.
type BuyerClient struct{ *Client }

func NewBuyerClient(baseURL string, timeout time.Duration, logger *zap.Logger) *BuyerClient {
	return &BuyerClient{NewClient(baseURL, timeout, logger)}
}

func (c *BuyerClient) Get(ctx context.Context, id string) (*BuyerRecord, Status) {
	var rec BuyerRecord
	st := c.get(ctx, "/buyers/"+id, &rec)
	if st != Found {
		return nil, st
	}
	return &rec, Found
}

// InventoryClient reads products and places reservations.
type InventoryClient struct{ *Client }

func NewInventoryClient(baseURL string, timeout time.Duration, logger *zap.Logger) *InventoryClient {
	return &InventoryClient{NewClient(baseURL, timeout, logger)}
}

func (c *InventoryClient) GetProduct(ctx context.Context, id string) (*ProductRecord, Status) {
	var rec ProductRecord
	st := c.get(ctx, "/products/"+id, &rec)
	if st != Found {
		return nil, st
	}
	return &rec, Found
}

// Reserve posts a reservation for one unit. A transport failure returns
// Unavailable; a 200 returns the service's own success flag.
func (c *InventoryClient) Reserve(ctx context.Context, id string) (*ReserveResult, Status) {
	url := c.base + "/products/" + id + "/reserve"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(nil))
	if err != nil {
		return nil, Unavailable
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("collaborator unreachable",
			zap.String("url", url),
			zap.String("cause", "transport"),
			zap.Error(err))
		return nil, Unavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("reserve error status", zap.String("url", url), zap.Int("status", resp.StatusCode))
		return nil, Unavailable
	}
	var res ReserveResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, Unavailable
	}
	return &res, Found
}

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	case Unavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}
