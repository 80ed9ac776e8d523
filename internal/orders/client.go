package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/veloramarket/storefront-checkout/pkg/config"
	pkgerrors "github.com/veloramarket/storefront-checkout/pkg/errors"
	"github.com/veloramarket/storefront-checkout/pkg/logger"
	"github.com/veloramarket/storefront-checkout/pkg/types"
)

// Client talks to the commerce backend's REST API. The backend owns all
// persistence; every method here is a thin, normalized relay.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	logg    *logger.Logger
}

// NewClient validates the backend config and builds the REST client.
func NewClient(cfg config.BackendConfig, logg *logger.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("backend base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parsing backend base url: %w", err)
	}
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: base,
		token:   strings.TrimSpace(cfg.ServiceToken),
		logg:    logg,
	}, nil
}

// CreateOrderInput carries the checkout submission to the backend.
type CreateOrderInput struct {
	CustomerID    string                `json:"customer_id"`
	Items         []CreateOrderItem     `json:"items"`
	Shipping      types.ShippingAddress `json:"shipping"`
	PaymentMethod string                `json:"payment_method"`
}

type CreateOrderItem struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

// GatewayOrder is the server-issued token bundle the hosted widget needs.
type GatewayOrder struct {
	Key            string `json:"key"`
	GatewayOrderID string `json:"gateway_order_id"`
	AmountMinor    int64  `json:"amount"`
	Currency       string `json:"currency"`
}

// VerifyInput relays the gateway success callback for server-side proof.
type VerifyInput struct {
	OrderID          string `json:"order_id"`
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	Signature        string `json:"signature"`
}

// FetchOrder returns the current state of a single order.
func (c *Client) FetchOrder(ctx context.Context, id string) (*Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	body, err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return Normalize(body)
}

// CreateOrder submits a new order and returns the backend's record.
func (c *Client) CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error) {
	body, err := c.do(ctx, http.MethodPost, "/orders", input)
	if err != nil {
		return nil, err
	}
	return Normalize(body)
}

// CancelOrder asks the backend to cancel and returns the updated record.
func (c *Client) CancelOrder(ctx context.Context, id string) (*Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	body, err := c.do(ctx, http.MethodPost, "/orders/"+url.PathEscape(id)+"/cancel", nil)
	if err != nil {
		return nil, err
	}
	return Normalize(body)
}

// CreateGatewayOrder obtains a provider session for an order. The backend
// responds with provider-prefixed fields ("razorpay_key", "razorpay_order").
func (c *Client) CreateGatewayOrder(ctx context.Context, provider, orderID string) (*GatewayOrder, error) {
	payload := map[string]string{"order_id": orderID}
	body, err := c.do(ctx, http.MethodPost, "/payments/"+url.PathEscape(provider)+"/create", payload)
	if err != nil {
		return nil, err
	}
	return normalizeGatewayOrder(provider, body)
}

// VerifyPayment relays a gateway success callback. Only a successful
// response here counts as proof of payment.
func (c *Client) VerifyPayment(ctx context.Context, provider string, input VerifyInput) (*Order, error) {
	body, err := c.do(ctx, http.MethodPost, "/payments/"+url.PathEscape(provider)+"/verify", input)
	if err != nil {
		return nil, err
	}
	return Normalize(body)
}

// Ping probes the backend health endpoint for readiness checks.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil)
	return err
}

func normalizeGatewayOrder(provider string, payload []byte) (*GatewayOrder, error) {
	var envelope struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode gateway order payload")
	}
	if envelope.Data == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "gateway order payload missing data envelope")
	}

	rawKey, ok := envelope.Data[provider+"_key"]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("gateway order payload missing %s_key", provider))
	}
	var key string
	if err := json.Unmarshal(rawKey, &key); err != nil || key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("gateway order payload has invalid %s_key", provider))
	}

	rawOrder, ok := envelope.Data[provider+"_order"]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("gateway order payload missing %s_order", provider))
	}
	var wire struct {
		ID       string `json:"id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := json.Unmarshal(rawOrder, &wire); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decode %s_order", provider))
	}
	if wire.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("%s_order missing id", provider))
	}

	return &GatewayOrder{
		Key:            key,
		GatewayOrderID: wire.ID,
		AmountMinor:    wire.Amount,
		Currency:       wire.Currency,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode backend request")
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build backend request")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "backend request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read backend response")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, statusError(resp.StatusCode, method, path, raw)
	}
	return raw, nil
}

func statusError(status int, method, path string, raw []byte) error {
	msg := fmt.Sprintf("backend %s %s returned %d", method, path, status)
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
		msg = envelope.Error.Message
	}

	switch {
	case status == http.StatusBadRequest:
		return pkgerrors.New(pkgerrors.CodeValidation, msg)
	case status == http.StatusUnauthorized:
		return pkgerrors.New(pkgerrors.CodeUnauthorized, msg)
	case status == http.StatusForbidden:
		return pkgerrors.New(pkgerrors.CodeForbidden, msg)
	case status == http.StatusNotFound:
		return pkgerrors.New(pkgerrors.CodeNotFound, msg)
	case status == http.StatusConflict:
		return pkgerrors.New(pkgerrors.CodeConflict, msg)
	case status == http.StatusUnprocessableEntity:
		return pkgerrors.New(pkgerrors.CodeStateConflict, msg)
	default:
		return pkgerrors.New(pkgerrors.CodeDependency, msg)
	}
}
