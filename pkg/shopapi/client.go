package shopapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bonneaffaire/pkg/apperrors"
)

// RejectedError is returned when the API answered but refused the request.
type RejectedError struct {
	StatusCode int
	Message    string
	Errors     []string
}

func (e *RejectedError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("request rejected (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("request rejected (%d): %s: %s", e.StatusCode, e.Message, strings.Join(e.Errors, "; "))
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient targets an API rooted at baseURL, e.g. http://localhost:3001/api.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ListProducts fetches the catalog, only the featured products when featured is set.
func (c *Client) ListProducts(ctx context.Context, featured bool) ([]Product, error) {
	path := "/products"
	if featured {
		path += "?featured=true"
	}

	var products []Product
	if err := c.do(ctx, http.MethodGet, path, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// RecordAddToCart counts an add-to-cart for the product.
func (c *Client) RecordAddToCart(ctx context.Context, productID string) error {
	return c.do(ctx, http.MethodPost, "/products/"+url.PathEscape(productID)+"/cart", nil, nil)
}

// CreateOrder submits an order and returns it as stored by the server.
func (c *Client) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodPost, "/orders", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// do sends one request. Transport failures and 5xx answers wrap
// apperrors.ErrUnavailable; other failures come back as *RejectedError.
func (c *Client) do(ctx context.Context, method, path string, body, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request data: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", apperrors.ErrUnavailable, err)
	}

	var envelope Envelope
	decodeErr := json.Unmarshal(raw, &envelope)

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: %s %s answered %d %s", apperrors.ErrUnavailable, method, path, resp.StatusCode, envelope.Message)
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to parse response: %w", decodeErr)
	}
	if resp.StatusCode >= http.StatusBadRequest || !envelope.Success {
		return &RejectedError{StatusCode: resp.StatusCode, Message: envelope.Message, Errors: envelope.Errors}
	}

	if dest != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, dest); err != nil {
			return fmt.Errorf("failed to parse response data: %w", err)
		}
	}
	return nil
}
