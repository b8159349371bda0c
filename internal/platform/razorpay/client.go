// Package razorpay is a minimal client for the Razorpay Orders API plus
// the webhook-style signature check used to confirm checkout payments.
package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.razorpay.com/v1"

// defaultTimeout bounds gateway calls so a slow gateway cannot hold a
// booking request open indefinitely.
const defaultTimeout = 10 * time.Second

// OrderRequest is the payload for creating a payment order. Amount is in
// the currency's smallest unit (paise for INR).
type OrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// Order is the gateway's representation of a created order.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type apiError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// Client talks to the Razorpay REST API using key id / key secret basic auth.
type Client struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

// NewClient creates a gateway client. baseURL may be empty to use the
// production endpoint; it is overridable for tests.
func NewClient(keyID, keySecret, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: defaultTimeout},
	}
}

// KeyID returns the public key id, which checkout clients need to open the
// payment widget.
func (c *Client) KeyID() string { return c.keyID }

// CreateOrder creates a payment order with the gateway.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal order request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build order request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("POST %s/orders: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if jsonErr := json.Unmarshal(data, &apiErr); jsonErr == nil && apiErr.Error.Description != "" {
			return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, apiErr.Error.Description)
		}
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}
	return &order, nil
}

// VerifySignature checks a checkout signature against this client's secret.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	return SignatureValid(orderID, paymentID, signature, c.keySecret)
}

// SignatureValid reports whether signature is the hex HMAC-SHA256 of
// "orderID|paymentID" under secret. Comparison is constant-time.
func SignatureValid(orderID, paymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
