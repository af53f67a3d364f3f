package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/tradesphere/tradesphere-backend/pkg/errors"
	"github.com/tradesphere/tradesphere-backend/pkg/metrics"
)

// VerificationResult is the normalized outcome of a gateway lookup.
type VerificationResult struct {
	Verified  bool
	Reference string
	Amount    decimal.Decimal
	Currency  string
	RawStatus string
}

// Client talks to the external payment gateway's verification API.
type Client struct {
	baseURL    string
	secret     string
	httpClient *http.Client
	metrics    *metrics.GatewayMetrics
}

type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithMetrics attaches gateway call metrics.
func WithMetrics(m *metrics.GatewayMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New builds a gateway client. The base URL and secret are required.
func New(baseURL, secret string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("gateway base url is required")
	}
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("gateway secret is required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		baseURL:    baseURL,
		secret:     secret,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type verifyResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		TxRef    string          `json:"tx_ref"`
		Amount   decimal.Decimal `json:"amount"`
		Currency string          `json:"currency"`
		Status   string          `json:"status"`
	} `json:"data"`
}

// VerifyTransaction looks up a payment reference at the gateway. Network and
// decoding failures are dependency errors; a reachable gateway reporting a
// non-successful transaction yields Verified=false without error.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*VerificationResult, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "payment reference is required")
	}

	endpoint := fmt.Sprintf("%s/transaction/verify/%s", c.baseURL, url.PathEscape(reference))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "building gateway request")
	}
	req.Header.Set("Authorization", "Bearer "+c.secret)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ObserveDuration("verify_transaction", time.Since(start))
	if err != nil {
		c.metrics.IncFailure("verify_transaction")
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "calling payment gateway")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		c.metrics.IncFailure("verify_transaction")
		return nil, apperrors.New(apperrors.CodeDependency, fmt.Sprintf("payment gateway returned status %d", resp.StatusCode))
	}

	var payload verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.metrics.IncFailure("verify_transaction")
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "decoding gateway response")
	}

	c.metrics.IncSuccess("verify_transaction")

	result := &VerificationResult{
		Reference: payload.Data.TxRef,
		Amount:    payload.Data.Amount,
		Currency:  payload.Data.Currency,
		RawStatus: payload.Data.Status,
	}
	if result.Reference == "" {
		result.Reference = reference
	}

	// The top-level status covers the API call; data.status, when present,
	// carries the transaction outcome.
	result.Verified = resp.StatusCode == http.StatusOK &&
		strings.EqualFold(payload.Status, "success") &&
		(payload.Data.Status == "" || strings.EqualFold(payload.Data.Status, "successful"))

	return result, nil
}
