package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"paypalplus/internal/domain/refund"
	"paypalplus/pkg/money"
)

// RefundClient calls the REST refund API with client-credentials OAuth.
type RefundClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	http         *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewRefundClient creates a refund client against the given API base URL
// (e.g. https://api.sandbox.paypal.com).
func NewRefundClient(baseURL, clientID, clientSecret string, httpClient *http.Client) *RefundClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &RefundClient{
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		http:         httpClient,
	}
}

type refundReq struct {
	Amount refundAmount `json:"amount"`
}

type refundAmount struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

type refundResp struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

type tokenResp struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// RefundSale refunds part or all of a sale transaction. Transport,
// authorization and provider errors are wrapped; callers treat any error as
// a failed refund.
func (c *RefundClient) RefundSale(ctx context.Context, saleID string, amount float64, currency string) (refund.Refund, error) {
	token, err := c.token(ctx)
	if err != nil {
		return refund.Refund{}, fmt.Errorf("oauth token: %w", err)
	}

	body := refundReq{
		Amount: refundAmount{
			Total:    money.Format(amount, currency),
			Currency: currency,
		},
	}
	j, err := json.Marshal(body)
	if err != nil {
		return refund.Refund{}, fmt.Errorf("marshal: %w", err)
	}

	url := fmt.Sprintf("%s/v1/payments/sale/%s/refund", c.baseURL, saleID)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(j))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return refund.Refund{}, fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode/100 != 2 {
		return refund.Refund{}, fmt.Errorf("provider %s: %s", resp.Status, string(raw))
	}

	var out refundResp
	if err := json.Unmarshal(raw, &out); err != nil {
		return refund.Refund{}, fmt.Errorf("decode refund response: %w", err)
	}

	return refund.Refund{ID: out.ID, State: out.State}, nil
}

// token returns a cached access token, fetching a new one when the cached
// token is within a minute of expiry.
func (c *RefundClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Until(c.tokenExpiry) > time.Minute {
		return c.accessToken, nil
	}

	req, _ := http.NewRequestWithContext(
		ctx, http.MethodPost,
		c.baseURL+"/v1/oauth2/token",
		bytes.NewReader([]byte("grant_type=client_credentials")),
	)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.clientID, c.clientSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("token endpoint %s: %s", resp.Status, string(raw))
	}

	var out tokenResp
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	c.accessToken = out.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(out.ExpiresIn) * time.Second)
	return c.accessToken, nil
}
