// Package paypal implements the outbound PayPal collaborators: the legacy
// webscr verification postback and the REST refund API.
package paypal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"paypalplus/pkg/metrics"
)

// Known webscr endpoints. The protocol predates signed webhooks: authenticity
// is established by echoing the payload back and receiving VERIFIED.
const (
	LiveVerifyURL    = "https://www.paypal.com/cgi-bin/webscr"
	SandboxVerifyURL = "https://www.sandbox.paypal.com/cgi-bin/webscr"
)

const cmdNotifyValidate = "_notify-validate"

// Verifier posts notifications back to PayPal for authenticity checks.
type Verifier struct {
	verifyURL string
	userAgent string
	http      *http.Client
}

// NewVerifier creates a verifier against the given webscr URL. The injected
// client's timeout bounds the postback; a timeout surfaces as an error and
// the caller fails closed.
func NewVerifier(verifyURL, userAgent string, httpClient *http.Client) *Verifier {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &Verifier{
		verifyURL: verifyURL,
		userAgent: userAgent,
		http:      httpClient,
	}
}

// Verify echoes the payload to the verification endpoint with the
// _notify-validate command prepended. Only a literal VERIFIED body counts as
// success; INVALID, unexpected bodies, non-2xx statuses and transport errors
// all return a non-nil error.
func (v *Verifier) Verify(ctx context.Context, payload url.Values) error {
	start := time.Now()
	defer func() {
		metrics.VerifyDuration.Observe(time.Since(start).Seconds())
	}()

	form := make(url.Values, len(payload)+1)
	form.Set("cmd", cmdNotifyValidate)
	for key, vals := range payload {
		for _, val := range vals {
			form.Add(key, val)
		}
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if v.userAgent != "" {
		req.Header.Set("User-Agent", v.userAgent)
	}

	resp, err := v.http.Do(req)
	if err != nil {
		return fmt.Errorf("verify postback: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return fmt.Errorf("read verify response: %w", err)
	}

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("verify endpoint answered %s", resp.Status)
	}

	answer := strings.TrimSpace(string(body))
	if answer != "VERIFIED" {
		return fmt.Errorf("verify endpoint answered %q", answer)
	}
	return nil
}
