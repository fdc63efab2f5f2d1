package paypal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifier_Verify(t *testing.T) {
	t.Parallel()

	payload := url.Values{
		"txn_id":         {"TXN-1"},
		"payment_status": {"Completed"},
		"mc_gross":       {"10.00"},
	}

	t.Run("should accept a VERIFIED answer", func(t *testing.T) {
		t.Parallel()

		var received url.Values
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			received = r.PostForm
			w.Write([]byte("VERIFIED"))
		}))
		defer srv.Close()

		verifier := NewVerifier(srv.URL, "PayPalPlus/1.0", srv.Client())

		err := verifier.Verify(context.Background(), payload)

		require.NoError(t, err)
		assert.Equal(t, "_notify-validate", received.Get("cmd"))
		assert.Equal(t, "TXN-1", received.Get("txn_id"))
		assert.Equal(t, "Completed", received.Get("payment_status"))
	})

	t.Run("should reject an INVALID answer", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("INVALID"))
		}))
		defer srv.Close()

		verifier := NewVerifier(srv.URL, "", srv.Client())

		err := verifier.Verify(context.Background(), payload)

		assert.ErrorContains(t, err, `"INVALID"`)
	})

	t.Run("should reject an unexpected body", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("<html>maintenance</html>"))
		}))
		defer srv.Close()

		verifier := NewVerifier(srv.URL, "", srv.Client())

		err := verifier.Verify(context.Background(), payload)

		assert.Error(t, err)
	})

	t.Run("should reject a non-2xx status", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		verifier := NewVerifier(srv.URL, "", srv.Client())

		err := verifier.Verify(context.Background(), payload)

		assert.ErrorContains(t, err, "503")
	})

	t.Run("should fail closed on timeout", func(t *testing.T) {
		t.Parallel()

		// The handler outsleeps the client deadline but returns on its own,
		// so closing the server never waits on a stuck request.
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(500 * time.Millisecond)
			w.Write([]byte("VERIFIED"))
		}))
		defer srv.Close()

		verifier := NewVerifier(srv.URL, "", srv.Client())
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err := verifier.Verify(ctx, payload)

		assert.Error(t, err)
	})
}
