package authflow

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// browseWith returns an openURL func that plays the browser's part: it parses
// the authorization URL and immediately hits the local callback with the
// given query values.
func browseWith(t *testing.T, respond func(state string) url.Values) func(string) error {
	t.Helper()

	return func(authURL string) error {
		parsed, err := url.Parse(authURL)
		require.NoError(t, err)

		redirect := parsed.Query().Get("redirect_uri")
		state := parsed.Query().Get("state")
		require.NotEmpty(t, redirect)
		require.NotEmpty(t, state)

		go func() {
			resp, getErr := http.Get(redirect + "/?" + respond(state).Encode())
			if getErr == nil {
				resp.Body.Close()
			}
		}()

		return nil
	}
}

func newConsentAuthorizer(t *testing.T, serverURL string) *Authorizer {
	t.Helper()

	tokenPath := filepath.Join(t.TempDir(), "credential.json")

	a, err := New(writeClientSecret(t, serverURL), tokenPath, nil, slog.Default())
	require.NoError(t, err)

	return a
}

func TestBrowserConsent_Success(t *testing.T) {
	srv, hits := newMockTokenServer(t, nil)
	a := newConsentAuthorizer(t, srv.URL)

	openURL := browseWith(t, func(state string) url.Values {
		return url.Values{"state": {state}, "code": {"fake-auth-code"}}
	})

	tok, err := a.browserConsent(context.Background(), openURL)
	require.NoError(t, err)
	assert.Equal(t, "refreshed-access-token", tok.AccessToken)
	assert.Equal(t, int32(1), hits.Load(), "exchange should hit the token endpoint once")
}

func TestBrowserConsent_Declined(t *testing.T) {
	srv, hits := newMockTokenServer(t, nil)
	a := newConsentAuthorizer(t, srv.URL)

	openURL := browseWith(t, func(state string) url.Values {
		return url.Values{
			"state":             {state},
			"error":             {"access_denied"},
			"error_description": {"user declined"},
		}
	})

	_, err := a.browserConsent(context.Background(), openURL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access_denied")
	assert.Equal(t, int32(0), hits.Load())
}

func TestBrowserConsent_ContextCanceled(t *testing.T) {
	srv, _ := newMockTokenServer(t, nil)
	a := newConsentAuthorizer(t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())

	// Browser never responds; cancel instead.
	openURL := func(_ string) error {
		cancel()
		return nil
	}

	_, err := a.browserConsent(ctx, openURL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "consent canceled")
}

func TestHandleConsentCallback_StateMismatch(t *testing.T) {
	resultCh := make(chan consentResult, 1)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?state=wrong&code=abc", nil)

	handleConsentCallback(rec, req, "expected-state", resultCh)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	result := <-resultCh
	require.Error(t, result.err)
	assert.Contains(t, result.err.Error(), "state mismatch")
}

func TestHandleConsentCallback_MissingCode(t *testing.T) {
	resultCh := make(chan consentResult, 1)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?state=s", nil)

	handleConsentCallback(rec, req, "s", resultCh)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	result := <-resultCh
	require.Error(t, result.err)
	assert.Contains(t, result.err.Error(), "missing authorization code")
}
