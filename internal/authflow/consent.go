package authflow

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
)

// stateTokenBytes is the number of random bytes for the OAuth2 state parameter.
const stateTokenBytes = 16

// drainTimeout is how long to wait for the callback server to shut down.
const drainTimeout = 5 * time.Second

// consentResult carries the authorization code or error out of the callback
// handler.
type consentResult struct {
	code string
	err  error
}

// browserConsent performs the authorization code + PKCE flow:
//  1. Binds a localhost HTTP listener on a random port
//  2. Opens the browser to Google's authorization endpoint
//  3. Waits for the redirect carrying the authorization code
//  4. Exchanges the code for a token
//
// openURL launches the browser; if it fails the URL is printed to stderr so
// the user can open it by hand. The wait is unbounded — cancellation comes
// from ctx. Persistence is the caller's job.
func (a *Authorizer) browserConsent(ctx context.Context, openURL func(string) error) (*oauth2.Token, error) {
	a.logger.Info("starting interactive consent flow (authorization code + PKCE)")

	lc := net.ListenConfig{}

	listener, err := lc.Listen(ctx, "tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("authflow: binding localhost listener: %w", err)
	}

	tcpAddr, ok := listener.Addr().(*net.TCPAddr)
	if !ok {
		listener.Close()
		return nil, errors.New("authflow: listener address is not TCP")
	}

	// The flow uses a per-run copy of the OAuth config so the redirect URL
	// with the ephemeral port never leaks into the shared config.
	cfg := *a.cfg
	cfg.RedirectURL = fmt.Sprintf("http://127.0.0.1:%d", tcpAddr.Port)

	state, err := randomState()
	if err != nil {
		listener.Close()
		return nil, fmt.Errorf("authflow: generating state token: %w", err)
	}

	verifier := oauth2.GenerateVerifier()

	resultCh := make(chan consentResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		handleConsentCallback(w, r, state, resultCh)
	})

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: drainTimeout,
	}

	go func() {
		if serveErr := srv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			resultCh <- consentResult{err: fmt.Errorf("authflow: callback server error: %w", serveErr)}
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()

		if shutErr := srv.Shutdown(shutdownCtx); shutErr != nil {
			a.logger.Warn("callback server shutdown error", slog.String("error", shutErr.Error()))
		}
	}()

	a.logger.Info("callback server listening", slog.Int("port", tcpAddr.Port))

	authURL := cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	)

	if openErr := openURL(authURL); openErr != nil {
		a.logger.Warn("failed to open browser, printing URL",
			slog.String("error", openErr.Error()),
		)

		fmt.Fprintf(os.Stderr, "Open this URL in your browser:\n%s\n", authURL)
	}

	var code string

	select {
	case result := <-resultCh:
		if result.err != nil {
			return nil, result.err
		}

		code = result.code
	case <-ctx.Done():
		return nil, fmt.Errorf("authflow: consent canceled: %w", ctx.Err())
	}

	a.logger.Info("authorization code received, exchanging for token")

	tok, err := cfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("authflow: token exchange failed: %w", err)
	}

	a.logger.Info("consent flow complete", slog.Time("expiry", tok.Expiry))

	return tok, nil
}

// handleConsentCallback validates the state parameter, extracts the
// authorization code, and reports the result.
func handleConsentCallback(w http.ResponseWriter, r *http.Request, state string, resultCh chan<- consentResult) {
	// State mismatch means the redirect did not originate from our request.
	if r.URL.Query().Get("state") != state {
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		resultCh <- consentResult{err: errors.New("authflow: OAuth2 state mismatch (possible CSRF)")}

		return
	}

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		desc := r.URL.Query().Get("error_description")
		http.Error(w, "Authorization failed: "+errParam, http.StatusBadRequest)
		resultCh <- consentResult{err: fmt.Errorf("authflow: consent declined: %s: %s", errParam, desc)}

		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Missing authorization code", http.StatusBadRequest)
		resultCh <- consentResult{err: errors.New("authflow: callback missing authorization code")}

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, "<html><body><h1>Authentication successful</h1>"+
		"<p>You can close this window and return to the terminal.</p></body></html>")
	resultCh <- consentResult{code: code}
}

// randomState produces a cryptographically random hex string for the OAuth2
// state parameter.
func randomState() (string, error) {
	b := make([]byte, stateTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
