// Package authflow manages the OAuth2 credential lifecycle for Google Drive
// uploads: loading the persisted credential, classifying it as absent,
// expired, or valid, refreshing silently when possible, and falling back to
// the interactive browser consent flow when it is not.
package authflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/lecternapp/lectern/internal/tokenfile"
)

// Scope is the only Drive scope requested: per-file access to files the app
// creates, not the whole Drive.
const Scope = "https://www.googleapis.com/auth/drive.file"

// Sentinel errors. Use errors.Is to check.
var (
	// ErrConfiguration means the OAuth client secret is missing or invalid.
	// Fatal: there is no fallback without client credentials.
	ErrConfiguration = errors.New("authflow: invalid client secret configuration")

	// ErrAuthorization means both the silent and the interactive paths
	// failed to produce a valid credential.
	ErrAuthorization = errors.New("authflow: authorization failed")
)

// Authorizer drives the credential state machine. It owns the persisted
// credential for the duration of a refresh; the resulting token is handed to
// the uploader by reference for single calls. Concurrent Authorize calls on
// one Authorizer are not supported.
type Authorizer struct {
	cfg       *oauth2.Config
	tokenPath string
	logger    *slog.Logger

	// consentFn runs the interactive consent flow. Defaults to the browser
	// flow in consent.go; tests substitute a fake.
	consentFn func(ctx context.Context) (*oauth2.Token, error)
}

// New builds an Authorizer from an OAuth client secret JSON file (the
// "installed application" credentials downloaded from the Google console).
// A missing or malformed file is a ConfigurationError: fatal, no fallback.
func New(clientSecretPath, tokenPath string, openURL func(string) error, logger *slog.Logger) (*Authorizer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if clientSecretPath == "" {
		return nil, fmt.Errorf("%w: no client secret path configured", ErrConfiguration)
	}

	data, err := os.ReadFile(clientSecretPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrConfiguration, clientSecretPath, err)
	}

	cfg, err := google.ConfigFromJSON(data, Scope)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrConfiguration, clientSecretPath, err)
	}

	a := &Authorizer{
		cfg:       cfg,
		tokenPath: tokenPath,
		logger:    logger,
	}
	a.consentFn = func(ctx context.Context) (*oauth2.Token, error) {
		return a.browserConsent(ctx, openURL)
	}

	return a, nil
}

// Authorize returns a valid credential or fails with an AuthorizationError.
// It never returns an expired or malformed credential.
//
// State transitions:
//   - Valid: returned unchanged, no network call, no save.
//   - Expired with refresh token: silent refresh; a refresh failure of any
//     kind falls back to interactive consent and is never surfaced.
//   - Expired without refresh token, or Absent: interactive consent.
//
// Every transition that produces a new valid credential persists it before
// returning, so the next process run can skip consent. The interactive flow
// blocks without a baseline timeout; callers wanting bounded wait cancel ctx.
func (a *Authorizer) Authorize(ctx context.Context) (*oauth2.Token, error) {
	tok, _, loadErr := tokenfile.Load(a.tokenPath)
	if loadErr != nil {
		a.logger.Warn("credential file unreadable, treating as absent",
			slog.String("path", a.tokenPath),
			slog.String("error", loadErr.Error()),
		)
	}

	switch Classify(tok) {
	case StateValid:
		a.logger.Debug("saved credential still valid",
			slog.Time("expiry", tok.Expiry),
		)

		return tok, nil

	case StateExpired:
		if tok.RefreshToken == "" {
			a.logger.Info("expired credential has no refresh token, interactive consent required")

			break
		}

		fresh, err := a.refresh(ctx, tok)
		if err == nil {
			a.persist(fresh)

			return fresh, nil
		}

		// Internal retry path: the refresh failure is logged, never returned.
		a.logger.Warn("silent refresh failed, falling back to interactive consent",
			slog.String("error", err.Error()),
		)

	case StateAbsent:
		a.logger.Info("no saved credential, interactive consent required")
	}

	fresh, err := a.consentFn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthorization, err)
	}

	a.persist(fresh)

	return fresh, nil
}

// Login forces the interactive consent flow regardless of the saved
// credential's state, then persists the result. Used by `lectern login`.
func (a *Authorizer) Login(ctx context.Context) (*oauth2.Token, error) {
	tok, err := a.consentFn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthorization, err)
	}

	a.persist(tok)

	return tok, nil
}

// Status reports the saved credential's current state without performing any
// network calls or transitions.
func (a *Authorizer) Status() (State, time.Time) {
	tok, _, err := tokenfile.Load(a.tokenPath)
	if err != nil {
		a.logger.Warn("credential file unreadable",
			slog.String("path", a.tokenPath),
			slog.String("error", err.Error()),
		)

		return StateAbsent, time.Time{}
	}

	if tok == nil {
		return StateAbsent, time.Time{}
	}

	return Classify(tok), tok.Expiry
}

// refresh exchanges the refresh token for a new access token. The oauth2
// token source carries the old refresh token forward when the server omits
// a new one.
func (a *Authorizer) refresh(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error) {
	a.logger.Info("refreshing expired credential")

	fresh, err := a.cfg.TokenSource(ctx, tok).Token()
	if err != nil {
		return nil, fmt.Errorf("authflow: refreshing token: %w", err)
	}

	a.logger.Info("credential refreshed",
		slog.Time("new_expiry", fresh.Expiry),
	)

	return fresh, nil
}

// persist saves the credential for subsequent runs. A write failure is not
// fatal: the in-memory credential is still valid for this run, so the error
// is logged and absorbed.
func (a *Authorizer) persist(tok *oauth2.Token) {
	if err := tokenfile.Save(a.tokenPath, tok, a.cfg.Scopes); err != nil {
		a.logger.Warn("failed to persist credential",
			slog.String("path", a.tokenPath),
			slog.String("error", err.Error()),
		)

		return
	}

	a.logger.Info("credential persisted",
		slog.String("path", a.tokenPath),
		slog.Time("expiry", tok.Expiry),
	)
}
