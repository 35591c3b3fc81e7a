package authflow

import "golang.org/x/oauth2"

// State is the lifecycle position of a saved credential. Callers branch on
// state instead of catching errors: an expired token is an expected condition
// with a defined recovery path, not a fault.
type State int

const (
	// StateAbsent means no usable credential exists (never logged in, file
	// missing, or file unreadable).
	StateAbsent State = iota

	// StateExpired means a credential exists but its access token can no
	// longer be used. Recovery is silent refresh when a refresh token is
	// present, interactive consent otherwise.
	StateExpired

	// StateValid means the access token is usable as-is.
	StateValid
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateExpired:
		return "expired"
	case StateValid:
		return "valid"
	default:
		return "unknown"
	}
}

// Classify determines the lifecycle state of a credential. Validity is
// checked at call time, never cached: a token that was valid when loaded may
// classify as expired moments later.
func Classify(tok *oauth2.Token) State {
	switch {
	case tok == nil || (tok.AccessToken == "" && tok.RefreshToken == ""):
		return StateAbsent
	case tok.Valid():
		return StateValid
	default:
		return StateExpired
	}
}
