package client

import (
	"errors"
	"net/http"
	"strings"
)

// Paths with special meaning to the classifier.
const (
	LoginPage    = "/login"
	RegisterPage = "/register"
	IdentityPath = "/users/me"

	// loginMarker identifies login attempts by substring, e.g. /user/login.
	loginMarker = "/login"
)

// Notice texts shown to the user.
const (
	MsgNetwork         = "network error, please check your connection"
	MsgUnauthenticated = "not logged in or session expired, please log in again"
	MsgServerPrefix    = "server error: "
	MsgInternalServer  = "internal server error"
	MsgRequestFailed   = "request failed"
)

// Kind tags a classified failure.
type Kind int

const (
	KindNone Kind = iota
	KindNetwork
	KindAuthLogin
	KindAuthSilent
	KindAuthSession
	KindServer
	KindHTTP
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNetwork:
		return "network"
	case KindAuthLogin:
		return "auth_login"
	case KindAuthSilent:
		return "auth_silent"
	case KindAuthSession:
		return "auth_session"
	case KindServer:
		return "server"
	case KindHTTP:
		return "http"
	default:
		return "unknown"
	}
}

// Outcome is the policy decision for one failed request.
type Outcome struct {
	Kind           Kind
	Message        string
	ShouldRedirect bool
}

// ShouldNotify reports whether the outcome carries a user-visible notice.
func (o Outcome) ShouldNotify() bool {
	switch o.Kind {
	case KindNone, KindAuthLogin, KindAuthSilent:
		return false
	}
	return true
}

// Classify decides how a failed request is surfaced. path is the request path
// relative to the API base, location is the page the user is currently on.
// It has no side effects.
func Classify(path string, err error, location string) Outcome {
	if err == nil {
		return Outcome{Kind: KindNone}
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return Outcome{Kind: KindNetwork, Message: MsgNetwork}
	}

	switch httpErr.StatusCode {
	case http.StatusUnauthorized:
		p := stripQuery(path)
		if strings.Contains(p, loginMarker) {
			return Outcome{Kind: KindAuthLogin}
		}
		if p == IdentityPath {
			return Outcome{Kind: KindAuthSilent}
		}
		return Outcome{
			Kind:           KindAuthSession,
			Message:        MsgUnauthenticated,
			ShouldRedirect: location != LoginPage && location != RegisterPage,
		}
	case http.StatusInternalServerError:
		if httpErr.Message != "" {
			return Outcome{Kind: KindServer, Message: MsgServerPrefix + httpErr.Message}
		}
		return Outcome{Kind: KindServer, Message: MsgInternalServer}
	default:
		if httpErr.Message != "" {
			return Outcome{Kind: KindHTTP, Message: httpErr.Message}
		}
		return Outcome{Kind: KindHTTP, Message: MsgRequestFailed}
	}
}

func stripQuery(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		return path[:i]
	}
	return path
}
