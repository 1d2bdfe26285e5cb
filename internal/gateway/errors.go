package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned when the server reports 404 for a record.
var ErrNotFound = errors.New("resource not found")

// Kind classifies a gateway failure. Consumers branch on the kind tag,
// never on message text.
type Kind int

const (
	// KindRemote is an application-level failure: the server answered,
	// but with a 4xx/5xx domain error.
	KindRemote Kind = iota

	// KindNetwork is a connectivity failure: no route to the server, or
	// a gateway-timeout-class status (502/503/504/599). The UI offers a
	// retry affordance for this class.
	KindNetwork
)

func (k Kind) String() string {
	if k == KindNetwork {
		return "network"
	}
	return "remote"
}

// Error is the only error type the gateway produces for failed calls.
type Error struct {
	Op     string // e.g. "products.list"
	Kind   Kind
	Status int // HTTP status, 0 for transport failures
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("gateway: %s: %s error (status %d): %v", e.Op, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("gateway: %s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsNetwork reports whether err is a connectivity-class gateway failure.
func IsNetwork(err error) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Kind == KindNetwork
}

// statusKind maps a non-2xx HTTP status to an error kind. 599 is the
// transport-level status some proxies emit for an unreachable upstream;
// the 502..504 range is the standard gateway-failure class.
func statusKind(status int) Kind {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout, 599:
		return KindNetwork
	default:
		return KindRemote
	}
}
