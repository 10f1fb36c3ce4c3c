package external

import (
	"errors"
	"fmt"
)

// ErrorKind is the machine-readable category of an upstream failure.
type ErrorKind string

const (
	KindNotFound    ErrorKind = "not_found"
	KindRateLimited ErrorKind = "rate_limited"
	KindUnavailable ErrorKind = "unavailable"
)

// UpstreamError wraps every failure returned by the CoinGecko client.
type UpstreamError struct {
	Kind  ErrorKind
	Op    string
	Coin  string
	Cause error
}

func (e *UpstreamError) Error() string {
	if e.Coin == "" {
		return fmt.Sprintf("failed to fetch %s: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("failed to fetch %s for %s: %v", e.Op, e.Coin, e.Cause)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

var (
	errCoinNotFound = errors.New("Coin not found")
	errRateLimited  = errors.New("rate limit exceeded")
)

// KindOf reports the kind of the first UpstreamError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Kind, true
	}
	return "", false
}
