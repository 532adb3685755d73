package domain

import (
	"errors"
	"fmt"
)

// NetworkError is the only failure kind the sync layer reacts to: any
// transport, connectivity or server-side failure reported by a RemoteClient.
// The store catches it at its boundary and converts it into state (a stale
// cache, a false connectivity flag) rather than propagating it to the
// presentation layer.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: network failure", e.Op)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsNetworkError reports whether err is (or wraps) a NetworkError.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
