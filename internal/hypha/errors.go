package hypha

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned when a call is attempted before Connect
// succeeds or after the connection drops.
var ErrNotConnected = errors.New("not connected to artifact server")

// RPCError is a failure reported by the remote service for one call.
type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}
