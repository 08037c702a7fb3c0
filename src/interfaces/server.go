package interfaces

import "context"

// -----------------------------------------------------------------------------
// IServer is a host surface (HTTP, gRPC) with a start/stop lifecycle.
// -----------------------------------------------------------------------------

type IServer interface {
	// -----------------------------------------------------------------------------
	// Start blocks serving until Stop is called or the listener fails.
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop(ctx context.Context) error
}
