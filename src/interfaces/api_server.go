package interfaces

import "context"

// -----------------------------------------------------------------------------
// IAPIServer is the HTTP surface lifecycle.
// -----------------------------------------------------------------------------

type IAPIServer interface {
	// -----------------------------------------------------------------------------
	// Start blocks serving requests until Stop is called
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop(ctx context.Context) error
}
