package interfaces

import "context"

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for outbound HTTP GET requests.
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// -----------------------------------------------------------------------------

	// Get performs a GET request to the specified URL with parameters.
	// Non-2xx responses return a *helpers.StatusError wrapped in the error.
	Get(ctx context.Context, url string, params map[string]string) ([]byte, error)
}
