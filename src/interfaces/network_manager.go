package interfaces

import "context"

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for HTTP requests with potential proxy/retry logic.
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// -----------------------------------------------------------------------------

	// Get performs a GET request to the specified URL with parameters.
	// Returns the response body as bytes or an error.
	Get(ctx context.Context, url string, params map[string]string) ([]byte, error)

	// -----------------------------------------------------------------------------

	// Post sends a body with the given headers and returns the response body.
	// Non-2xx responses come back as a *helpers.HTTPStatusError.
	Post(ctx context.Context, url string, headers map[string]string, body []byte) ([]byte, error)
}
