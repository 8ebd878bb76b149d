package blob

import "errors"

// Backend errors.
var (
	// Configuration errors
	ErrInvalidBackend   = errors.New("invalid or unsupported storage backend")
	ErrMissingEndpoint  = errors.New("storage endpoint is required")
	ErrMissingBucket    = errors.New("storage bucket name is required")
	ErrMissingAccessKey = errors.New("storage access key is required")
	ErrMissingSecretKey = errors.New("storage secret key is required")

	// Object errors
	ErrObjectNotFound = errors.New("object not found")
	ErrBucketNotFound = errors.New("storage bucket not found")

	// Transfer errors
	ErrStoreFailed  = errors.New("store operation failed")
	ErrTimeout      = errors.New("storage operation timed out")
	ErrNetworkError = errors.New("network error during storage operation")
)

// StoreError wraps backend-specific errors with additional context.
type StoreError struct {
	Backend    string
	Operation  string
	Key        string
	StatusCode int
	Err        error
}

func (e *StoreError) Error() string {
	if e.Key != "" {
		return "blob " + e.Backend + " " + e.Operation + " failed for key '" + e.Key + "': " + e.Err.Error()
	}
	return "blob " + e.Backend + " " + e.Operation + " failed: " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with context.
func NewStoreError(backend, operation, key string, statusCode int, err error) *StoreError {
	return &StoreError{
		Backend:    backend,
		Operation:  operation,
		Key:        key,
		StatusCode: statusCode,
		Err:        err,
	}
}

// IsRetryable checks if an error should trigger a retry within one
// store call. The portal's upload pipeline has its own outer retry loop,
// so this only covers transient backend conditions.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrNetworkError) {
		return true
	}

	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		// HTTP 5xx errors are generally retryable
		if storeErr.StatusCode >= 500 && storeErr.StatusCode < 600 {
			return true
		}
		// 429 (Too Many Requests) and 408 (Request Timeout) are retryable
		if storeErr.StatusCode == 429 || storeErr.StatusCode == 408 {
			return true
		}
	}

	return false
}
