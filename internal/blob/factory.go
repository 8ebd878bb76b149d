package blob

import (
	"fmt"
	"strings"
)

// NewProvider creates a Provider based on the configuration.
func NewProvider(cfg *Config) (Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("blob config cannot be nil")
	}

	switch BackendType(strings.ToLower(string(cfg.Backend))) {
	case BackendAWS:
		return NewAWSProvider(cfg)
	case BackendMinIO:
		return NewMinIOProvider(cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidBackend, cfg.Backend)
	}
}

// SupportedBackends returns the list of supported backend types.
func SupportedBackends() []BackendType {
	return []BackendType{BackendAWS, BackendMinIO}
}
