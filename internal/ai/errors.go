package ai

import (
	"fmt"

	"resumescore/internal/errors"
)

// rateLimitError reports that a provider throttled the request
func rateLimitError(provider string, cause error) error {
	return errors.NewAugmentationError(errors.ErrCodeRateLimited,
		fmt.Sprintf("%s rate limit exceeded", provider), cause).
		WithContext("provider", provider)
}

// transportError reports any other provider failure
func transportError(provider string, cause error) error {
	return errors.NewAugmentationError(errors.ErrCodeTransportFailed,
		fmt.Sprintf("%s request failed", provider), cause).
		WithContext("provider", provider)
}

// IsRateLimited reports whether err came from provider throttling.
func IsRateLimited(err error) bool {
	return errors.HasCode(err, errors.ErrCodeRateLimited)
}
