package model

import (
	"fmt"
	"time"
)

// RateLimitError reports that the provider refused a request because of rate
// limiting. It is recoverable: the caller should wait ResetAfter and retry
// the same page.
type RateLimitError struct {
	ResetAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, reset in %s", e.ResetAfter)
}
