package webhook

import (
	"errors"
	"fmt"
)

var ErrRateLimited = errors.New("webhook rate limited")

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("webhook status %d: %s", e.Status, e.Body)
}
