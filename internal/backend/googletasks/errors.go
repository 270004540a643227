package googletasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"tasknova/internal/service"
)

// ErrTokenRevoked is returned when Google rejects the stored token.
var ErrTokenRevoked = errors.New("token expired or revoked (run: tasknova login)")

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}

	var refreshErr *oauth2.RetrieveError
	if errors.As(err, &refreshErr) {
		return ErrTokenRevoked
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ErrTokenRevoked
		case http.StatusNotFound:
			return service.ErrNotFound
		}
	}
	return err
}
