package llm

import (
	"context"
	"errors"
	"fmt"
	"net"

	openai "github.com/sashabaranov/go-openai"
)

// Typed failures of the generation boundary. Callers distinguish these
// with errors.Is; everything else from a provider is wrapped as a
// connection failure.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrConnectionFailed   = errors.New("connection failed")
	ErrRateLimited        = errors.New("rate limited")
	ErrMalformedResponse  = errors.New("malformed response")
	ErrEmptyResponse      = errors.New("empty response")
)

// classifyError maps a provider transport error to one of the typed
// boundary failures.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 401, 403:
			return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		case 429:
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
}

// classifyStatus maps a raw HTTP status code to a typed failure.
func classifyStatus(code int, detail string) error {
	switch code {
	case 401, 403:
		return fmt.Errorf("%w: status %d: %s", ErrInvalidCredentials, code, detail)
	case 429:
		return fmt.Errorf("%w: status %d: %s", ErrRateLimited, code, detail)
	default:
		return fmt.Errorf("%w: status %d: %s", ErrConnectionFailed, code, detail)
	}
}
