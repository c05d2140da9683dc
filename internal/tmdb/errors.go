package tmdb

import (
	"errors"
	"fmt"
	"strings"
)

// Fallback messages shown when nothing more specific is available.
const (
	MsgResultsError = "Erro ao carregar resultados"
	MsgFeedError    = "Erro ao carregar feed"
	MsgDetailsError = "Erro ao carregar detalhes"

	MsgMissingToken = "Faltando TMDB_TOKEN no .env"
)

// ErrMissingToken is returned before any request is made when no bearer
// token is configured.
var ErrMissingToken = errors.New("tmdb: missing bearer token")

// APIError is an error response from TMDB. Message is the server's
// status_message and may be empty.
type APIError struct {
	HTTPStatus int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("tmdb: HTTP %d", e.HTTPStatus)
	}
	return fmt.Sprintf("tmdb: HTTP %d: %s", e.HTTPStatus, e.Message)
}

// TransportError covers everything that is not a server-reported error:
// network failures, timeouts, undecodable bodies and an open circuit.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("tmdb %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UserMessage picks the user-facing text for err. A server message is shown
// verbatim; transport failures get fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrMissingToken) {
		return MsgMissingToken
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message
	}
	return fallback
}

// IsUpstream reports whether err came from talking to TMDB, as opposed to a
// local failure such as a storage write.
func IsUpstream(err error) bool {
	var apiErr *APIError
	var tErr *TransportError
	return errors.As(err, &apiErr) || errors.As(err, &tErr)
}
