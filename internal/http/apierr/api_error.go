package apierr

import (
	"errors"
	"net/http"

	"github.com/storelink/products-api/internal/model"
	"github.com/storelink/products-api/pkg/zerror"
)

// ErrorResponse is the wire shape for every non-2xx response.
type ErrorResponse struct {
	Error   bool     `json:"error"`
	Message []string `json:"message"`

	StatusCode int `json:"-"`
}

var InternalServerErr = ErrorResponse{
	Error:      true,
	Message:    []string{"An unknown error occurred."},
	StatusCode: http.StatusInternalServerError,
}

// New maps an error to its response. Parent causes never reach the
// client; only taxonomy messages do.
func New(err error) ErrorResponse {
	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		return ErrorResponse{
			Error:      true,
			Message:    validationErr.Messages(),
			StatusCode: http.StatusBadRequest,
		}
	}

	var zErr zerror.ZError
	if errors.As(err, &zErr) {
		return ErrorResponse{
			Error:      true,
			Message:    []string{zErr.Msg()},
			StatusCode: StatusToHTTPStatus(zErr.Status()),
		}
	}

	return InternalServerErr
}

func StatusToHTTPStatus(status zerror.Status) int {
	switch status {
	case zerror.StatusBadRequest, zerror.StatusValidationFailed:
		return http.StatusBadRequest
	case zerror.StatusUnauthorized:
		return http.StatusUnauthorized
	case zerror.StatusForbidden:
		return http.StatusForbidden
	case zerror.StatusNotFound:
		return http.StatusNotFound
	case zerror.StatusGone:
		return http.StatusGone
	case zerror.StatusConflict:
		return http.StatusConflict
	case zerror.StatusUnknown, zerror.StatusInternalServerError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
