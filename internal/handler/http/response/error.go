package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperr"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses by their kind.
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	detail := apperr.DetailOf(err)
	switch apperr.KindOf(err) {
	case apperr.KindInvalidArgument:
		BadRequest(w, detail, nil)
	case apperr.KindUnauthenticated:
		Unauthorized(w, detail)
	case apperr.KindPermissionDenied:
		Forbidden(w, detail)
	case apperr.KindNotFound:
		NotFound(w, detail)
	case apperr.KindAlreadyExists:
		Conflict(w, detail)
	case apperr.KindPreconditionFailed:
		PreconditionFailed(w, detail)
	case apperr.KindUpstreamUnavailable:
		slog.Error("upstream unavailable", "error", err)
		ServiceUnavailable(w, "A backing service is unavailable, please retry")
	default:
		slog.Error("unexpected error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
