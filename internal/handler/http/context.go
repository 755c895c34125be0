package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
)

// principalFromRequest returns the authenticated caller, writing 401 when
// the route was mounted without AuthRequired.
func principalFromRequest(w http.ResponseWriter, r *http.Request) (user.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return user.Principal{}, false
	}
	return p, true
}

// decodeJSON decodes the request body into v. An empty body is accepted
// when optional is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, op string, v any, optional bool) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}
	slog.Error(op+" decode error", "error", err)
	response.BadRequest(w, "Invalid request format", nil)
	return false
}
