package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/remotetm/internal/common"
)

const maxJSONBody = 1 << 20

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// okBody returns the success envelope with the given extra fields.
func okBody(kv ...any) map[string]any {
	body := map[string]any{common.StatusKey: common.StatusOK}
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			body[k] = kv[i+1]
		}
	}
	return body
}

func errorBody(reason string) map[string]any {
	return map[string]any{common.StatusKey: common.StatusErr, common.ReasonKey: reason}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrorAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorDuplicateKey), errors.Is(err, common.ErrorResourceInUse):
		return http.StatusConflict
	case errors.Is(err, common.ErrorInvalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err to a status code. Internal failures are logged and
// reported without detail.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	reason := err.Error()
	if code == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		reason = common.ErrorInternal.Error()
	}
	writeJSON(w, code, errorBody(reason))
}

// decode reads a JSON request body into v.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", common.ErrorInvalidArgument, err)
	}
	return nil
}
