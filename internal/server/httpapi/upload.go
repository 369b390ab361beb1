package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/remotetm/internal/server/upload"
)

func (s *HTTPServer) upload(w http.ResponseWriter, r *http.Request) {
	body := r.Body
	if s.maxUploadSize > 0 {
		body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)
	}

	key, err := s.uploader.Receive(r.Context(), r.Header.Get("Content-Type"), body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = upload.ErrTooLarge
		}
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "file uploaded", "key", key, "by", callerFrom(r.Context()).ID)
	writeJSON(w, http.StatusOK, okBody("file", key))
}
