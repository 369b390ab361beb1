package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/remotetm/internal/common"
	"github.com/dmitrijs2005/remotetm/internal/server/mail"
)

type emailServerResponse struct {
	Status string `json:"status"`
	mail.Settings
}

func (s *HTTPServer) getEmailServer(w http.ResponseWriter, r *http.Request) {
	settings, err := s.mailSettings.Load()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emailServerResponse{Status: common.StatusOK, Settings: settings})
}

func (s *HTTPServer) postEmailServer(w http.ResponseWriter, r *http.Request) {
	var settings mail.Settings
	if err := decode(w, r, &settings); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.mailSettings.Save(settings); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info(r.Context(), "mail server settings saved", "server", settings.Server, "by", callerFrom(r.Context()).ID)
	writeJSON(w, http.StatusOK, okBody())
}
