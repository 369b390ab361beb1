package httpapi

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/remotetm/internal/common"
	"github.com/dmitrijs2005/remotetm/internal/server/models"
)

func (s *HTTPServer) getMemories(w http.ResponseWriter, r *http.Request) {
	list, err := s.memories.Memories(r.Context(), callerFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okBody("memories", list))
}

type memoriesCommand struct {
	Command     string              `json:"command"`
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Project     string              `json:"project"`
	Subject     string              `json:"subject"`
	Client      string              `json:"client"`
	Permissions []models.Permission `json:"permissions"`
}

func (s *HTTPServer) postMemories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := callerFrom(ctx)

	var cmd memoriesCommand
	if err := decode(w, r, &cmd); err != nil {
		s.writeError(w, r, err)
		return
	}

	switch cmd.Command {
	case "addMemory":
		m, err := s.memories.AddMemory(ctx, caller, &models.Memory{
			ID:      cmd.ID,
			Name:    cmd.Name,
			Project: cmd.Project,
			Subject: cmd.Subject,
			Client:  cmd.Client,
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, okBody("memory", m))

	case "removeMemory":
		if err := s.memories.RemoveMemory(ctx, caller, cmd.ID); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, okBody())

	case "getPermissions":
		perms, err := s.memories.Permissions(ctx, caller, cmd.ID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, okBody("permissions", perms))

	case "setPermissions":
		if err := s.memories.SetPermissions(ctx, caller, cmd.ID, cmd.Permissions); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, okBody())

	case "getRights":
		rights, err := s.memories.Rights(ctx, caller, cmd.ID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, okBody("rights", rights))

	default:
		s.writeError(w, r, fmt.Errorf("%w: unknown command %q", common.ErrorInvalidArgument, cmd.Command))
	}
}
