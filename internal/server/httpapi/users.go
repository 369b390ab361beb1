package httpapi

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/remotetm/internal/common"
	"github.com/dmitrijs2005/remotetm/internal/server/models"
)

type authorizeRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

func (s *HTTPServer) authorize(w http.ResponseWriter, r *http.Request) {
	var req authorizeRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	ticket, err := s.accounts.Login(r.Context(), req.ID, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okBody("ticket", ticket))
}

// getUsers lists all users, or returns one with ?id=.
func (s *HTTPServer) getUsers(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r.Context())

	if id := r.URL.Query().Get("id"); id != "" {
		u, err := s.accounts.User(r.Context(), caller, id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, okBody("user", u))
		return
	}

	list, err := s.accounts.Users(r.Context(), caller)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okBody("users", list))
}

type usersCommand struct {
	Command     string `json:"command"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	Current     string `json:"current"`
	NewPassword string `json:"newPassword"`
}

func (c usersCommand) user() (*models.User, error) {
	role, err := models.ParseRole(c.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInvalidArgument, err)
	}
	return &models.User{ID: c.ID, Name: c.Name, Email: c.Email, Role: role}, nil
}

func (s *HTTPServer) postUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := callerFrom(ctx)

	var cmd usersCommand
	if err := decode(w, r, &cmd); err != nil {
		s.writeError(w, r, err)
		return
	}

	var err error
	switch cmd.Command {
	case "addUser", "updateUser":
		var u *models.User
		if u, err = cmd.user(); err != nil {
			break
		}
		if cmd.Command == "addUser" {
			err = s.accounts.AddUser(ctx, caller, u)
		} else {
			err = s.accounts.UpdateUser(ctx, caller, u)
		}
	case "removeUser":
		err = s.accounts.RemoveUser(ctx, caller, cmd.ID)
	case "toggleLock":
		err = s.accounts.ToggleLock(ctx, caller, cmd.ID)
	case "changePassword":
		err = s.accounts.ChangePassword(ctx, caller, cmd.Current, cmd.NewPassword)
	default:
		err = fmt.Errorf("%w: unknown command %q", common.ErrorInvalidArgument, cmd.Command)
	}

	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okBody())
}
