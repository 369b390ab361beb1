// Package services contains the request-level business logic: who may do
// what, and the multi-step flows built on the store. This file covers
// accounts: login, tickets and user administration.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/remotetm/internal/common"
	"github.com/dmitrijs2005/remotetm/internal/logging"
	"github.com/dmitrijs2005/remotetm/internal/server/auth"
	"github.com/dmitrijs2005/remotetm/internal/server/config"
	"github.com/dmitrijs2005/remotetm/internal/server/models"
	"github.com/dmitrijs2005/remotetm/internal/server/store"
)

// generatedPasswordLength is the length of passwords mailed to new users.
const generatedPasswordLength = 12

// Notifier tells a new user about their account.
type Notifier interface {
	SendAccountNotice(ctx context.Context, user *models.User, password string) error
}

type AccountService struct {
	store          *store.Store
	notifier       Notifier
	jwtSecret      []byte
	ticketValidity time.Duration
	mailTimeout    time.Duration
	log            logging.Logger

	generatePassword func(int) (string, error)
}

func NewAccountService(st *store.Store, notifier Notifier, cfg *config.Config, log logging.Logger) *AccountService {
	return &AccountService{
		store:            st,
		notifier:         notifier,
		jwtSecret:        []byte(cfg.SecretKey),
		ticketValidity:   cfg.TicketValidityDuration,
		mailTimeout:      cfg.MailTimeout,
		log:              log.With("module", "accounts"),
		generatePassword: common.GeneratePassword,
	}
}

// Login checks the credentials and returns a session ticket.
func (s *AccountService) Login(ctx context.Context, id, password string) (string, error) {
	user, err := s.store.Authenticate(ctx, id, password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			s.log.Warn(ctx, "login refused", "user", id)
		}
		return "", err
	}

	ticket, err := auth.GenerateToken(user.ID, s.jwtSecret, s.ticketValidity)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	return ticket, nil
}

// Caller resolves a ticket to an active user.
func (s *AccountService) Caller(ctx context.Context, ticket string) (*models.User, error) {
	if ticket == "" {
		return nil, common.ErrorUnauthorized
	}
	id, err := auth.GetUserIDFromToken(ticket, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Active {
		return nil, common.ErrorUnauthorized
	}
	return user, nil
}

func requireAdmin(caller *models.User) error {
	if caller == nil || !caller.IsAdmin() {
		return common.ErrorAccessDenied
	}
	return nil
}

func validateUser(u *models.User) error {
	if strings.TrimSpace(u.ID) == "" || strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("%w: id and name are required", common.ErrorInvalidArgument)
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return fmt.Errorf("%w: invalid email %q", common.ErrorInvalidArgument, u.Email)
	}
	if !u.Role.Valid() {
		return fmt.Errorf("%w: invalid role", common.ErrorInvalidArgument)
	}
	return nil
}

// Users lists every account. Administrators only.
func (s *AccountService) Users(ctx context.Context, caller *models.User) ([]*models.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.store.ListUsers(ctx)
}

// User returns one account. Users may read their own record; everything
// else needs an administrator.
func (s *AccountService) User(ctx context.Context, caller *models.User, id string) (*models.User, error) {
	if caller == nil {
		return nil, common.ErrorAccessDenied
	}
	if caller.ID != id {
		if err := requireAdmin(caller); err != nil {
			return nil, err
		}
	}
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

// AddUser creates an active account with a generated password and mails the
// credentials. The account is committed before mailing so the store stays
// available while SMTP runs. When the mail cannot be sent the account is
// removed again.
func (s *AccountService) AddUser(ctx context.Context, caller *models.User, user *models.User) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if err := validateUser(user); err != nil {
		return err
	}

	password, err := s.generatePassword(generatedPasswordLength)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	u := *user
	u.Active = true
	u.PasswordChanged = false

	if err := s.store.CreateUser(ctx, &u, password); err != nil {
		return err
	}

	if err := s.sendNotice(ctx, &u, password); err != nil {
		// a fresh account owns nothing, so removal cannot hit ErrorResourceInUse
		if rmErr := s.store.RemoveUser(context.WithoutCancel(ctx), u.ID); rmErr != nil {
			s.log.Error(ctx, "removing unnotified user failed", "user", u.ID, "error", rmErr)
		}
		return err
	}

	s.log.Info(ctx, "user created", "user", u.ID, "role", u.Role.Code(), "by", caller.ID)
	return nil
}

func (s *AccountService) sendNotice(ctx context.Context, u *models.User, password string) error {
	if s.mailTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.mailTimeout)
		defer cancel()
	}
	return s.notifier.SendAccountNotice(ctx, u, password)
}

// UpdateUser changes name, email and role of an existing account.
func (s *AccountService) UpdateUser(ctx context.Context, caller *models.User, user *models.User) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if err := validateUser(user); err != nil {
		return err
	}

	current, err := s.store.GetUser(ctx, user.ID)
	if err != nil {
		return err
	}
	if current == nil {
		return common.ErrorNotFound
	}
	if current.ID == caller.ID && user.Role != models.SystemAdministrator {
		return fmt.Errorf("%w: cannot drop own administrator role", common.ErrorInvalidArgument)
	}

	current.Name = user.Name
	current.Email = user.Email
	current.Role = user.Role
	return s.store.UpdateUser(ctx, current)
}

// ToggleLock flips the active flag of an account.
func (s *AccountService) ToggleLock(ctx context.Context, caller *models.User, id string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if id == caller.ID {
		return fmt.Errorf("%w: cannot lock own account", common.ErrorInvalidArgument)
	}

	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if u == nil {
		return common.ErrorNotFound
	}

	u.Active = !u.Active
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return err
	}
	s.log.Info(ctx, "user lock toggled", "user", id, "active", u.Active, "by", caller.ID)
	return nil
}

// RemoveUser deletes an account that owns no memory.
func (s *AccountService) RemoveUser(ctx context.Context, caller *models.User, id string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if id == caller.ID {
		return fmt.Errorf("%w: cannot remove own account", common.ErrorInvalidArgument)
	}
	if err := s.store.RemoveUser(ctx, id); err != nil {
		return err
	}
	s.log.Info(ctx, "user removed", "user", id, "by", caller.ID)
	return nil
}

// ChangePassword replaces the caller's own password after checking the
// current one.
func (s *AccountService) ChangePassword(ctx context.Context, caller *models.User, current, newPassword string) error {
	if caller == nil {
		return common.ErrorAccessDenied
	}
	if newPassword == "" {
		return fmt.Errorf("%w: empty password", common.ErrorInvalidArgument)
	}

	ok, err := s.store.VerifyPassword(ctx, caller.ID, current)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrorAccessDenied
	}
	return s.store.SetPassword(ctx, caller.ID, newPassword)
}
