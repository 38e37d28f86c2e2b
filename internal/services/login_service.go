package services

import (
	"context"
	"fmt"

	"harcama/internal/api"
	"harcama/internal/core"
	"harcama/internal/log"
)

// SessionWriter is the part of the session store the login flow needs.
type SessionWriter interface {
	SetUser(ctx context.Context, user *core.User) error
}

// LoginService resolves an email to an account, creating it on first use,
// and records it as the current session.
type LoginService struct {
	users   api.UserDirectory
	session SessionWriter
	logger  *log.Logger
}

func NewLoginService(users api.UserDirectory, session SessionWriter, logger *log.Logger) *LoginService {
	if logger == nil {
		logger = log.Discard()
	}
	return &LoginService{
		users:   users,
		session: session,
		logger:  logger.WithComponent(log.ComponentSession),
	}
}

// Login looks email up and creates the user when the service reports it
// unknown. Lookup failures other than not-found are returned unchanged and
// never lead to a create.
func (s *LoginService) Login(ctx context.Context, email string) (core.User, error) {
	res, err := s.users.LookupUser(ctx, email)
	if err != nil {
		return core.User{}, fmt.Errorf("lookup user: %w", err)
	}

	user := res.User
	if res.Status == api.NotFound {
		user, err = s.users.CreateUser(ctx, email)
		if err != nil {
			return core.User{}, fmt.Errorf("create user: %w", err)
		}
		s.logger.InfoContext(ctx, "User created", log.FieldUserID, user.ID.String())
	}

	if err := s.session.SetUser(ctx, &user); err != nil {
		// The in-memory session is already set; only persistence failed.
		s.logger.WarnContext(ctx, "Failed to persist session",
			log.FieldOperation, log.OpLogin,
			log.FieldError, err.Error())
	}

	s.logger.InfoContext(ctx, "User logged in",
		log.FieldUserID, user.ID.String(),
		log.FieldOperation, log.OpLogin)
	return user, nil
}

// Logout clears the current session.
func (s *LoginService) Logout(ctx context.Context) error {
	if err := s.session.SetUser(ctx, nil); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.logger.InfoContext(ctx, "User logged out", log.FieldOperation, log.OpLogout)
	return nil
}
