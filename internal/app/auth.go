package service

import (
	"context"
	"time"

	"github.com/achievehub/achievehub/internal/adapters/auth"
	"github.com/achievehub/achievehub/internal/adapters/repository"
	"github.com/achievehub/achievehub/internal/domain/errs"
	"github.com/achievehub/achievehub/internal/domain/model"
	"github.com/achievehub/achievehub/pkg/logger"
)

// Session is returned by a successful Login.
type Session struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      model.User `json:"user"`
}

func badCredentials(op string) *errs.Error {
	return errs.E(op, errs.Unauthorized, errs.CodeBadCredentials, "invalid user id or password")
}

// Login checks a user's password and issues a session token. Unknown users
// and wrong passwords are reported the same way.
func (s *Service) Login(ctx context.Context, userID, password string) (Session, error) {
	const op = "service.Login"
	if s.tokens == nil {
		return Session{}, errs.E(op, errs.Unexpected, errs.CodeInternal, "login is not configured")
	}
	userID, err := required(op, "userId", userID)
	if err != nil {
		return Session{}, err
	}
	if password == "" {
		return Session{}, errs.E(op, errs.Validation, errs.CodeInvalidInput, "password is required").With("field", "password")
	}

	user, err := find[model.User](ctx, s, op, repository.Users, userID)
	if err != nil {
		return Session{}, err
	}
	if user == nil {
		return Session{}, badCredentials(op)
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		s.logger.Warn(ctx, "login rejected", logger.String("userId", userID))
		return Session{}, badCredentials(op)
	}

	token, exp, err := s.tokens.Issue(user.UserID, user.Role, user.StudentID)
	if err != nil {
		return Session{}, errs.Wrap(op, errs.Unexpected, errs.CodeInternal, err)
	}
	return Session{Token: token, ExpiresAt: exp, User: *user}, nil
}
