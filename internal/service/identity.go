package service

import (
	"errors"

	"github.com/accounts-service/internal/models"
	"github.com/accounts-service/internal/repository"
	"github.com/accounts-service/internal/validation"
	"github.com/accounts-service/pkg/logger"
)

// IdentityResolver maps a login identifier to a user record. An email-shaped
// identifier is looked up by email, anything else by username. The branch is
// a strict either/or: an email-shaped identifier with no matching record is
// never retried as a username.
type IdentityResolver struct {
	users repository.UserStore
	log   *logger.Logger
}

// NewIdentityResolver creates a new IdentityResolver
func NewIdentityResolver(users repository.UserStore, log *logger.Logger) *IdentityResolver {
	return &IdentityResolver{users: users, log: log}
}

// Resolve returns the user record for the identifier, or
// repository.ErrUserNotFound when neither lookup strategy matches
func (r *IdentityResolver) Resolve(identifier string) (*models.User, error) {
	if validation.IsEmailShaped(identifier) {
		user, err := r.users.GetByEmail(identifier)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				r.log.Error("identifier %q does not exist as a registered email", identifier)
			}
			return nil, err
		}
		return user, nil
	}

	user, err := r.users.GetByUsername(identifier)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			r.log.Error("identifier %q does not exist as a registered username", identifier)
		}
		return nil, err
	}
	return user, nil
}
