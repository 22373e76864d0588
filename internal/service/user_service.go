package service

import (
	"errors"
	"fmt"

	"github.com/accounts-service/internal/events"
	"github.com/accounts-service/internal/models"
	"github.com/accounts-service/internal/repository"
	"github.com/accounts-service/internal/validation"
	"github.com/accounts-service/pkg/crypto"
	"github.com/accounts-service/pkg/logger"
)

var (
	ErrUsernameTaken    = errors.New("username already taken")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrStorageFailure   = errors.New("storage operation failed")
)

// UserService handles the user account lifecycle
type UserService struct {
	users  repository.UserStore
	events *events.Publisher
	log    *logger.Logger
}

// NewUserService creates a new UserService
func NewUserService(users repository.UserStore, publisher *events.Publisher, log *logger.Logger) *UserService {
	return &UserService{
		users:  users,
		events: publisher,
		log:    log,
	}
}

// Create registers a new user from a raw field map. All required fields must
// validate; the username must be free; the password is stored only as a
// bcrypt hash.
func (s *UserService) Create(input map[string]interface{}) (*models.User, error) {
	values, verrs := UserSchema.Validate(input, false)
	if verrs != nil {
		s.log.Error("op=create_user outcome=invalid: %v", verrs)
		return nil, verrs
	}

	username, _ := values.String(FieldUsername)
	taken, err := s.users.ExistsByUsername(username)
	if err != nil {
		s.log.Error("op=create_user outcome=error username=%s: %v", username, err)
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if taken {
		s.log.Error("op=create_user outcome=conflict username=%s", username)
		return nil, ErrUsernameTaken
	}

	password, _ := values.String(FieldPassword)
	hash, err := crypto.HashPassword(password)
	if err != nil {
		s.log.Error("op=create_user outcome=error username=%s: %v", username, err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
	}
	applyValues(user, values)

	if err := s.users.Create(user); err != nil {
		// The upfront check races with concurrent creates; the unique index
		// has the final word.
		if errors.Is(err, repository.ErrDuplicateUsername) {
			s.log.Error("op=create_user outcome=conflict username=%s", username)
			return nil, ErrUsernameTaken
		}
		s.log.Error("op=create_user outcome=error username=%s: %v", username, err)
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	s.log.Info("op=create_user outcome=ok user_id=%d username=%s", user.ID, user.Username)
	s.events.UserCreated(user)
	return user, nil
}

// Get returns the user record for the id
func (s *UserService) Get(id uint) (*models.User, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.log.Error("op=get_user outcome=not_found user_id=%d", id)
			return nil, err
		}
		s.log.Error("op=get_user outcome=error user_id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	s.log.Info("op=get_user outcome=ok user_id=%d", id)
	return user, nil
}

// Update merges the supplied fields into the acting user's record. Omitted
// fields keep their current values. A supplied password is validated like any
// other field but never merged; credential changes are not a profile-update
// concern.
func (s *UserService) Update(actingID uint, input map[string]interface{}) (*models.User, error) {
	if actingID == 0 {
		s.log.Error("op=update_user outcome=unauthorized")
		return nil, ErrNotAuthenticated
	}

	user, err := s.users.GetByID(actingID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.log.Error("op=update_user outcome=not_found user_id=%d", actingID)
			return nil, err
		}
		s.log.Error("op=update_user outcome=error user_id=%d: %v", actingID, err)
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	values, verrs := UserSchema.Validate(input, true)
	if verrs != nil {
		s.log.Error("op=update_user outcome=invalid user_id=%d: %v", actingID, verrs)
		return nil, verrs
	}

	if username, ok := values.String(FieldUsername); ok && username != user.Username {
		taken, err := s.users.ExistsByUsername(username)
		if err != nil {
			s.log.Error("op=update_user outcome=error user_id=%d: %v", actingID, err)
			return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		if taken {
			s.log.Error("op=update_user outcome=conflict user_id=%d username=%s", actingID, username)
			return nil, ErrUsernameTaken
		}
	}

	applyValues(user, values)

	if err := s.users.Update(user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			s.log.Error("op=update_user outcome=conflict user_id=%d", actingID)
			return nil, ErrUsernameTaken
		}
		s.log.Error("op=update_user outcome=error user_id=%d: %v", actingID, err)
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	s.log.Info("op=update_user outcome=ok user_id=%d fields=%d", user.ID, len(values))
	s.events.UserUpdated(user)
	return user, nil
}

// Delete permanently removes the acting user's record. Any persistence
// failure, including the record being gone already, surfaces as a storage
// failure.
func (s *UserService) Delete(actingID uint) error {
	if actingID == 0 {
		s.log.Error("op=delete_user outcome=unauthorized")
		return ErrNotAuthenticated
	}

	if err := s.users.Delete(actingID); err != nil {
		s.log.Error("op=delete_user outcome=error user_id=%d: %v", actingID, err)
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	s.log.Info("op=delete_user outcome=ok user_id=%d", actingID)
	s.events.UserDeleted(actingID)
	return nil
}

// applyValues merges the supplied, validated fields into the record. The
// password is intentionally absent: Create hashes it separately and Update
// drops it.
func applyValues(user *models.User, values validation.Values) {
	if v, ok := values.String(FieldUsername); ok {
		user.Username = v
	}
	if v, ok := values.String(FieldFirstName); ok {
		user.FirstName = v
	}
	if v, ok := values.String(FieldLastName); ok {
		user.LastName = v
	}
	if v, ok := values.String(FieldEmail); ok {
		user.Email = v
	}
	if t, ok := values.Time(FieldBirthdate); ok {
		birthdate := t
		user.Birthdate = &birthdate
	} else if values.IsNull(FieldBirthdate) {
		user.Birthdate = nil
	}
	if n, ok := values.Int64(FieldNationalID); ok {
		nationalID := n
		user.NationalID = &nationalID
	} else if values.IsNull(FieldNationalID) {
		user.NationalID = nil
	}
	if v, ok := values.String(FieldPhoneNumber); ok {
		user.PhoneNumber = v
	}
	if w, ok := values.Float(FieldWallet); ok {
		user.Wallet = w
	}
}
