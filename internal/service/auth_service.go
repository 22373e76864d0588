package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/accounts-service/internal/config"
	"github.com/accounts-service/internal/models"
	"github.com/accounts-service/internal/repository"
	"github.com/accounts-service/pkg/crypto"
	"github.com/accounts-service/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidCredentials is returned for an unknown account and for a
	// wrong password alike, so a caller can never probe which accounts
	// exist.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
)

// AuthService handles authentication operations
type AuthService struct {
	resolver  *IdentityResolver
	jwtConfig config.JWTConfig
	log       *logger.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(resolver *IdentityResolver, jwtConfig config.JWTConfig, log *logger.Logger) *AuthService {
	return &AuthService{
		resolver:  resolver,
		jwtConfig: jwtConfig,
		log:       log,
	}
}

// TokenResponse represents the JWT token response
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// JWTClaims represents the JWT claims
type JWTClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Authenticate verifies a login submission. The input must satisfy the login
// schema; the identifier is resolved to a user record and the password
// checked against the stored hash. Both an unknown account and a wrong
// password return ErrInvalidCredentials; the distinction is only logged.
func (s *AuthService) Authenticate(input map[string]interface{}) (*models.User, error) {
	values, verrs := LoginSchema.Validate(input, false)
	if verrs != nil {
		s.log.Error("op=login outcome=invalid: %v", verrs)
		return nil, verrs
	}

	identifier, _ := values.String(FieldIdentifier)
	password, _ := values.String(FieldPassword)

	user, err := s.resolver.Resolve(identifier)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.log.Info("op=login outcome=rejected reason=unknown_account identifier=%s", identifier)
			return nil, ErrInvalidCredentials
		}
		s.log.Error("op=login outcome=error identifier=%s: %v", identifier, err)
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	if !crypto.CheckPassword(password, user.PasswordHash) {
		s.log.Info("op=login outcome=rejected reason=bad_password user_id=%d", user.ID)
		return nil, ErrInvalidCredentials
	}

	s.log.Info("op=login outcome=ok user_id=%d username=%s", user.ID, user.Username)
	return user, nil
}

// Login authenticates a login submission and returns a JWT token
func (s *AuthService) Login(input map[string]interface{}) (*TokenResponse, error) {
	user, err := s.Authenticate(input)
	if err != nil {
		return nil, err
	}
	return s.generateToken(user)
}

// ValidateToken validates a JWT token and returns the claims
func (s *AuthService) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtConfig.Secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// generateToken generates a JWT token for a user
func (s *AuthService) generateToken(user *models.User) (*TokenResponse, error) {
	expiresIn := time.Duration(s.jwtConfig.ExpireHours) * time.Hour

	claims := &JWTClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "accounts-service",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return nil, err
	}

	return &TokenResponse{
		AccessToken: tokenString,
		TokenType:   "Bearer",
		ExpiresIn:   s.jwtConfig.ExpireHours * 3600,
	}, nil
}
