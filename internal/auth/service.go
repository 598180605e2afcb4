package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/moneylogger/moneylogger/internal/log"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrLoginAlreadyExists = errors.New("login already exists")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrEmailLength        = errors.New("email length is invalid")
	ErrLoginLength        = errors.New("login length is invalid")
	ErrPasswordLength     = errors.New("password length is invalid")
	ErrInternalError      = errors.New("internal server error")
)

const (
	bcryptCost        = 12
	minEmailLength    = 5
	maxEmailLength    = 254
	minLoginLength    = 3
	maxLoginLength    = 50
	minPasswordLength = 8
	maxPasswordLength = 72
)

type Service interface {
	Register(email, login, password string) (*User, error)
	Login(emailOrLogin, password string) (*User, string, string, error)
	RefreshAccessToken(userID string) (string, error)
	Logout(refreshToken string) error
	JWTAccessTokenMiddleware() func(http.Handler) http.Handler
	JWTRefreshTokenMiddleware() func(http.Handler) http.Handler
}

type service struct {
	repo       UserRepository
	jwtManager JWTManagerInterface
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     *log.Logger
}

func NewAuthService(repo UserRepository, jwtManager JWTManagerInterface, accessTTL, refreshTTL time.Duration, logger *log.Logger) Service {
	return &service{
		repo:       repo,
		jwtManager: jwtManager,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		logger:     logger.WithComponent(log.ComponentAuth),
	}
}

func hashPassword(password string) (string, error) {
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(hashedPasswordBytes), err
}

func generateHashToken() (string, error) {
	token := make([]byte, 32)
	if _, err := rand.Read(token); err != nil {
		return "", fmt.Errorf("could not generate hash token: %w", err)
	}
	return hex.EncodeToString(token), nil
}

func validateEmailAddress(email string) error {
	if err := checkmail.ValidateFormat(email); err != nil {
		return ErrInvalidEmail
	}
	// Host validation can time out behind firewalls, carry on when it does.
	if err := checkmail.ValidateHost(email); err != nil {
		if !strings.Contains(err.Error(), "timeout") {
			return ErrInvalidEmail
		}
	}
	if len(email) > maxEmailLength || len(email) <= minEmailLength {
		return ErrEmailLength
	}
	return nil
}

func (s *service) Register(email, login, password string) (*User, error) {
	if err := validateEmailAddress(email); err != nil {
		return nil, err
	}
	if login == "" {
		login, _, _ = strings.Cut(email, "@")
	}
	if len(login) > maxLoginLength || len(login) < minLoginLength {
		return nil, ErrLoginLength
	}
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return nil, ErrPasswordLength
	}

	existingUser, err := s.repo.userExistsByLoginOrEmail(login, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		s.logger.Error("could not check user existence", "error", err)
		return nil, ErrInternalError
	}
	if existingUser != nil {
		if existingUser.Login == login {
			return nil, ErrLoginAlreadyExists
		}
		return nil, ErrEmailAlreadyExists
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		s.logger.Error("could not hash password", "error", err)
		return nil, ErrInternalError
	}
	hashToken, err := generateHashToken()
	if err != nil {
		s.logger.Error("could not generate hash token", "error", err)
		return nil, ErrInternalError
	}

	user := &User{
		ID:           uuid.NewString(),
		Email:        email,
		Login:        login,
		PasswordHash: passwordHash,
		HashToken:    hashToken,
	}
	if err := s.repo.createUser(user); err != nil {
		s.logger.Error("could not create user", "error", err)
		return nil, ErrInternalError
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (s *service) Login(emailOrLogin, password string) (*User, string, string, error) {
	existingUser, err := s.repo.getUserByLoginOrEmail(emailOrLogin)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", "", ErrInvalidCredentials
		}
		s.logger.Error("could not load user", "error", err)
		return nil, "", "", ErrInternalError
	}

	if err := bcrypt.CompareHashAndPassword([]byte(existingUser.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, err := s.jwtManager.GenerateAccessJWT(existingUser.ID, s.accessTTL)
	if err != nil {
		s.logger.Error("could not generate access token", "error", err)
		return nil, "", "", ErrInternalError
	}
	refreshToken, err := s.jwtManager.GenerateRefreshJWT(existingUser.ID, existingUser.HashToken, s.refreshTTL)
	if err != nil {
		s.logger.Error("could not generate refresh token", "error", err)
		return nil, "", "", ErrInternalError
	}

	s.logger.Info("user logged in", "user_id", existingUser.ID)
	return existingUser, accessToken, refreshToken, nil
}

func (s *service) RefreshAccessToken(userID string) (string, error) {
	if _, err := s.repo.getUserByID(userID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		s.logger.Error("could not load user", "error", err)
		return "", ErrInternalError
	}

	accessToken, err := s.jwtManager.GenerateAccessJWT(userID, s.accessTTL)
	if err != nil {
		s.logger.Error("could not generate access token", "error", err)
		return "", ErrInternalError
	}
	return accessToken, nil
}

// Logout rotates the user's stored hash token so every refresh token
// issued before the call stops validating.
func (s *service) Logout(refreshToken string) error {
	userID, err := s.jwtManager.ExtractUserIDFromRefreshToken(refreshToken)
	if err != nil {
		return err
	}
	hashToken, err := generateHashToken()
	if err != nil {
		s.logger.Error("could not generate hash token", "error", err)
		return ErrInternalError
	}
	if err := s.repo.updateHashToken(userID, hashToken); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("could not rotate hash token", "error", err)
		return ErrInternalError
	}
	s.logger.Info("user logged out", "user_id", userID)
	return nil
}
