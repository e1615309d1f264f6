package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/shivakharbanda/journalclub/internal/models"
	"github.com/shivakharbanda/journalclub/internal/repository"
	"github.com/shivakharbanda/journalclub/pkg/logger"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("username or email already in use")
)

// AuthService registers and authenticates users with opaque personal access
// tokens. Both Register and Login accept the caller's guest device token and
// trigger the guest-to-user engagement migration after the account is
// established.
type AuthService interface {
	Register(ctx context.Context, username, email, password, deviceToken string) (*models.User, string, error)
	Login(ctx context.Context, username, password, deviceToken string) (*models.User, string, error)
	Logout(ctx context.Context, userID uint64) error
	ValidateToken(ctx context.Context, token string) (*models.User, error)
}

type authService struct {
	userRepo         repository.UserRepository
	tokenRepo        repository.TokenRepository
	migrationService MigrationService
	tokenLifetime    time.Duration
	log              *logger.Logger
}

func NewAuthService(
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	migrationService MigrationService,
	tokenLifetime time.Duration,
	log *logger.Logger,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		tokenRepo:        tokenRepo,
		migrationService: migrationService,
		tokenLifetime:    tokenLifetime,
		log:              log,
	}
}

func (s *authService) Register(ctx context.Context, username, email, password, deviceToken string) (*models.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	id, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, "", ErrUserAlreadyExists
		}
		return nil, "", err
	}
	user.ID = id

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, "", err
	}

	s.migrateGuest(ctx, deviceToken, user.ID)
	s.log.WithUserID(user.ID).Info("User registered")
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, username, password, deviceToken string) (*models.User, string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, "", err
	}

	s.migrateGuest(ctx, deviceToken, user.ID)
	return user, token, nil
}

func (s *authService) Logout(ctx context.Context, userID uint64) error {
	return s.tokenRepo.DeleteUserTokens(ctx, userID)
}

func (s *authService) ValidateToken(ctx context.Context, token string) (*models.User, error) {
	return s.tokenRepo.ValidateToken(ctx, token)
}

func (s *authService) issueToken(ctx context.Context, user *models.User) (string, error) {
	return s.tokenRepo.Create(ctx, user.ID, "api", time.Now().Add(s.tokenLifetime))
}

// migrateGuest folds the guest's engagement into the account. A failed
// migration rolls back atomically and leaves the guest rows intact for the
// next login, so it never blocks authentication.
func (s *authService) migrateGuest(ctx context.Context, deviceToken string, userID uint64) {
	if err := s.migrationService.Migrate(ctx, deviceToken, userID); err != nil {
		s.log.WithUserID(userID).WithError(err).Warn("Guest migration deferred to next login")
	}
}
