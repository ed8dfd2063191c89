package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gudangmitra/gudang-backend/internal/users"
	pkgAuth "github.com/gudangmitra/gudang-backend/pkg/auth"
	"github.com/gudangmitra/gudang-backend/pkg/config"
	"github.com/gudangmitra/gudang-backend/pkg/db/models"
	"github.com/gudangmitra/gudang-backend/pkg/enums"
	pkgerrors "github.com/gudangmitra/gudang-backend/pkg/errors"
	"github.com/gudangmitra/gudang-backend/pkg/logger"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error)
}

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

type userCreator interface {
	Create(ctx context.Context, input users.CreateUserInput) (*users.CreateUserResult, error)
}

type passwordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
	NeedsRehash(encoded string) bool
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo     userRepository
	Users        userCreator
	Hasher       passwordHasher
	JWTConfig    config.JWTConfig
	OpenRegister bool
	Logger       *logger.Logger
	Now          func() time.Time
}

type service struct {
	users        userRepository
	creator      userCreator
	hasher       passwordHasher
	jwtCfg       config.JWTConfig
	openRegister bool
	logg         *logger.Logger
	now          func() time.Time
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users service is required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		users:        params.UserRepo,
		creator:      params.Users,
		hasher:       params.Hasher,
		jwtCfg:       params.JWTConfig,
		openRegister: params.OpenRegister,
		logg:         params.Logger,
		now:          now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error) {
	if !s.openRegister {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "registration is closed")
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}

	if _, err := s.creator.Create(ctx, users.CreateUserInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       enums.UserRoleUser,
		Department: req.Department,
	}); err != nil {
		return nil, err
	}

	return s.Login(ctx, LoginRequest{Email: req.Email, Password: req.Password})
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user, password)
	}
	return user, nil
}

// rehash upgrades a hash minted with older parameters. Failure keeps the old
// hash and never blocks the login.
func (s *service) rehash(ctx context.Context, user *models.User, password string) {
	hash, err := s.hasher.Hash(password)
	if err == nil {
		err = s.users.UpdatePasswordHash(ctx, user.ID, hash)
	}
	if err != nil {
		ctx = s.logg.WithUserID(ctx, user.ID.String())
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "password rehash failed")
		return
	}
	user.PasswordHash = hash
}

func (s *service) issue(user *models.User) (*LoginResponse, error) {
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now(), pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		Name:   user.Name,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   s.jwtCfg.ExpirationMinutes * 60,
		User:        users.FromModel(user),
	}, nil
}
