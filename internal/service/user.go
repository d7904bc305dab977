package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/bibliodesk/library-service/internal/errs"
	"github.com/bibliodesk/library-service/internal/model"
	"github.com/bibliodesk/library-service/internal/repository"
)

type UserService struct {
	log  *zap.Logger
	repo repository.Repository
}

func NewUserService(repo repository.Repository, log *zap.Logger) *UserService {
	return &UserService{
		log:  log,
		repo: repo,
	}
}

// Register creates a self-service account. Role and active flag are
// forced: every registration starts as an active USER.
func (s *UserService) Register(ctx context.Context, req model.UserCreateRequest) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, errors.Wrap(err, "hash password")
	}

	return s.repo.CreateUser(ctx, model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hash),
		Role:     model.RoleUser,
		Active:   true,
	})
}

// Authenticate verifies credentials. Deactivated users cannot log in.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.User{}, errs.ErrUnauthorized
		}
		return model.User{}, err
	}
	if !user.Active {
		return model.User{}, errs.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return model.User{}, errs.ErrUnauthorized
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (model.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return s.repo.GetUserByEmail(ctx, email)
}

func (s *UserService) ListUsers(ctx context.Context, activeOnly bool) ([]model.User, error) {
	return s.repo.ListUsers(ctx, activeOnly)
}

// UpdateUser is the administrative update: any field including role.
// The actor must be an ADMIN; route policy alone cannot express that
// for PUT, so it is enforced here.
func (s *UserService) UpdateUser(ctx context.Context, id int64, req model.UserUpdateRequest, actorEmail string) (model.User, error) {
	actor, err := s.repo.GetUserByEmail(ctx, actorEmail)
	if err != nil {
		return model.User{}, err
	}
	if actor.Role != model.RoleAdmin {
		return model.User{}, errs.ErrForbidden
	}

	existing, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}

	existing.Name = req.Name
	existing.Email = req.Email
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return model.User{}, errors.Wrap(err, "hash password")
		}
		existing.Password = string(hash)
	}
	if req.Role != "" {
		existing.Role = req.Role
	}

	return s.repo.UpdateUser(ctx, existing)
}

// UpdateCurrentUser is the self-service update: name, email and
// optionally password. Role is never touched through this path.
func (s *UserService) UpdateCurrentUser(ctx context.Context, email string, req model.UserUpdateRequest) (model.User, error) {
	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return model.User{}, err
	}

	existing.Name = req.Name
	existing.Email = req.Email
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return model.User{}, errors.Wrap(err, "hash password")
		}
		existing.Password = string(hash)
	}

	return s.repo.UpdateUser(ctx, existing)
}

// DeactivateUser soft-deletes: the row stays, active goes false.
func (s *UserService) DeactivateUser(ctx context.Context, id int64) error {
	return s.repo.SetUserActive(ctx, id, false)
}

// ActivateUser reverses a deactivation. ADMIN only.
func (s *UserService) ActivateUser(ctx context.Context, id int64, actorEmail string) (model.User, error) {
	actor, err := s.repo.GetUserByEmail(ctx, actorEmail)
	if err != nil {
		return model.User{}, err
	}
	if actor.Role != model.RoleAdmin {
		return model.User{}, errs.ErrForbidden
	}

	if err := s.repo.SetUserActive(ctx, id, true); err != nil {
		return model.User{}, err
	}
	return s.repo.GetUserByID(ctx, id)
}
