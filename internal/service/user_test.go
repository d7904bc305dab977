package service

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/bibliodesk/library-service/internal/errs"
	"github.com/bibliodesk/library-service/internal/model"
	"github.com/bibliodesk/library-service/internal/repository/mocks"
)

func newUserService(t *testing.T) (*UserService, *mocks.MockRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	return NewUserService(repo, zap.NewNop()), repo
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestUserService_Register(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("role and active are forced", func(t *testing.T) {
		t.Parallel()
		svc, repo := newUserService(t)
		repo.EXPECT().CreateUser(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, u model.User) (model.User, error) {
				require.Equal(t, model.RoleUser, u.Role)
				require.True(t, u.Active)
				require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret1")))
				u.ID = 7
				return u, nil
			})

		user, err := svc.Register(ctx, model.UserCreateRequest{
			Name:     "Reader",
			Email:    "reader@mail.ru",
			Password: "secret1",
		})
		require.NoError(t, err)
		require.EqualValues(t, 7, user.ID)
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()
		svc, repo := newUserService(t)
		repo.EXPECT().CreateUser(ctx, gomock.Any()).Return(model.User{}, errs.ErrAlreadyExists)

		_, err := svc.Register(ctx, model.UserCreateRequest{
			Name:     "Reader",
			Email:    "reader@mail.ru",
			Password: "secret1",
		})
		require.ErrorIs(t, err, errs.ErrAlreadyExists)
	})
}

func TestUserService_Authenticate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	const password = "secret1"

	active := model.User{ID: 7, Email: "reader@mail.ru", Role: model.RoleUser, Active: true}

	tests := []struct {
		name     string
		password string
		mock     func(t *testing.T, r *mocks.MockRepository)
		wantErr  error
	}{
		{
			name:     "ok",
			password: password,
			mock: func(t *testing.T, r *mocks.MockRepository) {
				u := active
				u.Password = hashOf(t, password)
				r.EXPECT().GetUserByEmail(ctx, active.Email).Return(u, nil)
			},
		},
		{
			name:     "wrong password",
			password: "nope",
			mock: func(t *testing.T, r *mocks.MockRepository) {
				u := active
				u.Password = hashOf(t, password)
				r.EXPECT().GetUserByEmail(ctx, active.Email).Return(u, nil)
			},
			wantErr: errs.ErrUnauthorized,
		},
		{
			name:     "unknown email maps to unauthorized",
			password: password,
			mock: func(t *testing.T, r *mocks.MockRepository) {
				r.EXPECT().GetUserByEmail(ctx, active.Email).Return(model.User{}, errs.ErrNotFound)
			},
			wantErr: errs.ErrUnauthorized,
		},
		{
			name:     "deactivated account",
			password: password,
			mock: func(t *testing.T, r *mocks.MockRepository) {
				u := active
				u.Password = hashOf(t, password)
				u.Active = false
				r.EXPECT().GetUserByEmail(ctx, active.Email).Return(u, nil)
			},
			wantErr: errs.ErrUnauthorized,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, repo := newUserService(t)
			tt.mock(t, repo)

			user, err := svc.Authenticate(ctx, active.Email, tt.password)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, active.Email, user.Email)
		})
	}
}

func TestUserService_UpdateUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	admin := model.User{ID: 1, Email: "admin@mail.ru", Role: model.RoleAdmin, Active: true}
	librarian := model.User{ID: 2, Email: "lib@mail.ru", Role: model.RoleLibrarian, Active: true}
	target := model.User{ID: 7, Name: "Old", Email: "old@mail.ru", Role: model.RoleUser, Active: true}

	t.Run("admin promotes a user", func(t *testing.T) {
		t.Parallel()
		svc, repo := newUserService(t)
		repo.EXPECT().GetUserByEmail(ctx, admin.Email).Return(admin, nil)
		repo.EXPECT().GetUserByID(ctx, target.ID).Return(target, nil)
		repo.EXPECT().UpdateUser(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, u model.User) (model.User, error) {
				require.Equal(t, model.RoleLibrarian, u.Role)
				require.Equal(t, "New", u.Name)
				return u, nil
			})

		updated, err := svc.UpdateUser(ctx, target.ID, model.UserUpdateRequest{
			Name:  "New",
			Email: "new@mail.ru",
			Role:  model.RoleLibrarian,
		}, admin.Email)
		require.NoError(t, err)
		require.Equal(t, model.RoleLibrarian, updated.Role)
	})

	t.Run("non-admin actor is refused", func(t *testing.T) {
		t.Parallel()
		svc, repo := newUserService(t)
		repo.EXPECT().GetUserByEmail(ctx, librarian.Email).Return(librarian, nil)

		_, err := svc.UpdateUser(ctx, target.ID, model.UserUpdateRequest{
			Name:  "New",
			Email: "new@mail.ru",
		}, librarian.Email)
		require.ErrorIs(t, err, errs.ErrForbidden)
	})
}

func TestUserService_UpdateCurrentUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	existing := model.User{ID: 7, Name: "Old", Email: "reader@mail.ru", Role: model.RoleUser, Active: true}

	svc, repo := newUserService(t)
	repo.EXPECT().GetUserByEmail(ctx, existing.Email).Return(existing, nil)
	repo.EXPECT().UpdateUser(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, u model.User) (model.User, error) {
			// self-service update never changes the role
			require.Equal(t, model.RoleUser, u.Role)
			require.Equal(t, "New", u.Name)
			return u, nil
		})

	_, err := svc.UpdateCurrentUser(ctx, existing.Email, model.UserUpdateRequest{
		Name:  "New",
		Email: existing.Email,
		Role:  model.RoleAdmin,
	})
	require.NoError(t, err)
}

func TestUserService_ActivateUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	admin := model.User{ID: 1, Email: "admin@mail.ru", Role: model.RoleAdmin, Active: true}
	reader := model.User{ID: 7, Email: "reader@mail.ru", Role: model.RoleUser, Active: false}

	t.Run("admin reactivates", func(t *testing.T) {
		t.Parallel()
		svc, repo := newUserService(t)
		activated := reader
		activated.Active = true
		repo.EXPECT().GetUserByEmail(ctx, admin.Email).Return(admin, nil)
		repo.EXPECT().SetUserActive(ctx, reader.ID, true).Return(nil)
		repo.EXPECT().GetUserByID(ctx, reader.ID).Return(activated, nil)

		user, err := svc.ActivateUser(ctx, reader.ID, admin.Email)
		require.NoError(t, err)
		require.True(t, user.Active)
	})

	t.Run("non-admin actor is refused", func(t *testing.T) {
		t.Parallel()
		svc, repo := newUserService(t)
		repo.EXPECT().GetUserByEmail(ctx, reader.Email).Return(reader, nil)

		_, err := svc.ActivateUser(ctx, 8, reader.Email)
		require.ErrorIs(t, err, errs.ErrForbidden)
	})
}
