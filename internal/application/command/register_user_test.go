package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internship-hub/internship-service/internal/domain/shared"
	"github.com/internship-hub/internship-service/internal/domain/user"
)

func registerCmd() RegisterUserCommand {
	return RegisterUserCommand{
		Username:     "ivanov",
		Name:         "Ivan Ivanov",
		Email:        "ivanov@example.com",
		Password:     "correct-horse",
		Role:         "user",
		InternshipID: "internship-1",
	}
}

func TestRegisterUser_Intern(t *testing.T) {
	userRepo := newFakeUserRepo()
	provisioner := newFakeProvisioner()
	handler := NewRegisterUserHandler(userRepo, provisioner, fakeHasher{})

	result, err := handler.Handle(context.Background(), registerCmd())
	require.NoError(t, err)

	// Стажёр получает аккаунт в GitLab до локальной записи.
	assert.Equal(t, []string{"ivanov"}, provisioner.createdUsers)
	assert.NotZero(t, result.GitlabAccountID)

	u, err := userRepo.GetByID(context.Background(), result.UserID)
	require.NoError(t, err)
	assert.Equal(t, user.RoleUser, u.Role)
	assert.Equal(t, "hashed:correct-horse", u.PasswordHash)
	assert.Equal(t, "internship-1", u.InternshipID)
}

func TestRegisterUser_AdminSkipsProvisioning(t *testing.T) {
	userRepo := newFakeUserRepo()
	provisioner := newFakeProvisioner()
	handler := NewRegisterUserHandler(userRepo, provisioner, fakeHasher{})

	cmd := registerCmd()
	cmd.Role = "admin"
	cmd.InternshipID = ""

	result, err := handler.Handle(context.Background(), cmd)
	require.NoError(t, err)

	assert.Empty(t, provisioner.createdUsers)
	assert.Zero(t, result.GitlabAccountID)
}

func TestRegisterUser_InternRequiresInternship(t *testing.T) {
	handler := NewRegisterUserHandler(newFakeUserRepo(), newFakeProvisioner(), fakeHasher{})

	cmd := registerCmd()
	cmd.InternshipID = ""

	_, err := handler.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, shared.ErrEmptyValue)
}

func TestRegisterUser_DuplicateUsername(t *testing.T) {
	userRepo := newFakeUserRepo()
	provisioner := newFakeProvisioner()
	handler := NewRegisterUserHandler(userRepo, provisioner, fakeHasher{})

	_, err := handler.Handle(context.Background(), registerCmd())
	require.NoError(t, err)

	_, err = handler.Handle(context.Background(), registerCmd())
	assert.ErrorIs(t, err, shared.ErrUserExists)

	// Повторного похода в GitLab не было.
	assert.Equal(t, []string{"ivanov"}, provisioner.createdUsers)
}

func TestRegisterUser_OrphanedGitlabAccountTolerated(t *testing.T) {
	userRepo := newFakeUserRepo()
	provisioner := newFakeProvisioner()
	// Аккаунт остался от прошлой неудавшейся регистрации.
	provisioner.createAccErr = shared.ErrAlreadyExists
	handler := NewRegisterUserHandler(userRepo, provisioner, fakeHasher{})

	result, err := handler.Handle(context.Background(), registerCmd())
	require.NoError(t, err)

	assert.Zero(t, result.GitlabAccountID)

	_, err = userRepo.GetByUsername(context.Background(), "ivanov")
	require.NoError(t, err)
}

func TestRegisterUser_ShortPassword(t *testing.T) {
	handler := NewRegisterUserHandler(newFakeUserRepo(), newFakeProvisioner(), fakeHasher{})

	cmd := registerCmd()
	cmd.Password = "short"

	_, err := handler.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestRegisterUser_UnknownRole(t *testing.T) {
	handler := NewRegisterUserHandler(newFakeUserRepo(), newFakeProvisioner(), fakeHasher{})

	cmd := registerCmd()
	cmd.Role = "superuser"

	_, err := handler.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, shared.ErrInvalidRole)
}

func TestEnsureAdmin(t *testing.T) {
	userRepo := newFakeUserRepo()
	handler := NewEnsureAdminHandler(userRepo, fakeHasher{})

	cmd := EnsureAdminCommand{Username: "admin", Email: "admin@example.com", Password: "bootstrap-secret"}

	require.NoError(t, handler.Handle(context.Background(), cmd))

	u, err := userRepo.GetByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, u.Role)

	// Повторный старт сервиса не трогает существующего администратора.
	require.NoError(t, handler.Handle(context.Background(), cmd))

	all, err := userRepo.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
