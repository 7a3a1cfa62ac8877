package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internship-hub/internship-service/internal/domain/shared"
	"github.com/internship-hub/internship-service/internal/domain/solution"
	"github.com/internship-hub/internship-service/internal/domain/user"
)

// fakeArchiver переводит пользователя в ARCHIVED и архивирует его решения,
// как это делает транзакционная реализация в persistence.
type fakeArchiver struct {
	userRepo     *fakeUserRepo
	solutionRepo *fakeSolutionRepo
	calls        int
}

func (a *fakeArchiver) ArchiveWithSolutions(ctx context.Context, userID string) error {
	a.calls++
	u, err := a.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	u.Archive(time.Now())
	if err := a.userRepo.Update(ctx, u); err != nil {
		return err
	}
	return a.solutionRepo.ArchiveByUser(ctx, userID)
}

type archiveFixture struct {
	userRepo     *fakeUserRepo
	solutionRepo *fakeSolutionRepo
	provisioner  *fakeProvisioner
	archiver     *fakeArchiver
	handler      *ArchiveUserHandler
}

func newArchiveFixture(t *testing.T) *archiveFixture {
	t.Helper()

	f := &archiveFixture{
		userRepo:     newFakeUserRepo(),
		solutionRepo: newFakeSolutionRepo(),
		provisioner:  newFakeProvisioner(),
	}
	f.archiver = &fakeArchiver{userRepo: f.userRepo, solutionRepo: f.solutionRepo}
	f.handler = NewArchiveUserHandler(f.userRepo, f.archiver, f.provisioner, nil)

	now := time.Now()
	u, err := user.NewUser("user-1", "ivanov", "Ivan Ivanov", "ivanov@example.com", "hash", user.RoleUser, "internship-1", now)
	require.NoError(t, err)
	require.NoError(t, f.userRepo.Create(context.Background(), u))

	s, err := solution.NewSolution("solution-1", "https://gitlab.example.com/ivanov/task-http-server",
		"", "user-1", "task-1", now, now)
	require.NoError(t, err)
	require.NoError(t, f.solutionRepo.Create(context.Background(), s))

	return f
}

func TestArchiveUser(t *testing.T) {
	f := newArchiveFixture(t)

	err := f.handler.Handle(context.Background(), ArchiveUserCommand{UserID: "user-1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"ivanov"}, f.provisioner.blockedUsers)

	u, err := f.userRepo.GetByID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, user.RoleArchived, u.Role)

	s, err := f.solutionRepo.GetByID(context.Background(), "solution-1")
	require.NoError(t, err)
	assert.True(t, s.IsArchived)
}

func TestArchiveUser_BlockFailsBeforeLocalArchive(t *testing.T) {
	f := newArchiveFixture(t)
	f.provisioner.blockErr = errors.New("gitlab: 503 service unavailable")

	err := f.handler.Handle(context.Background(), ArchiveUserCommand{UserID: "user-1"})
	require.Error(t, err)

	// Отказ GitLab оставляет локальное состояние нетронутым: команду
	// можно безопасно повторить.
	assert.Equal(t, 0, f.archiver.calls)

	u, err := f.userRepo.GetByID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, user.RoleUser, u.Role)

	s, err := f.solutionRepo.GetByID(context.Background(), "solution-1")
	require.NoError(t, err)
	assert.False(t, s.IsArchived)
}

func TestArchiveUser_Idempotent(t *testing.T) {
	f := newArchiveFixture(t)

	require.NoError(t, f.handler.Handle(context.Background(), ArchiveUserCommand{UserID: "user-1"}))
	require.NoError(t, f.handler.Handle(context.Background(), ArchiveUserCommand{UserID: "user-1"}))

	// Второй вызов - no-op: аккаунт не блокируется повторно.
	assert.Equal(t, []string{"ivanov"}, f.provisioner.blockedUsers)
	assert.Equal(t, 1, f.archiver.calls)
}

func TestArchiveUser_NotFound(t *testing.T) {
	f := newArchiveFixture(t)

	err := f.handler.Handle(context.Background(), ArchiveUserCommand{UserID: "user-missing"})
	assert.ErrorIs(t, err, shared.ErrUserNotFound)
}
