package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internship-hub/internship-service/internal/domain/provisioning"
	"github.com/internship-hub/internship-service/internal/domain/shared"
)

func pendingFork(t *testing.T, repo *fakeForkRepo, taskID, userID, username string) *provisioning.PendingFork {
	t.Helper()
	pf, err := provisioning.NewPendingFork(taskID, userID, username, 101, errors.New("gitlab: timeout"))
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), pf))
	return pf
}

func TestRetryPendingForks_SucceededRecordsAreDeleted(t *testing.T) {
	forkRepo := newFakeForkRepo()
	provisioner := newFakeProvisioner()
	handler := NewRetryPendingForksHandler(forkRepo, provisioner, nil)

	pendingFork(t, forkRepo, "task-1", "user-1", "ivanov")
	pendingFork(t, forkRepo, "task-1", "user-2", "petrov")

	result, err := handler.Handle(context.Background(), RetryPendingForksCommand{})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 0, forkRepo.count())
}

func TestRetryPendingForks_ExistingForkCountsAsSuccess(t *testing.T) {
	forkRepo := newFakeForkRepo()
	provisioner := newFakeProvisioner()
	provisioner.forkErrFor["ivanov"] = shared.ErrAlreadyExists
	handler := NewRetryPendingForksHandler(forkRepo, provisioner, nil)

	pendingFork(t, forkRepo, "task-1", "user-1", "ivanov")

	result, err := handler.Handle(context.Background(), RetryPendingForksCommand{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 0, forkRepo.count())
}

func TestRetryPendingForks_FailureIncrementsAttempts(t *testing.T) {
	forkRepo := newFakeForkRepo()
	provisioner := newFakeProvisioner()
	provisioner.forkErrFor["ivanov"] = errors.New("gitlab: 503 service unavailable")
	handler := NewRetryPendingForksHandler(forkRepo, provisioner, nil)

	pendingFork(t, forkRepo, "task-1", "user-1", "ivanov")

	result, err := handler.Handle(context.Background(), RetryPendingForksCommand{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Failed)

	pf, err := forkRepo.GetByTaskAndUser(context.Background(), "task-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, pf.Attempts)
	assert.Contains(t, pf.LastError, "503")
}

func TestRetryPendingForks_ExhaustedRecordsAreSkipped(t *testing.T) {
	forkRepo := newFakeForkRepo()
	provisioner := newFakeProvisioner()
	handler := NewRetryPendingForksHandler(forkRepo, provisioner, nil)

	pf := pendingFork(t, forkRepo, "task-1", "user-1", "ivanov")
	for !pf.Exhausted() {
		pf.RecordFailure(errors.New("gitlab: timeout"))
	}
	require.NoError(t, forkRepo.Update(context.Background(), pf))

	result, err := handler.Handle(context.Background(), RetryPendingForksCommand{})
	require.NoError(t, err)

	// Исчерпанная запись не ретраится автоматически и остаётся для
	// ручного вмешательства.
	assert.Equal(t, 0, result.Processed)
	assert.Equal(t, 1, result.Exhausted)
	assert.Empty(t, provisioner.forkCalls)
	assert.Equal(t, 1, forkRepo.count())
}

func TestRetryPendingForks_EmptyQueue(t *testing.T) {
	handler := NewRetryPendingForksHandler(newFakeForkRepo(), newFakeProvisioner(), nil)

	result, err := handler.Handle(context.Background(), RetryPendingForksCommand{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
}
