package provisioning

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internship-hub/internship-service/internal/domain/shared"
)

func TestNewPendingFork(t *testing.T) {
	cause := errors.New("gitlab: 503 service unavailable")

	p, err := NewPendingFork("task-1", "user-1", "ivanov", 101, cause)
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, 1, p.Attempts)
	assert.Equal(t, cause.Error(), p.LastError)
	assert.False(t, p.Exhausted())
}

func TestNewPendingFork_Validation(t *testing.T) {
	_, err := NewPendingFork("", "user-1", "ivanov", 101, nil)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewPendingFork("task-1", "user-1", "", 101, nil)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewPendingFork("task-1", "user-1", "ivanov", 0, nil)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestPendingFork_Exhausted(t *testing.T) {
	p, err := NewPendingFork("task-1", "user-1", "ivanov", 101, errors.New("timeout"))
	require.NoError(t, err)

	for i := 1; i < MaxAttempts; i++ {
		assert.False(t, p.Exhausted(), "attempt %d", p.Attempts)
		p.RecordFailure(errors.New("timeout"))
	}

	assert.Equal(t, MaxAttempts, p.Attempts)
	assert.True(t, p.Exhausted())
}

func TestPendingFork_RecordFailure_KeepsLastErrorOnNil(t *testing.T) {
	p, err := NewPendingFork("task-1", "user-1", "ivanov", 101, errors.New("timeout"))
	require.NoError(t, err)

	p.RecordFailure(nil)
	assert.Equal(t, 2, p.Attempts)
	assert.Equal(t, "timeout", p.LastError)
}
