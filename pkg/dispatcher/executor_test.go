package dispatcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/flowboard/flowboard/pkg/mocks"
	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/persistence/memory"
	"github.com/flowboard/flowboard/pkg/protocol"
	"github.com/flowboard/flowboard/pkg/registry"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubFactory struct {
	id     string
	output map[string]any
	err    error
}

func (f *stubFactory) ID() string { return f.id }

func (f *stubFactory) Schema() map[string]any {
	return map[string]any{"type": "object"}
}

func (f *stubFactory) Create(_ map[string]any) (protocol.Action, error) {
	return &stubAction{output: f.output, err: f.err}, nil
}

type stubAction struct {
	output map[string]any
	err    error
}

func (a *stubAction) Execute(_ context.Context, _ models.TriggerContext, _ *slog.Logger) (map[string]any, error) {
	if a.err != nil {
		return nil, a.err
	}

	return a.output, nil
}

func stubRegistry(factories ...*stubFactory) *registry.Registry {
	reg := registry.NewRegistry(testLogger())
	for _, factory := range factories {
		reg.Register(factory)
	}

	return reg
}

func testRule(actions ...models.ActionSpec) *models.Rule {
	return &models.Rule{
		ID:             "rule-1",
		OrganizationID: "org-1",
		Name:           "test rule",
		TriggerType:    models.TriggerCardCreated,
		Actions:        actions,
		IsActive:       true,
	}
}

func TestExecutor_Execute_AllActionsSucceed(t *testing.T) {
	p := memory.NewPersistence()
	reg := stubRegistry(
		&stubFactory{id: "first", output: map[string]any{"success": true}},
		&stubFactory{id: "second", output: map[string]any{"success": true}},
	)

	executor := NewExecutor(reg, NewRecorder(p, testLogger()), testLogger())
	rule := testRule(models.ActionSpec{Type: "first"}, models.ActionSpec{Type: "second"})

	execution, err := executor.Execute(context.Background(), rule, map[string]any{"card_id": "card-1"})
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionCompleted, execution.Status)
	assert.Len(t, execution.ActionsPerformed, 2)
	assert.False(t, execution.Results["first"].Failed())
	assert.False(t, execution.Results["second"].Failed())
	require.NotNil(t, execution.CompletedAt)

	stored, err := p.ExecutionByID(context.Background(), execution.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionCompleted, stored.Status)
}

func TestExecutor_Execute_FailingActionDoesNotStopLaterActions(t *testing.T) {
	p := memory.NewPersistence()
	reg := stubRegistry(
		&stubFactory{id: "broken", err: errors.New("card service unavailable")},
		&stubFactory{id: "working", output: map[string]any{"success": true}},
	)

	executor := NewExecutor(reg, NewRecorder(p, testLogger()), testLogger())
	rule := testRule(models.ActionSpec{Type: "broken"}, models.ActionSpec{Type: "working"})

	execution, err := executor.Execute(context.Background(), rule, nil)
	require.NoError(t, err)

	// The run completed even though an action failed; the failure is data.
	assert.Equal(t, models.ExecutionCompleted, execution.Status)
	assert.Len(t, execution.ActionsPerformed, 2)
	assert.True(t, execution.Results["broken"].Failed())
	assert.Contains(t, execution.Results["broken"].Error, "card service unavailable")
	assert.False(t, execution.Results["working"].Failed())
}

func TestExecutor_Execute_UnknownActionTypeRecordedAsFailure(t *testing.T) {
	p := memory.NewPersistence()
	reg := stubRegistry(&stubFactory{id: "working", output: map[string]any{"success": true}})

	executor := NewExecutor(reg, NewRecorder(p, testLogger()), testLogger())
	rule := testRule(models.ActionSpec{Type: "teleport_card"}, models.ActionSpec{Type: "working"})

	execution, err := executor.Execute(context.Background(), rule, nil)
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionCompleted, execution.Status)
	assert.True(t, execution.Results["teleport_card"].Failed())
	assert.Contains(t, execution.Results["teleport_card"].Error, "not registered")
	assert.False(t, execution.Results["working"].Failed())
}

func TestExecutor_Execute_RecordIsCreatedBeforeActionsRun(t *testing.T) {
	executions := new(mocks.MockExecutionRepository)
	executions.On("SaveExecution", mock.Anything, mock.MatchedBy(func(e *models.Execution) bool {
		return e.Status == models.ExecutionRunning
	})).Return(nil).Once()
	executions.On("SaveExecution", mock.Anything, mock.MatchedBy(func(e *models.Execution) bool {
		return e.Status == models.ExecutionCompleted
	})).Return(nil).Once()

	reg := stubRegistry(&stubFactory{id: "working", output: map[string]any{"success": true}})
	executor := NewExecutor(reg, NewRecorder(executions, testLogger()), testLogger())

	_, err := executor.Execute(context.Background(), testRule(models.ActionSpec{Type: "working"}), nil)
	require.NoError(t, err)

	executions.AssertExpectations(t)
}

func TestExecutor_Execute_BeginFailure(t *testing.T) {
	executions := new(mocks.MockExecutionRepository)
	executions.On("SaveExecution", mock.Anything, mock.Anything).Return(errors.New("db down"))

	reg := stubRegistry(&stubFactory{id: "working"})
	executor := NewExecutor(reg, NewRecorder(executions, testLogger()), testLogger())

	execution, err := executor.Execute(context.Background(), testRule(models.ActionSpec{Type: "working"}), nil)
	require.Error(t, err)
	assert.Nil(t, execution)
}

func TestExecutor_Execute_FinalizeFailureMarksExecutionFailed(t *testing.T) {
	executions := new(mocks.MockExecutionRepository)
	executions.On("SaveExecution", mock.Anything, mock.MatchedBy(func(e *models.Execution) bool {
		return e.Status == models.ExecutionRunning
	})).Return(nil).Once()
	executions.On("SaveExecution", mock.Anything, mock.MatchedBy(func(e *models.Execution) bool {
		return e.Status != models.ExecutionRunning
	})).Return(errors.New("db down"))

	reg := stubRegistry(&stubFactory{id: "working", output: map[string]any{"success": true}})
	executor := NewExecutor(reg, NewRecorder(executions, testLogger()), testLogger())

	execution, err := executor.Execute(context.Background(), testRule(models.ActionSpec{Type: "working"}), nil)
	require.Error(t, err)
	require.NotNil(t, execution)
	assert.Equal(t, models.ExecutionFailed, execution.Status)
	assert.Contains(t, execution.ErrorDetails, "db down")
}
