package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/flowboard/flowboard/pkg/models"
)

// MockRuleRepository is a mock implementation of persistence.RuleRepository interface.
type MockRuleRepository struct {
	mock.Mock
}

func (m *MockRuleRepository) ActiveRulesForTrigger(ctx context.Context, organizationID string, trigger models.TriggerType) ([]*models.Rule, error) {
	args := m.Called(ctx, organizationID, trigger)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Rule), args.Error(1)
}

func (m *MockRuleRepository) RuleByID(ctx context.Context, id string) (*models.Rule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Rule), args.Error(1)
}

func (m *MockRuleRepository) AllRules(ctx context.Context) ([]*models.Rule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Rule), args.Error(1)
}

func (m *MockRuleRepository) SaveRule(ctx context.Context, rule *models.Rule) error {
	args := m.Called(ctx, rule)

	return args.Error(0)
}

func (m *MockRuleRepository) IncrementExecution(ctx context.Context, ruleID string, at time.Time) error {
	args := m.Called(ctx, ruleID, at)

	return args.Error(0)
}

// MockExecutionRepository is a mock implementation of persistence.ExecutionRepository interface.
type MockExecutionRepository struct {
	mock.Mock
}

func (m *MockExecutionRepository) SaveExecution(ctx context.Context, execution *models.Execution) error {
	args := m.Called(ctx, execution)

	return args.Error(0)
}

func (m *MockExecutionRepository) ExecutionByID(ctx context.Context, id string) (*models.Execution, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Execution), args.Error(1)
}

// MockTemplateRepository is a mock implementation of persistence.TemplateRepository interface.
type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) PublicTemplateByID(ctx context.Context, id string) (*models.AutomationTemplate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.AutomationTemplate), args.Error(1)
}

func (m *MockTemplateRepository) SaveTemplate(ctx context.Context, template *models.AutomationTemplate) error {
	args := m.Called(ctx, template)

	return args.Error(0)
}

func (m *MockTemplateRepository) IncrementUsage(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}
