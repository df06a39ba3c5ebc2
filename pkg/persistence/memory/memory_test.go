package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/persistence"
)

func TestActiveRulesForTrigger_Ordering(t *testing.T) {
	p := NewPersistence()
	ctx := context.Background()

	require.NoError(t, p.SaveRule(ctx, &models.Rule{
		ID: "first-low", OrganizationID: "org-1",
		TriggerType: models.TriggerCardCreated, Priority: 1, IsActive: true,
	}))
	require.NoError(t, p.SaveRule(ctx, &models.Rule{
		ID: "second-low", OrganizationID: "org-1",
		TriggerType: models.TriggerCardCreated, Priority: 1, IsActive: true,
	}))
	require.NoError(t, p.SaveRule(ctx, &models.Rule{
		ID: "high", OrganizationID: "org-1",
		TriggerType: models.TriggerCardCreated, Priority: 7, IsActive: true,
	}))
	require.NoError(t, p.SaveRule(ctx, &models.Rule{
		ID: "inactive", OrganizationID: "org-1",
		TriggerType: models.TriggerCardCreated, Priority: 9, IsActive: false,
	}))

	rules, err := p.ActiveRulesForTrigger(ctx, "org-1", models.TriggerCardCreated)
	require.NoError(t, err)
	require.Len(t, rules, 3)

	assert.Equal(t, "high", rules[0].ID)
	// Equal priority resolves by creation order.
	assert.Equal(t, "first-low", rules[1].ID)
	assert.Equal(t, "second-low", rules[2].ID)
}

func TestRuleByID_NotFound(t *testing.T) {
	p := NewPersistence()

	_, err := p.RuleByID(context.Background(), "missing")
	assert.ErrorIs(t, err, persistence.ErrRuleNotFound)
}

func TestIncrementExecution(t *testing.T) {
	p := NewPersistence()
	ctx := context.Background()

	require.NoError(t, p.SaveRule(ctx, &models.Rule{
		ID: "r1", OrganizationID: "org-1",
		TriggerType: models.TriggerCardCreated, IsActive: true,
	}))

	at := time.Now().UTC()
	require.NoError(t, p.IncrementExecution(ctx, "r1", at))
	require.NoError(t, p.IncrementExecution(ctx, "r1", at))

	rule, err := p.RuleByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rule.ExecutionCount)
	require.NotNil(t, rule.LastExecuted)
	assert.Equal(t, at, *rule.LastExecuted)

	err = p.IncrementExecution(ctx, "missing", at)
	assert.ErrorIs(t, err, persistence.ErrRuleNotFound)
}

func TestSaveExecution_UpdatesInPlace(t *testing.T) {
	p := NewPersistence()
	ctx := context.Background()

	execution := &models.Execution{ID: "exec-1", RuleID: "r1", Status: models.ExecutionRunning}
	require.NoError(t, p.SaveExecution(ctx, execution))

	execution.Status = models.ExecutionCompleted
	require.NoError(t, p.SaveExecution(ctx, execution))

	stored, err := p.ExecutionByID(ctx, "exec-1")
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionCompleted, stored.Status)
}

func TestUpsertValue_OneRowPerFieldEntityPair(t *testing.T) {
	p := NewPersistence()
	ctx := context.Background()

	text := "first"
	first := &models.CustomFieldValue{FieldID: "f1", EntityID: "card-1", ValueText: &text}
	require.NoError(t, p.UpsertValue(ctx, first))

	replacement := "second"
	second := &models.CustomFieldValue{FieldID: "f1", EntityID: "card-1", ValueText: &replacement}
	require.NoError(t, p.UpsertValue(ctx, second))

	// The replacement keeps the original row identity.
	assert.Equal(t, first.ID, second.ID)

	stored, err := p.ValueFor(ctx, "f1", "card-1")
	require.NoError(t, err)
	require.NotNil(t, stored.ValueText)
	assert.Equal(t, "second", *stored.ValueText)
}

func TestFieldByName_IgnoresInactive(t *testing.T) {
	p := NewPersistence()
	ctx := context.Background()

	require.NoError(t, p.SaveField(ctx, &models.CustomField{
		ID: "f1", OrganizationID: "org-1", Name: "severity",
		Type: models.FieldTypeText, EntityType: models.EntityTypeCard, IsActive: false,
	}))

	_, err := p.FieldByName(ctx, "org-1", "severity")
	assert.ErrorIs(t, err, persistence.ErrCustomFieldNotFound)
}

func TestPublicTemplateByID(t *testing.T) {
	p := NewPersistence()
	ctx := context.Background()

	require.NoError(t, p.SaveTemplate(ctx, &models.AutomationTemplate{ID: "private", IsPublic: false}))
	require.NoError(t, p.SaveTemplate(ctx, &models.AutomationTemplate{ID: "public", IsPublic: true}))

	_, err := p.PublicTemplateByID(ctx, "ghost")
	assert.ErrorIs(t, err, persistence.ErrTemplateNotFound)

	_, err = p.PublicTemplateByID(ctx, "private")
	assert.ErrorIs(t, err, persistence.ErrTemplateNotPublic)

	template, err := p.PublicTemplateByID(ctx, "public")
	require.NoError(t, err)
	assert.Equal(t, "public", template.ID)
}

func TestPublicTemplateByID_ReturnsDeepCopy(t *testing.T) {
	p := NewPersistence()
	ctx := context.Background()

	require.NoError(t, p.SaveTemplate(ctx, &models.AutomationTemplate{
		ID:       "tpl-1",
		IsPublic: true,
		Data: models.TemplateData{
			Rules: []models.TemplateRule{
				{
					Name:       "notify",
					Conditions: models.ConditionSet{"priority": {Literal: "urgent"}},
					Actions: []models.ActionSpec{
						{Type: "send_notification", Parameters: map[string]any{"user_id": "lead-1"}},
					},
				},
			},
		},
	}))

	first, err := p.PublicTemplateByID(ctx, "tpl-1")
	require.NoError(t, err)

	// Mutating the returned copy's nested maps must not reach the stored row.
	first.Data.Rules[0].Conditions["status"] = models.Condition{Literal: "done"}
	first.Data.Rules[0].Actions[0].Parameters["user_id"] = "intruder"

	second, err := p.PublicTemplateByID(ctx, "tpl-1")
	require.NoError(t, err)

	rule := second.Data.Rules[0]
	assert.NotContains(t, rule.Conditions, "status")
	assert.Equal(t, "lead-1", rule.Actions[0].Parameters["user_id"])
}

func TestWithinTransaction_RollsBackOnError(t *testing.T) {
	p := NewPersistence()
	ctx := context.Background()

	require.NoError(t, p.SaveRule(ctx, &models.Rule{
		ID: "keeper", OrganizationID: "org-1",
		TriggerType: models.TriggerCardCreated, IsActive: true,
	}))

	failure := errors.New("midway failure")

	err := p.WithinTransaction(ctx, func(ctx context.Context, tx persistence.Persistence) error {
		require.NoError(t, tx.Rules().SaveRule(ctx, &models.Rule{
			ID: "doomed", OrganizationID: "org-1",
			TriggerType: models.TriggerCardCreated, IsActive: true,
		}))
		require.NoError(t, tx.Templates().SaveTemplate(ctx, &models.AutomationTemplate{ID: "doomed-tpl", IsPublic: true}))

		return failure
	})
	require.ErrorIs(t, err, failure)

	_, err = p.RuleByID(ctx, "doomed")
	assert.ErrorIs(t, err, persistence.ErrRuleNotFound)

	_, err = p.PublicTemplateByID(ctx, "doomed-tpl")
	assert.ErrorIs(t, err, persistence.ErrTemplateNotFound)

	_, err = p.RuleByID(ctx, "keeper")
	assert.NoError(t, err)
}

func TestWithinTransaction_CommitsOnSuccess(t *testing.T) {
	p := NewPersistence()
	ctx := context.Background()

	err := p.WithinTransaction(ctx, func(ctx context.Context, tx persistence.Persistence) error {
		return tx.Rules().SaveRule(ctx, &models.Rule{
			ID: "committed", OrganizationID: "org-1",
			TriggerType: models.TriggerCardCreated, IsActive: true,
		})
	})
	require.NoError(t, err)

	_, err = p.RuleByID(ctx, "committed")
	assert.NoError(t, err)
}
