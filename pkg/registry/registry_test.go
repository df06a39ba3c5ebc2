package registry

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/persistence/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func defaultRegistry() *Registry {
	return Default(testLogger(), Stores{
		Cards:         memory.NewCardStore(),
		Members:       memory.NewMembershipStore(),
		Notifications: memory.NewNotificationSink(),
		CustomFields:  memory.NewPersistence(),
	})
}

func TestDefault_RegistersBuiltins(t *testing.T) {
	reg := defaultRegistry()

	types := reg.ActionTypes()
	assert.Len(t, types, 6)
	assert.ElementsMatch(t, []string{
		"assign_user",
		"change_status",
		"set_priority",
		"send_notification",
		"create_card",
		"update_field",
	}, types)
}

func TestRegistry_Create(t *testing.T) {
	reg := defaultRegistry()

	action, err := reg.Create("change_status", map[string]any{"status": "done"})
	require.NoError(t, err)
	assert.NotNil(t, action)
}

func TestRegistry_Create_UnknownType(t *testing.T) {
	reg := defaultRegistry()

	_, err := reg.Create("teleport_card", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestRegistry_ValidateSpec(t *testing.T) {
	reg := defaultRegistry()

	tests := []struct {
		name    string
		spec    models.ActionSpec
		wantErr bool
	}{
		{
			name:    "valid change_status",
			spec:    models.ActionSpec{Type: "change_status", Parameters: map[string]any{"status": "done"}},
			wantErr: false,
		},
		{
			name:    "change_status missing required status",
			spec:    models.ActionSpec{Type: "change_status", Parameters: map[string]any{"card_id": "c1"}},
			wantErr: true,
		},
		{
			name:    "set_priority outside enum",
			spec:    models.ActionSpec{Type: "set_priority", Parameters: map[string]any{"priority": "apocalyptic"}},
			wantErr: true,
		},
		{
			name:    "unknown action type",
			spec:    models.ActionSpec{Type: "teleport_card"},
			wantErr: true,
		},
		{
			name:    "nil parameters validated as empty object",
			spec:    models.ActionSpec{Type: "assign_user"},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.ValidateSpec(tt.spec)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegistry_ValidateRule(t *testing.T) {
	reg := defaultRegistry()

	rule := &models.Rule{
		ID:             "rule-1",
		OrganizationID: "org-1",
		Name:           "escalate",
		TriggerType:    models.TriggerCardUpdated,
		Actions: []models.ActionSpec{
			{Type: "set_priority", Parameters: map[string]any{"priority": "high"}},
			{Type: "change_status"},
		},
	}

	err := reg.ValidateRule(rule)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "change_status")
}
