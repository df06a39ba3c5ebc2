// Package mocks provides testify mocks for the engine's protocol and
// persistence interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/flowboard/flowboard/pkg/models"
)

// MockCardStore is a mock implementation of protocol.CardStore interface.
type MockCardStore struct {
	mock.Mock
}

func (m *MockCardStore) CardByID(ctx context.Context, cardID string) (*models.Card, error) {
	args := m.Called(ctx, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Card), args.Error(1)
}

func (m *MockCardStore) UpdateAssignee(ctx context.Context, cardID, userID string) error {
	args := m.Called(ctx, cardID, userID)

	return args.Error(0)
}

func (m *MockCardStore) UpdateStatus(ctx context.Context, cardID, status string) error {
	args := m.Called(ctx, cardID, status)

	return args.Error(0)
}

func (m *MockCardStore) UpdatePriority(ctx context.Context, cardID, priority string) error {
	args := m.Called(ctx, cardID, priority)

	return args.Error(0)
}

func (m *MockCardStore) CreateCard(ctx context.Context, card *models.Card) error {
	args := m.Called(ctx, card)

	return args.Error(0)
}

func (m *MockCardStore) ProjectInOrganization(ctx context.Context, projectID, organizationID string) (bool, error) {
	args := m.Called(ctx, projectID, organizationID)

	return args.Bool(0), args.Error(1)
}

func (m *MockCardStore) CardsDueBefore(ctx context.Context, cutoff time.Time) ([]*models.Card, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Card), args.Error(1)
}

// MockMembershipStore is a mock implementation of protocol.MembershipStore interface.
type MockMembershipStore struct {
	mock.Mock
}

func (m *MockMembershipStore) IsMember(ctx context.Context, organizationID, userID string) (bool, error) {
	args := m.Called(ctx, organizationID, userID)

	return args.Bool(0), args.Error(1)
}

// MockNotificationSink is a mock implementation of protocol.NotificationSink interface.
type MockNotificationSink struct {
	mock.Mock
}

func (m *MockNotificationSink) CreateNotification(ctx context.Context, notification *models.Notification) error {
	args := m.Called(ctx, notification)

	return args.Error(0)
}

// MockCustomFieldStore is a mock implementation of protocol.CustomFieldStore interface.
type MockCustomFieldStore struct {
	mock.Mock
}

func (m *MockCustomFieldStore) FieldByName(ctx context.Context, organizationID, name string) (*models.CustomField, error) {
	args := m.Called(ctx, organizationID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.CustomField), args.Error(1)
}

func (m *MockCustomFieldStore) UpsertValue(ctx context.Context, value *models.CustomFieldValue) error {
	args := m.Called(ctx, value)

	return args.Error(0)
}
