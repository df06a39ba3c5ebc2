package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/persistence"
)

// CardStore is an in-memory stand-in for the externally-owned card subsystem.
type CardStore struct {
	mu       sync.RWMutex
	cards    map[string]*models.Card
	projects map[string]string // project ID -> organization ID
}

func NewCardStore() *CardStore {
	return &CardStore{
		cards:    make(map[string]*models.Card),
		projects: make(map[string]string),
	}
}

// AddProject registers a project under an organization.
func (s *CardStore) AddProject(projectID, organizationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.projects[projectID] = organizationID
}

// SeedCard stores a card as-is, for test setup.
func (s *CardStore) SeedCard(card *models.Card) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cloned := *card
	s.cards[card.ID] = &cloned
}

func (s *CardStore) CardByID(ctx context.Context, cardID string) (*models.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	card, ok := s.cards[cardID]
	if !ok {
		return nil, persistence.ErrCardNotFound
	}

	cloned := *card

	return &cloned, nil
}

func (s *CardStore) UpdateAssignee(ctx context.Context, cardID, userID string) error {
	return s.update(cardID, func(card *models.Card) { card.AssignedTo = userID })
}

func (s *CardStore) UpdateStatus(ctx context.Context, cardID, status string) error {
	return s.update(cardID, func(card *models.Card) { card.Status = status })
}

func (s *CardStore) UpdatePriority(ctx context.Context, cardID, priority string) error {
	return s.update(cardID, func(card *models.Card) { card.Priority = priority })
}

func (s *CardStore) update(cardID string, mutate func(card *models.Card)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	card, ok := s.cards[cardID]
	if !ok {
		return persistence.ErrCardNotFound
	}

	mutate(card)

	return nil
}

func (s *CardStore) CreateCard(ctx context.Context, card *models.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if card.ID == "" {
		card.ID = uuid.New().String()
	}

	cloned := *card
	s.cards[card.ID] = &cloned

	return nil
}

func (s *CardStore) ProjectInOrganization(ctx context.Context, projectID, organizationID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owner, ok := s.projects[projectID]

	return ok && owner == organizationID, nil
}

func (s *CardStore) CardsDueBefore(ctx context.Context, cutoff time.Time) ([]*models.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []*models.Card

	for _, card := range s.cards {
		if card.DueDate != nil && card.DueDate.Before(cutoff) && card.Status != "done" {
			cloned := *card
			due = append(due, &cloned)
		}
	}

	return due, nil
}

// MembershipStore is an in-memory membership lookup.
type MembershipStore struct {
	mu      sync.RWMutex
	members map[string]map[string]bool // organization ID -> user ID set
}

func NewMembershipStore() *MembershipStore {
	return &MembershipStore{members: make(map[string]map[string]bool)}
}

func (s *MembershipStore) AddMember(organizationID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.members[organizationID] == nil {
		s.members[organizationID] = make(map[string]bool)
	}

	s.members[organizationID][userID] = true
}

func (s *MembershipStore) IsMember(ctx context.Context, organizationID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.members[organizationID][userID], nil
}

// NotificationSink collects notifications in memory.
type NotificationSink struct {
	mu            sync.RWMutex
	notifications []*models.Notification
}

func NewNotificationSink() *NotificationSink {
	return &NotificationSink{}
}

func (s *NotificationSink) CreateNotification(ctx context.Context, notification *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}

	notification.CreatedAt = time.Now().UTC()

	cloned := *notification
	s.notifications = append(s.notifications, &cloned)

	return nil
}

// Notifications returns everything delivered so far.
func (s *NotificationSink) Notifications() []*models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Notification, len(s.notifications))
	copy(out, s.notifications)

	return out
}
