// Package memory provides an in-memory persistence implementation for tests
// and local development.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/persistence"
)

// Persistence keeps every repository in process memory, guarded by a single
// lock. WithinTransaction snapshots the state and restores it on failure,
// giving the same all-or-nothing behavior as a database transaction.
type Persistence struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	rules      map[string]*models.Rule
	ruleSeq    map[string]int64
	nextSeq    int64
	executions map[string]*models.Execution
	fields     map[string]*models.CustomField
	values     map[string]*models.CustomFieldValue
	templates  map[string]*models.AutomationTemplate
}

func NewPersistence() *Persistence {
	return &Persistence{
		rules:      make(map[string]*models.Rule),
		ruleSeq:    make(map[string]int64),
		executions: make(map[string]*models.Execution),
		fields:     make(map[string]*models.CustomField),
		values:     make(map[string]*models.CustomFieldValue),
		templates:  make(map[string]*models.AutomationTemplate),
	}
}

func (p *Persistence) Rules() persistence.RuleRepository               { return p }
func (p *Persistence) Executions() persistence.ExecutionRepository     { return p }
func (p *Persistence) CustomFields() persistence.CustomFieldRepository { return p }
func (p *Persistence) Templates() persistence.TemplateRepository       { return p }

func (p *Persistence) HealthCheck(ctx context.Context) error { return nil }
func (p *Persistence) Close(ctx context.Context) error       { return nil }

func (p *Persistence) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx persistence.Persistence) error) error {
	p.txMu.Lock()
	defer p.txMu.Unlock()

	snapshot := p.snapshot()

	if err := fn(ctx, p); err != nil {
		p.restore(snapshot)

		return err
	}

	return nil
}

type state struct {
	rules      map[string]*models.Rule
	ruleSeq    map[string]int64
	nextSeq    int64
	executions map[string]*models.Execution
	fields     map[string]*models.CustomField
	values     map[string]*models.CustomFieldValue
	templates  map[string]*models.AutomationTemplate
}

func (p *Persistence) snapshot() state {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := state{
		rules:      make(map[string]*models.Rule, len(p.rules)),
		ruleSeq:    make(map[string]int64, len(p.ruleSeq)),
		nextSeq:    p.nextSeq,
		executions: make(map[string]*models.Execution, len(p.executions)),
		fields:     make(map[string]*models.CustomField, len(p.fields)),
		values:     make(map[string]*models.CustomFieldValue, len(p.values)),
		templates:  make(map[string]*models.AutomationTemplate, len(p.templates)),
	}

	for id, rule := range p.rules {
		cloned := *rule
		s.rules[id] = &cloned
	}

	for id, seq := range p.ruleSeq {
		s.ruleSeq[id] = seq
	}

	for id, execution := range p.executions {
		cloned := *execution
		s.executions[id] = &cloned
	}

	for id, field := range p.fields {
		cloned := *field
		s.fields[id] = &cloned
	}

	for key, value := range p.values {
		cloned := *value
		s.values[key] = &cloned
	}

	for id, tmpl := range p.templates {
		cloned := *tmpl
		s.templates[id] = &cloned
	}

	return s
}

func (p *Persistence) restore(s state) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.rules = s.rules
	p.ruleSeq = s.ruleSeq
	p.nextSeq = s.nextSeq
	p.executions = s.executions
	p.fields = s.fields
	p.values = s.values
	p.templates = s.templates
}

// Rule repository

func (p *Persistence) ActiveRulesForTrigger(ctx context.Context, organizationID string, trigger models.TriggerType) ([]*models.Rule, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var matched []*models.Rule

	for _, rule := range p.rules {
		if rule.OrganizationID == organizationID && rule.TriggerType == trigger && rule.IsActive {
			cloned := *rule
			matched = append(matched, &cloned)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Priority != matched[j].Priority {
			return matched[i].Priority > matched[j].Priority
		}

		return p.ruleSeq[matched[i].ID] < p.ruleSeq[matched[j].ID]
	})

	return matched, nil
}

func (p *Persistence) RuleByID(ctx context.Context, id string) (*models.Rule, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	rule, ok := p.rules[id]
	if !ok {
		return nil, persistence.ErrRuleNotFound
	}

	cloned := *rule

	return &cloned, nil
}

func (p *Persistence) AllRules(ctx context.Context) ([]*models.Rule, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	rules := make([]*models.Rule, 0, len(p.rules))
	for _, rule := range p.rules {
		cloned := *rule
		rules = append(rules, &cloned)
	}

	sort.Slice(rules, func(i, j int) bool {
		return p.ruleSeq[rules[i].ID] < p.ruleSeq[rules[j].ID]
	})

	return rules, nil
}

func (p *Persistence) SaveRule(ctx context.Context, rule *models.Rule) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}

	if _, ok := p.ruleSeq[rule.ID]; !ok {
		p.nextSeq++
		p.ruleSeq[rule.ID] = p.nextSeq
	}

	cloned := *rule
	p.rules[rule.ID] = &cloned

	return nil
}

func (p *Persistence) IncrementExecution(ctx context.Context, ruleID string, at time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	rule, ok := p.rules[ruleID]
	if !ok {
		return persistence.NewRuleError("IncrementExecution", ruleID, persistence.ErrRuleNotFound)
	}

	rule.ExecutionCount++
	rule.LastExecuted = &at
	rule.UpdatedAt = at

	return nil
}

// Execution repository

func (p *Persistence) SaveExecution(ctx context.Context, execution *models.Execution) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if execution.ID == "" {
		execution.ID = uuid.New().String()
	}

	cloned := *execution
	p.executions[execution.ID] = &cloned

	return nil
}

func (p *Persistence) ExecutionByID(ctx context.Context, id string) (*models.Execution, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	execution, ok := p.executions[id]
	if !ok {
		return nil, persistence.ErrExecutionNotFound
	}

	cloned := *execution

	return &cloned, nil
}

// Custom field repository

func (p *Persistence) FieldByName(ctx context.Context, organizationID, name string) (*models.CustomField, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, field := range p.fields {
		if field.OrganizationID == organizationID && field.Name == name && field.IsActive {
			cloned := *field

			return &cloned, nil
		}
	}

	return nil, persistence.ErrCustomFieldNotFound
}

func (p *Persistence) SaveField(ctx context.Context, field *models.CustomField) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if field.ID == "" {
		field.ID = uuid.New().String()
	}

	cloned := *field
	p.fields[field.ID] = &cloned

	return nil
}

func valueKey(fieldID, entityID string) string {
	return fieldID + "|" + entityID
}

func (p *Persistence) UpsertValue(ctx context.Context, value *models.CustomFieldValue) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := valueKey(value.FieldID, value.EntityID)

	if existing, ok := p.values[key]; ok {
		value.ID = existing.ID
		value.CreatedAt = existing.CreatedAt
	} else if value.ID == "" {
		value.ID = uuid.New().String()
	}

	value.UpdatedAt = time.Now().UTC()

	cloned := *value
	p.values[key] = &cloned

	return nil
}

func (p *Persistence) ValueFor(ctx context.Context, fieldID, entityID string) (*models.CustomFieldValue, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	value, ok := p.values[valueKey(fieldID, entityID)]
	if !ok {
		return nil, persistence.ErrFieldValueNotFound
	}

	cloned := *value

	return &cloned, nil
}

// Template repository

func (p *Persistence) PublicTemplateByID(ctx context.Context, id string) (*models.AutomationTemplate, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	tmpl, ok := p.templates[id]
	if !ok {
		return nil, persistence.ErrTemplateNotFound
	}

	if !tmpl.IsPublic {
		return nil, persistence.ErrTemplateNotPublic
	}

	return cloneTemplate(tmpl)
}

// cloneTemplate deep-copies the template so callers can never reach the
// stored row's nested rule and field blueprints through a returned value.
func cloneTemplate(tmpl *models.AutomationTemplate) (*models.AutomationTemplate, error) {
	cloned := *tmpl

	encoded, err := json.Marshal(tmpl.Data)
	if err != nil {
		return nil, err
	}

	cloned.Data = models.TemplateData{}
	if err := json.Unmarshal(encoded, &cloned.Data); err != nil {
		return nil, err
	}

	cloned.UseCases = append([]string(nil), tmpl.UseCases...)

	return &cloned, nil
}

func (p *Persistence) SaveTemplate(ctx context.Context, template *models.AutomationTemplate) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if template.ID == "" {
		template.ID = uuid.New().String()
	}

	cloned, err := cloneTemplate(template)
	if err != nil {
		return err
	}

	p.templates[template.ID] = cloned

	return nil
}

func (p *Persistence) IncrementUsage(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	tmpl, ok := p.templates[id]
	if !ok {
		return persistence.ErrTemplateNotFound
	}

	tmpl.UsageCount++

	return nil
}
