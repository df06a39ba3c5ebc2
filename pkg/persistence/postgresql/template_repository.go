package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/persistence"
)

// TemplateRepository handles automation template database operations.
type TemplateRepository struct {
	db     dbtx
	logger *slog.Logger
}

func NewTemplateRepository(db dbtx, logger *slog.Logger) *TemplateRepository {
	return &TemplateRepository{db: db, logger: logger}
}

// PublicTemplateByID loads a template and rejects private ones, so callers
// can distinguish a missing template from a visibility problem.
func (r *TemplateRepository) PublicTemplateByID(ctx context.Context, id string) (*models.AutomationTemplate, error) {
	query := `
		SELECT
			id
		  , name
		  , category
		  , description
		  , template_data
		  , use_cases
		  , is_public
		  , is_featured
		  , usage_count
		  , rating
		  , created_by
		  , created_at
		  , updated_at
		FROM automation_templates
		WHERE id = $1
	`

	var (
		template     models.AutomationTemplate
		dataJSON     []byte
		useCasesJSON []byte
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&template.ID,
		&template.Name,
		&template.Category,
		&template.Description,
		&dataJSON,
		&useCasesJSON,
		&template.IsPublic,
		&template.IsFeatured,
		&template.UsageCount,
		&template.Rating,
		&template.CreatedBy,
		&template.CreatedAt,
		&template.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrTemplateNotFound
		}

		return nil, fmt.Errorf("failed to scan template: %w", err)
	}

	if !template.IsPublic {
		return nil, persistence.ErrTemplateNotPublic
	}

	if err := json.Unmarshal(dataJSON, &template.Data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal template data: %w", err)
	}

	if err := json.Unmarshal(useCasesJSON, &template.UseCases); err != nil {
		return nil, fmt.Errorf("failed to unmarshal use cases: %w", err)
	}

	return &template, nil
}

// SaveTemplate inserts the template or updates it in place by ID.
func (r *TemplateRepository) SaveTemplate(ctx context.Context, template *models.AutomationTemplate) error {
	now := time.Now().UTC()

	if template.ID == "" {
		template.ID = uuid.New().String()
	}

	if template.CreatedAt.IsZero() {
		template.CreatedAt = now
	}

	template.UpdatedAt = now

	dataJSON, err := json.Marshal(template.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal template data: %w", err)
	}

	useCasesJSON, err := json.Marshal(template.UseCases)
	if err != nil {
		return fmt.Errorf("failed to marshal use cases: %w", err)
	}

	query := `
		INSERT INTO automation_templates (
			id, name, category, description, template_data, use_cases,
			is_public, is_featured, usage_count, rating, created_by,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			description = EXCLUDED.description,
			template_data = EXCLUDED.template_data,
			use_cases = EXCLUDED.use_cases,
			is_public = EXCLUDED.is_public,
			is_featured = EXCLUDED.is_featured,
			rating = EXCLUDED.rating,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		template.ID,
		template.Name,
		template.Category,
		template.Description,
		dataJSON,
		useCasesJSON,
		template.IsPublic,
		template.IsFeatured,
		template.UsageCount,
		template.Rating,
		template.CreatedBy,
		template.CreatedAt,
		template.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save template %s: %w", template.ID, err)
	}

	return nil
}

// IncrementUsage bumps the usage counter atomically.
func (r *TemplateRepository) IncrementUsage(ctx context.Context, id string) error {
	query := `
		UPDATE automation_templates
		SET usage_count = usage_count + 1,
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment usage for template %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to increment usage for template %s: %w", id, err)
	}

	if affected == 0 {
		return persistence.ErrTemplateNotFound
	}

	return nil
}
