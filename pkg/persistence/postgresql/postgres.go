// Package postgresql provides the PostgreSQL persistence implementation for
// automation rules, executions, custom fields, and templates.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // registers the postgres driver

	"github.com/flowboard/flowboard/pkg/persistence"
	"github.com/flowboard/flowboard/pkg/persistence/sqlbase"
)

// dbtx is the subset of database/sql shared by *sql.DB and *sql.Tx, so every
// repository works both directly and inside WithinTransaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db     *sql.DB
	tx     *sql.Tx
	logger *slog.Logger

	rules        *RuleRepository
	executions   *ExecutionRepository
	customFields *CustomFieldRepository
	templates    *TemplateRepository
}

// NewPersistence connects to PostgreSQL and runs pending schema migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return newPersistence(database, nil, logger), nil
}

func newPersistence(db *sql.DB, tx *sql.Tx, logger *slog.Logger) *Persistence {
	var runner dbtx = db
	if tx != nil {
		runner = tx
	}

	return &Persistence{
		db:           db,
		tx:           tx,
		logger:       logger,
		rules:        NewRuleRepository(runner, logger),
		executions:   NewExecutionRepository(runner, logger),
		customFields: NewCustomFieldRepository(runner, logger),
		templates:    NewTemplateRepository(runner, logger),
	}
}

func (p *Persistence) Rules() persistence.RuleRepository {
	return p.rules
}

func (p *Persistence) Executions() persistence.ExecutionRepository {
	return p.executions
}

func (p *Persistence) CustomFields() persistence.CustomFieldRepository {
	return p.customFields
}

func (p *Persistence) Templates() persistence.TemplateRepository {
	return p.templates
}

// WithinTransaction runs fn against transaction-scoped repositories. A nested
// call joins the enclosing transaction.
func (p *Persistence) WithinTransaction(ctx context.Context, fn func(ctx context.Context, scoped persistence.Persistence) error) error {
	if p.tx != nil {
		return fn(ctx, p)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	err = fn(ctx, newPersistence(p.db, tx, p.logger))
	if err != nil {
		_ = tx.Rollback()

		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}
