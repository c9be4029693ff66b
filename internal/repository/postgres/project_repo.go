package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"pagecrafter/internal/domain"
	"pagecrafter/internal/port"
)

// jsonNull is stored in artifact columns that have no value yet.
var jsonNull = json.RawMessage("null")

type projectRepo struct {
	db *sqlx.DB
}

// NewProjectRepo creates a new PostgreSQL-backed ProjectRepository.
func NewProjectRepo(db *sqlx.DB) port.ProjectRepository {
	return &projectRepo{db: db}
}

func (r *projectRepo) Create(ctx context.Context, project *domain.Project) error {
	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now
	if len(project.Messages) == 0 {
		project.Messages = json.RawMessage("[]")
	}

	query := `INSERT INTO projects (
		id, user_id, name, description, kind,
		messages, last_code, last_document, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		project.ID, project.UserID, project.Name, project.Description, project.Kind,
		project.Messages, orJSONNull(project.LastCode), orJSONNull(project.LastDocument),
		project.CreatedAt, project.UpdatedAt)
	if err != nil {
		return fmt.Errorf("projectRepo.Create: %w", err)
	}
	return nil
}

func (r *projectRepo) GetByID(ctx context.Context, userID, projectID uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	err := r.db.GetContext(ctx, &project,
		"SELECT * FROM projects WHERE id = $1 AND user_id = $2", projectID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("projectRepo.GetByID: %w", err)
	}
	return &project, nil
}

func (r *projectRepo) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Project, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM projects WHERE user_id = $1", userID)
	if err != nil {
		return nil, 0, fmt.Errorf("projectRepo.ListByUser count: %w", err)
	}

	var projects []domain.Project
	err = r.db.SelectContext(ctx, &projects,
		"SELECT * FROM projects WHERE user_id = $1 ORDER BY updated_at DESC LIMIT $2 OFFSET $3",
		userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("projectRepo.ListByUser: %w", err)
	}
	return projects, total, nil
}

func (r *projectRepo) Delete(ctx context.Context, userID, projectID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM projects WHERE id = $1 AND user_id = $2", projectID, userID)
	if err != nil {
		return fmt.Errorf("projectRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AppendExchange appends messages and, when update.Artifact is set, replaces
// the artifact column matching the project's kind. Both happen in one statement.
func (r *projectRepo) AppendExchange(ctx context.Context, userID, projectID uuid.UUID, update port.ExchangeUpdate) (*domain.Project, error) {
	messages, err := json.Marshal(update.Messages)
	if err != nil {
		return nil, fmt.Errorf("projectRepo.AppendExchange: encoding messages: %w", err)
	}

	query := `UPDATE projects SET
		messages = messages || $1::jsonb,
		last_code = CASE WHEN kind = 'web' THEN COALESCE($2::jsonb, last_code) ELSE last_code END,
		last_document = CASE WHEN kind = 'document' THEN COALESCE($2::jsonb, last_document) ELSE last_document END,
		updated_at = $3
	WHERE id = $4 AND user_id = $5
	RETURNING *`

	var project domain.Project
	err = r.db.GetContext(ctx, &project, query,
		json.RawMessage(messages), nullableJSON(update.Artifact), time.Now().UTC(), projectID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("projectRepo.AppendExchange: %w", err)
	}
	return &project, nil
}

func orJSONNull(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return jsonNull
	}
	return raw
}

func nullableJSON(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
