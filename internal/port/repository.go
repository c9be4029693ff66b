package port

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"pagecrafter/internal/domain"
)

// UserRepository defines the contract for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// ExchangeUpdate describes one completed prompt/answer round for a project.
// Artifact is nil when the round produced an error artifact; the stored artifact is then kept.
type ExchangeUpdate struct {
	Messages []domain.ChatMessage
	Artifact json.RawMessage
}

// ProjectRepository defines the contract for project persistence.
// All query methods include userID so a user only ever sees their own projects.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, userID, projectID uuid.UUID) (*domain.Project, error)
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Project, int, error)
	Delete(ctx context.Context, userID, projectID uuid.UUID) error
	AppendExchange(ctx context.Context, userID, projectID uuid.UUID, update ExchangeUpdate) (*domain.Project, error)
}
