package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User represents an account that owns projects.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ChatMessage is one turn of a project conversation.
type ChatMessage struct {
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

// Project is a saved generation session: its conversation and the last good artifact.
// LastCode and LastDocument hold a JSON-encoded CodeBundle / ReportDocument or are nil.
type Project struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	UserID       uuid.UUID       `db:"user_id" json:"user_id"`
	Name         string          `db:"name" json:"name"`
	Description  string          `db:"description" json:"description"`
	Kind         ProjectKind     `db:"kind" json:"kind"`
	Messages     json.RawMessage `db:"messages" json:"messages"`
	LastCode     json.RawMessage `db:"last_code" json:"last_code,omitempty"`
	LastDocument json.RawMessage `db:"last_document" json:"last_document,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// History decodes the stored conversation.
func (p *Project) History() ([]ChatMessage, error) {
	var msgs []ChatMessage
	if len(p.Messages) == 0 {
		return msgs, nil
	}
	if err := json.Unmarshal(p.Messages, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// CodeBundle decodes the last stored web artifact. ok is false when none is stored.
func (p *Project) CodeBundle() (bundle CodeBundle, ok bool, err error) {
	if len(p.LastCode) == 0 || string(p.LastCode) == "null" {
		return CodeBundle{}, false, nil
	}
	if err := json.Unmarshal(p.LastCode, &bundle); err != nil {
		return CodeBundle{}, false, err
	}
	return bundle, true, nil
}

// ReportDocument decodes the last stored document artifact. ok is false when none is stored.
func (p *Project) ReportDocument() (doc ReportDocument, ok bool, err error) {
	if len(p.LastDocument) == 0 || string(p.LastDocument) == "null" {
		return ReportDocument{}, false, nil
	}
	if err := json.Unmarshal(p.LastDocument, &doc); err != nil {
		return ReportDocument{}, false, err
	}
	return doc, true, nil
}

// Turn is the outcome of one prompt sent to a project.
type Turn struct {
	ProjectID uuid.UUID       `json:"project_id"`
	Messages  []ChatMessage   `json:"messages"`
	Response  string          `json:"response"`
	Code      *CodeBundle     `json:"code,omitempty"`
	Document  *ReportDocument `json:"document,omitempty"`
	Outcome   string          `json:"outcome"`
}

// ExportFile is a rendered export ready to be streamed or uploaded.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ExportLink is the result of uploading an export to object storage.
type ExportLink struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
