package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pagecrafter/internal/config"
	"pagecrafter/internal/domain"
	"pagecrafter/internal/export"
	"pagecrafter/internal/extract"
	"pagecrafter/internal/port"
)

// CreateProjectInput is the DTO for creating a project.
type CreateProjectInput struct {
	Name        string             `json:"name" binding:"required,max=200"`
	Description string             `json:"description" binding:"max=2000"`
	Kind        domain.ProjectKind `json:"kind"`
}

// ProjectService manages projects and their generation history.
type ProjectService interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateProjectInput) (*domain.Project, error)
	GetByID(ctx context.Context, userID, projectID uuid.UUID) (*domain.Project, error)
	List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Project, int, error)
	Delete(ctx context.Context, userID, projectID uuid.UUID) error
	SendMessage(ctx context.Context, userID, projectID uuid.UUID, prompt string) (*domain.Turn, error)
	Export(ctx context.Context, userID, projectID uuid.UUID, format domain.ExportFormat) (*domain.ExportFile, error)
	PublishExport(ctx context.Context, userID, projectID uuid.UUID, format domain.ExportFormat) (*domain.ExportLink, error)
}

type projectService struct {
	projectRepo port.ProjectRepository
	generation  GenerationService
	storage     port.ObjectStorage
	s3Cfg       config.S3Config
	now         func() time.Time
	log         *zap.Logger
}

// NewProjectService creates a new ProjectService implementation. storage may
// be nil, in which case PublishExport fails with domain.ErrUploadFailed.
func NewProjectService(
	projectRepo port.ProjectRepository,
	generation GenerationService,
	storage port.ObjectStorage,
	s3Cfg config.S3Config,
	log *zap.Logger,
) ProjectService {
	if log == nil {
		log = zap.NewNop()
	}
	return &projectService{
		projectRepo: projectRepo,
		generation:  generation,
		storage:     storage,
		s3Cfg:       s3Cfg,
		now:         time.Now,
		log:         log.Named("projects"),
	}
}

func (s *projectService) Create(ctx context.Context, userID uuid.UUID, input CreateProjectInput) (*domain.Project, error) {
	kind := input.Kind
	if kind == "" {
		kind = domain.ProjectKindWeb
	}
	if !kind.Valid() {
		return nil, domain.ErrInvalidProjectKind
	}

	now := s.now().UTC()
	project := &domain.Project{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Kind:        kind,
		Messages:    json.RawMessage("[]"),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("projectService.Create: %w", err)
	}
	return project, nil
}

func (s *projectService) GetByID(ctx context.Context, userID, projectID uuid.UUID) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, userID, projectID)
	if err != nil {
		return nil, mapProjectErr(err)
	}
	return project, nil
}

func (s *projectService) List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Project, int, error) {
	return s.projectRepo.ListByUser(ctx, userID, offset, limit)
}

func (s *projectService) Delete(ctx context.Context, userID, projectID uuid.UUID) error {
	if err := s.projectRepo.Delete(ctx, userID, projectID); err != nil {
		return mapProjectErr(err)
	}
	return nil
}

// SendMessage runs prompt through the project's pipeline and records the
// exchange. An error artifact is returned to the caller but never replaces
// the project's last good artifact.
func (s *projectService) SendMessage(ctx context.Context, userID, projectID uuid.UUID, prompt string) (*domain.Turn, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, domain.ErrEmptyPrompt
	}
	project, err := s.projectRepo.GetByID(ctx, userID, projectID)
	if err != nil {
		return nil, mapProjectErr(err)
	}

	turn := &domain.Turn{ProjectID: project.ID}
	var artifact json.RawMessage

	switch project.Kind {
	case domain.ProjectKindWeb:
		previous, _, err := project.CodeBundle()
		if err != nil {
			return nil, fmt.Errorf("projectService.SendMessage: decoding last bundle: %w", err)
		}
		res, err := s.generation.GenerateCode(ctx, CodeRequest{
			Prompt:       prompt,
			PreviousHTML: previous.HTML,
			PreviousCSS:  previous.CSS,
			PreviousJS:   previous.JS,

			PreviousPages: previous.Pages,
		})
		if err != nil {
			return nil, err
		}
		turn.Response, turn.Code, turn.Outcome = res.ResponseText, &res.Document, res.Outcome.String()
		if artifact, err = artifactJSON(res.Outcome, res.Document); err != nil {
			return nil, err
		}
	case domain.ProjectKindDocument:
		res, err := s.generation.GenerateDocument(ctx, DocumentRequest{Prompt: prompt})
		if err != nil {
			return nil, err
		}
		turn.Response, turn.Document, turn.Outcome = res.ResponseText, &res.Document, res.Outcome.String()
		if artifact, err = artifactJSON(res.Outcome, res.Document); err != nil {
			return nil, err
		}
	default:
		return nil, domain.ErrInvalidProjectKind
	}

	now := s.now().UTC()
	turn.Messages = []domain.ChatMessage{
		{Role: domain.RoleUser, Content: prompt, CreatedAt: now},
		{Role: domain.RoleAssistant, Content: turn.Response, CreatedAt: now},
	}

	// History is only written once a complete result exists.
	if _, err := s.projectRepo.AppendExchange(ctx, userID, projectID, port.ExchangeUpdate{
		Messages: turn.Messages,
		Artifact: artifact,
	}); err != nil {
		return nil, mapProjectErr(err)
	}

	s.log.Debug("exchange recorded",
		zap.String("project_id", projectID.String()),
		zap.String("kind", string(project.Kind)),
		zap.String("outcome", turn.Outcome),
	)
	return turn, nil
}

func (s *projectService) Export(ctx context.Context, userID, projectID uuid.UUID, format domain.ExportFormat) (*domain.ExportFile, error) {
	project, err := s.projectRepo.GetByID(ctx, userID, projectID)
	if err != nil {
		return nil, mapProjectErr(err)
	}
	return s.render(project, format)
}

func (s *projectService) PublishExport(ctx context.Context, userID, projectID uuid.UUID, format domain.ExportFormat) (*domain.ExportLink, error) {
	if s.storage == nil {
		return nil, domain.ErrUploadFailed
	}
	file, err := s.Export(ctx, userID, projectID, format)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	key := path.Join("exports", userID.String(), projectID.String(), now.Format("20060102T150405Z")+"-"+file.Name)
	_, err = s.storage.Upload(ctx, port.PutObjectInput{
		Bucket:             s.s3Cfg.Bucket,
		Key:                key,
		Body:               bytes.NewReader(file.Data),
		ContentType:        file.ContentType,
		ContentDisposition: fmt.Sprintf("attachment; filename=%q", file.Name),
	})
	if err != nil {
		s.log.Error("export upload failed", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}

	url, err := s.storage.GetPresignedURL(ctx, s.s3Cfg.Bucket, key, s.s3Cfg.PresignExpiry)
	if err != nil {
		if delErr := s.storage.Delete(ctx, s.s3Cfg.Bucket, key); delErr != nil {
			s.log.Warn("removing unsigned export failed", zap.String("key", key), zap.Error(delErr))
		}
		return nil, fmt.Errorf("projectService.PublishExport: presigning: %w", err)
	}
	return &domain.ExportLink{
		Key:       key,
		URL:       url,
		ExpiresAt: now.Add(time.Duration(s.s3Cfg.PresignExpiry) * time.Second),
	}, nil
}

func (s *projectService) render(project *domain.Project, format domain.ExportFormat) (*domain.ExportFile, error) {
	if !domain.SupportsExport(project.Kind, format) {
		return nil, domain.ErrUnsupportedExport
	}

	var data []byte
	switch project.Kind {
	case domain.ProjectKindWeb:
		bundle, ok, err := project.CodeBundle()
		if err != nil {
			return nil, fmt.Errorf("projectService.render: %w", err)
		}
		if !ok {
			return nil, domain.ErrNothingToExport
		}
		if format == domain.ExportZIP {
			data, err = export.BundleZIP(project.Name, bundle, project.UpdatedAt)
		} else {
			data, err = export.BundleHTML(project.Name, bundle)
		}
		if err != nil {
			return nil, err
		}
	case domain.ProjectKindDocument:
		doc, ok, err := project.ReportDocument()
		if err != nil {
			return nil, fmt.Errorf("projectService.render: %w", err)
		}
		if !ok {
			return nil, domain.ErrNothingToExport
		}
		switch format {
		case domain.ExportXLSX:
			data, err = export.DocumentXLSX(doc)
		case domain.ExportCSV:
			data, err = export.DocumentCSV(doc)
		default:
			data, err = export.DocumentHTML(doc)
		}
		if err != nil {
			return nil, err
		}
	}

	return &domain.ExportFile{
		Name:        export.Filename(project.Name, format),
		ContentType: domain.ExportContentTypes[format],
		Data:        data,
	}, nil
}

func artifactJSON[T any](outcome extract.Outcome, doc T) (json.RawMessage, error) {
	if outcome != extract.OutcomeSuccess {
		return nil, nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding artifact: %w", err)
	}
	return raw, nil
}

func mapProjectErr(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrProjectNotFound
	}
	return err
}
