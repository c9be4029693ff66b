package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pagecrafter/internal/config"
	"pagecrafter/internal/domain"
	"pagecrafter/internal/extract"
	"pagecrafter/internal/port"
	"pagecrafter/internal/service"
	"pagecrafter/mocks"
)

func testS3Config() config.S3Config {
	return config.S3Config{Bucket: "exports-test", PresignExpiry: 600}
}

func newProjectService(repo *mocks.MockProjectRepo, gen *mocks.MockGenerationService, storage port.ObjectStorage) service.ProjectService {
	return service.NewProjectService(repo, gen, storage, testS3Config(), zap.NewNop())
}

func webProject(userID uuid.UUID, lastCode string) *domain.Project {
	p := &domain.Project{
		ID:       uuid.New(),
		UserID:   userID,
		Name:     "Landing Page",
		Kind:     domain.ProjectKindWeb,
		Messages: json.RawMessage("[]"),
	}
	if lastCode != "" {
		p.LastCode = json.RawMessage(lastCode)
	}
	return p
}

func TestProjectService_Create_DefaultsToWeb(t *testing.T) {
	repo := new(mocks.MockProjectRepo)
	svc := newProjectService(repo, new(mocks.MockGenerationService), nil)
	userID := uuid.New()

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Project")).Return(nil)

	project, err := svc.Create(context.Background(), userID, service.CreateProjectInput{Name: "  Site  "})

	require.NoError(t, err)
	assert.Equal(t, domain.ProjectKindWeb, project.Kind)
	assert.Equal(t, "Site", project.Name)
	assert.Equal(t, userID, project.UserID)
	assert.JSONEq(t, "[]", string(project.Messages))
	repo.AssertExpectations(t)
}

func TestProjectService_Create_InvalidKind(t *testing.T) {
	repo := new(mocks.MockProjectRepo)
	svc := newProjectService(repo, new(mocks.MockGenerationService), nil)

	project, err := svc.Create(context.Background(), uuid.New(), service.CreateProjectInput{Name: "x", Kind: "slides"})

	assert.Nil(t, project)
	assert.ErrorIs(t, err, domain.ErrInvalidProjectKind)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProjectService_GetByID_NotFound(t *testing.T) {
	repo := new(mocks.MockProjectRepo)
	svc := newProjectService(repo, new(mocks.MockGenerationService), nil)
	userID, projectID := uuid.New(), uuid.New()

	repo.On("GetByID", mock.Anything, userID, projectID).Return(nil, domain.ErrNotFound)

	project, err := svc.GetByID(context.Background(), userID, projectID)

	assert.Nil(t, project)
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestProjectService_SendMessage_StoresSuccessfulBundle(t *testing.T) {
	repo := new(mocks.MockProjectRepo)
	gen := new(mocks.MockGenerationService)
	svc := newProjectService(repo, gen, nil)
	userID := uuid.New()
	project := webProject(userID, `{"html":"<p>old</p>","css":"p{}","js":""}`)

	repo.On("GetByID", mock.Anything, userID, project.ID).Return(project, nil)
	gen.On("GenerateCode", mock.Anything, service.CodeRequest{
		Prompt:       "add a footer",
		PreviousHTML: "<p>old</p>",
		PreviousCSS:  "p{}",
	}).Return(&service.CodeResult{
		ResponseText: "Added a footer.",
		Document:     domain.CodeBundle{HTML: "<p>old</p><footer></footer>"},
		Outcome:      extract.OutcomeSuccess,
	}, nil)
	repo.On("AppendExchange", mock.Anything, userID, project.ID, mock.MatchedBy(func(u port.ExchangeUpdate) bool {
		return len(u.Messages) == 2 &&
			u.Messages[0].Role == domain.RoleUser && u.Messages[0].Content == "add a footer" &&
			u.Messages[1].Role == domain.RoleAssistant && u.Messages[1].Content == "Added a footer." &&
			strings.Contains(string(u.Artifact), "<footer>")
	})).Return(project, nil)

	turn, err := svc.SendMessage(context.Background(), userID, project.ID, "add a footer")

	require.NoError(t, err)
	assert.Equal(t, "Added a footer.", turn.Response)
	assert.Equal(t, "success", turn.Outcome)
	require.NotNil(t, turn.Code)
	assert.Nil(t, turn.Document)
	repo.AssertExpectations(t)
	gen.AssertExpectations(t)
}

func TestProjectService_SendMessage_PassesPreviousPages(t *testing.T) {
	repo := new(mocks.MockProjectRepo)
	gen := new(mocks.MockGenerationService)
	svc := newProjectService(repo, gen, nil)
	userID := uuid.New()
	project := webProject(userID, `{"html":"<h1>Home</h1>","css":"","js":"","pages":{"menu":{"title":"Menu","html":"<h1>Menu</h1>","css":"","js":""}}}`)

	repo.On("GetByID", mock.Anything, userID, project.ID).Return(project, nil)
	gen.On("GenerateCode", mock.Anything, service.CodeRequest{
		Prompt:       "make it green",
		PreviousHTML: "<h1>Home</h1>",
		PreviousPages: map[string]domain.Page{
			"menu": {Title: "Menu", HTML: "<h1>Menu</h1>"},
		},
	}).Return(&service.CodeResult{
		ResponseText: "Done.",
		Document:     domain.CodeBundle{HTML: "<h1>Home</h1>"},
		Outcome:      extract.OutcomeSuccess,
	}, nil)
	repo.On("AppendExchange", mock.Anything, userID, project.ID, mock.Anything).Return(project, nil)

	_, err := svc.SendMessage(context.Background(), userID, project.ID, "make it green")

	require.NoError(t, err)
	gen.AssertExpectations(t)
}

func TestProjectService_SendMessage_ErrorArtifactNotStored(t *testing.T) {
	repo := new(mocks.MockProjectRepo)
	gen := new(mocks.MockGenerationService)
	svc := newProjectService(repo, gen, nil)
	userID := uuid.New()
	project := &domain.Project{ID: uuid.New(), UserID: userID, Kind: domain.ProjectKindDocument}

	repo.On("GetByID", mock.Anything, userID, project.ID).Return(project, nil)
	gen.On("GenerateDocument", mock.Anything, service.DocumentRequest{Prompt: "report"}).Return(&service.DocumentResult{
		ResponseText: "Here it is.",
		Document:     domain.ErrorReportDocument(extract.MessageAbsent),
		Outcome:      extract.OutcomeAbsent,
	}, nil)
	repo.On("AppendExchange", mock.Anything, userID, project.ID, mock.MatchedBy(func(u port.ExchangeUpdate) bool {
		return len(u.Messages) == 2 && u.Artifact == nil
	})).Return(project, nil)

	turn, err := svc.SendMessage(context.Background(), userID, project.ID, "report")

	require.NoError(t, err)
	assert.Equal(t, "absent", turn.Outcome)
	require.NotNil(t, turn.Document)
	assert.Equal(t, domain.ErrorTitle, turn.Document.Title)
	repo.AssertExpectations(t)
}

func TestProjectService_SendMessage_GenerationFailureWritesNothing(t *testing.T) {
	repo := new(mocks.MockProjectRepo)
	gen := new(mocks.MockGenerationService)
	svc := newProjectService(repo, gen, nil)
	userID := uuid.New()
	project := webProject(userID, "")

	repo.On("GetByID", mock.Anything, userID, project.ID).Return(project, nil)
	gen.On("GenerateCode", mock.Anything, mock.Anything).Return(nil, context.Canceled)

	turn, err := svc.SendMessage(context.Background(), userID, project.ID, "a page")

	assert.Nil(t, turn)
	assert.ErrorIs(t, err, context.Canceled)
	repo.AssertNotCalled(t, "AppendExchange", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProjectService_SendMessage_EmptyPrompt(t *testing.T) {
	repo := new(mocks.MockProjectRepo)
	svc := newProjectService(repo, new(mocks.MockGenerationService), nil)

	turn, err := svc.SendMessage(context.Background(), uuid.New(), uuid.New(), "")

	assert.Nil(t, turn)
	assert.ErrorIs(t, err, domain.ErrEmptyPrompt)
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestProjectService_Export(t *testing.T) {
	userID := uuid.New()
	tests := []struct {
		name        string
		project     *domain.Project
		format      domain.ExportFormat
		wantErr     error
		wantName    string
		wantContent string
	}{
		{
			name:        "web html",
			project:     webProject(userID, `{"html":"<h1>Hi</h1>","css":"","js":""}`),
			format:      domain.ExportHTML,
			wantName:    "landing-page.html",
			wantContent: "<h1>Hi</h1>",
		},
		{
			name:     "web zip",
			project:  webProject(userID, `{"html":"<h1>Hi</h1>","css":"","js":""}`),
			format:   domain.ExportZIP,
			wantName: "landing-page.zip",
		},
		{
			name:    "web xlsx unsupported",
			project: webProject(userID, `{"html":"<h1>Hi</h1>"}`),
			format:  domain.ExportXLSX,
			wantErr: domain.ErrUnsupportedExport,
		},
		{
			name:    "nothing generated yet",
			project: webProject(userID, ""),
			format:  domain.ExportHTML,
			wantErr: domain.ErrNothingToExport,
		},
		{
			name: "document csv",
			project: &domain.Project{
				ID: uuid.New(), UserID: userID, Name: "Report", Kind: domain.ProjectKindDocument,
				LastDocument: json.RawMessage(`{"title":"Q3","sections":[{"heading":"Intro","content":"Hello"}]}`),
			},
			format:      domain.ExportCSV,
			wantName:    "report.csv",
			wantContent: "Intro",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockProjectRepo)
			svc := newProjectService(repo, new(mocks.MockGenerationService), nil)
			repo.On("GetByID", mock.Anything, userID, tt.project.ID).Return(tt.project, nil)

			file, err := svc.Export(context.Background(), userID, tt.project.ID, tt.format)

			if tt.wantErr != nil {
				assert.Nil(t, file)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, file.Name)
			assert.Equal(t, domain.ExportContentTypes[tt.format], file.ContentType)
			assert.NotEmpty(t, file.Data)
			if tt.wantContent != "" {
				assert.Contains(t, string(file.Data), tt.wantContent)
			}
		})
	}
}

func TestProjectService_PublishExport(t *testing.T) {
	repo := new(mocks.MockProjectRepo)
	storage := new(mocks.MockObjectStorage)
	svc := newProjectService(repo, new(mocks.MockGenerationService), storage)
	userID := uuid.New()
	project := webProject(userID, `{"html":"<h1>Hi</h1>","css":"","js":""}`)

	repo.On("GetByID", mock.Anything, userID, project.ID).Return(project, nil)
	var uploadedKey, uploadedBody string
	storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.PutObjectInput) bool {
		return in.Bucket == "exports-test" &&
			strings.HasPrefix(in.Key, "exports/"+userID.String()+"/"+project.ID.String()+"/") &&
			strings.HasSuffix(in.Key, "landing-page.html") &&
			in.ContentDisposition == `attachment; filename="landing-page.html"`
	})).Run(func(args mock.Arguments) {
		in := args.Get(1).(port.PutObjectInput)
		body, _ := io.ReadAll(in.Body)
		uploadedKey, uploadedBody = in.Key, string(body)
	}).Return(&port.PutObjectOutput{Location: "s3://exports-test/key"}, nil)
	storage.On("GetPresignedURL", mock.Anything, "exports-test", mock.AnythingOfType("string"), int64(600)).
		Return("https://example.test/signed", nil)

	link, err := svc.PublishExport(context.Background(), userID, project.ID, domain.ExportHTML)

	require.NoError(t, err)
	assert.Equal(t, "https://example.test/signed", link.URL)
	assert.Equal(t, uploadedKey, link.Key)
	assert.Contains(t, uploadedBody, "<h1>Hi</h1>")
	assert.False(t, link.ExpiresAt.IsZero())
	storage.AssertExpectations(t)
}

func TestProjectService_PublishExport_UploadFailure(t *testing.T) {
	repo := new(mocks.MockProjectRepo)
	storage := new(mocks.MockObjectStorage)
	svc := newProjectService(repo, new(mocks.MockGenerationService), storage)
	userID := uuid.New()
	project := webProject(userID, `{"html":"<h1>Hi</h1>"}`)

	repo.On("GetByID", mock.Anything, userID, project.ID).Return(project, nil)
	storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	link, err := svc.PublishExport(context.Background(), userID, project.ID, domain.ExportHTML)

	assert.Nil(t, link)
	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	storage.AssertNotCalled(t, "GetPresignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProjectService_PublishExport_NoStorage(t *testing.T) {
	svc := newProjectService(new(mocks.MockProjectRepo), new(mocks.MockGenerationService), nil)

	link, err := svc.PublishExport(context.Background(), uuid.New(), uuid.New(), domain.ExportHTML)

	assert.Nil(t, link)
	assert.ErrorIs(t, err, domain.ErrUploadFailed)
}

func TestProjectService_PublishExport_PresignFailureRemovesObject(t *testing.T) {
	repo := new(mocks.MockProjectRepo)
	storage := new(mocks.MockObjectStorage)
	svc := newProjectService(repo, new(mocks.MockGenerationService), storage)
	userID := uuid.New()
	project := webProject(userID, `{"html":"<h1>Hi</h1>"}`)

	repo.On("GetByID", mock.Anything, userID, project.ID).Return(project, nil)
	storage.On("Upload", mock.Anything, mock.Anything).Return(&port.PutObjectOutput{}, nil)
	storage.On("GetPresignedURL", mock.Anything, "exports-test", mock.Anything, int64(600)).
		Return("", errors.New("no credentials"))
	storage.On("Delete", mock.Anything, "exports-test", mock.AnythingOfType("string")).Return(nil)

	link, err := svc.PublishExport(context.Background(), userID, project.ID, domain.ExportZIP)

	assert.Nil(t, link)
	assert.Error(t, err)
	storage.AssertExpectations(t)
}
