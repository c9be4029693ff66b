package domain

import "errors"

var (
	ErrNotFound               = errors.New("resource not found")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrUserInactive           = errors.New("user is inactive")
	ErrDuplicateEmail         = errors.New("email already registered")
	ErrUploadFailed           = errors.New("export upload to storage failed")
	ErrEmptyPrompt            = errors.New("prompt is required")
	ErrGeneratorNotConfigured = errors.New("generator API key is not configured")
	ErrGenerationFailed       = errors.New("generation failed")
	ErrProjectNotFound        = errors.New("project not found")
	ErrInvalidProjectKind     = errors.New("invalid project kind")
	ErrUnsupportedExport      = errors.New("unsupported export format")
	ErrNothingToExport        = errors.New("project has no generated artifact yet")
	ErrRateLimited            = errors.New("rate limit exceeded")
)
