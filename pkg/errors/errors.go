package errors

import (
	"fmt"

	"go.uber.org/zap"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	// Storage errors (gallery slot, image files)
	ErrTypeStorage ErrorType = "storage"
	// Geolocation errors
	ErrTypeLocation ErrorType = "location"
	// Configuration errors
	ErrTypeConfig ErrorType = "configuration"
	// Validation errors
	ErrTypeValidation ErrorType = "validation"
	// Network/IO errors
	ErrTypeIO ErrorType = "io"
	// Generic application errors
	ErrTypeApp ErrorType = "application"
)

// AppError represents a structured application error
type AppError struct {
	Type        ErrorType              `json:"type"`
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	UserMessage string                 `json:"userMessage"`
	InternalErr error                  `json:"-"`
	Retryable   bool                   `json:"retryable"`
	Context     map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.InternalErr != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Type, e.Code, e.Message, e.InternalErr)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

// Unwrap exposes the wrapped internal error to errors.Is/As chains.
func (e *AppError) Unwrap() error {
	return e.InternalErr
}

// Is matches on the error code, so derived copies created by the With*
// builders still compare equal to their predefined origin.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// GetUserMessage returns a user-friendly error message
func (e *AppError) GetUserMessage() string {
	if e.UserMessage != "" {
		return e.UserMessage
	}
	return e.Message
}

// WithContext returns a copy of the error with context information added.
// The receiver is left untouched so predefined errors stay clean.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	clone := e.clone()
	clone.Context[key] = value
	return clone
}

// WithInternal returns a copy of the error wrapping the given cause.
func (e *AppError) WithInternal(err error) *AppError {
	clone := e.clone()
	clone.InternalErr = err
	return clone
}

// WithUserMessage sets a user-friendly message
func (e *AppError) WithUserMessage(msg string) *AppError {
	clone := e.clone()
	clone.UserMessage = msg
	return clone
}

// WithRetryable marks the error as retryable
func (e *AppError) WithRetryable(retryable bool) *AppError {
	clone := e.clone()
	clone.Retryable = retryable
	return clone
}

// IsRetryable checks if the error can be retried
func (e *AppError) IsRetryable() bool {
	return e.Retryable
}

func (e *AppError) clone() *AppError {
	clone := *e
	clone.Context = make(map[string]interface{}, len(e.Context)+1)
	for k, v := range e.Context {
		clone.Context[k] = v
	}
	return &clone
}

// Log writes the error to the given logger with its structured fields.
func (e *AppError) Log(logger *zap.Logger) {
	fields := []zap.Field{
		zap.String("errorType", string(e.Type)),
		zap.String("code", e.Code),
	}
	if e.InternalErr != nil {
		fields = append(fields, zap.Error(e.InternalErr))
	}
	for k, v := range e.Context {
		fields = append(fields, zap.Any(k, v))
	}
	logger.Error(e.Message, fields...)
}

// New creates a new AppError
func New(errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:    errType,
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:        errType,
		Code:        code,
		Message:     message,
		InternalErr: err,
	}
}

// IsCode reports whether err is an AppError carrying the given code.
func IsCode(err error, code string) bool {
	for err != nil {
		if appErr, ok := err.(*AppError); ok && appErr.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Predefined errors for common scenarios
var (
	// Storage errors
	ErrQuotaExceeded = New(ErrTypeStorage, "QUOTA_EXCEEDED", "storage quota exceeded").
				WithUserMessage("Local storage is full")

	ErrStorageExhausted = New(ErrTypeStorage, "STORAGE_EXHAUSTED", "storage exhausted with nothing left to evict").
				WithUserMessage("Storage is full and no further cleanup is possible. Recent changes are kept in memory only")

	ErrPhotoNotFound = New(ErrTypeStorage, "PHOTO_NOT_FOUND", "photo not found").
				WithUserMessage("The requested photo could not be found")

	ErrImageNotFound = New(ErrTypeStorage, "IMAGE_NOT_FOUND", "image file not found").
				WithUserMessage("The requested image could not be found")

	ErrFileReadFailed = New(ErrTypeIO, "FILE_READ_FAILED", "failed to read file").
				WithUserMessage("Unable to read file. It may be corrupted or inaccessible")

	ErrFileWriteFailed = New(ErrTypeIO, "FILE_WRITE_FAILED", "failed to write file").
				WithUserMessage("Unable to save file. Check disk space and permissions").
				WithRetryable(true)

	// Location errors, one per failure class
	ErrLocationPermission = New(ErrTypeLocation, "GEO_PERMISSION_DENIED", "location permission denied").
				WithUserMessage("Location access was denied. Distance ordering is unavailable")

	ErrLocationUnavailable = New(ErrTypeLocation, "GEO_UNAVAILABLE", "position unavailable").
				WithUserMessage("Your location could not be determined right now").
				WithRetryable(true)

	ErrLocationTimeout = New(ErrTypeLocation, "GEO_TIMEOUT", "location request timed out").
				WithUserMessage("Finding your location took too long. Try again").
				WithRetryable(true)

	ErrLocationUnsupported = New(ErrTypeLocation, "GEO_UNSUPPORTED", "no location source available").
				WithUserMessage("Location is not available on this device")

	ErrLocationUnknown = New(ErrTypeLocation, "GEO_UNKNOWN", "location request failed").
				WithUserMessage("Something went wrong while finding your location").
				WithRetryable(true)

	// Validation and flow errors
	ErrDeleteNotConfirmed = New(ErrTypeValidation, "DELETE_NOT_CONFIRMED", "delete not confirmed").
				WithUserMessage("Deletion was cancelled")

	ErrInvalidCategory = New(ErrTypeValidation, "INVALID_CATEGORY", "unknown category filter").
				WithUserMessage("Unknown category")

	ErrInvalidTab = New(ErrTypeValidation, "INVALID_TAB", "unknown tab mode").
			WithUserMessage("Unknown tab")

	ErrNotAnImage = New(ErrTypeValidation, "NOT_AN_IMAGE", "upload is not a supported image").
			WithUserMessage("Only image uploads are supported")

	// Configuration errors
	ErrConfigLoadFailed = New(ErrTypeConfig, "CONFIG_LOAD_FAILED", "failed to load configuration").
				WithUserMessage("Configuration file could not be loaded. Using defaults")

	ErrConfigSaveFailed = New(ErrTypeConfig, "CONFIG_SAVE_FAILED", "failed to save configuration").
				WithUserMessage("Unable to save settings. Check permissions")
)

// RetryHandler provides retry functionality for operations
type RetryHandler struct {
	MaxAttempts int
	OnRetry     func(attempt int, err error)
}

// NewRetryHandler creates a new retry handler
func NewRetryHandler(maxAttempts int) *RetryHandler {
	return &RetryHandler{
		MaxAttempts: maxAttempts,
	}
}

// Execute runs a function with retry logic. Non-retryable AppErrors are
// returned immediately.
func (r *RetryHandler) Execute(fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		if appErr, ok := err.(*AppError); ok && !appErr.IsRetryable() {
			return err
		}

		if attempt < r.MaxAttempts && r.OnRetry != nil {
			r.OnRetry(attempt, err)
		}
	}

	return Wrap(lastErr, ErrTypeApp, "MAX_RETRIES_EXCEEDED",
		fmt.Sprintf("operation failed after %d attempts", r.MaxAttempts)).
		WithUserMessage("Operation failed after multiple attempts. Please try again later")
}
