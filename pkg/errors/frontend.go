package errors

import "net/http"

// FrontendError represents an error formatted for frontend consumption
type FrontendError struct {
	Type      string                 `json:"type"`
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Retryable bool                   `json:"retryable"`
	Context   map[string]interface{} `json:"context,omitempty"`
}

// ToFrontendError converts an AppError to a frontend-friendly format
func ToFrontendError(err error) *FrontendError {
	if appErr, ok := err.(*AppError); ok {
		return &FrontendError{
			Type:      string(appErr.Type),
			Code:      appErr.Code,
			Message:   appErr.GetUserMessage(),
			Retryable: appErr.Retryable,
			Context:   appErr.Context,
		}
	}

	return &FrontendError{
		Type:      string(ErrTypeApp),
		Code:      "GENERIC_ERROR",
		Message:   "An unexpected error occurred. Please try again",
		Retryable: true,
		Context:   map[string]interface{}{"originalError": err.Error()},
	}
}

// HTTPStatus maps an error to the status code the API responds with.
// Storage exhaustion is the one persist-path condition reported as fatal,
// hence 507.
func HTTPStatus(err error) int {
	appErr, ok := err.(*AppError)
	if !ok {
		return http.StatusInternalServerError
	}

	switch appErr.Code {
	case "PHOTO_NOT_FOUND", "IMAGE_NOT_FOUND":
		return http.StatusNotFound
	case "DELETE_NOT_CONFIRMED":
		return http.StatusConflict
	case "STORAGE_EXHAUSTED":
		return http.StatusInsufficientStorage
	case "QUOTA_EXCEEDED":
		return http.StatusInsufficientStorage
	}

	switch appErr.Type {
	case ErrTypeValidation:
		return http.StatusBadRequest
	case ErrTypeLocation:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
