package errors

import (
	"os"
	"path/filepath"
	"strings"

	"photofeed/pkg/models"
)

// ValidationResult holds validation results
type ValidationResult struct {
	IsValid bool
	Errors  []*AppError
}

// AddError adds an error to the validation result
func (vr *ValidationResult) AddError(err *AppError) {
	vr.IsValid = false
	vr.Errors = append(vr.Errors, err)
}

// GetFirstError returns the first error or nil
func (vr *ValidationResult) GetFirstError() *AppError {
	if len(vr.Errors) > 0 {
		return vr.Errors[0]
	}
	return nil
}

// Validator provides validation utilities
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidatePhoto validates a fully-formed photo record before it enters the
// collection.
func (v *Validator) ValidatePhoto(photo models.Photo) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if strings.TrimSpace(photo.ID) == "" {
		result.AddError(New(ErrTypeValidation, "PHOTO_ID_EMPTY", "photo id cannot be empty").
			WithUserMessage("Photo is missing an identifier"))
	}

	if strings.TrimSpace(photo.URL) == "" {
		result.AddError(New(ErrTypeValidation, "PHOTO_URL_EMPTY", "photo url cannot be empty").
			WithUserMessage("Photo is missing its image reference"))
	}

	if !photo.Category.Storable() {
		result.AddError(ErrInvalidCategory.WithContext("category", string(photo.Category)))
	}

	if photo.Rating < 0 || photo.Rating > 5 {
		result.AddError(New(ErrTypeValidation, "RATING_OUT_OF_RANGE", "rating must be between 0 and 5").
			WithUserMessage("Rating must be between 0 and 5").
			WithContext("rating", photo.Rating))
	}

	if photo.Width < 0 || photo.Height < 0 {
		result.AddError(New(ErrTypeValidation, "DIMENSIONS_NEGATIVE", "dimensions cannot be negative").
			WithUserMessage("Photo dimensions are invalid"))
	}

	if (photo.Exif.Latitude == nil) != (photo.Exif.Longitude == nil) {
		result.AddError(New(ErrTypeValidation, "COORDINATE_INCOMPLETE", "latitude and longitude must both be present or both absent").
			WithUserMessage("Photo location is incomplete"))
	}

	return result
}

// ValidatePhotoID validates photo ID format
func (v *Validator) ValidatePhotoID(id string) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if strings.TrimSpace(id) == "" {
		result.AddError(New(ErrTypeValidation, "PHOTO_ID_EMPTY", "photo id cannot be empty").
			WithUserMessage("Photo ID is required"))
		return result
	}

	if len(id) < 8 {
		result.AddError(New(ErrTypeValidation, "PHOTO_ID_INVALID", "invalid photo id format").
			WithUserMessage("Invalid photo ID format"))
	}

	return result
}

// ValidateFilter validates a category filter, pseudo categories included.
func (v *Validator) ValidateFilter(category models.Category) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if !category.ValidFilter() {
		result.AddError(ErrInvalidCategory.WithContext("category", string(category)))
	}

	return result
}

// ValidateTab validates a tab mode.
func (v *Validator) ValidateTab(tab models.TabMode) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if !tab.Valid() {
		result.AddError(ErrInvalidTab.WithContext("tab", string(tab)))
	}

	return result
}

// ValidateDirectoryPath validates directory path and permissions
func (v *Validator) ValidateDirectoryPath(path string) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if strings.TrimSpace(path) == "" {
		result.AddError(New(ErrTypeValidation, "PATH_EMPTY", "directory path cannot be empty").
			WithUserMessage("Directory path cannot be empty"))
		return result
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		result.AddError(Wrap(err, ErrTypeIO, "DIR_CREATE_FAILED", "cannot create directory").
			WithUserMessage("Cannot create directory. Check permissions").
			WithContext("path", path))
	}

	return result
}
