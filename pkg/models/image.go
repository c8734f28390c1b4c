package models

import "time"

// ImageFile describes an original upload kept on disk because it was too
// large to inline into the gallery slot.
type ImageFile struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}
