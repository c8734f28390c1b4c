// Package types defines the envelopes the feed engine hands to its
// frontend.
package types

import "photofeed/pkg/models"

// NoticeLevel grades how loudly the frontend should surface a notice.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a one-shot user-facing message. Notices queue up inside the
// engine and drain with the next view, so each is delivered exactly
// once.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
}

// PhotoView is a photo as the feed presents it. DistanceKm is only set
// on the proximity tabs, and only for photos that carry coordinates.
type PhotoView struct {
	models.Photo
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// FeedView is the complete presentation state for one render: the
// revealed slice of the composed feed plus everything the frontend
// needs to draw chrome around it.
type FeedView struct {
	Photos    []PhotoView     `json:"photos"`
	Total     int             `json:"total"`
	Window    int             `json:"window"`
	Category  models.Category `json:"category"`
	Tab       models.TabMode  `json:"tab"`
	Composing bool            `json:"composing"`
	MapMode   bool            `json:"map_mode"`
	FocusedID string          `json:"focused_id,omitempty"`
	ScrollTop bool            `json:"scroll_top"`
	Notices   []Notice        `json:"notices,omitempty"`
}
