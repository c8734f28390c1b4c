package utils

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var photoIDPattern = regexp.MustCompile("^[0-9a-f]{8}$")

// NewPhotoID generates a short unique identifier for a photo or stored
// image file. Eight hex characters are plenty for a single-user gallery.
func NewPhotoID() string {
	fullUUID := uuid.New().String()
	return strings.ReplaceAll(fullUUID[:8], "-", "")
}

// IsValidPhotoID checks whether the id matches the short identifier shape
// minted by NewPhotoID.
func IsValidPhotoID(id string) bool {
	return photoIDPattern.MatchString(id)
}

// DataURLPayloadSize returns the decoded byte size of an inline data URL,
// or 0 for network references. Used when reasoning about quota pressure.
func DataURLPayloadSize(url string) int {
	idx := strings.Index(url, "base64,")
	if !strings.HasPrefix(url, "data:") || idx < 0 {
		return 0
	}
	encoded := len(url) - idx - len("base64,")
	return encoded / 4 * 3
}
