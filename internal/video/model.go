package video

import (
	"time"

	"github.com/google/uuid"
)

// Video is a "family moment" clip shown in the patient's feed.
type Video struct {
	ID             uuid.UUID `json:"id" db:"id"`
	FamilyMemberID uuid.UUID `json:"family_member_id" db:"family_member_id"`
	Title          string    `json:"title" db:"title"`
	Description    string    `json:"description,omitempty" db:"description"`
	VideoURL       string    `json:"video_url" db:"video_url"`
	ThumbnailURL   string    `json:"thumbnail_url,omitempty" db:"thumbnail_url"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`

	// Storage paths are kept so deletion can remove the objects too.
	StoragePath   string `json:"-" db:"storage_path"`
	ThumbnailPath string `json:"-" db:"thumbnail_path"`

	// Filled from the join when listing a patient's feed.
	UploaderName         string `json:"uploader_name,omitempty"`
	UploaderRelationship string `json:"uploader_relationship,omitempty"`
}
