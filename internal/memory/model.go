package memory

import (
	"time"

	"github.com/google/uuid"
)

// Memory is one recorded moment a family member wants the patient to keep.
// AudioURL stays empty until synthesis in the member's voice has succeeded.
type Memory struct {
	ID             uuid.UUID `json:"id" db:"id"`
	FamilyMemberID uuid.UUID `json:"family_member_id" db:"family_member_id"`
	Title          string    `json:"title" db:"title"`
	Content        string    `json:"content" db:"content"`
	AudioURL       string    `json:"audio_url,omitempty" db:"audio_url"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	Photos         []Photo   `json:"photos"`
}

type Photo struct {
	ID       uuid.UUID `json:"id" db:"id"`
	MemoryID uuid.UUID `json:"memory_id" db:"memory_id"`
	PhotoURL string    `json:"photo_url" db:"photo_url"`
}
