package family

import (
	"time"

	"github.com/google/uuid"
)

type VoiceStatus string

const (
	VoicePending VoiceStatus = "pending"
	VoiceReady   VoiceStatus = "ready"
)

// Member is one registered family member of a patient.
type Member struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	PatientID       uuid.UUID   `json:"patient_id" db:"patient_id"`
	Name            string      `json:"name" db:"name"`
	Email           string      `json:"email" db:"email"`
	Relationship    string      `json:"relationship" db:"relationship"`
	ProfilePhotoURL string      `json:"profile_photo_url,omitempty" db:"profile_photo_url"`
	VoiceSampleURL  string      `json:"voice_sample_url,omitempty" db:"voice_sample_url"`
	VoiceStatus     VoiceStatus `json:"voice_status" db:"voice_status"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
}

// Contact is one emergency contact on a patient profile.
type Contact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
}

// PatientProfile holds the patient's own reference data. Read-only here;
// it is filled in by the care-team tooling, not by this API.
type PatientProfile struct {
	PatientID         uuid.UUID `json:"patient_id"`
	HomeAddress       string    `json:"home_address,omitempty"`
	DoctorName        string    `json:"doctor_name,omitempty"`
	EmergencyContacts []Contact `json:"emergency_contacts"`
}
