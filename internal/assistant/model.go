package assistant

import (
	"context"

	"github.com/google/uuid"

	"memory-companion/internal/family"
	"memory-companion/internal/memory"
)

// IntentKind tags what the patient's query is asking for.
type IntentKind string

const (
	IntentFamilyMember IntentKind = "family_member"
	IntentCount        IntentKind = "count"
	IntentListAll      IntentKind = "list_all"
	IntentPatientInfo  IntentKind = "patient_info"
	IntentConversation IntentKind = "conversation"
	IntentUnclear      IntentKind = "unclear"

	// IntentError is never produced by the model. The router injects it when
	// the model call fails or its output cannot be parsed.
	IntentError IntentKind = "error"
)

// IntentResult is the router's classification of one query. Ephemeral; it
// only lives long enough to drive response composition.
type IntentResult struct {
	Kind         IntentKind
	Answer       string
	ShowMemories bool

	// family_member
	FamilyMemberID string

	// count
	Count           *int
	FamilyMemberIDs []string

	// patient_info
	InfoType string

	// Diagnostic is logged, never returned to the patient.
	Diagnostic string
}

// Envelope is the JSON shape returned to the chat client.
type Envelope struct {
	Type         IntentKind `json:"type"`
	Answer       string     `json:"answer"`
	ShowMemories bool       `json:"show_memories"`

	FamilyMember  *family.Member         `json:"family_member,omitempty"`
	FamilyMembers []family.Member        `json:"family_members"`
	Memories      []memory.Memory        `json:"memories"`
	Count         *int                   `json:"count,omitempty"`
	InfoType      string                 `json:"info_type,omitempty"`
	PatientInfo   *family.PatientProfile `json:"patient_info,omitempty"`
}

type MatchOutcome string

const (
	MatchFound   MatchOutcome = "found"
	MatchUnknown MatchOutcome = "unknown"
	MatchError   MatchOutcome = "error"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	ConfidenceNone   Confidence = "none"
)

// PhotoMatchResult is the matcher's verdict on one uploaded photo.
type PhotoMatchResult struct {
	Match          MatchOutcome
	FamilyMemberID string
	Name           string
	Relationship   string
	Confidence     Confidence
	Reasoning      string
	Diagnostic     string
}

// Image carries raw image bytes for a vision call.
type Image struct {
	MIMEType string
	Data     []byte
}

// TextModel is the generative text oracle. Its output is untrusted free text
// that is expected, but not guaranteed, to contain a JSON object.
type TextModel interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// VisionModel compares the uploaded image against reference images.
type VisionModel interface {
	GenerateVision(ctx context.Context, prompt string, images []Image) (string, error)
}

// RosterStore is the slice of the family roster the assistant reads.
type RosterStore interface {
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]family.Member, error)
	GetByID(ctx context.Context, id uuid.UUID) (*family.Member, error)
	GetProfile(ctx context.Context, patientID uuid.UUID) (*family.PatientProfile, error)
}

// MemoryStore provides a member's memories for family_member envelopes.
type MemoryStore interface {
	ListByFamilyMember(ctx context.Context, familyMemberID uuid.UUID) ([]memory.Memory, error)
}
