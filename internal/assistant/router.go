package assistant

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"memory-companion/internal/family"
)

// apologyAnswer is what the patient sees when the model fails us. Warm and
// technical-detail free; the diagnostic goes to the log instead.
const apologyAnswer = "I'm sorry, I'm having a little trouble right now. Could you ask me that again?"

const classifyInstructions = `You must reply with ONLY one JSON object and no other text.
Classify the patient's query into exactly one of these six shapes:

1. The query names or points at exactly one family member:
{"type": "family_member", "family_member_id": "<id from the family list>", "answer": "<warm answer naming the person>", "show_memories": true or false}
Set "show_memories" to true when showing recorded memories of this person would help the patient.

2. The query asks how many of some relationship the patient has, or is a yes/no question about a relationship category:
{"type": "count", "count": <number>, "family_member_ids": ["<id>", ...], "answer": "<warm answer>", "show_memories": false}

3. The query asks to list or describe the whole family:
{"type": "list_all", "answer": "<warm answer>", "show_memories": false}

4. The query asks about the patient's own information (home, doctor, medication, emergency contacts):
{"type": "patient_info", "info_type": "home" or "doctor" or "medication" or "emergency", "answer": "<warm answer using the patient information>", "show_memories": false}

5. The query is general conversation needing no family or patient data:
{"type": "conversation", "answer": "<friendly reply>", "show_memories": false}

6. The query fits none of the above:
{"type": "unclear", "answer": "<gentle request to rephrase>", "show_memories": false}

The patient is memory-impaired: keep every answer short, warm and reassuring.
Use only ids that appear in the family list. Reply with ONLY the JSON object.`

// Router classifies patient queries with a single stateless model call.
type Router struct {
	model  TextModel
	logger *zap.Logger
}

func NewRouter(model TextModel, logger *zap.Logger) *Router {
	return &Router{model: model, logger: logger}
}

// rawIntent is the untrusted wire shape the model is asked to produce.
type rawIntent struct {
	Type            string   `json:"type"`
	Answer          string   `json:"answer"`
	ShowMemories    *bool    `json:"show_memories"`
	FamilyMemberID  string   `json:"family_member_id"`
	Count           *int     `json:"count"`
	FamilyMemberIDs []string `json:"family_member_ids"`
	InfoType        string   `json:"info_type"`
}

// Classify runs one classification call. It never returns an error: any
// model or parse failure becomes an IntentError result. Callers must
// short-circuit an empty roster before calling; the router assumes at least
// one member.
func (r *Router) Classify(ctx context.Context, query string, members []family.Member, profile *family.PatientProfile) IntentResult {
	prompt := buildClassifyPrompt(query, members, profile)

	raw, err := r.model.GenerateText(ctx, prompt)
	if err != nil {
		return errorResult(fmt.Sprintf("text model call failed: %v", err))
	}

	var parsed rawIntent
	if err := decodeModelJSON(raw, &parsed); err != nil {
		return errorResult(fmt.Sprintf("unparseable model response: %v", err))
	}

	return r.fromRaw(parsed)
}

func (r *Router) fromRaw(raw rawIntent) IntentResult {
	res := IntentResult{
		Kind:   IntentKind(raw.Type),
		Answer: raw.Answer,
	}

	switch res.Kind {
	case IntentFamilyMember:
		res.FamilyMemberID = raw.FamilyMemberID
		// show_memories defaults to false when the model omits it, and is
		// honored only for this kind.
		if raw.ShowMemories != nil {
			res.ShowMemories = *raw.ShowMemories
		}
	case IntentCount:
		res.Count = raw.Count
		res.FamilyMemberIDs = raw.FamilyMemberIDs
	case IntentPatientInfo:
		res.InfoType = raw.InfoType
	case IntentListAll, IntentConversation, IntentUnclear:
		// answer only
	default:
		// The model broke the six-shape contract.
		return errorResult(fmt.Sprintf("model returned unknown intent type %q", raw.Type))
	}

	if res.Answer == "" {
		res.Answer = apologyAnswer
	}
	return res
}

func buildClassifyPrompt(query string, members []family.Member, profile *family.PatientProfile) string {
	var b strings.Builder
	b.WriteString("Family members:\n")
	for _, m := range members {
		fmt.Fprintf(&b, "- id: %s, name: %s, relationship: %s\n", m.ID, m.Name, m.Relationship)
	}

	if profile != nil {
		b.WriteString("\nPatient information:\n")
		if profile.HomeAddress != "" {
			fmt.Fprintf(&b, "- home address: %s\n", profile.HomeAddress)
		}
		if profile.DoctorName != "" {
			fmt.Fprintf(&b, "- doctor: %s\n", profile.DoctorName)
		}
		if len(profile.EmergencyContacts) > 0 {
			contacts := make([]string, 0, len(profile.EmergencyContacts))
			for _, c := range profile.EmergencyContacts {
				contacts = append(contacts, fmt.Sprintf("%s (%s, %s)", c.Name, c.Relationship, c.Phone))
			}
			fmt.Fprintf(&b, "- emergency contacts: %s\n", strings.Join(contacts, "; "))
		}
	}

	fmt.Fprintf(&b, "\nPatient query: %q\n\n", query)
	b.WriteString(classifyInstructions)
	return b.String()
}

func errorResult(diagnostic string) IntentResult {
	return IntentResult{
		Kind:       IntentError,
		Answer:     apologyAnswer,
		Diagnostic: diagnostic,
	}
}
