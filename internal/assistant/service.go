package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const noFamilyAnswer = "I don't see any family members registered yet. Once your family adds themselves, I can help you remember them."

// PhotoEnvelope is the JSON shape returned for photo identification.
type PhotoEnvelope struct {
	Type           IntentKind   `json:"type"`
	Match          MatchOutcome `json:"match"`
	Answer         string       `json:"answer"`
	ShowMemories   bool         `json:"show_memories"`
	FamilyMemberID string       `json:"family_member_id,omitempty"`
	Name           string       `json:"name,omitempty"`
	Relationship   string       `json:"relationship,omitempty"`
	Confidence     Confidence   `json:"confidence"`
	Reasoning      string       `json:"reasoning,omitempty"`
}

// Service ties the router, composer and matcher to the patient's roster.
type Service struct {
	roster   RosterStore
	router   *Router
	composer *Composer
	matcher  *Matcher
	logger   *zap.Logger
}

func NewService(roster RosterStore, memories MemoryStore, text TextModel, vision VisionModel, photoFetchTimeout time.Duration, logger *zap.Logger) *Service {
	return &Service{
		roster:   roster,
		router:   NewRouter(text, logger),
		composer: NewComposer(roster, memories, logger),
		matcher:  NewMatcher(vision, photoFetchTimeout, logger),
		logger:   logger,
	}
}

// Answer handles one patient query end to end: roster load, classification,
// composition. External failures surface as warm error envelopes, not errors.
func (s *Service) Answer(ctx context.Context, patientID uuid.UUID, query string) (Envelope, error) {
	members, err := s.roster.ListByPatient(ctx, patientID)
	if err != nil {
		return Envelope{}, fmt.Errorf("load roster: %w", err)
	}
	if len(members) == 0 {
		// The router is never called with an empty roster.
		return withListsPresent(Envelope{Type: IntentConversation, Answer: noFamilyAnswer}), nil
	}

	profile, err := s.roster.GetProfile(ctx, patientID)
	if err != nil {
		// The profile is optional context; classify without it.
		s.logger.Warn("patient profile load failed",
			zap.String("patient_id", patientID.String()),
			zap.Error(err),
		)
		profile = nil
	}

	result := s.router.Classify(ctx, query, members, profile)
	if result.Kind == IntentError {
		s.logger.Error("query classification failed",
			zap.String("patient_id", patientID.String()),
			zap.String("diagnostic", result.Diagnostic),
		)
	} else {
		s.logger.Info("query classified",
			zap.String("patient_id", patientID.String()),
			zap.String("intent", string(result.Kind)),
		)
	}

	return s.composer.Compose(ctx, result, members, profile), nil
}

// IdentifyPhoto matches an uploaded photo against the roster's profile
// photos and phrases the verdict for the patient.
func (s *Service) IdentifyPhoto(ctx context.Context, patientID uuid.UUID, uploaded Image) (PhotoEnvelope, error) {
	members, err := s.roster.ListByPatient(ctx, patientID)
	if err != nil {
		return PhotoEnvelope{}, fmt.Errorf("load roster: %w", err)
	}
	if len(members) == 0 {
		return PhotoEnvelope{
			Type:       IntentConversation,
			Match:      MatchUnknown,
			Answer:     noFamilyAnswer,
			Confidence: ConfidenceNone,
		}, nil
	}

	result := s.matcher.MatchPhoto(ctx, uploaded, members)
	if result.Match == MatchError {
		s.logger.Error("photo identification failed",
			zap.String("patient_id", patientID.String()),
			zap.String("diagnostic", result.Diagnostic),
		)
	} else {
		s.logger.Info("photo identified",
			zap.String("patient_id", patientID.String()),
			zap.String("match", string(result.Match)),
			zap.String("confidence", string(result.Confidence)),
		)
	}

	env := PhotoEnvelope{
		Match:          result.Match,
		FamilyMemberID: result.FamilyMemberID,
		Name:           result.Name,
		Relationship:   result.Relationship,
		Confidence:     result.Confidence,
		Reasoning:      result.Reasoning,
	}
	switch result.Match {
	case MatchFound:
		env.Type = IntentFamilyMember
		env.Answer = fmt.Sprintf("%s this is %s, your %s.", HedgeFor(result.Confidence), result.Name, result.Relationship)
	case MatchError:
		env.Type = IntentError
		env.Answer = "I'm sorry, I had trouble looking at that photo. Could you try again?"
	default:
		env.Type = IntentConversation
		env.Answer = "I'm not sure who this is. It doesn't quite look like anyone in your family album."
	}
	return env, nil
}
