package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"memory-companion/internal/family"
)

const matchInstructions = `
INSTRUCTIONS:
1. Look at the FIRST image (the uploaded photo).
2. Compare the person's face with the reference photos that follow.
3. Consider facial features, age, gender, hair and overall appearance.
4. Identify the BEST MATCH from the family members listed above.
5. If the person does not clearly match anyone, return "unknown".

Only return "found" if you are reasonably confident. Photos may come from
different times, angles and lighting; the person should look like the SAME
individual, not just similar.

Return ONLY valid JSON:
{"match": "found" or "unknown", "matched_number": <number from the list above, if found>, "confidence": "high" or "medium" or "low" or "none", "reasoning": "<brief explanation>"}
Return ONLY the JSON, no extra text.`

// Matcher identifies the person in an uploaded photo by comparing against
// the roster's profile photos through the vision model.
type Matcher struct {
	vision  VisionModel
	fetcher *resty.Client
	logger  *zap.Logger
}

// NewMatcher builds a matcher whose reference-photo downloads are each
// bounded by fetchTimeout.
func NewMatcher(vision VisionModel, fetchTimeout time.Duration, logger *zap.Logger) *Matcher {
	fetcher := resty.New().
		SetTimeout(fetchTimeout).
		SetHeader("Accept", "image/*")
	return &Matcher{vision: vision, fetcher: fetcher, logger: logger}
}

type rawMatch struct {
	Match         string `json:"match"`
	MatchedNumber int    `json:"matched_number"`
	Confidence    string `json:"confidence"`
	Reasoning     string `json:"reasoning"`
}

// MatchPhoto never returns an error; terminal failures become a MatchError
// result the handler can phrase warmly.
func (m *Matcher) MatchPhoto(ctx context.Context, uploaded Image, members []family.Member) PhotoMatchResult {
	positions := map[int]family.Member{}
	images := []Image{uploaded}

	var roster strings.Builder
	roster.WriteString("The patient uploaded the first photo below.\n\n")
	roster.WriteString("Compare this person to these family members:\n\n")

	skipped := 0
	for _, member := range members {
		if member.ProfilePhotoURL == "" {
			continue
		}
		ref, err := m.fetchReference(ctx, member.ProfilePhotoURL)
		if err != nil {
			// One dead photo host must not sink the whole identification.
			skipped++
			m.logger.Warn("reference photo fetch failed",
				zap.String("family_member_id", member.ID.String()),
				zap.Error(err),
			)
			continue
		}
		num := len(positions) + 1
		positions[num] = member
		images = append(images, ref)
		fmt.Fprintf(&roster, "%d. %s (%s) - see reference photo %d\n", num, member.Name, member.Relationship, num)
	}
	if skipped > 0 {
		m.logger.Warn("reference photos skipped", zap.Int("skipped", skipped), zap.Int("fetched", len(positions)))
	}

	if len(positions) == 0 {
		// Nothing to compare against; skip the vision call entirely.
		return PhotoMatchResult{
			Match:      MatchUnknown,
			Confidence: ConfidenceNone,
			Reasoning:  "No family member photos available for comparison",
		}
	}

	prompt := roster.String() + matchInstructions
	raw, err := m.vision.GenerateVision(ctx, prompt, images)
	if err != nil {
		return errorMatch(fmt.Sprintf("vision model call failed: %v", err))
	}

	var parsed rawMatch
	if err := decodeModelJSON(raw, &parsed); err != nil {
		return errorMatch(fmt.Sprintf("unparseable vision response: %v", err))
	}

	if parsed.Match == string(MatchFound) {
		member, ok := positions[parsed.MatchedNumber]
		if ok {
			return PhotoMatchResult{
				Match:          MatchFound,
				FamilyMemberID: member.ID.String(),
				Name:           member.Name,
				Relationship:   member.Relationship,
				Confidence:     normalizeConfidence(parsed.Confidence, ConfidenceMedium),
				Reasoning:      parsed.Reasoning,
			}
		}
		// The model invented a position that was never assigned.
		m.logger.Warn("vision model returned unassigned position",
			zap.Int("matched_number", parsed.MatchedNumber),
			zap.Int("references", len(positions)),
		)
	}

	reasoning := parsed.Reasoning
	if reasoning == "" {
		reasoning = "Could not identify this person"
	}
	return PhotoMatchResult{
		Match:      MatchUnknown,
		Confidence: normalizeConfidence(parsed.Confidence, ConfidenceNone),
		Reasoning:  reasoning,
	}
}

func (m *Matcher) fetchReference(ctx context.Context, url string) (Image, error) {
	resp, err := m.fetcher.R().SetContext(ctx).Get(url)
	if err != nil {
		return Image{}, err
	}
	if !resp.IsSuccess() {
		return Image{}, fmt.Errorf("photo host returned %s", resp.Status())
	}
	mimeType := resp.Header().Get("Content-Type")
	if mimeType == "" || !strings.HasPrefix(mimeType, "image/") {
		mimeType = "image/jpeg"
	}
	return Image{MIMEType: mimeType, Data: resp.Body()}, nil
}

func normalizeConfidence(s string, def Confidence) Confidence {
	switch Confidence(s) {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow, ConfidenceNone:
		return Confidence(s)
	default:
		return def
	}
}

// HedgeFor picks the phrasing the patient hears for a given confidence.
// Advisory only; control flow never branches on confidence.
func HedgeFor(c Confidence) string {
	switch c {
	case ConfidenceHigh:
		return "I'm quite confident"
	case ConfidenceMedium:
		return "I believe"
	default:
		return "This might be"
	}
}

func errorMatch(diagnostic string) PhotoMatchResult {
	return PhotoMatchResult{
		Match:      MatchError,
		Confidence: ConfidenceNone,
		Reasoning:  "Something went wrong while looking at the photo",
		Diagnostic: diagnostic,
	}
}
