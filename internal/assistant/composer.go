package assistant

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"memory-companion/internal/family"
	"memory-companion/internal/memory"
)

// Composer turns an IntentResult into the envelope the chat client renders,
// fetching whatever extra data the intent kind calls for.
type Composer struct {
	roster   RosterStore
	memories MemoryStore
	logger   *zap.Logger
}

func NewComposer(roster RosterStore, memories MemoryStore, logger *zap.Logger) *Composer {
	return &Composer{roster: roster, memories: memories, logger: logger}
}

func (c *Composer) Compose(ctx context.Context, res IntentResult, members []family.Member, profile *family.PatientProfile) Envelope {
	var env Envelope
	switch res.Kind {
	case IntentFamilyMember:
		env = c.composeFamilyMember(ctx, res, members)
	case IntentCount:
		env = c.composeCount(res, members)
	case IntentListAll:
		env = Envelope{Type: IntentListAll, Answer: res.Answer, FamilyMembers: members}
	case IntentPatientInfo:
		env = Envelope{Type: IntentPatientInfo, Answer: res.Answer, InfoType: res.InfoType, PatientInfo: profile}
	default:
		// conversation, unclear, error: answer only.
		env = Envelope{Type: res.Kind, Answer: res.Answer}
	}
	return withListsPresent(env)
}

// The chat client always reads memories and family_members; the keys must
// serialize as [] rather than disappear.
func withListsPresent(env Envelope) Envelope {
	if env.FamilyMembers == nil {
		env.FamilyMembers = []family.Member{}
	}
	if env.Memories == nil {
		env.Memories = []memory.Memory{}
	}
	return env
}

func (c *Composer) composeFamilyMember(ctx context.Context, res IntentResult, members []family.Member) Envelope {
	id, err := uuid.Parse(res.FamilyMemberID)
	if err != nil || !rosterContains(members, id) {
		// The model named someone who is not on this patient's roster. Never
		// propagate a dangling reference.
		c.logger.Warn("model named unknown family member",
			zap.String("family_member_id", res.FamilyMemberID),
		)
		return errorEnvelope("I'm sorry, I couldn't work out which family member you mean. Could you ask me again?")
	}

	member, err := c.roster.GetByID(ctx, id)
	if err != nil {
		c.logger.Warn("family member re-fetch failed",
			zap.String("family_member_id", id.String()),
			zap.Error(err),
		)
		return errorEnvelope("I'm sorry, I couldn't work out which family member you mean. Could you ask me again?")
	}

	env := Envelope{
		Type:         IntentFamilyMember,
		Answer:       res.Answer,
		ShowMemories: res.ShowMemories,
		FamilyMember: member,
		Memories:     []memory.Memory{},
	}
	if res.ShowMemories {
		memories, err := c.memories.ListByFamilyMember(ctx, id)
		if err != nil {
			// The identification itself still stands; show it without the list.
			c.logger.Error("memory list fetch failed",
				zap.String("family_member_id", id.String()),
				zap.Error(err),
			)
		} else {
			env.Memories = memories
		}
	}
	return env
}

func (c *Composer) composeCount(res IntentResult, members []family.Member) Envelope {
	byID := make(map[uuid.UUID]family.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}

	resolved := []family.Member{}
	skipped := 0
	for _, idStr := range res.FamilyMemberIDs {
		id, err := uuid.Parse(idStr)
		if err != nil {
			skipped++
			continue
		}
		m, ok := byID[id]
		if !ok {
			skipped++
			continue
		}
		resolved = append(resolved, m)
	}
	if skipped > 0 {
		// Partial resolution is tolerated, but a climbing skip count would
		// point at a drifting roster or a misbehaving model.
		c.logger.Warn("count intent named unresolvable ids",
			zap.Int("skipped", skipped),
			zap.Int("resolved", len(resolved)),
		)
	}

	count := len(resolved)
	if res.Count != nil {
		count = *res.Count
	}

	return Envelope{
		Type:          IntentCount,
		Answer:        res.Answer,
		FamilyMembers: resolved,
		Count:         &count,
	}
}

func rosterContains(members []family.Member, id uuid.UUID) bool {
	for _, m := range members {
		if m.ID == id {
			return true
		}
	}
	return false
}

func errorEnvelope(answer string) Envelope {
	return Envelope{Type: IntentError, Answer: answer}
}
