package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"memory-companion/internal/family"
)

type fakeTextModel struct {
	reply      string
	err        error
	lastPrompt string
	calls      int
}

func (f *fakeTextModel) GenerateText(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	return f.reply, f.err
}

func testRoster() []family.Member {
	return []family.Member{
		{ID: uuid.MustParse("11111111-1111-1111-1111-111111111111"), Name: "Sarah", Relationship: "daughter"},
		{ID: uuid.MustParse("22222222-2222-2222-2222-222222222222"), Name: "Tom", Relationship: "son"},
	}
}

func TestClassify_FamilyMember(t *testing.T) {
	model := &fakeTextModel{reply: `{"type":"family_member","family_member_id":"11111111-1111-1111-1111-111111111111","answer":"That's Sarah, your daughter.","show_memories":true}`}
	router := NewRouter(model, zap.NewNop())

	res := router.Classify(context.Background(), "Who is my daughter?", testRoster(), nil)

	assert.Equal(t, IntentFamilyMember, res.Kind)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", res.FamilyMemberID)
	assert.True(t, res.ShowMemories)
	assert.NotEmpty(t, res.Answer)
	assert.Contains(t, res.Answer, "Sarah")
}

func TestClassify_ShowMemoriesDefaultsFalse(t *testing.T) {
	model := &fakeTextModel{reply: `{"type":"family_member","family_member_id":"11111111-1111-1111-1111-111111111111","answer":"That's Sarah."}`}
	router := NewRouter(model, zap.NewNop())

	res := router.Classify(context.Background(), "who is sarah", testRoster(), nil)

	assert.Equal(t, IntentFamilyMember, res.Kind)
	assert.False(t, res.ShowMemories)
}

func TestClassify_ShowMemoriesIgnoredForOtherKinds(t *testing.T) {
	// A misbehaving model sets show_memories on a count reply; it must not
	// survive classification.
	model := &fakeTextModel{reply: `{"type":"count","count":2,"family_member_ids":["a","b"],"answer":"Two sons.","show_memories":true}`}
	router := NewRouter(model, zap.NewNop())

	res := router.Classify(context.Background(), "how many sons do I have", testRoster(), nil)

	assert.Equal(t, IntentCount, res.Kind)
	assert.False(t, res.ShowMemories)
	require.NotNil(t, res.Count)
	assert.Equal(t, 2, *res.Count)
	assert.Equal(t, []string{"a", "b"}, res.FamilyMemberIDs)
}

func TestClassify_ListAll(t *testing.T) {
	model := &fakeTextModel{reply: `{"type":"list_all","answer":"Here is your whole family.","show_memories":false}`}
	router := NewRouter(model, zap.NewNop())

	res := router.Classify(context.Background(), "tell me about my family", testRoster(), nil)

	assert.Equal(t, IntentListAll, res.Kind)
	assert.False(t, res.ShowMemories)
}

func TestClassify_PatientInfo(t *testing.T) {
	model := &fakeTextModel{reply: `{"type":"patient_info","info_type":"doctor","answer":"Your doctor is Dr. Lee.","show_memories":false}`}
	router := NewRouter(model, zap.NewNop())

	res := router.Classify(context.Background(), "who is my doctor", testRoster(), &family.PatientProfile{DoctorName: "Dr. Lee"})

	assert.Equal(t, IntentPatientInfo, res.Kind)
	assert.Equal(t, "doctor", res.InfoType)
}

func TestClassify_FencedConversation(t *testing.T) {
	model := &fakeTextModel{reply: "```json\n{\"type\":\"conversation\",\"answer\":\"Hello there!\",\"show_memories\":false}\n```"}
	router := NewRouter(model, zap.NewNop())

	res := router.Classify(context.Background(), "hello", testRoster(), nil)

	assert.Equal(t, IntentConversation, res.Kind)
	assert.Equal(t, "Hello there!", res.Answer)
}

func TestClassify_UnknownTypeBecomesError(t *testing.T) {
	model := &fakeTextModel{reply: `{"type":"greeting","answer":"hi"}`}
	router := NewRouter(model, zap.NewNop())

	res := router.Classify(context.Background(), "hello", testRoster(), nil)

	assert.Equal(t, IntentError, res.Kind)
	assert.Equal(t, apologyAnswer, res.Answer)
	assert.NotEmpty(t, res.Diagnostic)
}

func TestClassify_ModelErrorBecomesError(t *testing.T) {
	model := &fakeTextModel{err: errors.New("quota exceeded")}
	router := NewRouter(model, zap.NewNop())

	res := router.Classify(context.Background(), "hello", testRoster(), nil)

	assert.Equal(t, IntentError, res.Kind)
	assert.Equal(t, apologyAnswer, res.Answer)
	assert.Contains(t, res.Diagnostic, "quota exceeded")
	assert.False(t, res.ShowMemories)
}

func TestClassify_GarbageBecomesError(t *testing.T) {
	model := &fakeTextModel{reply: "I am not sure what you mean by that."}
	router := NewRouter(model, zap.NewNop())

	res := router.Classify(context.Background(), "???", testRoster(), nil)

	assert.Equal(t, IntentError, res.Kind)
	assert.Equal(t, apologyAnswer, res.Answer)
}

func TestClassify_PromptCarriesContext(t *testing.T) {
	model := &fakeTextModel{reply: `{"type":"unclear","answer":"Could you say that differently?"}`}
	router := NewRouter(model, zap.NewNop())

	profile := &family.PatientProfile{
		HomeAddress: "12 Rose Lane",
		DoctorName:  "Dr. Lee",
		EmergencyContacts: []family.Contact{
			{Name: "Sarah", Relationship: "daughter", Phone: "555-1234"},
		},
	}
	router.Classify(context.Background(), "where do I live?", testRoster(), profile)

	assert.Contains(t, model.lastPrompt, "Sarah")
	assert.Contains(t, model.lastPrompt, "daughter")
	assert.Contains(t, model.lastPrompt, "11111111-1111-1111-1111-111111111111")
	assert.Contains(t, model.lastPrompt, "12 Rose Lane")
	assert.Contains(t, model.lastPrompt, "Dr. Lee")
	assert.Contains(t, model.lastPrompt, "555-1234")
	assert.Contains(t, model.lastPrompt, "where do I live?")
	assert.Equal(t, 1, model.calls)
}

func TestClassify_NoProfileOmitsProfileSection(t *testing.T) {
	model := &fakeTextModel{reply: `{"type":"conversation","answer":"hi"}`}
	router := NewRouter(model, zap.NewNop())

	router.Classify(context.Background(), "hi", testRoster(), nil)

	assert.NotContains(t, model.lastPrompt, "Patient information:")
}
