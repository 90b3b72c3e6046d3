package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"memory-companion/internal/family"
	"memory-companion/internal/memory"
)

type fakeRoster struct {
	members  []family.Member
	profile  *family.PatientProfile
	listErr  error
	getErr   error
	profErr  error
	getCalls int
}

func (f *fakeRoster) ListByPatient(_ context.Context, _ uuid.UUID) ([]family.Member, error) {
	return f.members, f.listErr
}

func (f *fakeRoster) GetByID(_ context.Context, id uuid.UUID) (*family.Member, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	for i := range f.members {
		if f.members[i].ID == id {
			return &f.members[i], nil
		}
	}
	return nil, errors.New("family member not found")
}

func (f *fakeRoster) GetProfile(_ context.Context, _ uuid.UUID) (*family.PatientProfile, error) {
	return f.profile, f.profErr
}

type fakeMemories struct {
	memories []memory.Memory
	err      error
	calls    int
}

func (f *fakeMemories) ListByFamilyMember(_ context.Context, _ uuid.UUID) ([]memory.Memory, error) {
	f.calls++
	return f.memories, f.err
}

var (
	sarahID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	tomID   = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

func composerFixture() ([]family.Member, *fakeRoster, *fakeMemories, *Composer) {
	members := []family.Member{
		{ID: sarahID, Name: "Sarah", Relationship: "daughter"},
		{ID: tomID, Name: "Tom", Relationship: "son"},
	}
	roster := &fakeRoster{members: members}
	memories := &fakeMemories{memories: []memory.Memory{
		{ID: uuid.New(), FamilyMemberID: sarahID, Title: "Beach day", Content: "We went to the beach", CreatedAt: time.Now()},
	}}
	return members, roster, memories, NewComposer(roster, memories, zap.NewNop())
}

func TestCompose_FamilyMemberWithMemories(t *testing.T) {
	members, _, memStore, composer := composerFixture()

	env := composer.Compose(context.Background(), IntentResult{
		Kind:           IntentFamilyMember,
		Answer:         "That's Sarah, your daughter.",
		ShowMemories:   true,
		FamilyMemberID: sarahID.String(),
	}, members, nil)

	assert.Equal(t, IntentFamilyMember, env.Type)
	require.NotNil(t, env.FamilyMember)
	assert.Equal(t, "Sarah", env.FamilyMember.Name)
	assert.True(t, env.ShowMemories)
	require.Len(t, env.Memories, 1)
	assert.Equal(t, "Beach day", env.Memories[0].Title)
	assert.Equal(t, 1, memStore.calls)
}

func TestCompose_FamilyMemberWithoutMemories(t *testing.T) {
	members, _, memStore, composer := composerFixture()

	env := composer.Compose(context.Background(), IntentResult{
		Kind:           IntentFamilyMember,
		Answer:         "That's Tom.",
		FamilyMemberID: tomID.String(),
	}, members, nil)

	assert.Equal(t, IntentFamilyMember, env.Type)
	assert.False(t, env.ShowMemories)
	assert.Empty(t, env.Memories)
	assert.Equal(t, 0, memStore.calls)
}

func TestCompose_DanglingIDDowngradesToError(t *testing.T) {
	members, roster, _, composer := composerFixture()

	env := composer.Compose(context.Background(), IntentResult{
		Kind:           IntentFamilyMember,
		Answer:         "That's someone.",
		FamilyMemberID: uuid.New().String(),
	}, members, nil)

	assert.Equal(t, IntentError, env.Type)
	assert.Nil(t, env.FamilyMember)
	assert.NotEmpty(t, env.Answer)
	// The roster check fails before any re-fetch happens.
	assert.Equal(t, 0, roster.getCalls)
}

func TestCompose_MissingIDDowngradesToError(t *testing.T) {
	members, _, _, composer := composerFixture()

	env := composer.Compose(context.Background(), IntentResult{
		Kind:   IntentFamilyMember,
		Answer: "That's someone.",
	}, members, nil)

	assert.Equal(t, IntentError, env.Type)
	assert.Nil(t, env.FamilyMember)
}

func TestCompose_MemoryFetchFailureKeepsIdentification(t *testing.T) {
	members, _, memStore, composer := composerFixture()
	memStore.err = errors.New("db down")

	env := composer.Compose(context.Background(), IntentResult{
		Kind:           IntentFamilyMember,
		Answer:         "That's Sarah.",
		ShowMemories:   true,
		FamilyMemberID: sarahID.String(),
	}, members, nil)

	assert.Equal(t, IntentFamilyMember, env.Type)
	require.NotNil(t, env.FamilyMember)
	assert.Empty(t, env.Memories)
}

func TestCompose_CountDropsUnresolvedIDs(t *testing.T) {
	members, _, _, composer := composerFixture()

	env := composer.Compose(context.Background(), IntentResult{
		Kind:            IntentCount,
		Answer:          "You have two sons.",
		FamilyMemberIDs: []string{sarahID.String(), uuid.New().String(), "not-a-uuid"},
	}, members, nil)

	assert.Equal(t, IntentCount, env.Type)
	require.Len(t, env.FamilyMembers, 1)
	assert.Equal(t, "Sarah", env.FamilyMembers[0].Name)
	assert.False(t, env.ShowMemories)
	// No model-provided count, so the resolved length wins.
	require.NotNil(t, env.Count)
	assert.Equal(t, 1, *env.Count)
}

func TestCompose_CountPrefersModelCount(t *testing.T) {
	members, _, _, composer := composerFixture()

	two := 2
	env := composer.Compose(context.Background(), IntentResult{
		Kind:            IntentCount,
		Answer:          "You have two children.",
		Count:           &two,
		FamilyMemberIDs: []string{sarahID.String(), tomID.String()},
	}, members, nil)

	require.NotNil(t, env.Count)
	assert.Equal(t, 2, *env.Count)
	assert.Len(t, env.FamilyMembers, 2)
}

func TestCompose_ListAll(t *testing.T) {
	members, _, _, composer := composerFixture()

	env := composer.Compose(context.Background(), IntentResult{
		Kind:   IntentListAll,
		Answer: "Here is everyone.",
	}, members, nil)

	assert.Equal(t, IntentListAll, env.Type)
	assert.Len(t, env.FamilyMembers, 2)
	assert.False(t, env.ShowMemories)
}

func TestCompose_PatientInfo(t *testing.T) {
	members, _, _, composer := composerFixture()
	profile := &family.PatientProfile{DoctorName: "Dr. Lee"}

	env := composer.Compose(context.Background(), IntentResult{
		Kind:     IntentPatientInfo,
		Answer:   "Your doctor is Dr. Lee.",
		InfoType: "doctor",
	}, members, profile)

	assert.Equal(t, IntentPatientInfo, env.Type)
	assert.Equal(t, "doctor", env.InfoType)
	assert.Equal(t, profile, env.PatientInfo)
	assert.False(t, env.ShowMemories)
}

func TestCompose_PatientInfoWithoutProfile(t *testing.T) {
	members, _, _, composer := composerFixture()

	env := composer.Compose(context.Background(), IntentResult{
		Kind:     IntentPatientInfo,
		Answer:   "I don't have that on file.",
		InfoType: "home",
	}, members, nil)

	assert.Equal(t, IntentPatientInfo, env.Type)
	assert.Nil(t, env.PatientInfo)
}

func TestCompose_AnswerOnlyKinds(t *testing.T) {
	members, _, _, composer := composerFixture()

	for _, kind := range []IntentKind{IntentConversation, IntentUnclear, IntentError} {
		env := composer.Compose(context.Background(), IntentResult{Kind: kind, Answer: "ok"}, members, nil)
		assert.Equal(t, kind, env.Type)
		assert.Equal(t, "ok", env.Answer)
		assert.False(t, env.ShowMemories)
		assert.Nil(t, env.FamilyMember)
		assert.Empty(t, env.FamilyMembers)
	}
}

func TestCompose_ListKeysAlwaysSerialize(t *testing.T) {
	members, _, _, composer := composerFixture()

	env := composer.Compose(context.Background(), IntentResult{
		Kind:           IntentFamilyMember,
		Answer:         "That's Tom.",
		FamilyMemberID: tomID.String(),
	}, members, nil)

	raw, err := json.Marshal(env)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"memories":[]`)
	assert.Contains(t, string(raw), `"family_members":[]`)
}

func TestCompose_CountAllUnresolvedStillSerializesList(t *testing.T) {
	members, _, _, composer := composerFixture()

	env := composer.Compose(context.Background(), IntentResult{
		Kind:            IntentCount,
		Answer:          "You have one son.",
		FamilyMemberIDs: []string{uuid.New().String()},
	}, members, nil)

	raw, err := json.Marshal(env)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"family_members":[]`)
}
