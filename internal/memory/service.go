package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"memory-companion/internal/family"
)

var (
	// ErrVoiceMissing means the member never uploaded a voice sample.
	ErrVoiceMissing = errors.New("voice not uploaded yet")
	// ErrVoiceNotReady means the sample exists but is not ready for cloning.
	ErrVoiceNotReady = errors.New("voice processing not complete")
)

// MemberStore is the slice of the family roster this package needs.
type MemberStore interface {
	GetVoiceSample(ctx context.Context, id uuid.UUID) (string, family.VoiceStatus, error)
}

// VoiceSynthesizer clones the member's voice from their sample.
type VoiceSynthesizer interface {
	Synthesize(ctx context.Context, text, speakerSampleURL string) ([]byte, error)
}

type Storage interface {
	Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error)
}

type Buckets struct {
	Photos string
	Audio  string
}

type PhotoUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type CreateInput struct {
	FamilyMemberID uuid.UUID
	Title          string
	Content        string
	Photos         []PhotoUpload
}

type Service interface {
	Create(ctx context.Context, in CreateInput) (*Memory, error)
	ListByFamilyMember(ctx context.Context, familyMemberID uuid.UUID) ([]Memory, error)
}

type service struct {
	repo    Repository
	members MemberStore
	storage Storage
	voice   VoiceSynthesizer
	buckets Buckets
	logger  *zap.Logger
}

func NewService(repo Repository, members MemberStore, storage Storage, voice VoiceSynthesizer, buckets Buckets, logger *zap.Logger) Service {
	return &service{
		repo:    repo,
		members: members,
		storage: storage,
		voice:   voice,
		buckets: buckets,
		logger:  logger,
	}
}

// Create stores the memory, attaches photos, then synthesizes the narration
// in the member's cloned voice. The member must have a ready voice sample.
func (s *service) Create(ctx context.Context, in CreateInput) (*Memory, error) {
	sampleURL, status, err := s.members.GetVoiceSample(ctx, in.FamilyMemberID)
	if err != nil {
		return nil, err
	}
	if sampleURL == "" {
		return nil, ErrVoiceMissing
	}
	if status != family.VoiceReady {
		return nil, ErrVoiceNotReady
	}

	m := &Memory{
		ID:             uuid.New(),
		FamilyMemberID: in.FamilyMemberID,
		Title:          in.Title,
		Content:        in.Content,
		CreatedAt:      time.Now(),
		Photos:         []Photo{},
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	for _, photo := range in.Photos {
		path := fmt.Sprintf("memory-photos/%s_%s_%s", m.ID, uuid.New(), sanitizeFilename(photo.Filename))
		photoURL, err := s.storage.Upload(ctx, s.buckets.Photos, path, photo.Data, photo.ContentType)
		if err != nil {
			// A failed photo never blocks the memory itself.
			s.logger.Warn("memory photo upload failed",
				zap.String("memory_id", m.ID.String()),
				zap.String("filename", photo.Filename),
				zap.Error(err),
			)
			continue
		}
		p := &Photo{ID: uuid.New(), MemoryID: m.ID, PhotoURL: photoURL}
		if err := s.repo.AddPhoto(ctx, p); err != nil {
			s.logger.Warn("memory photo insert failed",
				zap.String("memory_id", m.ID.String()),
				zap.Error(err),
			)
			continue
		}
		m.Photos = append(m.Photos, *p)
	}

	audio, err := s.voice.Synthesize(ctx, in.Content, sampleURL)
	if err != nil {
		return nil, fmt.Errorf("synthesize memory audio: %w", err)
	}

	audioPath := fmt.Sprintf("memory-audio/%s.wav", m.ID)
	audioURL, err := s.storage.Upload(ctx, s.buckets.Audio, audioPath, audio, "audio/wav")
	if err != nil {
		return nil, fmt.Errorf("upload memory audio: %w", err)
	}

	if err := s.repo.SetAudioURL(ctx, m.ID, audioURL); err != nil {
		return nil, err
	}
	m.AudioURL = audioURL

	s.logger.Info("memory created",
		zap.String("memory_id", m.ID.String()),
		zap.String("family_member_id", in.FamilyMemberID.String()),
		zap.Int("photos", len(m.Photos)),
	)
	return m, nil
}

func (s *service) ListByFamilyMember(ctx context.Context, familyMemberID uuid.UUID) ([]Memory, error) {
	return s.repo.ListByFamilyMember(ctx, familyMemberID)
}

func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	return strings.ReplaceAll(name, " ", "_")
}
