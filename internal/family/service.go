package family

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Storage is the slice of object storage this package needs.
type Storage interface {
	Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error)
}

type RegisterInput struct {
	PatientID       uuid.UUID
	Name            string
	Email           string
	Relationship    string
	ProfilePhotoURL string
}

type VoiceSampleInput struct {
	FamilyMemberID uuid.UUID
	Filename       string
	ContentType    string
	Data           []byte
}

type Service interface {
	Register(ctx context.Context, in RegisterInput) (*Member, error)
	AttachVoiceSample(ctx context.Context, in VoiceSampleInput) (string, error)
	ListMembers(ctx context.Context, patientID uuid.UUID) ([]Member, error)
}

type service struct {
	repo    Repository
	storage Storage
	bucket  string
	logger  *zap.Logger
}

func NewService(repo Repository, storage Storage, bucket string, logger *zap.Logger) Service {
	return &service{
		repo:    repo,
		storage: storage,
		bucket:  bucket,
		logger:  logger,
	}
}

func (s *service) Register(ctx context.Context, in RegisterInput) (*Member, error) {
	m := &Member{
		ID:              uuid.New(),
		PatientID:       in.PatientID,
		Name:            in.Name,
		Email:           in.Email,
		Relationship:    in.Relationship,
		ProfilePhotoURL: in.ProfilePhotoURL,
		VoiceStatus:     VoicePending,
		CreatedAt:       time.Now(),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	s.logger.Info("family member registered",
		zap.String("family_member_id", m.ID.String()),
		zap.String("patient_id", m.PatientID.String()),
		zap.String("relationship", m.Relationship),
	)
	return m, nil
}

// AttachVoiceSample stores the uploaded sample and marks the member's voice
// ready for cloning. Memories cannot be recorded for a member before this.
func (s *service) AttachVoiceSample(ctx context.Context, in VoiceSampleInput) (string, error) {
	if _, err := s.repo.GetByID(ctx, in.FamilyMemberID); err != nil {
		return "", err
	}

	path := fmt.Sprintf("voice-samples/%s_%s%s", in.FamilyMemberID, uuid.New(), filepath.Ext(in.Filename))
	sampleURL, err := s.storage.Upload(ctx, s.bucket, path, in.Data, in.ContentType)
	if err != nil {
		return "", fmt.Errorf("upload voice sample: %w", err)
	}

	if err := s.repo.SetVoiceSample(ctx, in.FamilyMemberID, sampleURL); err != nil {
		return "", err
	}
	s.logger.Info("voice sample attached",
		zap.String("family_member_id", in.FamilyMemberID.String()),
	)
	return sampleURL, nil
}

func (s *service) ListMembers(ctx context.Context, patientID uuid.UUID) ([]Member, error) {
	return s.repo.ListByPatient(ctx, patientID)
}
