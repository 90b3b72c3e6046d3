package video

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Storage interface {
	Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, bucket, path string) error
}

type FileUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type UploadInput struct {
	FamilyMemberID uuid.UUID
	Title          string
	Description    string
	Video          FileUpload
	Thumbnail      *FileUpload
}

type Service interface {
	Upload(ctx context.Context, in UploadInput) (*Video, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Video, error)
	Delete(ctx context.Context, id uuid.UUID) error
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

func (s *service) Upload(ctx context.Context, in UploadInput) (*Video, error) {
	v := &Video{
		ID:             uuid.New(),
		FamilyMemberID: in.FamilyMemberID,
		Title:          in.Title,
		Description:    in.Description,
		CreatedAt:      time.Now(),
	}

	v.StoragePath = fmt.Sprintf("family-videos/%s_%s", v.ID, sanitizeFilename(in.Video.Filename))
	videoURL, err := s.storage.Upload(ctx, s.bucket, v.StoragePath, in.Video.Data, in.Video.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload video: %w", err)
	}
	v.VideoURL = videoURL

	if in.Thumbnail != nil {
		v.ThumbnailPath = fmt.Sprintf("video-thumbnails/%s_%s", v.ID, sanitizeFilename(in.Thumbnail.Filename))
		thumbURL, err := s.storage.Upload(ctx, s.bucket, v.ThumbnailPath, in.Thumbnail.Data, in.Thumbnail.ContentType)
		if err != nil {
			// The feed works without a thumbnail.
			s.logger.Warn("thumbnail upload failed",
				zap.String("video_id", v.ID.String()),
				zap.Error(err),
			)
			v.ThumbnailPath = ""
		} else {
			v.ThumbnailURL = thumbURL
		}
	}

	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	s.logger.Info("video uploaded",
		zap.String("video_id", v.ID.String()),
		zap.String("family_member_id", in.FamilyMemberID.String()),
	)
	return v, nil
}

func (s *service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Video, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// Delete removes the storage objects first, then the row. A storage failure
// is logged but never leaves the row behind.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, s.bucket, v.StoragePath); err != nil {
		s.logger.Warn("video object delete failed",
			zap.String("video_id", id.String()),
			zap.String("path", v.StoragePath),
			zap.Error(err),
		)
	}
	if v.ThumbnailPath != "" {
		if err := s.storage.Delete(ctx, s.bucket, v.ThumbnailPath); err != nil {
			s.logger.Warn("thumbnail object delete failed",
				zap.String("video_id", id.String()),
				zap.String("path", v.ThumbnailPath),
				zap.Error(err),
			)
		}
	}

	return s.repo.Delete(ctx, id)
}

func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	return strings.ReplaceAll(name, " ", "_")
}
