package video

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, v *Video) error
	GetByID(ctx context.Context, id uuid.UUID) (*Video, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Video, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

func (r *postgresRepo) Create(ctx context.Context, v *Video) error {
	query := `
		INSERT INTO videos (id, family_member_id, title, description, video_url, thumbnail_url, storage_path, thumbnail_path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		v.ID, v.FamilyMemberID, v.Title, nullable(v.Description),
		v.VideoURL, nullable(v.ThumbnailURL), v.StoragePath, nullable(v.ThumbnailPath), v.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert video: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Video, error) {
	query := `
		SELECT id, family_member_id, title, description, video_url, thumbnail_url, storage_path, thumbnail_path, created_at
		FROM videos WHERE id = $1
	`
	var v Video
	var description, thumbnailURL, thumbnailPath sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&v.ID, &v.FamilyMemberID, &v.Title, &description,
		&v.VideoURL, &thumbnailURL, &v.StoragePath, &thumbnailPath, &v.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("video not found")
		}
		return nil, err
	}
	v.Description = description.String
	v.ThumbnailURL = thumbnailURL.String
	v.ThumbnailPath = thumbnailPath.String
	return &v, nil
}

// ListByPatient returns the patient's feed, newest first, with uploader info.
func (r *postgresRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Video, error) {
	query := `
		SELECT v.id, v.family_member_id, v.title, v.description, v.video_url, v.thumbnail_url,
		       v.storage_path, v.thumbnail_path, v.created_at, f.name, f.relationship
		FROM videos v
		JOIN family_members f ON f.id = v.family_member_id
		WHERE f.patient_id = $1
		ORDER BY v.created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	videos := []Video{}
	for rows.Next() {
		var v Video
		var description, thumbnailURL, thumbnailPath sql.NullString
		if err := rows.Scan(
			&v.ID, &v.FamilyMemberID, &v.Title, &description, &v.VideoURL, &thumbnailURL,
			&v.StoragePath, &thumbnailPath, &v.CreatedAt, &v.UploaderName, &v.UploaderRelationship); err != nil {
			return nil, err
		}
		v.Description = description.String
		v.ThumbnailURL = thumbnailURL.String
		v.ThumbnailPath = thumbnailPath.String
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func (r *postgresRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM videos WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
