package memory

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, m *Memory) error
	SetAudioURL(ctx context.Context, id uuid.UUID, audioURL string) error
	AddPhoto(ctx context.Context, p *Photo) error
	ListByFamilyMember(ctx context.Context, familyMemberID uuid.UUID) ([]Memory, error)
}

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

func (r *postgresRepo) Create(ctx context.Context, m *Memory) error {
	query := `
		INSERT INTO memories (id, family_member_id, title, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, m.ID, m.FamilyMemberID, m.Title, m.Content, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert memory: %w", err)
	}
	return nil
}

func (r *postgresRepo) SetAudioURL(ctx context.Context, id uuid.UUID, audioURL string) error {
	query := `UPDATE memories SET audio_url = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, audioURL); err != nil {
		return fmt.Errorf("update memory audio url: %w", err)
	}
	return nil
}

func (r *postgresRepo) AddPhoto(ctx context.Context, p *Photo) error {
	query := `INSERT INTO memory_photos (id, memory_id, photo_url) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, p.ID, p.MemoryID, p.PhotoURL); err != nil {
		return fmt.Errorf("insert memory photo: %w", err)
	}
	return nil
}

// ListByFamilyMember returns memories newest first, each with its photos.
func (r *postgresRepo) ListByFamilyMember(ctx context.Context, familyMemberID uuid.UUID) ([]Memory, error) {
	query := `
		SELECT id, family_member_id, title, content, audio_url, created_at
		FROM memories WHERE family_member_id = $1 ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, familyMemberID)
	if err != nil {
		return nil, fmt.Errorf("list memories: %w", err)
	}
	defer rows.Close()

	memories := []Memory{}
	for rows.Next() {
		var m Memory
		var audioURL sql.NullString
		if err := rows.Scan(&m.ID, &m.FamilyMemberID, &m.Title, &m.Content, &audioURL, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.AudioURL = audioURL.String
		memories = append(memories, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range memories {
		photos, err := r.listPhotos(ctx, memories[i].ID)
		if err != nil {
			return nil, err
		}
		memories[i].Photos = photos
	}
	return memories, nil
}

func (r *postgresRepo) listPhotos(ctx context.Context, memoryID uuid.UUID) ([]Photo, error) {
	query := `SELECT id, memory_id, photo_url FROM memory_photos WHERE memory_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, memoryID)
	if err != nil {
		return nil, fmt.Errorf("list memory photos: %w", err)
	}
	defer rows.Close()

	photos := []Photo{}
	for rows.Next() {
		var p Photo
		if err := rows.Scan(&p.ID, &p.MemoryID, &p.PhotoURL); err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}
