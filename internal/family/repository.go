package family

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, m *Member) error
	GetByID(ctx context.Context, id uuid.UUID) (*Member, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Member, error)
	SetVoiceSample(ctx context.Context, id uuid.UUID, sampleURL string) error
	GetVoiceSample(ctx context.Context, id uuid.UUID) (string, VoiceStatus, error)
	GetProfile(ctx context.Context, patientID uuid.UUID) (*PatientProfile, error)
}

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

const memberColumns = `id, patient_id, name, email, relationship, profile_photo_url, voice_sample_url, voice_status, created_at`

func (r *postgresRepo) Create(ctx context.Context, m *Member) error {
	query := `
		INSERT INTO family_members (id, patient_id, name, email, relationship, profile_photo_url, voice_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.PatientID, m.Name, m.Email, m.Relationship,
		nullable(m.ProfilePhotoURL), m.VoiceStatus, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert family member: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM family_members WHERE id = $1`
	m, err := scanMember(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("family member not found")
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Member, error) {
	query := `SELECT ` + memberColumns + ` FROM family_members WHERE patient_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("list family members: %w", err)
	}
	defer rows.Close()

	members := []Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func (r *postgresRepo) SetVoiceSample(ctx context.Context, id uuid.UUID, sampleURL string) error {
	query := `UPDATE family_members SET voice_sample_url = $2, voice_status = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, sampleURL, VoiceReady)
	if err != nil {
		return fmt.Errorf("update voice sample: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("family member not found")
	}
	return nil
}

func (r *postgresRepo) GetVoiceSample(ctx context.Context, id uuid.UUID) (string, VoiceStatus, error) {
	query := `SELECT voice_sample_url, voice_status FROM family_members WHERE id = $1`
	var sampleURL sql.NullString
	var status VoiceStatus
	err := r.db.QueryRowContext(ctx, query, id).Scan(&sampleURL, &status)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", "", fmt.Errorf("family member not found")
		}
		return "", "", err
	}
	return sampleURL.String, status, nil
}

func (r *postgresRepo) GetProfile(ctx context.Context, patientID uuid.UUID) (*PatientProfile, error) {
	query := `SELECT patient_id, home_address, doctor_name, emergency_contacts FROM patient_profiles WHERE patient_id = $1`
	var p PatientProfile
	var homeAddress, doctorName sql.NullString
	var contactsJSON []byte
	err := r.db.QueryRowContext(ctx, query, patientID).Scan(&p.PatientID, &homeAddress, &doctorName, &contactsJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			// A missing profile is normal; the assistant works without it.
			return nil, nil
		}
		return nil, err
	}
	p.HomeAddress = homeAddress.String
	p.DoctorName = doctorName.String
	if len(contactsJSON) > 0 {
		if err := json.Unmarshal(contactsJSON, &p.EmergencyContacts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal emergency contacts: %w", err)
		}
	}
	return &p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (*Member, error) {
	var m Member
	var photoURL, sampleURL sql.NullString
	err := row.Scan(
		&m.ID,
		&m.PatientID,
		&m.Name,
		&m.Email,
		&m.Relationship,
		&photoURL,
		&sampleURL,
		&m.VoiceStatus,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.ProfilePhotoURL = photoURL.String
	m.VoiceSampleURL = sampleURL.String
	return &m, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
