package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fernwood/nestling/internal/model"
)

type BabyStore struct {
	db *sql.DB
}

func NewBabyStore(db *sql.DB) *BabyStore {
	return &BabyStore{db: db}
}

const babyCols = `id, family_id, first_name, last_name, gender, birth_date, deleted_at, created_at, updated_at`

func scanBaby(sc scanner) (*model.Baby, error) {
	var b model.Baby
	var gender string
	var deletedAt sql.NullTime

	err := sc.Scan(
		&b.ID, &b.FamilyID, &b.FirstName, &b.LastName, &gender,
		&b.BirthDate, &deletedAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Gender = model.Gender(gender)
	b.BirthDate = b.BirthDate.UTC()
	b.DeletedAt = nullToTimePtr(deletedAt)
	return &b, nil
}

func (s *BabyStore) Create(familyID, firstName, lastName string, gender model.Gender, birthDate time.Time) (*model.Baby, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO babies (id, family_id, first_name, last_name, gender, birth_date) VALUES (?, ?, ?, ?, ?, ?)`,
		id, familyID, firstName, lastName, string(gender), birthDate.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert baby: %w", err)
	}
	return s.GetByID(id, familyID)
}

// GetByID returns the baby, or nil when absent, soft-deleted, or outside the
// caller's family scope. An empty familyID skips scoping.
func (s *BabyStore) GetByID(id, familyID string) (*model.Baby, error) {
	query := `SELECT ` + babyCols + ` FROM babies WHERE id = ? AND deleted_at IS NULL`
	args := []any{id}
	if familyID != "" {
		query += ` AND family_id = ?`
		args = append(args, familyID)
	}

	b, err := scanBaby(s.db.QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get baby: %w", err)
	}
	return b, nil
}

func (s *BabyStore) List(familyID string) ([]model.Baby, error) {
	query := `SELECT ` + babyCols + ` FROM babies WHERE deleted_at IS NULL`
	args := []any{}
	if familyID != "" {
		query += ` AND family_id = ?`
		args = append(args, familyID)
	}
	query += ` ORDER BY birth_date DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list babies: %w", err)
	}
	defer rows.Close()

	var babies []model.Baby
	for rows.Next() {
		b, err := scanBaby(rows)
		if err != nil {
			return nil, fmt.Errorf("scan baby: %w", err)
		}
		babies = append(babies, *b)
	}
	return babies, rows.Err()
}

func (s *BabyStore) Update(id, familyID, firstName, lastName string, gender model.Gender, birthDate time.Time) (*model.Baby, error) {
	_, err := s.db.Exec(
		`UPDATE babies SET first_name = ?, last_name = ?, gender = ?, birth_date = ?, updated_at = datetime('now')
		 WHERE id = ? AND deleted_at IS NULL`,
		firstName, lastName, string(gender), birthDate.UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update baby: %w", err)
	}
	return s.GetByID(id, familyID)
}

// SoftDelete marks the baby deleted; the row is never removed.
func (s *BabyStore) SoftDelete(id string) error {
	_, err := s.db.Exec(
		`UPDATE babies SET deleted_at = datetime('now'), updated_at = datetime('now') WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("soft delete baby: %w", err)
	}
	return nil
}
