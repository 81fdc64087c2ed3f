package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/fernwood/nestling/internal/model"
)

type CaretakerStore struct {
	db *sql.DB
}

func NewCaretakerStore(db *sql.DB) *CaretakerStore {
	return &CaretakerStore{db: db}
}

const caretakerCols = `id, family_id, login_id, name, role, deleted_at, created_at, updated_at`

func scanCaretaker(sc scanner) (*model.Caretaker, error) {
	var c model.Caretaker
	var deletedAt sql.NullTime

	err := sc.Scan(&c.ID, &c.FamilyID, &c.LoginID, &c.Name, &c.Role, &deletedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.DeletedAt = nullToTimePtr(deletedAt)
	return &c, nil
}

// Create hashes the PIN with bcrypt before storing it. The plain PIN is
// never persisted.
func (s *CaretakerStore) Create(familyID, loginID, name, role, pin string) (*model.Caretaker, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash pin: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO caretakers (id, family_id, login_id, name, role, pin_hash) VALUES (?, ?, ?, ?, ?, ?)`,
		id, familyID, loginID, name, role, string(hash),
	)
	if err != nil {
		return nil, fmt.Errorf("insert caretaker: %w", err)
	}
	return s.GetByID(id)
}

func (s *CaretakerStore) GetByID(id string) (*model.Caretaker, error) {
	c, err := scanCaretaker(s.db.QueryRow(
		`SELECT `+caretakerCols+` FROM caretakers WHERE id = ? AND deleted_at IS NULL`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get caretaker: %w", err)
	}
	return c, nil
}

func (s *CaretakerStore) ListByFamily(familyID string) ([]model.Caretaker, error) {
	rows, err := s.db.Query(
		`SELECT `+caretakerCols+` FROM caretakers WHERE family_id = ? AND deleted_at IS NULL ORDER BY name`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list caretakers: %w", err)
	}
	defer rows.Close()

	var caretakers []model.Caretaker
	for rows.Next() {
		c, err := scanCaretaker(rows)
		if err != nil {
			return nil, fmt.Errorf("scan caretaker: %w", err)
		}
		caretakers = append(caretakers, *c)
	}
	return caretakers, rows.Err()
}

// Authenticate verifies a loginId + PIN pair. It returns nil (no error) for
// unknown logins and wrong PINs alike so callers cannot distinguish them.
func (s *CaretakerStore) Authenticate(loginID, pin string) (*model.Caretaker, error) {
	var hash string
	var id string
	err := s.db.QueryRow(
		`SELECT id, pin_hash FROM caretakers WHERE login_id = ? AND deleted_at IS NULL`,
		loginID,
	).Scan(&id, &hash)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup caretaker: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) != nil {
		return nil, nil
	}
	return s.GetByID(id)
}

// SetPIN replaces the caretaker's PIN hash.
func (s *CaretakerStore) SetPIN(id, pin string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash pin: %w", err)
	}
	_, err = s.db.Exec(
		`UPDATE caretakers SET pin_hash = ?, updated_at = datetime('now') WHERE id = ? AND deleted_at IS NULL`,
		string(hash), id,
	)
	if err != nil {
		return fmt.Errorf("set pin: %w", err)
	}
	return nil
}

func (s *CaretakerStore) SoftDelete(id string) error {
	_, err := s.db.Exec(
		`UPDATE caretakers SET deleted_at = datetime('now'), updated_at = datetime('now') WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("soft delete caretaker: %w", err)
	}
	return nil
}
