package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/fernwood/nestling/internal/model"
)

type FamilyStore struct {
	db *sql.DB
}

func NewFamilyStore(db *sql.DB) *FamilyStore {
	return &FamilyStore{db: db}
}

func scanFamily(sc scanner) (*model.Family, error) {
	var f model.Family
	err := sc.Scan(&f.ID, &f.Name, &f.Slug, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *FamilyStore) Create(name, slug string) (*model.Family, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(`INSERT INTO families (id, name, slug) VALUES (?, ?, ?)`, id, name, slug)
	if err != nil {
		return nil, fmt.Errorf("insert family: %w", err)
	}
	return s.GetByID(id)
}

func (s *FamilyStore) GetByID(id string) (*model.Family, error) {
	f, err := scanFamily(s.db.QueryRow(
		`SELECT id, name, slug, created_at, updated_at FROM families WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get family: %w", err)
	}
	return f, nil
}

func (s *FamilyStore) GetBySlug(slug string) (*model.Family, error) {
	f, err := scanFamily(s.db.QueryRow(
		`SELECT id, name, slug, created_at, updated_at FROM families WHERE slug = ?`, slug,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get family by slug: %w", err)
	}
	return f, nil
}

// ListIDs returns every family id, for the reminder scheduler's sweep.
func (s *FamilyStore) ListIDs() ([]string, error) {
	rows, err := s.db.Query(`SELECT id FROM families`)
	if err != nil {
		return nil, fmt.Errorf("list family ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan family id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
