package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fernwood/nestling/internal/model"
)

type NoteStore struct {
	db *sql.DB
}

func NewNoteStore(db *sql.DB) *NoteStore {
	return &NoteStore{db: db}
}

const noteCols = `n.id, n.baby_id, n.caretaker_id, c.name, n.time, n.content, n.category,
	n.deleted_at, n.created_at, n.updated_at`

const noteFrom = ` FROM notes n LEFT JOIN caretakers c ON c.id = n.caretaker_id`

func scanNote(sc scanner) (*model.Note, error) {
	var n model.Note
	var caretakerID, caretakerName sql.NullString
	var deletedAt sql.NullTime

	err := sc.Scan(
		&n.ID, &n.BabyID, &caretakerID, &caretakerName, &n.Time, &n.Content, &n.Category,
		&deletedAt, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	n.CaretakerID = nullToStrPtr(caretakerID)
	if caretakerName.Valid {
		n.CaretakerName = caretakerName.String
	}
	n.Time = n.Time.UTC()
	n.DeletedAt = nullToTimePtr(deletedAt)
	return &n, nil
}

type NoteFields struct {
	BabyID      string
	CaretakerID *string
	Time        time.Time
	Content     string
	Category    string
}

func (s *NoteStore) Create(f NoteFields) (*model.Note, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO notes (id, baby_id, caretaker_id, time, content, category) VALUES (?, ?, ?, ?, ?, ?)`,
		id, f.BabyID, strPtrToNull(f.CaretakerID), f.Time.UTC(), f.Content, f.Category,
	)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	return s.GetByID(id, "")
}

func (s *NoteStore) GetByID(id, familyID string) (*model.Note, error) {
	query := `SELECT ` + noteCols + noteFrom + ` WHERE n.id = ? AND n.deleted_at IS NULL`
	args := []any{id}
	if familyID != "" {
		query += ` AND n.baby_id IN (SELECT id FROM babies WHERE family_id = ?)`
		args = append(args, familyID)
	}

	n, err := scanNote(s.db.QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}

func (s *NoteStore) List(babyID, familyID string, start, end time.Time) ([]model.Note, error) {
	query := `SELECT ` + noteCols + noteFrom + ` WHERE n.deleted_at IS NULL`
	args := []any{}
	if babyID != "" {
		query += ` AND n.baby_id = ?`
		args = append(args, babyID)
	}
	if familyID != "" {
		query += ` AND n.baby_id IN (SELECT id FROM babies WHERE family_id = ?)`
		args = append(args, familyID)
	}
	if !start.IsZero() && !end.IsZero() {
		query += ` AND n.time >= ? AND n.time <= ?`
		args = append(args, start.UTC(), end.UTC())
	}
	query += ` ORDER BY n.time DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

func (s *NoteStore) Update(id string, f NoteFields) (*model.Note, error) {
	_, err := s.db.Exec(
		`UPDATE notes SET time = ?, content = ?, category = ?, updated_at = datetime('now')
		 WHERE id = ? AND deleted_at IS NULL`,
		f.Time.UTC(), f.Content, f.Category, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	return s.GetByID(id, "")
}

func (s *NoteStore) SoftDelete(id string) error {
	_, err := s.db.Exec(
		`UPDATE notes SET deleted_at = datetime('now'), updated_at = datetime('now') WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("soft delete note: %w", err)
	}
	return nil
}
