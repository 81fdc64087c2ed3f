package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fernwood/nestling/internal/model"
)

type DiaperStore struct {
	db *sql.DB
}

func NewDiaperStore(db *sql.DB) *DiaperStore {
	return &DiaperStore{db: db}
}

const diaperCols = `d.id, d.baby_id, d.caretaker_id, c.name, d.time, d.type, d.condition, d.color,
	d.deleted_at, d.created_at, d.updated_at`

const diaperFrom = ` FROM diaper_logs d LEFT JOIN caretakers c ON c.id = d.caretaker_id`

func scanDiaper(sc scanner) (*model.DiaperLog, error) {
	var l model.DiaperLog
	var caretakerID, caretakerName sql.NullString
	var deletedAt sql.NullTime
	var diaperType string

	err := sc.Scan(
		&l.ID, &l.BabyID, &caretakerID, &caretakerName, &l.Time, &diaperType, &l.Condition, &l.Color,
		&deletedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.CaretakerID = nullToStrPtr(caretakerID)
	if caretakerName.Valid {
		l.CaretakerName = caretakerName.String
	}
	l.Time = l.Time.UTC()
	l.Type = model.DiaperType(diaperType)
	l.DeletedAt = nullToTimePtr(deletedAt)
	return &l, nil
}

type DiaperFields struct {
	BabyID      string
	CaretakerID *string
	Time        time.Time
	Type        model.DiaperType
	Condition   string
	Color       string
}

func (s *DiaperStore) Create(f DiaperFields) (*model.DiaperLog, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO diaper_logs (id, baby_id, caretaker_id, time, type, condition, color)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, f.BabyID, strPtrToNull(f.CaretakerID), f.Time.UTC(), string(f.Type), f.Condition, f.Color,
	)
	if err != nil {
		return nil, fmt.Errorf("insert diaper log: %w", err)
	}
	return s.GetByID(id, "")
}

func (s *DiaperStore) GetByID(id, familyID string) (*model.DiaperLog, error) {
	query := `SELECT ` + diaperCols + diaperFrom + ` WHERE d.id = ? AND d.deleted_at IS NULL`
	args := []any{id}
	if familyID != "" {
		query += ` AND d.baby_id IN (SELECT id FROM babies WHERE family_id = ?)`
		args = append(args, familyID)
	}

	l, err := scanDiaper(s.db.QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get diaper log: %w", err)
	}
	return l, nil
}

func (s *DiaperStore) List(babyID, familyID string, start, end time.Time) ([]model.DiaperLog, error) {
	query := `SELECT ` + diaperCols + diaperFrom + ` WHERE d.deleted_at IS NULL`
	args := []any{}
	if babyID != "" {
		query += ` AND d.baby_id = ?`
		args = append(args, babyID)
	}
	if familyID != "" {
		query += ` AND d.baby_id IN (SELECT id FROM babies WHERE family_id = ?)`
		args = append(args, familyID)
	}
	if !start.IsZero() && !end.IsZero() {
		query += ` AND d.time >= ? AND d.time <= ?`
		args = append(args, start.UTC(), end.UTC())
	}
	query += ` ORDER BY d.time DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list diaper logs: %w", err)
	}
	defer rows.Close()

	var logs []model.DiaperLog
	for rows.Next() {
		l, err := scanDiaper(rows)
		if err != nil {
			return nil, fmt.Errorf("scan diaper log: %w", err)
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}

func (s *DiaperStore) Update(id string, f DiaperFields) (*model.DiaperLog, error) {
	_, err := s.db.Exec(
		`UPDATE diaper_logs SET time = ?, type = ?, condition = ?, color = ?, updated_at = datetime('now')
		 WHERE id = ? AND deleted_at IS NULL`,
		f.Time.UTC(), string(f.Type), f.Condition, f.Color, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update diaper log: %w", err)
	}
	return s.GetByID(id, "")
}

func (s *DiaperStore) SoftDelete(id string) error {
	_, err := s.db.Exec(
		`UPDATE diaper_logs SET deleted_at = datetime('now'), updated_at = datetime('now') WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("soft delete diaper log: %w", err)
	}
	return nil
}
