package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fernwood/nestling/internal/model"
)

type BathStore struct {
	db *sql.DB
}

func NewBathStore(db *sql.DB) *BathStore {
	return &BathStore{db: db}
}

const bathCols = `b.id, b.baby_id, b.caretaker_id, c.name, b.time, b.soap_used, b.notes,
	b.deleted_at, b.created_at, b.updated_at`

const bathFrom = ` FROM bath_logs b LEFT JOIN caretakers c ON c.id = b.caretaker_id`

func scanBath(sc scanner) (*model.BathLog, error) {
	var l model.BathLog
	var caretakerID, caretakerName sql.NullString
	var deletedAt sql.NullTime
	var soapUsed int

	err := sc.Scan(
		&l.ID, &l.BabyID, &caretakerID, &caretakerName, &l.Time, &soapUsed, &l.Notes,
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
	l.SoapUsed = soapUsed != 0
	l.DeletedAt = nullToTimePtr(deletedAt)
	return &l, nil
}

type BathFields struct {
	BabyID      string
	CaretakerID *string
	Time        time.Time
	SoapUsed    bool
	Notes       string
}

func (s *BathStore) Create(f BathFields) (*model.BathLog, error) {
	id := uuid.NewString()
	var soap int
	if f.SoapUsed {
		soap = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO bath_logs (id, baby_id, caretaker_id, time, soap_used, notes) VALUES (?, ?, ?, ?, ?, ?)`,
		id, f.BabyID, strPtrToNull(f.CaretakerID), f.Time.UTC(), soap, f.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert bath log: %w", err)
	}
	return s.GetByID(id, "")
}

func (s *BathStore) GetByID(id, familyID string) (*model.BathLog, error) {
	query := `SELECT ` + bathCols + bathFrom + ` WHERE b.id = ? AND b.deleted_at IS NULL`
	args := []any{id}
	if familyID != "" {
		query += ` AND b.baby_id IN (SELECT id FROM babies WHERE family_id = ?)`
		args = append(args, familyID)
	}

	l, err := scanBath(s.db.QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get bath log: %w", err)
	}
	return l, nil
}

func (s *BathStore) List(babyID, familyID string, start, end time.Time) ([]model.BathLog, error) {
	query := `SELECT ` + bathCols + bathFrom + ` WHERE b.deleted_at IS NULL`
	args := []any{}
	if babyID != "" {
		query += ` AND b.baby_id = ?`
		args = append(args, babyID)
	}
	if familyID != "" {
		query += ` AND b.baby_id IN (SELECT id FROM babies WHERE family_id = ?)`
		args = append(args, familyID)
	}
	if !start.IsZero() && !end.IsZero() {
		query += ` AND b.time >= ? AND b.time <= ?`
		args = append(args, start.UTC(), end.UTC())
	}
	query += ` ORDER BY b.time DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bath logs: %w", err)
	}
	defer rows.Close()

	var logs []model.BathLog
	for rows.Next() {
		l, err := scanBath(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bath log: %w", err)
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}

func (s *BathStore) Update(id string, f BathFields) (*model.BathLog, error) {
	var soap int
	if f.SoapUsed {
		soap = 1
	}
	_, err := s.db.Exec(
		`UPDATE bath_logs SET time = ?, soap_used = ?, notes = ?, updated_at = datetime('now')
		 WHERE id = ? AND deleted_at IS NULL`,
		f.Time.UTC(), soap, f.Notes, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update bath log: %w", err)
	}
	return s.GetByID(id, "")
}

func (s *BathStore) SoftDelete(id string) error {
	_, err := s.db.Exec(
		`UPDATE bath_logs SET deleted_at = datetime('now'), updated_at = datetime('now') WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("soft delete bath log: %w", err)
	}
	return nil
}
