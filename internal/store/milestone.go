package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fernwood/nestling/internal/model"
)

type MilestoneStore struct {
	db *sql.DB
}

func NewMilestoneStore(db *sql.DB) *MilestoneStore {
	return &MilestoneStore{db: db}
}

const milestoneCols = `m.id, m.baby_id, m.caretaker_id, c.name, m.date, m.title, m.category, m.description,
	m.deleted_at, m.created_at, m.updated_at`

const milestoneFrom = ` FROM milestones m LEFT JOIN caretakers c ON c.id = m.caretaker_id`

func scanMilestone(sc scanner) (*model.Milestone, error) {
	var m model.Milestone
	var caretakerID, caretakerName sql.NullString
	var deletedAt sql.NullTime
	var category string

	err := sc.Scan(
		&m.ID, &m.BabyID, &caretakerID, &caretakerName, &m.Date, &m.Title, &category, &m.Description,
		&deletedAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	m.CaretakerID = nullToStrPtr(caretakerID)
	if caretakerName.Valid {
		m.CaretakerName = caretakerName.String
	}
	m.Date = m.Date.UTC()
	m.Category = model.MilestoneCategory(category)
	m.DeletedAt = nullToTimePtr(deletedAt)
	return &m, nil
}

type MilestoneFields struct {
	BabyID      string
	CaretakerID *string
	Date        time.Time
	Title       string
	Category    model.MilestoneCategory
	Description string
}

func (s *MilestoneStore) Create(f MilestoneFields) (*model.Milestone, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO milestones (id, baby_id, caretaker_id, date, title, category, description)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, f.BabyID, strPtrToNull(f.CaretakerID), f.Date.UTC(), f.Title, string(f.Category), f.Description,
	)
	if err != nil {
		return nil, fmt.Errorf("insert milestone: %w", err)
	}
	return s.GetByID(id, "")
}

func (s *MilestoneStore) GetByID(id, familyID string) (*model.Milestone, error) {
	query := `SELECT ` + milestoneCols + milestoneFrom + ` WHERE m.id = ? AND m.deleted_at IS NULL`
	args := []any{id}
	if familyID != "" {
		query += ` AND m.baby_id IN (SELECT id FROM babies WHERE family_id = ?)`
		args = append(args, familyID)
	}

	m, err := scanMilestone(s.db.QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get milestone: %w", err)
	}
	return m, nil
}

func (s *MilestoneStore) List(babyID, familyID string, start, end time.Time) ([]model.Milestone, error) {
	query := `SELECT ` + milestoneCols + milestoneFrom + ` WHERE m.deleted_at IS NULL`
	args := []any{}
	if babyID != "" {
		query += ` AND m.baby_id = ?`
		args = append(args, babyID)
	}
	if familyID != "" {
		query += ` AND m.baby_id IN (SELECT id FROM babies WHERE family_id = ?)`
		args = append(args, familyID)
	}
	if !start.IsZero() && !end.IsZero() {
		query += ` AND m.date >= ? AND m.date <= ?`
		args = append(args, start.UTC(), end.UTC())
	}
	query += ` ORDER BY m.date DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	defer rows.Close()

	var milestones []model.Milestone
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, fmt.Errorf("scan milestone: %w", err)
		}
		milestones = append(milestones, *m)
	}
	return milestones, rows.Err()
}

func (s *MilestoneStore) Update(id string, f MilestoneFields) (*model.Milestone, error) {
	_, err := s.db.Exec(
		`UPDATE milestones SET date = ?, title = ?, category = ?, description = ?, updated_at = datetime('now')
		 WHERE id = ? AND deleted_at IS NULL`,
		f.Date.UTC(), f.Title, string(f.Category), f.Description, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update milestone: %w", err)
	}
	return s.GetByID(id, "")
}

func (s *MilestoneStore) SoftDelete(id string) error {
	_, err := s.db.Exec(
		`UPDATE milestones SET deleted_at = datetime('now'), updated_at = datetime('now') WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("soft delete milestone: %w", err)
	}
	return nil
}
