package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fernwood/nestling/internal/model"
)

type SleepStore struct {
	db *sql.DB
}

func NewSleepStore(db *sql.DB) *SleepStore {
	return &SleepStore{db: db}
}

const sleepCols = `s.id, s.baby_id, s.caretaker_id, c.name, s.start_time, s.end_time, s.duration,
	s.type, s.location, s.quality, s.deleted_at, s.created_at, s.updated_at`

const sleepFrom = ` FROM sleep_logs s LEFT JOIN caretakers c ON c.id = s.caretaker_id`

func scanSleep(sc scanner) (*model.SleepLog, error) {
	var l model.SleepLog
	var caretakerID, caretakerName sql.NullString
	var endTime, deletedAt sql.NullTime
	var duration sql.NullInt64
	var sleepType, location, quality string

	err := sc.Scan(
		&l.ID, &l.BabyID, &caretakerID, &caretakerName, &l.StartTime, &endTime, &duration,
		&sleepType, &location, &quality, &deletedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.CaretakerID = nullToStrPtr(caretakerID)
	if caretakerName.Valid {
		l.CaretakerName = caretakerName.String
	}
	l.StartTime = l.StartTime.UTC()
	l.EndTime = nullToTimePtr(endTime)
	l.Duration = nullToIntPtr(duration)
	l.Type = model.SleepType(sleepType)
	l.Location = location
	l.Quality = model.SleepQuality(quality)
	l.DeletedAt = nullToTimePtr(deletedAt)
	return &l, nil
}

// SleepFields carries the writable columns of a sleep log. Duration must be
// set iff EndTime is set; handlers compute it from the normalized instants.
type SleepFields struct {
	BabyID      string
	CaretakerID *string
	StartTime   time.Time
	EndTime     *time.Time
	Duration    *int
	Type        model.SleepType
	Location    string
	Quality     model.SleepQuality
}

func (s *SleepStore) Create(f SleepFields) (*model.SleepLog, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO sleep_logs (id, baby_id, caretaker_id, start_time, end_time, duration, type, location, quality)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, f.BabyID, strPtrToNull(f.CaretakerID), f.StartTime.UTC(), timePtrToNull(f.EndTime),
		intPtrToNull(f.Duration), string(f.Type), f.Location, string(f.Quality),
	)
	if err != nil {
		return nil, fmt.Errorf("insert sleep log: %w", err)
	}
	return s.GetByID(id, "")
}

func (s *SleepStore) GetByID(id, familyID string) (*model.SleepLog, error) {
	query := `SELECT ` + sleepCols + sleepFrom + ` WHERE s.id = ? AND s.deleted_at IS NULL`
	args := []any{id}
	if familyID != "" {
		query += ` AND s.baby_id IN (SELECT id FROM babies WHERE family_id = ?)`
		args = append(args, familyID)
	}

	l, err := scanSleep(s.db.QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get sleep log: %w", err)
	}
	return l, nil
}

// List returns non-deleted sleep logs newest-first. babyID narrows to one
// baby; start/end bound the start_time column when both are non-zero.
func (s *SleepStore) List(babyID, familyID string, start, end time.Time) ([]model.SleepLog, error) {
	query := `SELECT ` + sleepCols + sleepFrom + ` WHERE s.deleted_at IS NULL`
	args := []any{}
	if babyID != "" {
		query += ` AND s.baby_id = ?`
		args = append(args, babyID)
	}
	if familyID != "" {
		query += ` AND s.baby_id IN (SELECT id FROM babies WHERE family_id = ?)`
		args = append(args, familyID)
	}
	if !start.IsZero() && !end.IsZero() {
		query += ` AND s.start_time >= ? AND s.start_time <= ?`
		args = append(args, start.UTC(), end.UTC())
	}
	query += ` ORDER BY s.start_time DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sleep logs: %w", err)
	}
	defer rows.Close()

	var logs []model.SleepLog
	for rows.Next() {
		l, err := scanSleep(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sleep log: %w", err)
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}

// OpenSession returns the baby's open sleep log (nil end_time), or nil if
// every session is closed. The create handler refuses a second open session,
// so at most one exists; the newest wins if historic data disagrees.
func (s *SleepStore) OpenSession(babyID string) (*model.SleepLog, error) {
	l, err := scanSleep(s.db.QueryRow(
		`SELECT `+sleepCols+sleepFrom+`
		 WHERE s.baby_id = ? AND s.end_time IS NULL AND s.deleted_at IS NULL
		 ORDER BY s.start_time DESC LIMIT 1`,
		babyID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open sleep session: %w", err)
	}
	return l, nil
}

func (s *SleepStore) Update(id string, f SleepFields) (*model.SleepLog, error) {
	_, err := s.db.Exec(
		`UPDATE sleep_logs
		 SET start_time = ?, end_time = ?, duration = ?, type = ?, location = ?, quality = ?, updated_at = datetime('now')
		 WHERE id = ? AND deleted_at IS NULL`,
		f.StartTime.UTC(), timePtrToNull(f.EndTime), intPtrToNull(f.Duration),
		string(f.Type), f.Location, string(f.Quality), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update sleep log: %w", err)
	}
	return s.GetByID(id, "")
}

func (s *SleepStore) SoftDelete(id string) error {
	_, err := s.db.Exec(
		`UPDATE sleep_logs SET deleted_at = datetime('now'), updated_at = datetime('now') WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("soft delete sleep log: %w", err)
	}
	return nil
}

// DeletedAtMarker reads the raw soft-delete column, bypassing the usual
// filtered reads. Used by tests and the backup integrity check.
func (s *SleepStore) DeletedAtMarker(id string) (*time.Time, error) {
	var deletedAt sql.NullTime
	err := s.db.QueryRow(`SELECT deleted_at FROM sleep_logs WHERE id = ?`, id).Scan(&deletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read deleted_at: %w", err)
	}
	return nullToTimePtr(deletedAt), nil
}
