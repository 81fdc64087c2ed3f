package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fernwood/nestling/internal/model"
)

type FeedStore struct {
	db *sql.DB
}

func NewFeedStore(db *sql.DB) *FeedStore {
	return &FeedStore{db: db}
}

const feedCols = `f.id, f.baby_id, f.caretaker_id, c.name, f.time, f.type, f.amount, f.unit_abbr,
	f.side, f.feed_duration, f.food, f.deleted_at, f.created_at, f.updated_at`

const feedFrom = ` FROM feed_logs f LEFT JOIN caretakers c ON c.id = f.caretaker_id`

func scanFeed(sc scanner) (*model.FeedLog, error) {
	var l model.FeedLog
	var caretakerID, caretakerName sql.NullString
	var amount sql.NullFloat64
	var feedDuration sql.NullInt64
	var deletedAt sql.NullTime
	var feedType, side string

	err := sc.Scan(
		&l.ID, &l.BabyID, &caretakerID, &caretakerName, &l.Time, &feedType, &amount, &l.UnitAbbr,
		&side, &feedDuration, &l.Food, &deletedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.CaretakerID = nullToStrPtr(caretakerID)
	if caretakerName.Valid {
		l.CaretakerName = caretakerName.String
	}
	l.Time = l.Time.UTC()
	l.Type = model.FeedType(feedType)
	l.Amount = nullToFloatPtr(amount)
	l.Side = model.BreastSide(side)
	l.FeedDuration = nullToIntPtr(feedDuration)
	l.DeletedAt = nullToTimePtr(deletedAt)
	return &l, nil
}

type FeedFields struct {
	BabyID       string
	CaretakerID  *string
	Time         time.Time
	Type         model.FeedType
	Amount       *float64
	UnitAbbr     string
	Side         model.BreastSide
	FeedDuration *int
	Food         string
}

func (s *FeedStore) Create(f FeedFields) (*model.FeedLog, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO feed_logs (id, baby_id, caretaker_id, time, type, amount, unit_abbr, side, feed_duration, food)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, f.BabyID, strPtrToNull(f.CaretakerID), f.Time.UTC(), string(f.Type),
		floatPtrToNull(f.Amount), f.UnitAbbr, string(f.Side), intPtrToNull(f.FeedDuration), f.Food,
	)
	if err != nil {
		return nil, fmt.Errorf("insert feed log: %w", err)
	}
	return s.GetByID(id, "")
}

func (s *FeedStore) GetByID(id, familyID string) (*model.FeedLog, error) {
	query := `SELECT ` + feedCols + feedFrom + ` WHERE f.id = ? AND f.deleted_at IS NULL`
	args := []any{id}
	if familyID != "" {
		query += ` AND f.baby_id IN (SELECT id FROM babies WHERE family_id = ?)`
		args = append(args, familyID)
	}

	l, err := scanFeed(s.db.QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get feed log: %w", err)
	}
	return l, nil
}

func (s *FeedStore) List(babyID, familyID string, start, end time.Time) ([]model.FeedLog, error) {
	query := `SELECT ` + feedCols + feedFrom + ` WHERE f.deleted_at IS NULL`
	args := []any{}
	if babyID != "" {
		query += ` AND f.baby_id = ?`
		args = append(args, babyID)
	}
	if familyID != "" {
		query += ` AND f.baby_id IN (SELECT id FROM babies WHERE family_id = ?)`
		args = append(args, familyID)
	}
	if !start.IsZero() && !end.IsZero() {
		query += ` AND f.time >= ? AND f.time <= ?`
		args = append(args, start.UTC(), end.UTC())
	}
	query += ` ORDER BY f.time DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list feed logs: %w", err)
	}
	defer rows.Close()

	var logs []model.FeedLog
	for rows.Next() {
		l, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("scan feed log: %w", err)
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}

// LastFeedTime returns the time of the baby's most recent feed, or zero when
// none exist. The reminder scheduler polls this.
func (s *FeedStore) LastFeedTime(babyID string) (time.Time, error) {
	// Selecting the column directly keeps its DATETIME affinity; MAX(time)
	// would come back as a bare string the driver cannot scan into a time.
	var t time.Time
	err := s.db.QueryRow(
		`SELECT time FROM feed_logs WHERE baby_id = ? AND deleted_at IS NULL
		 ORDER BY time DESC LIMIT 1`,
		babyID,
	).Scan(&t)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("last feed time: %w", err)
	}
	return t.UTC(), nil
}

func (s *FeedStore) Update(id string, f FeedFields) (*model.FeedLog, error) {
	_, err := s.db.Exec(
		`UPDATE feed_logs
		 SET time = ?, type = ?, amount = ?, unit_abbr = ?, side = ?, feed_duration = ?, food = ?, updated_at = datetime('now')
		 WHERE id = ? AND deleted_at IS NULL`,
		f.Time.UTC(), string(f.Type), floatPtrToNull(f.Amount), f.UnitAbbr,
		string(f.Side), intPtrToNull(f.FeedDuration), f.Food, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update feed log: %w", err)
	}
	return s.GetByID(id, "")
}

func (s *FeedStore) SoftDelete(id string) error {
	_, err := s.db.Exec(
		`UPDATE feed_logs SET deleted_at = datetime('now'), updated_at = datetime('now') WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("soft delete feed log: %w", err)
	}
	return nil
}
