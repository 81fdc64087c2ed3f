package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/fernwood/nestling/internal/model"
)

type SettingsStore struct {
	db *sql.DB
}

func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

const settingsCols = `id, family_id, timezone, default_bottle_unit, default_solids_unit,
	feed_gap_minutes, open_sleep_alert_hours, created_at, updated_at`

func scanSettings(sc scanner) (*model.Settings, error) {
	var st model.Settings
	err := sc.Scan(
		&st.ID, &st.FamilyID, &st.Timezone, &st.DefaultBottleUnit, &st.DefaultSolidsUnit,
		&st.FeedGapMinutes, &st.OpenSleepAlertHours, &st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// GetByFamily returns the family's settings row, creating the default row on
// first access.
func (s *SettingsStore) GetByFamily(familyID string) (*model.Settings, error) {
	st, err := scanSettings(s.db.QueryRow(
		`SELECT `+settingsCols+` FROM settings WHERE family_id = ?`, familyID,
	))
	if err == sql.ErrNoRows {
		id := uuid.NewString()
		if _, err := s.db.Exec(`INSERT INTO settings (id, family_id) VALUES (?, ?)`, id, familyID); err != nil {
			return nil, fmt.Errorf("insert default settings: %w", err)
		}
		return s.GetByFamily(familyID)
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return st, nil
}

func (s *SettingsStore) Update(familyID, timezone, bottleUnit, solidsUnit string, feedGapMinutes, openSleepAlertHours int) (*model.Settings, error) {
	if _, err := s.GetByFamily(familyID); err != nil {
		return nil, err
	}
	_, err := s.db.Exec(
		`UPDATE settings
		 SET timezone = ?, default_bottle_unit = ?, default_solids_unit = ?,
		     feed_gap_minutes = ?, open_sleep_alert_hours = ?, updated_at = datetime('now')
		 WHERE family_id = ?`,
		timezone, bottleUnit, solidsUnit, feedGapMinutes, openSleepAlertHours, familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}
	return s.GetByFamily(familyID)
}
