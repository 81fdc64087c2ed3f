package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fernwood/nestling/internal/model"
)

type PushStore struct {
	db *sql.DB
}

func NewPushStore(db *sql.DB) *PushStore {
	return &PushStore{db: db}
}

func (s *PushStore) Subscribe(familyID, endpoint, p256dh, auth, device string) (*model.PushSubscription, error) {
	result, err := s.db.Exec(
		`INSERT INTO push_subscriptions (family_id, endpoint, p256dh_key, auth_key, device)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(endpoint) DO UPDATE SET p256dh_key = excluded.p256dh_key, auth_key = excluded.auth_key`,
		familyID, endpoint, p256dh, auth, device,
	)
	if err != nil {
		return nil, fmt.Errorf("insert push subscription: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *PushStore) GetByID(id int64) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := s.db.QueryRow(
		`SELECT id, family_id, endpoint, p256dh_key, auth_key, device, created_at
		 FROM push_subscriptions WHERE id = ?`, id,
	).Scan(&sub.ID, &sub.FamilyID, &sub.Endpoint, &sub.P256dhKey, &sub.AuthKey, &sub.Device, &sub.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get push subscription: %w", err)
	}
	return &sub, nil
}

func (s *PushStore) ListByFamily(familyID string) ([]model.PushSubscription, error) {
	rows, err := s.db.Query(
		`SELECT id, family_id, endpoint, p256dh_key, auth_key, device, created_at
		 FROM push_subscriptions WHERE family_id = ?`, familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list push subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []model.PushSubscription
	for rows.Next() {
		var sub model.PushSubscription
		if err := rows.Scan(&sub.ID, &sub.FamilyID, &sub.Endpoint, &sub.P256dhKey, &sub.AuthKey, &sub.Device, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan push subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (s *PushStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM push_subscriptions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete push subscription: %w", err)
	}
	return nil
}

// WasSent reports whether a notification (family, type, ref) was already
// recorded, and records it when not. The unique index makes the check-and-set
// atomic under concurrent scheduler ticks.
func (s *PushStore) WasSent(familyID, notifType, refID string) (bool, error) {
	_, err := s.db.Exec(
		`INSERT INTO sent_notifications (family_id, notif_type, ref_id) VALUES (?, ?, ?)`,
		familyID, notifType, refID,
	)
	if err != nil {
		// Unique violation means it was already sent.
		return true, nil
	}
	return false, nil
}

// PruneSent drops dedupe records older than the cutoff so ref ids can fire
// again in a later window. The cutoff is rendered in SQLite's datetime text
// layout so it compares against the sent_at default correctly.
func (s *PushStore) PruneSent(cutoff time.Time) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM sent_notifications WHERE sent_at < ?`,
		cutoff.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return 0, fmt.Errorf("prune sent notifications: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
