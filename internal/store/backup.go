package store

import (
	"database/sql"
	"fmt"

	"github.com/fernwood/nestling/internal/model"
)

type BackupStore struct {
	db *sql.DB
}

func NewBackupStore(db *sql.DB) *BackupStore {
	return &BackupStore{db: db}
}

func (s *BackupStore) Record(filename string, sizeBytes int64, status model.BackupStatus, errMsg string) (*model.Backup, error) {
	result, err := s.db.Exec(
		`INSERT INTO backups (filename, size_bytes, status, error) VALUES (?, ?, ?, ?)`,
		filename, sizeBytes, string(status), errMsg,
	)
	if err != nil {
		return nil, fmt.Errorf("insert backup: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *BackupStore) GetByID(id int64) (*model.Backup, error) {
	var b model.Backup
	err := s.db.QueryRow(
		`SELECT id, filename, size_bytes, status, error, created_at FROM backups WHERE id = ?`, id,
	).Scan(&b.ID, &b.Filename, &b.SizeBytes, &b.Status, &b.Error, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get backup: %w", err)
	}
	return &b, nil
}

func (s *BackupStore) List(limit int) ([]model.Backup, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, filename, size_bytes, status, error, created_at
		 FROM backups ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	defer rows.Close()

	var backups []model.Backup
	for rows.Next() {
		var b model.Backup
		if err := rows.Scan(&b.ID, &b.Filename, &b.SizeBytes, &b.Status, &b.Error, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan backup: %w", err)
		}
		backups = append(backups, b)
	}
	return backups, rows.Err()
}

// LastSuccess returns the most recent successful backup, or nil when none
// has completed yet.
func (s *BackupStore) LastSuccess() (*model.Backup, error) {
	var b model.Backup
	err := s.db.QueryRow(
		`SELECT id, filename, size_bytes, status, error, created_at
		 FROM backups WHERE status = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		string(model.BackupStatusSuccess),
	).Scan(&b.ID, &b.Filename, &b.SizeBytes, &b.Status, &b.Error, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last successful backup: %w", err)
	}
	return &b, nil
}
