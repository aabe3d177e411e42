package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/facultytools/vitae/internal/common"
	"github.com/facultytools/vitae/internal/model"
)

// SaveRecords replaces the snapshot for one (user, section) pair. Record
// positions preserve the service's input order so later reads reproduce it.
func (s *SQLiteStorage) SaveRecords(ctx context.Context, userID, sectionID string, records []model.RawRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	if err := validateString(sectionID, "sectionID"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM raw_records WHERE user_id = ? AND section_id = ?`,
		userID, sectionID); err != nil {
		return fmt.Errorf("failed to clear previous snapshot: %w", err)
	}

	for i, rec := range records {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO raw_records (user_id, section_id, data_details, position)
			 VALUES (?, ?, ?, ?)`,
			userID, sectionID, rec.DataDetails, i); err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO snapshots (user_id, section_id, fetched_at, record_count)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, section_id) DO UPDATE SET
			fetched_at = excluded.fetched_at,
			record_count = excluded.record_count`,
		userID, sectionID, time.Now().UTC(), len(records)); err != nil {
		return fmt.Errorf("failed to record snapshot: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// GetRecords returns cached raw records for the given users and sections, in
// stable (user, section, position) order. Empty filters mean "all".
func (s *SQLiteStorage) GetRecords(ctx context.Context, userIDs []string, sectionIDs []string) ([]model.RawRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT user_id, section_id, data_details FROM raw_records`
	var clauses []string
	var args []any
	if len(userIDs) > 0 {
		clauses = append(clauses, `user_id IN (`+placeholders(len(userIDs))+`)`)
		for _, id := range userIDs {
			args = append(args, id)
		}
	}
	if len(sectionIDs) > 0 {
		clauses = append(clauses, `section_id IN (`+placeholders(len(sectionIDs))+`)`)
		for _, id := range sectionIDs {
			args = append(args, id)
		}
	}
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, ` AND `)
	}
	query += ` ORDER BY user_id, section_id, position`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.RawRecord
	for rows.Next() {
		var rec model.RawRecord
		if err := rows.Scan(&rec.UserID, &rec.SectionID, &rec.DataDetails); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}
	return records, nil
}

// GetRecordCount returns the total number of cached records.
func (s *SQLiteStorage) GetRecordCount(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM raw_records`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// GetSnapshotTime returns when a (user, section) pair was last fetched.
func (s *SQLiteStorage) GetSnapshotTime(ctx context.Context, userID, sectionID string) (time.Time, error) {
	if err := validateContext(ctx); err != nil {
		return time.Time{}, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return time.Time{}, err
	}
	if err := validateString(sectionID, "sectionID"); err != nil {
		return time.Time{}, err
	}

	var fetchedAt time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT fetched_at FROM snapshots WHERE user_id = ? AND section_id = ?`,
		userID, sectionID).Scan(&fetchedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: snapshot for user %s section %s", common.ErrNotFound, userID, sectionID)
	}
	return fetchedAt, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
