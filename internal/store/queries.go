package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Usage record operations

// GetUsageRecord retrieves the usage record for a package.
// Returns (nil, nil) when no record exists yet.
func (s *Store) GetUsageRecord(pkg string) (*UsageRecord, error) {
	query := `
		SELECT package, last_used_at, usage_count, foreground_ns, cooldown_expires_at
		FROM usage_records
		WHERE package = ?
	`

	var rec UsageRecord
	var lastUsedAt string
	var foregroundNS int64
	var cooldownExpiresAt sql.NullString

	err := s.db.QueryRow(query, pkg).Scan(
		&rec.Package,
		&lastUsedAt,
		&rec.UsageCount,
		&foregroundNS,
		&cooldownExpiresAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapQueryErr(fmt.Sprintf("failed to get usage record for %s", pkg), err)
	}

	rec.LastUsedAt, err = time.Parse(time.RFC3339Nano, lastUsedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse last_used_at for %s: %w", pkg, err)
	}
	rec.Foreground = time.Duration(foregroundNS)

	if cooldownExpiresAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, cooldownExpiresAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse cooldown_expires_at for %s: %w", pkg, err)
		}
		rec.CooldownExpiresAt = &t
	}

	return &rec, nil
}

// UpsertUsageRecord inserts or replaces the usage record for a package.
func (s *Store) UpsertUsageRecord(rec *UsageRecord) error {
	query := `
		INSERT OR REPLACE INTO usage_records
		(package, last_used_at, usage_count, foreground_ns, cooldown_expires_at)
		VALUES (?, ?, ?, ?, ?)
	`

	var cooldownExpiresAt interface{}
	if rec.CooldownExpiresAt != nil {
		cooldownExpiresAt = rec.CooldownExpiresAt.Format(time.RFC3339Nano)
	}

	_, err := s.db.Exec(query,
		rec.Package,
		rec.LastUsedAt.Format(time.RFC3339Nano),
		rec.UsageCount,
		int64(rec.Foreground),
		cooldownExpiresAt,
	)
	if err != nil {
		return wrapQueryErr(fmt.Sprintf("failed to upsert usage record for %s", rec.Package), err)
	}

	return nil
}

// ListUsageRecords returns all usage records ordered by package name.
func (s *Store) ListUsageRecords() ([]*UsageRecord, error) {
	query := `
		SELECT package, last_used_at, usage_count, foreground_ns, cooldown_expires_at
		FROM usage_records
		ORDER BY package
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, wrapQueryErr("failed to list usage records", err)
	}
	defer rows.Close()

	var records []*UsageRecord
	for rows.Next() {
		var rec UsageRecord
		var lastUsedAt string
		var foregroundNS int64
		var cooldownExpiresAt sql.NullString

		err := rows.Scan(
			&rec.Package,
			&lastUsedAt,
			&rec.UsageCount,
			&foregroundNS,
			&cooldownExpiresAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan usage record row: %w", err)
		}

		rec.LastUsedAt, err = time.Parse(time.RFC3339Nano, lastUsedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse last_used_at for %s: %w", rec.Package, err)
		}
		rec.Foreground = time.Duration(foregroundNS)

		if cooldownExpiresAt.Valid {
			t, err := time.Parse(time.RFC3339Nano, cooldownExpiresAt.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse cooldown_expires_at for %s: %w", rec.Package, err)
			}
			rec.CooldownExpiresAt = &t
		}

		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating usage records: %w", err)
	}

	return records, nil
}

// ClearAllCooldowns clears the cooldown expiry of every record in one bulk
// write. Usage counts are left untouched.
func (s *Store) ClearAllCooldowns() error {
	_, err := s.db.Exec(`UPDATE usage_records SET cooldown_expires_at = NULL`)
	if err != nil {
		return wrapQueryErr("failed to clear cooldowns", err)
	}
	return nil
}

// UpdateForeground raises the cumulative foreground duration for a package.
// The stored value is never decreased; a smaller observation is ignored.
func (s *Store) UpdateForeground(pkg string, observed time.Duration) error {
	query := `
		UPDATE usage_records
		SET foreground_ns = ?
		WHERE package = ? AND foreground_ns < ?
	`

	_, err := s.db.Exec(query, int64(observed), pkg, int64(observed))
	if err != nil {
		return wrapQueryErr(fmt.Sprintf("failed to update foreground time for %s", pkg), err)
	}
	return nil
}

// Foreground event operations

// InsertForegroundEvents batch-inserts journal events in a single transaction.
func (s *Store) InsertForegroundEvents(events []*ForegroundEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO foreground_events (package, event_type, timestamp)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return wrapQueryErr("failed to prepare event insert", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		if _, err := stmt.Exec(ev.Package, ev.EventType, ev.Timestamp.Format(time.RFC3339Nano)); err != nil {
			return wrapQueryErr(fmt.Sprintf("failed to insert event for %s", ev.Package), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit events: %w", err)
	}

	return nil
}

// GetForegroundEvents returns events in [start, end) ordered by timestamp.
func (s *Store) GetForegroundEvents(start, end time.Time) ([]*ForegroundEvent, error) {
	query := `
		SELECT package, event_type, timestamp
		FROM foreground_events
		WHERE timestamp >= ? AND timestamp < ?
		ORDER BY timestamp
	`

	rows, err := s.db.Query(query, start.Format(time.RFC3339Nano), end.Format(time.RFC3339Nano))
	if err != nil {
		return nil, wrapQueryErr("failed to get foreground events", err)
	}
	defer rows.Close()

	var events []*ForegroundEvent
	for rows.Next() {
		var ev ForegroundEvent
		var timestamp string

		if err := rows.Scan(&ev.Package, &ev.EventType, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}

		ev.Timestamp, err = time.Parse(time.RFC3339Nano, timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to parse event timestamp: %w", err)
		}

		events = append(events, &ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating foreground events: %w", err)
	}

	return events, nil
}

// GetEventCount returns the total number of foreground events recorded.
func (s *Store) GetEventCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM foreground_events").Scan(&count)
	if err != nil {
		return 0, wrapQueryErr("failed to get event count", err)
	}
	return count, nil
}

// GetFirstEventTime returns the timestamp of the earliest foreground event.
// Returns zero time if no events exist.
func (s *Store) GetFirstEventTime() (time.Time, error) {
	var timestamp sql.NullString
	err := s.db.QueryRow("SELECT MIN(timestamp) FROM foreground_events").Scan(&timestamp)
	if err != nil {
		return time.Time{}, wrapQueryErr("failed to get first event time", err)
	}
	if !timestamp.Valid || timestamp.String == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(time.RFC3339Nano, timestamp.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp: %w", err)
	}

	return t, nil
}
