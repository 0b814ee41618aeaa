package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/audioctl/internal/ir"
	"github.com/roach88/audioctl/internal/snapshot"
)

const sessionColumns = `id, kind, device_id, correlation_key, flow, effect_name,
	started_at, finished_at, outcome, section, message`

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (Session, error) {
	var (
		sess     Session
		kind     string
		flow     string
		started  string
		finished sql.NullString
		outcome  string
	)
	err := row.Scan(&sess.ID, &kind, &sess.DeviceID, &sess.CorrelationKey, &flow, &sess.EffectName,
		&started, &finished, &outcome, &sess.Section, &sess.Message)
	if err != nil {
		return Session{}, err
	}
	sess.Kind = Kind(kind)
	sess.Outcome = Outcome(outcome)
	if sess.Flow, err = ir.ParseFlow(flow); err != nil {
		return Session{}, fmt.Errorf("session %s: %w", sess.ID, err)
	}
	if sess.StartedAt, err = parseTime(started); err != nil {
		return Session{}, fmt.Errorf("session %s: %w", sess.ID, err)
	}
	if sess.FinishedAt, err = parseNullTime(finished); err != nil {
		return Session{}, fmt.Errorf("session %s: %w", sess.ID, err)
	}
	return sess, nil
}

// ReadSession returns one session with the labels of its snapshots.
func (s *Store) ReadSession(ctx context.Context, id string) (Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT label FROM snapshots WHERE session_id = ? ORDER BY id ASC
	`, id)
	if err != nil {
		return Session{}, fmt.Errorf("query snapshot labels: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return Session{}, fmt.Errorf("scan snapshot label: %w", err)
		}
		sess.Labels = append(sess.Labels, label)
	}
	if err := rows.Err(); err != nil {
		return Session{}, fmt.Errorf("iterate snapshot labels: %w", err)
	}
	return sess, nil
}

// ListSessions returns sessions newest first. A limit of zero or less
// returns every session.
//
// Returns an empty slice (not nil) if the log is empty.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		ORDER BY started_at DESC, id COLLATE BINARY DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// ReadSnapshot reconstructs a stored snapshot, records in capture order.
func (s *Store) ReadSnapshot(ctx context.Context, sessionID, label string) (snapshot.Snapshot, error) {
	var (
		snapID  int64
		snap    snapshot.Snapshot
		takenAt string
		live    string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, device_id, taken_at, live
		FROM snapshots
		WHERE session_id = ? AND label = ?
	`, sessionID, label).Scan(&snapID, &snap.DeviceID, &takenAt, &live)
	if errors.Is(err, sql.ErrNoRows) {
		return snapshot.Snapshot{}, fmt.Errorf("%w: %s/%s", ErrSnapshotNotFound, sessionID, label)
	}
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	if snap.TakenAt, err = parseTime(takenAt); err != nil {
		return snapshot.Snapshot{}, err
	}
	if snap.Live, err = unmarshalLive(live); err != nil {
		return snapshot.Snapshot{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT hive, flow, path, name, type, preview, raw
		FROM records
		WHERE snapshot_id = ?
		ORDER BY seq ASC
	`, snapID)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r     snapshot.Record
			hive  string
			flow  string
			vtype uint32
		)
		if err := rows.Scan(&hive, &flow, &r.Path, &r.Name, &vtype, &r.Preview, &r.Raw); err != nil {
			return snapshot.Snapshot{}, fmt.Errorf("scan record: %w", err)
		}
		if r.Scope, err = ir.ParseScope(hive); err != nil {
			return snapshot.Snapshot{}, fmt.Errorf("record: %w", err)
		}
		if r.Flow, err = ir.ParseFlow(flow); err != nil {
			return snapshot.Snapshot{}, fmt.Errorf("record: %w", err)
		}
		r.Type = ir.ValueType(vtype)
		snap.Records = append(snap.Records, r)
	}
	if err := rows.Err(); err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("iterate records: %w", err)
	}
	return snap, nil
}
