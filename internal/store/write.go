package store

import (
	"context"
	"fmt"

	"github.com/roach88/audioctl/internal/snapshot"
)

// CreateSession inserts a new, unfinished session.
// Uses ON CONFLICT(id) DO NOTHING, so re-creating a session is a no-op.
func (s *Store) CreateSession(ctx context.Context, sess Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions
		(id, kind, device_id, correlation_key, flow, effect_name, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		sess.ID,
		string(sess.Kind),
		sess.DeviceID,
		sess.CorrelationKey,
		sess.Flow.String(),
		sess.EffectName,
		formatTime(sess.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// WriteSnapshot stores snap under label for a session, records included,
// in one transaction. Each label can be written once per session.
func (s *Store) WriteSnapshot(ctx context.Context, sessionID, label string, snap snapshot.Snapshot) error {
	live, err := marshalLive(snap.Live)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write snapshot: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	res, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (session_id, label, device_id, taken_at, live)
		VALUES (?, ?, ?, ?, ?)
	`, sessionID, label, snap.DeviceID, formatTime(snap.TakenAt), live)
	if err != nil {
		return fmt.Errorf("write snapshot %s/%s: %w", sessionID, label, err)
	}
	snapID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("write snapshot: last insert id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (snapshot_id, seq, hive, flow, path, name, type, preview, raw)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("write snapshot: prepare records: %w", err)
	}
	defer stmt.Close()

	for i, r := range snap.Records {
		_, err := stmt.ExecContext(ctx,
			snapID, i,
			r.Scope.String(),
			r.Flow.String(),
			r.Path,
			r.Name,
			uint32(r.Type),
			r.Preview,
			r.Raw,
		)
		if err != nil {
			return fmt.Errorf("write snapshot: record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write snapshot: commit: %w", err)
	}
	return nil
}

// FinishSession records the outcome of an open session. Finishing a
// session twice returns ErrSessionFinished.
func (s *Store) FinishSession(ctx context.Context, id string, r Result) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions
		SET finished_at = ?, outcome = ?, section = ?, message = ?
		WHERE id = ? AND finished_at IS NULL
	`,
		formatTime(r.FinishedAt),
		string(r.Outcome),
		r.Section,
		r.Message,
		id,
	)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	if n == 1 {
		return nil
	}

	if _, err := s.ReadSession(ctx, id); err != nil {
		return fmt.Errorf("finish session %s: %w", id, err)
	}
	return fmt.Errorf("finish session %s: %w", id, ErrSessionFinished)
}
