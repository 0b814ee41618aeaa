package store

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/audioctl/internal/platform"
)

// timeLayout is fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

func formatNullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(t), Valid: true}
}

func parseNullTime(ns sql.NullString) (time.Time, error) {
	if !ns.Valid {
		return time.Time{}, nil
	}
	return parseTime(ns.String)
}

// marshalLive stores live reads as compact JSON without HTML escaping.
func marshalLive(live []platform.LiveRead) (string, error) {
	if live == nil {
		live = []platform.LiveRead{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(live); err != nil {
		return "", fmt.Errorf("marshal live reads: %w", err)
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

func unmarshalLive(s string) ([]platform.LiveRead, error) {
	var live []platform.LiveRead
	if err := json.Unmarshal([]byte(s), &live); err != nil {
		return nil, fmt.Errorf("unmarshal live reads: %w", err)
	}
	return live, nil
}
