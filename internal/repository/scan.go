package repository

import (
	"fmt"
	"time"
)

type scannable interface {
	Scan(dest ...any) error
}

// timestampLayout is fixed width so that text timestamps in SQLite sort
// chronologically.
const timestampLayout = "2006-01-02T15:04:05.000000Z07:00"

var timestampParseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// timestamp scans TIMESTAMPTZ values (Postgres drivers hand back time.Time)
// as well as the text form stored by SQLite.
type timestamp struct {
	dst *time.Time
}

func (ts timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*ts.dst = time.Time{}
		return nil
	case time.Time:
		*ts.dst = v.UTC()
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
}

func (ts timestamp) parse(s string) error {
	for _, layout := range timestampParseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*ts.dst = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}
