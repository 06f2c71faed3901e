package repositories

import (
	"database/sql"
	"time"
)

const timeLayout = time.RFC3339Nano

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func timeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func floatArg(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func int64Arg(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

var readLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	for _, layout := range readLayouts {
		if t, err := time.Parse(layout, ns.String); err == nil {
			return &t
		}
	}
	return nil
}

func nullFloat(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	v := nf.Float64
	return &v
}

func nullInt(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}
