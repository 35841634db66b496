package postgres

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/bryanwahyu/policywatch/internal/domain/classify"
)

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func categoriesJSON(cats []classify.Bucket) string {
	if cats == nil {
		cats = []classify.Bucket{}
	}
	b, _ := json.Marshal(cats)
	return string(b)
}

func categoriesFromJSON(raw string) []classify.Bucket {
	var cats []classify.Bucket
	if raw == "" || json.Unmarshal([]byte(raw), &cats) != nil {
		return []classify.Bucket{}
	}
	return cats
}

type rowScanner interface {
	Scan(dest ...any) error
}
