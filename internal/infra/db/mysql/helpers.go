package mysql

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/bryanwahyu/policywatch/internal/domain/classify"
)

// nullTime maps a nullable timestamp column to *time.Time.
func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// nullString maps an optional string column, writing NULL for empty.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// categoriesJSON stores the matched bucket list as a JSON array string.
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
