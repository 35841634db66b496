// Package diff computes content fingerprints and sentence-set diffs
// between two document snapshots.
//
// The diff is a set comparison, not a positional (LCS) diff: sentences
// are compared for membership only, so reordering or duplicating
// sentences produces no entries, and a sentence that was moved and
// reworded is indistinguishable from an unrelated remove + add.
package diff

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var sentenceBoundary = regexp.MustCompile(`[.!?]+`)

// Fingerprint returns the SHA-256 hex digest of normalized text.
// Two snapshots are unchanged iff their fingerprints are equal.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Sentences splits text on sentence boundaries, trimming whitespace
// and dropping empties.
func Sentences(text string) []string {
	parts := sentenceBoundary.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Result holds the sentences added and removed between two texts.
// Both slices preserve the order of the text they came from.
type Result struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
}

// Empty reports whether nothing was added or removed.
func (r Result) Empty() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0
}

// Compute diffs two texts as sets of sentences. Added holds sentences
// present in newText but not oldText; Removed the reverse.
func Compute(oldText, newText string) Result {
	oldSents := Sentences(oldText)
	newSents := Sentences(newText)

	oldSet := make(map[string]bool, len(oldSents))
	for _, s := range oldSents {
		oldSet[s] = true
	}
	newSet := make(map[string]bool, len(newSents))
	for _, s := range newSents {
		newSet[s] = true
	}

	var res Result
	seen := make(map[string]bool)
	for _, s := range newSents {
		if !oldSet[s] && !seen[s] {
			res.Added = append(res.Added, s)
			seen[s] = true
		}
	}
	seen = make(map[string]bool)
	for _, s := range oldSents {
		if !newSet[s] && !seen[s] {
			res.Removed = append(res.Removed, s)
			seen[s] = true
		}
	}
	return res
}

// Ratio returns the share of sentences that changed relative to the
// larger of the two sentence counts. Zero when both texts are empty.
func Ratio(r Result, oldCount, newCount int) float64 {
	total := oldCount
	if newCount > total {
		total = newCount
	}
	if total == 0 {
		return 0
	}
	return float64(len(r.Added)+len(r.Removed)) / float64(total)
}
