// Package linker matches free-form titles and slugs against local movie
// records.
package linker

import (
	"strings"

	"github.com/mozillazg/go-unidecode"

	"github.com/arinleviti/80sHorrorHub/internal/constants"
	"github.com/arinleviti/80sHorrorHub/internal/domain"
)

// Normalize romanizes s, lower-cases it and collapses every run of
// characters outside [a-z0-9] into one space.
func Normalize(s string) string {
	s = strings.ToLower(unidecode.Unidecode(s))

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// Similarity is the shared-word ratio |A ∩ B| / max(|A|, |B|) of the two
// normalized word sets.
func Similarity(a, b string) float64 {
	wa := wordSet(Normalize(a))
	wb := wordSet(Normalize(b))
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}

	shared := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			shared++
		}
	}
	return float64(shared) / float64(max(len(wa), len(wb)))
}

// Match returns the first record whose title normalizes to the same string
// as candidate, or whose similarity reaches the overlap threshold. Records
// are tried in order; there is no best-of ranking.
func Match(candidate string, records []domain.MovieRecord) *domain.MovieRecord {
	norm := Normalize(candidate)
	if norm == "" {
		return nil
	}
	for i := range records {
		title := Normalize(records[i].Title)
		if title == norm || Similarity(norm, title) >= constants.MinWordOverlap {
			return &records[i]
		}
	}
	return nil
}

// MatchExact returns the first record with exactly the given title.
func MatchExact(title string, records []domain.MovieRecord) *domain.MovieRecord {
	for i := range records {
		if records[i].Title == title {
			return &records[i]
		}
	}
	return nil
}

func wordSet(s string) map[string]struct{} {
	words := strings.Fields(s)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
