package linker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arinleviti/80sHorrorHub/internal/domain"
)

func records(titles ...string) []domain.MovieRecord {
	out := make([]domain.MovieRecord, 0, len(titles))
	for i, t := range titles {
		out = append(out, domain.MovieRecord{ID: string(rune('a' + i)), Title: t})
	}
	return out
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The Thing", "the thing"},
		{"  The   Thing (1982)  ", "the thing 1982"},
		{"A-Nightmare-on-Elm-Street-Part-2:Freddy's-Revenge", "a nightmare on elm street part 2 freddy s revenge"},
		{"C.H.U.D.", "c h u d"},
		{"Re-Animator", "re animator"},
		{"Déjà Vu", "deja vu"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 2.0/3.0, Similarity("Sleepaway Camp 2", "sleepaway camp"), 1e-9)
	assert.Equal(t, 1.0, Similarity("the-fog", "The Fog"))
	assert.Equal(t, 0.0, Similarity("", "The Fog"))
	assert.InDelta(t, 0.8, Similarity("the return of the living dead", "return of living dead"), 1e-9)
}

func TestMatchFirstEqualCandidateWins(t *testing.T) {
	recs := records("the thing", "the thing (1982)")

	got := Match("The Thing", recs)
	require.NotNil(t, got)
	assert.Equal(t, "a", got.ID)
}

func TestMatchOverlapBoundary(t *testing.T) {
	assert.Nil(t, Match("Sleepaway Camp 2", records("sleepaway camp")))
}

func TestMatchBySimilarity(t *testing.T) {
	recs := records("Poltergeist", "The Return of the Living Dead")

	got := Match("the-return-of-the-living-dead-1985", recs)
	require.NotNil(t, got)
	assert.Equal(t, "b", got.ID)
}

func TestMatchSlug(t *testing.T) {
	recs := records("Halloween", "A Nightmare on Elm Street", "Fright Night")

	got := Match("a-nightmare-on-elm-street", recs)
	require.NotNil(t, got)
	assert.Equal(t, "A Nightmare on Elm Street", got.Title)
}

func TestMatchEmptyCandidate(t *testing.T) {
	assert.Nil(t, Match("", records("Aliens")))
	assert.Nil(t, Match("Aliens", nil))
}

func TestMatchExact(t *testing.T) {
	recs := records("The Fly", "the fly")

	got := MatchExact("the fly", recs)
	require.NotNil(t, got)
	assert.Equal(t, "b", got.ID)
	assert.Nil(t, MatchExact("The Fly (1986)", recs))
}
