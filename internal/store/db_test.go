package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/arinleviti/80sHorrorHub/internal/domain"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() {
		if cErr := db.Close(); cErr != nil {
			t.Logf("db.Close error: %v", cErr)
		}
	})
	return db
}

func rawItems(values ...string) []json.RawMessage {
	items := make([]json.RawMessage, 0, len(values))
	for _, v := range values {
		items = append(items, json.RawMessage(v))
	}
	return items
}

func TestDB_Queries(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	missing, err := db.FindQuery(ctx, "youtube", "halloween 1978 trailer")
	if err != nil {
		t.Fatalf("FindQuery failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("Expected nil for missing query, got %+v", missing)
	}

	first := time.UnixMilli(1_700_000_000_000)
	err = db.UpsertQuery(ctx, "youtube", "halloween 1978 trailer",
		rawItems(`{"id":"a"}`, `{"id":"b"}`, `{"id":"c"}`), first)
	if err != nil {
		t.Fatalf("UpsertQuery failed: %v", err)
	}

	got, err := db.FindQuery(ctx, "youtube", "halloween 1978 trailer")
	if err != nil {
		t.Fatalf("FindQuery failed: %v", err)
	}
	if len(got.Items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(got.Items))
	}
	if string(got.Items[0]) != `{"id":"a"}` || string(got.Items[2]) != `{"id":"c"}` {
		t.Errorf("Items out of order: %s", got.Items)
	}
	if !got.UpdatedAt.Equal(first) {
		t.Errorf("Expected updated_at %v, got %v", first, got.UpdatedAt)
	}
	id := got.ID

	second := first.Add(time.Hour)
	if err := db.UpsertQuery(ctx, "youtube", "halloween 1978 trailer", rawItems(`{"id":"d"}`), second); err != nil {
		t.Fatalf("UpsertQuery refresh failed: %v", err)
	}

	got, _ = db.FindQuery(ctx, "youtube", "halloween 1978 trailer")
	if got.ID != id {
		t.Errorf("Expected same query id %s after refresh, got %s", id, got.ID)
	}
	if len(got.Items) != 1 || string(got.Items[0]) != `{"id":"d"}` {
		t.Errorf("Expected children to be replaced, got %s", got.Items)
	}
	if !got.UpdatedAt.Equal(second) {
		t.Errorf("Expected updated_at bumped to %v, got %v", second, got.UpdatedAt)
	}

	var childRows int
	if err := db.Get(&childRows, "SELECT COUNT(*) FROM cached_items"); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if childRows != 1 {
		t.Errorf("Expected exactly 1 child row in table, got %d", childRows)
	}
}

func TestDB_QueriesAreScopedByProvider(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now()

	_ = db.UpsertQuery(ctx, "ebay", "q", rawItems(`1`), now)
	_ = db.UpsertQuery(ctx, "discogs", "q", rawItems(`2`, `3`), now)

	ebay, _ := db.FindQuery(ctx, "ebay", "q")
	discogs, _ := db.FindQuery(ctx, "discogs", "q")
	if len(ebay.Items) != 1 || len(discogs.Items) != 2 {
		t.Errorf("Expected provider isolation, got ebay=%d discogs=%d", len(ebay.Items), len(discogs.Items))
	}

	n, err := db.DeleteProviderQueries(ctx, "discogs")
	if err != nil {
		t.Fatalf("DeleteProviderQueries failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 deleted query, got %d", n)
	}
	if got, _ := db.FindQuery(ctx, "discogs", "q"); got != nil {
		t.Error("Expected discogs query to be gone")
	}

	if err := db.DeleteQuery(ctx, "ebay", "q"); err != nil {
		t.Fatalf("DeleteQuery failed: %v", err)
	}
	var childRows int
	_ = db.Get(&childRows, "SELECT COUNT(*) FROM cached_items")
	if childRows != 0 {
		t.Errorf("Expected no orphaned children, got %d", childRows)
	}
}

func TestDB_Tokens(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	tok, err := db.GetToken(ctx, "spotify")
	if err != nil || tok != nil {
		t.Fatalf("Expected no token, got %+v, %v", tok, err)
	}

	expires := time.UnixMilli(1_700_000_360_000)
	if err := db.SaveToken(ctx, &domain.OAuthToken{Provider: "spotify", Token: "one", ExpiresAt: expires}); err != nil {
		t.Fatalf("SaveToken failed: %v", err)
	}
	if err := db.SaveToken(ctx, &domain.OAuthToken{Provider: "spotify", Token: "two", ExpiresAt: expires.Add(time.Hour)}); err != nil {
		t.Fatalf("SaveToken overwrite failed: %v", err)
	}

	tok, err = db.GetToken(ctx, "spotify")
	if err != nil {
		t.Fatalf("GetToken failed: %v", err)
	}
	if tok.Token != "two" {
		t.Errorf("Expected latest token, got %s", tok.Token)
	}
	if !tok.ExpiresAt.Equal(expires.Add(time.Hour)) {
		t.Errorf("Expected expiry %v, got %v", expires.Add(time.Hour), tok.ExpiresAt)
	}

	var rows int
	_ = db.Get(&rows, "SELECT COUNT(*) FROM oauth_tokens")
	if rows != 1 {
		t.Errorf("Expected single token row, got %d", rows)
	}
}

func TestDB_Movies(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	thing := &domain.MovieRecord{
		ID: "1091", TMDBID: 1091, Title: "The Thing", Slug: "the-thing",
		ReleaseDate: "1982-06-25", PosterPath: "/thing.jpg",
	}
	fog := &domain.MovieRecord{ID: "790", TMDBID: 790, Title: "The Fog", Slug: "the-fog"}
	for _, m := range []*domain.MovieRecord{thing, fog} {
		if err := db.UpsertMovie(ctx, m); err != nil {
			t.Fatalf("UpsertMovie failed: %v", err)
		}
	}

	missing, err := db.ListMoviesMissingPoster(ctx)
	if err != nil {
		t.Fatalf("ListMoviesMissingPoster failed: %v", err)
	}
	if len(missing) != 1 || missing[0].ID != "1091" {
		t.Errorf("Expected only The Thing to need a poster, got %+v", missing)
	}

	if err := db.SetMoviePoster(ctx, "1091", "https://ik.imagekit.io/x/posters/poster_1091.jpg"); err != nil {
		t.Fatalf("SetMoviePoster failed: %v", err)
	}
	if err := db.SetMoviePoster(ctx, "nope", "x"); err == nil {
		t.Error("Expected error for unknown movie")
	}

	// A metadata refresh must not wipe the hosted poster.
	thing.Title = "The Thing"
	thing.ImageKitPosterPath = ""
	if err := db.UpsertMovie(ctx, thing); err != nil {
		t.Fatalf("UpsertMovie refresh failed: %v", err)
	}
	got, err := db.GetMovie(ctx, "1091")
	if err != nil {
		t.Fatalf("GetMovie failed: %v", err)
	}
	if got.ImageKitPosterPath == "" {
		t.Error("Expected hosted poster to survive a metadata upsert")
	}

	byTitle, err := db.FindMovieByTitle(ctx, "The Fog")
	if err != nil || byTitle == nil || byTitle.ID != "790" {
		t.Errorf("FindMovieByTitle failed: %+v, %v", byTitle, err)
	}
	if none, _ := db.FindMovieByTitle(ctx, "the fog"); none != nil {
		t.Error("Expected exact title lookup to be case sensitive")
	}

	all, err := db.ListMovies(ctx)
	if err != nil {
		t.Fatalf("ListMovies failed: %v", err)
	}
	if len(all) != 2 || all[0].ID != "1091" {
		t.Errorf("Expected 2 movies in insertion order, got %+v", all)
	}
}

func TestDB_AiDescriptions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.UpsertMovie(ctx, &domain.MovieRecord{ID: "694", TMDBID: 694, Title: "The Shining"}); err != nil {
		t.Fatalf("UpsertMovie failed: %v", err)
	}

	d, err := db.GetAiDescription(ctx, "694")
	if err != nil || d != nil {
		t.Fatalf("Expected no description, got %+v, %v", d, err)
	}

	err = db.UpsertAiDescription(ctx, &domain.AiDescription{
		MovieID:  "694",
		Synopsis: "A family heads to an isolated hotel.",
	})
	if err != nil {
		t.Fatalf("UpsertAiDescription failed: %v", err)
	}
	err = db.UpsertAiDescription(ctx, &domain.AiDescription{
		MovieID:   "694",
		Synopsis:  "Jack takes a caretaker job.",
		Reception: "Mixed at first, later acclaimed.",
	})
	if err != nil {
		t.Fatalf("UpsertAiDescription update failed: %v", err)
	}

	d, err = db.GetAiDescription(ctx, "694")
	if err != nil {
		t.Fatalf("GetAiDescription failed: %v", err)
	}
	if d.Synopsis != "Jack takes a caretaker job." || d.Reception == "" {
		t.Errorf("Unexpected description %+v", d)
	}
	if d.FunFacts != "" {
		t.Errorf("Expected empty fun facts, got %q", d.FunFacts)
	}

	_, _ = db.Exec("UPDATE ai_descriptions SET fun_facts = NULL WHERE movie_id = ?", "694")
	if d, err = db.GetAiDescription(ctx, "694"); err != nil || d.FunFacts != "" {
		t.Errorf("Expected NULL to read as empty string, got %+v, %v", d, err)
	}
}

func TestDB_Cache(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now()
	db.now = func() time.Time { return now }

	if err := db.SetCache("tmdb:movie:1091", []byte(`{"id":1091}`), time.Hour); err != nil {
		t.Fatalf("SetCache failed: %v", err)
	}

	data, err := db.GetCache("tmdb:movie:1091")
	if err != nil {
		t.Fatalf("GetCache failed: %v", err)
	}
	if string(data) != `{"id":1091}` {
		t.Errorf("Unexpected cache data %s", data)
	}

	now = now.Add(2 * time.Hour)
	data, err = db.GetCache("tmdb:movie:1091")
	if err != nil {
		t.Fatalf("GetCache failed: %v", err)
	}
	if data != nil {
		t.Error("Expected expired entry to be dropped")
	}

	_ = db.SetCache("forever", []byte("x"), 0)
	if data, _ := db.GetCache("forever"); string(data) != "x" {
		t.Error("Expected entry without ttl to persist")
	}

	if err := db.ClearCache(); err != nil {
		t.Fatalf("ClearCache failed: %v", err)
	}
	if data, _ := db.GetCache("forever"); data != nil {
		t.Error("Expected cache to be cleared")
	}
}
