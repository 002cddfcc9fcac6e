package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/yumyai/cytoterm/pkg/cytoband"
)

var storeLines = []string{
	"chr1\t0\t2300000\tp36.33\tgneg",
	"chr1\t2300000\t5300000\tp36.32\tgpos25",
	"chr1\t121700000\t123400000\tp11.1\tacen",
	"chr1\t143200000\t147500000\tq21.1\tgneg",
}

func convert(t *testing.T) *cytoband.Document {
	t.Helper()
	result, err := cytoband.Run(storeLines, cytoband.Options{
		LinkAcrossCentromere: true,
		CentromereLevels:     []cytoband.Level{cytoband.LevelSubBand},
	})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	return result.Document
}

func TestSaveDocument(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, filepath.Join(t.TempDir(), "nested", "terms.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	if _, err := store.LatestRelease(ctx); !errors.Is(err, ErrNoRelease) {
		t.Fatalf("expected ErrNoRelease, got %v", err)
	}

	doc := convert(t)
	first, err := store.SaveDocument(ctx, doc, "digest-1")
	if err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}
	second, err := store.SaveDocument(ctx, doc, "digest-2")
	if err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("releases share an id")
	}

	latest, err := store.LatestRelease(ctx)
	if err != nil {
		t.Fatalf("LatestRelease: %v", err)
	}
	if latest.ID != second.ID || latest.Digest != "digest-2" {
		t.Errorf("latest release = %+v, want %+v", latest, second)
	}
	if latest.ConceptCount != 12 || latest.LinkCount != 1 {
		t.Errorf("counts = %d concepts, %d links", latest.ConceptCount, latest.LinkCount)
	}

	var (
		level      string
		start, end sql.NullInt64
		stain      string
	)
	err = store.DB().QueryRowContext(ctx,
		`SELECT level, start_location, end_location, stain FROM concepts WHERE release_id = ? AND code = ?`,
		second.ID, "1p36.33").Scan(&level, &start, &end, &stain)
	if err != nil {
		t.Fatalf("select concept: %v", err)
	}
	if level != "subBand" || start.Int64 != 0 || !start.Valid || end.Int64 != 2300000 || stain != "gneg" {
		t.Errorf("stored 1p36.33 = %s %v %v %s", level, start, end, stain)
	}

	err = store.DB().QueryRowContext(ctx,
		`SELECT start_location FROM concepts WHERE release_id = ? AND code = ?`,
		second.ID, "1q").Scan(&start)
	if err != nil {
		t.Fatalf("select arm: %v", err)
	}
	// 1q has the q21.1 descendant, so it inherits its span.
	if !start.Valid || start.Int64 != 143200000 {
		t.Errorf("1q start = %v", start)
	}

	var links int
	err = store.DB().QueryRowContext(ctx,
		`SELECT count(*) FROM edges WHERE release_id = ? AND kind = ? AND from_code = ? AND to_code = ?`,
		second.ID, EdgeCentromere, "1p11.1", "1q21.1").Scan(&links)
	if err != nil {
		t.Fatalf("count links: %v", err)
	}
	if links != 1 {
		t.Errorf("expected 1 centromere edge, got %d", links)
	}
}

func TestOpenMemory(t *testing.T) {
	store, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	if _, err := store.SaveDocument(context.Background(), convert(t), "d"); err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}
}

func TestLatestReleaseIsChronological(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	later := time.Date(2026, 1, 1, 0, 0, 0, 100_000_000, time.UTC)
	earlier := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// The later release is inserted first so rowid order disagrees with time.
	for _, r := range []struct {
		id string
		at time.Time
	}{{"later", later}, {"earlier", earlier}} {
		if _, err := store.DB().ExecContext(ctx,
			`INSERT INTO releases (id, digest, created_at, concept_count, link_count) VALUES (?, ?, ?, 0, 0)`,
			r.id, "d-"+r.id, r.at.UnixNano()); err != nil {
			t.Fatalf("insert %s: %v", r.id, err)
		}
	}

	latest, err := store.LatestRelease(ctx)
	if err != nil {
		t.Fatalf("LatestRelease: %v", err)
	}
	if latest.ID != "later" || !latest.CreatedAt.Equal(later) {
		t.Errorf("latest = %s at %s, want later at %s", latest.ID, latest.CreatedAt, later)
	}
}
