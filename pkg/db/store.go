package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yumyai/cytoterm/internal/util"
	"github.com/yumyai/cytoterm/pkg/cytoband"

	_ "modernc.org/sqlite"
)

// Edge kinds stored in the edges table.
const (
	EdgePartOf     = "part-of"
	EdgeCentromere = cytoband.LinkKindCentromere
)

var ErrNoRelease = errors.New("no release has been stored")

type ConceptNotFoundError struct {
	Code string
}

func (e *ConceptNotFoundError) Error() string {
	return fmt.Sprintf("concept %q not found in latest release", e.Code)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS releases (
		id            TEXT PRIMARY KEY,
		digest        TEXT NOT NULL,
		created_at    INTEGER NOT NULL, -- unix nanoseconds
		concept_count INTEGER NOT NULL,
		link_count    INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS concepts (
		release_id     TEXT NOT NULL REFERENCES releases(id),
		code           TEXT NOT NULL,
		display        TEXT NOT NULL,
		level          TEXT NOT NULL,
		chromosome     TEXT NOT NULL,
		start_location INTEGER,
		end_location   INTEGER,
		stain          TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (release_id, code)
	)`,
	`CREATE TABLE IF NOT EXISTS edges (
		release_id TEXT NOT NULL REFERENCES releases(id),
		from_code  TEXT NOT NULL,
		to_code    TEXT NOT NULL,
		kind       TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS edges_from ON edges (release_id, from_code, kind)`,
	`CREATE INDEX IF NOT EXISTS edges_to ON edges (release_id, to_code, kind)`,
}

// TermDB stores emitted code systems in sqlite, one release per save.
type TermDB struct {
	conn *sql.DB
}

func NewTermDB(conn *sql.DB) *TermDB {
	return &TermDB{conn: conn}
}

// Open opens (creating if needed) the sqlite file at path and ensures the
// schema exists.
func Open(ctx context.Context, path string) (*TermDB, error) {
	if path != ":memory:" {
		if err := util.EnsureParentDir(path); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	// A single connection keeps :memory: databases alive across calls.
	conn.SetMaxOpenConns(1)

	tdb := NewTermDB(conn)
	if err := tdb.InitSchema(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return tdb, nil
}

func (t *TermDB) DB() *sql.DB {
	return t.conn
}

func (t *TermDB) Close() error {
	return t.conn.Close()
}

func (t *TermDB) InitSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := t.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init store schema: %w", err)
		}
	}
	return nil
}

// Release describes one stored document.
type Release struct {
	ID           string    `json:"id"`
	Digest       string    `json:"digest"`
	CreatedAt    time.Time `json:"createdAt"`
	ConceptCount int       `json:"conceptCount"`
	LinkCount    int       `json:"linkCount"`
}

// SaveDocument writes doc as a new release in a single transaction.
func (t *TermDB) SaveDocument(ctx context.Context, doc *cytoband.Document, digest string) (*Release, error) {
	rel := &Release{
		ID:           uuid.New().String(),
		Digest:       digest,
		CreatedAt:    time.Now().UTC(),
		ConceptCount: len(doc.Concepts),
		LinkCount:    len(doc.Links),
	}

	tx, err := t.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO releases (id, digest, created_at, concept_count, link_count) VALUES (?, ?, ?, ?, ?)`,
		rel.ID, rel.Digest, rel.CreatedAt.UnixNano(), rel.ConceptCount, rel.LinkCount,
	); err != nil {
		return nil, fmt.Errorf("insert release: %w", err)
	}

	conceptStm, err := tx.PrepareContext(ctx,
		`INSERT INTO concepts (release_id, code, display, level, chromosome, start_location, end_location, stain)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer conceptStm.Close()

	edgeStm, err := tx.PrepareContext(ctx,
		`INSERT INTO edges (release_id, from_code, to_code, kind) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer edgeStm.Close()

	for _, c := range doc.Concepts {
		start, end := rangeColumn(c, "start"), rangeColumn(c, "end")
		var stain string
		if p, ok := c.PropertyValue("giestain"); ok {
			stain = p.ValueString
		}
		if _, err := conceptStm.ExecContext(ctx,
			rel.ID, c.Code, c.Display, c.Level.String(), c.Chromosome, start, end, stain,
		); err != nil {
			return nil, fmt.Errorf("insert concept %s: %w", c.Code, err)
		}
		for _, parent := range c.Parents {
			if _, err := edgeStm.ExecContext(ctx, rel.ID, parent, c.Code, EdgePartOf); err != nil {
				return nil, fmt.Errorf("insert edge %s -> %s: %w", parent, c.Code, err)
			}
		}
	}

	for _, l := range doc.Links {
		if _, err := edgeStm.ExecContext(ctx, rel.ID, l.From, l.To, l.Kind); err != nil {
			return nil, fmt.Errorf("insert link %s -> %s: %w", l.From, l.To, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return rel, nil
}

// LatestRelease returns the most recently saved release.
func (t *TermDB) LatestRelease(ctx context.Context) (*Release, error) {
	var (
		rel     Release
		created int64
	)
	err := t.conn.QueryRowContext(ctx,
		`SELECT id, digest, created_at, concept_count, link_count
		 FROM releases ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	).Scan(&rel.ID, &rel.Digest, &created, &rel.ConceptCount, &rel.LinkCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRelease
	}
	if err != nil {
		return nil, err
	}
	rel.CreatedAt = time.Unix(0, created).UTC()
	return &rel, nil
}

func rangeColumn(c cytoband.ConceptEntry, prop string) sql.NullInt64 {
	p, ok := c.PropertyValue(prop)
	if !ok || p.ValueInteger == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p.ValueInteger), Valid: true}
}
