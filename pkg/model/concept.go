package model

import (
	"context"
	"database/sql"
	"errors"

	ggdb "github.com/yumyai/cytoterm/pkg/db"
)

const conceptColumns = `c.code, c.display, c.level, c.chromosome, c.start_location, c.end_location, c.stain`

func scanConcept(rows interface{ Scan(...any) error }) (conceptQuery, error) {
	var q conceptQuery
	err := rows.Scan(&q.code, &q.display, &q.level, &q.chromosome, &q.start, &q.end, &q.stain)
	return q, err
}

func latestReleaseID(ctx context.Context, db *sql.DB) (string, error) {
	var id string
	err := db.QueryRowContext(ctx,
		`SELECT id FROM releases ORDER BY created_at DESC, rowid DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ggdb.ErrNoRelease
	}
	return id, err
}

// GetConcept loads one concept and its edges from the latest release.
func GetConcept(ctx context.Context, db *sql.DB, code string) (*Concept, error) {
	releaseID, err := latestReleaseID(ctx, db)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		`SELECT `+conceptColumns+` FROM concepts c WHERE c.release_id = ? AND c.code = ?`,
		releaseID, code)
	q, err := scanConcept(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &ggdb.ConceptNotFoundError{Code: code}
	}
	if err != nil {
		return nil, err
	}
	concept := q.toConcept(releaseID)

	edges := []struct {
		dst    *[]string
		column string
		match  string
		kind   string
	}{
		{&concept.Parents, "from_code", "to_code", ggdb.EdgePartOf},
		{&concept.Children, "to_code", "from_code", ggdb.EdgePartOf},
		{&concept.LinkedParents, "from_code", "to_code", ggdb.EdgeCentromere},
		{&concept.LinkedChildren, "to_code", "from_code", ggdb.EdgeCentromere},
	}
	for _, e := range edges {
		codes, err := edgeCodes(ctx, db, releaseID, e.column, e.match, code, e.kind)
		if err != nil {
			return nil, err
		}
		*e.dst = codes
	}
	return concept, nil
}

// GetChildren returns the direct part-of children of code, ordered by
// position on the chromosome.
func GetChildren(ctx context.Context, db *sql.DB, code string) ([]*Concept, error) {
	parent, err := GetConcept(ctx, db, code)
	if err != nil {
		return nil, err
	}

	stm, err := db.PrepareContext(ctx, `
		SELECT `+conceptColumns+`
		FROM edges e
		JOIN concepts c ON c.release_id = e.release_id AND c.code = e.to_code
		WHERE e.release_id = ? AND e.from_code = ? AND e.kind = ?
		ORDER BY c.start_location, c.code`)
	if err != nil {
		return nil, err
	}
	defer stm.Close()

	rows, err := stm.QueryContext(ctx, parent.ReleaseID, code, ggdb.EdgePartOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	children := make([]*Concept, 0, len(parent.Children))
	for rows.Next() {
		q, err := scanConcept(rows)
		if err != nil {
			return nil, err
		}
		children = append(children, q.toConcept(parent.ReleaseID))
	}
	return children, rows.Err()
}

// edgeCodes selects column from edges whose match column equals code.
func edgeCodes(ctx context.Context, db *sql.DB, releaseID, column, match, code, kind string) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+column+` FROM edges WHERE release_id = ? AND `+match+` = ? AND kind = ? ORDER BY `+column,
		releaseID, code, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}
