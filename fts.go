package tikz

import (
	"context"
	"strings"

	"github.com/sajari/fuzzy"
)

// SearchFigures searches cached figures by caption and code text. Uses the
// FTS5 index when available and falls back to LIKE queries otherwise.
// Raw SQL: GORM cannot express FTS5 MATCH queries.
func (c *Cache) SearchFigures(ctx context.Context, query string, limit int) ([]Figure, error) {
	if limit <= 0 {
		limit = 20
	}

	sqlDB, err := c.db.DB()
	if err != nil {
		return nil, err
	}

	var sql string
	var args []any
	if c.fts {
		sql = `
			SELECT f.paper_id, f.idx, f.type, f.code, f.source_file,
			       f.libraries, f.caption, f.label
			FROM figures f
			JOIN figures_fts fts ON f.rowid = fts.rowid
			WHERE figures_fts MATCH ?
			ORDER BY rank LIMIT ?
		`
		args = []any{query, limit}
	} else {
		sql = `
			SELECT paper_id, idx, type, code, source_file,
			       libraries, caption, label
			FROM figures
			WHERE caption LIKE '%' || ? || '%' OR code LIKE '%' || ? || '%'
			ORDER BY paper_id, idx LIMIT ?
		`
		args = []any{query, query, limit}
	}

	rows, err := sqlDB.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var figures []Figure
	for rows.Next() {
		var rec FigureRecord
		if err := rows.Scan(
			&rec.PaperID, &rec.Idx, &rec.Type, &rec.Code,
			&rec.SourceFile, &rec.Libraries, &rec.Caption, &rec.Label,
		); err != nil {
			return nil, err
		}
		figures = append(figures, rec.Figure())
	}
	return figures, rows.Err()
}

// RebuildFTSIndex rebuilds the FTS5 index from the figures table. Use this
// after migrating an existing database.
func (c *Cache) RebuildFTSIndex(ctx context.Context) error {
	if !c.fts {
		return nil
	}
	if err := c.db.WithContext(ctx).Exec("DELETE FROM figures_fts").Error; err != nil {
		return err
	}
	return c.db.WithContext(ctx).Exec(`
		INSERT INTO figures_fts(rowid, caption, code)
		SELECT rowid, caption, code FROM figures
	`).Error
}

// SuggestTerms proposes spelling corrections for a query that returned no
// hits, trained on the caption vocabulary of cached figures.
func (c *Cache) SuggestTerms(ctx context.Context, query string) ([]string, error) {
	var captions []string
	if err := c.db.WithContext(ctx).
		Model(&FigureRecord{}).
		Where("caption != ''").
		Pluck("caption", &captions).Error; err != nil {
		return nil, err
	}
	if len(captions) == 0 {
		return nil, nil
	}

	model := fuzzy.NewModel()
	model.SetThreshold(1)
	model.SetDepth(2)
	var words []string
	for _, caption := range captions {
		for _, w := range strings.Fields(strings.ToLower(caption)) {
			w = strings.Trim(w, ".,;:()[]{}")
			if len(w) > 2 {
				words = append(words, w)
			}
		}
	}
	model.Train(words)

	var suggestions []string
	seen := make(map[string]bool)
	for _, term := range strings.Fields(strings.ToLower(query)) {
		for _, s := range model.Suggestions(term, false) {
			if !seen[s] {
				seen[s] = true
				suggestions = append(suggestions, s)
			}
		}
	}
	return suggestions, nil
}
