package tikz

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Expiration policy:
//   - Paper metadata and extracted figures: never expire
//   - Citation counts: 7 days (these update over time)
//   - References: 7 days (Semantic Scholar may update)
const (
	citationTTL  = 7 * 24 * time.Hour
	referenceTTL = 7 * 24 * time.Hour
)

// Cache is a local SQLite-backed store for paper metadata, extracted
// figures, and citation data.
type Cache struct {
	root string
	db   *gorm.DB
	fts  bool
	log  *zap.Logger
}

// Open opens or creates a cache at the given root directory. log may be nil.
func Open(root string, log *zap.Logger) (*Cache, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	dbPath := filepath.Join(root, "figures.db")
	// Use the sqlite3 driver (not modernc) for FTS5 support.
	dsn := dbPath + "?_pragma=foreign_keys(1)"
	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite3",
		DSN:        dsn,
	}, &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	c := &Cache{root: root, db: db, log: log}
	if err := c.initSchema(); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return c, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Root returns the cache root directory.
func (c *Cache) Root() string {
	return c.root
}

func (c *Cache) initSchema() error {
	if err := c.db.AutoMigrate(&Paper{}, &ExtractionRun{}, &FigureRecord{},
		&CitationRecord{}, &ReferenceRecord{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// FTS5 virtual tables and triggers MUST use raw SQL - GORM doesn't
	// support FTS5. Caption search falls back to LIKE when unavailable.
	ftsSchema := `
	CREATE VIRTUAL TABLE IF NOT EXISTS figures_fts USING fts5(
		caption,
		code,
		content='figures',
		content_rowid='rowid'
	);

	CREATE TRIGGER IF NOT EXISTS figures_ai AFTER INSERT ON figures BEGIN
		INSERT INTO figures_fts(rowid, caption, code)
		VALUES (NEW.rowid, NEW.caption, NEW.code);
	END;

	CREATE TRIGGER IF NOT EXISTS figures_ad AFTER DELETE ON figures BEGIN
		INSERT INTO figures_fts(figures_fts, rowid, caption, code)
		VALUES ('delete', OLD.rowid, OLD.caption, OLD.code);
	END;
	`
	if err := c.db.Exec(ftsSchema).Error; err != nil {
		c.log.Warn("fts5 unavailable, caption search will use LIKE", zap.Error(err))
		c.fts = false
		return nil
	}
	c.fts = true
	return nil
}

// GetFigures returns the cached figures for a paper. The second return is
// false when the paper has never been extracted; an extracted paper with no
// figures returns an empty slice and true.
func (c *Cache) GetFigures(ctx context.Context, paperID string) ([]Figure, bool, error) {
	var run ExtractionRun
	err := c.db.WithContext(ctx).Where("paper_id = ?", paperID).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var records []FigureRecord
	if err := c.db.WithContext(ctx).
		Where("paper_id = ?", paperID).
		Order("idx").
		Find(&records).Error; err != nil {
		return nil, false, err
	}

	figures := make([]Figure, len(records))
	for i := range records {
		figures[i] = records[i].Figure()
	}
	return figures, true, nil
}

// PutFigures stores an extraction result, replacing any previous one.
func (c *Cache) PutFigures(ctx context.Context, paperID string, figures []Figure) error {
	now := time.Now()
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("paper_id = ?", paperID).Delete(&FigureRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("paper_id = ?", paperID).Delete(&ExtractionRun{}).Error; err != nil {
			return err
		}

		run := ExtractionRun{
			ID:          uuid.NewString(),
			PaperID:     paperID,
			FigureCount: len(figures),
			CachedAt:    now,
		}
		if err := tx.Create(&run).Error; err != nil {
			return err
		}

		for _, fig := range figures {
			rec := FigureRecord{
				PaperID:    paperID,
				Idx:        fig.Index,
				Type:       fig.Type,
				Code:       fig.Code,
				SourceFile: fig.SourceFile,
				Libraries:  strings.Join(fig.Libraries, ","),
				Caption:    fig.Caption,
				Label:      fig.Label,
				CachedAt:   now,
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetPaper returns cached paper metadata. Metadata never expires.
func (c *Cache) GetPaper(ctx context.Context, id string) (*Paper, error) {
	var p Paper
	if err := c.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// PutPaper stores paper metadata.
func (c *Cache) PutPaper(ctx context.Context, p *Paper) error {
	p.CachedAt = time.Now()
	return c.db.WithContext(ctx).Save(p).Error
}

// GetCitations returns cached citation counts, treating rows older than the
// TTL as absent.
func (c *Cache) GetCitations(ctx context.Context, paperID string) (*CitationRecord, bool, error) {
	var rec CitationRecord
	err := c.db.WithContext(ctx).
		Where("paper_id = ? AND cached_at > ?", paperID, time.Now().Add(-citationTTL)).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &rec, true, nil
}

// PutCitations stores citation counts for a paper.
func (c *Cache) PutCitations(ctx context.Context, paperID string, count, influential int) error {
	rec := CitationRecord{
		PaperID:          paperID,
		CitationCount:    count,
		InfluentialCount: influential,
		CachedAt:         time.Now(),
	}
	return c.db.WithContext(ctx).Save(&rec).Error
}

// GetReferences returns cached references, treating rows older than the TTL
// as absent.
func (c *Cache) GetReferences(ctx context.Context, paperID string) ([]ReferenceRecord, bool, error) {
	var recs []ReferenceRecord
	err := c.db.WithContext(ctx).
		Where("source_id = ? AND cached_at > ?", paperID, time.Now().Add(-referenceTTL)).
		Find(&recs).Error
	if err != nil {
		return nil, false, err
	}
	return recs, len(recs) > 0, nil
}

// PutReferences stores references for a paper, replacing any previous set.
func (c *Cache) PutReferences(ctx context.Context, paperID string, refs []ReferenceRecord) error {
	now := time.Now()
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("source_id = ?", paperID).Delete(&ReferenceRecord{}).Error; err != nil {
			return err
		}
		for i := range refs {
			refs[i].ID = 0
			refs[i].SourceID = paperID
			refs[i].CachedAt = now
			if err := tx.Create(&refs[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ListExtractions returns recent extraction runs, newest first.
func (c *Cache) ListExtractions(ctx context.Context, limit int) ([]ExtractionRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []ExtractionRun
	err := c.db.WithContext(ctx).
		Order("cached_at DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}

// ClearExpired removes citation and reference rows past their TTL.
func (c *Cache) ClearExpired(ctx context.Context) error {
	if err := c.db.WithContext(ctx).
		Where("cached_at < ?", time.Now().Add(-citationTTL)).
		Delete(&CitationRecord{}).Error; err != nil {
		return err
	}
	return c.db.WithContext(ctx).
		Where("cached_at < ?", time.Now().Add(-referenceTTL)).
		Delete(&ReferenceRecord{}).Error
}

// Clear removes all cached data.
func (c *Cache) Clear(ctx context.Context) error {
	for _, model := range []any{&FigureRecord{}, &ExtractionRun{}, &Paper{},
		&CitationRecord{}, &ReferenceRecord{}} {
		if err := c.db.WithContext(ctx).Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

// CacheStats contains statistics about the cache.
type CacheStats struct {
	Papers     int64
	Extracted  int64
	Figures    int64
	Citations  int64
	References int64
	DBPath     string
	DBBytes    int64
}

// Stats returns cache statistics.
func (c *Cache) Stats(ctx context.Context) (*CacheStats, error) {
	stats := &CacheStats{DBPath: filepath.Join(c.root, "figures.db")}

	if err := c.db.WithContext(ctx).Model(&Paper{}).Count(&stats.Papers).Error; err != nil {
		return nil, err
	}
	if err := c.db.WithContext(ctx).Model(&ExtractionRun{}).Count(&stats.Extracted).Error; err != nil {
		return nil, err
	}
	if err := c.db.WithContext(ctx).Model(&FigureRecord{}).Count(&stats.Figures).Error; err != nil {
		return nil, err
	}
	if err := c.db.WithContext(ctx).Model(&CitationRecord{}).Count(&stats.Citations).Error; err != nil {
		return nil, err
	}
	if err := c.db.WithContext(ctx).Model(&ReferenceRecord{}).Count(&stats.References).Error; err != nil {
		return nil, err
	}

	if info, err := os.Stat(stats.DBPath); err == nil {
		stats.DBBytes = info.Size()
	}
	return stats, nil
}
