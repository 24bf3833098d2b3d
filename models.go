package tikz

import (
	"strings"
	"time"
)

// Paper represents cached arXiv paper metadata. Metadata never expires:
// titles, authors, and abstracts do not change.
type Paper struct {
	// ID is the arXiv identifier (e.g., "2301.00001" or "hep-th/9901001")
	ID string `gorm:"primaryKey"`

	// Created is when the paper was first submitted
	Created time.Time `gorm:"index"`

	// Updated is when the paper was last updated
	Updated time.Time

	// Title of the paper
	Title string

	// Abstract of the paper
	Abstract string

	// Authors as a single string (arXiv format)
	Authors string

	// Categories is a space-separated list of arXiv categories
	Categories string `gorm:"index"`

	// Comments from the submitter (e.g., "10 pages, 3 figures")
	Comments string

	// JournalRef is the journal reference if published
	JournalRef string

	// DOI is the Digital Object Identifier if available
	DOI string

	// CachedAt is when the metadata was stored
	CachedAt time.Time `gorm:"column:cached_at"`
}

func (Paper) TableName() string {
	return "papers"
}

// PrimaryCategory returns the primary (first) category.
func (p *Paper) PrimaryCategory() string {
	cats := strings.Fields(p.Categories)
	if len(cats) == 0 {
		return ""
	}
	return cats[0]
}

// AbstractURL returns the arXiv abstract page URL.
func (p *Paper) AbstractURL() string {
	return AbstractURL(p.ID)
}

// ExtractionRun records one completed figure extraction for a paper. Its
// presence distinguishes "extracted, zero figures" from "never extracted".
type ExtractionRun struct {
	ID          string    `gorm:"primaryKey"`
	PaperID     string    `gorm:"uniqueIndex;column:paper_id"`
	FigureCount int       `gorm:"column:figure_count"`
	CachedAt    time.Time `gorm:"column:cached_at"`
}

func (ExtractionRun) TableName() string {
	return "extraction_runs"
}

// FigureRecord is the stored form of a Figure.
type FigureRecord struct {
	PaperID    string `gorm:"primaryKey;column:paper_id"`
	Idx        int    `gorm:"primaryKey;column:idx"`
	Type       string
	Code       string `gorm:"type:text"`
	SourceFile string `gorm:"column:source_file"`
	// Libraries is the comma-joined archive-wide library set.
	Libraries string
	Caption   string
	Label     string
	CachedAt  time.Time `gorm:"column:cached_at"`
}

func (FigureRecord) TableName() string {
	return "figures"
}

// Figure converts the stored record back to a Figure value.
func (r *FigureRecord) Figure() Figure {
	var libs []string
	if r.Libraries != "" {
		libs = strings.Split(r.Libraries, ",")
	}
	return Figure{
		PaperID:    r.PaperID,
		Index:      r.Idx,
		Type:       r.Type,
		Code:       r.Code,
		SourceFile: r.SourceFile,
		Libraries:  libs,
		Caption:    r.Caption,
		Label:      r.Label,
	}
}

// CitationRecord caches citation counts from Semantic Scholar. Counts drift
// over time, so rows expire after citationTTL.
type CitationRecord struct {
	PaperID          string    `gorm:"primaryKey;column:paper_id"`
	CitationCount    int       `gorm:"column:citation_count"`
	InfluentialCount int       `gorm:"column:influential_count"`
	CachedAt         time.Time `gorm:"index;column:cached_at"`
}

func (CitationRecord) TableName() string {
	return "citations"
}

// ReferenceRecord caches one reference entry of a source paper.
type ReferenceRecord struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	SourceID   string    `gorm:"index;column:source_id"`
	RefPaperID string    `gorm:"column:ref_paper_id"`
	RefTitle   string    `gorm:"column:ref_title"`
	RefAuthors string    `gorm:"column:ref_authors"`
	RefYear    int       `gorm:"column:ref_year"`
	CachedAt   time.Time `gorm:"index;column:cached_at"`
}

func (ReferenceRecord) TableName() string {
	return "refs"
}
