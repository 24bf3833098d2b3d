package tikz

import (
	"regexp"
	"strings"
)

// arXiv ID patterns:
// - New format: YYMM.NNNNN (e.g., 2301.00001, 2301.12345v2)
// - Old format: archive/YYMMNNN (e.g., hep-th/9901001)
var paperIDPatterns = []*regexp.Regexp{
	// arxiv.org/abs/YYMM.NNNNN
	regexp.MustCompile(`(?i)arxiv\.org/abs/(\d{4}\.\d{4,5}(?:v\d+)?)`),
	// arxiv.org/pdf/YYMM.NNNNN
	regexp.MustCompile(`(?i)arxiv\.org/pdf/(\d{4}\.\d{4,5}(?:v\d+)?)`),
	// arXiv:YYMM.NNNNN
	regexp.MustCompile(`(?i)arxiv[:\s]+(\d{4}\.\d{4,5}(?:v\d+)?)`),
	// Bare new-format ID
	regexp.MustCompile(`^(\d{4}\.\d{4,5}(?:v\d+)?)$`),
	// arxiv.org/abs/hep-th/9901001
	regexp.MustCompile(`(?i)arxiv\.org/abs/([a-z-]+(?:\.[A-Z]{2})?/\d{7}(?:v\d+)?)`),
	// Bare old-format ID
	regexp.MustCompile(`^([a-z-]+(?:\.[A-Z]{2})?/\d{7}(?:v\d+)?)$`),
}

// ExtractPaperID extracts an arXiv paper ID from a URL or returns the ID
// itself if already in ID form, with any version suffix stripped. Returns
// "" when nothing recognizable is found.
func ExtractPaperID(urlOrID string) string {
	s := strings.TrimSpace(urlOrID)
	for _, pat := range paperIDPatterns {
		if m := pat.FindStringSubmatch(s); m != nil {
			return normalizePaperID(m[1])
		}
	}
	return ""
}

// normalizePaperID strips version suffixes (e.g., "2301.00001v2" -> "2301.00001").
func normalizePaperID(id string) string {
	idx := strings.LastIndex(id, "v")
	if idx <= 0 || idx == len(id)-1 {
		return id
	}
	for _, c := range id[idx+1:] {
		if c < '0' || c > '9' {
			return id
		}
	}
	return id[:idx]
}

// AbstractURL returns the arXiv abstract page URL for a paper ID.
func AbstractURL(id string) string {
	return "https://arxiv.org/abs/" + id
}

// PDFURL returns the arXiv PDF download URL for a paper ID.
func PDFURL(id string) string {
	return "https://arxiv.org/pdf/" + id + ".pdf"
}

// SourceURL returns the arXiv e-print source download URL for a paper ID.
func SourceURL(id string) string {
	return "https://arxiv.org/e-print/" + id
}
