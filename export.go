package tikz

import (
	"fmt"
	"strings"
)

// bibtexFieldOrder fixes the field sequence so exports are stable across runs.
var bibtexFieldOrder = []string{
	"title", "author", "year", "month", "journal",
	"eprint", "archivePrefix", "primaryClass", "doi", "url", "note",
}

// ToBibTeX renders the paper as a BibTeX entry. Papers with a journal
// reference export as @article, the rest as @misc.
func (p *Paper) ToBibTeX() string {
	entryType := "misc"
	if p.JournalRef != "" {
		entryType = "article"
	}

	fields := map[string]string{
		"eprint":        p.ID,
		"archivePrefix": "arXiv",
		"primaryClass":  p.PrimaryCategory(),
		"url":           p.AbstractURL(),
		"title":         p.Title,
		"author":        formatAuthorsBibTeX(p.Authors),
		"doi":           p.DOI,
		"journal":       p.JournalRef,
		"note":          p.Comments,
	}
	if !p.Created.IsZero() {
		fields["year"] = fmt.Sprintf("%d", p.Created.Year())
		fields["month"] = strings.ToLower(p.Created.Format("Jan"))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "@%s{%s,\n", entryType, p.BibTeXKey())
	for _, field := range bibtexFieldOrder {
		if v := fields[field]; v != "" {
			fmt.Fprintf(&sb, "  %s = {%s},\n", field, escapeBibTeX(v))
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}

// BibTeXKey derives a citation key from the first author's surname, the
// submission year, and the first title word. Falls back to the arXiv ID
// with punctuation stripped.
func (p *Paper) BibTeXKey() string {
	var key string

	if p.Authors != "" {
		first := p.Authors
		if i := strings.IndexAny(first, ",;"); i >= 0 {
			first = first[:i]
		}
		if i := strings.Index(first, " and "); i >= 0 {
			first = first[:i]
		}
		words := strings.Fields(first)
		if len(words) > 0 {
			surname := words[len(words)-1]
			key = strings.ToLower(strings.Trim(surname, ".,"))
		}
	}

	if key != "" && !p.Created.IsZero() {
		key += fmt.Sprintf("%d", p.Created.Year())
	}

	if key != "" && p.Title != "" {
		words := strings.Fields(p.Title)
		if len(words) > 0 {
			word := strings.ToLower(strings.Trim(words[0], ".,!?;:"))
			if len(word) > 5 {
				word = word[:5]
			}
			key += word
		}
	}

	if key == "" {
		key = strings.NewReplacer(".", "", "/", "").Replace(p.ID)
	}
	return key
}

// formatAuthorsBibTeX converts an arXiv author string to BibTeX's
// "Last, First and Last, First" form.
func formatAuthorsBibTeX(authors string) string {
	if authors == "" {
		return ""
	}

	parts := strings.Split(authors, " and ")
	if len(parts) == 1 {
		parts = strings.Split(authors, ",")
	}

	var out []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, ",") {
			out = append(out, part)
			continue
		}
		words := strings.Fields(part)
		if len(words) >= 2 {
			last := words[len(words)-1]
			out = append(out, last+", "+strings.Join(words[:len(words)-1], " "))
		} else {
			out = append(out, part)
		}
	}
	return strings.Join(out, " and ")
}

// escapeBibTeX escapes TeX special characters. Backslash goes first so the
// escapes introduced for the other characters survive.
func escapeBibTeX(s string) string {
	return strings.NewReplacer(
		"\\", "\\textbackslash{}",
		"{", "\\{",
		"}", "\\}",
		"&", "\\&",
		"%", "\\%",
		"$", "\\$",
		"#", "\\#",
		"_", "\\_",
		"^", "\\textasciicircum{}",
		"~", "\\textasciitilde{}",
	).Replace(s)
}

// ToRIS renders the paper in RIS format for reference managers.
func (p *Paper) ToRIS() string {
	var sb strings.Builder
	sb.WriteString("TY  - JOUR\n")

	if p.Title != "" {
		fmt.Fprintf(&sb, "TI  - %s\n", p.Title)
	}
	for _, author := range strings.Split(p.Authors, " and ") {
		if author = strings.TrimSpace(author); author != "" {
			fmt.Fprintf(&sb, "AU  - %s\n", author)
		}
	}
	if !p.Created.IsZero() {
		fmt.Fprintf(&sb, "PY  - %d\n", p.Created.Year())
		fmt.Fprintf(&sb, "DA  - %s\n", p.Created.Format("2006/01/02"))
	}
	if p.Abstract != "" {
		fmt.Fprintf(&sb, "AB  - %s\n", p.Abstract)
	}
	if p.DOI != "" {
		fmt.Fprintf(&sb, "DO  - %s\n", p.DOI)
	}
	fmt.Fprintf(&sb, "UR  - %s\n", p.AbstractURL())
	fmt.Fprintf(&sb, "M3  - arXiv:%s\n", p.ID)
	if p.JournalRef != "" {
		fmt.Fprintf(&sb, "JO  - %s\n", p.JournalRef)
	}
	if cat := p.PrimaryCategory(); cat != "" {
		fmt.Fprintf(&sb, "KW  - %s\n", cat)
	}

	sb.WriteString("ER  - \n")
	return sb.String()
}
