package tikz

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Format selects an output representation for extracted figures. The set is
// closed: dispatch is over these variants, not over format-name strings.
type Format int

const (
	// FormatTikZ renders pure TikZ code with comment separators.
	FormatTikZ Format = iota

	// FormatJSON renders machine-readable structured output.
	FormatJSON

	// FormatLaTeX renders a complete compilable standalone document.
	FormatLaTeX

	// FormatBrief renders a short text summary.
	FormatBrief
)

// ParseFormat maps a format name to its variant.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "tikz":
		return FormatTikZ, nil
	case "json":
		return FormatJSON, nil
	case "latex":
		return FormatLaTeX, nil
	case "brief":
		return FormatBrief, nil
	}
	return 0, fmt.Errorf("unknown format %q (want tikz, json, latex, or brief)", name)
}

func (f Format) String() string {
	switch f {
	case FormatTikZ:
		return "tikz"
	case FormatJSON:
		return "json"
	case FormatLaTeX:
		return "latex"
	case FormatBrief:
		return "brief"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// FormatFigures renders figures in the given format.
func FormatFigures(figures []Figure, f Format) (string, error) {
	switch f {
	case FormatTikZ:
		return formatTikZ(figures), nil
	case FormatJSON:
		return formatJSON(figures)
	case FormatLaTeX:
		return formatLaTeX(figures), nil
	case FormatBrief:
		return formatBrief(figures), nil
	}
	return "", fmt.Errorf("unknown format %v", f)
}

// truncate shortens s to at most n runes. Counting runes, not bytes, keeps
// multibyte characters intact at the cut point.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func formatTikZ(figures []Figure) string {
	if len(figures) == 0 {
		return "% No TikZ figures found"
	}

	parts := make([]string, 0, len(figures))
	for _, fig := range figures {
		var sb strings.Builder
		fmt.Fprintf(&sb, "%% Figure %d: %s (from %s)\n", fig.Index, fig.Type, fig.SourceFile)
		if fig.Caption != "" {
			fmt.Fprintf(&sb, "%% Caption: %s\n", fig.Caption)
		}
		if fig.Label != "" {
			fmt.Fprintf(&sb, "%% Label: %s\n", fig.Label)
		}
		sb.WriteString(fig.Code)
		parts = append(parts, sb.String())
	}
	return strings.Join(parts, "\n\n")
}

func formatJSON(figures []Figure) (string, error) {
	if figures == nil {
		figures = []Figure{}
	}
	data, err := json.MarshalIndent(figures, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func formatLaTeX(figures []Figure) string {
	if len(figures) == 0 {
		return "% No TikZ figures found"
	}

	types := make(map[string]bool)
	libs := make(map[string]bool)
	for _, fig := range figures {
		types[fig.Type] = true
		for _, lib := range fig.Libraries {
			libs[lib] = true
		}
	}

	packages := []string{`\usepackage{tikz}`}
	if types["tikzcd"] {
		packages = append(packages, `\usepackage{tikz-cd}`)
	}
	if types["circuitikz"] {
		packages = append(packages, `\usepackage{circuitikz}`)
	}
	if types["pgfplot"] {
		packages = append(packages, `\usepackage{pgfplots}`, `\pgfplotsset{compat=1.18}`)
	}
	if len(libs) > 0 {
		sorted := make([]string, 0, len(libs))
		for lib := range libs {
			sorted = append(sorted, lib)
		}
		sort.Strings(sorted)
		packages = append(packages, fmt.Sprintf(`\usetikzlibrary{%s}`, strings.Join(sorted, ", ")))
	}

	var body strings.Builder
	for i, fig := range figures {
		if i > 0 {
			body.WriteString("\n\n")
		}
		fmt.Fprintf(&body, "%% Figure %d: %s\n", fig.Index, fig.Type)
		if fig.Caption != "" {
			fmt.Fprintf(&body, "%% Caption: %s\n", fig.Caption)
		}
		body.WriteString("\\begin{figure}[htbp]\n\\centering\n")
		body.WriteString(fig.Code)
		if fig.Caption != "" {
			fmt.Fprintf(&body, "\n\\caption{%s}", fig.Caption)
		}
		if fig.Label != "" {
			fmt.Fprintf(&body, "\n\\label{%s}", fig.Label)
		}
		body.WriteString("\n\\end{figure}")
	}

	return fmt.Sprintf(`\documentclass{article}
%s

\title{TikZ Figures from arXiv:%s}
\date{Extracted %s}

\begin{document}
\maketitle

%s

\end{document}`,
		strings.Join(packages, "\n"),
		figures[0].PaperID,
		time.Now().Format("2006-01-02"),
		body.String())
}

func formatBrief(figures []Figure) string {
	if len(figures) == 0 {
		return "No TikZ figures found."
	}

	typeCounts := make(map[string]int)
	libs := make(map[string]bool)
	fileSet := make(map[string]bool)
	for _, fig := range figures {
		typeCounts[fig.Type]++
		for _, lib := range fig.Libraries {
			libs[lib] = true
		}
		fileSet[fig.SourceFile] = true
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("TikZ figures in %s: %d found", figures[0].PaperID, len(figures)), "")

	lines = append(lines, "Types:")
	typeNames := make([]string, 0, len(typeCounts))
	for t := range typeCounts {
		typeNames = append(typeNames, t)
	}
	sort.Strings(typeNames)
	for _, t := range typeNames {
		lines = append(lines, fmt.Sprintf("  %s: %d", t, typeCounts[t]))
	}
	lines = append(lines, "")

	if len(libs) > 0 {
		sorted := make([]string, 0, len(libs))
		for lib := range libs {
			sorted = append(sorted, lib)
		}
		sort.Strings(sorted)
		lines = append(lines, "Libraries: "+strings.Join(sorted, ", "), "")
	}

	files := make([]string, 0, len(fileSet))
	for f := range fileSet {
		files = append(files, f)
	}
	sort.Strings(files)
	lines = append(lines, "Source files: "+strings.Join(files, ", "), "")

	for _, fig := range figures {
		caption := truncate(fig.Caption, 60)
		if caption != "" {
			caption = " - " + caption
		}
		lines = append(lines, fmt.Sprintf("  [%d] %s%s", fig.Index, fig.Type, caption))
	}

	return strings.Join(lines, "\n")
}

// PaperFormat selects an output representation for paper search results.
type PaperFormat int

const (
	PaperBrief PaperFormat = iota
	PaperJSON
	PaperCSV
	PaperMarkdown
)

// ParsePaperFormat maps a format name to its variant.
func ParsePaperFormat(name string) (PaperFormat, error) {
	switch name {
	case "brief":
		return PaperBrief, nil
	case "json":
		return PaperJSON, nil
	case "csv":
		return PaperCSV, nil
	case "markdown":
		return PaperMarkdown, nil
	}
	return 0, fmt.Errorf("unknown format %q (want brief, json, csv, or markdown)", name)
}

// FormatPapers renders paper metadata in the given format.
func FormatPapers(papers []*Paper, f PaperFormat) (string, error) {
	switch f {
	case PaperBrief:
		var lines []string
		for _, p := range papers {
			lines = append(lines,
				fmt.Sprintf("[%s] %s", p.ID, p.Title),
				"  Authors: "+p.Authors,
				"  URL: "+p.AbstractURL(),
				"")
		}
		return strings.Join(lines, "\n"), nil

	case PaperJSON:
		data, err := json.MarshalIndent(papers, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil

	case PaperCSV:
		var sb strings.Builder
		w := csv.NewWriter(&sb)
		w.Write([]string{"id_arxiv", "title", "authors", "date_published", "categories", "url_abstract"})
		for _, p := range papers {
			date := ""
			if !p.Created.IsZero() {
				date = p.Created.Format("2006-01-02")
			}
			w.Write([]string{p.ID, p.Title, p.Authors, date, p.Categories, p.AbstractURL()})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return "", err
		}
		return sb.String(), nil

	case PaperMarkdown:
		var lines []string
		lines = append(lines,
			"| # | Title | Authors | Date |",
			"|---|-------|---------|------|")
		for i, p := range papers {
			title := truncate(p.Title, 60)
			date := ""
			if !p.Created.IsZero() {
				date = p.Created.Format("2006-01-02")
			}
			lines = append(lines, fmt.Sprintf("| %d | [%s](%s) | %s | %s |",
				i+1, title, p.AbstractURL(), p.Authors, date))
		}
		return strings.Join(lines, "\n"), nil
	}
	return "", fmt.Errorf("unknown format %v", f)
}
