package tikz

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func sampleFigures() []Figure {
	libs := []string{"arrows", "calc"}
	return []Figure{
		{
			PaperID:    "2301.00001",
			Index:      0,
			Type:       "tikzpicture",
			Code:       `\begin{tikzpicture}\draw (0,0);\end{tikzpicture}`,
			SourceFile: "main.tex",
			Libraries:  libs,
			Caption:    "First figure",
			Label:      "fig:one",
		},
		{
			PaperID:    "2301.00001",
			Index:      1,
			Type:       "pgfplot",
			Code:       `\begin{axis}\addplot {x};\end{axis}`,
			SourceFile: "main.tex",
			Libraries:  libs,
		},
	}
}

func TestParseFormat(t *testing.T) {
	for name, want := range map[string]Format{
		"tikz": FormatTikZ, "json": FormatJSON, "latex": FormatLaTeX, "brief": FormatBrief,
	} {
		got, err := ParseFormat(name)
		if err != nil {
			t.Errorf("ParseFormat(%q): %v", name, err)
		}
		if got != want {
			t.Errorf("ParseFormat(%q) = %v, want %v", name, got, want)
		}
		if got.String() != name {
			t.Errorf("%v.String() = %q, want %q", got, got.String(), name)
		}
	}

	if _, err := ParseFormat("yaml"); err == nil {
		t.Error("ParseFormat accepted unknown name")
	}
}

func TestFormatFiguresTikZ(t *testing.T) {
	out, err := FormatFigures(sampleFigures(), FormatTikZ)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "% Figure 0: tikzpicture (from main.tex)") {
		t.Errorf("missing figure header:\n%s", out)
	}
	if !strings.Contains(out, "% Caption: First figure") {
		t.Errorf("missing caption comment:\n%s", out)
	}
	if !strings.Contains(out, "% Label: fig:one") {
		t.Errorf("missing label comment:\n%s", out)
	}
	if !strings.Contains(out, `\begin{axis}\addplot {x};\end{axis}`) {
		t.Errorf("missing second figure code:\n%s", out)
	}
}

func TestFormatFiguresJSON(t *testing.T) {
	out, err := FormatFigures(sampleFigures(), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("got %d entries, want 2", len(decoded))
	}
	for _, key := range []string{"id_arxiv", "figure_index", "tikz_type", "tikz_code", "source_file", "libraries_used"} {
		if _, ok := decoded[0][key]; !ok {
			t.Errorf("missing field %q", key)
		}
	}
	// Caption and label are omitted when empty.
	if _, ok := decoded[1]["caption"]; ok {
		t.Error("empty caption serialized")
	}
}

func TestFormatFiguresJSONEmpty(t *testing.T) {
	out, err := FormatFigures(nil, FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("got %q, want empty array", out)
	}
}

func TestFormatFiguresLaTeX(t *testing.T) {
	out, err := FormatFigures(sampleFigures(), FormatLaTeX)
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		`\documentclass{article}`,
		`\usepackage{tikz}`,
		`\usepackage{pgfplots}`,
		`\pgfplotsset{compat=1.18}`,
		`\usetikzlibrary{arrows, calc}`,
		`\begin{document}`,
		`\caption{First figure}`,
		`\label{fig:one}`,
		`\end{document}`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in latex output", want)
		}
	}

	// No tikzcd or circuitikz figures, so no packages for them.
	if strings.Contains(out, "tikz-cd") || strings.Contains(out, "circuitikz") {
		t.Errorf("unused packages included:\n%s", out)
	}
	if !strings.Contains(out, time.Now().Format("2006-01-02")) {
		t.Error("extraction date missing")
	}
}

func TestFormatFiguresBrief(t *testing.T) {
	out, err := FormatFigures(sampleFigures(), FormatBrief)
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"TikZ figures in 2301.00001: 2 found",
		"pgfplot: 1",
		"tikzpicture: 1",
		"Libraries: arrows, calc",
		"Source files: main.tex",
		"[0] tikzpicture - First figure",
		"[1] pgfplot",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in brief output:\n%s", want, out)
		}
	}
}

func TestFormatFiguresBriefTruncatesOnRuneBoundary(t *testing.T) {
	// 59 ASCII characters followed by multibyte runes: a byte-indexed cut
	// at 60 would split the first é and emit invalid UTF-8.
	figures := sampleFigures()[:1]
	figures[0].Caption = strings.Repeat("x", 59) + "ééééé"

	out, err := FormatFigures(figures, FormatBrief)
	if err != nil {
		t.Fatal(err)
	}
	if !utf8.ValidString(out) {
		t.Fatal("brief output contains invalid UTF-8")
	}
	want := strings.Repeat("x", 59) + "é..."
	if !strings.Contains(out, want) {
		t.Errorf("truncated caption not found in:\n%s", out)
	}
}

func TestFormatPapersMarkdownTruncatesOnRuneBoundary(t *testing.T) {
	papers := []*Paper{{
		ID:    "2301.00001",
		Title: strings.Repeat("x", 59) + "ééééé",
	}}

	out, err := FormatPapers(papers, PaperMarkdown)
	if err != nil {
		t.Fatal(err)
	}
	if !utf8.ValidString(out) {
		t.Fatal("markdown output contains invalid UTF-8")
	}
	if !strings.Contains(out, strings.Repeat("x", 59)+"é...") {
		t.Errorf("truncated title not found in:\n%s", out)
	}
}

func TestFormatFiguresEmpty(t *testing.T) {
	for _, f := range []Format{FormatTikZ, FormatLaTeX} {
		out, err := FormatFigures(nil, f)
		if err != nil {
			t.Fatal(err)
		}
		if out != "% No TikZ figures found" {
			t.Errorf("%v: got %q", f, out)
		}
	}

	out, err := FormatFigures(nil, FormatBrief)
	if err != nil {
		t.Fatal(err)
	}
	if out != "No TikZ figures found." {
		t.Errorf("brief: got %q", out)
	}
}

func TestFormatPapers(t *testing.T) {
	papers := []*Paper{
		{
			ID:      "2301.00001",
			Title:   "On Things",
			Authors: "Ada Lovelace and Alan Turing",
			Created: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
		},
	}

	t.Run("brief", func(t *testing.T) {
		out, err := FormatPapers(papers, PaperBrief)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, "[2301.00001] On Things") {
			t.Errorf("output:\n%s", out)
		}
	})

	t.Run("csv", func(t *testing.T) {
		out, err := FormatPapers(papers, PaperCSV)
		if err != nil {
			t.Fatal(err)
		}
		lines := strings.Split(strings.TrimSpace(out), "\n")
		if len(lines) != 2 {
			t.Fatalf("got %d lines, want header + row", len(lines))
		}
		if !strings.HasPrefix(lines[0], "id_arxiv,") {
			t.Errorf("header = %q", lines[0])
		}
		if !strings.Contains(lines[1], "2023-01-02") {
			t.Errorf("row = %q", lines[1])
		}
	})

	t.Run("markdown", func(t *testing.T) {
		out, err := FormatPapers(papers, PaperMarkdown)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, "| 1 | [On Things](https://arxiv.org/abs/2301.00001)") {
			t.Errorf("output:\n%s", out)
		}
	})

	t.Run("json", func(t *testing.T) {
		out, err := FormatPapers(papers, PaperJSON)
		if err != nil {
			t.Fatal(err)
		}
		var decoded []map[string]any
		if err := json.Unmarshal([]byte(out), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
	})
}
