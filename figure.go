package tikz

// Environments lists the TikZ environment names recognized by the
// extractor, in the order they are scanned per file. The order is part of
// the figure-index contract: downstream consumers display figures in index
// order, and indices are assigned file by file, environment by environment.
var Environments = []string{"tikzpicture", "tikzcd", "circuitikz", "axis"}

// envTypes maps environment names to the human-readable type tag reported
// on extracted figures.
var envTypes = map[string]string{
	"tikzpicture": "tikzpicture",
	"tikzcd":      "tikzcd",
	"circuitikz":  "circuitikz",
	"axis":        "pgfplot",
}

// TypeForEnvironment returns the display type for an environment name.
// Unrecognized names map to themselves.
func TypeForEnvironment(env string) string {
	if t, ok := envTypes[env]; ok {
		return t
	}
	return env
}

// Figure is a single TikZ figure extracted from a paper's LaTeX source.
// Figures are value objects: created once during extraction, never mutated.
type Figure struct {
	// PaperID is the arXiv identifier the figure came from (e.g., "2301.00001").
	// It is assigned by the caller and not validated here.
	PaperID string `json:"id_arxiv"`

	// Index is unique and strictly increasing within one extraction run,
	// starting at 0, assigned in (file, environment, occurrence) order.
	Index int `json:"figure_index"`

	// Type is the human-readable figure type (e.g., "tikzpicture", "pgfplot").
	Type string `json:"tikz_type"`

	// Code is the verbatim source span from \begin{env} through \end{env},
	// byte for byte.
	Code string `json:"tikz_code"`

	// SourceFile is the relative path of the .tex file within the archive.
	SourceFile string `json:"source_file"`

	// Libraries is the archive-wide sorted set of \usetikzlibrary names.
	// Every figure from the same run carries the same value.
	Libraries []string `json:"libraries_used"`

	// Caption from the enclosing figure environment, if one was found.
	Caption string `json:"caption,omitempty"`

	// Label from the enclosing figure environment, if one was found.
	Label string `json:"label,omitempty"`
}

// SourceFile is one text file recovered from an e-print archive.
type SourceFile struct {
	// Path is the file's relative path within the archive.
	Path string

	// Text is the decoded file content.
	Text string
}
