package tikz

import (
	"regexp"
	"strings"
)

// captionLookback bounds how far before a TikZ environment we search for an
// enclosing \begin{figure}.
const captionLookback = 500

var labelPattern = regexp.MustCompile(`\\label\{([^}]+)\}`)

// Block is one balanced environment occurrence within a file's text.
type Block struct {
	// Start is the byte offset of the opening \begin marker.
	Start int

	// Code is the verbatim span from \begin{env} through \end{env}.
	Code string
}

// ExtractEnvironments finds every top-level balanced occurrence of the given
// environment in text, left to right. Occurrences nested inside a same-type
// occurrence are part of the outer span and are not reported separately.
// Unterminated occurrences are skipped without affecting later matches.
func ExtractEnvironments(text, env string) []Block {
	begin := `\begin{` + env + `}`

	var blocks []Block
	pos := 0
	for {
		start := strings.Index(text[pos:], begin)
		if start < 0 {
			break
		}
		start += pos

		code, ok := extractBalanced(text, start, env)
		if !ok {
			// Unterminated: abandon this occurrence, keep scanning.
			pos = start + len(begin)
			continue
		}

		blocks = append(blocks, Block{Start: start, Code: code})
		pos = start + len(code)
	}
	return blocks
}

// extractBalanced returns the balanced \begin{env}...\end{env} span starting
// at start, using a depth counter so same-type nesting closes correctly.
// Reports false when no matching \end exists.
func extractBalanced(text string, start int, env string) (string, bool) {
	begin := `\begin{` + env + `}`
	end := `\end{` + env + `}`

	depth := 1
	pos := start + len(begin)
	for {
		nextBegin := strings.Index(text[pos:], begin)
		nextEnd := strings.Index(text[pos:], end)
		if nextEnd < 0 {
			return "", false
		}

		if nextBegin >= 0 && nextBegin < nextEnd {
			depth++
			pos += nextBegin + len(begin)
			continue
		}

		depth--
		pos += nextEnd + len(end)
		if depth == 0 {
			return text[start:pos], true
		}
	}
}

// NestedInTikzPicture reports whether the environment starting at offset
// lies inside an open \begin{tikzpicture}. It looks backward for the nearest
// tikzpicture begin/end markers: inside iff the last begin comes after the
// last end. A heuristic, not a full parse; pathological interleavings of
// non-nested environments can misclassify.
func NestedInTikzPicture(text string, offset int) bool {
	before := text[:offset]
	lastBegin := strings.LastIndex(before, `\begin{tikzpicture}`)
	lastEnd := strings.LastIndex(before, `\end{tikzpicture}`)
	return lastBegin >= 0 && lastBegin > lastEnd
}

// figureSpan returns the enclosing \begin{figure}...\end{figure} span for an
// environment starting at blockStart, or "" when none is found within the
// lookback window.
func figureSpan(text string, blockStart int) string {
	searchStart := blockStart - captionLookback
	if searchStart < 0 {
		searchStart = 0
	}

	figBegin := strings.LastIndex(text[searchStart:blockStart], `\begin{figure}`)
	if figBegin < 0 {
		return ""
	}
	figBegin += searchStart

	figEnd := strings.Index(text[blockStart:], `\end{figure}`)
	if figEnd < 0 {
		return ""
	}
	figEnd += blockStart + len(`\end{figure}`)

	return text[figBegin:figEnd]
}

// CaptionNear extracts the \caption{} text of the figure environment
// enclosing blockStart. The caption argument is scanned with a brace depth
// counter since captions may contain nested braces. Embedded \label{}
// directives are stripped and whitespace is collapsed. Returns "" when no
// enclosing figure or no caption exists.
func CaptionNear(text string, blockStart int) string {
	span := figureSpan(text, blockStart)
	if span == "" {
		return ""
	}

	idx := strings.Index(span, `\caption{`)
	if idx < 0 {
		return ""
	}

	start := idx + len(`\caption{`)
	depth := 1
	i := start
	for i < len(span) && depth > 0 {
		switch span[i] {
		case '{':
			depth++
		case '}':
			depth--
		}
		i++
	}
	if depth != 0 {
		return ""
	}

	caption := span[start : i-1]
	caption = labelPattern.ReplaceAllString(caption, "")
	return strings.Join(strings.Fields(caption), " ")
}

// LabelNear extracts the first \label{} argument of the figure environment
// enclosing blockStart, verbatim. Returns "" when absent.
func LabelNear(text string, blockStart int) string {
	span := figureSpan(text, blockStart)
	if span == "" {
		return ""
	}
	if m := labelPattern.FindStringSubmatch(span); m != nil {
		return m[1]
	}
	return ""
}
