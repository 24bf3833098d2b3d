// Package tikz extracts TikZ figure source code from arXiv papers.
//
// This package implements:
//   - Archive detection for arXiv e-print payloads (gzipped tar, plain tar,
//     single gzip stream, or raw LaTeX text)
//   - A depth-counting parser that recovers balanced TikZ environments,
//     including same-type nesting, together with captions and labels
//   - A rate-limited client for downloading e-print sources
//   - Local SQLite-based caching of papers, figures, and citation data
//
// The extraction pipeline itself is pure: it takes raw archive bytes plus a
// paper identifier and returns an ordered list of figures. Malformed input
// never produces an error, only fewer figures. Network retrieval, caching,
// and output formatting are separate layers built around that core.
//
// Basic usage:
//
//	client := tikz.NewClient(nil)
//	figures, err := client.ExtractFigures(ctx, "2301.00001")
//	if err != nil {
//		log.Fatal(err)
//	}
//	out, err := tikz.FormatFigures(figures, tikz.FormatTikZ)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(out)
package tikz
