package tikz

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// maxEntrySize caps individual files unpacked from an archive.
const maxEntrySize = 100 * 1024 * 1024

// DetectArchive determines which container format an e-print payload uses
// and returns the decoded .tex files inside it. Strategies are tried in
// fixed order, first success wins:
//
//  1. gzip-compressed tar
//  2. plain tar
//  3. single gzip stream (path synthesized as "main.tex")
//  4. raw LaTeX text containing \begin{document} or \documentclass
//
// Unrecognizable payloads yield an empty slice, never an error. File order
// is deterministic (lexical walk) because figure indices depend on it.
func DetectArchive(data []byte) []SourceFile {
	return detectArchive(data, zap.NewNop())
}

func detectArchive(data []byte, log *zap.Logger) []SourceFile {
	// A successful unpack settles the format even when the archive holds
	// no .tex members; only unpack FAILURE moves to the next strategy.
	// Falling through after success would feed the tar stream itself to
	// the single-gzip strategy and surface it as a phantom main.tex.

	// Try gzip-compressed tar.
	if gzr, err := gzip.NewReader(bytes.NewReader(data)); err == nil {
		if files, err := untarToFiles(gzr, log); err == nil {
			return files
		}
	}

	// Try plain tar (some e-prints are uncompressed tar).
	if files, err := untarToFiles(bytes.NewReader(data), log); err == nil {
		return files
	}

	// Try single-file gzip stream.
	if gzr, err := gzip.NewReader(bytes.NewReader(data)); err == nil {
		decompressed, err := io.ReadAll(io.LimitReader(gzr, maxEntrySize))
		if err == nil {
			return []SourceFile{{Path: "main.tex", Text: decodeTex(decompressed)}}
		}
	}

	// Try raw LaTeX text.
	text := string(bytes.ToValidUTF8(data, nil))
	if strings.Contains(text, `\begin{document}`) || strings.Contains(text, `\documentclass`) {
		return []SourceFile{{Path: "main.tex", Text: text}}
	}

	return nil
}

// untarToFiles unpacks a tar stream into a temporary workspace, collects the
// .tex files it contains, and removes the workspace before returning on
// every path. A failed removal is logged but never overrides the result.
func untarToFiles(r io.Reader, log *zap.Logger) ([]SourceFile, error) {
	dir, err := os.MkdirTemp("", "arxiv-tikz-")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Warn("remove extraction workspace", zap.String("dir", dir), zap.Error(err))
		}
	}()

	if err := untar(r, dir); err != nil {
		return nil, err
	}
	return findTexFiles(dir)
}

func untar(r io.Reader, dstDir string) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		// Security: prevent path traversal
		name := filepath.Clean(hdr.Name)
		if strings.HasPrefix(name, "..") || filepath.IsAbs(name) {
			continue
		}

		target := filepath.Join(dstDir, name)
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			out, err := os.Create(target)
			if err != nil {
				return err
			}
			_, err = io.CopyN(out, tr, maxEntrySize)
			out.Close()
			if err != nil && err != io.EOF {
				return err
			}
		}
	}
	return nil
}

// findTexFiles walks the workspace and decodes every .tex file found.
// WalkDir visits entries in lexical order, which keeps file order stable
// across runs. Files that decode under neither encoding are skipped.
func findTexFiles(dir string) ([]SourceFile, error) {
	var files []SourceFile
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".tex") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			// Unreadable files are not fatal to the archive as a whole.
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = d.Name()
		}
		files = append(files, SourceFile{Path: filepath.ToSlash(rel), Text: decodeTex(data)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// decodeTex decodes file bytes as strict UTF-8 first, then falls back to
// Latin-1, which accepts any byte sequence and preserves byte values.
func decodeTex(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}
