// Package corpus assembles the college's reference text from PDF documents
// and trims it down to query-relevant excerpts for prompting.
package corpus

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
)

// ExtractFunc returns the plain text of the document at path.
type ExtractFunc func(path string) (string, error)

// Loader lazily builds the corpus text from a fixed list of documents.
// The text is assembled on the first call to Text and reused afterwards.
type Loader struct {
	dir     string
	files   []string
	extract ExtractFunc
	logger  *slog.Logger

	once sync.Once
	text string
}

// NewLoader creates a Loader reading files relative to dir. A nil extract
// defaults to PDF extraction.
func NewLoader(dir string, files []string, extract ExtractFunc, logger *slog.Logger) *Loader {
	if extract == nil {
		extract = ExtractPDFText
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		dir:     dir,
		files:   append([]string(nil), files...),
		extract: extract,
		logger:  logger,
	}
}

// Text returns the concatenated text of every readable document.
// Unreadable documents are logged and contribute nothing.
func (l *Loader) Text() string {
	l.once.Do(func() {
		var b strings.Builder
		for _, name := range l.files {
			path := filepath.Join(l.dir, name)
			text, err := l.extract(path)
			if err != nil {
				l.logger.Warn("Failed to load document", "file", name, "error", err)
				continue
			}
			b.WriteString(text)
			l.logger.Info("Document loaded", "file", name, "chars", len(text))
		}
		l.text = b.String()
	})
	return l.text
}

// ExtractPDFText reads every page of the PDF at path, appending a newline
// after each non-empty page.
func ExtractPDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A damaged page should not discard the rest of the document.
			continue
		}
		text = strings.ReplaceAll(text, "\x00", "")
		if text == "" {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// Static is a fixed corpus, handy when the text is already in memory.
type Static string

// Text returns the static text.
func (s Static) Text() string { return string(s) }
