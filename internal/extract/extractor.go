// Package extract turns uploaded resume documents into plain UTF-8 text.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"resumescore/internal/config"
	"resumescore/internal/errors"
	"resumescore/internal/observability"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
)

// Format names reported in metrics and errors
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatPDF      = "pdf"
	FormatHTML     = "html"
)

var formatByExtension = map[string]string{
	".txt":      FormatText,
	".text":     FormatText,
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
	".pdf":      FormatPDF,
	".html":     FormatHTML,
	".htm":      FormatHTML,
}

// Extractor converts document bytes to text based on the file extension
type Extractor struct {
	maxFileSize int64
	extensions  []string
	metrics     *observability.Metrics
}

// New creates an Extractor from configuration. metrics may be nil.
func New(cfg config.ExtractionConfig, metrics *observability.Metrics) *Extractor {
	exts := make([]string, 0, len(cfg.SupportedExtensions))
	for _, ext := range cfg.SupportedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, known := formatByExtension[ext]; known {
			exts = append(exts, ext)
		}
	}
	if len(exts) == 0 {
		for ext := range formatByExtension {
			exts = append(exts, ext)
		}
		slices.Sort(exts)
	}
	return &Extractor{maxFileSize: cfg.MaxFileSize, extensions: exts, metrics: metrics}
}

// SupportedExtensions lists the extensions this extractor accepts
func (e *Extractor) SupportedExtensions() []string {
	return slices.Clone(e.extensions)
}

// FormatOf returns the document format for fileName, or an ExtractionError
// when the extension is not supported.
func (e *Extractor) FormatOf(fileName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if !slices.Contains(e.extensions, ext) {
		return "", errors.NewExtractionError(errors.ErrCodeUnsupportedFormat,
			fmt.Sprintf("unsupported file type %q (supported: %s)", ext, strings.Join(e.extensions, ", ")), nil).
			WithContext("file_name", fileName)
	}
	return formatByExtension[ext], nil
}

// ExtractText returns the plain text of data. Failures are ExtractionErrors.
func (e *Extractor) ExtractText(ctx context.Context, data []byte, fileName string) (string, error) {
	format, err := e.FormatOf(fileName)
	if err != nil {
		e.metrics.RecordExtraction(ctx, "unknown", false)
		return "", err
	}

	text, err := e.extract(ctx, data, fileName, format)
	e.metrics.RecordExtraction(ctx, format, err == nil)
	return text, err
}

// ExtractFile reads path from disk and extracts its text
func (e *Extractor) ExtractFile(ctx context.Context, path string) (string, error) {
	if _, err := e.FormatOf(path); err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotFound,
			fmt.Sprintf("cannot access file %s", path), err)
	}
	if info.IsDir() {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("path is a directory, not a file: %s", path), nil)
	}
	if e.maxFileSize > 0 && info.Size() > e.maxFileSize {
		return "", e.tooLarge(path, info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("cannot read file %s", path), err)
	}
	return e.ExtractText(ctx, data, filepath.Base(path))
}

func (e *Extractor) extract(ctx context.Context, data []byte, fileName, format string) (string, error) {
	if len(data) == 0 {
		return "", errors.NewExtractionError(errors.ErrCodeEmptyDocument,
			"document is empty", nil).WithContext("file_name", fileName)
	}
	if e.maxFileSize > 0 && int64(len(data)) > e.maxFileSize {
		return "", e.tooLarge(fileName, int64(len(data)))
	}
	if err := ctx.Err(); err != nil {
		return "", errors.NewExtractionError(errors.ErrCodeExtractionFailed, "extraction cancelled", err)
	}

	switch format {
	case FormatPDF:
		return extractPDF(data, fileName)
	case FormatHTML:
		return extractHTML(data, fileName)
	default:
		return Sanitize(string(data)), nil
	}
}

func (e *Extractor) tooLarge(fileName string, size int64) error {
	return errors.NewExtractionError(errors.ErrCodeFileTooLarge,
		fmt.Sprintf("file is %s, limit is %s", FormatFileSize(size), FormatFileSize(e.maxFileSize)), nil).
		WithContext("file_name", fileName)
}

// extractPDF returns the plain text of every page. The PDF reader panics on
// some malformed documents, so panics become extraction errors.
func extractPDF(data []byte, fileName string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = errors.NewExtractionError(errors.ErrCodeExtractionFailed,
				fmt.Sprintf("malformed PDF: %v", r), nil).WithContext("file_name", fileName)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.NewExtractionError(errors.ErrCodeExtractionFailed,
			"failed to open PDF", err).WithContext("file_name", fileName)
	}

	var builder strings.Builder
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(pageText)
		builder.WriteString("\n\n")
	}

	out := Sanitize(builder.String())
	if out == "" {
		return "", errors.NewExtractionError(errors.ErrCodeEmptyDocument,
			"no text content found in PDF", nil).WithContext("file_name", fileName)
	}
	return out, nil
}

var blockSelectors = "p, div, section, article, header, footer, h1, h2, h3, h4, h5, h6, tr, ul, ol, table, blockquote, pre"

// extractHTML drops non-content elements and keeps block structure as lines
func extractHTML(data []byte, fileName string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", errors.NewExtractionError(errors.ErrCodeExtractionFailed,
			"failed to parse HTML", err).WithContext("file_name", fileName)
	}

	doc.Find("script, style, noscript, nav, template, iframe").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("- ")
		s.AppendHtml("\n")
	})
	doc.Find("td, th").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" | ")
	})
	doc.Find(blockSelectors).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	out := Sanitize(root.Text())
	if out == "" {
		return "", errors.NewExtractionError(errors.ErrCodeEmptyDocument,
			"no text content found in HTML", nil).WithContext("file_name", fileName)
	}
	return out, nil
}
