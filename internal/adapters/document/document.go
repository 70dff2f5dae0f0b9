// Package document checks resume files locally before they are uploaded.
package document

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Format is a supported resume file type.
type Format string

// Supported formats.
const (
	PDF  Format = "pdf"
	DOCX Format = "docx"
)

// DefaultMaxBytes caps the size of a single upload.
const DefaultMaxBytes int64 = 10 << 20

const docxBody = "word/document.xml"

// Document is a file that passed pre-flight and is ready to upload.
type Document struct {
	Path   string
	Name   string
	Format Format
	Size   int64
	// Pages is known for PDFs only.
	Pages int

	data []byte
}

// Reader returns a fresh reader over the document bytes.
func (d *Document) Reader() io.Reader { return bytes.NewReader(d.data) }

// FormatOf maps a file name to its format by extension.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return PDF, nil
	case ".docx":
		return DOCX, nil
	default:
		return "", fmt.Errorf("%w: %q (only .pdf and .docx are accepted)", ErrUnsupportedFormat, filepath.Base(name))
	}
}

// Open reads path and verifies it is a readable PDF or DOCX no larger than
// maxBytes. A non-positive maxBytes selects DefaultMaxBytes.
func Open(path string, maxBytes int64) (*Document, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrUnsupportedFormat, path)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDocument, path)
	}
	if info.Size() > maxBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrTooLarge, path, info.Size(), maxBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	doc := &Document{
		Path:   path,
		Name:   filepath.Base(path),
		Format: format,
		Size:   int64(len(data)),
		data:   data,
	}

	switch format {
	case PDF:
		pages, err := countPages(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, doc.Name, err)
		}
		if pages == 0 {
			return nil, fmt.Errorf("%w: %s has no pages", ErrEmptyDocument, doc.Name)
		}
		doc.Pages = pages
	case DOCX:
		if err := checkDOCX(data); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, doc.Name, err)
		}
	}
	return doc, nil
}

// countPages parses the PDF structure. The parser panics on some malformed
// inputs, so panics are turned into errors.
func countPages(data []byte) (pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}
	return r.NumPage(), nil
}

func checkDOCX(data []byte) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return err
	}
	for _, f := range zr.File {
		if f.Name == docxBody {
			return nil
		}
	}
	return fmt.Errorf("missing %s", docxBody)
}
