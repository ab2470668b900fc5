package importer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedFile = errors.New("unsupported file type")

// SupportedExtension reports whether name can be read by ReadFile.
func SupportedExtension(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".tsv", ".txt", ".xlsx":
		return true
	}
	return false
}

// ReadFile returns the tabular text of an uploaded file. Spreadsheets are
// flattened from their first sheet into tab separated lines. The extension
// picks the reader but the content is sniffed: binary data under a text
// extension is refused and a text export saved as .xlsx is read as text.
func ReadFile(name string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if !SupportedExtension(name) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Ext(name))
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	if len(b) == 0 {
		return "", nil
	}

	detected := mimetype.Detect(b)
	if isText(detected) {
		return strings.TrimPrefix(string(b), "\ufeff"), nil
	}
	if ext == ".xlsx" {
		return readWorkbook(name, bytes.NewReader(b))
	}
	return "", fmt.Errorf("%w: %s looks like %s", ErrUnsupportedFile, name, detected.String())
}

func isText(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

func readWorkbook(name string, r io.Reader) (string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", fmt.Errorf("open workbook %s: %w", name, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook %s has no sheets", name)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return "", fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}

	var buf bytes.Buffer
	for _, row := range rows {
		buf.WriteString(strings.Join(row, "\t"))
		buf.WriteByte('\n')
	}
	return buf.String(), nil
}
