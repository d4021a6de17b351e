package core

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var (
	// ErrFileTooLarge is returned when an upload exceeds the configured size.
	ErrFileTooLarge = errors.New("file too large")

	// ErrEmptyUpload is returned for a zero-byte upload.
	ErrEmptyUpload = errors.New("empty upload")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadImport reads at most maxSize bytes of an uploaded CSV and returns it as
// UTF-8 without a byte order mark. Files that are not valid UTF-8 are decoded
// as Windows-1252, the encoding spreadsheet applications use for "CSV" on
// Portuguese Windows installs.
func ReadImport(r io.Reader, maxSize int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > maxSize {
		return "", fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, maxSize)
	}
	if len(data) == 0 {
		return "", ErrEmptyUpload
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("encoding error: %w", err)
	}
	return string(decoded), nil
}
