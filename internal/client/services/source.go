package services

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/uploadhaven/internal/common"
)

const defaultMimeType = "application/octet-stream"

// Source is a file to upload. Size is known before Open is called so an
// oversized file is refused without reading it.
type Source struct {
	Name     string
	MimeType string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// SourceFromFile stats path and returns a Source that opens it lazily.
func SourceFromFile(path string) (*Source, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidFile, err)
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: not a regular file", common.ErrInvalidFile)
	}

	mt := mime.TypeByExtension(filepath.Ext(path))
	if mt == "" {
		mt = defaultMimeType
	}
	return &Source{
		Name:     filepath.Base(path),
		MimeType: mt,
		Size:     fi.Size(),
		Open:     func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// SourceFromBytes wraps an in-memory buffer.
func SourceFromBytes(name, mimeType string, b []byte) *Source {
	if mimeType == "" {
		mimeType = defaultMimeType
	}
	return &Source{
		Name:     name,
		MimeType: mimeType,
		Size:     int64(len(b)),
		Open:     func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(b)), nil },
	}
}

func (s *Source) validate(maxSize int64) error {
	switch {
	case s == nil || s.Open == nil:
		return fmt.Errorf("%w: nothing to read", common.ErrInvalidFile)
	case s.Name == "":
		return fmt.Errorf("%w: missing file name", common.ErrInvalidFile)
	case s.Size <= 0:
		return fmt.Errorf("%w: empty file", common.ErrInvalidFile)
	case s.Size > maxSize:
		return common.ErrFileTooLarge
	}
	return nil
}

// read loads the whole file, refusing it if it turns out larger or smaller
// than the size reported up front.
func (s *Source) read() ([]byte, error) {
	rc, err := s.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidFile, err)
	}
	defer rc.Close()

	buf := make([]byte, s.Size)
	if _, err := io.ReadFull(rc, buf); err != nil {
		common.WipeByteArray(buf)
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: file shrank while reading", common.ErrInvalidFile)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidFile, err)
	}

	var extra [1]byte
	if _, err := io.ReadFull(rc, extra[:]); !errors.Is(err, io.EOF) {
		common.WipeByteArray(buf)
		return nil, fmt.Errorf("%w: file grew while reading", common.ErrInvalidFile)
	}
	return buf, nil
}
