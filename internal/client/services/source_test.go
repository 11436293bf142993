package services

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/uploadhaven/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.txt")
	require.NoError(t, os.WriteFile(path, []byte("quarterly"), 0o600))

	src, err := SourceFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "report.txt", src.Name)
	assert.Contains(t, src.MimeType, "text/plain")
	assert.Equal(t, int64(9), src.Size)

	b, err := src.read()
	require.NoError(t, err)
	assert.Equal(t, []byte("quarterly"), b)

	_, err = SourceFromFile(dir)
	assert.ErrorIs(t, err, common.ErrInvalidFile)

	_, err = SourceFromFile(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, common.ErrInvalidFile)
}

func TestSourceFromFile_UnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.zzzunknown")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o600))

	src, err := SourceFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, defaultMimeType, src.MimeType)
}

func TestSource_Validate(t *testing.T) {
	open := func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(nil)), nil }

	tests := []struct {
		name string
		src  *Source
		want error
	}{
		{"nil", nil, common.ErrInvalidFile},
		{"no open", &Source{Name: "a", Size: 1}, common.ErrInvalidFile},
		{"no name", &Source{Size: 1, Open: open}, common.ErrInvalidFile},
		{"empty", &Source{Name: "a", Open: open}, common.ErrInvalidFile},
		{"too large", &Source{Name: "a", Size: 11, Open: open}, common.ErrFileTooLarge},
		{"at limit", &Source{Name: "a", Size: 10, Open: open}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.src.validate(10)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSource_ReadSizeChanges(t *testing.T) {
	withContent := func(size int64, content string) *Source {
		return &Source{Name: "a", Size: size, Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader([]byte(content))), nil
		}}
	}

	_, err := withContent(3, "abcd").read()
	assert.ErrorIs(t, err, common.ErrInvalidFile)

	_, err = withContent(5, "abcd").read()
	assert.ErrorIs(t, err, common.ErrInvalidFile)

	b, err := withContent(4, "abcd").read()
	require.NoError(t, err)
	assert.Equal(t, []byte("abcd"), b)
}
