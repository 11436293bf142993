package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/uploadhaven/internal/client/client"
	"github.com/dmitrijs2005/uploadhaven/internal/client/config"
	"github.com/dmitrijs2005/uploadhaven/internal/common"
	"github.com/dmitrijs2005/uploadhaven/internal/compat"
	"github.com/dmitrijs2005/uploadhaven/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	mu    sync.Mutex
	files map[string]client.UploadRequest
}

func (s *fakeStorage) Store(_ context.Context, r *client.UploadRequest) (*client.UploadReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.files == nil {
		s.files = map[string]client.UploadRequest{}
	}
	id := fmt.Sprintf("cli%05d", len(s.files)+1)
	s.files[id] = *r
	return &client.UploadReceipt{ShortID: id, ExpiresAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)}, nil
}

func (s *fakeStorage) Stat(_ context.Context, id string) (*client.FileStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.files[id]
	if !ok {
		return nil, common.ErrNotFoundOrExpired
	}
	return &client.FileStat{Metadata: r.Metadata, Valid: true, AccessProtected: r.AccessPassword != ""}, nil
}

func (s *fakeStorage) Fetch(_ context.Context, id string, token string, _ int64) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.files[id]
	if !ok {
		return nil, common.ErrNotFoundOrExpired
	}
	if r.AccessPassword != "" && token != "ok" {
		return nil, common.ErrAccessDenied
	}
	return r.Ciphertext, nil
}

func (s *fakeStorage) Authorize(_ context.Context, id string, pw string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.files[id]; ok && r.AccessPassword != "" && r.AccessPassword == pw {
		return "ok", nil
	}
	return "", common.ErrAccessDenied
}

type testApp struct {
	*App
	out, errOut *bytes.Buffer
}

func newTestApp(t *testing.T, guard *compat.Guard) *testApp {
	t.Helper()
	var cfg config.Config
	cfg.LoadDefaults()
	cfg.ShareBaseURL = "https://share.test"
	cfg.RetryBaseDelay = time.Millisecond

	if guard == nil {
		guard = compat.NewGuard()
	}
	ta := &testApp{out: &bytes.Buffer{}, errOut: &bytes.Buffer{}}
	ta.App = newApp(&cfg, &fakeStorage{}, logging.Discard(), guard, ta.out, ta.errOut)
	return ta
}

func (ta *testApp) run(args ...string) int {
	ta.out.Reset()
	ta.errOut.Reset()
	return ta.Run(context.Background(), args)
}

var (
	linkRe   = regexp.MustCompile(`Share link: (\S+)`)
	accessRe = regexp.MustCompile(`Access password: (\S+)`)
)

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestUploadDownload_RandomKey(t *testing.T) {
	ta := newTestApp(t, nil)
	in := writeInput(t, "hello.txt", "hello12345")

	require.Equal(t, ExitOK, ta.run("upload", in), ta.errOut.String())
	m := linkRe.FindStringSubmatch(ta.out.String())
	require.Len(t, m, 2)
	link := m[1]
	assert.Contains(t, link, "https://share.test/s/cli00001#key=")
	assert.Contains(t, ta.out.String(), "Expires:    2026-01-02T00:00:00Z")
	assert.Contains(t, ta.errOut.String(), "deriving key...")

	t.Run("nothing written without --out", func(t *testing.T) {
		require.Equal(t, ExitOK, ta.run("download", link))
		assert.Contains(t, ta.errOut.String(), "File: hello.txt (text/plain")
		assert.Contains(t, ta.errOut.String(), "use --out")
		assert.Empty(t, ta.out.String())
	})

	t.Run("stdout", func(t *testing.T) {
		require.Equal(t, ExitOK, ta.run("download", "--stdout", link))
		assert.Equal(t, "hello12345", ta.out.String())
	})

	t.Run("into a directory", func(t *testing.T) {
		dir := t.TempDir()
		require.Equal(t, ExitOK, ta.run("download", link, "--out", dir))
		got, err := os.ReadFile(filepath.Join(dir, "hello.txt"))
		require.NoError(t, err)
		assert.Equal(t, "hello12345", string(got))

		// never overwrites
		assert.Equal(t, ExitFailure, ta.run("download", link, "--out", dir))
		assert.Contains(t, ta.errOut.String(), "already exists")
	})
}

func TestUploadDownload_Password(t *testing.T) {
	ta := newTestApp(t, nil)
	in := writeInput(t, "plan.pdf", "quarterly plan")

	stubPasswords(t, "CorrectHorse9!", "CorrectHorse9!")
	require.Equal(t, ExitOK, ta.run("upload", "-p", "--category", "document", in), ta.errOut.String())
	link := linkRe.FindStringSubmatch(ta.out.String())[1]
	assert.Contains(t, link, "#pw")
	assert.Contains(t, ta.out.String(), "also needs the password")

	stubPasswords(t, "WrongHorse9!")
	assert.Equal(t, ExitFailure, ta.run("download", "--stdout", link))
	assert.Contains(t, ta.errOut.String(), "wrong password or corrupted file")

	stubPasswords(t, "CorrectHorse9!")
	require.Equal(t, ExitOK, ta.run("download", "--stdout", link))
	assert.Equal(t, "quarterly plan", ta.out.String())
}

func TestUpload_PasswordsDiffer(t *testing.T) {
	ta := newTestApp(t, nil)
	in := writeInput(t, "a.txt", "abc")

	stubPasswords(t, "CorrectHorse9!", "CorrectHorse8!")
	assert.Equal(t, ExitFailure, ta.run("upload", "--password", in))
	assert.Contains(t, ta.errOut.String(), errPasswordsDiffer.Error())
}

func TestUploadDownload_AccessPassword(t *testing.T) {
	ta := newTestApp(t, nil)
	in := writeInput(t, "a.txt", "gated")

	require.Equal(t, ExitOK, ta.run("upload", "--access-password", in))
	link := linkRe.FindStringSubmatch(ta.out.String())[1]
	access := accessRe.FindStringSubmatch(ta.out.String())[1]

	assert.Equal(t, ExitFailure, ta.run("download", "--stdout", link))
	assert.Contains(t, ta.errOut.String(), "access denied")

	stubPasswords(t, access)
	require.Equal(t, ExitOK, ta.run("download", "--stdout", "--access-password", link))
	assert.Equal(t, "gated", ta.out.String())
}

func TestUpload_OptionsFile(t *testing.T) {
	ta := newTestApp(t, nil)
	in := writeInput(t, "a.txt", "abc")
	opts := writeInput(t, "opts.json", `{"expiry":"1h","category":"other","algorithm":"ChaCha20-Poly1305"}`)
	bad := writeInput(t, "bad.json", `{"expiry":"1h","colour":"blue"}`)

	require.Equal(t, ExitOK, ta.run("upload", "--options", opts, in), ta.errOut.String())
	assert.Equal(t, ExitFailure, ta.run("upload", "--options", bad, in))
	assert.Contains(t, ta.errOut.String(), "invalid options")
}

func TestUpload_Errors(t *testing.T) {
	ta := newTestApp(t, nil)

	assert.Equal(t, ExitFailure, ta.run("upload", filepath.Join(t.TempDir(), "missing.txt")))
	assert.Contains(t, ta.errOut.String(), "invalid file")

	assert.Equal(t, ExitFailure, ta.run("upload"))
	assert.Equal(t, ExitFailure, ta.run("download", "https://share.test/s/"))
	assert.Contains(t, ta.errOut.String(), "invalid link format")
}

func TestCheck(t *testing.T) {
	ta := newTestApp(t, nil)
	require.Equal(t, ExitOK, ta.run("check"))
	assert.Contains(t, ta.out.String(), "ok:")

	broken := compat.NewGuard(compat.Probe{Name: compat.FeatureAEAD, Check: func() error { return errors.New("no aes") }})
	ta = newTestApp(t, broken)
	assert.Equal(t, ExitFailure, ta.run("check"))
	assert.Contains(t, ta.out.String(), "missing: aead")

	in := writeInput(t, "a.txt", "abc")
	assert.Equal(t, ExitFailure, ta.run("upload", in))
	assert.Contains(t, ta.errOut.String(), "uploadhaven check")
}

func TestRun_Cancelled(t *testing.T) {
	ta := newTestApp(t, nil)
	in := writeInput(t, "a.txt", "abc")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, ExitCancelled, ta.Run(ctx, []string{"upload", in}))
}

func TestSafeFilename(t *testing.T) {
	for in, want := range map[string]string{
		"report.pdf":       "report.pdf",
		"../../etc/passwd": "passwd",
		"/abs/path/x.txt":  "x.txt",
		"":                 fallbackFilename,
		"..":               fallbackFilename,
		"dir/":             "dir",
	} {
		assert.Equal(t, want, safeFilename(in), in)
	}
}
