package httpapi

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/uploadhaven/internal/client/client"
	"github.com/dmitrijs2005/uploadhaven/internal/client/services"
	"github.com/dmitrijs2005/uploadhaven/internal/common"
	"github.com/dmitrijs2005/uploadhaven/internal/compat"
	"github.com/dmitrijs2005/uploadhaven/internal/netx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clientPair struct {
	up   *services.Uploader
	down *services.Downloader
}

func newClientPair(t *testing.T, ts *testServer) clientPair {
	t.Helper()
	storage, err := client.NewHTTPStorage(ts.srv.URL, nil, 5*time.Second)
	require.NoError(t, err)

	settings := services.Settings{
		ShareBaseURL: ts.srv.URL,
		MaxFileSize:  512,
		Retry:        netx.Policy{Attempts: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
	}
	guard := services.WithGuard(compat.NewGuard(compat.Probe{
		Name:  compat.FeatureSecureRandom,
		Check: func() error { return nil },
	}))
	return clientPair{
		up:   services.NewUploader(storage, settings, guard),
		down: services.NewDownloader(storage, settings, guard),
	}
}

func TestEndToEnd_RandomKey(t *testing.T) {
	ts := newTestServer(t)
	c := newClientPair(t, ts)
	ctx := context.Background()

	res, err := c.up.Upload(ctx, services.SourceFromBytes("notes.txt", "text/plain", []byte("meet at noon")),
		services.UploadOptions{})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(res.ShareURL, ts.srv.URL+"/s/"), res.ShareURL)
	assert.Contains(t, res.ShareURL, "#")
	assert.False(t, res.PasswordDerived)

	dl, err := c.down.Download(ctx, res.ShareURL, services.DownloadOptions{})
	require.NoError(t, err)
	defer dl.Wipe()
	assert.Equal(t, "notes.txt", dl.Filename)
	assert.Equal(t, "text/plain", dl.MimeType)
	assert.Equal(t, "meet at noon", string(dl.Plaintext))

	// The server only ever sees ciphertext.
	assert.NotContains(t, ts.access.String(), "notes.txt")
	assert.NotContains(t, ts.access.String(), "meet at noon")

	// Dropping the fragment leaves nothing to decrypt with.
	bare := res.ShareURL[:strings.Index(res.ShareURL, "#")]
	_, err = c.down.Download(ctx, bare, services.DownloadOptions{})
	require.ErrorIs(t, err, common.ErrInvalidLinkFormat)
}

func TestEndToEnd_PasswordAndAccessGate(t *testing.T) {
	ts := newTestServer(t)
	c := newClientPair(t, ts)
	ctx := context.Background()

	res, err := c.up.Upload(ctx, services.SourceFromBytes("report.pdf", "application/pdf", []byte("%PDF-1.7 quarterly")),
		services.UploadOptions{
			KeyMode:                services.KeyModePassword,
			Password:               []byte("CorrectHorse9!"),
			GenerateAccessPassword: true,
		})
	require.NoError(t, err)
	require.True(t, res.PasswordDerived)
	require.NotEmpty(t, res.AccessPassword)
	assert.Contains(t, res.ShareURL, "#pw")
	assert.NotContains(t, res.ShareURL, "key=")

	_, err = c.down.Download(ctx, res.ShareURL, services.DownloadOptions{Password: []byte("CorrectHorse9!")})
	require.ErrorIs(t, err, common.ErrAccessDenied)

	_, err = c.down.Download(ctx, res.ShareURL, services.DownloadOptions{
		Password:       []byte("WrongHorse9!"),
		AccessPassword: res.AccessPassword,
	})
	require.ErrorIs(t, err, common.ErrWrongPasswordOrCorrupted)

	dl, err := c.down.Download(ctx, res.ShareURL, services.DownloadOptions{
		Password:       []byte("CorrectHorse9!"),
		AccessPassword: res.AccessPassword,
	})
	require.NoError(t, err)
	defer dl.Wipe()
	assert.Equal(t, "report.pdf", dl.Filename)
	assert.Equal(t, "%PDF-1.7 quarterly", string(dl.Plaintext))
}

func TestEndToEnd_Expired(t *testing.T) {
	ts := newTestServer(t)
	c := newClientPair(t, ts)
	ctx := context.Background()

	res, err := c.up.Upload(ctx, services.SourceFromBytes("a.bin", "", []byte{1, 2, 3}),
		services.UploadOptions{Expiry: time.Hour})
	require.NoError(t, err)

	ts.clock.advance(time.Hour)
	_, err = c.down.Download(ctx, res.ShareURL, services.DownloadOptions{})
	require.ErrorIs(t, err, common.ErrNotFoundOrExpired)
}

func TestEndToEnd_ServerRejectsOversizedUpload(t *testing.T) {
	ts := newTestServer(t)
	storage, err := client.NewHTTPStorage(ts.srv.URL, nil, 5*time.Second)
	require.NoError(t, err)
	up := services.NewUploader(storage, services.Settings{
		ShareBaseURL: ts.srv.URL,
		MaxFileSize:  4 << 10,
		Retry:        netx.Policy{Attempts: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
	}, services.WithGuard(compat.NewGuard(compat.Probe{
		Name:  compat.FeatureSecureRandom,
		Check: func() error { return nil },
	})))

	_, err = up.Upload(context.Background(), services.SourceFromBytes("big.bin", "", make([]byte, 2<<10)),
		services.UploadOptions{})
	require.ErrorIs(t, err, common.ErrFileTooLarge)
	assert.Zero(t, ts.blobs.Len())
}
