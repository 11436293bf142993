package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/uploadhaven/internal/client/client"
	"github.com/dmitrijs2005/uploadhaven/internal/common"
	"github.com/dmitrijs2005/uploadhaven/internal/cryptox"
	"github.com/dmitrijs2005/uploadhaven/internal/netx"
	"github.com/dmitrijs2005/uploadhaven/internal/pack"
	"github.com/dmitrijs2005/uploadhaven/internal/sharelink"
)

// Download is a decrypted file held in memory. Call Wipe once it has been
// saved or shown.
type Download struct {
	Filename  string
	MimeType  string
	Size      int64
	Plaintext []byte
}

func (d *Download) Wipe() {
	if d != nil {
		common.WipeByteArray(d.Plaintext)
	}
}

type Downloader struct {
	d *deps
}

func NewDownloader(storage client.Storage, settings Settings, opts ...Option) *Downloader {
	return &Downloader{d: newDeps(storage, settings, opts)}
}

// Download runs Idle -> ParsingLink -> FetchingMetadata ->
// (AwaitingPassword) -> Downloading -> Decrypting -> Ready. A wrong
// password is not retried; the caller starts a new download with another
// one.
func (dl *Downloader) Download(ctx context.Context, link string, opts DownloadOptions) (*Download, error) {
	ctx, m := newMachine(ctx, FlowDownload, dl.d)
	m.enter(ctx, StateParsingLink)

	if err := dl.d.guard.Require(); err != nil {
		return nil, m.fail(ctx, common.ErrUnsupportedEnvironment, err)
	}
	if err := opts.Validate(); err != nil {
		return nil, m.fail(ctx, common.ErrInvalidOptions, err)
	}
	desc, err := sharelink.Parse(link)
	if err != nil {
		return nil, m.fail(ctx, common.ErrInvalidLinkFormat, err)
	}
	defer desc.Wipe()
	m.log = m.log.With("short_id", desc.ShortID)

	m.enter(ctx, StateFetchingMetadata)
	var stat *client.FileStat
	err = dl.withRetry(ctx, func(ctx context.Context) error {
		var err error
		stat, err = dl.d.storage.Stat(ctx, desc.ShortID)
		return err
	})
	if err != nil {
		return nil, m.fail(ctx, kindOf(ctx, err), err)
	}
	if !stat.Valid {
		return nil, m.fail(ctx, common.ErrNotFoundOrExpired, nil)
	}
	meta := &stat.Metadata
	if err := meta.Validate(); err != nil {
		return nil, m.fail(ctx, common.ErrWrongPasswordOrCorrupted, fmt.Errorf("%w: %v", common.ErrMalformedPackage, err))
	}
	if desc.PasswordRequired && !meta.PasswordDerived() {
		return nil, m.fail(ctx, common.ErrInvalidLinkFormat, nil)
	}
	if len(desc.Salt) > 0 && !bytes.Equal(desc.Salt, meta.Salt) {
		return nil, m.fail(ctx, common.ErrWrongPasswordOrCorrupted, common.ErrMalformedPackage)
	}

	key := desc.Key
	if desc.PasswordRequired {
		m.enter(ctx, StateAwaitingPassword)
		if key, err = dl.passwordKey(ctx, meta, &opts); err != nil {
			return nil, m.fail(ctx, kindOf(ctx, err), err)
		}
		defer key.Wipe()
	}
	if k := ctxKind(ctx); k != nil {
		return nil, m.fail(ctx, k, nil)
	}

	m.enter(ctx, StateDownloading)
	env, err := dl.fetch(ctx, desc.ShortID, stat, opts.AccessPassword)
	if err != nil {
		return nil, m.fail(ctx, kindOf(ctx, err), err)
	}
	if k := ctxKind(ctx); k != nil {
		return nil, m.fail(ctx, k, nil)
	}

	m.enter(ctx, StateDecrypting)
	payload, err := pack.UnpackageFromDownload(env, key)
	if err != nil {
		return nil, m.fail(ctx, common.ErrWrongPasswordOrCorrupted, err)
	}
	if k := ctxKind(ctx); k != nil {
		payload.Wipe()
		return nil, m.fail(ctx, k, nil)
	}

	m.log.Info(ctx, "download ready", "size", payload.Size)
	m.succeed(ctx, StateReady)
	return &Download{
		Filename:  payload.Filename,
		MimeType:  payload.MimeType,
		Size:      payload.Size,
		Plaintext: payload.Plaintext,
	}, nil
}

// passwordKey obtains the password and derives the key with the salt and
// iteration count stored with the envelope.
func (dl *Downloader) passwordKey(ctx context.Context, meta *pack.PublicMetadata, opts *DownloadOptions) (cryptox.SymmetricKey, error) {
	password := opts.Password
	if len(password) == 0 && opts.PasswordPrompt != nil {
		prompted, err := opts.PasswordPrompt(ctx)
		if err != nil {
			if k := ctxKind(ctx); k != nil {
				return nil, k
			}
			return nil, fmt.Errorf("%w: %v", common.ErrPasswordRequired, err)
		}
		defer common.WipeByteArray(prompted)
		password = prompted
	}
	if len(password) == 0 {
		return nil, common.ErrPasswordRequired
	}

	key, err := cryptox.DeriveKeyForDecryption(password, meta.Salt, meta.Iterations)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrWrongPasswordOrCorrupted, err)
	}
	return key, nil
}

// fetch trades the access password for a token when needed, downloads the
// ciphertext and checks it against the declared size.
func (dl *Downloader) fetch(ctx context.Context, shortID string, stat *client.FileStat, accessPassword string) (*pack.Envelope, error) {
	var token string
	if stat.AccessProtected {
		if accessPassword == "" {
			return nil, common.ErrAccessDenied
		}
		err := dl.withRetry(ctx, func(ctx context.Context) error {
			var err error
			token, err = dl.d.storage.Authorize(ctx, shortID, accessPassword)
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	var blob []byte
	err := dl.withRetry(ctx, func(ctx context.Context) error {
		var err error
		blob, err = dl.d.storage.Fetch(ctx, shortID, token, stat.Metadata.Size)
		return err
	})
	if err != nil {
		return nil, err
	}

	env, err := pack.EnvelopeFromParts(&stat.Metadata, blob)
	if err != nil {
		if errors.Is(err, common.ErrSizeMismatch) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", common.ErrWrongPasswordOrCorrupted, err)
	}
	return env, nil
}

// withRetry retries fn while it fails with ErrUnavailable. Only network
// calls go through here; nothing cryptographic is ever retried.
func (dl *Downloader) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	return netx.Do(ctx, dl.d.settings.Retry, func(ctx context.Context, attempt int) error {
		err := fn(ctx)
		if err != nil && errors.Is(err, common.ErrUnavailable) && ctx.Err() == nil {
			return netx.Retry(err)
		}
		return err
	})
}
