package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/uploadhaven/internal/client/client"
	"github.com/dmitrijs2005/uploadhaven/internal/common"
	"github.com/dmitrijs2005/uploadhaven/internal/cryptox"
	"github.com/dmitrijs2005/uploadhaven/internal/netx"
	"github.com/dmitrijs2005/uploadhaven/internal/pack"
	"github.com/dmitrijs2005/uploadhaven/internal/sharelink"
)

// UploadResult is returned by a completed upload. ShareURL carries the key
// in its fragment for random-key uploads; AccessPassword is set only when
// one was requested.
type UploadResult struct {
	ShareURL        string
	ShortID         string
	AccessPassword  string
	ExpiresAt       time.Time
	PasswordDerived bool
}

type Uploader struct {
	d *deps
}

func NewUploader(storage client.Storage, settings Settings, opts ...Option) *Uploader {
	return &Uploader{d: newDeps(storage, settings, opts)}
}

// uploadJob is the validated input of one run.
type uploadJob struct {
	src            *Source
	plaintext      []byte
	password       []byte
	passwordMode   bool
	algorithm      string
	category       string
	expiry         time.Duration
	accessPassword string
}

// Upload runs Idle -> Validating -> DerivingKey -> Encrypting -> Submitting
// -> Completed. A submit that fails for network reasons goes back to
// DerivingKey, so every attempt uses a fresh key, salt and IV.
func (u *Uploader) Upload(ctx context.Context, src *Source, opts UploadOptions) (*UploadResult, error) {
	ctx, m := newMachine(ctx, FlowUpload, u.d)
	m.enter(ctx, StateValidating)

	if err := u.d.guard.Require(); err != nil {
		return nil, m.fail(ctx, common.ErrUnsupportedEnvironment, err)
	}

	job, err := u.validate(ctx, src, &opts)
	if err != nil {
		return nil, m.fail(ctx, kindOf(ctx, err), err)
	}
	defer common.WipeByteArray(job.plaintext)

	var res *UploadResult
	err = netx.Do(ctx, u.d.settings.Retry, func(ctx context.Context, attempt int) error {
		if attempt > 1 {
			m.retry(ctx, StateDerivingKey)
		} else {
			m.enter(ctx, StateDerivingKey)
		}

		r, err := u.attempt(ctx, m, job)
		if err != nil {
			if errors.Is(err, common.ErrUnavailable) && ctx.Err() == nil {
				m.log.Warn(ctx, "submit failed, retrying", "attempt", attempt)
				return netx.Retry(err)
			}
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, m.fail(ctx, kindOf(ctx, err), err)
	}

	m.log.Info(ctx, "upload completed", "short_id", res.ShortID, "password_derived", res.PasswordDerived)
	m.succeed(ctx, StateCompleted)
	return res, nil
}

func (u *Uploader) validate(ctx context.Context, src *Source, opts *UploadOptions) (*uploadJob, error) {
	s := u.d.settings

	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", optionKind(err), err)
	}
	expiry := opts.Expiry
	if expiry == 0 {
		expiry = s.DefaultExpiry
	}
	// The server clamps as well; its assigned expiry is what the result reports.
	if expiry > s.MaxExpiry {
		expiry = s.MaxExpiry
	}
	alg := opts.Algorithm
	if alg == "" {
		alg = s.Algorithm
	}

	if err := src.validate(s.MaxFileSize); err != nil {
		return nil, err
	}
	if k := ctxKind(ctx); k != nil {
		return nil, k
	}

	plaintext, err := src.read()
	if err != nil {
		return nil, err
	}

	job := &uploadJob{
		src:          src,
		plaintext:    plaintext,
		password:     opts.Password,
		passwordMode: opts.KeyMode == KeyModePassword,
		algorithm:    alg,
		category:     opts.Category,
		expiry:       expiry,
	}
	if opts.GenerateAccessPassword {
		if job.accessPassword, err = cryptox.GenerateAccessPassword(); err != nil {
			common.WipeByteArray(plaintext)
			return nil, fmt.Errorf("%w: %v", common.ErrUnsupportedEnvironment, err)
		}
	}
	return job, nil
}

// attempt runs DerivingKey -> Encrypting -> Submitting once. The key never
// outlives the call.
func (u *Uploader) attempt(ctx context.Context, m *machine, job *uploadJob) (*UploadResult, error) {
	s := u.d.settings

	var (
		key        cryptox.SymmetricKey
		salt       []byte
		iterations int
		err        error
	)
	if job.passwordMode {
		iterations = s.Iterations
		if salt, err = cryptox.GenerateSalt(); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrUnsupportedEnvironment, err)
		}
		if key, err = cryptox.DeriveKeyFromPassword(job.password, salt, iterations); err != nil {
			if errors.Is(err, common.ErrWeakPassword) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", common.ErrInvalidOptions, err)
		}
	} else if key, err = cryptox.GenerateRandomKey(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnsupportedEnvironment, err)
	}
	defer key.Wipe()

	if k := ctxKind(ctx); k != nil {
		return nil, k
	}
	m.enter(ctx, StateEncrypting)

	info := pack.FileInfo{Filename: job.src.Name, MimeType: job.src.MimeType, Size: job.src.Size}
	env, meta, err := pack.PackageForUpload(job.plaintext, info, key, pack.Params{
		Algorithm:  job.algorithm,
		Salt:       salt,
		Iterations: iterations,
		Category:   job.category,
	})
	if err != nil {
		return nil, err
	}
	if int64(len(env.Ciphertext)) != meta.Size {
		return nil, common.ErrSizeMismatch
	}
	if k := ctxKind(ctx); k != nil {
		return nil, k
	}
	m.enter(ctx, StateSubmitting)

	receipt, err := u.d.storage.Store(ctx, &client.UploadRequest{
		Metadata:       *meta,
		Ciphertext:     env.Ciphertext,
		ExpiresIn:      job.expiry,
		AccessPassword: job.accessPassword,
	})
	if err != nil {
		return nil, err
	}

	var linkKey cryptox.SymmetricKey
	if !job.passwordMode {
		linkKey = key
	}
	link, err := sharelink.Build(receipt.ShortID, linkKey, job.passwordMode, salt, s.ShareBaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidOptions, err)
	}

	return &UploadResult{
		ShareURL:        link,
		ShortID:         receipt.ShortID,
		AccessPassword:  job.accessPassword,
		ExpiresAt:       receipt.ExpiresAt,
		PasswordDerived: job.passwordMode,
	}, nil
}
