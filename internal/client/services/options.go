package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/uploadhaven/internal/api"
	"github.com/dmitrijs2005/uploadhaven/internal/common"
	"github.com/dmitrijs2005/uploadhaven/internal/cryptox"
	"github.com/dmitrijs2005/uploadhaven/internal/pack"
	"github.com/dmitrijs2005/uploadhaven/internal/timex"
)

// KeyMode selects where the encryption key comes from.
type KeyMode string

const (
	KeyModeRandom   KeyMode = "random"
	KeyModePassword KeyMode = "password"
)

// UploadOptions is everything a caller may choose for one upload. The zero
// value is a random-key upload with the default expiry.
type UploadOptions struct {
	KeyMode  KeyMode
	Password []byte
	// GenerateAccessPassword asks for a second secret that gates download
	// access on the server. It is unrelated to the encryption key.
	GenerateAccessPassword bool
	Expiry                 time.Duration
	Category               string
	Algorithm              string
}

// Validate checks the options on their own; limits that depend on
// Settings are checked by the Uploader.
func (o *UploadOptions) Validate() error {
	switch o.KeyMode {
	case "", KeyModeRandom:
		if len(o.Password) != 0 {
			return fmt.Errorf("%w: password given for a random-key upload", common.ErrInvalidOptions)
		}
	case KeyModePassword:
		if len(o.Password) == 0 {
			return common.ErrPasswordRequired
		}
		if err := cryptox.CheckPasswordPolicy(o.Password); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown key mode %q", common.ErrInvalidOptions, o.KeyMode)
	}
	if o.Expiry < 0 {
		return fmt.Errorf("%w: negative expiry", common.ErrInvalidOptions)
	}
	if !pack.IsValidCategory(o.Category) {
		return fmt.Errorf("%w: unknown category %q", common.ErrInvalidOptions, o.Category)
	}
	if o.Algorithm != "" && !cryptox.IsSupportedAlgorithm(o.Algorithm) {
		return fmt.Errorf("%w: unknown algorithm %q", common.ErrInvalidOptions, o.Algorithm)
	}
	return nil
}

// Wipe zeroes the password.
func (o *UploadOptions) Wipe() {
	common.WipeByteArray(o.Password)
}

// PasswordPrompt asks the user for the decryption password. It is called
// once, on entering StateAwaitingPassword.
type PasswordPrompt func(ctx context.Context) ([]byte, error)

type DownloadOptions struct {
	Password       []byte
	PasswordPrompt PasswordPrompt
	AccessPassword string
}

func (o *DownloadOptions) Validate() error {
	if len(o.Password) != 0 && o.PasswordPrompt != nil {
		return fmt.Errorf("%w: both a password and a prompt were given", common.ErrInvalidOptions)
	}
	return nil
}

func (o *DownloadOptions) Wipe() {
	common.WipeByteArray(o.Password)
}

type uploadOptionsJSON struct {
	KeyMode                KeyMode         `json:"key_mode"`
	Password               string          `json:"password"`
	GenerateAccessPassword bool            `json:"generate_access_password"`
	Expiry                 *timex.Duration `json:"expiry"`
	Category               string          `json:"category"`
	Algorithm              string          `json:"algorithm"`
}

type downloadOptionsJSON struct {
	Password       string `json:"password"`
	AccessPassword string `json:"access_password"`
}

// DecodeUploadOptions reads options from JSON. Unknown fields are an error.
// Values are checked later by Validate, so a password may still be added
// after decoding.
func DecodeUploadOptions(r io.Reader) (*UploadOptions, error) {
	var in uploadOptionsJSON
	if err := api.DecodeJSON(r, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidOptions, err)
	}
	o := &UploadOptions{
		KeyMode:                in.KeyMode,
		GenerateAccessPassword: in.GenerateAccessPassword,
		Category:               in.Category,
		Algorithm:              in.Algorithm,
	}
	if in.Password != "" {
		o.Password = []byte(in.Password)
	}
	if in.Expiry != nil {
		o.Expiry = in.Expiry.Duration
	}
	return o, nil
}

// DecodeDownloadOptions reads options from JSON. Unknown fields are an error.
func DecodeDownloadOptions(r io.Reader) (*DownloadOptions, error) {
	var in downloadOptionsJSON
	if err := api.DecodeJSON(r, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidOptions, err)
	}
	o := &DownloadOptions{AccessPassword: in.AccessPassword}
	if in.Password != "" {
		o.Password = []byte(in.Password)
	}
	return o, nil
}

// optionKind is the flow error kind for an option validation failure.
func optionKind(err error) error {
	for _, k := range []error{common.ErrWeakPassword, common.ErrPasswordRequired} {
		if errors.Is(err, k) {
			return k
		}
	}
	return common.ErrInvalidOptions
}
