// Package sharelink builds and parses share URLs. Secret material (the raw
// key, and the salt of password links) lives only in the fragment, which
// browsers never send to the server.
//
//	https://host/s/<id>#key=<base64url>[&salt=<base64url>]
//	https://host/s/<id>#pw[&salt=<base64url>]
package sharelink

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/uploadhaven/internal/common"
	"github.com/dmitrijs2005/uploadhaven/internal/cryptox"
)

const (
	MinShortIDLength = 6
	MaxShortIDLength = 64

	paramKey      = "key"
	paramSalt     = "salt"
	flagPassword  = "pw"
	pathSeparator = "/"
)

var b64 = base64.RawURLEncoding

// Descriptor is a parsed share link.
type Descriptor struct {
	BaseURL          string
	ShortID          string
	Key              cryptox.SymmetricKey
	PasswordRequired bool
	Salt             []byte
}

// ServerVisible is the part of the link a server ever sees.
func (d *Descriptor) ServerVisible() string {
	return d.BaseURL + common.ShareLinkPathPrefix + d.ShortID
}

// String never includes the fragment, so a descriptor is safe to log.
func (d *Descriptor) String() string {
	return d.ServerVisible()
}

// Wipe zeroes the embedded key.
func (d *Descriptor) Wipe() {
	d.Key.Wipe()
}

// ValidShortID reports whether id is a well-formed short identifier.
func ValidShortID(id string) bool {
	if len(id) < MinShortIDLength || len(id) > MaxShortIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

// Build returns the share URL for an upload. Password links never carry a
// key; embedded-key links must.
func Build(shortID string, key cryptox.SymmetricKey, passwordDerived bool, salt []byte, baseURL string) (string, error) {
	if !ValidShortID(shortID) {
		return "", fmt.Errorf("%w: short id", common.ErrInvalidLinkFormat)
	}
	base, err := normalizeBase(baseURL)
	if err != nil {
		return "", err
	}

	var frag []string
	if passwordDerived {
		if len(key) != 0 {
			return "", fmt.Errorf("%w: password links cannot embed a key", common.ErrInvalidLinkFormat)
		}
		frag = append(frag, flagPassword)
	} else {
		if !key.Valid() {
			return "", fmt.Errorf("%w: key must be %d bytes", common.ErrInvalidLinkFormat, cryptox.KeySize)
		}
		frag = append(frag, paramKey+"="+b64.EncodeToString(key))
	}
	if len(salt) > 0 {
		frag = append(frag, paramSalt+"="+b64.EncodeToString(salt))
	}

	return base + common.ShareLinkPathPrefix + shortID + "#" + strings.Join(frag, "&"), nil
}

// Parse decodes a share URL without contacting the server.
func Parse(raw string) (*Descriptor, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidLinkFormat, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: not an absolute URL", common.ErrInvalidLinkFormat)
	}

	idx := strings.LastIndex(u.Path, common.ShareLinkPathPrefix)
	if idx < 0 {
		return nil, fmt.Errorf("%w: missing short id", common.ErrInvalidLinkFormat)
	}
	shortID := strings.TrimSuffix(u.Path[idx+len(common.ShareLinkPathPrefix):], pathSeparator)
	if !ValidShortID(shortID) {
		return nil, fmt.Errorf("%w: short id", common.ErrInvalidLinkFormat)
	}

	d := &Descriptor{
		BaseURL: (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: u.Path[:idx]}).String(),
		ShortID: shortID,
	}
	if err := parseFragment(u.Fragment, d); err != nil {
		d.Wipe()
		return nil, err
	}
	return d, nil
}

func parseFragment(fragment string, d *Descriptor) error {
	if fragment == "" {
		return fmt.Errorf("%w: missing fragment", common.ErrInvalidLinkFormat)
	}

	seen := map[string]bool{}
	for _, part := range strings.Split(fragment, "&") {
		name, value, hasValue := strings.Cut(part, "=")
		if seen[name] {
			return fmt.Errorf("%w: duplicate %q", common.ErrInvalidLinkFormat, name)
		}
		seen[name] = true

		switch {
		case name == flagPassword && !hasValue:
			d.PasswordRequired = true
		case name == paramKey && hasValue:
			key, err := decode(value)
			if err != nil || len(key) != cryptox.KeySize {
				return fmt.Errorf("%w: key", common.ErrInvalidLinkFormat)
			}
			d.Key = cryptox.SymmetricKey(key)
		case name == paramSalt && hasValue:
			salt, err := decode(value)
			if err != nil || len(salt) == 0 {
				return fmt.Errorf("%w: salt", common.ErrInvalidLinkFormat)
			}
			d.Salt = salt
		default:
			return fmt.Errorf("%w: unexpected fragment field", common.ErrInvalidLinkFormat)
		}
	}

	if d.PasswordRequired == (d.Key != nil) {
		return fmt.Errorf("%w: fragment must hold either a key or the password flag", common.ErrInvalidLinkFormat)
	}
	return nil
}

// decode accepts padded and unpadded base64url.
func decode(s string) ([]byte, error) {
	return b64.DecodeString(strings.TrimRight(s, "="))
}

func normalizeBase(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("%w: base url", common.ErrInvalidLinkFormat)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return "", fmt.Errorf("%w: base url must not carry a query or fragment", common.ErrInvalidLinkFormat)
	}
	return strings.TrimRight(u.String(), pathSeparator), nil
}
