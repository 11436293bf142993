package pack

import (
	"bytes"
	"fmt"

	"github.com/dmitrijs2005/uploadhaven/internal/common"
	"github.com/dmitrijs2005/uploadhaven/internal/cryptox"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	magic         = "UHPK"
	formatVersion = 1

	fieldFilename protowire.Number = 1
	fieldMimeType protowire.Number = 2
	fieldSize     protowire.Number = 3
)

// FileInfo is the identifying data that travels inside the ciphertext.
type FileInfo struct {
	Filename string
	MimeType string
	Size     int64
}

// Params control how a package is sealed. Salt and Iterations are set only
// for password-derived keys and are copied into the public metadata.
type Params struct {
	Algorithm  string
	Salt       []byte
	Iterations int
	Category   string
}

// Envelope is the stored form of an upload.
type Envelope struct {
	Algorithm  string
	IV         []byte
	Salt       []byte
	Iterations int
	Ciphertext []byte
}

// Payload is a decrypted envelope.
type Payload struct {
	FileInfo
	Plaintext []byte
}

// Wipe zeroes the plaintext.
func (p *Payload) Wipe() {
	if p == nil {
		return
	}
	common.WipeByteArray(p.Plaintext)
}

// PackageForUpload serializes info with plaintext, encrypts the result and
// returns the envelope with its public metadata. info.Size may be left zero;
// otherwise it must match the plaintext length.
func PackageForUpload(plaintext []byte, info FileInfo, key cryptox.SymmetricKey, p Params) (*Envelope, *PublicMetadata, error) {
	if info.Size == 0 {
		info.Size = int64(len(plaintext))
	}
	if info.Size != int64(len(plaintext)) {
		return nil, nil, fmt.Errorf("%w: declared size differs from content", common.ErrInvalidFile)
	}
	if !IsValidCategory(p.Category) {
		return nil, nil, fmt.Errorf("%w: unknown category", common.ErrInvalidOptions)
	}
	alg := p.Algorithm
	if alg == "" {
		alg = cryptox.DefaultAlgorithm
	}

	inner := encodeInner(info, plaintext)
	defer common.WipeByteArray(inner)

	ct, iv, err := cryptox.EncryptWith(alg, inner, key)
	if err != nil {
		return nil, nil, fmt.Errorf("encrypt package: %w", err)
	}
	if len(ct) != len(inner)+cryptox.TagSize {
		return nil, nil, common.ErrSizeMismatch
	}

	env := &Envelope{
		Algorithm:  alg,
		IV:         iv,
		Salt:       bytes.Clone(p.Salt),
		Iterations: p.Iterations,
		Ciphertext: ct,
	}
	return env, env.Metadata(p.Category), nil
}

// Metadata builds the public record for the envelope.
func (e *Envelope) Metadata(category string) *PublicMetadata {
	return &PublicMetadata{
		Size:       int64(len(e.Ciphertext)),
		Algorithm:  e.Algorithm,
		IV:         bytes.Clone(e.IV),
		Salt:       bytes.Clone(e.Salt),
		Iterations: e.Iterations,
		Category:   category,
	}
}

// EnvelopeFromParts rebuilds an envelope from what the server returned.
func EnvelopeFromParts(meta *PublicMetadata, blob []byte) (*Envelope, error) {
	if err := meta.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedPackage, err)
	}
	if int64(len(blob)) != meta.Size {
		return nil, common.ErrSizeMismatch
	}
	return &Envelope{
		Algorithm:  meta.Algorithm,
		IV:         meta.IV,
		Salt:       meta.Salt,
		Iterations: meta.Iterations,
		Ciphertext: blob,
	}, nil
}

// UnpackageFromDownload decrypts env and splits off the embedded file info.
func UnpackageFromDownload(env *Envelope, key cryptox.SymmetricKey) (*Payload, error) {
	if env == nil {
		return nil, common.ErrMalformedPackage
	}
	inner, err := cryptox.DecryptWith(env.Algorithm, env.Ciphertext, key, env.IV)
	if err != nil {
		return nil, err
	}

	payload, err := decodeInner(inner)
	if err != nil {
		common.WipeByteArray(inner)
		return nil, err
	}
	return payload, nil
}

func encodeInner(info FileInfo, plaintext []byte) []byte {
	var hdr []byte
	hdr = protowire.AppendTag(hdr, fieldFilename, protowire.BytesType)
	hdr = protowire.AppendString(hdr, info.Filename)
	hdr = protowire.AppendTag(hdr, fieldMimeType, protowire.BytesType)
	hdr = protowire.AppendString(hdr, info.MimeType)
	hdr = protowire.AppendTag(hdr, fieldSize, protowire.VarintType)
	hdr = protowire.AppendVarint(hdr, uint64(info.Size))

	out := make([]byte, 0, len(magic)+1+protowire.SizeVarint(uint64(len(hdr)))+len(hdr)+len(plaintext))
	out = append(out, magic...)
	out = append(out, formatVersion)
	out = protowire.AppendVarint(out, uint64(len(hdr)))
	out = append(out, hdr...)
	out = append(out, plaintext...)
	return out
}

// decodeInner slices plaintext out of buf without copying.
func decodeInner(buf []byte) (*Payload, error) {
	if len(buf) < len(magic)+1 || string(buf[:len(magic)]) != magic {
		return nil, fmt.Errorf("%w: bad magic", common.ErrMalformedPackage)
	}
	if buf[len(magic)] != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", common.ErrMalformedPackage, buf[len(magic)])
	}
	rest := buf[len(magic)+1:]

	hdrLen, n := protowire.ConsumeVarint(rest)
	if n < 0 || hdrLen > uint64(len(rest)-n) {
		return nil, fmt.Errorf("%w: header length", common.ErrMalformedPackage)
	}
	rest = rest[n:]
	hdr, body := rest[:hdrLen], rest[hdrLen:]

	p := &Payload{}
	sizeSeen := false
	for len(hdr) > 0 {
		num, typ, n := protowire.ConsumeTag(hdr)
		if n < 0 {
			return nil, fmt.Errorf("%w: header tag", common.ErrMalformedPackage)
		}
		hdr = hdr[n:]

		switch {
		case num == fieldFilename && typ == protowire.BytesType:
			p.Filename, n = protowire.ConsumeString(hdr)
		case num == fieldMimeType && typ == protowire.BytesType:
			p.MimeType, n = protowire.ConsumeString(hdr)
		case num == fieldSize && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(hdr)
			p.Size = int64(v)
			sizeSeen = true
		default:
			n = protowire.ConsumeFieldValue(num, typ, hdr)
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: header field %d", common.ErrMalformedPackage, num)
		}
		hdr = hdr[n:]
	}

	if !sizeSeen || p.Size != int64(len(body)) {
		return nil, fmt.Errorf("%w: size field", common.ErrMalformedPackage)
	}
	p.Plaintext = body
	return p, nil
}
