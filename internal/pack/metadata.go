package pack

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/uploadhaven/internal/common"
	"github.com/dmitrijs2005/uploadhaven/internal/cryptox"
)

// Coarse content categories. The category is optional and empty unless the
// uploader asks for it.
const (
	CategoryMedia    = "media"
	CategoryDocument = "document"
	CategoryArchive  = "archive"
	CategoryOther    = "other"
)

// IsValidCategory reports whether c is empty or a known category.
func IsValidCategory(c string) bool {
	switch c {
	case "", CategoryMedia, CategoryDocument, CategoryArchive, CategoryOther:
		return true
	}
	return false
}

// PublicMetadata is everything the server is allowed to know about an
// upload. It must never carry anything derived from the plaintext beyond
// the ciphertext length.
type PublicMetadata struct {
	Size       int64     `json:"size"`
	Algorithm  string    `json:"algorithm"`
	IV         []byte    `json:"iv"`
	Salt       []byte    `json:"salt,omitempty"`
	Iterations int       `json:"iterations,omitempty"`
	UploadedAt time.Time `json:"uploaded_at,omitzero"`
	ExpiresAt  time.Time `json:"expires_at,omitzero"`
	Category   string    `json:"category,omitempty"`
}

// PasswordDerived reports whether the key was derived from a password.
func (m *PublicMetadata) PasswordDerived() bool {
	return len(m.Salt) > 0
}

// Validate checks the fields a client relies on before downloading.
func (m *PublicMetadata) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: no metadata", common.ErrorIncorrectMetadata)
	}
	if !cryptox.IsSupportedAlgorithm(m.Algorithm) {
		return fmt.Errorf("%w: algorithm", common.ErrorIncorrectMetadata)
	}
	if len(m.IV) != cryptox.IVSize {
		return fmt.Errorf("%w: iv length", common.ErrorIncorrectMetadata)
	}
	if m.Size < cryptox.TagSize {
		return fmt.Errorf("%w: size", common.ErrorIncorrectMetadata)
	}
	if len(m.Salt) > 0 || m.Iterations != 0 {
		if len(m.Salt) < cryptox.SaltSize {
			return fmt.Errorf("%w: salt length", common.ErrorIncorrectMetadata)
		}
		if m.Iterations < cryptox.MinAcceptedIterations || m.Iterations > cryptox.MaxAcceptedIterations {
			return fmt.Errorf("%w: iterations", common.ErrorIncorrectMetadata)
		}
	}
	if !IsValidCategory(m.Category) {
		return fmt.Errorf("%w: category", common.ErrorIncorrectMetadata)
	}
	return nil
}
