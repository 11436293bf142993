// Package api holds the JSON shapes exchanged between the CLI and the
// storage server. Ciphertext always travels as a raw request or response
// body; only public metadata is ever encoded here.
package api

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/uploadhaven/internal/common"
	"github.com/dmitrijs2005/uploadhaven/internal/pack"
)

// Routes. {id} is the short identifier.
const (
	RouteFiles   = "/api/files"
	RouteFile    = "/api/files/{id}"
	RouteMeta    = "/api/files/{id}/meta"
	RouteBlob    = "/api/files/{id}/blob"
	RouteAccess  = "/api/files/{id}/access"
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"
)

// UploadMetadata is sent base64url-encoded in the X-Upload-Metadata header
// alongside the ciphertext body.
type UploadMetadata struct {
	pack.PublicMetadata
	ExpiresInSeconds int64  `json:"expires_in_seconds,omitempty"`
	AccessPassword   string `json:"access_password,omitempty"`
}

// UploadResponse is returned by POST /api/files.
type UploadResponse struct {
	ShortID   string    `json:"short_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MetaResponse is returned by GET /api/files/{id}/meta.
type MetaResponse struct {
	Metadata        pack.PublicMetadata `json:"metadata"`
	Valid           bool                `json:"valid"`
	AccessProtected bool                `json:"access_protected"`
}

type AccessRequest struct {
	Password string `json:"password"`
}

type AccessResponse struct {
	Token string `json:"token"`
}

// ErrorResponse is the body of every 4xx/5xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// EncodeUploadMetadata renders m for the X-Upload-Metadata header.
func EncodeUploadMetadata(m *UploadMetadata) (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DecodeUploadMetadata parses the X-Upload-Metadata header. Unknown fields
// are rejected so nothing beyond the public record can be smuggled in.
func DecodeUploadMetadata(header string) (*UploadMetadata, error) {
	if header == "" {
		return nil, fmt.Errorf("%w: missing upload metadata", common.ErrorIncorrectMetadata)
	}
	raw, err := base64.RawURLEncoding.DecodeString(header)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorIncorrectMetadata, err)
	}
	var m UploadMetadata
	if err := decodeStrict(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorIncorrectMetadata, err)
	}
	return &m, nil
}
