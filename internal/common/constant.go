// Package common contains shared constants and sentinel errors used across
// UploadHaven components.
package common

// UploadMetadataHeaderName carries the base64url-encoded public metadata of
// an upload request. The request body is the ciphertext itself.
const UploadMetadataHeaderName = "X-Upload-Metadata"

// ExpiresAtHeaderName is set on HEAD responses so a client can learn the
// validity window without fetching the body.
const ExpiresAtHeaderName = "X-Expires-At"

// ShareLinkPathPrefix is the path segment under which short identifiers are
// published in share links.
const ShareLinkPathPrefix = "/s/"
