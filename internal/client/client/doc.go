// Package client talks to the UploadHaven storage server.
//
// # Overview
//
// Storage is the transport-agnostic contract the upload and download flows
// depend on: store a ciphertext with its public metadata, read the metadata
// alone, read the ciphertext, and trade an access password for a download
// token. HTTPStorage implements it over the server's JSON/HTTP API.
//
// # Error Handling
//
// Responses are mapped onto the sentinels in internal/common so callers can
// use errors.Is: ErrNotFoundOrExpired (404, 410), ErrAccessDenied (401,
// 403), ErrSizeMismatch and ErrFileTooLarge (400, 413), and ErrUnavailable
// for transport failures and 5xx/429. ErrUnavailable is the only retryable
// kind. Context cancellation is returned as the context error.
//
// The ciphertext is sent and received byte-exact; the client never
// inspects it.
package client
