// Package pack turns a file into an encrypted envelope and back.
//
// # Layout
//
// The original filename, mime type and size are serialized together with
// the plaintext before encryption, so the server never sees them:
//
//	"UHPK" | version (1 byte) | uvarint header length | header | plaintext
//
// The header is a protobuf wire-format message with three fields
// (1: filename, 2: mime type, 3: size). Unknown fields are skipped so newer
// writers stay readable.
//
// # Errors
//
// UnpackageFromDownload reports cipher failures as common.ErrDecryption and
// layout failures as common.ErrMalformedPackage. EnvelopeFromParts reports
// common.ErrSizeMismatch when the stored blob length disagrees with the
// declared size.
package pack
