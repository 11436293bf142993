// Package services drives the client side of UploadHaven: the upload flow
// (validate, derive or generate a key, encrypt, submit, build the share
// link) and the download flow (parse the link, check metadata, obtain the
// key, fetch, decrypt).
//
// Each call to Uploader.Upload or Downloader.Download runs its own state
// machine; nothing mutable is shared between runs except the read-only
// compatibility report. Observers registered with WithObserver see every
// transition and can drive a progress display.
//
// Failures are returned as *FlowError whose Kind is one of the sentinels in
// internal/common. Cryptographic failures during download are always
// reported as common.ErrWrongPasswordOrCorrupted.
package services
