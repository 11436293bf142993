// Package cli is the UploadHaven command-line client.
//
// Commands:
//
//	upload <file>     encrypt a file locally and print its share link
//	download <link>   fetch and decrypt a shared file
//	check             report whether the local crypto primitives work
//
// Encryption and decryption happen in this process; the server only ever
// receives ciphertext and public metadata. Passwords are read from the
// terminal without echo and are never accepted as flags.
package cli
