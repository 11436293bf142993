package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/uploadhaven/internal/client/services"
	"github.com/dmitrijs2005/uploadhaven/internal/common"
	"github.com/dmitrijs2005/uploadhaven/internal/filex"
	"github.com/spf13/cobra"
)

const fallbackFilename = "download.bin"

type downloadFlags struct {
	out            string
	stdout         bool
	accessPassword bool
}

func (a *App) downloadCmd() *cobra.Command {
	var f downloadFlags

	cmd := &cobra.Command{
		Use:   "download <link>",
		Short: "Download and decrypt a shared file",
		Long:  `Nothing is written to disk unless --out is given. Quote the link: the part after '#' holds the key.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.download(cmd.Context(), args[0], &f)
		},
	}

	cmd.Flags().StringVarP(&f.out, "out", "o", "", "file or directory to save into; an existing file is never overwritten")
	cmd.Flags().BoolVar(&f.stdout, "stdout", false, "write the decrypted content to standard output")
	cmd.Flags().BoolVar(&f.accessPassword, "access-password", false, "prompt for the server-side access password")
	return cmd
}

func (a *App) download(ctx context.Context, link string, f *downloadFlags) error {
	opts := services.DownloadOptions{
		PasswordPrompt: func(context.Context) ([]byte, error) {
			return GetPassword(a.errOut, "Password")
		},
	}
	if f.accessPassword {
		ap, err := GetPassword(a.errOut, "Access password")
		if err != nil {
			return err
		}
		opts.AccessPassword = string(ap)
		common.WipeByteArray(ap)
	}

	dl, err := a.downloader.Download(ctx, link, opts)
	if err != nil {
		return err
	}
	defer dl.Wipe()

	fmt.Fprintf(a.errOut, "File: %s (%s, %d bytes)\n", dl.Filename, dl.MimeType, dl.Size)

	if f.stdout {
		if _, err := a.out.Write(dl.Plaintext); err != nil {
			return err
		}
	}
	if f.out == "" {
		if !f.stdout {
			fmt.Fprintln(a.errOut, "Nothing saved; use --out to write the file.")
		}
		return nil
	}

	path := f.out
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, safeFilename(dl.Filename))
	}
	if err := filex.WriteNew(path, dl.Plaintext); err != nil {
		return err
	}
	fmt.Fprintf(a.errOut, "Saved to %s\n", path)
	return nil
}

// safeFilename strips any directory part from a name that came out of the
// encrypted package.
func safeFilename(name string) string {
	base := filepath.Base(filepath.Clean(string(filepath.Separator) + name))
	if base == "." || base == string(filepath.Separator) || base == ".." {
		return fallbackFilename
	}
	return base
}
