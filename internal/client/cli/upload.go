package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/uploadhaven/internal/client/services"
	"github.com/spf13/cobra"
)

type uploadFlags struct {
	password       bool
	accessPassword bool
	expiry         time.Duration
	category       string
	algorithm      string
	optionsFile    string
}

func (a *App) uploadCmd() *cobra.Command {
	var f uploadFlags

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Encrypt a file and print its share link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.upload(cmd, args[0], &f)
		},
	}

	cmd.Flags().BoolVarP(&f.password, "password", "p", false, "derive the key from a password instead of embedding it in the link")
	cmd.Flags().BoolVar(&f.accessPassword, "access-password", false, "also generate a password the server checks before serving the file")
	cmd.Flags().DurationVarP(&f.expiry, "expiry", "e", 0, "how long the file stays available (default from config)")
	cmd.Flags().StringVar(&f.category, "category", "", "optional coarse category: media, document, archive, other")
	cmd.Flags().StringVar(&f.algorithm, "algorithm", "", "cipher: AES256-GCM or ChaCha20-Poly1305")
	cmd.Flags().StringVar(&f.optionsFile, "options", "", "JSON file with upload options; flags override it")
	return cmd
}

func (a *App) upload(cmd *cobra.Command, path string, f *uploadFlags) error {
	opts := &services.UploadOptions{}
	if f.optionsFile != "" {
		r, err := os.Open(f.optionsFile)
		if err != nil {
			return err
		}
		opts, err = services.DecodeUploadOptions(r)
		r.Close()
		if err != nil {
			return err
		}
	}
	defer opts.Wipe()

	fl := cmd.Flags()
	if fl.Changed("password") && f.password {
		opts.KeyMode = services.KeyModePassword
	}
	if fl.Changed("access-password") {
		opts.GenerateAccessPassword = f.accessPassword
	}
	if fl.Changed("expiry") {
		opts.Expiry = f.expiry
	}
	if fl.Changed("category") {
		opts.Category = f.category
	}
	if fl.Changed("algorithm") {
		opts.Algorithm = f.algorithm
	}

	if opts.KeyMode == services.KeyModePassword && len(opts.Password) == 0 {
		pw, err := GetNewPassword(a.errOut)
		if err != nil {
			return err
		}
		opts.Password = pw
	}

	src, err := services.SourceFromFile(path)
	if err != nil {
		return err
	}

	res, err := a.uploader.Upload(cmd.Context(), src, *opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Share link: %s\n", res.ShareURL)
	fmt.Fprintf(a.out, "Expires:    %s\n", res.ExpiresAt.Format(time.RFC3339))
	if res.AccessPassword != "" {
		fmt.Fprintf(a.out, "Access password: %s\n", res.AccessPassword)
	}
	if res.PasswordDerived {
		fmt.Fprintln(a.out, "The recipient also needs the password. Send it through a different channel.")
	}
	return nil
}
