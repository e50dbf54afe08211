package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/sigv4auth"
	"github.com/sagarc03/sigv4auth/client"
	"github.com/sagarc03/sigv4auth/config"
	sigv4http "github.com/sagarc03/sigv4auth/http"
)

var errInvalidSignature = errors.New("signature is not valid")

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a signature against the configured keys",
	Long: `Validate a signature for a string-to-sign using the same key stores
as the server.

The string-to-sign is read from --file or stdin. The command exits non-zero
when the signature is not valid. With --explain the reason for a rejection is
printed; the HTTP API never reveals it.

Examples:
  # Validate a string-to-sign stored in a file
  sigv4auth validate --access-key AKIDEXAMPLE --signature 5d67... -f sts.txt

  # Read from stdin and show why it was rejected
  printf '%s' "$STS" | sigv4auth validate --access-key AKIDEXAMPLE --signature 5d67... --explain

  # Ask a running server instead of the local key stores
  sigv4auth validate --remote http://localhost:5709 --access-key AKIDEXAMPLE --signature 5d67... -f sts.txt`,
	RunE: runValidate,
}

var (
	validateAccessKey string
	validateSignature string
	validateFile      string
	validateExplain   bool
	validateRemote    string
)

func init() {
	validateCmd.Flags().StringVar(&validateAccessKey, "access-key", "", "access key the signature claims")
	validateCmd.Flags().StringVar(&validateSignature, "signature", "", "hex signature to check")
	validateCmd.Flags().StringVarP(&validateFile, "file", "f", "-", "file holding the string-to-sign (- for stdin)")
	validateCmd.Flags().BoolVar(&validateExplain, "explain", false, "print the rejection reason")
	validateCmd.Flags().StringVar(&validateRemote, "remote", "", "URL of a sigv4auth server to validate against")
	validateCmd.MarkFlagsMutuallyExclusive("explain", "remote")
	_ = validateCmd.MarkFlagRequired("access-key")
	_ = validateCmd.MarkFlagRequired("signature")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	stringToSign, err := readInput(validateFile, cmd.InOrStdin())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if validateRemote != "" {
		c, err := client.New(validateRemote)
		if err != nil {
			return err
		}
		return reportValid(ctx, out, c, stringToSign)
	}

	store, closeStore, err := openSecretStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	validator := sigv4auth.NewValidator(store, sigv4auth.WithLogger(slog.Default()))

	if validateExplain {
		err = validator.Verify(ctx, stringToSign, validateSignature, validateAccessKey)
		if errors.Is(err, sigv4auth.ErrResolverUnavailable) {
			return err
		}
		_, _ = fmt.Fprintln(out, sigv4auth.OutcomeOf(err))
		if err != nil {
			return errInvalidSignature
		}
		return nil
	}

	return reportValid(ctx, out, validator, stringToSign)
}

func reportValid(ctx context.Context, out io.Writer, v sigv4http.Validator, stringToSign string) error {
	valid, err := v.ValidateRequest(ctx, stringToSign, validateSignature, validateAccessKey)
	if err != nil {
		return err
	}
	if !valid {
		_, _ = fmt.Fprintln(out, "invalid")
		return errInvalidSignature
	}

	_, _ = fmt.Fprintln(out, "valid")
	return nil
}
