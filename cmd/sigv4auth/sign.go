package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/sigv4auth"
)

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Compute the signature for a string-to-sign",
	Long: `Compute the signature a client holding the secret key would send.

The string-to-sign is read from --file or stdin. Alternatively pass
--canonical-request together with --region and --service to build the
string-to-sign first; it is then printed to stderr.

The secret is prompted for when --secret is not given.

Examples:
  sigv4auth sign -f sts.txt
  sigv4auth sign --canonical-request req.txt --region us-east-1 --service s3`,
	RunE: runSign,
}

var (
	signSecret           string
	signFile             string
	signCanonicalRequest string
	signRegion           string
	signService          string
	signTime             string
)

func init() {
	signCmd.Flags().StringVar(&signSecret, "secret", "", "secret key (prompted when empty)")
	signCmd.Flags().StringVarP(&signFile, "file", "f", "-", "file holding the string-to-sign (- for stdin)")
	signCmd.Flags().StringVar(&signCanonicalRequest, "canonical-request", "", "file holding a canonical request to build the string-to-sign from")
	signCmd.Flags().StringVar(&signRegion, "region", "us-east-1", "region for a built string-to-sign")
	signCmd.Flags().StringVar(&signService, "service", "s3", "service for a built string-to-sign")
	signCmd.Flags().StringVar(&signTime, "time", "", "request time as 20060102T150405Z for a built string-to-sign (default: now)")
	rootCmd.AddCommand(signCmd)
}

func runSign(cmd *cobra.Command, args []string) error {
	stringToSign, err := signInput(cmd)
	if err != nil {
		return err
	}

	secret := signSecret
	if secret == "" {
		secret, err = promptSecret("Secret Key")
		if err != nil {
			return err
		}
	}

	signature, err := sigv4auth.Sign(secret, stringToSign)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), signature)
	return nil
}

func signInput(cmd *cobra.Command) (string, error) {
	if signCanonicalRequest == "" {
		return readInput(signFile, cmd.InOrStdin())
	}

	canonicalRequest, err := readInput(signCanonicalRequest, cmd.InOrStdin())
	if err != nil {
		return "", err
	}

	requestTime := time.Now().UTC()
	if signTime != "" {
		requestTime, err = time.Parse(sigv4auth.DateTimeFormat, signTime)
		if err != nil {
			return "", fmt.Errorf("parse --time: %w", err)
		}
	}

	scope := sigv4auth.CredentialScope{
		Date:    requestTime.Format(sigv4auth.DateFormat),
		Region:  signRegion,
		Service: signService,
	}
	stringToSign := sigv4auth.BuildStringToSign(requestTime, scope, sigv4auth.HashCanonicalRequest(canonicalRequest))

	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), stringToSign)
	return stringToSign, nil
}
