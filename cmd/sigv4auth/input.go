package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
)

var errCancelled = errors.New("cancelled")

// readInput reads path, or r when path is empty or "-". Trailing newlines are
// dropped so that files saved by editors sign the same as the exact text.
func readInput(path string, r io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)

	if path == "" || path == "-" {
		data, err = io.ReadAll(r)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}

	return strings.TrimRight(string(data), "\r\n"), nil
}

// promptSecret asks for a secret key without echoing it.
func promptSecret(label string) (string, error) {
	prompt := promptui.Prompt{
		Label: label,
		Mask:  '*',
		Validate: func(input string) error {
			if input == "" {
				return errors.New("secret key is required")
			}
			return nil
		},
	}

	secret, err := prompt.Run()
	if err != nil {
		return "", handlePromptError(err)
	}
	return secret, nil
}

func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) {
		return errCancelled
	}
	return err
}
