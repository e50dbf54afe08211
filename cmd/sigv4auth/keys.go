package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/sigv4auth/config"
	"github.com/sagarc03/sigv4auth/keybackend"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage access keys stored in the database",
	Long: `Manage access keys in the configured database table.

Keys from config files and keys files are read-only and not listed here.`,
}

var keysAddCmd = &cobra.Command{
	Use:   "add <access-key>",
	Short: "Add or replace an access key",
	Long: `Store an access key and its secret. An existing key is replaced.

The secret is prompted for when --secret is not given.

Examples:
  sigv4auth keys add AKIDEXAMPLE
  sigv4auth keys add AKIDEXAMPLE --secret "$SECRET"`,
	Args: cobra.ExactArgs(1),
	RunE: runKeysAdd,
}

var keysRemoveCmd = &cobra.Command{
	Use:   "remove <access-key> [access-key] ...",
	Short: "Remove access keys",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runKeysRemove,
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored access keys",
	Args:  cobra.NoArgs,
	RunE:  runKeysList,
}

var (
	keysAddSecret  string
	keysAddMigrate bool
)

func init() {
	keysAddCmd.Flags().StringVar(&keysAddSecret, "secret", "", "secret key (prompted when empty)")
	keysAddCmd.Flags().BoolVar(&keysAddMigrate, "migrate", false, "create the access key table if it does not exist")

	keysCmd.AddCommand(keysAddCmd, keysRemoveCmd, keysListCmd)
	rootCmd.AddCommand(keysCmd)
}

func runKeysAdd(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	accessKey := args[0]

	secret := keysAddSecret
	if secret == "" {
		secret, err = promptSecret(fmt.Sprintf("Secret key for %s", accessKey))
		if err != nil {
			return err
		}
	}

	dbCfg := cfg.Database
	dbCfg.AutoMigrate = dbCfg.AutoMigrate || keysAddMigrate

	repo, closeDB, err := openKeyRepo(ctx, dbCfg)
	if err != nil {
		return err
	}
	defer closeDB()

	info, err := repo.Put(ctx, accessKey, secret)
	if err != nil {
		return fmt.Errorf("add key %s: %w", accessKey, err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "stored %s (%s)\n", info.AccessKey, info.ID)
	return nil
}

func runKeysRemove(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	repo, closeDB, err := openKeyRepo(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer closeDB()

	var missing int
	for _, accessKey := range args {
		err := repo.Delete(ctx, accessKey)
		switch {
		case errors.Is(err, keybackend.ErrKeyNotFound):
			missing++
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "not found: %s\n", accessKey)
		case err != nil:
			return fmt.Errorf("remove key %s: %w", accessKey, err)
		default:
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", accessKey)
		}
	}

	if missing > 0 {
		return fmt.Errorf("%d of %d keys not found", missing, len(args))
	}
	return nil
}

func runKeysList(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	repo, closeDB, err := openKeyRepo(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer closeDB()

	keys, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list keys: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ACCESS KEY\tID\tCREATED\tUPDATED")
	for _, k := range keys {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			k.AccessKey,
			k.ID,
			k.CreatedAt.UTC().Format(time.RFC3339),
			k.UpdatedAt.UTC().Format(time.RFC3339),
		)
	}
	return w.Flush()
}
