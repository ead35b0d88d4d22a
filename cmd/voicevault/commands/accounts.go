package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kestrellabs/voicevault/cmd/voicevault/internal/config"
	"github.com/kestrellabs/voicevault/pkg/accounts"
	"github.com/kestrellabs/voicevault/pkg/cli"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Inspect and manage enrolled accounts",
	Long: `Operate directly on the account store. The server must not be
running against the same data directory.`,
}

var accountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored wallet addresses",
	RunE:  runAccountsList,
}

var accountsShowCmd = &cobra.Command{
	Use:   "show <address>",
	Short: "Show one account record",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountsShow,
}

var accountsDeleteCmd = &cobra.Command{
	Use:   "delete <address>",
	Short: "Delete an account and its voiceprint",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountsDelete,
}

func init() {
	accountsCmd.AddCommand(accountsListCmd, accountsShowCmd, accountsDeleteCmd)
	rootCmd.AddCommand(accountsCmd)
}

func openConfiguredStore() (accounts.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("no data_dir configured; accounts commands need a persistent store")
	}
	return accounts.NewBadger(accounts.BadgerOptions{Dir: cfg.DataDir})
}

func runAccountsList(cmd *cobra.Command, _ []string) error {
	store, err := openConfiguredStore()
	if err != nil {
		return err
	}
	defer store.Close()

	addrs, err := store.List(cmd.Context())
	if err != nil {
		return err
	}
	for _, addr := range addrs {
		fmt.Fprintln(cmd.OutOrStdout(), addr)
	}
	if len(addrs) == 0 {
		cli.PrintWarning("no accounts stored")
	}
	return nil
}

func runAccountsShow(cmd *cobra.Command, args []string) error {
	store, err := openConfiguredStore()
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return cli.Output(cmd.OutOrStdout(), map[string]any{
		"address":    rec.Address,
		"type":       rec.Type,
		"created_at": rec.CreatedAt,
		"enrolled":   rec.Enrolled(),
		"dims":       len(rec.VoicePrint),
	}, cli.FormatYAML)
}

func runAccountsDelete(cmd *cobra.Command, args []string) error {
	store, err := openConfiguredStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	cli.PrintSuccess("deleted %s", args[0])
	return nil
}
