package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kestrellabs/voicevault/pkg/cli"
	"github.com/kestrellabs/voicevault/pkg/identity"
	"github.com/kestrellabs/voicevault/pkg/wallet"
)

var (
	keygenMnemonic string
	keygenJSON     bool
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate or recover a wallet keypair",
	Long: `Generate a fresh wallet, or recover one from --mnemonic.

The mnemonic and private key are printed once and stored nowhere.`,
	RunE: runKeygen,
}

func init() {
	keygenCmd.Flags().StringVar(&keygenMnemonic, "mnemonic", "", "recover from an existing mnemonic")
	keygenCmd.Flags().BoolVar(&keygenJSON, "json", false, "print machine-readable JSON")
	rootCmd.AddCommand(keygenCmd)
}

func runKeygen(cmd *cobra.Command, _ []string) error {
	var (
		w   *wallet.Wallet
		err error
	)
	if keygenMnemonic != "" {
		w, err = wallet.FromMnemonic(keygenMnemonic)
	} else {
		w, err = wallet.New()
	}
	if err != nil {
		return err
	}

	if keygenJSON {
		return cli.Output(cmd.OutOrStdout(), w, cli.FormatJSON)
	}

	card := cli.Card{
		Styles: cli.NewStyles(cli.DefaultTheme),
		Title:  "Wallet",
		Rows: [][2]string{
			{"Address", w.Address},
			{"Mnemonic", w.Mnemonic},
			{"Private key", w.Secret},
		},
	}
	fmt.Fprintln(cmd.OutOrStdout(), card.Render())
	cli.PrintWarning("store the mnemonic safely; it cannot be recovered")
	return nil
}

var (
	signMnemonic string
	signFlow     string
)

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign a challenge message with a wallet mnemonic",
	Long: `Sign the enrollment or verification challenge for use with the
/enroll and /verify endpoints.

The --flow flag selects which fixed challenge message is signed;
signatures are not interchangeable between flows.`,
	RunE: runSign,
}

func init() {
	signCmd.Flags().StringVar(&signMnemonic, "mnemonic", "", "wallet mnemonic (required)")
	signCmd.Flags().StringVar(&signFlow, "flow", "enroll", "challenge flow: enroll or verify")
	signCmd.MarkFlagRequired("mnemonic")
	rootCmd.AddCommand(signCmd)
}

func runSign(cmd *cobra.Command, _ []string) error {
	var message string
	switch signFlow {
	case "enroll":
		message = identity.ChallengeEnroll
	case "verify":
		message = identity.ChallengeVerify
	default:
		return fmt.Errorf("unknown flow %q (want enroll or verify)", signFlow)
	}

	w, err := wallet.FromMnemonic(signMnemonic)
	if err != nil {
		return err
	}
	sig, err := w.Sign(message)
	if err != nil {
		return err
	}

	return cli.Output(cmd.OutOrStdout(), map[string]string{
		"wallet_address": w.Address,
		"message":        message,
		"signature":      sig,
	}, cli.FormatJSON)
}
