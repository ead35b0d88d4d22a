package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "voicevault",
	Short: "Voice-biometric wallet authentication",
	Long: `voicevault binds a wallet keypair to its owner's voice.

Enrollment records a spoken passphrase, confirms its content with
speech recognition, and stores a spectral voiceprint under the wallet
address. Verification replays the same pipeline against the enrolled
print and answers with a match decision.

Examples:
  # Run the HTTP server with a config file
  voicevault serve --config voicevault.yaml

  # Generate a wallet and sign the enrollment challenge
  voicevault keygen
  voicevault sign --flow enroll --mnemonic "twelve words ..."

  # Compare two recordings offline
  voicevault compare enrolled.wav probe.ogg`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
}

func initLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
