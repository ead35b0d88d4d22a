// Package main is the entry point for the voicevault CLI.
//
// Usage:
//
//	voicevault [flags] <command> [args]
//
// Commands:
//
//	serve     - Run the voice authentication HTTP server
//	keygen    - Generate or recover a wallet keypair
//	sign      - Sign a challenge message with a wallet mnemonic
//	compare   - Compare the voiceprints of two recordings
//	accounts  - Inspect and manage enrolled accounts
//	version   - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/kestrellabs/voicevault/cmd/voicevault/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
