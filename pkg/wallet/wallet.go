// Package wallet generates Solana-style custodial wallets: a BIP-39
// mnemonic, an Ed25519 keypair derived from the first 32 seed bytes,
// and a base58 address that is the public key's direct encoding.
package wallet

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/tyler-smith/go-bip39"
)

// Wallet is a freshly generated keypair with its recovery material.
// The secret is the 64-byte Ed25519 private key (seed || public key),
// base58-encoded, matching the common wallet export format.
type Wallet struct {
	Address  string `json:"wallet_address"`
	Mnemonic string `json:"mnemonic"`
	Secret   string `json:"private_key"`
}

// New generates a wallet from fresh 128-bit entropy (12-word mnemonic).
func New() (*Wallet, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return nil, fmt.Errorf("wallet: entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, fmt.Errorf("wallet: mnemonic: %w", err)
	}
	return FromMnemonic(mnemonic)
}

// FromMnemonic derives the wallet for an existing mnemonic. The same
// mnemonic always yields the same address.
func FromMnemonic(mnemonic string) (*Wallet, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("wallet: invalid mnemonic")
	}
	seed := bip39.NewSeed(mnemonic, "")
	priv := ed25519.NewKeyFromSeed(seed[:ed25519.SeedSize])
	pub := priv.Public().(ed25519.PublicKey)

	return &Wallet{
		Address:  base58.Encode(pub),
		Mnemonic: mnemonic,
		Secret:   base58.Encode(priv),
	}, nil
}

// Sign signs the exact UTF-8 bytes of message with the wallet's
// private key and returns the base58-encoded signature.
func (w *Wallet) Sign(message string) (string, error) {
	priv, err := base58.Decode(w.Secret)
	if err != nil || len(priv) != ed25519.PrivateKeySize {
		return "", fmt.Errorf("wallet: malformed private key")
	}
	return base58.Encode(ed25519.Sign(priv, []byte(message))), nil
}
