// Package identity proves control of a wallet's private key.
//
// A wallet address is the base58 encoding of an Ed25519 public key (the
// Solana address convention), so the address doubles as the
// verification key. Binding is proven by signing a fixed per-flow
// challenge message; enrollment and verification use distinct
// challenges so a signature captured during one flow cannot be replayed
// to satisfy the other.
package identity

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
)

// Per-flow challenge messages. Clients sign exactly these strings.
const (
	// ChallengeEnroll is the message signed to authorize enrollment.
	ChallengeEnroll = "voicevault:enroll:v1"

	// ChallengeVerify is the message signed to authorize verification.
	ChallengeVerify = "voicevault:verify:v1"
)

// VerifyBinding reports whether signature proves control of the private
// key behind address over the exact UTF-8 bytes of message. Address and
// signature are base58; any decode or size failure is a verification
// failure, never a panic or error.
func VerifyBinding(address, message, signature string) bool {
	pub, err := base58.Decode(address)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false
	}
	sig, err := base58.Decode(signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), []byte(message), sig)
}
