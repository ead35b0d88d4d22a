package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/kestrellabs/voicevault/pkg/identity"
	"github.com/kestrellabs/voicevault/pkg/wallet"
)

func runCmd(t *testing.T, args ...string) (stdout string, err error) {
	t.Helper()

	oldStdout := os.Stdout
	rOut, wOut, _ := os.Pipe()
	os.Stdout = wOut

	verbose = false
	configPath = ""

	var cmdOut bytes.Buffer
	rootCmd.SetOut(&cmdOut)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()

	wOut.Close()
	os.Stdout = oldStdout

	var pipeOut bytes.Buffer
	pipeOut.ReadFrom(rOut)
	return cmdOut.String() + pipeOut.String(), err
}

func TestVersion(t *testing.T) {
	out, err := runCmd(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "voicevault") {
		t.Fatalf("expected 'voicevault', got: %s", out)
	}
}

func TestKeygenJSON(t *testing.T) {
	out, err := runCmd(t, "keygen", "--json")
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	var w wallet.Wallet
	if uerr := json.Unmarshal([]byte(out), &w); uerr != nil {
		t.Fatalf("unmarshal %q: %v", out, uerr)
	}
	if w.Address == "" || w.Mnemonic == "" || w.Secret == "" {
		t.Fatalf("incomplete wallet: %+v", w)
	}

	// The printed mnemonic must recover the same address.
	recovered, err := wallet.FromMnemonic(w.Mnemonic)
	if err != nil {
		t.Fatalf("FromMnemonic: %v", err)
	}
	if recovered.Address != w.Address {
		t.Errorf("recovered %s, want %s", recovered.Address, w.Address)
	}
}

func TestSignProducesValidBinding(t *testing.T) {
	w, err := wallet.New()
	if err != nil {
		t.Fatalf("wallet.New: %v", err)
	}

	out, err := runCmd(t, "sign", "--mnemonic", w.Mnemonic, "--flow", "verify")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	var resp struct {
		Address   string `json:"wallet_address"`
		Message   string `json:"message"`
		Signature string `json:"signature"`
	}
	if uerr := json.Unmarshal([]byte(out), &resp); uerr != nil {
		t.Fatalf("unmarshal %q: %v", out, uerr)
	}
	if resp.Message != identity.ChallengeVerify {
		t.Errorf("message = %q", resp.Message)
	}
	if !identity.VerifyBinding(resp.Address, resp.Message, resp.Signature) {
		t.Error("signature does not verify against the printed address")
	}
}

func TestSignRejectsUnknownFlow(t *testing.T) {
	w, err := wallet.New()
	if err != nil {
		t.Fatalf("wallet.New: %v", err)
	}
	if _, err := runCmd(t, "sign", "--mnemonic", w.Mnemonic, "--flow", "login"); err == nil {
		t.Fatal("expected an error for an unknown flow")
	}
}
