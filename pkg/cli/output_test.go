package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	err := Output(&buf, map[string]any{"address": "abc", "score": 1.0}, FormatJSON)
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"address": "abc"`) {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestOutputYAMLDefault(t *testing.T) {
	var buf bytes.Buffer
	if err := Output(&buf, map[string]string{"status": "ok"}, ""); err != nil {
		t.Fatalf("Output: %v", err)
	}
	if !strings.Contains(buf.String(), "status: ok") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestOutputUnknownFormat(t *testing.T) {
	if err := Output(&bytes.Buffer{}, "x", "xml"); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestCardRender(t *testing.T) {
	card := Card{
		Styles: NewStyles(DefaultTheme),
		Title:  "Wallet",
		Rows: [][2]string{
			{"Address", "abc123"},
			{"Mnemonic", "twelve words"},
		},
	}
	out := card.Render()
	for _, want := range []string{"Wallet", "Address", "abc123", "Mnemonic"} {
		if !strings.Contains(out, want) {
			t.Errorf("card missing %q:\n%s", want, out)
		}
	}
}
