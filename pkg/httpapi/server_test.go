package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kestrellabs/voicevault/pkg/accounts"
	"github.com/kestrellabs/voicevault/pkg/audio"
	"github.com/kestrellabs/voicevault/pkg/identity"
	"github.com/kestrellabs/voicevault/pkg/stt"
	"github.com/kestrellabs/voicevault/pkg/voiceauth"
	"github.com/kestrellabs/voicevault/pkg/wallet"
)

const testPhrase = "the quick brown fox jumps over the lazy dog"

type staticDecoder struct{}

func (staticDecoder) Decode(context.Context, []byte) (audio.Sample, error) {
	return audio.Sample{Data: make([]float32, 16000), Rate: 16000}, nil
}

type staticExtractor struct{ vec []float32 }

func (e staticExtractor) Extract([]float32, int) ([]float32, error) {
	return e.vec, nil
}

func newTestServer(t *testing.T, secret []byte) (*Server, *accounts.Memory) {
	t.Helper()
	store := accounts.NewMemory()
	t.Cleanup(func() { store.Close() })

	vec := make([]float32, 59)
	for i := range vec {
		vec[i] = float32(i) + 1
	}
	auth, err := voiceauth.New(voiceauth.Config{
		Store: store,
		Transcriber: stt.TranscribeFunc(func(context.Context, []byte) (string, error) {
			return testPhrase, nil
		}),
		Decoder:   staticDecoder{},
		Extractor: staticExtractor{vec: vec},
		Logger:    slog.New(slog.DiscardHandler),
	})
	if err != nil {
		t.Fatalf("voiceauth.New: %v", err)
	}
	srv, err := New(Config{
		Auth:      auth,
		Store:     store,
		JWTSecret: secret,
		TokenTTL:  time.Hour,
		Logger:    slog.New(slog.DiscardHandler),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv, store
}

func authRequest(t *testing.T, path string, w *wallet.Wallet, message string, fields map[string]string) *http.Request {
	t.Helper()
	sig, err := w.Sign(message)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	form := map[string]string{
		"wallet_address": w.Address,
		"message":        message,
		"signature":      sig,
		"phrase":         testPhrase,
	}
	for k, v := range fields {
		form[k] = v
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range form {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	fw, err := mw.CreateFormFile("audio", "sample.wav")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write([]byte("fake-wav-bytes")); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal %q: %v", raw, err)
	}
	return out
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestCreateWallet(t *testing.T) {
	srv, store := newTestServer(t, nil)
	resp, err := srv.App().Test(httptest.NewRequest(http.MethodPost, "/create-wallet", nil))
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	addr, _ := body["wallet_address"].(string)
	if addr == "" {
		t.Fatal("response missing wallet_address")
	}
	mnemonic, _ := body["mnemonic"].(string)
	secret, _ := body["private_key"].(string)
	if mnemonic == "" || secret == "" {
		t.Error("response missing recovery material")
	}

	rec, err := store.Get(context.Background(), addr)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Type != accounts.TypeCustodial {
		t.Errorf("expected custodial account, got %q", rec.Type)
	}
	if rec.Enrolled() {
		t.Error("fresh wallet must have no voiceprint")
	}
}

func TestEnrollThenVerifyIssuesToken(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")
	srv, _ := newTestServer(t, secret)
	w, err := wallet.New()
	if err != nil {
		t.Fatalf("wallet.New: %v", err)
	}

	resp, err := srv.App().Test(authRequest(t, "/enroll", w, identity.ChallengeEnroll, nil))
	if err != nil {
		t.Fatalf("Test enroll: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("enroll: expected 200, got %d: %s", resp.StatusCode, body)
	}

	resp, err = srv.App().Test(authRequest(t, "/verify", w, identity.ChallengeVerify, nil))
	if err != nil {
		t.Fatalf("Test verify: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify: expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["verified"] != true {
		t.Fatalf("expected verified decision, got %v", body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("verified decision must carry a session token")
	}
	subject, err := VerifyToken(secret, token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if subject != w.Address {
		t.Errorf("token subject %q, want %q", subject, w.Address)
	}
}

func TestVerifyUnknownWallet(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	w, err := wallet.New()
	if err != nil {
		t.Fatalf("wallet.New: %v", err)
	}
	resp, err := srv.App().Test(authRequest(t, "/verify", w, identity.ChallengeVerify, nil))
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestEnrollForgedSignature(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	w, err := wallet.New()
	if err != nil {
		t.Fatalf("wallet.New: %v", err)
	}
	forger, err := wallet.New()
	if err != nil {
		t.Fatalf("wallet.New: %v", err)
	}
	sig, err := forger.Sign(identity.ChallengeEnroll)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	req := authRequest(t, "/enroll", w, identity.ChallengeEnroll, map[string]string{"signature": sig})
	resp, err := srv.App().Test(req)
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if detail, _ := body["detail"].(string); detail == "" {
		t.Error("error response must carry a detail message")
	}
}

func TestEnrollMissingAudio(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	w, err := wallet.New()
	if err != nil {
		t.Fatalf("wallet.New: %v", err)
	}
	sig, err := w.Sign(identity.ChallengeEnroll)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("wallet_address", w.Address)
	mw.WriteField("message", identity.ChallengeEnroll)
	mw.WriteField("signature", sig)
	mw.WriteField("phrase", testPhrase)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/enroll", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := srv.App().Test(req)
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
