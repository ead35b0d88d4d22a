package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kestrellabs/voicevault/cmd/voicevault/internal/config"
	"github.com/kestrellabs/voicevault/pkg/accounts"
	"github.com/kestrellabs/voicevault/pkg/audio"
	"github.com/kestrellabs/voicevault/pkg/httpapi"
	"github.com/kestrellabs/voicevault/pkg/stt"
	"github.com/kestrellabs/voicevault/pkg/voiceauth"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the voice authentication HTTP server",
	Long: `Serve the enrollment and verification API.

Configuration comes from --config (YAML) plus VOICEVAULT_* environment
variables; a .env file in the working directory is honored. Without a
data directory the account store is in-memory and all enrollments are
lost on restart.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := slog.Default()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	if cfg.DataDir == "" {
		logger.Warn("no data_dir configured, enrollments will not survive restart")
	}

	transcriber, err := buildTranscriber(cfg)
	if err != nil {
		return err
	}

	auth, err := voiceauth.New(voiceauth.Config{
		Store:       store,
		Transcriber: transcriber,
		Decoder:     &audio.Decoder{FFmpegPath: cfg.FFmpeg},
		Policy:      buildPolicy(cfg),
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	srv, err := httpapi.New(httpapi.Config{
		Auth:      auth,
		Store:     store,
		JWTSecret: []byte(cfg.JWT.Secret),
		TokenTTL:  cfg.JWT.TTL,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("shutting down", "signal", sig.String())
		if err := srv.Shutdown(); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("listening",
		"addr", cfg.Listen,
		"stt", cfg.STT.Backend,
		"store", storeKind(cfg))
	if err := srv.Listen(cfg.Listen); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func openStore(cfg *config.Config) (accounts.Store, error) {
	if cfg.DataDir == "" {
		return accounts.NewMemory(), nil
	}
	return accounts.NewBadger(accounts.BadgerOptions{Dir: cfg.DataDir})
}

func storeKind(cfg *config.Config) string {
	if cfg.DataDir == "" {
		return "memory"
	}
	return "badger:" + cfg.DataDir
}

func buildTranscriber(cfg *config.Config) (stt.Transcriber, error) {
	mux := stt.NewMux()
	if err := mux.Handle("google", stt.NewGoogle(cfg.STT.APIKey, stt.WithLanguage(cfg.STT.Language))); err != nil {
		return nil, err
	}
	if cfg.STT.APIKey != "" {
		if err := mux.Handle("openai", stt.NewOpenAI(cfg.STT.APIKey)); err != nil {
			return nil, err
		}
	}
	return mux.Get(cfg.STT.Backend)
}

func buildPolicy(cfg *config.Config) voiceauth.Policy {
	p := voiceauth.DefaultPolicy()
	if cfg.Policy.MinPhraseLen > 0 {
		p.MinPhraseLen = cfg.Policy.MinPhraseLen
	}
	if cfg.Policy.MinWordRatio > 0 {
		p.MinWordRatio = cfg.Policy.MinWordRatio
	}
	if cfg.Policy.EnrollContentScore > 0 {
		p.EnrollContentScore = cfg.Policy.EnrollContentScore
	}
	if cfg.Policy.VerifyContentScore > 0 {
		p.VerifyContentScore = cfg.Policy.VerifyContentScore
	}
	if cfg.Policy.BiometricThreshold > 0 {
		p.BiometricThreshold = cfg.Policy.BiometricThreshold
	}
	if cfg.Policy.STTTimeout > 0 {
		p.STTTimeout = cfg.Policy.STTTimeout
	}
	return p
}
