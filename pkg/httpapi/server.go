// Package httpapi exposes the voice authentication flows over HTTP.
//
// The surface is three POST endpoints taking multipart form data plus a
// health probe. Protocol failures map voiceauth.Error statuses onto
// HTTP responses; completed verifications always answer 200 with the
// decision body, verified or not.
package httpapi

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/kestrellabs/voicevault/pkg/accounts"
	"github.com/kestrellabs/voicevault/pkg/voiceauth"
	"github.com/kestrellabs/voicevault/pkg/wallet"
)

// MaxAudioBytes caps an uploaded recording. Ten seconds of 16-bit
// 48kHz stereo is under 2MiB; anything past this is not a passphrase.
const MaxAudioBytes = 10 << 20

// Config assembles a Server. Auth and Store are required. A non-empty
// JWTSecret enables session token issuance on verified decisions.
type Config struct {
	Auth      *voiceauth.Authenticator
	Store     accounts.Store
	JWTSecret []byte
	TokenTTL  time.Duration
	Logger    *slog.Logger
}

// Server is the HTTP front of the authentication service.
type Server struct {
	app    *fiber.App
	auth   *voiceauth.Authenticator
	store  accounts.Store
	tokens *tokenIssuer
	logger *slog.Logger
}

// New builds the Fiber application with all routes registered.
func New(cfg Config) (*Server, error) {
	if cfg.Auth == nil {
		return nil, errors.New("httpapi: authenticator is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("httpapi: store is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}

	s := &Server{
		auth:   cfg.Auth,
		store:  cfg.Store,
		logger: cfg.Logger,
	}
	if len(cfg.JWTSecret) > 0 {
		s.tokens = &tokenIssuer{secret: cfg.JWTSecret, ttl: cfg.TokenTTL}
	}

	s.app = fiber.New(fiber.Config{
		BodyLimit:             MaxAudioBytes + 1<<20,
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})
	s.app.Use(recover.New())
	s.app.Use(requestid.New(requestid.Config{
		Generator: func() string { return uuid.NewString() },
	}))
	s.app.Use(s.logRequests)
	s.app.Use(cors.New(cors.Config{
		AllowMethods: "GET,POST,OPTIONS",
	}))

	s.app.Get("/healthz", s.handleHealth)
	s.app.Post("/create-wallet", s.handleCreateWallet)
	s.app.Post("/enroll", s.handleEnroll)
	s.app.Post("/verify", s.handleVerify)
	return s, nil
}

// App exposes the underlying Fiber application for serving and tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Info("request",
		"id", c.Locals(requestid.ConfigDefault.ContextKey),
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start))
	return err
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var ae *voiceauth.Error
	if errors.As(err, &ae) {
		return c.Status(ae.Status).JSON(fiber.Map{"detail": ae.Detail})
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"detail": fe.Message})
	}
	s.logger.Error("unhandled request error", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "internal server error"})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleCreateWallet mints a custodial wallet and registers an empty
// account for it. The mnemonic and private key appear only in this
// response; the server keeps neither.
func (s *Server) handleCreateWallet(c *fiber.Ctx) error {
	w, err := wallet.New()
	if err != nil {
		return fmt.Errorf("create wallet: %w", err)
	}
	rec := accounts.New(w.Address, accounts.TypeCustodial)
	if err := s.store.Put(c.Context(), rec); err != nil {
		return fmt.Errorf("register wallet: %w", err)
	}
	s.logger.Info("wallet created", "address", w.Address)
	return c.JSON(w)
}

func (s *Server) handleEnroll(c *fiber.Ctx) error {
	form, err := parseAuthForm(c)
	if err != nil {
		return err
	}
	if err := s.auth.Enroll(c.Context(), voiceauth.EnrollRequest{
		Address:   form.address,
		Message:   form.message,
		Signature: form.signature,
		Phrase:    form.phrase,
		Audio:     form.audio,
	}); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "voiceprint enrolled",
	})
}

func (s *Server) handleVerify(c *fiber.Ctx) error {
	form, err := parseAuthForm(c)
	if err != nil {
		return err
	}
	d, err := s.auth.Verify(c.Context(), voiceauth.VerifyRequest{
		Address:   form.address,
		Message:   form.message,
		Signature: form.signature,
		Phrase:    form.phrase,
		Audio:     form.audio,
	})
	if err != nil {
		return err
	}

	body := fiber.Map{
		"verified":  d.Verified,
		"score":     d.Score,
		"threshold": d.Threshold,
		"details":   d.Details,
		"message":   d.Message,
	}
	if d.Verified && s.tokens != nil {
		token, err := s.tokens.issue(form.address)
		if err != nil {
			return fmt.Errorf("issue session token: %w", err)
		}
		body["token"] = token
	}
	return c.JSON(body)
}

type authForm struct {
	address   string
	message   string
	signature string
	phrase    string
	audio     []byte
}

func parseAuthForm(c *fiber.Ctx) (*authForm, error) {
	f := &authForm{
		address:   c.FormValue("wallet_address"),
		message:   c.FormValue("message"),
		signature: c.FormValue("signature"),
		phrase:    c.FormValue("phrase"),
	}
	if f.address == "" {
		return nil, fiber.NewError(fiber.StatusBadRequest, "wallet_address is required")
	}

	fh, err := c.FormFile("audio")
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "audio file is required")
	}
	if fh.Size > MaxAudioBytes {
		return nil, fiber.NewError(fiber.StatusRequestEntityTooLarge, "audio file too large")
	}
	src, err := fh.Open()
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "audio file unreadable")
	}
	defer src.Close()
	f.audio, err = io.ReadAll(io.LimitReader(src, MaxAudioBytes+1))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "audio file unreadable")
	}
	if len(f.audio) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "audio file is empty")
	}
	return f, nil
}
