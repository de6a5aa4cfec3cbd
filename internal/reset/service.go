// Package reset implements the password-reset token lifecycle: issuing
// single-use, time-bounded secrets and consuming them for credential
// changes.
package reset

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sitecrew/sitecrew/internal/auth"
	"github.com/sitecrew/sitecrew/internal/shared"
)

// secretBytes sizes the raw secret at 256 bits.
const secretBytes = 32

// DefaultTTL bounds token validity when configuration does not override it.
const DefaultTTL = 20 * time.Minute

// Notifier dispatches the reset mail. Implementations must not block the
// request path; failures are logged, never surfaced.
type Notifier interface {
	EnqueueResetMail(ctx context.Context, to, link string) error
}

// ServiceConfig carries reset tuning.
type ServiceConfig struct {
	TTL        time.Duration
	LinkBase   string
	BcryptCost int
}

// Service manages the reset-token lifecycle.
type Service struct {
	identities auth.Repository
	tokens     Store
	mail       Notifier
	cfg        ServiceConfig
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs a Service.
func NewService(identities auth.Repository, tokens Store, mail Notifier, cfg ServiceConfig, logger *slog.Logger) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	return &Service{
		identities: identities,
		tokens:     tokens,
		mail:       mail,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// HashSecret digests a raw secret for storage and lookup.
func HashSecret(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func generateSecret() (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reset: generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Request issues a reset token for the identity holding email. Callers
// answer with the same acknowledgement whether or not the identity
// exists; the unknown-email path performs the same secret generation and
// digesting before returning, so the two outcomes stay close in timing.
// Only storage failures produce an error.
func (s *Service) Request(ctx context.Context, email string, meta RequestMeta) error {
	raw, err := generateSecret()
	if err != nil {
		return err
	}
	digest := HashSecret(raw)

	user, err := s.identities.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("reset: find identity: %w", err)
	}

	if err := s.tokens.DeleteLiveForUser(ctx, user.ID); err != nil {
		return err
	}

	now := s.now()
	token := &Token{
		ID:        uuid.New(),
		UserID:    user.ID,
		Digest:    digest,
		ExpiresAt: now.Add(s.cfg.TTL),
		RequestIP: meta.IP,
		RequestUA: meta.UserAgent,
		CreatedAt: now,
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return err
	}

	link := s.cfg.LinkBase + "?token=" + raw
	if err := s.mail.EnqueueResetMail(ctx, user.Email, link); err != nil {
		// The acknowledgement is already decided; dispatch trouble stays here.
		s.logger.Error("enqueue reset mail", slog.Int64("user_id", user.ID), slog.Any("error", err))
	}

	s.logger.Info("reset requested", slog.Int64("user_id", user.ID), slog.String("ip", meta.IP))
	return nil
}

// Consume exchanges a raw reset secret for a credential change. Failures
// are one of shared.ErrTokenInvalid, shared.ErrTokenUsed or
// shared.ErrTokenExpired; none of them reveal which identity the token
// belonged to.
func (s *Service) Consume(ctx context.Context, rawSecret, newPassword string) error {
	token, err := s.tokens.FindByDigest(ctx, HashSecret(rawSecret))
	if err != nil {
		return err
	}
	if token.Consumed() {
		return shared.ErrTokenUsed
	}
	now := s.now()
	if token.Expired(now) {
		return shared.ErrTokenExpired
	}

	digest, err := auth.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("reset: hash password: %w", err)
	}
	if err := s.identities.UpdateCredential(ctx, token.UserID, digest); err != nil {
		return fmt.Errorf("reset: update credential: %w", err)
	}
	if err := s.tokens.MarkConsumed(ctx, token, now); err != nil {
		return err
	}
	// Sibling tokens issued for this identity die with the consumed one.
	if err := s.tokens.DeleteLiveForUser(ctx, token.UserID); err != nil {
		s.logger.Warn("cleanup live tokens", slog.Int64("user_id", token.UserID), slog.Any("error", err))
	}

	s.logger.Info("reset consumed", slog.Int64("user_id", token.UserID))
	return nil
}
