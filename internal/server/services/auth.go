// Package services contains server-side business logic. This file implements
// AuthService, the gate in front of the admin area: registration, rate-limited
// login issuing a session and a token, and session/token authorization.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/complaintdesk/internal/common"
	"github.com/dmitrijs2005/complaintdesk/internal/logging"
	"github.com/dmitrijs2005/complaintdesk/internal/server/auth"
	"github.com/dmitrijs2005/complaintdesk/internal/server/models"
	"github.com/dmitrijs2005/complaintdesk/internal/server/ratelimit"
	"github.com/dmitrijs2005/complaintdesk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/complaintdesk/internal/server/sessions"
)

// RegisterInput is the signup form.
type RegisterInput struct {
	DisplayName          string
	Email                string
	Password             string
	PasswordConfirmation string
}

// LoginInput is the login form plus the client address used for admission.
type LoginInput struct {
	ClientAddr string
	Email      string
	Password   string
}

// LoginResult carries everything the HTTP layer needs to set both cookies.
type LoginResult struct {
	User           *models.User
	Session        *sessions.Session
	Token          string
	TokenExpiresAt time.Time
}

// RateLimitedError is returned by Login when admission is denied.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%v, retry after %s", common.ErrRateLimited, e.RetryAfter)
}

func (e *RateLimitedError) Unwrap() error {
	return common.ErrRateLimited
}

// AuthService wires the credential store, hasher, limiter, session manager
// and token issuer together. All collaborators are process-scoped.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *auth.Hasher
	limiter     *ratelimit.Limiter
	sessions    *sessions.Manager
	tokens      *auth.TokenIssuer
	logger      logging.Logger

	dummyOnce   sync.Once
	dummyDigest string
}

func NewAuthService(
	db *sql.DB,
	m repomanager.RepositoryManager,
	hasher *auth.Hasher,
	limiter *ratelimit.Limiter,
	sessionManager *sessions.Manager,
	tokens *auth.TokenIssuer,
	logger logging.Logger,
) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		limiter:     limiter,
		sessions:    sessionManager,
		tokens:      tokens,
		logger:      logger.With("module", "auth"),
	}
}

// NormalizeEmail is applied before every lookup and insert.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an administrator account. A taken email yields an error
// matching both common.ErrEmailAlreadyRegistered and common.ErrDuplicateKey,
// whether it was caught by the lookup or by the unique index.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Password != in.PasswordConfirmation {
		return nil, common.ErrPasswordMismatch
	}

	email := NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrValidation)
	}

	repo := s.repomanager.Users(s.db)

	_, err := repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, errEmailTaken()
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("%w: lookup user: %w", common.ErrorInternal, err)
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := repo.Insert(ctx, &models.User{
		Email:        email,
		DisplayName:  strings.TrimSpace(in.DisplayName),
		PasswordHash: digest,
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateKey) {
			return nil, errEmailTaken()
		}
		return nil, fmt.Errorf("%w: insert user: %w", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

func errEmailTaken() error {
	return fmt.Errorf("%w: %w", common.ErrEmailAlreadyRegistered, common.ErrDuplicateKey)
}

// Login admits, looks up and verifies, then opens a session and signs a
// token. Unknown email and wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	decision := s.limiter.Admit(in.ClientAddr)
	if !decision.Allowed {
		s.logger.Warn(ctx, "login rate limited", "client_addr", in.ClientAddr, "retry_after", decision.RetryAfter)
		return nil, &RateLimitedError{RetryAfter: decision.RetryAfter}
	}

	email := NormalizeEmail(in.Email)

	user, err := s.repomanager.Users(s.db).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// burn the same bcrypt time as a real comparison
			s.hasher.Verify(in.Password, s.dummyHash())
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: lookup user: %w", common.ErrorInternal, err)
	}

	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	session, err := s.sessions.Create(ctx, sessions.Identity{Email: user.Email, DisplayName: user.DisplayName})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	token, expiresAt, err := s.tokens.Issue(user.Email)
	if err != nil {
		// a session without its token is useless to the caller
		_ = s.sessions.Invalidate(ctx, session.ID)
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return &LoginResult{
		User:           user,
		Session:        session,
		Token:          token,
		TokenExpiresAt: expiresAt,
	}, nil
}

// Authorize resolves a session cookie. common.ErrUnauthenticated means the
// caller should be sent to the login page.
func (s *AuthService) Authorize(ctx context.Context, sessionID string) (*sessions.Session, error) {
	return s.sessions.Validate(ctx, sessionID)
}

// AuthorizeToken verifies a bearer token for the JSON API.
func (s *AuthService) AuthorizeToken(token string) (*auth.Claims, error) {
	return s.tokens.Verify(token)
}

// Logout ends the session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Invalidate(ctx, sessionID)
}

// dummyHash is a digest nobody's password matches, computed once at the
// hasher's cost.
func (s *AuthService) dummyHash() string {
	s.dummyOnce.Do(func() {
		b, err := common.GenerateRandByteArray(16)
		if err != nil {
			return
		}
		s.dummyDigest, _ = s.hasher.Hash(fmt.Sprintf("%x", b))
	})
	return s.dummyDigest
}
