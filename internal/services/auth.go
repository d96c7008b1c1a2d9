package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/yungbote/edh-dashboard-backend/internal/data/repos"
	"github.com/yungbote/edh-dashboard-backend/internal/domain"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/apierr"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/dbctx"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/logger"
)

// GoogleScopes are requested on every consent so one login covers profile, Drive listing and
// spreadsheet edits.
var GoogleScopes = []string{
	"openid",
	"email",
	"profile",
	"https://www.googleapis.com/auth/drive.metadata.readonly",
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/drive.file",
}

const stateTTL = 10 * time.Minute

var (
	ErrInvalidState = errors.New("invalid oauth state")
	errNoTokens     = errors.New("not authenticated with Google")
)

type AuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// StateSecret signs the OAuth state parameter.
	StateSecret []byte
	// E2E enables the session-stored test user and fake tokens.
	E2E bool

	// Endpoint and APIEndpoint override Google's hosts in tests.
	Endpoint    oauth2.Endpoint
	APIEndpoint string
}

type AuthService interface {
	Configured() bool
	// AuthURL returns the Google consent URL for sessionID. returnTo is carried through the
	// signed state and handed back by HandleCallback.
	AuthURL(ctx context.Context, sessionID, returnTo string) (string, error)
	HandleCallback(ctx context.Context, sessionID, code, state string) (returnTo string, err error)
	CurrentUser(ctx context.Context, sessionID string) (*domain.AuthUser, error)
	HasTokens(ctx context.Context, sessionID string) (bool, error)
	// TokenSource refreshes expired tokens and writes refreshed tokens back to the session.
	TokenSource(ctx context.Context, sessionID string) (oauth2.TokenSource, error)
	Logout(ctx context.Context, sessionID string) error

	SaveTestTokens(ctx context.Context, sessionID string) error
	ClearTokens(ctx context.Context, sessionID string) error
}

type authService struct {
	log      *logger.Logger
	cfg      AuthConfig
	oauth    *oauth2.Config
	sessions SessionService
	userRepo repos.UserRepo
	now      func() time.Time
}

// NewAuthService builds the Google OAuth flow. userRepo may be nil when no database is
// configured; logins then skip the user upsert.
func NewAuthService(log *logger.Logger, cfg AuthConfig, sessions SessionService, userRepo repos.UserRepo) AuthService {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = google.Endpoint
	}
	return &authService{
		log: log.With("service", "AuthService"),
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       GoogleScopes,
			Endpoint:     endpoint,
		},
		sessions: sessions,
		userRepo: userRepo,
		now:      time.Now,
	}
}

func (as *authService) Configured() bool {
	return as.cfg.ClientID != "" && as.cfg.ClientSecret != "" && as.cfg.RedirectURL != ""
}

type stateClaims struct {
	SessionID string `json:"sid"`
	ReturnTo  string `json:"rt,omitempty"`
	jwt.RegisteredClaims
}

func (as *authService) AuthURL(ctx context.Context, sessionID, returnTo string) (string, error) {
	if !as.Configured() {
		return "", apierr.New(http.StatusInternalServerError, "oauth_not_configured", errors.New("Google OAuth is not configured"))
	}
	now := as.now()
	claims := stateClaims{
		SessionID: sessionID,
		ReturnTo:  SafeReturnTo(returnTo),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
		},
	}
	state, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(as.cfg.StateSecret)
	if err != nil {
		return "", fmt.Errorf("sign state: %w", err)
	}
	return as.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent")), nil
}

func (as *authService) verifyState(sessionID, state string) (*stateClaims, error) {
	claims := &stateClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(as.now),
	)
	tok, err := parser.ParseWithClaims(state, claims, func(*jwt.Token) (any, error) {
		return as.cfg.StateSecret, nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidState
	}
	if claims.SessionID == "" || claims.SessionID != sessionID {
		return nil, ErrInvalidState
	}
	return claims, nil
}

func (as *authService) HandleCallback(ctx context.Context, sessionID, code, state string) (string, error) {
	claims, err := as.verifyState(sessionID, state)
	if err != nil {
		return "", apierr.New(http.StatusBadRequest, "invalid_state", err)
	}
	tok, err := as.oauth.Exchange(ctx, code)
	if err != nil {
		as.log.Warn("OAuth code exchange failed", "error", err)
		return "", apierr.New(http.StatusBadRequest, "exchange_failed", errors.New("failed to exchange authorization code"))
	}
	if err := as.sessions.Set(ctx, sessionID, SessionKeyGoogleTokens, tokensFromOAuth(tok, "")); err != nil {
		return "", err
	}

	profile, err := as.fetchProfile(ctx, as.oauth.TokenSource(ctx, tok))
	if err != nil {
		as.log.Warn("Fetching Google profile failed", "error", err)
		return claims.ReturnTo, nil
	}
	if err := as.sessions.Set(ctx, sessionID, SessionKeyUserProfile, profile); err != nil {
		return "", err
	}
	as.upsertUser(ctx, profile)
	return claims.ReturnTo, nil
}

func (as *authService) fetchProfile(ctx context.Context, ts oauth2.TokenSource) (*domain.GoogleProfile, error) {
	opts := []option.ClientOption{option.WithTokenSource(ts)}
	if as.cfg.APIEndpoint != "" {
		opts = append(opts, option.WithEndpoint(as.cfg.APIEndpoint))
	}
	svc, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("oauth2 service: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("userinfo: %w", err)
	}
	if info.Id == "" {
		return nil, errors.New("userinfo: missing id")
	}
	return &domain.GoogleProfile{
		ID:      info.Id,
		Email:   nonEmpty(info.Email),
		Name:    nonEmpty(info.Name),
		Picture: nonEmpty(info.Picture),
	}, nil
}

func (as *authService) upsertUser(ctx context.Context, p *domain.GoogleProfile) {
	if as.userRepo == nil || p == nil {
		return
	}
	u := &domain.User{ID: p.ID, Email: p.Email, Name: p.Name, AvatarURL: p.Picture}
	if err := as.userRepo.Upsert(dbctx.New(ctx), u); err != nil {
		as.log.Warn("User upsert after login failed", "user_id", p.ID, "error", err)
	}
}

func (as *authService) CurrentUser(ctx context.Context, sessionID string) (*domain.AuthUser, error) {
	if sessionID == "" {
		return nil, nil
	}
	if as.cfg.E2E {
		var u domain.AuthUser
		ok, err := as.sessions.Get(ctx, sessionID, SessionKeyTestUser, &u)
		if err != nil {
			return nil, err
		}
		if ok && u.ID != "" {
			return &u, nil
		}
	}

	var p domain.GoogleProfile
	ok, err := as.sessions.Get(ctx, sessionID, SessionKeyUserProfile, &p)
	if err != nil {
		return nil, err
	}
	if ok && p.ID != "" {
		return profileToUser(&p), nil
	}

	hasTokens, err := as.HasTokens(ctx, sessionID)
	if err != nil || !hasTokens || as.cfg.E2E {
		return nil, err
	}
	ts, err := as.TokenSource(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	fetched, err := as.fetchProfile(ctx, ts)
	if err != nil {
		as.log.Warn("Refreshing Google profile failed", "error", err)
		return nil, nil
	}
	if err := as.sessions.Set(ctx, sessionID, SessionKeyUserProfile, fetched); err != nil {
		return nil, err
	}
	return profileToUser(fetched), nil
}

func (as *authService) HasTokens(ctx context.Context, sessionID string) (bool, error) {
	var t domain.GoogleTokens
	ok, err := as.sessions.Get(ctx, sessionID, SessionKeyGoogleTokens, &t)
	if err != nil {
		return false, err
	}
	return ok && (t.AccessToken != "" || t.RefreshToken != ""), nil
}

func (as *authService) TokenSource(ctx context.Context, sessionID string) (oauth2.TokenSource, error) {
	var t domain.GoogleTokens
	ok, err := as.sessions.Get(ctx, sessionID, SessionKeyGoogleTokens, &t)
	if err != nil {
		return nil, err
	}
	if !ok || (t.AccessToken == "" && t.RefreshToken == "") {
		return nil, apierr.New(http.StatusUnauthorized, "unauthenticated", errNoTokens)
	}
	base := as.oauth.TokenSource(ctx, tokensToOAuth(t))
	return &sessionTokenSource{
		ctx:       ctx,
		log:       as.log,
		base:      base,
		sessions:  as.sessions,
		sessionID: sessionID,
		refresh:   t.RefreshToken,
		last:      t.AccessToken,
	}, nil
}

func (as *authService) Logout(ctx context.Context, sessionID string) error {
	return as.sessions.Delete(ctx, sessionID,
		SessionKeyGoogleTokens,
		SessionKeyUserProfile,
		SessionKeyDatabaseSheet,
		SessionKeyTestUser,
	)
}

func (as *authService) SaveTestTokens(ctx context.Context, sessionID string) error {
	return as.sessions.Set(ctx, sessionID, SessionKeyGoogleTokens, domain.GoogleTokens{
		AccessToken:  "test-access",
		RefreshToken: "test-refresh",
		Scope:        "openid email profile",
		TokenType:    "Bearer",
		ExpiryDate:   as.now().Add(time.Hour).UnixMilli(),
	})
}

func (as *authService) ClearTokens(ctx context.Context, sessionID string) error {
	return as.sessions.Delete(ctx, sessionID, SessionKeyGoogleTokens, SessionKeyUserProfile)
}

// sessionTokenSource persists refreshed access tokens so the next request reuses them.
type sessionTokenSource struct {
	ctx       context.Context
	log       *logger.Logger
	base      oauth2.TokenSource
	sessions  SessionService
	sessionID string
	refresh   string

	mu   sync.Mutex
	last string
}

func (s *sessionTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, apierr.New(http.StatusUnauthorized, "token_refresh_failed", fmt.Errorf("google token refresh: %w", err))
	}
	s.mu.Lock()
	changed := tok.AccessToken != s.last
	s.last = tok.AccessToken
	s.mu.Unlock()
	if changed {
		if err := s.sessions.Set(s.ctx, s.sessionID, SessionKeyGoogleTokens, tokensFromOAuth(tok, s.refresh)); err != nil {
			s.log.Warn("Persisting refreshed tokens failed", "error", err)
		}
	}
	return tok, nil
}

func tokensFromOAuth(tok *oauth2.Token, fallbackRefresh string) domain.GoogleTokens {
	out := domain.GoogleTokens{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
	}
	if out.RefreshToken == "" {
		out.RefreshToken = fallbackRefresh
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		out.Scope = scope
	}
	if !tok.Expiry.IsZero() {
		out.ExpiryDate = tok.Expiry.UnixMilli()
	}
	return out
}

func tokensToOAuth(t domain.GoogleTokens) *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
	}
	if t.ExpiryDate > 0 {
		tok.Expiry = time.UnixMilli(t.ExpiryDate)
	}
	return tok
}

func profileToUser(p *domain.GoogleProfile) *domain.AuthUser {
	return &domain.AuthUser{ID: p.ID, Email: p.Email, Name: p.Name, Picture: p.Picture}
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// SafeReturnTo keeps only same-origin absolute paths, falling back to "/".
func SafeReturnTo(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return "/"
	}
	return p
}
