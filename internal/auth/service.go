package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"memberportal/internal/captcha"
	"memberportal/internal/queue"
	"memberportal/internal/roster"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("this email is already registered")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrWeakPassword       = errors.New("password must be at least 6 characters long")
	ErrCaptchaRequired    = errors.New("please complete the CAPTCHA verification")
)

// MsgPasswordReset is the queue message type for reset emails.
const MsgPasswordReset = "password_reset"

// ResetPayload is the body of a MsgPasswordReset message.
type ResetPayload struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// Config carries the token parameters the service needs.
type Config struct {
	Issuer      string
	SigningKey  string
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	RememberTTL time.Duration
}

// Service implements signup, login, logout, and password reset.
type Service struct {
	creds    CredentialStore
	sessions *SessionTracker
	resets   *ResetTokens
	captcha  captcha.Verifier
	mailq    queue.Queue
	cfg      Config
}

// NewService creates an identity service.
func NewService(creds CredentialStore, sessions *SessionTracker, resets *ResetTokens, verifier captcha.Verifier, mailq queue.Queue, cfg Config) *Service {
	return &Service{creds: creds, sessions: sessions, resets: resets, captcha: verifier, mailq: mailq, cfg: cfg}
}

// SignupInput is the signup form.
type SignupInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
	Classification  roster.Classification
	CaptchaToken    string
}

// Signup validates the form, creates the account, and opens a session.
// New accounts start as "Not a Member" until a board member promotes them.
func (s *Service) Signup(ctx context.Context, in SignupInput) (roster.Profile, TokenPair, error) {
	if err := s.captcha.Verify(ctx, in.CaptchaToken); err != nil {
		if errors.Is(err, captcha.ErrFailed) {
			return roster.Profile{}, TokenPair{}, ErrCaptchaRequired
		}
		return roster.Profile{}, TokenPair{}, err
	}
	if in.Password != in.ConfirmPassword {
		return roster.Profile{}, TokenPair{}, ErrPasswordMismatch
	}
	if len(in.Password) < 6 {
		return roster.Profile{}, TokenPair{}, ErrWeakPassword
	}
	if !roster.ValidClassification(string(in.Classification)) {
		in.Classification = roster.ClassFreshman
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, _, err := s.creds.AccountByEmail(ctx, email); err == nil {
		return roster.Profile{}, TokenPair{}, ErrEmailTaken
	} else if !errors.Is(err, roster.ErrNotFound) {
		return roster.Profile{}, TokenPair{}, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return roster.Profile{}, TokenPair{}, err
	}

	profile := roster.Profile{
		Email:          email,
		FirstName:      roster.FormatName(in.FirstName),
		LastName:       roster.FormatName(in.LastName),
		Classification: in.Classification,
		Role:           roster.RoleNotAMember,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.creds.CreateAccount(ctx, &profile, hash); err != nil {
		return roster.Profile{}, TokenPair{}, err
	}

	tokens, err := s.openSession(ctx, profile, false)
	return profile, tokens, err
}

// LoginInput is the login form. Remember selects the durable refresh-token
// lifetime.
type LoginInput struct {
	Email        string
	Password     string
	CaptchaToken string
	Remember     bool
}

// Login checks credentials and opens a session.
func (s *Service) Login(ctx context.Context, in LoginInput) (roster.Profile, TokenPair, error) {
	if err := s.captcha.Verify(ctx, in.CaptchaToken); err != nil {
		if errors.Is(err, captcha.ErrFailed) {
			return roster.Profile{}, TokenPair{}, ErrCaptchaRequired
		}
		return roster.Profile{}, TokenPair{}, err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	profile, hash, err := s.creds.AccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, roster.ErrNotFound) {
			return roster.Profile{}, TokenPair{}, ErrInvalidCredentials
		}
		return roster.Profile{}, TokenPair{}, err
	}
	if !CheckPassword(hash, in.Password) {
		return roster.Profile{}, TokenPair{}, ErrInvalidCredentials
	}

	tokens, err := s.openSession(ctx, *profile, in.Remember)
	return *profile, tokens, err
}

func (s *Service) openSession(ctx context.Context, profile roster.Profile, remember bool) (TokenPair, error) {
	refreshTTL := s.cfg.RefreshTTL
	if remember {
		refreshTTL = s.cfg.RememberTTL
	}
	tokens, err := Issue(profile.ID, profile.Role, s.cfg.Issuer, s.cfg.SigningKey, s.cfg.AccessTTL, refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.sessions.Start(ctx, profile.ID); err != nil {
		return TokenPair{}, err
	}
	return tokens, nil
}

// Logout closes the idle session.
func (s *Service) Logout(ctx context.Context, userID string) error {
	return s.sessions.Stop(ctx, userID)
}

// RequestReset issues a reset token and enqueues the email. Unknown emails
// succeed silently so the endpoint cannot be used to enumerate accounts.
func (s *Service) RequestReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, _, err := s.creds.AccountByEmail(ctx, email); err != nil {
		if errors.Is(err, roster.ErrNotFound) {
			return nil
		}
		return err
	}

	token, err := s.resets.Create(ctx, email)
	if err != nil {
		return err
	}
	body, err := json.Marshal(ResetPayload{Email: email, Token: token})
	if err != nil {
		return err
	}
	if err := s.mailq.Publish(ctx, queue.Message{Type: MsgPasswordReset, Body: body}); err != nil {
		log.Printf("reset mail enqueue failed: %v", err)
		return err
	}
	return nil
}

// ConfirmReset consumes a token and sets the new password.
func (s *Service) ConfirmReset(ctx context.Context, token, password, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}
	if len(password) < 6 {
		return ErrWeakPassword
	}
	email, err := s.resets.Consume(ctx, token)
	if err != nil {
		return err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	return s.creds.SetPasswordByEmail(ctx, email, hash)
}
