package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memberportal/internal/captcha"
	"memberportal/internal/roster"
)

type fakeCreds struct {
	accounts  map[string]roster.Profile
	createErr error
	created   int
}

func (f *fakeCreds) CreateAccount(ctx context.Context, p *roster.Profile, hash string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created++
	return nil
}

func (f *fakeCreds) AccountByEmail(ctx context.Context, email string) (*roster.Profile, string, error) {
	if p, ok := f.accounts[email]; ok {
		return &p, "hash", nil
	}
	return nil, "", roster.ErrNotFound
}

func (f *fakeCreds) SetPasswordByEmail(ctx context.Context, email, hash string) error {
	return nil
}

func newSignupService(creds *fakeCreds) *Service {
	return NewService(creds, nil, nil, captcha.New(""), nil, Config{
		Issuer:     "memberportal",
		SigningKey: "secret",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	})
}

func TestSignupRejectsBadForms(t *testing.T) {
	svc := newSignupService(&fakeCreds{})

	_, _, err := svc.Signup(context.Background(), SignupInput{
		Email: "a@x.edu", Password: "secret1", ConfirmPassword: "secret2",
	})
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	_, _, err = svc.Signup(context.Background(), SignupInput{
		Email: "a@x.edu", Password: "short", ConfirmPassword: "short",
	})
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestSignupRejectsExistingAccount(t *testing.T) {
	creds := &fakeCreds{accounts: map[string]roster.Profile{
		"taken@x.edu": {ID: "u1", Email: "taken@x.edu"},
	}}
	svc := newSignupService(creds)

	_, _, err := svc.Signup(context.Background(), SignupInput{
		Email: "Taken@X.edu", Password: "secret1", ConfirmPassword: "secret1",
	})
	assert.ErrorIs(t, err, ErrEmailTaken, "lookup is case-insensitive")
	assert.Zero(t, creds.created)
}

func TestSignupSurfacesStoreLevelDuplicate(t *testing.T) {
	// Two signups can race past the lookup; the store's unique index then
	// rejects the second insert and the caller sees the same error as if
	// the lookup had caught it.
	creds := &fakeCreds{createErr: ErrEmailTaken}
	svc := newSignupService(creds)

	_, _, err := svc.Signup(context.Background(), SignupInput{
		Email: "raced@x.edu", Password: "secret1", ConfirmPassword: "secret1",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}
