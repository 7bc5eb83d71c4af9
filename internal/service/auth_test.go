package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutritrackapp/nutritrack-server/internal/auth"
	domainerrors "github.com/nutritrackapp/nutritrack-server/internal/errors"
	"github.com/nutritrackapp/nutritrack-server/internal/validation"
)

const authTestKey = "707172737475767778797a7b7c7d7e7f808182838485868788898a8b8c8d8e8f"

func newAuthFixture(t *testing.T) (*AuthService, *fakeStore) {
	t.Helper()
	tokens, err := auth.NewTokenService(authTestKey, 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)
	st := newFakeStore()
	return NewAuthService(st, tokens, validation.New(), testLogger()), st
}

func signup(t *testing.T, svc *AuthService) *AuthResponse {
	t.Helper()
	resp, err := svc.Signup(context.Background(), SignupRequest{
		Email:       "anna@example.com",
		Password:    "correct horse battery",
		DisplayName: "Anna",
	})
	require.NoError(t, err)
	return resp
}

func TestAuthService_Signup(t *testing.T) {
	svc, st := newAuthFixture(t)

	resp := signup(t, svc)
	require.NotNil(t, resp.User)
	assert.Equal(t, "anna@example.com", resp.User.Email)
	assert.Equal(t, "Anna", resp.User.DisplayName)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, int64(900), resp.ExpiresIn)
	assert.NotEqual(t, "correct horse battery", resp.User.PasswordHash)

	assert.Len(t, st.users, 1)
	assert.Len(t, st.sessions, 1)

	claims, err := svc.VerifyAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "anna@example.com", claims.Email)
}

func TestAuthService_Signup_DuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)
	signup(t, svc)

	_, err := svc.Signup(context.Background(), SignupRequest{
		Email:    "ANNA@example.com",
		Password: "another password",
	})
	require.Error(t, err)
	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeConflict, derr.Code)
}

func TestAuthService_Signup_Validation(t *testing.T) {
	svc, _ := newAuthFixture(t)

	tests := []struct {
		name string
		req  SignupRequest
	}{
		{"missing email", SignupRequest{Password: "long enough password"}},
		{"bad email", SignupRequest{Email: "not-an-email", Password: "long enough password"}},
		{"short password", SignupRequest{Email: "a@b.com", Password: "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(context.Background(), tt.req)
			require.Error(t, err)
			var derr *domainerrors.Error
			require.ErrorAs(t, err, &derr)
			assert.Equal(t, domainerrors.CodeValidation, derr.Code)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	svc, _ := newAuthFixture(t)
	signup(t, svc)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "anna@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
}

func TestAuthService_Login_BadCredentials(t *testing.T) {
	svc, _ := newAuthFixture(t)
	signup(t, svc)
	ctx := context.Background()

	// Wrong password and unknown email fail identically.
	for _, req := range []LoginRequest{
		{Email: "anna@example.com", Password: "wrong password"},
		{Email: "nobody@example.com", Password: "correct horse battery"},
	} {
		_, err := svc.Login(ctx, req)
		require.Error(t, err)
		var derr *domainerrors.Error
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, domainerrors.CodeInvalidCredentials, derr.Code)
		assert.Equal(t, "invalid email or password", derr.Message)
	}
}

func TestAuthService_Refresh_RotatesToken(t *testing.T) {
	svc, _ := newAuthFixture(t)
	first := signup(t, svc)
	ctx := context.Background()

	second, err := svc.Refresh(ctx, RefreshRequest{RefreshToken: first.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.Equal(t, first.SessionID, second.SessionID, "rotation reuses the session")

	// The old refresh token is dead after rotation.
	_, err = svc.Refresh(ctx, RefreshRequest{RefreshToken: first.RefreshToken})
	require.Error(t, err)
	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeUnauthorized, derr.Code)

	// The new one works.
	_, err = svc.Refresh(ctx, RefreshRequest{RefreshToken: second.RefreshToken})
	require.NoError(t, err)
}

func TestAuthService_Refresh_Expired(t *testing.T) {
	svc, st := newAuthFixture(t)
	resp := signup(t, svc)
	ctx := context.Background()

	st.mu.Lock()
	for _, s := range st.sessions {
		s.ExpiresAt = time.Now().UTC().Add(-time.Hour)
	}
	st.mu.Unlock()

	_, err := svc.Refresh(ctx, RefreshRequest{RefreshToken: resp.RefreshToken})
	require.Error(t, err)
	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeTokenExpired, derr.Code)

	// The dead session was cleaned up on the way out.
	assert.Empty(t, st.sessions)
}

func TestAuthService_Logout(t *testing.T) {
	svc, st := newAuthFixture(t)
	resp := signup(t, svc)
	ctx := context.Background()

	require.NoError(t, svc.Logout(ctx, resp.RefreshToken))
	assert.Empty(t, st.sessions)

	_, err := svc.Refresh(ctx, RefreshRequest{RefreshToken: resp.RefreshToken})
	require.Error(t, err)

	// Logging out twice is fine.
	require.NoError(t, svc.Logout(ctx, resp.RefreshToken))
}

func TestAuthService_VerifyAccessToken_Invalid(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.VerifyAccessToken("v4.local.garbage")
	require.Error(t, err)
	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeUnauthorized, derr.Code)
}

func TestAuthService_CleanupExpiredSessions(t *testing.T) {
	svc, st := newAuthFixture(t)
	signup(t, svc)
	ctx := context.Background()

	n, err := svc.CleanupExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	st.mu.Lock()
	for _, s := range st.sessions {
		s.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	}
	st.mu.Unlock()

	n, err = svc.CleanupExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, st.sessions)
}
