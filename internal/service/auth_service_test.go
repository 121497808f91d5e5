package service

import (
	"context"
	"testing"
	"time"

	"courtside/team-ops/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth(f *fixture) AuthService {
	return NewAuthService(f.store.Users(), f.store.Roster(), "test-secret", time.Hour)
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	auth := newAuth(f)
	avi := f.player(t, "Avi", 4)

	coach, err := auth.Register(ctx, "Coach K", "Coach@Team.test ", "s3cret", domain.RoleCoach, "")
	require.NoError(t, err)
	assert.Equal(t, "coach@team.test", coach.Email)
	assert.Empty(t, coach.PasswordHash)

	_, err = auth.Register(ctx, "Avi", "avi@team.test", "pw", domain.RolePlayer, avi)
	require.NoError(t, err)

	token, user, err := auth.Login(ctx, "avi@team.test", "pw")
	require.NoError(t, err)
	assert.Equal(t, domain.RolePlayer, user.Role)

	claims, err := auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, avi, claims.PlayerID)
	assert.False(t, claims.IsCoach())
}

func TestAuthService_RegisterErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	auth := newAuth(f)
	_, err := auth.Register(ctx, "Coach K", "coach@team.test", "pw", domain.RoleCoach, "")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		role     domain.Role
		playerID string
		want     error
	}{
		{"duplicate email", "COACH@team.test", domain.RoleCoach, "", ErrUserAlreadyExists},
		{"unknown role", "x@team.test", "owner", "", domain.ErrInvalid},
		{"player without link", "p@team.test", domain.RolePlayer, "", ErrPlayerLinkRequired},
		{"player with unknown link", "p@team.test", domain.RolePlayer, "ffffffffffffffffffffffff", ErrPlayerLinkRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Register(ctx, "Someone", tt.email, "pw", tt.role, tt.playerID)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthService_LoginAndTokenFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	auth := newAuth(f)
	_, err := auth.Register(ctx, "Coach K", "coach@team.test", "pw", domain.RoleCoach, "")
	require.NoError(t, err)

	_, _, err = auth.Login(ctx, "coach@team.test", "wrong")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	_, _, err = auth.Login(ctx, "nobody@team.test", "pw")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	token, _, err := auth.Login(ctx, "coach@team.test", "pw")
	require.NoError(t, err)
	other := NewAuthService(f.store.Users(), f.store.Roster(), "another-secret", time.Hour)
	_, err = other.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = auth.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err := auth.ParseToken(token)
	require.NoError(t, err)
	assert.True(t, claims.IsCoach())
}
