package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stocktr-api/internal/repository"
	"github.com/stocktr-api/internal/service"
	"github.com/stocktr-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBcryptCost = 4

func newAuthService(t *testing.T) (*service.AuthService, *service.TokenService, *repository.UserRepository) {
	t.Helper()
	users := repository.NewUserRepository(testutil.NewDB(t))
	tokens := service.NewTokenService("test-secret", time.Hour)
	return service.NewAuthService(users, tokens, testBcryptCost), tokens, users
}

func signupReq(username, email string) *service.SignupRequest {
	return &service.SignupRequest{
		Username: username,
		Name:     "Some Name",
		Email:    email,
		Password: "hunter2",
	}
}

func TestAuthService_SignupIssuesVerifiableToken(t *testing.T) {
	auth, tokens, _ := newAuthService(t)

	session, err := auth.Signup(context.Background(), signupReq("  alice ", " Alice@Example.COM "))
	require.NoError(t, err)
	assert.Equal(t, "alice", session.User.Username)
	assert.Equal(t, "alice@example.com", session.User.Email)
	assert.NotEqual(t, "hunter2", session.User.PasswordHash)

	id, err := tokens.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, id)
}

func TestAuthService_SignupConflicts(t *testing.T) {
	auth, _, users := newAuthService(t)
	ctx := context.Background()

	_, err := auth.Signup(ctx, signupReq("alice", "alice@example.com"))
	require.NoError(t, err)

	_, err = auth.Signup(ctx, signupReq("bob", "ALICE@example.com"))
	require.ErrorIs(t, err, service.ErrConflict)
	var conflict *service.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "email", conflict.Field)
	assert.Equal(t, "Email already in use", err.Error())

	_, err = auth.Signup(ctx, signupReq("alice", "other@example.com"))
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "username", conflict.Field)

	exists, err := users.ExistsByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, exists, "no row is created on conflict")
}

func TestAuthService_LoginFailuresAreIndistinguishable(t *testing.T) {
	auth, _, _ := newAuthService(t)
	ctx := context.Background()
	_, err := auth.Signup(ctx, signupReq("alice", "alice@example.com"))
	require.NoError(t, err)

	_, errUnknown := auth.Login(ctx, &service.LoginRequest{Email: "nobody@example.com", Password: "hunter2"})
	_, errWrong := auth.Login(ctx, &service.LoginRequest{Email: "alice@example.com", Password: "wrong"})

	assert.ErrorIs(t, errUnknown, service.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, service.ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
}

func TestAuthService_Login(t *testing.T) {
	auth, tokens, _ := newAuthService(t)
	ctx := context.Background()
	created, err := auth.Signup(ctx, signupReq("alice", "alice@example.com"))
	require.NoError(t, err)

	session, err := auth.Login(ctx, &service.LoginRequest{Email: " Alice@example.com", Password: "hunter2"})
	require.NoError(t, err)
	assert.Equal(t, created.User.ID, session.User.ID)

	id, err := tokens.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, created.User.ID, id)
}

func TestAuthService_ChangePassword(t *testing.T) {
	auth, _, _ := newAuthService(t)
	ctx := context.Background()
	session, err := auth.Signup(ctx, signupReq("alice", "alice@example.com"))
	require.NoError(t, err)
	id := session.User.ID

	assert.ErrorIs(t, auth.ChangePassword(ctx, id, ""), service.ErrPasswordRequired)
	assert.ErrorIs(t, auth.ChangePassword(ctx, id, "hunter2"), service.ErrSamePassword)
	assert.ErrorIs(t, auth.ChangePassword(ctx, id, strings.Repeat("a", 73)), service.ErrPasswordTooLong)
	require.NoError(t, auth.ChangePassword(ctx, id, "correct horse"))

	_, err = auth.Login(ctx, &service.LoginRequest{Email: "alice@example.com", Password: "hunter2"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = auth.Login(ctx, &service.LoginRequest{Email: "alice@example.com", Password: "correct horse"})
	assert.NoError(t, err)

	assert.ErrorIs(t, auth.ChangePassword(ctx, 9999, "x"), repository.ErrUserNotFound)
}

func TestAuthService_SignupRejectsBadInput(t *testing.T) {
	auth, _, users := newAuthService(t)
	ctx := context.Background()

	req := signupReq("alice", "alice@example.com")
	req.Name = "   "
	_, err := auth.Signup(ctx, req)
	assert.ErrorIs(t, err, service.ErrNameRequired)

	// 60 runes but 120 bytes
	req = signupReq("alice", "alice@example.com")
	req.Password = strings.Repeat("é", 60)
	_, err = auth.Signup(ctx, req)
	assert.ErrorIs(t, err, service.ErrPasswordTooLong)

	req = signupReq("alice", "alice@example.com")
	req.Password = strings.Repeat("a", 72)
	_, err = auth.Signup(ctx, req)
	require.NoError(t, err)

	exists, err := users.ExistsByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestAuthService_ResolveUser(t *testing.T) {
	auth, _, _ := newAuthService(t)
	ctx := context.Background()
	session, err := auth.Signup(ctx, signupReq("alice", "alice@example.com"))
	require.NoError(t, err)

	user, err := auth.ResolveUser(ctx, session.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = auth.ResolveUser(ctx, 9999)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}
