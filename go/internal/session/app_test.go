package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	parse "github.com/mcdev12/dreamteams/go/clients/parse_client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIdentity struct {
	users     map[string]string
	logoutErr error
	calls     int
	revoked   []string
}

func (f *fakeIdentity) SignUp(ctx context.Context, username, email, password string) (*parse.User, error) {
	f.calls++
	if _, ok := f.users[username]; ok {
		return nil, &parse.Error{Code: parse.CodeUsernameTaken, Message: "Account already exists for this username."}
	}
	f.users[username] = password
	return &parse.User{ObjectID: "id-" + username, Username: username, Email: email, SessionToken: "r:" + username}, nil
}

func (f *fakeIdentity) LogIn(ctx context.Context, username, password string) (*parse.User, error) {
	f.calls++
	if pw, ok := f.users[username]; !ok || pw != password {
		return nil, &parse.Error{Code: 101, Message: "Invalid username/password."}
	}
	return &parse.User{ObjectID: "id-" + username, Username: username, SessionToken: "r:" + username}, nil
}

func (f *fakeIdentity) LogOut(ctx context.Context, token string) error {
	f.calls++
	if f.logoutErr != nil {
		return f.logoutErr
	}
	f.revoked = append(f.revoked, token)
	return nil
}

func newApp() (*App, *fakeIdentity) {
	id := &fakeIdentity{users: map[string]string{"peter@bugle.com": "webs"}}
	return NewApp(id, clockwork.NewFakeClockAt(time.Date(2024, 12, 5, 0, 0, 0, 0, time.UTC))), id
}

func TestLogin(t *testing.T) {
	app, _ := newApp()

	_, err := app.Current()
	assert.ErrorIs(t, err, ErrNoSession)

	s, err := app.Login(context.Background(), " peter@bugle.com ", "webs")
	require.NoError(t, err)
	assert.Equal(t, "id-peter@bugle.com", s.UserID)
	assert.Equal(t, time.Date(2024, 12, 5, 0, 0, 0, 0, time.UTC), s.StartedAt)

	cur, err := app.Current()
	require.NoError(t, err)
	assert.Equal(t, "r:peter@bugle.com", cur.Token)
}

func TestLogin_FailureSurfacedVerbatim(t *testing.T) {
	app, _ := newApp()

	_, err := app.Login(context.Background(), "peter@bugle.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid username/password.", err.Error())

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "login", authErr.Op)

	_, err = app.Current()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestLoginAndSignup_RejectEmptyInputLocally(t *testing.T) {
	app, id := newApp()
	ctx := context.Background()

	_, err := app.Login(ctx, "", "x")
	assert.ErrorIs(t, err, ErrMissingCredentials)
	_, err = app.Signup(ctx, "a@b.c", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
	assert.Zero(t, id.calls)
}

func TestSignup(t *testing.T) {
	app, _ := newApp()
	ctx := context.Background()

	s, err := app.Signup(ctx, "mj@bugle.com", "tiger")
	require.NoError(t, err)
	assert.Equal(t, "mj@bugle.com", s.Email)
	assert.Equal(t, "mj@bugle.com", s.Username)

	_, err = app.Signup(ctx, "mj@bugle.com", "tiger")
	assert.EqualError(t, err, "Account already exists for this username.")
}

func TestLogout(t *testing.T) {
	app, id := newApp()
	ctx := context.Background()

	assert.ErrorIs(t, app.Logout(ctx), ErrNoSession)

	_, err := app.Login(ctx, "peter@bugle.com", "webs")
	require.NoError(t, err)

	fired := 0
	app.OnLogout(func() { fired++ })

	require.NoError(t, app.Logout(ctx))
	assert.Equal(t, []string{"r:peter@bugle.com"}, id.revoked)
	assert.Equal(t, 1, fired)
	_, err = app.Current()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestLogout_FailureKeepsSession(t *testing.T) {
	app, id := newApp()
	ctx := context.Background()
	_, err := app.Login(ctx, "peter@bugle.com", "webs")
	require.NoError(t, err)

	id.logoutErr = errors.New("Invalid session token")
	err = app.Logout(ctx)
	assert.EqualError(t, err, "Invalid session token")

	token, err := app.SessionToken()
	require.NoError(t, err)
	assert.Equal(t, "r:peter@bugle.com", token)
}

func TestOnLogin_FiresAfterSessionStarts(t *testing.T) {
	app, _ := newApp()
	ctx := context.Background()

	var seen []string
	app.OnLogin(func() {
		cur, err := app.Current()
		require.NoError(t, err)
		seen = append(seen, cur.UserID)
	})

	_, err := app.Login(ctx, "peter@bugle.com", "wrong")
	require.Error(t, err)
	assert.Empty(t, seen)

	_, err = app.Login(ctx, "peter@bugle.com", "webs")
	require.NoError(t, err)
	_, err = app.Signup(ctx, "mj@bugle.com", "mask")
	require.NoError(t, err)

	assert.Equal(t, []string{"id-peter@bugle.com", "id-mj@bugle.com"}, seen)
}
