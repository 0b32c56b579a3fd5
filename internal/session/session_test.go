package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/services"
	"github.com/desertthunder/mrx/internal/shared"
	tu "github.com/desertthunder/mrx/internal/testing"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store     *Store
	storage   *MemoryStorage
	api       *tu.FakeAuth
	notes     *tu.Notes
	redirects *tu.Redirects
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		storage:   NewMemoryStorage(),
		api:       &tu.FakeAuth{},
		notes:     &tu.Notes{},
		redirects: &tu.Redirects{},
	}
	f.store = NewStore(StoreOpts{Storage: f.storage, API: f.api, Notifier: f.notes, Navigator: f.redirects})
	f.store.Init()
	return f
}

func member() models.Identity {
	return models.Identity{ID: "u1", Email: "artist@example.com", Role: models.RoleMember}
}

// failingStorage fails every operation.
type failingStorage struct{ cleared int }

func (f *failingStorage) Load() (string, string, error) { return "", "", errors.New("disk on fire") }
func (f *failingStorage) Save(string, string) error    { return errors.New("disk on fire") }
func (f *failingStorage) Clear() error                 { f.cleared++; return errors.New("disk on fire") }

func TestInit(t *testing.T) {
	t.Run("restores a complete session", func(t *testing.T) {
		storage := NewMemoryStorage()
		require.NoError(t, storage.Save("tok", `{"id":"u1","email":"a@b.c","role":"ADMIN"}`))

		s := NewStore(StoreOpts{Storage: storage})
		s.Init()

		assert.True(t, s.IsAuthenticated())
		assert.Equal(t, models.RoleAdmin, s.Role())
		assert.Equal(t, "tok", s.AccessToken())
	})

	t.Run("restores a numeric id and lower-case role", func(t *testing.T) {
		storage := NewMemoryStorage()
		require.NoError(t, storage.Save("tok", `{"id":17,"email":"a@b.c","role":"licensee"}`))

		s := NewStore(StoreOpts{Storage: storage})
		s.Init()

		id, ok := s.Identity()
		require.True(t, ok)
		assert.Equal(t, "17", id.ID)
		assert.Equal(t, models.RoleLicensee, s.Role())
	})

	tests := map[string]func(*MemoryStorage){
		"token only":   func(m *MemoryStorage) { m.Set(TokenKey, "tok") },
		"user only":    func(m *MemoryStorage) { m.Set(UserKey, `{"id":"u1","email":"a@b.c","role":"ADMIN"}`) },
		"corrupt user": func(m *MemoryStorage) { require.NoError(t, m.Save("tok", "{not json")) },
		"unknown role": func(m *MemoryStorage) { require.NoError(t, m.Save("tok", `{"id":"u1","email":"a@b.c","role":"ROOT"}`)) },
	}
	for name, seed := range tests {
		t.Run(name+" degrades to anonymous", func(t *testing.T) {
			storage := NewMemoryStorage()
			seed(storage)

			s := NewStore(StoreOpts{Storage: storage})
			s.Init()

			assert.False(t, s.IsAuthenticated())
			assert.Empty(t, s.Role())
			assert.Empty(t, s.AccessToken())
			assert.False(t, storage.Has(TokenKey))
			assert.False(t, storage.Has(UserKey))
		})
	}

	t.Run("storage errors never panic", func(t *testing.T) {
		storage := &failingStorage{}
		s := NewStore(StoreOpts{Storage: storage})
		assert.NotPanics(t, s.Init)
		assert.False(t, s.IsAuthenticated())
		assert.Equal(t, 1, storage.cleared)
	})
}

func TestLogin(t *testing.T) {
	t.Run("persists both keys and authenticates", func(t *testing.T) {
		f := newFixture(t)
		f.api.Result = &models.LoginResult{Token: "tok", User: member(), ExpiresIn: 3600}

		id, err := f.store.Login(context.Background(), "  Artist@Example.COM ", " secret ")
		require.NoError(t, err)

		assert.Equal(t, member(), *id)
		assert.True(t, f.store.IsAuthenticated())
		assert.Equal(t, models.RoleMember, f.store.Role())

		token, user, err := f.storage.Load()
		require.NoError(t, err)
		assert.Equal(t, "tok", token)
		assert.JSONEq(t, `{"id":"u1","email":"artist@example.com","role":"MEMBER"}`, user)

		require.Len(t, f.api.Calls, 1)
		assert.Equal(t, "artist@example.com", f.api.Calls[0].Email)
		assert.Equal(t, "secret", f.api.Calls[0].Password)
		assert.Equal(t, []string{MsgLoginSuccess}, f.notes.Successes)
	})

	t.Run("server message is surfaced and nothing persisted", func(t *testing.T) {
		f := newFixture(t)
		f.api.Err = &services.APIError{Status: 401, Message: "Invalid credentials"}

		_, err := f.store.Login(context.Background(), "a@b.c", "pw")
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrAuthFailed)

		assert.False(t, f.store.IsAuthenticated())
		assert.False(t, f.storage.Has(TokenKey))
		assert.Equal(t, []string{"Invalid credentials"}, f.notes.Errors)
	})

	t.Run("unusable error payload falls back", func(t *testing.T) {
		f := newFixture(t)
		f.api.Err = errors.New("connection refused")

		_, err := f.store.Login(context.Background(), "a@b.c", "pw")
		require.Error(t, err)
		assert.Equal(t, []string{MsgLoginFailed}, f.notes.Errors)
	})

	t.Run("malformed response is a failure", func(t *testing.T) {
		f := newFixture(t)
		f.api.Result = &models.LoginResult{Token: "tok"}

		_, err := f.store.Login(context.Background(), "a@b.c", "pw")
		require.Error(t, err)
		assert.False(t, f.store.IsAuthenticated())
		assert.False(t, f.storage.Has(UserKey))
	})

	t.Run("missing fields are rejected before any request", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.store.Login(context.Background(), "   ", "pw")
		assert.ErrorIs(t, err, shared.ErrMissingArgument)
		_, err = f.store.Login(context.Background(), "a@b.c", "  ")
		assert.ErrorIs(t, err, shared.ErrMissingArgument)
		assert.Empty(t, f.api.Calls)
		assert.Len(t, f.notes.Errors, 2)
	})

	t.Run("without an auth api the failure is still notified", func(t *testing.T) {
		notes := &tu.Notes{}
		s := NewStore(StoreOpts{Notifier: notes})

		_, err := s.Login(context.Background(), "a@b.c", "pw")
		assert.ErrorIs(t, err, shared.ErrMissingConfig)
		assert.Equal(t, []string{MsgLoginFailed}, notes.Errors)
		assert.False(t, s.IsAuthenticated())
	})

	t.Run("storage failure leaves the store anonymous", func(t *testing.T) {
		f := newFixture(t)
		f.api.Result = &models.LoginResult{Token: "tok", User: member()}
		s := NewStore(StoreOpts{Storage: &failingStorage{}, API: f.api, Notifier: f.notes})

		_, err := s.Login(context.Background(), "a@b.c", "pw")
		require.Error(t, err)
		assert.False(t, s.IsAuthenticated())
	})
}

func TestRegister(t *testing.T) {
	t.Run("success notifies without authenticating", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.RegisterMember(context.Background(), " New@Artist.io", "pw"))
		require.NoError(t, f.store.RegisterLicensee(context.Background(), "label@co.io", "pw"))

		assert.False(t, f.store.IsAuthenticated())
		assert.False(t, f.storage.Has(TokenKey))
		require.Len(t, f.api.Calls, 2)
		assert.Equal(t, "register-member", f.api.Calls[0].Op)
		assert.Equal(t, "new@artist.io", f.api.Calls[0].Email)
		assert.Equal(t, "register-licensee", f.api.Calls[1].Op)
		assert.Equal(t, []string{MsgRegisterSuccess, MsgRegisterSuccess}, f.notes.Successes)
	})

	t.Run("without an auth api the failure is still notified", func(t *testing.T) {
		notes := &tu.Notes{}
		s := NewStore(StoreOpts{Notifier: notes})

		assert.ErrorIs(t, s.RegisterMember(context.Background(), "a@b.c", "pw"), shared.ErrMissingConfig)
		assert.ErrorIs(t, s.RegisterLicensee(context.Background(), "a@b.c", "pw"), shared.ErrMissingConfig)
		assert.Equal(t, []string{MsgRegisterFailed, MsgRegisterFailed}, notes.Errors)
		assert.Empty(t, notes.Successes)
	})

	t.Run("failure surfaces the server message", func(t *testing.T) {
		f := newFixture(t)
		f.api.Err = &services.APIError{Status: 409, Message: "Email already registered"}

		err := f.store.RegisterMember(context.Background(), "a@b.c", "pw")
		require.Error(t, err)
		assert.Equal(t, []string{"Email already registered"}, f.notes.Errors)
	})
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	f.api.Result = &models.LoginResult{Token: "tok", User: member()}
	_, err := f.store.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)

	f.store.Logout()

	assert.False(t, f.store.IsAuthenticated())
	assert.Empty(t, f.store.Role())
	assert.False(t, f.storage.Has(TokenKey))
	assert.False(t, f.storage.Has(UserKey))
	assert.Equal(t, []string{RootPath}, f.redirects.Paths)
	assert.Contains(t, f.notes.Successes, MsgLogoutSuccess)

	_, err = f.store.Token()
	assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
}

func TestInvalidate(t *testing.T) {
	f := newFixture(t)
	f.api.Result = &models.LoginResult{Token: "tok", User: member()}
	_, err := f.store.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)

	assert.True(t, f.store.Invalidate())
	assert.False(t, f.store.IsAuthenticated())
	assert.False(t, f.storage.Has(TokenKey))
	assert.Equal(t, []string{MsgSessionRejected}, f.notes.Errors)
	assert.Zero(t, f.redirects.Count())

	assert.False(t, f.store.Invalidate())
	assert.Len(t, f.notes.Errors, 1)

	f.store.Reject()
	assert.Equal(t, []string{RootPath}, f.redirects.Paths)
}

func TestGuard(t *testing.T) {
	f := newFixture(t)

	t.Run("anonymous", func(t *testing.T) {
		assert.False(t, Allow(f.store))
		assert.False(t, Allow(f.store, models.RoleMember))
		assert.ErrorIs(t, Require(f.store, models.RoleMember), shared.ErrNotAuthenticated)
		assert.Equal(t, 1, f.redirects.Count())
	})

	f.api.Result = &models.LoginResult{Token: "tok", User: member()}
	_, err := f.store.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)

	t.Run("authenticated", func(t *testing.T) {
		assert.True(t, Allow(f.store))
		assert.True(t, Allow(f.store, models.RoleMember, models.RoleAdmin))
		assert.False(t, Allow(f.store, models.RoleAdmin))

		assert.NoError(t, Require(f.store, models.RoleMember))
		assert.Equal(t, 1, f.redirects.Count())

		assert.ErrorIs(t, Require(f.store, models.RoleLicensee), shared.ErrForbidden)
		assert.Equal(t, 2, f.redirects.Count())
	})

	t.Run("nil principal", func(t *testing.T) {
		assert.False(t, Allow(nil))
		assert.ErrorIs(t, Check(nil), shared.ErrNotAuthenticated)
	})
}

func TestExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1", "exp": exp.Unix()}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)

	got, ok := Expiry(signed)
	require.True(t, ok)
	assert.True(t, got.Equal(exp))

	_, ok = Expiry("opaque-token")
	assert.False(t, ok)
	_, ok = Expiry("")
	assert.False(t, ok)

	storage := NewMemoryStorage()
	require.NoError(t, storage.Save(signed, `{"id":"u1","email":"a@b.c","role":"MEMBER"}`))
	s := NewStore(StoreOpts{Storage: storage})
	s.Init()

	tok, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, signed, tok.AccessToken)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.True(t, tok.Expiry.Equal(exp))
}
