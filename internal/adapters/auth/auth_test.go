package auth_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/resumeinsight/internal/adapters/auth"
	logging "github.com/okian/resumeinsight/pkg/logger"
)

func init() {
	if err := logging.Init(); err != nil {
		panic(err)
	}
}

func signed(t *testing.T, subject string, expires time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expires),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

type fakeAuthenticator struct {
	token string
	err   error
	calls int
}

func (f *fakeAuthenticator) Login(context.Context, string, string) (string, error) {
	f.calls++
	return f.token, f.err
}

func TestFileStore(t *testing.T) {
	convey.Convey("Given a file store in a temp dir", t, func() {
		path := filepath.Join(t.TempDir(), "nested", "credentials.yaml")
		store := auth.NewFileStore(path)

		convey.Convey("When nothing was saved", func() {
			creds, err := store.Load()

			convey.Convey("Then empty credentials should be returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(creds.Token, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When credentials are saved", func() {
			err := store.Save(auth.Credentials{Username: "ada", Token: "abc"})
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then they should round trip with owner-only permissions", func() {
				creds, err := store.Load()
				convey.So(err, convey.ShouldBeNil)
				convey.So(creds.Username, convey.ShouldEqual, "ada")
				convey.So(creds.Token, convey.ShouldEqual, "abc")

				info, err := os.Stat(path)
				convey.So(err, convey.ShouldBeNil)
				convey.So(info.Mode().Perm(), convey.ShouldEqual, os.FileMode(0o600))
			})

			convey.Convey("Then Clear should remove them", func() {
				convey.So(store.Clear(), convey.ShouldBeNil)
				convey.So(store.Clear(), convey.ShouldBeNil)
				creds, err := store.Load()
				convey.So(err, convey.ShouldBeNil)
				convey.So(creds.Token, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When the file is corrupt", func() {
			convey.So(os.MkdirAll(filepath.Dir(path), 0o700), convey.ShouldBeNil)
			convey.So(os.WriteFile(path, []byte("token: [unterminated"), 0o600), convey.ShouldBeNil)
			_, err := store.Load()

			convey.Convey("Then a read error should be returned", func() {
				convey.So(errors.Is(err, auth.ErrReadCredentials), convey.ShouldBeTrue)
			})
		})
	})
}

func TestSession(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	ctx := context.Background()

	convey.Convey("Given a store holding an expired token", t, func() {
		store := &auth.MemoryStore{}
		_ = store.Save(auth.Credentials{Username: "ada", Token: signed(t, "ada", now.Add(-time.Minute))})

		s, err := auth.NewSession(store, auth.WithClock(clock))

		convey.Convey("Then the session should start signed out and clear the store", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(s.Authenticated(), convey.ShouldBeFalse)
			creds, _ := store.Load()
			convey.So(creds.Token, convey.ShouldBeEmpty)
		})
	})

	convey.Convey("Given a store holding a valid token", t, func() {
		store := &auth.MemoryStore{}
		token := signed(t, "ada@example.com", now.Add(time.Hour))
		_ = store.Save(auth.Credentials{Username: "ada", Token: token})

		s, err := auth.NewSession(store, auth.WithClock(clock))

		convey.Convey("Then the token and its claims should be restored", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(s.Token(), convey.ShouldEqual, token)
			convey.So(s.Subject(), convey.ShouldEqual, "ada@example.com")
			convey.So(s.ExpiresAt().Equal(now.Add(time.Hour)), convey.ShouldBeTrue)
			convey.So(s.Username(), convey.ShouldEqual, "ada")
		})

		convey.Convey("When the clock passes the expiry", func() {
			now = now.Add(2 * time.Hour)
			defer func() { now = now.Add(-2 * time.Hour) }()

			convey.Convey("Then Token should return empty", func() {
				convey.So(s.Token(), convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When logging out", func() {
			convey.So(s.Logout(ctx), convey.ShouldBeNil)

			convey.Convey("Then the token should be gone everywhere", func() {
				convey.So(s.Authenticated(), convey.ShouldBeFalse)
				creds, _ := store.Load()
				convey.So(creds.Token, convey.ShouldBeEmpty)
			})
		})
	})

	convey.Convey("Given an empty session", t, func() {
		store := &auth.MemoryStore{}
		s, err := auth.NewSession(store, auth.WithClock(clock))
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When login is attempted with a blank password", func() {
			a := &fakeAuthenticator{token: "x"}
			err := s.Login(ctx, a, "ada", "")

			convey.Convey("Then it should fail without calling the backend", func() {
				convey.So(errors.Is(err, auth.ErrInvalidCredentials), convey.ShouldBeTrue)
				convey.So(a.calls, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the backend rejects the login", func() {
			a := &fakeAuthenticator{err: errors.New("unauthorized")}
			err := s.Login(ctx, a, "ada", "secret")

			convey.Convey("Then the error should surface and nothing be stored", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(s.Authenticated(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When login succeeds with an opaque token", func() {
			a := &fakeAuthenticator{token: "opaque-token"}
			err := s.Login(ctx, a, "ada", "secret")

			convey.Convey("Then the token should be held and persisted", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(s.Token(), convey.ShouldEqual, "opaque-token")
				convey.So(s.ExpiresAt().IsZero(), convey.ShouldBeTrue)
				creds, _ := store.Load()
				convey.So(creds.Token, convey.ShouldEqual, "opaque-token")
				convey.So(creds.Username, convey.ShouldEqual, "ada")
			})
		})

		convey.Convey("When the backend issues an already expired token", func() {
			a := &fakeAuthenticator{token: signed(t, "ada", now.Add(-time.Second))}
			err := s.Login(ctx, a, "ada", "secret")

			convey.Convey("Then login should fail", func() {
				convey.So(errors.Is(err, auth.ErrTokenExpired), convey.ShouldBeTrue)
			})
		})
	})
}
