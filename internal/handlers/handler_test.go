// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL is unavailable.
package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"yamdb/internal/confirm"
	"yamdb/internal/database"
	"yamdb/internal/mail"
	"yamdb/internal/middleware"
	"yamdb/internal/models"
	"yamdb/internal/store"
	"yamdb/internal/token"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "yamdb")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "yamdb")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// fakeSender records outgoing mail instead of sending it.
type fakeSender struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) last(t *testing.T) mail.Message {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatal("no mail sent")
	}
	return f.sent[len(f.sent)-1]
}

var testPager = Pager{DefaultSize: 10, MaxSize: 100}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB         *sql.DB
	Mail       *fakeSender
	Tokens     *token.Manager
	UserStore  *store.UserStore
	TitleStore *store.TitleStore
	Categories *SlugResource[models.Category]
	Genres     *SlugResource[models.Genre]
	Titles     *Titles
	Reviews    *Reviews
	Comments   *Comments
	Users      *Users
	Auth       *Auth
}

// newTestEnv wires every controller against the test database.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	users := store.NewUserStore(db)
	categories := store.NewCategoryStore(db)
	genres := store.NewGenreStore(db)
	titles := store.NewTitleStore(db)
	reviews := store.NewReviewStore(db)
	comments := store.NewCommentStore(db)

	tokens, err := token.NewManager("handler-test-secret-handler-test-secret", time.Hour, 24*time.Hour, token.NewMemoryRefreshStore())
	if err != nil {
		t.Fatalf("token.NewManager: %v", err)
	}
	sender := &fakeSender{}
	codes := confirm.NewGenerator([]byte("handler-test-confirm-key"), time.Hour)

	return &testEnv{
		DB:         db,
		Mail:       sender,
		Tokens:     tokens,
		UserStore:  users,
		TitleStore: titles,
		Categories: NewCategories(categories, testPager),
		Genres:     NewGenres(genres, testPager),
		Titles:     NewTitles(titles, categories, genres, testPager),
		Reviews:    NewReviews(titles, reviews, testPager),
		Comments:   NewComments(reviews, comments, testPager),
		Users:      NewUsers(users, testPager),
		Auth:       NewAuth(users, codes, tokens, sender, "noreply@yamdb.test"),
	}
}

// uniq returns prefix with a short random suffix.
func uniq(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

// newUser inserts a user with role and removes it when the test ends.
func (e *testEnv) newUser(t *testing.T, role models.Role) *models.User {
	t.Helper()
	name := uniq("h")
	u, err := e.UserStore.Create(context.Background(), &models.User{
		Username: name,
		Email:    name + "@handler-test.local",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() { e.DB.Exec("DELETE FROM users WHERE id = $1", u.ID) })
	return u
}

// newTitle inserts a bare title and removes it when the test ends.
func (e *testEnv) newTitle(t *testing.T) *models.Title {
	t.Helper()
	title, err := e.TitleStore.Create(context.Background(), store.TitleInput{Name: uniq("title"), Year: 1999})
	if err != nil {
		t.Fatalf("create title: %v", err)
	}
	t.Cleanup(func() { e.DB.Exec("DELETE FROM titles WHERE id = $1", title.ID) })
	return title
}

// newRequest builds a request with an optional JSON body, acting user
// and chi URL parameters given as key, value pairs.
func newRequest(t *testing.T, method, target string, body any, actor *models.User, params ...string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")

	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(params); i += 2 {
		rctx.URLParams.Add(params[i], params[i+1])
	}
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	if actor != nil {
		ctx = middleware.WithActor(ctx, actor)
	}
	return r.WithContext(ctx)
}

// serve runs h on r and returns the recorder.
func serve(h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, r)
	return rec
}

// decode unmarshals the recorded body into v.
func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status: got %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}
