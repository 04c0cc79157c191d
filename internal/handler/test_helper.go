package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"locallibrary/internal/model"
	"locallibrary/internal/policy"
	"locallibrary/internal/repository"
	"locallibrary/internal/testutil"
)

// testNow pins the clock so loan-date assertions are stable.
var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

const testPassword = "s3cretpass"

type testApp struct {
	db      *gorm.DB
	session *scs.SessionManager
	users   repository.UserRepository
	handler http.Handler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.NewTestDB(t)

	gin.SetMode(gin.TestMode)
	e := gin.New()

	session := scs.New()
	session.Lifetime = time.Hour

	users := repository.NewGormUserRepository(db)

	Register(e, Deps{
		DB:         db,
		Session:    session,
		Authz:      policy.NewTable(),
		Throttle:   policy.Unlimited{},
		Users:      users,
		Tokens:     repository.NewGormTokenRepository(db),
		Authors:    repository.NewGormAuthorRepository(db),
		Books:      repository.NewGormBookRepository(db),
		Instances:  repository.NewGormInstanceRepository(db),
		Summary:    repository.NewGormSummaryRepository(db),
		TokenTTL:   24 * time.Hour,
		RefreshTTL: 30 * 24 * time.Hour,
		Now:        func() time.Time { return testNow },
	})

	return &testApp{
		db:      db,
		session: session,
		users:   users,
		handler: session.LoadAndSave(e),
	}
}

// do sends a JSON request through the full middleware chain. A non-empty
// cookie is attached as-is, so session state survives across calls.
func (a *testApp) do(t *testing.T, method, path string, body any, cookie string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

// doAuth is do with a bearer token instead of a session cookie.
func (a *testApp) doAuth(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func (a *testApp) seedUser(t *testing.T, username string, perms ...string) *model.User {
	t.Helper()

	user := &model.User{
		Username: username,
		Email:    username + "@example.com",
	}
	if err := user.SetPassword(testPassword); err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if err := a.db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user %q: %v", username, err)
	}

	if len(perms) > 0 {
		if err := a.users.Grant(context.Background(), user, perms...); err != nil {
			t.Fatalf("failed to grant permissions: %v", err)
		}
	}

	return user
}

func (a *testApp) seedStaff(t *testing.T, username string) *model.User {
	t.Helper()

	user := &model.User{
		Username: username,
		Email:    username + "@example.com",
		IsStaff:  true,
	}
	if err := user.SetPassword(testPassword); err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if err := a.db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed staff user %q: %v", username, err)
	}

	return user
}

// login authenticates through the real endpoint and returns the session
// cookie to replay on later requests.
func (a *testApp) login(t *testing.T, username string) string {
	t.Helper()

	w := a.do(t, http.MethodPost, "/catalog/login", map[string]any{
		"username": username,
		"password": testPassword,
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login for %q failed: status %d, body=%s", username, w.Code, w.Body.String())
	}

	for _, c := range w.Result().Cookies() {
		if c.Name == "session" {
			return c.Name + "=" + c.Value
		}
	}
	t.Fatalf("login for %q returned no session cookie", username)
	return ""
}

// issueToken mints an API token pair through the real endpoint and returns
// the authentication token plaintext.
func (a *testApp) issueToken(t *testing.T, username string) string {
	t.Helper()

	w := a.do(t, http.MethodPost, "/api/token", map[string]any{
		"username": username,
		"password": testPassword,
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("token issue for %q failed: status %d, body=%s", username, w.Code, w.Body.String())
	}

	var resp TokenPairResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal token response: %v", err)
	}
	return resp.Data.Token
}

func (a *testApp) seedLanguage(t *testing.T, name string) model.Language {
	t.Helper()

	lang := model.Language{Name: name}
	if err := a.db.Create(&lang).Error; err != nil {
		t.Fatalf("failed to seed language %q: %v", name, err)
	}
	return lang
}

func (a *testApp) seedGenre(t *testing.T, name string) model.Genre {
	t.Helper()

	genre := model.Genre{Name: name}
	if err := a.db.Create(&genre).Error; err != nil {
		t.Fatalf("failed to seed genre %q: %v", name, err)
	}
	return genre
}

func (a *testApp) seedAuthor(t *testing.T, first, last string) model.Author {
	t.Helper()

	author := model.Author{FirstName: first, LastName: last}
	if err := a.db.Create(&author).Error; err != nil {
		t.Fatalf("failed to seed author %q: %v", last, err)
	}
	return author
}

func (a *testApp) seedBook(t *testing.T, author model.Author, lang model.Language, title string, genres ...model.Genre) model.Book {
	t.Helper()

	book := model.Book{
		Title:      title,
		AuthorID:   author.ID,
		Summary:    "summary of " + title,
		ISBN:       "978" + title,
		LanguageID: lang.ID,
		Genres:     genres,
	}
	if err := a.db.Create(&book).Error; err != nil {
		t.Fatalf("failed to seed book %q: %v", title, err)
	}
	return book
}

func (a *testApp) seedInstance(t *testing.T, book model.Book, status model.Status) model.BookInstance {
	t.Helper()

	inst := model.BookInstance{
		BookID:  book.ID,
		Imprint: "First edition",
		Status:  status,
	}
	if err := a.db.Create(&inst).Error; err != nil {
		t.Fatalf("failed to seed instance of %q: %v", book.Title, err)
	}
	return inst
}

func (a *testApp) seedLoan(t *testing.T, book model.Book, borrower *model.User, due time.Time) model.BookInstance {
	t.Helper()

	inst := model.BookInstance{
		BookID:     book.ID,
		Imprint:    "First edition",
		Status:     model.StatusOnLoan,
		BorrowerID: &borrower.ID,
		DueBack:    &due,
	}
	if err := a.db.Create(&inst).Error; err != nil {
		t.Fatalf("failed to seed loan of %q: %v", book.Title, err)
	}
	return inst
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v", err)
	}
	return resp.Code
}
