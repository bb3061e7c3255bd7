package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/CiroGamboa/bimoi/internal/contacts"
	"github.com/CiroGamboa/bimoi/internal/handlers"
	"github.com/CiroGamboa/bimoi/internal/logger"
)

// withTestUser injects an authenticated subject the way the JWT middleware
// would.
func withTestUser(ownerID string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("user", jwt.NewWithClaims(jwt.SigningMethodHS256, &jwt.RegisteredClaims{Subject: ownerID}))
			return next(c)
		}
	}
}

func newContactsServer(t *testing.T) *echo.Echo {
	t.Helper()
	registry := contacts.NewRegistry(func(string) *contacts.Service {
		return contacts.NewService(logger.L, contacts.NewMemoryRepository())
	})
	e := echo.New()
	e.Use(withTestUser("owner-1"))
	handlers.NewContactsHandler(logger.L, registry).Register(e)
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreateContact(t *testing.T) {
	t.Parallel()
	e := newContactsServer(t)

	rec := doJSON(e, http.MethodPost, "/contacts",
		`{"name":"Alice","phone_number":"+12025551234","context":"Met at a meetup"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created handlers.CreateContactResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.PersonID == "" || created.Name != "Alice" {
		t.Errorf("created = %+v", created)
	}

	listRec := doJSON(e, http.MethodGet, "/contacts", "")
	if listRec.Code != http.StatusOK {
		t.Fatalf("list status = %d", listRec.Code)
	}
	var listed []map[string]any
	if err := json.Unmarshal(listRec.Body.Bytes(), &listed); err != nil {
		t.Fatal(err)
	}
	if len(listed) != 1 || listed[0]["name"] != "Alice" {
		t.Errorf("listed = %+v", listed)
	}
}

func TestCreateContactValidation(t *testing.T) {
	t.Parallel()
	e := newContactsServer(t)

	if rec := doJSON(e, http.MethodPost, "/contacts", `{"name":"  ","context":"x"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("blank name: status = %d", rec.Code)
	}
	if rec := doJSON(e, http.MethodPost, "/contacts", `{"name":"Bob","context":"   "}`); rec.Code != http.StatusBadRequest {
		t.Errorf("blank context: status = %d", rec.Code)
	}
}

func TestCreateContactDuplicate(t *testing.T) {
	t.Parallel()
	e := newContactsServer(t)

	first := doJSON(e, http.MethodPost, "/contacts",
		`{"name":"Carol","phone_number":"+12025550000","context":"Onboarding buddy"}`)
	if first.Code != http.StatusCreated {
		t.Fatalf("first create: %d", first.Code)
	}
	second := doJSON(e, http.MethodPost, "/contacts",
		`{"name":"Carol Again","phone_number":"+12025550000","context":"Should conflict"}`)
	if second.Code != http.StatusConflict {
		t.Errorf("duplicate: status = %d, want 409", second.Code)
	}
}

func TestGetContactNotFound(t *testing.T) {
	t.Parallel()
	e := newContactsServer(t)
	if rec := doJSON(e, http.MethodGet, "/contacts/no-such-id", ""); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestSearchContacts(t *testing.T) {
	t.Parallel()
	e := newContactsServer(t)

	if rec := doJSON(e, http.MethodPost, "/contacts",
		`{"name":"Dana","context":"React and TypeScript"}`); rec.Code != http.StatusCreated {
		t.Fatalf("create: %d", rec.Code)
	}

	rec := doJSON(e, http.MethodGet, "/contacts/search?q=react", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("search status = %d", rec.Code)
	}
	var results []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0]["name"] != "Dana" {
		t.Errorf("results = %+v", results)
	}

	if rec := doJSON(e, http.MethodGet, "/contacts/search", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("missing q: status = %d, want 400", rec.Code)
	}
}

func TestAddContext(t *testing.T) {
	t.Parallel()
	e := newContactsServer(t)

	created := doJSON(e, http.MethodPost, "/contacts", `{"name":"Eve","context":"College friend"}`)
	var body handlers.CreateContactResponse
	if err := json.Unmarshal(created.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}

	if rec := doJSON(e, http.MethodPost, "/contacts/"+body.PersonID+"/context",
		`{"text":"Now lives in Berlin"}`); rec.Code != http.StatusOK {
		t.Errorf("append: status = %d", rec.Code)
	}
	if rec := doJSON(e, http.MethodPost, "/contacts/"+body.PersonID+"/context",
		`{"text":"  "}`); rec.Code != http.StatusBadRequest {
		t.Errorf("blank text: status = %d, want 400", rec.Code)
	}
	if rec := doJSON(e, http.MethodPost, "/contacts/no-such-id/context",
		`{"text":"whatever"}`); rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: status = %d, want 404", rec.Code)
	}

	get := doJSON(e, http.MethodGet, "/contacts/"+body.PersonID, "")
	if !strings.Contains(get.Body.String(), "College friend") || !strings.Contains(get.Body.String(), "Now lives in Berlin") {
		t.Errorf("context not additive: %s", get.Body.String())
	}
}

func TestListContactsMutualFilter(t *testing.T) {
	t.Parallel()
	repo := contacts.NewMemoryRepository()
	registry := contacts.NewRegistry(func(string) *contacts.Service {
		return contacts.NewService(logger.L, repo)
	})
	e := echo.New()
	e.Use(withTestUser("owner-1"))
	handlers.NewContactsHandler(logger.L, registry).Register(e)

	for _, name := range []string{"Alice", "Bob"} {
		rec := doJSON(e, http.MethodPost, "/contacts",
			`{"name":"`+name+`","context":"Friend"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create %s: status = %d", name, rec.Code)
		}
		if name == "Alice" {
			var body handlers.CreateContactResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			repo.SetMutual(body.PersonID)
		}
	}

	rec := doJSON(e, http.MethodGet, "/contacts?mutual=true", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	out := rec.Body.String()
	if !strings.Contains(out, "Alice") || strings.Contains(out, "Bob") {
		t.Errorf("mutual filter kept wrong contacts: %s", out)
	}
}
