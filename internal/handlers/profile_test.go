package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/CiroGamboa/bimoi/internal/domain"
	"github.com/CiroGamboa/bimoi/internal/handlers"
	"github.com/CiroGamboa/bimoi/internal/identity"
	"github.com/CiroGamboa/bimoi/internal/logger"
)

func newProfileServer(store *stubIdentityStore) *echo.Echo {
	e := echo.New()
	e.Use(withTestUser("owner-1"))
	resolver := identity.NewResolver(logger.L, store)
	handlers.NewProfileHandler(logger.L, resolver).Register(e)
	return e
}

func TestGetProfile(t *testing.T) {
	t.Parallel()
	e := newProfileServer(&stubIdentityStore{
		profiles: map[string]domain.AccountProfile{
			"owner-1": {Name: "Ada", Bio: "Engineer"},
		},
	})

	rec := doJSON(e, http.MethodGet, "/profile", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Ada") || !strings.Contains(body, "Engineer") {
		t.Errorf("body = %s", body)
	}
}

func TestGetProfileNotFound(t *testing.T) {
	t.Parallel()
	e := newProfileServer(&stubIdentityStore{})

	if rec := doJSON(e, http.MethodGet, "/profile", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestUpdateProfilePartial(t *testing.T) {
	t.Parallel()
	e := newProfileServer(&stubIdentityStore{
		profiles: map[string]domain.AccountProfile{
			"owner-1": {Name: "Ada", Bio: "Engineer"},
		},
	})

	rec := doJSON(e, http.MethodPatch, "/profile", `{"bio":"Mathematician"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Ada") || !strings.Contains(body, "Mathematician") {
		t.Errorf("name should survive a bio-only patch: %s", body)
	}
}

func TestUpdateProfileValidation(t *testing.T) {
	t.Parallel()
	e := newProfileServer(&stubIdentityStore{
		profiles: map[string]domain.AccountProfile{
			"owner-1": {Name: "Ada"},
		},
	})

	long := strings.Repeat("x", 2001)
	if rec := doJSON(e, http.MethodPatch, "/profile", `{"bio":"`+long+`"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("oversized bio: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if rec := doJSON(e, http.MethodPatch, "/profile", `{"name":"  "}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("blank name: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
