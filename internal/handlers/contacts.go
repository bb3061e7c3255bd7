package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/CiroGamboa/bimoi/internal/auth"
	"github.com/CiroGamboa/bimoi/internal/contacts"
	"github.com/CiroGamboa/bimoi/internal/domain"
)

// ContactsHandler serves the REST contact endpoints. The owner comes from the
// JWT subject; each owner gets their own lifecycle engine from the registry.
type ContactsHandler struct {
	registry *contacts.Registry
	logger   *slog.Logger
}

// CreateContactRequest is the body for POST /contacts. Card and context in
// one call; the pending step is internal here.
type CreateContactRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	ExternalID  string `json:"external_id"`
	Context     string `json:"context"`
}

// CreateContactResponse is the 201 body.
type CreateContactResponse struct {
	PersonID string `json:"person_id"`
	Name     string `json:"name"`
}

// AddContextRequest is the body for POST /contacts/:id/context.
type AddContextRequest struct {
	Text string `json:"text"`
}

// NewContactsHandler creates the contacts handler.
func NewContactsHandler(log *slog.Logger, registry *contacts.Registry) *ContactsHandler {
	return &ContactsHandler{
		registry: registry,
		logger:   log.With(slog.String("handler", "contacts")),
	}
}

// Register mounts the contact routes on the Echo instance.
func (h *ContactsHandler) Register(e *echo.Echo) {
	e.POST("/contacts", h.Create)
	e.GET("/contacts", h.List)
	e.GET("/contacts/search", h.Search)
	e.GET("/contacts/:id", h.Get)
	e.POST("/contacts/:id/context", h.AddContext)
}

func (h *ContactsHandler) engine(c echo.Context) (*contacts.Service, error) {
	ownerID, err := auth.UserIDFromContext(c)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	return h.registry.ForOwner(ownerID), nil
}

// Create receives a card with its context and stores the contact.
// 400 on invalid card or missing context, 409 on duplicate.
func (h *ContactsHandler) Create(c echo.Context) error {
	engine, err := h.engine(c)
	if err != nil {
		return err
	}
	var req CreateContactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()

	received, err := engine.ReceiveCard(ctx, domain.ContactCard{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		ExternalID:  req.ExternalID,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	var pending contacts.Pending
	switch res := received.(type) {
	case contacts.Invalid:
		return echo.NewHTTPError(http.StatusBadRequest, res.Reason)
	case contacts.Duplicate:
		return echo.NewHTTPError(http.StatusConflict, "contact already exists")
	case contacts.Pending:
		pending = res
	}

	if strings.TrimSpace(req.Context) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "context is required")
	}
	submitted, err := engine.SubmitContext(ctx, pending.PendingID, req.Context)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	created, ok := submitted.(contacts.Created)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to create contact")
	}
	return c.JSON(http.StatusCreated, CreateContactResponse{
		PersonID: created.PersonID,
		Name:     created.Name,
	})
}

// List returns all contacts in creation order. With ?mutual=true it keeps
// only contacts who are registered owners and know this owner back.
func (h *ContactsHandler) List(c echo.Context) error {
	engine, err := h.engine(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	summaries, err := engine.ListContacts(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if c.QueryParam("mutual") == "true" {
		mutual, err := engine.MutualContacts(ctx)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		kept := summaries[:0]
		for _, s := range summaries {
			if _, ok := mutual[s.PersonID]; ok {
				kept = append(kept, s)
			}
		}
		summaries = kept
	}
	if summaries == nil {
		summaries = []domain.ContactSummary{}
	}
	return c.JSON(http.StatusOK, summaries)
}

// Search returns contacts whose context or bio matches the q keyword.
func (h *ContactsHandler) Search(c echo.Context) error {
	engine, err := h.engine(c)
	if err != nil {
		return err
	}
	keyword := c.QueryParam("q")
	if strings.TrimSpace(keyword) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
	}
	summaries, err := engine.SearchContacts(c.Request().Context(), keyword)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if summaries == nil {
		summaries = []domain.ContactSummary{}
	}
	return c.JSON(http.StatusOK, summaries)
}

// Get returns one contact by person id, 404 when absent.
func (h *ContactsHandler) Get(c echo.Context) error {
	engine, err := h.engine(c)
	if err != nil {
		return err
	}
	summary, found, err := engine.GetContact(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !found {
		return echo.NewHTTPError(http.StatusNotFound, "contact not found")
	}
	return c.JSON(http.StatusOK, summary)
}

// AddContext appends text to an existing contact's context.
func (h *ContactsHandler) AddContext(c echo.Context) error {
	engine, err := h.engine(c)
	if err != nil {
		return err
	}
	var req AddContextRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := engine.AddContext(c.Request().Context(), c.Param("id"), req.Text)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	switch res := result.(type) {
	case contacts.AddContextInvalid:
		return echo.NewHTTPError(http.StatusBadRequest, "text is required")
	case contacts.AddContextNotFound:
		return echo.NewHTTPError(http.StatusNotFound, "contact not found")
	case contacts.AddContextSuccess:
		return c.JSON(http.StatusOK, map[string]string{"name": res.Name})
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "unexpected result")
}
