// Package domain holds the contact-book entities and their validation rules.
package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Length limits for owner profile fields stored on the person node.
const (
	NameMaxLength = 500
	BioMaxLength  = 2000
)

// ContextSeparator joins an existing context description with appended text.
const ContextSeparator = "\n\n— "

var (
	// ErrEmptyName is returned when a person is created with a blank name.
	ErrEmptyName = errors.New("person name must be non-empty")
	// ErrEmptyDescription is returned when a relationship context is created with blank text.
	ErrEmptyDescription = errors.New("relationship context description must be non-empty")
	// ErrMissingContext is returned when a person is created without a relationship context.
	ErrMissingContext = errors.New("person must have a relationship context")
)

// RelationshipContext is the human-authored note explaining why a contact matters.
// Immutable once created; appending text produces a new description value.
type RelationshipContext struct {
	ID          string
	Description string
	CreatedAt   time.Time
}

// NewRelationshipContext builds a context from non-blank description text.
func NewRelationshipContext(description string) (RelationshipContext, error) {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return RelationshipContext{}, ErrEmptyDescription
	}
	return RelationshipContext{
		ID:          uuid.NewString(),
		Description: trimmed,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// AppendDescription returns the old description with extra text joined by the
// visible separator. The original text is always preserved.
func AppendDescription(old, extra string) string {
	trimmed := strings.TrimSpace(extra)
	if trimmed == "" {
		return old
	}
	if old == "" {
		return trimmed
	}
	return old + ContextSeparator + trimmed
}

// Person is a contact or an owner. A contact cannot exist without its
// relationship context; an owner carries profile fields and the registered flag
// on the same entity so a contact can later become an owner without changing id.
type Person struct {
	ID          string
	Name        string
	PhoneNumber string
	ExternalID  string
	Registered  bool
	Bio         string
	CreatedAt   time.Time
	Context     RelationshipContext
}

// NewPerson builds a contact person from a name, optional phone/external id,
// and its required relationship context.
func NewPerson(name, phoneNumber, externalID string, ctx RelationshipContext) (Person, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return Person{}, ErrEmptyName
	}
	if ctx.Description == "" {
		return Person{}, ErrMissingContext
	}
	return Person{
		ID:          uuid.NewString(),
		Name:        trimmed,
		PhoneNumber: strings.TrimSpace(phoneNumber),
		ExternalID:  strings.TrimSpace(externalID),
		CreatedAt:   time.Now().UTC(),
		Context:     ctx,
	}, nil
}

// AccountProfile is the owner-only profile (name, bio, phone). Empty fields are
// absent; over-length input is rejected rather than truncated.
type AccountProfile struct {
	Name        string
	Bio         string
	PhoneNumber string
}

// NewAccountProfile validates and trims profile fields.
func NewAccountProfile(name, bio, phoneNumber string) (AccountProfile, error) {
	name = strings.TrimSpace(name)
	if len(name) > NameMaxLength {
		return AccountProfile{}, fmt.Errorf("profile name must be at most %d characters", NameMaxLength)
	}
	bio = strings.TrimSpace(bio)
	if len(bio) > BioMaxLength {
		return AccountProfile{}, fmt.Errorf("profile bio must be at most %d characters", BioMaxLength)
	}
	return AccountProfile{
		Name:        name,
		Bio:         bio,
		PhoneNumber: strings.TrimSpace(phoneNumber),
	}, nil
}

// ContactCard is the raw card data received from a channel before it becomes a person.
type ContactCard struct {
	Name        string
	PhoneNumber string
	ExternalID  string
}

// ContactSummary is the read projection of one contact. Derived, never stored.
type ContactSummary struct {
	PersonID    string    `json:"person_id"`
	Name        string    `json:"name"`
	Context     string    `json:"context"`
	CreatedAt   time.Time `json:"created_at"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Bio         string    `json:"bio,omitempty"`
}
