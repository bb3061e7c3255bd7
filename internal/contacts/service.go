// Package contacts implements the contact lifecycle engine: receive a contact
// card, hold it pending, and store it once the owner explains why the person
// matters. One engine instance serves one owner.
package contacts

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/CiroGamboa/bimoi/internal/domain"
)

// LookupExternalID resolves a channel external id to an existing person id, or
// "" when unknown. Used to link a new contact to a person who is already
// registered instead of creating a duplicate node.
type LookupExternalID func(ctx context.Context, externalID string) (string, error)

// NormalizePhone canonicalizes a raw phone number; ok=false means invalid/absent.
type NormalizePhone func(raw string) (string, bool)

// Service is the lifecycle engine for one owner. It holds at most one pending
// card at a time; receiving a new card silently replaces an unconsumed one.
type Service struct {
	repo      Repository
	lookup    LookupExternalID
	normalize NormalizePhone
	logger    *slog.Logger

	mu          sync.Mutex
	pendingID   string
	pendingCard domain.ContactCard
	hasPending  bool
}

// Option configures a Service.
type Option func(*Service)

// WithLookup wires identity resolution for linking contacts to existing persons.
func WithLookup(lookup LookupExternalID) Option {
	return func(s *Service) { s.lookup = lookup }
}

// WithNormalizer sets the phone normalizer applied to incoming cards.
func WithNormalizer(normalize NormalizePhone) Option {
	return func(s *Service) { s.normalize = normalize }
}

// NewService creates a lifecycle engine over the owner-scoped repository.
func NewService(log *slog.Logger, repo Repository, opts ...Option) *Service {
	if log == nil {
		log = slog.Default()
	}
	s := &Service{
		repo:   repo,
		logger: log.With(slog.String("component", "contacts")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReceiveCard accepts a contact card. The phone number is normalized before
// duplicate lookup; an invalid phone is treated as absent. Duplicate matches
// leave the repository and the pending slot untouched.
func (s *Service) ReceiveCard(ctx context.Context, card domain.ContactCard) (ReceiveResult, error) {
	name := strings.TrimSpace(card.Name)
	if name == "" {
		return Invalid{Reason: "Name is required."}, nil
	}
	card.Name = name
	card.ExternalID = strings.TrimSpace(card.ExternalID)
	if s.normalize != nil {
		if normalized, ok := s.normalize(card.PhoneNumber); ok {
			card.PhoneNumber = normalized
		} else {
			card.PhoneNumber = ""
		}
	} else {
		card.PhoneNumber = strings.TrimSpace(card.PhoneNumber)
	}

	existing, found, err := s.repo.FindDuplicate(ctx, card)
	if err != nil {
		return nil, err
	}
	if found {
		return Duplicate{PersonID: existing.ID, Name: existing.Name}, nil
	}

	pendingID := uuid.NewString()
	s.mu.Lock()
	if s.hasPending {
		s.logger.Debug("replacing pending card", slog.String("old_pending_id", s.pendingID))
	}
	s.pendingID = pendingID
	s.pendingCard = card
	s.hasPending = true
	s.mu.Unlock()

	return Pending{PendingID: pendingID, Name: name}, nil
}

// SubmitContext consumes the pending card identified by pendingID and stores
// the contact with the given context text. The pending slot is single-use: it
// is cleared on success and on blank or invalid text alike.
func (s *Service) SubmitContext(ctx context.Context, pendingID, text string) (SubmitResult, error) {
	s.mu.Lock()
	if !s.hasPending || s.pendingID != pendingID {
		s.mu.Unlock()
		return PendingNotFound{PendingID: pendingID}, nil
	}
	card := s.pendingCard
	// Consume the pending unconditionally; a stale id never works twice.
	s.pendingID = ""
	s.pendingCard = domain.ContactCard{}
	s.hasPending = false
	s.mu.Unlock()

	relCtx, err := domain.NewRelationshipContext(text)
	if err != nil {
		return PendingNotFound{PendingID: pendingID}, nil
	}
	person, err := domain.NewPerson(card.Name, card.PhoneNumber, card.ExternalID, relCtx)
	if err != nil {
		return PendingNotFound{PendingID: pendingID}, nil
	}

	linkToExisting := ""
	if s.lookup != nil && card.ExternalID != "" {
		linkToExisting, err = s.lookup(ctx, card.ExternalID)
		if err != nil {
			return nil, err
		}
	}

	if err := s.repo.Add(ctx, person, linkToExisting); err != nil {
		return nil, err
	}

	effectiveID := person.ID
	if linkToExisting != "" {
		effectiveID = linkToExisting
		s.logger.Info("linked contact to existing person",
			slog.String("person_id", linkToExisting),
			slog.String("external_id", card.ExternalID))
	}
	return Created{PersonID: effectiveID, Name: person.Name}, nil
}

// ListContacts returns all contacts in creation order.
func (s *Service) ListContacts(ctx context.Context) ([]domain.ContactSummary, error) {
	persons, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]domain.ContactSummary, 0, len(persons))
	for _, p := range persons {
		summaries = append(summaries, summarize(p))
	}
	return summaries, nil
}

// SearchContacts returns contacts whose context description or bio contains
// keyword, case-insensitively. A blank keyword matches nothing.
func (s *Service) SearchContacts(ctx context.Context, keyword string) ([]domain.ContactSummary, error) {
	needle := strings.ToLower(strings.TrimSpace(keyword))
	if needle == "" {
		return nil, nil
	}
	persons, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	var summaries []domain.ContactSummary
	for _, p := range persons {
		if strings.Contains(strings.ToLower(p.Context.Description), needle) ||
			(p.Bio != "" && strings.Contains(strings.ToLower(p.Bio), needle)) {
			summaries = append(summaries, summarize(p))
		}
	}
	return summaries, nil
}

// GetContact returns one contact by person id.
func (s *Service) GetContact(ctx context.Context, personID string) (domain.ContactSummary, bool, error) {
	person, found, err := s.repo.GetByID(ctx, personID)
	if err != nil || !found {
		return domain.ContactSummary{}, false, err
	}
	return summarize(person), true, nil
}

// AddContext appends text to an existing contact's context. The blank-text
// check happens before any repository access.
func (s *Service) AddContext(ctx context.Context, personID, text string) (AddContextResult, error) {
	if strings.TrimSpace(text) == "" {
		return AddContextInvalid{}, nil
	}
	updated, err := s.repo.AppendContext(ctx, personID, strings.TrimSpace(text))
	if err != nil {
		return nil, err
	}
	if !updated {
		return AddContextNotFound{PersonID: personID}, nil
	}
	name := "Unknown"
	if summary, found, err := s.GetContact(ctx, personID); err == nil && found {
		name = summary.Name
	}
	return AddContextSuccess{Name: name}, nil
}

// MutualContacts returns ids of contacts who also know this owner.
func (s *Service) MutualContacts(ctx context.Context) (map[string]struct{}, error) {
	return s.repo.MutualContactIDs(ctx)
}

func summarize(p domain.Person) domain.ContactSummary {
	return domain.ContactSummary{
		PersonID:    p.ID,
		Name:        p.Name,
		Context:     p.Context.Description,
		CreatedAt:   p.CreatedAt,
		PhoneNumber: p.PhoneNumber,
		Bio:         p.Bio,
	}
}
