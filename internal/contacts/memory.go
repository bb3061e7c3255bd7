package contacts

import (
	"context"
	"strings"
	"sync"

	"github.com/CiroGamboa/bimoi/internal/domain"
)

// MemoryRepository is an in-memory Repository for one owner. Insertion order
// is preserved. Safe for concurrent use.
type MemoryRepository struct {
	mu     sync.RWMutex
	byID   map[string]domain.Person
	order  []string
	mutual map[string]struct{}
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:   make(map[string]domain.Person),
		mutual: make(map[string]struct{}),
	}
}

// Add stores the person. With linkToExistingID set, the contact is recorded
// under the existing id instead, mirroring the graph store's link semantics.
func (r *MemoryRepository) Add(_ context.Context, person domain.Person, linkToExistingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if linkToExistingID != "" {
		person.ID = linkToExistingID
	}
	if _, ok := r.byID[person.ID]; ok {
		return nil
	}
	r.byID[person.ID] = person
	r.order = append(r.order, person.ID)
	return nil
}

// GetByID returns the stored person with the given id.
func (r *MemoryRepository) GetByID(_ context.Context, personID string) (domain.Person, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[personID]
	return p, ok, nil
}

// ListAll returns persons in insertion order.
func (r *MemoryRepository) ListAll(_ context.Context) ([]domain.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Person, 0, len(r.order))
	for _, id := range r.order {
		if p, ok := r.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// FindDuplicate matches by phone first, then external id.
func (r *MemoryRepository) FindDuplicate(_ context.Context, card domain.ContactCard) (domain.Person, bool, error) {
	cardPhone := strings.TrimSpace(card.PhoneNumber)
	cardExternal := strings.TrimSpace(card.ExternalID)
	if cardPhone == "" && cardExternal == "" {
		return domain.Person{}, false, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if cardPhone != "" {
		for _, id := range r.order {
			if p := r.byID[id]; p.PhoneNumber != "" && p.PhoneNumber == cardPhone {
				return p, true, nil
			}
		}
	}
	if cardExternal != "" {
		for _, id := range r.order {
			if p := r.byID[id]; p.ExternalID != "" && p.ExternalID == cardExternal {
				return p, true, nil
			}
		}
	}
	return domain.Person{}, false, nil
}

// AppendContext appends text to the contact's description, keeping the old text.
func (r *MemoryRepository) AppendContext(_ context.Context, personID, text string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[personID]
	if !ok {
		return false, nil
	}
	p.Context.Description = domain.AppendDescription(p.Context.Description, text)
	r.byID[personID] = p
	return true, nil
}

// MutualContactIDs returns the ids marked mutual with SetMutual.
func (r *MemoryRepository) MutualContactIDs(_ context.Context) (map[string]struct{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]struct{}, len(r.mutual))
	for id := range r.mutual {
		out[id] = struct{}{}
	}
	return out, nil
}

// SetMutual marks a contact id as mutual. Test helper.
func (r *MemoryRepository) SetMutual(personID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutual[personID] = struct{}{}
}
