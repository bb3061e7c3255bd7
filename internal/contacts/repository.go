package contacts

import (
	"context"

	"github.com/CiroGamboa/bimoi/internal/domain"
)

// Repository persists and queries contact aggregates for one owner. The owner
// scope is fixed at construction; implementations must be safe for concurrent
// use from multiple conversations.
type Repository interface {
	// Add stores person as a contact of the owner. When linkToExistingID is
	// non-empty, only the knows edge is created towards that existing person
	// node and no new node is stored.
	Add(ctx context.Context, person domain.Person, linkToExistingID string) error

	// GetByID returns the owner's contact with the given person id.
	GetByID(ctx context.Context, personID string) (domain.Person, bool, error)

	// ListAll returns the owner's contacts in creation order.
	ListAll(ctx context.Context) ([]domain.Person, error)

	// FindDuplicate returns an existing contact matching the card by
	// normalized phone (checked first) or external id.
	FindDuplicate(ctx context.Context, card domain.ContactCard) (domain.Person, bool, error)

	// AppendContext appends text to the contact's context description.
	// Returns false when the contact does not exist.
	AppendContext(ctx context.Context, personID, text string) (bool, error)

	// MutualContactIDs returns ids of contacts that are registered owners who
	// also hold a knows edge back to this owner.
	MutualContactIDs(ctx context.Context) (map[string]struct{}, error)
}
