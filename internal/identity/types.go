// Package identity resolves channel users (e.g. Telegram accounts) to person
// nodes in the graph. A contact node created from a shared card and the
// account node of the person who later signs up are the same node; resolution
// reconciles the two instead of creating duplicates.
package identity

import (
	"context"
	"errors"

	"github.com/CiroGamboa/bimoi/internal/domain"
)

// ChannelTelegram is the only channel currently supported.
const ChannelTelegram = "telegram"

var (
	// ErrInvalidArgument means channel or external id was empty.
	ErrInvalidArgument = errors.New("identity: channel and external id are required")
	// ErrUnsupportedChannel means the channel name is not recognized.
	ErrUnsupportedChannel = errors.New("identity: unsupported channel")
	// ErrValidation means a profile field exceeded its length limit.
	ErrValidation = errors.New("identity: profile validation failed")
	// ErrConflict is returned by stores when the channel key is already bound
	// to another person. The resolver retries the lookup on conflict.
	ErrConflict = errors.New("identity: channel key already bound")
)

// Key builds the unique channel binding key, e.g. "telegram:12345".
func Key(channel, externalID string) string {
	return channel + ":" + externalID
}

// Record is the slice of a person node the resolver works with.
type Record struct {
	PersonID   string
	Name       string
	Registered bool
}

// UpdateProfileRequest carries a partial profile update. Nil fields are left
// untouched.
type UpdateProfileRequest struct {
	Name        *string
	Bio         *string
	PhoneNumber *string
}

// Store is the persistence port for identity resolution. graph.IdentityStore
// is the production implementation; tests use an in-memory fake.
type Store interface {
	// FindByChannelKey returns the person bound to channelKey, registered or
	// not. Unregistered contact nodes carry the key once their external id is
	// known from a shared card.
	FindByChannelKey(ctx context.Context, channelKey string) (Record, bool, error)

	// MarkRegistered flips the registered flag on an existing person node.
	MarkRegistered(ctx context.Context, personID string) error

	// CreateRegistered inserts a new registered person bound to channelKey and
	// returns its id. Returns ErrConflict when the key is already taken.
	CreateRegistered(ctx context.Context, channelKey, displayName string) (string, error)

	// GetProfile returns the account profile fields of a person node.
	GetProfile(ctx context.Context, personID string) (domain.AccountProfile, bool, error)

	// UpdateFields patches the given person node. Returns false when the node
	// does not exist. Fields are pre-validated by the resolver.
	UpdateFields(ctx context.Context, personID string, req UpdateProfileRequest) (bool, error)
}
