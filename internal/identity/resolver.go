package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/CiroGamboa/bimoi/internal/domain"
)

// Resolver maps (channel, external id) pairs to person ids and manages the
// owner's account profile.
type Resolver struct {
	store  Store
	logger *slog.Logger
}

// NewResolver creates a resolver over the given store.
func NewResolver(log *slog.Logger, store Store) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{
		store:  store,
		logger: log.With(slog.String("component", "identity")),
	}
}

func validateChannel(channel, externalID string) error {
	if strings.TrimSpace(channel) == "" || strings.TrimSpace(externalID) == "" {
		return ErrInvalidArgument
	}
	if channel != ChannelTelegram {
		return fmt.Errorf("%w: %q", ErrUnsupportedChannel, channel)
	}
	return nil
}

// ResolveOrCreate returns the person id for a channel user, creating a
// registered person node on first contact. When the user already exists as an
// unregistered contact node (someone shared their card before they signed up)
// the node is marked registered and reused; newlyRegistered is true in both
// the reconciliation and the creation case.
func (r *Resolver) ResolveOrCreate(ctx context.Context, channel, externalID, initialDisplayName string) (string, bool, error) {
	if err := validateChannel(channel, externalID); err != nil {
		return "", false, err
	}
	key := Key(channel, externalID)

	rec, found, err := r.store.FindByChannelKey(ctx, key)
	if err != nil {
		return "", false, err
	}
	if found {
		if rec.Registered {
			return rec.PersonID, false, nil
		}
		if err := r.store.MarkRegistered(ctx, rec.PersonID); err != nil {
			return "", false, err
		}
		r.logger.Info("reconciled contact node into account",
			slog.String("person_id", rec.PersonID),
			slog.String("channel_key", key))
		return rec.PersonID, true, nil
	}

	name := strings.TrimSpace(initialDisplayName)
	if name == "" {
		name = "Unknown"
	}
	personID, err := r.store.CreateRegistered(ctx, key, name)
	if errors.Is(err, ErrConflict) {
		// Lost a creation race; the unique index kept a single node. Use it.
		rec, found, lookupErr := r.store.FindByChannelKey(ctx, key)
		if lookupErr != nil {
			return "", false, lookupErr
		}
		if !found {
			return "", false, err
		}
		return rec.PersonID, false, nil
	}
	if err != nil {
		return "", false, err
	}
	return personID, true, nil
}

// LookupExisting returns the person id bound to a channel user, or "" when
// the pair is empty or nothing matches. Read-only.
func (r *Resolver) LookupExisting(ctx context.Context, channel, externalID string) (string, error) {
	if strings.TrimSpace(channel) == "" || strings.TrimSpace(externalID) == "" {
		return "", nil
	}
	rec, found, err := r.store.FindByChannelKey(ctx, Key(channel, externalID))
	if err != nil {
		return "", err
	}
	if !found {
		return "", nil
	}
	return rec.PersonID, nil
}

// GetProfile returns the account profile of a person.
func (r *Resolver) GetProfile(ctx context.Context, personID string) (domain.AccountProfile, bool, error) {
	return r.store.GetProfile(ctx, personID)
}

// UpdateProfile patches the present fields of a person's profile and returns
// the updated profile. Length limits match domain constants; a violation
// returns ErrValidation without touching the store.
func (r *Resolver) UpdateProfile(ctx context.Context, personID string, req UpdateProfileRequest) (domain.AccountProfile, bool, error) {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			return domain.AccountProfile{}, false, fmt.Errorf("%w: name must not be blank", ErrValidation)
		}
		if len(trimmed) > domain.NameMaxLength {
			return domain.AccountProfile{}, false, fmt.Errorf("%w: name must be at most %d characters", ErrValidation, domain.NameMaxLength)
		}
		req.Name = &trimmed
	}
	if req.Bio != nil && len(*req.Bio) > domain.BioMaxLength {
		return domain.AccountProfile{}, false, fmt.Errorf("%w: bio must be at most %d characters", ErrValidation, domain.BioMaxLength)
	}

	updated, err := r.store.UpdateFields(ctx, personID, req)
	if err != nil {
		return domain.AccountProfile{}, false, err
	}
	if !updated {
		return domain.AccountProfile{}, false, nil
	}
	return r.store.GetProfile(ctx, personID)
}
