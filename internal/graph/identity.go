package graph

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/arangodb/go-driver/v2/arangodb/shared"
	"github.com/google/uuid"

	"github.com/CiroGamboa/bimoi/internal/domain"
	"github.com/CiroGamboa/bimoi/internal/identity"
)

// IdentityStore is the identity.Store over the persons collection. The unique
// sparse channel_key index backs its race guarantees.
type IdentityStore struct {
	db     arangodb.Database
	logger *slog.Logger
}

// NewIdentityStore creates the store over the shared database handle.
func NewIdentityStore(log *slog.Logger, db arangodb.Database) *IdentityStore {
	if log == nil {
		log = slog.Default()
	}
	return &IdentityStore{
		db:     db,
		logger: log.With(slog.String("component", "graph.identity")),
	}
}

// FindByChannelKey returns the person bound to channelKey.
func (s *IdentityStore) FindByChannelKey(ctx context.Context, channelKey string) (identity.Record, bool, error) {
	const query = `
		FOR p IN persons
			FILTER p.channel_key == @key
			LIMIT 1
			RETURN p
	`
	cursor, err := s.db.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]any{"key": channelKey},
	})
	if err != nil {
		return identity.Record{}, false, fmt.Errorf("find by channel key: %w", err)
	}
	defer cursor.Close()

	if !cursor.HasMore() {
		return identity.Record{}, false, nil
	}
	var doc personDoc
	if _, err := cursor.ReadDocument(ctx, &doc); err != nil {
		return identity.Record{}, false, fmt.Errorf("read person: %w", err)
	}
	return identity.Record{
		PersonID:   doc.Key,
		Name:       doc.Name,
		Registered: doc.Registered,
	}, true, nil
}

// MarkRegistered flips the registered flag on a person node.
func (s *IdentityStore) MarkRegistered(ctx context.Context, personID string) error {
	const query = `UPDATE { _key: @key } WITH { registered: true } IN persons`
	cursor, err := s.db.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]any{"key": personID},
	})
	if err != nil {
		return fmt.Errorf("mark registered: %w", err)
	}
	cursor.Close()
	return nil
}

// CreateRegistered inserts a new registered person bound to channelKey.
// Returns identity.ErrConflict when the unique index rejects the key.
func (s *IdentityStore) CreateRegistered(ctx context.Context, channelKey, displayName string) (string, error) {
	channel, externalID, _ := strings.Cut(channelKey, ":")
	doc := personDoc{
		Key:        uuid.NewString(),
		Name:       displayName,
		ExternalID: externalID,
		Channel:    channel,
		ChannelKey: channelKey,
		Registered: true,
		CreatedAt:  time.Now().UTC(),
	}
	const query = `INSERT @doc INTO persons`
	cursor, err := s.db.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]any{"doc": doc},
	})
	if err != nil {
		if shared.IsConflict(err) {
			return "", identity.ErrConflict
		}
		return "", fmt.Errorf("insert person: %w", err)
	}
	cursor.Close()

	s.logger.Info("person registered",
		slog.String("person_id", doc.Key),
		slog.String("channel_key", channelKey))
	return doc.Key, nil
}

// GetProfile returns the profile fields from a person node.
func (s *IdentityStore) GetProfile(ctx context.Context, personID string) (domain.AccountProfile, bool, error) {
	const query = `
		FOR p IN persons
			FILTER p._key == @key
			LIMIT 1
			RETURN p
	`
	cursor, err := s.db.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]any{"key": personID},
	})
	if err != nil {
		return domain.AccountProfile{}, false, fmt.Errorf("get profile: %w", err)
	}
	defer cursor.Close()

	if !cursor.HasMore() {
		return domain.AccountProfile{}, false, nil
	}
	var doc personDoc
	if _, err := cursor.ReadDocument(ctx, &doc); err != nil {
		return domain.AccountProfile{}, false, fmt.Errorf("read person: %w", err)
	}
	return domain.AccountProfile{
		Name:        doc.Name,
		Bio:         doc.Bio,
		PhoneNumber: doc.PhoneNumber,
	}, true, nil
}

// UpdateFields patches only the present fields of the person node.
func (s *IdentityStore) UpdateFields(ctx context.Context, personID string, req identity.UpdateProfileRequest) (bool, error) {
	patch := make(map[string]any)
	if req.Name != nil {
		patch["name"] = *req.Name
	}
	if req.Bio != nil {
		patch["bio"] = *req.Bio
	}
	if req.PhoneNumber != nil {
		patch["phone_number"] = *req.PhoneNumber
	}
	if len(patch) == 0 {
		_, found, err := s.GetProfile(ctx, personID)
		return found, err
	}

	const query = `
		FOR p IN persons
			FILTER p._key == @key
			LIMIT 1
			UPDATE p WITH @patch IN persons
			RETURN NEW
	`
	cursor, err := s.db.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]any{"key": personID, "patch": patch},
	})
	if err != nil {
		return false, fmt.Errorf("update profile: %w", err)
	}
	defer cursor.Close()

	updated := false
	for cursor.HasMore() {
		var doc personDoc
		if _, err := cursor.ReadDocument(ctx, &doc); err != nil {
			return false, fmt.Errorf("read updated person: %w", err)
		}
		updated = true
	}
	return updated, nil
}
