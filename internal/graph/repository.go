package graph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/arangodb/go-driver/v2/arangodb/shared"

	"github.com/CiroGamboa/bimoi/internal/domain"
	"github.com/CiroGamboa/bimoi/internal/identity"
)

// ContactRepository is the contacts.Repository backed by the graph. Every
// query is scoped to one owner through the knows edges; person nodes are
// shared between owners, edges are not.
type ContactRepository struct {
	db      arangodb.Database
	ownerID string
	logger  *slog.Logger
}

// NewContactRepository scopes a repository to one owner.
func NewContactRepository(log *slog.Logger, db arangodb.Database, ownerID string) *ContactRepository {
	if log == nil {
		log = slog.Default()
	}
	return &ContactRepository{
		db:      db,
		ownerID: ownerID,
		logger:  log.With(slog.String("component", "graph.contacts"), slog.String("owner_id", ownerID)),
	}
}

func personID(key string) string {
	return CollectionPersons + "/" + key
}

func rowToPerson(row contactRow) domain.Person {
	return domain.Person{
		ID:          row.Person.Key,
		Name:        row.Person.Name,
		PhoneNumber: row.Person.PhoneNumber,
		ExternalID:  row.Person.ExternalID,
		Registered:  row.Person.Registered,
		Bio:         row.Person.Bio,
		CreatedAt:   row.Person.CreatedAt,
		Context: domain.RelationshipContext{
			ID:          row.Edge.ContextID,
			Description: row.Edge.Description,
			CreatedAt:   row.Edge.CreatedAt,
		},
	}
}

// queryRows runs an AQL query returning contactRow documents.
func (r *ContactRepository) queryRows(ctx context.Context, query string, bindVars map[string]any) ([]contactRow, error) {
	cursor, err := r.db.Query(ctx, query, &arangodb.QueryOptions{BindVars: bindVars})
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer cursor.Close()

	var rows []contactRow
	for cursor.HasMore() {
		var row contactRow
		if _, err := cursor.ReadDocument(ctx, &row); err != nil {
			return nil, fmt.Errorf("read contact row: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// newContactDoc builds the person node for a freshly added contact. Contacts
// that came with a Telegram user id get a channel_key so a later registration
// by that user reconciles onto this node instead of creating a second one.
func newContactDoc(person domain.Person) personDoc {
	doc := personDoc{
		Key:         person.ID,
		Name:        person.Name,
		PhoneNumber: person.PhoneNumber,
		ExternalID:  person.ExternalID,
		Registered:  false,
		CreatedAt:   person.CreatedAt,
	}
	if person.ExternalID != "" {
		doc.Channel = identity.ChannelTelegram
		doc.ChannelKey = identity.Key(identity.ChannelTelegram, person.ExternalID)
	}
	return doc
}

// Add stores the contact. With linkToExistingID set only the knows edge is
// written, pointing at the already existing person node.
func (r *ContactRepository) Add(ctx context.Context, person domain.Person, linkToExistingID string) error {
	targetKey := person.ID
	if linkToExistingID == "" {
		doc := newContactDoc(person)
		const insertPerson = `INSERT @doc INTO persons`
		cursor, err := r.db.Query(ctx, insertPerson, &arangodb.QueryOptions{
			BindVars: map[string]any{"doc": doc},
		})
		switch {
		case err == nil:
			cursor.Close()
		case shared.IsConflict(err) && doc.ChannelKey != "":
			// The unique channel_key index already holds a node for this
			// Telegram user, usually because they registered themselves.
			// Link the edge to that node instead of inserting.
			existing, err := r.personByChannelKey(ctx, doc.ChannelKey)
			if err != nil {
				return err
			}
			targetKey = existing
		default:
			return fmt.Errorf("insert person: %w", err)
		}
	} else {
		targetKey = linkToExistingID
	}

	edge := knowsDoc{
		From:        personID(r.ownerID),
		To:          personID(targetKey),
		OwnerID:     r.ownerID,
		ContextID:   person.Context.ID,
		Description: person.Context.Description,
		CreatedAt:   person.Context.CreatedAt,
		UpdatedAt:   person.Context.CreatedAt,
	}
	const insertEdge = `INSERT @edge INTO knows`
	cursor, err := r.db.Query(ctx, insertEdge, &arangodb.QueryOptions{
		BindVars: map[string]any{"edge": edge},
	})
	if err != nil {
		return fmt.Errorf("insert knows edge: %w", err)
	}
	cursor.Close()

	r.logger.Debug("contact stored",
		slog.String("person_id", targetKey),
		slog.Bool("linked", linkToExistingID != ""))
	return nil
}

// personByChannelKey resolves a channel key to the holding node's key.
func (r *ContactRepository) personByChannelKey(ctx context.Context, channelKey string) (string, error) {
	const query = `
		FOR p IN persons
			FILTER p.channel_key == @key
			LIMIT 1
			RETURN p._key
	`
	cursor, err := r.db.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]any{"key": channelKey},
	})
	if err != nil {
		return "", fmt.Errorf("find person by channel key: %w", err)
	}
	defer cursor.Close()

	if !cursor.HasMore() {
		return "", fmt.Errorf("person with channel key %q vanished after conflict", channelKey)
	}
	var key string
	if _, err := cursor.ReadDocument(ctx, &key); err != nil {
		return "", fmt.Errorf("read person key: %w", err)
	}
	return key, nil
}

// GetByID returns the owner's contact with the given person id.
func (r *ContactRepository) GetByID(ctx context.Context, id string) (domain.Person, bool, error) {
	const query = `
		FOR e IN knows
			FILTER e.owner_id == @owner AND e._to == @target
			LIMIT 1
			RETURN { person: DOCUMENT(e._to), edge: e }
	`
	rows, err := r.queryRows(ctx, query, map[string]any{
		"owner":  r.ownerID,
		"target": personID(id),
	})
	if err != nil || len(rows) == 0 {
		return domain.Person{}, false, err
	}
	return rowToPerson(rows[0]), true, nil
}

// ListAll returns the owner's contacts ordered by edge creation time.
func (r *ContactRepository) ListAll(ctx context.Context) ([]domain.Person, error) {
	const query = `
		FOR e IN knows
			FILTER e.owner_id == @owner
			SORT e.created_at ASC
			RETURN { person: DOCUMENT(e._to), edge: e }
	`
	rows, err := r.queryRows(ctx, query, map[string]any{"owner": r.ownerID})
	if err != nil {
		return nil, err
	}
	persons := make([]domain.Person, 0, len(rows))
	for _, row := range rows {
		persons = append(persons, rowToPerson(row))
	}
	return persons, nil
}

// FindDuplicate matches the card against the owner's contacts, normalized
// phone first, then external id.
func (r *ContactRepository) FindDuplicate(ctx context.Context, card domain.ContactCard) (domain.Person, bool, error) {
	const byField = `
		FOR e IN knows
			FILTER e.owner_id == @owner
			LET p = DOCUMENT(e._to)
			FILTER p.@field == @value
			LIMIT 1
			RETURN { person: p, edge: e }
	`
	for _, probe := range []struct {
		field string
		value string
	}{
		{"phone_number", card.PhoneNumber},
		{"external_id", card.ExternalID},
	} {
		if probe.value == "" {
			continue
		}
		rows, err := r.queryRows(ctx, byField, map[string]any{
			"owner": r.ownerID,
			"field": probe.field,
			"value": probe.value,
		})
		if err != nil {
			return domain.Person{}, false, err
		}
		if len(rows) > 0 {
			return rowToPerson(rows[0]), true, nil
		}
	}
	return domain.Person{}, false, nil
}

// AppendContext appends text to the owner's edge towards the contact. Returns
// false when the owner has no such contact.
func (r *ContactRepository) AppendContext(ctx context.Context, id, text string) (bool, error) {
	const query = `
		FOR e IN knows
			FILTER e.owner_id == @owner AND e._to == @target
			LIMIT 1
			UPDATE e WITH {
				description: e.description == "" ? @text : CONCAT(e.description, @sep, @text),
				updated_at: @now
			} IN knows
			RETURN NEW
	`
	cursor, err := r.db.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]any{
			"owner":  r.ownerID,
			"target": personID(id),
			"text":   text,
			"sep":    domain.ContextSeparator,
			"now":    time.Now().UTC(),
		},
	})
	if err != nil {
		return false, fmt.Errorf("append context: %w", err)
	}
	defer cursor.Close()

	updated := false
	for cursor.HasMore() {
		var doc knowsDoc
		if _, err := cursor.ReadDocument(ctx, &doc); err != nil {
			return false, fmt.Errorf("read updated edge: %w", err)
		}
		updated = true
	}
	return updated, nil
}

// MutualContactIDs returns the ids of registered contacts that also hold a
// knows edge back to this owner.
func (r *ContactRepository) MutualContactIDs(ctx context.Context) (map[string]struct{}, error) {
	const query = `
		FOR e IN knows
			FILTER e.owner_id == @owner
			LET p = DOCUMENT(e._to)
			FILTER p.registered == true
			FILTER LENGTH(
				FOR back IN knows
					FILTER back._from == e._to AND back._to == e._from
					LIMIT 1
					RETURN 1
			) > 0
			RETURN p._key
	`
	cursor, err := r.db.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]any{"owner": r.ownerID},
	})
	if err != nil {
		return nil, fmt.Errorf("query mutual contacts: %w", err)
	}
	defer cursor.Close()

	ids := make(map[string]struct{})
	for cursor.HasMore() {
		var key string
		if _, err := cursor.ReadDocument(ctx, &key); err != nil {
			return nil, fmt.Errorf("read mutual id: %w", err)
		}
		ids[key] = struct{}{}
	}
	return ids, nil
}
