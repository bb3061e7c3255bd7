package graph

import "time"

// Collection and graph names. Context text lives on the knows edge so several
// owners can know the same person with independent notes.
const (
	CollectionPersons = "persons"
	CollectionKnows   = "knows"
	GraphName         = "social"
)

// personDoc is the persons collection document. _key doubles as the person id.
type personDoc struct {
	Key         string    `json:"_key"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	ExternalID  string    `json:"external_id,omitempty"`
	Channel     string    `json:"channel,omitempty"`
	ChannelKey  string    `json:"channel_key,omitempty"`
	Registered  bool      `json:"registered"`
	Bio         string    `json:"bio,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// knowsDoc is the knows edge document from owner to contact.
type knowsDoc struct {
	From        string    `json:"_from"`
	To          string    `json:"_to"`
	OwnerID     string    `json:"owner_id"`
	ContextID   string    `json:"context_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// contactRow is the join of a person document with the owner's knows edge.
type contactRow struct {
	Person personDoc `json:"person"`
	Edge   knowsDoc  `json:"edge"`
}
