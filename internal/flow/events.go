package flow

// Event symbols fed into the machine. User events come from the channel
// adapter; outcome symbols are produced by effects and fed back in.
const (
	EvContactShared      = "CONTACT_SHARED"
	EvTextCommandStart   = "TEXT_COMMAND_START"
	EvTextCommandHelp    = "TEXT_COMMAND_HELP"
	EvTextCommandList    = "TEXT_COMMAND_LIST"
	EvTextCommandSearch  = "TEXT_COMMAND_SEARCH"
	EvTextCommandAdd     = "TEXT_COMMAND_ADD_CONTACT"
	EvTextFree           = "TEXT_FREE"
	EvTextUnsupported    = "TEXT_UNSUPPORTED"
	EvCallbackList       = "CALLBACK_LIST"
	EvCallbackSearch     = "CALLBACK_SEARCH"
	EvCallbackAdd        = "CALLBACK_ADD"
	EvCallbackAddMore    = "CALLBACK_ADDMORE"
	EvCallbackAddCtxDone = "CALLBACK_ADDCTX_DONE"
	EvCallbackPersonID   = "CALLBACK_PERSON_ID"
)

// Outcome symbols returned by effects.
const (
	OutDone            = "DONE"
	OutPending         = "PENDING"
	OutDuplicate       = "DUPLICATE"
	OutInvalid         = "INVALID"
	OutCreated         = "CREATED"
	OutPendingNotFound = "PENDING_NOT_FOUND"
	OutEmpty           = "EMPTY"
	OutHasResults      = "HAS_RESULTS"
	OutFound           = "FOUND"
	OutNotFound        = "NOT_FOUND"
	OutSuccess         = "SUCCESS"
)

// Payload keys used by events and effects.
const (
	PayloadName       = "name"
	PayloadPhone      = "phone_number"
	PayloadExternalID = "external_id"
	PayloadText       = "text"
	PayloadPersonID   = "person_id"
)

// Slot keys carried between steps.
const (
	SlotPendingID   = "pending_id"
	SlotPersonID    = "person_id"
	SlotContactName = "contact_name"
)

// Event is one user input mapped to a machine symbol with its payload.
type Event struct {
	Symbol  string
	Payload map[string]string
}

// Get returns the payload value for key, or "".
func (e Event) Get(key string) string {
	if e.Payload == nil {
		return ""
	}
	return e.Payload[key]
}
