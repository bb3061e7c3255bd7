package contacts

// Result variants are closed sum types: each operation returns one interface
// with a fixed set of concrete outcomes, and callers switch over them.

// ReceiveResult is the outcome of ReceiveCard.
type ReceiveResult interface{ isReceiveResult() }

// Pending means the card was accepted and the engine is waiting for context text.
type Pending struct {
	PendingID string
	Name      string
}

// Duplicate means an existing contact matched the card by phone or external id.
type Duplicate struct {
	PersonID string
	Name     string
}

// Invalid means the card failed validation (e.g. blank name).
type Invalid struct {
	Reason string
}

func (Pending) isReceiveResult()   {}
func (Duplicate) isReceiveResult() {}
func (Invalid) isReceiveResult()   {}

// SubmitResult is the outcome of SubmitContext.
type SubmitResult interface{ isSubmitResult() }

// Created means the contact was stored. PersonID is the linked existing person
// id when identity resolution matched, else the newly generated one.
type Created struct {
	PersonID string
	Name     string
}

// PendingNotFound means there was no pending card for the given id, the text
// was blank, or the pending had already been consumed.
type PendingNotFound struct {
	PendingID string
}

func (Created) isSubmitResult()         {}
func (PendingNotFound) isSubmitResult() {}

// AddContextResult is the outcome of AddContext.
type AddContextResult interface{ isAddContextResult() }

// AddContextSuccess means text was appended to the contact's context.
type AddContextSuccess struct {
	Name string
}

// AddContextNotFound means no contact exists with the given id.
type AddContextNotFound struct {
	PersonID string
}

// AddContextInvalid means the text was blank.
type AddContextInvalid struct{}

func (AddContextSuccess) isAddContextResult()  {}
func (AddContextNotFound) isAddContextResult() {}
func (AddContextInvalid) isAddContextResult()  {}
