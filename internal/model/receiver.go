package model

// Receiver holds an optional reference to a User.
// Deleting the referenced user clears ReceiverID (ON DELETE SET NULL).
type Receiver struct {
	ID         string  `json:"id" db:"id" field:"readonly,label=ID"`
	ReceiverID *string `json:"-" db:"receiver_id"`

	// Receiver is populated on read from ReceiverID.
	Receiver *User `json:"receiver" field:"fk=ReceiverID,label=Receiver Profile"`
}

// GetID returns the receiver identifier.
func (r *Receiver) GetID() string { return r.ID }

// SetID assigns the receiver identifier.
func (r *Receiver) SetID(id string) { r.ID = id }
