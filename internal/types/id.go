package types

import "github.com/google/uuid"

// ID identifies persisted records.
type ID string

func NewID() ID {
	return ID(uuid.NewString())
}
