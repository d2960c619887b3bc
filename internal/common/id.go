package common

import (
	"github.com/google/uuid"
)

// NewPointID generates a random unique identifier for a vector point.
func NewPointID() string {
	return uuid.New().String()
}
