package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kilka221/assistant/internal/domain"
)

// Identity is a local user profile. It is immutable after creation;
// deleting it cascades to the identity's session bundle.
type Identity struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewIdentity(name string) (*Identity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Identity{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now(),
	}, nil
}

func (i *Identity) IsZero() bool { return i == nil || i.ID == "" }
