package authn

import (
	"fmt"

	"github.com/google/uuid"
)

// identityIDFromSubject maps a token subject claim back to a store ID.
func identityIDFromSubject(subject string) (uuid.UUID, error) {
	id, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("authn: subject is not a user ID: %w", err)
	}
	return id, nil
}
