package models

// Flat represents a shared household.
// Users move in and out of a flat; items belong to exactly one flat.
type Flat struct {
	// ID is the unique identifier for the flat (UUID format).
	ID string

	// Name is the display name of the flat (e.g., "Olympus").
	Name string

	// Members is the list of user IDs currently living in the flat.
	Members []string

	// CreatedAt is the Unix timestamp when the flat was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last change to the flat.
	UpdatedAt int64
}

// HasMember reports whether userID lives in the flat.
func (f *Flat) HasMember(userID string) bool {
	return contains(f.Members, userID)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// without returns ids with every occurrence of id removed.
func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// RemoveMember drops userID from the member list.
func (f *Flat) RemoveMember(userID string) {
	f.Members = without(f.Members, userID)
}
