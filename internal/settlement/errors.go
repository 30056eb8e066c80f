package settlement

import "errors"

var (
	// ErrInsufficientUsers is returned when an item has too few users to define a split.
	ErrInsufficientUsers = errors.New("item should have at least one user")

	// ErrUnassignedID is returned when an entity has not been persisted yet.
	ErrUnassignedID = errors.New("entity needs to have a defined id")

	// ErrAlreadyItemUser is returned when buying a user into an item they already share.
	ErrAlreadyItemUser = errors.New("user is already assigned to item")

	// ErrNotItemUser is returned when buying out a user who does not share the item.
	ErrNotItemUser = errors.New("user was not item owner")

	// ErrAlreadyMember is returned when moving a user who already lives in a flat.
	ErrAlreadyMember = errors.New("user already in a flat")

	// ErrNotMember is returned when moving out a user who lives in no flat.
	ErrNotMember = errors.New("user has no flat")

	// ErrWrongFlat is returned when moving a user out of a flat they do not live in.
	ErrWrongFlat = errors.New("user not in flat")

	// ErrLastMember is returned when moving out the only remaining member of a flat.
	ErrLastMember = errors.New("user is the last user in the flat")
)
