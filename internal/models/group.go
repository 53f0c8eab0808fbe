package models

// Group represents a reusable participant list. Groups own expenses and
// settlements, enabling group ledger history.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Trip").
	Name string

	// MemberIDs is the list of user IDs in this group.
	MemberIDs []string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}
