package domain

// Query is a normalized listing request handed to the store.
// Empty strings impose no predicate.
type Query struct {
	Search        string
	Category      string
	Subject       string
	IncludeHidden bool
	Limit         int // 0 = unlimited
}

// SortPair assigns a manual position to one card.
type SortPair struct {
	ID        uint
	SortOrder int
}
