package models

// PageQuery bounds a timeline window. MaxID and SinceID are exclusive and
// optional; the same parameters drive both the cache query and the remote
// fetch so the two windows are comparable.
type PageQuery struct {
	MaxID   string
	SinceID string
	Limit   int
}

// Page is one page of a remote list together with its pagination cursors
// taken from the Link header.
type Page[T any] struct {
	Items     []T
	NextMaxID string
	PrevMinID string
}
