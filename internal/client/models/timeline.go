// Package models defines the records persisted in the local timeline cache,
// the Mastodon wire types they are built from, and the decoded display view.
package models

import "time"

type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityUnlisted Visibility = "unlisted"
	VisibilityPrivate  Visibility = "private"
	VisibilityDirect   Visibility = "direct"
)

// AccountRecord is the thin author projection stored next to timeline rows.
type AccountRecord struct {
	ServerID       string
	LocalAccountID int64

	Acct        string
	Username    string
	DisplayName string
	URL         string
	Avatar      string
	// Emojis is the serialized custom emoji list, decoded only for display.
	Emojis string
	Bot    bool
}

// StatusRecord is one cached timeline entry.
//
// For a reblog, ServerID is the id of the reblog wrapper (the timeline entry)
// while ReblogServerID is the id of the reblogged content and
// ReblogAccountID the account that reblogged it. Content fields, including
// AuthorServerID and CreatedAt, always describe the reblogged content.
type StatusRecord struct {
	ServerID       string
	LocalAccountID int64

	URL                string
	AuthorServerID     string
	InReplyToID        string
	InReplyToAccountID string
	Content            string
	SpoilerText        string
	Visibility         Visibility
	Language           string
	CreatedAt          time.Time
	EditedAt           *time.Time

	ReblogsCount    int64
	FavouritesCount int64
	RepliesCount    int64

	Reblogged  bool
	Favourited bool
	Bookmarked bool
	Sensitive  bool
	Muted      bool
	Pinned     bool

	// Serialized payloads kept opaque until read time.
	Emojis      string
	Attachments string
	Mentions    string
	Tags        string
	Application string
	Poll        string
	Card        string

	ReblogServerID  string
	ReblogAccountID string
	RebloggedAt     *time.Time
}

// IsReblog reports whether the record is a reblog wrapper.
func (s *StatusRecord) IsReblog() bool { return s.ReblogServerID != "" }

// ContentID returns the id of the status whose content the row shows.
func (s *StatusRecord) ContentID() string {
	if s.IsReblog() {
		return s.ReblogServerID
	}
	return s.ServerID
}

// TimelineRow is either a *StatusRow or a Placeholder.
type TimelineRow interface {
	RowID() string
	timelineRow()
}

// StatusRow is cached content joined with its author and, for reblogs, the
// reblogging account.
type StatusRow struct {
	Status        StatusRecord
	Account       AccountRecord
	ReblogAccount *AccountRecord
}

func (r *StatusRow) RowID() string { return r.Status.ServerID }
func (*StatusRow) timelineRow()    {}

// Placeholder marks a possible gap: remote statuses older than the row above
// it and not older than ServerID may exist that were never fetched.
type Placeholder struct {
	ServerID       string
	LocalAccountID int64
}

func (p Placeholder) RowID() string { return p.ServerID }
func (Placeholder) timelineRow()    {}

// CountContent returns the number of content rows in rows.
func CountContent(rows []TimelineRow) int {
	n := 0
	for _, r := range rows {
		if _, ok := r.(*StatusRow); ok {
			n++
		}
	}
	return n
}
