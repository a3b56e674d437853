package models

import (
	"encoding/json"
	"time"
)

// Status is the Mastodon REST representation of a status. Nested payloads
// that the cache stores opaquely are kept as raw JSON.
type Status struct {
	ID                 string          `json:"id"`
	URI                string          `json:"uri"`
	URL                *string         `json:"url"`
	CreatedAt          time.Time       `json:"created_at"`
	EditedAt           *time.Time      `json:"edited_at"`
	Account            *Account        `json:"account"`
	InReplyToID        *string         `json:"in_reply_to_id"`
	InReplyToAccountID *string         `json:"in_reply_to_account_id"`
	Reblog             *Status         `json:"reblog"`
	Content            string          `json:"content"`
	SpoilerText        string          `json:"spoiler_text"`
	Visibility         Visibility      `json:"visibility"`
	Language           *string         `json:"language"`
	Sensitive          bool            `json:"sensitive"`
	ReblogsCount       int64           `json:"reblogs_count"`
	FavouritesCount    int64           `json:"favourites_count"`
	RepliesCount       int64           `json:"replies_count"`
	Reblogged          bool            `json:"reblogged"`
	Favourited         bool            `json:"favourited"`
	Bookmarked         bool            `json:"bookmarked"`
	Muted              bool            `json:"muted"`
	Pinned             bool            `json:"pinned"`
	MediaAttachments   json.RawMessage `json:"media_attachments"`
	Mentions           json.RawMessage `json:"mentions"`
	Tags               json.RawMessage `json:"tags"`
	Emojis             json.RawMessage `json:"emojis"`
	Application        json.RawMessage `json:"application"`
	Poll               json.RawMessage `json:"poll"`
	Card               json.RawMessage `json:"card"`
}

type Account struct {
	ID          string          `json:"id"`
	Username    string          `json:"username"`
	Acct        string          `json:"acct"`
	DisplayName string          `json:"display_name"`
	URL         string          `json:"url"`
	Avatar      string          `json:"avatar"`
	Emojis      json.RawMessage `json:"emojis"`
	Bot         bool            `json:"bot"`
}

type Attachment struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	URL         string  `json:"url"`
	PreviewURL  string  `json:"preview_url"`
	Description *string `json:"description"`
}

type Mention struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Acct     string `json:"acct"`
	URL      string `json:"url"`
}

type Tag struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	Following *bool  `json:"following,omitempty"`
}

type Emoji struct {
	Shortcode string `json:"shortcode"`
	URL       string `json:"url"`
	StaticURL string `json:"static_url"`
}

type Application struct {
	Name    string  `json:"name"`
	Website *string `json:"website"`
}

type Card struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

type PollOption struct {
	Title      string `json:"title"`
	VotesCount *int64 `json:"votes_count"`
}

type Poll struct {
	ID          string       `json:"id"`
	ExpiresAt   *time.Time   `json:"expires_at"`
	Expired     bool         `json:"expired"`
	Multiple    bool         `json:"multiple"`
	VotesCount  int64        `json:"votes_count"`
	VotersCount *int64       `json:"voters_count"`
	Options     []PollOption `json:"options"`
	Voted       bool         `json:"voted"`
	OwnVotes    []int        `json:"own_votes"`
}

// NotificationRequest is a pending request from an account whose
// notifications are filtered.
type NotificationRequest struct {
	ID                 string    `json:"id"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	Account            Account   `json:"account"`
	NotificationsCount string    `json:"notifications_count"`
}

// Instance is the subset of /api/v1/instance used for reachability checks.
type Instance struct {
	URI     string `json:"uri"`
	Domain  string `json:"domain"`
	Title   string `json:"title"`
	Version string `json:"version"`
}
