package models

import (
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/tootcache/internal/common"
	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicy   = bluemonday.StrictPolicy()
	lineBreakRe  = regexp.MustCompile(`(?i)<br\s*/?>`)
	paragraphsRe = regexp.MustCompile(`(?i)</p>\s*<p[^>]*>`)
)

// PlainText reduces status HTML to text, keeping line and paragraph breaks.
func PlainText(content string) string {
	s := lineBreakRe.ReplaceAllString(content, "\n")
	s = paragraphsRe.ReplaceAllString(s, "\n\n")
	s = textPolicy.Sanitize(s)
	return strings.TrimSpace(html.UnescapeString(s))
}

// DisplayStatus is a StatusRow with its serialized payloads decoded.
type DisplayStatus struct {
	ID          string
	ContentID   string
	Author      AccountRecord
	RebloggedBy *AccountRecord

	Text        string
	SpoilerText string
	Visibility  Visibility
	CreatedAt   time.Time
	EditedAt    *time.Time

	ReblogsCount    int64
	FavouritesCount int64
	RepliesCount    int64
	Reblogged       bool
	Favourited      bool
	Bookmarked      bool
	Sensitive       bool

	Attachments []Attachment
	Mentions    []Mention
	Tags        []Tag
	Emojis      []Emoji
	Application *Application
	Poll        *Poll
	Card        *Card
}

// Decode expands the row's blobs. A malformed blob fails this row only and
// is reported as common.ErrorMalformedData.
func (r *StatusRow) Decode() (*DisplayStatus, error) {
	s := &r.Status
	d := &DisplayStatus{
		ID:              s.ServerID,
		ContentID:       s.ContentID(),
		Author:          r.Account,
		RebloggedBy:     r.ReblogAccount,
		Text:            PlainText(s.Content),
		SpoilerText:     s.SpoilerText,
		Visibility:      s.Visibility,
		CreatedAt:       s.CreatedAt,
		EditedAt:        s.EditedAt,
		ReblogsCount:    s.ReblogsCount,
		FavouritesCount: s.FavouritesCount,
		RepliesCount:    s.RepliesCount,
		Reblogged:       s.Reblogged,
		Favourited:      s.Favourited,
		Bookmarked:      s.Bookmarked,
		Sensitive:       s.Sensitive,
	}

	fields := []struct {
		name string
		raw  string
		dst  any
	}{
		{"attachments", s.Attachments, &d.Attachments},
		{"mentions", s.Mentions, &d.Mentions},
		{"tags", s.Tags, &d.Tags},
		{"emojis", s.Emojis, &d.Emojis},
		{"application", s.Application, &d.Application},
		{"poll", s.Poll, &d.Poll},
		{"card", s.Card, &d.Card},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(f.raw), f.dst); err != nil {
			return nil, fmt.Errorf("%w: status %s %s: %v", common.ErrorMalformedData, s.ServerID, f.name, err)
		}
	}
	return d, nil
}
