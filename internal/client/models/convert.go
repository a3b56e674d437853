package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tootcache/internal/client/ids"
	"github.com/dmitrijs2005/tootcache/internal/common"
)

// NewAccountRecord projects a wire account onto the cache record.
func NewAccountRecord(localAccountID int64, a *Account) (AccountRecord, error) {
	if a == nil || a.ID == "" {
		return AccountRecord{}, fmt.Errorf("%w: account without id", common.ErrorMalformedData)
	}
	return AccountRecord{
		ServerID:       a.ID,
		LocalAccountID: localAccountID,
		Acct:           a.Acct,
		Username:       a.Username,
		DisplayName:    a.DisplayName,
		URL:            a.URL,
		Avatar:         a.Avatar,
		Emojis:         blob(a.Emojis),
		Bot:            a.Bot,
	}, nil
}

// NewTimelineRecords converts a fetched status into the row to upsert and
// the author records it references (the content author first, then the
// reblogging account if any). Statuses without usable ids are rejected
// with common.ErrorMalformedData.
func NewTimelineRecords(localAccountID int64, s *Status) (*StatusRecord, []AccountRecord, error) {
	if s == nil || !ids.Valid(s.ID) {
		return nil, nil, fmt.Errorf("%w: status without a valid id", common.ErrorMalformedData)
	}

	content := s
	if s.Reblog != nil {
		content = s.Reblog
		if !ids.Valid(content.ID) {
			return nil, nil, fmt.Errorf("%w: reblog of %s without a valid id", common.ErrorMalformedData, s.ID)
		}
	}

	author, err := NewAccountRecord(localAccountID, content.Account)
	if err != nil {
		return nil, nil, fmt.Errorf("status %s: %w", s.ID, err)
	}
	accounts := []AccountRecord{author}

	rec := &StatusRecord{
		ServerID:           s.ID,
		LocalAccountID:     localAccountID,
		URL:                deref(content.URL),
		AuthorServerID:     author.ServerID,
		InReplyToID:        deref(content.InReplyToID),
		InReplyToAccountID: deref(content.InReplyToAccountID),
		Content:            content.Content,
		SpoilerText:        content.SpoilerText,
		Visibility:         content.Visibility,
		Language:           deref(content.Language),
		CreatedAt:          content.CreatedAt.UTC(),
		EditedAt:           utcPtr(content.EditedAt),
		ReblogsCount:       content.ReblogsCount,
		FavouritesCount:    content.FavouritesCount,
		RepliesCount:       content.RepliesCount,
		Reblogged:          content.Reblogged,
		Favourited:         content.Favourited,
		Bookmarked:         content.Bookmarked,
		Sensitive:          content.Sensitive,
		Muted:              content.Muted,
		Pinned:             content.Pinned,
		Emojis:             blob(content.Emojis),
		Attachments:        blob(content.MediaAttachments),
		Mentions:           blob(content.Mentions),
		Tags:               blob(content.Tags),
		Application:        blob(content.Application),
		Poll:               blob(content.Poll),
		Card:               blob(content.Card),
	}

	if s.Reblog != nil {
		booster, err := NewAccountRecord(localAccountID, s.Account)
		if err != nil {
			return nil, nil, fmt.Errorf("reblog %s: %w", s.ID, err)
		}
		at := s.CreatedAt.UTC()
		rec.ReblogServerID = content.ID
		rec.ReblogAccountID = booster.ServerID
		rec.RebloggedAt = &at
		accounts = append(accounts, booster)
	}

	return rec, accounts, nil
}

// NewStatusRow builds the display row for a fetched status without going
// through the store.
func NewStatusRow(localAccountID int64, s *Status) (*StatusRow, error) {
	rec, accounts, err := NewTimelineRecords(localAccountID, s)
	if err != nil {
		return nil, err
	}
	row := &StatusRow{Status: *rec, Account: accounts[0]}
	if len(accounts) > 1 {
		booster := accounts[1]
		row.ReblogAccount = &booster
	}
	return row, nil
}

// blob keeps a nested payload as its raw JSON text. Absent and null
// payloads are stored as the empty string.
func blob(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	return string(trimmed)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
