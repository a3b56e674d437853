package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dmitrijs2005/tootcache/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reblogJSON = `{
  "id": "20",
  "created_at": "2024-05-02T10:00:00.000Z",
  "account": {"id": "b1", "username": "booster", "acct": "booster@example.org", "display_name": "Booster"},
  "reblog": {
    "id": "15",
    "created_at": "2024-05-01T09:00:00.000Z",
    "url": "https://example.org/@alice/15",
    "account": {"id": "a1", "username": "alice", "acct": "alice", "display_name": "Alice", "emojis": []},
    "content": "<p>hello</p>",
    "visibility": "public",
    "favourites_count": 3,
    "favourited": true,
    "media_attachments": [{"id": "m1", "type": "image", "url": "https://x/m1"}],
    "poll": null,
    "future_field": {"x": 1}
  },
  "content": "",
  "visibility": "public"
}`

func TestNewTimelineRecords_Reblog(t *testing.T) {
	var s Status
	require.NoError(t, json.Unmarshal([]byte(reblogJSON), &s))

	rec, accounts, err := NewTimelineRecords(7, &s)
	require.NoError(t, err)

	assert.Equal(t, "20", rec.ServerID)
	assert.Equal(t, int64(7), rec.LocalAccountID)
	assert.Equal(t, "15", rec.ReblogServerID)
	assert.Equal(t, "b1", rec.ReblogAccountID)
	assert.Equal(t, "a1", rec.AuthorServerID)
	assert.Equal(t, "15", rec.ContentID())
	assert.True(t, rec.IsReblog())
	assert.Equal(t, "<p>hello</p>", rec.Content)
	assert.Equal(t, "https://example.org/@alice/15", rec.URL)
	assert.True(t, rec.Favourited)
	assert.Equal(t, int64(3), rec.FavouritesCount)
	assert.Equal(t, time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), rec.CreatedAt)
	require.NotNil(t, rec.RebloggedAt)
	assert.Equal(t, time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC), *rec.RebloggedAt)
	assert.JSONEq(t, `[{"id": "m1", "type": "image", "url": "https://x/m1"}]`, rec.Attachments)
	assert.Empty(t, rec.Poll, "null payloads are stored empty")

	require.Len(t, accounts, 2)
	assert.Equal(t, "a1", accounts[0].ServerID)
	assert.Equal(t, "[]", accounts[0].Emojis)
	assert.Equal(t, "b1", accounts[1].ServerID)
}

func TestNewTimelineRecords_Original(t *testing.T) {
	s := &Status{
		ID:        "3",
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Account:   &Account{ID: "a1", Username: "alice"},
		Content:   "hi",
	}

	rec, accounts, err := NewTimelineRecords(1, s)
	require.NoError(t, err)
	assert.False(t, rec.IsReblog())
	assert.Equal(t, "3", rec.ContentID())
	assert.Nil(t, rec.RebloggedAt)
	require.Len(t, accounts, 1)
}

func TestNewTimelineRecords_Malformed(t *testing.T) {
	tests := []struct {
		name string
		s    *Status
	}{
		{"nil", nil},
		{"missing id", &Status{Account: &Account{ID: "a"}}},
		{"non numeric id", &Status{ID: "abc", Account: &Account{ID: "a"}}},
		{"missing account", &Status{ID: "1"}},
		{"reblog without id", &Status{ID: "2", Account: &Account{ID: "a"}, Reblog: &Status{Account: &Account{ID: "b"}}}},
		{"reblog without booster", &Status{ID: "2", Reblog: &Status{ID: "1", Account: &Account{ID: "b"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NewTimelineRecords(1, tt.s)
			assert.ErrorIs(t, err, common.ErrorMalformedData)
		})
	}
}

func TestNewStatusRow_PopulatesReblogAccount(t *testing.T) {
	var s Status
	require.NoError(t, json.Unmarshal([]byte(reblogJSON), &s))

	row, err := NewStatusRow(7, &s)
	require.NoError(t, err)
	assert.Equal(t, "20", row.RowID())
	assert.Equal(t, "a1", row.Account.ServerID)
	require.NotNil(t, row.ReblogAccount)
	assert.Equal(t, "b1", row.ReblogAccount.ServerID)
}

func TestCountContent(t *testing.T) {
	rows := []TimelineRow{
		&StatusRow{Status: StatusRecord{ServerID: "3"}},
		Placeholder{ServerID: "2"},
		&StatusRow{Status: StatusRecord{ServerID: "1"}},
	}
	assert.Equal(t, 2, CountContent(rows))
	assert.Equal(t, 0, CountContent(nil))
}
