package timeline

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/dmitrijs2005/tootcache/internal/client/models"
)

const selectRows = `
	SELECT
		s.server_id, s.is_placeholder,
		s.url, s.author_server_id, s.in_reply_to_id, s.in_reply_to_account_id,
		s.content, s.spoiler_text, s.visibility, s.language, s.created_at, s.edited_at,
		s.reblogs_count, s.favourites_count, s.replies_count,
		s.reblogged, s.favourited, s.bookmarked, s.sensitive, s.muted, s.pinned,
		s.emojis, s.attachments, s.mentions, s.tags, s.application, s.poll, s.card,
		s.reblog_server_id, s.reblog_account_id, s.reblogged_at,
		COALESCE(a.acct, ''), COALESCE(a.username, ''), COALESCE(a.display_name, ''),
		COALESCE(a.url, ''), COALESCE(a.avatar, ''), COALESCE(a.emojis, ''), COALESCE(a.bot, 0),
		r.server_id,
		COALESCE(r.acct, ''), COALESCE(r.username, ''), COALESCE(r.display_name, ''),
		COALESCE(r.url, ''), COALESCE(r.avatar, ''), COALESCE(r.emojis, ''), COALESCE(r.bot, 0)
	FROM timeline_statuses s
	LEFT JOIN timeline_accounts a
		ON a.local_account_id = s.local_account_id AND a.server_id = s.author_server_id
	LEFT JOIN timeline_accounts r
		ON r.local_account_id = s.local_account_id AND r.server_id = s.reblog_account_id AND s.reblog_server_id <> ''
`

func (r *SQLiteRepository) QueryRange(ctx context.Context, localAccountID int64, q models.PageQuery) ([]models.TimelineRow, error) {
	where := []string{"s.local_account_id = ?"}
	args := []any{localAccountID}

	if q.MaxID != "" {
		cond, a := idBelow("s.server_id", q.MaxID, false)
		where = append(where, cond)
		args = append(args, a...)
	}
	if q.SinceID != "" {
		cond, a := idAbove("s.server_id", q.SinceID, false)
		where = append(where, cond)
		args = append(args, a...)
	}

	query := selectRows + " WHERE " + strings.Join(where, " AND ") + " " + orderNewestFirst("s.server_id")
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("query range", err)
	}
	defer rows.Close()

	result := []models.TimelineRow{}
	for rows.Next() {
		row, err := scanRow(rows, localAccountID)
		if err != nil {
			return nil, storageErr("scan timeline row", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate timeline rows", err)
	}
	return result, nil
}

func scanRow(rows *sql.Rows, localAccountID int64) (models.TimelineRow, error) {
	var (
		s              models.StatusRecord
		isPlaceholder  bool
		visibility     string
		createdAt      int64
		editedAt       sql.NullInt64
		rebloggedAt    sql.NullInt64
		author         models.AccountRecord
		reblogAuthorID sql.NullString
		reblogAuthor   models.AccountRecord
	)

	err := rows.Scan(
		&s.ServerID, &isPlaceholder,
		&s.URL, &s.AuthorServerID, &s.InReplyToID, &s.InReplyToAccountID,
		&s.Content, &s.SpoilerText, &visibility, &s.Language, &createdAt, &editedAt,
		&s.ReblogsCount, &s.FavouritesCount, &s.RepliesCount,
		&s.Reblogged, &s.Favourited, &s.Bookmarked, &s.Sensitive, &s.Muted, &s.Pinned,
		&s.Emojis, &s.Attachments, &s.Mentions, &s.Tags, &s.Application, &s.Poll, &s.Card,
		&s.ReblogServerID, &s.ReblogAccountID, &rebloggedAt,
		&author.Acct, &author.Username, &author.DisplayName,
		&author.URL, &author.Avatar, &author.Emojis, &author.Bot,
		&reblogAuthorID,
		&reblogAuthor.Acct, &reblogAuthor.Username, &reblogAuthor.DisplayName,
		&reblogAuthor.URL, &reblogAuthor.Avatar, &reblogAuthor.Emojis, &reblogAuthor.Bot,
	)
	if err != nil {
		return nil, err
	}

	if isPlaceholder {
		return models.Placeholder{ServerID: s.ServerID, LocalAccountID: localAccountID}, nil
	}

	s.LocalAccountID = localAccountID
	s.Visibility = models.Visibility(visibility)
	s.CreatedAt = fromMillis(createdAt)
	s.EditedAt = fromNullMillis(editedAt)
	s.RebloggedAt = fromNullMillis(rebloggedAt)

	author.ServerID = s.AuthorServerID
	author.LocalAccountID = localAccountID

	row := &models.StatusRow{Status: s, Account: author}
	if reblogAuthorID.Valid {
		reblogAuthor.ServerID = reblogAuthorID.String
		reblogAuthor.LocalAccountID = localAccountID
		row.ReblogAccount = &reblogAuthor
	}
	return row, nil
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func fromNullMillis(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64).UTC()
	return &t
}
