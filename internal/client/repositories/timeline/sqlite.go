package timeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tootcache/internal/client/models"
	"github.com/dmitrijs2005/tootcache/internal/common"
	"github.com/dmitrijs2005/tootcache/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

var _ Repository = (*SQLiteRepository)(nil)

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", common.ErrStorage, op, err)
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func (r *SQLiteRepository) UpsertStatus(ctx context.Context, s *models.StatusRecord) error {
	query := `
		INSERT INTO timeline_statuses (
			server_id, local_account_id, is_placeholder,
			url, author_server_id, in_reply_to_id, in_reply_to_account_id,
			content, spoiler_text, visibility, language, created_at, edited_at,
			reblogs_count, favourites_count, replies_count,
			reblogged, favourited, bookmarked, sensitive, muted, pinned,
			emojis, attachments, mentions, tags, application, poll, card,
			reblog_server_id, reblog_account_id, reblogged_at
		) VALUES (?, ?, 0, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(server_id, local_account_id) DO UPDATE SET
			is_placeholder = 0,
			url = excluded.url,
			author_server_id = excluded.author_server_id,
			in_reply_to_id = excluded.in_reply_to_id,
			in_reply_to_account_id = excluded.in_reply_to_account_id,
			content = excluded.content,
			spoiler_text = excluded.spoiler_text,
			visibility = excluded.visibility,
			language = excluded.language,
			created_at = excluded.created_at,
			edited_at = excluded.edited_at,
			reblogs_count = excluded.reblogs_count,
			favourites_count = excluded.favourites_count,
			replies_count = excluded.replies_count,
			reblogged = excluded.reblogged,
			favourited = excluded.favourited,
			bookmarked = excluded.bookmarked,
			sensitive = excluded.sensitive,
			muted = excluded.muted,
			pinned = excluded.pinned,
			emojis = excluded.emojis,
			attachments = excluded.attachments,
			mentions = excluded.mentions,
			tags = excluded.tags,
			application = excluded.application,
			poll = excluded.poll,
			card = excluded.card,
			reblog_server_id = excluded.reblog_server_id,
			reblog_account_id = excluded.reblog_account_id,
			reblogged_at = excluded.reblogged_at
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ServerID, s.LocalAccountID,
		s.URL, s.AuthorServerID, s.InReplyToID, s.InReplyToAccountID,
		s.Content, s.SpoilerText, string(s.Visibility), s.Language, toMillis(s.CreatedAt), nullMillis(s.EditedAt),
		s.ReblogsCount, s.FavouritesCount, s.RepliesCount,
		s.Reblogged, s.Favourited, s.Bookmarked, s.Sensitive, s.Muted, s.Pinned,
		s.Emojis, s.Attachments, s.Mentions, s.Tags, s.Application, s.Poll, s.Card,
		s.ReblogServerID, s.ReblogAccountID, nullMillis(s.RebloggedAt),
	)
	if err != nil {
		return storageErr("upsert status "+s.ServerID, err)
	}
	return nil
}

func (r *SQLiteRepository) UpsertAccount(ctx context.Context, a *models.AccountRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO timeline_accounts (server_id, local_account_id, acct, username, display_name, url, avatar, emojis, bot)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(server_id, local_account_id) DO UPDATE SET
			acct = excluded.acct,
			username = excluded.username,
			display_name = excluded.display_name,
			url = excluded.url,
			avatar = excluded.avatar,
			emojis = excluded.emojis,
			bot = excluded.bot
	`, a.ServerID, a.LocalAccountID, a.Acct, a.Username, a.DisplayName, a.URL, a.Avatar, a.Emojis, a.Bot)
	if err != nil {
		return storageErr("upsert account "+a.ServerID, err)
	}
	return nil
}

func (r *SQLiteRepository) InsertPlaceholderIfAbsent(ctx context.Context, localAccountID int64, serverID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO timeline_statuses (server_id, local_account_id, is_placeholder)
		VALUES (?, ?, 1)
		ON CONFLICT(server_id, local_account_id) DO NOTHING
	`, serverID, localAccountID)
	if err != nil {
		return false, storageErr("insert placeholder "+serverID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storageErr("get rows affected", err)
	}
	return n == 1, nil
}

func (r *SQLiteRepository) setFlag(ctx context.Context, column string, localAccountID int64, statusID string, value bool) error {
	query := `UPDATE timeline_statuses SET ` + column + ` = ?
		WHERE local_account_id = ? AND is_placeholder = 0 AND (server_id = ? OR reblog_server_id = ?)`
	if _, err := r.db.ExecContext(ctx, query, value, localAccountID, statusID, statusID); err != nil {
		return storageErr("set "+column+" on "+statusID, err)
	}
	return nil
}

func (r *SQLiteRepository) SetFavourited(ctx context.Context, localAccountID int64, statusID string, value bool) error {
	return r.setFlag(ctx, "favourited", localAccountID, statusID, value)
}

func (r *SQLiteRepository) SetReblogged(ctx context.Context, localAccountID int64, statusID string, value bool) error {
	return r.setFlag(ctx, "reblogged", localAccountID, statusID, value)
}

func (r *SQLiteRepository) SetBookmarked(ctx context.Context, localAccountID int64, statusID string, value bool) error {
	return r.setFlag(ctx, "bookmarked", localAccountID, statusID, value)
}

func (r *SQLiteRepository) SetPollVote(ctx context.Context, localAccountID int64, statusID string, poll string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE timeline_statuses SET poll = ?
		WHERE local_account_id = ? AND is_placeholder = 0 AND (server_id = ? OR reblog_server_id = ?)
	`, poll, localAccountID, statusID, statusID)
	if err != nil {
		return storageErr("set poll on "+statusID, err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateIfPresent(ctx context.Context, s *models.StatusRecord) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE timeline_statuses SET
			url = ?, author_server_id = ?, in_reply_to_id = ?, in_reply_to_account_id = ?,
			content = ?, spoiler_text = ?, visibility = ?, language = ?, created_at = ?, edited_at = ?,
			reblogs_count = ?, favourites_count = ?, replies_count = ?,
			reblogged = ?, favourited = ?, bookmarked = ?, sensitive = ?, muted = ?, pinned = ?,
			emojis = ?, attachments = ?, mentions = ?, tags = ?, application = ?, poll = ?, card = ?
		WHERE local_account_id = ? AND is_placeholder = 0 AND (server_id = ? OR reblog_server_id = ?)
	`,
		s.URL, s.AuthorServerID, s.InReplyToID, s.InReplyToAccountID,
		s.Content, s.SpoilerText, string(s.Visibility), s.Language, toMillis(s.CreatedAt), nullMillis(s.EditedAt),
		s.ReblogsCount, s.FavouritesCount, s.RepliesCount,
		s.Reblogged, s.Favourited, s.Bookmarked, s.Sensitive, s.Muted, s.Pinned,
		s.Emojis, s.Attachments, s.Mentions, s.Tags, s.Application, s.Poll, s.Card,
		s.LocalAccountID, s.ServerID, s.ServerID,
	)
	if err != nil {
		return 0, storageErr("update status "+s.ServerID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr("get rows affected", err)
	}
	return n, nil
}

func (r *SQLiteRepository) DeleteStatus(ctx context.Context, localAccountID int64, statusID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM timeline_statuses
		WHERE local_account_id = ? AND (server_id = ? OR reblog_server_id = ?)
	`, localAccountID, statusID, statusID)
	if err != nil {
		return storageErr("delete status "+statusID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeletePlaceholder(ctx context.Context, localAccountID int64, serverID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM timeline_statuses
		WHERE local_account_id = ? AND server_id = ? AND is_placeholder = 1
	`, localAccountID, serverID)
	if err != nil {
		return storageErr("delete placeholder "+serverID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteRange(ctx context.Context, localAccountID int64, fromID, toID string) (int64, error) {
	cond, args := idBetween("server_id", fromID, toID)
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM timeline_statuses WHERE local_account_id = ? AND `+cond,
		append([]any{localAccountID}, args...)...,
	)
	if err != nil {
		return 0, storageErr(fmt.Sprintf("delete range %s..%s", fromID, toID), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr("get rows affected", err)
	}
	return n, nil
}

func (r *SQLiteRepository) RemoveAllByAuthor(ctx context.Context, localAccountID int64, authorServerID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM timeline_statuses
		WHERE local_account_id = ? AND is_placeholder = 0
		  AND (author_server_id = ? OR reblog_account_id = ?)
	`, localAccountID, authorServerID, authorServerID)
	if err != nil {
		return 0, storageErr("remove statuses of "+authorServerID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr("get rows affected", err)
	}
	return n, nil
}

func (r *SQLiteRepository) HasRowsBetween(ctx context.Context, localAccountID int64, fromID, toID string) (bool, error) {
	cond, args := idBetween("server_id", fromID, toID)
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM timeline_statuses WHERE local_account_id = ? AND `+cond+`)`,
		append([]any{localAccountID}, args...)...,
	).Scan(&exists)
	if err != nil {
		return false, storageErr("check range", err)
	}
	return exists, nil
}

func (r *SQLiteRepository) NextOlderID(ctx context.Context, localAccountID int64, id string) (string, error) {
	cond, args := idBelow("server_id", id, false)
	var next string
	err := r.db.QueryRowContext(ctx,
		`SELECT server_id FROM timeline_statuses WHERE local_account_id = ? AND `+cond+` `+orderNewestFirst("server_id")+` LIMIT 1`,
		append([]any{localAccountID}, args...)...,
	).Scan(&next)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", storageErr("find row below "+id, err)
	}
	return next, nil
}

func (r *SQLiteRepository) ClearAccount(ctx context.Context, localAccountID int64) error {
	for _, table := range []string{"timeline_statuses", "timeline_accounts"} {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE local_account_id = ?`, localAccountID); err != nil {
			return storageErr("clear "+table, err)
		}
	}
	return nil
}
