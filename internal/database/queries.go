package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pressgram/internal/domain"
)

// UpsertUser registers a user on first contact and refreshes the
// display fields on later /start calls.
func (d *Database) UpsertUser(
	ctx context.Context,
	telegramID int64,
	username string,
	fullName string,
) error {
	query := `insert into users (telegram_id, username, full_name)
	values ($1, $2, $3)
	on conflict (telegram_id) do update
	set username = excluded.username,
	full_name = excluded.full_name`

	_, err := d.db.ExecContext(ctx, query, telegramID, username, fullName)

	return err
}

func (d *Database) EnsureSettings(ctx context.Context, telegramID int64) error {
	query := `insert into user_settings (user_id)
	select id from users where telegram_id = $1
	on conflict (user_id) do nothing`

	_, err := d.db.ExecContext(ctx, query, telegramID)

	return err
}

// GetSettings returns (nil, nil) when the user never initialized.
func (d *Database) GetSettings(
	ctx context.Context,
	telegramID int64,
) (*domain.UserSettings, error) {
	query := `select us.user_id, us.items_per_page, us.default_source_id
	from user_settings as us
	join users as u on u.id = us.user_id
	where u.telegram_id = $1`

	rows, err := d.db.QueryContext(ctx, query, telegramID)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			d.log.ErrorContext(ctx, "Failed to close rows",
				"error", err,
				"telegramID", telegramID,
				"operation", "GetSettings")
		}
	}()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate rows: %w", err)
		}
		return nil, nil
	}

	var us domain.UserSettings
	var defaultSourceID sql.NullInt64
	if err = rows.Scan(&us.UserID, &us.ItemsPerPage, &defaultSourceID); err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}

	if defaultSourceID.Valid {
		us.DefaultSourceID = &defaultSourceID.Int64
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return &us, nil
}

func (d *Database) SetItemsPerPage(
	ctx context.Context,
	telegramID int64,
	itemsPerPage int64,
) error {
	query := `update user_settings
	set items_per_page = $1
	where user_id = (select id from users where telegram_id = $2)`

	_, err := d.db.ExecContext(ctx, query, itemsPerPage, telegramID)

	return err
}

// SetDefaultSource with a nil sourceID resets the filter to "all sources".
func (d *Database) SetDefaultSource(
	ctx context.Context,
	telegramID int64,
	sourceID *int64,
) error {
	query := `update user_settings
	set default_source_id = $1
	where user_id = (select id from users where telegram_id = $2)`

	_, err := d.db.ExecContext(ctx, query, sourceID, telegramID)

	return err
}

func (d *Database) ListSources(ctx context.Context) ([]domain.Source, error) {
	query := "select id, name, base_url from sources order by id"

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			d.log.ErrorContext(ctx, "Failed to close rows",
				"error", err,
				"operation", "ListSources")
		}
	}()

	var sources []domain.Source
	for rows.Next() {
		var s domain.Source
		if err = rows.Scan(&s.ID, &s.Name, &s.BaseURL); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		sources = append(sources, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return sources, nil
}

// GetSourceByName returns (nil, nil) when the name is not seeded.
func (d *Database) GetSourceByName(
	ctx context.Context,
	name string,
) (*domain.Source, error) {
	return d.getSource(ctx, "select id, name, base_url from sources where name = $1", name)
}

func (d *Database) GetSourceByID(
	ctx context.Context,
	sourceID int64,
) (*domain.Source, error) {
	return d.getSource(ctx, "select id, name, base_url from sources where id = $1", sourceID)
}

func (d *Database) getSource(
	ctx context.Context,
	query string,
	arg any,
) (*domain.Source, error) {
	rows, err := d.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			d.log.ErrorContext(ctx, "Failed to close rows",
				"error", err,
				"operation", "getSource")
		}
	}()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate rows: %w", err)
		}
		return nil, nil
	}

	var s domain.Source
	if err = rows.Scan(&s.ID, &s.Name, &s.BaseURL); err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return &s, nil
}

func (d *Database) IsSubscribed(
	ctx context.Context,
	telegramID int64,
	sourceID int64,
) (bool, error) {
	query := `select exists (
		select 1 from subscriptions
		where user_id = (select id from users where telegram_id = $1)
		and source_id = $2
	)`

	var subscribed bool
	if err := d.db.QueryRowContext(ctx, query, telegramID, sourceID).
		Scan(&subscribed); err != nil {
		return false, fmt.Errorf("execute query: %w", err)
	}

	return subscribed, nil
}

func (d *Database) AddSubscription(
	ctx context.Context,
	telegramID int64,
	sourceID int64,
) error {
	query := `insert into subscriptions (user_id, source_id)
	values ((select id from users where telegram_id = $1), $2)
	on conflict (user_id, source_id) do nothing`

	_, err := d.db.ExecContext(ctx, query, telegramID, sourceID)

	return err
}

func (d *Database) RemoveSubscription(
	ctx context.Context,
	telegramID int64,
	sourceID int64,
) error {
	query := `delete from subscriptions
	where user_id = (select id from users where telegram_id = $1)
	and source_id = $2`

	_, err := d.db.ExecContext(ctx, query, telegramID, sourceID)

	return err
}

func (d *Database) ListSubscribedSourceIDs(
	ctx context.Context,
	telegramID int64,
) ([]int64, error) {
	query := `select source_id from subscriptions
	where user_id = (select id from users where telegram_id = $1)`

	rows, err := d.db.QueryContext(ctx, query, telegramID)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			d.log.ErrorContext(ctx, "Failed to close rows",
				"error", err,
				"telegramID", telegramID,
				"operation", "ListSubscribedSourceIDs")
		}
	}()

	var sourceIDs []int64
	for rows.Next() {
		var sourceID int64
		if err = rows.Scan(&sourceID); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		sourceIDs = append(sourceIDs, sourceID)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return sourceIDs, nil
}

func (d *Database) ArticleURLExists(ctx context.Context, url string) (bool, error) {
	query := "select exists (select 1 from news where url = $1)"

	var exists bool
	if err := d.db.QueryRowContext(ctx, query, url).Scan(&exists); err != nil {
		return false, fmt.Errorf("execute query: %w", err)
	}

	return exists, nil
}

// InsertArticle tolerates a concurrent insert of the same URL: the
// existence check and the insert are separate round trips, so the
// conflict clause absorbs the race instead of erroring.
func (d *Database) InsertArticle(
	ctx context.Context,
	sourceID int64,
	title string,
	url string,
	publishedAt time.Time,
) error {
	query := `insert into news (source_id, title, url, published_at)
	values ($1, $2, $3, $4)
	on conflict (url) do nothing`

	_, err := d.db.ExecContext(ctx, query, sourceID, title, url, publishedAt)

	return err
}

// LatestArticles returns up to limit articles ordered by published
// timestamp descending, optionally filtered to one source.
func (d *Database) LatestArticles(
	ctx context.Context,
	sourceID *int64,
	limit int64,
) ([]domain.Article, error) {
	query := `select n.id, n.source_id, n.title, n.url, n.published_at, s.name
	from news as n
	join sources as s on s.id = n.source_id
	where $1::bigint is null or n.source_id = $1
	order by n.published_at desc
	limit $2`

	rows, err := d.db.QueryContext(ctx, query, sourceID, limit)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			d.log.ErrorContext(ctx, "Failed to close rows",
				"error", err,
				"operation", "LatestArticles")
		}
	}()

	var articles []domain.Article
	for rows.Next() {
		var a domain.Article
		if err = rows.Scan(
			&a.ID,
			&a.SourceID,
			&a.Title,
			&a.URL,
			&a.PublishedAt,
			&a.SourceName,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		articles = append(articles, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return articles, nil
}
