package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/quizbook/internal/progress"
)

const progressTable = "progress"

// sqliteProgressRepo implements ProgressRepo on the progress table.
type sqliteProgressRepo struct {
	drv *entsql.Driver
}

func (r *sqliteProgressRepo) builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

func (r *sqliteProgressRepo) Load(ctx context.Context, username string) (*progress.Progress, error) {
	if err := checkUsername(username); err != nil {
		return nil, err
	}

	query, args := r.builder().
		Select("data").
		From(entsql.Table(progressTable)).
		Where(entsql.EQ("username", username)).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query progress: %w", err)
		}
		return nil, ErrNotFound
	}

	var data string
	if err := rows.Scan(&data); err != nil {
		return nil, fmt.Errorf("scan progress: %w", err)
	}

	p, err := progress.Unmarshal([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("decode progress for %q: %w", username, err)
	}
	return p, nil
}

func (r *sqliteProgressRepo) Save(ctx context.Context, username string, p *progress.Progress) error {
	if err := checkUsername(username); err != nil {
		return err
	}

	data, err := progress.Marshal(p)
	if err != nil {
		return err
	}

	query, args := r.builder().
		Insert(progressTable).
		Columns("username", "data", "updated_at").
		Values(username, string(data), time.Now().UTC().Format(time.RFC3339Nano)).
		OnConflict(
			entsql.ConflictColumns("username"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

func (r *sqliteProgressRepo) Delete(ctx context.Context, username string) error {
	if err := checkUsername(username); err != nil {
		return err
	}

	query, args := r.builder().
		Delete(progressTable).
		Where(entsql.EQ("username", username)).
		Query()

	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	return nil
}

func (r *sqliteProgressRepo) Usernames(ctx context.Context) ([]string, error) {
	query, args := r.builder().
		Select("username").
		From(entsql.Table(progressTable)).
		OrderBy("username").
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query usernames: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan username: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query usernames: %w", err)
	}
	return names, nil
}
