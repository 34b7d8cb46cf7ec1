package records

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

func (pg *Postgres) Close() {
	pg.db.Close()
}

func (pg *Postgres) Record(ctx context.Context, r Record) error {
	_, err := pg.db.Exec(ctx, `
		INSERT INTO game_record (
			game_session_id, size, mine_count, won, moves, started_at, ended_at
		)
		VALUES (
			@game_session_id, @size, @mine_count, @won, @moves, @started_at, @ended_at
		);`,
		pgx.NamedArgs{
			"game_session_id": r.GameSessionID,
			"size":            r.Params.Size,
			"mine_count":      r.Params.MineCount,
			"won":             r.Won,
			"moves":           r.Moves,
			"started_at":      r.StartedAt,
			"ended_at":        r.EndedAt,
		})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return fmt.Errorf("%w: %s", ErrAlreadyRecorded, r.GameSessionID)
	}
	return err
}

func (f Filter) WhereClause() (string, pgx.NamedArgs) {
	clauses := []string{"won = true"}
	args := pgx.NamedArgs{}
	if f.Params != nil {
		clauses = append(clauses, "size = @size", "mine_count = @mine_count")
		args["size"] = f.Params.Size
		args["mine_count"] = f.Params.MineCount
	}
	limit := f.Limit
	if limit <= 0 || limit > DefaultLimit {
		limit = DefaultLimit
	}
	args["limit"] = limit
	return strings.Join(clauses, " AND "), args
}

func (pg *Postgres) Highscores(ctx context.Context, f Filter) ([]Highscore, error) {
	whereClause, args := f.WhereClause()
	query := `
	SELECT
		game_session_id,
		size,
		mine_count,
		moves,
		(
			extract('epoch' from ended_at) -
			extract('epoch' from started_at)
		) * 1000 playtime_ms,
		ended_at
	FROM game_record
	WHERE ` + whereClause + `
	ORDER BY playtime_ms, ended_at
	LIMIT @limit;`

	rows, err := pg.db.Query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Highscore])
}
