package storage

import (
	"context"
	"errors"
	"fmt"

	"adedonha/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id    TEXT PRIMARY KEY,
	name  TEXT NOT NULL,
	coins INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS friends (
	user_id   TEXT NOT NULL REFERENCES users(id),
	friend_id TEXT NOT NULL REFERENCES users(id),
	PRIMARY KEY (user_id, friend_id)
);`

// PostgresRepo is the pgx-backed user registry, selected when POSTGRES_URL is
// set. Same contract as MemoryRepo.
type PostgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresRepo(ctx context.Context, connString string) (*PostgresRepo, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}
	return &PostgresRepo{pool: pool}, nil
}

func (pr *PostgresRepo) Close() {
	pr.pool.Close()
}

func wrapQueryError(err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return domain.ErrUserNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}
}

func (pr *PostgresRepo) GetOrCreate(ctx context.Context, id, name string) (domain.User, error) {
	if name == "" {
		name = "Player"
	}

	_, err := pr.pool.Exec(ctx,
		"INSERT INTO users(id, name, coins) VALUES($1, $2, $3) ON CONFLICT (id) DO NOTHING",
		id, name, domain.StartingCoins)
	if err != nil {
		return domain.User{}, wrapQueryError(err)
	}

	user := domain.User{Id: id}
	row := pr.pool.QueryRow(ctx, "SELECT name, coins FROM users WHERE id = $1", id)
	if err := row.Scan(&user.Name, &user.Coins); err != nil {
		return domain.User{}, wrapQueryError(err)
	}
	return user, nil
}

func (pr *PostgresRepo) Get(ctx context.Context, id string) (domain.User, error) {
	user := domain.User{Id: id}

	row := pr.pool.QueryRow(ctx, "SELECT name, coins FROM users WHERE id = $1", id)
	if err := row.Scan(&user.Name, &user.Coins); err != nil {
		return domain.User{}, wrapQueryError(err)
	}

	rows, err := pr.pool.Query(ctx,
		"SELECT friend_id FROM friends WHERE user_id = $1 ORDER BY friend_id", id)
	if err != nil {
		return domain.User{}, wrapQueryError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var fid string
		if err := rows.Scan(&fid); err != nil {
			return domain.User{}, wrapQueryError(err)
		}
		user.Friends = append(user.Friends, fid)
	}
	return user, nil
}

func (pr *PostgresRepo) AddCoins(ctx context.Context, id string, delta int) error {
	tag, err := pr.pool.Exec(ctx, "UPDATE users SET coins = coins + $2 WHERE id = $1", id, delta)
	if err != nil {
		return wrapQueryError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (pr *PostgresRepo) AddFriend(ctx context.Context, userId, friendId string) error {
	batch := &pgx.Batch{}
	batch.Queue("INSERT INTO users(id, name, coins) VALUES($1, 'Player', $2) ON CONFLICT (id) DO NOTHING", userId, domain.StartingCoins)
	batch.Queue("INSERT INTO users(id, name, coins) VALUES($1, 'Player', $2) ON CONFLICT (id) DO NOTHING", friendId, domain.StartingCoins)
	batch.Queue("INSERT INTO friends(user_id, friend_id) VALUES($1, $2) ON CONFLICT DO NOTHING", userId, friendId)
	batch.Queue("INSERT INTO friends(user_id, friend_id) VALUES($1, $2) ON CONFLICT DO NOTHING", friendId, userId)

	if err := pr.pool.SendBatch(ctx, batch).Close(); err != nil {
		return wrapQueryError(err)
	}
	return nil
}

func (pr *PostgresRepo) TopByCoins(ctx context.Context, limit int) ([]domain.User, error) {
	rows, err := pr.pool.Query(ctx,
		"SELECT id, name, coins FROM users ORDER BY coins DESC, id LIMIT $1", limit)
	if err != nil {
		return nil, wrapQueryError(err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

func (pr *PostgresRepo) FriendsOf(ctx context.Context, id string) ([]domain.User, error) {
	rows, err := pr.pool.Query(ctx,
		`SELECT u.id, u.name, u.coins
		 FROM friends f JOIN users u ON u.id = f.friend_id
		 WHERE f.user_id = $1
		 ORDER BY u.coins DESC, u.id`, id)
	if err != nil {
		return nil, wrapQueryError(err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

func scanUsers(rows pgx.Rows) ([]domain.User, error) {
	users := []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.Id, &u.Name, &u.Coins); err != nil {
			return nil, wrapQueryError(err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryError(err)
	}
	return users, nil
}
