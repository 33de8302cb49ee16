// Package pg implementa core.Repository contra PostgreSQL con pgxpool.
package pg

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/assetweb/internal/observability/logger"
	"github.com/dropDatabas3/assetweb/internal/store/core"
)

type Store struct{ pool *pgxpool.Pool }

type PoolConfig struct {
	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration
}

func New(ctx context.Context, dsn string, cfg PoolConfig) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		pcfg.MinConns = int32(cfg.MinConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.ConnMaxLifetime
		pcfg.MaxConnIdleTime = cfg.ConnMaxLifetime
	}
	if pcfg.MaxConns == 0 {
		pcfg.MaxConns = 8
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	// Arranque no bloqueante: si la DB está caída igual levantamos y el
	// healthz lo va a reportar.
	if err := pool.Ping(ctx); err != nil {
		logger.L().Warn("pg_pool_startup_ping_failed", logger.Err(err))
	} else {
		logger.L().Info("pg_pool_ready", logger.Int("max_conns", int(pcfg.MaxConns)))
	}

	return &Store{pool: pool}, nil
}

// Pool expone el pool interno para usos avanzados (metrics/migraciones).
func (s *Store) Pool() *pgxpool.Pool {
	if s == nil {
		return nil
	}
	return s.pool
}

// Close cierra el pool subyacente (idempotente).
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ====================== USERS ======================

const userCols = `id, email, first_name, last_name, password_hash, password_salt, role, email_confirmed, created_at, updated_at`

func scanUser(row pgx.Row) (*core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.PasswordSalt,
		&u.Role, &u.EmailConfirmed, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *core.User) error {
	const q = `
INSERT INTO app_user (id, email, first_name, last_name, password_hash, password_salt, role, email_confirmed, created_at)
VALUES (gen_random_uuid(), LOWER($1), $2, $3, $4, $5, $6, $7, now())
RETURNING id, created_at`
	err := s.pool.QueryRow(ctx, q,
		u.Email, u.FirstName, u.LastName, u.PasswordHash, u.PasswordSalt, u.Role, u.EmailConfirmed,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrConflict
		}
		logger.L().Error("pg_create_user_err", logger.Email(u.Email), logger.Err(err))
		return err
	}
	u.Email = strings.ToLower(u.Email)
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userCols+` FROM app_user WHERE id = $1`, id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM app_user WHERE email = LOWER($1)`, email))
}

func (s *Store) UpdateUser(ctx context.Context, u *core.User) error {
	const q = `
UPDATE app_user
SET first_name = $2, last_name = $3, password_hash = $4, password_salt = $5, role = $6,
    email_confirmed = $7, updated_at = now()
WHERE id = $1
RETURNING updated_at`
	err := s.pool.QueryRow(ctx, q,
		u.ID, u.FirstName, u.LastName, u.PasswordHash, u.PasswordSalt, u.Role, u.EmailConfirmed,
	).Scan(&u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.ErrNotFound
	}
	return err
}

// ConfirmUserEmail marca el mail como confirmado una sola vez. Si ya estaba
// confirmado no pisa updated_at y devuelve ErrConflict.
func (s *Store) ConfirmUserEmail(ctx context.Context, userID string) error {
	const q = `
UPDATE app_user SET email_confirmed = TRUE, updated_at = now()
WHERE id = $1 AND email_confirmed = FALSE`
	tag, err := s.pool.Exec(ctx, q, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// distinguir inexistente de ya confirmado
		var confirmed bool
		if err := s.pool.QueryRow(ctx, `SELECT email_confirmed FROM app_user WHERE id = $1`, userID).Scan(&confirmed); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return core.ErrNotFound
			}
			return err
		}
		return core.ErrConflict
	}
	return nil
}

// ====================== REFRESH TOKENS ======================

func (s *Store) CreateRefreshToken(ctx context.Context, rt *core.RefreshToken) error {
	const q = `
INSERT INTO refresh_token (id, user_id, token_hash, expires_at, revoked, created_at)
VALUES (gen_random_uuid(), $1, $2, $3, FALSE, now())
RETURNING id, created_at`
	err := s.pool.QueryRow(ctx, q, rt.UserID, rt.TokenHash, rt.ExpiresAt).Scan(&rt.ID, &rt.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrConflict
		}
		logger.L().Error("pg_create_refresh_err", logger.UserID(rt.UserID), logger.Err(err))
		return err
	}
	return nil
}

func (s *Store) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*core.RefreshToken, error) {
	const q = `
SELECT id, user_id, token_hash, expires_at, revoked, created_at, replaced_by, reason_revoked
FROM refresh_token
WHERE token_hash = $1
LIMIT 1`
	var rt core.RefreshToken
	err := s.pool.QueryRow(ctx, q, tokenHash).Scan(
		&rt.ID, &rt.UserID, &rt.TokenHash, &rt.ExpiresAt, &rt.Revoked, &rt.CreatedAt, &rt.ReplacedBy, &rt.ReasonRevoked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		logger.L().Error("pg_get_refresh_by_hash_err", logger.Err(err))
		return nil, err
	}
	return &rt, nil
}

// RotateRefreshToken revoca el token viejo y persiste el sucesor en una sola
// transacción. El UPDATE condiciona revoked = FALSE, así ante dos refresh
// concurrentes con el mismo token gana exactamente uno y el otro recibe
// core.ErrTokenRevoked sin dejar sucesor colgado.
func (s *Store) RotateRefreshToken(ctx context.Context, oldHash string, successor *core.RefreshToken, now time.Time) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const insQ = `
INSERT INTO refresh_token (id, user_id, token_hash, expires_at, revoked, created_at)
VALUES (gen_random_uuid(), $1, $2, $3, FALSE, now())
RETURNING id, created_at`
	if err := tx.QueryRow(ctx, insQ, successor.UserID, successor.TokenHash, successor.ExpiresAt).
		Scan(&successor.ID, &successor.CreatedAt); err != nil {
		return err
	}

	const updQ = `
UPDATE refresh_token
SET revoked = TRUE, reason_revoked = 'Replaced by new token', replaced_by = $2
WHERE token_hash = $1 AND revoked = FALSE AND expires_at > $3`
	tag, err := tx.Exec(ctx, updQ, oldHash, successor.ID, now.UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// el rollback del defer descarta el sucesor insertado
		var revoked bool
		var expiresAt time.Time
		err := tx.QueryRow(ctx,
			`SELECT revoked, expires_at FROM refresh_token WHERE token_hash = $1`, oldHash,
		).Scan(&revoked, &expiresAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return core.ErrNotFound
		}
		if err != nil {
			return err
		}
		return core.ErrTokenRevoked
	}

	return tx.Commit(ctx)
}

// RevokeRefreshToken es idempotente: revocar un token ya revocado no toca la fila.
func (s *Store) RevokeRefreshToken(ctx context.Context, tokenHash, reason string) error {
	const q = `
UPDATE refresh_token SET revoked = TRUE, reason_revoked = $2
WHERE token_hash = $1 AND revoked = FALSE`
	_, err := s.pool.Exec(ctx, q, tokenHash, reason)
	return err
}

// ====================== COMPANIES ======================

func (s *Store) UserHasCompany(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM company WHERE owner_id = $1)`, userID).Scan(&exists)
	return exists, err
}
