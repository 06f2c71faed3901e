package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"freight-order-service/internal/domain"
	"freight-order-service/internal/ports"
	"strings"
)

type SqliteUserRepository struct{ DB *sql.DB }

func NewSqliteUserRepository(db *sql.DB) *SqliteUserRepository {
	return &SqliteUserRepository{DB: db}
}

const userColumns = `id, email, phone, first_name, last_name, verified, is_admin, is_driver`

func scanUser(row rowScanner, extra ...any) (*domain.User, error) {
	var u domain.User
	var verified, isAdmin, isDriver int
	dest := append([]any{&u.ID, &u.Email, &u.Phone, &u.FirstName, &u.LastName, &verified, &isAdmin, &isDriver}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	u.Verified = verified != 0
	u.IsAdmin = isAdmin != 0
	u.IsDriver = isDriver != 0
	return &u, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Insert u with its bcrypt hash. Duplicate email or phone yields ports.ErrConflict.
func (r *SqliteUserRepository) CreateUser(ctx context.Context, u *domain.User, passwordHash string) error {
	if r.DB == nil {
		return errors.New("sqlite user repository: DB is nil")
	}

	res, err := r.DB.ExecContext(ctx, `
	INSERT INTO users (email, phone, password, first_name, last_name, verified, is_admin, is_driver)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`, u.Email, u.Phone, passwordHash, u.FirstName, u.LastName,
		boolInt(u.Verified), boolInt(u.IsAdmin), boolInt(u.IsDriver))
	if isUniqueViolation(err) {
		return fmt.Errorf("create user %q: %w", u.Email, ports.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("create user %q: insert: %w", u.Email, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create user: last insert id: %w", err)
	}
	u.ID = id
	return nil
}

func (r *SqliteUserRepository) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	if r.DB == nil {
		return nil, errors.New("sqlite user repository: DB is nil")
	}

	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?;`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user %d: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: scan: %w", id, err)
	}
	return u, nil
}

// Email matching is case-insensitive; phone matching is exact.
func (r *SqliteUserRepository) FindByLogin(ctx context.Context, login string) (*domain.User, string, error) {
	if r.DB == nil {
		return nil, "", errors.New("sqlite user repository: DB is nil")
	}

	login = strings.TrimSpace(login)
	var hash string
	row := r.DB.QueryRowContext(ctx, `
	SELECT `+userColumns+`, password FROM users
	WHERE lower(email) = lower(?) OR phone = ?
	LIMIT 1;
	`, login, login)

	u, err := scanUser(row, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("find user %q: %w", login, ports.ErrNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("find user %q: scan: %w", login, err)
	}
	return u, hash, nil
}

// Update the profile columns of u. Role flags are changed through SetDriverRole.
func (r *SqliteUserRepository) UpdateUser(ctx context.Context, u *domain.User) error {
	if r.DB == nil {
		return errors.New("sqlite user repository: DB is nil")
	}

	res, err := r.DB.ExecContext(ctx, `
	UPDATE users SET email = ?, phone = ?, first_name = ?, last_name = ? WHERE id = ?;
	`, u.Email, u.Phone, u.FirstName, u.LastName, u.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("update user %d: %w", u.ID, ports.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("update user %d: %w", u.ID, err)
	}
	return requireRow(res, fmt.Sprintf("update user %d", u.ID))
}

func (r *SqliteUserRepository) SetPassword(ctx context.Context, userID int64, passwordHash string) error {
	if r.DB == nil {
		return errors.New("sqlite user repository: DB is nil")
	}

	res, err := r.DB.ExecContext(ctx, `UPDATE users SET password = ? WHERE id = ?;`, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("set password %d: %w", userID, err)
	}
	return requireRow(res, fmt.Sprintf("set password %d", userID))
}

func (r *SqliteUserRepository) SetDriverRole(ctx context.Context, userID int64, isDriver bool) error {
	if r.DB == nil {
		return errors.New("sqlite user repository: DB is nil")
	}

	res, err := r.DB.ExecContext(ctx, `UPDATE users SET is_driver = ? WHERE id = ?;`, boolInt(isDriver), userID)
	if err != nil {
		return fmt.Errorf("set driver role %d: %w", userID, err)
	}
	return requireRow(res, fmt.Sprintf("set driver role %d", userID))
}

func (r *SqliteUserRepository) AdminIDs(ctx context.Context) ([]int64, error) {
	if r.DB == nil {
		return nil, errors.New("sqlite user repository: DB is nil")
	}

	rows, err := r.DB.QueryContext(ctx, `SELECT id FROM users WHERE is_admin = 1 ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("admin ids: query: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("admin ids: scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("admin ids: row iteration: %w", err)
	}
	return ids, nil
}

func requireRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ports.ErrNotFound)
	}
	return nil
}
