package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT UNIQUE NOT NULL,
		phone TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		verified INTEGER NOT NULL DEFAULT 0,
		is_admin INTEGER NOT NULL DEFAULT 0,
		is_driver INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users (id),
		driver_id INTEGER REFERENCES users (id),
		sender_name TEXT NOT NULL,
		sender_phone TEXT NOT NULL,
		sender_email TEXT NOT NULL DEFAULT '',
		cargo_description TEXT NOT NULL,
		product_category TEXT NOT NULL DEFAULT '',
		cargo_weight REAL NOT NULL,
		cargo_volume REAL NOT NULL,
		cargo_type TEXT NOT NULL DEFAULT 'general',
		shipping_date TEXT NOT NULL DEFAULT '',
		pickup_address TEXT NOT NULL,
		delivery_address TEXT NOT NULL,
		distance REAL NOT NULL DEFAULT 0,
		price REAL,
		insurance INTEGER NOT NULL DEFAULT 0,
		packaging INTEGER NOT NULL DEFAULT 0,
		comments TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'new',
		client_status TEXT NOT NULL DEFAULT 'processing',
		admin_comment TEXT NOT NULL DEFAULT '',
		cancellation_reason TEXT NOT NULL DEFAULT '',
		cancellation_fee REAL,
		refund_amount REAL,
		created_at TEXT NOT NULL,
		processed_at TEXT,
		assigned_at TEXT,
		accepted_at TEXT,
		in_transit_at TEXT,
		delivered_at TEXT,
		cancelled_at TEXT
	);`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders (user_id);`,
	`CREATE INDEX IF NOT EXISTS idx_orders_driver ON orders (driver_id);`,
	`CREATE TABLE IF NOT EXISTS drivers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER UNIQUE NOT NULL REFERENCES users (id),
		license_number TEXT NOT NULL,
		experience INTEGER NOT NULL DEFAULT 0,
		car_model TEXT NOT NULL DEFAULT '',
		car_number TEXT NOT NULL DEFAULT '',
		max_weight REAL NOT NULL DEFAULT 0,
		car_type TEXT NOT NULL DEFAULT 'tent',
		status TEXT NOT NULL DEFAULT 'active',
		work_status TEXT NOT NULL DEFAULT 'active',
		completed_deliveries INTEGER NOT NULL DEFAULT 0,
		hire_date TEXT NOT NULL DEFAULT '',
		dismissal_reason TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE TABLE IF NOT EXISTS driver_applications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users (id),
		license_number TEXT NOT NULL,
		experience INTEGER NOT NULL,
		car_model TEXT NOT NULL,
		car_number TEXT NOT NULL,
		max_weight REAL NOT NULL,
		car_type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		applied_at TEXT NOT NULL,
		processed_at TEXT,
		processed_by INTEGER
	);`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users (id),
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT 'info',
		read INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS distance_cache (
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		distance_km INTEGER NOT NULL,
		duration_seconds INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (origin, destination)
	);`,
	`CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lon REAL NOT NULL,
		lat REAL NOT NULL
	);`,
}

var postgresCacheSchema = []string{
	`CREATE TABLE IF NOT EXISTS distance_cache (
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		distance_km INTEGER NOT NULL,
		duration_seconds INTEGER NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (origin, destination)
	);`,
	`CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_distance_cache_destination_origin
		ON distance_cache (destination, origin);`,
}

// InitSchema creates the SQLite tables used by the backend.
func InitSchema(ctx context.Context, db *sql.DB) error {
	return execAll(ctx, db, "init schema", sqliteSchema)
}

// InitCacheSchema creates the shared distance and geocode cache tables in Postgres.
func InitCacheSchema(ctx context.Context, db *sql.DB) error {
	return execAll(ctx, db, "init cache schema", postgresCacheSchema)
}

func execAll(ctx context.Context, db *sql.DB, op string, statements []string) error {
	if db == nil {
		return fmt.Errorf("%s: DB is nil", op)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: exec statement #%d: %w", op, i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit tx: %w", op, err)
	}
	return nil
}

// UserSeed is one account loaded by SeedFromJSON.
type UserSeed struct {
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsAdmin   bool   `json:"is_admin"`
}

// DefaultAdmin is created on first start so the admin panel is reachable.
var DefaultAdmin = UserSeed{
	Email:     "admin@transportco.ru",
	Phone:     "+79123456780",
	Password:  "admin123",
	FirstName: "Александр",
	LastName:  "Петров",
	IsAdmin:   true,
}

// SeedUsers inserts accounts that do not exist yet. Existing emails are left untouched.
func SeedUsers(ctx context.Context, db *sql.DB, users []UserSeed) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed users: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT OR IGNORE INTO users (email, phone, password, first_name, last_name, verified, is_admin)
	VALUES (?, ?, ?, ?, ?, 1, ?);
	`)
	if err != nil {
		return fmt.Errorf("seed users: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, u := range users {
		email := strings.TrimSpace(u.Email)
		if email == "" || u.Password == "" {
			return fmt.Errorf("seed users: item %d: email and password are required", i+1)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("seed users: hash password for %q: %w", email, err)
		}
		if _, err := stmt.ExecContext(ctx, email, u.Phone, string(hash), u.FirstName, u.LastName, boolInt(u.IsAdmin)); err != nil {
			return fmt.Errorf("seed users: insert %q: %w", email, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed users: commit tx: %w", err)
	}
	return nil
}

// SeedFromJSON loads accounts from a JSON array file. A missing file is not an error.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) error {
	raw, err := os.ReadFile(jsonPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed users: read %q: %w", jsonPath, err)
	}

	var users []UserSeed
	if err := json.Unmarshal(raw, &users); err != nil {
		return fmt.Errorf("seed users: parse json: %w", err)
	}
	return SeedUsers(ctx, db, users)
}
