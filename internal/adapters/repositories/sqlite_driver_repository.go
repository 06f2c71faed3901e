package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"freight-order-service/internal/domain"
	"freight-order-service/internal/platform/obs"
	"freight-order-service/internal/ports"
	"time"
)

// SQLite-backed implementation of the DriverRepository port. Driver rows are
// joined with their user so contact details are always current.
type SqliteDriverRepository struct{ DB *sql.DB }

func NewSqliteDriverRepository(db *sql.DB) *SqliteDriverRepository {
	return &SqliteDriverRepository{DB: db}
}

const driverSelect = `
	SELECT d.id, d.user_id, d.license_number, d.experience, d.car_model, d.car_number,
		d.max_weight, d.car_type, d.status, d.work_status, d.completed_deliveries,
		d.hire_date, d.dismissal_reason,
		u.first_name, u.last_name, u.phone, u.email
	FROM drivers d
	JOIN users u ON u.id = d.user_id`

func scanDriver(row rowScanner) (*domain.Driver, error) {
	var d domain.Driver
	var status, work string
	err := row.Scan(
		&d.ID, &d.UserID, &d.LicenseNumber, &d.Experience, &d.CarModel, &d.CarNumber,
		&d.MaxWeight, &d.CarType, &status, &work, &d.CompletedDeliveries,
		&d.HireDate, &d.DismissalReason,
		&d.FirstName, &d.LastName, &d.Phone, &d.Email,
	)
	if err != nil {
		return nil, err
	}
	d.Status = domain.DriverStatus(status)
	d.WorkStatus = domain.WorkStatus(work)
	return &d, nil
}

func (r *SqliteDriverRepository) CreateDriver(ctx context.Context, d *domain.Driver) error {
	if r.DB == nil {
		return errors.New("sqlite driver repository: DB is nil")
	}

	res, err := r.DB.ExecContext(ctx, `
	INSERT INTO drivers (
		user_id, license_number, experience, car_model, car_number, max_weight,
		car_type, status, work_status, hire_date
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`, d.UserID, d.LicenseNumber, d.Experience, d.CarModel, d.CarNumber, d.MaxWeight,
		d.CarType, string(d.Status), string(d.WorkStatus), d.HireDate)
	if isUniqueViolation(err) {
		return fmt.Errorf("create driver for user %d: %w", d.UserID, ports.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("create driver for user %d: insert: %w", d.UserID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create driver: last insert id: %w", err)
	}
	d.ID = id
	return nil
}

func (r *SqliteDriverRepository) GetDriverByUser(ctx context.Context, userID int64) (*domain.Driver, error) {
	if r.DB == nil {
		return nil, errors.New("sqlite driver repository: DB is nil")
	}

	d, err := scanDriver(r.DB.QueryRowContext(ctx, driverSelect+` WHERE d.user_id = ?;`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get driver for user %d: %w", userID, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get driver for user %d: scan: %w", userID, err)
	}
	return d, nil
}

func (r *SqliteDriverRepository) ListDrivers(ctx context.Context) (_ []domain.Driver, err error) {
	defer obs.Time(ctx, "drivers.List")(&err)

	if r.DB == nil {
		return nil, errors.New("sqlite driver repository: DB is nil")
	}

	rows, err := r.DB.QueryContext(ctx, driverSelect+` ORDER BY d.status, u.last_name, u.first_name;`)
	if err != nil {
		return nil, fmt.Errorf("list drivers: query: %w", err)
	}
	defer rows.Close()

	drivers := make([]domain.Driver, 0, 16)
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("list drivers: scan row: %w", err)
		}
		drivers = append(drivers, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list drivers: row iteration: %w", err)
	}
	return drivers, nil
}

// Persist the mutable columns of d, keyed by user id.
func (r *SqliteDriverRepository) SaveDriver(ctx context.Context, d *domain.Driver) error {
	if r.DB == nil {
		return errors.New("sqlite driver repository: DB is nil")
	}

	res, err := r.DB.ExecContext(ctx, `
	UPDATE drivers SET
		license_number = ?, experience = ?, car_model = ?, car_number = ?, max_weight = ?,
		car_type = ?, status = ?, work_status = ?, dismissal_reason = ?
	WHERE user_id = ?;
	`, d.LicenseNumber, d.Experience, d.CarModel, d.CarNumber, d.MaxWeight,
		d.CarType, string(d.Status), string(d.WorkStatus), d.DismissalReason, d.UserID)
	if err != nil {
		return fmt.Errorf("save driver %d: %w", d.UserID, err)
	}
	return requireRow(res, fmt.Sprintf("save driver %d", d.UserID))
}

func (r *SqliteDriverRepository) IncrementDeliveries(ctx context.Context, userID int64) error {
	if r.DB == nil {
		return errors.New("sqlite driver repository: DB is nil")
	}

	res, err := r.DB.ExecContext(ctx, `
	UPDATE drivers SET completed_deliveries = completed_deliveries + 1 WHERE user_id = ?;
	`, userID)
	if err != nil {
		return fmt.Errorf("increment deliveries %d: %w", userID, err)
	}
	return requireRow(res, fmt.Sprintf("increment deliveries %d", userID))
}

const applicationSelect = `
	SELECT a.id, a.user_id, a.license_number, a.experience, a.car_model, a.car_number,
		a.max_weight, a.car_type, a.status, a.applied_at, a.processed_at, a.processed_by,
		u.first_name, u.last_name, u.phone, u.email
	FROM driver_applications a
	JOIN users u ON u.id = a.user_id`

func scanApplication(row rowScanner) (*domain.DriverApplication, error) {
	var a domain.DriverApplication
	var status string
	var applied, processed sql.NullString
	var by sql.NullInt64
	err := row.Scan(
		&a.ID, &a.UserID, &a.LicenseNumber, &a.Experience, &a.CarModel, &a.CarNumber,
		&a.MaxWeight, &a.CarType, &status, &applied, &processed, &by,
		&a.FirstName, &a.LastName, &a.Phone, &a.Email,
	)
	if err != nil {
		return nil, err
	}
	a.Status = domain.ApplicationStatus(status)
	a.AppliedAt = parseTime(applied)
	a.ProcessedAt = parseTime(processed)
	a.ProcessedBy = nullInt(by)
	return &a, nil
}

func (r *SqliteDriverRepository) CreateApplication(ctx context.Context, a *domain.DriverApplication) error {
	if r.DB == nil {
		return errors.New("sqlite driver repository: DB is nil")
	}
	if a.AppliedAt == nil {
		now := time.Now().UTC()
		a.AppliedAt = &now
	}
	if a.Status == "" {
		a.Status = domain.ApplicationPending
	}

	res, err := r.DB.ExecContext(ctx, `
	INSERT INTO driver_applications (
		user_id, license_number, experience, car_model, car_number, max_weight,
		car_type, status, applied_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
	`, a.UserID, a.LicenseNumber, a.Experience, a.CarModel, a.CarNumber, a.MaxWeight,
		a.CarType, string(a.Status), timeArg(a.AppliedAt))
	if err != nil {
		return fmt.Errorf("create application for user %d: %w", a.UserID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create application: last insert id: %w", err)
	}
	a.ID = id
	return nil
}

func (r *SqliteDriverRepository) GetApplication(ctx context.Context, id int64) (*domain.DriverApplication, error) {
	if r.DB == nil {
		return nil, errors.New("sqlite driver repository: DB is nil")
	}

	a, err := scanApplication(r.DB.QueryRowContext(ctx, applicationSelect+` WHERE a.id = ?;`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get application %d: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get application %d: scan: %w", id, err)
	}
	return a, nil
}

// Return the user's most recent application or ports.ErrNotFound.
func (r *SqliteDriverRepository) LatestApplication(ctx context.Context, userID int64) (*domain.DriverApplication, error) {
	if r.DB == nil {
		return nil, errors.New("sqlite driver repository: DB is nil")
	}

	row := r.DB.QueryRowContext(ctx, applicationSelect+` WHERE a.user_id = ? ORDER BY a.applied_at DESC, a.id DESC LIMIT 1;`, userID)
	a, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("latest application for user %d: %w", userID, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("latest application for user %d: scan: %w", userID, err)
	}
	return a, nil
}

func (r *SqliteDriverRepository) HasPendingApplication(ctx context.Context, userID int64) (bool, error) {
	if r.DB == nil {
		return false, errors.New("sqlite driver repository: DB is nil")
	}

	var n int
	err := r.DB.QueryRowContext(ctx, `
	SELECT COUNT(*) FROM driver_applications WHERE user_id = ? AND status = ?;
	`, userID, string(domain.ApplicationPending)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("pending application for user %d: %w", userID, err)
	}
	return n > 0, nil
}

// Return all applications, pending first, newest first within a status.
func (r *SqliteDriverRepository) ListApplications(ctx context.Context) (_ []domain.DriverApplication, err error) {
	defer obs.Time(ctx, "applications.List")(&err)

	if r.DB == nil {
		return nil, errors.New("sqlite driver repository: DB is nil")
	}

	rows, err := r.DB.QueryContext(ctx, applicationSelect+`
	ORDER BY CASE a.status WHEN 'pending' THEN 0 ELSE 1 END, a.applied_at DESC, a.id DESC;`)
	if err != nil {
		return nil, fmt.Errorf("list applications: query: %w", err)
	}
	defer rows.Close()

	apps := make([]domain.DriverApplication, 0, 16)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("list applications: scan row: %w", err)
		}
		apps = append(apps, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list applications: row iteration: %w", err)
	}
	return apps, nil
}

func (r *SqliteDriverRepository) SaveApplication(ctx context.Context, a *domain.DriverApplication) error {
	if r.DB == nil {
		return errors.New("sqlite driver repository: DB is nil")
	}

	res, err := r.DB.ExecContext(ctx, `
	UPDATE driver_applications SET status = ?, processed_at = ?, processed_by = ? WHERE id = ?;
	`, string(a.Status), timeArg(a.ProcessedAt), int64Arg(a.ProcessedBy), a.ID)
	if err != nil {
		return fmt.Errorf("save application %d: %w", a.ID, err)
	}
	return requireRow(res, fmt.Sprintf("save application %d", a.ID))
}
