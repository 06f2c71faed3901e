package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"freight-order-service/internal/domain"
	"freight-order-service/internal/platform/obs"
	"freight-order-service/internal/ports"
	"strings"
	"time"
)

// SQLite-backed implementation of the OrderRepository port.
type SqliteOrderRepository struct{ DB *sql.DB }

func NewSqliteOrderRepository(db *sql.DB) *SqliteOrderRepository {
	return &SqliteOrderRepository{DB: db}
}

const orderColumns = `
	id, user_id, driver_id, sender_name, sender_phone, sender_email,
	cargo_description, product_category, cargo_weight, cargo_volume, cargo_type,
	shipping_date, pickup_address, delivery_address, distance, price,
	insurance, packaging, comments, status, client_status, admin_comment,
	cancellation_reason, cancellation_fee, refund_amount,
	created_at, processed_at, assigned_at, accepted_at, in_transit_at, delivered_at, cancelled_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		o                               domain.Order
		driverID                        sql.NullInt64
		price, fee, refund              sql.NullFloat64
		insurance, packaging            int
		created                         sql.NullString
		processed, assigned, accepted   sql.NullString
		inTransit, delivered, cancelled sql.NullString
		cargoType, status, clientStatus string
	)

	err := row.Scan(
		&o.ID, &o.UserID, &driverID, &o.SenderName, &o.SenderPhone, &o.SenderEmail,
		&o.CargoDescription, &o.ProductCategory, &o.CargoWeight, &o.CargoVolume, &cargoType,
		&o.ShippingDate, &o.PickupAddress, &o.DeliveryAddress, &o.Distance, &price,
		&insurance, &packaging, &o.Comments, &status, &clientStatus, &o.AdminComment,
		&o.CancellationReason, &fee, &refund,
		&created, &processed, &assigned, &accepted, &inTransit, &delivered, &cancelled,
	)
	if err != nil {
		return nil, err
	}

	o.DriverID = nullInt(driverID)
	o.Price = nullFloat(price)
	o.CancellationFee = nullFloat(fee)
	o.RefundAmount = nullFloat(refund)
	o.Insurance = insurance != 0
	o.Packaging = packaging != 0
	o.CargoType = domain.CargoType(cargoType)
	o.Status = domain.AdminStatus(status)
	o.ClientStatus = domain.ClientStatus(clientStatus)
	if t := parseTime(created); t != nil {
		o.CreatedAt = *t
	}
	o.ProcessedAt = parseTime(processed)
	o.AssignedAt = parseTime(assigned)
	o.AcceptedAt = parseTime(accepted)
	o.InTransitAt = parseTime(inTransit)
	o.DeliveredAt = parseTime(delivered)
	o.CancelledAt = parseTime(cancelled)

	return &o, nil
}

// Insert a new order and set its ID.
func (r *SqliteOrderRepository) CreateOrder(ctx context.Context, o *domain.Order) (err error) {
	defer obs.Time(ctx, "orders.Create")(&err)

	if r.DB == nil {
		return errors.New("sqlite order repository: DB is nil")
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}

	res, err := r.DB.ExecContext(ctx, `
	INSERT INTO orders (
		user_id, sender_name, sender_phone, sender_email, cargo_description,
		product_category, cargo_weight, cargo_volume, cargo_type, shipping_date,
		pickup_address, delivery_address, distance, price, insurance, packaging,
		comments, status, client_status, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`,
		o.UserID, o.SenderName, o.SenderPhone, o.SenderEmail, o.CargoDescription,
		o.ProductCategory, o.CargoWeight, o.CargoVolume, string(o.CargoType), o.ShippingDate,
		o.PickupAddress, o.DeliveryAddress, o.Distance, floatArg(o.Price), boolInt(o.Insurance), boolInt(o.Packaging),
		o.Comments, string(o.Status), string(o.ClientStatus), timeArg(&o.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create order: insert: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create order: last insert id: %w", err)
	}
	o.ID = id
	return nil
}

// Return one order or ports.ErrNotFound.
func (r *SqliteOrderRepository) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	if r.DB == nil {
		return nil, errors.New("sqlite order repository: DB is nil")
	}

	row := r.DB.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?;`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get order %d: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get order %d: scan: %w", id, err)
	}
	return o, nil
}

// Return orders matching f, newest first.
func (r *SqliteOrderRepository) ListOrders(ctx context.Context, f ports.OrderFilter) (_ []domain.Order, err error) {
	defer obs.Time(ctx, "orders.List")(&err)

	if r.DB == nil {
		return nil, errors.New("sqlite order repository: DB is nil")
	}

	var where []string
	var args []any
	if f.UserID != nil {
		where = append(where, "user_id = ?")
		args = append(args, *f.UserID)
	}
	if f.DriverID != nil {
		where = append(where, "driver_id = ?")
		args = append(args, *f.DriverID)
	}

	q := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC, id DESC;"

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: query orders table: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, 32)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("list orders: scan row: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: row iteration: %w", err)
	}

	return orders, nil
}

// Persist the mutable columns of o.
func (r *SqliteOrderRepository) SaveOrder(ctx context.Context, o *domain.Order) (err error) {
	defer obs.Time(ctx, "orders.Save")(&err)

	if r.DB == nil {
		return errors.New("sqlite order repository: DB is nil")
	}

	res, err := r.DB.ExecContext(ctx, `
	UPDATE orders SET
		driver_id = ?, price = ?, status = ?, client_status = ?, admin_comment = ?,
		cancellation_reason = ?, cancellation_fee = ?, refund_amount = ?,
		processed_at = ?, assigned_at = ?, accepted_at = ?, in_transit_at = ?,
		delivered_at = ?, cancelled_at = ?
	WHERE id = ?;
	`,
		int64Arg(o.DriverID), floatArg(o.Price), string(o.Status), string(o.ClientStatus), o.AdminComment,
		o.CancellationReason, floatArg(o.CancellationFee), floatArg(o.RefundAmount),
		timeArg(o.ProcessedAt), timeArg(o.AssignedAt), timeArg(o.AcceptedAt), timeArg(o.InTransitAt),
		timeArg(o.DeliveredAt), timeArg(o.CancelledAt),
		o.ID,
	)
	if err != nil {
		return fmt.Errorf("save order %d: update: %w", o.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save order %d: rows affected: %w", o.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("save order %d: %w", o.ID, ports.ErrNotFound)
	}
	return nil
}
