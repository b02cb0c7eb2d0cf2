package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"game_store_backend/internal/models"
)

// OrderRepository stores online shop orders. Items are kept as a JSONB snapshot.
type OrderRepository interface {
	CreateOrder(ctx context.Context, executor SQLExecutor, order *models.Order) (int64, error)
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	GetOrderByNumber(ctx context.Context, number string) (*models.Order, error)
	GetOrders(ctx context.Context, filters models.OrderFilters) ([]models.Order, int, error)
	UpdateOrderStatus(ctx context.Context, executor SQLExecutor, order *models.Order) error
	DeleteOrder(ctx context.Context, executor SQLExecutor, id int64) error
}

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, order_number, client_id, client_name, client_phone, client_email, items, subtotal,
	delivery_method, delivery_cost, delivery_address, total_amount, payment_method, payment_status,
	payment_reference, status, notes, staff_notes, staff_id, confirmed_at, delivered_at, created_at, updated_at`

func scanOrder(row scanner, extra ...interface{}) (*models.Order, error) {
	o := &models.Order{}
	var items []byte
	dest := []interface{}{&o.ID, &o.OrderNumber, &o.ClientID, &o.ClientName, &o.ClientPhone, &o.ClientEmail, &items,
		&o.Subtotal, &o.DeliveryMethod, &o.DeliveryCost, &o.DeliveryAddress, &o.TotalAmount, &o.PaymentMethod,
		&o.PaymentStatus, &o.PaymentReference, &o.Status, &o.Notes, &o.StaffNotes, &o.StaffID, &o.ConfirmedAt,
		&o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decoding items of order %d: %w", o.ID, err)
	}
	return o, nil
}

func (r *orderRepository) CreateOrder(ctx context.Context, executor SQLExecutor, order *models.Order) (int64, error) {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return 0, fmt.Errorf("%w: encoding order items: %v", ErrDatabaseError, err)
	}
	query := `INSERT INTO orders (order_number, client_id, client_name, client_phone, client_email, items, subtotal,
	                              delivery_method, delivery_cost, delivery_address, total_amount, payment_method,
	                              payment_status, status, notes)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	          RETURNING id, created_at, updated_at`
	err = executor.QueryRowContext(ctx, query,
		order.OrderNumber, order.ClientID, order.ClientName, order.ClientPhone, order.ClientEmail, items, order.Subtotal,
		order.DeliveryMethod, order.DeliveryCost, order.DeliveryAddress, order.TotalAmount, order.PaymentMethod,
		order.PaymentStatus, order.Status, order.Notes,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return 0, mapWriteError(err, "creating order")
	}
	return order.ID, nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, mapReadError(err, fmt.Sprintf("getting order ID %d", id))
	}
	return o, nil
}

func (r *orderRepository) GetOrderByNumber(ctx context.Context, number string) (*models.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_number = $1`, number))
	if err != nil {
		return nil, mapReadError(err, "getting order by number")
	}
	return o, nil
}

func (r *orderRepository) GetOrders(ctx context.Context, filters models.OrderFilters) ([]models.Order, int, error) {
	var qb strings.Builder
	qb.WriteString(`SELECT ` + orderColumns + `, COUNT(*) OVER() AS total_count FROM orders`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}
	if filters.PaymentStatus != nil {
		conditions = append(conditions, fmt.Sprintf("payment_status = $%d", argCount))
		args = append(args, *filters.PaymentStatus)
		argCount++
	}
	if filters.Search != nil && *filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(order_number ILIKE $%d OR client_name ILIKE $%d OR client_phone ILIKE $%d)", argCount, argCount, argCount))
		args = append(args, "%"+*filters.Search+"%")
		argCount++
	}
	if filters.From != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argCount))
		args = append(args, *filters.From)
		argCount++
	}
	if filters.To != nil {
		conditions = append(conditions, fmt.Sprintf("created_at < $%d", argCount))
		args = append(args, *filters.To)
		argCount++
	}
	if len(conditions) > 0 {
		qb.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	qb.WriteString(" ORDER BY created_at DESC")
	if filters.PageSize > 0 {
		qb.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
		args = append(args, filters.PageSize, offsetFor(filters.Page, filters.PageSize))
	}

	rows, err := r.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying orders: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	orders := []models.Order{}
	total := 0
	for rows.Next() {
		o, err := scanOrder(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning order: %v", ErrDatabaseError, err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating orders: %v", ErrDatabaseError, err)
	}
	return orders, total, nil
}

// UpdateOrderStatus writes the staff-editable workflow fields.
func (r *orderRepository) UpdateOrderStatus(ctx context.Context, executor SQLExecutor, order *models.Order) error {
	query := `UPDATE orders
	          SET status = $1, payment_status = $2, payment_reference = $3, staff_notes = $4, staff_id = $5,
	              confirmed_at = $6, delivered_at = $7, updated_at = NOW()
	          WHERE id = $8`
	result, err := executor.ExecContext(ctx, query,
		order.Status, order.PaymentStatus, order.PaymentReference, order.StaffNotes, order.StaffID,
		order.ConfirmedAt, order.DeliveredAt, order.ID)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating order ID %d", order.ID))
	}
	return expectAffected(result, fmt.Sprintf("updating order ID %d", order.ID))
}

func (r *orderRepository) DeleteOrder(ctx context.Context, executor SQLExecutor, id int64) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("deleting order ID %d", id))
	}
	return expectAffected(result, fmt.Sprintf("deleting order ID %d", id))
}
