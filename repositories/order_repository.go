package repositories

import (
	"context"
	"fmt"
	"slices"

	"farmconnect/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type OrderRepository struct {
	db DB
}

func NewOrderRepository(db DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateOrders stores one order per draft in a single transaction. Each
// draft carries SellerID and items with ProductID and Quantity; name, unit
// and price are taken from the locked product row and the stock is
// decremented. Any shortfall aborts every order.
func (r *OrderRepository) CreateOrders(ctx context.Context, buyerID string, drafts []models.Order) ([]models.Order, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin order tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockProducts(ctx, tx, drafts); err != nil {
		return nil, err
	}

	orders := make([]models.Order, 0, len(drafts))
	for _, draft := range drafts {
		order, err := createOrder(ctx, tx, buyerID, draft)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit order tx: %w", err)
	}
	return orders, nil
}

// lockProducts takes the row locks for every product in drafts in id order,
// so checkouts sharing products queue behind each other instead of
// deadlocking.
func lockProducts(ctx context.Context, tx pgx.Tx, drafts []models.Order) error {
	var ids []string
	for _, d := range drafts {
		for _, it := range d.Items {
			ids = append(ids, it.ProductID)
		}
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)
	if len(ids) == 0 {
		return nil
	}

	rows, err := tx.Query(ctx, `SELECT id FROM products WHERE id = ANY($1::uuid[]) ORDER BY id FOR UPDATE`, ids)
	if err != nil {
		return translate(err, "product")
	}
	rows.Close()
	return translate(rows.Err(), "product")
}

func createOrder(ctx context.Context, tx pgx.Tx, buyerID string, draft models.Order) (models.Order, error) {
	if len(draft.Items) == 0 {
		return models.Order{}, models.Validationf("order for seller %s has no items", draft.SellerID)
	}

	items := make([]models.OrderItem, 0, len(draft.Items))
	total := decimal.Zero
	for _, it := range draft.Items {
		if it.Quantity < 1 {
			return models.Order{}, models.Validationf("quantity must be at least 1")
		}

		var (
			sellerID string
			stock    decimal.Decimal
			item     = models.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity}
		)
		err := tx.QueryRow(ctx,
			`SELECT seller_id, name, unit, price, quantity FROM products WHERE id = $1 FOR UPDATE`, it.ProductID,
		).Scan(&sellerID, &item.ProductName, &item.Unit, &item.Price, &stock)
		if err != nil {
			return models.Order{}, translate(err, "product "+it.ProductID)
		}
		if sellerID != draft.SellerID {
			return models.Order{}, models.Validationf("product %s is not sold by %s", it.ProductID, draft.SellerID)
		}
		if sellerID == buyerID {
			return models.Order{}, models.Validationf("cannot order your own product %s", item.ProductName)
		}

		qty := decimal.NewFromInt(int64(it.Quantity))
		if stock.LessThan(qty) {
			return models.Order{}, models.Validationf("only %s %s of %s left", stock.String(), item.Unit, item.ProductName)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE products SET quantity = quantity - $1, updated_at = NOW() WHERE id = $2`, qty, it.ProductID,
		); err != nil {
			return models.Order{}, translate(err, "product")
		}

		total = total.Add(item.Price.Mul(qty))
		items = append(items, item)
	}

	order := models.Order{
		BuyerID:  buyerID,
		SellerID: draft.SellerID,
		Status:   models.OrderPending,
		Total:    total,
	}
	err := tx.QueryRow(ctx, `
		INSERT INTO orders (buyer_id, seller_id, status, total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, buyerID, draft.SellerID, order.Status, total).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return models.Order{}, translate(err, "order")
	}

	for i := range items {
		items[i].OrderID = order.ID
		err := tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, product_id, product_name, unit, quantity, price)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, order.ID, items[i].ProductID, items[i].ProductName, items[i].Unit, items[i].Quantity, items[i].Price,
		).Scan(&items[i].ID)
		if err != nil {
			return models.Order{}, translate(err, "order item")
		}
	}
	order.Items = items
	return order, nil
}

const orderColumns = `id, buyer_id, seller_id, status, total, created_at, updated_at`

func scanOrder(row pgx.Row) (models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.BuyerID, &o.SellerID, &o.Status, &o.Total, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (r *OrderRepository) list(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err, "order")
	}

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, r.db, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *OrderRepository) attachItems(ctx context.Context, q querier, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	pos := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		pos[o.ID] = i
		orders[i].Items = []models.OrderItem{}
	}

	rows, err := q.Query(ctx, `
		SELECT id, order_id, COALESCE(product_id::text, ''), product_name, unit, quantity, price
		FROM order_items WHERE order_id = ANY($1::uuid[]) ORDER BY order_id, id
	`, ids)
	if err != nil {
		return translate(err, "order item")
	}
	defer rows.Close()

	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Unit, &it.Quantity, &it.Price); err != nil {
			return err
		}
		i := pos[it.OrderID]
		orders[i].Items = append(orders[i].Items, it)
	}
	return rows.Err()
}

func (r *OrderRepository) ListByBuyer(ctx context.Context, buyerID string) ([]models.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE buyer_id = $1 ORDER BY created_at DESC, id`, buyerID)
}

// ListBySeller returns the seller's orders, optionally only those with
// status.
func (r *OrderRepository) ListBySeller(ctx context.Context, sellerID string, status models.OrderStatus) ([]models.Order, error) {
	if status == "" {
		return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE seller_id = $1 ORDER BY created_at DESC, id`, sellerID)
	}
	return r.list(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE seller_id = $1 AND status = $2 ORDER BY created_at DESC, id`,
		sellerID, status)
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, "order")
	}
	orders := []models.Order{o}
	if err := r.attachItems(ctx, r.db, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// UpdateStatus moves an order owned by sellerID to next. Cancelling puts the
// ordered quantities back in stock.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id, sellerID string, next models.OrderStatus) (*models.Order, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin status tx: %w", err)
	}
	defer tx.Rollback(ctx)

	o, err := scanOrder(tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, translate(err, "order")
	}
	if o.SellerID != sellerID {
		return nil, models.Permissionf("order %s belongs to another seller", id)
	}
	if !o.Status.CanTransition(next) {
		return nil, models.Validationf("cannot change order from %s to %s", o.Status, next)
	}

	if next == models.OrderCancelled {
		_, err := tx.Exec(ctx, `
			UPDATE products p
			SET quantity = p.quantity + oi.quantity, updated_at = NOW()
			FROM order_items oi
			WHERE oi.order_id = $1 AND oi.product_id = p.id
		`, id)
		if err != nil {
			return nil, fmt.Errorf("restore stock: %w", err)
		}
	}

	err = tx.QueryRow(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING status, updated_at`, next, id,
	).Scan(&o.Status, &o.UpdatedAt)
	if err != nil {
		return nil, translate(err, "order")
	}

	orders := []models.Order{o}
	if err := r.attachItems(ctx, tx, orders); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit status tx: %w", err)
	}
	return &orders[0], nil
}
