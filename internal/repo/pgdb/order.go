package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"time"
	"vetblood-market-api/internal/common"
	"vetblood-market-api/internal/entity"
	"vetblood-market-api/internal/repo/repo_errors"
	"vetblood-market-api/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type OrderRepo struct {
	*postgres.Postgres
}

func NewOrderRepo(pgdb *postgres.Postgres) *OrderRepo {
	return &OrderRepo{pgdb}
}

const orderColumns = "id, buyer_id, seller_id, subtotal, service_fee, delivery_fee, total, delivery_method, payment_intent_id, payment_status, status, created_at"

func scanOrder(row interface{ Scan(...any) error }) (*entity.Order, error) {
	var o entity.Order
	var createdAt time.Time
	err := row.Scan(&o.Id, &o.BuyerId, &o.SellerId, &o.Subtotal, &o.ServiceFee, &o.DeliveryFee,
		&o.Total, &o.DeliveryMethod, &o.PaymentIntentId, &o.PaymentStatus, &o.Status, &createdAt)
	if err != nil {
		return nil, err
	}
	o.CreatedAt = createdAt.Format(time.RFC3339)

	return &o, nil
}

// insertOrderWithItem is shared between direct checkout and the offer
// acceptance transaction; it always runs inside an open tx.
func insertOrderWithItem(tx *sql.Tx, builder squirrel.StatementBuilderType, input *entity.CreateOrderInput) (uuid.UUID, error) {
	createOrderReq, args, _ := builder.
		Insert("orders").
		Columns("buyer_id", "seller_id", "subtotal", "service_fee", "delivery_fee", "total",
			"delivery_method", "payment_intent_id", "payment_status", "status").
		Values(input.BuyerId, input.SellerId, input.Subtotal, input.ServiceFee, input.DeliveryFee,
			input.Total, input.DeliveryMethod, input.PaymentIntentId, common.PaymentPending, common.OrderPending).
		Suffix("RETURNING id").
		RunWith(tx).
		ToSql()

	var orderId uuid.UUID
	if err := tx.QueryRow(createOrderReq, args...).Scan(&orderId); err != nil {
		return uuid.Nil, err
	}

	createItemReq, args, _ := builder.
		Insert("order_item").
		Columns("order_id", "listing_id", "quantity", "price_per_unit").
		Values(orderId, input.ListingId, input.Quantity, input.PricePerUnit).
		RunWith(tx).
		ToSql()

	if _, err := tx.Exec(createItemReq, args...); err != nil {
		return uuid.Nil, err
	}

	return orderId, nil
}

// CreateOrder persists an order with its item atomically. Inventory is not
// touched here: the decrement happens only at payment confirmation.
func (r *OrderRepo) CreateOrder(ctx context.Context, input *entity.CreateOrderInput) (uuid.UUID, error) {
	tx, err := r.Database.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}

	orderId, err := insertOrderWithItem(tx, r.SqlBuilder, input)
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return uuid.Nil, e
		}

		return uuid.Nil, err
	}

	if err = tx.Commit(); err != nil {
		return uuid.Nil, err
	}

	return orderId, nil
}

func (r *OrderRepo) GetOrderById(ctx context.Context, id string) (*entity.Order, error) {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}

	getOrderReq, args, _ := r.SqlBuilder.
		Select(orderColumns).
		From("orders").
		Where("id = ?", uuidForm).
		ToSql()

	order, err := scanOrder(r.Database.QueryRow(getOrderReq, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}

	if order.Items, err = r.getOrderItems(order.Id); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *OrderRepo) getOrderItems(orderId uuid.UUID) ([]entity.OrderItem, error) {
	getItemsReq, args, _ := r.SqlBuilder.
		Select("id, order_id, listing_id, quantity, price_per_unit").
		From("order_item").
		Where("order_id = ?", orderId).
		ToSql()

	rows, err := r.Database.Query(getItemsReq, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]entity.OrderItem, 0)
	for rows.Next() {
		var item entity.OrderItem
		if err := rows.Scan(&item.Id, &item.OrderId, &item.ListingId, &item.Quantity, &item.PricePerUnit); err != nil {
			return items, err
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return items, err
	}

	return items, nil
}

func (r *OrderRepo) GetBuyerOrders(ctx context.Context, buyerId string, pg *entity.PaginationInput) ([]entity.Order, error) {
	return r.getOrdersBy("buyer_id", buyerId, pg)
}

func (r *OrderRepo) GetSellerOrders(ctx context.Context, sellerId string, pg *entity.PaginationInput) ([]entity.Order, error) {
	return r.getOrdersBy("seller_id", sellerId, pg)
}

func (r *OrderRepo) getOrdersBy(column string, id string, pg *entity.PaginationInput) ([]entity.Order, error) {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}

	getOrdersReq, args, _ := r.SqlBuilder.
		Select(orderColumns).
		From("orders").
		Where(column+" = ?", uuidForm).
		OrderBy("created_at DESC").
		Offset(uint64(pg.Offset)).
		Limit(uint64(pg.Limit)).
		ToSql()

	rows, err := r.Database.Query(getOrdersReq, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]entity.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return orders, err
		}
		orders = append(orders, *order)
	}
	if err = rows.Err(); err != nil {
		return orders, err
	}

	for i := range orders {
		if orders[i].Items, err = r.getOrderItems(orders[i].Id); err != nil {
			return orders, err
		}
	}

	return orders, nil
}

// MarkOrderPaid flips the payment and order statuses together and returns the
// order with its items for the follow-up inventory decrement.
func (r *OrderRepo) MarkOrderPaid(ctx context.Context, id string) (*entity.Order, error) {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}

	markPaidReq, args, _ := r.SqlBuilder.
		Update("orders").
		Set("payment_status", common.PaymentPaid).
		Set("status", common.OrderConfirmed).
		Where("id = ?", uuidForm).
		Suffix("RETURNING " + orderColumns).
		ToSql()

	order, err := scanOrder(r.Database.QueryRow(markPaidReq, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}

	if order.Items, err = r.getOrderItems(order.Id); err != nil {
		return nil, err
	}

	return order, nil
}
