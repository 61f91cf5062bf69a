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

type OfferRepo struct {
	*postgres.Postgres
}

func NewOfferRepo(pgdb *postgres.Postgres) *OfferRepo {
	return &OfferRepo{pgdb}
}

const offerColumns = "id, listing_id, buyer_id, offered_price, quantity, message, status, expires_at, accepted_at, rejected_at, created_at"

func scanOffer(row interface{ Scan(...any) error }) (*entity.Offer, error) {
	var o entity.Offer
	var createdAt time.Time
	err := row.Scan(&o.Id, &o.ListingId, &o.BuyerId, &o.OfferedPrice, &o.Quantity,
		&o.Message, &o.Status, &o.ExpiresAt, &o.AcceptedAt, &o.RejectedAt, &createdAt)
	if err != nil {
		return nil, err
	}
	o.CreatedAt = createdAt.Format(time.RFC3339)

	return &o, nil
}

func (r *OfferRepo) CreateOffer(ctx context.Context, input *entity.CreateOfferInput) (uuid.UUID, error) {
	expiresAt := time.Now().Add(common.OfferWindow)

	createOfferReq, args, _ := r.SqlBuilder.
		Insert("offer").
		Columns("listing_id", "buyer_id", "offered_price", "quantity", "message", "status", "expires_at").
		Values(input.ListingId, input.BuyerId, input.OfferedPrice, input.Quantity, input.Message,
			common.OfferPending, expiresAt).
		Suffix("RETURNING id").
		ToSql()

	var offerId uuid.UUID
	if err := r.Database.QueryRow(createOfferReq, args...).Scan(&offerId); err != nil {
		return uuid.Nil, err
	}

	return offerId, nil
}

func (r *OfferRepo) GetOfferById(ctx context.Context, id string) (*entity.Offer, error) {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}

	getOfferReq, args, _ := r.SqlBuilder.
		Select(offerColumns).
		From("offer").
		Where("id = ?", uuidForm).
		ToSql()

	offer, err := scanOffer(r.Database.QueryRow(getOfferReq, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}

	return offer, nil
}

func (r *OfferRepo) GetBuyerOffers(ctx context.Context, buyerId string, status string, pg *entity.PaginationInput) ([]entity.Offer, error) {
	uuidForm, err := uuid.Parse(buyerId)
	if err != nil {
		return nil, err
	}

	q := r.SqlBuilder.
		Select(offerColumns).
		From("offer").
		Where("buyer_id = ?", uuidForm)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	getOffersReq, args, _ := q.
		OrderBy("created_at DESC").
		Offset(uint64(pg.Offset)).
		Limit(uint64(pg.Limit)).
		ToSql()

	return r.queryOffers(getOffersReq, args)
}

// GetSellerOffers returns offers placed against any of the seller's listings.
func (r *OfferRepo) GetSellerOffers(ctx context.Context, sellerId string, pg *entity.PaginationInput) ([]entity.Offer, error) {
	uuidForm, err := uuid.Parse(sellerId)
	if err != nil {
		return nil, err
	}

	getOffersReq, args, _ := r.SqlBuilder.
		Select("offer.id, offer.listing_id, offer.buyer_id, offer.offered_price, offer.quantity, offer.message, offer.status, offer.expires_at, offer.accepted_at, offer.rejected_at, offer.created_at").
		From("offer").
		InnerJoin("blood_listing on blood_listing.id = offer.listing_id").
		Where("blood_listing.hospital_id = ?", uuidForm).
		OrderBy("offer.created_at DESC").
		Offset(uint64(pg.Offset)).
		Limit(uint64(pg.Limit)).
		ToSql()

	return r.queryOffers(getOffersReq, args)
}

func (r *OfferRepo) queryOffers(query string, args []any) ([]entity.Offer, error) {
	rows, err := r.Database.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	offers := make([]entity.Offer, 0)
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return offers, err
		}
		offers = append(offers, *offer)
	}
	if err = rows.Err(); err != nil {
		return offers, err
	}

	return offers, nil
}

func (r *OfferRepo) HasPendingOffer(ctx context.Context, listingId string, buyerId string) (bool, error) {
	listingUuid, err := uuid.Parse(listingId)
	if err != nil {
		return false, err
	}
	buyerUuid, err := uuid.Parse(buyerId)
	if err != nil {
		return false, err
	}

	existsReq, args, _ := r.SqlBuilder.
		Select("id").
		From("offer").
		Where("listing_id = ?", listingUuid).
		Where("buyer_id = ?", buyerUuid).
		Where("status = ?", common.OfferPending).
		ToSql()

	var uid uuid.UUID
	err = r.Database.QueryRow(existsReq, args...).Scan(&uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// ExpirePendingOffers is the lazy expiry sweep: a single bulk conditional
// update, idempotent by construction.
func (r *OfferRepo) ExpirePendingOffers(ctx context.Context, now time.Time) (int64, error) {
	expireReq, args, _ := r.SqlBuilder.
		Update("offer").
		Set("status", common.OfferExpired).
		Where("status = ?", common.OfferPending).
		Where("expires_at < ?", now).
		ToSql()

	result, err := r.Database.Exec(expireReq, args...)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// SetOfferStatusIfPending performs a terminal transition guarded by the
// current status, so two roles can never race the same offer out of Pending
// twice. Decision timestamps are stamped according to the target status.
func (r *OfferRepo) SetOfferStatusIfPending(ctx context.Context, id string, newStatus string) error {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return err
	}

	q := r.SqlBuilder.
		Update("offer").
		Set("status", newStatus).
		Where("id = ?", uuidForm).
		Where("status = ?", common.OfferPending)
	switch newStatus {
	case common.OfferAccepted:
		q = q.Set("accepted_at", squirrel.Expr("now()"))
	case common.OfferRejected:
		q = q.Set("rejected_at", squirrel.Expr("now()"))
	}

	updateStatusReq, args, _ := q.ToSql()
	result, err := r.Database.Exec(updateStatusReq, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	existsReq, args, _ := r.SqlBuilder.
		Select("id").
		From("offer").
		Where("id = ?", uuidForm).
		ToSql()

	var uid uuid.UUID
	err = r.Database.QueryRow(existsReq, args...).Scan(&uid)
	if errors.Is(err, sql.ErrNoRows) {
		return repo_errors.ErrNotFound
	}
	if err != nil {
		return err
	}

	return repo_errors.ErrNotPending
}

// RejectPendingOffersForListing bulk-rejects every pending offer on a listing
// and returns the rejected offers so the callers can notify their buyers.
func (r *OfferRepo) RejectPendingOffersForListing(ctx context.Context, listingId uuid.UUID) ([]entity.Offer, error) {
	rejectReq, args, _ := r.SqlBuilder.
		Update("offer").
		Set("status", common.OfferRejected).
		Set("rejected_at", squirrel.Expr("now()")).
		Where("listing_id = ?", listingId).
		Where("status = ?", common.OfferPending).
		Suffix("RETURNING " + offerColumns).
		ToSql()

	return r.queryOffers(rejectReq, args)
}

// AcceptOfferAndCreateOrder is the settlement transaction for an accepted
// offer. Inside one transaction it locks the listing row, re-checks the
// available quantity, flips the offer to Accepted, mass-rejects the sibling
// pending offers and creates the order with its item. Either everything
// commits or the offer stays Pending.
func (r *OfferRepo) AcceptOfferAndCreateOrder(ctx context.Context, offerId uuid.UUID, order *entity.CreateOrderInput) (uuid.UUID, []entity.Offer, error) {
	tx, err := r.Database.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, nil, err
	}

	lockListingReq, args, _ := r.SqlBuilder.
		Select("quantity").
		From("blood_listing").
		Where("id = ?", order.ListingId).
		Suffix("FOR UPDATE").
		RunWith(tx).
		ToSql()

	var available int
	if err = tx.QueryRow(lockListingReq, args...).Scan(&available); err != nil {
		if e := tx.Rollback(); e != nil {
			return uuid.Nil, nil, e
		}
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, nil, repo_errors.ErrNotFound
		}

		return uuid.Nil, nil, err
	}
	if available < order.Quantity {
		if e := tx.Rollback(); e != nil {
			return uuid.Nil, nil, e
		}

		return uuid.Nil, nil, repo_errors.ErrInsufficientQuantity
	}

	acceptReq, args, _ := r.SqlBuilder.
		Update("offer").
		Set("status", common.OfferAccepted).
		Set("accepted_at", squirrel.Expr("now()")).
		Where("id = ?", offerId).
		Where("status = ?", common.OfferPending).
		RunWith(tx).
		ToSql()

	result, err := tx.Exec(acceptReq, args...)
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return uuid.Nil, nil, e
		}

		return uuid.Nil, nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return uuid.Nil, nil, e
		}

		return uuid.Nil, nil, err
	}
	if affected == 0 {
		if e := tx.Rollback(); e != nil {
			return uuid.Nil, nil, e
		}

		return uuid.Nil, nil, repo_errors.ErrNotPending
	}

	rejectSiblingsReq, args, _ := r.SqlBuilder.
		Update("offer").
		Set("status", common.OfferRejected).
		Set("rejected_at", squirrel.Expr("now()")).
		Where("listing_id = ?", order.ListingId).
		Where("id <> ?", offerId).
		Where("status = ?", common.OfferPending).
		Suffix("RETURNING " + offerColumns).
		RunWith(tx).
		ToSql()

	rows, err := tx.Query(rejectSiblingsReq, args...)
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return uuid.Nil, nil, e
		}

		return uuid.Nil, nil, err
	}

	rejected := make([]entity.Offer, 0)
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			rows.Close()
			if e := tx.Rollback(); e != nil {
				return uuid.Nil, nil, e
			}

			return uuid.Nil, nil, err
		}
		rejected = append(rejected, *offer)
	}
	if err = rows.Err(); err != nil {
		rows.Close()
		if e := tx.Rollback(); e != nil {
			return uuid.Nil, nil, e
		}

		return uuid.Nil, nil, err
	}
	rows.Close()

	orderId, err := insertOrderWithItem(tx, r.SqlBuilder, order)
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return uuid.Nil, nil, e
		}

		return uuid.Nil, nil, err
	}

	if err = tx.Commit(); err != nil {
		return uuid.Nil, nil, err
	}

	return orderId, rejected, nil
}
