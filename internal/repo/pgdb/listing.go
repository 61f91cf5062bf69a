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

type ListingRepo struct {
	*postgres.Postgres
}

func NewListingRepo(pgdb *postgres.Postgres) *ListingRepo {
	return &ListingRepo{pgdb}
}

const listingColumns = "id, hospital_id, animal_type, blood_type, quantity, price_per_unit, expiration_date, storage_conditions, notes, is_active, created_at"

func scanListing(row interface{ Scan(...any) error }) (*entity.BloodListing, error) {
	var l entity.BloodListing
	var createdAt time.Time
	err := row.Scan(&l.Id, &l.HospitalId, &l.AnimalType, &l.BloodType, &l.Quantity,
		&l.PricePerUnit, &l.ExpirationDate, &l.StorageConditions, &l.Notes, &l.IsActive, &createdAt)
	if err != nil {
		return nil, err
	}
	l.CreatedAt = createdAt.Format(time.RFC3339)

	return &l, nil
}

func (r *ListingRepo) CreateListing(ctx context.Context, input *entity.CreateListingInput) (uuid.UUID, error) {
	createListingReq, args, _ := r.SqlBuilder.
		Insert("blood_listing").
		Columns("hospital_id", "animal_type", "blood_type", "quantity", "price_per_unit",
			"expiration_date", "storage_conditions", "notes", "is_active").
		Values(input.HospitalId, input.AnimalType, input.BloodType, input.Quantity, input.PricePerUnit,
			input.ExpirationDate, input.StorageConditions, input.Notes, true).
		Suffix("RETURNING id").
		ToSql()

	var listingId uuid.UUID
	if err := r.Database.QueryRow(createListingReq, args...).Scan(&listingId); err != nil {
		return uuid.Nil, err
	}

	return listingId, nil
}

func (r *ListingRepo) GetListingById(ctx context.Context, id string) (*entity.BloodListing, error) {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}

	getListingReq, args, _ := r.SqlBuilder.
		Select(listingColumns).
		From("blood_listing").
		Where("id = ?", uuidForm).
		ToSql()

	listing, err := scanListing(r.Database.QueryRow(getListingReq, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}

	return listing, nil
}

func (r *ListingRepo) GetHospitalListings(ctx context.Context, hospitalId string, pg *entity.PaginationInput) ([]entity.BloodListing, error) {
	uuidForm, err := uuid.Parse(hospitalId)
	if err != nil {
		return nil, err
	}

	getListingsReq, args, _ := r.SqlBuilder.
		Select(listingColumns).
		From("blood_listing").
		Where("hospital_id = ?", uuidForm).
		OrderBy("created_at DESC").
		Offset(uint64(pg.Offset)).
		Limit(uint64(pg.Limit)).
		ToSql()

	return r.queryListings(getListingsReq, args)
}

func (r *ListingRepo) GetMarketplaceListings(ctx context.Context, filter *entity.ListingFilter, pg *entity.PaginationInput) ([]entity.BloodListing, error) {
	q := r.SqlBuilder.
		Select(listingColumns).
		From("blood_listing").
		Where("is_active = true").
		Where("quantity > 0").
		Where("expiration_date >= now()")

	if filter.ExcludedId != uuid.Nil {
		q = q.Where("hospital_id <> ?", filter.ExcludedId)
	}
	if filter.AnimalType != "" {
		q = q.Where("animal_type = ?", filter.AnimalType)
	}
	if filter.BloodType != "" {
		q = q.Where("blood_type = ?", filter.BloodType)
	}
	if filter.MinPrice != nil {
		q = q.Where("price_per_unit >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("price_per_unit <= ?", *filter.MaxPrice)
	}

	switch filter.SortBy {
	case "price_asc":
		q = q.OrderBy("price_per_unit ASC")
	case "price_desc":
		q = q.OrderBy("price_per_unit DESC")
	case "expiration":
		q = q.OrderBy("expiration_date ASC")
	default:
		q = q.OrderBy("created_at DESC")
	}

	getListingsReq, args, _ := q.
		Offset(uint64(pg.Offset)).
		Limit(uint64(pg.Limit)).
		ToSql()

	return r.queryListings(getListingsReq, args)
}

func (r *ListingRepo) queryListings(query string, args []any) ([]entity.BloodListing, error) {
	rows, err := r.Database.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := make([]entity.BloodListing, 0)
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return listings, err
		}
		listings = append(listings, *listing)
	}
	if err = rows.Err(); err != nil {
		return listings, err
	}

	return listings, nil
}

func (r *ListingRepo) UpdateListing(ctx context.Context, id string, input *entity.UpdateListingInput) error {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return err
	}

	q := r.SqlBuilder.Update("blood_listing").Where("id = ?", uuidForm)
	if input.Quantity != nil {
		q = q.Set("quantity", *input.Quantity)
	}
	if input.PricePerUnit != nil {
		q = q.Set("price_per_unit", *input.PricePerUnit)
	}
	if input.ExpirationDate != nil {
		q = q.Set("expiration_date", *input.ExpirationDate)
	}
	if input.StorageConditions != nil {
		q = q.Set("storage_conditions", *input.StorageConditions)
	}
	if input.Notes != nil {
		q = q.Set("notes", *input.Notes)
	}
	if input.IsActive != nil {
		q = q.Set("is_active", *input.IsActive)
	}

	updateListingReq, args, err := q.ToSql()
	if err != nil {
		// squirrel refuses an UPDATE without SET clauses
		return err
	}

	result, err := r.Database.Exec(updateListingReq, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repo_errors.ErrNotFound
	}

	return nil
}

// DeleteListing rejects every pending offer on the listing and removes it,
// all in one transaction.
func (r *ListingRepo) DeleteListing(ctx context.Context, id string) error {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return err
	}

	tx, err := r.Database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	rejectOffersReq, args, _ := r.SqlBuilder.
		Update("offer").
		Set("status", common.OfferRejected).
		Set("rejected_at", squirrel.Expr("now()")).
		Where("listing_id = ?", uuidForm).
		Where("status = ?", common.OfferPending).
		RunWith(tx).
		ToSql()

	if _, err := tx.Exec(rejectOffersReq, args...); err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}

		return err
	}

	deleteListingReq, args, _ := r.SqlBuilder.
		Delete("blood_listing").
		Where("id = ?", uuidForm).
		RunWith(tx).
		ToSql()

	result, err := tx.Exec(deleteListingReq, args...)
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}

		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}

		return err
	}
	if affected == 0 {
		if e := tx.Rollback(); e != nil {
			return e
		}

		return repo_errors.ErrNotFound
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	return nil
}

// DecrementQuantity is the single mutation path for inventory during
// settlement. The quantity guard lives in the WHERE clause, so concurrent
// decrements can never drive the quantity negative.
func (r *ListingRepo) DecrementQuantity(ctx context.Context, id uuid.UUID, amount int) error {
	decrementReq, args, _ := r.SqlBuilder.
		Update("blood_listing").
		Set("quantity", squirrel.Expr("quantity - ?", amount)).
		Where("id = ?", id).
		Where("quantity >= ?", amount).
		ToSql()

	result, err := r.Database.Exec(decrementReq, args...)
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
		From("blood_listing").
		Where("id = ?", id).
		ToSql()

	var existing uuid.UUID
	err = r.Database.QueryRow(existsReq, args...).Scan(&existing)
	if errors.Is(err, sql.ErrNoRows) {
		return repo_errors.ErrNotFound
	}
	if err != nil {
		return err
	}

	return repo_errors.ErrInsufficientQuantity
}
