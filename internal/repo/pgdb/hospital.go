package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"time"
	"vetblood-market-api/internal/entity"
	"vetblood-market-api/internal/repo/repo_errors"
	"vetblood-market-api/pkg/postgres"

	"github.com/google/uuid"
)

type HospitalRepo struct {
	*postgres.Postgres
}

func NewHospitalRepo(pgdb *postgres.Postgres) *HospitalRepo {
	return &HospitalRepo{pgdb}
}

const hospitalColumns = "id, name, email, address, phone_number, license_number, latitude, longitude, stripe_account_id, created_at"

func scanHospital(row interface{ Scan(...any) error }) (*entity.Hospital, error) {
	var h entity.Hospital
	var createdAt time.Time
	err := row.Scan(&h.Id, &h.Name, &h.Email, &h.Address, &h.PhoneNumber, &h.LicenseNumber,
		&h.Latitude, &h.Longitude, &h.StripeAccountId, &createdAt)
	if err != nil {
		return nil, err
	}
	h.CreatedAt = createdAt.Format(time.RFC3339)

	return &h, nil
}

func (r *HospitalRepo) GetHospitalById(ctx context.Context, id string) (*entity.Hospital, error) {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}

	getHospitalReq, args, _ := r.SqlBuilder.
		Select(hospitalColumns).
		From("hospital").
		Where("id = ?", uuidForm).
		ToSql()

	hospital, err := scanHospital(r.Database.QueryRow(getHospitalReq, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}

	return hospital, nil
}

func (r *HospitalRepo) GetHospitalsWithCoordinates(ctx context.Context) ([]entity.Hospital, error) {
	getHospitalsReq, args, _ := r.SqlBuilder.
		Select(hospitalColumns).
		From("hospital").
		Where("latitude is not null").
		Where("longitude is not null").
		OrderBy("name ASC").
		ToSql()

	rows, err := r.Database.Query(getHospitalsReq, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hospitals := make([]entity.Hospital, 0)
	for rows.Next() {
		hospital, err := scanHospital(rows)
		if err != nil {
			return hospitals, err
		}
		hospitals = append(hospitals, *hospital)
	}
	if err = rows.Err(); err != nil {
		return hospitals, err
	}

	return hospitals, nil
}
