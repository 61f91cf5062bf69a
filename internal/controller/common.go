package controller

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"vetblood-market-api/internal/common"
	"vetblood-market-api/internal/entity"
	"vetblood-market-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo"
)

const (
	defaultLimit  = 20
	defaultOffset = 0

	headerUserId   = "X-User-Id"
	headerUserRole = "X-User-Role"
)

type errorResponse struct {
	Reason string `json:"reason"`
}

// callerFromRequest reads the trusted identity the auth layer attached to the
// request. The core only does authorization against its own entities.
func callerFromRequest(c echo.Context) (entity.Caller, error) {
	id, err := uuid.Parse(c.Request().Header.Get(headerUserId))
	if err != nil {
		return entity.Caller{}, errors.New("missing or malformed user id")
	}

	role, err := common.ParseRole(c.Request().Header.Get(headerUserRole))
	if err != nil {
		return entity.Caller{}, err
	}

	return entity.Caller{Id: id, Role: role}, nil
}

// hospitalCaller rejects the request unless it carries a hospital identity.
// Returns ok=false after writing the response.
func hospitalCaller(c echo.Context) (entity.Caller, bool, error) {
	caller, err := callerFromRequest(c)
	if err != nil {
		e := c.JSON(http.StatusUnauthorized, errorResponse{err.Error()})

		return entity.Caller{}, false, e
	}
	if !caller.IsHospital() {
		e := c.JSON(http.StatusForbidden, errorResponse{"Only hospitals can trade on the marketplace"})

		return entity.Caller{}, false, e
	}

	return caller, true, nil
}

// handleServiceError maps the service error taxonomy onto HTTP responses so
// every rejected precondition reaches the client as a distinct, actionable
// reason.
func handleServiceError(c echo.Context, err error) error {
	var insufficient *service.InsufficientQuantityError
	if errors.As(err, &insufficient) {
		if e := c.JSON(http.StatusBadRequest, errorResponse{fmt.Sprintf("Only %d units available", insufficient.Available)}); e != nil {
			return e
		}

		return err
	}

	var invalidState *service.InvalidStateError
	if errors.As(err, &invalidState) {
		reason := fmt.Sprintf("%s is already %s", capitalize(invalidState.Entity), strings.ToLower(invalidState.Status))
		if invalidState.Status == common.OfferExpired {
			reason = "Offer has expired"
		}
		if e := c.JSON(http.StatusBadRequest, errorResponse{reason}); e != nil {
			return e
		}

		return err
	}

	status, reason := http.StatusInternalServerError, "Internal error"
	switch {
	case errors.Is(err, service.ErrListingNotFound):
		status, reason = http.StatusNotFound, "There is no listing with given id"
	case errors.Is(err, service.ErrOfferNotFound):
		status, reason = http.StatusNotFound, "There is no offer with given id"
	case errors.Is(err, service.ErrOrderNotFound):
		status, reason = http.StatusNotFound, "There is no order with given id"
	case errors.Is(err, service.ErrHospitalNotFound):
		status, reason = http.StatusNotFound, "There is no hospital with given id"
	case errors.Is(err, service.ErrNotListingOwner):
		status, reason = http.StatusForbidden, "Only the listing owner can perform this action"
	case errors.Is(err, service.ErrNotOfferBuyer):
		status, reason = http.StatusForbidden, "Only the buyer can act on this offer"
	case errors.Is(err, service.ErrNotOfferParty):
		status, reason = http.StatusForbidden, "Only the buyer or the seller can view this offer"
	case errors.Is(err, service.ErrNotOrderBuyer):
		status, reason = http.StatusForbidden, "Only the order's buyer can confirm its payment"
	case errors.Is(err, service.ErrSelfTransaction):
		status, reason = http.StatusBadRequest, "Cannot make an offer on your own listing"
	case errors.Is(err, service.ErrListingInactive):
		status, reason = http.StatusBadRequest, "Listing is not active"
	case errors.Is(err, service.ErrListingExpired):
		status, reason = http.StatusBadRequest, "Listing has expired"
	case errors.Is(err, service.ErrDuplicatePendingOffer):
		status, reason = http.StatusConflict, "You already have a pending offer on this listing"
	case errors.Is(err, service.ErrOfferListingMismatch):
		status, reason = http.StatusBadRequest, "Offer does not belong to the given listing"
	case errors.Is(err, service.ErrPaymentUnavailable):
		status, reason = http.StatusBadGateway, "Payment processor is unavailable"
	case errors.Is(err, service.ErrPaymentNotCompleted):
		status, reason = http.StatusBadRequest, "Payment not completed"
	case errors.Is(err, service.ErrPaymentMismatch):
		status, reason = http.StatusBadRequest, "Payment reference does not match the order"
	}

	if e := c.JSON(status, errorResponse{reason}); e != nil {
		return e
	}

	return err
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}

func getAllErrorMessages(err error) string {
	var builder strings.Builder
	for _, fe := range err.(validator.ValidationErrors) {
		message := fmt.Sprintf("'%s': %s\n", fe.Field(), getMessage(fe))
		builder.WriteString(message)
	}

	return builder.String()
}

func getMessage(fe validator.FieldError) string {
	switch fe.Type().Kind() {
	case reflect.String:
		return getMessageForString(fe)
	case reflect.Int, reflect.Int32, reflect.Int64, reflect.Float64:
		return getMessageForNumber(fe)
	}

	return "incorrect value passed"
}

func getMessageForNumber(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "lte", "max":
		return "should be less or equal than " + fe.Param()
	case "gte", "min":
		return "should be greater or equal than " + fe.Param()
	case "gt":
		return "should be greater than " + fe.Param()
	}

	return "incorrect value passed"
}

func getMessageForString(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "lte", "max":
		return "length should be less or equal than " + fe.Param()
	case "gte", "min":
		return "length should be greater or equal than " + fe.Param()
	case "oneof":
		return "should have value in: " + fe.Param()
	}

	return "incorrect value passed"
}
