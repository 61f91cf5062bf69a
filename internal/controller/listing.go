package controller

import (
	"net/http"
	"time"
	"vetblood-market-api/internal/common"
	"vetblood-market-api/internal/entity"
	"vetblood-market-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
	"github.com/shopspring/decimal"
)

type listingRoutesHandler struct {
	listingService service.Listing
	validate       *validator.Validate
}

func newListingRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *listingRoutesHandler {
	h := &listingRoutesHandler{listingService: services.Listing, validate: v}
	outer.POST("/listings/new", h.PostListing)
	outer.GET("/listings/my", h.GetOwnListings)
	outer.GET("/listings/:listingId", h.GetListing)
	outer.PATCH("/listings/:listingId/edit", h.EditListing)
	outer.DELETE("/listings/:listingId", h.DeleteListing)
	outer.GET("/marketplace", h.BrowseMarketplace)

	return h
}

type postListingInput struct {
	AnimalType        string  `json:"animalType" validate:"required,oneof=Dog Cat"`
	BloodType         string  `json:"bloodType" validate:"required,max=20"`
	Quantity          int     `json:"quantity" validate:"required,gt=0"`
	PricePerUnit      float64 `json:"pricePerUnit" validate:"required,gt=0"`
	ExpirationDate    string  `json:"expirationDate" validate:"required"`
	StorageConditions string  `json:"storageConditions" validate:"required,max=200"`
	Notes             string  `json:"notes" validate:"max=500"`
}

// /listings/new
func (h *listingRoutesHandler) PostListing(c echo.Context) error {
	caller, ok, err := hospitalCaller(c)
	if !ok {
		return err
	}

	var input postListingInput
	if err := c.Bind(&input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Input data is not formed correctly"}); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	// blood types are validated at the edge against the per-animal set
	if !common.IsValidBloodType(input.AnimalType, input.BloodType) {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Unknown blood type for " + input.AnimalType}); e != nil {
			return e
		}

		return nil
	}

	expiration, err := time.Parse(time.RFC3339, input.ExpirationDate)
	if err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Expiration date must be RFC3339"}); e != nil {
			return e
		}

		return err
	}

	model := &entity.CreateListingInput{
		AnimalType:        input.AnimalType,
		BloodType:         input.BloodType,
		Quantity:          input.Quantity,
		PricePerUnit:      decimal.NewFromFloat(input.PricePerUnit).Round(2),
		ExpirationDate:    expiration,
		StorageConditions: input.StorageConditions,
		Notes:             input.Notes,
	}

	listing, err := h.listingService.CreateListing(c.Request().Context(), caller, model)
	if err != nil {
		return handleServiceError(c, err)
	}

	if e := c.JSON(http.StatusCreated, listing); e != nil {
		return e
	}

	return nil
}

type paginationQueryInput struct {
	Limit  int32 `query:"limit" validate:"gte=0,lte=100"`
	Offset int32 `query:"offset" validate:"gte=0"`
}

// /listings/my
func (h *listingRoutesHandler) GetOwnListings(c echo.Context) error {
	caller, ok, err := hospitalCaller(c)
	if !ok {
		return err
	}

	input := paginationQueryInput{Limit: defaultLimit, Offset: defaultOffset}
	if err := c.Bind(&input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Input data is not formed correctly"}); e != nil {
			return e
		}

		return err
	}
	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	pg := entity.NewPaginationInput(int(input.Limit), int(input.Offset))
	listings, err := h.listingService.GetOwnListings(c.Request().Context(), caller, pg)
	if err != nil {
		return handleServiceError(c, err)
	}

	if e := c.JSON(http.StatusOK, listings); e != nil {
		return e
	}

	return nil
}

// /listings/:listingId
func (h *listingRoutesHandler) GetListing(c echo.Context) error {
	listing, err := h.listingService.GetListingById(c.Request().Context(), c.Param("listingId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	if e := c.JSON(http.StatusOK, listing); e != nil {
		return e
	}

	return nil
}

type editListingInput struct {
	Quantity          *int     `json:"quantity" validate:"omitempty,gte=0"`
	PricePerUnit      *float64 `json:"pricePerUnit" validate:"omitempty,gt=0"`
	ExpirationDate    *string  `json:"expirationDate"`
	StorageConditions *string  `json:"storageConditions" validate:"omitempty,max=200"`
	Notes             *string  `json:"notes" validate:"omitempty,max=500"`
	IsActive          *bool    `json:"isActive"`
}

// /listings/:listingId/edit
func (h *listingRoutesHandler) EditListing(c echo.Context) error {
	caller, ok, err := hospitalCaller(c)
	if !ok {
		return err
	}

	var input editListingInput
	if err := c.Bind(&input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Input data is not formed correctly"}); e != nil {
			return e
		}

		return err
	}
	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	model := &entity.UpdateListingInput{
		Quantity:          input.Quantity,
		StorageConditions: input.StorageConditions,
		Notes:             input.Notes,
		IsActive:          input.IsActive,
	}
	if input.PricePerUnit != nil {
		price := decimal.NewFromFloat(*input.PricePerUnit).Round(2)
		model.PricePerUnit = &price
	}
	if input.ExpirationDate != nil {
		expiration, err := time.Parse(time.RFC3339, *input.ExpirationDate)
		if err != nil {
			if e := c.JSON(http.StatusBadRequest, errorResponse{"Expiration date must be RFC3339"}); e != nil {
				return e
			}

			return err
		}
		model.ExpirationDate = &expiration
	}

	listing, err := h.listingService.UpdateListing(c.Request().Context(), caller, c.Param("listingId"), model)
	if err != nil {
		return handleServiceError(c, err)
	}

	if e := c.JSON(http.StatusOK, listing); e != nil {
		return e
	}

	return nil
}

// /listings/:listingId
func (h *listingRoutesHandler) DeleteListing(c echo.Context) error {
	caller, ok, err := hospitalCaller(c)
	if !ok {
		return err
	}

	if err := h.listingService.DeleteListing(c.Request().Context(), caller, c.Param("listingId")); err != nil {
		return handleServiceError(c, err)
	}

	if e := c.JSON(http.StatusOK, map[string]string{"message": "Listing deleted successfully"}); e != nil {
		return e
	}

	return nil
}

type browseMarketplaceInput struct {
	AnimalType string   `query:"animalType" validate:"omitempty,oneof=Dog Cat"`
	BloodType  string   `query:"bloodType" validate:"omitempty,max=20"`
	MinPrice   *float64 `query:"minPrice" validate:"omitempty,gte=0"`
	MaxPrice   *float64 `query:"maxPrice" validate:"omitempty,gte=0"`
	SortBy     string   `query:"sortBy" validate:"omitempty,oneof=created_at price_asc price_desc expiration"`
	Limit      int32    `query:"limit" validate:"gte=0,lte=100"`
	Offset     int32    `query:"offset" validate:"gte=0"`
}

// /marketplace
func (h *listingRoutesHandler) BrowseMarketplace(c echo.Context) error {
	caller, ok, err := hospitalCaller(c)
	if !ok {
		return err
	}

	input := browseMarketplaceInput{Limit: defaultLimit, Offset: defaultOffset}
	if err := c.Bind(&input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Input data is not formed correctly"}); e != nil {
			return e
		}

		return err
	}
	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	filter := &entity.ListingFilter{
		AnimalType: input.AnimalType,
		BloodType:  input.BloodType,
		SortBy:     input.SortBy,
	}
	if input.MinPrice != nil {
		min := decimal.NewFromFloat(*input.MinPrice)
		filter.MinPrice = &min
	}
	if input.MaxPrice != nil {
		max := decimal.NewFromFloat(*input.MaxPrice)
		filter.MaxPrice = &max
	}

	pg := entity.NewPaginationInput(int(input.Limit), int(input.Offset))
	listings, err := h.listingService.BrowseMarketplace(c.Request().Context(), caller, filter, pg)
	if err != nil {
		return handleServiceError(c, err)
	}

	if e := c.JSON(http.StatusOK, listings); e != nil {
		return e
	}

	return nil
}
