package controller

import (
	"net/http"
	"vetblood-market-api/internal/entity"
	"vetblood-market-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
	"github.com/shopspring/decimal"
)

type offerRoutesHandler struct {
	offerService service.Offer
	validate     *validator.Validate
}

func newOfferRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *offerRoutesHandler {
	h := &offerRoutesHandler{offerService: services.Offer, validate: v}
	outer.POST("/offers/new", h.PostOffer)
	outer.GET("/offers/my", h.GetOwnOffers)
	outer.GET("/offers/received", h.GetReceivedOffers)
	outer.GET("/offers/:offerId", h.GetOffer)
	outer.POST("/offers/:offerId/cancel", h.CancelOffer)
	outer.POST("/offers/:offerId/accept", h.AcceptOffer)
	outer.POST("/offers/:offerId/reject", h.RejectOffer)

	return h
}

type postOfferInput struct {
	ListingId    string  `json:"listingId" validate:"required,uuid"`
	OfferedPrice float64 `json:"offeredPrice" validate:"required,gt=0"`
	Quantity     int     `json:"quantity" validate:"required,gt=0"`
	Message      string  `json:"message" validate:"max=500"`
}

// /offers/new
func (h *offerRoutesHandler) PostOffer(c echo.Context) error {
	caller, ok, err := hospitalCaller(c)
	if !ok {
		return err
	}

	var input postOfferInput
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

	model := &entity.CreateOfferInput{
		ListingId:    input.ListingId,
		OfferedPrice: decimal.NewFromFloat(input.OfferedPrice).Round(2),
		Quantity:     input.Quantity,
		Message:      input.Message,
	}

	offer, err := h.offerService.CreateOffer(c.Request().Context(), caller, model)
	if err != nil {
		return handleServiceError(c, err)
	}

	if e := c.JSON(http.StatusCreated, offer); e != nil {
		return e
	}

	return nil
}

type getOwnOffersInput struct {
	Status string `query:"status" validate:"omitempty,oneof=Pending Accepted Rejected Expired Cancelled"`
	Limit  int32  `query:"limit" validate:"gte=0,lte=100"`
	Offset int32  `query:"offset" validate:"gte=0"`
}

// /offers/my
func (h *offerRoutesHandler) GetOwnOffers(c echo.Context) error {
	caller, ok, err := hospitalCaller(c)
	if !ok {
		return err
	}

	input := getOwnOffersInput{Limit: defaultLimit, Offset: defaultOffset}
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
	offers, err := h.offerService.GetOwnOffers(c.Request().Context(), caller, input.Status, pg)
	if err != nil {
		return handleServiceError(c, err)
	}

	if e := c.JSON(http.StatusOK, offers); e != nil {
		return e
	}

	return nil
}

// /offers/received
func (h *offerRoutesHandler) GetReceivedOffers(c echo.Context) error {
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
	offers, err := h.offerService.GetReceivedOffers(c.Request().Context(), caller, pg)
	if err != nil {
		return handleServiceError(c, err)
	}

	if e := c.JSON(http.StatusOK, offers); e != nil {
		return e
	}

	return nil
}

// /offers/:offerId
func (h *offerRoutesHandler) GetOffer(c echo.Context) error {
	caller, ok, err := hospitalCaller(c)
	if !ok {
		return err
	}

	offer, err := h.offerService.GetOfferById(c.Request().Context(), caller, c.Param("offerId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	if e := c.JSON(http.StatusOK, offer); e != nil {
		return e
	}

	return nil
}

// /offers/:offerId/cancel
func (h *offerRoutesHandler) CancelOffer(c echo.Context) error {
	caller, ok, err := hospitalCaller(c)
	if !ok {
		return err
	}

	offer, err := h.offerService.CancelOffer(c.Request().Context(), caller, c.Param("offerId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	if e := c.JSON(http.StatusOK, offer); e != nil {
		return e
	}

	return nil
}

// /offers/:offerId/accept
func (h *offerRoutesHandler) AcceptOffer(c echo.Context) error {
	caller, ok, err := hospitalCaller(c)
	if !ok {
		return err
	}

	result, err := h.offerService.AcceptOffer(c.Request().Context(), caller, c.Param("offerId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	if e := c.JSON(http.StatusOK, result); e != nil {
		return e
	}

	return nil
}

// /offers/:offerId/reject
func (h *offerRoutesHandler) RejectOffer(c echo.Context) error {
	caller, ok, err := hospitalCaller(c)
	if !ok {
		return err
	}

	offer, err := h.offerService.RejectOffer(c.Request().Context(), caller, c.Param("offerId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	if e := c.JSON(http.StatusOK, offer); e != nil {
		return e
	}

	return nil
}
