package controller

import (
	"net/http"
	"vetblood-market-api/internal/entity"
	"vetblood-market-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
)

type orderRoutesHandler struct {
	checkoutService service.Checkout
	validate        *validator.Validate
}

func newOrderRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *orderRoutesHandler {
	h := &orderRoutesHandler{checkoutService: services.Checkout, validate: v}
	outer.POST("/checkout", h.PostCheckout)
	outer.POST("/payment/confirm", h.PostConfirmPayment)
	outer.GET("/orders/my", h.GetOwnOrders)
	outer.GET("/orders/sales", h.GetSales)

	return h
}

type postCheckoutInput struct {
	ListingId      string `json:"listingId" validate:"required,uuid"`
	Quantity       int    `json:"quantity" validate:"required,gt=0"`
	OfferId        string `json:"offerId" validate:"omitempty,uuid"`
	DeliveryMethod string `json:"deliveryMethod" validate:"required,oneof=self-pickup courier"`
}

// /checkout
func (h *orderRoutesHandler) PostCheckout(c echo.Context) error {
	caller, ok, err := hospitalCaller(c)
	if !ok {
		return err
	}

	var input postCheckoutInput
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

	model := &entity.InitiateCheckoutInput{
		ListingId:      input.ListingId,
		Quantity:       input.Quantity,
		OfferId:        input.OfferId,
		DeliveryMethod: input.DeliveryMethod,
	}

	result, err := h.checkoutService.InitiateCheckout(c.Request().Context(), caller, model)
	if err != nil {
		return handleServiceError(c, err)
	}

	if e := c.JSON(http.StatusCreated, result); e != nil {
		return e
	}

	return nil
}

type confirmPaymentInput struct {
	OrderId         string `json:"orderId" validate:"required,uuid"`
	PaymentIntentId string `json:"paymentIntentId" validate:"required"`
}

// /payment/confirm
func (h *orderRoutesHandler) PostConfirmPayment(c echo.Context) error {
	caller, ok, err := hospitalCaller(c)
	if !ok {
		return err
	}

	var input confirmPaymentInput
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

	order, err := h.checkoutService.ConfirmPayment(c.Request().Context(), caller, input.OrderId, input.PaymentIntentId)
	if err != nil {
		return handleServiceError(c, err)
	}

	if e := c.JSON(http.StatusOK, order); e != nil {
		return e
	}

	return nil
}

// /orders/my
func (h *orderRoutesHandler) GetOwnOrders(c echo.Context) error {
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
	orders, err := h.checkoutService.GetOwnOrders(c.Request().Context(), caller, pg)
	if err != nil {
		return handleServiceError(c, err)
	}

	if e := c.JSON(http.StatusOK, orders); e != nil {
		return e
	}

	return nil
}

// /orders/sales
func (h *orderRoutesHandler) GetSales(c echo.Context) error {
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
	orders, err := h.checkoutService.GetSales(c.Request().Context(), caller, pg)
	if err != nil {
		return handleServiceError(c, err)
	}

	if e := c.JSON(http.StatusOK, orders); e != nil {
		return e
	}

	return nil
}
