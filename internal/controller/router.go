package controller

import (
	"vetblood-market-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
)

func SetupRoutesHandlers(handler *echo.Echo, services *service.Services, cronSecret string) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	api := handler.Group("/api")
	newDiagnosticRoutesHandler(api, services)
	newListingRoutesHandler(api, services, validate)
	newOfferRoutesHandler(api, services, validate)
	newOrderRoutesHandler(api, services, validate)
	newDigestRoutesHandler(api, services, cronSecret)
}
