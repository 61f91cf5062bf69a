package controller

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"vetblood-market-api/internal/service"

	"github.com/labstack/echo"
)

type digestRoutesHandler struct {
	digestService service.Digest
	offerService  service.Offer
	cronSecret    string
}

func newDigestRoutesHandler(outer *echo.Group, services *service.Services, cronSecret string) *digestRoutesHandler {
	h := &digestRoutesHandler{digestService: services.Digest, offerService: services.Offer, cronSecret: cronSecret}
	outer.POST("/digest/daily", h.PostDailyDigest)
	outer.POST("/offers/sweep", h.PostSweepOffers)

	return h
}

func (h *digestRoutesHandler) authorized(c echo.Context) bool {
	if h.cronSecret == "" {
		return false
	}

	header := c.Request().Header.Get(echo.HeaderAuthorization)
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(token), []byte(h.cronSecret)) == 1
}

// /digest/daily
func (h *digestRoutesHandler) PostDailyDigest(c echo.Context) error {
	if !h.authorized(c) {
		if e := c.JSON(http.StatusUnauthorized, errorResponse{"Invalid cron credentials"}); e != nil {
			return e
		}

		return echo.ErrUnauthorized
	}

	sent, err := h.digestService.SendDailyDigest(c.Request().Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	if e := c.JSON(http.StatusOK, map[string]int{"sent": sent}); e != nil {
		return e
	}

	return nil
}

// /offers/sweep
func (h *digestRoutesHandler) PostSweepOffers(c echo.Context) error {
	if !h.authorized(c) {
		if e := c.JSON(http.StatusUnauthorized, errorResponse{"Invalid cron credentials"}); e != nil {
			return e
		}

		return echo.ErrUnauthorized
	}

	expired, err := h.offerService.SweepExpired(c.Request().Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	if e := c.JSON(http.StatusOK, map[string]int64{"expired": expired}); e != nil {
		return e
	}

	return nil
}
