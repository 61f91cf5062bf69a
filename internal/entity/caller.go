package entity

import (
	"vetblood-market-api/internal/common"

	"github.com/google/uuid"
)

// Caller is the authenticated identity every core entry point receives.
// Authentication happens outside the core; the core only does authorization
// against its own entities.
type Caller struct {
	Id   uuid.UUID
	Role common.Role
}

func (c Caller) IsHospital() bool {
	return c.Role == common.RoleHospital
}

func (c Caller) IsAdmin() bool {
	return c.Role == common.RoleAdmin
}
