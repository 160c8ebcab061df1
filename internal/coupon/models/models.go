// Package models defines marketplace discount coupons.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "autoquote/pkg/domain-errors"
)

// DiscountType distinguishes percentage from fixed-amount coupons.
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// Coupon is an admin-managed discount code.
type Coupon struct {
	ID            uuid.UUID
	Code          string
	Name          string
	Description   string
	DiscountType  DiscountType
	DiscountValue int64
	UsageLimit    int
	ExpiresAt     *time.Time
	CreatedAt     time.Time
	CreatedBy     uuid.UUID
}

// Validate checks the required fields and names every missing one, so the
// 400 response tells the admin exactly what to fix.
func (c *Coupon) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Code) == "" {
		missing = append(missing, "code")
	}
	if strings.TrimSpace(c.Name) == "" {
		missing = append(missing, "name")
	}
	if c.DiscountType == "" {
		missing = append(missing, "discount_type")
	}
	if c.DiscountValue == 0 {
		missing = append(missing, "discount_value")
	}
	if len(missing) > 0 {
		return dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")))
	}
	if c.DiscountType != DiscountTypePercentage && c.DiscountType != DiscountTypeFixed {
		return dErrors.New(dErrors.CodeValidation, "discount_type must be percentage or fixed")
	}
	if c.DiscountValue < 0 {
		return dErrors.New(dErrors.CodeValidation, "discount_value must be positive")
	}
	if c.DiscountType == DiscountTypePercentage && c.DiscountValue > 100 {
		return dErrors.New(dErrors.CodeValidation, "percentage discount cannot exceed 100")
	}
	return nil
}
