// Package model holds the persisted entities shared by the CSV exchange,
// the service layer and the PostgreSQL store.
package model

import "time"

// Payment conditions written when the CSV leaves the column blank.
const (
	PaymentCreditCard = "Cartão de Crédito"
	PaymentUpfront    = "À Vista"
)

// Budget is a price quotation for a device repair, owned by one shop user.
//
// Monetary amounts are integer cents. Pointer fields are nullable columns.
type Budget struct {
	ID                      string     `json:"id"`
	OwnerID                 string     `json:"owner_id"`
	ClientName              *string    `json:"client_name"`
	ClientPhone             *string    `json:"client_phone"`
	DeviceType              string     `json:"device_type"`
	DeviceBrand             *string    `json:"device_brand"`
	DeviceModel             string     `json:"device_model"`
	Issue                   string     `json:"issue"`
	ServiceType             string     `json:"service_type"`
	Notes                   *string    `json:"notes"`
	TotalPriceCents         int64      `json:"total_price_cents"`
	InstallmentPriceCents   *int64     `json:"installment_price_cents"`
	Installments            int        `json:"installments"`
	PaymentCondition        string     `json:"payment_condition"`
	WarrantyMonths          int        `json:"warranty_months"`
	ValidUntil              time.Time  `json:"valid_until"`
	IncludesDelivery        bool       `json:"includes_delivery"`
	IncludesScreenProtector bool       `json:"includes_screen_protector"`
	CreatedAt               time.Time  `json:"created_at"`
	DeletedAt               *time.Time `json:"deleted_at,omitempty"`
}

// InTrash reports whether the budget has been soft-deleted.
func (b Budget) InTrash() bool {
	return b.DeletedAt != nil
}

// License is the subscription window of a shop owner.
type License struct {
	OwnerID   string    `json:"owner_id"`
	Plan      string    `json:"plan"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ImportSummary describes one committed CSV import and what is left of it.
type ImportSummary struct {
	ImportID   string    `json:"import_id"`
	ImportedAt time.Time `json:"imported_at"`
	Active     int64     `json:"active"`
	Trashed    int64     `json:"trashed"`
}
