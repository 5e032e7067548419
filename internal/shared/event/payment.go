package event

import "time"

type PaymentRegistered struct {
	Meta
	PaymentID  string  `json:"payment_id"`
	OrderID    string  `json:"order_id"`
	DisplayID  string  `json:"display_id"`
	BrandID    string  `json:"brand_id"`
	SupplierID string  `json:"supplier_id"`
	Amount     float64 `json:"amount"`
	ActorID    string  `json:"actor_id"`
}

func (PaymentRegistered) EventName() string { return PaymentRegisteredName }

type PaymentConfirmed struct {
	Meta
	PaymentID  string  `json:"payment_id"`
	OrderID    string  `json:"order_id"`
	DisplayID  string  `json:"display_id"`
	BrandID    string  `json:"brand_id"`
	SupplierID string  `json:"supplier_id"`
	Amount     float64 `json:"amount"`
	ActorID    string  `json:"actor_id"`
}

func (PaymentConfirmed) EventName() string { return PaymentConfirmedName }

type PaymentOverdue struct {
	Meta
	PaymentID   string    `json:"payment_id"`
	OrderID     string    `json:"order_id"`
	DisplayID   string    `json:"display_id"`
	BrandID     string    `json:"brand_id"`
	SupplierID  string    `json:"supplier_id"`
	Amount      float64   `json:"amount"`
	DueDate     time.Time `json:"due_date"`
	DaysOverdue int       `json:"days_overdue"`
}

func (PaymentOverdue) EventName() string { return PaymentOverdueName }
