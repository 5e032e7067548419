// Package entity holds the marketplace rows the scheduled scans look at.
package entity

import "time"

// Order statuses that still have a delivery deadline to meet.
const (
	OrderStatusAccepted     = "ACEITO"
	OrderStatusInProduction = "EM_PRODUCAO"
)

// OpenOrderStatuses are the statuses the deadline reminder looks at.
func OpenOrderStatuses() []string {
	return []string{OrderStatusAccepted, OrderStatusInProduction}
}

const (
	DocumentStatusExpiringSoon = "EXPIRING_SOON"
	DocumentStatusExpired      = "EXPIRED"

	PaymentStatusPending = "PENDING"
	PaymentStatusOverdue = "OVERDUE"
)

type OrderDeadline struct {
	OrderID    string
	DisplayID  string
	BrandID    string
	SupplierID string
	Status     string
	Deadline   time.Time
}

// Document is a supplier compliance document.
type Document struct {
	ID         string
	SupplierID string
	Type       string
	ExpiresAt  time.Time
}

type Payment struct {
	ID         string
	OrderID    string
	DisplayID  string
	BrandID    string
	SupplierID string
	Amount     float64
	DueDate    time.Time
}
