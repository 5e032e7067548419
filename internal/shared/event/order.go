package event

import "time"

type OrderCreated struct {
	Meta
	OrderID    string `json:"order_id"`
	DisplayID  string `json:"display_id"`
	BrandID    string `json:"brand_id"`
	BrandName  string `json:"brand_name"`
	SupplierID string `json:"supplier_id"`
	ActorID    string `json:"actor_id"`
}

func (OrderCreated) EventName() string { return OrderCreatedName }

type OrderAccepted struct {
	Meta
	OrderID      string `json:"order_id"`
	DisplayID    string `json:"display_id"`
	BrandID      string `json:"brand_id"`
	SupplierID   string `json:"supplier_id"`
	SupplierName string `json:"supplier_name"`
	ActorID      string `json:"actor_id"`
}

func (OrderAccepted) EventName() string { return OrderAcceptedName }

type OrderRejected struct {
	Meta
	OrderID      string `json:"order_id"`
	DisplayID    string `json:"display_id"`
	BrandID      string `json:"brand_id"`
	SupplierID   string `json:"supplier_id"`
	SupplierName string `json:"supplier_name"`
	Reason       string `json:"reason"`
	ActorID      string `json:"actor_id"`
}

func (OrderRejected) EventName() string { return OrderRejectedName }

type OrderStatusChanged struct {
	Meta
	OrderID        string `json:"order_id"`
	DisplayID      string `json:"display_id"`
	BrandID        string `json:"brand_id"`
	SupplierID     string `json:"supplier_id"`
	OldStatus      string `json:"old_status"`
	NewStatus      string `json:"new_status"`
	ActorID        string `json:"actor_id"`
	ActorCompanyID string `json:"actor_company_id,omitempty"`
}

func (OrderStatusChanged) EventName() string { return OrderStatusChangedName }

type OrderDeadlineApproaching struct {
	Meta
	OrderID        string    `json:"order_id"`
	DisplayID      string    `json:"display_id"`
	BrandID        string    `json:"brand_id"`
	SupplierID     string    `json:"supplier_id"`
	Deadline       time.Time `json:"deadline"`
	HoursRemaining int       `json:"hours_remaining"`
}

func (OrderDeadlineApproaching) EventName() string { return OrderDeadlineApproachingName }
