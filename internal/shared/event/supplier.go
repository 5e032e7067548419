package event

type SupplierRegistered struct {
	Meta
	SupplierID string `json:"supplier_id"`
	Name       string `json:"name"`
}

func (SupplierRegistered) EventName() string { return SupplierRegisteredName }

type SupplierApproved struct {
	Meta
	SupplierID string `json:"supplier_id"`
	Name       string `json:"name"`
	ActorID    string `json:"actor_id"`
}

func (SupplierApproved) EventName() string { return SupplierApprovedName }

type SupplierRejected struct {
	Meta
	SupplierID string `json:"supplier_id"`
	Name       string `json:"name"`
	Reason     string `json:"reason,omitempty"`
	ActorID    string `json:"actor_id"`
}

func (SupplierRejected) EventName() string { return SupplierRejectedName }

type SupplierSuspended struct {
	Meta
	SupplierID string `json:"supplier_id"`
	Name       string `json:"name"`
	Reason     string `json:"reason,omitempty"`
	ActorID    string `json:"actor_id"`
}

func (SupplierSuspended) EventName() string { return SupplierSuspendedName }
