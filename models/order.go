package models

import (
	"time"

	"gorm.io/gorm"
)

// Order status values. An order starts in under_review and moves through the
// lifecycle below; completed and rejected are terminal.
const (
	StatusUnderReview     = "under_review"
	StatusNegotiation     = "negotiation"
	StatusAwaitingPayment = "awaiting_payment"
	StatusAccepted        = "accepted"
	StatusInProduction    = "in_production"
	StatusCompleted       = "completed"
	StatusRejected        = "rejected"
)

// Lifecycle operation names, used as keys into the transition table.
const (
	OpApproveOrder       = "approve_order"
	OpRejectOrder        = "reject_order"
	OpSendCounterOffer   = "send_counter_offer"
	OpAcceptCounterOffer = "accept_counter_offer"
	OpConfirmPrice       = "confirm_price"
	OpConfirmPayment     = "confirm_payment"
	OpStartProduction    = "start_production"
	OpCompleteOrder      = "complete_order"
)

// Transition describes one row of the lifecycle state machine: the statuses an
// operation may run from and the status it lands on.
type Transition struct {
	From []string
	To   string
}

// Transitions is the explicit state machine for orders. Every status-changing
// operation is validated against this table; anything not listed for the
// order's current status is rejected.
var Transitions = map[string]Transition{
	OpApproveOrder:       {From: []string{StatusUnderReview, StatusNegotiation}, To: StatusAwaitingPayment},
	OpRejectOrder:        {From: []string{StatusUnderReview, StatusNegotiation}, To: StatusRejected},
	OpSendCounterOffer:   {From: []string{StatusUnderReview, StatusNegotiation}, To: StatusNegotiation},
	OpAcceptCounterOffer: {From: []string{StatusNegotiation}, To: StatusAwaitingPayment},
	OpConfirmPrice:       {From: []string{StatusUnderReview, StatusAccepted}, To: StatusAccepted},
	OpConfirmPayment:     {From: []string{StatusAwaitingPayment}, To: StatusAccepted},
	OpStartProduction:    {From: []string{StatusAccepted}, To: StatusInProduction},
	OpCompleteOrder:      {From: []string{StatusInProduction}, To: StatusCompleted},
}

// TransitionAllowed reports whether the operation may run on an order whose
// current status is from.
func TransitionAllowed(operation, from string) bool {
	t, ok := Transitions[operation]
	if !ok {
		return false
	}
	for _, s := range t.From {
		if s == from {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether the status admits no further transitions.
func IsTerminalStatus(status string) bool {
	return status == StatusCompleted || status == StatusRejected
}

// Order represents a part-manufacturing request moving through the lifecycle
type Order struct {
	ID                 uint     `gorm:"primaryKey" json:"id"`
	PartID             string   `gorm:"uniqueIndex;not null" json:"part_id"` // human-facing identifier, assigned once at creation
	ProductDescription string   `gorm:"type:text;not null" json:"product_description"`
	Quantity           int      `gorm:"not null;check:quantity > 0" json:"quantity"`
	MaterialThickness  string   `gorm:"not null" json:"material_thickness"`
	MaterialType       string   `gorm:"not null" json:"material_type"`
	MaterialGrade      string   `gorm:"not null" json:"material_grade"`
	SurfaceTreatment   string   `gorm:"not null" json:"surface_treatment"`
	PackingStandard    string   `gorm:"not null" json:"packing_standard"`
	Status             string   `gorm:"not null;default:'under_review'" json:"status"`
	TargetPrice        *float64 `json:"target_price"`   // client-proposed, optional
	PriceEstimate      *float64 `json:"price_estimate"` // admin-proposed, optional
	AgreedPrice        *float64 `json:"agreed_price"`   // set when both sides converge
	ActualCost         *float64 `json:"actual_cost"`    // recorded on completion
	PaymentConfirmed   bool     `gorm:"not null;default:false" json:"payment_confirmed"`

	DraftFileS3Key *string `json:"draft_file_s3_key"`            // 2D draft drawing
	StepFileS3Key  *string `json:"step_file_s3_key"`             // optional STEP model
	DraftFileURL   *string `gorm:"-" json:"draft_file_url,omitempty"` // computed, presigned URL
	StepFileURL    *string `gorm:"-" json:"step_file_url,omitempty"`  // computed, presigned URL

	AdminNotes      string `gorm:"type:text" json:"admin_notes"`
	RejectionReason string `gorm:"type:text" json:"rejection_reason"`

	ClientID  uint     `gorm:"not null;index" json:"client_id"` // order owner, read-only after creation
	Client    User     `gorm:"foreignKey:ClientID" json:"client"`
	MachineID *uint    `gorm:"index" json:"machine_id"` // nullable, assigned by admin
	Machine   *Machine `gorm:"foreignKey:MachineID" json:"machine,omitempty"`

	DateSubmitted          time.Time  `gorm:"not null" json:"date_submitted"`
	ExpectedCompletionDate *time.Time `json:"expected_completion_date"`
	DateAccepted           *time.Time `json:"date_accepted"`
	DateProductionStarted  *time.Time `json:"date_production_started"`
	DateCompleted          *time.Time `json:"date_completed"`
	DateRejected           *time.Time `json:"date_rejected"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// IsOwnedBy reports whether the user is the client who submitted the order
func (o *Order) IsOwnedBy(u *User) bool {
	return o.ClientID == u.ID
}
