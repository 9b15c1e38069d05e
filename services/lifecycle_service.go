package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/parth-garg/fabworks-api/models"
	"gorm.io/gorm"
)

// DefaultLeadTime is the expected completion window applied on approval when
// the admin does not supply a date.
const DefaultLeadTime = 14 * 24 * time.Hour

// LifecycleService is the order lifecycle engine. Every status change goes
// through one of its operations: the operation checks the actor's capability,
// validates the transition against models.Transitions, and applies the status
// change together with its side effects (timestamps, price fields, log
// entries) in a single transaction.
//
// Concurrent transitions on the same order are serialized optimistically: the
// status update is guarded by the status the order was read at, so of two
// simultaneous calls exactly one commits and the other fails with
// INVALID_STATE.
type LifecycleService struct {
	db *gorm.DB
}

// NewLifecycleService creates a lifecycle engine over the given database
func NewLifecycleService(db *gorm.DB) *LifecycleService {
	return &LifecycleService{db: db}
}

// ApproveOrderInput carries the optional fields an admin may set on approval
type ApproveOrderInput struct {
	PriceEstimate          *float64
	ExpectedCompletionDate *time.Time
	MachineID              *uint
	AdminNotes             string
}

// ApproveOrder moves an order to awaiting_payment. Without an explicit price
// estimate the client's target price is taken as immediately agreed; with one,
// the estimate stands as a pending counter the client still has to accept.
func (s *LifecycleService) ApproveOrder(actor *models.User, orderID uint, in ApproveOrderInput) (*models.Order, error) {
	if !actor.IsAdmin() {
		return nil, errForbidden("Admin access required")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, orderID)
		if err != nil {
			return err
		}
		if !models.TransitionAllowed(models.OpApproveOrder, order.Status) {
			return errInvalidState("Order cannot be approved at this stage")
		}

		now := time.Now()
		updates := map[string]interface{}{
			"date_accepted": now,
			"admin_notes":   in.AdminNotes,
		}

		// Admin accepts the client's target price outright, or counters
		// with a different estimate the client still has to accept.
		if in.PriceEstimate == nil && order.TargetPrice != nil {
			updates["price_estimate"] = *order.TargetPrice
			updates["agreed_price"] = *order.TargetPrice
		} else if in.PriceEstimate != nil {
			updates["price_estimate"] = *in.PriceEstimate
		}

		if in.ExpectedCompletionDate != nil {
			updates["expected_completion_date"] = *in.ExpectedCompletionDate
		} else {
			updates["expected_completion_date"] = now.Add(DefaultLeadTime)
		}

		if in.MachineID != nil {
			if err := machineExists(tx, *in.MachineID); err != nil {
				return err
			}
			updates["machine_id"] = *in.MachineID
		}

		return applyTransition(tx, order, models.StatusAwaitingPayment, updates)
	})
	if err != nil {
		return nil, AsLifecycleError(err)
	}
	return s.orderByID(orderID)
}

// RejectOrder moves an order to the terminal rejected state, recording the
// reason. The reason is required.
func (s *LifecycleService) RejectOrder(actor *models.User, orderID uint, reason string) (*models.Order, error) {
	if !actor.IsAdmin() {
		return nil, errForbidden("Admin access required")
	}
	if reason == "" {
		return nil, errMissingArgument("Rejection reason is required")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, orderID)
		if err != nil {
			return err
		}
		if !models.TransitionAllowed(models.OpRejectOrder, order.Status) {
			return errInvalidState("Order cannot be rejected at this stage")
		}

		return applyTransition(tx, order, models.StatusRejected, map[string]interface{}{
			"rejection_reason": reason,
			"date_rejected":    time.Now(),
		})
	})
	if err != nil {
		return nil, AsLifecycleError(err)
	}
	return s.orderByID(orderID)
}

// SendCounterOffer logs a priced proposal from either side and moves the
// order into negotiation if it isn't there already.
func (s *LifecycleService) SendCounterOffer(actor *models.User, orderID uint, amount *float64, message string) (*models.Order, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, orderID)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && !order.IsOwnedBy(actor) {
			return errForbidden("You do not have permission to negotiate on this order")
		}
		if amount == nil {
			return errMissingArgument("Amount is required for a counter offer")
		}
		if !models.TransitionAllowed(models.OpSendCounterOffer, order.Status) {
			return errInvalidState("Negotiation is not allowed at this stage")
		}

		if message == "" {
			message = fmt.Sprintf("Counter offer: %.2f", *amount)
		}
		if err := AppendOrderMessage(tx, &models.OrderMessage{
			OrderID:  order.ID,
			SenderID: actor.ID,
			Message:  message,
			Type:     models.MessageTypeCounterOffer,
			Amount:   amount,
			IsAdmin:  actor.IsAdmin(),
		}); err != nil {
			return err
		}

		return applyTransition(tx, order, models.StatusNegotiation, nil)
	})
	if err != nil {
		return nil, AsLifecycleError(err)
	}
	return s.orderByID(orderID)
}

// AcceptCounterOffer lets the order's owner accept the most recent counter
// offer: its amount becomes the agreed price and the order moves to
// awaiting_payment.
func (s *LifecycleService) AcceptCounterOffer(actor *models.User, orderID uint) (*models.Order, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, orderID)
		if err != nil {
			return err
		}
		if actor.IsAdmin() || !order.IsOwnedBy(actor) {
			return errForbidden("Only the client who created the order can accept")
		}
		if !models.TransitionAllowed(models.OpAcceptCounterOffer, order.Status) {
			return errInvalidState("Order is not in negotiation")
		}

		offer, err := LatestCounterOffer(tx, order.ID)
		if err != nil {
			return err
		}
		if offer == nil {
			return errNoOfferToAccept()
		}

		if err := applyTransition(tx, order, models.StatusAwaitingPayment, map[string]interface{}{
			"agreed_price": *offer.Amount,
		}); err != nil {
			return err
		}

		return AppendOrderMessage(tx, &models.OrderMessage{
			OrderID:  order.ID,
			SenderID: actor.ID,
			Message:  fmt.Sprintf("Client accepted the offer of %.2f.", *offer.Amount),
			Type:     models.MessageTypeSystem,
		})
	})
	if err != nil {
		return nil, AsLifecycleError(err)
	}
	return s.orderByID(orderID)
}

// ConfirmPrice lets the order's owner accept the admin's quoted estimate
// directly, taking the order to accepted.
func (s *LifecycleService) ConfirmPrice(actor *models.User, orderID uint) (*models.Order, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, orderID)
		if err != nil {
			return err
		}
		if actor.IsAdmin() || !order.IsOwnedBy(actor) {
			return errForbidden("Only the client who created the order can confirm")
		}
		if !models.TransitionAllowed(models.OpConfirmPrice, order.Status) {
			return errInvalidState("Order cannot be confirmed at this stage")
		}

		updates := map[string]interface{}{}
		if order.PriceEstimate != nil {
			updates["agreed_price"] = *order.PriceEstimate
		}
		if err := applyTransition(tx, order, models.StatusAccepted, updates); err != nil {
			return err
		}

		return AppendOrderMessage(tx, &models.OrderMessage{
			OrderID:  order.ID,
			SenderID: actor.ID,
			Message:  fmt.Sprintf("Client confirmed the order at price %s.", formatAmount(order.PriceEstimate)),
			Type:     models.MessageTypeMessage,
		})
	})
	if err != nil {
		return nil, AsLifecycleError(err)
	}
	return s.orderByID(orderID)
}

// ConfirmPayment records the owner's payment assertion on an order awaiting
// payment and moves it to accepted.
func (s *LifecycleService) ConfirmPayment(actor *models.User, orderID uint) (*models.Order, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, orderID)
		if err != nil {
			return err
		}
		if actor.IsAdmin() || !order.IsOwnedBy(actor) {
			return errForbidden("Only the client who created the order can confirm payment")
		}
		if !models.TransitionAllowed(models.OpConfirmPayment, order.Status) {
			return errInvalidState("Order is not awaiting payment")
		}

		if err := applyTransition(tx, order, models.StatusAccepted, map[string]interface{}{
			"payment_confirmed": true,
		}); err != nil {
			return err
		}

		return AppendOrderMessage(tx, &models.OrderMessage{
			OrderID:  order.ID,
			SenderID: actor.ID,
			Message:  fmt.Sprintf("Client confirmed payment for agreed price %s.", formatAmount(order.AgreedPrice)),
			Type:     models.MessageTypeSystem,
		})
	})
	if err != nil {
		return nil, AsLifecycleError(err)
	}
	return s.orderByID(orderID)
}

// StartProduction moves an accepted order into production. A machine must be
// assigned first.
func (s *LifecycleService) StartProduction(actor *models.User, orderID uint) (*models.Order, error) {
	if !actor.IsAdmin() {
		return nil, errForbidden("Admin access required")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, orderID)
		if err != nil {
			return err
		}
		if !models.TransitionAllowed(models.OpStartProduction, order.Status) {
			return errInvalidState("Order must be accepted before starting production")
		}
		if order.MachineID == nil {
			return errInvalidState("A machine must be assigned before starting production")
		}

		return applyTransition(tx, order, models.StatusInProduction, map[string]interface{}{
			"date_production_started": time.Now(),
		})
	})
	if err != nil {
		return nil, AsLifecycleError(err)
	}
	return s.orderByID(orderID)
}

// CompleteOrder marks an in-production order as completed, optionally
// recording the actual cost.
func (s *LifecycleService) CompleteOrder(actor *models.User, orderID uint, actualCost *float64) (*models.Order, error) {
	if !actor.IsAdmin() {
		return nil, errForbidden("Admin access required")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, orderID)
		if err != nil {
			return err
		}
		if !models.TransitionAllowed(models.OpCompleteOrder, order.Status) {
			return errInvalidState("Order must be in production before marking as completed")
		}

		updates := map[string]interface{}{
			"date_completed": time.Now(),
		}
		if actualCost != nil {
			updates["actual_cost"] = *actualCost
		}
		return applyTransition(tx, order, models.StatusCompleted, updates)
	})
	if err != nil {
		return nil, AsLifecycleError(err)
	}
	return s.orderByID(orderID)
}

// AssignMachine sets the order's machine reference. It is not a status
// transition and is allowed in any non-terminal state.
func (s *LifecycleService) AssignMachine(actor *models.User, orderID uint, machineID *uint) (*models.Order, error) {
	if !actor.IsAdmin() {
		return nil, errForbidden("Admin access required")
	}
	if machineID == nil {
		return nil, errMissingArgument("Machine ID is required")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := loadOrder(tx, orderID)
		if err != nil {
			return err
		}
		if models.IsTerminalStatus(order.Status) {
			return errInvalidState("Cannot assign a machine to a completed or rejected order")
		}
		if err := machineExists(tx, *machineID); err != nil {
			return err
		}

		// Keep the status guard even though status doesn't change, so a
		// concurrent transition to a terminal state can't race past the
		// check above.
		return applyTransition(tx, order, order.Status, map[string]interface{}{
			"machine_id": *machineID,
		})
	})
	if err != nil {
		return nil, AsLifecycleError(err)
	}
	return s.orderByID(orderID)
}

// orderByID reloads an order with its relationships for the response payload
func (s *LifecycleService) orderByID(orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Client").Preload("Machine").First(&order, orderID).Error
	if err != nil {
		return nil, AsLifecycleError(err)
	}
	return &order, nil
}

// loadOrder fetches the order an operation targets
func loadOrder(tx *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := tx.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errOrderNotFound()
		}
		return nil, err
	}
	return &order, nil
}

// machineExists verifies the referenced machine is in the catalog
func machineExists(tx *gorm.DB, machineID uint) error {
	var machine models.Machine
	if err := tx.First(&machine, machineID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errMachineNotFound()
		}
		return err
	}
	return nil
}

// applyTransition writes the status change and its derived fields as one
// update, guarded by the status the order was read at. Zero rows affected
// means another transition committed in between; the caller's whole
// transaction rolls back and the operation reports INVALID_STATE.
func applyTransition(tx *gorm.DB, order *models.Order, to string, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = to

	res := tx.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, order.Status).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errInvalidState("Order was modified concurrently, please retry")
	}
	order.Status = to
	return nil
}

// formatAmount renders a nullable price for log messages
func formatAmount(v *float64) string {
	if v == nil {
		return "(not set)"
	}
	return fmt.Sprintf("%.2f", *v)
}
