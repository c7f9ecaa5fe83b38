package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	mathrand "math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/example/lumera/internal/models"
)

// shippingTransitions is the authoritative transition table. RETURNED is
// terminal. IN_TRANSIT is only entered through a batch pickup, which moves a
// whole batch at once rather than stepping single deliveries.
var shippingTransitions = map[string][]string{
	models.ShippingStatusPending:        {models.ShippingStatusPickedUp, models.ShippingStatusFailed},
	models.ShippingStatusPickedUp:       {models.ShippingStatusOutForDelivery, models.ShippingStatusFailed, models.ShippingStatusReturning},
	models.ShippingStatusInTransit:      {models.ShippingStatusOutForDelivery, models.ShippingStatusFailed, models.ShippingStatusReturning},
	models.ShippingStatusOutForDelivery: {models.ShippingStatusDelivered, models.ShippingStatusFailed, models.ShippingStatusReturning},
	models.ShippingStatusDelivered:      {models.ShippingStatusReturning},
	models.ShippingStatusFailed:         {models.ShippingStatusPending, models.ShippingStatusReturning},
	models.ShippingStatusReturning:      {models.ShippingStatusReturned, models.ShippingStatusFailed},
}

// CanTransition reports whether a shipping status change is legal.
func CanTransition(from, to string) bool {
	for _, allowed := range shippingTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// orderStatusProjection maps a shipping status to the order status it drives.
var orderStatusProjection = map[string]string{
	models.ShippingStatusPending:        models.OrderStatusConfirmed,
	models.ShippingStatusPickedUp:       models.OrderStatusShipping,
	models.ShippingStatusInTransit:      models.OrderStatusShipping,
	models.ShippingStatusOutForDelivery: models.OrderStatusShipping,
	models.ShippingStatusDelivered:      models.OrderStatusDelivered,
	models.ShippingStatusFailed:         models.OrderStatusProcessing,
	models.ShippingStatusReturning:      models.OrderStatusProcessing,
	models.ShippingStatusReturned:       models.OrderStatusCancelled,
}

// ProjectOrderStatus returns the order status a shipping status maps to.
func ProjectOrderStatus(shippingStatus string) (string, bool) {
	status, ok := orderStatusProjection[shippingStatus]
	return status, ok
}

const staleAssignmentAge = 24 * time.Hour

// ShippingService runs the delivery state machine, batch deliveries, the
// carrier sync and staff auto-assignment.
type ShippingService struct {
	store    Store
	carrier  CarrierGateway
	notifier Notifier
	log      *log.Logger
}

func NewShippingService(store Store, carrier CarrierGateway, notifier Notifier) *ShippingService {
	return &ShippingService{
		store:    store,
		carrier:  carrier,
		notifier: notifier,
		log:      log.New(os.Stdout, "[shipping] ", log.LstdFlags),
	}
}

// OpenForOrder creates the PENDING delivery record for a paid order. GHN
// registration failure downgrades to an internal delivery instead of failing
// the checkout.
func (s *ShippingService) OpenForOrder(ctx context.Context, order *models.Order, method string) (*models.ShippingLog, error) {
	shippingLog := &models.ShippingLog{
		OrderID:        order.ID,
		Status:         models.ShippingStatusPending,
		ShippingMethod: method,
		TotalAmount:    order.TotalAmount,
	}
	if !order.Paid {
		shippingLog.TotalCodAmount = order.TotalAmount
	}

	if method == models.ShippingMethodGHN {
		customer, err := s.store.Users().FindByID(ctx, order.CustomerID)
		if err != nil {
			return nil, err
		}
		result, err := s.carrier.CreateOrder(ctx, CarrierOrderRequest{
			ToName:       customer.FullName,
			ToPhone:      customer.Phone,
			ToAddress:    order.ShippingAddress,
			ToWardCode:   order.ToWardCode,
			ToDistrictID: order.ToDistrictID,
			CodAmount:    shippingLog.TotalCodAmount,
			Note:         order.Notes,
		})
		if err != nil {
			s.log.Printf("GHN order for %s failed, falling back to internal delivery: %v", order.ID, err)
			shippingLog.ShippingMethod = models.ShippingMethodInternal
		} else {
			shippingLog.CarrierName = "GHN"
			shippingLog.GhnOrderCode = result.OrderCode
			shippingLog.GhnSortCode = result.SortCode
			shippingLog.GhnShippingFee = result.TotalFee
			shippingLog.ShippingFee = result.TotalFee
		}
	}

	if err := s.store.Shipping().Create(ctx, shippingLog); err != nil {
		return nil, err
	}
	return shippingLog, nil
}

// UpdateStatusInput carries the evidence a status change may require.
type UpdateStatusInput struct {
	Note             string
	UnexpectedCase   string
	FinishedPictures []string
}

// UpdateStatus applies one transition and projects it onto the order.
// DELIVERED demands proof photos, FAILED demands a reason. Repeating the
// current status is accepted and changes nothing.
func (s *ShippingService) UpdateStatus(ctx context.Context, logID uuid.UUID, newStatus string, in UpdateStatusInput) (*models.ShippingLog, error) {
	shippingLog, err := s.store.Shipping().FindByID(ctx, logID)
	if err != nil {
		return nil, err
	}
	return s.applyTransition(ctx, shippingLog, newStatus, in)
}

func (s *ShippingService) applyTransition(ctx context.Context, shippingLog *models.ShippingLog, newStatus string, in UpdateStatusInput) (*models.ShippingLog, error) {
	if newStatus == shippingLog.Status {
		return shippingLog, nil
	}
	if !CanTransition(shippingLog.Status, newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, shippingLog.Status, newStatus)
	}

	fields := map[string]any{"status": newStatus}
	if in.Note != "" {
		fields["note"] = in.Note
	}

	now := time.Now()
	switch newStatus {
	case models.ShippingStatusDelivered:
		if len(in.FinishedPictures) == 0 {
			return nil, fmt.Errorf("%w: delivery proof photos required", ErrMissingEvidence)
		}
		fields["finished_pictures"] = pq.StringArray(in.FinishedPictures)
		fields["delivered_date"] = &now
		if shippingLog.TotalCodAmount > 0 {
			fields["cod_collected"] = true
		}
	case models.ShippingStatusFailed:
		if in.UnexpectedCase == "" {
			return nil, fmt.Errorf("%w: failure reason required", ErrMissingEvidence)
		}
		fields["unexpected_case"] = in.UnexpectedCase
	case models.ShippingStatusReturned:
		fields["returned_date"] = &now
	}

	if err := s.store.Shipping().UpdateFields(ctx, shippingLog.ID, fields); err != nil {
		return nil, err
	}
	shippingLog.Status = newStatus

	s.projectOrder(ctx, shippingLog.OrderID, newStatus)

	if newStatus == models.ShippingStatusFailed {
		s.notifier.NotifyDeliveryFailed(shippingLog.OrderID, in.UnexpectedCase)
	}
	return shippingLog, nil
}

func (s *ShippingService) projectOrder(ctx context.Context, orderID uuid.UUID, shippingStatus string) {
	orderStatus, ok := ProjectOrderStatus(shippingStatus)
	if !ok {
		return
	}
	if err := s.store.Orders().UpdateFields(ctx, orderID, map[string]any{"status": orderStatus}); err != nil {
		s.log.Printf("project order %s to %s failed: %v", orderID, orderStatus, err)
	}
}

// projectOrderIn is the transactional form of projectOrder: a failed order
// write aborts the surrounding batch transaction.
func projectOrderIn(ctx context.Context, tx Stores, orderID uuid.UUID, shippingStatus string) error {
	orderStatus, ok := ProjectOrderStatus(shippingStatus)
	if !ok {
		return nil
	}
	return tx.Orders().UpdateFields(ctx, orderID, map[string]any{"status": orderStatus})
}

// AssignStaff hands a pending delivery to a staff member and marks it picked
// up.
func (s *ShippingService) AssignStaff(ctx context.Context, logID, staffID uuid.UUID) (*models.ShippingLog, error) {
	shippingLog, err := s.store.Shipping().FindByID(ctx, logID)
	if err != nil {
		return nil, err
	}
	if shippingLog.Status != models.ShippingStatusPending {
		return nil, fmt.Errorf("%w: delivery is %s", ErrInvalidInput, shippingLog.Status)
	}
	staff, err := s.store.Users().FindByID(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if staff.Role != models.RoleStaff || !staff.IsActive {
		return nil, fmt.Errorf("%w: %s is not an active staff member", ErrInvalidInput, staffID)
	}

	if err := s.store.Shipping().UpdateFields(ctx, logID, map[string]any{
		"shipping_staff_id": staffID,
		"status":            models.ShippingStatusPickedUp,
	}); err != nil {
		return nil, err
	}
	shippingLog.ShippingStaffID = &staffID
	shippingLog.Status = models.ShippingStatusPickedUp
	s.projectOrder(ctx, shippingLog.OrderID, models.ShippingStatusPickedUp)
	return shippingLog, nil
}

// ResolveDestinationCodes asks the carrier to translate typed region names
// into routing codes. A lookup failure logs and resolves to zero codes so
// the caller can fall back to the customer profile.
func (s *ShippingService) ResolveDestinationCodes(ctx context.Context, q AddressQuery) AddressCodes {
	codes, err := s.carrier.ResolveAddressCodes(ctx, q)
	if err != nil {
		s.log.Printf("resolve region codes for %q/%q/%q failed: %v", q.Province, q.District, q.Ward, err)
	}
	return codes
}

// Track returns the delivery record for an order.
func (s *ShippingService) Track(ctx context.Context, orderID uuid.UUID) (*models.ShippingLog, error) {
	return s.store.Shipping().FindByOrderID(ctx, orderID)
}

// CreateBatch groups pending deliveries of one customer under a batch code so
// a single staff run covers them.
func (s *ShippingService) CreateBatch(ctx context.Context, orderIDs []uuid.UUID, staffID *uuid.UUID) (string, []models.ShippingLog, error) {
	if len(orderIDs) < 2 {
		return "", nil, fmt.Errorf("%w: a batch needs at least two orders", ErrInvalidInput)
	}

	var (
		customerID uuid.UUID
		logs       []models.ShippingLog
		totalCod   float64
	)
	for i, orderID := range orderIDs {
		order, err := s.store.Orders().FindByID(ctx, orderID)
		if err != nil {
			return "", nil, fmt.Errorf("order %s: %w", orderID, err)
		}
		if i == 0 {
			customerID = order.CustomerID
		} else if order.CustomerID != customerID {
			return "", nil, ErrBatchMixed
		}

		shippingLog, err := s.store.Shipping().FindByOrderID(ctx, orderID)
		if err != nil {
			return "", nil, fmt.Errorf("delivery for order %s: %w", orderID, err)
		}
		totalCod += shippingLog.TotalCodAmount
		logs = append(logs, *shippingLog)
	}

	batchCode := generateBatchCode()
	for i := range logs {
		fields := map[string]any{
			"batch_code":       batchCode,
			"total_cod_amount": logs[i].TotalCodAmount,
		}
		if staffID != nil {
			fields["shipping_staff_id"] = *staffID
		}
		if err := s.store.Shipping().UpdateFields(ctx, logs[i].ID, fields); err != nil {
			return "", nil, err
		}
		logs[i].BatchCode = batchCode
		if staffID != nil {
			logs[i].ShippingStaffID = staffID
		}
	}

	s.log.Printf("batch %s created with %d orders, cod total %.0f", batchCode, len(logs), totalCod)
	return batchCode, logs, nil
}

// PickupBatch moves every member to IN_TRANSIT in one transaction. All
// members must still be PENDING; a partially started batch cannot be picked
// up as a unit.
func (s *ShippingService) PickupBatch(ctx context.Context, batchCode string) ([]models.ShippingLog, error) {
	logs, err := s.store.Shipping().FindByBatchCode(ctx, batchCode)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, ErrNotFound
	}
	for _, shippingLog := range logs {
		if shippingLog.Status != models.ShippingStatusPending {
			return nil, fmt.Errorf("%w: order %s is %s", ErrBatchNotReady, shippingLog.OrderID, shippingLog.Status)
		}
	}

	err = s.store.InTx(ctx, func(tx Stores) error {
		for i := range logs {
			if err := tx.Shipping().UpdateFields(ctx, logs[i].ID, map[string]any{
				"status": models.ShippingStatusInTransit,
			}); err != nil {
				return err
			}
			if err := projectOrderIn(ctx, tx, logs[i].OrderID, models.ShippingStatusInTransit); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for i := range logs {
		logs[i].Status = models.ShippingStatusInTransit
	}
	return logs, nil
}

// UpdateBatchOrder applies a per-member status change inside a batch run.
func (s *ShippingService) UpdateBatchOrder(ctx context.Context, batchCode string, orderID uuid.UUID, newStatus string, in UpdateStatusInput) (*models.ShippingLog, error) {
	logs, err := s.store.Shipping().FindByBatchCode(ctx, batchCode)
	if err != nil {
		return nil, err
	}
	for i := range logs {
		if logs[i].OrderID == orderID {
			return s.applyTransition(ctx, &logs[i], newStatus, in)
		}
	}
	return nil, fmt.Errorf("%w: order %s is not part of batch %s", ErrNotFound, orderID, batchCode)
}

// CompleteBatch closes a batch run in one transaction: open members are
// promoted to DELIVERED, every delivered member's order is completed and the
// completion evidence lands on all member rows. Re-completion is rejected.
func (s *ShippingService) CompleteBatch(ctx context.Context, batchCode string, photos []string, note string, codCollected bool) ([]models.ShippingLog, error) {
	if len(photos) == 0 {
		return nil, fmt.Errorf("%w: at least one completion photo required", ErrMissingEvidence)
	}

	logs, err := s.store.Shipping().FindByBatchCode(ctx, batchCode)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, ErrNotFound
	}
	for _, shippingLog := range logs {
		if shippingLog.BatchCompletedAt != nil {
			return nil, ErrBatchCompleted
		}
	}

	now := time.Now()
	err = s.store.InTx(ctx, func(tx Stores) error {
		for i := range logs {
			fields := map[string]any{
				"batch_completion_photos": pq.StringArray(photos),
				"batch_completion_note":   note,
				"batch_completed_at":      &now,
			}

			switch logs[i].Status {
			case models.ShippingStatusDelivered, models.ShippingStatusFailed,
				models.ShippingStatusReturning, models.ShippingStatusReturned:
				// already settled individually
			default:
				fields["status"] = models.ShippingStatusDelivered
				fields["finished_pictures"] = pq.StringArray(photos)
				fields["delivered_date"] = &now
				if logs[i].TotalCodAmount > 0 {
					fields["cod_collected"] = codCollected
				}
				logs[i].Status = models.ShippingStatusDelivered
			}

			if err := tx.Shipping().UpdateFields(ctx, logs[i].ID, fields); err != nil {
				return err
			}
			logs[i].BatchCompletedAt = &now

			if logs[i].Status == models.ShippingStatusDelivered {
				if err := tx.Orders().UpdateFields(ctx, logs[i].OrderID, map[string]any{
					"status": models.OrderStatusCompleted,
				}); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// SyncCarrierStatuses is the scheduler sweep over open GHN deliveries: poll
// the carrier, map its raw status and apply the transition. Out-of-order
// carrier statuses are skipped, per-row failures logged.
func (s *ShippingService) SyncCarrierStatuses(ctx context.Context) (int, error) {
	logs, err := s.store.Shipping().FindOpenCarrierLogs(ctx)
	if err != nil {
		return 0, err
	}

	synced := 0
	for i := range logs {
		detail, err := s.carrier.OrderDetail(ctx, logs[i].GhnOrderCode)
		if err != nil {
			s.log.Printf("poll %s failed: %v", logs[i].GhnOrderCode, err)
			continue
		}

		mapped := MapCarrierStatus(detail.Status)
		if mapped == logs[i].Status {
			continue
		}
		if !CanTransition(logs[i].Status, mapped) {
			s.log.Printf("skip %s: carrier status %q maps to %s but delivery is %s", logs[i].GhnOrderCode, detail.Status, mapped, logs[i].Status)
			continue
		}

		if err := s.store.Shipping().UpdateFields(ctx, logs[i].ID, map[string]any{
			"status":            mapped,
			"ghn_tracking_data": detail.Raw,
		}); err != nil {
			s.log.Printf("update %s failed: %v", logs[i].GhnOrderCode, err)
			continue
		}
		s.projectOrder(ctx, logs[i].OrderID, mapped)
		synced++
	}

	if synced > 0 {
		s.log.Printf("carrier sync advanced %d deliveries", synced)
	}
	return synced, nil
}

// HandleCarrierWebhook applies a pushed GHN status change to the delivery it
// belongs to. Same skip rules as the polling sweep.
func (s *ShippingService) HandleCarrierWebhook(ctx context.Context, ghnOrderCode, rawStatus string, raw []byte) (*models.ShippingLog, error) {
	shippingLog, err := s.store.Shipping().FindByCarrierCode(ctx, ghnOrderCode)
	if err != nil {
		return nil, err
	}

	mapped := MapCarrierStatus(rawStatus)
	if mapped == shippingLog.Status {
		return shippingLog, nil
	}
	if !CanTransition(shippingLog.Status, mapped) {
		s.log.Printf("skip %s: carrier status %q maps to %s but delivery is %s", ghnOrderCode, rawStatus, mapped, shippingLog.Status)
		return shippingLog, nil
	}

	if err := s.store.Shipping().UpdateFields(ctx, shippingLog.ID, map[string]any{
		"status":            mapped,
		"ghn_tracking_data": raw,
	}); err != nil {
		return nil, err
	}
	shippingLog.Status = mapped
	s.projectOrder(ctx, shippingLog.OrderID, mapped)
	return shippingLog, nil
}

// AutoAssignStale hands deliveries nobody picked up within a day to a random
// active staff member.
func (s *ShippingService) AutoAssignStale(ctx context.Context) (int, error) {
	stale, err := s.store.Shipping().FindStaleUnassigned(ctx, time.Now().Add(-staleAssignmentAge))
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	staff, err := s.store.Users().ActiveStaff(ctx)
	if err != nil {
		return 0, err
	}
	if len(staff) == 0 {
		s.log.Printf("no active staff to assign %d stale deliveries", len(stale))
		return 0, nil
	}

	assigned := 0
	for i := range stale {
		pick := staff[mathrand.Intn(len(staff))]
		if err := s.store.Shipping().UpdateFields(ctx, stale[i].ID, map[string]any{
			"shipping_staff_id": pick.ID,
			"status":            models.ShippingStatusPickedUp,
		}); err != nil {
			s.log.Printf("auto-assign %s failed: %v", stale[i].ID, err)
			continue
		}
		s.projectOrder(ctx, stale[i].OrderID, models.ShippingStatusPickedUp)
		assigned++
	}

	if assigned > 0 {
		s.log.Printf("auto-assigned %d stale deliveries", assigned)
	}
	return assigned, nil
}

const batchSuffixAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

func generateBatchCode() string {
	suffix := make([]byte, 6)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(batchSuffixAlphabet))))
		if err != nil {
			n = big.NewInt(int64(mathrand.Intn(len(batchSuffixAlphabet))))
		}
		suffix[i] = batchSuffixAlphabet[n.Int64()]
	}
	return fmt.Sprintf("BATCH-%s-%s", time.Now().Format("20060102"), suffix)
}
