package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/example/lumera/internal/models"
)

// fakeStore is an in-memory Store. InTx runs the callback against the same
// maps; rollback is not simulated, tests assert on the final state instead.
type fakeStore struct {
	payments     map[uuid.UUID]*models.Payment
	orders       map[uuid.UUID]*models.Order
	orderItems   map[uuid.UUID][]models.OrderItem
	shipping     map[uuid.UUID]*models.ShippingLog
	inventory    map[uuid.UUID]*models.Inventory
	users        map[uuid.UUID]*models.User
	products     map[uuid.UUID]*models.Product
	appointments map[uuid.UUID]*models.Appointment
	slots        map[uuid.UUID]*models.AvailabilitySlot
	plans        map[uuid.UUID]*models.SubscriptionPlan
	subs         []*models.CustomerSubscription
	withdrawals  map[uuid.UUID]*models.WithdrawalRequest

	failConfirmSale map[uuid.UUID]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		payments:        make(map[uuid.UUID]*models.Payment),
		orders:          make(map[uuid.UUID]*models.Order),
		orderItems:      make(map[uuid.UUID][]models.OrderItem),
		shipping:        make(map[uuid.UUID]*models.ShippingLog),
		inventory:       make(map[uuid.UUID]*models.Inventory),
		users:           make(map[uuid.UUID]*models.User),
		products:        make(map[uuid.UUID]*models.Product),
		appointments:    make(map[uuid.UUID]*models.Appointment),
		slots:           make(map[uuid.UUID]*models.AvailabilitySlot),
		plans:           make(map[uuid.UUID]*models.SubscriptionPlan),
		withdrawals:     make(map[uuid.UUID]*models.WithdrawalRequest),
		failConfirmSale: make(map[uuid.UUID]error),
	}
}

func (f *fakeStore) InTx(ctx context.Context, fn func(tx Stores) error) error {
	return fn(f)
}

func (f *fakeStore) Payments() PaymentStore           { return &fakePayments{f} }
func (f *fakeStore) Orders() OrderStore               { return &fakeOrders{f} }
func (f *fakeStore) Shipping() ShippingStore          { return &fakeShipping{f} }
func (f *fakeStore) Inventory() InventoryLedger       { return &fakeInventory{f} }
func (f *fakeStore) Wallets() WalletLedger            { return &fakeWallets{f} }
func (f *fakeStore) Users() UserStore                 { return &fakeUsers{f} }
func (f *fakeStore) Products() ProductStore           { return &fakeProducts{f} }
func (f *fakeStore) Bookings() BookingStore           { return &fakeBookings{f} }
func (f *fakeStore) Subscriptions() SubscriptionStore { return &fakeSubscriptions{f} }
func (f *fakeStore) Withdrawals() WithdrawalStore     { return &fakeWithdrawals{f} }

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// Seed helpers.

func (f *fakeStore) addUser(u *models.User) *models.User {
	ensureID(&u.ID)
	f.users[u.ID] = u
	return u
}

func (f *fakeStore) addProduct(p *models.Product, current, reserved int) *models.Product {
	ensureID(&p.ID)
	f.products[p.ID] = p
	inv := &models.Inventory{ProductID: p.ID, CurrentStock: current, ReservedStock: reserved}
	ensureID(&inv.ID)
	f.inventory[p.ID] = inv
	return p
}

func (f *fakeStore) addPayment(p *models.Payment) *models.Payment {
	ensureID(&p.ID)
	f.payments[p.ID] = p
	return p
}

func (f *fakeStore) addOrder(o *models.Order) *models.Order {
	ensureID(&o.ID)
	f.orders[o.ID] = o
	return o
}

func (f *fakeStore) addShippingLog(l *models.ShippingLog) *models.ShippingLog {
	ensureID(&l.ID)
	f.shipping[l.ID] = l
	return l
}

func (f *fakeStore) addSlot(s *models.AvailabilitySlot) *models.AvailabilitySlot {
	ensureID(&s.ID)
	f.slots[s.ID] = s
	return s
}

func (f *fakeStore) addAppointment(a *models.Appointment) *models.Appointment {
	ensureID(&a.ID)
	f.appointments[a.ID] = a
	return a
}

func (f *fakeStore) addPlan(p *models.SubscriptionPlan) *models.SubscriptionPlan {
	ensureID(&p.ID)
	f.plans[p.ID] = p
	return p
}

func (f *fakeStore) addWithdrawal(w *models.WithdrawalRequest) *models.WithdrawalRequest {
	ensureID(&w.ID)
	f.withdrawals[w.ID] = w
	return w
}

// Payments.

type fakePayments struct{ f *fakeStore }

func (r *fakePayments) Create(ctx context.Context, p *models.Payment) error {
	ensureID(&p.ID)
	p.CreatedAt = time.Now()
	r.f.payments[p.ID] = p
	return nil
}

func (r *fakePayments) Update(ctx context.Context, p *models.Payment) error {
	r.f.payments[p.ID] = p
	return nil
}

func (r *fakePayments) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	p, ok := r.f.payments[id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "status":
			p.Status = v.(string)
		case "paid_amount":
			p.PaidAmount = v.(float64)
		case "paid_at":
			p.PaidAt = v.(*time.Time)
		case "order_id":
			id := v.(uuid.UUID)
			p.OrderID = &id
		case "gateway":
			p.Gateway = v.(string)
		case "account_number":
			p.AccountNumber = v.(string)
		case "reference_code":
			p.ReferenceCode = v.(string)
		case "transfer_content":
			p.TransferContent = v.(string)
		case "bank_tx_id":
			p.BankTxID = v.(int64)
		case "webhook_data":
			p.WebhookData = v.([]byte)
		case "transaction_date":
			p.TransactionDate = v.(*time.Time)
		default:
			panic(fmt.Sprintf("fake payments: unhandled field %q", k))
		}
	}
	return nil
}

func (r *fakePayments) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.f.payments, id)
	return nil
}

func (r *fakePayments) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	p, ok := r.f.payments[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePayments) FindByCode(ctx context.Context, code string) (*models.Payment, error) {
	for _, p := range r.f.payments {
		if p.PaymentCode == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fakePayments) FindByCodeForUpdate(ctx context.Context, code string) (*models.Payment, error) {
	return r.FindByCode(ctx, code)
}

func (r *fakePayments) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range r.f.payments {
		if p.OrderID != nil && *p.OrderID == orderID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePayments) FindByWithdrawalID(ctx context.Context, withdrawalID uuid.UUID) (*models.Payment, error) {
	for _, p := range r.f.payments {
		if p.WithdrawalID != nil && *p.WithdrawalID == withdrawalID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fakePayments) FindExpiredPending(ctx context.Context, now time.Time) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range r.f.payments {
		if p.Status == models.PaymentStatusPending && p.ExpiredAt != nil && p.ExpiredAt.Before(now) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePayments) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]models.Payment, int64, error) {
	var out []models.Payment
	for _, p := range r.f.payments {
		if p.CustomerID == customerID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

// Orders.

type fakeOrders struct{ f *fakeStore }

func (r *fakeOrders) Create(ctx context.Context, o *models.Order) error {
	ensureID(&o.ID)
	r.f.orders[o.ID] = o
	r.f.orderItems[o.ID] = o.Items
	return nil
}

func (r *fakeOrders) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	o, ok := r.f.orders[id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "status":
			o.Status = v.(string)
		case "processed_by":
			id := v.(uuid.UUID)
			o.ProcessedBy = &id
		case "rejection_reason":
			o.RejectionReason = v.(string)
		default:
			panic(fmt.Sprintf("fake orders: unhandled field %q", k))
		}
	}
	return nil
}

func (r *fakeOrders) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.f.orders, id)
	return nil
}

func (r *fakeOrders) DeleteItems(ctx context.Context, orderID uuid.UUID) error {
	delete(r.f.orderItems, orderID)
	return nil
}

func (r *fakeOrders) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	o, ok := r.f.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrders) ListByCustomer(ctx context.Context, customerID uuid.UUID, status string, limit, offset int) ([]models.Order, int64, error) {
	var out []models.Order
	for _, o := range r.f.orders {
		if o.CustomerID != customerID {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

// Shipping.

type fakeShipping struct{ f *fakeStore }

func (r *fakeShipping) Create(ctx context.Context, l *models.ShippingLog) error {
	ensureID(&l.ID)
	l.CreatedAt = time.Now()
	r.f.shipping[l.ID] = l
	return nil
}

func (r *fakeShipping) Update(ctx context.Context, l *models.ShippingLog) error {
	r.f.shipping[l.ID] = l
	return nil
}

func (r *fakeShipping) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	l, ok := r.f.shipping[id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "status":
			l.Status = v.(string)
		case "note":
			l.Note = v.(string)
		case "unexpected_case":
			l.UnexpectedCase = v.(string)
		case "finished_pictures":
			l.FinishedPictures = v.(pq.StringArray)
		case "delivered_date":
			l.DeliveredDate = v.(*time.Time)
		case "returned_date":
			l.ReturnedDate = v.(*time.Time)
		case "cod_collected":
			l.CodCollected = v.(bool)
		case "shipping_staff_id":
			id := v.(uuid.UUID)
			l.ShippingStaffID = &id
		case "batch_code":
			l.BatchCode = v.(string)
		case "total_cod_amount":
			l.TotalCodAmount = v.(float64)
		case "batch_completion_photos":
			l.BatchCompletionPhotos = v.(pq.StringArray)
		case "batch_completion_note":
			l.BatchCompletionNote = v.(string)
		case "batch_completed_at":
			l.BatchCompletedAt = v.(*time.Time)
		case "ghn_tracking_data":
			l.GhnTrackingData = v.([]byte)
		default:
			panic(fmt.Sprintf("fake shipping: unhandled field %q", k))
		}
	}
	return nil
}

func (r *fakeShipping) FindByID(ctx context.Context, id uuid.UUID) (*models.ShippingLog, error) {
	l, ok := r.f.shipping[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *fakeShipping) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.ShippingLog, error) {
	for _, l := range r.f.shipping {
		if l.OrderID == orderID {
			cp := *l
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fakeShipping) FindByCarrierCode(ctx context.Context, ghnOrderCode string) (*models.ShippingLog, error) {
	for _, l := range r.f.shipping {
		if l.GhnOrderCode == ghnOrderCode {
			cp := *l
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fakeShipping) FindByBatchCode(ctx context.Context, batchCode string) ([]models.ShippingLog, error) {
	var out []models.ShippingLog
	for _, l := range r.f.shipping {
		if l.BatchCode == batchCode {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeShipping) FindOpenCarrierLogs(ctx context.Context) ([]models.ShippingLog, error) {
	open := map[string]bool{
		models.ShippingStatusPending:        true,
		models.ShippingStatusPickedUp:       true,
		models.ShippingStatusInTransit:      true,
		models.ShippingStatusOutForDelivery: true,
		models.ShippingStatusFailed:         true,
		models.ShippingStatusReturning:      true,
	}
	var out []models.ShippingLog
	for _, l := range r.f.shipping {
		if l.GhnOrderCode != "" && open[l.Status] {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeShipping) FindStaleUnassigned(ctx context.Context, before time.Time) ([]models.ShippingLog, error) {
	var out []models.ShippingLog
	for _, l := range r.f.shipping {
		if l.Status == models.ShippingStatusPending && l.ShippingStaffID == nil && l.CreatedAt.Before(before) {
			out = append(out, *l)
		}
	}
	return out, nil
}

// Inventory.

type fakeInventory struct{ f *fakeStore }

func (r *fakeInventory) get(productID uuid.UUID) (*models.Inventory, error) {
	inv, ok := r.f.inventory[productID]
	if !ok {
		return nil, ErrNotFound
	}
	return inv, nil
}

func (r *fakeInventory) Reserve(ctx context.Context, productID uuid.UUID, qty int) error {
	inv, err := r.get(productID)
	if err != nil {
		return err
	}
	if inv.CurrentStock-inv.ReservedStock < qty {
		return ErrInsufficientStock
	}
	inv.ReservedStock += qty
	return nil
}

func (r *fakeInventory) Release(ctx context.Context, productID uuid.UUID, qty int) error {
	inv, err := r.get(productID)
	if err != nil {
		return err
	}
	if inv.ReservedStock < qty {
		return ErrInsufficientStock
	}
	inv.ReservedStock -= qty
	return nil
}

func (r *fakeInventory) ConfirmSale(ctx context.Context, productID uuid.UUID, qty int) error {
	if err, ok := r.f.failConfirmSale[productID]; ok {
		return err
	}
	inv, err := r.get(productID)
	if err != nil {
		return err
	}
	if inv.ReservedStock < qty || inv.CurrentStock < qty {
		return ErrInsufficientStock
	}
	inv.ReservedStock -= qty
	inv.CurrentStock -= qty
	return nil
}

func (r *fakeInventory) CanConfirmSale(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	inv, err := r.get(productID)
	if err != nil {
		return false, err
	}
	return inv.ReservedStock >= qty && inv.CurrentStock >= qty, nil
}

func (r *fakeInventory) ReduceStock(ctx context.Context, productID uuid.UUID, qty int) error {
	inv, err := r.get(productID)
	if err != nil {
		return err
	}
	if inv.CurrentStock < qty {
		return ErrInsufficientStock
	}
	inv.CurrentStock -= qty
	return nil
}

func (r *fakeInventory) Restock(ctx context.Context, productID uuid.UUID, qty int) error {
	inv, err := r.get(productID)
	if err != nil {
		return err
	}
	inv.CurrentStock += qty
	return nil
}

// Wallets.

type fakeWallets struct{ f *fakeStore }

func (r *fakeWallets) Adjust(ctx context.Context, userID uuid.UUID, delta float64) (float64, error) {
	u, ok := r.f.users[userID]
	if !ok {
		return 0, ErrNotFound
	}
	if u.Balance+delta < 0 {
		return 0, ErrInsufficientFunds
	}
	u.Balance += delta
	return u.Balance, nil
}

func (r *fakeWallets) Balance(ctx context.Context, userID uuid.UUID) (float64, error) {
	u, ok := r.f.users[userID]
	if !ok {
		return 0, ErrNotFound
	}
	return u.Balance, nil
}

// Users.

type fakeUsers struct{ f *fakeStore }

func (r *fakeUsers) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := r.f.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fakeUsers) Create(ctx context.Context, u *models.User) error {
	ensureID(&u.ID)
	r.f.users[u.ID] = u
	return nil
}

func (r *fakeUsers) ActiveStaff(ctx context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range r.f.users {
		if u.Role == models.RoleStaff && u.IsActive {
			out = append(out, *u)
		}
	}
	return out, nil
}

// Products.

type fakeProducts struct{ f *fakeStore }

func (r *fakeProducts) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := r.f.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// Bookings.

type fakeBookings struct{ f *fakeStore }

func (r *fakeBookings) FindAppointment(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	a, ok := r.f.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeBookings) FindAppointmentByPayment(ctx context.Context, paymentID uuid.UUID) (*models.Appointment, error) {
	for _, a := range r.f.appointments {
		if a.PaymentID != nil && *a.PaymentID == paymentID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fakeBookings) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	ensureID(&a.ID)
	r.f.appointments[a.ID] = a
	return nil
}

func (r *fakeBookings) UpdateAppointmentFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	a, ok := r.f.appointments[id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "status":
			a.Status = v.(string)
		case "cancellation_note":
			a.CancellationNote = v.(string)
		case "payment_id":
			id := v.(uuid.UUID)
			a.PaymentID = &id
		default:
			panic(fmt.Sprintf("fake bookings: unhandled appointment field %q", k))
		}
	}
	return nil
}

func (r *fakeBookings) FindSlot(ctx context.Context, id uuid.UUID) (*models.AvailabilitySlot, error) {
	s, ok := r.f.slots[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeBookings) FindSlotForUpdate(ctx context.Context, id uuid.UUID) (*models.AvailabilitySlot, error) {
	return r.FindSlot(ctx, id)
}

func (r *fakeBookings) ListOpenSlots(ctx context.Context, after time.Time) ([]models.AvailabilitySlot, error) {
	var out []models.AvailabilitySlot
	for _, s := range r.f.slots {
		if s.Status == models.SlotStatusAvailable && s.StartTime.After(after) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *fakeBookings) UpdateSlotFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	s, ok := r.f.slots[id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "status":
			s.Status = v.(string)
		default:
			panic(fmt.Sprintf("fake bookings: unhandled slot field %q", k))
		}
	}
	return nil
}

// Subscriptions.

type fakeSubscriptions struct{ f *fakeStore }

func (r *fakeSubscriptions) FindPlan(ctx context.Context, id uuid.UUID) (*models.SubscriptionPlan, error) {
	p, ok := r.f.plans[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeSubscriptions) CreateSubscription(ctx context.Context, sub *models.CustomerSubscription) error {
	ensureID(&sub.ID)
	r.f.subs = append(r.f.subs, sub)
	return nil
}

// Withdrawals.

type fakeWithdrawals struct{ f *fakeStore }

func (r *fakeWithdrawals) FindByID(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error) {
	w, ok := r.f.withdrawals[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (r *fakeWithdrawals) Create(ctx context.Context, w *models.WithdrawalRequest) error {
	ensureID(&w.ID)
	r.f.withdrawals[w.ID] = w
	return nil
}

func (r *fakeWithdrawals) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.WithdrawalRequest, int64, error) {
	var out []models.WithdrawalRequest
	for _, w := range r.f.withdrawals {
		if w.UserID == userID {
			out = append(out, *w)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeWithdrawals) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	w, ok := r.f.withdrawals[id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "status":
			w.Status = v.(string)
		case "rejection_reason":
			w.RejectionReason = v.(string)
		default:
			panic(fmt.Sprintf("fake withdrawals: unhandled field %q", k))
		}
	}
	return nil
}

// fakeCartStore is an in-memory CartStore.
type fakeCartStore struct {
	carts        map[uuid.UUID]*models.Cart
	removedItems map[uuid.UUID][]uuid.UUID
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{
		carts:        make(map[uuid.UUID]*models.Cart),
		removedItems: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (f *fakeCartStore) Get(ctx context.Context, customerID uuid.UUID) (*models.Cart, error) {
	cart, ok := f.carts[customerID]
	if !ok {
		return &models.Cart{}, nil
	}
	cp := models.Cart{Items: append([]models.CartItem(nil), cart.Items...)}
	return &cp, nil
}

func (f *fakeCartStore) Save(ctx context.Context, customerID uuid.UUID, cart *models.Cart) error {
	f.carts[customerID] = cart
	return nil
}

func (f *fakeCartStore) RemoveItems(ctx context.Context, customerID uuid.UUID, productIDs []uuid.UUID) error {
	f.removedItems[customerID] = append(f.removedItems[customerID], productIDs...)
	cart, ok := f.carts[customerID]
	if !ok {
		return nil
	}
	drop := make(map[uuid.UUID]bool, len(productIDs))
	for _, id := range productIDs {
		drop[id] = true
	}
	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if !drop[item.ProductID] {
			kept = append(kept, item)
		}
	}
	cart.Items = kept
	return nil
}

func (f *fakeCartStore) Clear(ctx context.Context, customerID uuid.UUID) error {
	delete(f.carts, customerID)
	return nil
}

// fakeCarrier is a scriptable CarrierGateway.
type fakeCarrier struct {
	createFn  func(req CarrierOrderRequest) (*CarrierOrderResult, error)
	detailFn  func(orderCode string) (*CarrierOrderDetail, error)
	resolveFn func(q AddressQuery) (AddressCodes, error)
	cancels   []string
}

func (f *fakeCarrier) CreateOrder(ctx context.Context, req CarrierOrderRequest) (*CarrierOrderResult, error) {
	if f.createFn != nil {
		return f.createFn(req)
	}
	return &CarrierOrderResult{OrderCode: "GHN-TEST", SortCode: "S1", TotalFee: 22000}, nil
}

func (f *fakeCarrier) OrderDetail(ctx context.Context, orderCode string) (*CarrierOrderDetail, error) {
	if f.detailFn != nil {
		return f.detailFn(orderCode)
	}
	return &CarrierOrderDetail{OrderCode: orderCode, Status: "ready_to_pick"}, nil
}

func (f *fakeCarrier) CancelOrder(ctx context.Context, orderCode string) error {
	f.cancels = append(f.cancels, orderCode)
	return nil
}

func (f *fakeCarrier) ResolveAddressCodes(ctx context.Context, q AddressQuery) (AddressCodes, error) {
	if f.resolveFn != nil {
		return f.resolveFn(q)
	}
	return AddressCodes{}, nil
}

// fakeNotifier records alerts.
type fakeNotifier struct {
	interventions []string
	received      []string
	failed        []uuid.UUID
}

func (f *fakeNotifier) NotifyManualIntervention(paymentCode, reason string) {
	f.interventions = append(f.interventions, paymentCode+": "+reason)
}

func (f *fakeNotifier) NotifyPaymentReceived(paymentCode string, amount float64) {
	f.received = append(f.received, paymentCode)
}

func (f *fakeNotifier) NotifyDeliveryFailed(orderID uuid.UUID, reason string) {
	f.failed = append(f.failed, orderID)
}
