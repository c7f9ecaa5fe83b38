package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/lumera/internal/models"
)

func TestCreateRecordValidation(t *testing.T) {
	f := newFakeStore()
	svc := newTestPaymentService(f, newFakeCartStore(), &fakeNotifier{})
	customer := f.addUser(&models.User{Balance: 0})

	cases := []struct {
		name string
		in   CreatePaymentInput
		want error
	}{
		{
			name: "unknown purpose",
			in:   CreatePaymentInput{CustomerID: customer.ID, Purpose: "GIFT", Method: models.PaymentMethodBanking, Amount: 50000},
			want: ErrInvalidInput,
		},
		{
			name: "unknown method",
			in:   CreatePaymentInput{CustomerID: customer.ID, Purpose: models.PurposeTopup, Method: "crypto", Amount: 50000},
			want: ErrInvalidInput,
		},
		{
			name: "zero amount",
			in:   CreatePaymentInput{CustomerID: customer.ID, Purpose: models.PurposeTopup, Method: models.PaymentMethodBanking, Amount: 0},
			want: ErrInvalidInput,
		},
		{
			name: "topup below minimum",
			in:   CreatePaymentInput{CustomerID: customer.ID, Purpose: models.PurposeTopup, Method: models.PaymentMethodBanking, Amount: 5000},
			want: ErrAmountOutOfRange,
		},
		{
			name: "topup above maximum",
			in:   CreatePaymentInput{CustomerID: customer.ID, Purpose: models.PurposeTopup, Method: models.PaymentMethodBanking, Amount: 60_000_000},
			want: ErrAmountOutOfRange,
		},
		{
			name: "booking without appointment",
			in:   CreatePaymentInput{CustomerID: customer.ID, Purpose: models.PurposeBooking, Method: models.PaymentMethodBanking, Amount: 150000},
			want: ErrInvalidInput,
		},
		{
			name: "subscription without plan",
			in:   CreatePaymentInput{CustomerID: customer.ID, Purpose: models.PurposeSubscription, Method: models.PaymentMethodBanking, Amount: 1000000},
			want: ErrInvalidInput,
		},
		{
			name: "withdraw without request",
			in:   CreatePaymentInput{CustomerID: customer.ID, Purpose: models.PurposeWithdraw, Method: models.PaymentMethodBanking, Amount: 200000},
			want: ErrInvalidInput,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateRecord(context.Background(), tc.in)
			require.ErrorIs(t, err, tc.want)
		})
	}
	require.Empty(t, f.payments)
}

func TestCreateRecordRejectsInactivePlan(t *testing.T) {
	f := newFakeStore()
	svc := newTestPaymentService(f, newFakeCartStore(), &fakeNotifier{})
	customer := f.addUser(&models.User{})
	plan := f.addPlan(&models.SubscriptionPlan{PlanName: "Glow Quarterly", Price: 1200000, IsActive: false})

	_, err := svc.CreateRecord(context.Background(), CreatePaymentInput{
		CustomerID: customer.ID,
		Purpose:    models.PurposeSubscription,
		Method:     models.PaymentMethodBanking,
		Amount:     plan.Price,
		PlanID:     &plan.ID,
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateRecordBankingTopup(t *testing.T) {
	f := newFakeStore()
	svc := newTestPaymentService(f, newFakeCartStore(), &fakeNotifier{})
	customer := f.addUser(&models.User{})

	p, err := svc.CreateRecord(context.Background(), CreatePaymentInput{
		CustomerID: customer.ID,
		Purpose:    models.PurposeTopup,
		Method:     models.PaymentMethodBanking,
		Amount:     100000,
	})
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusPending, p.Status)
	require.True(t, len(p.PaymentCode) > 3 && p.PaymentCode[:3] == "LMT")
	require.NotNil(t, p.ExpiredAt)
	require.True(t, p.ExpiredAt.After(time.Now()))

	instr := svc.Instructions(p)
	require.Equal(t, "VCB", instr.BankName)
	require.Equal(t, p.PaymentCode, instr.TransferContent)
	require.Contains(t, instr.QRCodeURL, p.PaymentCode)
}

func TestCreateRecordLinksAppointment(t *testing.T) {
	f := newFakeStore()
	svc := newTestPaymentService(f, newFakeCartStore(), &fakeNotifier{})
	customer := f.addUser(&models.User{})
	slot := f.addSlot(&models.AvailabilitySlot{Status: models.SlotStatusPending, StartTime: time.Now().Add(48 * time.Hour)})
	appt := f.addAppointment(&models.Appointment{
		CustomerID: customer.ID,
		SlotID:     slot.ID,
		Status:     models.AppointmentStatusPendingPayment,
	})

	p, err := svc.CreateRecord(context.Background(), CreatePaymentInput{
		CustomerID:    customer.ID,
		Purpose:       models.PurposeBooking,
		Method:        models.PaymentMethodBanking,
		Amount:        250000,
		AppointmentID: &appt.ID,
	})
	require.NoError(t, err)
	require.Equal(t, p.ID, *f.appointments[appt.ID].PaymentID)
}

func TestExpirePendingSweep(t *testing.T) {
	f := newFakeStore()
	svc := newTestPaymentService(f, newFakeCartStore(), &fakeNotifier{})
	customer := f.addUser(&models.User{})

	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(10 * time.Minute)

	dead := f.addPayment(&models.Payment{
		PaymentCode: GeneratePaymentCode(models.PurposeTopup),
		Purpose:     models.PurposeTopup,
		Method:      models.PaymentMethodBanking,
		Status:      models.PaymentStatusPending,
		Amount:      100000,
		CustomerID:  customer.ID,
		ExpiredAt:   &past,
	})
	alive := f.addPayment(&models.Payment{
		PaymentCode: GeneratePaymentCode(models.PurposeTopup),
		Purpose:     models.PurposeTopup,
		Method:      models.PaymentMethodBanking,
		Status:      models.PaymentStatusPending,
		Amount:      100000,
		CustomerID:  customer.ID,
		ExpiredAt:   &future,
	})
	settled := f.addPayment(&models.Payment{
		PaymentCode: GeneratePaymentCode(models.PurposeTopup),
		Purpose:     models.PurposeTopup,
		Method:      models.PaymentMethodBanking,
		Status:      models.PaymentStatusCompleted,
		Amount:      100000,
		CustomerID:  customer.ID,
		ExpiredAt:   &past,
	})

	expired, err := svc.ExpirePending(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, expired)
	require.Equal(t, models.PaymentStatusExpired, f.payments[dead.ID].Status)
	require.Equal(t, models.PaymentStatusPending, f.payments[alive.ID].Status)
	require.Equal(t, models.PaymentStatusCompleted, f.payments[settled.ID].Status)
}

func TestExpirePendingCancelsBooking(t *testing.T) {
	f := newFakeStore()
	svc := newTestPaymentService(f, newFakeCartStore(), &fakeNotifier{})
	customer := f.addUser(&models.User{})

	slot := f.addSlot(&models.AvailabilitySlot{Status: models.SlotStatusPending, StartTime: time.Now().Add(24 * time.Hour)})
	past := time.Now().Add(-time.Minute)
	p := f.addPayment(&models.Payment{
		PaymentCode: GeneratePaymentCode(models.PurposeBooking),
		Purpose:     models.PurposeBooking,
		Method:      models.PaymentMethodBanking,
		Status:      models.PaymentStatusPending,
		Amount:      250000,
		CustomerID:  customer.ID,
		ExpiredAt:   &past,
	})
	appt := f.addAppointment(&models.Appointment{
		CustomerID: customer.ID,
		SlotID:     slot.ID,
		Status:     models.AppointmentStatusPendingPayment,
		PaymentID:  &p.ID,
	})

	expired, err := svc.ExpirePending(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, expired)
	require.Equal(t, models.PaymentStatusExpired, f.payments[p.ID].Status)
	require.Equal(t, models.AppointmentStatusCancelled, f.appointments[appt.ID].Status)
	require.Equal(t, models.SlotStatusAvailable, f.slots[slot.ID].Status)
}

func TestExpirePendingRejectsStalePayout(t *testing.T) {
	f := newFakeStore()
	svc := newTestPaymentService(f, newFakeCartStore(), &fakeNotifier{})
	specialist := f.addUser(&models.User{Role: models.RoleSpecialist, Balance: 0})

	wd := f.addWithdrawal(&models.WithdrawalRequest{
		UserID: specialist.ID,
		Amount: 500000,
		Status: models.WithdrawalStatusVerified,
	})
	past := time.Now().Add(-time.Minute)
	p := f.addPayment(&models.Payment{
		PaymentCode:  GeneratePaymentCode(models.PurposeWithdraw),
		Purpose:      models.PurposeWithdraw,
		Method:       models.PaymentMethodBanking,
		Status:       models.PaymentStatusPending,
		Amount:       wd.Amount,
		CustomerID:   specialist.ID,
		WithdrawalID: &wd.ID,
		ExpiredAt:    &past,
	})

	expired, err := svc.ExpirePending(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, expired)
	require.Equal(t, models.PaymentStatusExpired, f.payments[p.ID].Status)
	require.Equal(t, models.WithdrawalStatusRejected, f.withdrawals[wd.ID].Status)
	require.NotEmpty(t, f.withdrawals[wd.ID].RejectionReason)
	// The hold taken at request time comes back.
	require.Equal(t, float64(500000), f.users[specialist.ID].Balance)
}

func TestRefundTopup(t *testing.T) {
	f := newFakeStore()
	svc := newTestPaymentService(f, newFakeCartStore(), &fakeNotifier{})
	customer := f.addUser(&models.User{Balance: 100000})

	p := f.addPayment(&models.Payment{
		PaymentCode: GeneratePaymentCode(models.PurposeTopup),
		Purpose:     models.PurposeTopup,
		Method:      models.PaymentMethodBanking,
		Status:      models.PaymentStatusCompleted,
		Amount:      100000,
		PaidAmount:  100000,
		CustomerID:  customer.ID,
	})

	require.NoError(t, svc.RefundTopup(context.Background(), p.ID))
	require.Equal(t, models.PaymentStatusRefunded, f.payments[p.ID].Status)
	require.Equal(t, float64(0), f.users[customer.ID].Balance)

	// Already refunded.
	require.ErrorIs(t, svc.RefundTopup(context.Background(), p.ID), ErrInvalidInput)
}

func TestRefundTopupRejectsNonTopup(t *testing.T) {
	f := newFakeStore()
	svc := newTestPaymentService(f, newFakeCartStore(), &fakeNotifier{})
	customer := f.addUser(&models.User{Balance: 100000})

	p := f.addPayment(&models.Payment{
		PaymentCode: GeneratePaymentCode(models.PurposeOrder),
		Purpose:     models.PurposeOrder,
		Method:      models.PaymentMethodWallet,
		Status:      models.PaymentStatusCompleted,
		Amount:      100000,
		CustomerID:  customer.ID,
	})
	require.ErrorIs(t, svc.RefundTopup(context.Background(), p.ID), ErrInvalidInput)
	require.Equal(t, float64(100000), f.users[customer.ID].Balance)
}
