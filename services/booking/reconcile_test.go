package booking

import (
	"context"
	"testing"
	"time"

	"medibook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newReconcileFixture(t *testing.T) (*DefaultReconciliationService, *DefaultBookingService, *fakeDoctorRepo, *fakeAppointmentRepo, *fakeGateway) {
	t.Helper()
	svc, docRepo, apptRepo, gateway := newTestService(newTestDoctor())
	rec := &DefaultReconciliationService{
		Appointments: apptRepo,
		Ledger:       svc.Ledger,
		Gateway:      gateway,
		Logger:       zap.NewNop(),
	}
	return rec, svc, docRepo, apptRepo, gateway
}

// bookPending books an appointment and walks it to payment_pending.
func bookPending(t *testing.T, svc *DefaultBookingService) *models.Appointment {
	t.Helper()
	ctx := context.Background()
	appt, err := svc.BookAppointment(ctx, "patient-a",
		models.BookingRequest{DoctorID: "doc-1", SlotDate: testDate, SlotTime: testTime})
	require.NoError(t, err)
	_, err = svc.RequestPayment(ctx, appt.ID, "patient-a")
	require.NoError(t, err)
	return appt
}

func TestConfirmPayment_Succeeded(t *testing.T) {
	rec, svc, docRepo, apptRepo, _ := newReconcileFixture(t)
	ctx := context.Background()
	appt := bookPending(t, svc)

	require.NoError(t, rec.ConfirmPayment(ctx, appt.ID, models.PaymentSucceeded, models.SourceProviderWebhook))

	stored, err := apptRepo.GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, stored.Status)
	assert.True(t, docRepo.booked("doc-1", testDate, testTime))
}

func TestConfirmPayment_DoubleDeliveryIsIdempotent(t *testing.T) {
	rec, svc, docRepo, apptRepo, _ := newReconcileFixture(t)
	ctx := context.Background()
	appt := bookPending(t, svc)

	require.NoError(t, rec.ConfirmPayment(ctx, appt.ID, models.PaymentSucceeded, models.SourceProviderWebhook))
	// Providers redeliver webhooks; the second apply must change nothing.
	require.NoError(t, rec.ConfirmPayment(ctx, appt.ID, models.PaymentSucceeded, models.SourceProviderWebhook))

	stored, err := apptRepo.GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, stored.Status)
	assert.True(t, docRepo.booked("doc-1", testDate, testTime))
}

func TestConfirmPayment_Failed(t *testing.T) {
	rec, svc, docRepo, apptRepo, _ := newReconcileFixture(t)
	ctx := context.Background()
	appt := bookPending(t, svc)

	require.NoError(t, rec.ConfirmPayment(ctx, appt.ID, models.PaymentFailed, models.SourceProviderWebhook))

	stored, err := apptRepo.GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaymentFailed, stored.Status)
	assert.False(t, docRepo.booked("doc-1", testDate, testTime))

	// Redelivered failure is a no-op; the slot is not released twice.
	require.NoError(t, rec.ConfirmPayment(ctx, appt.ID, models.PaymentFailed, models.SourceProviderWebhook))

	// The freed slot is bookable again.
	_, err = svc.BookAppointment(ctx, "patient-b",
		models.BookingRequest{DoctorID: "doc-1", SlotDate: testDate, SlotTime: testTime})
	assert.NoError(t, err)
}

func TestConfirmPayment_RejectsClientClaim(t *testing.T) {
	rec, svc, _, apptRepo, _ := newReconcileFixture(t)
	ctx := context.Background()
	appt := bookPending(t, svc)

	err := rec.ConfirmPayment(ctx, appt.ID, models.PaymentSucceeded, models.SourceClientClaim)
	assert.Equal(t, CodeAuthorization, CodeOf(err))

	stored, err := apptRepo.GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaymentPending, stored.Status)
}

func TestConfirmPayment_InvalidFromReserved(t *testing.T) {
	rec, svc, _, _, _ := newReconcileFixture(t)
	ctx := context.Background()

	appt, err := svc.BookAppointment(ctx, "patient-a",
		models.BookingRequest{DoctorID: "doc-1", SlotDate: testDate, SlotTime: testTime})
	require.NoError(t, err)

	err = rec.ConfirmPayment(ctx, appt.ID, models.PaymentSucceeded, models.SourceProviderWebhook)
	assert.Equal(t, CodeInvalidTransition, CodeOf(err))
}

func TestConfirmPayment_UnknownAppointment(t *testing.T) {
	rec, _, _, _, _ := newReconcileFixture(t)

	err := rec.ConfirmPayment(context.Background(), "no-such", models.PaymentSucceeded, models.SourceProviderWebhook)
	assert.Equal(t, CodeNotFound, CodeOf(err))
}

func TestVerifyAndConfirm(t *testing.T) {
	rec, svc, _, _, gateway := newReconcileFixture(t)
	ctx := context.Background()
	appt := bookPending(t, svc)

	// Session still open at the provider: status unchanged.
	gateway.final = false
	status, err := rec.VerifyAndConfirm(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaymentPending, status)

	gateway.final = true
	gateway.outcome = models.PaymentSucceeded
	status, err = rec.VerifyAndConfirm(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, status)
}

func TestVerifyAndConfirm_NoPaymentRequested(t *testing.T) {
	rec, svc, _, _, _ := newReconcileFixture(t)
	ctx := context.Background()

	appt, err := svc.BookAppointment(ctx, "patient-a",
		models.BookingRequest{DoctorID: "doc-1", SlotDate: testDate, SlotTime: testTime})
	require.NoError(t, err)

	_, err = rec.VerifyAndConfirm(ctx, appt.ID)
	assert.Equal(t, CodeValidation, CodeOf(err))
}

func TestExpireStale(t *testing.T) {
	rec, svc, docRepo, apptRepo, _ := newReconcileFixture(t)
	ctx := context.Background()

	staleAppt, err := svc.BookAppointment(ctx, "patient-a",
		models.BookingRequest{DoctorID: "doc-1", SlotDate: testDate, SlotTime: testTime})
	require.NoError(t, err)
	freshAppt, err := svc.BookAppointment(ctx, "patient-b",
		models.BookingRequest{DoctorID: "doc-1", SlotDate: testDate, SlotTime: "09:30 AM"})
	require.NoError(t, err)

	// Age the first hold past its deadline.
	apptRepo.mu.Lock()
	apptRepo.appts[staleAppt.ID].ReservationExpiry = time.Now().Add(-time.Minute)
	apptRepo.mu.Unlock()

	expired, err := rec.ExpireStale(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	stored, err := apptRepo.GetByID(ctx, staleAppt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, stored.Status)
	assert.False(t, docRepo.booked("doc-1", testDate, testTime))

	fresh, err := apptRepo.GetByID(ctx, freshAppt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReserved, fresh.Status)
	assert.True(t, docRepo.booked("doc-1", testDate, "09:30 AM"))
}

func TestExpireStale_PaidAppointmentsAreNeverSwept(t *testing.T) {
	rec, svc, docRepo, apptRepo, _ := newReconcileFixture(t)
	ctx := context.Background()
	appt := bookPending(t, svc)

	require.NoError(t, rec.ConfirmPayment(ctx, appt.ID, models.PaymentSucceeded, models.SourceProviderWebhook))

	apptRepo.mu.Lock()
	apptRepo.appts[appt.ID].ReservationExpiry = time.Now().Add(-time.Hour)
	apptRepo.mu.Unlock()

	expired, err := rec.ExpireStale(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, expired)

	stored, err := apptRepo.GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, stored.Status)
	assert.True(t, docRepo.booked("doc-1", testDate, testTime))
}

func TestExpireStale_SweepsPaymentPendingHolds(t *testing.T) {
	rec, svc, docRepo, apptRepo, _ := newReconcileFixture(t)
	ctx := context.Background()
	appt := bookPending(t, svc)

	apptRepo.mu.Lock()
	apptRepo.appts[appt.ID].ReservationExpiry = time.Now().Add(-time.Minute)
	apptRepo.mu.Unlock()

	expired, err := rec.ExpireStale(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, expired)
	assert.False(t, docRepo.booked("doc-1", testDate, testTime))
}
