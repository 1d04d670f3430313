package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"medibook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testDate = "2024-06-10"
	testTime = "09:00 AM"
)

func newTestDoctor() *models.Doctor {
	return &models.Doctor{
		ID:         "doc-1",
		Name:       "Ada Okafor",
		Email:      "ada@clinic.test",
		Speciality: "Dermatologist",
		Fee:        500,
		Available:  true,
	}
}

func newTestService(docs ...*models.Doctor) (*DefaultBookingService, *fakeDoctorRepo, *fakeAppointmentRepo, *fakeGateway) {
	docRepo := newFakeDoctorRepo(docs...)
	apptRepo := newFakeAppointmentRepo()
	gateway := &fakeGateway{}
	svc := &DefaultBookingService{
		Doctors:        docRepo,
		Appointments:   apptRepo,
		Ledger:         &DefaultSlotLedger{Repo: docRepo},
		Gateway:        gateway,
		Logger:         zap.NewNop(),
		ReservationTTL: 30 * time.Minute,
		Currency:       "usd",
		SuccessURL:     "https://app.test/success",
		CancelURL:      "https://app.test/cancel",
	}
	return svc, docRepo, apptRepo, gateway
}

func TestBookAppointment_Success(t *testing.T) {
	svc, docRepo, _, _ := newTestService(newTestDoctor())

	appt, err := svc.BookAppointment(context.Background(), "patient-a",
		models.BookingRequest{DoctorID: "doc-1", SlotDate: testDate, SlotTime: testTime})
	require.NoError(t, err)

	assert.Equal(t, models.StatusReserved, appt.Status)
	assert.Equal(t, 500.0, appt.Amount)
	assert.Equal(t, "patient-a", appt.PatientID)
	assert.False(t, appt.Cancelled)
	assert.True(t, appt.ReservationExpiry.After(appt.ReservedAt))
	assert.True(t, docRepo.booked("doc-1", testDate, testTime))
}

func TestBookAppointment_SlotConflict(t *testing.T) {
	svc, _, _, _ := newTestService(newTestDoctor())
	ctx := context.Background()

	_, err := svc.BookAppointment(ctx, "patient-a",
		models.BookingRequest{DoctorID: "doc-1", SlotDate: testDate, SlotTime: testTime})
	require.NoError(t, err)

	_, err = svc.BookAppointment(ctx, "patient-b",
		models.BookingRequest{DoctorID: "doc-1", SlotDate: testDate, SlotTime: testTime})
	require.Error(t, err)
	assert.Equal(t, CodeSlotConflict, CodeOf(err))

	// A different slot on the same date books independently.
	_, err = svc.BookAppointment(ctx, "patient-c",
		models.BookingRequest{DoctorID: "doc-1", SlotDate: testDate, SlotTime: "09:30 AM"})
	assert.NoError(t, err)
}

func TestBookAppointment_ConcurrentSingleWinner(t *testing.T) {
	svc, _, _, _ := newTestService(newTestDoctor())
	const bookers = 20

	var wg sync.WaitGroup
	results := make(chan error, bookers)
	for i := 0; i < bookers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.BookAppointment(context.Background(), "patient-a",
				models.BookingRequest{DoctorID: "doc-1", SlotDate: testDate, SlotTime: testTime})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins, conflicts := 0, 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case CodeOf(err) == CodeSlotConflict:
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, bookers-1, conflicts)
}

func TestBookAppointment_Validation(t *testing.T) {
	svc, _, _, _ := newTestService(newTestDoctor())
	ctx := context.Background()

	_, err := svc.BookAppointment(ctx, "patient-a",
		models.BookingRequest{DoctorID: "doc-1", SlotDate: "10/06/2024", SlotTime: testTime})
	assert.Equal(t, CodeValidation, CodeOf(err))

	_, err = svc.BookAppointment(ctx, "patient-a",
		models.BookingRequest{DoctorID: "doc-1", SlotDate: testDate, SlotTime: "09:07 AM"})
	assert.Equal(t, CodeValidation, CodeOf(err))

	_, err = svc.BookAppointment(ctx, "patient-a",
		models.BookingRequest{DoctorID: "ghost", SlotDate: testDate, SlotTime: testTime})
	assert.Equal(t, CodeNotFound, CodeOf(err))
}

func TestBookAppointment_DoctorUnavailable(t *testing.T) {
	doc := newTestDoctor()
	doc.Available = false
	svc, docRepo, _, _ := newTestService(doc)

	_, err := svc.BookAppointment(context.Background(), "patient-a",
		models.BookingRequest{DoctorID: "doc-1", SlotDate: testDate, SlotTime: testTime})
	assert.Equal(t, CodeValidation, CodeOf(err))
	assert.False(t, docRepo.booked("doc-1", testDate, testTime))
}

func TestBookAppointment_CompensatesOnInsertFailure(t *testing.T) {
	svc, docRepo, apptRepo, _ := newTestService(newTestDoctor())
	apptRepo.failInsert = true

	_, err := svc.BookAppointment(context.Background(), "patient-a",
		models.BookingRequest{DoctorID: "doc-1", SlotDate: testDate, SlotTime: testTime})
	require.Error(t, err)

	// The compensating release must hand the slot back.
	assert.False(t, docRepo.booked("doc-1", testDate, testTime))

	apptRepo.failInsert = false
	_, err = svc.BookAppointment(context.Background(), "patient-b",
		models.BookingRequest{DoctorID: "doc-1", SlotDate: testDate, SlotTime: testTime})
	assert.NoError(t, err)
}

func TestFeeImmutableAfterBooking(t *testing.T) {
	svc, docRepo, apptRepo, _ := newTestService(newTestDoctor())
	ctx := context.Background()

	appt, err := svc.BookAppointment(ctx, "patient-a",
		models.BookingRequest{DoctorID: "doc-1", SlotDate: testDate, SlotTime: testTime})
	require.NoError(t, err)

	require.NoError(t, docRepo.UpdateFields(ctx, "doc-1", map[string]interface{}{"fee": 750.0}))

	stored, err := apptRepo.GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, 500.0, stored.Amount)

	// New bookings snapshot the new fee.
	appt2, err := svc.BookAppointment(ctx, "patient-b",
		models.BookingRequest{DoctorID: "doc-1", SlotDate: testDate, SlotTime: "10:00 AM"})
	require.NoError(t, err)
	assert.Equal(t, 750.0, appt2.Amount)
}

func TestCancelReleasesSlotForRebooking(t *testing.T) {
	svc, docRepo, apptRepo, _ := newTestService(newTestDoctor())
	ctx := context.Background()

	appt, err := svc.BookAppointment(ctx, "patient-a",
		models.BookingRequest{DoctorID: "doc-1", SlotDate: testDate, SlotTime: "10:00 AM"})
	require.NoError(t, err)

	require.NoError(t, svc.CancelAppointment(ctx, appt.ID, "patient-a", models.RolePatient))

	stored, err := apptRepo.GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, stored.Status)
	assert.True(t, stored.Cancelled)
	assert.False(t, docRepo.booked("doc-1", testDate, "10:00 AM"))

	// A different patient books the freed slot immediately.
	_, err = svc.BookAppointment(ctx, "patient-b",
		models.BookingRequest{DoctorID: "doc-1", SlotDate: testDate, SlotTime: "10:00 AM"})
	assert.NoError(t, err)
}

func TestCancelAuthorization(t *testing.T) {
	svc, _, _, _ := newTestService(newTestDoctor())
	ctx := context.Background()

	appt, err := svc.BookAppointment(ctx, "patient-a",
		models.BookingRequest{DoctorID: "doc-1", SlotDate: testDate, SlotTime: testTime})
	require.NoError(t, err)

	// A different patient may not cancel.
	err = svc.CancelAppointment(ctx, appt.ID, "patient-b", models.RolePatient)
	assert.Equal(t, CodeAuthorization, CodeOf(err))

	// The doctor may not cancel before payment.
	err = svc.CancelAppointment(ctx, appt.ID, "doc-1", models.RoleDoctor)
	assert.Equal(t, CodeAuthorization, CodeOf(err))

	// The back office may cancel anything live.
	assert.NoError(t, svc.CancelAppointment(ctx, appt.ID, "admin", models.RoleAdmin))

	// Cancelling twice is an invalid transition, not a silent no-op.
	err = svc.CancelAppointment(ctx, appt.ID, "patient-a", models.RolePatient)
	assert.Equal(t, CodeInvalidTransition, CodeOf(err))
}

func TestDoctorCancelAfterPayment(t *testing.T) {
	svc, docRepo, apptRepo, _ := newTestService(newTestDoctor())
	ctx := context.Background()

	appt, err := svc.BookAppointment(ctx, "patient-a",
		models.BookingRequest{DoctorID: "doc-1", SlotDate: testDate, SlotTime: testTime})
	require.NoError(t, err)

	_, err = svc.RequestPayment(ctx, appt.ID, "patient-a")
	require.NoError(t, err)
	applied, err := apptRepo.Transition(ctx, appt.ID,
		[]models.AppointmentStatus{models.StatusPaymentPending}, models.StatusPaid)
	require.NoError(t, err)
	require.True(t, applied)

	require.NoError(t, svc.CancelAppointment(ctx, appt.ID, "doc-1", models.RoleDoctor))
	assert.False(t, docRepo.booked("doc-1", testDate, testTime))
}

func TestCompleteAppointment(t *testing.T) {
	svc, docRepo, apptRepo, _ := newTestService(newTestDoctor())
	ctx := context.Background()

	appt, err := svc.BookAppointment(ctx, "patient-a",
		models.BookingRequest{DoctorID: "doc-1", SlotDate: testDate, SlotTime: testTime})
	require.NoError(t, err)

	// Completing before payment is illegal.
	err = svc.CompleteAppointment(ctx, appt.ID, "doc-1")
	assert.Equal(t, CodeInvalidTransition, CodeOf(err))

	_, err = svc.RequestPayment(ctx, appt.ID, "patient-a")
	require.NoError(t, err)
	applied, err := apptRepo.Transition(ctx, appt.ID,
		[]models.AppointmentStatus{models.StatusPaymentPending}, models.StatusPaid)
	require.NoError(t, err)
	require.True(t, applied)

	// Only the treating doctor completes.
	err = svc.CompleteAppointment(ctx, appt.ID, "doc-2")
	assert.Equal(t, CodeAuthorization, CodeOf(err))

	require.NoError(t, svc.CompleteAppointment(ctx, appt.ID, "doc-1"))
	stored, err := apptRepo.GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)

	// Completion keeps the slot permanently recorded as used.
	assert.True(t, docRepo.booked("doc-1", testDate, testTime))

	// A completed appointment cannot be cancelled.
	err = svc.CancelAppointment(ctx, appt.ID, "patient-a", models.RolePatient)
	assert.Equal(t, CodeInvalidTransition, CodeOf(err))
}

func TestRequestPayment(t *testing.T) {
	svc, _, apptRepo, gateway := newTestService(newTestDoctor())
	ctx := context.Background()

	appt, err := svc.BookAppointment(ctx, "patient-a",
		models.BookingRequest{DoctorID: "doc-1", SlotDate: testDate, SlotTime: testTime})
	require.NoError(t, err)

	// Only the booking patient may request payment.
	_, err = svc.RequestPayment(ctx, appt.ID, "patient-b")
	assert.Equal(t, CodeAuthorization, CodeOf(err))

	sess, err := svc.RequestPayment(ctx, appt.ID, "patient-a")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.URL)

	stored, err := apptRepo.GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaymentPending, stored.Status)
	assert.Equal(t, sess.Reference, stored.PaymentRef)

	// Re-requesting returns a fresh session without a duplicate appointment.
	sess2, err := svc.RequestPayment(ctx, appt.ID, "patient-a")
	require.NoError(t, err)
	assert.NotEqual(t, sess.Reference, sess2.Reference)
	assert.Equal(t, 2, gateway.sessions)

	all, err := apptRepo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRequestPayment_ProviderDown(t *testing.T) {
	svc, _, apptRepo, gateway := newTestService(newTestDoctor())
	ctx := context.Background()

	appt, err := svc.BookAppointment(ctx, "patient-a",
		models.BookingRequest{DoctorID: "doc-1", SlotDate: testDate, SlotTime: testTime})
	require.NoError(t, err)

	gateway.fail = true
	_, err = svc.RequestPayment(ctx, appt.ID, "patient-a")
	assert.Equal(t, CodeUpstreamPayment, CodeOf(err))

	// The appointment stays Reserved; the client may retry.
	stored, err := apptRepo.GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReserved, stored.Status)
}

func TestAvailability(t *testing.T) {
	svc, _, _, _ := newTestService(newTestDoctor())
	ctx := context.Background()

	free, err := svc.Availability(ctx, "doc-1", testDate)
	require.NoError(t, err)
	assert.Len(t, free, 24)
	assert.Contains(t, free, testTime)

	_, err = svc.BookAppointment(ctx, "patient-a",
		models.BookingRequest{DoctorID: "doc-1", SlotDate: testDate, SlotTime: testTime})
	require.NoError(t, err)

	free, err = svc.Availability(ctx, "doc-1", testDate)
	require.NoError(t, err)
	assert.Len(t, free, 23)
	assert.NotContains(t, free, testTime)

	// Other dates are unaffected.
	free, err = svc.Availability(ctx, "doc-1", "2024-06-11")
	require.NoError(t, err)
	assert.Len(t, free, 24)

	_, err = svc.Availability(ctx, "doc-1", "June 10")
	assert.Equal(t, CodeValidation, CodeOf(err))
}
