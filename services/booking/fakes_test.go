package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	appointmentRepo "medibook/database/repository/appointment"
	doctorRepo "medibook/database/repository/doctor"
	"medibook/models"
)

// fakeDoctorRepo implements doctorRepo.DoctorRepository in memory with the
// same atomicity contract as the Mongo implementation: reserve is a single
// guarded mutation, release is idempotent.
type fakeDoctorRepo struct {
	mu      sync.Mutex
	doctors map[string]*models.Doctor
}

func newFakeDoctorRepo(docs ...*models.Doctor) *fakeDoctorRepo {
	f := &fakeDoctorRepo{doctors: make(map[string]*models.Doctor)}
	for _, d := range docs {
		f.doctors[d.ID] = d
	}
	return f
}

func (f *fakeDoctorRepo) Insert(ctx context.Context, doc *models.Doctor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.doctors[doc.ID] = doc
	return nil
}

func (f *fakeDoctorRepo) GetByID(ctx context.Context, id string) (*models.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.doctors[id]
	if !ok {
		return nil, doctorRepo.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDoctorRepo) GetByEmail(ctx context.Context, email string) (*models.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.doctors {
		if d.Email == email {
			cp := *d
			return &cp, nil
		}
	}
	return nil, doctorRepo.ErrNotFound
}

func (f *fakeDoctorRepo) List(ctx context.Context) ([]models.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Doctor, 0, len(f.doctors))
	for _, d := range f.doctors {
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeDoctorRepo) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.doctors[id]
	if !ok {
		return doctorRepo.ErrNotFound
	}
	if fee, ok := fields["fee"].(float64); ok {
		d.Fee = fee
	}
	if avail, ok := fields["available"].(bool); ok {
		d.Available = avail
	}
	return nil
}

func (f *fakeDoctorRepo) SetAvailability(ctx context.Context, id string, available bool) error {
	return f.UpdateFields(ctx, id, map[string]interface{}{"available": available})
}

func (f *fakeDoctorRepo) ReserveSlot(ctx context.Context, id, date, slotTime string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.doctors[id]
	if !ok {
		return doctorRepo.ErrNotFound
	}
	for _, t := range d.SlotsBooked[date] {
		if t == slotTime {
			return doctorRepo.ErrSlotTaken
		}
	}
	if d.SlotsBooked == nil {
		d.SlotsBooked = make(map[string][]string)
	}
	d.SlotsBooked[date] = append(d.SlotsBooked[date], slotTime)
	return nil
}

func (f *fakeDoctorRepo) ReleaseSlot(ctx context.Context, id, date, slotTime string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.doctors[id]
	if !ok {
		return nil
	}
	times := d.SlotsBooked[date]
	for i, t := range times {
		if t == slotTime {
			d.SlotsBooked[date] = append(times[:i], times[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeDoctorRepo) BookedSlots(ctx context.Context, id, date string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.doctors[id]
	if !ok {
		return nil, doctorRepo.ErrNotFound
	}
	return append([]string(nil), d.SlotsBooked[date]...), nil
}

func (f *fakeDoctorRepo) RebuildSlotCalendar(ctx context.Context, id string) error {
	return errors.New("not supported by fake")
}

func (f *fakeDoctorRepo) booked(id, date, slotTime string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.doctors[id]
	if !ok {
		return false
	}
	for _, t := range d.SlotsBooked[date] {
		if t == slotTime {
			return true
		}
	}
	return false
}

// fakeAppointmentRepo implements appointmentRepo.AppointmentRepository with
// compare-and-set Transition semantics matching the Mongo implementation.
type fakeAppointmentRepo struct {
	mu         sync.Mutex
	appts      map[string]*models.Appointment
	failInsert bool
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appts: make(map[string]*models.Appointment)}
}

func (f *fakeAppointmentRepo) Insert(ctx context.Context, appt *models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsert {
		return errors.New("simulated insert failure")
	}
	cp := *appt
	f.appts[appt.ID] = &cp
	return nil
}

func (f *fakeAppointmentRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.appts[id]
	if !ok {
		return nil, appointmentRepo.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAppointmentRepo) ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	return f.list(func(a *models.Appointment) bool { return a.PatientID == patientID })
}

func (f *fakeAppointmentRepo) ListByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	return f.list(func(a *models.Appointment) bool { return a.DoctorID == doctorID })
}

func (f *fakeAppointmentRepo) ListAll(ctx context.Context) ([]models.Appointment, error) {
	return f.list(func(*models.Appointment) bool { return true })
}

func (f *fakeAppointmentRepo) list(match func(*models.Appointment) bool) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Appointment
	for _, a := range f.appts {
		if match(a) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) Transition(ctx context.Context, id string, from []models.AppointmentStatus, to models.AppointmentStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.appts[id]
	if !ok {
		return false, nil
	}
	matched := false
	for _, s := range from {
		if a.Status == s {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}
	a.Status = to
	a.Cancelled = to == models.StatusCancelled
	a.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeAppointmentRepo) SetPaymentRef(ctx context.Context, id, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.appts[id]
	if !ok {
		return appointmentRepo.ErrNotFound
	}
	a.PaymentRef = ref
	return nil
}

func (f *fakeAppointmentRepo) FindExpired(ctx context.Context, now time.Time, limit int64) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Appointment
	for _, a := range f.appts {
		if (a.Status == models.StatusReserved || a.Status == models.StatusPaymentPending) &&
			a.ReservationExpiry.Before(now) {
			out = append(out, *a)
		}
		if int64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) CountByStatus(ctx context.Context) (map[models.AppointmentStatus]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[models.AppointmentStatus]int64)
	for _, a := range f.appts {
		counts[a.Status]++
	}
	return counts, nil
}

// fakeGateway implements PaymentGateway with programmable outcomes.
type fakeGateway struct {
	mu       sync.Mutex
	sessions int
	outcome  models.PaymentOutcome
	final    bool
	fail     bool
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail {
		return nil, NewUpstreamPaymentError("provider down")
	}
	g.sessions++
	ref := fmt.Sprintf("cs_test_%d", g.sessions)
	return &models.CheckoutSession{Reference: ref, URL: "https://checkout.example/" + ref}, nil
}

func (g *fakeGateway) SessionOutcome(ctx context.Context, reference string) (models.PaymentOutcome, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail {
		return "", false, NewUpstreamPaymentError("provider down")
	}
	return g.outcome, g.final, nil
}
