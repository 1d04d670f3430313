package booking

import (
	"context"
	"errors"
	"fmt"

	doctorRepo "medibook/database/repository/doctor"
	"medibook/utils"
)

// SlotLedger is the single arbiter of slot availability. Reserve/release are
// backed by atomic conditional updates on the doctor's booked set; callers
// must never mutate that set any other way.
type SlotLedger interface {
	// TryReserve atomically claims (doctorID, date, slotTime). Exactly one
	// of N concurrent callers succeeds; the rest get a slot conflict.
	TryReserve(ctx context.Context, doctorID, date, slotTime string) error

	// Release hands the slot back. Idempotent: releasing a free slot is a
	// no-op, not an error.
	Release(ctx context.Context, doctorID, date, slotTime string)

	// Available returns the free time labels for the date: the fixed slot
	// universe minus the doctor's booked set. The answer is advisory; a
	// subsequent TryReserve may still conflict.
	Available(ctx context.Context, doctorID, date string) ([]string, error)
}

// DefaultSlotLedger implements SlotLedger on top of the doctor repository.
type DefaultSlotLedger struct {
	Repo doctorRepo.DoctorRepository
}

func (l *DefaultSlotLedger) TryReserve(ctx context.Context, doctorID, date, slotTime string) error {
	err := l.Repo.ReserveSlot(ctx, doctorID, date, slotTime)
	if errors.Is(err, doctorRepo.ErrSlotTaken) {
		return NewSlotConflictError(fmt.Sprintf("slot %s on %s is already booked", slotTime, date))
	}
	if errors.Is(err, doctorRepo.ErrNotFound) {
		return NewNotFoundError("doctor not found")
	}
	if err != nil {
		return fmt.Errorf("slot reservation failed: %w", err)
	}
	return nil
}

// Release logs failures instead of surfacing them: it only runs as a
// compensating or cleanup action where the caller has nothing useful to do
// with the error.
func (l *DefaultSlotLedger) Release(ctx context.Context, doctorID, date, slotTime string) {
	if err := l.Repo.ReleaseSlot(ctx, doctorID, date, slotTime); err != nil {
		utils.GetLogger().Sugar().Errorf("slot release failed for doctor %s %s %s: %v", doctorID, date, slotTime, err)
	}
}

func (l *DefaultSlotLedger) Available(ctx context.Context, doctorID, date string) ([]string, error) {
	booked, err := l.Repo.BookedSlots(ctx, doctorID, date)
	if errors.Is(err, doctorRepo.ErrNotFound) {
		return nil, NewNotFoundError("doctor not found")
	}
	if err != nil {
		return nil, fmt.Errorf("availability lookup failed: %w", err)
	}

	taken := make(map[string]struct{}, len(booked))
	for _, t := range booked {
		taken[t] = struct{}{}
	}

	free := make([]string, 0, len(utils.SlotTimes))
	for _, t := range utils.SlotTimes {
		if _, ok := taken[t]; !ok {
			free = append(free, t)
		}
	}
	return free, nil
}
