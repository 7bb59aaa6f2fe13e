package services

import (
	"SalvadoDental/metrics"
	"SalvadoDental/models"
	"SalvadoDental/repositories"
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// ScheduleUpdate carries the fields to change on a weekday entry. Nil
// fields keep their stored value.
type ScheduleUpdate struct {
	Open     *string `json:"open"`
	Close    *string `json:"close"`
	IsClosed *bool   `json:"is_closed"`
}

type ScheduleService struct {
	schedules repositories.ScheduleRepository
	recorder  metrics.Recorder
	publisher EventPublisher
	now       func() time.Time
}

func NewScheduleService(schedules repositories.ScheduleRepository, recorder metrics.Recorder, publisher EventPublisher) *ScheduleService {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &ScheduleService{
		schedules: schedules,
		recorder:  recorder,
		publisher: publisher,
		now:       time.Now,
	}
}

// List returns the weekly schedule, Monday first.
func (s *ScheduleService) List(ctx context.Context) ([]models.ClinicScheduleEntry, error) {
	entries, err := s.schedules.List(ctx)
	if err != nil {
		s.recorder.RecordFailure("list_schedule", "persistence")
		return nil, &PersistenceError{Op: "list schedule", Err: err}
	}
	return entries, nil
}

// UpdateEntry changes the hours or closed flag of one weekday. Hours are
// kept while a day is closed so reopening restores them.
func (s *ScheduleService) UpdateEntry(ctx context.Context, weekdayID int, update ScheduleUpdate) (*models.ClinicScheduleEntry, error) {
	if weekdayID < models.FirstWeekday || weekdayID > models.LastWeekday {
		return nil, s.fail(&ValidationError{Field: "weekday_id", Message: fmt.Sprintf("weekday_id: must be between %d and %d.", models.FirstWeekday, models.LastWeekday)})
	}
	if update.Open == nil && update.Close == nil && update.IsClosed == nil {
		return nil, s.fail(&ValidationError{Message: "at least one of open, close or is_closed is required."})
	}
	if update.Open != nil && !models.ClockPattern.MatchString(*update.Open) {
		return nil, s.fail(&ValidationError{Field: "open", Message: "open: must be a time of day as HH:MM."})
	}
	if update.Close != nil && !models.ClockPattern.MatchString(*update.Close) {
		return nil, s.fail(&ValidationError{Field: "close", Message: "close: must be a time of day as HH:MM."})
	}

	entry, err := s.schedules.GetByID(ctx, weekdayID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, s.fail(&NotFoundError{Resource: "schedule entry", ID: fmt.Sprint(weekdayID)})
	}
	if err != nil {
		return nil, s.fail(&PersistenceError{Op: "get schedule entry", Err: err})
	}

	if update.Open != nil {
		entry.Open = models.NormalizeClock(*update.Open)
	}
	if update.Close != nil {
		entry.Close = models.NormalizeClock(*update.Close)
	}
	if update.IsClosed != nil {
		entry.IsClosed = *update.IsClosed
	}
	if !entry.IsClosed && entry.Open >= entry.Close {
		return nil, s.fail(&ValidationError{Field: "close", Message: fmt.Sprintf("close: %s must be after open %s.", entry.Close, entry.Open)})
	}

	if err := s.schedules.Update(ctx, entry); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, s.fail(&NotFoundError{Resource: "schedule entry", ID: fmt.Sprint(weekdayID)})
		}
		return nil, s.fail(&PersistenceError{Op: "update schedule entry", Err: err})
	}

	s.recorder.RecordScheduleUpdate(weekdayID)
	if s.publisher != nil {
		s.publisher.Publish(models.ChangeEvent{Type: models.EventScheduleUpdated, Schedule: entry, At: s.now().UTC()})
	}
	return entry, nil
}

func (s *ScheduleService) fail(err error) error {
	kind := ErrorKind(err)
	s.recorder.RecordFailure("update_schedule", kind)
	if kind == "persistence" {
		log.Printf("Schedule update failed: %v", err)
	}
	return err
}
