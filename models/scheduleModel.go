package models

import (
	"fmt"
	"regexp"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClinicScheduleEntry holds the opening hours for one weekday. IDs run from
// 1 (Monday) to 7 (Sunday).
type ClinicScheduleEntry struct {
	ID       int    `gorm:"primaryKey;autoIncrement:false;column:id;check:id BETWEEN 1 AND 7" json:"id"`
	Day      string `gorm:"column:day;not null" json:"day"`
	Open     string `gorm:"column:open;not null" json:"open"`
	Close    string `gorm:"column:close;not null" json:"close"`
	IsClosed bool   `gorm:"column:is_closed;not null;default:false" json:"is_closed"`
}

func (ClinicScheduleEntry) TableName() string {
	return "clinic_schedule"
}

const (
	FirstWeekday = 1
	LastWeekday  = 7
)

// ClockLayout is the time-of-day format for Open and Close.
const ClockLayout = "15:04"

// ClockPattern matches HH:MM with an optional :SS suffix.
var ClockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`)

// NormalizeClock trims an HH:MM:SS value to HH:MM.
func NormalizeClock(value string) string {
	if len(value) > len(ClockLayout) {
		return value[:len(ClockLayout)]
	}
	return value
}

// WeekdayID maps a time.Weekday onto the Monday=1..Sunday=7 numbering.
func WeekdayID(day time.Weekday) int {
	return (int(day)+6)%7 + 1
}

// Accepts reports whether a booking at t (already in clinic local time) falls
// inside the entry's opening hours. Closed entries never accept.
func (e ClinicScheduleEntry) Accepts(t time.Time) bool {
	if e.IsClosed {
		return false
	}
	clock := t.Format(ClockLayout)
	return clock >= e.Open && clock < e.Close
}

// Validate rejects schedule records whose shape does not match the model.
func (e ClinicScheduleEntry) Validate() error {
	if e.ID < FirstWeekday || e.ID > LastWeekday {
		return fmt.Errorf("schedule entry has weekday id %d outside 1..7", e.ID)
	}
	if !ClockPattern.MatchString(e.Open) || !ClockPattern.MatchString(e.Close) {
		return fmt.Errorf("schedule entry %d has malformed hours %q-%q", e.ID, e.Open, e.Close)
	}
	return nil
}

// DefaultClinicSchedule is the initial week used to seed an empty database.
func DefaultClinicSchedule() []ClinicScheduleEntry {
	return []ClinicScheduleEntry{
		{ID: 1, Day: "Lunes", Open: "09:00", Close: "18:00"},
		{ID: 2, Day: "Martes", Open: "09:00", Close: "18:00"},
		{ID: 3, Day: "Miércoles", Open: "09:00", Close: "18:00"},
		{ID: 4, Day: "Jueves", Open: "09:00", Close: "18:00"},
		{ID: 5, Day: "Viernes", Open: "09:00", Close: "18:00"},
		{ID: 6, Day: "Sábado", Open: "09:00", Close: "13:00"},
		{ID: 7, Day: "Domingo", Open: "09:00", Close: "13:00", IsClosed: true},
	}
}

// SeedClinicSchedule inserts the seven weekday entries, leaving existing rows untouched
func SeedClinicSchedule(db *gorm.DB) error {
	entries := DefaultClinicSchedule()
	return db.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entries).Error
	})
}
