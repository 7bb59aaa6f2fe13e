package models

import (
	"errors"
	"fmt"
	"time"
)

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusAccepted  AppointmentStatus = "accepted"
	StatusCancelled AppointmentStatus = "cancelled"
)

// PaymentMethod is how the patient settles the booking.
type PaymentMethod string

const (
	PaymentCash      PaymentMethod = "Efectivo"
	PaymentBank      PaymentMethod = "Banco"
	PaymentOccidente PaymentMethod = "Occidente"
)

// Placeholders stored when the patient leaves a free-text field blank.
const (
	DefaultDescription = "Sin descripción"
	DefaultReason      = "Sin motivo especificado"
	DefaultAllergies   = "Ninguna"
)

// TreatmentCatalog lists the procedures a patient can book.
var TreatmentCatalog = []string{
	"Consulta General",
	"Limpieza Profunda",
	"Extracción Dental",
	"Blanqueamiento",
	"Tratamiento de Caries",
	"Ortodoncia (Ajuste)",
	"Urgencia Dental",
}

// PaymentMethods lists the accepted settlement options.
var PaymentMethods = []PaymentMethod{PaymentCash, PaymentBank, PaymentOccidente}

// IsTreatment reports whether title is in the treatment catalog.
func IsTreatment(title string) bool {
	for _, t := range TreatmentCatalog {
		if t == title {
			return true
		}
	}
	return false
}

// IsPaymentMethod reports whether method is an accepted payment method.
func IsPaymentMethod(method string) bool {
	for _, m := range PaymentMethods {
		if string(m) == method {
			return true
		}
	}
	return false
}

// Appointment model
type Appointment struct {
	ID             string            `gorm:"primaryKey;column:id" json:"id"`
	PatientID      string            `gorm:"column:patient_id;not null;index" json:"patient_id"`
	Title          string            `gorm:"column:title;not null" json:"title"`
	Description    string            `gorm:"column:description;not null" json:"description"`
	Reason         string            `gorm:"column:reason;not null" json:"reason"`
	Allergies      string            `gorm:"column:allergies;not null" json:"allergies"`
	PaymentMethod  PaymentMethod     `gorm:"column:payment_method;check:payment_method IN ('Efectivo', 'Banco', 'Occidente');not null" json:"payment_method"`
	Status         AppointmentStatus `gorm:"column:status;check:status IN ('pending', 'accepted', 'cancelled');not null;index" json:"status"`
	ScheduledAt    *time.Time        `gorm:"column:scheduled_at;uniqueIndex:idx_accepted_slot,where:status = 'accepted'" json:"scheduled_at"`
	ReminderSentAt *time.Time        `gorm:"column:reminder_sent_at" json:"-"`
	CreatedAt      time.Time         `gorm:"column:created_at;not null;index" json:"created_at"`
	Patient        *Profile          `gorm:"foreignKey:PatientID;references:ID;constraint:OnDelete:CASCADE" json:"patient,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// Validate rejects appointment records whose shape does not match the model.
func (a Appointment) Validate() error {
	if a.ID == "" || a.PatientID == "" {
		return errors.New("appointment is missing its id or patient reference")
	}
	switch a.Status {
	case StatusPending, StatusAccepted, StatusCancelled:
	default:
		return fmt.Errorf("appointment %s has unknown status %q", a.ID, a.Status)
	}
	if !IsPaymentMethod(string(a.PaymentMethod)) {
		return fmt.Errorf("appointment %s has unknown payment method %q", a.ID, a.PaymentMethod)
	}
	if a.Status == StatusAccepted && a.ScheduledAt == nil {
		return fmt.Errorf("appointment %s is accepted without a scheduled time", a.ID)
	}
	return nil
}

// AppointmentFilter selects which appointments a listing returns. An empty
// PatientID selects every appointment.
type AppointmentFilter struct {
	PatientID string
}

// Appointment event types published after a successful mutation.
const (
	EventAppointmentCreated   = "appointment.created"
	EventAppointmentAccepted  = "appointment.accepted"
	EventAppointmentCancelled = "appointment.cancelled"
	EventScheduleUpdated      = "schedule.updated"
)

// ChangeEvent describes a committed change for live subscribers.
type ChangeEvent struct {
	Type        string               `json:"type"`
	Appointment *Appointment         `json:"appointment,omitempty"`
	Schedule    *ClinicScheduleEntry `json:"schedule,omitempty"`
	At          time.Time            `json:"at"`
}
