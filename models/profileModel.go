package models

import (
	"errors"
	"fmt"
	"time"
)

// Role tags. A profile's role is fixed when the profile is created.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
)

// DateOfBirthLayout is the calendar date format used for Profile.DateOfBirth.
const DateOfBirthLayout = "2006-01-02"

// Profile model
type Profile struct {
	ID             string    `gorm:"primaryKey;column:id" json:"id"`
	FirstName      string    `gorm:"column:first_name;not null" json:"first_name"`
	LastName       string    `gorm:"column:last_name;not null;index" json:"last_name"`
	Email          string    `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	Phone          string    `gorm:"column:phone" json:"phone"`
	DateOfBirth    string    `gorm:"column:dob;not null" json:"dob"`
	Role           string    `gorm:"column:role;check:role IN ('patient', 'doctor');not null;<-:create" json:"role"`
	PasswordHash   string    `gorm:"column:password_hash;not null" json:"-"`
	EmailConfirmed bool      `gorm:"column:email_confirmed;not null;default:false" json:"email_confirmed"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// FullName joins the first and last name for display and mail greetings.
func (p Profile) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Validate rejects profile records whose shape does not match the model.
func (p Profile) Validate() error {
	if p.ID == "" {
		return errors.New("profile id is empty")
	}
	if p.Role != RolePatient && p.Role != RoleDoctor {
		return fmt.Errorf("profile %s has unknown role %q", p.ID, p.Role)
	}
	if _, err := time.Parse(DateOfBirthLayout, p.DateOfBirth); err != nil {
		return fmt.Errorf("profile %s has malformed dob %q", p.ID, p.DateOfBirth)
	}
	return nil
}
