package services

import "time"

// MinimumRegistrationAge is the youngest age allowed to open an account.
const MinimumRegistrationAge = 18

// ComputeAge returns the number of whole years between dob and asOf. A
// birthday later in asOf's year has not been reached yet.
func ComputeAge(dob, asOf time.Time) int {
	age := asOf.Year() - dob.Year()
	if asOf.Month() < dob.Month() || (asOf.Month() == dob.Month() && asOf.Day() < dob.Day()) {
		age--
	}
	return age
}
