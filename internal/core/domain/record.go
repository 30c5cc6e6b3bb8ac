package domain

import (
	"regexp"
	"strings"
	"time"
)

// TrainingDateLayout is the calendar format accepted for record dates.
const TrainingDateLayout = "2006-01-02"

var nationalIDPattern = regexp.MustCompile(`^[A-Za-z0-9]{1,15}$`)

// Record is a single training-placement entry. ID is an opaque surrogate key
// assigned by the store adapter; Row is the insertion sequence number and is
// used only to preserve store ordering in list results.
type Record struct {
	ID             string  `json:"id"`
	Row            int64   `json:"row"`
	Specialty      string  `json:"specialty"`
	Group          string  `json:"group"`
	FullName       string  `json:"full_name"`
	NationalID     string  `json:"national_id"`
	TrainingDate   string  `json:"training_date"`
	HoursCount     float64 `json:"hours_count"`
	Commune        string  `json:"commune"`
	Institution    string  `json:"institution"`
	SupervisorName string  `json:"supervisor_name"`
	SupervisorID   string  `json:"supervisor_id"`
	// OwnerEmail records the admin who created or last rewrote the record.
	// It is provenance metadata and the visibility key for the user role.
	OwnerEmail string `json:"owner_email"`
}

// ValidNationalID reports whether id is 1-15 alphanumeric characters.
func ValidNationalID(id string) bool {
	return nationalIDPattern.MatchString(id)
}

// ParseTrainingDate parses a record date in TrainingDateLayout.
func ParseTrainingDate(s string) (time.Time, error) {
	return time.Parse(TrainingDateLayout, strings.TrimSpace(s))
}

// Blank reports whether the record is padding rather than data: all three
// primary identifying fields empty after trimming.
func (r *Record) Blank() bool {
	return strings.TrimSpace(r.FullName) == "" &&
		strings.TrimSpace(r.NationalID) == "" &&
		strings.TrimSpace(r.Specialty) == ""
}
