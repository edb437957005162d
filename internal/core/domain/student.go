package domain

import (
	"errors"
	"time"
)

// Careers lists the career codes offered on campus. Signup rejects anything else.
var Careers = []string{"ISW", "LTF", "IAEV", "ISA", "IRC"}

var ErrStudentNotFound = errors.New("student not found")
var ErrStudentExists = errors.New("email or id already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")

// Student models an enrolled student. The core reads students and updates the
// denormalized LastCheckInTime field; it never deletes them.
type Student struct {
	ID              string     `json:"-"`
	StudentID       string     `json:"id"`
	Name            string     `json:"name"`
	Career          string     `json:"career"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"`
	LastCheckInTime *time.Time `json:"last_check_in_time,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ValidCareer reports whether code is one of the offered careers.
func ValidCareer(code string) bool {
	for _, c := range Careers {
		if c == code {
			return true
		}
	}
	return false
}
