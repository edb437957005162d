package mongo

import (
	"testing"
	"time"
)

func TestTimeoutsArePositive(t *testing.T) {
	if defaultTimeout <= 0 {
		t.Errorf("operation timeout must be positive, got %v", defaultTimeout)
	}
	if connectTimeout < defaultTimeout {
		t.Errorf("connect timeout %v should not undercut the operation timeout %v", connectTimeout, defaultTimeout)
	}
}

func TestDocToEvent(t *testing.T) {
	recorded := time.Date(2026, 8, 27, 15, 30, 0, 0, time.UTC)
	doc := checkInDoc{
		ID:         "evt-1",
		User:       "alice@upsrj.edu.mx",
		Day:        "2026-08-27",
		RecordedAt: recorded,
		ClientTime: "2026-08-27T09:30:00-06:00",
	}

	evt := docToEvent(doc)
	if evt.ID != doc.ID || evt.User != doc.User || evt.Day != doc.Day {
		t.Errorf("identity fields did not map: %+v", evt)
	}
	if !evt.RecordedAt.Equal(recorded) {
		t.Errorf("recorded time did not map: %v", evt.RecordedAt)
	}
	if evt.ClientTime != doc.ClientTime {
		t.Errorf("client time did not map: %q", evt.ClientTime)
	}
}

func TestDocToStudent(t *testing.T) {
	last := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)
	doc := studentDoc{
		StudentID:       "1021034567",
		Name:            "Alice",
		Career:          "ISW",
		Email:           "alice@upsrj.edu.mx",
		PasswordHash:    "$2a$10$hash",
		LastCheckInTime: &last,
		CreatedAt:       last.Add(-time.Hour),
	}

	s := docToStudent(doc)
	if s.StudentID != doc.StudentID || s.Email != doc.Email || s.Career != doc.Career {
		t.Errorf("identity fields did not map: %+v", s)
	}
	if s.LastCheckInTime == nil || !s.LastCheckInTime.Equal(last) {
		t.Errorf("last check-in did not map: %v", s.LastCheckInTime)
	}
	if s.PasswordHash != doc.PasswordHash {
		t.Error("password hash must survive the mapping for credential checks")
	}
}
