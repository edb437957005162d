package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/upsrj/checkin-system/internal/core/domain"
	"github.com/upsrj/checkin-system/internal/core/ports"
)

type stubAuth struct {
	registerErr error
	registered  []ports.RegisterInput
	loginErr    error
	token       string
	student     *domain.Student
}

func (s *stubAuth) Register(_ context.Context, in ports.RegisterInput) (*domain.Student, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	s.registered = append(s.registered, in)
	return &domain.Student{Email: in.Email, Name: in.Name}, nil
}

func (s *stubAuth) Login(context.Context, string, string) (string, *domain.Student, error) {
	if s.loginErr != nil {
		return "", nil, s.loginErr
	}
	return s.token, s.student, nil
}

func TestSignup_Created(t *testing.T) {
	auth := &stubAuth{}
	h := NewAuthHandler(auth)
	c, rec := newTestContext(t, http.MethodPost, "/signup",
		`{"name":"Alice","id":"1021034567","career":"ISW","email":"alice@upsrj.edu.mx","password":"hunter22"}`)

	if err := h.Signup(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if len(auth.registered) != 1 || auth.registered[0].StudentID != "1021034567" {
		t.Errorf("registration not forwarded: %+v", auth.registered)
	}
}

func TestSignup_RejectsUnknownCareer(t *testing.T) {
	h := NewAuthHandler(&stubAuth{})
	c, _ := newTestContext(t, http.MethodPost, "/signup",
		`{"name":"Alice","id":"1021034567","career":"MED","email":"alice@upsrj.edu.mx","password":"hunter22"}`)

	err := h.Signup(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestSignup_RejectsNonNumericID(t *testing.T) {
	h := NewAuthHandler(&stubAuth{})
	c, _ := newTestContext(t, http.MethodPost, "/signup",
		`{"name":"Alice","id":"12AB56","career":"ISW","email":"alice@upsrj.edu.mx","password":"hunter22"}`)

	err := h.Signup(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestSignup_RejectsLongID(t *testing.T) {
	h := NewAuthHandler(&stubAuth{})
	c, _ := newTestContext(t, http.MethodPost, "/signup",
		`{"name":"Alice","id":"12345678901","career":"ISW","email":"alice@upsrj.edu.mx","password":"hunter22"}`)

	err := h.Signup(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestSignup_DuplicatePropagates(t *testing.T) {
	h := NewAuthHandler(&stubAuth{registerErr: domain.ErrStudentExists})
	c, _ := newTestContext(t, http.MethodPost, "/signup",
		`{"name":"Alice","id":"1021034567","career":"ISW","email":"alice@upsrj.edu.mx","password":"hunter22"}`)

	if err := h.Signup(c); !errors.Is(err, domain.ErrStudentExists) {
		t.Fatalf("expected ErrStudentExists, got %v", err)
	}
}

func TestLogin_ReturnsToken(t *testing.T) {
	h := NewAuthHandler(&stubAuth{
		token:   "signed-token",
		student: &domain.Student{Name: "Alice", StudentID: "1021034567", Career: "ISW", Email: "alice@upsrj.edu.mx"},
	})
	c, rec := newTestContext(t, http.MethodPost, "/login",
		`{"email":"alice@upsrj.edu.mx","password":"hunter22"}`)

	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token != "signed-token" {
		t.Errorf("unexpected token %q", resp.Token)
	}
	if resp.Student.Email != "alice@upsrj.edu.mx" {
		t.Errorf("unexpected student %+v", resp.Student)
	}
}

func TestLogin_InvalidCredentialsPropagate(t *testing.T) {
	h := NewAuthHandler(&stubAuth{loginErr: domain.ErrInvalidCredentials})
	c, _ := newTestContext(t, http.MethodPost, "/login",
		`{"email":"alice@upsrj.edu.mx","password":"wrong"}`)

	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
