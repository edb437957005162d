package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/upsrj/checkin-system/internal/core/domain"
	"github.com/upsrj/checkin-system/internal/core/ports"
)

// authStudentRepo stores students by email, enough for auth tests.
type authStudentRepo struct {
	byEmail map[string]*domain.Student
}

func newAuthStudentRepo() *authStudentRepo {
	return &authStudentRepo{byEmail: make(map[string]*domain.Student)}
}

func (r *authStudentRepo) Create(_ context.Context, s *domain.Student) error {
	if _, ok := r.byEmail[s.Email]; ok {
		return domain.ErrStudentExists
	}
	r.byEmail[s.Email] = s
	return nil
}

func (r *authStudentRepo) FindByEmail(_ context.Context, email string) (*domain.Student, error) {
	s, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrStudentNotFound
	}
	return s, nil
}

func (r *authStudentRepo) List(context.Context) ([]domain.Student, error) { return nil, nil }
func (r *authStudentRepo) UpdateLastCheckIn(context.Context, string, time.Time) error {
	return nil
}

func validRegistration() ports.RegisterInput {
	return ports.RegisterInput{
		Name:      "Alice",
		StudentID: "1021034567",
		Career:    "ISW",
		Email:     "alice@upsrj.edu.mx",
		Password:  "hunter22",
	}
}

func TestRegister_HashesPassword(t *testing.T) {
	repo := newAuthStudentRepo()
	svc := NewAuthService(repo, "secret", time.Hour)

	student, err := svc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if student.PasswordHash == "hunter22" {
		t.Fatal("password stored in plaintext")
	}
	if bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte("hunter22")) != nil {
		t.Error("stored hash does not verify the original password")
	}
}

func TestRegister_InvalidInputs(t *testing.T) {
	svc := NewAuthService(newAuthStudentRepo(), "secret", time.Hour)

	cases := []struct {
		name   string
		mutate func(*ports.RegisterInput)
	}{
		{"empty name", func(in *ports.RegisterInput) { in.Name = "" }},
		{"empty password", func(in *ports.RegisterInput) { in.Password = "" }},
		{"empty id", func(in *ports.RegisterInput) { in.StudentID = "" }},
		{"id too long", func(in *ports.RegisterInput) { in.StudentID = "12345678901" }},
		{"id with letters", func(in *ports.RegisterInput) { in.StudentID = "10210A4567" }},
		{"unknown career", func(in *ports.RegisterInput) { in.Career = "MED" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validRegistration()
			tc.mutate(&in)
			if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := NewAuthService(newAuthStudentRepo(), "secret", time.Hour)
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if _, err := svc.Register(ctx, validRegistration()); !errors.Is(err, domain.ErrStudentExists) {
		t.Fatalf("expected ErrStudentExists, got %v", err)
	}
}

func TestLogin_ReturnsVerifiableToken(t *testing.T) {
	repo := newAuthStudentRepo()
	svc := NewAuthService(repo, "secret", time.Hour)
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("register: %v", err)
	}

	token, student, err := svc.Login(ctx, "alice@upsrj.edu.mx", "hunter22")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if student.Email != "alice@upsrj.edu.mx" {
		t.Errorf("unexpected student %+v", student)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims["sub"] != "alice@upsrj.edu.mx" {
		t.Errorf("unexpected sub claim %v", claims["sub"])
	}
	if claims["name"] != "Alice" {
		t.Errorf("unexpected name claim %v", claims["name"])
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := NewAuthService(newAuthStudentRepo(), "secret", time.Hour)
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := svc.Login(ctx, "alice@upsrj.edu.mx", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := NewAuthService(newAuthStudentRepo(), "secret", time.Hour)
	if _, _, err := svc.Login(context.Background(), "nobody@upsrj.edu.mx", "hunter22"); !errors.Is(err, domain.ErrStudentNotFound) {
		t.Fatalf("expected ErrStudentNotFound, got %v", err)
	}
}
