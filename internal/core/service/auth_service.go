package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/upsrj/checkin-system/internal/core/domain"
	"github.com/upsrj/checkin-system/internal/core/ports"
)

// AuthService implements student registration and login.
type AuthService struct {
	students  ports.StudentRepository
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(students ports.StudentRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{students: students, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Student, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if !validStudentID(in.StudentID) {
		return nil, domain.ErrInvalidCredentials
	}
	if !domain.ValidCareer(in.Career) {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	student := &domain.Student{
		StudentID:    in.StudentID,
		Name:         in.Name,
		Career:       in.Career,
		Email:        in.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.students.Create(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.Student, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	student, err := s.students.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(student)
	if err != nil {
		return "", nil, err
	}

	return token, student, nil
}

func (s *AuthService) generateToken(student *domain.Student) (string, error) {
	claims := jwt.MapClaims{
		"sub":  student.Email,
		"name": student.Name,
		"exp":  time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

// validStudentID accepts campus ids of 1 to 10 digits.
func validStudentID(id string) bool {
	if len(id) == 0 || len(id) > 10 {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
