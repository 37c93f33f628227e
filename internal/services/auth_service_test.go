package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"sevaportal/internal/domain"
	"sevaportal/internal/domain/models"
	"sevaportal/internal/repositories"
)

func testAuthService(t *testing.T) (AuthService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return AuthService{
		Citizens: repositories.CitizenRepository{DB: db},
		Admins:   repositories.AdminRepository{DB: db},
		Secret:   []byte("test-secret"),
	}, mock
}

func TestRegisterCitizenValidation(t *testing.T) {
	svc, _ := testAuthService(t)
	base := models.RegisterInput{
		Name:     "Asha Kumari",
		Email:    "asha@example.com",
		Aadhaar:  "123456789012",
		Password: "secret1",
	}

	cases := []struct {
		name   string
		mutate func(*models.RegisterInput)
	}{
		{"empty name", func(in *models.RegisterInput) { in.Name = "" }},
		{"bad email", func(in *models.RegisterInput) { in.Email = "not-an-email" }},
		{"short aadhaar", func(in *models.RegisterInput) { in.Aadhaar = "1234" }},
		{"bad phone", func(in *models.RegisterInput) { in.Phone = "12ab" }},
		{"bad pin", func(in *models.RegisterInput) { in.Pin = "12" }},
		{"short password", func(in *models.RegisterInput) { in.Password = "abc" }},
	}
	for _, tc := range cases {
		in := base
		tc.mutate(&in)
		if _, err := svc.RegisterCitizen(context.Background(), in); !domain.IsValidation(err) {
			t.Fatalf("%s: err = %v, want validation error", tc.name, err)
		}
	}
}

func TestLoginCitizenWrongPassword(t *testing.T) {
	svc, mock := testAuthService(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	mock.ExpectQuery("SELECT citizen_id, password FROM citizen").
		WithArgs("asha@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"citizen_id", "password"}).AddRow(2, string(hash)))

	_, _, err = svc.LoginCitizen(context.Background(), "asha@example.com", "wrong-password")
	if !domain.IsForbidden(err) {
		t.Fatalf("err = %v, want forbidden", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	svc, _ := testAuthService(t)

	token, err := svc.issueToken(42, "DEPT_ADMIN", 4)
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}
	claims, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Subject != 42 || claims.Role != "DEPT_ADMIN" || claims.DeptID != 4 {
		t.Fatalf("claims = %+v", claims)
	}

	other := AuthService{Secret: []byte("another-secret")}
	if _, err := other.ParseToken(token); !domain.IsForbidden(err) {
		t.Fatalf("foreign secret: err = %v, want forbidden", err)
	}
}

func TestCreateAdminRequiresSuperAdmin(t *testing.T) {
	svc, _ := testAuthService(t)
	actor := domain.AdminContext{AdminID: 1, Role: domain.RoleDeptAdmin, DeptID: 4}

	_, err := svc.CreateAdmin(context.Background(), actor, "newadmin", "secret1", "New Admin", domain.RoleDeptAdmin, 4)
	if !domain.IsForbidden(err) {
		t.Fatalf("err = %v, want forbidden", err)
	}
}
