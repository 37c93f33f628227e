package services

import (
	"context"
	"database/sql"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"sevaportal/internal/config"
	"sevaportal/internal/domain"
	"sevaportal/internal/domain/models"
	"sevaportal/internal/repositories"
	"sevaportal/internal/utils"
)

const tokenTTL = 24 * time.Hour

var (
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	aadhaarPattern = regexp.MustCompile(`^\d{12}$`)
	phonePattern   = regexp.MustCompile(`^\d{10}$`)
	pinPattern     = regexp.MustCompile(`^\d{6}$`)
)

// Claims is the JWT payload for both citizen and admin tokens; Role
// distinguishes them.
type Claims struct {
	Subject int64  `json:"sub_id"`
	Role    string `json:"role"`
	DeptID  int64  `json:"dept_id,omitempty"`
	jwt.RegisteredClaims
}

// AuthService covers registration, login and token issuance for citizens
// and admins. Passwords are stored as bcrypt hashes.
type AuthService struct {
	Citizens repositories.CitizenRepository
	Admins   repositories.AdminRepository
	Secret   []byte
}

func NewAuthService(env config.Env, db *sql.DB) AuthService {
	return AuthService{
		Citizens: repositories.CitizenRepository{DB: db},
		Admins:   repositories.AdminRepository{DB: db},
		Secret:   []byte(env.JWTSecret),
	}
}

func (s AuthService) RegisterCitizen(ctx context.Context, in models.RegisterInput) (models.Citizen, error) {
	in.Name = utils.TrimOrEmpty(in.Name)
	in.Email = utils.TrimOrEmpty(in.Email)
	in.Aadhaar = utils.TrimOrEmpty(in.Aadhaar)
	in.Phone = utils.TrimOrEmpty(in.Phone)
	in.Pin = utils.TrimOrEmpty(in.Pin)

	if in.Name == "" {
		return models.Citizen{}, domain.ValidationError{Field: "name", Msg: "must not be empty"}
	}
	if !emailPattern.MatchString(in.Email) {
		return models.Citizen{}, domain.ValidationError{Field: "email", Msg: "invalid email address"}
	}
	if !aadhaarPattern.MatchString(in.Aadhaar) {
		return models.Citizen{}, domain.ValidationError{Field: "aadhaar", Msg: "must be 12 digits"}
	}
	if in.Phone != "" && !phonePattern.MatchString(in.Phone) {
		return models.Citizen{}, domain.ValidationError{Field: "phone", Msg: "must be 10 digits"}
	}
	if in.Pin != "" && !pinPattern.MatchString(in.Pin) {
		return models.Citizen{}, domain.ValidationError{Field: "pin", Msg: "must be 6 digits"}
	}
	if len(in.Password) < 6 {
		return models.Citizen{}, domain.ValidationError{Field: "password", Msg: "must be at least 6 characters"}
	}

	taken, err := s.Citizens.ExistsByAadhaarOrEmail(ctx, in.Aadhaar, in.Email)
	if err != nil {
		return models.Citizen{}, err
	}
	if taken {
		return models.Citizen{}, domain.ConflictError{Resource: "citizen", Msg: "aadhaar or email already registered"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.Citizen{}, err
	}
	id, err := s.Citizens.Insert(ctx, in, string(hash))
	if err != nil {
		return models.Citizen{}, err
	}
	return models.Citizen{
		ID:      id,
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		Address: in.Address,
		Pin:     in.Pin,
	}, nil
}

// LoginCitizen verifies credentials and returns a signed token plus the
// profile. Wrong email and wrong password are indistinguishable to the
// caller.
func (s AuthService) LoginCitizen(ctx context.Context, email, password string) (string, models.Citizen, error) {
	email = utils.TrimOrEmpty(email)
	id, hash, err := s.Citizens.Credentials(ctx, email)
	if domain.IsNotFound(err) {
		return "", models.Citizen{}, domain.ForbiddenError{Msg: "invalid email or password"}
	}
	if err != nil {
		return "", models.Citizen{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", models.Citizen{}, domain.ForbiddenError{Msg: "invalid email or password"}
	}
	profile, err := s.Citizens.Profile(ctx, id)
	if err != nil {
		return "", models.Citizen{}, err
	}
	token, err := s.issueToken(id, "CITIZEN", 0)
	if err != nil {
		return "", models.Citizen{}, err
	}
	return token, profile, nil
}

func (s AuthService) LoginAdmin(ctx context.Context, username, password string) (string, models.Admin, error) {
	username = utils.TrimOrEmpty(username)
	admin, hash, err := s.Admins.Credentials(ctx, username)
	if domain.IsNotFound(err) {
		return "", models.Admin{}, domain.ForbiddenError{Msg: "invalid username or password"}
	}
	if err != nil {
		return "", models.Admin{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", models.Admin{}, domain.ForbiddenError{Msg: "invalid username or password"}
	}
	token, err := s.issueToken(admin.ID, admin.Role, admin.DeptID)
	if err != nil {
		return "", models.Admin{}, err
	}
	return token, admin, nil
}

// CreateAdmin is restricted to super admins. Department admins must name
// an existing department; super admins carry none.
func (s AuthService) CreateAdmin(ctx context.Context, actor domain.AdminContext, username, password, fullName string, role domain.AdminRole, deptID int64) (models.Admin, error) {
	if actor.Role != domain.RoleSuperAdmin {
		return models.Admin{}, domain.ForbiddenError{Msg: "only a super admin can create admins"}
	}
	username = utils.TrimOrEmpty(username)
	fullName = utils.TrimOrEmpty(fullName)
	if username == "" {
		return models.Admin{}, domain.ValidationError{Field: "username", Msg: "must not be empty"}
	}
	if len(password) < 6 {
		return models.Admin{}, domain.ValidationError{Field: "password", Msg: "must be at least 6 characters"}
	}
	if role != domain.RoleSuperAdmin && role != domain.RoleDeptAdmin {
		return models.Admin{}, domain.ValidationError{Field: "role", Msg: "unknown role"}
	}
	if role == domain.RoleDeptAdmin && deptID == 0 {
		return models.Admin{}, domain.ValidationError{Field: "dept_id", Msg: "department admin needs a department"}
	}
	if role == domain.RoleSuperAdmin {
		deptID = 0
	}

	taken, err := s.Admins.ExistsUsername(ctx, username)
	if err != nil {
		return models.Admin{}, err
	}
	if taken {
		return models.Admin{}, domain.ConflictError{Resource: "admin", Msg: "username already exists"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Admin{}, err
	}
	id, err := s.Admins.Insert(ctx, username, string(hash), fullName, string(role), deptID)
	if err != nil {
		return models.Admin{}, err
	}
	return models.Admin{ID: id, Username: username, FullName: fullName, Role: string(role), DeptID: deptID}, nil
}

func (s AuthService) ListAdmins(ctx context.Context, actor domain.AdminContext) ([]models.Admin, error) {
	if actor.Role != domain.RoleSuperAdmin {
		return nil, domain.ForbiddenError{Msg: "only a super admin can list admins"}
	}
	return s.Admins.List(ctx, actor.AdminID)
}

func (s AuthService) CitizenProfile(ctx context.Context, citizenID int64) (models.Citizen, error) {
	return s.Citizens.Profile(ctx, citizenID)
}

func (s AuthService) AdminProfile(ctx context.Context, adminID int64) (models.Admin, error) {
	return s.Admins.Profile(ctx, adminID)
}

func (s AuthService) issueToken(subject int64, role string, deptID int64) (string, error) {
	now := time.Now()
	claims := Claims{
		Subject: subject,
		Role:    role,
		DeptID:  deptID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.Secret)
}

// ParseToken validates the signature and expiry and returns the claims.
func (s AuthService) ParseToken(tokenString string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.Secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, domain.ForbiddenError{Msg: "invalid or expired token"}
	}
	return claims, nil
}
