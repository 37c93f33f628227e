package repositories

import (
	"context"
	"database/sql"
	"errors"

	"sevaportal/internal/db"
	"sevaportal/internal/domain"
	"sevaportal/internal/domain/models"
)

type CitizenRepository struct {
	DB *sql.DB
}

func (r CitizenRepository) ExistsByAadhaarOrEmail(ctx context.Context, aadhaar, email string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		`SELECT 1 FROM citizen WHERE aadhaar=? OR email=? LIMIT 1`, aadhaar, email).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r CitizenRepository) Insert(ctx context.Context, in models.RegisterInput, passwordHash string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO citizen (name, dob, gender, age, phone, email, aadhaar, address, pin, password)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Name, db.NullIfEmpty(in.DOB), db.NullIfEmpty(in.Gender), in.Age,
		db.NullIfEmpty(in.Phone), in.Email, in.Aadhaar,
		db.NullIfEmpty(in.Address), db.NullIfEmpty(in.Pin), passwordHash)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Credentials resolves a citizen's id and password hash by email.
func (r CitizenRepository) Credentials(ctx context.Context, email string) (int64, string, error) {
	var id int64
	var hash string
	err := r.DB.QueryRowContext(ctx,
		`SELECT citizen_id, password FROM citizen WHERE email=?`, email).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", domain.NotFoundError{Resource: "citizen"}
	}
	if err != nil {
		return 0, "", err
	}
	return id, hash, nil
}

func (r CitizenRepository) Profile(ctx context.Context, id int64) (models.Citizen, error) {
	var c models.Citizen
	var phone, address, pin sql.NullString
	err := r.DB.QueryRowContext(ctx, `
		SELECT citizen_id, name, email, phone, address, pin
		FROM citizen WHERE citizen_id=?`, id).
		Scan(&c.ID, &c.Name, &c.Email, &phone, &address, &pin)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Citizen{}, domain.NotFoundError{Resource: "citizen"}
	}
	if err != nil {
		return models.Citizen{}, err
	}
	c.Phone = phone.String
	c.Address = address.String
	c.Pin = pin.String
	return c, nil
}

// NameEmail is the minimal lookup the notifier needs.
func (r CitizenRepository) NameEmail(ctx context.Context, id int64) (string, string, error) {
	var name, email string
	err := r.DB.QueryRowContext(ctx,
		`SELECT name, email FROM citizen WHERE citizen_id=?`, id).Scan(&name, &email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", domain.NotFoundError{Resource: "citizen"}
	}
	if err != nil {
		return "", "", err
	}
	return name, email, nil
}

type AdminRepository struct {
	DB *sql.DB
}

// Credentials resolves an admin plus password hash by username.
func (r AdminRepository) Credentials(ctx context.Context, username string) (models.Admin, string, error) {
	var a models.Admin
	var hash string
	var deptID sql.NullInt64
	err := r.DB.QueryRowContext(ctx, `
		SELECT admin_id, username, full_name, password, role, dept_id
		FROM admin WHERE username=?`, username).
		Scan(&a.ID, &a.Username, &a.FullName, &hash, &a.Role, &deptID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Admin{}, "", domain.NotFoundError{Resource: "admin"}
	}
	if err != nil {
		return models.Admin{}, "", err
	}
	a.DeptID = deptID.Int64
	return a, hash, nil
}

func (r AdminRepository) ExistsUsername(ctx context.Context, username string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		`SELECT 1 FROM admin WHERE username=? LIMIT 1`, username).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r AdminRepository) Insert(ctx context.Context, username, passwordHash, fullName, role string, deptID int64) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO admin (username, password, full_name, role, dept_id)
		VALUES (?, ?, ?, ?, ?)`,
		username, passwordHash, fullName, role, nullID(deptID))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r AdminRepository) List(ctx context.Context, excludeID int64) ([]models.Admin, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT admin_id, username, full_name, role FROM admin WHERE admin_id<>?`, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Admin{}
	for rows.Next() {
		var a models.Admin
		if err := rows.Scan(&a.ID, &a.Username, &a.FullName, &a.Role); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r AdminRepository) Profile(ctx context.Context, adminID int64) (models.Admin, error) {
	var a models.Admin
	var deptID sql.NullInt64
	var deptName sql.NullString
	err := r.DB.QueryRowContext(ctx, `
		SELECT a.admin_id, a.username, a.full_name, a.role, a.dept_id, d.dept_name
		FROM admin a
		LEFT JOIN department d ON a.dept_id = d.dept_id
		WHERE a.admin_id=?`, adminID).
		Scan(&a.ID, &a.Username, &a.FullName, &a.Role, &deptID, &deptName)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Admin{}, domain.NotFoundError{Resource: "admin"}
	}
	if err != nil {
		return models.Admin{}, err
	}
	a.DeptID = deptID.Int64
	a.DeptName = deptName.String
	return a, nil
}

func nullID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
