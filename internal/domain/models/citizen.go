package models

type Citizen struct {
	ID      int64  `json:"citizen_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Pin     string `json:"pin,omitempty"`
}

// RegisterInput carries the citizen sign-up payload. Aadhaar is the
// 12-digit national id; phone and pin are optional but format-checked.
type RegisterInput struct {
	Name     string `json:"name"`
	DOB      string `json:"dob"`
	Gender   string `json:"gender"`
	Age      int    `json:"age"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Aadhaar  string `json:"aadhaar"`
	Address  string `json:"address"`
	Pin      string `json:"pin"`
	Password string `json:"password"`
}

type Admin struct {
	ID       int64  `json:"admin_id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	DeptID   int64  `json:"dept_id,omitempty"`
	DeptName string `json:"dept_name,omitempty"`
}
