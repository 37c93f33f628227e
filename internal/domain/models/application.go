package models

import "sevaportal/internal/domain"

type Department struct {
	ID           int64  `json:"dept_id"`
	Name         string `json:"dept_name"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
}

type Service struct {
	ID             int64  `json:"service_id"`
	Name           string `json:"service_name"`
	Description    string `json:"description"`
	Fee            int64  `json:"fee"`
	ProcessingDays int    `json:"processing_days"`
	DeptID         int64  `json:"dept_id"`
}

type Application struct {
	ID             int64                    `json:"app_id"`
	CitizenID      int64                    `json:"citizen_id"`
	ServiceID      int64                    `json:"service_id"`
	ServiceName    string                   `json:"service_name"`
	Fee            int64                    `json:"fee"`
	AppliedDate    string                   `json:"applied_date"`
	CompletionDate string                   `json:"completion_date,omitempty"`
	Status         domain.ApplicationStatus `json:"status"`
	Remark         string                   `json:"remark,omitempty"`
}

// ApplicationView is an application with its document rollups as shown to
// the citizen; CanPay mirrors the payment gating rule.
type ApplicationView struct {
	Application
	PaymentStatus        string     `json:"payment_status,omitempty"`
	TransactionID        string     `json:"transaction_id,omitempty"`
	Documents            []Document `json:"documents"`
	AllDocumentsVerified bool       `json:"all_documents_verified"`
	HasRejectedDocuments bool       `json:"has_rejected_documents"`
	HasPendingDocuments  bool       `json:"has_pending_documents"`
	CanPay               bool       `json:"can_pay"`
}

// ApplicationDetail is the admin-side view with citizen/department context.
type ApplicationDetail struct {
	Application
	CitizenName  string     `json:"citizen_name"`
	CitizenEmail string     `json:"citizen_email"`
	CitizenPhone string     `json:"citizen_phone,omitempty"`
	DeptID       int64      `json:"dept_id"`
	DeptName     string     `json:"dept_name"`
	DaysTaken    int        `json:"days_taken"`
	Documents    []Document `json:"documents"`
	Payments     []Payment  `json:"payments"`
}

type Document struct {
	ID           int64                 `json:"doc_id"`
	AppID        int64                 `json:"app_id"`
	DocType      string                `json:"doc_type"`
	DocPath      string                `json:"doc_path,omitempty"`
	UploadedDate string                `json:"uploaded_date,omitempty"`
	Status       domain.DocumentStatus `json:"verification_status"`
}

// PendingDocument is a document awaiting verification, with enough
// context for the admin queue.
type PendingDocument struct {
	Document
	ServiceName string `json:"service_name"`
	DeptID      int64  `json:"dept_id"`
	CitizenName string `json:"citizen_name"`
}

type Payment struct {
	ID            int64  `json:"payment_id"`
	AppID         int64  `json:"app_id"`
	Amount        int64  `json:"amount"`
	PaymentDate   string `json:"payment_date"`
	PaymentMode   string `json:"payment_mode"`
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

type Grievance struct {
	ID               int64                  `json:"grievance_id"`
	CitizenID        int64                  `json:"citizen_id"`
	CitizenName      string                 `json:"citizen_name,omitempty"`
	CitizenEmail     string                 `json:"citizen_email,omitempty"`
	ServiceID        int64                  `json:"service_id,omitempty"`
	ServiceName      string                 `json:"service_name,omitempty"`
	DeptID           int64                  `json:"dept_id,omitempty"`
	DeptName         string                 `json:"dept_name,omitempty"`
	Description      string                 `json:"description"`
	Status           domain.GrievanceStatus `json:"status"`
	CreatedDate      string                 `json:"created_date"`
	ResolvedDate     string                 `json:"resolved_date,omitempty"`
	ResolutionRemark string                 `json:"resolution_remark,omitempty"`
}

// DashboardStats is the admin dashboard rollup, optionally scoped to one
// department.
type DashboardStats struct {
	TotalApplications        int `json:"total_applications"`
	PendingApplications      int `json:"pending_applications"`
	DocsVerifiedApplications int `json:"documents_verified_applications"`
	InProgressApplications   int `json:"in_progress_applications"`
	CompletedApplications    int `json:"completed_applications"`
	OpenGrievances           int `json:"open_grievances"`
}
