package domain

type ApplicationStatus string

const (
	AppPending           ApplicationStatus = "PENDING"
	AppDocumentsVerified ApplicationStatus = "DOCUMENTS_VERIFIED"
	AppInProgress        ApplicationStatus = "IN_PROGRESS"
	AppCompleted         ApplicationStatus = "COMPLETED"
	AppRejected          ApplicationStatus = "REJECTED"
	AppDocumentRejected  ApplicationStatus = "DOCUMENT_REJECTED"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case AppPending, AppDocumentsVerified, AppInProgress, AppCompleted, AppRejected, AppDocumentRejected:
		return true
	}
	return false
}

type DocumentStatus string

const (
	DocPending  DocumentStatus = "PENDING"
	DocVerified DocumentStatus = "VERIFIED"
	DocRejected DocumentStatus = "REJECTED"
)

func (s DocumentStatus) Valid() bool {
	switch s {
	case DocPending, DocVerified, DocRejected:
		return true
	}
	return false
}

type GrievanceStatus string

const (
	GrievanceOpen     GrievanceStatus = "OPEN"
	GrievanceResolved GrievanceStatus = "RESOLVED"
)

type AdminRole string

const (
	RoleSuperAdmin AdminRole = "SUPER_ADMIN"
	RoleDeptAdmin  AdminRole = "DEPT_ADMIN"
)

// AdminContext carries the authenticated admin's scope into services.
// Department admins only see their own department's records.
type AdminContext struct {
	AdminID int64
	Role    AdminRole
	DeptID  int64
}

// CanAccessDept reports whether the admin may touch records belonging to
// the given department.
func (a AdminContext) CanAccessDept(deptID int64) bool {
	return a.Role == RoleSuperAdmin || a.DeptID == deptID
}

// Pagination carries paging params and totals.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}
