package pages

import (
	"case_docket_app_go/models"
)

// Layout holds what every page shares
type Layout struct {
	Title       string
	CurrentUser string // empty when signed out
	CSRFToken   string
	Error       string
	Notice      string
	Nonce       string
}

func (l *Layout) layout() *Layout { return l }

type pageData interface {
	layout() *Layout
}

// LoginPage is the sign-in form
type LoginPage struct {
	Layout
	Username string
}

// RegisterPage is the account creation form
type RegisterPage struct {
	Layout
	Username string
}

// CaseListPage lists every case, newest first
type CaseListPage struct {
	Layout
	Cases []models.Case
}

// CaseFormPage backs both the new and the edit case form.
// Case is nil for a new case.
type CaseFormPage struct {
	Layout
	Case       *models.Case
	ClientName string
	CaseStatus string
	Action     string
}

// CaseViewPage shows a case with its proceedings
type CaseViewPage struct {
	Layout
	Case *models.Case
}

// ProceedingFormPage backs both the add and the edit proceeding form.
// Proceeding is nil when adding.
type ProceedingFormPage struct {
	Layout
	CaseID         string
	ClientName     string
	Proceeding     *models.Proceeding
	ProceedingDate string
	Description    string
	TentativeDate  string
	Action         string
}
