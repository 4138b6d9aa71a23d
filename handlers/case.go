package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"case_docket_app_go/models"
	"case_docket_app_go/services"
	"case_docket_app_go/templates/pages"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const reportTimeout = 30 * time.Second

// ListCases shows every case, newest first
func (a *App) ListCases(c echo.Context) error {
	cases, err := a.Cases.ListCases(c.Request().Context())
	if err != nil {
		return a.workflowError(c, err)
	}
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, cases)
	}
	return render(c, http.StatusOK, pages.CaseList(&pages.CaseListPage{Layout: a.layout(c), Cases: cases}))
}

// ViewCase shows one case with its proceedings
func (a *App) ViewCase(c echo.Context) error {
	kase, err := a.Cases.GetCase(c.Request().Context(), c.Param("id"))
	if err != nil {
		return a.workflowError(c, err)
	}
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, kase)
	}
	return render(c, http.StatusOK, pages.CaseView(&pages.CaseViewPage{Layout: a.layout(c), Case: kase}))
}

// NewCaseForm renders an empty case form
func (a *App) NewCaseForm(c echo.Context) error {
	return render(c, http.StatusOK, pages.CaseForm(&pages.CaseFormPage{
		Layout: a.layout(c),
		Action: "/cases/new",
	}))
}

// CreateCase stores a new case and its accepted documents
func (a *App) CreateCase(c echo.Context) error {
	in, err := caseInputFromRequest(c)
	if err != nil {
		return a.formError(c, err)
	}

	kase, err := a.Cases.CreateCase(c.Request().Context(), in)
	a.Metrics.RecordWorkflow("create_case", resultLabel(err))
	if err != nil {
		return a.caseFormError(c, err, nil, in, "/cases/new")
	}
	return respond(c, http.StatusCreated, kase, "/")
}

// EditCaseForm renders the case form filled with the current values
func (a *App) EditCaseForm(c echo.Context) error {
	kase, err := a.Cases.GetCase(c.Request().Context(), c.Param("id"))
	if err != nil {
		return a.workflowError(c, err)
	}
	return render(c, http.StatusOK, pages.CaseForm(&pages.CaseFormPage{
		Layout:     a.layout(c),
		Case:       kase,
		ClientName: kase.ClientName,
		CaseStatus: kase.CaseStatus,
		Action:     "/cases/" + kase.ID + "/edit",
	}))
}

// UpdateCase applies the edit form to an existing case
func (a *App) UpdateCase(c echo.Context) error {
	id := c.Param("id")
	in, err := caseInputFromRequest(c)
	if err != nil {
		return a.formError(c, err)
	}

	ctx := c.Request().Context()
	kase, err := a.Cases.UpdateCase(ctx, id, in)
	a.Metrics.RecordWorkflow("update_case", resultLabel(err))
	if err != nil {
		current, _ := a.Cases.GetCase(ctx, id)
		return a.caseFormError(c, err, current, in, "/cases/"+id+"/edit")
	}
	return respond(c, http.StatusOK, kase, "/")
}

// DeleteCase removes a case together with its proceedings
func (a *App) DeleteCase(c echo.Context) error {
	err := a.Cases.DeleteCase(c.Request().Context(), c.Param("id"))
	a.Metrics.RecordWorkflow("delete_case", resultLabel(err))
	if err != nil {
		return a.workflowError(c, err)
	}
	return respond(c, http.StatusOK, nil, "/")
}

// ExportCases downloads every case as a spreadsheet
func (a *App) ExportCases(c echo.Context) error {
	cases, err := a.Cases.ListCasesWithProceedings(c.Request().Context())
	if err != nil {
		return a.workflowError(c, err)
	}
	data, err := services.ExportCasesXLSX(cases)
	if err != nil {
		return a.workflowError(c, err)
	}

	filename := fmt.Sprintf("cases_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Response().Header().Set("Content-Disposition", "attachment; filename="+filename)
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// CaseReport downloads one case and its proceedings as a PDF
func (a *App) CaseReport(c echo.Context) error {
	kase, err := a.Cases.GetCase(c.Request().Context(), c.Param("id"))
	if err != nil {
		return a.workflowError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), reportTimeout)
	defer cancel()

	pdf, err := services.GenerateCaseReport(ctx, a.Config.ChromePath, kase)
	if err != nil {
		a.Log.Error("failed to generate case report", zap.String("case_id", kase.ID), zap.Error(err))
		return echo.NewHTTPError(http.StatusServiceUnavailable, "The report could not be generated")
	}

	c.Response().Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=case_%s.pdf", kase.ID))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// caseFormError re-renders the case form for validation errors and maps
// everything else through workflowError
func (a *App) caseFormError(c echo.Context, err error, current *models.Case, in services.CaseInput, action string) error {
	var ve *services.ValidationError
	if !errors.As(err, &ve) {
		return a.workflowError(c, err)
	}
	if wantsJSON(c) {
		return validationJSON(c, ve)
	}
	data := &pages.CaseFormPage{
		Layout:     a.layout(c),
		Case:       current,
		ClientName: in.ClientName,
		CaseStatus: in.CaseStatus,
		Action:     action,
	}
	data.Error = ve.Message
	return render(c, http.StatusUnprocessableEntity, pages.CaseForm(data))
}

func caseInputFromRequest(c echo.Context) (services.CaseInput, error) {
	var in services.CaseInput
	if err := parseForm(c); err != nil {
		return in, err
	}
	in.ClientName = c.FormValue("client_name")
	in.CaseStatus = c.FormValue("case_status")
	in.CaseFile = formFile(c, "case_file")
	in.InterimOrdersFile = formFile(c, "interim_orders_file")
	return in, nil
}

// formFile returns the named upload, or nil when the field is absent
func formFile(c echo.Context, name string) *multipart.FileHeader {
	form := c.Request().MultipartForm
	if form == nil {
		return nil
	}
	files := form.File[name]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

