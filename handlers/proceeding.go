package handlers

import (
	"errors"
	"net/http"

	"case_docket_app_go/services"
	"case_docket_app_go/templates/pages"

	"github.com/labstack/echo/v4"
)

// NewProceedingForm renders an empty proceeding form for a case
func (a *App) NewProceedingForm(c echo.Context) error {
	kase, err := a.Cases.GetCase(c.Request().Context(), c.Param("id"))
	if err != nil {
		return a.workflowError(c, err)
	}
	return render(c, http.StatusOK, pages.ProceedingForm(&pages.ProceedingFormPage{
		Layout:     a.layout(c),
		CaseID:     kase.ID,
		ClientName: kase.ClientName,
		Action:     "/cases/" + kase.ID + "/proceedings/new",
	}))
}

// AddProceeding records a new proceeding on a case
func (a *App) AddProceeding(c echo.Context) error {
	caseID := c.Param("id")
	if err := parseForm(c); err != nil {
		return a.formError(c, err)
	}
	in := proceedingInputFromRequest(c)

	p, err := a.Proceedings.AddProceeding(c.Request().Context(), caseID, in)
	a.Metrics.RecordWorkflow("add_proceeding", resultLabel(err))
	if err != nil {
		data := &pages.ProceedingFormPage{
			CaseID: caseID,
			Action: "/cases/" + caseID + "/proceedings/new",
		}
		return a.proceedingFormError(c, err, data, in)
	}
	return respond(c, http.StatusCreated, p, "/cases/"+caseID)
}

// EditProceedingForm renders the proceeding form filled with the current values
func (a *App) EditProceedingForm(c echo.Context) error {
	ctx := c.Request().Context()
	p, err := a.Proceedings.GetProceeding(ctx, c.Param("id"))
	if err != nil {
		return a.workflowError(c, err)
	}
	kase, err := a.Cases.GetCase(ctx, p.CaseID)
	if err != nil {
		return a.workflowError(c, err)
	}
	return render(c, http.StatusOK, pages.ProceedingForm(&pages.ProceedingFormPage{
		Layout:         a.layout(c),
		CaseID:         kase.ID,
		ClientName:     kase.ClientName,
		Proceeding:     p,
		ProceedingDate: p.ProceedingDateString(),
		Description:    p.Description,
		TentativeDate:  p.TentativeDateString(),
		Action:         "/proceedings/" + p.ID + "/edit",
	}))
}

// UpdateProceeding applies the edit form to an existing proceeding
func (a *App) UpdateProceeding(c echo.Context) error {
	id := c.Param("id")
	if err := parseForm(c); err != nil {
		return a.formError(c, err)
	}
	in := proceedingInputFromRequest(c)

	ctx := c.Request().Context()
	p, err := a.Proceedings.UpdateProceeding(ctx, id, in)
	a.Metrics.RecordWorkflow("update_proceeding", resultLabel(err))
	if err != nil {
		data := &pages.ProceedingFormPage{Action: "/proceedings/" + id + "/edit"}
		if current, getErr := a.Proceedings.GetProceeding(ctx, id); getErr == nil {
			data.Proceeding = current
			data.CaseID = current.CaseID
		}
		return a.proceedingFormError(c, err, data, in)
	}
	return respond(c, http.StatusOK, p, "/cases/"+p.CaseID)
}

// DeleteProceeding removes a proceeding and returns to its case
func (a *App) DeleteProceeding(c echo.Context) error {
	p, err := a.Proceedings.DeleteProceeding(c.Request().Context(), c.Param("id"))
	a.Metrics.RecordWorkflow("delete_proceeding", resultLabel(err))
	if err != nil {
		return a.workflowError(c, err)
	}
	return respond(c, http.StatusOK, nil, "/cases/"+p.CaseID)
}

func proceedingInputFromRequest(c echo.Context) services.ProceedingInput {
	return services.ProceedingInput{
		ProceedingDate: c.FormValue("proceeding_date"),
		Description:    c.FormValue("description"),
		TentativeDate:  c.FormValue("tentative_date"),
	}
}

// proceedingFormError re-renders the proceeding form with the submitted
// values for validation errors
func (a *App) proceedingFormError(c echo.Context, err error, data *pages.ProceedingFormPage, in services.ProceedingInput) error {
	var ve *services.ValidationError
	if !errors.As(err, &ve) {
		return a.workflowError(c, err)
	}
	if wantsJSON(c) {
		return validationJSON(c, ve)
	}

	if data.CaseID != "" {
		if kase, getErr := a.Cases.GetCase(c.Request().Context(), data.CaseID); getErr == nil {
			data.ClientName = kase.ClientName
		}
	}
	data.Layout = a.layout(c)
	data.Error = ve.Message
	data.ProceedingDate = in.ProceedingDate
	data.Description = in.Description
	data.TentativeDate = in.TentativeDate
	return render(c, http.StatusUnprocessableEntity, pages.ProceedingForm(data))
}
