package pages

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"

	"case_docket_app_go/middleware"
	"case_docket_app_go/templates/partials"

	"github.com/a-h/templ"
)

//go:embed html/*.html
var files embed.FS

var pageTemplates = template.Must(template.New("pages").Funcs(template.FuncMap{
	"formatDate":   partials.FormatDate,
	"relativeTime": partials.FormatRelativeTime,
	"deref":        partials.Deref,
}).ParseFS(files, "html/*.html"))

// render executes a named page template as a templ component. The CSP
// nonce of the request is copied into the layout before rendering.
func render(name string, data pageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		data.layout().Nonce = middleware.GetNonce(ctx)
		if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
			return fmt.Errorf("failed to render %s: %w", name, err)
		}
		return nil
	})
}

func Login(data *LoginPage) templ.Component {
	data.Title = "Sign in"
	return render("login", data)
}

func Register(data *RegisterPage) templ.Component {
	data.Title = "Register"
	return render("register", data)
}

func CaseList(data *CaseListPage) templ.Component {
	data.Title = "Cases"
	return render("index", data)
}

func CaseForm(data *CaseFormPage) templ.Component {
	if data.Case == nil {
		data.Title = "New case"
	} else {
		data.Title = "Edit case"
	}
	return render("case_form", data)
}

func CaseView(data *CaseViewPage) templ.Component {
	data.Title = data.Case.ClientName
	return render("view_case", data)
}

func ProceedingForm(data *ProceedingFormPage) templ.Component {
	if data.Proceeding == nil {
		data.Title = "Add proceeding"
	} else {
		data.Title = "Edit proceeding"
	}
	return render("proceeding_form", data)
}
