package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"case_docket_app_go/models"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// PDFOptions contains options for PDF generation
type PDFOptions struct {
	PageOrientation string // portrait, landscape
	PageSize        string // letter, legal, A4
	MarginTop       int    // points (72 = 1 inch)
	MarginBottom    int
	MarginLeft      int
	MarginRight     int
}

// DefaultPDFOptions returns default options for case reports
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PageOrientation: "portrait",
		PageSize:        "A4",
		MarginTop:       54,
		MarginBottom:    54,
		MarginLeft:      54,
		MarginRight:     54,
	}
}

// paperSize returns the page width and height in inches
func (o PDFOptions) paperSize() (float64, float64) {
	var paperWidth, paperHeight float64
	switch o.PageSize {
	case "legal":
		paperWidth = 8.5
		paperHeight = 14.0
	case "A4":
		paperWidth = 8.27
		paperHeight = 11.69
	default: // letter
		paperWidth = 8.5
		paperHeight = 11.0
	}

	if o.PageOrientation == "landscape" {
		paperWidth, paperHeight = paperHeight, paperWidth
	}
	return paperWidth, paperHeight
}

// GeneratePDF renders HTML content to PDF using headless Chrome.
// chromePath may be empty to let chromedp find a browser.
func GeneratePDF(ctx context.Context, chromePath string, htmlContent string, options PDFOptions) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)
	if chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	paperWidth, paperHeight := options.paperSize()

	var pdfBuf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.Sleep(100*time.Millisecond),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithMarginTop(float64(options.MarginTop) / 72.0).
				WithMarginBottom(float64(options.MarginBottom) / 72.0).
				WithMarginLeft(float64(options.MarginLeft) / 72.0).
				WithMarginRight(float64(options.MarginRight) / 72.0).
				WithPrintBackground(true).
				WithDisplayHeaderFooter(false).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfBuf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return pdfBuf, nil
}

const caseReportShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>
body { font-family: "Times New Roman", Times, serif; font-size: 12pt; color: #000; }
h1 { font-size: 16pt; text-align: center; margin-bottom: 18pt; }
table { width: 100%; border-collapse: collapse; margin-top: 12pt; }
th, td { border: 1px solid #444; padding: 4pt 6pt; text-align: left; vertical-align: top; }
th { background: #eee; }
dl { display: grid; grid-template-columns: 10em auto; row-gap: 4pt; }
dt { font-weight: bold; }
.muted { color: #666; }
</style>
</head>
<body>
{{.}}
</body>
</html>`

const caseReportBody = `<h1>Case Report: {{.Case.ClientName}}</h1>
<dl>
<dt>Status</dt><dd>{{.Case.CaseStatus}}</dd>
<dt>Opened</dt><dd>{{.Case.DateCreated.Format "2006-01-02"}}</dd>
<dt>Case file</dt><dd>{{if .Case.HasCaseFile}}{{deref .Case.CaseFile}}{{else}}<span class="muted">none</span>{{end}}</dd>
<dt>Interim orders</dt><dd>{{if .Case.HasInterimOrdersFile}}{{deref .Case.InterimOrdersFile}}{{else}}<span class="muted">none</span>{{end}}</dd>
</dl>
<h2>Proceedings</h2>
{{if .Case.Proceedings}}
<table>
<tr><th>Date</th><th>Description</th><th>Tentative date</th></tr>
{{range .Case.Proceedings}}<tr><td>{{.ProceedingDateString}}</td><td>{{.Description}}</td><td>{{.TentativeDateString}}</td></tr>
{{end}}</table>
{{else}}<p class="muted">No proceedings recorded.</p>{{end}}
<p class="muted">Generated {{.GeneratedAt}}</p>`

var (
	caseReportShellTmpl = template.Must(template.New("case_report_shell").Parse(caseReportShell))
	caseReportBodyTmpl  = template.Must(template.New("case_report").Funcs(template.FuncMap{
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}).Parse(caseReportBody))
)

// RenderCaseReportHTML renders the printable HTML for a case and its proceedings
func RenderCaseReportHTML(c *models.Case) (string, error) {
	var body bytes.Buffer
	err := caseReportBodyTmpl.Execute(&body, struct {
		Case        *models.Case
		GeneratedAt string
	}{
		Case:        c,
		GeneratedAt: time.Now().UTC().Format("2006-01-02 15:04 MST"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render case report: %w", err)
	}

	var buf bytes.Buffer
	if err := caseReportShellTmpl.Execute(&buf, template.HTML(SanitizeReportHTML(body.String()))); err != nil {
		return "", fmt.Errorf("failed to render case report: %w", err)
	}
	return buf.String(), nil
}

// GenerateCaseReport renders a case with its proceedings to PDF
func GenerateCaseReport(ctx context.Context, chromePath string, c *models.Case) ([]byte, error) {
	html, err := RenderCaseReportHTML(c)
	if err != nil {
		return nil, err
	}
	return GeneratePDF(ctx, chromePath, html, DefaultPDFOptions())
}
