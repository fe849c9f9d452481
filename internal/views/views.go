package views

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
)

//go:embed templates/*.html
var viewsFS embed.FS

var pageTmpl *template.Template

// loadTemplatesFromFS parses every *.html under dir. Tests use it with fstest.MapFS.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.ParseFS(sub, "*.html")
	if err != nil {
		return err
	}
	pageTmpl = tmpl
	return nil
}

// LoadTemplates parses the embedded page templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// FormData is the view model for the input form.
type FormData struct {
	Action string // URL the form posts to
}

// ResultData is the view model for the result page. Averages are rendered
// with one decimal; Input is echoed verbatim and escaped by the template.
type ResultData struct {
	Action   string
	Count    int
	DayAvg   float64
	NightAvg float64
	Input    string
}

var errNotLoaded = errors.New("page templates not loaded: call views.LoadTemplates during startup")

// RenderForm writes the input form page.
func RenderForm(w io.Writer, data FormData) error {
	if pageTmpl == nil {
		return errNotLoaded
	}
	return pageTmpl.ExecuteTemplate(w, "form.html", data)
}

// RenderResult writes the result page.
func RenderResult(w io.Writer, data ResultData) error {
	if pageTmpl == nil {
		return errNotLoaded
	}
	return pageTmpl.ExecuteTemplate(w, "result.html", data)
}
