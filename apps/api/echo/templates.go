package echoapi

import (
	"embed"
	htmltmpl "html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

const baseTemplate = "_base.gohtml"

// templateRenderer renders the pages in templates/, each one wrapped by _base.gohtml.
type templateRenderer struct {
	strict bool

	once      sync.Once
	templates map[string]*htmltmpl.Template // {name: *Template}
	err       error
}

var _ echo.Renderer = (*templateRenderer)(nil)

func newTemplateRenderer(strict bool) *templateRenderer {
	return &templateRenderer{strict: strict}
}

func (r *templateRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	r.once.Do(r.parse) // only parse once, during the first request
	if r.err != nil {
		return r.err
	}
	tmpl, ok := r.templates[name]
	if !ok {
		return errors.Errorf("template %q not found", name)
	}
	return tmpl.ExecuteTemplate(w, baseTemplate, data)
}

func (r *templateRenderer) parse() {
	r.templates = make(map[string]*htmltmpl.Template)

	fps, err := fs.Glob(templateFS, "templates/*.gohtml")
	if err != nil {
		r.err = errors.Wrap(err, "listing templates")
		return
	}
	for _, fp := range fps {
		fname := path.Base(fp)
		if strings.HasPrefix(fname, "_") {
			continue
		}
		tmpl, err := htmltmpl.New(baseTemplate).Funcs(templateFuncs).
			ParseFS(templateFS, path.Join("templates", baseTemplate), fp)
		if err != nil {
			r.err = errors.Wrapf(err, "parsing template %s", fname)
			return
		}
		if r.strict {
			tmpl = tmpl.Option("missingkey=error")
		}
		r.templates[strings.TrimSuffix(fname, path.Ext(fname))] = tmpl
	}
}

var templateFuncs = htmltmpl.FuncMap{
	"fieldError": func(errs map[string]string, field string) string { return errs[field] },
}
