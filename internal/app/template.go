package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin/render"
)

const templateRoot = "templates"

// TemplateRenderer is gin's HTML renderer for the storefront pages.
//
// Templates live under templates/ in the given filesystem:
//
//	templates/
//	  layouts/   page skeletons, e.g. base.html defining "base"
//	  partials/  shared fragments such as nav and pagination
//	  <module>/  pages, e.g. catalog/list.html or errors/404.html
//
// Each page is compiled on its own copy of the layouts and partials, so pages
// may fill the same blocks ("title", "content", "scripts") without clashing.
// A page is addressed by its path below templates/. In debug mode the set is
// reloaded on every render so edits show up without a restart.
type TemplateRenderer struct {
	fsys  fs.FS
	funcs template.FuncMap
	debug bool
	pages map[string]*template.Template
}

var _ render.HTMLRender = (*TemplateRenderer)(nil)

// NewTemplateRenderer loads the templates in fsys. The set is parsed once in
// both modes, so a broken template fails startup.
func NewTemplateRenderer(fsys fs.FS, debug bool) (*TemplateRenderer, error) {
	r := &TemplateRenderer{fsys: fsys, funcs: templateFuncs(), debug: debug}
	pages, err := loadPages(fsys, r.funcs)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	r.pages = pages
	return r, nil
}

// Instance implements render.HTMLRender.
func (r *TemplateRenderer) Instance(name string, data any) render.Render {
	pages := r.pages
	if r.debug {
		reloaded, err := loadPages(r.fsys, r.funcs)
		if err != nil {
			return pageRender{name: name, err: err}
		}
		pages = reloaded
	}
	return pageRender{tmpl: pages[name], name: name, data: data}
}

func loadPages(fsys fs.FS, funcs template.FuncMap) (map[string]*template.Template, error) {
	shared := template.New("").Funcs(funcs)
	pagePaths := make(map[string]string)

	err := fs.WalkDir(fsys, templateRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".html") {
			return nil
		}
		name := strings.TrimPrefix(p, templateRoot+"/")
		if strings.HasPrefix(name, "layouts/") || strings.HasPrefix(name, "partials/") {
			return parseFile(shared, fsys, p, p)
		}
		pagePaths[name] = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(pagePaths))
	for name, p := range pagePaths {
		set, err := shared.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone shared templates for %s: %w", name, err)
		}
		if err := parseFile(set, fsys, p, name); err != nil {
			return nil, err
		}
		pages[name] = set
	}
	return pages, nil
}

func parseFile(set *template.Template, fsys fs.FS, path, name string) error {
	content, err := fs.ReadFile(fsys, path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if _, err := set.New(name).Parse(string(content)); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// pageRender executes one page. Output is buffered so a failing template
// never leaves half a page on the wire.
type pageRender struct {
	tmpl *template.Template
	name string
	data any
	err  error
}

func (p pageRender) Render(w http.ResponseWriter) error {
	p.WriteContentType(w)
	if p.err != nil {
		return p.err
	}
	if p.tmpl == nil {
		return fmt.Errorf("template %q not found", p.name)
	}
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, p.name, p.data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

func (pageRender) WriteContentType(w http.ResponseWriter) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		// json embeds v in an inline script, e.g. the checkout options.
		"json": func(v any) template.JS {
			b, err := json.Marshal(v)
			if err != nil {
				return "null"
			}
			return template.JS(b)
		},
		"formatDate": func(t time.Time) string { return t.Format("2006-01-02 15:04") },
		"formatDay":  func(t time.Time) string { return t.Format("02 Jan 2006") },
		"currency":   formatCurrency,
		"percent": func(v float64) string {
			return strconv.FormatFloat(v, 'f', -1, 64) + "%"
		},
		"label": statusLabel,
		"lower": strings.ToLower,
	}
}

const currencySymbol = "₹"

// formatCurrency renders amount in rupees with two decimals and thousands
// separators, e.g. "₹1,299.00".
func formatCurrency(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	whole, frac, _ := strings.Cut(strconv.FormatFloat(amount, 'f', 2, 64), ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + currencySymbol + b.String() + "." + frac
}

// statusLabel turns a status value such as "payment_failed" into
// "Payment failed".
func statusLabel(v any) string {
	s := strings.ReplaceAll(fmt.Sprint(v), "_", " ")
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
