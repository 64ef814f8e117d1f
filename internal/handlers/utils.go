package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"sync"
	"text/template/parse"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

// Template helper functions
var funcMap = template.FuncMap{
	"FormatDateTime": FormatDateTime,
	"Nl2br":          Nl2br,
	"TitleCase":      TitleCase,
	"Bytes":          func(n int64) string { return humanize.Bytes(uint64(n)) },
	"Ago":            humanize.Time,
}

// TitleCase converts a string to title case.
// e.g., "not_attending" -> "Not Attending"
func TitleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// FormatDateTime formats a time in the event's time zone.
func FormatDateTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "N/A"
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format("January 2, 2006 at 3:04 PM")
}

// Nl2br escapes s and replaces newlines with <br> tags.
func Nl2br(s string) template.HTML {
	return template.HTML(strings.ReplaceAll(template.HTMLEscapeString(s), "\n", "<br>"))
}

// templates holds the parsed pages keyed by file name, e.g. "gallery.html".
var (
	templates   map[string]*template.Template
	templatesMu sync.RWMutex
)

// LoadTemplates parses every page in fsys together with layout.html and the
// partials (files starting with an underscore). It is called once at startup.
func LoadTemplates(fsys fs.FS) error {
	if _, err := fs.Stat(fsys, "layout.html"); err != nil {
		return fmt.Errorf("layout.html not found: %w", err)
	}
	partials, err := fs.Glob(fsys, "_*.html")
	if err != nil {
		return fmt.Errorf("error globbing partial templates: %w", err)
	}
	all, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return fmt.Errorf("error globbing templates: %w", err)
	}

	parsed := make(map[string]*template.Template)
	for _, file := range all {
		if file == "layout.html" || strings.HasPrefix(path.Base(file), "_") {
			continue
		}
		files := append([]string{file, "layout.html"}, partials...)
		tmpl, err := template.New(file).Funcs(funcMap).ParseFS(fsys, files...)
		if err != nil {
			return fmt.Errorf("error parsing page template %s: %w", file, err)
		}
		if err := checkTemplateRefs(tmpl); err != nil {
			return fmt.Errorf("error in page template %s: %w", file, err)
		}
		parsed[file] = tmpl
	}
	if len(parsed) == 0 {
		return fmt.Errorf("no page templates found")
	}

	templatesMu.Lock()
	templates = parsed
	templatesMu.Unlock()
	return nil
}

// checkTemplateRefs reports a {{template}} call to a name that is not
// defined in the set, which would otherwise only fail at render time.
func checkTemplateRefs(set *template.Template) error {
	var walk func(n parse.Node) error
	walk = func(n parse.Node) error {
		switch n := n.(type) {
		case *parse.ListNode:
			if n == nil {
				return nil
			}
			for _, c := range n.Nodes {
				if err := walk(c); err != nil {
					return err
				}
			}
		case *parse.TemplateNode:
			if set.Lookup(n.Name) == nil {
				return fmt.Errorf("template %q is not defined", n.Name)
			}
		case *parse.IfNode:
			return walkBranch(walk, &n.BranchNode)
		case *parse.RangeNode:
			return walkBranch(walk, &n.BranchNode)
		case *parse.WithNode:
			return walkBranch(walk, &n.BranchNode)
		}
		return nil
	}
	for _, t := range set.Templates() {
		if t.Tree == nil || t.Tree.Root == nil {
			continue
		}
		if err := walk(t.Tree.Root); err != nil {
			return err
		}
	}
	return nil
}

func walkBranch(walk func(parse.Node) error, b *parse.BranchNode) error {
	if err := walk(b.List); err != nil {
		return err
	}
	if b.ElseList != nil {
		return walk(b.ElseList)
	}
	return nil
}

// RenderTemplate executes the named page and writes it with status. The page
// is rendered to a buffer first so a failing template never sends a partial
// body.
func RenderTemplate(w http.ResponseWriter, status int, name string, data interface{}) {
	templatesMu.RLock()
	tmpl, ok := templates[name]
	templatesMu.RUnlock()
	if !ok {
		slog.Default().Error("template not found", "name", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		slog.Default().Error("error executing template", "name", name, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// RenderErrorPage renders a standardized error page using the error.html template.
func RenderErrorPage(w http.ResponseWriter, r *http.Request, event Event, statusCode int, title string, message string) {
	data := newPageData(r, event, fmt.Sprintf("Error %d - %s", statusCode, title))
	data.StatusCode = statusCode
	data.ErrorTitle = title
	data.Message = message
	RenderTemplate(w, statusCode, "error.html", data)
}
