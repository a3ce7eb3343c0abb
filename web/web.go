// Package web provides the embedded web UI for the calculator.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"

	"github.com/lemonberrylabs/arith/pkg/expr"
	"github.com/lemonberrylabs/arith/pkg/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// historyLimit is the number of evaluations shown on the dashboard.
const historyLimit = 50

// Handler serves the web UI pages.
type Handler struct {
	store   *store.Store
	maxLen  int
	funcMap template.FuncMap
}

// pageData wraps all page-specific data with common fields.
type pageData struct {
	NavActive string
	Data      interface{}
}

// New creates a new web UI handler. Expressions longer than maxLen bytes
// are rejected; a non-positive maxLen means expr.DefaultMaxExpressionLength.
func New(s *store.Store, maxLen int) *Handler {
	if maxLen <= 0 {
		maxLen = expr.DefaultMaxExpressionLength
	}
	return &Handler{
		store:  s,
		maxLen: maxLen,
		funcMap: template.FuncMap{
			"timeAgo":      timeAgo,
			"formatTime":   formatTime,
			"formatNumber": formatNumber,
			"stateClass":   stateClass,
			"truncate":     truncate,
		},
	}
}

func (h *Handler) render(c *fiber.Ctx, page string, navActive string, data interface{}) error {
	tmpl, err := template.New("").Funcs(h.funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+page)
	if err != nil {
		return c.Status(500).SendString(fmt.Sprintf("template error: %v", err))
	}

	pd := pageData{
		NavActive: navActive,
		Data:      data,
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, page, pd); err != nil {
		return c.Status(500).SendString(fmt.Sprintf("template error: %v", err))
	}

	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.Send(buf.Bytes())
}

// Register adds web UI routes to the Fiber app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/ui", h.dashboard)
	app.Post("/ui/evaluate", h.evaluate)

	// Redirect root to UI
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/ui")
	})
}

// --- Page Data Types ---

type dashboardContent struct {
	Evaluations    []*store.Evaluation
	SucceededCount int
	FailedCount    int
	Last           *store.Evaluation
	Notice         string
}

// --- Handlers ---

func (h *Handler) dashboard(c *fiber.Ctx) error {
	content := h.dashboardContent()
	if id := c.Query("last"); id != "" {
		if ev, err := h.store.Get(id); err == nil {
			content.Last = ev
		}
	}

	return h.render(c, "dashboard.html", "dashboard", content)
}

func (h *Handler) dashboardContent() dashboardContent {
	succeeded, failed := h.store.Counts()
	return dashboardContent{
		Evaluations:    h.store.List(historyLimit),
		SucceededCount: succeeded,
		FailedCount:    failed,
	}
}

func (h *Handler) evaluate(c *fiber.Ctx) error {
	input := c.FormValue("expression")
	if input == "" {
		return c.Redirect("/ui")
	}
	if len(input) > h.maxLen {
		content := h.dashboardContent()
		content.Notice = fmt.Sprintf("expression exceeds maximum length of %d characters", h.maxLen)
		c.Status(fiber.StatusBadRequest)
		return h.render(c, "dashboard.html", "dashboard", content)
	}

	value, err := expr.Evaluate(input)
	ev := h.store.Record("web", input, value, err)
	return c.Redirect("/ui?last=" + ev.ID)
}

// --- Template Functions ---

func timeAgo(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		m := int(d.Minutes())
		if m == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", m)
	case d < 24*time.Hour:
		h := int(d.Hours())
		if h == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", h)
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func stateClass(state store.EvaluationState) string {
	switch state {
	case store.EvaluationSucceeded:
		return "state-succeeded"
	case store.EvaluationFailed:
		return "state-failed"
	default:
		return ""
	}
}

// truncate shortens s to at most maxLen runes.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}
