package email

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/wonny/signalboard/internal/contracts"
)

// ErrDisabled is returned by a Mailer that has no provider credentials
var ErrDisabled = errors.New("email sending disabled")

// Message is one outgoing transactional email
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
	Tags    map[string]string
}

// Mailer sends a message through the configured provider
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

//go:embed templates/*.html
var templateFS embed.FS

// Renderer builds the welcome and digest emails
// ⭐ SSOT: 이메일 본문은 여기서만 생성
type Renderer struct {
	siteURL string
	tmpl    *template.Template
}

// NewRenderer parses the embedded templates
func NewRenderer(siteURL string) (*Renderer, error) {
	tmpl, err := template.New("email").Funcs(template.FuncMap{
		"pct": func(v float64) string { return fmt.Sprintf("%.0f%%", v*100) },
		"usd": func(v float64) string { return fmt.Sprintf("$%.2f", v) },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	return &Renderer{siteURL: strings.TrimRight(siteURL, "/"), tmpl: tmpl}, nil
}

// Welcome renders the message sent after a popup subscription
func (r *Renderer) Welcome(to string) (Message, error) {
	html, err := r.render("welcome.html", map[string]interface{}{
		"SiteURL":        r.siteURL,
		"UnsubscribeURL": r.unsubscribeURL(to),
	})
	if err != nil {
		return Message{}, err
	}

	return Message{
		To:      to,
		Subject: "Welcome to Signalboard",
		HTML:    html,
		Text: fmt.Sprintf("Thanks for subscribing. Daily picks land in your inbox after the close.\n\nUnsubscribe: %s\n",
			r.unsubscribeURL(to)),
		Tags: map[string]string{"kind": "welcome"},
	}, nil
}

// Digest renders the daily recommendation digest
func (r *Renderer) Digest(to string, list *contracts.RecommendationList) (Message, error) {
	date := list.SignalDate.Format("Jan 2, 2006")

	html, err := r.render("digest.html", map[string]interface{}{
		"SiteURL":        r.siteURL,
		"Date":           date,
		"Items":          list.Items,
		"UnsubscribeURL": r.unsubscribeURL(to),
	})
	if err != nil {
		return Message{}, err
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Signalboard daily picks for %s\n\n", date)
	for _, item := range list.Items {
		fmt.Fprintf(&text, "%-6s %-4s %3.0f%%  %s\n", item.Ticker, strings.ToUpper(string(item.Action)), item.Confidence*100, item.CompanyName)
	}
	fmt.Fprintf(&text, "\nUnsubscribe: %s\n", r.unsubscribeURL(to))

	return Message{
		To:      to,
		Subject: fmt.Sprintf("Daily picks for %s", date),
		HTML:    html,
		Text:    text.String(),
		Tags:    map[string]string{"kind": "digest"},
	}, nil
}

func (r *Renderer) unsubscribeURL(to string) string {
	return r.siteURL + "/unsubscribe?email=" + url.QueryEscape(to)
}

func (r *Renderer) render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
