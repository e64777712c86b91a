// Package email renders newsletter templates and hands the result to a
// transport (SES, SMTP or the development log sender).
package email

import (
	"fmt"
	"net/url"

	"github.com/osteele/liquid"
	"github.com/shopspring/decimal"
)

// Kind identifies an email template.
type Kind int

const (
	KindWelcome Kind = iota
	KindMarketing
	KindNewsletter
)

func (k Kind) String() string {
	switch k {
	case KindWelcome:
		return "welcome"
	case KindMarketing:
		return "marketing"
	case KindNewsletter:
		return "newsletter"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

const (
	welcomeSubject          = "Welcome to Our Newsletter!"
	defaultMarketingSubject = "Special Deals Just for You!"
	newsletterSubject       = "Your Weekly Deals Update"
)

// Data is the payload of one template. Each Kind has exactly one Data type.
type Data interface {
	Kind() Kind
}

type WelcomeData struct {
	Name string
}

type ProductLine struct {
	Title string
	Price decimal.Decimal
	Link  string
}

type MarketingData struct {
	Subject  string
	Content  string
	Products []ProductLine
}

type NewsletterData struct {
	Content string
}

func (WelcomeData) Kind() Kind    { return KindWelcome }
func (MarketingData) Kind() Kind  { return KindMarketing }
func (NewsletterData) Kind() Kind { return KindNewsletter }

// Email is a rendered message ready for a Sender.
type Email struct {
	From    string
	To      string
	Subject string
	HTML    string
	Kind    Kind
}

// Renderer turns Data into an Email for one recipient.
type Renderer struct {
	siteURL   string
	from      string
	templates map[Kind]*liquid.Template
}

func NewRenderer(siteURL, from string) (*Renderer, error) {
	engine := liquid.NewEngine()
	sources := map[Kind]string{
		KindWelcome:    welcomeSource,
		KindMarketing:  marketingSource,
		KindNewsletter: newsletterSource,
	}

	templates := make(map[Kind]*liquid.Template, len(sources))
	for kind, src := range sources {
		tpl, err := engine.ParseString(src)
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", kind, err)
		}
		templates[kind] = tpl
	}

	return &Renderer{siteURL: siteURL, from: from, templates: templates}, nil
}

// UnsubscribeURL is the per-recipient unsubscribe link placed in every footer.
func (r *Renderer) UnsubscribeURL(to string) string {
	return r.siteURL + "/unsubscribe?email=" + url.QueryEscape(to)
}

func (r *Renderer) Render(to string, data Data) (*Email, error) {
	bindings := liquid.Bindings{
		"unsubscribe_url": r.UnsubscribeURL(to),
	}

	var subject string
	switch d := data.(type) {
	case WelcomeData:
		subject = welcomeSubject
		bindings["name"] = d.Name
	case MarketingData:
		subject = d.Subject
		if subject == "" {
			subject = defaultMarketingSubject
		}
		products := make([]map[string]any, len(d.Products))
		for i, p := range d.Products {
			products[i] = map[string]any{
				"title": p.Title,
				"price": p.Price.StringFixed(2),
				"link":  p.Link,
			}
		}
		bindings["subject"] = subject
		bindings["content"] = d.Content
		bindings["products"] = products
	case NewsletterData:
		subject = newsletterSubject
		bindings["content"] = d.Content
	default:
		return nil, fmt.Errorf("unsupported email data %T", data)
	}

	tpl, ok := r.templates[data.Kind()]
	if !ok {
		return nil, fmt.Errorf("no template for %s", data.Kind())
	}
	html, err := tpl.RenderString(bindings)
	if err != nil {
		return nil, fmt.Errorf("rendering %s template: %w", data.Kind(), err)
	}

	return &Email{
		From:    r.from,
		To:      to,
		Subject: subject,
		HTML:    html,
		Kind:    data.Kind(),
	}, nil
}
