package routing

import (
	"fmt"
	"net/url"
	"strings"

	"screener-service/internal/pkg/screener"
)

// DefaultCategoryPaths maps screener categories onto their checkout paths.
var DefaultCategoryPaths = map[string]string{
	"weightloss":   "weightloss-fee",
	"antiaging":    "antiaging-fee",
	"hormones":     "hormones-fee",
	"hormone":      "hormone-fee",
	"sexualhealth": "sexualhealth-fee",
	"hairskin":     "hairandskin-fee",
	"hairandskin":  "hairandskin-fee",
}

const (
	DefaultNotEligiblePath = "thankyou"
	DefaultFallbackPath    = "thankyou"
)

// Metadata keys attached to a redirect target.
const (
	MetaOutcome = "routing_outcome"
	MetaReason  = "routing_reason"
	MetaRuleID  = "routing_rule"
)

// RedirectContext carries what the host page knows about the respondent and
// the query parameters it wants forwarded.
type RedirectContext struct {
	RootDomain string
	Name       string
	Email      string
	Phone      string
	// Params are forwarded as-is, e.g. utm_* and location identifiers.
	Params url.Values
}

// RedirectTarget is where the respondent goes next.
type RedirectTarget struct {
	URL      string            `json:"redirect_url"`
	Category string            `json:"category"`
	Outcome  screener.Outcome  `json:"outcome"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Signal is the event emitted to the host page once routing is decided.
type Signal struct {
	Category    string `json:"category"`
	Outcome     string `json:"outcome"`
	RedirectURL string `json:"redirectUrl"`
}

func (t *RedirectTarget) Signal() Signal {
	return Signal{Category: t.Category, Outcome: string(t.Outcome), RedirectURL: t.URL}
}

// Composer turns decisions into redirect targets.
type Composer struct {
	categoryPaths   map[string]string
	notEligiblePath string
	fallbackPath    string
}

type Option func(*Composer)

// WithCategoryPaths adds or replaces category paths.
func WithCategoryPaths(paths map[string]string) Option {
	return func(c *Composer) {
		for k, v := range paths {
			c.categoryPaths[normalizeCategory(k)] = strings.Trim(v, "/")
		}
	}
}

// WithNotEligiblePath sets where disqualified respondents go. An empty path
// means they are not redirected at all.
func WithNotEligiblePath(path string) Option {
	return func(c *Composer) {
		c.notEligiblePath = strings.Trim(path, "/")
	}
}

func WithFallbackPath(path string) Option {
	return func(c *Composer) {
		c.fallbackPath = strings.Trim(path, "/")
	}
}

func NewComposer(opts ...Option) *Composer {
	c := &Composer{
		categoryPaths:   make(map[string]string, len(DefaultCategoryPaths)),
		notEligiblePath: DefaultNotEligiblePath,
		fallbackPath:    DefaultFallbackPath,
	}
	for k, v := range DefaultCategoryPaths {
		c.categoryPaths[k] = v
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose builds the redirect for d. Disqualified respondents go to the
// not-eligible page without contact details, or nowhere when that page is
// disabled (nil target). FLAG and PROCEED share the category path; the
// outcome travels in Metadata.
func (c *Composer) Compose(d screener.Decision, category string, rc RedirectContext) (*RedirectTarget, error) {
	if !d.Outcome.Valid() {
		return nil, fmt.Errorf("routing: invalid outcome %q", d.Outcome)
	}
	base, err := parseRoot(rc.RootDomain)
	if err != nil {
		return nil, err
	}

	target := &RedirectTarget{
		Category: category,
		Outcome:  d.Outcome,
		Metadata: map[string]string{MetaOutcome: string(d.Outcome)},
	}
	if d.RuleID != "" {
		target.Metadata[MetaRuleID] = d.RuleID
	}

	if d.Outcome == screener.OutcomeDisqualify {
		if c.notEligiblePath == "" {
			return nil, nil
		}
		target.URL = join(base, c.notEligiblePath, nil)
		return target, nil
	}
	if d.Outcome == screener.OutcomeFlag && d.Reason != "" {
		target.Metadata[MetaReason] = d.Reason
	}

	target.URL = join(base, c.PathFor(category), queryFor(rc))
	return target, nil
}

// PathFor returns the checkout path of category, or the fallback path.
func (c *Composer) PathFor(category string) string {
	if p, ok := c.categoryPaths[normalizeCategory(category)]; ok {
		return p
	}
	return c.fallbackPath
}

func normalizeCategory(category string) string {
	r := strings.NewReplacer(" ", "", "-", "", "_", "", "&", "and")
	return r.Replace(strings.ToLower(strings.TrimSpace(category)))
}

func parseRoot(root string) (*url.URL, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return &url.URL{}, nil
	}
	if !strings.Contains(root, "://") {
		root = "https://" + root
	}
	u, err := url.Parse(root)
	if err != nil {
		return nil, fmt.Errorf("routing: invalid root domain %q: %w", root, err)
	}
	u.RawQuery, u.Fragment = "", ""
	return u, nil
}

func queryFor(rc RedirectContext) url.Values {
	q := url.Values{}
	for k, vs := range rc.Params {
		for _, v := range vs {
			if v != "" {
				q.Add(k, v)
			}
		}
	}
	for k, v := range map[string]string{"name": rc.Name, "email": rc.Email, "phone": rc.Phone} {
		if v = strings.TrimSpace(v); v != "" {
			q.Set(k, v)
		}
	}
	return q
}

func join(base *url.URL, path string, q url.Values) string {
	u := *base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + path
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	return u.String()
}
