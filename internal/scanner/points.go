// Package scanner - Injection point discovery
package scanner

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// InjectionPoint is one parameter of one request that the audit mutates.
type InjectionPoint struct {
	Method string     // GET or POST
	URL    string     // request URL; GET parameters live in Params, not here
	Name   string     // the mutated parameter
	Params url.Values // every parameter sent with the request
}

// String identifies the point in logs and reports.
func (p InjectionPoint) String() string {
	return fmt.Sprintf("%s %s [%s]", p.Method, p.URL, p.Name)
}

// Key identifies the point for deduplication.
func (p InjectionPoint) Key() string {
	return p.Method + " " + p.URL + " " + p.Name
}

// values returns a copy of Params with the point's parameter set to value.
func (p InjectionPoint) values(value string) url.Values {
	v := make(url.Values, len(p.Params)+1)
	for k, vals := range p.Params {
		v[k] = append([]string(nil), vals...)
	}
	v.Set(p.Name, value)
	return v
}

// NewRequest builds the request that sends value in the point's parameter.
func (p InjectionPoint) NewRequest(ctx context.Context, value string) (*http.Request, error) {
	if p.Method == http.MethodPost {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, strings.NewReader(p.values(value).Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	}
	return http.NewRequestWithContext(ctx, http.MethodGet, p.WithValue(value), nil)
}

// WithValue returns the GET URL carrying value, or the bare URL for POST.
func (p InjectionPoint) WithValue(value string) string {
	if p.Method == http.MethodPost {
		return p.URL
	}
	u, err := url.Parse(p.URL)
	if err != nil {
		return p.URL
	}
	q := u.Query()
	for k, vals := range p.values(value) {
		q[k] = vals
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// PointsFromURL returns one GET point per query parameter of target, or one
// POST point per parameter of data when method is POST.
func PointsFromURL(target, method, data string) ([]InjectionPoint, error) {
	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURL, target)
	}

	method = strings.ToUpper(method)
	if method == http.MethodPost {
		params, err := url.ParseQuery(data)
		if err != nil {
			return nil, fmt.Errorf("invalid POST data: %w", err)
		}
		return pointsFor(http.MethodPost, u.String(), params), nil
	}

	params := u.Query()
	u.RawQuery = ""
	u.Fragment = ""
	return pointsFor(http.MethodGet, u.String(), params), nil
}

// DiscoverForms returns one point per named field of every form in doc.
// Actions resolve against pageURL; methods other than POST are sent as GET.
func DiscoverForms(doc *goquery.Document, pageURL *url.URL) []InjectionPoint {
	var points []InjectionPoint
	doc.Find("form").Each(func(i int, form *goquery.Selection) {
		action, _ := form.Attr("action")
		target, err := pageURL.Parse(strings.TrimSpace(action))
		if err != nil {
			return
		}
		target.Fragment = ""

		method := http.MethodGet
		if m, ok := form.Attr("method"); ok && strings.EqualFold(strings.TrimSpace(m), http.MethodPost) {
			method = http.MethodPost
		}

		params := url.Values{}
		form.Find("input, select, textarea").Each(func(j int, s *goquery.Selection) {
			name, exists := s.Attr("name")
			if !exists || name == "" {
				return
			}
			if t, _ := s.Attr("type"); strings.EqualFold(t, "submit") || strings.EqualFold(t, "button") || strings.EqualFold(t, "image") {
				return
			}
			value, _ := s.Attr("value")
			if goquery.NodeName(s) == "textarea" {
				value = s.Text()
			}
			params.Add(name, value)
		})

		if method == http.MethodGet {
			for k, vals := range target.Query() {
				if _, ok := params[k]; !ok {
					params[k] = vals
				}
			}
			target.RawQuery = ""
		}
		points = append(points, pointsFor(method, target.String(), params)...)
	})
	return points
}

// pointsFor returns one point per parameter name, sorted by name.
func pointsFor(method, target string, params url.Values) []InjectionPoint {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	points := make([]InjectionPoint, 0, len(names))
	for _, name := range names {
		points = append(points, InjectionPoint{
			Method: method,
			URL:    target,
			Name:   name,
			Params: params,
		})
	}
	return points
}

// uniquePoints drops points with a Key already seen, keeping order.
func uniquePoints(points []InjectionPoint) []InjectionPoint {
	seen := make(map[string]bool, len(points))
	out := points[:0]
	for _, p := range points {
		if seen[p.Key()] {
			continue
		}
		seen[p.Key()] = true
		out = append(out, p)
	}
	return out
}
