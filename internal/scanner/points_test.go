package scanner

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointsFromURL(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		method    string
		data      string
		wantURL   string
		wantNames []string
		wantErr   error
	}{
		{
			name:      "GET query parameters",
			target:    "http://example.com/search?q=1&lang=en#top",
			method:    "GET",
			wantURL:   "http://example.com/search",
			wantNames: []string{"lang", "q"},
		},
		{
			name:      "POST body parameters",
			target:    "http://example.com/comment?page=2",
			method:    "post",
			data:      "name=a&body=b",
			wantURL:   "http://example.com/comment?page=2",
			wantNames: []string{"body", "name"},
		},
		{
			name:      "No parameters",
			target:    "http://example.com/",
			method:    "GET",
			wantNames: []string{},
		},
		{
			name:    "Missing scheme",
			target:  "example.com/?q=1",
			method:  "GET",
			wantErr: ErrInvalidURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, err := PointsFromURL(tt.target, tt.method, tt.data)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)

			names := []string{}
			for _, p := range points {
				names = append(names, p.Name)
				assert.Equal(t, tt.wantURL, p.URL)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestInjectionPointWithValue(t *testing.T) {
	p := InjectionPoint{
		Method: "GET",
		URL:    "http://example.com/search",
		Name:   "q",
		Params: url.Values{"q": {"1"}, "lang": {"en"}},
	}

	got, err := url.Parse(p.WithValue("<x>"))
	require.NoError(t, err)
	assert.Equal(t, "<x>", got.Query().Get("q"))
	assert.Equal(t, "en", got.Query().Get("lang"))
	assert.Equal(t, "1", p.Params.Get("q"), "Params must not be modified")

	post := InjectionPoint{Method: "POST", URL: "http://example.com/c", Name: "q"}
	assert.Equal(t, "http://example.com/c", post.WithValue("<x>"))
}

func TestInjectionPointNewRequestPOST(t *testing.T) {
	p := InjectionPoint{
		Method: "POST",
		URL:    "http://example.com/c",
		Name:   "body",
		Params: url.Values{"body": {""}, "name": {"bob"}},
	}

	req, err := p.NewRequest(context.Background(), "<b>")
	require.NoError(t, err)
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))

	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	form, err := url.ParseQuery(string(body))
	require.NoError(t, err)
	assert.Equal(t, "<b>", form.Get("body"))
	assert.Equal(t, "bob", form.Get("name"))
}

func TestDiscoverForms(t *testing.T) {
	page := `<html><body>
<form action="/search?src=home" method="get">
  <input name="q" value="hi">
  <input type="submit" name="go" value="Go">
</form>
<form action="https://other.example/post" method="POST">
  <textarea name="comment">text</textarea>
  <select name="rating"><option>1</option></select>
  <input name="">
</form>
</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)
	base, _ := url.Parse("http://example.com/index.html")

	points := DiscoverForms(doc, base)
	require.Len(t, points, 4)

	assert.Equal(t, "GET", points[0].Method)
	assert.Equal(t, "http://example.com/search", points[0].URL)
	assert.Equal(t, "q", points[0].Name)
	assert.Equal(t, "home", points[0].Params.Get("src"))

	assert.Equal(t, "src", points[1].Name)

	assert.Equal(t, "POST", points[2].Method)
	assert.Equal(t, "https://other.example/post", points[2].URL)
	assert.Equal(t, "comment", points[2].Name)
	assert.Equal(t, "text", points[2].Params.Get("comment"))
	assert.Equal(t, "rating", points[3].Name)
}

func TestUniquePoints(t *testing.T) {
	a := InjectionPoint{Method: "GET", URL: "http://x/", Name: "a"}
	b := InjectionPoint{Method: "POST", URL: "http://x/", Name: "a"}

	got := uniquePoints([]InjectionPoint{a, b, a})
	assert.Equal(t, []InjectionPoint{a, b}, got)
}
