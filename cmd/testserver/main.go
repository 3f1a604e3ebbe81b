package main

import (
	"fmt"
	"html"
	"net/http"
	"sort"
	"sync"

	"github.com/fatih/color"
)

// Pages reflecting q into one context each. %s is the raw value.
var reflections = map[string]string{
	"/text":        `<html><body><h1>Search Results</h1><p>You searched for: %s</p></body></html>`,
	"/comment":     `<html><body><!-- last search: %s --></body></html>`,
	"/attr":        `<html><body><input name="q" value="%s"></body></html>`,
	"/attr-single": `<html><body><img alt='%s' src="x.png"></body></html>`,
	"/attr-name":   `<html><body><div %s>hi</div></body></html>`,
	"/handler":     `<html><body><a href="#" onclick="track('%s')">go</a></body></html>`,
	"/script":      `<html><script>var q = %s;</script></html>`,
	"/script-sq":   `<html><script>var q = '%s';</script></html>`,
	"/script-dq":   `<html><script>var q = "%s";</script></html>`,
	"/script-cm":   `<html><script>/* %s */ var a = 1;</script></html>`,
	"/style":       `<html><style>body { color: %s; }</style></html>`,
}

type guestbook struct {
	mu      sync.Mutex
	entries []string
}

func newMux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><h1>xssctx test server</h1><ul>")
		for _, path := range reflectionPaths() {
			fmt.Fprintf(w, `<li><a href="%s?q=test">%s</a></li>`, path, path)
		}
		fmt.Fprint(w, `</ul>
<form action="/text" method="get"><input name="q"><input type="submit" value="Search"></form>
<form action="/sign" method="post"><textarea name="message"></textarea><input type="submit" value="Sign"></form>
</body></html>`)
	})

	for path, tmpl := range reflections {
		tmpl := tmpl
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprintf(w, tmpl, r.URL.Query().Get("q"))
		})
	}

	// Safe page: the value is escaped.
	mux.HandleFunc("/escaped", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `<html><body><p>%s</p></body></html>`, html.EscapeString(r.URL.Query().Get("q")))
	})

	// Stored: /sign saves a message, /guestbook shows every message.
	gb := &guestbook{}
	mux.HandleFunc("/sign", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if msg := r.FormValue("message"); msg != "" {
				gb.mu.Lock()
				gb.entries = append(gb.entries, msg)
				gb.mu.Unlock()
			}
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body>Thanks! <a href="/guestbook">Guestbook</a></body></html>`)
	})
	mux.HandleFunc("/guestbook", func(w http.ResponseWriter, r *http.Request) {
		gb.mu.Lock()
		defer gb.mu.Unlock()
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><h1>Guestbook</h1>")
		for _, e := range gb.entries {
			fmt.Fprintf(w, "<div class=\"entry\">%s</div>", e)
		}
		fmt.Fprint(w, "</body></html>")
	})

	return mux
}

func reflectionPaths() []string {
	paths := make([]string, 0, len(reflections))
	for p := range reflections {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func main() {
	color.Green("Vulnerable server running on http://127.0.0.1:8081")
	color.White("  try: xssctx scan \"http://127.0.0.1:8081/attr?q=1\"")
	color.White("       xssctx scan http://127.0.0.1:8081/sign -X POST -d message=hi --read-url http://127.0.0.1:8081/guestbook")
	if err := http.ListenAndServe(":8081", newMux()); err != nil {
		color.Red("server stopped: %v", err)
	}
}
