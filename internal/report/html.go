package report

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/Serdar715/xssctx/internal/config"
)

type htmlView struct {
	*config.ScanResult
	Contexts  []ContextCount
	Generated time.Time
}

var htmlReport = template.Must(template.New("report").Funcs(template.FuncMap{
	"lower": strings.ToLower,
}).Parse(htmlTemplate))

func writeHTML(w io.Writer, result *config.ScanResult) error {
	view := htmlView{
		ScanResult: result,
		Contexts:   CountByContext(result.Vulnerabilities),
		Generated:  time.Now(),
	}
	if err := htmlReport.Execute(w, view); err != nil {
		return fmt.Errorf("failed to render HTML: %w", err)
	}
	return nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>xssctx report - {{.TargetURL}}</title>
<style>
:root {
    --bg: #0f0f1a;
    --card: #16213e;
    --accent: #00d4ff;
    --text: #ffffff;
    --muted: #a0a0b0;
    --ok: #00ff88;
    --warn: #ffaa00;
    --danger: #ff4444;
    --critical: #ff0055;
    --border: rgba(255, 255, 255, 0.1);
}
* { margin: 0; padding: 0; box-sizing: border-box; }
body { font-family: -apple-system, BlinkMacSystemFont, sans-serif; background: var(--bg); color: var(--text); line-height: 1.6; }
.container { max-width: 1200px; margin: 0 auto; padding: 32px 20px; }
header { padding: 32px; border: 1px solid var(--border); border-radius: 16px; margin-bottom: 24px; }
header h1 { color: var(--accent); font-size: 2rem; }
.meta { color: var(--muted); font-size: 0.9rem; display: flex; gap: 24px; flex-wrap: wrap; margin-top: 8px; }
.target { font-family: Monaco, Consolas, monospace; word-break: break-all; }
.stats { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 16px; margin-bottom: 24px; }
.stat { background: var(--card); border: 1px solid var(--border); border-radius: 12px; padding: 20px; text-align: center; }
.stat .value { font-size: 2rem; font-weight: 700; }
.stat .label { color: var(--muted); text-transform: uppercase; font-size: 0.8rem; letter-spacing: 1px; }
.stat.danger .value { color: var(--danger); }
.stat.ok .value { color: var(--ok); }
.stat.warn .value { color: var(--warn); }
section { background: var(--card); border: 1px solid var(--border); border-radius: 16px; padding: 24px; margin-bottom: 24px; }
section h2 { font-size: 1.3rem; margin-bottom: 16px; }
table { width: 100%; border-collapse: collapse; }
td, th { text-align: left; padding: 6px 10px; border-bottom: 1px solid var(--border); }
.finding { border-left: 4px solid var(--danger); padding: 16px 20px; margin-bottom: 16px; background: rgba(255, 68, 68, 0.05); border-radius: 0 10px 10px 0; }
.finding h3 { display: flex; justify-content: space-between; font-size: 1.1rem; margin-bottom: 12px; }
.row { display: grid; grid-template-columns: 120px 1fr; gap: 12px; margin-bottom: 6px; }
.row .k { color: var(--muted); text-transform: uppercase; font-size: 0.8rem; }
.row .v { font-family: Monaco, Consolas, monospace; font-size: 0.85rem; word-break: break-all; background: rgba(0, 0, 0, 0.2); padding: 6px 10px; border-radius: 6px; }
.badge { padding: 2px 12px; border-radius: 12px; font-size: 0.8rem; text-transform: uppercase; }
.severity-critical { background: var(--critical); }
.severity-high { background: var(--danger); }
.severity-medium { background: var(--warn); color: #000; }
.severity-low { background: #4a9eff; }
.clean { color: var(--ok); text-align: center; padding: 32px; }
footer { color: var(--muted); text-align: center; font-size: 0.85rem; }
</style>
</head>
<body>
<div class="container">
<header>
    <h1>xssctx Scan Report</h1>
    <div class="target">{{.TargetURL}}</div>
    <div class="meta">
        <span>Scan {{.ScanID}}</span>
        <span>{{.ScanStartTime.Format "2006-01-02 15:04:05"}}</span>
        <span>Duration: {{.ScanDuration}}</span>
        {{if .WAFDetected}}<span>WAF: {{.WAFDetected}}</span>{{end}}
    </div>
</header>

<div class="stats">
    <div class="stat {{if .Vulnerabilities}}danger{{else}}ok{{end}}"><div class="value">{{len .Vulnerabilities}}</div><div class="label">Findings</div></div>
    <div class="stat"><div class="value">{{.InjectionPoints}}</div><div class="label">Injection Points</div></div>
    <div class="stat"><div class="value">{{.TestedPayloads}}</div><div class="label">Payloads Tested</div></div>
    <div class="stat {{if gt .ErrorCount 0}}warn{{else}}ok{{end}}"><div class="value">{{.ErrorCount}}</div><div class="label">Errors</div></div>
</div>

{{if .Contexts}}
<section>
    <h2>Contexts</h2>
    <table>
        <tr><th>Context</th><th>Findings</th></tr>
        {{range .Contexts}}<tr><td>{{.Context}}</td><td>{{.Count}}</td></tr>{{end}}
    </table>
</section>
{{end}}

<section>
    <h2>Findings</h2>
    {{range $v := .Vulnerabilities}}
    <div class="finding">
        <h3><span>{{$v.Type}} XSS in {{$v.Parameter}}</span><span class="badge severity-{{$v.Severity | lower}}">{{$v.Severity}}</span></h3>
        <div class="row"><span class="k">Request</span><span class="v">{{$v.Method}} {{$v.URL}}</span></div>
        {{if $v.ReadURL}}<div class="row"><span class="k">Shown at</span><span class="v">{{$v.ReadURL}}</span></div>{{end}}
        <div class="row"><span class="k">Context</span><span class="v">{{$v.Context}} ({{$v.Region}}){{if $v.Attribute}} attribute {{$v.Attribute}}{{end}}</span></div>
        <div class="row"><span class="k">Payload</span><span class="v">{{$v.Payload}}</span></div>
        {{if $v.Evidence}}<div class="row"><span class="k">Evidence</span><span class="v">{{$v.Evidence}}</span></div>{{end}}
        <div class="row"><span class="k">Verified</span><span class="v">{{if $v.Verified}}yes{{else}}no{{end}}{{if $v.WAFBypassed}}, WAF bypassed{{end}}</span></div>
    </div>
    {{else}}
    <div class="clean">No exploitable reflections found.</div>
    {{end}}
</section>

<footer>Generated by xssctx on {{.Generated.Format "2006-01-02 15:04:05 MST"}}</footer>
</div>
</body>
</html>
`
