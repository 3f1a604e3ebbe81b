package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Serdar715/xssctx/internal/banner"
	"github.com/Serdar715/xssctx/internal/config"
	"github.com/Serdar715/xssctx/internal/payloads"
	"github.com/Serdar715/xssctx/internal/report"
	"github.com/Serdar715/xssctx/internal/scanner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// scanOptions holds the flags that do not map 1:1 onto ScanConfig.
type scanOptions struct {
	urlListFile string
	noSmart     bool
	noStored    bool
	headers     []string
	cookieFile  string
	webhook     string
}

func newScanCmd() *cobra.Command {
	cfg := config.DefaultConfig()
	opts := &scanOptions{}

	cmd := &cobra.Command{
		Use:   "scan [target_url]",
		Short: "Audit a URL for reflected and stored XSS",
		Example: `  # Basic GET scan
  xssctx scan "https://example.com/search?q=test"

  # POST parameters, forms on the page, HTML report
  xssctx scan "https://example.com/comment" -X POST -d "name=a&body=b" --forms -o report.html --format html

  # Check where stored values are shown
  xssctx scan "https://example.com/post" -X POST -d "c=1" --read-url https://example.com/comments

  # Through Burp, authenticated, browser-verified
  xssctx scan "https://example.com/?q=1" --proxy http://127.0.0.1:8080 -c "session=abc" --verify

  # Batch scan from URL list
  xssctx scan -l urls.txt -o report.json`,
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && opts.urlListFile == "" {
				return fmt.Errorf("either a target URL or a URL list file (-l) must be provided")
			}
			if err := validateWAF(cfg.WAFType); err != nil {
				return err
			}
			if cfg.ProxyURL != "" {
				if !strings.HasPrefix(cfg.ProxyURL, "http://") && !strings.HasPrefix(cfg.ProxyURL, "https://") && !strings.HasPrefix(cfg.ProxyURL, "socks5://") {
					return fmt.Errorf("invalid proxy URL format. Use http://, https://, or socks5:// prefix")
				}
			}
			for _, path := range []string{opts.urlListFile, cfg.HeadersFile, opts.cookieFile, cfg.PayloadFile} {
				if path == "" {
					continue
				}
				if _, err := os.Stat(path); err != nil {
					return fmt.Errorf("file not found: %s", path)
				}
			}
			for _, h := range opts.headers {
				if _, _, ok := config.ParseHeader(h); !ok {
					return fmt.Errorf("invalid header format: %s (expected 'Header-Name: value')", h)
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := collectTargets(args, opts.urlListFile)
			if err != nil {
				return err
			}
			if err := applyOptions(cfg, opts); err != nil {
				return err
			}

			if !cfg.Silent {
				fmt.Fprintln(cmd.OutOrStdout(), banner.GetBanner())
				printConfigSummary(cfg, len(targets))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			result, err := runTargets(ctx, cmd, cfg, targets)
			if err != nil {
				return err
			}

			if cfg.Silent {
				printFindings(cmd, result.Vulnerabilities)
			} else {
				printSummary(result, len(targets))
			}

			if cfg.OutputFile != "" {
				r, err := report.New(cfg.OutputFormat)
				if err != nil {
					return err
				}
				if err := r.Save(result, cfg.OutputFile); err != nil {
					return fmt.Errorf("failed to generate report: %w", err)
				}
				if !cfg.Silent {
					color.Green("\n[✓] Report saved to: %s\n", cfg.OutputFile)
				}
			}

			if err := report.SendWebhook(context.Background(), &http.Client{Timeout: 10 * time.Second}, opts.webhook, result); err != nil {
				color.Yellow("[!] Webhook failed: %v", err)
			} else if opts.webhook != "" && len(result.Vulnerabilities) > 0 && !cfg.Silent {
				color.Green("[+] Webhook notification sent!")
			}
			return nil
		},
	}

	f := cmd.Flags()
	// Target flags
	f.StringVarP(&opts.urlListFile, "list", "l", "", "File containing URLs to scan (one per line)")
	f.StringVarP(&cfg.Method, "method", "X", cfg.Method, "HTTP method for the target's parameters (GET, POST)")
	f.StringVarP(&cfg.Data, "data", "d", "", "POST body (name=value&...) when the method is POST")
	f.BoolVar(&cfg.DiscoverForms, "forms", false, "Also test the fields of every form on the target page")

	// Payload flags
	f.StringVarP(&cfg.PayloadFile, "payloads", "p", "", "Custom payload file to use instead of generated payloads")
	f.BoolVar(&opts.noSmart, "no-smart", false, "Disable polyglots and WAF variants")
	f.BoolVar(&cfg.CheckFiltering, "check-filter", false, "Probe which breakout characters are filtered and skip payloads needing them")
	f.BoolVar(&cfg.ScriptTextNeedsBreak, "script-text-needs-break", false, "Treat plain script text as inert until broken out of")

	// Stored flags
	f.BoolVar(&opts.noStored, "no-stored", false, "Skip the stored XSS check")
	f.StringArrayVar(&cfg.StoredCheckURLs, "read-url", nil, "Extra page where stored values may be shown. Can be used multiple times.")

	// Browser flags
	f.BoolVar(&cfg.Verify, "verify", false, "Confirm GET findings in headless Chrome")
	f.BoolVarP(&cfg.VisibleMode, "visible", "v", false, "Run the verification browser in visible mode")
	f.IntVar(&cfg.BrowserWaitTime, "browser-wait", cfg.BrowserWaitTime, "Browser wait time in ms for page stability")
	f.IntVar(&cfg.NavigationDelay, "nav-delay", cfg.NavigationDelay, "Navigation delay in ms")

	// WAF flags
	f.StringVarP(&cfg.WAFType, "waf", "w", cfg.WAFType, "WAF type (auto, none, "+strings.Join(payloads.KnownWAFs(), ", ")+")")

	// Output flags
	f.StringVar(&cfg.OutputFormat, "format", cfg.OutputFormat, "Report format (json, html, markdown)")
	f.StringVarP(&cfg.OutputFile, "output", "o", "", "Output file for report")
	f.BoolVar(&cfg.Verbose, "verbose", false, "Enable verbose output")
	f.BoolVar(&cfg.Silent, "silent", false, "Silence all output except findings")
	f.StringVar(&opts.webhook, "webhook", "", "Webhook URL notified with a summary when findings exist")

	// Performance flags
	f.IntVarP(&cfg.Threads, "threads", "t", cfg.Threads, "Number of concurrent workers per injection point")
	f.IntVar(&cfg.Timeout, "timeout", cfg.Timeout, "Request timeout in seconds")
	f.IntVar(&cfg.Delay, "delay", 0, "Delay between requests in milliseconds (rate limiting)")

	// Proxy and authentication flags
	f.StringVar(&cfg.ProxyURL, "proxy", "", "Proxy URL (e.g., http://127.0.0.1:8080 for Burp Suite)")
	f.StringVarP(&cfg.Cookies, "cookie", "c", "", "Cookie header value (e.g., \"session=abc123; token=xyz\")")
	f.StringVar(&cfg.AuthHeader, "auth", "", "Authorization header value (e.g., \"Bearer eyJhbGc...\")")
	f.StringArrayVarP(&opts.headers, "header", "H", nil, "Custom header (\"Name: value\"). Can be used multiple times.")
	f.StringVar(&cfg.HeadersFile, "headers-file", "", "File containing custom headers (key: value format)")
	f.StringVar(&opts.cookieFile, "cookie-file", "", "File containing cookies (name=value format, one per line)")

	return cmd
}

// applyOptions folds files and flag lists into cfg and validates it.
func applyOptions(cfg *config.ScanConfig, opts *scanOptions) error {
	cfg.SmartPayload = !opts.noSmart
	cfg.StoredXSS = !opts.noStored
	cfg.Method = strings.ToUpper(cfg.Method)

	if cfg.Headers == nil {
		cfg.Headers = make(map[string]string)
	}
	if cfg.HeadersFile != "" {
		headers, err := config.LoadHeaders(cfg.HeadersFile)
		if err != nil {
			return fmt.Errorf("failed to load headers file: %w", err)
		}
		for k, v := range headers {
			cfg.Headers[k] = v
		}
	}
	for _, h := range opts.headers {
		k, v, _ := config.ParseHeader(h)
		cfg.Headers[k] = v
	}

	if opts.cookieFile != "" {
		cookies, err := config.LoadCookies(opts.cookieFile)
		if err != nil {
			return fmt.Errorf("failed to load cookie file: %w", err)
		}
		if cfg.Cookies != "" {
			cfg.Cookies += "; " + cookies
		} else {
			cfg.Cookies = cookies
		}
	}
	return nil
}

// runTargets audits each target in turn. An interrupt stops the batch and
// keeps what was found so far. It fails only when no target could be
// audited at all.
func runTargets(ctx context.Context, cmd *cobra.Command, base *config.ScanConfig, targets []string) (*config.ScanResult, error) {
	var results []*config.ScanResult
	var failures []error

	for i, target := range targets {
		cfg := *base
		cfg.TargetURL = target
		if err := cfg.Validate(); err != nil {
			if errors.Is(err, config.ErrInvalidTarget) {
				err = fmt.Errorf("%w: %v", scanner.ErrInvalidURL, err)
			}
			failures = append(failures, err)
			color.Red("[!] Skipping %s: %v", truncateURL(target, 60), err)
			continue
		}

		if !cfg.Silent {
			if len(targets) > 1 {
				color.Cyan("\n[*] Scanning URL %d/%d: %s", i+1, len(targets), truncateURL(target, 60))
			} else {
				color.Cyan("\n[*] Starting XSS audit on: %s\n", target)
			}
		}

		auditor, err := scanner.NewAuditor(&cfg)
		if err != nil {
			failures = append(failures, err)
			color.Red("[!] Failed to initialize scanner for %s: %v", truncateURL(target, 40), err)
			continue
		}
		result, err := auditor.Run(ctx)
		if cerr := auditor.Close(); cerr != nil && cfg.Verbose {
			color.Yellow("[!] Browser shutdown: %v", cerr)
		}
		if result != nil && (err == nil || errors.Is(err, scanner.ErrContextCanceled)) {
			results = append(results, result)
		}

		switch {
		case errors.Is(err, scanner.ErrContextCanceled):
			color.Yellow("\n\n[!] Scan interrupted by user (Ctrl+C)")
			return mergeResults(results, targets), nil
		case err != nil:
			failures = append(failures, err)
			color.Red("[!] Scan failed for %s: %v", truncateURL(target, 40), err)
		}
	}

	if len(results) == 0 && len(failures) > 0 {
		return nil, fmt.Errorf("no target could be audited: %w", errors.Join(failures...))
	}
	return mergeResults(results, targets), nil
}

func collectTargets(args []string, listFile string) ([]string, error) {
	var targets []string
	if len(args) > 0 {
		targets = append(targets, args[0])
	}
	if listFile != "" {
		urls, err := loadURLsFromFile(listFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load URL list: %w", err)
		}
		targets = append(targets, urls...)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no target URLs provided")
	}
	return targets, nil
}

func validateWAF(wafType string) error {
	valid := append([]string{"auto", "none", "incapsula", "aws-waf"}, payloads.KnownWAFs()...)
	for _, w := range valid {
		if strings.EqualFold(wafType, w) {
			return nil
		}
	}
	return fmt.Errorf("invalid WAF type: %s. Valid types: %s", wafType, strings.Join(valid, ", "))
}
