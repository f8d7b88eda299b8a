package diagnose

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/frahmantamala/shared-expenses/internal/telegram"
)

const DefaultBaseURL = "http://localhost:3000"

// DefaultPatterns are the host references a deployed front end must not carry.
var DefaultPatterns = []string{"localhost", "127.0.0.1"}

// DefaultFrontendFiles are scanned when no file list is configured.
var DefaultFrontendFiles = []string{"index.html", "app.js"}

type Options struct {
	BackendBaseURL string
	DebugKey       string
	TestJWT        string
	BotToken       string
	WebhookURL     string
	WebhookSecret  string
	FrontendFiles  []string
}

// Prober runs the deployment checks. The backend is only reached over HTTP.
type Prober struct {
	http     *http.Client
	telegram telegram.Client
	logger   *slog.Logger
}

func NewProber(httpClient *http.Client, tg telegram.Client, logger *slog.Logger) *Prober {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{http: httpClient, telegram: tg, logger: logger}
}

func (p *Prober) fetchJSON(ctx context.Context, target, bearer string) (*HTTPResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		data = map[string]any{}
	}
	return &HTTPResult{HTTPStatus: resp.StatusCode, Data: data}, nil
}

func baseURL(raw string) string {
	if raw == "" {
		raw = DefaultBaseURL
	}
	return strings.TrimRight(raw, "/")
}

// BackendSmoke calls the health, debug and expense endpoints.
func (p *Prober) BackendSmoke(ctx context.Context, base, debugKey string) BackendResult {
	base = baseURL(base)
	result := BackendResult{BaseURL: base, Errors: []string{}}

	var err error
	if result.Health, err = p.fetchJSON(ctx, base+"/api/telegram/health", ""); err != nil {
		result.Errors = append(result.Errors, "health failed: "+err.Error())
	}
	if result.Debug, err = p.fetchJSON(ctx, base+"/debug/last-expenses?key="+url.QueryEscape(debugKey), ""); err != nil {
		result.Errors = append(result.Errors, "debug failed: "+err.Error())
	}
	if result.Expenses, err = p.fetchJSON(ctx, base+"/api/expenses", ""); err != nil {
		result.Errors = append(result.Errors, "expenses failed: "+err.Error())
	}
	return result
}

// AuthSmoke lists expenses without and, when a token is given, with a bearer.
func (p *Prober) AuthSmoke(ctx context.Context, base, token string) AuthResult {
	base = baseURL(base)
	result := AuthResult{BaseURL: base, Errors: []string{}, Notes: []string{}}

	var err error
	if result.NoAuth, err = p.fetchJSON(ctx, base+"/api/expenses", ""); err != nil {
		result.Errors = append(result.Errors, "request without token failed: "+err.Error())
	}

	if token == "" {
		result.Notes = append(result.Notes, "TEST_JWT not set; authenticated request skipped.")
		return result
	}

	if result.WithAuth, err = p.fetchJSON(ctx, base+"/api/expenses", token); err != nil {
		result.Errors = append(result.Errors, "request with token failed: "+err.Error())
	}
	return result
}

// WebhookCheck reads the webhook info and, when webhookURL is set, points
// the webhook at it with the given secret token.
func (p *Prober) WebhookCheck(ctx context.Context, token, webhookURL, secret string) WebhookResult {
	result := WebhookResult{Errors: []string{}, Notes: []string{}}
	if token == "" {
		result.Errors = append(result.Errors, "TELEGRAM_BOT_TOKEN not set.")
		return result
	}

	info, err := p.telegram.GetWebhookInfo(ctx, token)
	if err != nil {
		result.Errors = append(result.Errors, "getWebhookInfo failed: "+err.Error())
		return result
	}
	result.WebhookInfo = &WebhookInfo{
		URL:                info.URL,
		LastErrorMessage:   info.LastErrorMessage,
		PendingUpdateCount: int(info.PendingUpdateCount),
	}

	if webhookURL != "" {
		set := &WebhookSet{OK: true}
		if err := p.telegram.SetWebhook(ctx, token, webhookURL, secret); err != nil {
			set.OK = false
			set.Description = err.Error()
		}
		result.WebhookSet = set
	} else {
		result.Notes = append(result.Notes, "TELEGRAM_WEBHOOK_URL not set; setWebhook skipped.")
	}

	result.OK = true
	result.Notes = append(result.Notes, "Token used: "+MaskToken(token))
	return result
}

// FrontendScan reports which patterns occur in each file.
func FrontendScan(files, patterns []string) FrontendResult {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	result := FrontendResult{Files: make(map[string][]string, len(files)), Errors: []string{}, Notes: []string{}}

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("read %s: %v", file, err))
			continue
		}
		matches := []string{}
		for _, pattern := range patterns {
			if strings.Contains(string(content), pattern) {
				matches = append(matches, pattern)
			}
		}
		result.Files[file] = matches
	}

	if !result.HasLocalhost() {
		result.Notes = append(result.Notes, "No localhost references found.")
	}
	return result
}

// RunAll runs every probe concurrently.
func (p *Prober) RunAll(ctx context.Context, opts Options) (Results, error) {
	var results Results
	files := opts.FrontendFiles
	if len(files) == 0 {
		files = DefaultFrontendFiles
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		results.Webhook = p.WebhookCheck(gctx, opts.BotToken, opts.WebhookURL, opts.WebhookSecret)
		return nil
	})
	g.Go(func() error {
		results.Backend = p.BackendSmoke(gctx, opts.BackendBaseURL, opts.DebugKey)
		return nil
	})
	g.Go(func() error {
		results.Frontend = FrontendScan(files, DefaultPatterns)
		return nil
	})
	g.Go(func() error {
		results.Auth = p.AuthSmoke(gctx, opts.BackendBaseURL, opts.TestJWT)
		return nil
	})
	if err := g.Wait(); err != nil {
		return results, err
	}

	p.logger.Info("diagnose finished",
		"webhook_ok", results.Webhook.OK,
		"backend_errors", len(results.Backend.Errors),
		"frontend_localhost", results.Frontend.HasLocalhost())
	return results, nil
}

// MaskToken keeps the last six characters of a secret.
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	visible := token
	if len(token) > 6 {
		visible = token[len(token)-6:]
	}
	return "***" + visible
}
