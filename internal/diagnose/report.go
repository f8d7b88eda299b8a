package diagnose

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Check is one line of the summary table.
type Check struct {
	Name   string `json:"name" yaml:"name"`
	OK     bool   `json:"ok" yaml:"ok"`
	Detail string `json:"detail" yaml:"detail"`
}

// Summary condenses the results into pass/fail checks.
func Summary(r Results) []Check {
	webhookDetail := strings.Join(r.Webhook.Errors, "; ")
	webhookOK := r.Webhook.OK && r.Webhook.WebhookInfo != nil && r.Webhook.WebhookInfo.URL != ""
	if r.Webhook.WebhookInfo != nil {
		webhookDetail = r.Webhook.WebhookInfo.URL
		if msg := r.Webhook.WebhookInfo.LastErrorMessage; msg != "" {
			webhookOK = false
			webhookDetail += " (last error: " + msg + ")"
		}
	}

	return []Check{
		{Name: "webhook", OK: webhookOK, Detail: webhookDetail},
		{Name: "health", OK: r.Backend.Health.ok(), Detail: statusDetail(r.Backend.Health)},
		{Name: "debug", OK: r.Backend.Debug.ok(), Detail: statusDetail(r.Backend.Debug)},
		{Name: "expenses", OK: r.Backend.Expenses.ok(), Detail: statusDetail(r.Backend.Expenses)},
		{Name: "frontend", OK: !r.Frontend.HasLocalhost(), Detail: frontendDetail(r.Frontend)},
		{Name: "auth", OK: len(r.Auth.Errors) == 0, Detail: authDetail(r.Auth)},
	}
}

// ProbableCause picks the most likely reason expenses are not showing up,
// checking the webhook before the backend.
func ProbableCause(r Results) string {
	w := r.Webhook
	switch {
	case !w.OK:
		return "Failed to query the Telegram webhook (check TELEGRAM_BOT_TOKEN)."
	case w.WebhookInfo == nil || w.WebhookInfo.URL == "":
		return "Telegram webhook is not configured."
	case w.WebhookInfo.LastErrorMessage != "":
		return "Webhook configured but Telegram reports an error: " + w.WebhookInfo.LastErrorMessage
	case !r.Backend.Health.ok():
		return "Backend health check failed (" + statusDetail(r.Backend.Health) + ")."
	case !r.Backend.Expenses.ok():
		return "Listing expenses failed (" + statusDetail(r.Backend.Expenses) + ")."
	}
	return "Undetermined."
}

// BuildReport renders the results as a markdown document.
func BuildReport(r Results) string {
	var b strings.Builder

	b.WriteString("# Diagnose report\n\n")
	b.WriteString("## Probable cause\n\n")
	b.WriteString(ProbableCause(r) + "\n\n")

	b.WriteString("## Summary\n\n")
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Check", "Result", "Detail"})
	for _, c := range Summary(r) {
		t.AppendRow(table.Row{c.Name, passFail(c.OK), c.Detail})
	}
	b.WriteString(t.RenderMarkdown() + "\n\n")

	b.WriteString("## Evidence\n\n")
	writeEvidence(&b, "Telegram webhook", r.Webhook)
	writeEvidence(&b, "Backend smoke", r.Backend)
	writeEvidence(&b, "Frontend config", r.Frontend)
	writeEvidence(&b, "Auth smoke", r.Auth)

	b.WriteString("## Answers\n\n")
	webhookSet := r.Webhook.WebhookInfo != nil && r.Webhook.WebhookInfo.URL != ""
	fmt.Fprintf(&b, "- Is the webhook configured? %s\n", yesNo(webhookSet))
	fmt.Fprintf(&b, "- Does the backend answer health with 200? %s\n", yesNo(r.Backend.Health.ok()))
	fmt.Fprintf(&b, "- Are expenses being stored (debug endpoint 200)? %s\n", yesNo(r.Backend.Debug.ok()))
	if r.Frontend.HasLocalhost() {
		b.WriteString("- Is the front end pointing at the right API? NO (localhost references found)\n")
	} else {
		b.WriteString("- Is the front end pointing at the right API? YES (no localhost references)\n")
	}
	if r.Backend.Health.ok() {
		b.WriteString("- CORS: no direct evidence of a problem; the backend answered.\n")
	} else {
		b.WriteString("- CORS: inconclusive until the backend answers.\n")
	}

	b.WriteString("\n## How to run\n\n")
	b.WriteString("```\nshared-expenses diagnose all --out diagnose_report.md\n```\n\n")
	b.WriteString("Environment: TELEGRAM_BOT_TOKEN, TELEGRAM_WEBHOOK_URL, BACKEND_BASE_URL, DEBUG_KEY, TEST_JWT.\n")

	return b.String()
}

func writeEvidence(b *strings.Builder, title string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		data = []byte(fmt.Sprintf("%q", err.Error()))
	}
	fmt.Fprintf(b, "### %s\n\n```json\n%s\n```\n\n", title, data)
}

func statusDetail(h *HTTPResult) string {
	if h == nil {
		return "no response"
	}
	return fmt.Sprintf("HTTP %d", h.HTTPStatus)
}

func frontendDetail(r FrontendResult) string {
	var hits []string
	for file, matches := range r.Files {
		if len(matches) > 0 {
			hits = append(hits, file+": "+strings.Join(matches, ","))
		}
	}
	if len(hits) == 0 {
		return "no localhost references"
	}
	sort.Strings(hits)
	return strings.Join(hits, "; ")
}

func authDetail(r AuthResult) string {
	parts := []string{"without token: " + statusDetail(r.NoAuth)}
	if r.WithAuth != nil {
		parts = append(parts, "with token: "+statusDetail(r.WithAuth))
	}
	return strings.Join(parts, ", ")
}

func passFail(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}

func yesNo(ok bool) string {
	if ok {
		return "YES"
	}
	return "NO"
}
