package diagnose

// HTTPResult is the status and decoded JSON body of one backend call.
type HTTPResult struct {
	HTTPStatus int `json:"httpStatus" yaml:"httpStatus"`
	Data       any `json:"data" yaml:"data"`
}

type BackendResult struct {
	BaseURL  string      `json:"baseUrl" yaml:"baseUrl"`
	Health   *HTTPResult `json:"health" yaml:"health"`
	Debug    *HTTPResult `json:"debug" yaml:"debug"`
	Expenses *HTTPResult `json:"expenses" yaml:"expenses"`
	Errors   []string    `json:"errors" yaml:"errors"`
}

type AuthResult struct {
	BaseURL  string      `json:"baseUrl" yaml:"baseUrl"`
	NoAuth   *HTTPResult `json:"noAuth" yaml:"noAuth"`
	WithAuth *HTTPResult `json:"withAuth" yaml:"withAuth"`
	Errors   []string    `json:"errors" yaml:"errors"`
	Notes    []string    `json:"notes" yaml:"notes"`
}

type WebhookInfo struct {
	URL                string `json:"url" yaml:"url"`
	LastErrorMessage   string `json:"last_error_message" yaml:"last_error_message"`
	PendingUpdateCount int    `json:"pending_update_count" yaml:"pending_update_count"`
}

type WebhookSet struct {
	OK          bool   `json:"ok" yaml:"ok"`
	Description string `json:"description" yaml:"description"`
}

type WebhookResult struct {
	OK          bool         `json:"ok" yaml:"ok"`
	WebhookInfo *WebhookInfo `json:"webhookInfo" yaml:"webhookInfo"`
	WebhookSet  *WebhookSet  `json:"webhookSet" yaml:"webhookSet"`
	Errors      []string     `json:"errors" yaml:"errors"`
	Notes       []string     `json:"notes" yaml:"notes"`
}

type FrontendResult struct {
	Files  map[string][]string `json:"files" yaml:"files"`
	Errors []string            `json:"errors" yaml:"errors"`
	Notes  []string            `json:"notes" yaml:"notes"`
}

// HasLocalhost reports whether any scanned file references a local host.
func (r FrontendResult) HasLocalhost() bool {
	for _, matches := range r.Files {
		if len(matches) > 0 {
			return true
		}
	}
	return false
}

// Results bundles the four probes for the report.
type Results struct {
	Webhook  WebhookResult  `json:"webhookCheck" yaml:"webhookCheck"`
	Backend  BackendResult  `json:"backendSmoke" yaml:"backendSmoke"`
	Frontend FrontendResult `json:"frontendConfig" yaml:"frontendConfig"`
	Auth     AuthResult     `json:"authSmoke" yaml:"authSmoke"`
}

func (h *HTTPResult) ok() bool {
	return h != nil && h.HTTPStatus == 200
}
