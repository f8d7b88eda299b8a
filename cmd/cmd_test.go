package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/shared-expenses/internal"
	"github.com/frahmantamala/shared-expenses/internal/diagnose"
	"github.com/frahmantamala/shared-expenses/internal/expense"
	"github.com/frahmantamala/shared-expenses/internal/transport/rest"
)

func setEnv(key, value string) {
	prev, had := os.LookupEnv(key)
	Expect(os.Setenv(key, value)).To(Succeed())
	DeferCleanup(func() {
		if had {
			_ = os.Setenv(key, prev)
			return
		}
		_ = os.Unsetenv(key)
	})
}

var _ = Describe("loadConfig", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		for _, env := range envBindings {
			setEnv(env, "")
		}
	})

	It("should fall back to defaults without a config file", func() {
		cfg, err := loadConfig(dir)

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Server.Port).To(Equal(3000))
		Expect(cfg.Server.ReadHeaderTimeout).To(Equal(5 * time.Second))
		Expect(cfg.Storage.Driver).To(Equal(internal.StorageMemory))
		Expect(cfg.Telegram.RequestTimeout).To(Equal(10 * time.Second))
		Expect(cfg.Auth.Enabled).To(BeFalse())
		Expect(cfg.Diagnose.FrontendFiles).To(Equal([]string{"index.html", "app.js"}))
	})

	It("should read the deployment variable names", func() {
		setEnv("PORT", "8080")
		setEnv("TELEGRAM_BOT_TOKEN", "123:abc")
		setEnv("DEBUG_KEY", "s3cret")
		setEnv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
		setEnv("SUPABASE_URL", "https://project.supabase.co/")
		setEnv("TEST_JWT", "jwt")

		cfg, err := loadConfig(dir)

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Server.Port).To(Equal(8080))
		Expect(cfg.Telegram.BotToken).To(Equal("123:abc"))
		Expect(cfg.Debug.Key).To(Equal("s3cret"))
		Expect(cfg.Server.Origins()).To(Equal([]string{"https://a.example.com", "https://b.example.com"}))
		Expect(cfg.Auth.KeySetURL()).To(Equal("https://project.supabase.co/auth/v1/.well-known/jwks.json"))
		Expect(cfg.Auth.ExpectedIssuer()).To(Equal("https://project.supabase.co/auth/v1"))
		Expect(cfg.Diagnose.TestJWT).To(Equal("jwt"))
	})

	It("should let the environment override config.yml", func() {
		yml := "http_server:\n  port: 4000\ntelegram:\n  bot_token: from-file\n  webhook_secret: hook\ndebug:\n  key: file-key\n"
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(yml), 0o600)).To(Succeed())
		setEnv("DEBUG_KEY", "env-key")

		cfg, err := loadConfig(dir)

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Server.Port).To(Equal(4000))
		Expect(cfg.Telegram.BotToken).To(Equal("from-file"))
		Expect(cfg.Telegram.WebhookSecret).To(Equal("hook"))
		Expect(cfg.Debug.Key).To(Equal("env-key"))
	})

	It("should reject a database driver without a source", func() {
		setEnv("STORAGE_DRIVER", "postgres")

		_, err := loadConfig(dir)
		Expect(err).To(MatchError(ContainSubstring("source is required")))
	})

	It("should reject auth without a key set", func() {
		setEnv("AUTH_ENABLED", "true")

		_, err := loadConfig(dir)
		Expect(err).To(MatchError(ContainSubstring("auth config")))
	})
})

var _ = Describe("openStore", func() {
	It("should default to the in-memory store", func() {
		store, db, err := openStore(internal.StorageConfig{})

		Expect(err).NotTo(HaveOccurred())
		Expect(db).To(BeNil())
		Expect(store).To(BeAssignableToTypeOf(&expense.MemoryStore{}))
	})

	It("should open and migrate a sqlite database", func() {
		store, db, err := openStore(internal.StorageConfig{
			Driver:       internal.StorageSQLite,
			Source:       ":memory:",
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		})
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			sqlDB, _ := db.DB()
			_ = sqlDB.Close()
		})

		ctx := context.Background()
		Expect(store.Append(ctx, &expense.Expense{ID: "a", Description: "mercado", Category: "geral", Amount: 95, Type: expense.TypeShared, Date: "2026-10-17", Source: expense.SourceTelegram})).To(Succeed())
		Expect(store.Append(ctx, &expense.Expense{ID: "b", Description: "uber", Category: "geral", Amount: 15, Type: expense.TypeShared, Date: "2026-10-17", Source: expense.SourceTelegram})).To(Succeed())

		list, err := store.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(HaveLen(2))
		Expect(list[0].ID).To(Equal("b"))
	})

	It("should reject an unknown driver", func() {
		_, _, err := openStore(internal.StorageConfig{Driver: "mongo"})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("initializeDependencies", func() {
	It("should wire a router that records and lists expenses", func() {
		cfg := &internal.Config{Debug: internal.DebugConfig{Key: "k"}}
		deps, err := initializeDependencies(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(deps.Handlers.Auth).To(BeNil())

		rest.RegisterAllRoutes(deps.Router, deps.Handlers, nil, deps.Logger)

		rec := httptest.NewRecorder()
		deps.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/expenses",
			strings.NewReader(`{"description":"mercado","amount":"95,00"}`)))
		Expect(rec.Code).To(Equal(http.StatusOK))

		rec = httptest.NewRecorder()
		deps.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/last-expenses?key=k", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"mercado"`))
	})

	It("should install a failing gate when the key set is unreachable", func() {
		cfg := &internal.Config{Auth: internal.AuthConfig{Enabled: true, JWKSURL: "http://127.0.0.1:1/jwks.json"}}
		ctx, cancel := context.WithCancel(context.Background())
		DeferCleanup(cancel)

		deps, err := initializeDependencies(ctx, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(deps.Handlers.Auth).NotTo(BeNil())
	})
})

var _ = Describe("encodeResult", func() {
	res := diagnose.BackendResult{
		BaseURL: "http://localhost:3000",
		Health:  &diagnose.HTTPResult{HTTPStatus: 200, Data: map[string]any{"status": "ok"}},
		Errors:  []string{},
	}

	It("should write json", func() {
		var buf bytes.Buffer
		Expect(encodeResult(&buf, formatJSON, res)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring(`"httpStatus": 200`))
	})

	It("should write yaml", func() {
		var buf bytes.Buffer
		Expect(encodeResult(&buf, formatYAML, res)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("httpStatus: 200"))
		Expect(buf.String()).To(ContainSubstring("baseUrl: http://localhost:3000"))
	})

	It("should write one table row per field", func() {
		var buf bytes.Buffer
		Expect(encodeResult(&buf, formatTable, res)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("baseUrl"))
		Expect(buf.String()).To(ContainSubstring(`"http://localhost:3000"`))
	})

	It("should render the summary checks", func() {
		var buf bytes.Buffer
		renderChecks(&buf, []diagnose.Check{{Name: "health", OK: false, Detail: "no response"}})
		Expect(buf.String()).To(ContainSubstring("FAIL"))
		Expect(buf.String()).To(ContainSubstring("no response"))
	})
})

var _ = Describe("diagnoseOptions", func() {
	It("should carry the webhook secret with the webhook url", func() {
		cfg := &internal.Config{Telegram: internal.TelegramConfig{
			BotToken:      "123:abc",
			WebhookURL:    "https://example.com/api/telegram/webhook",
			WebhookSecret: "hook-secret",
		}}

		opts := diagnoseOptions(cfg)
		Expect(opts.WebhookURL).To(Equal("https://example.com/api/telegram/webhook"))
		Expect(opts.WebhookSecret).To(Equal("hook-secret"))
	})
})
