package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/frahmantamala/shared-expenses/internal"
	"github.com/frahmantamala/shared-expenses/internal/diagnose"
	"github.com/frahmantamala/shared-expenses/internal/telegram"
	"github.com/frahmantamala/shared-expenses/pkg/logger"
)

const (
	formatJSON  = "json"
	formatYAML  = "yaml"
	formatTable = "table"
)

var (
	diagnoseFormat string
	diagnoseOut    string
	diagnoseReport string
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Check a deployment end to end",
	Long:  `Probe the Telegram webhook, the backend endpoints, the auth gate and the front end configuration.`,
}

var diagnoseBackendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Call health, debug and expense endpoints",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, prober, err := diagnoseSetup()
		if err != nil {
			return err
		}
		res := prober.BackendSmoke(cmd.Context(), cfg.Diagnose.BackendBaseURL, cfg.Debug.Key)
		return writeResult(res)
	},
}

var diagnoseAuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "List expenses with and without TEST_JWT",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, prober, err := diagnoseSetup()
		if err != nil {
			return err
		}
		res := prober.AuthSmoke(cmd.Context(), cfg.Diagnose.BackendBaseURL, cfg.Diagnose.TestJWT)
		return writeResult(res)
	},
}

var diagnoseTelegramCmd = &cobra.Command{
	Use:   "telegram",
	Short: "Read the webhook info and set the webhook when TELEGRAM_WEBHOOK_URL is set",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, prober, err := diagnoseSetup()
		if err != nil {
			return err
		}
		res := prober.WebhookCheck(cmd.Context(), cfg.Telegram.BotToken, cfg.Telegram.WebhookURL, cfg.Telegram.WebhookSecret)
		return writeResult(res)
	},
}

var diagnoseFrontendCmd = &cobra.Command{
	Use:   "frontend [files...]",
	Short: "Look for localhost references in front end files",
	RunE: func(_ *cobra.Command, args []string) error {
		cfg, _, err := diagnoseSetup()
		if err != nil {
			return err
		}
		files := args
		if len(files) == 0 {
			files = cfg.Diagnose.FrontendFiles
		}
		return writeResult(diagnose.FrontendScan(files, diagnose.DefaultPatterns))
	},
}

var diagnoseAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Run every probe and write a markdown report",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, prober, err := diagnoseSetup()
		if err != nil {
			return err
		}

		results, err := prober.RunAll(cmd.Context(), diagnoseOptions(cfg))
		if err != nil {
			return err
		}

		if diagnoseReport != "" {
			if err := os.WriteFile(diagnoseReport, []byte(diagnose.BuildReport(results)), 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			logger.LoggerWrapper().Info("report written", "path", diagnoseReport)
		}

		if diagnoseFormat == formatTable {
			return withOutput(func(w io.Writer) error {
				renderChecks(w, diagnose.Summary(results))
				return nil
			})
		}
		return writeResult(results)
	},
}

func init() {
	diagnoseCmd.PersistentFlags().StringVarP(&diagnoseFormat, "format", "f", formatJSON, "output format: json, yaml or table")
	diagnoseCmd.PersistentFlags().StringVarP(&diagnoseOut, "out", "o", "", "write output to a file instead of stdout")
	diagnoseAllCmd.Flags().StringVar(&diagnoseReport, "report", "diagnose_report.md", "markdown report path, empty to skip")

	diagnoseCmd.AddCommand(diagnoseBackendCmd, diagnoseAuthCmd, diagnoseTelegramCmd, diagnoseFrontendCmd, diagnoseAllCmd)
}

func diagnoseSetup() (*internal.Config, *diagnose.Prober, error) {
	switch diagnoseFormat {
	case formatJSON, formatYAML, formatTable:
	default:
		return nil, nil, fmt.Errorf("unknown format %q: must be one of json, yaml, table", diagnoseFormat)
	}

	logger.Output = os.Stderr
	cfg, err := setup()
	if err != nil {
		return nil, nil, err
	}

	httpClient := &http.Client{Timeout: cfg.Telegram.RequestTimeout}
	prober := diagnose.NewProber(httpClient, telegram.NewBotClient(cfg.Telegram), logger.LoggerWrapper())
	return cfg, prober, nil
}

func diagnoseOptions(cfg *internal.Config) diagnose.Options {
	return diagnose.Options{
		BackendBaseURL: cfg.Diagnose.BackendBaseURL,
		DebugKey:       cfg.Debug.Key,
		TestJWT:        cfg.Diagnose.TestJWT,
		BotToken:       cfg.Telegram.BotToken,
		WebhookURL:     cfg.Telegram.WebhookURL,
		WebhookSecret:  cfg.Telegram.WebhookSecret,
		FrontendFiles:  cfg.Diagnose.FrontendFiles,
	}
}

func withOutput(write func(w io.Writer) error) error {
	if diagnoseOut == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(diagnoseOut)
	if err != nil {
		return fmt.Errorf("create %s: %w", diagnoseOut, err)
	}
	defer f.Close()
	return write(f)
}

func writeResult(v any) error {
	return withOutput(func(w io.Writer) error {
		return encodeResult(w, diagnoseFormat, v)
	})
}

func encodeResult(w io.Writer, format string, v any) error {
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case formatTable:
		return renderFields(w, v)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

// renderFields prints the top level fields of v, one per row.
func renderFields(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Field", "Value"})
	for _, k := range keys {
		t.AppendRow(table.Row{k, strings.TrimSpace(string(fields[k]))})
	}
	t.Render()
	return nil
}

func renderChecks(w io.Writer, checks []diagnose.Check) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Check", "Result", "Detail"})
	for _, c := range checks {
		result := "PASS"
		if !c.OK {
			result = "FAIL"
		}
		t.AppendRow(table.Row{c.Name, result, c.Detail})
	}
	t.Render()
}
