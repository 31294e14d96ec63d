package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"internradar/internal/model"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

const validConfig = `
poll_interval: 10m
owner_timeout: 2m
database_path: /tmp/radar.db
politeness:
  min_delay: 500ms
  max_delay: 2s
  rate_limit_backoff: 45s
metrics:
  addr: ":9090"
notification:
  type: log
companies:
  - name: acme
    url: https://acme.example.com/careers
    source_type: careerpage
    selector: "div.posting"
    cadence_hours: 6
    enabled: true
sources:
  - name: intern-board
    url: https://boards.example.com/interns/jobs
    cadence_minutes: 30
    priority: 1
    enabled: true
`

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.PollInterval != 10*time.Minute {
		t.Errorf("poll interval = %v", cfg.PollInterval)
	}
	if cfg.OwnerTimeout != 2*time.Minute {
		t.Errorf("owner timeout = %v", cfg.OwnerTimeout)
	}
	if cfg.DatabasePath != "/tmp/radar.db" {
		t.Errorf("database path = %q", cfg.DatabasePath)
	}
	if cfg.Politeness.MinDelay != 500*time.Millisecond || cfg.Politeness.RateLimitBackoff != 45*time.Second {
		t.Errorf("politeness = %+v", cfg.Politeness)
	}
	if cfg.Metrics.Addr != ":9090" {
		t.Errorf("metrics addr = %q", cfg.Metrics.Addr)
	}
	if len(cfg.Companies) != 1 || cfg.Companies[0].Selector != "div.posting" {
		t.Errorf("companies = %+v", cfg.Companies)
	}
	// source_type defaults to "board" for sources.
	if len(cfg.Sources) != 1 || cfg.Sources[0].SourceType != "board" {
		t.Errorf("sources = %+v", cfg.Sources)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
companies:
  - name: acme
    url: https://acme.example.com/careers
    cadence_hours: 6
    enabled: true
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PollInterval != defaultPollInterval {
		t.Errorf("poll interval default = %v", cfg.PollInterval)
	}
	if cfg.DatabasePath != defaultDatabasePath {
		t.Errorf("database path default = %q", cfg.DatabasePath)
	}
	if cfg.Companies[0].SourceType != "careerpage" {
		t.Errorf("company source_type default = %q", cfg.Companies[0].SourceType)
	}
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_WEBHOOK", "https://hooks.slack.com/services/T000/B000/XXX")
	cfg, err := Load(writeConfig(t, `
notification:
  type: slack
  webhook_url: ${TEST_WEBHOOK}
companies:
  - name: acme
    url: https://acme.example.com/careers
    cadence_hours: 6
    enabled: true
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !strings.HasPrefix(cfg.Notification.WebhookURL, "https://hooks.slack.com/") {
		t.Errorf("webhook not expanded: %q", cfg.Notification.WebhookURL)
	}
}

func TestLoadRejectsBadConfigs(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "nothing enabled",
			content: `
companies:
  - name: acme
    url: https://x
    cadence_hours: 6
    enabled: false
`,
		},
		{
			name: "zero cadence",
			content: `
companies:
  - name: acme
    url: https://x
    cadence_hours: 0
    enabled: true
`,
		},
		{
			name: "duplicate owner names",
			content: `
companies:
  - name: acme
    url: https://x
    cadence_hours: 6
    enabled: true
sources:
  - name: acme
    url: https://y
    cadence_minutes: 30
    enabled: true
`,
		},
		{
			name: "slack without webhook",
			content: `
notification:
  type: slack
companies:
  - name: acme
    url: https://x
    cadence_hours: 6
    enabled: true
`,
		},
		{
			name: "bad poll interval",
			content: `
poll_interval: often
companies:
  - name: acme
    url: https://x
    cadence_hours: 6
    enabled: true
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestToOwners(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	owners := cfg.ToOwners()
	if len(owners) != 2 {
		t.Fatalf("ToOwners returned %d owners, want 2", len(owners))
	}

	company := owners[0]
	if company.Kind != model.OwnerCompany || company.Cadence != 6*time.Hour {
		t.Errorf("company owner = %+v", company)
	}
	board := owners[1]
	if board.Kind != model.OwnerBoard || board.Cadence != 30*time.Minute || board.Priority != 1 {
		t.Errorf("board owner = %+v", board)
	}
}
