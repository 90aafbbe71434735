package utils

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ochronus/goputiokit/internal/config"
	"github.com/ochronus/goputiokit/internal/fakeapi"
	"github.com/ochronus/goputiokit/internal/poll"
	"github.com/ochronus/goputiokit/pkg/putio"
	"github.com/sirupsen/logrus"
)

func fakeClient(t *testing.T, autoLink bool) *putio.Client {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	server := fakeapi.NewServer(fakeapi.Config{Token: "linked-token", AutoLink: autoLink}, nil, logger)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	session := putio.NewSession(
		putio.WithRouter(putio.Router{Base: ts.URL + "/v2"}),
		putio.WithTransport(putio.NewLiveTransport(putio.LiveConfig{HTTPClient: ts.Client(), Timeout: 5 * time.Second})),
	)
	return putio.NewClient(session)
}

func noSleep() poll.Config {
	return poll.Config{Sleeper: func(time.Duration) {}}
}

func TestConfigTemplateSections(t *testing.T) {
	for _, section := range []string{"loglevel", "[putio]", "api_key", "base_url", "upload_url", "timeout", "app_id", "[fake]"} {
		if !strings.Contains(configTemplate, section) {
			t.Errorf("configTemplate missing section: %s", section)
		}
	}
	if !strings.Contains(configTemplate, "{{PUTIO_API_KEY}}") {
		t.Error("configTemplate missing {{PUTIO_API_KEY}} placeholder")
	}
}

func TestGenerateConfigLoadsBack(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "subdir", "nested", "config.toml")

	var out bytes.Buffer
	if err := GenerateConfig(configPath, "test-api-key", &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if cfg.Putio.APIKey != "test-api-key" {
		t.Errorf("expected api key from template, got %q", cfg.Putio.APIKey)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("generated config does not validate: %v", err)
	}
	if !strings.Contains(out.String(), "Writing "+configPath) {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestGenerateConfigBackup(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")

	originalContent := "original config content"
	if err := os.WriteFile(configPath, []byte(originalContent), 0644); err != nil {
		t.Fatalf("failed to write original config: %v", err)
	}

	if err := GenerateConfig(configPath, "new-key", &bytes.Buffer{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	backupContent, err := os.ReadFile(configPath + ".bak")
	if err != nil {
		t.Fatalf("failed to read backup: %v", err)
	}
	if string(backupContent) != originalContent {
		t.Errorf("backup content mismatch: expected '%s', got '%s'", originalContent, string(backupContent))
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read config: %v", err)
	}
	if !strings.Contains(string(content), `api_key = "new-key"`) {
		t.Error("config should contain the new API key")
	}
	if strings.Contains(string(content), "{{PUTIO_API_KEY}}") {
		t.Error("config should not contain the placeholder after replacement")
	}
}

func TestGetToken(t *testing.T) {
	client := fakeClient(t, true)

	var out bytes.Buffer
	token, err := GetToken(context.Background(), client, "6487", &out, noSleep())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "linked-token" {
		t.Errorf("expected linked-token, got %q", token)
	}
	if !strings.Contains(out.String(), LinkURL) || !strings.Contains(out.String(), "linked-token") {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestGetTokenGivesUp(t *testing.T) {
	client := fakeClient(t, false)

	cfg := noSleep()
	cfg.MaxAttempts = 3
	_, err := GetToken(context.Background(), client, "6487", &bytes.Buffer{}, cfg)
	if !errors.Is(err, poll.ErrExhausted) {
		t.Errorf("expected exhausted polling, got %v", err)
	}
}

func TestGetTokenCodeFailure(t *testing.T) {
	mock := putio.NewMockTransport()
	mock.SetResponse(http.StatusInternalServerError, nil)
	client := putio.NewClient(putio.NewSession(putio.WithMock(mock)))

	_, err := GetToken(context.Background(), client, "6487", &bytes.Buffer{}, noSleep())
	if err == nil || !strings.Contains(err.Error(), "failed to get OOB code") {
		t.Errorf("expected OOB code error, got %v", err)
	}
}

func TestGetTokenCanceled(t *testing.T) {
	client := fakeClient(t, false)

	ctx, cancel := context.WithCancel(context.Background())
	cfg := poll.Config{Sleeper: func(time.Duration) { cancel() }}
	_, err := GetToken(ctx, client, "6487", &bytes.Buffer{}, cfg)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
