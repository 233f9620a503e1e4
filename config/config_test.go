package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	myhttp "github.com/bcap/teachbook-harvester/http"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	config, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.HTTP.MaxRetries != 0 {
		t.Errorf("requests should not be retried by default, got %d", config.HTTP.MaxRetries)
	}
	if config.HTTP.Parallelism != 10 || config.HTTP.Timeout != 30*time.Second {
		t.Errorf("unexpected http defaults %+v", config.HTTP)
	}
	if config.HTTP.UserAgent != myhttp.DefaultUserAgent {
		t.Errorf("got user agent %q", config.HTTP.UserAgent)
	}
	if config.Harvest.MaxSectionDepth != 3 {
		t.Errorf("got max section depth %d", config.Harvest.MaxSectionDepth)
	}
	if config.Storage.Neo4j.URL != "neo4j://localhost:7687" {
		t.Errorf("got neo4j url %q", config.Storage.Neo4j.URL)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "harvester.yaml")
	content := `
http:
  max_retries: 3
  max_retry_wait: 2s
  parallelism: 4
harvest:
  max_section_depth: 5
storage:
  neo4j:
    user: neo4j
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	config, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.HTTP.MaxRetries != 3 || config.HTTP.MaxRetryWait != 2*time.Second || config.HTTP.Parallelism != 4 {
		t.Errorf("unexpected http config %+v", config.HTTP)
	}
	if config.HTTP.MinRetryWait != time.Second {
		t.Errorf("defaults should fill missing keys, got %s", config.HTTP.MinRetryWait)
	}
	if config.Harvest.MaxSectionDepth != 5 || config.Storage.Neo4j.User != "neo4j" {
		t.Errorf("unexpected config %+v", config)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("TBHARVEST_HTTP_MAX_RETRIES", "2")
	t.Setenv("TBHARVEST_HTTP_TIMEOUT", "5s")
	t.Setenv("TBHARVEST_STORAGE_NEO4J_PASSWORD", "secret")
	config, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.HTTP.MaxRetries != 2 || config.HTTP.Timeout != 5*time.Second {
		t.Errorf("environment not applied: %+v", config.HTTP)
	}
	if config.Storage.Neo4j.Password != "secret" {
		t.Errorf("got password %q", config.Storage.Neo4j.Password)
	}
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("TBHARVEST_HTTP_PARALLELISM", "0")
	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "parallelism") {
		t.Errorf("expected a parallelism error, got %v", err)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("an explicit missing config file should fail")
	}
}

func TestBindFlags(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("TBHARVEST_HTTP_PARALLELISM", "7")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("max-retries", 0, "")
	flags.Int("parallelism", 1, "")
	flags.Duration("timeout", time.Second, "")
	if err := flags.Parse([]string{"--max-retries", "4", "--timeout", "10s"}); err != nil {
		t.Fatal(err)
	}

	v, err := New("")
	if err != nil {
		t.Fatal(err)
	}
	if err := BindFlags(v, flags); err != nil {
		t.Fatal(err)
	}
	config, err := Decode(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.HTTP.MaxRetries != 4 || config.HTTP.Timeout != 10*time.Second {
		t.Errorf("flags set on the command line should win: %+v", config.HTTP)
	}
	if config.HTTP.Parallelism != 7 {
		t.Errorf("unset flags should not override the environment, got %d", config.HTTP.Parallelism)
	}
}
