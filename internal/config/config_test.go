package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"tasnim.dev/cloudspend/internal/spend"
)

func TestLoadFile_Missing(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "", cfg.DefaultProfile)
	assert.Empty(t, cfg.Sources)
}

func TestLoadFile_Valid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`default_profile: my-profile
default_region: eu-west-1
sources:
  - https://finops.example.com/api/spend
  - s3://billing/exports/
page_size: 25
default_sort: cost|desc
auto_refresh: true
log_file: /tmp/cloudspend.log
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "my-profile", cfg.DefaultProfile)
	assert.Equal(t, "eu-west-1", cfg.DefaultRegion)
	assert.Len(t, cfg.Sources, 2)
	assert.Equal(t, 25, cfg.PageSize)
	assert.True(t, cfg.AutoRefresh)
	assert.NoError(t, cfg.Validate())

	sort, err := cfg.Sort()
	require.NoError(t, err)
	assert.Equal(t, spend.SortSpec{Field: spend.SortByCost, Dir: spend.Desc}, sort)
}

func TestLoadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sources: [unterminated\n"), 0644))

	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "parsing")
}

func TestConfig_AutoRefreshInterval(t *testing.T) {
	data := []byte("auto_refresh_interval: 30\n")
	var cfg Config
	err := yaml.Unmarshal(data, &cfg)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.AutoRefreshInterval)
	assert.Equal(t, 30*time.Second, cfg.RefreshInterval())
}

func TestConfig_DefaultAutoRefreshInterval(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, 15*time.Second, cfg.RefreshInterval())
}

func TestConfig_MinAutoRefreshInterval(t *testing.T) {
	cfg := &Config{AutoRefreshInterval: 2}
	assert.Equal(t, 5*time.Second, cfg.RefreshInterval())
}

func TestMerge_CLIFlagsTakePrecedence(t *testing.T) {
	cfg := &Config{DefaultProfile: "config-profile", DefaultRegion: "us-east-1"}

	// CLI flags override
	p, r := cfg.Merge("cli-profile", "ap-south-1")
	assert.Equal(t, "cli-profile", p)
	assert.Equal(t, "ap-south-1", r)

	// Empty flags fall back to config
	p, r = cfg.Merge("", "")
	assert.Equal(t, "config-profile", p)
	assert.Equal(t, "us-east-1", r)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"CLOUDSPEND_SOURCE":    " https://a.example/spend , ,file:///tmp/b.json",
		"CLOUDSPEND_PAGE_SIZE": "50",
		"CLOUDSPEND_LOG_FILE":  "/var/log/cloudspend.log",
	}
	cfg := &Config{Sources: []string{"from-config"}, PageSize: 10}

	require.NoError(t, cfg.ApplyEnv(func(k string) string { return env[k] }))
	assert.Equal(t, []string{"https://a.example/spend", "file:///tmp/b.json"}, cfg.Sources)
	assert.Equal(t, 50, cfg.PageSize)
	assert.Equal(t, "/var/log/cloudspend.log", cfg.LogFile)
}

func TestApplyEnv_BadPageSize(t *testing.T) {
	cfg := &Config{}
	err := cfg.ApplyEnv(func(k string) string {
		if k == "CLOUDSPEND_PAGE_SIZE" {
			return "many"
		}
		return ""
	})
	assert.ErrorContains(t, err, "CLOUDSPEND_PAGE_SIZE")
}

func TestSourceList(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, []string{DefaultSource}, cfg.SourceList(nil))

	cfg.Sources = []string{"s3://b/k.json"}
	assert.Equal(t, []string{"s3://b/k.json"}, cfg.SourceList(nil))
	assert.Equal(t, []string{"./local.json"}, cfg.SourceList([]string{"./local.json"}))
}

func TestPageSizeOrDefault(t *testing.T) {
	assert.Equal(t, spend.DefaultPageSize, (&Config{}).PageSizeOrDefault())
	assert.Equal(t, 100, (&Config{PageSize: 100}).PageSizeOrDefault())
}

func TestValidate_JoinsErrors(t *testing.T) {
	cfg := &Config{PageSize: 7, DefaultSort: "team|asc", LogLevel: "loud", AutoRefreshInterval: -1}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page_size 7")
	assert.Contains(t, err.Error(), "default_sort")
	assert.Contains(t, err.Error(), "log_level")
	assert.Contains(t, err.Error(), "auto_refresh_interval")
}
