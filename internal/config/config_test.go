package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionConfig_Defaults(t *testing.T) {
	cfg := NewSessionConfig(context.Background())

	assert.Equal(t, 30*time.Minute, cfg.GetSessionTTL())
	assert.Equal(t, 30, cfg.GetMaxMessages())
	assert.Equal(t, 12000, cfg.GetMaxChars())
	assert.Equal(t, time.Minute, cfg.SweepInterval)
}

func TestNewSessionConfig_FromEnv(t *testing.T) {
	t.Setenv("SESSION_TTL", "5m")
	t.Setenv("SESSION_MAX_MESSAGES", "8")
	t.Setenv("SESSION_MAX_CHARS", "500")

	cfg := NewSessionConfig(context.Background())

	assert.Equal(t, 5*time.Minute, cfg.TTL)
	assert.Equal(t, 8, cfg.MaxMessages)
	assert.Equal(t, 500, cfg.MaxChars)
}

func TestNewRAGConfig(t *testing.T) {
	runtime := t.TempDir()
	t.Setenv("TUSK_RUNTIME_PATH", runtime)
	t.Setenv("KNOWLEDGE_PERSONAL_FILES", "me-details.md,about.md")
	t.Setenv("RETRIEVAL_MIN_SIMILARITY", "0.45")

	app := NewAppConfig(context.Background())
	cfg := NewRAGConfig(context.Background(), app)

	assert.Equal(t, filepath.Join(runtime, "knowledge_base"), cfg.KnowledgeBasePath)
	assert.Equal(t, []string{"me-details.md", "about.md"}, cfg.PersonalFiles)
	assert.InDelta(t, 0.45, cfg.GetMinSimilarity(), 1e-9)
	assert.Equal(t, 3, cfg.GetTopK())
	assert.Equal(t, 4, cfg.IngestConcurrency)
}

func TestAppConfig_Paths(t *testing.T) {
	runtime := t.TempDir()
	t.Setenv("TUSK_RUNTIME_PATH", runtime)

	cfg := NewAppConfig(context.Background())
	require.Equal(t, runtime, cfg.GetRuntimePath())

	assert.Equal(t, filepath.Join(runtime, "SYSTEM.md"), cfg.GetSystemPromptPath())
	assert.Equal(t, filepath.Join(runtime, "tuskchat.db"), cfg.GetDatabasePath())
	assert.True(t, cfg.IsHTTPSelected())
	assert.False(t, cfg.IsTelegramSelected())

	t.Setenv("SYSTEM_PROMPT_PATH", "/etc/prompt.md")
	cfg = NewAppConfig(context.Background())
	assert.Equal(t, "/etc/prompt.md", cfg.GetSystemPromptPath())
}
