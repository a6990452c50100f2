package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name     string        `env:"APP_NAME"`
	Empty    string        `env:"APP_EMPTY"`
	Port     int           `env:"PORT,required"`
	Ratio    float64       `env:"RATIO"`
	Enabled  bool          `env:"ENABLED"`
	TTL      time.Duration `env:"TTL"`
	Files    []string      `env:"FILES" envSeparator:";"`
	APIKey   string        `env:"API_KEY"`
	Prompt   string        `env:"PROMPT"`
	internal string
	NoTag    string
}

func TestMarshalEnv(t *testing.T) {
	c := &sample{
		Name:     "tusk",
		Port:     3000,
		Ratio:    0.3,
		TTL:      30 * time.Minute,
		Files:    []string{"a.md", "b.md"},
		APIKey:   "secret",
		Prompt:   "be brief",
		internal: "x",
		NoTag:    "y",
	}

	out, err := MarshalEnv(c, false)
	require.NoError(t, err)
	assert.Equal(t, "APP_NAME=tusk\nPORT=3000\nRATIO=0.3\nENABLED=false\nTTL=30m0s\nFILES=a.md;b.md\nAPI_KEY=secret\nPROMPT=\"be brief\"\n", out)

	out, err = MarshalEnv(c, true)
	require.NoError(t, err)
	assert.Contains(t, out, "API_KEY=********\n")
	assert.NotContains(t, out, "secret")
}

func TestMarshalEnv_NotStruct(t *testing.T) {
	_, err := MarshalEnv(sample{}, false)
	assert.Error(t, err)

	out, err := MarshalEnv(&struct{ A string }{A: "x"}, false)
	require.NoError(t, err)
	assert.Empty(t, out)
}
