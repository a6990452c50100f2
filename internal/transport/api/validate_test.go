package api

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterSessionID(t *testing.T) {
	v := validator.New()
	require.NoError(t, registerSessionID(v))

	assert.NoError(t, v.Var("session-123", "sessionid"))
	assert.Error(t, v.Var("abc", "sessionid"))
	// runes, not bytes
	assert.Error(t, v.Var("日本語日本語", "sessionid"))
	assert.NoError(t, v.Var("日本語日本語日本", "sessionid"))
}

func TestRegisterValidators_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		registerValidators()
		registerValidators()
	})
}
