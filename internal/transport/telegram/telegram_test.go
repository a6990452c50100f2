package telegram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v3"
)

func TestSplitHTML(t *testing.T) {
	short := "hello"
	assert.Equal(t, []string{short}, splitHTML(short, 10))

	text := strings.Repeat("a", 8) + "\n" + strings.Repeat("b", 8)
	chunks := splitHTML(text, 10)
	assert.Equal(t, []string{strings.Repeat("a", 8), strings.Repeat("b", 8)}, chunks)

	long := strings.Repeat("x", 25)
	chunks = splitHTML(long, 10)
	assert.Equal(t, []string{"xxxxxxxxxx", "xxxxxxxxxx", "xxxxx"}, chunks)
}

func TestAllowed(t *testing.T) {
	open := &Bot{}
	assert.True(t, open.allowed(&tele.User{ID: 42}))

	owned := &Bot{ownerID: 7}
	assert.True(t, owned.allowed(&tele.User{ID: 7}))
	assert.False(t, owned.allowed(&tele.User{ID: 8}))
	assert.False(t, owned.allowed(nil))
}

func TestSessionIDFor(t *testing.T) {
	assert.Equal(t, "telegram-1", sessionIDFor(1))
	assert.GreaterOrEqual(t, len(sessionIDFor(1)), 8)
}
