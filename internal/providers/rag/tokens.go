package rag

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	tk     *tiktoken.Tiktoken
	tkErr  error
	tkOnce sync.Once
)

func getTokenizer() (*tiktoken.Tiktoken, error) {
	tkOnce.Do(func() {
		tk, tkErr = tiktoken.GetEncoding("cl100k_base")
	})
	return tk, tkErr
}

// CountTokens estimates the cl100k token count of text.
// It is used for ingestion statistics only; when the encoding cannot be
// loaded (offline hosts) it falls back to the word count.
func CountTokens(text string) int {
	if text == "" {
		return 0
	}
	enc, err := getTokenizer()
	if err != nil {
		return CountWords(text)
	}
	return len(enc.Encode(text, nil, nil))
}

// TokenizerAvailable reports whether CountTokens uses the real encoding.
func TokenizerAvailable() bool {
	_, err := getTokenizer()
	return err == nil
}
