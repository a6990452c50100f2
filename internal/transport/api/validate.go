package api

import (
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const minSessionIDLen = 8

var (
	registerOnce      sync.Once
	errShortSessionID = errors.New("sessionId must be at least 8 characters")
)

// registerValidators installs the custom binding rules on gin's validator.
// A registration failure means a broken tag definition, so it panics.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if err := registerSessionID(v); err != nil {
			panic(fmt.Sprintf("failed to register validators: %v", err))
		}
	})
}

func registerSessionID(v *validator.Validate) error {
	if err := v.RegisterValidation("sessionid", func(fl validator.FieldLevel) bool {
		return validateSessionID(fl.Field().String()) == nil
	}); err != nil {
		return fmt.Errorf("sessionid: %w", err)
	}
	return nil
}

func validateSessionID(id string) error {
	if utf8.RuneCountInString(id) < minSessionIDLen {
		return errShortSessionID
	}
	return nil
}
