// Package validation проверяет пользовательский ввод до того, как он попадет
// в реплику или в мутацию.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// IdentifierPattern допустимый формат идентификаторов аккаунта, workspace и пользователя.
// Латинские буквы, цифры, '_' и '-', длина 3-64 символа.
var IdentifierPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)

const (
	// MinIdentifierLen минимальная длина идентификатора
	MinIdentifierLen = 3
	// MaxIdentifierLen максимальная длина идентификатора
	MaxIdentifierLen = 64
	// MaxReactionLen максимальная длина реакции в символах
	MaxReactionLen = 32
)

// ValidateIdentifier проверяет идентификатор, field попадает в текст ошибки.
func ValidateIdentifier(field, value string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}

	if len(value) < MinIdentifierLen {
		return fmt.Errorf("%s must be at least %d characters long", field, MinIdentifierLen)
	}

	if len(value) > MaxIdentifierLen {
		return fmt.Errorf("%s must not exceed %d characters", field, MaxIdentifierLen)
	}

	if !IdentifierPattern.MatchString(value) {
		return fmt.Errorf("%s can only contain letters (a-z, A-Z), numbers (0-9), '_' and '-'", field)
	}

	return nil
}

// ValidateReaction проверяет реакцию на узел: непустая строка без пробелов
// и управляющих символов (обычно emoji или короткое имя вроде "like").
func ValidateReaction(reaction string) error {
	if strings.TrimSpace(reaction) == "" {
		return fmt.Errorf("reaction cannot be empty")
	}

	if !utf8.ValidString(reaction) {
		return fmt.Errorf("reaction must be valid UTF-8")
	}

	if utf8.RuneCountInString(reaction) > MaxReactionLen {
		return fmt.Errorf("reaction must not exceed %d characters", MaxReactionLen)
	}

	for _, r := range reaction {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("reaction cannot contain whitespace or control characters")
		}
	}

	return nil
}
