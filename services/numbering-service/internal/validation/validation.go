// Package validation checks request payloads before they reach the store.
// Every validator is a pure function: it returns the normalized input or an
// *apperror.Error of kind validation listing each failing field.
package validation

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/grigta/numbering/pkg/apperror"
)

const (
	MinNameLength   = 5
	MinNumberLength = 10
)

type collector struct {
	fields []apperror.FieldError
}

func (c *collector) add(field, message string) {
	c.fields = append(c.fields, apperror.FieldError{Field: field, Message: message})
}

func (c *collector) err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return apperror.Validation(c.fields...)
}

// IsEmail accepts a bare address (no display name) whose domain has at
// least one dot.
func IsEmail(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	domain := s[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
