package script

// security.go rejects scripts before they reach the interpreter. The runtime
// itself carries no filesystem, process, or network bindings, so the check
// targets the remaining escape hatches: dynamic code evaluation and
// prototype/global tampering, plus a size cap against degenerate inputs.

import (
	"errors"
	"fmt"
	"regexp"
)

// MaxContentBytes caps script size.
const MaxContentBytes = 64 * 1024

// ErrEmptyScript rejects scripts with no content.
var ErrEmptyScript = errors.New("script content is empty")

// ErrScriptTooLarge rejects scripts over MaxContentBytes.
var ErrScriptTooLarge = errors.New("script content exceeds size limit")

// ForbiddenIdentifierError names the identifier that failed validation.
type ForbiddenIdentifierError struct {
	Identifier string
}

func (e *ForbiddenIdentifierError) Error() string {
	return fmt.Sprintf("script uses forbidden identifier %q", e.Identifier)
}

// forbiddenIdentifiers are matched as whole words anywhere in the source.
// `Function` (capital F) is the constructor, not the function keyword.
var forbiddenIdentifiers = []string{
	"eval",
	"Function",
	"constructor",
	"globalThis",
	"__proto__",
}

var forbiddenPattern = buildForbiddenPattern()

func buildForbiddenPattern() *regexp.Regexp {
	alternatives := ""
	for i, id := range forbiddenIdentifiers {
		if i > 0 {
			alternatives += "|"
		}
		alternatives += regexp.QuoteMeta(id)
	}
	return regexp.MustCompile(`(^|[^A-Za-z0-9_$])(` + alternatives + `)([^A-Za-z0-9_$]|$)`)
}

// ValidateContent checks a script body against the size cap and the
// forbidden identifier list.
func ValidateContent(content string) error {
	if content == "" {
		return ErrEmptyScript
	}
	if len(content) > MaxContentBytes {
		return ErrScriptTooLarge
	}
	if m := forbiddenPattern.FindStringSubmatch(content); m != nil {
		return &ForbiddenIdentifierError{Identifier: m[2]}
	}
	return nil
}

// Validate checks the whole script: a known type plus valid content.
func Validate(s Script) error {
	if !s.Type.Valid() {
		return fmt.Errorf("unknown script type %q", s.Type)
	}
	return ValidateContent(s.Content)
}
