package phishk

import "strings"

// HTMLElementType tag name of the elements the checks care about
type HTMLElementType int16

// revive:disable:var-naming
const (
	CUSTOM HTMLElementType = iota
	A
	BODY
	BUTTON
	FORM
	FRAME
	IFRAME
	INPUT
	SELECT
	TEXTAREA
)

// HTMLTypeMap for taking in tag name -> outputing HTMLElementType
var HTMLTypeMap = map[string]HTMLElementType{
	"A":        A,
	"BODY":     BODY,
	"BUTTON":   BUTTON,
	"FORM":     FORM,
	"FRAME":    FRAME,
	"IFRAME":   IFRAME,
	"INPUT":    INPUT,
	"SELECT":   SELECT,
	"TEXTAREA": TEXTAREA,
}

// revive:enable:var-naming

// ElementTypeOf a tag name, anything not in the table is CUSTOM
func ElementTypeOf(tagName string) HTMLElementType {
	if t, ok := HTMLTypeMap[strings.ToUpper(tagName)]; ok {
		return t
	}
	return CUSTOM
}

// IsFormControl returns true for elements that carry a DOM type property
func (h HTMLElementType) IsFormControl() bool {
	switch h {
	case INPUT, TEXTAREA, SELECT, BUTTON:
		return true
	}
	return false
}
