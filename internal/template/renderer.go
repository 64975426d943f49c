// Package template renders campaign message templates by substituting
// {VARNAME} placeholders from a fixed vocabulary with concrete values.
package template

import "regexp"

// Variables is the fixed placeholder vocabulary a template may use.
var Variables = []string{"CHECK", "CLASE", "GRUPO", "HORA", "FECHA", "NOMBRECHECK", "LINK"}

var (
	// tokenPattern matches only vocabulary tokens; anything else is left alone.
	tokenPattern = regexp.MustCompile(`\{(CHECK|CLASE|GRUPO|HORA|FECHA|NOMBRECHECK|LINK)\}`)

	// anyTokenPattern matches any {UPPERCASE} token, used for counting how
	// many placeholders a template carries.
	anyTokenPattern = regexp.MustCompile(`\{[A-Z]+\}`)
)

// Preview is one rendered message, carrying both the unrendered template and
// the final text so a consumer can tell whether substitution changed anything.
type Preview struct {
	Variables     map[string]string `json:"variables"`
	Link          string            `json:"link"`
	TextoOriginal string            `json:"texto_original"`
	TextoFinal    string            `json:"texto_final"`
}

// Substituted reports whether rendering changed the text.
func (p *Preview) Substituted() bool {
	return p.TextoOriginal != p.TextoFinal
}

// Render replaces every vocabulary placeholder that has a value in vars.
// Tokens without a value and tokens outside the vocabulary stay untouched,
// so rendering a template with no recognized placeholders returns it
// unchanged.
func Render(texto string, vars map[string]string) string {
	return tokenPattern.ReplaceAllStringFunc(texto, func(match string) string {
		name := match[1 : len(match)-1]
		if value, ok := vars[name]; ok {
			return value
		}
		return match
	})
}

// CountVariables counts the {UPPERCASE} tokens present in a template.
func CountVariables(texto string) int {
	return len(anyTokenPattern.FindAllString(texto, -1))
}

// Known reports whether name belongs to the placeholder vocabulary.
func Known(name string) bool {
	for _, v := range Variables {
		if v == name {
			return true
		}
	}
	return false
}
