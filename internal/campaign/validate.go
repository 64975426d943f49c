package campaign

import (
	"fmt"
	"strings"
)

// fieldMessages holds the user-facing requirement text per field, matching
// the wording the UI shows.
var fieldMessages = map[string]string{
	FieldCheck:          "Falta seleccionar CHECK",
	FieldClase:          "Falta seleccionar CLASE",
	FieldGrupo:          "Falta seleccionar GRUPO",
	FieldHora:           "Falta especificar HORA",
	FieldFecha:          "Falta especificar FECHA",
	FieldArchivoNumeros: "Falta Excel de números",
	FieldArchivoCorreos: "Falta Excel de correos",
	FieldTexto:          "Falta texto del mensaje",
}

// ValidationError names the first slot and field that fail a completeness
// requirement. It blocks the Config -> Preview transition.
type ValidationError struct {
	Slot  int
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Mensaje %d: %s", e.Slot, fieldMessages[e.Field])
}

// validateMessage returns the first unmet requirement of one message,
// checking fields in the fixed order.
func validateMessage(slot int, m Message) *ValidationError {
	for _, field := range FieldOrder {
		var ok bool
		switch field {
		case FieldCheck:
			ok = m.Check != ""
		case FieldClase:
			ok = m.Clase != ""
		case FieldGrupo:
			ok = m.Grupo != ""
		case FieldHora:
			ok = m.Hora != ""
		case FieldFecha:
			ok = m.Fecha != ""
		case FieldArchivoNumeros:
			ok = m.ArchivoNumeros != ""
		case FieldArchivoCorreos:
			ok = m.ArchivoCorreos != ""
		case FieldTexto:
			ok = strings.TrimSpace(m.Texto) != ""
		}
		if !ok {
			return &ValidationError{Slot: slot, Field: field}
		}
	}
	return nil
}
