// Package campaign implements the campaign composition core: per-message
// configuration, the ordered slot collection, campaign validation, the
// derived email subject, and the wizard step state machine.
package campaign

import (
	"strings"
	"time"
)

// DefaultTexto is the template a fresh message starts with. It carries all
// seven placeholder tokens.
const DefaultTexto = `CHECK {CHECK} - CLASE {CLASE} - GRUPO {GRUPO} - {FECHA} - {HORA}

Bienvenido a tu clase # {CLASE}
{NOMBRECHECK}


Link de conexión: 
{LINK}


Te recordamos que la asistencia a todas las clases de Check es indispensable para poder recibir el certificado correspondiente, la inasistencia a cualquiera de las sesiones afectará la obtención del certificado.


Si tienes problemas con al conexión no dudes en contactarnos
Agradecemos su comprensión y compromiso.`

// Message is the configuration of one campaign slot. Hora is stored in
// 12-hour "H:MM AM/PM" form, Fecha as ISO "2006-01-02". The archivo fields
// hold the identifiers the upload backend returned.
type Message struct {
	Check          string `json:"check"`
	Clase          string `json:"clase"`
	Grupo          string `json:"grupo"`
	Hora           string `json:"hora"`
	Fecha          string `json:"fecha"`
	Texto          string `json:"texto"`
	ArchivoNumeros string `json:"archivo_numeros"`
	ArchivoCorreos string `json:"archivo_correos"`
}

// NewMessage returns the default configuration for a fresh slot: today's
// date and the default template text.
func NewMessage() Message {
	return Message{
		Fecha: time.Now().Format("2006-01-02"),
		Texto: DefaultTexto,
	}
}

// Complete reports whether every required field is set and the text is
// non-blank after trimming.
func (m *Message) Complete() bool {
	return m.Check != "" &&
		m.Clase != "" &&
		m.Grupo != "" &&
		m.Hora != "" &&
		m.Fecha != "" &&
		m.ArchivoNumeros != "" &&
		m.ArchivoCorreos != "" &&
		strings.TrimSpace(m.Texto) != ""
}
