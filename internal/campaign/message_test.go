package campaign

import (
	"strings"
	"testing"
	"time"
)

func TestNewMessageDefaults(t *testing.T) {
	m := NewMessage()

	if m.Fecha != time.Now().Format("2006-01-02") {
		t.Errorf("fresh message fecha = %q, want today", m.Fecha)
	}
	if m.Texto != DefaultTexto {
		t.Errorf("fresh message texto does not match the default template")
	}
	for _, token := range []string{"{CHECK}", "{CLASE}", "{GRUPO}", "{HORA}", "{FECHA}", "{NOMBRECHECK}", "{LINK}"} {
		if !strings.Contains(m.Texto, token) {
			t.Errorf("default template is missing token %s", token)
		}
	}
}

func completeMessage() Message {
	return Message{
		Check:          "5",
		Clase:          "2",
		Grupo:          "1",
		Hora:           "3:00 PM",
		Fecha:          "2026-01-13",
		Texto:          "Hola {NOMBRECHECK}",
		ArchivoNumeros: "numeros_1.xlsx",
		ArchivoCorreos: "correos_1.xlsx",
	}
}

func TestMessageComplete(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Message)
		want   bool
	}{
		{"all set", func(m *Message) {}, true},
		{"no check", func(m *Message) { m.Check = "" }, false},
		{"no clase", func(m *Message) { m.Clase = "" }, false},
		{"no grupo", func(m *Message) { m.Grupo = "" }, false},
		{"no hora", func(m *Message) { m.Hora = "" }, false},
		{"no fecha", func(m *Message) { m.Fecha = "" }, false},
		{"no numeros", func(m *Message) { m.ArchivoNumeros = "" }, false},
		{"no correos", func(m *Message) { m.ArchivoCorreos = "" }, false},
		{"blank texto", func(m *Message) { m.Texto = "   \n\t " }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := completeMessage()
			tt.mutate(&m)
			if got := m.Complete(); got != tt.want {
				t.Errorf("Complete() = %v, want %v", got, tt.want)
			}
		})
	}
}
