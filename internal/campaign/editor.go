package campaign

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/Centro-Juridico-Internacional/campanero/internal/catalog"
	"github.com/Centro-Juridico-Internacional/campanero/internal/template"
)

// LinkGenerator produces a join link for a (check, clase, grupo) triple.
type LinkGenerator interface {
	GenerateLink(ctx context.Context, check, clase, grupo int) (string, error)
}

var (
	ErrUnknownField    = errors.New("unknown message field")
	ErrUnknownVariable = errors.New("unknown template variable")
)

// Field names accepted by Editor.SetField, in the order campaign validation
// checks them.
const (
	FieldCheck          = "check"
	FieldClase          = "clase"
	FieldGrupo          = "grupo"
	FieldHora           = "hora"
	FieldFecha          = "fecha"
	FieldArchivoNumeros = "archivo_numeros"
	FieldArchivoCorreos = "archivo_correos"
	FieldTexto          = "texto"
)

// FieldOrder is the fixed order in which slot requirements are validated.
var FieldOrder = []string{
	FieldCheck, FieldClase, FieldGrupo, FieldHora, FieldFecha,
	FieldArchivoNumeros, FieldArchivoCorreos, FieldTexto,
}

// Editor owns one message's configuration plus the derived join link.
//
// Field mutations come from a single caller, but link responses arrive on
// their own goroutines, so the editor carries its own lock. Every change to
// the (check, clase, grupo) triple fires an independent link request tagged
// with a growing sequence number; a response is applied only when its
// sequence is newer than the last applied one, so a late response can never
// overwrite a newer link, and a failed request never clears a cached one.
type Editor struct {
	mu      sync.Mutex
	msg     Message
	cat     *catalog.Catalog
	links   LinkGenerator
	link    string
	seq     uint64
	applied uint64
}

// NewEditor creates an editor pre-populated with the default message.
// Both the catalog and the link generator may be nil.
func NewEditor(cat *catalog.Catalog, links LinkGenerator) *Editor {
	return &Editor{
		msg:   NewMessage(),
		cat:   cat,
		links: links,
	}
}

// SetField updates one field of the message. Setting clase or grupo is
// bounds-checked against the catalog entry of the currently selected check
// when a catalog is attached. Changing any of check, clase or grupo while
// all three are set dispatches a link derivation in the background.
func (e *Editor) SetField(field, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch field {
	case FieldCheck:
		if err := e.checkBounds(value, "", ""); err != nil {
			return err
		}
		e.msg.Check = value
	case FieldClase:
		if err := e.checkBounds(e.msg.Check, value, ""); err != nil {
			return err
		}
		e.msg.Clase = value
	case FieldGrupo:
		if err := e.checkBounds(e.msg.Check, "", value); err != nil {
			return err
		}
		e.msg.Grupo = value
	case FieldHora:
		e.msg.Hora = value
	case FieldFecha:
		e.msg.Fecha = value
	case FieldTexto:
		e.msg.Texto = value
	case FieldArchivoNumeros:
		e.msg.ArchivoNumeros = value
	case FieldArchivoCorreos:
		e.msg.ArchivoCorreos = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	if field == FieldCheck || field == FieldClase || field == FieldGrupo {
		e.deriveLinkLocked()
	}
	return nil
}

// checkBounds validates a check/clase/grupo value against the catalog.
// Empty values are allowed (clearing a field is always legal).
func (e *Editor) checkBounds(check, clase, grupo string) error {
	if e.cat == nil {
		return nil
	}
	if check == "" {
		if clase != "" || grupo != "" {
			return fmt.Errorf("clase/grupo requieren un CHECK seleccionado")
		}
		return nil
	}
	id, err := strconv.Atoi(check)
	if err != nil {
		return fmt.Errorf("check inválido: %q", check)
	}
	if _, ok := e.cat.Get(id); !ok {
		return fmt.Errorf("check desconocido: %d", id)
	}
	if clase != "" {
		n, err := strconv.Atoi(clase)
		if err != nil || !e.cat.ValidClase(id, n) {
			return fmt.Errorf("clase fuera de rango para el check %d: %q", id, clase)
		}
	}
	if grupo != "" {
		n, err := strconv.Atoi(grupo)
		if err != nil || !e.cat.ValidGrupo(id, n) {
			return fmt.Errorf("grupo fuera de rango para el check %d: %q", id, grupo)
		}
	}
	return nil
}

// deriveLinkLocked fires a link request when the full triple is set.
func (e *Editor) deriveLinkLocked() {
	if e.links == nil {
		return
	}
	check, err1 := strconv.Atoi(e.msg.Check)
	clase, err2 := strconv.Atoi(e.msg.Clase)
	grupo, err3 := strconv.Atoi(e.msg.Grupo)
	if err1 != nil || err2 != nil || err3 != nil {
		return
	}

	e.seq++
	go e.fetchLink(e.seq, check, clase, grupo)
}

// fetchLink performs one fire-and-forget link request.
func (e *Editor) fetchLink(seq uint64, check, clase, grupo int) {
	link, err := e.links.GenerateLink(context.Background(), check, clase, grupo)
	if err != nil {
		// Keep the previously cached link.
		return
	}
	e.applyLink(seq, link)
}

// applyLink records a successful response unless a newer one already won.
func (e *Editor) applyLink(seq uint64, link string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if seq <= e.applied {
		return
	}
	e.applied = seq
	e.link = link
}

// Link returns the cached join link, if any request has succeeded yet.
func (e *Editor) Link() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.link
}

// Message returns a copy of the current configuration.
func (e *Editor) Message() Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.msg
}

// InsertVariable splices the {NAME} token into the text at the given rune
// offset (clamped to the text bounds) and returns the cursor position right
// after the inserted token.
func (e *Editor) InsertVariable(name string, pos int) (int, error) {
	if !template.Known(name) {
		return 0, fmt.Errorf("%w: %s", ErrUnknownVariable, name)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	runes := []rune(e.msg.Texto)
	if pos < 0 {
		pos = 0
	}
	if pos > len(runes) {
		pos = len(runes)
	}
	token := "{" + name + "}"
	e.msg.Texto = string(runes[:pos]) + token + string(runes[pos:])
	return pos + len(name) + 2, nil
}

// Draft renders the current template locally with whatever values are
// already known, for a live preview while editing. The authoritative
// preview still comes from the backend at the Preview step.
func (e *Editor) Draft() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	vars := map[string]string{
		"CHECK": e.msg.Check,
		"CLASE": e.msg.Clase,
		"GRUPO": e.msg.Grupo,
		"HORA":  e.msg.Hora,
		"FECHA": DisplayDate(e.msg.Fecha),
	}
	if e.link != "" {
		vars["LINK"] = e.link
	}
	if e.cat != nil {
		if id, err := strconv.Atoi(e.msg.Check); err == nil {
			if nombre := e.cat.Nombre(id); nombre != "" {
				vars["NOMBRECHECK"] = nombre
			}
		}
	}
	for name, value := range vars {
		if value == "" {
			delete(vars, name)
		}
	}
	return template.Render(e.msg.Texto, vars)
}
