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

// Step is the wizard step of a campaign.
type Step string

const (
	StepConfig  Step = "config"
	StepPreview Step = "preview"
	StepSending Step = "sending"
	StepResults Step = "results"
)

const (
	// MinMensajes and MaxMensajes bound the slot count of a campaign.
	MinMensajes = 1
	MaxMensajes = 10
)

var (
	ErrNotEditing   = errors.New("campaign can only be modified in the config step")
	ErrNotInPreview = errors.New("campaign must be in the preview step")
	ErrSending      = errors.New("send in progress")
	ErrSlotCount    = errors.New("message count must be between 1 and 10")
	ErrLastSlot     = errors.New("cannot remove the last message")
	ErrNoSuchSlot   = errors.New("no such message slot")
)

// OutboundMessage is the per-slot payload handed to the preview and send
// collaborators. Fecha carries the display form, not the ISO form.
type OutboundMessage struct {
	Texto          string `json:"texto"`
	Check          int    `json:"check"`
	Clase          int    `json:"clase"`
	Grupo          int    `json:"grupo"`
	Hora           string `json:"hora"`
	Fecha          string `json:"fecha"`
	ArchivoNumeros string `json:"archivo_numeros,omitempty"`
	ArchivoCorreos string `json:"archivo_correos,omitempty"`
}

// WhatsappStats aggregates the WhatsApp channel outcome of a send.
type WhatsappStats struct {
	Total    int `json:"total"`
	Exitosos int `json:"exitosos"`
	Fallidos int `json:"fallidos"`
}

// CorreoStats aggregates the email channel outcome of a send.
type CorreoStats struct {
	OK   int `json:"ok"`
	Fail int `json:"fail"`
}

// SendDetail is the per-recipient outcome log entry.
type SendDetail struct {
	Numero string `json:"numero"`
	Estado string `json:"estado"`
	Error  string `json:"error,omitempty"`
}

// SendResult is the aggregated outcome of a campaign send.
type SendResult struct {
	Whatsapp WhatsappStats `json:"whatsapp"`
	Correos  CorreoStats   `json:"correos"`
	Detalles []SendDetail  `json:"detalles,omitempty"`
}

// Previewer renders the campaign batch remotely, one entry per message.
type Previewer interface {
	PreviewCampaign(ctx context.Context, mensajes []OutboundMessage) ([]template.Preview, error)
}

// Sender performs the actual batch delivery.
type Sender interface {
	SendCampaign(ctx context.Context, mensajes []OutboundMessage, asunto string) (*SendResult, error)
}

// Options carries the collaborators a campaign talks to. Any of them may be
// nil in tests.
type Options struct {
	Catalog   *catalog.Catalog
	Links     LinkGenerator
	Previewer Previewer
	Sender    Sender
}

// Campaign owns the ordered collection of message editors and the wizard
// step state machine. Slots are 1-indexed and always contiguous. All state
// transitions and mutations go through the campaign so the derived subject
// can be recomputed after every change.
type Campaign struct {
	mu            sync.Mutex
	editors       []*Editor
	subject       string
	subjectManual bool
	step          Step
	previews      []template.Preview
	result        *SendResult
	opts          Options
}

// New creates a campaign in the config step with a single default slot.
func New(opts Options) *Campaign {
	c := &Campaign{step: StepConfig, opts: opts}
	c.editors = []*Editor{c.newEditor()}
	return c
}

func (c *Campaign) newEditor() *Editor {
	return NewEditor(c.opts.Catalog, c.opts.Links)
}

// Count returns the current number of message slots.
func (c *Campaign) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.editors)
}

// Step returns the current wizard step.
func (c *Campaign) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// Subject returns the current email subject (derived or manual).
func (c *Campaign) Subject() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subject
}

// Message returns a copy of the configuration of one slot.
func (c *Campaign) Message(slot int) (Message, error) {
	c.mu.Lock()
	ed, err := c.editorLocked(slot)
	c.mu.Unlock()
	if err != nil {
		return Message{}, err
	}
	return ed.Message(), nil
}

// Messages returns copies of all slot configurations in slot order.
func (c *Campaign) Messages() []Message {
	c.mu.Lock()
	editors := make([]*Editor, len(c.editors))
	copy(editors, c.editors)
	c.mu.Unlock()

	out := make([]Message, len(editors))
	for i, ed := range editors {
		out[i] = ed.Message()
	}
	return out
}

// Result returns the stored send result, present only in the results step.
func (c *Campaign) Result() *SendResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// Previews returns the stored backend renders.
func (c *Campaign) Previews() []template.Preview {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]template.Preview, len(c.previews))
	copy(out, c.previews)
	return out
}

func (c *Campaign) editorLocked(slot int) (*Editor, error) {
	if slot < 1 || slot > len(c.editors) {
		return nil, fmt.Errorf("%w: %d", ErrNoSuchSlot, slot)
	}
	return c.editors[slot-1], nil
}

// SetMessageCount grows or shrinks the campaign to n slots. Growing appends
// fresh default slots; shrinking removes the highest slot one at a time so
// the renumbering logic stays single-sourced in removeSlotLocked.
func (c *Campaign) SetMessageCount(n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepConfig {
		return ErrNotEditing
	}
	if n < MinMensajes || n > MaxMensajes {
		return ErrSlotCount
	}
	for len(c.editors) < n {
		c.editors = append(c.editors, c.newEditor())
	}
	for len(c.editors) > n {
		c.removeSlotLocked(len(c.editors))
	}
	c.refreshSubjectLocked()
	return nil
}

// RemoveSlot removes slot k and shifts every higher slot down by one,
// preserving their configuration. The last remaining slot cannot be removed.
func (c *Campaign) RemoveSlot(k int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepConfig {
		return ErrNotEditing
	}
	if len(c.editors) <= MinMensajes {
		return ErrLastSlot
	}
	if k < 1 || k > len(c.editors) {
		return fmt.Errorf("%w: %d", ErrNoSuchSlot, k)
	}
	c.removeSlotLocked(k)
	c.refreshSubjectLocked()
	return nil
}

func (c *Campaign) removeSlotLocked(k int) {
	c.editors = append(c.editors[:k-1], c.editors[k:]...)
}

// UpdateField sets one field of one slot and recomputes the derived subject.
func (c *Campaign) UpdateField(slot int, field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepConfig {
		return ErrNotEditing
	}
	ed, err := c.editorLocked(slot)
	if err != nil {
		return err
	}
	if err := ed.SetField(field, value); err != nil {
		return err
	}
	c.refreshSubjectLocked()
	return nil
}

// InsertVariable splices a placeholder token into one slot's text and
// returns the new cursor position.
func (c *Campaign) InsertVariable(slot int, name string, pos int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepConfig {
		return 0, ErrNotEditing
	}
	ed, err := c.editorLocked(slot)
	if err != nil {
		return 0, err
	}
	return ed.InsertVariable(name, pos)
}

// SetSubject records a manual subject override. Automatic derivation stops
// permanently for the life of the campaign.
func (c *Campaign) SetSubject(asunto string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepConfig {
		return ErrNotEditing
	}
	c.subject = asunto
	c.subjectManual = true
	return nil
}

// SubjectManual reports whether the subject has been overridden by hand.
func (c *Campaign) SubjectManual() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subjectManual
}

// refreshSubjectLocked recomputes the derived subject from slot 1. It is an
// explicit derived-value function invoked after every mutation rather than a
// hidden observer; the manual flag gates it. Nothing is recomputed until at
// least one of check/clase/grupo/hora is set, matching the composer UI.
func (c *Campaign) refreshSubjectLocked() {
	if c.subjectManual || len(c.editors) == 0 {
		return
	}
	m := c.editors[0].Message()
	if m.Check == "" && m.Clase == "" && m.Grupo == "" && m.Hora == "" {
		return
	}

	fecha := DisplayDate(m.Fecha)
	if fecha == "" {
		fecha = "{FECHA}"
	}
	c.subject = fmt.Sprintf("CHECK %s - CLASE %s - GRUPO %s - %s - %s",
		orToken(m.Check, "{CHECK}"),
		orToken(m.Clase, "{CLASE}"),
		orToken(m.Grupo, "{GRUPO}"),
		fecha,
		orToken(m.Hora, "{HORA}"))
}

func orToken(value, token string) string {
	if value == "" {
		return token
	}
	return value
}

// Validate walks slots 1..N in order and returns the first unmet
// requirement, or nil when the whole campaign is complete.
func (c *Campaign) Validate() *ValidationError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validateLocked()
}

func (c *Campaign) validateLocked() *ValidationError {
	for i, ed := range c.editors {
		if verr := validateMessage(i+1, ed.Message()); verr != nil {
			return verr
		}
	}
	return nil
}

// outboundLocked builds the collaborator payload. Validation has already
// guaranteed the numeric fields parse.
func (c *Campaign) outboundLocked(includeArchivos bool) []OutboundMessage {
	out := make([]OutboundMessage, len(c.editors))
	for i, ed := range c.editors {
		m := ed.Message()
		check, _ := strconv.Atoi(m.Check)
		clase, _ := strconv.Atoi(m.Clase)
		grupo, _ := strconv.Atoi(m.Grupo)
		out[i] = OutboundMessage{
			Texto: m.Texto,
			Check: check,
			Clase: clase,
			Grupo: grupo,
			Hora:  m.Hora,
			Fecha: DisplayDate(m.Fecha),
		}
		if includeArchivos {
			out[i].ArchivoNumeros = m.ArchivoNumeros
			out[i].ArchivoCorreos = m.ArchivoCorreos
		}
	}
	return out
}

// Preview validates the campaign and, if complete, asks the preview
// collaborator to render every message. On success the campaign moves to
// the preview step; on any failure it stays in config.
func (c *Campaign) Preview(ctx context.Context) error {
	c.mu.Lock()
	if c.step != StepConfig {
		c.mu.Unlock()
		return ErrNotEditing
	}
	if verr := c.validateLocked(); verr != nil {
		c.mu.Unlock()
		return verr
	}
	mensajes := c.outboundLocked(false)
	previewer := c.opts.Previewer
	c.mu.Unlock()

	if previewer == nil {
		return errors.New("no preview backend configured")
	}
	previews, err := previewer.PreviewCampaign(ctx, mensajes)
	if err != nil {
		return fmt.Errorf("vista previa: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step != StepConfig {
		return ErrNotEditing
	}
	c.previews = previews
	c.step = StepPreview
	return nil
}

// Send submits the batch to the send collaborator. The campaign sits in the
// sending step for the duration of the call, which blocks all mutation; no
// cancellation of an in-flight send is supported. Success stores the result
// and moves to results; failure reverts to preview.
func (c *Campaign) Send(ctx context.Context) error {
	c.mu.Lock()
	if c.step != StepPreview {
		c.mu.Unlock()
		return ErrNotInPreview
	}
	c.step = StepSending
	mensajes := c.outboundLocked(true)
	asunto := c.subject
	sender := c.opts.Sender
	c.mu.Unlock()

	if sender == nil {
		c.revertToPreview()
		return errors.New("no send backend configured")
	}
	result, err := sender.SendCampaign(ctx, mensajes, asunto)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.step = StepPreview
		return fmt.Errorf("envío: %w", err)
	}
	c.result = result
	c.step = StepResults
	return nil
}

func (c *Campaign) revertToPreview() {
	c.mu.Lock()
	c.step = StepPreview
	c.mu.Unlock()
}

// Edit returns from preview to config so messages can be changed again.
// The stored previews are discarded; a new preview will regenerate them.
func (c *Campaign) Edit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step != StepPreview {
		return ErrNotInPreview
	}
	c.previews = nil
	c.step = StepConfig
	return nil
}

// Reset discards everything and recreates the campaign as a single default
// slot in the config step. It is refused while a send is in flight.
func (c *Campaign) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step == StepSending {
		return ErrSending
	}
	c.editors = []*Editor{c.newEditor()}
	c.subject = ""
	c.subjectManual = false
	c.previews = nil
	c.result = nil
	c.step = StepConfig
	return nil
}

// SlotState is the outward view of one slot.
type SlotState struct {
	Message
	Link     string `json:"link,omitempty"`
	Borrador string `json:"borrador,omitempty"`
	Completo bool   `json:"completo"`
}

// State is a consistent snapshot of the whole campaign for the API layer.
type State struct {
	Step         Step               `json:"step"`
	NumMensajes  int                `json:"num_mensajes"`
	Mensajes     []SlotState        `json:"mensajes"`
	Asunto       string             `json:"asunto"`
	AsuntoManual bool               `json:"asunto_manual"`
	Previews     []template.Preview `json:"previews,omitempty"`
	Resultado    *SendResult        `json:"resultado,omitempty"`
}

// State returns a snapshot of the campaign.
func (c *Campaign) State() State {
	c.mu.Lock()
	editors := make([]*Editor, len(c.editors))
	copy(editors, c.editors)
	st := State{
		Step:         c.step,
		NumMensajes:  len(c.editors),
		Asunto:       c.subject,
		AsuntoManual: c.subjectManual,
		Resultado:    c.result,
	}
	st.Previews = make([]template.Preview, len(c.previews))
	copy(st.Previews, c.previews)
	if len(st.Previews) == 0 {
		st.Previews = nil
	}
	c.mu.Unlock()

	st.Mensajes = make([]SlotState, len(editors))
	for i, ed := range editors {
		m := ed.Message()
		st.Mensajes[i] = SlotState{
			Message:  m,
			Link:     ed.Link(),
			Borrador: ed.Draft(),
			Completo: m.Complete(),
		}
	}
	return st
}
