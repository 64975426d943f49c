package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Centro-Juridico-Internacional/campanero/internal/backend"
	"github.com/Centro-Juridico-Internacional/campanero/internal/campaign"
)

// CreateCampaignResponse is the response for POST /api/campaigns
type CreateCampaignResponse struct {
	SessionID string         `json:"session_id"`
	State     campaign.State `json:"state"`
}

// InsertVariableResponse is the response for POST .../mensajes/{slot}/variable
type InsertVariableResponse struct {
	Posicion int            `json:"posicion"`
	State    campaign.State `json:"state"`
}

// UploadResponse is the response for POST .../mensajes/{slot}/upload
type UploadResponse struct {
	Filename string         `json:"filename"`
	Count    int            `json:"count"`
	State    campaign.State `json:"state"`
}

// HealthResponse is the response for GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
}

// envelope is the uniform response wrapper the web UI expects.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// sendData sends a success envelope
func (s *Server) sendData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

// sendError sends an error envelope
func (s *Server) sendError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: false, Error: message})
}

// sendCampaignError maps domain errors onto HTTP statuses. Validation
// failures are the caller's to fix (422), step violations are conflicts
// (409), unknown slots are 404 and everything else from the campaign core
// is a bad request.
func (s *Server) sendCampaignError(w http.ResponseWriter, err error) {
	var verr *campaign.ValidationError
	switch {
	case errors.As(err, &verr):
		if s.metrics != nil {
			s.metrics.ValidationFailuresTotal.WithLabelValues(verr.Field).Inc()
		}
		s.sendError(w, http.StatusUnprocessableEntity, verr.Error())
	case errors.Is(err, campaign.ErrNotEditing),
		errors.Is(err, campaign.ErrNotInPreview),
		errors.Is(err, campaign.ErrSending),
		errors.Is(err, campaign.ErrLastSlot):
		s.sendError(w, http.StatusConflict, err.Error())
	case errors.Is(err, campaign.ErrNoSuchSlot):
		s.sendError(w, http.StatusNotFound, err.Error())
	default:
		s.sendError(w, http.StatusBadRequest, err.Error())
	}
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Backend: "ok"}
	if err := s.backend.Health(r.Context()); err != nil {
		resp.Backend = "unreachable"
	}
	s.sendData(w, http.StatusOK, resp)
}

// handleChecks handles GET /api/checks
func (s *Server) handleChecks(w http.ResponseWriter, r *http.Request) {
	cat, err := s.ensureCatalog(r.Context())
	if err != nil {
		s.logger.Error("failed to load catalog", "error", err)
		s.sendError(w, http.StatusBadGateway, "No se pudo cargar el catálogo de checks")
		return
	}
	s.sendData(w, http.StatusOK, cat.List())
}

// handleCreateCampaign handles POST /api/campaigns
func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	// A missing catalog disables bounds checking but never blocks
	// composing; it is retried on the next campaign.
	cat, err := s.ensureCatalog(r.Context())
	if err != nil {
		s.logger.Warn("creating campaign without catalog", "error", err)
	}

	c := campaign.New(campaign.Options{
		Catalog:   cat,
		Links:     s.backend,
		Previewer: s.backend,
		Sender:    s.backend,
	})
	id := s.sessions.Create(c)

	if s.metrics != nil {
		s.metrics.CampaignsCreatedTotal.Inc()
		s.metrics.SessionsActive.Set(float64(s.sessions.Len()))
	}

	s.sendData(w, http.StatusCreated, CreateCampaignResponse{
		SessionID: id,
		State:     c.State(),
	})
}

// campaignFromRequest resolves the session ID in the URL. It writes the 404
// itself and returns nil for unknown sessions.
func (s *Server) campaignFromRequest(w http.ResponseWriter, r *http.Request) *campaign.Campaign {
	id := chi.URLParam(r, "id")
	c, ok := s.sessions.Get(id)
	if !ok {
		s.sendError(w, http.StatusNotFound, "Sesión no encontrada")
		return nil
	}
	return c
}

func slotFromRequest(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "slot"))
}

// handleGetCampaign handles GET /api/campaigns/{id}
func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	c := s.campaignFromRequest(w, r)
	if c == nil {
		return
	}
	s.sendData(w, http.StatusOK, c.State())
}

// handleDeleteCampaign handles DELETE /api/campaigns/{id}
func (s *Server) handleDeleteCampaign(w http.ResponseWriter, r *http.Request) {
	s.sessions.Delete(chi.URLParam(r, "id"))
	if s.metrics != nil {
		s.metrics.SessionsActive.Set(float64(s.sessions.Len()))
	}
	s.sendData(w, http.StatusOK, nil)
}

// handleSetMessageCount handles PUT /api/campaigns/{id}/mensajes/count
func (s *Server) handleSetMessageCount(w http.ResponseWriter, r *http.Request) {
	c := s.campaignFromRequest(w, r)
	if c == nil {
		return
	}

	var req struct {
		NumMensajes int `json:"num_mensajes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := c.SetMessageCount(req.NumMensajes); err != nil {
		s.sendCampaignError(w, err)
		return
	}
	s.sendData(w, http.StatusOK, c.State())
}

// handleRemoveSlot handles DELETE /api/campaigns/{id}/mensajes/{slot}
func (s *Server) handleRemoveSlot(w http.ResponseWriter, r *http.Request) {
	c := s.campaignFromRequest(w, r)
	if c == nil {
		return
	}
	slot, err := slotFromRequest(r)
	if err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid slot")
		return
	}

	if err := c.RemoveSlot(slot); err != nil {
		s.sendCampaignError(w, err)
		return
	}
	s.sendData(w, http.StatusOK, c.State())
}

// handleUpdateField handles PUT /api/campaigns/{id}/mensajes/{slot}/campo
func (s *Server) handleUpdateField(w http.ResponseWriter, r *http.Request) {
	c := s.campaignFromRequest(w, r)
	if c == nil {
		return
	}
	slot, err := slotFromRequest(r)
	if err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid slot")
		return
	}

	var req struct {
		Campo string `json:"campo"`
		Valor string `json:"valor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := c.UpdateField(slot, req.Campo, req.Valor); err != nil {
		s.sendCampaignError(w, err)
		return
	}
	s.sendData(w, http.StatusOK, c.State())
}

// handleInsertVariable handles POST /api/campaigns/{id}/mensajes/{slot}/variable
func (s *Server) handleInsertVariable(w http.ResponseWriter, r *http.Request) {
	c := s.campaignFromRequest(w, r)
	if c == nil {
		return
	}
	slot, err := slotFromRequest(r)
	if err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid slot")
		return
	}

	var req struct {
		Variable string `json:"variable"`
		Posicion int    `json:"posicion"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	pos, err := c.InsertVariable(slot, req.Variable, req.Posicion)
	if err != nil {
		s.sendCampaignError(w, err)
		return
	}
	s.sendData(w, http.StatusOK, InsertVariableResponse{
		Posicion: pos,
		State:    c.State(),
	})
}

// handleUpload handles POST /api/campaigns/{id}/mensajes/{slot}/upload. The
// Excel is relayed to the backend, which parses it and stores the recipient
// list; only the returned identifier lands in the message.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	c := s.campaignFromRequest(w, r)
	if c == nil {
		return
	}
	slot, err := slotFromRequest(r)
	if err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid slot")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.Server.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.config.Server.MaxUploadBytes); err != nil {
		s.sendError(w, http.StatusBadRequest, "Archivo demasiado grande o formulario inválido")
		return
	}

	var kind backend.RecipientKind
	var field string
	switch r.FormValue("tipo") {
	case "numeros":
		kind, field = backend.KindNumeros, campaign.FieldArchivoNumeros
	case "correos":
		kind, field = backend.KindCorreos, campaign.FieldArchivoCorreos
	default:
		s.sendError(w, http.StatusBadRequest, "tipo debe ser numeros o correos")
		return
	}

	file, hdr, err := r.FormFile("file")
	if err != nil {
		s.sendError(w, http.StatusBadRequest, "Falta el archivo")
		return
	}
	defer file.Close()

	upload, err := s.backend.UploadRecipients(r.Context(), kind, slot, hdr.Filename, file)
	if err != nil {
		s.logger.Error("upload relay failed", "slot", slot, "tipo", kind, "error", err)
		s.sendError(w, http.StatusBadGateway, err.Error())
		return
	}

	if err := c.UpdateField(slot, field, upload.Filename); err != nil {
		s.sendCampaignError(w, err)
		return
	}

	s.logger.Info("recipients uploaded", "slot", slot, "tipo", kind, "count", upload.Count)
	s.sendData(w, http.StatusOK, UploadResponse{
		Filename: upload.Filename,
		Count:    upload.Count,
		State:    c.State(),
	})
}

// handleSetSubject handles PUT /api/campaigns/{id}/asunto
func (s *Server) handleSetSubject(w http.ResponseWriter, r *http.Request) {
	c := s.campaignFromRequest(w, r)
	if c == nil {
		return
	}

	var req struct {
		Asunto string `json:"asunto"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := c.SetSubject(req.Asunto); err != nil {
		s.sendCampaignError(w, err)
		return
	}
	s.sendData(w, http.StatusOK, c.State())
}

// handleValidate handles POST /api/campaigns/{id}/validar
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	c := s.campaignFromRequest(w, r)
	if c == nil {
		return
	}

	if verr := c.Validate(); verr != nil {
		s.sendCampaignError(w, verr)
		return
	}
	s.sendData(w, http.StatusOK, map[string]bool{"valido": true})
}

// handlePreview handles POST /api/campaigns/{id}/preview
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	c := s.campaignFromRequest(w, r)
	if c == nil {
		return
	}

	if err := c.Preview(r.Context()); err != nil {
		var verr *campaign.ValidationError
		if errors.As(err, &verr) || errors.Is(err, campaign.ErrNotEditing) {
			s.sendCampaignError(w, err)
			return
		}
		s.logger.Error("preview failed", "error", err)
		s.sendError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.sendData(w, http.StatusOK, c.State())
}

// handleSend handles POST /api/campaigns/{id}/send. The body must carry an
// explicit confirmation so a stray request can never fire a campaign.
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	c := s.campaignFromRequest(w, r)
	if c == nil {
		return
	}

	var req struct {
		Confirmar bool `json:"confirmar"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.Confirmar {
		s.sendError(w, http.StatusBadRequest, "Falta confirmación de envío")
		return
	}

	if err := c.Send(r.Context()); err != nil {
		if errors.Is(err, campaign.ErrNotInPreview) {
			s.sendCampaignError(w, err)
			return
		}
		if s.metrics != nil {
			s.metrics.SendFailuresTotal.Inc()
		}
		s.logger.Error("send failed", "error", err)
		s.sendError(w, http.StatusBadGateway, err.Error())
		return
	}

	result := c.Result()
	s.logger.Info("campaign sent",
		"mensajes", c.Count(),
		"whatsapp_exitosos", result.Whatsapp.Exitosos,
		"whatsapp_fallidos", result.Whatsapp.Fallidos,
		"correos_ok", result.Correos.OK,
		"correos_fail", result.Correos.Fail,
	)

	if s.metrics != nil {
		s.metrics.CampaignsSentTotal.Inc()
		s.metrics.RecordSendResult(
			result.Whatsapp.Exitosos, result.Whatsapp.Fallidos,
			result.Correos.OK, result.Correos.Fail,
		)
	}
	if s.history != nil {
		if _, err := s.history.Record(c.Count(), c.Subject(), *result); err != nil {
			s.logger.Error("failed to record send history", "error", err)
		}
	}

	s.sendData(w, http.StatusOK, c.State())
}

// handleEdit handles POST /api/campaigns/{id}/edit
func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	c := s.campaignFromRequest(w, r)
	if c == nil {
		return
	}
	if err := c.Edit(); err != nil {
		s.sendCampaignError(w, err)
		return
	}
	s.sendData(w, http.StatusOK, c.State())
}

// handleReset handles POST /api/campaigns/{id}/reset
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	c := s.campaignFromRequest(w, r)
	if c == nil {
		return
	}
	if err := c.Reset(); err != nil {
		s.sendCampaignError(w, err)
		return
	}
	s.sendData(w, http.StatusOK, c.State())
}

// handleHistory handles GET /api/history
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.sendError(w, http.StatusNotFound, "Historial no disponible")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.sendError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	entries, err := s.history.List(limit)
	if err != nil {
		s.logger.Error("failed to list history", "error", err)
		s.sendError(w, http.StatusInternalServerError, "No se pudo leer el historial")
		return
	}
	s.sendData(w, http.StatusOK, entries)
}
