package ui

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"seqcode/adapters/excel"
	"seqcode/adapters/memory"
	"seqcode/app"
	"seqcode/domain/core"
	"seqcode/domain/record"
	"seqcode/domain/sequence"
	"seqcode/internal/errors"
	"seqcode/ports"
)

// recordWriteRequest is the host write hook payload. Related records may be
// inlined so parent template placeholders resolve without a callback to the
// host.
type recordWriteRequest struct {
	Event    string                `json:"event"`
	Target   record.Record         `json:"target"`
	PreImage record.Record         `json:"pre_image,omitempty"`
	Related  memory.RelatedRecords `json:"related,omitempty"`
}

type recordWriteResponse struct {
	Target record.Record `json:"target"`
}

type previewRequest struct {
	Sample  record.Record         `json:"sample,omitempty"`
	Related memory.RelatedRecords `json:"related,omitempty"`
}

type previewResponse struct {
	Code string `json:"code"`
}

type createDefinitionResponse struct {
	Definition *sequence.Definition    `json:"definition"`
	Advice     *app.RegistrationAdvice `json:"advice"`
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handleCreateDefinition(w http.ResponseWriter, r *http.Request) {
	var def sequence.Definition
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		respondError(w, errors.InvalidInput("invalid definition payload: "+err.Error()))
		return
	}

	advice, err := a.admin.CreateDefinition(r.Context(), &def)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, createDefinitionResponse{Definition: &def, Advice: advice})
}

func (a *App) handleListDefinitions(w http.ResponseWriter, r *http.Request) {
	filters := ports.DefinitionFilters{
		EntityName: r.URL.Query().Get("entity"),
		ActiveOnly: r.URL.Query().Get("active") == "true",
	}
	if eventStr := r.URL.Query().Get("event"); eventStr != "" {
		event, err := sequence.ParseTriggerEvent(eventStr)
		if err != nil {
			respondError(w, errors.InvalidInput(err.Error()))
			return
		}
		filters.TriggerEvent = &event
	}

	defs, err := a.admin.ListDefinitions(r.Context(), filters)
	if err != nil {
		respondError(w, err)
		return
	}
	if defs == nil {
		defs = []sequence.Definition{}
	}
	respondJSON(w, http.StatusOK, defs)
}

func (a *App) handleGetDefinition(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseDefinitionID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, errors.InvalidInput(err.Error()))
		return
	}

	def, err := a.admin.GetDefinition(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, def)
}

func (a *App) handleDeleteDefinition(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseDefinitionID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, errors.InvalidInput(err.Error()))
		return
	}

	advice, err := a.admin.DeleteDefinition(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, advice)
}

func (a *App) handlePreviewDefinition(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseDefinitionID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, errors.InvalidInput(err.Error()))
		return
	}

	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.InvalidInput("invalid preview payload: "+err.Error()))
		return
	}

	code, err := a.admin.PreviewNextCode(r.Context(), id, req.Sample, memory.NewLookupResolver(req.Related))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, previewResponse{Code: code})
}

func (a *App) handleRecordWrite(w http.ResponseWriter, r *http.Request) {
	entityName := chi.URLParam(r, "entity")

	var req recordWriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.InvalidInput("invalid record write payload: "+err.Error()))
		return
	}
	if req.Target == nil {
		respondError(w, errors.InvalidInput("target record is required"))
		return
	}

	event, err := sequence.ParseTriggerEvent(req.Event)
	if err != nil {
		respondError(w, errors.InvalidInput(err.Error()))
		return
	}

	lookup := memory.NewLookupResolver(req.Related)
	if err := a.generation.OnRecordWrite(r.Context(), entityName, event, req.Target, req.PreImage, lookup); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, recordWriteResponse{Target: req.Target})
}

func (a *App) handleGetEntitySchema(w http.ResponseWriter, r *http.Request) {
	entity, err := a.oracle.EntitySchema(r.Context(), chi.URLParam(r, "entity"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entity)
}

func (a *App) handleExportDefinitions(w http.ResponseWriter, r *http.Request) {
	defs, err := a.admin.ListDefinitions(r.Context(), ports.DefinitionFilters{})
	if err != nil {
		respondError(w, err)
		return
	}

	buf, err := excel.WriteDefinitions(defs)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="sequence_definitions.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
