package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/chainreaction/internal/api/response"
	"github.com/mcoot/chainreaction/internal/model"
	"github.com/mcoot/chainreaction/internal/services/preset"
)

// PresetHandler handles board preset endpoints
type PresetHandler struct {
	presets preset.ServiceInterface
}

// NewPresetHandler creates a new preset handler
func NewPresetHandler(presets preset.ServiceInterface) *PresetHandler {
	return &PresetHandler{presets: presets}
}

// List handles GET /api/v1/presets
func (h *PresetHandler) List(w http.ResponseWriter, r *http.Request) {
	presets, err := h.presets.List(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	if presets == nil {
		presets = []*model.Preset{}
	}
	response.JSON(w, http.StatusOK, response.PresetList{Presets: presets})
}

// Get handles GET /api/v1/presets/{name}
func (h *PresetHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.presets.Get(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, p)
}

// Put handles PUT /api/v1/presets/{name}. The name in the path wins over the body.
func (h *PresetHandler) Put(w http.ResponseWriter, r *http.Request) {
	var p model.Preset
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	p.Name = mux.Vars(r)["name"]

	if err := h.presets.Save(r.Context(), &p); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, &p)
}

// Delete handles DELETE /api/v1/presets/{name}
func (h *PresetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.presets.Delete(r.Context(), mux.Vars(r)["name"]); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// Schema handles GET /api/v1/presets/schema
func (h *PresetHandler) Schema(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, preset.Schema())
}
