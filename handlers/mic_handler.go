package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"cargosur/models"
	"cargosur/repository"
)

type MICHandler struct {
	Repo    repository.MICRepository
	CRTRepo repository.CRTRepository
}

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// ListMICs handler: filtered, paginated
func (h *MICHandler) ListMICs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	f := models.FiltrosMIC{
		Estado:         models.Estado(q.Get("estado")),
		NumeroCarta:    q.Get("numero_carta"),
		Transportadora: q.Get("transportadora"),
		Placa:          q.Get("placa"),
		Destino:        q.Get("destino"),
		FechaDesde:     q.Get("fecha_desde"),
		FechaHasta:     q.Get("fecha_hasta"),
		Busqueda:       q.Get("q"),
	}
	if f.Estado != "" && !models.EstadoValido(f.Estado) {
		writeError(w, http.StatusBadRequest, CodeValidation, "estado desconocido: "+string(f.Estado))
		return
	}

	items, total, err := h.Repo.ListMICs(f, page, perPage)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}
	if items == nil {
		items = []*models.MIC{}
	}

	writeJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Message: "OK",
		Data: map[string]interface{}{
			"items":      items,
			"pagination": models.NuevaPaginacion(page, perPage, total),
		},
	})
}

// GetMICByID handler
func (h *MICHandler) GetMICByID(w http.ResponseWriter, r *http.Request, id int64) {
	mic, err := h.Repo.GetMICByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}
	if mic == nil {
		writeError(w, http.StatusNotFound, CodeNotFound, "MIC not found")
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "OK", Data: mic})
}

// CreateMIC handler: manual creation, not derived from a CRT
func (h *MICHandler) CreateMIC(w http.ResponseWriter, r *http.Request) {
	var mic models.MIC
	if err := json.NewDecoder(r.Body).Decode(&mic); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "Invalid request payload: "+err.Error())
		return
	}

	if mic.Estado == "" {
		mic.Estado = models.EstadoProvisorio
	}
	if !models.EstadoValido(mic.Estado) {
		writeError(w, http.StatusBadRequest, CodeValidation, "estado desconocido: "+string(mic.Estado))
		return
	}
	if err := mic.Validar(); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	mic.NormalizarNumeros()
	mic.RellenarAsteriscos()

	if err := h.Repo.CreateMIC(&mic); err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "Failed to create MIC: "+err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, ApiResponse{Success: true, Message: "MIC created", Data: mic})
}

// CreateMICFromCRT handler: derives the draft from the CRT, overlays
// the user payload, persists. Blank user values never clobber the
// computed freight and insurance totals.
func (h *MICHandler) CreateMICFromCRT(w http.ResponseWriter, r *http.Request, crtID int64) {
	crts, err := h.CRTRepo.GetCRT(map[string]interface{}{"id": crtID}, true)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}
	if len(crts) == 0 {
		writeError(w, http.StatusNotFound, CodeDerivationMissing, "CRT not found for derivation")
		return
	}
	crt := crts[0]

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	derivacion := models.DerivarMICDesdeCRT(crt, crt.Partes())
	mic := derivacion.Datos

	total, seguro := mic.Campo28Total, mic.Campo29Seguro
	if len(body) > 0 {
		if err := json.Unmarshal(body, mic); err != nil {
			writeError(w, http.StatusBadRequest, CodeValidation, "Invalid request payload: "+err.Error())
			return
		}
	}
	if strings.TrimSpace(mic.Campo28Total) == "" {
		mic.Campo28Total = total
	}
	if strings.TrimSpace(mic.Campo29Seguro) == "" {
		mic.Campo29Seguro = seguro
	}

	mic.ID = 0
	mic.Estado = models.EstadoProvisorio
	id := crt.ID
	mic.CRTID = &id

	if err := mic.Validar(); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}
	mic.NormalizarNumeros()
	mic.RellenarAsteriscos()

	if err := h.Repo.CreateMIC(mic); err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "Failed to create MIC: "+err.Error())
		return
	}
	mic.CrtNumero = crt.NumeroCRT
	mic.CrtFechaEmision = crt.FechaEmision
	mic.CrtEstado = crt.Estado

	writeJSON(w, http.StatusCreated, ApiResponse{Success: true, Message: "MIC created from CRT", Data: derivacion})
}

// UpdateMIC handler. State changes are validated against the PERSISTED
// state; the client-side table is only a precheck. Field edits are
// refused while the persisted state forbids them.
func (h *MICHandler) UpdateMIC(w http.ResponseWriter, r *http.Request, id int64) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "Invalid request payload: "+err.Error())
		return
	}

	current, err := h.Repo.GetMICByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}
	if current == nil {
		writeError(w, http.StatusNotFound, CodeNotFound, "MIC not found")
		return
	}

	soloEstado := true
	for k := range raw {
		switch k {
		case "estado", "usuario_actualizacion", "cambio_estado_motivo", "id":
		default:
			soloEstado = false
		}
	}

	cambioEstado := false
	var nuevoEstado models.Estado
	if rawEstado, ok := raw["estado"]; ok {
		var s string
		if err := json.Unmarshal(rawEstado, &s); err != nil {
			writeError(w, http.StatusBadRequest, CodeValidation, "estado must be a string")
			return
		}
		nuevoEstado = models.Estado(s)
		cambioEstado = nuevoEstado != current.Estado
	}

	if cambioEstado {
		if !models.EstadoValido(nuevoEstado) {
			writeError(w, http.StatusBadRequest, CodeValidation, "estado desconocido: "+string(nuevoEstado))
			return
		}
		if !models.PuedeTransicionar(current.Estado, nuevoEstado) {
			writeJSON(w, http.StatusConflict, ApiResponse{
				Success:                false,
				Code:                   CodeTransitionRejected,
				Message:                fmt.Sprintf("Transicion no permitida de %s a %s", current.Estado, nuevoEstado),
				TransicionesPermitidas: models.TransicionesPermitidas(current.Estado),
			})
			return
		}
	}

	if !soloEstado && !models.PuedeEditarDirectamente(current.Estado) {
		writeError(w, http.StatusForbidden, CodeEditForbidden,
			fmt.Sprintf("El estado %s no permite edicion directa", current.Estado))
		return
	}

	actualizado := *current
	if err := json.Unmarshal(body, &actualizado); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "Invalid request payload: "+err.Error())
		return
	}
	actualizado.ID = current.ID
	actualizado.CreatedAt = current.CreatedAt
	if cambioEstado {
		actualizado.Estado = nuevoEstado
		actualizado.CambioEstadoMotivo = models.MotivoCambio(current.Estado, nuevoEstado)
	} else {
		actualizado.Estado = current.Estado
	}

	if !soloEstado {
		if err := actualizado.Validar(); err != nil {
			writeError(w, http.StatusBadRequest, CodeValidation, err.Error())
			return
		}
	}
	actualizado.NormalizarNumeros()
	actualizado.RellenarAsteriscos()

	if err := h.Repo.UpdateMIC(&actualizado); err != nil {
		if repository.IsNotFound(err) {
			writeError(w, http.StatusNotFound, CodeNotFound, "MIC not found")
			return
		}
		writeError(w, http.StatusInternalServerError, CodeInternal, "Failed to update MIC: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "MIC updated", Data: actualizado})
}

// DuplicateMIC handler: fresh identifier, state reset to the initial
// one
func (h *MICHandler) DuplicateMIC(w http.ResponseWriter, r *http.Request, id int64) {
	mic, err := h.Repo.GetMICByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}
	if mic == nil {
		writeError(w, http.StatusNotFound, CodeNotFound, "MIC not found")
		return
	}

	copia := mic.Duplicado()
	if usuario := r.URL.Query().Get("usuario"); usuario != "" {
		copia.CreadoPor = usuario
	}

	if err := h.Repo.CreateMIC(copia); err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "Failed to duplicate MIC: "+err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, ApiResponse{Success: true, Message: "MIC duplicated", Data: copia})
}

// AnularMIC handler: voids the document. Terminal documents cannot be
// voided again.
func (h *MICHandler) AnularMIC(w http.ResponseWriter, r *http.Request, id int64) {
	mic, err := h.Repo.GetMICByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}
	if mic == nil {
		writeError(w, http.StatusNotFound, CodeNotFound, "MIC not found")
		return
	}

	if models.EsTerminal(mic.Estado) {
		writeJSON(w, http.StatusConflict, ApiResponse{
			Success: false,
			Code:    CodeTransitionRejected,
			Message: fmt.Sprintf("El documento ya esta en estado terminal %s", mic.Estado),
		})
		return
	}

	motivo := models.MotivoCambio(mic.Estado, models.EstadoAnulado)
	mic.Estado = models.EstadoAnulado
	mic.CambioEstadoMotivo = motivo
	if usuario := r.URL.Query().Get("usuario"); usuario != "" {
		mic.UsuarioActualizacion = usuario
	}

	if err := h.Repo.UpdateMIC(mic); err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "Failed to void MIC: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "MIC voided", Data: mic})
}

// StatsMIC handler
func (h *MICHandler) StatsMIC(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Repo.Stats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "OK", Data: stats})
}
