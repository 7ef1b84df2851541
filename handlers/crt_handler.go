package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"cargosur/models"
	"cargosur/repository"
)

type CRTHandler struct {
	Repo repository.CRTRepository
}

// saneado rebuilds the ledger dropping entries without a tramo and
// stamps the CRT-level currency on the rest.
func saneado(crt *models.CRT) {
	limpio := models.Gastos{}
	for _, g := range crt.Gastos {
		limpio.Agregar(g)
	}
	limpio.AplicarMoneda(crt.Moneda)
	crt.Gastos = limpio
}

// CreateCRT handler
func (h *CRTHandler) CreateCRT(w http.ResponseWriter, r *http.Request) {
	var crt models.CRT
	if err := json.NewDecoder(r.Body).Decode(&crt); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "Invalid request payload: "+err.Error())
		return
	}

	if err := crt.Validar(); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}
	if crt.Estado == "" {
		crt.Estado = "EMITIDO"
	}
	saneado(&crt)

	if err := h.Repo.CreateCRT(&crt); err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "Failed to create CRT: "+err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, ApiResponse{
		Success: true,
		Message: "CRT created",
		Data:    crt,
	})
}

// GetAllCRT handler
func (h *CRTHandler) GetAllCRT(w http.ResponseWriter, r *http.Request) {
	filters := make(map[string]interface{})
	q := r.URL.Query()
	for key, values := range q {
		if len(values) > 0 && values[0] != "" {
			if intVal, err := strconv.Atoi(values[0]); err == nil && key != "q" && key != "numero_crt" {
				filters[key] = intVal
			} else {
				filters[key] = values[0]
			}
		}
	}

	list, err := h.Repo.GetCRT(filters, false)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}
	if list == nil {
		list = []*models.CRT{}
	}

	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "OK", Data: list})
}

// GetCRTByID handler
func (h *CRTHandler) GetCRTByID(w http.ResponseWriter, r *http.Request, id int64) {
	crt, err := h.buscar(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}
	if crt == nil {
		writeError(w, http.StatusNotFound, CodeNotFound, "CRT not found")
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "OK", Data: crt})
}

func (h *CRTHandler) buscar(id int64) (*models.CRT, error) {
	list, err := h.Repo.GetCRT(map[string]interface{}{"id": id}, true)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdateCRT handler
func (h *CRTHandler) UpdateCRT(w http.ResponseWriter, r *http.Request, id int64) {
	var crt models.CRT
	if err := json.NewDecoder(r.Body).Decode(&crt); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "Invalid request payload: "+err.Error())
		return
	}
	crt.ID = id

	if err := crt.Validar(); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}
	saneado(&crt)

	if err := h.Repo.UpdateCRT(&crt); err != nil {
		if repository.IsNotFound(err) {
			writeError(w, http.StatusNotFound, CodeNotFound, "CRT not found")
			return
		}
		writeError(w, http.StatusInternalServerError, CodeInternal, "Failed to update CRT: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "CRT updated", Data: crt})
}

// NextNumber returns the next sequential document number for a carrier
func (h *CRTHandler) NextNumber(w http.ResponseWriter, r *http.Request) {
	idStr := r.URL.Query().Get("transportadora_id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id == 0 {
		writeError(w, http.StatusBadRequest, CodeValidation, "missing or invalid transportadora_id")
		return
	}

	numero, err := h.Repo.NextNumber(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Message: "OK",
		Data:    map[string]string{"numero": numero},
	})
}

// DatosMIC derives a MIC draft from a stored CRT and reports which
// campos were auto-filled
func (h *CRTHandler) DatosMIC(w http.ResponseWriter, r *http.Request, crtID int64) {
	crt, err := h.buscar(crtID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}
	if crt == nil {
		writeError(w, http.StatusNotFound, CodeDerivationMissing, "CRT not found for derivation")
		return
	}

	derivacion := models.DerivarMICDesdeCRT(crt, crt.Partes())
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "OK", Data: derivacion})
}

// ListPartes handler
func (h *CRTHandler) ListPartes(w http.ResponseWriter, r *http.Request) {
	partes, err := h.Repo.ListPartes()
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}
	if partes == nil {
		partes = []*models.Parte{}
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "OK", Data: partes})
}

// CreateParte handler
func (h *CRTHandler) CreateParte(w http.ResponseWriter, r *http.Request) {
	var p models.Parte
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "Invalid request payload: "+err.Error())
		return
	}
	if p.Nombre == "" {
		writeError(w, http.StatusBadRequest, CodeValidation, "nombre is required")
		return
	}

	if err := h.Repo.CreateParte(&p); err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "Failed to create parte: "+err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, ApiResponse{Success: true, Message: "Parte created", Data: p})
}

var errBadID = errors.New("invalid id")

// ParseID converts a path segment into a document identifier.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}
