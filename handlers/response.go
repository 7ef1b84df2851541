package handlers

import (
	"encoding/json"
	"net/http"

	"cargosur/models"
)

// Machine-readable failure codes surfaced next to the human message.
const (
	CodeValidation         = "VALIDATION"
	CodeTransitionRejected = "TRANSITION_REJECTED"
	CodeEditForbidden      = "EDIT_FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeDerivationMissing  = "DERIVATION_SOURCE_MISSING"
	CodeInternal           = "INTERNAL"
)

type ApiResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Code    string      `json:"code,omitempty"`

	// Allowed destinations from the persisted state, present only on
	// transition rejections so clients can offer valid alternatives.
	TransicionesPermitidas []models.Estado `json:"transiciones_permitidas,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ApiResponse{
		Success: false,
		Message: message,
		Code:    code,
	})
}
