package models

import "fmt"

// Estado is the MIC lifecycle state.
type Estado string

const (
	EstadoProvisorio Estado = "PROVISORIO"
	EstadoDefinitivo Estado = "DEFINITIVO"
	EstadoConfirmado Estado = "CONFIRMADO"
	EstadoEnProceso  Estado = "EN_PROCESO"
	EstadoFinalizado Estado = "FINALIZADO"
	EstadoAnulado    Estado = "ANULADO"
)

type estadoPolitica struct {
	Transiciones         []Estado
	RequiereConfirmacion bool // confirmation needed before ENTERING this state
	PuedeEditar          bool // direct field edits allowed while in this state
	AccionRapida         Estado
	Descripcion          string
}

// tablaEstados is the authoritative transition table. The server enforces it;
// clients may use it as a precheck only.
var tablaEstados = map[Estado]estadoPolitica{
	EstadoProvisorio: {
		Transiciones: []Estado{EstadoDefinitivo, EstadoAnulado},
		PuedeEditar:  true,
		AccionRapida: EstadoDefinitivo,
		Descripcion:  "Borrador editable",
	},
	EstadoDefinitivo: {
		Transiciones:         []Estado{EstadoConfirmado, EstadoEnProceso, EstadoAnulado},
		RequiereConfirmacion: true,
		PuedeEditar:          true,
		AccionRapida:         EstadoConfirmado,
		Descripcion:          "Listo para presentar",
	},
	EstadoConfirmado: {
		Transiciones:         []Estado{EstadoEnProceso, EstadoFinalizado, EstadoAnulado},
		RequiereConfirmacion: true,
		AccionRapida:         EstadoEnProceso,
		Descripcion:          "Confirmado por aduana",
	},
	EstadoEnProceso: {
		Transiciones:         []Estado{EstadoFinalizado, EstadoAnulado},
		RequiereConfirmacion: true,
		AccionRapida:         EstadoFinalizado,
		Descripcion:          "Viaje en curso",
	},
	EstadoFinalizado: {Descripcion: "Viaje finalizado"},
	EstadoAnulado:    {Descripcion: "Documento anulado"},
}

// EstadoValido reports whether e is one of the known lifecycle states.
func EstadoValido(e Estado) bool {
	_, ok := tablaEstados[e]
	return ok
}

// EsTerminal reports whether no transition leaves e.
func EsTerminal(e Estado) bool {
	return len(tablaEstados[e].Transiciones) == 0 && EstadoValido(e)
}

// TransicionesPermitidas returns the allowed destination states from e,
// in table order. Empty for terminal or unknown states.
func TransicionesPermitidas(e Estado) []Estado {
	pol, ok := tablaEstados[e]
	if !ok {
		return nil
	}
	out := make([]Estado, len(pol.Transiciones))
	copy(out, pol.Transiciones)
	return out
}

// PuedeTransicionar reports whether from → to is in the transition table.
func PuedeTransicionar(from, to Estado) bool {
	for _, t := range tablaEstados[from].Transiciones {
		if t == to {
			return true
		}
	}
	return false
}

// RequiereConfirmacion reports whether entering e needs an explicit
// user confirmation before the transition is committed.
func RequiereConfirmacion(e Estado) bool {
	return tablaEstados[e].RequiereConfirmacion
}

// PuedeEditarDirectamente reports whether a MIC in state e accepts
// direct field edits. In every other state only transitions are allowed.
func PuedeEditarDirectamente(e Estado) bool {
	return tablaEstados[e].PuedeEditar
}

// AccionRapida returns the recommended next state for e and whether one
// exists. It is a UI convenience, not a constraint: any state returned
// by TransicionesPermitidas remains selectable.
func AccionRapida(e Estado) (Estado, bool) {
	pol := tablaEstados[e]
	if pol.AccionRapida == "" {
		return "", false
	}
	return pol.AccionRapida, true
}

// DescripcionEstado returns a short human label for e.
func DescripcionEstado(e Estado) string {
	return tablaEstados[e].Descripcion
}

// MotivoCambio builds the audit note recorded with a state change.
func MotivoCambio(from, to Estado) string {
	return fmt.Sprintf("Cambio de %s a %s", from, to)
}
