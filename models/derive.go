package models

import "strings"

// Field-length caps of the printed MIC/DTA form.
const (
	maxLenCampo1 = 150
	maxLenCampo8 = 100
)

func recortar(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}

// DerivacionMIC is the result of deriving a manifest draft from a CRT:
// the draft itself plus the wire names of every campo the engine
// populated. Provenance is a side channel, never stored on the MIC.
type DerivacionMIC struct {
	Datos                 *MIC     `json:"datos"`
	CamposAutocompletados []string `json:"campos_autocompletados"`
}

// DerivarMICDesdeCRT projects a CRT and its expense ledger into a MIC
// draft. Pure and deterministic: deriving twice from the same CRT
// yields identical campos and identical provenance. A re-derivation
// fully replaces previous auto-filled values, it never merges.
//
// Campos whose CRT source is empty are left blank and omitted from the
// provenance list. The constant campos (capacity class, country of
// origin) are always populated and always listed; the user may override
// them afterwards.
func DerivarMICDesdeCRT(crt *CRT, partes *PartesCRT) *DerivacionMIC {
	m := NuevoMIC()
	if crt.ID != 0 {
		id := crt.ID
		m.CRTID = &id
	}

	var auto []string
	set := func(dst *string, valor, nombre string) {
		if valor == "" {
			return
		}
		*dst = valor
		auto = append(auto, nombre)
	}

	if partes == nil {
		partes = &PartesCRT{}
	}

	transportadora := recortar(partes.Transportadora.BloqueCompleto(), maxLenCampo1)
	set(&m.Campo1Transporte, transportadora, "campo_1_transporte")
	set(&m.Campo6Fecha, crt.FechaEmision, "campo_6_fecha")
	set(&m.Campo8Destino, recortar(strings.TrimSpace(crt.LugarEntrega), maxLenCampo8), "campo_8_destino")
	set(&m.Campo9DatosTransporte, transportadora, "campo_9_datos_transporte")
	set(&m.Campo23NumeroCRT, strings.TrimSpace(crt.NumeroCRT), "campo_23_numero_campo2_crt")
	set(&m.Campo25Moneda, strings.TrimSpace(crt.Moneda), "campo_25_moneda")

	// constants: always filled, overridable afterwards
	m.Campo13Siempre45 = Campo13Constante
	auto = append(auto, "campo_13_siempre_45")
	m.Campo26Pais = Campo26Constante
	auto = append(auto, "campo_26_pais")

	if !crt.DeclaracionMercaderia.IsZero() {
		set(&m.Campo27Valor, FormatearMoneda(crt.DeclaracionMercaderia), "campo_27_valor_campo16")
	}
	if !crt.PesoBruto.IsZero() {
		set(&m.Campo32PesoBruto, FormatearPeso(crt.PesoBruto), "campo_32_peso_bruto")
	}

	set(&m.Campo33Remitente, partes.Remitente.BloqueCompleto(), "campo_33_datos_campo1_crt")
	set(&m.Campo34Destinatario, partes.Destinatario.BloqueCompleto(), "campo_34_datos_campo4_crt")

	// notify party, falling back through consignee when absent
	notificado := partes.NotificarA.BloqueCompleto()
	if notificado == "" {
		notificado = partes.Consignatario.BloqueCompleto()
	}
	if notificado == "" {
		notificado = partes.Destinatario.BloqueCompleto()
	}
	set(&m.Campo35Consignatario, notificado, "campo_35_datos_campo6_crt")

	documentos := strings.TrimSpace(strings.TrimSpace(crt.FacturaExportacion) + " " + strings.TrimSpace(crt.NroDespacho))
	set(&m.Campo36FacturaDespacho, documentos, "campo_36_factura_despacho")

	detalles := strings.TrimSpace(crt.DetallesMercaderia)
	if detalles == "" {
		detalles = strings.TrimSpace(crt.Observaciones)
	}
	set(&m.Campo38Detalles, recortar(detalles, MaxLenCampo38), "campo_38_datos_campo11_crt")

	if flete := crt.Gastos.TotalFlete(); !flete.IsZero() {
		set(&m.Campo28Total, FormatearMoneda(flete), "campo_28_total")
	}
	if seguro := crt.Gastos.TotalSeguro(); !seguro.IsZero() {
		set(&m.Campo29Seguro, FormatearMoneda(seguro), "campo_29_seguro")
	}

	return &DerivacionMIC{Datos: m, CamposAutocompletados: auto}
}
