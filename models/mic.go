package models

import (
	"fmt"
	"time"
)

// MIC is the cargo manifest (MIC/DTA form): a flat set of numbered
// regulatory fields. All campos are stored as strings, already in the
// canonical format expected by the printed form.
type MIC struct {
	ID     int64  `json:"id" bson:"_id,omitempty" db:"id"`
	Estado Estado `json:"estado" bson:"estado" db:"estado"`
	CRTID  *int64 `json:"crt_id,omitempty" bson:"crt_id,omitempty" db:"crt_id"`

	Campo1Transporte      string `json:"campo_1_transporte" bson:"campo_1_transporte" db:"campo_1_transporte"`
	Campo2Numero          string `json:"campo_2_numero" bson:"campo_2_numero" db:"campo_2_numero"`
	Campo3Transporte      string `json:"campo_3_transporte" bson:"campo_3_transporte" db:"campo_3_transporte"`
	Campo4Estado          string `json:"campo_4_estado" bson:"campo_4_estado" db:"campo_4_estado"`
	Campo5Hoja            string `json:"campo_5_hoja" bson:"campo_5_hoja" db:"campo_5_hoja"`
	Campo6Fecha           string `json:"campo_6_fecha" bson:"campo_6_fecha" db:"campo_6_fecha"`
	Campo7PtoSeguro       string `json:"campo_7_pto_seguro" bson:"campo_7_pto_seguro" db:"campo_7_pto_seguro"`
	Campo8Destino         string `json:"campo_8_destino" bson:"campo_8_destino" db:"campo_8_destino"`
	Campo9DatosTransporte string `json:"campo_9_datos_transporte" bson:"campo_9_datos_transporte" db:"campo_9_datos_transporte"`
	Campo10Numero         string `json:"campo_10_numero" bson:"campo_10_numero" db:"campo_10_numero"`
	Campo11Placa          string `json:"campo_11_placa" bson:"campo_11_placa" db:"campo_11_placa"`
	Campo12ModeloChasis   string `json:"campo_12_modelo_chasis" bson:"campo_12_modelo_chasis" db:"campo_12_modelo_chasis"`
	Campo13Siempre45      string `json:"campo_13_siempre_45" bson:"campo_13_siempre_45" db:"campo_13_siempre_45"`
	Campo14Anio           string `json:"campo_14_anio" bson:"campo_14_anio" db:"campo_14_anio"`
	Campo15PlacaSemi      string `json:"campo_15_placa_semi" bson:"campo_15_placa_semi" db:"campo_15_placa_semi"`
	Campo16Asteriscos     string `json:"campo_16_asteriscos_1" bson:"campo_16_asteriscos_1" db:"campo_16_asteriscos_1"`
	Campo17Asteriscos     string `json:"campo_17_asteriscos_2" bson:"campo_17_asteriscos_2" db:"campo_17_asteriscos_2"`
	Campo18Asteriscos     string `json:"campo_18_asteriscos_3" bson:"campo_18_asteriscos_3" db:"campo_18_asteriscos_3"`
	Campo19Asteriscos     string `json:"campo_19_asteriscos_4" bson:"campo_19_asteriscos_4" db:"campo_19_asteriscos_4"`
	Campo20Asteriscos     string `json:"campo_20_asteriscos_5" bson:"campo_20_asteriscos_5" db:"campo_20_asteriscos_5"`
	Campo21Asteriscos     string `json:"campo_21_asteriscos_6" bson:"campo_21_asteriscos_6" db:"campo_21_asteriscos_6"`
	Campo22Asteriscos     string `json:"campo_22_asteriscos_7" bson:"campo_22_asteriscos_7" db:"campo_22_asteriscos_7"`
	Campo23NumeroCRT      string `json:"campo_23_numero_campo2_crt" bson:"campo_23_numero_campo2_crt" db:"campo_23_numero_campo2_crt"`
	Campo24Aduana         string `json:"campo_24_aduana" bson:"campo_24_aduana" db:"campo_24_aduana"`
	Campo25Moneda         string `json:"campo_25_moneda" bson:"campo_25_moneda" db:"campo_25_moneda"`
	Campo26Pais           string `json:"campo_26_pais" bson:"campo_26_pais" db:"campo_26_pais"`
	Campo27Valor          string `json:"campo_27_valor_campo16" bson:"campo_27_valor_campo16" db:"campo_27_valor_campo16"`
	Campo28Total          string `json:"campo_28_total" bson:"campo_28_total" db:"campo_28_total"`
	Campo29Seguro         string `json:"campo_29_seguro" bson:"campo_29_seguro" db:"campo_29_seguro"`
	Campo30TipoBultos     string `json:"campo_30_tipo_bultos" bson:"campo_30_tipo_bultos" db:"campo_30_tipo_bultos"`
	Campo31Cantidad       string `json:"campo_31_cantidad" bson:"campo_31_cantidad" db:"campo_31_cantidad"`
	Campo32PesoBruto      string `json:"campo_32_peso_bruto" bson:"campo_32_peso_bruto" db:"campo_32_peso_bruto"`
	Campo33Remitente      string `json:"campo_33_datos_campo1_crt" bson:"campo_33_datos_campo1_crt" db:"campo_33_datos_campo1_crt"`
	Campo34Destinatario   string `json:"campo_34_datos_campo4_crt" bson:"campo_34_datos_campo4_crt" db:"campo_34_datos_campo4_crt"`
	Campo35Consignatario  string `json:"campo_35_datos_campo6_crt" bson:"campo_35_datos_campo6_crt" db:"campo_35_datos_campo6_crt"`
	Campo36FacturaDespacho string `json:"campo_36_factura_despacho" bson:"campo_36_factura_despacho" db:"campo_36_factura_despacho"`
	Campo37ValorManual    string `json:"campo_37_valor_manual" bson:"campo_37_valor_manual" db:"campo_37_valor_manual"`
	Campo38Detalles       string `json:"campo_38_datos_campo11_crt" bson:"campo_38_datos_campo11_crt" db:"campo_38_datos_campo11_crt"`
	Campo40Tramo          string `json:"campo_40_tramo" bson:"campo_40_tramo" db:"campo_40_tramo"`

	CreadoPor            string `json:"creado_por,omitempty" bson:"creado_por,omitempty" db:"creado_por"`
	UsuarioActualizacion string `json:"usuario_actualizacion,omitempty" bson:"usuario_actualizacion,omitempty" db:"usuario_actualizacion"`
	CambioEstadoMotivo   string `json:"cambio_estado_motivo,omitempty" bson:"cambio_estado_motivo,omitempty" db:"cambio_estado_motivo"`

	CreatedAt time.Time  `json:"created_at" bson:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty" db:"updated_at"`

	// Join columns filled on list/get responses when the MIC was derived
	// from a CRT.
	CrtNumero       string `json:"crt_numero,omitempty" bson:"-" db:"-"`
	CrtFechaEmision string `json:"crt_fecha_emision,omitempty" bson:"-" db:"-"`
	CrtEstado       string `json:"crt_estado,omitempty" bson:"-" db:"-"`
}

// Form constants.
const (
	Campo5HojaDefecto  = "1 / 1"
	Campo13Constante   = "45 TON"
	Campo26Constante   = "520-PARAGUAY"
	RellenoAsteriscos  = "******"
	MaxLenCampo38      = 1500
)

// NuevoMIC returns a blank manifest with the form defaults applied and
// the initial lifecycle state.
func NuevoMIC() *MIC {
	return &MIC{
		Estado:           EstadoProvisorio,
		Campo5Hoja:       Campo5HojaDefecto,
		Campo13Siempre45: Campo13Constante,
		Campo26Pais:      Campo26Constante,
	}
}

// camposRequeridos maps the fields that must be non-empty before a
// create/save call is issued, keyed by wire name.
var camposRequeridos = []struct {
	Nombre string
	Valor  func(*MIC) string
}{
	{"campo_2_numero", func(m *MIC) string { return m.Campo2Numero }},
	{"campo_10_numero", func(m *MIC) string { return m.Campo10Numero }},
	{"campo_11_placa", func(m *MIC) string { return m.Campo11Placa }},
	{"campo_12_modelo_chasis", func(m *MIC) string { return m.Campo12ModeloChasis }},
	{"campo_14_anio", func(m *MIC) string { return m.Campo14Anio }},
	{"campo_15_placa_semi", func(m *MIC) string { return m.Campo15PlacaSemi }},
	{"campo_24_aduana", func(m *MIC) string { return m.Campo24Aduana }},
	{"campo_30_tipo_bultos", func(m *MIC) string { return m.Campo30TipoBultos }},
	{"campo_31_cantidad", func(m *MIC) string { return m.Campo31Cantidad }},
	{"campo_40_tramo", func(m *MIC) string { return m.Campo40Tramo }},
	{"campo_7_pto_seguro", func(m *MIC) string { return m.Campo7PtoSeguro }},
}

// Validar checks the required campos. The returned error wraps
// ErrValidacion and names every missing field.
func (m *MIC) Validar() error {
	var faltan []string
	for _, c := range camposRequeridos {
		if c.Valor(m) == "" {
			faltan = append(faltan, c.Nombre)
		}
	}
	if len(faltan) > 0 {
		return fmt.Errorf("campos obligatorios vacios: %v: %w", faltan, ErrValidacion)
	}
	return nil
}

// RellenarAsteriscos fills campos 16 through 22 with the regulatory
// placeholder when they were left blank. Applied at save time.
func (m *MIC) RellenarAsteriscos() {
	for _, p := range []*string{
		&m.Campo16Asteriscos, &m.Campo17Asteriscos, &m.Campo18Asteriscos,
		&m.Campo19Asteriscos, &m.Campo20Asteriscos, &m.Campo21Asteriscos,
		&m.Campo22Asteriscos,
	} {
		if *p == "" {
			*p = RellenoAsteriscos
		}
	}
}

// Duplicado returns a copy ready to be persisted as a fresh document:
// no identifier, initial state, audit and stamps reset.
func (m *MIC) Duplicado() *MIC {
	d := *m
	d.ID = 0
	d.Estado = EstadoProvisorio
	d.CambioEstadoMotivo = ""
	d.UsuarioActualizacion = ""
	d.CreatedAt = time.Time{}
	d.UpdatedAt = nil
	return &d
}

// FiltrosMIC are the supported list filters. Substring matches are
// case-insensitive; dates bound campo_6_fecha inclusively.
type FiltrosMIC struct {
	Estado         Estado
	NumeroCarta    string // campo_23 substring
	Transportadora string // campo_1 substring
	Placa          string // campo_11 substring
	Destino        string // campo_8 substring
	FechaDesde     string // YYYY-MM-DD
	FechaHasta     string // YYYY-MM-DD
	Busqueda       string // free search over campo_23, campo_1, campo_38
}

// Paginacion is the page metadata returned with every list response.
type Paginacion struct {
	Page    int  `json:"page"`
	Pages   int  `json:"pages"`
	PerPage int  `json:"per_page"`
	Total   int  `json:"total"`
	HasPrev bool `json:"has_prev"`
	HasNext bool `json:"has_next"`
}

// NuevaPaginacion derives page metadata from a total row count.
func NuevaPaginacion(page, perPage, total int) Paginacion {
	pages := 0
	if perPage > 0 {
		pages = (total + perPage - 1) / perPage
	}
	return Paginacion{
		Page:    page,
		Pages:   pages,
		PerPage: perPage,
		Total:   total,
		HasPrev: page > 1,
		HasNext: page < pages,
	}
}

// ConteoEstado is one row of the per-state aggregate.
type ConteoEstado struct {
	Estado   Estado `json:"estado"`
	Cantidad int    `json:"cantidad"`
}

// MICStats is the payload of the statistics endpoint.
type MICStats struct {
	TotalMICs  int            `json:"total_mics"`
	MICsHoy    int            `json:"mics_hoy"`
	MICsSemana int            `json:"mics_semana"`
	PorEstado  []ConteoEstado `json:"por_estado"`
}
