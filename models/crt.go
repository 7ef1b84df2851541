package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CRT is a road consignment note (Carta de Porte Internacional por
// Carretera). Its estado is an open string: the values come from the
// regulatory flow, not from this system.
type CRT struct {
	ID           int64  `json:"id" bson:"_id,omitempty" db:"id"`
	NumeroCRT    string `json:"numero_crt" bson:"numero_crt" db:"numero_crt"`
	FechaEmision string `json:"fecha_emision" bson:"fecha_emision" db:"fecha_emision"` // YYYY-MM-DD
	Estado       string `json:"estado" bson:"estado" db:"estado"`                      // e.g. EMITIDO

	RemitenteID      *int64 `json:"remitente_id,omitempty" bson:"remitente_id,omitempty" db:"remitente_id"`
	DestinatarioID   *int64 `json:"destinatario_id,omitempty" bson:"destinatario_id,omitempty" db:"destinatario_id"`
	ConsignatarioID  *int64 `json:"consignatario_id,omitempty" bson:"consignatario_id,omitempty" db:"consignatario_id"`
	NotificarAID     *int64 `json:"notificar_a_id,omitempty" bson:"notificar_a_id,omitempty" db:"notificar_a_id"`
	TransportadoraID *int64 `json:"transportadora_id,omitempty" bson:"transportadora_id,omitempty" db:"transportadora_id"`

	CiudadEmision string `json:"ciudad_emision" bson:"ciudad_emision" db:"ciudad_emision"`
	PaisEmision   string `json:"pais_emision" bson:"pais_emision" db:"pais_emision"`
	LugarEntrega  string `json:"lugar_entrega" bson:"lugar_entrega" db:"lugar_entrega"`

	DetallesMercaderia    string          `json:"detalles_mercaderia" bson:"detalles_mercaderia" db:"detalles_mercaderia"`
	PesoBruto             decimal.Decimal `json:"peso_bruto" bson:"peso_bruto" db:"peso_bruto"`
	PesoNeto              decimal.Decimal `json:"peso_neto" bson:"peso_neto" db:"peso_neto"`
	Volumen               decimal.Decimal `json:"volumen" bson:"volumen" db:"volumen"`
	Incoterm              string          `json:"incoterm" bson:"incoterm" db:"incoterm"`
	ValorIncoterm         decimal.Decimal `json:"valor_incoterm" bson:"valor_incoterm" db:"valor_incoterm"`
	Moneda                string          `json:"moneda" bson:"moneda" db:"moneda"` // ledger-level currency
	DeclaracionMercaderia decimal.Decimal `json:"declaracion_mercaderia" bson:"declaracion_mercaderia" db:"declaracion_mercaderia"`
	ValorFleteExterno     decimal.Decimal `json:"valor_flete_externo" bson:"valor_flete_externo" db:"valor_flete_externo"`
	ValorReembolso        decimal.Decimal `json:"valor_reembolso" bson:"valor_reembolso" db:"valor_reembolso"`

	FacturaExportacion   string `json:"factura_exportacion" bson:"factura_exportacion" db:"factura_exportacion"`
	NroDespacho          string `json:"nro_despacho" bson:"nro_despacho" db:"nro_despacho"`
	TransporteSucesivos  string `json:"transporte_sucesivos" bson:"transporte_sucesivos" db:"transporte_sucesivos"`
	Observaciones        string `json:"observaciones" bson:"observaciones" db:"observaciones"`
	FormalidadesAduana   string `json:"formalidades_aduana" bson:"formalidades_aduana" db:"formalidades_aduana"`
	FirmaRemitente       string `json:"firma_remitente" bson:"firma_remitente" db:"firma_remitente"`
	FirmaTransportador   string `json:"firma_transportador" bson:"firma_transportador" db:"firma_transportador"`
	FirmaDestinatario    string `json:"firma_destinatario" bson:"firma_destinatario" db:"firma_destinatario"`

	Gastos Gastos `json:"gastos" bson:"gastos"`

	CreatedAt time.Time  `json:"created_at" bson:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty" db:"updated_at"`

	// Nested objects for responses (denormalized)
	Remitente      *Parte `json:"remitente,omitempty" bson:"-"`
	Destinatario   *Parte `json:"destinatario,omitempty" bson:"-"`
	Consignatario  *Parte `json:"consignatario,omitempty" bson:"-"`
	NotificarA     *Parte `json:"notificar_a,omitempty" bson:"-"`
	Transportadora *Parte `json:"transportadora,omitempty" bson:"-"`
}

// Validar checks the references a CRT must carry before it can be
// persisted or used as a MIC derivation source.
func (c *CRT) Validar() error {
	var faltan []string
	if c.RemitenteID == nil || *c.RemitenteID == 0 {
		faltan = append(faltan, "remitente_id")
	}
	if c.DestinatarioID == nil || *c.DestinatarioID == 0 {
		faltan = append(faltan, "destinatario_id")
	}
	if c.TransportadoraID == nil || *c.TransportadoraID == 0 {
		faltan = append(faltan, "transportadora_id")
	}
	if len(faltan) > 0 {
		return fmt.Errorf("faltan referencias obligatorias: %v: %w", faltan, ErrValidacion)
	}
	return nil
}

// ErrValidacion marks a client-side required-field failure. Requests
// failing it never reach the persistence layer.
var ErrValidacion = errors.New("validacion fallida")

// Partes resolves the nested party pointers into a PartesCRT bundle.
func (c *CRT) Partes() *PartesCRT {
	return &PartesCRT{
		Remitente:      c.Remitente,
		Destinatario:   c.Destinatario,
		Consignatario:  c.Consignatario,
		NotificarA:     c.NotificarA,
		Transportadora: c.Transportadora,
	}
}
