package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrIndiceGasto is returned when removing a ledger entry at a position
// that does not exist.
var ErrIndiceGasto = errors.New("indice de gasto fuera de rango")

// Gasto is one freight-cost line of a CRT, split between what the sender
// and the consignee owe. The currency is not stored per entry: the CRT
// carries a single currency applied to the whole ledger at save time.
type Gasto struct {
	ID                int64           `json:"id,omitempty" bson:"id,omitempty" db:"id"`
	Tramo             string          `json:"tramo" bson:"tramo" db:"tramo"`
	ValorRemitente    decimal.Decimal `json:"valor_remitente" bson:"valor_remitente" db:"valor_remitente"`
	ValorDestinatario decimal.Decimal `json:"valor_destinatario" bson:"valor_destinatario" db:"valor_destinatario"`
	Moneda            string          `json:"moneda,omitempty" bson:"moneda,omitempty" db:"moneda"`
}

// Gastos is the ordered expense ledger of a CRT. Insertion order is
// preserved for display and totals.
type Gastos []Gasto

// Agregar appends an entry. An entry whose tramo is blank is silently
// dropped, matching the issuing form behaviour.
func (g *Gastos) Agregar(entrada Gasto) {
	entrada.Tramo = strings.TrimSpace(entrada.Tramo)
	if entrada.Tramo == "" {
		return
	}
	*g = append(*g, entrada)
}

// AgregarDesdeFormulario appends an entry whose amounts arrive as
// display-formatted strings. Blank tramo drops the entry; amounts that
// do not parse count as zero.
func (g *Gastos) AgregarDesdeFormulario(tramo, valorRemitente, valorDestinatario string) {
	vr, _ := ParseNumeroES(valorRemitente)
	vd, _ := ParseNumeroES(valorDestinatario)
	g.Agregar(Gasto{Tramo: tramo, ValorRemitente: vr, ValorDestinatario: vd})
}

// Quitar removes the entry at position i.
func (g *Gastos) Quitar(i int) error {
	if i < 0 || i >= len(*g) {
		return ErrIndiceGasto
	}
	*g = append((*g)[:i], (*g)[i+1:]...)
	return nil
}

// Totales returns the sender and consignee sums across all entries.
// Absent amounts count as zero.
func (g Gastos) Totales() (remitente, destinatario decimal.Decimal) {
	for _, e := range g {
		remitente = remitente.Add(e.ValorRemitente)
		destinatario = destinatario.Add(e.ValorDestinatario)
	}
	return remitente, destinatario
}

// monto is the amount one entry contributes to the MIC aggregates:
// the sender side when positive, otherwise the consignee side.
func (e Gasto) monto() decimal.Decimal {
	if e.ValorRemitente.IsPositive() {
		return e.ValorRemitente
	}
	return e.ValorDestinatario
}

// esSeguro reports whether the entry is an insurance line, by
// case-insensitive containment of "seguro" in its description.
func (e Gasto) esSeguro() bool {
	return strings.Contains(strings.ToLower(e.Tramo), "seguro")
}

// TotalFlete sums the non-insurance entries using the
// sender-else-consignee selection rule.
func (g Gastos) TotalFlete() decimal.Decimal {
	total := decimal.Zero
	for _, e := range g {
		if !e.esSeguro() {
			total = total.Add(e.monto())
		}
	}
	return total
}

// TotalSeguro sums the insurance entries with the same selection rule.
func (g Gastos) TotalSeguro() decimal.Decimal {
	total := decimal.Zero
	for _, e := range g {
		if e.esSeguro() {
			total = total.Add(e.monto())
		}
	}
	return total
}

// AplicarMoneda stamps the ledger-level currency on every entry, as done
// when the parent CRT is persisted.
func (g Gastos) AplicarMoneda(moneda string) {
	for i := range g {
		g[i].Moneda = moneda
	}
}
