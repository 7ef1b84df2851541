package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Locale conventions of the printed forms: comma as decimal separator,
// dot as thousands separator. Fixed precision per semantic class:
// currency and declared values 2 digits, weights 3, volumes 5.

// ParseNumeroES parses a numeric string that may use either dot or
// comma as decimal separator ("2.500,00", "2500.00", "2500,5").
// Returns false for blank or unparsable input.
func ParseNumeroES(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, false
	}
	if strings.Contains(s, ",") {
		// comma is the decimal separator, dots group thousands
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else if strings.Count(s, ".") > 1 {
		// several dots can only be thousands grouping
		s = strings.ReplaceAll(s, ".", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// LimpiarNumeroParcial strips everything but digits and a single comma
// from in-progress user input, tolerating intermediate keystrokes.
func LimpiarNumeroParcial(s string) string {
	var b strings.Builder
	coma := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case (r == ',' || r == '.') && !coma:
			b.WriteRune(',')
			coma = true
		}
	}
	return b.String()
}

// aFormatoES renders a fixed-precision value with comma decimal
// separator and dot thousands grouping.
func aFormatoES(d decimal.Decimal, decimales int32) string {
	s := d.StringFixed(decimales)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	entero, frac := s, ""
	if i := strings.Index(s, "."); i >= 0 {
		entero, frac = s[:i], s[i+1:]
	}
	var grupos []string
	for len(entero) > 3 {
		grupos = append([]string{entero[len(entero)-3:]}, grupos...)
		entero = entero[:len(entero)-3]
	}
	grupos = append([]string{entero}, grupos...)

	out := strings.Join(grupos, ".")
	if frac != "" {
		out += "," + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

// FormatearMoneda renders a currency/declared value: 2 fraction digits.
func FormatearMoneda(d decimal.Decimal) string { return aFormatoES(d, 2) }

// FormatearPeso renders a weight: 3 fraction digits.
func FormatearPeso(d decimal.Decimal) string { return aFormatoES(d, 3) }

// FormatearVolumen renders a volume: 5 fraction digits.
func FormatearVolumen(d decimal.Decimal) string { return aFormatoES(d, 5) }

// Commit-time (on-blur) reformatting: strict parse then fixed render.
// Unparsable input resolves to an empty value, not an error.

func FormatearEntradaMoneda(s string) string {
	d, ok := ParseNumeroES(s)
	if !ok {
		return ""
	}
	return FormatearMoneda(d)
}

func FormatearEntradaPeso(s string) string {
	d, ok := ParseNumeroES(s)
	if !ok {
		return ""
	}
	return FormatearPeso(d)
}

func FormatearEntradaVolumen(s string) string {
	d, ok := ParseNumeroES(s)
	if !ok {
		return ""
	}
	return FormatearVolumen(d)
}

// FechaADisplay converts "YYYY-MM-DD" to "DD-MM-YYYY". Pure string
// rearrangement, no timezone handling. Anything else passes through.
func FechaADisplay(s string) string {
	p := strings.Split(s, "-")
	if len(p) != 3 || len(p[0]) != 4 {
		return s
	}
	return p[2] + "-" + p[1] + "-" + p[0]
}

// FechaAISO converts "DD-MM-YYYY" back to "YYYY-MM-DD".
func FechaAISO(s string) string {
	p := strings.Split(s, "-")
	if len(p) != 3 || len(p[2]) != 4 {
		return s
	}
	return p[2] + "-" + p[1] + "-" + p[0]
}
