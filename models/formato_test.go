package models

import "testing"

func TestParseNumeroES(t *testing.T) {
	casos := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2.500,00", "2500", true},
		{"2500.00", "2500", true},
		{"2500,5", "2500.5", true},
		{"1.234.567,89", "1234567.89", true},
		{"1.234.567", "1234567", true},
		{"0,125", "0.125", true},
		{" 15 ", "15", true},
		{"-1.000,50", "-1000.5", true},
		{"", "0", false},
		{"   ", "0", false},
		{"abc", "0", false},
		{"12a", "0", false},
	}
	for _, c := range casos {
		d, ok := ParseNumeroES(c.in)
		if ok != c.ok {
			t.Errorf("ParseNumeroES(%q) ok = %v, want %v", c.in, ok, c.ok)
			continue
		}
		if ok && !d.Equal(dec(c.want)) {
			t.Errorf("ParseNumeroES(%q) = %s, want %s", c.in, d, c.want)
		}
	}
}

func TestLimpiarNumeroParcial(t *testing.T) {
	casos := []struct{ in, want string }{
		{"12a3", "123"},
		{"1,5", "1,5"},
		{"1.5", "1,5"},
		{"1,5,7", "1,57"},
		{"abc", ""},
		{"1 234,5", "1234,5"},
	}
	for _, c := range casos {
		if got := LimpiarNumeroParcial(c.in); got != c.want {
			t.Errorf("LimpiarNumeroParcial(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatear(t *testing.T) {
	if got := FormatearMoneda(dec("2500")); got != "2.500,00" {
		t.Errorf("FormatearMoneda(2500) = %q", got)
	}
	if got := FormatearMoneda(dec("-1234.5")); got != "-1.234,50" {
		t.Errorf("FormatearMoneda(-1234.5) = %q", got)
	}
	if got := FormatearPeso(dec("12345.6789")); got != "12.345,679" {
		t.Errorf("FormatearPeso = %q", got)
	}
	if got := FormatearVolumen(dec("1.5")); got != "1,50000" {
		t.Errorf("FormatearVolumen = %q", got)
	}
	if got := FormatearMoneda(dec("0")); got != "0,00" {
		t.Errorf("FormatearMoneda(0) = %q", got)
	}
}

func TestFormatearEntrada(t *testing.T) {
	casos := []struct {
		fn   func(string) string
		in   string
		want string
	}{
		{FormatearEntradaMoneda, "2500", "2.500,00"},
		{FormatearEntradaMoneda, "2.500,00", "2.500,00"},
		{FormatearEntradaMoneda, "no es numero", ""},
		{FormatearEntradaMoneda, "", ""},
		{FormatearEntradaPeso, "1234,5", "1.234,500"},
		{FormatearEntradaPeso, "x", ""},
		{FormatearEntradaVolumen, "2,5", "2,50000"},
	}
	for _, c := range casos {
		if got := c.fn(c.in); got != c.want {
			t.Errorf("entrada %q = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFechas(t *testing.T) {
	if got := FechaADisplay("2025-03-07"); got != "07-03-2025" {
		t.Errorf("FechaADisplay = %q", got)
	}
	if got := FechaAISO("07-03-2025"); got != "2025-03-07" {
		t.Errorf("FechaAISO = %q", got)
	}
	// anything not matching the pattern passes through untouched
	for _, s := range []string{"", "2025", "07/03/2025", "sin fecha"} {
		if got := FechaADisplay(s); got != s {
			t.Errorf("FechaADisplay(%q) = %q, want passthrough", s, got)
		}
		if got := FechaAISO(s); got != s {
			t.Errorf("FechaAISO(%q) = %q, want passthrough", s, got)
		}
	}
	// round trip
	if got := FechaAISO(FechaADisplay("2024-12-01")); got != "2024-12-01" {
		t.Errorf("ida y vuelta = %q", got)
	}
}

func TestNormalizarNumeros(t *testing.T) {
	m := NuevoMIC()
	m.Campo32PesoBruto = "2.500,5"
	m.Campo27Valor = "1.000"
	m.Campo28Total = "150,456"
	m.Campo29Seguro = "no parsea"
	m.Campo37ValorManual = " 12 "
	m.Campo14Anio = "2020,7"
	m.Campo10Numero = "80012345-6"
	m.Campo31Cantidad = "10 PALLETS"
	m.Campo11Placa = "  ABC123  "

	m.NormalizarNumeros()

	casos := []struct{ got, want, nombre string }{
		{m.Campo32PesoBruto, "2500.500", "peso"},
		{m.Campo27Valor, "1000.00", "valor declarado"},
		{m.Campo28Total, "150.46", "flete"},
		{m.Campo29Seguro, "", "seguro no parseable"},
		{m.Campo37ValorManual, "12.00", "valor manual"},
		{m.Campo14Anio, "2021", "anio redondeado"},
		{m.Campo10Numero, "80012345-6", "campo 10 pasa directo"},
		{m.Campo31Cantidad, "10 PALLETS", "campo 31 pasa directo"},
		{m.Campo11Placa, "ABC123", "recorte de espacios"},
	}
	for _, c := range casos {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.nombre, c.got, c.want)
		}
	}
}

func TestNormalizarNumerosVacios(t *testing.T) {
	m := NuevoMIC()
	m.NormalizarNumeros()
	if m.Campo32PesoBruto != "" || m.Campo28Total != "" || m.Campo14Anio != "" {
		t.Error("campos numericos vacios deben quedar vacios")
	}
}
