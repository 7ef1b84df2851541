package models

import "strings"

// Numeric classes crossing the string/number boundary before a MIC is
// submitted. Canonical storage uses dot-decimal fixed precision:
// weights 3 digits, monetary values 2, years a rounded integer. Count
// fields pass through as strings. Everything else is trimmed only.

func normalizarPeso(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	d, ok := ParseNumeroES(s)
	if !ok {
		return ""
	}
	return d.StringFixed(3)
}

func normalizarDecimal(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	d, ok := ParseNumeroES(s)
	if !ok {
		return ""
	}
	return d.StringFixed(2)
}

func normalizarAnio(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	d, ok := ParseNumeroES(s)
	if !ok {
		return ""
	}
	return d.Round(0).String()
}

// NormalizarNumeros coerces the numeric campos to their canonical form
// and trims every other campo. Run before persisting.
func (m *MIC) NormalizarNumeros() {
	todos := []*string{
		&m.Campo1Transporte, &m.Campo2Numero, &m.Campo3Transporte,
		&m.Campo4Estado, &m.Campo5Hoja, &m.Campo6Fecha, &m.Campo7PtoSeguro,
		&m.Campo8Destino, &m.Campo9DatosTransporte, &m.Campo10Numero,
		&m.Campo11Placa, &m.Campo12ModeloChasis, &m.Campo13Siempre45,
		&m.Campo14Anio, &m.Campo15PlacaSemi, &m.Campo16Asteriscos,
		&m.Campo17Asteriscos, &m.Campo18Asteriscos, &m.Campo19Asteriscos,
		&m.Campo20Asteriscos, &m.Campo21Asteriscos, &m.Campo22Asteriscos,
		&m.Campo23NumeroCRT, &m.Campo24Aduana, &m.Campo25Moneda,
		&m.Campo26Pais, &m.Campo27Valor, &m.Campo28Total, &m.Campo29Seguro,
		&m.Campo30TipoBultos, &m.Campo31Cantidad, &m.Campo32PesoBruto,
		&m.Campo33Remitente, &m.Campo34Destinatario, &m.Campo35Consignatario,
		&m.Campo36FacturaDespacho, &m.Campo37ValorManual, &m.Campo38Detalles,
		&m.Campo40Tramo,
	}
	for _, p := range todos {
		*p = strings.TrimSpace(*p)
	}

	m.Campo32PesoBruto = normalizarPeso(m.Campo32PesoBruto)
	m.Campo27Valor = normalizarDecimal(m.Campo27Valor)
	m.Campo28Total = normalizarDecimal(m.Campo28Total)
	m.Campo29Seguro = normalizarDecimal(m.Campo29Seguro)
	m.Campo37ValorManual = normalizarDecimal(m.Campo37ValorManual)
	m.Campo14Anio = normalizarAnio(m.Campo14Anio)
	// campo_10 and campo_31 stay as entered (string passthrough)
}
