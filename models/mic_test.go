package models

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func micValido() *MIC {
	m := NuevoMIC()
	m.Campo2Numero = "80054321-0"
	m.Campo7PtoSeguro = "ASUNCION - PARAGUAY"
	m.Campo10Numero = "80054321-0"
	m.Campo11Placa = "ABC123"
	m.Campo12ModeloChasis = "SCANIA R450 9BW"
	m.Campo14Anio = "2020"
	m.Campo15PlacaSemi = "XYZ987"
	m.Campo24Aduana = "CIUDAD DEL ESTE"
	m.Campo30TipoBultos = "CAJAS"
	m.Campo31Cantidad = "500"
	m.Campo40Tramo = "ASU-CDE 10 DIAS"
	return m
}

func TestNuevoMICDefectos(t *testing.T) {
	m := NuevoMIC()
	if m.Estado != EstadoProvisorio {
		t.Errorf("estado inicial = %s", m.Estado)
	}
	if m.Campo5Hoja != "1 / 1" || m.Campo13Siempre45 != "45 TON" || m.Campo26Pais != "520-PARAGUAY" {
		t.Error("constantes del formulario no aplicadas")
	}
}

func TestValidar(t *testing.T) {
	if err := micValido().Validar(); err != nil {
		t.Fatalf("MIC completo no debe fallar: %v", err)
	}

	m := micValido()
	m.Campo11Placa = ""
	err := m.Validar()
	if !errors.Is(err, ErrValidacion) {
		t.Fatalf("falta de placa debe envolver ErrValidacion, fue %v", err)
	}
	if !strings.Contains(err.Error(), "campo_11_placa") {
		t.Errorf("el error debe nombrar el campo faltante: %v", err)
	}

	m = micValido()
	m.Campo24Aduana = ""
	m.Campo40Tramo = ""
	err = m.Validar()
	if !strings.Contains(err.Error(), "campo_24_aduana") || !strings.Contains(err.Error(), "campo_40_tramo") {
		t.Errorf("el error debe nombrar todos los faltantes: %v", err)
	}
}

func TestRellenarAsteriscos(t *testing.T) {
	m := NuevoMIC()
	m.Campo17Asteriscos = "valor manual"
	m.RellenarAsteriscos()
	if m.Campo16Asteriscos != RellenoAsteriscos {
		t.Errorf("campo 16 = %q", m.Campo16Asteriscos)
	}
	if m.Campo17Asteriscos != "valor manual" {
		t.Error("un valor ya cargado no debe pisarse")
	}
	if m.Campo22Asteriscos != RellenoAsteriscos {
		t.Errorf("campo 22 = %q", m.Campo22Asteriscos)
	}
}

func TestDuplicado(t *testing.T) {
	orig := micValido()
	orig.ID = 42
	orig.Estado = EstadoFinalizado
	orig.CambioEstadoMotivo = "Cambio de EN_PROCESO a FINALIZADO"
	orig.UsuarioActualizacion = "maria"
	orig.CreatedAt = time.Now()
	ahora := time.Now()
	orig.UpdatedAt = &ahora

	d := orig.Duplicado()
	if d.ID != 0 {
		t.Error("la copia no debe llevar identificador")
	}
	if d.Estado != EstadoProvisorio {
		t.Errorf("la copia debe nacer en PROVISORIO, quedo %s", d.Estado)
	}
	if d.CambioEstadoMotivo != "" || d.UsuarioActualizacion != "" {
		t.Error("la auditoria debe reiniciarse")
	}
	if !d.CreatedAt.IsZero() || d.UpdatedAt != nil {
		t.Error("las marcas de tiempo deben reiniciarse")
	}
	if d.Campo11Placa != orig.Campo11Placa || d.Campo40Tramo != orig.Campo40Tramo {
		t.Error("los campos del formulario deben copiarse")
	}
	// original untouched
	if orig.ID != 42 || orig.Estado != EstadoFinalizado {
		t.Error("el original no debe modificarse")
	}
}

func TestNuevaPaginacion(t *testing.T) {
	casos := []struct {
		page, perPage, total int
		pages                int
		hasPrev, hasNext     bool
	}{
		{1, 20, 0, 0, false, false},
		{1, 20, 20, 1, false, false},
		{1, 20, 21, 2, false, true},
		{2, 20, 21, 2, true, false},
		{3, 10, 95, 10, true, true},
	}
	for _, c := range casos {
		p := NuevaPaginacion(c.page, c.perPage, c.total)
		if p.Pages != c.pages || p.HasPrev != c.hasPrev || p.HasNext != c.hasNext {
			t.Errorf("NuevaPaginacion(%d,%d,%d) = %+v", c.page, c.perPage, c.total, p)
		}
	}
}
