package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"cargosur/models"
)

func micEnEstado(id int64, e models.Estado) *models.MIC {
	m := models.NuevoMIC()
	m.ID = id
	m.Estado = e
	return m
}

// servidorQueNoDebeRecibir fails the test on any request.
func servidorQueNoDebeRecibir(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no debia llegar ninguna peticion, llego %s %s", r.Method, r.URL.Path)
	}))
}

func TestTransicionIlegalNoLlamaAlServidor(t *testing.T) {
	srv := servidorQueNoDebeRecibir(t)
	defer srv.Close()

	c := New(srv.URL)
	doc := micEnEstado(1, models.EstadoProvisorio)

	_, err := c.IntentarTransicion(context.Background(), doc, models.EstadoFinalizado)
	var ti *TransicionInvalidaError
	if !errors.As(err, &ti) {
		t.Fatalf("err = %v, want TransicionInvalidaError", err)
	}
	if ti.De != models.EstadoProvisorio || ti.A != models.EstadoFinalizado {
		t.Errorf("error = %+v", ti)
	}
	if len(ti.Permitidas) != 2 {
		t.Errorf("permitidas = %v", ti.Permitidas)
	}
}

func TestConfirmacionDeclinadaEsSilenciosa(t *testing.T) {
	srv := servidorQueNoDebeRecibir(t)
	defer srv.Close()

	c := New(srv.URL)
	preguntado := false
	c.Confirm = func(de, a models.Estado) bool {
		preguntado = true
		if de != models.EstadoProvisorio || a != models.EstadoDefinitivo {
			t.Errorf("confirmacion para %s -> %s", de, a)
		}
		return false
	}

	doc := micEnEstado(1, models.EstadoProvisorio)
	m, err := c.IntentarTransicion(context.Background(), doc, models.EstadoDefinitivo)
	if err != nil || m != nil {
		t.Fatalf("declinar debe ser un no-op silencioso, fue (%v, %v)", m, err)
	}
	if !preguntado {
		t.Error("el callback de confirmacion no se invoco")
	}
}

func TestConfirmNilAutoAcepta(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var cuerpo map[string]string
		json.NewDecoder(r.Body).Decode(&cuerpo)
		if cuerpo["estado"] != "DEFINITIVO" {
			t.Errorf("estado enviado = %q", cuerpo["estado"])
		}
		if cuerpo["cambio_estado_motivo"] != "Cambio de PROVISORIO a DEFINITIVO" {
			t.Errorf("motivo = %q", cuerpo["cambio_estado_motivo"])
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    micEnEstado(1, models.EstadoDefinitivo),
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.Usuario = "juan"
	doc := micEnEstado(1, models.EstadoProvisorio)
	m, err := c.IntentarTransicion(context.Background(), doc, models.EstadoDefinitivo)
	if err != nil {
		t.Fatal(err)
	}
	if m == nil || m.Estado != models.EstadoDefinitivo {
		t.Errorf("resultado = %+v", m)
	}
}

func TestRechazoDelServidor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":                 false,
			"code":                    "TRANSITION_REJECTED",
			"message":                 "Transicion no permitida de FINALIZADO a ANULADO",
			"transiciones_permitidas": []string{},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	// the client believes the document is still voidable; the server
	// knows it already finished
	doc := micEnEstado(1, models.EstadoEnProceso)
	_, err := c.IntentarTransicion(context.Background(), doc, models.EstadoAnulado)

	var rechazo *RechazadaPorServidorError
	if !errors.As(err, &rechazo) {
		t.Fatalf("err = %v, want RechazadaPorServidorError", err)
	}
	if len(rechazo.Permitidas) != 0 {
		t.Errorf("permitidas = %v, want vacio", rechazo.Permitidas)
	}
}

func TestEdicionBloqueadaSinRed(t *testing.T) {
	srv := servidorQueNoDebeRecibir(t)
	defer srv.Close()

	c := New(srv.URL)
	doc := micEnEstado(1, models.EstadoConfirmado)
	_, err := c.EditarCampos(context.Background(), doc)
	if !errors.Is(err, ErrEdicionBloqueada) {
		t.Fatalf("err = %v, want ErrEdicionBloqueada", err)
	}
}

func TestOperacionEnCurso(t *testing.T) {
	bloqueo := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-bloqueo
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    micEnEstado(1, models.EstadoAnulado),
		})
	}))
	defer srv.Close()

	c := New(srv.URL)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := c.Anular(context.Background(), 1); err != nil {
			t.Errorf("primera operacion fallo: %v", err)
		}
	}()

	// wait until the first request holds the flag
	for !c.EnVuelo(1) {
		time.Sleep(time.Millisecond)
	}

	if _, err := c.Anular(context.Background(), 1); !errors.Is(err, ErrOperacionEnCurso) {
		t.Errorf("segunda operacion = %v, want ErrOperacionEnCurso", err)
	}
	// a different document is not affected by the flag; the request
	// itself completes because the handler releases once
	if !c.EnVuelo(1) {
		t.Error("el documento 1 debe seguir en vuelo")
	}

	close(bloqueo)
	wg.Wait()

	if c.EnVuelo(1) {
		t.Error("la bandera debe liberarse al terminar")
	}
}

func TestEstadisticasAusentes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := New(srv.URL)
	stats, err := c.Estadisticas(context.Background())
	if err != nil {
		t.Fatalf("la ausencia del endpoint debe ser silenciosa: %v", err)
	}
	if stats != nil {
		t.Errorf("stats = %+v, want nil", stats)
	}
}

func TestEstadisticasPresentes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": models.MICStats{
				TotalMICs: 12,
				MICsHoy:   2,
				PorEstado: []models.ConteoEstado{{Estado: models.EstadoProvisorio, Cantidad: 5}},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	stats, err := c.Estadisticas(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats == nil || stats.TotalMICs != 12 || len(stats.PorEstado) != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestNoEncontrado(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false, "code": "NOT_FOUND", "message": "MIC not found",
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	if _, err := c.ObtenerMIC(context.Background(), 99); !errors.Is(err, ErrNoEncontrado) {
		t.Errorf("err = %v, want ErrNoEncontrado", err)
	}
}

func TestFuenteDerivacionAusente(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false, "code": "DERIVATION_SOURCE_MISSING",
			"message": "CRT not found for derivation",
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.DerivarDesdeCRT(context.Background(), 42)
	if !errors.Is(err, ErrFuenteDerivacion) {
		t.Errorf("err = %v, want ErrFuenteDerivacion", err)
	}
	if errors.Is(err, ErrNoEncontrado) {
		t.Error("la fuente ausente no debe confundirse con un MIC inexistente")
	}
}

func TestCrearMICValidaLocalmente(t *testing.T) {
	srv := servidorQueNoDebeRecibir(t)
	defer srv.Close()

	c := New(srv.URL)
	incompleto := models.NuevoMIC()
	_, err := c.CrearMIC(context.Background(), incompleto)
	if !errors.Is(err, models.ErrValidacion) {
		t.Fatalf("err = %v, want ErrValidacion", err)
	}
}

func TestTransporteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := New(srv.URL)
	_, err := c.ObtenerMIC(context.Background(), 1)
	var te *TransporteError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want TransporteError", err)
	}
}
