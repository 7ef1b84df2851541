package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cargosur/models"

	"github.com/shopspring/decimal"
)

// fakeMICRepo is an in-memory MICRepository for handler tests.
type fakeMICRepo struct {
	mics   map[int64]*models.MIC
	nextID int64
}

func newFakeMICRepo() *fakeMICRepo {
	return &fakeMICRepo{mics: map[int64]*models.MIC{}, nextID: 1}
}

func (f *fakeMICRepo) CreateMIC(m *models.MIC) error {
	m.ID = f.nextID
	f.nextID++
	copia := *m
	f.mics[m.ID] = &copia
	return nil
}

func (f *fakeMICRepo) GetMICByID(id int64) (*models.MIC, error) {
	m, ok := f.mics[id]
	if !ok {
		return nil, nil
	}
	copia := *m
	return &copia, nil
}

func (f *fakeMICRepo) ListMICs(fil models.FiltrosMIC, page, perPage int) ([]*models.MIC, int, error) {
	var todos []*models.MIC
	for _, m := range f.mics {
		if fil.Estado != "" && m.Estado != fil.Estado {
			continue
		}
		copia := *m
		todos = append(todos, &copia)
	}
	total := len(todos)
	desde := (page - 1) * perPage
	if desde >= total {
		return nil, total, nil
	}
	hasta := desde + perPage
	if hasta > total {
		hasta = total
	}
	return todos[desde:hasta], total, nil
}

func (f *fakeMICRepo) UpdateMIC(m *models.MIC) error {
	copia := *m
	f.mics[m.ID] = &copia
	return nil
}

func (f *fakeMICRepo) Stats() (*models.MICStats, error) {
	return &models.MICStats{TotalMICs: len(f.mics)}, nil
}

// fakeCRTRepo serves a single CRT for derivation tests.
type fakeCRTRepo struct {
	crt *models.CRT
}

func (f *fakeCRTRepo) CreateCRT(c *models.CRT) error { return nil }
func (f *fakeCRTRepo) UpdateCRT(c *models.CRT) error { return nil }
func (f *fakeCRTRepo) NextNumber(int64) (string, error) {
	return "CRT-00001", nil
}
func (f *fakeCRTRepo) CreateParte(p *models.Parte) error        { return nil }
func (f *fakeCRTRepo) GetParte(int64) (*models.Parte, error)    { return nil, nil }
func (f *fakeCRTRepo) ListPartes() ([]*models.Parte, error)     { return nil, nil }
func (f *fakeCRTRepo) GetCRT(filters map[string]interface{}, single bool) ([]*models.CRT, error) {
	if f.crt == nil {
		return nil, nil
	}
	if id, ok := filters["id"].(int64); ok && id != f.crt.ID {
		return nil, nil
	}
	return []*models.CRT{f.crt}, nil
}

func micDePrueba(estado models.Estado) *models.MIC {
	m := models.NuevoMIC()
	m.Estado = estado
	m.Campo2Numero = "80054321-0"
	m.Campo7PtoSeguro = "ASUNCION"
	m.Campo10Numero = "80054321-0"
	m.Campo11Placa = "ABC123"
	m.Campo12ModeloChasis = "SCANIA R450"
	m.Campo14Anio = "2020"
	m.Campo15PlacaSemi = "XYZ987"
	m.Campo24Aduana = "CIUDAD DEL ESTE"
	m.Campo30TipoBultos = "CAJAS"
	m.Campo31Cantidad = "500"
	m.Campo40Tramo = "ASU-CDE 10 DIAS"
	return m
}

func decimalDe(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func decodificar(t *testing.T, rec *httptest.ResponseRecorder) ApiResponse {
	t.Helper()
	var env ApiResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("respuesta ilegible: %v: %s", err, rec.Body.String())
	}
	return env
}

func TestUpdateTransicionRechazada(t *testing.T) {
	repo := newFakeMICRepo()
	repo.CreateMIC(micDePrueba(models.EstadoProvisorio))
	h := &MICHandler{Repo: repo}

	body := strings.NewReader(`{"estado":"FINALIZADO","usuario_actualizacion":"juan"}`)
	req := httptest.NewRequest(http.MethodPut, "/mic/1", body)
	rec := httptest.NewRecorder()
	h.UpdateMIC(rec, req, 1)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409: %s", rec.Code, rec.Body.String())
	}
	env := decodificar(t, rec)
	if env.Code != CodeTransitionRejected {
		t.Errorf("code = %q", env.Code)
	}
	want := []models.Estado{models.EstadoDefinitivo, models.EstadoAnulado}
	if len(env.TransicionesPermitidas) != len(want) {
		t.Fatalf("transiciones_permitidas = %v, want %v", env.TransicionesPermitidas, want)
	}
	for i, e := range want {
		if env.TransicionesPermitidas[i] != e {
			t.Errorf("transiciones_permitidas[%d] = %s, want %s", i, env.TransicionesPermitidas[i], e)
		}
	}
	// persisted state untouched
	m, _ := repo.GetMICByID(1)
	if m.Estado != models.EstadoProvisorio {
		t.Errorf("el estado persistido cambio a %s", m.Estado)
	}
}

func TestUpdateTransicionValida(t *testing.T) {
	repo := newFakeMICRepo()
	repo.CreateMIC(micDePrueba(models.EstadoProvisorio))
	h := &MICHandler{Repo: repo}

	body := strings.NewReader(`{"estado":"DEFINITIVO","usuario_actualizacion":"juan"}`)
	req := httptest.NewRequest(http.MethodPut, "/mic/1", body)
	rec := httptest.NewRecorder()
	h.UpdateMIC(rec, req, 1)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	m, _ := repo.GetMICByID(1)
	if m.Estado != models.EstadoDefinitivo {
		t.Errorf("estado = %s", m.Estado)
	}
	if m.CambioEstadoMotivo != "Cambio de PROVISORIO a DEFINITIVO" {
		t.Errorf("motivo = %q", m.CambioEstadoMotivo)
	}
	if m.UsuarioActualizacion != "juan" {
		t.Errorf("usuario = %q", m.UsuarioActualizacion)
	}
}

func TestUpdateEdicionBloqueada(t *testing.T) {
	repo := newFakeMICRepo()
	repo.CreateMIC(micDePrueba(models.EstadoConfirmado))
	h := &MICHandler{Repo: repo}

	body := strings.NewReader(`{"campo_11_placa":"ZZZ999"}`)
	req := httptest.NewRequest(http.MethodPut, "/mic/1", body)
	rec := httptest.NewRecorder()
	h.UpdateMIC(rec, req, 1)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403: %s", rec.Code, rec.Body.String())
	}
	if env := decodificar(t, rec); env.Code != CodeEditForbidden {
		t.Errorf("code = %q", env.Code)
	}
	m, _ := repo.GetMICByID(1)
	if m.Campo11Placa != "ABC123" {
		t.Error("el campo no debe modificarse")
	}
}

func TestUpdateEdicionPermitida(t *testing.T) {
	repo := newFakeMICRepo()
	repo.CreateMIC(micDePrueba(models.EstadoDefinitivo))
	h := &MICHandler{Repo: repo}

	body := strings.NewReader(`{"campo_11_placa":"ZZZ999"}`)
	req := httptest.NewRequest(http.MethodPut, "/mic/1", body)
	rec := httptest.NewRecorder()
	h.UpdateMIC(rec, req, 1)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	m, _ := repo.GetMICByID(1)
	if m.Campo11Placa != "ZZZ999" {
		t.Errorf("placa = %q", m.Campo11Placa)
	}
	if m.Estado != models.EstadoDefinitivo {
		t.Errorf("una edicion de campos no debe tocar el estado, quedo %s", m.Estado)
	}
	// untouched fields survive the merge
	if m.Campo40Tramo != "ASU-CDE 10 DIAS" {
		t.Errorf("campo 40 = %q", m.Campo40Tramo)
	}
}

func TestCreateMICValidacion(t *testing.T) {
	h := &MICHandler{Repo: newFakeMICRepo()}

	req := httptest.NewRequest(http.MethodPost, "/mic", strings.NewReader(`{"campo_2_numero":"x"}`))
	rec := httptest.NewRecorder()
	h.CreateMIC(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
	env := decodificar(t, rec)
	if env.Code != CodeValidation {
		t.Errorf("code = %q", env.Code)
	}
	if !strings.Contains(env.Message, "campo_11_placa") {
		t.Errorf("el mensaje debe nombrar los campos faltantes: %q", env.Message)
	}
}

func TestCreateMICNormaliza(t *testing.T) {
	repo := newFakeMICRepo()
	h := &MICHandler{Repo: repo}

	mic := micDePrueba(models.EstadoProvisorio)
	mic.Campo32PesoBruto = "2.500,5"
	payload, _ := json.Marshal(mic)

	req := httptest.NewRequest(http.MethodPost, "/mic", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	h.CreateMIC(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	m, _ := repo.GetMICByID(1)
	if m.Campo32PesoBruto != "2500.500" {
		t.Errorf("peso normalizado = %q", m.Campo32PesoBruto)
	}
	if m.Campo16Asteriscos != models.RellenoAsteriscos {
		t.Errorf("campo 16 = %q", m.Campo16Asteriscos)
	}
}

func TestCreateFromCRT(t *testing.T) {
	repo := newFakeMICRepo()
	crt := &models.CRT{
		ID:           9,
		NumeroCRT:    "PY-00042",
		FechaEmision: "2025-03-07",
		LugarEntrega: "Santos, Brasil",
		Moneda:       "USD",
		Gastos: models.Gastos{
			{Tramo: "Flete", ValorRemitente: decimalDe(t, "2500")},
			{Tramo: "Seguro", ValorDestinatario: decimalDe(t, "180")},
		},
		Transportadora: &models.Parte{Nombre: "Transporte Guarani SRL"},
		Remitente:      &models.Parte{Nombre: "Yerbatera del Sur SA"},
		Destinatario:   &models.Parte{Nombre: "Importadora Santos Ltda"},
	}
	h := &MICHandler{Repo: repo, CRTRepo: &fakeCRTRepo{crt: crt}}

	// the payload completes the required fields and blanks campo_28
	payload, _ := json.Marshal(map[string]string{
		"campo_2_numero":         "80054321-0",
		"campo_7_pto_seguro":     "ASUNCION",
		"campo_10_numero":        "80054321-0",
		"campo_11_placa":         "ABC123",
		"campo_12_modelo_chasis": "SCANIA R450",
		"campo_14_anio":          "2020",
		"campo_15_placa_semi":    "XYZ987",
		"campo_24_aduana":        "CIUDAD DEL ESTE",
		"campo_30_tipo_bultos":   "CAJAS",
		"campo_31_cantidad":      "500",
		"campo_40_tramo":         "ASU-CDE 10 DIAS",
		"campo_28_total":         "",
	})

	req := httptest.NewRequest(http.MethodPost, "/crt/9/mic", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	h.CreateMICFromCRT(rec, req, 9)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	m, _ := repo.GetMICByID(1)
	if m.Estado != models.EstadoProvisorio {
		t.Errorf("estado = %s", m.Estado)
	}
	if m.CRTID == nil || *m.CRTID != 9 {
		t.Error("el MIC debe referenciar al CRT de origen")
	}
	// blanked total restored from the ledger, then normalized
	if m.Campo28Total != "2500.00" {
		t.Errorf("campo 28 = %q", m.Campo28Total)
	}
	if m.Campo29Seguro != "180.00" {
		t.Errorf("campo 29 = %q", m.Campo29Seguro)
	}
	if m.Campo23NumeroCRT != "PY-00042" {
		t.Errorf("campo 23 = %q", m.Campo23NumeroCRT)
	}
}

func TestCreateFromCRTFuenteAusente(t *testing.T) {
	h := &MICHandler{Repo: newFakeMICRepo(), CRTRepo: &fakeCRTRepo{}}

	req := httptest.NewRequest(http.MethodPost, "/crt/99/mic", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.CreateMICFromCRT(rec, req, 99)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404: %s", rec.Code, rec.Body.String())
	}
	if env := decodificar(t, rec); env.Code != CodeDerivationMissing {
		t.Errorf("code = %q", env.Code)
	}
}

func TestDuplicateMIC(t *testing.T) {
	repo := newFakeMICRepo()
	orig := micDePrueba(models.EstadoFinalizado)
	orig.CambioEstadoMotivo = "Cambio de EN_PROCESO a FINALIZADO"
	repo.CreateMIC(orig)
	h := &MICHandler{Repo: repo}

	req := httptest.NewRequest(http.MethodPost, "/mic/1/duplicate?usuario=maria", nil)
	rec := httptest.NewRecorder()
	h.DuplicateMIC(rec, req, 1)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	copia, _ := repo.GetMICByID(2)
	if copia == nil {
		t.Fatal("la copia no se persistio")
	}
	if copia.Estado != models.EstadoProvisorio {
		t.Errorf("estado de la copia = %s", copia.Estado)
	}
	if copia.CambioEstadoMotivo != "" {
		t.Error("la auditoria debe reiniciarse en la copia")
	}
	if copia.CreadoPor != "maria" {
		t.Errorf("creado_por = %q", copia.CreadoPor)
	}
	if copia.Campo11Placa != orig.Campo11Placa {
		t.Error("los campos deben copiarse")
	}
}

func TestAnularMIC(t *testing.T) {
	repo := newFakeMICRepo()
	repo.CreateMIC(micDePrueba(models.EstadoEnProceso))
	h := &MICHandler{Repo: repo}

	req := httptest.NewRequest(http.MethodDelete, "/mic/1?usuario=juan", nil)
	rec := httptest.NewRecorder()
	h.AnularMIC(rec, req, 1)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	m, _ := repo.GetMICByID(1)
	if m.Estado != models.EstadoAnulado {
		t.Errorf("estado = %s", m.Estado)
	}
	if m.CambioEstadoMotivo != "Cambio de EN_PROCESO a ANULADO" {
		t.Errorf("motivo = %q", m.CambioEstadoMotivo)
	}
	if m.UsuarioActualizacion != "juan" {
		t.Errorf("usuario = %q", m.UsuarioActualizacion)
	}
}

func TestAnularMICTerminal(t *testing.T) {
	repo := newFakeMICRepo()
	repo.CreateMIC(micDePrueba(models.EstadoAnulado))
	h := &MICHandler{Repo: repo}

	req := httptest.NewRequest(http.MethodDelete, "/mic/1", nil)
	rec := httptest.NewRecorder()
	h.AnularMIC(rec, req, 1)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409: %s", rec.Code, rec.Body.String())
	}
	if env := decodificar(t, rec); env.Code != CodeTransitionRejected {
		t.Errorf("code = %q", env.Code)
	}
}

func TestListMICs(t *testing.T) {
	repo := newFakeMICRepo()
	for i := 0; i < 3; i++ {
		repo.CreateMIC(micDePrueba(models.EstadoProvisorio))
	}
	h := &MICHandler{Repo: repo}

	req := httptest.NewRequest(http.MethodGet, "/mic?page=1&per_page=2", nil)
	rec := httptest.NewRecorder()
	h.ListMICs(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var env struct {
		Data struct {
			Items      []*models.MIC     `json:"items"`
			Pagination models.Paginacion `json:"pagination"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if len(env.Data.Items) != 2 {
		t.Errorf("items = %d, want 2", len(env.Data.Items))
	}
	p := env.Data.Pagination
	if p.Total != 3 || p.Pages != 2 || !p.HasNext || p.HasPrev {
		t.Errorf("pagination = %+v", p)
	}
}

func TestListMICsEstadoInvalido(t *testing.T) {
	h := &MICHandler{Repo: newFakeMICRepo()}
	req := httptest.NewRequest(http.MethodGet, "/mic?estado=INEXISTENTE", nil)
	rec := httptest.NewRecorder()
	h.ListMICs(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetMICNoEncontrado(t *testing.T) {
	h := &MICHandler{Repo: newFakeMICRepo()}
	req := httptest.NewRequest(http.MethodGet, "/mic/99", nil)
	rec := httptest.NewRecorder()
	h.GetMICByID(rec, req, 99)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if env := decodificar(t, rec); env.Code != CodeNotFound {
		t.Errorf("code = %q", env.Code)
	}
}
