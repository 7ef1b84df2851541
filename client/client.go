// Package client is the Go consumer of the document service: it
// prechecks transitions and edit permissions locally, keeps one
// request in flight per document, and maps the service's failure codes
// onto typed errors. The server stays authoritative on every decision.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"cargosur/models"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client

	// Usuario is recorded as the actor on every mutating call.
	Usuario string

	// Confirm is asked before committing a transition into a state
	// that requires explicit confirmation. A nil Confirm auto-accepts
	// (headless use); returning false aborts silently.
	Confirm func(de, a models.Estado) bool

	enVuelo *vuelo
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    http.DefaultClient,
		enVuelo: nuevoVuelo(),
	}
}

// PaginaMICs is one page of list results.
type PaginaMICs struct {
	Items      []*models.MIC     `json:"items"`
	Pagination models.Paginacion `json:"pagination"`
}

type apiEnvelope struct {
	Success                bool            `json:"success"`
	Message                string          `json:"message"`
	Code                   string          `json:"code"`
	TransicionesPermitidas []models.Estado `json:"transiciones_permitidas"`
	Data                   json.RawMessage `json:"data"`
}

// do issues one JSON request and decodes the envelope, mapping failure
// codes onto the typed errors of this package.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &TransporteError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransporteError{Op: method + " " + path, Err: err}
	}

	var env apiEnvelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			// non-JSON error bodies still map by status
			if resp.StatusCode >= 400 {
				return mapError(resp.StatusCode, &apiEnvelope{Message: strings.TrimSpace(string(raw))}, method+" "+path)
			}
			return &TransporteError{Op: method + " " + path, Err: fmt.Errorf("respuesta ilegible: %w", err)}
		}
	}

	if resp.StatusCode >= 400 {
		return mapError(resp.StatusCode, &env, method+" "+path)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &TransporteError{Op: method + " " + path, Err: err}
		}
	}
	return nil
}

func mapError(status int, env *apiEnvelope, op string) error {
	switch status {
	case http.StatusNotFound:
		if env.Code == "DERIVATION_SOURCE_MISSING" {
			return fmt.Errorf("%s: %w", env.Message, ErrFuenteDerivacion)
		}
		return fmt.Errorf("%s: %w", env.Message, ErrNoEncontrado)
	case http.StatusConflict:
		return &RechazadaPorServidorError{Mensaje: env.Message, Permitidas: env.TransicionesPermitidas}
	case http.StatusForbidden:
		return fmt.Errorf("%s: %w", env.Message, ErrEdicionBloqueada)
	case http.StatusBadRequest:
		return fmt.Errorf("%s: %w", env.Message, models.ErrValidacion)
	default:
		return &TransporteError{Op: op, Err: fmt.Errorf("HTTP %d: %s", status, env.Message)}
	}
}

// ListarMICs fetches one filtered page of manifests.
func (c *Client) ListarMICs(ctx context.Context, f models.FiltrosMIC, page, perPage int) (*PaginaMICs, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("estado", string(f.Estado))
	set("numero_carta", f.NumeroCarta)
	set("transportadora", f.Transportadora)
	set("placa", f.Placa)
	set("destino", f.Destino)
	set("fecha_desde", f.FechaDesde)
	set("fecha_hasta", f.FechaHasta)
	set("q", f.Busqueda)

	var out PaginaMICs
	if err := c.do(ctx, http.MethodGet, "/mic?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ObtenerMIC fetches one manifest by identifier.
func (c *Client) ObtenerMIC(ctx context.Context, id int64) (*models.MIC, error) {
	var out models.MIC
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/mic/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DerivarDesdeCRT requests the derivation of a MIC draft from a stored
// CRT, returning the draft plus the auto-filled campo names.
func (c *Client) DerivarDesdeCRT(ctx context.Context, crtID int64) (*models.DerivacionMIC, error) {
	var out models.DerivacionMIC
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/crt/%d/datos-mic", crtID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CrearMIC validates locally (required campos block submission before
// any network call) and persists a manually assembled manifest.
func (c *Client) CrearMIC(ctx context.Context, m *models.MIC) (*models.MIC, error) {
	if err := m.Validar(); err != nil {
		return nil, err
	}
	var out models.MIC
	if err := c.do(ctx, http.MethodPost, "/mic", m, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CrearDesdeCRT creates a manifest from a CRT, overlaying the given
// payload on the derived draft. The payload is forwarded as-is; any
// server-side rejection is surfaced verbatim.
func (c *Client) CrearDesdeCRT(ctx context.Context, crtID int64, m *models.MIC) (*models.DerivacionMIC, error) {
	var out models.DerivacionMIC
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/crt/%d/mic", crtID), m, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EditarCampos submits direct field edits. The edit policy is checked
// first: a state that forbids editing rejects before any network call.
func (c *Client) EditarCampos(ctx context.Context, doc *models.MIC) (*models.MIC, error) {
	if !models.PuedeEditarDirectamente(doc.Estado) {
		return nil, fmt.Errorf("estado %s: %w", doc.Estado, ErrEdicionBloqueada)
	}
	if err := c.enVuelo.adquirir(doc.ID); err != nil {
		return nil, err
	}
	defer c.enVuelo.liberar(doc.ID)

	cuerpo := *doc
	cuerpo.UsuarioActualizacion = c.Usuario

	var out models.MIC
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/mic/%d", doc.ID), &cuerpo, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// IntentarTransicion moves a document to another lifecycle state.
//
// The local table is only a precheck: an illegal pair fails immediately
// with TransicionInvalidaError and never touches the network. When the
// destination requires confirmation and Confirm declines, the attempt
// aborts silently with (nil, nil). Otherwise the update is issued with
// the audit note and actor, and the server's verdict is final: a
// conflict maps to RechazadaPorServidorError carrying the server's
// allowed set.
func (c *Client) IntentarTransicion(ctx context.Context, doc *models.MIC, a models.Estado) (*models.MIC, error) {
	de := doc.Estado
	if !models.PuedeTransicionar(de, a) {
		return nil, &TransicionInvalidaError{De: de, A: a, Permitidas: models.TransicionesPermitidas(de)}
	}
	if models.RequiereConfirmacion(a) && c.Confirm != nil && !c.Confirm(de, a) {
		return nil, nil
	}

	if err := c.enVuelo.adquirir(doc.ID); err != nil {
		return nil, err
	}
	defer c.enVuelo.liberar(doc.ID)

	cuerpo := map[string]string{
		"estado":                string(a),
		"usuario_actualizacion": c.Usuario,
		"cambio_estado_motivo":  models.MotivoCambio(de, a),
	}

	var out models.MIC
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/mic/%d", doc.ID), cuerpo, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TransicionRapida applies the recommended next state, when one exists.
func (c *Client) TransicionRapida(ctx context.Context, doc *models.MIC) (*models.MIC, error) {
	siguiente, ok := models.AccionRapida(doc.Estado)
	if !ok {
		return nil, &TransicionInvalidaError{De: doc.Estado, A: "", Permitidas: nil}
	}
	return c.IntentarTransicion(ctx, doc, siguiente)
}

// Duplicar asks the server for a copy with a fresh identifier, reset to
// the initial state.
func (c *Client) Duplicar(ctx context.Context, id int64) (*models.MIC, error) {
	if err := c.enVuelo.adquirir(id); err != nil {
		return nil, err
	}
	defer c.enVuelo.liberar(id)

	var out models.MIC
	path := fmt.Sprintf("/mic/%d/duplicate", id)
	if c.Usuario != "" {
		path += "?usuario=" + url.QueryEscape(c.Usuario)
	}
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Anular voids the document. Terminal documents are refused by the
// server.
func (c *Client) Anular(ctx context.Context, id int64) (*models.MIC, error) {
	if err := c.enVuelo.adquirir(id); err != nil {
		return nil, err
	}
	defer c.enVuelo.liberar(id)

	var out models.MIC
	path := fmt.Sprintf("/mic/%d", id)
	if c.Usuario != "" {
		path += "?usuario=" + url.QueryEscape(c.Usuario)
	}
	if err := c.do(ctx, http.MethodDelete, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DescargarPDF fetches the rendered form as a binary payload.
func (c *Client) DescargarPDF(ctx context.Context, id int64) ([]byte, error) {
	path := fmt.Sprintf("/mic/%d/pdf", id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &TransporteError{Op: "GET " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoEncontrado
	}
	if resp.StatusCode >= 400 {
		return nil, &TransporteError{Op: "GET " + path, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}
	return io.ReadAll(resp.Body)
}

// Estadisticas fetches the aggregate counters. A deployment without the
// endpoint degrades gracefully: (nil, nil), never an error.
func (c *Client) Estadisticas(ctx context.Context) (*models.MICStats, error) {
	var out models.MICStats
	err := c.do(ctx, http.MethodGet, "/mic/stats", nil, &out)
	if err != nil {
		if errors.Is(err, ErrNoEncontrado) {
			return nil, nil
		}
		var te *TransporteError
		if errors.As(err, &te) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}
