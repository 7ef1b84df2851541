package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cargosur/models"

	"github.com/lib/pq"
)

type PostgresCRTRepo struct {
	DB *sql.DB
}

func NewPostgresCRTRepo(db *sql.DB) *PostgresCRTRepo {
	return &PostgresCRTRepo{DB: db}
}

const crtColumns = `
	c.id, c.numero_crt, c.fecha_emision, c.estado,
	c.remitente_id, c.destinatario_id, c.consignatario_id, c.notificar_a_id, c.transportadora_id,
	c.ciudad_emision, c.pais_emision, c.lugar_entrega,
	c.detalles_mercaderia, c.peso_bruto, c.peso_neto, c.volumen,
	c.incoterm, c.valor_incoterm, c.moneda, c.declaracion_mercaderia,
	c.valor_flete_externo, c.valor_reembolso,
	c.factura_exportacion, c.nro_despacho, c.transporte_sucesivos,
	c.observaciones, c.formalidades_aduana,
	c.firma_remitente, c.firma_transportador, c.firma_destinatario,
	c.created_at, c.updated_at`

func scanCRT(row interface{ Scan(...interface{}) error }) (*models.CRT, error) {
	c := &models.CRT{}
	err := row.Scan(
		&c.ID, &c.NumeroCRT, &c.FechaEmision, &c.Estado,
		&c.RemitenteID, &c.DestinatarioID, &c.ConsignatarioID, &c.NotificarAID, &c.TransportadoraID,
		&c.CiudadEmision, &c.PaisEmision, &c.LugarEntrega,
		&c.DetallesMercaderia, &c.PesoBruto, &c.PesoNeto, &c.Volumen,
		&c.Incoterm, &c.ValorIncoterm, &c.Moneda, &c.DeclaracionMercaderia,
		&c.ValorFleteExterno, &c.ValorReembolso,
		&c.FacturaExportacion, &c.NroDespacho, &c.TransporteSucesivos,
		&c.Observaciones, &c.FormalidadesAduana,
		&c.FirmaRemitente, &c.FirmaTransportador, &c.FirmaDestinatario,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CreateCRT inserts the consignment note together with its expense
// ledger in one transaction
func (r *PostgresCRTRepo) CreateCRT(crt *models.CRT) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if crt.CreatedAt.IsZero() {
		crt.CreatedAt = time.Now().UTC()
	}

	err = tx.QueryRow(`
		INSERT INTO crt (
			numero_crt, fecha_emision, estado,
			remitente_id, destinatario_id, consignatario_id, notificar_a_id, transportadora_id,
			ciudad_emision, pais_emision, lugar_entrega,
			detalles_mercaderia, peso_bruto, peso_neto, volumen,
			incoterm, valor_incoterm, moneda, declaracion_mercaderia,
			valor_flete_externo, valor_reembolso,
			factura_exportacion, nro_despacho, transporte_sucesivos,
			observaciones, formalidades_aduana,
			firma_remitente, firma_transportador, firma_destinatario, created_at
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,
			$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30
		) RETURNING id`,
		crt.NumeroCRT, crt.FechaEmision, crt.Estado,
		crt.RemitenteID, crt.DestinatarioID, crt.ConsignatarioID, crt.NotificarAID, crt.TransportadoraID,
		crt.CiudadEmision, crt.PaisEmision, crt.LugarEntrega,
		crt.DetallesMercaderia, crt.PesoBruto, crt.PesoNeto, crt.Volumen,
		crt.Incoterm, crt.ValorIncoterm, crt.Moneda, crt.DeclaracionMercaderia,
		crt.ValorFleteExterno, crt.ValorReembolso,
		crt.FacturaExportacion, crt.NroDespacho, crt.TransporteSucesivos,
		crt.Observaciones, crt.FormalidadesAduana,
		crt.FirmaRemitente, crt.FirmaTransportador, crt.FirmaDestinatario, crt.CreatedAt,
	).Scan(&crt.ID)
	if err != nil {
		return fmt.Errorf("insert crt: %w", err)
	}

	if err := insertGastos(tx, crt.ID, crt.Gastos); err != nil {
		return err
	}

	return tx.Commit()
}

func insertGastos(tx *sql.Tx, crtID int64, gastos models.Gastos) error {
	for i, g := range gastos {
		err := tx.QueryRow(`
			INSERT INTO crt_gastos (crt_id, orden, tramo, valor_remitente, valor_destinatario, moneda)
			VALUES ($1,$2,$3,$4,$5,$6)
			RETURNING id`,
			crtID, i, g.Tramo, g.ValorRemitente, g.ValorDestinatario, g.Moneda,
		).Scan(&gastos[i].ID)
		if err != nil {
			return fmt.Errorf("insert gasto: %w", err)
		}
	}
	return nil
}

// GetCRT fetches consignment notes by filter map; single=true fetches
// one record. Supported keys: id, numero_crt, estado, transportadora_id
// (equality) and q (numero_crt substring).
func (r *PostgresCRTRepo) GetCRT(filters map[string]interface{}, single bool) ([]*models.CRT, error) {
	query := "SELECT " + crtColumns + " FROM crt c"
	var conditions []string
	var args []interface{}
	argPos := 1

	for k, v := range filters {
		switch k {
		case "q":
			conditions = append(conditions, fmt.Sprintf("c.numero_crt ILIKE $%d", argPos))
			args = append(args, fmt.Sprintf("%%%v%%", v))
		case "id", "numero_crt", "estado", "transportadora_id":
			conditions = append(conditions, fmt.Sprintf("c.%s = $%d", k, argPos))
			args = append(args, v)
		default:
			continue
		}
		argPos++
	}

	if len(conditions) > 0 {
		query += " WHERE " + joinConditions(conditions)
	}
	query += " ORDER BY c.id DESC"
	if single {
		query += " LIMIT 1"
	}

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.CRT
	for rows.Next() {
		c, err := scanCRT(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadGastos(out); err != nil {
		return nil, err
	}
	if err := r.loadPartes(out); err != nil {
		return nil, err
	}
	return out, nil
}

func joinConditions(conds []string) string {
	out := conds[0]
	for _, c := range conds[1:] {
		out += " AND " + c
	}
	return out
}

// loadGastos batch-loads the expense ledgers for a set of CRTs in one
// query to avoid per-row lookups
func (r *PostgresCRTRepo) loadGastos(crts []*models.CRT) error {
	if len(crts) == 0 {
		return nil
	}
	ids := make([]int64, len(crts))
	byID := make(map[int64]*models.CRT, len(crts))
	for i, c := range crts {
		ids[i] = c.ID
		byID[c.ID] = c
		c.Gastos = models.Gastos{}
	}

	rows, err := r.DB.Query(`
		SELECT id, crt_id, tramo, valor_remitente, valor_destinatario, moneda
		FROM crt_gastos
		WHERE crt_id = ANY($1)
		ORDER BY crt_id, orden`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var g models.Gasto
		var crtID int64
		if err := rows.Scan(&g.ID, &crtID, &g.Tramo, &g.ValorRemitente, &g.ValorDestinatario, &g.Moneda); err != nil {
			return err
		}
		if c, ok := byID[crtID]; ok {
			c.Gastos = append(c.Gastos, g)
		}
	}
	return rows.Err()
}

// loadPartes attaches the denormalized party records referenced by the
// fetched CRTs
func (r *PostgresCRTRepo) loadPartes(crts []*models.CRT) error {
	idSet := map[int64]bool{}
	collect := func(id *int64) {
		if id != nil && *id != 0 {
			idSet[*id] = true
		}
	}
	for _, c := range crts {
		collect(c.RemitenteID)
		collect(c.DestinatarioID)
		collect(c.ConsignatarioID)
		collect(c.NotificarAID)
		collect(c.TransportadoraID)
	}
	if len(idSet) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	rows, err := r.DB.Query(`
		SELECT id, nombre, direccion, ciudad, pais, tipo_documento, numero_documento, telefono, codigo, created_at
		FROM partes WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	partes := map[int64]*models.Parte{}
	for rows.Next() {
		p := &models.Parte{}
		if err := rows.Scan(&p.ID, &p.Nombre, &p.Direccion, &p.Ciudad, &p.Pais,
			&p.TipoDocumento, &p.NumeroDocumento, &p.Telefono, &p.Codigo, &p.CreatedAt); err != nil {
			return err
		}
		partes[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return err
	}

	lookup := func(id *int64) *models.Parte {
		if id == nil {
			return nil
		}
		return partes[*id]
	}
	for _, c := range crts {
		c.Remitente = lookup(c.RemitenteID)
		c.Destinatario = lookup(c.DestinatarioID)
		c.Consignatario = lookup(c.ConsignatarioID)
		c.NotificarA = lookup(c.NotificarAID)
		c.Transportadora = lookup(c.TransportadoraID)
	}
	return nil
}

// UpdateCRT rewrites the note and replaces its expense ledger
func (r *PostgresCRTRepo) UpdateCRT(crt *models.CRT) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.Exec(`
		UPDATE crt SET
			numero_crt=$1, fecha_emision=$2, estado=$3,
			remitente_id=$4, destinatario_id=$5, consignatario_id=$6, notificar_a_id=$7, transportadora_id=$8,
			ciudad_emision=$9, pais_emision=$10, lugar_entrega=$11,
			detalles_mercaderia=$12, peso_bruto=$13, peso_neto=$14, volumen=$15,
			incoterm=$16, valor_incoterm=$17, moneda=$18, declaracion_mercaderia=$19,
			valor_flete_externo=$20, valor_reembolso=$21,
			factura_exportacion=$22, nro_despacho=$23, transporte_sucesivos=$24,
			observaciones=$25, formalidades_aduana=$26,
			firma_remitente=$27, firma_transportador=$28, firma_destinatario=$29,
			updated_at=$30
		WHERE id=$31`,
		crt.NumeroCRT, crt.FechaEmision, crt.Estado,
		crt.RemitenteID, crt.DestinatarioID, crt.ConsignatarioID, crt.NotificarAID, crt.TransportadoraID,
		crt.CiudadEmision, crt.PaisEmision, crt.LugarEntrega,
		crt.DetallesMercaderia, crt.PesoBruto, crt.PesoNeto, crt.Volumen,
		crt.Incoterm, crt.ValorIncoterm, crt.Moneda, crt.DeclaracionMercaderia,
		crt.ValorFleteExterno, crt.ValorReembolso,
		crt.FacturaExportacion, crt.NroDespacho, crt.TransporteSucesivos,
		crt.Observaciones, crt.FormalidadesAduana,
		crt.FirmaRemitente, crt.FirmaTransportador, crt.FirmaDestinatario,
		now, crt.ID,
	)
	if err != nil {
		return fmt.Errorf("update crt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	crt.UpdatedAt = &now

	if _, err := tx.Exec(`DELETE FROM crt_gastos WHERE crt_id=$1`, crt.ID); err != nil {
		return err
	}
	if err := insertGastos(tx, crt.ID, crt.Gastos); err != nil {
		return err
	}

	return tx.Commit()
}

// NextNumber builds the next sequential document number for a carrier,
// prefixed with the carrier's registry code
func (r *PostgresCRTRepo) NextNumber(transportadoraID int64) (string, error) {
	parte, err := r.GetParte(transportadoraID)
	if err != nil {
		return "", err
	}
	if parte == nil {
		return "", errors.New("transportadora not found")
	}
	codigo := parte.Codigo
	if codigo == "" {
		codigo = "CRT"
	}

	var n int
	err = r.DB.QueryRow(`SELECT COUNT(*) FROM crt WHERE transportadora_id=$1`, transportadoraID).Scan(&n)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%05d", codigo, n+1), nil
}

func (r *PostgresCRTRepo) CreateParte(p *models.Parte) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	return r.DB.QueryRow(`
		INSERT INTO partes (nombre, direccion, ciudad, pais, tipo_documento, numero_documento, telefono, codigo, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id`,
		p.Nombre, p.Direccion, p.Ciudad, p.Pais, p.TipoDocumento, p.NumeroDocumento, p.Telefono, p.Codigo, p.CreatedAt,
	).Scan(&p.ID)
}

func (r *PostgresCRTRepo) GetParte(id int64) (*models.Parte, error) {
	p := &models.Parte{}
	err := r.DB.QueryRow(`
		SELECT id, nombre, direccion, ciudad, pais, tipo_documento, numero_documento, telefono, codigo, created_at
		FROM partes WHERE id=$1`, id,
	).Scan(&p.ID, &p.Nombre, &p.Direccion, &p.Ciudad, &p.Pais,
		&p.TipoDocumento, &p.NumeroDocumento, &p.Telefono, &p.Codigo, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *PostgresCRTRepo) ListPartes() ([]*models.Parte, error) {
	rows, err := r.DB.Query(`
		SELECT id, nombre, direccion, ciudad, pais, tipo_documento, numero_documento, telefono, codigo, created_at
		FROM partes ORDER BY nombre`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Parte
	for rows.Next() {
		p := &models.Parte{}
		if err := rows.Scan(&p.ID, &p.Nombre, &p.Direccion, &p.Ciudad, &p.Pais,
			&p.TipoDocumento, &p.NumeroDocumento, &p.Telefono, &p.Codigo, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
