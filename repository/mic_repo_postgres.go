package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"cargosur/models"
)

type PostgresMICRepo struct {
	DB *sql.DB
}

func NewPostgresMICRepo(db *sql.DB) *PostgresMICRepo {
	return &PostgresMICRepo{DB: db}
}

// micCampoColumns lists the form-field columns in table order. Kept in
// lockstep with campoPtrs below.
var micCampoColumns = []string{
	"campo_1_transporte", "campo_2_numero", "campo_3_transporte",
	"campo_4_estado", "campo_5_hoja", "campo_6_fecha", "campo_7_pto_seguro",
	"campo_8_destino", "campo_9_datos_transporte", "campo_10_numero",
	"campo_11_placa", "campo_12_modelo_chasis", "campo_13_siempre_45",
	"campo_14_anio", "campo_15_placa_semi", "campo_16_asteriscos_1",
	"campo_17_asteriscos_2", "campo_18_asteriscos_3", "campo_19_asteriscos_4",
	"campo_20_asteriscos_5", "campo_21_asteriscos_6", "campo_22_asteriscos_7",
	"campo_23_numero_campo2_crt", "campo_24_aduana", "campo_25_moneda",
	"campo_26_pais", "campo_27_valor_campo16", "campo_28_total",
	"campo_29_seguro", "campo_30_tipo_bultos", "campo_31_cantidad",
	"campo_32_peso_bruto", "campo_33_datos_campo1_crt", "campo_34_datos_campo4_crt",
	"campo_35_datos_campo6_crt", "campo_36_factura_despacho", "campo_37_valor_manual",
	"campo_38_datos_campo11_crt", "campo_40_tramo",
}

func campoPtrs(m *models.MIC) []*string {
	return []*string{
		&m.Campo1Transporte, &m.Campo2Numero, &m.Campo3Transporte,
		&m.Campo4Estado, &m.Campo5Hoja, &m.Campo6Fecha, &m.Campo7PtoSeguro,
		&m.Campo8Destino, &m.Campo9DatosTransporte, &m.Campo10Numero,
		&m.Campo11Placa, &m.Campo12ModeloChasis, &m.Campo13Siempre45,
		&m.Campo14Anio, &m.Campo15PlacaSemi, &m.Campo16Asteriscos,
		&m.Campo17Asteriscos, &m.Campo18Asteriscos, &m.Campo19Asteriscos,
		&m.Campo20Asteriscos, &m.Campo21Asteriscos, &m.Campo22Asteriscos,
		&m.Campo23NumeroCRT, &m.Campo24Aduana, &m.Campo25Moneda,
		&m.Campo26Pais, &m.Campo27Valor, &m.Campo28Total,
		&m.Campo29Seguro, &m.Campo30TipoBultos, &m.Campo31Cantidad,
		&m.Campo32PesoBruto, &m.Campo33Remitente, &m.Campo34Destinatario,
		&m.Campo35Consignatario, &m.Campo36FacturaDespacho, &m.Campo37ValorManual,
		&m.Campo38Detalles, &m.Campo40Tramo,
	}
}

func micSelectColumns() string {
	cols := []string{"m.id", "m.estado", "m.crt_id"}
	for _, c := range micCampoColumns {
		cols = append(cols, "m."+c)
	}
	cols = append(cols,
		"m.creado_por", "m.usuario_actualizacion", "m.cambio_estado_motivo",
		"m.created_at", "m.updated_at",
		"c.numero_crt", "c.fecha_emision", "c.estado",
	)
	return strings.Join(cols, ", ")
}

const micFromJoin = " FROM mic m LEFT JOIN crt c ON c.id = m.crt_id"

func scanMIC(row interface{ Scan(...interface{}) error }) (*models.MIC, error) {
	m := &models.MIC{}
	dest := []interface{}{&m.ID, &m.Estado, &m.CRTID}
	for _, p := range campoPtrs(m) {
		dest = append(dest, p)
	}
	var crtNumero, crtFecha, crtEstado sql.NullString
	dest = append(dest,
		&m.CreadoPor, &m.UsuarioActualizacion, &m.CambioEstadoMotivo,
		&m.CreatedAt, &m.UpdatedAt,
		&crtNumero, &crtFecha, &crtEstado,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	m.CrtNumero = crtNumero.String
	m.CrtFechaEmision = crtFecha.String
	m.CrtEstado = crtEstado.String
	return m, nil
}

// CreateMIC inserts a manifest and assigns its identifier
func (r *PostgresMICRepo) CreateMIC(m *models.MIC) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if m.Estado == "" {
		m.Estado = models.EstadoProvisorio
	}

	cols := append([]string{"estado", "crt_id"}, micCampoColumns...)
	cols = append(cols, "creado_por", "usuario_actualizacion", "cambio_estado_motivo", "created_at")

	args := []interface{}{m.Estado, m.CRTID}
	for _, p := range campoPtrs(m) {
		args = append(args, *p)
	}
	args = append(args, m.CreadoPor, m.UsuarioActualizacion, m.CambioEstadoMotivo, m.CreatedAt)

	holders := make([]string, len(cols))
	for i := range cols {
		holders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := "INSERT INTO mic (" + strings.Join(cols, ", ") + ") VALUES (" +
		strings.Join(holders, ",") + ") RETURNING id"
	if err := r.DB.QueryRow(query, args...).Scan(&m.ID); err != nil {
		return fmt.Errorf("insert mic: %w", err)
	}
	return nil
}

// GetMICByID fetches one manifest with its CRT join columns; nil when
// the id does not resolve
func (r *PostgresMICRepo) GetMICByID(id int64) (*models.MIC, error) {
	row := r.DB.QueryRow("SELECT "+micSelectColumns()+micFromJoin+" WHERE m.id=$1", id)
	m, err := scanMIC(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func buildMICConditions(f models.FiltrosMIC) ([]string, []interface{}) {
	var conds []string
	var args []interface{}
	add := func(cond string, arg interface{}) {
		conds = append(conds, fmt.Sprintf(cond, len(args)+1))
		args = append(args, arg)
	}

	if f.Estado != "" {
		add("m.estado = $%d", string(f.Estado))
	}
	if f.NumeroCarta != "" {
		add("m.campo_23_numero_campo2_crt ILIKE $%d", "%"+f.NumeroCarta+"%")
	}
	if f.Transportadora != "" {
		add("m.campo_1_transporte ILIKE $%d", "%"+f.Transportadora+"%")
	}
	if f.Placa != "" {
		add("m.campo_11_placa ILIKE $%d", "%"+f.Placa+"%")
	}
	if f.Destino != "" {
		add("m.campo_8_destino ILIKE $%d", "%"+f.Destino+"%")
	}
	if f.FechaDesde != "" {
		add("m.campo_6_fecha >= $%d", f.FechaDesde)
	}
	if f.FechaHasta != "" {
		add("m.campo_6_fecha <= $%d", f.FechaHasta)
	}
	if f.Busqueda != "" {
		q := "%" + f.Busqueda + "%"
		n := len(args) + 1
		conds = append(conds, fmt.Sprintf(
			"(m.campo_23_numero_campo2_crt ILIKE $%d OR m.campo_1_transporte ILIKE $%d OR m.campo_38_datos_campo11_crt ILIKE $%d OR c.numero_crt ILIKE $%d)",
			n, n+1, n+2, n+3))
		args = append(args, q, q, q, q)
	}
	return conds, args
}

// ListMICs returns one page of manifests plus the unpaged total
func (r *PostgresMICRepo) ListMICs(f models.FiltrosMIC, page, perPage int) ([]*models.MIC, int, error) {
	conds, args := buildMICConditions(f)
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.DB.QueryRow("SELECT COUNT(*)"+micFromJoin+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s%s%s ORDER BY m.id DESC LIMIT $%d OFFSET $%d",
		micSelectColumns(), micFromJoin, where, len(args)+1, len(args)+2)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*models.MIC
	for rows.Next() {
		m, err := scanMIC(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

// UpdateMIC rewrites every form field plus state and audit columns
func (r *PostgresMICRepo) UpdateMIC(m *models.MIC) error {
	now := time.Now().UTC()

	var sets []string
	args := []interface{}{m.Estado}
	sets = append(sets, "estado=$1")
	for _, col := range micCampoColumns {
		sets = append(sets, fmt.Sprintf("%s=$%d", col, len(args)+1))
		args = append(args, "") // placeholder, filled below
	}
	for i, p := range campoPtrs(m) {
		args[i+1] = *p
	}
	for _, extra := range []struct {
		col string
		val interface{}
	}{
		{"usuario_actualizacion", m.UsuarioActualizacion},
		{"cambio_estado_motivo", m.CambioEstadoMotivo},
		{"updated_at", now},
	} {
		sets = append(sets, fmt.Sprintf("%s=$%d", extra.col, len(args)+1))
		args = append(args, extra.val)
	}

	query := fmt.Sprintf("UPDATE mic SET %s WHERE id=$%d", strings.Join(sets, ", "), len(args)+1)
	args = append(args, m.ID)

	res, err := r.DB.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("update mic: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	m.UpdatedAt = &now
	return nil
}

// Stats aggregates document counts: total, created today, created this
// week and per lifecycle state
func (r *PostgresMICRepo) Stats() (*models.MICStats, error) {
	s := &models.MICStats{}

	if err := r.DB.QueryRow(`SELECT COUNT(*) FROM mic`).Scan(&s.TotalMICs); err != nil {
		return nil, err
	}
	if err := r.DB.QueryRow(`SELECT COUNT(*) FROM mic WHERE created_at::date = CURRENT_DATE`).Scan(&s.MICsHoy); err != nil {
		return nil, err
	}
	if err := r.DB.QueryRow(`SELECT COUNT(*) FROM mic WHERE created_at >= date_trunc('week', CURRENT_DATE::timestamp)`).Scan(&s.MICsSemana); err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(`SELECT estado, COUNT(*) FROM mic GROUP BY estado ORDER BY estado`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var c models.ConteoEstado
		if err := rows.Scan(&c.Estado, &c.Cantidad); err != nil {
			return nil, err
		}
		s.PorEstado = append(s.PorEstado, c)
	}
	return s, rows.Err()
}
