package models

import (
	"strings"
	"time"
)

// Parte is a registry entry for any party referenced by a CRT:
// remitente, destinatario, consignatario, notificado or transportadora.
type Parte struct {
	ID              int64     `json:"id" bson:"_id,omitempty" db:"id"`
	Nombre          string    `json:"nombre" bson:"nombre" db:"nombre"`
	Direccion       string    `json:"direccion" bson:"direccion" db:"direccion"`
	Ciudad          string    `json:"ciudad" bson:"ciudad" db:"ciudad"`
	Pais            string    `json:"pais" bson:"pais" db:"pais"`
	TipoDocumento   string    `json:"tipo_documento" bson:"tipo_documento" db:"tipo_documento"`
	NumeroDocumento string    `json:"numero_documento" bson:"numero_documento" db:"numero_documento"`
	Telefono        string    `json:"telefono" bson:"telefono" db:"telefono"`
	Codigo          string    `json:"codigo,omitempty" bson:"codigo,omitempty" db:"codigo"` // carrier prefix for CRT numbering
	CreatedAt       time.Time `json:"created_at" bson:"created_at" db:"created_at"`
}

// BloqueCompleto renders the multi-line name/address block used on the
// printed forms: name, address, "CIUDAD - PAIS", "TIPO:NUMERO", "Tel: X".
// Blank parts are skipped.
func (p *Parte) BloqueCompleto() string {
	if p == nil {
		return ""
	}
	var lineas []string
	if s := strings.TrimSpace(p.Nombre); s != "" {
		lineas = append(lineas, s)
	}
	if s := strings.TrimSpace(p.Direccion); s != "" {
		lineas = append(lineas, s)
	}
	ciudad := strings.TrimSpace(p.Ciudad)
	pais := strings.TrimSpace(p.Pais)
	switch {
	case ciudad != "" && pais != "":
		lineas = append(lineas, strings.ToUpper(ciudad)+" - "+strings.ToUpper(pais))
	case ciudad != "":
		lineas = append(lineas, strings.ToUpper(ciudad))
	case pais != "":
		lineas = append(lineas, strings.ToUpper(pais))
	}
	tipo := strings.TrimSpace(p.TipoDocumento)
	numero := strings.TrimSpace(p.NumeroDocumento)
	switch {
	case tipo != "" && numero != "":
		lineas = append(lineas, tipo+":"+numero)
	case numero != "":
		lineas = append(lineas, "DOC:"+numero)
	}
	if s := strings.TrimSpace(p.Telefono); s != "" {
		lineas = append(lineas, "Tel: "+s)
	}
	return strings.Join(lineas, "\n")
}

// PartesCRT bundles the resolved party records of one CRT for derivation
// and printing. Consignatario and NotificarA may be nil.
type PartesCRT struct {
	Remitente      *Parte
	Destinatario   *Parte
	Consignatario  *Parte
	NotificarA     *Parte
	Transportadora *Parte
}
