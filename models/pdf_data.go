package models

type MICPDFData struct {
	MIC        *MIC   // manifest fields, campo_9 already mirrored from campo_1
	CRT        *CRT   // originating CRT when linked, nil otherwise
	Fecha      string // campo_6 in DD-MM-YYYY display form
	EstadoDesc string
}
