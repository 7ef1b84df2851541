package repository

import (
	"cargosur/models"
)

type CRTRepository interface {
	CreateCRT(crt *models.CRT) error
	GetCRT(filters map[string]interface{}, single bool) ([]*models.CRT, error)
	UpdateCRT(crt *models.CRT) error
	NextNumber(transportadoraID int64) (string, error)

	CreateParte(p *models.Parte) error
	GetParte(id int64) (*models.Parte, error)
	ListPartes() ([]*models.Parte, error)
}
