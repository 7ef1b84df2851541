package repository

import (
	"cargosur/models"
)

type MICRepository interface {
	CreateMIC(m *models.MIC) error
	GetMICByID(id int64) (*models.MIC, error)
	ListMICs(f models.FiltrosMIC, page, perPage int) ([]*models.MIC, int, error)
	UpdateMIC(m *models.MIC) error
	Stats() (*models.MICStats, error)
}
