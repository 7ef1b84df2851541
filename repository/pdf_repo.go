package repository

import (
	"cargosur/models"
)

// PDFRepository provides methods to fetch data for PDF generation
type PDFRepository struct {
	MICRepo MICRepository
	CRTRepo CRTRepository
}

// NewPDFRepository initializes a PDF repository
func NewPDFRepository(micRepo MICRepository, crtRepo CRTRepository) *PDFRepository {
	return &PDFRepository{
		MICRepo: micRepo,
		CRTRepo: crtRepo,
	}
}

// GetMICForPDF fetches a manifest plus its originating CRT when linked
func (r *PDFRepository) GetMICForPDF(id int64) (*models.MIC, *models.CRT, error) {
	mic, err := r.MICRepo.GetMICByID(id)
	if err != nil || mic == nil {
		return nil, nil, err
	}

	var crt *models.CRT
	if mic.CRTID != nil && *mic.CRTID != 0 {
		crts, err := r.CRTRepo.GetCRT(map[string]interface{}{"id": *mic.CRTID}, true)
		if err == nil && len(crts) > 0 {
			crt = crts[0]
		}
	}
	return mic, crt, nil
}
