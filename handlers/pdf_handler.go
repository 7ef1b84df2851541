package handlers

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"cargosur/repository"
	"cargosur/utils"
)

type PDFHandler struct {
	Repo     *repository.PDFRepository
	SavePath string
}

// MICPDF renders the MIC/DTA form of one manifest and streams the PDF
// back. A copy is kept on disk and, when the archive bucket is
// configured, uploaded to R2; neither blocks the response.
func (h *PDFHandler) MICPDF(w http.ResponseWriter, r *http.Request, micID int64) {
	pdfBytes, err := utils.GenerateMICPDF(h.Repo, micID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to generate PDF: "+err.Error())
		return
	}
	if len(pdfBytes) == 0 {
		writeError(w, http.StatusNotFound, CodeNotFound, "MIC not found")
		return
	}

	filename := fmt.Sprintf("mic_%d_%d.pdf", micID, time.Now().Unix())

	saveDir := h.SavePath
	if saveDir == "" {
		saveDir = "./pdfs"
	}
	if err := os.MkdirAll(saveDir, os.ModePerm); err == nil {
		if err := os.WriteFile(filepath.Join(saveDir, filename), pdfBytes, 0644); err != nil {
			log.Printf("failed to save PDF copy for mic %d: %v", micID, err)
		}
	}

	if utils.R2Configured() {
		if fileURL, err := utils.UploadToR2(pdfBytes, filename); err != nil {
			log.Printf("failed to archive PDF for mic %d: %v", micID, err)
		} else {
			w.Header().Set("X-Archive-URL", fileURL)
		}
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdfBytes)
}
