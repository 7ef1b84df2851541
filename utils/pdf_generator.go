package utils

import (
	"bytes"
	"context"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"cargosur/models"
	"cargosur/repository"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// GenerateMICPDF renders the MIC/DTA form of one manifest as an A4 PDF.
func GenerateMICPDF(repo *repository.PDFRepository, micID int64) ([]byte, error) {
	mic, crt, err := repo.GetMICForPDF(micID)
	if err != nil {
		return nil, err
	}
	if mic == nil {
		return nil, nil
	}

	// the printed form repeats the carrier block in box 9
	if mic.Campo9DatosTransporte == "" {
		mic.Campo9DatosTransporte = mic.Campo1Transporte
	}

	tmpl, err := template.ParseFiles("templates/mic_template.html")
	if err != nil {
		return nil, err
	}

	data := models.MICPDFData{
		MIC:        mic,
		CRT:        crt,
		Fecha:      models.FechaADisplay(mic.Campo6Fecha),
		EstadoDesc: models.DescripcionEstado(mic.Estado),
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return nil, err
	}

	finalHTML := `
		<!DOCTYPE html>
		<html>
		<head>
		<meta charset="UTF-8">
		<style>
		@page {
			size: A4;
			margin: 18px;
		}
		body {
			font-family: Arial, Helvetica, sans-serif;
			font-size: 11px;
			margin: 0;
			padding: 0;
		}
		.mic-form {
			page-break-inside: avoid;
			border: none;
		}
		</style>
		</head>
		<body><div class='mic-form'>` + body.String() + `</div></body></html>`

	tmpDir := os.TempDir()
	tmpHTML := filepath.Join(tmpDir, "mic_"+time.Now().Format("20060102150405")+".html")
	if err := os.WriteFile(tmpHTML, []byte(finalHTML), 0644); err != nil {
		return nil, err
	}
	defer os.Remove(tmpHTML)

	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuf []byte
	fileURL := "file://" + tmpHTML

	err = chromedp.Run(ctx,
		chromedp.Navigate(fileURL),
		chromedp.Sleep(1*time.Second),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).  // A4 width
				WithPaperHeight(11.7). // A4 height
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}

	return pdfBuf, nil
}
