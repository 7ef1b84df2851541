package main

import (
	"fmt"
	"net/http"

	"cargosur/config"
	"cargosur/db"
	"cargosur/db/mongo"
	"cargosur/db/postgres"
	"cargosur/handlers"
	"cargosur/repository"
	"cargosur/routes"
)

func main() {
	// Load config from .env or config file
	cfg := config.LoadConfig()

	var crtRepo repository.CRTRepository
	var micRepo repository.MICRepository
	var userRepo repository.UserRepository

	switch cfg.DBType {
	case "postgres":
		// Run migrations (Postgres only)
		db.RunMigrations()

		pg := postgres.NewPostgresDB(cfg.PostgresURL)
		if err := pg.Connect(); err != nil {
			panic(err)
		}
		defer pg.Disconnect()

		crtRepo = repository.NewPostgresCRTRepo(pg.Conn)
		micRepo = repository.NewPostgresMICRepo(pg.Conn)
		userRepo = repository.NewPostgresUserRepo(pg.Conn)

	case "mongo":
		mg := mongo.NewMongoDB(cfg.MongoURL)
		if err := mg.Connect(); err != nil {
			panic(err)
		}
		defer mg.Disconnect()

		crtRepo = repository.NewMongoCRTRepo(mg.Client)
		micRepo = repository.NewMongoMICRepo(mg.Client)
		userRepo = repository.NewMongoUserRepo(mg.Client)

	default:
		panic("DB_TYPE not supported")
	}

	// Handlers
	userHandler := &handlers.UserHandler{Repo: userRepo}
	crtHandler := &handlers.CRTHandler{Repo: crtRepo}
	micHandler := &handlers.MICHandler{Repo: micRepo, CRTRepo: crtRepo}

	// PDF handler with combined repository
	pdfRepo := &repository.PDFRepository{
		MICRepo: micRepo,
		CRTRepo: crtRepo,
	}
	pdfHandler := &handlers.PDFHandler{Repo: pdfRepo, SavePath: cfg.PDFSavePath}

	// Setup routes including PDF
	routes.SetupRoutes(userHandler, crtHandler, micHandler, pdfHandler)

	port := cfg.Port
	fmt.Printf("Server running on port %s\n", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		panic(err)
	}
}
