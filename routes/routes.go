package routes

import (
	"net/http"
	"strings"

	"cargosur/handlers"
)

// CORS middleware
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*") // Replace * with your domain in production
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight request
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// splitIDRoute separates "/crt/123/datos-mic" style paths into the id
// segment and the action suffix.
func splitIDRoute(path, prefix string) (idStr, action string) {
	rest := strings.TrimPrefix(path, prefix)
	if i := strings.Index(rest, "/"); i >= 0 {
		return rest[:i], rest[i+1:]
	}
	return rest, ""
}

func SetupRoutes(
	userHandler *handlers.UserHandler,
	crtHandler *handlers.CRTHandler,
	micHandler *handlers.MICHandler,
	pdfHandler *handlers.PDFHandler,
) {
	// Auth routes
	http.Handle("/auth/signup", withCORS(http.HandlerFunc(handlers.RecoverWrapper(userHandler.Signup))))
	http.Handle("/auth/login", withCORS(http.HandlerFunc(handlers.RecoverWrapper(userHandler.Login))))

	// Party registry
	http.Handle("/partes", withCORS(http.HandlerFunc(handlers.RecoverWrapper(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			crtHandler.CreateParte(w, r)
		case http.MethodGet:
			crtHandler.ListPartes(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))))

	// CRT collection routes
	http.Handle("/crt", withCORS(http.HandlerFunc(handlers.RecoverWrapper(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			crtHandler.CreateCRT(w, r)
		case http.MethodGet:
			crtHandler.GetAllCRT(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))))

	http.Handle("/crt/next-number", withCORS(http.HandlerFunc(handlers.RecoverWrapper(crtHandler.NextNumber))))

	// CRT document routes: /crt/{id}, /crt/{id}/datos-mic, /crt/{id}/mic
	http.Handle("/crt/", withCORS(http.HandlerFunc(handlers.RecoverWrapper(func(w http.ResponseWriter, r *http.Request) {
		idStr, action := splitIDRoute(r.URL.Path, "/crt/")
		id, err := handlers.ParseID(idStr)
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		switch action {
		case "":
			switch r.Method {
			case http.MethodGet:
				crtHandler.GetCRTByID(w, r, id)
			case http.MethodPut:
				crtHandler.UpdateCRT(w, r, id)
			default:
				w.WriteHeader(http.StatusMethodNotAllowed)
			}
		case "datos-mic":
			crtHandler.DatosMIC(w, r, id)
		case "mic":
			if r.Method != http.MethodPost {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			micHandler.CreateMICFromCRT(w, r, id)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))))

	// MIC collection routes
	http.Handle("/mic", withCORS(http.HandlerFunc(handlers.RecoverWrapper(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			micHandler.CreateMIC(w, r)
		case http.MethodGet:
			micHandler.ListMICs(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))))

	http.Handle("/mic/stats", withCORS(http.HandlerFunc(handlers.RecoverWrapper(micHandler.StatsMIC))))

	// MIC document routes: /mic/{id}, /mic/{id}/duplicate, /mic/{id}/pdf
	http.Handle("/mic/", withCORS(http.HandlerFunc(handlers.RecoverWrapper(func(w http.ResponseWriter, r *http.Request) {
		idStr, action := splitIDRoute(r.URL.Path, "/mic/")
		id, err := handlers.ParseID(idStr)
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		switch action {
		case "":
			switch r.Method {
			case http.MethodGet:
				micHandler.GetMICByID(w, r, id)
			case http.MethodPut:
				micHandler.UpdateMIC(w, r, id)
			case http.MethodDelete:
				micHandler.AnularMIC(w, r, id)
			default:
				w.WriteHeader(http.StatusMethodNotAllowed)
			}
		case "duplicate":
			if r.Method != http.MethodPost {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			micHandler.DuplicateMIC(w, r, id)
		case "pdf":
			pdfHandler.MICPDF(w, r, id)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))))
}
