package client

import (
	"errors"
	"fmt"

	"cargosur/models"
)

var (
	// ErrEdicionBloqueada: the document's state forbids direct field
	// edits; only transitions are available.
	ErrEdicionBloqueada = errors.New("el estado del documento no permite edicion directa")

	// ErrNoEncontrado: the identifier did not resolve on the server.
	ErrNoEncontrado = errors.New("documento no encontrado")

	// ErrFuenteDerivacion: the CRT referenced by a derive request is
	// absent.
	ErrFuenteDerivacion = errors.New("CRT de origen no encontrado")

	// ErrOperacionEnCurso: another request for the same document is
	// still in flight.
	ErrOperacionEnCurso = errors.New("operacion en curso para este documento")
)

// TransicionInvalidaError is the client-side precheck failure: the
// requested destination is not in the transition table for the current
// state. No network call is made.
type TransicionInvalidaError struct {
	De         models.Estado
	A          models.Estado
	Permitidas []models.Estado
}

func (e *TransicionInvalidaError) Error() string {
	return fmt.Sprintf("transicion no permitida de %s a %s (permitidas: %v)", e.De, e.A, e.Permitidas)
}

// RechazadaPorServidorError carries the server's authoritative
// rejection of a transition, with its stated allowed set. The server
// may know a newer state than the client does.
type RechazadaPorServidorError struct {
	Mensaje    string
	Permitidas []models.Estado
}

func (e *RechazadaPorServidorError) Error() string {
	return fmt.Sprintf("transicion rechazada por el servidor: %s (permitidas: %v)", e.Mensaje, e.Permitidas)
}

// TransporteError wraps connectivity and unexpected server failures.
type TransporteError struct {
	Op  string
	Err error
}

func (e *TransporteError) Error() string {
	return fmt.Sprintf("fallo de transporte en %s: %v", e.Op, e.Err)
}

func (e *TransporteError) Unwrap() error { return e.Err }
