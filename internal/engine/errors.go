// Package engine implementa el motor de sugerencias: normalizacion min-max,
// regresion k-NN ponderada por distancia inversa y busqueda por recocido
// simulado sobre el espacio de metricas.
package engine

import "errors"

var (
	// ErrUnfittedModel indica que la operacion requiere un fit previo exitoso.
	ErrUnfittedModel = errors.New("model not fitted")
	// ErrDimensionMismatch indica que la longitud de un vector no coincide
	// con la dimensionalidad ajustada.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrMissingScore indica que el entry de partida no tiene calificacion.
	ErrMissingScore = errors.New("missing satisfaction score")
	// ErrEmptyTrainingSet indica que no hay datos utilizables para entrenar.
	ErrEmptyTrainingSet = errors.New("empty training set")
)
