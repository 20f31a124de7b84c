package engine

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/aefremenko24/quantifying-happiness/internal/domain"
)

const (
	// DefaultNeighbors es el k por defecto del regresor.
	DefaultNeighbors = 5

	// distanceEpsilon evita la division por cero cuando la consulta coincide
	// exactamente con un punto de entrenamiento.
	distanceEpsilon = 1e-8
)

// KNNRegressor estima la satisfaccion de un vector de metricas como el
// promedio de las calificaciones de sus k vecinos mas cercanos, ponderado por
// distancia inversa. La ponderacion hace que el estimado varie de forma
// continua cuando la consulta se mueve, lo que importa porque el optimizador
// lo evalua en muchos puntos cercanos; el modelo queda acotado por la region
// convexa de sus datos y no extrapola.
type KNNRegressor struct {
	k      int
	dim    int
	points []domain.MetricVector
	scores []float64
}

// NewKNNRegressor construye un regresor sin ajustar. k <= 0 usa el default.
func NewKNNRegressor(k int) *KNNRegressor {
	if k <= 0 {
		k = DefaultNeighbors
	}
	return &KNNRegressor{k: k}
}

// Fit devuelve un regresor nuevo ajustado sobre los entries con calificacion
// presente, almacenando sus vectores ya escalados. Requiere un scaler ajustado
// sobre la misma poblacion. Entries sin calificacion se omiten; si no queda
// ninguno, falla con ErrEmptyTrainingSet.
func (r *KNNRegressor) Fit(entries []domain.SatisfactionEntry, scaler *FeatureScaler) (*KNNRegressor, error) {
	if scaler == nil || !scaler.Fitted() {
		return nil, fmt.Errorf("knn fit: scaler: %w", ErrUnfittedModel)
	}
	fitted := &KNNRegressor{k: r.k, dim: scaler.Dim()}
	for _, e := range entries {
		score, ok := e.Score.Value()
		if !ok {
			continue
		}
		scaled, err := scaler.Transform(e.Metrics)
		if err != nil {
			return nil, fmt.Errorf("knn fit: %w", err)
		}
		fitted.points = append(fitted.points, scaled)
		fitted.scores = append(fitted.scores, score)
	}
	if len(fitted.points) == 0 {
		return nil, ErrEmptyTrainingSet
	}
	return fitted, nil
}

// Fitted indica si el regresor ya fue ajustado.
func (r *KNNRegressor) Fitted() bool {
	return len(r.points) > 0
}

// Len devuelve la cantidad de puntos de entrenamiento almacenados.
func (r *KNNRegressor) Len() int {
	return len(r.points)
}

// Predict estima la calificacion para una consulta en espacio escalado.
// Toma los k puntos mas cercanos en distancia euclidiana (empates resueltos
// por orden estable de insercion, todos los puntos si hay menos de k) y
// devuelve el promedio de sus calificaciones con peso 1/(d + epsilon).
func (r *KNNRegressor) Predict(query domain.MetricVector) (float64, error) {
	if !r.Fitted() {
		return 0, fmt.Errorf("knn predict: %w", ErrUnfittedModel)
	}
	if len(query) != r.dim {
		return 0, fmt.Errorf("knn predict: %w: query has %d dimensions, trained with %d", ErrDimensionMismatch, len(query), r.dim)
	}

	type neighbor struct {
		dist  float64
		score float64
	}
	neighbors := make([]neighbor, len(r.points))
	for i, p := range r.points {
		neighbors[i] = neighbor{
			dist:  floats.Distance(query, p, 2),
			score: r.scores[i],
		}
	}
	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].dist < neighbors[j].dist
	})

	k := r.k
	if k > len(neighbors) {
		k = len(neighbors)
	}

	var weightSum, weightedScores float64
	for _, n := range neighbors[:k] {
		w := 1 / (n.dist + distanceEpsilon)
		weightSum += w
		weightedScores += w * n.score
	}
	return weightedScores / weightSum, nil
}
