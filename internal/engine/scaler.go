package engine

import (
	"fmt"
	"math"

	"github.com/aefremenko24/quantifying-happiness/internal/domain"
)

// FeatureScaler normaliza vectores de metricas al rango [0,1] por dimension
// usando los minimos y maximos observados en el conjunto de entrenamiento.
// Un scaler recien construido esta "sin ajustar"; Fit devuelve una instancia
// nueva e inmutable, de modo que varios regresores pueden ajustarse desde el
// mismo dataset base sin compartir estado mutable.
type FeatureScaler struct {
	min []float64
	max []float64
}

// NewFeatureScaler construye un scaler sin ajustar.
func NewFeatureScaler() *FeatureScaler {
	return &FeatureScaler{}
}

// Fit calcula min/max por dimension sobre los vectores de entrenamiento y
// devuelve un scaler nuevo ya ajustado. Con entrada vacia devuelve un scaler
// sin ajustar. Falla si los vectores no comparten dimensionalidad.
func (s *FeatureScaler) Fit(vectors []domain.MetricVector) (*FeatureScaler, error) {
	if len(vectors) == 0 {
		return &FeatureScaler{}, nil
	}
	dim := len(vectors[0])
	min := make([]float64, dim)
	max := make([]float64, dim)
	copy(min, vectors[0])
	copy(max, vectors[0])
	for _, v := range vectors[1:] {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: training vector has %d dimensions, expected %d", ErrDimensionMismatch, len(v), dim)
		}
		for i, x := range v {
			min[i] = math.Min(min[i], x)
			max[i] = math.Max(max[i], x)
		}
	}
	return &FeatureScaler{min: min, max: max}, nil
}

// Fitted indica si el scaler ya fue ajustado.
func (s *FeatureScaler) Fitted() bool {
	return len(s.min) > 0
}

// Dim devuelve la dimensionalidad ajustada (0 si no hay fit).
func (s *FeatureScaler) Dim() int {
	return len(s.min)
}

// Transform mapea cada dimension via (x - min) / (max - min). Una dimension
// degenerada (max == min) mapea a 0 para evitar la division por cero.
// Valores fuera de los limites extrapolan linealmente; el clamping a rangos
// realistas es responsabilidad del optimizador, no del scaler.
func (s *FeatureScaler) Transform(v domain.MetricVector) (domain.MetricVector, error) {
	if err := s.check(v); err != nil {
		return nil, err
	}
	out := make(domain.MetricVector, len(v))
	for i, x := range v {
		span := s.max[i] - s.min[i]
		if span == 0 {
			out[i] = 0
			continue
		}
		out[i] = (x - s.min[i]) / span
	}
	return out, nil
}

// InverseTransform es la inversa algebraica exacta de Transform:
// scaled * (max - min) + min.
func (s *FeatureScaler) InverseTransform(v domain.MetricVector) (domain.MetricVector, error) {
	if err := s.check(v); err != nil {
		return nil, err
	}
	out := make(domain.MetricVector, len(v))
	for i, x := range v {
		out[i] = x*(s.max[i]-s.min[i]) + s.min[i]
	}
	return out, nil
}

func (s *FeatureScaler) check(v domain.MetricVector) error {
	if !s.Fitted() {
		return ErrUnfittedModel
	}
	if len(v) != len(s.min) {
		return fmt.Errorf("%w: vector has %d dimensions, scaler fitted with %d", ErrDimensionMismatch, len(v), len(s.min))
	}
	return nil
}
