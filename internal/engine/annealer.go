package engine

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/aefremenko24/quantifying-happiness/internal/domain"
)

// Valores por defecto de la busqueda por recocido simulado.
const (
	DefaultInitialTemperature = 100.0
	DefaultCoolingRate        = 0.95
	DefaultStepSize           = 0.05
	DefaultMaxIterations      = 2000

	// temperatureFloor mantiene estable exp(delta/T) en corridas largas.
	temperatureFloor = 1e-3
)

// Objective indica de donde sale el valor inicial de la busqueda.
type Objective int

const (
	// ObjectiveReported usa la calificacion registrada del entry de partida.
	ObjectiveReported Objective = iota
	// ObjectivePredicted usa la prediccion del regresor sobre el punto de
	// partida, de modo que inicio y candidatos comparten la misma escala.
	ObjectivePredicted
)

// AnnealerConfig agrupa los parametros de la busqueda. Los campos en cero
// toman sus valores por defecto; NumRestarts <= 0 se trata como 1.
type AnnealerConfig struct {
	InitialTemperature float64
	CoolingRate        float64
	// StepSize es la magnitud maxima de una perturbacion, expresada como
	// fraccion del rango observado de la dimension elegida.
	StepSize      float64
	MaxIterations int
	NumRestarts   int
	Objective     Objective
}

func (c AnnealerConfig) withDefaults() AnnealerConfig {
	if c.InitialTemperature <= 0 {
		c.InitialTemperature = DefaultInitialTemperature
	}
	if c.CoolingRate <= 0 {
		c.CoolingRate = DefaultCoolingRate
	}
	if c.StepSize <= 0 {
		c.StepSize = DefaultStepSize
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if c.NumRestarts <= 0 {
		c.NumRestarts = 1
	}
	return c
}

// AnnealingOptimizer busca en el espacio de metricas un vector cercano cuya
// satisfaccion predicha supere la del punto de partida. Propone candidatos
// perturbando una dimension a la vez, los recorta a los limites observados
// del dataset (nunca sugiere valores fisiologicamente imposibles), los evalua
// con el regresor y acepta o rechaza via el criterio de Metropolis mientras
// la temperatura se enfria geometricamente.
type AnnealingOptimizer struct {
	cfg       AnnealerConfig
	scaler    *FeatureScaler
	regressor *KNNRegressor

	// Limites realistas por dimension, calculados una sola vez sobre el
	// dataset completo (distintos de los bounds del scaler, que solo ven el
	// subconjunto calificado).
	obsMin domain.MetricVector
	obsMax domain.MetricVector

	// Entries calificados usados como semillas de reinicio.
	seeds []domain.SatisfactionEntry

	rng *rand.Rand
}

// NewAnnealingOptimizer construye el optimizador a partir del dataset
// completo, un scaler y un regresor ya ajustados, y una fuente de azar.
// rng nil usa una fuente no determinista; los tests inyectan una semilla fija.
func NewAnnealingOptimizer(
	dataset []domain.SatisfactionEntry,
	scaler *FeatureScaler,
	regressor *KNNRegressor,
	cfg AnnealerConfig,
	rng *rand.Rand,
) (*AnnealingOptimizer, error) {
	if len(dataset) == 0 {
		return nil, fmt.Errorf("annealer: %w", ErrEmptyTrainingSet)
	}
	if scaler == nil || !scaler.Fitted() || regressor == nil || !regressor.Fitted() {
		return nil, fmt.Errorf("annealer: %w", ErrUnfittedModel)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	dim := len(dataset[0].Metrics)
	obsMin := dataset[0].Metrics.Clone()
	obsMax := dataset[0].Metrics.Clone()
	var seeds []domain.SatisfactionEntry
	for _, e := range dataset {
		if len(e.Metrics) != dim {
			return nil, fmt.Errorf("annealer: %w: entry %s has %d dimensions, expected %d", ErrDimensionMismatch, e.Day.Format(domain.DayFormat), len(e.Metrics), dim)
		}
		for i, x := range e.Metrics {
			obsMin[i] = math.Min(obsMin[i], x)
			obsMax[i] = math.Max(obsMax[i], x)
		}
		if e.Score.Known() {
			seeds = append(seeds, e)
		}
	}

	return &AnnealingOptimizer{
		cfg:       cfg.withDefaults(),
		scaler:    scaler,
		regressor: regressor,
		obsMin:    obsMin,
		obsMax:    obsMax,
		seeds:     seeds,
		rng:       rng,
	}, nil
}

// Bounds devuelve copias de los limites observados por dimension.
func (o *AnnealingOptimizer) Bounds() (domain.MetricVector, domain.MetricVector) {
	return o.obsMin.Clone(), o.obsMax.Clone()
}

// Optimize corre la busqueda desde el entry dado y devuelve el mejor
// candidato encontrado junto con la secuencia ordenada de todos los
// candidatos aceptados (no solo propuestos) a lo largo de la corrida.
// En la variante multi-reinicio, el reinicio 0 parte del entry del caller y
// los siguientes de un entry calificado elegido al azar; se devuelve el mejor
// global y la concatenacion de todas las historias.
func (o *AnnealingOptimizer) Optimize(start domain.SatisfactionEntry) (domain.Candidate, []domain.Candidate, error) {
	startValue, err := o.startingValue(start)
	if err != nil {
		return domain.Candidate{}, nil, err
	}
	if len(start.Metrics) != len(o.obsMin) {
		return domain.Candidate{}, nil, fmt.Errorf("annealer: %w: start has %d dimensions, expected %d", ErrDimensionMismatch, len(start.Metrics), len(o.obsMin))
	}

	best := domain.Candidate{Metrics: start.Metrics.Clone(), Value: startValue}
	var history []domain.Candidate

	for restart := 0; restart < o.cfg.NumRestarts; restart++ {
		seedVec, seedValue := start.Metrics, startValue
		if restart > 0 && len(o.seeds) > 0 {
			seed := o.seeds[o.rng.Intn(len(o.seeds))]
			seedVec = seed.Metrics
			seedValue, err = o.startingValue(seed)
			if err != nil {
				return domain.Candidate{}, nil, err
			}
		}

		runBest, runHistory, err := o.anneal(seedVec, seedValue)
		if err != nil {
			return domain.Candidate{}, nil, err
		}
		history = append(history, runHistory...)
		if runBest.Value > best.Value {
			best = runBest
		}
	}
	return best, history, nil
}

// anneal ejecuta una corrida de recocido desde un vector semilla.
func (o *AnnealingOptimizer) anneal(seed domain.MetricVector, seedValue float64) (domain.Candidate, []domain.Candidate, error) {
	current := seed.Clone()
	currentValue := seedValue
	best := domain.Candidate{Metrics: current.Clone(), Value: currentValue}
	var history []domain.Candidate

	temperature := o.cfg.InitialTemperature
	for i := 0; i < o.cfg.MaxIterations; i++ {
		candidate := current.Clone()
		dim := o.rng.Intn(len(candidate))
		span := o.obsMax[dim] - o.obsMin[dim]
		candidate[dim] += (o.rng.Float64()*2 - 1) * o.cfg.StepSize * span
		o.clamp(candidate)

		candidateValue, err := o.predict(candidate)
		if err != nil {
			// Una busqueda parcial con objetivo indefinido es peor que un
			// fallo explicito: se aborta y se propaga.
			return domain.Candidate{}, nil, err
		}

		delta := candidateValue - currentValue
		if delta > 0 || o.rng.Float64() < math.Exp(delta/temperature) {
			current = candidate
			currentValue = candidateValue
			accepted := domain.Candidate{Metrics: candidate.Clone(), Value: candidateValue}
			history = append(history, accepted)
			if candidateValue > best.Value {
				best = domain.Candidate{Metrics: candidate.Clone(), Value: candidateValue}
			}
		}

		temperature *= o.cfg.CoolingRate
		if temperature < temperatureFloor {
			temperature = temperatureFloor
		}
	}
	return best, history, nil
}

// startingValue resuelve el valor inicial segun la fuente de objetivo.
func (o *AnnealingOptimizer) startingValue(e domain.SatisfactionEntry) (float64, error) {
	switch o.cfg.Objective {
	case ObjectivePredicted:
		return o.predict(e.Metrics)
	default:
		v, ok := e.Score.Value()
		if !ok {
			return 0, fmt.Errorf("annealer: entry %s: %w", e.Day.Format(domain.DayFormat), ErrMissingScore)
		}
		return v, nil
	}
}

// predict evalua el regresor en unidades originales; el paso por espacio
// escalado es un detalle interno.
func (o *AnnealingOptimizer) predict(v domain.MetricVector) (float64, error) {
	scaled, err := o.scaler.Transform(v)
	if err != nil {
		return 0, err
	}
	return o.regressor.Predict(scaled)
}

func (o *AnnealingOptimizer) clamp(v domain.MetricVector) {
	for i := range v {
		if v[i] < o.obsMin[i] {
			v[i] = o.obsMin[i]
		}
		if v[i] > o.obsMax[i] {
			v[i] = o.obsMax[i]
		}
	}
}
