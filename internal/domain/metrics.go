package domain

// MetricCount es la dimensionalidad fija de todo vector de metricas.
const MetricCount = 9

// MetricNames define el orden canonico de las 9 metricas diarias.
// Ese orden es el contrato entre scaler, regresor, optimizador y persistencia.
var MetricNames = [MetricCount]string{
	"steps",
	"minutes_in_bed",
	"active_energy_kcal",
	"exercise_minutes",
	"stand_hours",
	"daylight_minutes",
	"walking_distance_m",
	"flights_climbed",
	"resting_heart_rate",
}

// MetricVector es la secuencia ordenada de las 9 metricas de salud de un dia.
type MetricVector []float64

// Clone devuelve una copia independiente del vector.
func (v MetricVector) Clone() MetricVector {
	out := make(MetricVector, len(v))
	copy(out, v)
	return out
}
