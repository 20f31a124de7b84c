package domain

import "time"

// DayFormat es el formato de fecha usado en rutas, CSV y claves de cache.
const DayFormat = "2006-01-02"

// SatisfactionEntry es el registro de un dia calendario: metricas medidas
// y la calificacion de satisfaccion reportada por el usuario (si existe).
// El motor de sugerencias solo lee entries; nunca escribe de vuelta al store.
type SatisfactionEntry struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	Day       time.Time    `json:"day"`
	Score     Score        `json:"satisfaction_score"`
	Metrics   MetricVector `json:"metrics"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Candidate es un punto efimero del espacio de metricas con su valor
// asociado: la calificacion real del punto de partida o la prediccion
// del regresor para puntos fabricados durante la busqueda.
// Los candidates no se persisten; solo el caller decide guardar el mejor.
type Candidate struct {
	Metrics MetricVector `json:"metrics"`
	Value   float64      `json:"value"`
}
