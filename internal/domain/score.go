package domain

import (
	"bytes"
	"encoding/json"
)

// Score representa la calificacion de satisfaccion opcional de un dia.
// Es un tipo cerrado: o existe un valor (Scored) o no existe (Unscored),
// y todo consumidor debe manejar ambas ramas via Value.
type Score struct {
	value float64
	known bool
}

// Scored construye una calificacion presente.
func Scored(v float64) Score {
	return Score{value: v, known: true}
}

// Unscored construye la calificacion ausente ("aun sin calificar").
func Unscored() Score {
	return Score{}
}

// Value devuelve el valor y si esta presente.
func (s Score) Value() (float64, bool) {
	return s.value, s.known
}

// Known indica si el dia ya fue calificado.
func (s Score) Known() bool {
	return s.known
}

// MarshalJSON serializa como numero o null.
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.known {
		return []byte("null"), nil
	}
	return json.Marshal(s.value)
}

// UnmarshalJSON acepta numero o null.
func (s *Score) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = Unscored()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = Scored(v)
	return nil
}
