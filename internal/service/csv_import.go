package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/aefremenko24/quantifying-happiness/internal/domain"
)

// Cabecera esperada: dia, calificacion opcional y las 9 metricas en orden canonico.
var csvHeader = append([]string{"day", "satisfaction_score"}, domain.MetricNames[:]...)

var ErrInvalidCSV = errors.New("invalid csv")

// ParseEntriesCSV lee un historial de dias desde CSV. La celda de
// calificacion vacia significa "aun sin calificar". Los errores de fila
// se reportan con numero de linea.
func ParseEntriesCSV(r io.Reader) ([]domain.SatisfactionEntry, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing header: %v", ErrInvalidCSV, err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var entries []domain.SatisfactionEntry
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidCSV, line, err)
		}

		entry, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidCSV, line, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func checkHeader(header []string) error {
	if len(header) != len(csvHeader) {
		return fmt.Errorf("%w: expected %d columns, got %d", ErrInvalidCSV, len(csvHeader), len(header))
	}
	for i, name := range csvHeader {
		if strings.TrimSpace(strings.ToLower(header[i])) != name {
			return fmt.Errorf("%w: column %d is %q, expected %q", ErrInvalidCSV, i+1, header[i], name)
		}
	}
	return nil
}

func parseRow(record []string) (domain.SatisfactionEntry, error) {
	if len(record) != len(csvHeader) {
		return domain.SatisfactionEntry{}, fmt.Errorf("expected %d columns, got %d", len(csvHeader), len(record))
	}

	day, err := time.Parse(domain.DayFormat, strings.TrimSpace(record[0]))
	if err != nil {
		return domain.SatisfactionEntry{}, fmt.Errorf("day: %v", err)
	}

	score := domain.Unscored()
	if raw := strings.TrimSpace(record[1]); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.SatisfactionEntry{}, fmt.Errorf("satisfaction_score: %v", err)
		}
		score = domain.Scored(v)
	}

	metrics := make(domain.MetricVector, domain.MetricCount)
	for i := 0; i < domain.MetricCount; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(record[i+2]), 64)
		if err != nil {
			return domain.SatisfactionEntry{}, fmt.Errorf("%s: %v", domain.MetricNames[i], err)
		}
		metrics[i] = v
	}

	return domain.SatisfactionEntry{
		Day:     day,
		Score:   score,
		Metrics: metrics,
	}, nil
}
