package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/aefremenko24/quantifying-happiness/internal/domain"
)

const floatTolerance = 1e-9

func TestFeatureScaler_RoundTrip(t *testing.T) {
	vectors := []domain.MetricVector{
		{5000, 420, 300, 20, 8, 30, 3500, 5, 62},
		{12000, 480, 650, 55, 12, 90, 9000, 14, 55},
		{8000, 390, 450, 35, 10, 60, 6000, 9, 58},
	}
	scaler, err := NewFeatureScaler().Fit(vectors)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	for _, v := range vectors {
		scaled, err := scaler.Transform(v)
		if err != nil {
			t.Fatalf("transform: %v", err)
		}
		back, err := scaler.InverseTransform(scaled)
		if err != nil {
			t.Fatalf("inverse transform: %v", err)
		}
		for i := range v {
			if math.Abs(back[i]-v[i]) > floatTolerance {
				t.Fatalf("round trip dim %d: got %v want %v", i, back[i], v[i])
			}
		}
	}
}

func TestFeatureScaler_BoundsAndMidpoint(t *testing.T) {
	// Datos sinteticos con espaciado uniforme para que el punto medio sea exacto.
	vectors := []domain.MetricVector{
		{0, 10, 100},
		{5, 15, 200},
		{10, 20, 300},
	}
	scaler, err := NewFeatureScaler().Fit(vectors)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	cases := []struct {
		name  string
		input domain.MetricVector
		want  float64
	}{
		{"minimum maps to zeros", domain.MetricVector{0, 10, 100}, 0},
		{"maximum maps to ones", domain.MetricVector{10, 20, 300}, 1},
		{"midpoint maps to halves", domain.MetricVector{5, 15, 200}, 0.5},
	}
	for _, tc := range cases {
		scaled, err := scaler.Transform(tc.input)
		if err != nil {
			t.Fatalf("%s: transform: %v", tc.name, err)
		}
		for i, got := range scaled {
			if math.Abs(got-tc.want) > floatTolerance {
				t.Fatalf("%s: dim %d: got %v want %v", tc.name, i, got, tc.want)
			}
		}
	}
}

func TestFeatureScaler_ZeroVarianceDimension(t *testing.T) {
	vectors := []domain.MetricVector{
		{100, 7},
		{200, 7},
	}
	scaler, err := NewFeatureScaler().Fit(vectors)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	scaled, err := scaler.Transform(domain.MetricVector{150, 42})
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if scaled[1] != 0 {
		t.Fatalf("expected zero-variance dimension to map to 0, got %v", scaled[1])
	}
}

func TestFeatureScaler_EmptyFitStaysUnfitted(t *testing.T) {
	scaler, err := NewFeatureScaler().Fit(nil)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if scaler.Fitted() {
		t.Fatalf("expected unfitted scaler after empty fit")
	}
	if _, err := scaler.Transform(domain.MetricVector{1}); !errors.Is(err, ErrUnfittedModel) {
		t.Fatalf("expected ErrUnfittedModel, got %v", err)
	}
	if _, err := scaler.InverseTransform(domain.MetricVector{1}); !errors.Is(err, ErrUnfittedModel) {
		t.Fatalf("expected ErrUnfittedModel, got %v", err)
	}
}

func TestFeatureScaler_DimensionMismatch(t *testing.T) {
	scaler, err := NewFeatureScaler().Fit([]domain.MetricVector{{1, 2}, {3, 4}})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if _, err := scaler.Transform(domain.MetricVector{1, 2, 3}); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
	if _, err := scaler.InverseTransform(domain.MetricVector{1}); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}

	if _, err := NewFeatureScaler().Fit([]domain.MetricVector{{1, 2}, {3}}); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch on ragged fit, got %v", err)
	}
}
