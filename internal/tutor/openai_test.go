package tutor

import (
	"math"
	"testing"
)

func TestTemperatureFor(t *testing.T) {
	tests := []struct {
		in   float32
		want float32
	}{
		{0, math.SmallestNonzeroFloat32},
		{-1, math.SmallestNonzeroFloat32},
		{0.3, 0.3},
		{1.2, 1.2},
	}

	for _, tt := range tests {
		if got := temperatureFor(tt.in); got != tt.want {
			t.Errorf("temperatureFor(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewOpenAIGenerator(t *testing.T) {
	if _, err := NewOpenAIGenerator("", ""); err == nil {
		t.Error("Expected error without an API key")
	}

	g, err := NewOpenAIGenerator("test-key", "")
	if err != nil {
		t.Fatalf("NewOpenAIGenerator() error: %v", err)
	}
	if g.model == "" || g.Name() != "openai" {
		t.Errorf("Unexpected generator: model=%q name=%q", g.model, g.Name())
	}
}
