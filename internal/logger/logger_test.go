package logger

import "testing"

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{name: "Human format", config: Config{Format: "human"}},
		{name: "JSON format", config: Config{Format: "json"}},
		{name: "Debug level", config: Config{Debug: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.config)
			if err != nil {
				t.Fatalf("New() failed: %v", err)
			}
			if log == nil {
				t.Fatal("New() returned a nil logger")
			}
		})
	}
}

func TestNop(t *testing.T) {
	log := Nop()
	if log == nil {
		t.Fatal("Nop() returned a nil logger")
	}
	log.Debugw("discarded", "key", "value")
}
