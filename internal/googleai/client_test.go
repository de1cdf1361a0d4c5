package googleai

import (
	"context"
	"testing"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "missing api key", cfg: Config{ModelName: "gemini-2.5-flash", EmbedderModel: "gemini-embedding-001", EmbedderDim: 768}},
		{name: "missing model name", cfg: Config{APIKey: "key", EmbedderModel: "gemini-embedding-001", EmbedderDim: 768}},
		{name: "missing embedder model", cfg: Config{APIKey: "key", ModelName: "gemini-2.5-flash", EmbedderDim: 768}},
		{name: "zero dimension", cfg: Config{APIKey: "key", ModelName: "gemini-2.5-flash", EmbedderModel: "gemini-embedding-001"}},
		{name: "negative dimension", cfg: Config{APIKey: "key", ModelName: "gemini-2.5-flash", EmbedderModel: "gemini-embedding-001", EmbedderDim: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(context.Background(), tt.cfg, nil); err == nil {
				t.Error("New() should fail")
			}
		})
	}
}
