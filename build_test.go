package fsmindex

import (
	"context"
	"testing"

	"github.com/coregx/fsmindex/vocab"
)

func tinyVocab(t *testing.T) *vocab.Vocabulary {
	t.Helper()
	raw := map[vocab.TokenID][]byte{
		0: []byte(""),
		1: []byte("a"),
		2: []byte("b"),
	}
	v, err := vocab.FromRaw(raw, 0, nil, nil)
	if err != nil {
		t.Fatalf("vocab.FromRaw: %v", err)
	}
	return v
}

func TestBuildEndToEnd(t *testing.T) {
	v := tinyVocab(t)
	h, err := Build(context.Background(), "a+b", v)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := h.AwaitFinished(context.Background()); err != nil {
		t.Fatalf("AwaitFinished: %v", err)
	}
}

func TestBuildWithConfigRejectsInvalidConfig(t *testing.T) {
	v := tinyVocab(t)
	cfg := DefaultConfig()
	cfg.MaxAutomatonStates = 0
	if _, err := BuildWithConfig(context.Background(), "a+b", v, cfg); err == nil {
		t.Fatalf("expected an invalid config to be rejected before compiling")
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig should validate cleanly, got %v", err)
	}
}

func TestConfigValidateRejectsNegativeWorkers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WorkerThreads = -1
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected negative WorkerThreads to be rejected")
	}
}
