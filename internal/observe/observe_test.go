package observe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/lilac-app/insightd/internal/llm"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeCaller struct {
	mu      sync.Mutex
	prompts []string
	schemas []*llm.Schema
	respond func(prompt string) (string, error)
}

func (f *fakeCaller) Complete(ctx context.Context, parts []llm.Part, model string, schema *llm.Schema) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, parts[0].Text)
	f.schemas = append(f.schemas, schema)
	f.mu.Unlock()
	return f.respond(parts[0].Text)
}

func TestExtractDay_ChunksByContextSize(t *testing.T) {
	caller := &fakeCaller{respond: func(string) (string, error) {
		return `{"observations": []}`, nil
	}}
	e := New(caller, "gpt-4.1", "Dora", 2, discardLogger())

	traces := []string{"t0", "t1", "t2", "t3", "t4"}
	sets := e.ExtractDay(context.Background(), traces)

	if len(sets) != 3 {
		t.Fatalf("expected 3 chunks for 5 traces at context size 2, got %d", len(sets))
	}
	if len(caller.prompts) != 3 {
		t.Fatalf("expected 3 prompts, got %d", len(caller.prompts))
	}

	joined := strings.Join(caller.prompts, "\n===\n")
	if !strings.Contains(joined, "t0\nt1") || !strings.Contains(joined, "t2\nt3") {
		t.Error("expected traces joined with newlines inside chunks")
	}
	if !strings.Contains(caller.prompts[0], "Dora") {
		t.Error("expected user name interpolated into prompt")
	}
	for _, s := range caller.schemas {
		if s == nil || s.Name != "obs_response" {
			t.Errorf("expected obs_response schema on every call, got %+v", s)
		}
	}
}

func TestExtractDay_ParsesObservations(t *testing.T) {
	caller := &fakeCaller{respond: func(string) (string, error) {
		return "```json\n" + `{"observations": [{"description": "Dora seems anxious.", "evidence": "Rewrites the same Slack message.", "confidence": 6}]}` + "\n```", nil
	}}
	e := New(caller, "gpt-4.1", "Dora", 5, discardLogger())

	sets := e.ExtractDay(context.Background(), []string{"a trace"})
	if len(sets) != 1 {
		t.Fatalf("expected 1 set, got %d", len(sets))
	}
	obs := sets[0].Observations
	if len(obs) != 1 {
		t.Fatalf("expected 1 observation, got %d", len(obs))
	}
	if obs[0].Confidence != 6 {
		t.Errorf("confidence = %d", obs[0].Confidence)
	}
}

func TestExtractDay_EmptySetIsValid(t *testing.T) {
	caller := &fakeCaller{respond: func(string) (string, error) {
		return `{"observations": []}`, nil
	}}
	e := New(caller, "gpt-4.1", "Dora", 5, discardLogger())

	sets := e.ExtractDay(context.Background(), []string{"routine work"})
	if len(sets) != 1 {
		t.Fatalf("expected 1 set, got %d", len(sets))
	}
	if len(sets[0].Observations) != 0 {
		t.Errorf("expected empty observations, got %d", len(sets[0].Observations))
	}
}

func TestExtractDay_FailedChunkDegradesToEmpty(t *testing.T) {
	caller := &fakeCaller{respond: func(prompt string) (string, error) {
		if strings.Contains(prompt, "bad-chunk") {
			return "", fmt.Errorf("provider error")
		}
		return `{"observations": [{"description": "d", "evidence": "e", "confidence": 3}]}`, nil
	}}
	e := New(caller, "gpt-4.1", "Dora", 1, discardLogger())

	sets := e.ExtractDay(context.Background(), []string{"good trace", "bad-chunk", "another good"})
	if len(sets) != 3 {
		t.Fatalf("expected 3 sets, got %d", len(sets))
	}
	if len(sets[0].Observations) != 1 || len(sets[2].Observations) != 1 {
		t.Error("healthy chunks should keep their observations")
	}
	if len(sets[1].Observations) != 0 {
		t.Error("failed chunk should degrade to empty, not abort the day")
	}
}

func TestExtractDay_UnparseableChunkDegradesToEmpty(t *testing.T) {
	caller := &fakeCaller{respond: func(string) (string, error) {
		return "I'm sorry, I can't help with structured output today.", nil
	}}
	e := New(caller, "gpt-4.1", "Dora", 5, discardLogger())

	sets := e.ExtractDay(context.Background(), []string{"a trace"})
	if len(sets) != 1 {
		t.Fatalf("expected 1 set, got %d", len(sets))
	}
	if len(sets[0].Observations) != 0 {
		t.Error("unparseable chunk should degrade to empty")
	}
}

func TestExtractDay_ValidationDropsBadEntries(t *testing.T) {
	caller := &fakeCaller{respond: func(string) (string, error) {
		return `{"observations": [
			{"description": "valid", "evidence": "named entity", "confidence": 10},
			{"description": "", "evidence": "no description", "confidence": 5},
			{"description": "overconfident", "evidence": "e", "confidence": 11},
			{"description": "underconfident", "evidence": "e", "confidence": 0}
		]}`, nil
	}}
	e := New(caller, "gpt-4.1", "Dora", 5, discardLogger())

	sets := e.ExtractDay(context.Background(), []string{"a trace"})
	if len(sets[0].Observations) != 1 {
		t.Fatalf("expected only the valid observation to survive, got %d", len(sets[0].Observations))
	}
	if sets[0].Observations[0].Description != "valid" {
		t.Errorf("kept the wrong observation: %+v", sets[0].Observations[0])
	}
}

func TestExtractDay_NoTraces(t *testing.T) {
	caller := &fakeCaller{respond: func(string) (string, error) {
		t.Fatal("no calls expected for an empty day")
		return "", nil
	}}
	e := New(caller, "gpt-4.1", "Dora", 5, discardLogger())

	if sets := e.ExtractDay(context.Background(), nil); sets != nil {
		t.Errorf("expected nil sets, got %v", sets)
	}
}
