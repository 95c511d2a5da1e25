// Package observe infers emotional and cognitive observations from trace
// text. Traces are chunked into bounded context blocks and every chunk is
// prompted concurrently; chunks that fail generation or parsing degrade to an
// empty observation set rather than failing the day.
package observe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lilac-app/insightd/internal/jsonx"
	"github.com/lilac-app/insightd/internal/llm"
)

// Observation is one inferred state, grounded in trace evidence.
type Observation struct {
	Description string `json:"description"`
	Evidence    string `json:"evidence"`
	Confidence  int    `json:"confidence"`
}

// Set is the model's response shape for one chunk. An empty set is an
// expected outcome, not an error.
type Set struct {
	Observations []Observation `json:"observations"`
}

// schema is the provider-enforced structured-output contract for Set.
var schema = &llm.Schema{
	Name: "obs_response",
	Schema: json.RawMessage(`{
		"type": "object",
		"properties": {
			"observations": {
				"type": "array",
				"items": {
					"type": "object",
					"properties": {
						"description": {"type": "string"},
						"evidence": {"type": "string"},
						"confidence": {"type": "integer"}
					},
					"required": ["description", "evidence", "confidence"],
					"additionalProperties": false
				}
			}
		},
		"required": ["observations"],
		"additionalProperties": false
	}`),
}

type Extractor struct {
	llm         llm.Caller
	model       string
	userName    string
	contextSize int
	logger      *slog.Logger
}

func New(caller llm.Caller, model, userName string, contextSize int, logger *slog.Logger) *Extractor {
	return &Extractor{llm: caller, model: model, userName: userName, contextSize: contextSize, logger: logger}
}

// ExtractDay chunks the day's traces and returns one observation set per
// chunk, in chunk order. May be all-empty.
func (e *Extractor) ExtractDay(ctx context.Context, traces []string) []Set {
	chunks := chunkTraces(traces, e.contextSize)
	if len(chunks) == 0 {
		return nil
	}

	prompts := make([][]llm.Part, len(chunks))
	for i, actions := range chunks {
		prompts[i] = []llm.Part{llm.TextPart(fmt.Sprintf(observationPrompt, e.userName, actions))}
	}

	e.logger.Info("extracting observations", "chunks", len(chunks), "model", e.model)

	results := llm.CallAll(ctx, e.llm, prompts, e.model, schema)

	sets := make([]Set, len(chunks))
	for i, r := range results {
		if r.Err != nil {
			e.logger.Error("observation chunk failed", "chunk", i, "error", r.Err)
			continue
		}
		var set Set
		if err := jsonx.Parse(r.Content, &set); err != nil {
			e.logger.Error("observation chunk unparseable", "chunk", i, "error", err)
			continue
		}
		sets[i] = validate(set, i, e.logger)
	}
	return sets
}

// validate drops observations that violate the schema's semantic bounds.
func validate(set Set, chunk int, logger *slog.Logger) Set {
	kept := make([]Observation, 0, len(set.Observations))
	for _, o := range set.Observations {
		if strings.TrimSpace(o.Description) == "" || strings.TrimSpace(o.Evidence) == "" {
			logger.Warn("observation missing description or evidence", "chunk", chunk)
			continue
		}
		if o.Confidence < 1 || o.Confidence > 10 {
			logger.Warn("observation confidence out of range", "chunk", chunk, "confidence", o.Confidence)
			continue
		}
		kept = append(kept, o)
	}
	return Set{Observations: kept}
}

func chunkTraces(traces []string, size int) []string {
	if size <= 0 || len(traces) == 0 {
		return nil
	}
	var chunks []string
	for start := 0; start < len(traces); start += size {
		end := start + size
		if end > len(traces) {
			end = len(traces)
		}
		chunks = append(chunks, strings.Join(traces[start:end], "\n"))
	}
	return chunks
}
