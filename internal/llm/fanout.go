package llm

import (
	"context"
	"sync"
)

// Result is one slot of a concurrent batch: the response text or the error,
// at the same index as its prompt. Callers decide per-slot what a failure
// costs; the batch itself never fails.
type Result struct {
	Content string
	Err     error
}

// CallAll issues every prompt concurrently against the same model and waits
// for all of them. Results are positionally aligned with prompts so callers
// can correlate failures without guessing.
func CallAll(ctx context.Context, caller Caller, prompts [][]Part, model string, schema *Schema) []Result {
	results := make([]Result, len(prompts))

	var wg sync.WaitGroup
	for i, p := range prompts {
		wg.Add(1)
		go func(i int, parts []Part) {
			defer wg.Done()
			content, err := caller.Complete(ctx, parts, model, schema)
			results[i] = Result{Content: content, Err: err}
		}(i, p)
	}
	wg.Wait()

	return results
}
