// Package trace turns capture windows into textual traces by pairing a
// literal screen transcription with a behavioral summary from a vision model.
package trace

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/lilac-app/insightd/internal/capture"
	"github.com/lilac-app/insightd/internal/llm"
)

type Synthesizer struct {
	llm    llm.Caller
	model  string
	logger *slog.Logger
}

func New(caller llm.Caller, model string, logger *slog.Logger) *Synthesizer {
	return &Synthesizer{llm: caller, model: model, logger: logger}
}

// SynthesizeDay produces one trace per window for which both the
// transcription and the summary call succeeded. All transcription calls for
// the day go out as one concurrent batch, then all summary calls as a second
// batch; a failed window is logged and omitted, never retried.
func (s *Synthesizer) SynthesizeDay(ctx context.Context, windows []capture.Window) []string {
	if len(windows) == 0 {
		return nil
	}

	transcriptionPrompts := make([][]llm.Part, len(windows))
	summaryPrompts := make([][]llm.Part, len(windows))
	for i, w := range windows {
		images := s.loadImages(w)
		transcriptionPrompts[i] = append([]llm.Part{llm.TextPart(transcriptionPrompt)}, images...)
		summaryPrompts[i] = append([]llm.Part{llm.TextPart(summaryPrompt)}, images...)
	}

	s.logger.Info("synthesizing traces", "windows", len(windows), "model", s.model)

	transcriptions := llm.CallAll(ctx, s.llm, transcriptionPrompts, s.model, nil)
	summaries := llm.CallAll(ctx, s.llm, summaryPrompts, s.model, nil)

	traces := make([]string, 0, len(windows))
	for i := range windows {
		if transcriptions[i].Err != nil || summaries[i].Err != nil {
			err := transcriptions[i].Err
			if err == nil {
				err = summaries[i].Err
			}
			s.logger.Error("window trace dropped", "window", windows[i].TimeRange(), "error", err)
			continue
		}
		traces = append(traces, formatTrace(windows[i].TimeRange(), summaries[i].Content, transcriptions[i].Content))
	}

	s.logger.Info("traces synthesized", "windows", len(windows), "traces", len(traces))
	return traces
}

func (s *Synthesizer) loadImages(w capture.Window) []llm.Part {
	parts := make([]llm.Part, 0, len(w.Files))
	for _, f := range w.Files {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			s.logger.Warn("capture file unreadable", "path", f.Path, "error", err)
			continue
		}
		parts = append(parts, llm.ImagePart(data))
	}
	return parts
}

func formatTrace(timeRange, summary, transcription string) string {
	return fmt.Sprintf("User's actions at %s:\n%s\n\nTranscription of User's Screen:\n%s",
		timeRange, summary, transcription)
}
