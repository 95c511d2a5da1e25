// Package pipeline orchestrates the full batch run: captures are grouped
// into days, each day is distilled into insights, and the accumulated day
// insights are merged into meta-insights at the end.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lilac-app/insightd/internal/capture"
	"github.com/lilac-app/insightd/internal/config"
	"github.com/lilac-app/insightd/internal/events"
	"github.com/lilac-app/insightd/internal/insight"
	"github.com/lilac-app/insightd/internal/llm"
	"github.com/lilac-app/insightd/internal/observe"
	"github.com/lilac-app/insightd/internal/trace"
)

// InsightWriter persists one insight row.
type InsightWriter interface {
	WriteInsight(ctx context.Context, in insight.Insight) (uuid.UUID, error)
}

// RunResult reports the outcome of one batch run.
type RunResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Runner drives the batch pipeline end to end.
type Runner struct {
	cfg    config.Config
	caller llm.Caller
	store  InsightWriter
	events *events.Publisher
	logger *slog.Logger
}

func NewRunner(cfg config.Config, caller llm.Caller, store InsightWriter, pub *events.Publisher, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:    cfg,
		caller: caller,
		store:  store,
		events: pub,
		logger: logger,
	}
}

// Run executes one batch run over the capture directory. Every day that
// yields no usable output degrades to zero insights rather than failing the
// run; only a corpus with no days at all fails the final merge precondition.
func (r *Runner) Run(ctx context.Context) (RunResult, error) {
	state, err := LoadState(r.cfg.StatePath)
	if err != nil {
		return RunResult{}, fmt.Errorf("load state: %w", err)
	}

	files, err := capture.List(r.cfg.CaptureDir)
	if err != nil {
		return RunResult{}, fmt.Errorf("list captures: %w", err)
	}

	grouped := capture.GroupByDay(files)
	days := capture.Days(grouped)

	if r.cfg.SinceLastRun {
		var fresh []string
		for _, day := range days {
			if state.IsProcessed(day) {
				r.logger.Info("skipping already processed day", "day", day)
				continue
			}
			fresh = append(fresh, day)
		}
		days = fresh
	}

	r.logger.Info("run started",
		"capture_files", len(files),
		"days", len(days),
	)
	r.events.Publish(events.SubjectRunStarted, events.RunStarted{
		Days:      len(days),
		StartedAt: time.Now().UTC(),
	})

	tracer := trace.New(r.caller, r.cfg.Models.Transcription, r.logger)
	extractor := observe.New(r.caller, r.cfg.Models.Observation, r.cfg.UserName, r.cfg.ContextSize, r.logger)
	synthesizer := insight.NewSynthesizer(r.caller, r.cfg.Models.Insight, r.cfg.Models.Format, r.cfg.UserName, r.cfg.InsightLimit, r.logger)
	merger := insight.NewMerger(r.caller, r.cfg.Models.Synthesis, r.cfg.UserName, r.logger)

	var corpus []insight.Insight
	daysWithData := 0

	for _, day := range days {
		select {
		case <-ctx.Done():
			r.logger.Info("run interrupted, saving state")
			_ = state.Save()
			return RunResult{}, ctx.Err()
		default:
		}

		dayInsights := r.runDay(ctx, day, grouped[day], tracer, extractor, synthesizer, state)
		corpus = append(corpus, dayInsights...)
		daysWithData++

		if !state.IsProcessed(day) {
			state.MarkProcessed(day)
		}
		_ = state.Save()
	}

	if daysWithData == 0 {
		r.logger.Warn("no days to merge")
		result := RunResult{Success: false, Message: "Not enough sessions to merge insights"}
		r.finish(state, result, len(corpus), 0)
		return result, nil
	}

	corpus = insight.Dedupe(corpus)

	merged := merger.Merge(ctx, corpus, daysWithData)
	if len(merged) == 0 && len(corpus) > 0 {
		state.AddDegradation("meta merge produced no insights")
	}

	persisted := 0
	for _, in := range merged {
		if _, err := r.store.WriteInsight(ctx, in); err != nil {
			r.logger.Error("persist meta insight failed", "title", in.Title, "error", err)
			state.AddDegradation(fmt.Sprintf("persist meta %q: %v", in.Title, err))
			continue
		}
		persisted++
	}
	state.MetaInsights += persisted

	r.logger.Info("run complete",
		"days", daysWithData,
		"day_insights", len(corpus),
		"meta_insights", persisted,
	)

	result := RunResult{
		Success: true,
		Message: fmt.Sprintf("Merged %d insight(s) across %d day(s)", persisted, daysWithData),
	}
	r.finish(state, result, len(corpus), persisted)
	return result, nil
}

// runDay takes one day's capture files all the way to persisted day
// insights. Failures at any stage shrink the output; they never abort the
// run.
func (r *Runner) runDay(ctx context.Context, day string, files []capture.File, tracer *trace.Synthesizer, extractor *observe.Extractor, synthesizer *insight.Synthesizer, state *RunState) []insight.Insight {
	windows := capture.DayWindows(files, r.cfg.SessionGap, r.cfg.WindowSize)

	r.logger.Info("processing day",
		"day", day,
		"files", len(files),
		"windows", len(windows),
	)

	traces := tracer.SynthesizeDay(ctx, windows)
	state.WindowsTraced += len(traces)
	if len(traces) < len(windows) {
		state.AddDegradation(fmt.Sprintf("day %s: %d of %d windows traced", day, len(traces), len(windows)))
	}

	sets := extractor.ExtractDay(ctx, traces)
	state.ObservationSets += len(sets)

	dayInsights := synthesizer.SynthesizeDay(ctx, sets)

	persisted := 0
	for _, in := range dayInsights {
		if _, err := r.store.WriteInsight(ctx, in); err != nil {
			r.logger.Error("persist day insight failed", "day", day, "title", in.Title, "error", err)
			state.AddDegradation(fmt.Sprintf("persist day %s %q: %v", day, in.Title, err))
			continue
		}
		persisted++
	}
	state.DayInsights += persisted

	r.logger.Info("day complete",
		"day", day,
		"traces", len(traces),
		"observation_sets", len(sets),
		"insights", persisted,
	)
	r.events.Publish(events.SubjectDayCompleted, events.DayCompleted{
		Day:      day,
		Windows:  len(windows),
		Insights: persisted,
	})

	return dayInsights
}

func (r *Runner) finish(state *RunState, result RunResult, dayInsights, metaInsights int) {
	state.FinishedAt = time.Now().UTC()
	if err := state.Save(); err != nil {
		r.logger.Warn("save state", "error", err)
	}
	r.events.Publish(events.SubjectRunCompleted, events.RunCompleted{
		Success:     result.Success,
		Message:     result.Message,
		DayInsights: dayInsights,
		MetaMerged:  metaInsights,
		FinishedAt:  state.FinishedAt,
	})
}
