// Package insight synthesizes day-level insights from observations and
// merges multi-day corpora into meta-insights. Both tiers share one shape;
// only the Meta flag and the tagline distinguish them at the store boundary.
package insight

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lilac-app/insightd/internal/jsonx"
	"github.com/lilac-app/insightd/internal/llm"
	"github.com/lilac-app/insightd/internal/observe"
)

// Insight is one evidence-grounded generalization about the user.
// Description holds the 3-4 sentence claim itself.
type Insight struct {
	Title              string
	Tagline            string
	Description        string
	Context            string
	SupportingEvidence string
	Meta               bool
}

// Synthesizer runs the two-step day synthesis: freeform prose first, then a
// second call that coerces the prose into a strict JSON insight list.
type Synthesizer struct {
	llm          llm.Caller
	insightModel string
	formatModel  string
	userName     string
	limit        int
	logger       *slog.Logger
}

func NewSynthesizer(caller llm.Caller, insightModel, formatModel, userName string, limit int, logger *slog.Logger) *Synthesizer {
	return &Synthesizer{
		llm:          caller,
		insightModel: insightModel,
		formatModel:  formatModel,
		userName:     userName,
		limit:        limit,
		logger:       logger,
	}
}

type dayResponse struct {
	Insights []struct {
		Title              string `json:"title"`
		Insight            string `json:"insight"`
		Context            string `json:"context"`
		SupportingEvidence string `json:"supporting_evidence"`
	} `json:"insights"`
}

// SynthesizeDay turns a day's observation sets into insights. Either model
// call failing yields zero insights for the day; the caller treats that as a
// degradation, not an error.
func (s *Synthesizer) SynthesizeDay(ctx context.Context, sets []observe.Set) []Insight {
	var actions, feelings []string
	for _, set := range sets {
		for _, o := range set.Observations {
			actions = append(actions, o.Evidence)
			feelings = append(feelings, o.Description)
		}
	}
	if len(actions) == 0 {
		s.logger.Info("no observations for day, skipping insight synthesis")
		return nil
	}

	prompt := fmt.Sprintf(insightPrompt, s.limit, s.userName,
		strings.Join(actions, "\n"), strings.Join(feelings, "\n"))

	prose, err := s.llm.Complete(ctx, []llm.Part{llm.TextPart(prompt)}, s.insightModel, nil)
	if err != nil {
		s.logger.Error("insight synthesis failed", "error", err)
		return nil
	}

	structured, err := s.llm.Complete(ctx, []llm.Part{llm.TextPart(fmt.Sprintf(formatPrompt, prose))}, s.formatModel, nil)
	if err != nil {
		s.logger.Error("insight formatting failed", "error", err)
		return nil
	}

	var resp dayResponse
	if err := jsonx.Parse(structured, &resp); err != nil {
		s.logger.Error("insight response unparseable", "error", err)
		return nil
	}

	insights := make([]Insight, 0, len(resp.Insights))
	for _, in := range resp.Insights {
		if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Insight) == "" {
			s.logger.Warn("dropping insight without title or body")
			continue
		}
		insights = append(insights, Insight{
			Title:              in.Title,
			Tagline:            "",
			Description:        in.Insight,
			Context:            in.Context,
			SupportingEvidence: in.SupportingEvidence,
			Meta:               false,
		})
	}

	s.logger.Info("day insights synthesized", "insights", len(insights))
	return insights
}
