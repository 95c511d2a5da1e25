package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lilac-app/insightd/internal/jsonx"
	"github.com/lilac-app/insightd/internal/llm"
)

// Merger synthesizes cross-day meta-insights from the accumulated day-level
// corpus.
type Merger struct {
	llm      llm.Caller
	model    string
	userName string
	logger   *slog.Logger
}

func NewMerger(caller llm.Caller, model, userName string, logger *slog.Logger) *Merger {
	return &Merger{llm: caller, model: model, userName: userName, logger: logger}
}

type metaResponse struct {
	Insights []struct {
		Title     string `json:"title"`
		Tagline   string `json:"tagline"`
		Insight   string `json:"insight"`
		Context   string `json:"context"`
		Reasoning string `json:"reasoning"`
	} `json:"insights"`
}

// serializable projection of a day insight for the synthesis prompt.
type corpusEntry struct {
	Title              string `json:"title"`
	Insight            string `json:"insight"`
	Context            string `json:"context"`
	SupportingEvidence string `json:"supporting_evidence"`
}

// Merge produces meta-insights from day-level insights gathered over the
// given number of days. Generation or parse failure degrades to an empty
// list; day-level persistence has already happened and is not rolled back.
func (m *Merger) Merge(ctx context.Context, insights []Insight, days int) []Insight {
	if len(insights) == 0 {
		m.logger.Info("no day insights to merge")
		return nil
	}

	corpus := make([]corpusEntry, len(insights))
	for i, in := range insights {
		corpus[i] = corpusEntry{
			Title:              in.Title,
			Insight:            in.Description,
			Context:            in.Context,
			SupportingEvidence: in.SupportingEvidence,
		}
	}
	serialized, err := json.MarshalIndent(corpus, "", "  ")
	if err != nil {
		m.logger.Error("failed to serialize insight corpus", "error", err)
		return nil
	}

	prompt := fmt.Sprintf(synthesisPrompt, days, m.userName, string(serialized))

	raw, err := m.llm.Complete(ctx, []llm.Part{llm.TextPart(prompt)}, m.model, nil)
	if err != nil {
		m.logger.Error("meta-insight synthesis failed", "error", err)
		return nil
	}

	var resp metaResponse
	if err := jsonx.Parse(raw, &resp); err != nil {
		m.logger.Error("meta-insight response unparseable", "error", err)
		return nil
	}

	merged := make([]Insight, 0, len(resp.Insights))
	for _, in := range resp.Insights {
		if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Insight) == "" {
			m.logger.Warn("dropping meta-insight without title or body")
			continue
		}
		// Meta rows must carry a tagline; the title stands in when the
		// model omits one.
		tagline := strings.TrimSpace(in.Tagline)
		if tagline == "" {
			tagline = in.Title
		}
		merged = append(merged, Insight{
			Title:              in.Title,
			Tagline:            tagline,
			Description:        in.Insight,
			Context:            in.Context,
			SupportingEvidence: in.Reasoning,
			Meta:               true,
		})
	}

	m.logger.Info("meta-insights merged", "days", days, "day_insights", len(insights), "meta_insights", len(merged))
	return merged
}
