package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/statecraft/tricode/internal/model"
)

// Renderer writes coded story results as tab-separated event records or as
// a JSON report.
type Renderer struct {
	output model.OutputConfig
}

func NewRenderer(output model.OutputConfig) *Renderer {
	return &Renderer{output: output}
}

// WriteTSV writes one line per event: sentence id, story date, source code,
// target code, event code, then the optional issue, root and text columns.
// Discarded and skipped sentences produce no lines.
func (r *Renderer) WriteTSV(w io.Writer, results []StoryResult) error {
	for _, story := range results {
		if story.Discarded {
			continue
		}
		for _, sent := range story.Sentences {
			for _, ev := range sent.Events {
				fields := []string{sent.ID, sent.Date, ev.Source, ev.Target, ev.Code}
				if len(sent.Issues) > 0 {
					fields = append(fields, issueField(sent.Issues))
				}
				if r.output.WriteActorRoot {
					fields = append(fields, ev.SourceRoot, ev.TargetRoot)
				}
				if r.output.WriteActorText {
					fields = append(fields, ev.SourceText, ev.TargetText)
				}
				if _, err := fmt.Fprintln(w, strings.Join(fields, "\t")); err != nil {
					return fmt.Errorf("write events: %w", err)
				}
			}
		}
	}
	return nil
}

func issueField(issues []model.Issue) string {
	parts := make([]string, len(issues))
	for i, issue := range issues {
		parts[i] = fmt.Sprintf("%s:%d", issue.Code, issue.Count)
	}
	return strings.Join(parts, ",")
}

// report is the JSON output document.
type report struct {
	Summary model.Summary `json:"summary"`
	Stories []StoryResult `json:"stories"`
}

// WriteJSON writes the full result set with the batch summary.
func (r *Renderer) WriteJSON(w io.Writer, results []StoryResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report{Summary: Summarize(results), Stories: results}); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// WriteSummary prints the batch counters in a fixed human-readable layout.
func (r *Renderer) WriteSummary(w io.Writer, s model.Summary) {
	fmt.Fprintf(w, "stories:            %d\n", s.Stories)
	fmt.Fprintf(w, "sentences:          %d\n", s.Sentences)
	fmt.Fprintf(w, "events:             %d\n", s.Events)
	fmt.Fprintf(w, "story discards:     %d\n", s.DiscardStory)
	fmt.Fprintf(w, "sentence discards:  %d\n", s.DiscardSent)
	fmt.Fprintf(w, "without events:     %d\n", s.EmptySentence)
}
