package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/statecraft/tricode/internal/dict"
	"github.com/statecraft/tricode/internal/ingest"
	"github.com/statecraft/tricode/internal/pipeline"
	"github.com/statecraft/tricode/internal/worker"
)

var (
	verbFile       string
	actorFiles     []string
	agentFile      string
	discardFile    string
	issueFile      string
	outTSV         string
	outJSON        string
	workers        int
	requireDyad    bool
	newActorLength int
	writeRoot      bool
	writeText      bool
	stopOnError    bool
)

// codeCmd represents the code command
var codeCmd = &cobra.Command{
	Use:   "code <stories.yaml> [more.yaml ...]",
	Short: "Code event triples from story files",
	Long: `Code reads YAML story files and emits one event record per coded
source/target/action triple.

Each story carries a date and its sentences; each sentence carries its
text and a bracketed constituency parse. Dictionaries come from the
config file or from flags.

Example:
  tricode code stories.yaml
  tricode code stories.yaml --out events.tsv --json report.json
  tricode code part1.yaml part2.yaml --workers 4 --write-actor-root`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCode,
}

func init() {
	rootCmd.AddCommand(codeCmd)

	// Dictionary flags
	codeCmd.Flags().StringVar(&verbFile, "verbs", "", "verb dictionary file")
	codeCmd.Flags().StringSliceVar(&actorFiles, "actors", nil, "actor dictionary file (repeatable)")
	codeCmd.Flags().StringVar(&agentFile, "agents", "", "agent dictionary file")
	codeCmd.Flags().StringVar(&discardFile, "discards", "", "discard phrase file (optional)")
	codeCmd.Flags().StringVar(&issueFile, "issues", "", "issue phrase file (optional)")

	// Output flags
	codeCmd.Flags().StringVar(&outTSV, "out", "-", "event TSV path ('-' for stdout)")
	codeCmd.Flags().StringVar(&outJSON, "json", "", "JSON report path (optional)")
	codeCmd.Flags().BoolVar(&writeRoot, "write-actor-root", false, "append root actor phrases to records")
	codeCmd.Flags().BoolVar(&writeText, "write-actor-text", false, "append matched entity text to records")

	// Coding flags
	codeCmd.Flags().IntVar(&workers, "workers", 1, "stories coded in parallel")
	codeCmd.Flags().BoolVar(&requireDyad, "require-dyad", true, "drop events with an unresolved side")
	codeCmd.Flags().IntVar(&newActorLength, "new-actor-length", 0, "max words for quoted unresolved actors (0 disables)")
	codeCmd.Flags().BoolVar(&stopOnError, "stop-on-error", false, "abort the batch on the first sentence failure")
}

func runCode(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// flags override the config file only when set
	flags := cmd.Flags()
	if flags.Changed("verbs") {
		cfg.Dictionaries.VerbFile = verbFile
	}
	if flags.Changed("actors") {
		cfg.Dictionaries.ActorFiles = actorFiles
	}
	if flags.Changed("agents") {
		cfg.Dictionaries.AgentFile = agentFile
	}
	if flags.Changed("discards") {
		cfg.Dictionaries.DiscardFile = discardFile
	}
	if flags.Changed("issues") {
		cfg.Dictionaries.IssueFile = issueFile
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("require-dyad") {
		cfg.Coding.RequireDyad = requireDyad
	}
	if flags.Changed("new-actor-length") {
		cfg.Coding.NewActorLength = newActorLength
	}
	if flags.Changed("stop-on-error") {
		cfg.Coding.StopOnError = stopOnError
	}
	if flags.Changed("write-actor-root") {
		cfg.Output.WriteActorRoot = writeRoot
	}
	if flags.Changed("write-actor-text") {
		cfg.Output.WriteActorText = writeText
	}
	cfg.Output.Verbose = verbose

	log := newLogger()
	defer log.Sync()

	tables, err := dict.Load(cfg.Dictionaries, log)
	if err != nil {
		return err
	}
	stories, err := ingest.LoadAll(args, log)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Loaded %d stories from %d files\n", len(stories), len(args))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	coder := pipeline.NewCoder(cfg, tables, log)
	results := worker.NewBatchCoder(coder, cfg.Workers).Process(ctx, stories)
	for _, res := range results {
		if res.Err != nil {
			return res.Err
		}
	}

	renderer := pipeline.NewRenderer(cfg.Output)
	if err := renderTSV(renderer, results); err != nil {
		return err
	}
	if outJSON != "" {
		f, err := os.Create(outJSON)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		defer f.Close()
		if err := renderer.WriteJSON(f, results); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote JSON report: %s\n", outJSON)
		}
	}

	renderer.WriteSummary(os.Stderr, pipeline.Summarize(results))
	return nil
}

func renderTSV(renderer *pipeline.Renderer, results []pipeline.StoryResult) error {
	var w io.Writer = os.Stdout
	if outTSV != "-" && outTSV != "" {
		f, err := os.Create(outTSV)
		if err != nil {
			return fmt.Errorf("create events: %w", err)
		}
		defer f.Close()
		w = f
	}
	return renderer.WriteTSV(w, results)
}
