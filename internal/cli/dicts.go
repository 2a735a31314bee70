package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/statecraft/tricode/internal/dict"
)

var dumpVerbs bool

// dictsCmd represents the dicts command
var dictsCmd = &cobra.Command{
	Use:   "dicts",
	Short: "Compile the dictionaries and report their statistics",
	Long: `Dicts compiles the configured dictionaries exactly as the code
command would and prints what was loaded: entry counts per table, synset
counts, and optionally the verb entries themselves.

Useful for checking a dictionary edit before a coding run; malformed
entries are reported as warnings during compilation.`,
	RunE: runDicts,
}

func init() {
	rootCmd.AddCommand(dictsCmd)

	dictsCmd.Flags().StringVar(&verbFile, "verbs", "", "verb dictionary file")
	dictsCmd.Flags().StringSliceVar(&actorFiles, "actors", nil, "actor dictionary file (repeatable)")
	dictsCmd.Flags().StringVar(&agentFile, "agents", "", "agent dictionary file")
	dictsCmd.Flags().StringVar(&discardFile, "discards", "", "discard phrase file (optional)")
	dictsCmd.Flags().StringVar(&issueFile, "issues", "", "issue phrase file (optional)")
	dictsCmd.Flags().BoolVar(&dumpVerbs, "dump-verbs", false, "list the primary verb entries")
}

func runDicts(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
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

	log := newLogger()
	defer log.Sync()

	tables, err := dict.Load(cfg.Dictionaries, log)
	if err != nil {
		return err
	}

	primaries := 0
	patterns := 0
	for _, entry := range tables.Verbs.Entries {
		if entry.Primary {
			primaries++
			patterns += len(entry.Patterns)
		}
	}

	fmt.Printf("verb forms:        %d\n", len(tables.Verbs.Entries))
	fmt.Printf("primary verbs:     %d\n", primaries)
	fmt.Printf("verb patterns:     %d\n", patterns)
	fmt.Printf("synsets:           %d\n", len(tables.Verbs.Synsets))
	fmt.Printf("actor keywords:    %d\n", len(tables.Actors.Patterns))
	fmt.Printf("actor code sets:   %d\n", len(tables.Actors.Codes))
	fmt.Printf("agent keywords:    %d\n", len(tables.Agents.Patterns))
	fmt.Printf("discard phrases:   %d\n", tables.Discards.Len())
	fmt.Printf("issue phrases:     %d\n", tables.Issues.Len())

	if dumpVerbs {
		var names []string
		for name, entry := range tables.Verbs.Entries {
			if entry.Primary {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		fmt.Println()
		for _, name := range names {
			entry := tables.Verbs.Entries[name]
			fmt.Printf("%-20s [%s] %d patterns\n", name, entry.Code, len(entry.Patterns))
		}
	}
	return nil
}
