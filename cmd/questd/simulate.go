package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MRamiBalles/GiftQuest/server/internal/autoplay"
	"github.com/MRamiBalles/GiftQuest/server/internal/events"
	"github.com/MRamiBalles/GiftQuest/server/internal/infra/storage"
	"github.com/MRamiBalles/GiftQuest/server/internal/platform/metrics"
	"github.com/MRamiBalles/GiftQuest/server/internal/platform/random"
)

type simulateOptions struct {
	seed           int64
	riddleMistakes int
	memoryMistakes int
	recallMistakes int
	dbPath         string
	quiet          bool
}

func newSimulateCmd(root *rootOptions) *cobra.Command {
	opts := &simulateOptions{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play one quest in virtual time with a scripted player",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, err := root.load()
			if err != nil {
				return err
			}
			defer log.Sync()

			if !cmd.Flags().Changed("seed") {
				if opts.seed, err = random.NewSeed(); err != nil {
					return err
				}
			}

			botOpts := autoplay.Options{
				Seed:           opts.seed,
				RiddleMistakes: opts.riddleMistakes,
				MemoryMistakes: opts.memoryMistakes,
				RecallMistakes: opts.recallMistakes,
				Logger:         log,
			}
			if opts.dbPath != "" {
				db, err := storage.InitSQLite(opts.dbPath)
				if err != nil {
					return fmt.Errorf("init storage: %w", err)
				}
				defer closeDB(db, log)
				botOpts.Persister = storage.NewJournalWriter(
					storage.NewSQLiteEventRepository(db),
					storage.NewSQLiteSessionRepository(db),
					metrics.Get(),
				)
			}

			res, err := autoplay.New(botOpts).Run(cmd.Context())
			if res != nil {
				printSimulation(cmd.OutOrStdout(), opts.seed, res, opts.quiet)
			}
			return err
		},
	}
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "shuffle seed (random when unset)")
	cmd.Flags().IntVar(&opts.riddleMistakes, "riddle-mistakes", 0, "wrong riddle answers before the right one")
	cmd.Flags().IntVar(&opts.memoryMistakes, "memory-mistakes", 0, "mismatched pairs before matching")
	cmd.Flags().IntVar(&opts.recallMistakes, "recall-mistakes", 0, "failed sequence attempts before recalling")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "persist the journal to this SQLite file")
	cmd.Flags().BoolVar(&opts.quiet, "quiet", false, "print only the event counts")
	return cmd
}

func printSimulation(out io.Writer, seed int64, res *autoplay.Result, quiet bool) {
	fmt.Fprintf(out, "session %s  seed %d  finished=%t  virtual %s  steps %d\n\n",
		res.SessionID, seed, res.Finished, res.Elapsed, res.Steps)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if !quiet {
		fmt.Fprintln(tw, "SEQ\tTYPE\tSTAGE\tPAYLOAD")
		for _, e := range res.Events {
			payload := ""
			if e.Payload != nil {
				if data, err := json.Marshal(e.Payload); err == nil {
					payload = string(data)
				}
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", e.Seq, e.Type, e.Stage, payload)
		}
		fmt.Fprintln(tw)
	}

	counts := make(map[events.EventType]int)
	for _, e := range res.Events {
		counts[e.Type]++
	}
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, string(t))
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(tw, "%s\t%d\n", t, counts[events.EventType(t)])
	}
	tw.Flush()
}
