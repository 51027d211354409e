package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/MRamiBalles/GiftQuest/server/internal/infra/storage"
)

type journalOptions struct {
	dbPath string
	list   bool
	limit  int
	asJSON bool
}

func newJournalCmd(root *rootOptions) *cobra.Command {
	opts := &journalOptions{}
	cmd := &cobra.Command{
		Use:   "journal [session-id]",
		Short: "Print the recap of a stored session, or list recent sessions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := root.load()
			if err != nil {
				return err
			}
			defer log.Sync()

			path := opts.dbPath
			if path == "" {
				path = cfg.Storage.Path
			}
			db, err := storage.InitSQLite(path)
			if err != nil {
				return fmt.Errorf("init storage: %w", err)
			}
			defer closeDB(db, log)

			sessions := storage.NewSQLiteSessionRepository(db)
			out := cmd.OutOrStdout()

			if opts.list || len(args) == 0 {
				list, err := sessions.List(cmd.Context(), opts.limit)
				if err != nil {
					return err
				}
				if opts.asJSON {
					return writeJSON(out, list)
				}
				printSessions(out, list)
				return nil
			}

			recapper := storage.NewRecapper(storage.NewSQLiteEventRepository(db), sessions)
			recap, err := recapper.BuildRecap(cmd.Context(), args[0])
			if errors.Is(err, storage.ErrSessionNotFound) {
				return fmt.Errorf("no journal for session %q", args[0])
			}
			if err != nil {
				return err
			}
			if opts.asJSON {
				return writeJSON(out, recap)
			}
			printRecap(out, recap)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "SQLite file (defaults to storage.path)")
	cmd.Flags().BoolVar(&opts.list, "list", false, "list recent sessions")
	cmd.Flags().IntVar(&opts.limit, "limit", 20, "sessions to list")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print JSON")
	return cmd
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSessions(out io.Writer, list []storage.SessionSummary) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tSTAGE\tEVENTS\tCOMPLETED\tLAST UPDATED")
	for _, s := range list {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%t\t%s\n",
			s.SessionID, s.CurrentStage, s.EventCount, s.Completed(), s.LastUpdated.Format(time.RFC3339))
	}
	tw.Flush()
}

func printRecap(out io.Writer, r *storage.Recap) {
	fmt.Fprintf(out, "session %s  completed=%t  last stage %s  duration %s\n",
		r.SessionID, r.Completed, r.LastStage, r.Duration)
	fmt.Fprintf(out, "mistakes: riddle %d, memory %d, recall %d  faults %d\n\n",
		r.Mistakes.Riddle, r.Mistakes.Memory, r.Mistakes.Recall, r.Faults)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, e := range r.Events {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", e.Seq, e.Impact, e.EventType, e.Summary)
	}
	tw.Flush()
}
