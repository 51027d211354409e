package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/MRamiBalles/GiftQuest/server/internal/network"
)

// agitateConfig drives the load generator.
type agitateConfig struct {
	ServerURL      string
	NumClients     int
	ActionInterval time.Duration
	TestDuration   time.Duration
	ResultsFile    string
}

// agitateStats tracks performance across all simulated players.
type agitateStats struct {
	MessagesSent     int64
	MessagesReceived int64
	Errors           int64
	Latencies        []time.Duration
	mu               sync.Mutex
}

var riddleGuesses = []string{"keyboard", "mouse", "a key", "piano", "KEYBOARD", "door"}

func newAgitateCmd() *cobra.Command {
	cfg := agitateConfig{}
	cmd := &cobra.Command{
		Use:   "agitate",
		Short: "Stress a running server with concurrent random players",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "=========================================")
			fmt.Fprintln(out, "Gift Quest load generator")
			fmt.Fprintln(out, "=========================================")
			fmt.Fprintf(out, "Server:   %s\n", cfg.ServerURL)
			fmt.Fprintf(out, "Clients:  %d\n", cfg.NumClients)
			fmt.Fprintf(out, "Interval: %v\n", cfg.ActionInterval)
			fmt.Fprintf(out, "Duration: %v\n", cfg.TestDuration)

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.TestDuration)
			defer cancel()
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
			defer stop()

			started := time.Now()
			stats := runAgitation(ctx, out, cfg)
			return printAgitation(out, stats, cfg, time.Since(started))
		},
	}
	cmd.Flags().StringVar(&cfg.ServerURL, "url", "ws://localhost:8080/ws", "WebSocket server URL")
	cmd.Flags().IntVar(&cfg.NumClients, "clients", 50, "number of concurrent players")
	cmd.Flags().DurationVar(&cfg.ActionInterval, "interval", 100*time.Millisecond, "action interval per player")
	cmd.Flags().DurationVar(&cfg.TestDuration, "duration", 60*time.Second, "test duration")
	cmd.Flags().StringVar(&cfg.ResultsFile, "out", "", "write the results as JSON to this file")
	return cmd
}

func runAgitation(ctx context.Context, out io.Writer, cfg agitateConfig) *agitateStats {
	stats := &agitateStats{
		Latencies: make([]time.Duration, 0, 10000),
	}

	var wg sync.WaitGroup
	for i := 0; i < cfg.NumClients; i++ {
		wg.Add(1)
		go func(clientID int) {
			defer wg.Done()
			runAgitator(ctx, clientID, cfg, stats)
		}(i)

		// Stagger starts to avoid a thundering herd.
		time.Sleep(10 * time.Millisecond)
	}
	fmt.Fprintf(out, "\nAll %d clients started\n", cfg.NumClients)

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fmt.Fprintf(out, "Progress: sent=%d recv=%d errors=%d\n",
					atomic.LoadInt64(&stats.MessagesSent),
					atomic.LoadInt64(&stats.MessagesReceived),
					atomic.LoadInt64(&stats.Errors))
			}
		}
	}()

	wg.Wait()
	return stats
}

func runAgitator(ctx context.Context, clientID int, cfg agitateConfig, stats *agitateStats) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, cfg.ServerURL, nil)
	if err != nil {
		atomic.AddInt64(&stats.Errors, 1)
		return
	}
	defer conn.Close()

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			atomic.AddInt64(&stats.MessagesReceived, 1)
		}
	}()

	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(clientID)))
	send := func(action network.PlayerAction) bool {
		start := time.Now()
		if err := conn.WriteJSON(action); err != nil {
			atomic.AddInt64(&stats.Errors, 1)
			return false
		}
		latency := time.Since(start)
		atomic.AddInt64(&stats.MessagesSent, 1)

		stats.mu.Lock()
		stats.Latencies = append(stats.Latencies, latency)
		stats.mu.Unlock()
		return true
	}

	if !send(network.PlayerAction{Type: network.ActionStart}) {
		return
	}

	ticker := time.NewTicker(cfg.ActionInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-ticker.C:
			if !send(randomAction(rng)) {
				return
			}
		}
	}
}

// randomAction mixes valid and invalid inputs for every stage. The server
// ignores whatever does not apply to the active stage.
func randomAction(rng *rand.Rand) network.PlayerAction {
	switch n := rng.Intn(100); {
	case n < 10:
		return network.PlayerAction{Type: network.ActionRiddle, Answer: riddleGuesses[rng.Intn(len(riddleGuesses))]}
	case n < 55:
		return network.PlayerAction{Type: network.ActionCard, CardID: rng.Intn(9)}
	case n < 95:
		return network.PlayerAction{Type: network.ActionPad, PadID: rng.Intn(5)}
	case n < 98:
		return network.PlayerAction{Type: network.ActionOpenGift}
	default:
		return network.PlayerAction{Type: network.ActionRestart}
	}
}

func printAgitation(out io.Writer, stats *agitateStats, cfg agitateConfig, elapsed time.Duration) error {
	sent := atomic.LoadInt64(&stats.MessagesSent)
	recv := atomic.LoadInt64(&stats.MessagesReceived)
	errs := atomic.LoadInt64(&stats.Errors)
	throughput := float64(sent) / elapsed.Seconds()
	errorRate := float64(errs) / float64(sent+1)

	fmt.Fprintln(out, "\n=========================================")
	fmt.Fprintln(out, "RESULTS")
	fmt.Fprintln(out, "=========================================")
	fmt.Fprintf(out, "Messages sent:     %d\n", sent)
	fmt.Fprintf(out, "Messages received: %d\n", recv)
	fmt.Fprintf(out, "Errors:            %d\n", errs)
	fmt.Fprintf(out, "Error rate:        %.2f%%\n", errorRate*100)
	fmt.Fprintf(out, "Throughput:        %.2f msg/sec\n", throughput)

	stats.mu.Lock()
	if len(stats.Latencies) > 0 {
		var total time.Duration
		lo, hi := stats.Latencies[0], stats.Latencies[0]
		for _, l := range stats.Latencies {
			total += l
			if l < lo {
				lo = l
			}
			if l > hi {
				hi = l
			}
		}
		fmt.Fprintf(out, "\nWrite latency: min %v  avg %v  max %v\n",
			lo, total/time.Duration(len(stats.Latencies)), hi)
	}
	stats.mu.Unlock()

	switch {
	case errs == 0:
		fmt.Fprintln(out, "\nPASSED: no errors under load")
	case errorRate < 0.05:
		fmt.Fprintln(out, "\nWARNING: some errors detected")
	default:
		fmt.Fprintln(out, "\nFAILED: high error rate")
	}

	if cfg.ResultsFile == "" {
		return nil
	}
	results := map[string]interface{}{
		"messages_sent":      sent,
		"messages_received":  recv,
		"errors":             errs,
		"throughput_per_sec": throughput,
		"config": map[string]interface{}{
			"url":      cfg.ServerURL,
			"clients":  cfg.NumClients,
			"interval": cfg.ActionInterval.String(),
			"duration": cfg.TestDuration.String(),
		},
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfg.ResultsFile, data, 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	fmt.Fprintf(out, "Results saved to %s\n", cfg.ResultsFile)
	return nil
}
