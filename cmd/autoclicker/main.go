// Package main - autoclicker
// Load generator: many websocket clients playing against one academy server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/MRamiBalles/DevLearnAcademy/internal/network"
)

// Config for the autoclicker
type Config struct {
	ServerURL      string
	NumClients     int
	ActionInterval time.Duration
	TestDuration   time.Duration
}

// Stats tracks performance metrics
type Stats struct {
	MessagesSent     int64
	MessagesReceived int64
	Rejected         int64
	Errors           int64
	Latencies        []time.Duration
	mu               sync.Mutex
}

// Weighted action mix: mostly clicks, some studying and resting.
var actionMix = []network.PlayerAction{
	{Type: network.ActionClick},
	{Type: network.ActionClick},
	{Type: network.ActionClick},
	{Type: network.ActionClick},
	{Type: network.ActionClick},
	{Type: network.ActionLesson, ID: "hello-world"},
	{Type: network.ActionChallenge, ID: "fizzbuzz"},
	{Type: network.ActionRest},
}

func main() {
	cfg := Config{}

	cmd := &cobra.Command{
		Use:   "autoclicker",
		Short: "Hammer an academy server with websocket actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.TestDuration)
			defer cancel()
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Server: %s\nClients: %d\nInterval: %v\nDuration: %v\n",
				cfg.ServerURL, cfg.NumClients, cfg.ActionInterval, cfg.TestDuration)

			started := time.Now()
			stats := runLoad(ctx, cfg)
			return printResults(cmd, stats, time.Since(started))
		},
	}
	cmd.Flags().StringVar(&cfg.ServerURL, "url", "ws://localhost:8080/ws", "websocket server URL")
	cmd.Flags().IntVar(&cfg.NumClients, "clients", 10, "number of concurrent clients")
	cmd.Flags().DurationVar(&cfg.ActionInterval, "interval", 100*time.Millisecond, "action interval per client")
	cmd.Flags().DurationVar(&cfg.TestDuration, "duration", 30*time.Second, "test duration")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runLoad(ctx context.Context, cfg Config) *Stats {
	stats := &Stats{Latencies: make([]time.Duration, 0, 10000)}

	var wg sync.WaitGroup
	for i := 0; i < cfg.NumClients; i++ {
		wg.Add(1)
		go func(clientID int) {
			defer wg.Done()
			runClient(ctx, clientID, cfg, stats)
		}(i)

		// Stagger client starts to avoid thundering herd
		time.Sleep(10 * time.Millisecond)
	}
	wg.Wait()
	return stats
}

func runClient(ctx context.Context, clientID int, cfg Config, stats *Stats) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, cfg.ServerURL, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "client %d: connection failed: %v\n", clientID, err)
		atomic.AddInt64(&stats.Errors, 1)
		return
	}
	defer conn.Close()

	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			atomic.AddInt64(&stats.MessagesReceived, 1)
			var msg network.Message
			if json.Unmarshal(data, &msg) == nil && msg.Type == network.MsgTypeActionRejected {
				atomic.AddInt64(&stats.Rejected, 1)
			}
		}
	}()

	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(clientID)))
	ticker := time.NewTicker(cfg.ActionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			action := actionMix[rng.Intn(len(actionMix))]
			start := time.Now()
			if err := conn.WriteJSON(action); err != nil {
				atomic.AddInt64(&stats.Errors, 1)
				return
			}
			atomic.AddInt64(&stats.MessagesSent, 1)

			stats.mu.Lock()
			stats.Latencies = append(stats.Latencies, time.Since(start))
			stats.mu.Unlock()
		}
	}
}

func printResults(cmd *cobra.Command, stats *Stats, elapsed time.Duration) error {
	out := cmd.OutOrStdout()
	sent := atomic.LoadInt64(&stats.MessagesSent)
	recv := atomic.LoadInt64(&stats.MessagesReceived)
	rejected := atomic.LoadInt64(&stats.Rejected)
	errs := atomic.LoadInt64(&stats.Errors)

	fmt.Fprintf(out, "\nMessages Sent:     %d\n", sent)
	fmt.Fprintf(out, "Messages Received: %d\n", recv)
	fmt.Fprintf(out, "Actions Rejected:  %d\n", rejected)
	fmt.Fprintf(out, "Errors:            %d\n", errs)
	fmt.Fprintf(out, "Throughput:        %.2f msg/sec\n", float64(sent)/elapsed.Seconds())

	stats.mu.Lock()
	defer stats.mu.Unlock()
	if len(stats.Latencies) > 0 {
		var total time.Duration
		lo, hi := stats.Latencies[0], stats.Latencies[0]
		for _, l := range stats.Latencies {
			total += l
			lo = min(lo, l)
			hi = max(hi, l)
		}
		fmt.Fprintf(out, "Latency: min %v  avg %v  max %v\n", lo, total/time.Duration(len(stats.Latencies)), hi)
	}

	if errs > 0 {
		return fmt.Errorf("%d client errors", errs)
	}
	return nil
}
