// Command example demonstrates the hastic client against an in-process
// mock server: it checks availability, submits a segment diff, and follows
// the unit status with a polling sequence until Ctrl-C.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"os/signal"
	"syscall"
	"time"

	hastic "github.com/songjiao/hastic-grafana-app"
)

func main() {
	server := newMockServer()
	defer server.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	svc, err := hastic.New(server.URL,
		hastic.WithLogger(logger),
		hastic.WithNotifier(hastic.NotifierFunc(func(level hastic.Level, message string) {
			fmt.Printf("[%s] %s\n", level, message)
		})),
	)
	if err != nil {
		logger.Error("failed to create hastic client", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !svc.CheckAvailability(ctx) {
		os.Exit(1)
	}

	ids, err := svc.UpdateSegments(ctx, "demo-unit", []hastic.Segment{
		{From: 1000, To: 2000, Labeled: true},
	}, nil)
	if err != nil {
		logger.Error("segment sync failed", "error", err)
		os.Exit(1)
	}
	fmt.Println("assigned segment ids:", ids)

	seq, err := svc.PollStatus("demo-unit", time.Second)
	if err != nil {
		logger.Error("failed to create status poll", "error", err)
		os.Exit(1)
	}
	defer seq.Stop()

	for {
		status, err := seq.Next(ctx)
		if errors.Is(err, context.Canceled) {
			return
		}
		if err != nil {
			logger.Error("status poll failed", "error", err)
			return
		}
		fmt.Println("unit status:", status.Status)
		if status.Status == "READY" {
			return
		}
	}
}

// newMockServer serves just enough of the Hastic API for the demo.
func newMockServer() *httptest.Server {
	polls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"packageVersion": "0.4.2",
			"nodeVersion":    "v12.16.1",
		})
	})
	mux.HandleFunc("/segments", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"addedIds": []string{"seg-1"}})
	})
	mux.HandleFunc("/analyticUnits/status", func(w http.ResponseWriter, r *http.Request) {
		polls++
		status := "LEARNING"
		if polls > 2 {
			status = "READY"
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": status})
	})
	return httptest.NewServer(mux)
}
