package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-events-console/internal/repository"
	appErrors "github.com/noah-isme/campus-events-console/pkg/errors"
)

type check struct {
	Name     string
	Critical bool
	Run      func(ctx context.Context) (int, error)
}

type result struct {
	Check    check
	Rows     int
	Err      error
	Duration time.Duration
}

func main() {
	var (
		baseURL string
		timeout time.Duration
		eventID int64
	)

	flag.StringVar(&baseURL, "base", "http://localhost:5000", "Event backend base URL")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "Per-request timeout")
	flag.Int64Var(&eventID, "event", 0, "Event id used for the per-event endpoints (default: first listed event)")
	flag.Parse()

	client, err := repository.NewAPIClient(repository.APIClientConfig{
		BaseURL:   baseURL,
		Timeout:   timeout,
		UserAgent: "campus-events-contract-check",
		Logger:    zap.NewNop(),
	})
	if err != nil {
		log.Fatalf("failed to init client: %v", err)
	}

	events := repository.NewEventRepository(client)
	registrations := repository.NewRegistrationRepository(client)
	attendance := repository.NewAttendanceRepository(client)
	feedback := repository.NewFeedbackRepository(client)
	reports := repository.NewReportRepository(client)

	ctx := context.Background()
	checks := []check{
		{Name: "GET /health", Critical: true, Run: func(ctx context.Context) (int, error) {
			return 0, client.Ping(ctx)
		}},
		{Name: "GET /events", Critical: true, Run: func(ctx context.Context) (int, error) {
			rows, err := events.List(ctx)
			return len(rows), err
		}},
		{Name: "GET /staff/events", Critical: true, Run: func(ctx context.Context) (int, error) {
			rows, err := events.ListWithCounts(ctx)
			if err == nil && eventID == 0 && len(rows) > 0 {
				eventID = rows[0].ID
			}
			return len(rows), err
		}},
		{Name: "GET /registrations", Run: func(ctx context.Context) (int, error) {
			rows, err := registrations.ListAll(ctx)
			return len(rows), err
		}},
		{Name: "GET /attendance", Run: func(ctx context.Context) (int, error) {
			rows, err := attendance.ListAll(ctx)
			return len(rows), err
		}},
		{Name: "GET /staff/feedback", Run: func(ctx context.Context) (int, error) {
			rows, err := feedback.List(ctx)
			return len(rows), err
		}},
		{Name: "GET /reports/registrations", Run: func(ctx context.Context) (int, error) {
			rows, err := reports.Registrations(ctx)
			return len(rows), err
		}},
		{Name: "GET /reports/top_students", Run: func(ctx context.Context) (int, error) {
			rows, err := reports.TopStudents(ctx)
			return len(rows), err
		}},
		{Name: "GET /staff/registrations/{id}", Critical: true, Run: func(ctx context.Context) (int, error) {
			if eventID == 0 {
				return 0, errNoEvent
			}
			rows, err := registrations.ListByEvent(ctx, eventID)
			return len(rows), err
		}},
		{Name: "GET /staff/attendance/{id}", Critical: true, Run: func(ctx context.Context) (int, error) {
			if eventID == 0 {
				return 0, errNoEvent
			}
			rows, err := attendance.ListByEvent(ctx, eventID)
			return len(rows), err
		}},
	}

	var (
		results  []result
		breaking int
		optional int
	)
	for _, c := range checks {
		start := time.Now()
		rows, err := c.Run(ctx)
		res := result{Check: c, Rows: rows, Err: err, Duration: time.Since(start)}
		if err != nil && err != errNoEvent {
			if c.Critical {
				breaking++
			} else {
				optional++
			}
		}
		results = append(results, res)
	}

	printReport(results)

	fmt.Printf("Breaking failures: %d, Optional failures: %d\n", breaking, optional)
	if breaking+optional > 0 {
		os.Exit(1)
	}
}

var errNoEvent = appErrors.Clone(appErrors.ErrNotFound, "no event available for per-event checks")

func printReport(results []result) {
	fmt.Println("Contract Check Report")
	fmt.Println("=====================")
	for _, res := range results {
		status := "OK"
		switch {
		case res.Err == errNoEvent:
			status = "SKIP"
		case res.Err != nil:
			status = "FAIL"
		}
		fmt.Printf("[%s] %s (%s)\n", status, res.Check.Name, res.Duration)
		if res.Err != nil {
			fmt.Printf("  Code: %s | Error: %v | Critical: %t\n", appErrors.CodeOf(res.Err), res.Err, res.Check.Critical)
		} else {
			fmt.Printf("  Rows decoded: %d\n", res.Rows)
		}
	}
}
