package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"ai-travel-planner/internal/app"
	"ai-travel-planner/internal/config"
	"ai-travel-planner/internal/itinerary"
)

const cliUser = "cli"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := app.NewLogger(cfg.LogFormat, os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := app.Bootstrap(ctx, cfg, nil, logger)
	if err != nil {
		logger.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}

	err = run(ctx, rt.App, os.Args[1], os.Args[2:])
	if cerr := rt.Close(); cerr != nil {
		logger.Warn("Failed to close resources", "error", cerr)
	}
	if err != nil {
		logger.Error("Command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app.App, command string, args []string) error {
	switch command {
	case "plan":
		return planCmd(ctx, a, args)
	case "show":
		id, err := oneID("show", args)
		if err != nil {
			return err
		}
		rec, err := a.Show(ctx, id)
		if err != nil {
			return err
		}
		fmt.Print(itinerary.RenderText(rec.Itinerary))
		return nil
	case "list":
		fs := flag.NewFlagSet("list", flag.ExitOnError)
		user := fs.String("user", "", "Only itineraries of this user")
		limit := fs.Int("limit", 10, "Maximum number of itineraries")
		fs.Parse(args)
		records, err := a.Recent(ctx, *user, *limit)
		if err != nil {
			return err
		}
		for _, r := range records {
			marker := ""
			if r.Fallback {
				marker = " (basic)"
			}
			fmt.Printf("%s  %s  %-20s %d days%s\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Itinerary.Destination, r.Itinerary.Duration, marker)
		}
		return nil
	case "revise":
		if len(args) < 2 {
			return fmt.Errorf("usage: revise <id> <modification>")
		}
		revised, err := a.Revise(ctx, args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Print(itinerary.RenderText(revised))
		return nil
	case "export":
		id, err := oneID("export", args)
		if err != nil {
			return err
		}
		paths, err := a.Export(ctx, id)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Println(p)
		}
		return nil
	case "ics":
		fs := flag.NewFlagSet("ics", flag.ExitOnError)
		out := fs.String("o", "", "Write the calendar to this file instead of stdout")
		fs.Parse(args)
		id, err := oneID("ics", fs.Args())
		if err != nil {
			return err
		}
		cal, err := a.Calendar(ctx, id)
		if err != nil {
			return err
		}
		if *out == "" {
			fmt.Print(cal)
			return nil
		}
		return os.WriteFile(*out, []byte(cal), 0644)
	case "publish":
		fs := flag.NewFlagSet("publish", flag.ExitOnError)
		live := fs.Bool("publish", false, "Publish immediately instead of saving a draft")
		fs.Parse(args)
		id, err := oneID("publish", fs.Args())
		if err != nil {
			return err
		}
		post, err := a.Publish(ctx, id, *live)
		if err != nil {
			return err
		}
		fmt.Printf("Created %s post %q %s\n", post.Status, post.Title, post.URL)
		return nil
	case "route":
		fs := flag.NewFlagSet("route", flag.ExitOnError)
		profile := fs.String("profile", "", "OpenRouteService profile (default driving-car)")
		fs.Parse(args)
		id, err := oneID("route", fs.Args())
		if err != nil {
			return err
		}
		legs, err := a.Routes(ctx, id, *profile)
		if err != nil {
			return err
		}
		for _, l := range legs {
			if l.Err != nil {
				fmt.Printf("%s -> %s: unavailable (%v)\n", l.From, l.To, l.Err)
				continue
			}
			fmt.Printf("%s -> %s: %.2f km, %.0f min\n", l.From, l.To, l.Route.DistanceKM, l.Route.DurationMin)
		}
		return nil
	case "usage":
		fs := flag.NewFlagSet("usage", flag.ExitOnError)
		days := fs.Int("days", 7, "Report the last N days")
		fs.Parse(args)
		usage, err := a.Usage(ctx, *days)
		if err != nil {
			return err
		}
		for _, d := range usage {
			fmt.Printf("%s  %6d prompt  %6d completion  %3d calls  %3d failed\n", d.Date, d.TotalPrompt, d.TotalCompletion, d.TotalExecution, d.Failures)
		}
		return nil
	case "metrics-cleanup":
		fs := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := fs.Int("days", 30, "Keep records for the last N days")
		fs.Parse(args)
		affected, err := a.CleanupMetrics(ctx, *days)
		if err != nil {
			return err
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func planCmd(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("plan", flag.ExitOnError)
	var req itinerary.TripRequest
	fs.StringVar(&req.Destination, "destination", "", "Destination city")
	fs.StringVar(&req.Budget, "budget", "", "Total budget, e.g. $1500")
	fs.StringVar(&req.ArrivalDate, "arrival", "", "Arrival date (mm/dd/yyyy)")
	days := fs.String("days", "", "Trip length in days")
	fs.StringVar(&req.Travelers, "people", "", "Number of travelers")
	fs.StringVar(&req.Accommodation, "accommodation", "", "Accommodation type")
	fs.StringVar(&req.Activities, "activities", "", "Comma separated interests")
	user := fs.String("user", cliUser, "Owner of the stored itinerary")
	fs.Parse(args)
	req.Duration = itinerary.ParseDuration(*days)

	res, err := a.PlanTrip(ctx, *user, req)
	if err != nil {
		return err
	}
	if res.Fallback {
		fmt.Fprintf(os.Stderr, "Detailed generation failed (%v); showing a basic itinerary.\n", res.Reason)
	}
	fmt.Print(itinerary.RenderText(res.Itinerary))
	fmt.Printf("\nSaved as %s\n", res.ID)
	return nil
}

func oneID(command string, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("usage: %s <id>", command)
	}
	return args[0], nil
}

func printUsage() {
	fmt.Println("Usage: ai-travel-planner <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  plan               Build and store an itinerary (-destination -budget -arrival -days -people -accommodation -activities)")
	fmt.Println("  show <id>          Print a stored itinerary")
	fmt.Println("  list               List recent itineraries")
	fmt.Println("  revise <id> <text> Apply a change to a stored itinerary")
	fmt.Println("  export <id>        Write JSON, text and calendar files")
	fmt.Println("  ics <id>           Print the itinerary as iCalendar")
	fmt.Println("  publish <id>       Create a Ghost post from the itinerary")
	fmt.Println("  route <id>         Routes from the hotel to each restaurant")
	fmt.Println("  usage              Generation usage per day")
	fmt.Println("  metrics-cleanup    Remove old metric records")
}
