// Package cli is the planner command line: offline scheduling of jobs and
// workers described in a YAML (or JSON) file, printing results as JSON.
//
//	planner batch --input plan.yaml --optimize --now 2025-03-10T08:00:00Z
//	planner job --input job.yaml
//	planner route --input route.yaml --routing-url https://routing.internal
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"fieldservice/internal/adapters/out/routing"
	"fieldservice/internal/core/domain/services"
	"fieldservice/internal/core/ports"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type options struct {
	input         string
	now           string
	routingURL    string
	routingAPIKey string
	verbose       bool
}

// NewRootCommand builds the planner command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "planner",
		Short: "Plan field-service job assignments offline",
		Long: `planner schedules jobs against a workforce described in a file,
using the same ranking and constraints as the scheduling service.

Input files are YAML; JSON is accepted as well. Use "-" to read stdin.`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.input, "input", "i", "", "input file, or - for stdin")
	flags.StringVar(&opts.now, "now", "", "planning time (RFC3339), defaults to the current time")
	flags.StringVar(&opts.routingURL, "routing-url", "", "routing service base URL; Haversine estimates when empty")
	flags.StringVar(&opts.routingAPIKey, "routing-api-key", "", "routing service API key")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")
	_ = root.MarkPersistentFlagRequired("input")

	root.AddCommand(
		newBatchCommand(opts),
		newJobCommand(opts),
		newRouteCommand(opts),
	)
	return root
}

// planner holds the services of one invocation.
type planner struct {
	clock      services.Clock
	estimator  *services.TravelEstimator
	generator  *services.CandidateGenerator
	calculator services.ScheduleTimeCalculator
	logger     *slog.Logger
}

func (o *options) planner(cmd *cobra.Command) (*planner, error) {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	var clock services.Clock = services.SystemClock{}
	if o.now != "" {
		now, err := time.Parse(time.RFC3339, o.now)
		if err != nil {
			return nil, fmt.Errorf("--now: %w", err)
		}
		clock = services.FixedClock(now)
	}

	var provider ports.TravelTimeProvider
	if o.routingURL != "" {
		provider = routing.NewHTTPProvider(routing.Config{BaseURL: o.routingURL, APIKey: o.routingAPIKey}, logger)
	}
	estimator := services.NewTravelEstimator(provider, services.WithEstimatorLogger(logger))

	return &planner{
		clock:      clock,
		estimator:  estimator,
		generator:  services.NewCandidateGenerator(estimator, services.NewWindowAvailabilityScorer(clock), nil),
		calculator: services.NewScheduleTimeCalculator(clock),
		logger:     logger,
	}, nil
}

func (o *options) decodeInput(cmd *cobra.Command, into any) error {
	var (
		data []byte
		err  error
	)
	if o.input == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(o.input)
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if err = yaml.Unmarshal(data, into); err != nil {
		return fmt.Errorf("parse input: %w", err)
	}
	return nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
