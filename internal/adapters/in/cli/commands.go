package cli

import (
	"fieldservice/internal/adapters/in/payload"
	"fieldservice/internal/core/domain/model/scheduling"
	"fieldservice/internal/core/domain/services"

	"github.com/spf13/cobra"
)

func newBatchCommand(opts *options) *cobra.Command {
	var (
		optimize bool
		passes   int
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Schedule every job of a plan in priority order",
		Long: `Schedules the jobs of a plan file against its workers. Jobs are taken in
priority order and booked hours accumulate, so later jobs see the load of
earlier ones. Invalid jobs are reported after the scheduled ones.

Example plan:

  jobs:
    - id: 6f1c2d4e-8a9b-4c3d-9e2f-1a2b3c4d5e6f
      location: {latitude: 52.52, longitude: 13.405}
      required_skills: [electrical]
      priority: urgent
      estimated_duration_hours: 2
  workers:
    - worker_id: 0b7c8d9e-1f2a-4b3c-8d4e-5f6a7b8c9d0e
      home_base: {latitude: 52.5, longitude: 13.4}
      skills:
        - {id: electrical, category: trade, level: expert, years_of_experience: 6}
  constraints:
    - {type: max_travel_time, value: 60}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req payload.ScheduleBatchRequest
			if err := opts.decodeInput(cmd, &req); err != nil {
				return err
			}
			in, err := payload.ToBatchInput(req)
			if err != nil {
				return err
			}
			p, err := opts.planner(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			scheduler := services.NewJobScheduler(p.generator, p.calculator, p.logger)
			batch := services.NewBatchScheduler(scheduler, p.clock, p.logger)
			results := batch.ScheduleMultipleJobs(ctx, in.Requests, in.Workers, in.Constraints, in.Objectives)
			if optimize || req.Optimize {
				optimizer := services.NewSwapOptimizer(p.generator, p.calculator, passes, p.logger)
				results = optimizer.Optimize(ctx, results, in.Requests, in.Workers, in.Constraints, in.Objectives)
			}
			results = append(results, in.Invalid...)

			return writeJSON(cmd, payload.FromResults(results))
		},
	}
	cmd.Flags().BoolVar(&optimize, "optimize", false, "improve the batch with pairwise worker swaps")
	cmd.Flags().IntVar(&passes, "passes", services.DefaultSwapPasses, "maximum swap sweeps when optimising")
	return cmd
}

func newJobCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "job",
		Short: "Schedule a single job",
		Long: `Schedules one job against the workers of the input file. The file has a
"job" entry instead of "jobs"; otherwise it is laid out like a batch plan.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req payload.ScheduleJobRequest
			if err := opts.decodeInput(cmd, &req); err != nil {
				return err
			}
			workers, err := payload.ToProfiles(req.Workers)
			if err != nil {
				return err
			}
			constraints, err := payload.ToConstraints(req.Constraints)
			if err != nil {
				return err
			}
			objectives, err := payload.ToObjectives(req.Objectives)
			if err != nil {
				return err
			}
			p, err := opts.planner(cmd)
			if err != nil {
				return err
			}

			var result scheduling.Result
			jobID, request, err := payload.ToRequest(req.Job)
			if err != nil {
				result = scheduling.InvalidJobResult(jobID, err)
			} else {
				scheduler := services.NewJobScheduler(p.generator, p.calculator, p.logger)
				result = scheduler.ScheduleJob(cmd.Context(), request, workers, constraints, objectives)
			}

			return writeJSON(cmd, payload.FromResult(result))
		},
	}
}

func newRouteCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "route",
		Short: "Order waypoints between a start and an end location",
		Long: `Orders the waypoints of the input file. With a routing service the
provider's ordering is used; otherwise the nearest unvisited waypoint is
visited next.

Example input:

  start: {latitude: 52.52, longitude: 13.405}
  end: {latitude: 52.52, longitude: 13.405}
  waypoints:
    - {latitude: 52.45, longitude: 13.30}
    - {latitude: 52.55, longitude: 13.45}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req payload.RouteRequest
			if err := opts.decodeInput(cmd, &req); err != nil {
				return err
			}
			start, end, waypoints, err := payload.ToRoute(req)
			if err != nil {
				return err
			}
			p, err := opts.planner(cmd)
			if err != nil {
				return err
			}

			route := p.estimator.EstimateRoute(cmd.Context(), start, end, waypoints)
			return writeJSON(cmd, payload.FromRoute(route))
		},
	}
}
