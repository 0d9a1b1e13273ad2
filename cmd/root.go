package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cloudrush/cloudrush/sim"
)

var (
	// Shared CLI flags
	logLevel     string  // Log verbosity level
	scenarioPath string  // Scenario YAML file; empty = built-in default deployment
	seed         int64   // Master seed for all random draws
	duration     float64 // Simulated seconds to run (run command)
	speed        float64 // Simulation speed multiplier
	startingCash float64 // Overrides the scenario's starting cash when >= 0
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "cloudrush",
	Short: "Tick-driven traffic flow simulator for request-serving infrastructure",
}

// setupLogging applies the --log flag before any subcommand runs.
func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// buildEngine loads the scenario (or the built-in default) and applies the
// CLI overrides.
func buildEngine(cmd *cobra.Command) *sim.Engine {
	var scenario *sim.Scenario
	if scenarioPath == "" {
		scenario = sim.DefaultScenario()
	} else {
		var err error
		scenario, err = sim.LoadScenario(scenarioPath)
		if err != nil {
			logrus.Fatalf("Failed to load scenario: %v", err)
		}
	}
	if cmd.Flags().Changed("seed") {
		scenario.Seed = seed
	}
	if startingCash >= 0 {
		scenario.StartingCash = startingCash
	}
	if speed > 0 {
		scenario.Speed = speed
	}

	engine, err := scenario.Build()
	if err != nil {
		logrus.Fatalf("Failed to build engine: %v", err)
	}
	return engine
}

// runCmd executes a headless simulation and prints the final report.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation headless and print a report",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		engine := buildEngine(cmd)
		ticks := int(duration / sim.TickSeconds)
		logrus.Infof("Running %d ticks (%.0fs simulated)", ticks, duration)

		engine.RunTicks(ticks)
		sim.BuildReport(engine).Print()

		logrus.Info("Simulation complete.")
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&scenarioPath, "scenario", "", "Scenario YAML file (empty = built-in default deployment)")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 42, "Master seed for random draws")
	rootCmd.PersistentFlags().Float64Var(&startingCash, "starting-cash", -1, "Override scenario starting cash (negative = keep scenario value)")
	rootCmd.PersistentFlags().Float64Var(&speed, "speed", 0, "Simulation speed multiplier (0 = keep scenario value)")

	runCmd.Flags().Float64Var(&duration, "duration", 300, "Simulated seconds to run")

	rootCmd.AddCommand(runCmd)
}
