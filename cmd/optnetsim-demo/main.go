// Command optnetsim-demo runs a capacity-planning simulation from a
// topology file and reports per-period metrics. Grounded on the pack's
// cobra+godotenv CLI convention: a root command with "run" and "export"
// subcommands, and an optional .env file loaded into the process
// environment (the command reads no variables from it itself).
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/optnetsim/optnetsim"
	"github.com/optnetsim/optnetsim/internal/metrics"
	"github.com/optnetsim/optnetsim/internal/report"
	"github.com/optnetsim/optnetsim/internal/topoio"
)

var (
	topologyFile string
	periods      int
	baseRate     float64
	stdDev       float64
	pathK        int
	bitrateGbps  float64
	bitratesFile string
	metricsAddr  string
	reportFile   string
	exportPrefix string
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "optnetsim-demo",
		Short: "Run an optical-network capacity-planning simulation",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a multi-period simulation against a topology file",
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVarP(&topologyFile, "topology", "t", "", "topology file (JSON or YAML)")
	runCmd.Flags().IntVarP(&periods, "periods", "n", 10, "number of periods to simulate")
	runCmd.Flags().Float64Var(&baseRate, "base-rate", 0.05, "base growth rate per period")
	runCmd.Flags().Float64Var(&stdDev, "std-dev", 0.02, "growth standard deviation per period")
	runCmd.Flags().IntVarP(&pathK, "paths", "k", 3, "number of shortest paths to precompute per pair")
	runCmd.Flags().Float64Var(&bitrateGbps, "bitrate", 100, "bitrate (Gbps) the demo allocator provisions when no --bitrates-file is given")
	runCmd.Flags().StringVar(&bitratesFile, "bitrates-file", "", "optional file (JSON or YAML) listing a catalog of available bitrates")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics at this address (e.g. :9090) for the duration of the run")
	runCmd.Flags().StringVar(&reportFile, "report", "report.txt", "path to write the per-period report")
	_ = runCmd.MarkFlagRequired("topology")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Load a topology, compute paths, and export both to disk",
		RunE:  runExport,
	}
	exportCmd.Flags().StringVarP(&topologyFile, "topology", "t", "", "topology file (JSON or YAML)")
	exportCmd.Flags().IntVarP(&pathK, "paths", "k", 3, "number of shortest paths to precompute per pair")
	exportCmd.Flags().StringVar(&exportPrefix, "out", "network", "output file prefix for the topology export (<prefix>_export.json); routes always go to routes_export.json")
	_ = exportCmd.MarkFlagRequired("topology")

	root.AddCommand(runCmd, exportCmd)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	net, err := topoio.LoadTopology(topologyFile)
	if err != nil {
		return fmt.Errorf("loading topology: %w", err)
	}
	if err := net.SetPaths(pathK); err != nil {
		return fmt.Errorf("computing paths: %w", err)
	}

	demands, err := optnetsim.InitializeDemandsGravity(net, logger)
	if err != nil {
		return fmt.Errorf("initializing demands: %w", err)
	}

	var bitrateCatalog map[float64]*optnetsim.Bitrate
	if bitratesFile != "" {
		bitrateCatalog, err = topoio.LoadBitrates(bitratesFile)
		if err != nil {
			return fmt.Errorf("loading bitrates: %w", err)
		}
	}
	bitrate, err := optnetsim.NewBitrate(bitrateGbps)
	if err != nil {
		return err
	}
	bitrate.AddModulation("demo-qpsk",
		map[optnetsim.Band]int{optnetsim.BandC: 4},
		map[optnetsim.Band]float64{optnetsim.BandC: 4000})
	if len(bitrateCatalog) == 0 {
		bitrateCatalog = optnetsim.NewBitrateCatalog(bitrate)
	}

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: metricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("metrics server stopped", zap.Error(err))
			}
		}()
		defer srv.Close()
	}

	controller := optnetsim.NewControllerFor(net)
	rep := report.NewWriter()

	cfg := optnetsim.PeriodSchedulerConfig{
		NumPeriods:     periods,
		BaseGrowthRate: baseRate,
		GrowthStdDev:   stdDev,
		GrowthMode:     optnetsim.GrowthLogNormal,
		Allocator:      optnetsim.NewGreedyFirstFitAllocator(bitrate, optnetsim.BandC),
		Logger:         logger,
	}
	scheduler, err := optnetsim.NewPeriodScheduler(cfg, controller, demands, bitrateCatalog)
	if err != nil {
		return err
	}

	metricsList, err := scheduler.Run()
	if err != nil {
		return fmt.Errorf("running scheduler: %w", err)
	}
	for _, m := range metricsList {
		rep.Record(m)
		fmt.Println(m.String())
		metrics.ObserveValues(m.Period, m.Connections, m.RequiredTbps, m.AllocatedTbps, m.AverageUtilization, m.UnderProvisioning)
	}
	return rep.WriteToFile(reportFile)
}

func runExport(cmd *cobra.Command, args []string) error {
	net, err := topoio.LoadTopology(topologyFile)
	if err != nil {
		return fmt.Errorf("loading topology: %w", err)
	}
	if err := net.SetPaths(pathK); err != nil {
		return fmt.Errorf("computing paths: %w", err)
	}
	if err := topoio.ExportTopology(net, exportPrefix+"_export.json"); err != nil {
		return err
	}
	return topoio.ExportRoutes(net, "routes_export.json")
}
