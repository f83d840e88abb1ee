/*
DESCRIPTION
  tsmon monitors a live MPEG-TS feed received over UDP, optionally RTP
  wrapped, or replayed from a capture file. It reports continuity, sync and
  transport errors, bitrates and the services described by the stream.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package tsmon is a command line MPEG-TS monitor.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/tsmon/input"
	"github.com/ausocean/tsmon/monitor"
	"github.com/ausocean/tsmon/monitor/config"
	"github.com/ausocean/tsmon/monitor/report"
	"github.com/ausocean/utils/logging"
)

// Current software version.
const version = "v1.0.0"

// Logging configuration.
const (
	logMaxSize   = 500 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
	logSuppress  = true
)

// Misc constants.
const (
	metricsPath     = "/metrics"
	shutdownTimeout = 5 * time.Second
)

func main() {
	err := newRootCmd(viper.New()).Execute()
	if err != nil {
		os.Exit(1)
	}
}

// newRootCmd returns the tsmon command with its flags bound to v.
func newRootCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tsmon",
		Short: "tsmon monitors an MPEG-TS feed",
		Long: `tsmon receives an MPEG-TS feed from a multicast group or unicast address,
or replays one from a pcap file, and prints statistics every period: bitrate,
continuity, sync and transport errors, and the services in the stream.`,
		Version:      version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, v)
		},
	}
	addFlags(cmd.Flags())
	bindSettings(v, cmd.Flags())
	return cmd
}

// run monitors until the feed ends, a terminal error occurs or the process is
// signalled.
func run(cmd *cobra.Command, v *viper.Viper) error {
	err := readConfig(v)
	if err != nil {
		return err
	}
	vars := settings(v)

	log, err := newLogger(cmd.ErrOrStderr(), vars)
	if err != nil {
		return err
	}

	cfg := &config.Config{Logger: log}
	cfg.Update(vars)
	err = cfg.Validate()
	if err != nil {
		return err
	}
	if cfg.Quiet == 1 && cfg.LogLevel < logging.Warning {
		cfg.LogLevel = logging.Warning
	}
	log.SetLevel(cfg.LogLevel)
	log.Info("starting tsmon", "version", version)

	src, err := newSource(cfg)
	if err != nil {
		return fmt.Errorf("could not open input: %w", err)
	}
	defer src.Close()

	opts, closeReporters, err := reporters(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeReporters()

	if v.ConfigFileUsed() != "" {
		opts = append(opts, monitor.WithUpdates(watch(v, log)))
	}

	m, err := monitor.New(cfg, opts...)
	if err != nil {
		return fmt.Errorf("could not create monitor: %w", err)
	}
	defer m.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return m.Run(ctx, src)
}

// newLogger returns a logger writing to stderr, or to a rotating file if a
// log path is set. At the highest quiet level logging is discarded, after a
// warning if there is no CSV output either.
func newLogger(stderr io.Writer, vars map[string]string) (logging.Logger, error) {
	w := stderr
	if path := vars[config.KeyLogPath]; path != "" {
		w = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    logMaxSize,
			MaxBackups: logMaxBackup,
			MaxAge:     logMaxAge,
		}
	}
	log := logging.New(logging.Info, w, logSuppress)
	if q, _ := strconv.Atoi(vars[config.KeyQuiet]); q < 2 {
		return log, nil
	}
	if vars[config.KeyCSVPath] == "" {
		log.Warning("quiet with no CSV output, nothing will be reported")
	}
	return logging.New(logging.Info, io.Discard, logSuppress), nil
}

// newSource opens the capture file if one is configured, and the UDP socket
// otherwise.
func newSource(cfg *config.Config) (input.Source, error) {
	var opts []input.Option
	if cfg.RTP {
		opts = append(opts, input.RTP())
	}
	if cfg.InputPath != "" {
		return input.NewPcap(cfg.InputPath, cfg.Port, cfg.Logger, opts...)
	}
	return input.NewUDP(cfg.Multicast, cfg.Port, cfg.Interface, cfg.Timeout(), cfg.Logger, opts...)
}

// stdout is standard output without its Close method, so that finishing a
// reporter does not close it.
type stdout struct{ io.Writer }

// reporters returns monitor options for the configured reporters and a
// function releasing what they hold.
func reporters(cmd *cobra.Command, cfg *config.Config) ([]monitor.Option, func(), error) {
	var (
		opts    []monitor.Option
		closers []func()
	)
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if cfg.Quiet == 0 {
		opts = append(opts, monitor.WithReporter(report.NewConsole(cmd.OutOrStdout())))
	}

	if cfg.CSVPath != "" {
		var w io.Writer = stdout{cmd.OutOrStdout()}
		if cfg.CSVPath != "-" {
			f, err := os.OpenFile(cfg.CSVPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
			if err != nil {
				closeAll()
				return nil, nil, fmt.Errorf("could not open CSV file: %w", err)
			}
			w = f
		}
		r, err := report.NewCSV(w)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		opts = append(opts, monitor.WithReporter(r))
	}

	if cfg.MetricsAddress != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(prometheus.NewGoCollector())
		reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
		r, err := report.NewMetrics(reg)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		opts = append(opts, monitor.WithReporter(r))

		mux := http.NewServeMux()
		mux.Handle(metricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{
			Addr:         cfg.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		go func() {
			cfg.Logger.Info("serving metrics", "address", cfg.MetricsAddress, "path", metricsPath)
			err := srv.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				cfg.Logger.Error("metrics server failed", "error", err)
			}
		}()
		closers = append(closers, func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			err := srv.Shutdown(ctx)
			if err != nil {
				cfg.Logger.Warning("could not shut down metrics server", "error", err)
			}
		})
	}
	return opts, closeAll, nil
}
