/*
DESCRIPTION
  tsgen sends a synthetic MPEG-TS test signal over UDP, optionally RTP
  wrapped, for exercising tsmon. Tables are repeated every second and bursts
  of continuity errors are injected every 15 seconds.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package tsgen is a command line MPEG-TS test signal generator.
package main

import (
	"fmt"
	"io"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/net/ipv4"

	"github.com/ausocean/tsmon/container/mts"
	"github.com/ausocean/tsmon/protocol/rtp"
	"github.com/ausocean/utils/logging"
)

// Current software version.
const version = "v1.0.0"

// Flag defaults.
const (
	defaultAddr    = "239.239.42.12:1234"
	defaultBitrate = 3800000
	defaultTTL     = 1
)

var levels = map[string]int8{
	"debug":   logging.Debug,
	"info":    logging.Info,
	"warning": logging.Warning,
	"error":   logging.Error,
}

// options holds the parsed flags.
type options struct {
	addr     string
	rtp      bool
	bitrate  float64
	layout   string
	duration time.Duration
	count    uint64
	seed     int64
	ttl      int
	level    string
}

func main() {
	err := newRootCmd().Execute()
	if err != nil {
		os.Exit(1)
	}
}

// newRootCmd returns the tsgen command.
func newRootCmd() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:   "tsgen",
		Short: "tsgen sends an MPEG-TS test signal",
		Long: `tsgen sends a synthetic MPEG-TS stream of 7-unit UDP datagrams at a fixed
bitrate. PAT, PMT and SDT are sent every second and every 15 seconds a random
number of continuity errors is injected on the first video stream.`,
		Version:      version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, &o)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.addr, "addr", "a", defaultAddr, "destination address and port")
	f.BoolVar(&o.rtp, "rtp", false, "wrap datagrams in RTP")
	f.Float64VarP(&o.bitrate, "bitrate", "b", defaultBitrate, "stream bitrate in bits per second")
	f.StringVar(&o.layout, "layout", "", "YAML file describing the programs to send")
	f.DurationVarP(&o.duration, "duration", "d", 0, "stop after this long")
	f.Uint64VarP(&o.count, "count", "n", 0, "stop after this many units")
	f.Int64Var(&o.seed, "seed", 0, "seed for error injection, 0 uses the time")
	f.IntVar(&o.ttl, "ttl", defaultTTL, "multicast TTL")
	f.StringVar(&o.level, "log-level", "info", "log level (debug, info, warning, error)")
	return cmd
}

// run sends the test signal until a limit is reached or the process is
// signalled.
func run(cmd *cobra.Command, o *options) error {
	level, ok := levels[strings.ToLower(o.level)]
	if !ok {
		return fmt.Errorf("unknown log level %q", o.level)
	}
	log := logging.New(level, cmd.ErrOrStderr(), true)

	l := defaultLayout()
	if o.layout != "" {
		var err error
		l, err = loadLayout(o.layout)
		if err != nil {
			return err
		}
	}

	conn, err := dial(o.addr, o.ttl)
	if err != nil {
		return err
	}
	defer conn.Close()

	var dst io.Writer = conn
	if o.rtp {
		dst = rtp.NewEncoder(conn)
	}

	seed := o.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	g, err := NewGenerator(dst, l, o.bitrate, rng.Intn, log, mts.InitialCC(byte(rng.Intn(16))))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log.Info("sending test signal", "addr", o.addr, "rtp", o.rtp, "seed", seed)
	return g.Run(ctx, Limits{Duration: o.duration, Count: o.count})
}

// dial connects a UDP socket to addr, setting the TTL for multicast groups.
func dial(addr string, ttl int) (*net.UDPConn, error) {
	raddr, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("could not resolve %s: %w", addr, err)
	}
	conn, err := net.DialUDP("udp4", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("could not dial %s: %w", addr, err)
	}
	if raddr.IP.IsMulticast() {
		err = ipv4.NewPacketConn(conn).SetMulticastTTL(ttl)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("could not set multicast TTL: %w", err)
		}
	}
	return conn, nil
}
