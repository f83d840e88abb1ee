/*
DESCRIPTION
  config.go contains the configuration settings for tsmon.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package config contains the configuration settings for the monitor.
package config

import (
	"errors"
	"time"

	"github.com/ausocean/utils/logging"
)

// ErrNoInput is returned by Validate when no datagram source is configured.
var ErrNoInput = errors.New("no multicast address or input file")

// Config provides parameters relevant to a monitor instance. A new config must
// be passed to the constructor. Default values for these fields are defined
// as consts in variables.go.
type Config struct {
	// Multicast is the group address to join, or a unicast address to bind.
	Multicast string

	// Interface is the interface name or local address used for the group
	// join. If empty the system chooses.
	Interface string

	Port uint // Port is the UDP port to listen on.
	RTP  bool // RTP indicates that datagrams carry an RTP header.

	// InputPath is a pcap capture file to replay instead of listening on a
	// socket.
	InputPath string

	ShowCC    bool // ShowCC logs every continuity error at info level.
	ShowTimes bool // ShowTimes logs the inter-arrival time of every datagram.

	// CSVPath is the file statistics rows are appended to. If empty no CSV is
	// written.
	CSVPath string

	// Quiet reduces output. At 1 the console statistics line is not shown and
	// the log level is raised to Warning. At 2 logging is discarded.
	Quiet uint

	// Logger holds an implementation of the Logger interface.
	// This must be set for the monitor to work correctly.
	Logger logging.Logger

	// LogLevel is the logging verbosity level.
	// Valid values are defined by enums from the logger package: logging.Debug,
	// logging.Info, logging.Warning logging.Error, logging.Fatal.
	LogLevel int8

	LogPath string // LogPath is the rotating log file. If empty logs go to stderr.

	// MetricsAddress is the address Prometheus metrics are served on. If
	// empty no metrics are served.
	MetricsAddress string

	StatsPeriod    uint // StatsPeriod is the statistics cadence in seconds.
	ReceiveTimeout uint // ReceiveTimeout is the bounded receive wait in milliseconds.
	GapThreshold   uint // GapThreshold is the datagram gap worth a warning in milliseconds.
}

// Validate checks for any errors in the config fields and defaults settings
// if particular parameters have not been defined. ErrNoInput is returned if
// there is nothing to monitor.
func (c *Config) Validate() error {
	for _, v := range Variables {
		if v.Validate != nil {
			v.Validate(c)
		}
	}
	if c.Multicast == "" && c.InputPath == "" {
		return ErrNoInput
	}
	return nil
}

// Update takes a map of configuration variable names and their corresponding
// values, parses the string values and converting into correct type, and then
// sets the config struct fields as appropriate.
func (c *Config) Update(vars map[string]string) {
	for _, value := range Variables {
		if v, ok := vars[value.Name]; ok && value.Update != nil {
			value.Update(c, v)
		}
	}
}

func (c *Config) LogInvalidField(name string, def interface{}) {
	c.Logger.Info(name+" bad or unset, defaulting", name, def)
}

// Period returns the statistics cadence.
func (c *Config) Period() time.Duration {
	return time.Duration(c.StatsPeriod) * time.Second
}

// Timeout returns the bounded receive wait.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.ReceiveTimeout) * time.Millisecond
}

// Gap returns the datagram gap worth a warning.
func (c *Config) Gap() time.Duration {
	return time.Duration(c.GapThreshold) * time.Millisecond
}
