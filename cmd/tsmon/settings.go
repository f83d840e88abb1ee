/*
DESCRIPTION
  settings.go binds command line flags, environment variables and an
  optional config file to monitor configuration variables.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package main

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ausocean/tsmon/monitor/config"
	"github.com/ausocean/utils/logging"
)

// Flag names, which are also the config file keys.
const (
	flagConfig         = "config"
	flagCSV            = "csv"
	flagGapThreshold   = "gap-threshold"
	flagInterface      = "interface"
	flagLogFile        = "log-file"
	flagLogLevel       = "log-level"
	flagMetricsAddress = "metrics-addr"
	flagMulticast      = "multicast"
	flagPcap           = "pcap"
	flagPort           = "port"
	flagQuiet          = "quiet"
	flagReceiveTimeout = "receive-timeout"
	flagRTP            = "rtp"
	flagShowCC         = "show-cc"
	flagShowTimes      = "show-times"
	flagStatsPeriod    = "stats-period"
)

// envPrefix prefixes environment variables, e.g. TSMON_GAP_THRESHOLD.
const envPrefix = "TSMON"

// keys maps flag names to config variable keys.
var keys = map[string]string{
	flagCSV:            config.KeyCSVPath,
	flagGapThreshold:   config.KeyGapThreshold,
	flagInterface:      config.KeyInterface,
	flagLogFile:        config.KeyLogPath,
	flagLogLevel:       config.KeyLogging,
	flagMetricsAddress: config.KeyMetricsAddress,
	flagMulticast:      config.KeyMulticast,
	flagPcap:           config.KeyInputPath,
	flagPort:           config.KeyPort,
	flagQuiet:          config.KeyQuiet,
	flagReceiveTimeout: config.KeyReceiveTimeout,
	flagRTP:            config.KeyRTP,
	flagShowCC:         config.KeyShowCC,
	flagShowTimes:      config.KeyShowTimes,
	flagStatsPeriod:    config.KeyStatsPeriod,
}

func addFlags(f *pflag.FlagSet) {
	f.StringP(flagMulticast, "m", "", "multicast group or unicast address to receive from")
	f.StringP(flagInterface, "i", "", "interface name or address to join the group on")
	f.UintP(flagPort, "p", 1234, "UDP port")
	f.BoolP(flagShowCC, "c", false, "log every continuity error")
	f.BoolP(flagShowTimes, "t", false, "log the time between datagrams")
	f.StringP(flagCSV, "l", "", "append statistics to this CSV file, - for stdout")
	f.CountP(flagQuiet, "q", "quiet: -q hides statistics and info logs, -qq hides everything")
	f.Bool(flagRTP, false, "datagrams carry an RTP header")
	f.String(flagPcap, "", "replay UDP datagrams to the port from this pcap file")
	f.String(flagConfig, "", "YAML config file, watched for changes")
	f.String(flagLogFile, "", "write logs to this rotating file")
	f.String(flagLogLevel, "info", "log level: debug, info, warning or error")
	f.String(flagMetricsAddress, "", "serve Prometheus metrics on this address, e.g. :9100")
	f.Uint(flagStatsPeriod, 10, "statistics period in seconds")
	f.Uint(flagReceiveTimeout, 1000, "receive timeout in milliseconds")
	f.Uint(flagGapThreshold, 1000, "warn of gaps between datagrams longer than this in milliseconds")
}

// bindSettings makes the flags of f, and the environment, sources for v.
func bindSettings(v *viper.Viper, f *pflag.FlagSet) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	f.VisitAll(func(fl *pflag.Flag) {
		// Binding can only fail for a nil flag.
		_ = v.BindPFlag(fl.Name, fl)
	})
}

// readConfig reads the config file named by the config flag, if any.
func readConfig(v *viper.Viper) error {
	path := v.GetString(flagConfig)
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	err := v.ReadInConfig()
	if err != nil {
		return fmt.Errorf("could not read config file: %w", err)
	}
	return nil
}

// settings returns the configuration variables held by v.
func settings(v *viper.Viper) map[string]string {
	vars := make(map[string]string, len(keys))
	for flag, key := range keys {
		vars[key] = v.GetString(flag)
	}
	return vars
}

// watch returns a channel that receives the configuration variables each
// time the config file changes.
func watch(v *viper.Viper, log logging.Logger) <-chan map[string]string {
	updates := make(chan map[string]string, 1)
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info("config file changed", "file", e.Name, "op", e.Op.String())
		vars := settings(v)
		select {
		case updates <- vars:
		default:
			// Replace an update the monitor has not taken yet.
			select {
			case <-updates:
			default:
			}
			updates <- vars
		}
	})
	v.WatchConfig()
	return updates
}
