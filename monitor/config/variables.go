/*
DESCRIPTION
  variables.go contains a list of structs that provide a variable Name, type in
  a string format, a function for updating the variable in the Config struct
  from a string, and finally, a validation function to check the validity of the
  corresponding field value in the Config.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ausocean/utils/logging"
)

// Config map Keys.
const (
	KeyCSVPath        = "CSVPath"
	KeyGapThreshold   = "GapThreshold"
	KeyInputPath      = "InputPath"
	KeyInterface      = "Interface"
	KeyLogging        = "logging"
	KeyLogPath        = "LogPath"
	KeyMetricsAddress = "MetricsAddress"
	KeyMulticast      = "Multicast"
	KeyPort           = "Port"
	KeyQuiet          = "Quiet"
	KeyReceiveTimeout = "ReceiveTimeout"
	KeyRTP            = "RTP"
	KeyShowCC         = "ShowCC"
	KeyShowTimes      = "ShowTimes"
	KeyStatsPeriod    = "StatsPeriod"
)

// Live holds the keys that may change while a monitor runs.
var Live = []string{KeyShowCC, KeyShowTimes, KeyGapThreshold, KeyLogging}

// Config map parameter types.
const (
	typeString = "string"
	typeUint   = "uint"
	typeBool   = "bool"
)

// Default variable values.
const (
	defaultPort           = 1234
	defaultVerbosity      = logging.Info
	defaultStatsPeriod    = 10   // Seconds.
	defaultReceiveTimeout = 1000 // Milliseconds.
	defaultGapThreshold   = 1000 // Milliseconds.
	maxQuiet              = 2
)

// Variables describes the variables that can be used for monitor control.
// These structs provide the name and type of variable, a function for updating
// this variable in a Config, and a function for validating the value of the variable.
var Variables = []struct {
	Name     string
	Type     string
	Update   func(*Config, string)
	Validate func(*Config)
}{
	{
		Name:   KeyCSVPath,
		Type:   typeString,
		Update: func(c *Config, v string) { c.CSVPath = v },
	},
	{
		Name:   KeyGapThreshold,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.GapThreshold = parseUint(KeyGapThreshold, v, c) },
		Validate: func(c *Config) {
			c.GapThreshold = lessThanOrEqual(KeyGapThreshold, c.GapThreshold, 0, c, defaultGapThreshold)
		},
	},
	{
		Name:   KeyInputPath,
		Type:   typeString,
		Update: func(c *Config, v string) { c.InputPath = v },
	},
	{
		Name:   KeyInterface,
		Type:   typeString,
		Update: func(c *Config, v string) { c.Interface = v },
	},
	{
		Name: KeyLogging,
		Type: "enum:Debug,Info,Warning,Error,Fatal",
		Update: func(c *Config, v string) {
			switch strings.ToLower(v) {
			case "debug":
				c.LogLevel = logging.Debug
			case "info":
				c.LogLevel = logging.Info
			case "warning":
				c.LogLevel = logging.Warning
			case "error":
				c.LogLevel = logging.Error
			case "fatal":
				c.LogLevel = logging.Fatal
			default:
				c.Logger.Warning("invalid logging param", "value", v)
			}
		},
		Validate: func(c *Config) {
			switch c.LogLevel {
			case logging.Debug, logging.Info, logging.Warning, logging.Error, logging.Fatal:
			default:
				c.LogInvalidField("LogLevel", defaultVerbosity)
				c.LogLevel = defaultVerbosity
			}
		},
	},
	{
		Name:   KeyLogPath,
		Type:   typeString,
		Update: func(c *Config, v string) { c.LogPath = v },
	},
	{
		Name:   KeyMetricsAddress,
		Type:   typeString,
		Update: func(c *Config, v string) { c.MetricsAddress = v },
	},
	{
		Name:   KeyMulticast,
		Type:   typeString,
		Update: func(c *Config, v string) { c.Multicast = v },
	},
	{
		Name:   KeyPort,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.Port = parseUint(KeyPort, v, c) },
		Validate: func(c *Config) {
			if c.Port == 0 || c.Port > 65535 {
				c.LogInvalidField(KeyPort, defaultPort)
				c.Port = defaultPort
			}
		},
	},
	{
		Name:   KeyQuiet,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.Quiet = parseUint(KeyQuiet, v, c) },
		Validate: func(c *Config) {
			if c.Quiet > maxQuiet {
				c.LogInvalidField(KeyQuiet, maxQuiet)
				c.Quiet = maxQuiet
			}
		},
	},
	{
		Name:   KeyReceiveTimeout,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.ReceiveTimeout = parseUint(KeyReceiveTimeout, v, c) },
		Validate: func(c *Config) {
			c.ReceiveTimeout = lessThanOrEqual(KeyReceiveTimeout, c.ReceiveTimeout, 0, c, defaultReceiveTimeout)
		},
	},
	{
		Name:   KeyRTP,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.RTP = parseBool(KeyRTP, v, c) },
	},
	{
		Name:   KeyShowCC,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.ShowCC = parseBool(KeyShowCC, v, c) },
	},
	{
		Name:   KeyShowTimes,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.ShowTimes = parseBool(KeyShowTimes, v, c) },
	},
	{
		Name:   KeyStatsPeriod,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.StatsPeriod = parseUint(KeyStatsPeriod, v, c) },
		Validate: func(c *Config) {
			c.StatsPeriod = lessThanOrEqual(KeyStatsPeriod, c.StatsPeriod, 0, c, defaultStatsPeriod)
		},
	},
}

func parseUint(n, v string, c *Config) uint {
	_v, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		c.Logger.Warning(fmt.Sprintf("expected unsigned int for param %s", n), "value", v)
	}
	return uint(_v)
}

func parseBool(n, v string, c *Config) (b bool) {
	switch strings.ToLower(v) {
	case "true":
		b = true
	case "false":
		b = false
	default:
		c.Logger.Warning(fmt.Sprintf("expect bool for param %s", n), "value", v)
	}
	return
}

func lessThanOrEqual(n string, v, cmp uint, c *Config, def uint) uint {
	if v <= cmp {
		c.LogInvalidField(n, def)
		return def
	}
	return v
}
