/*
DESCRIPTION
  config_test.go provides testing for configuration functionality found in
  config.go.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"errors"
	"testing"
	"time"

	"github.com/ausocean/utils/logging"
	"github.com/google/go-cmp/cmp"
)

type dumbLogger struct{}

func (dl *dumbLogger) Log(l int8, m string, a ...interface{})  {}
func (dl *dumbLogger) SetLevel(l int8)                         {}
func (dl *dumbLogger) Debug(msg string, args ...interface{})   {}
func (dl *dumbLogger) Info(msg string, args ...interface{})    {}
func (dl *dumbLogger) Warning(msg string, args ...interface{}) {}
func (dl *dumbLogger) Error(msg string, args ...interface{})   {}
func (dl *dumbLogger) Fatal(msg string, args ...interface{})   {}

func TestValidate(t *testing.T) {
	dl := &dumbLogger{}

	want := Config{
		Logger:         dl,
		Multicast:      "239.1.1.1",
		Port:           defaultPort,
		LogLevel:       defaultVerbosity,
		StatsPeriod:    defaultStatsPeriod,
		ReceiveTimeout: defaultReceiveTimeout,
		GapThreshold:   defaultGapThreshold,
	}

	got := Config{Logger: dl, Multicast: "239.1.1.1"}
	err := (&got).Validate()
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	if !cmp.Equal(got, want) {
		t.Errorf("configs not equal\nwant: %v\ngot: %v", want, got)
	}
}

func TestValidateNoInput(t *testing.T) {
	c := Config{Logger: &dumbLogger{}}
	if err := c.Validate(); !errors.Is(err, ErrNoInput) {
		t.Errorf("did not get expected error.\n Got: %v\n Want: %v\n", err, ErrNoInput)
	}

	c = Config{Logger: &dumbLogger{}, InputPath: "capture.pcap"}
	if err := c.Validate(); err != nil {
		t.Errorf("did not expect error: %v", err)
	}
}

func TestUpdate(t *testing.T) {
	updateMap := map[string]string{
		"CSVPath":        "stats.csv",
		"GapThreshold":   "250",
		"InputPath":      "in.pcap",
		"Interface":      "eth0",
		"logging":        "Debug",
		"LogPath":        "/var/log/tsmon.log",
		"MetricsAddress": ":9100",
		"Multicast":      "239.0.0.1",
		"Port":           "5000",
		"Quiet":          "1",
		"ReceiveTimeout": "500",
		"RTP":            "true",
		"ShowCC":         "true",
		"ShowTimes":      "false",
		"StatsPeriod":    "5",
	}

	dl := &dumbLogger{}

	want := Config{
		Logger:         dl,
		CSVPath:        "stats.csv",
		GapThreshold:   250,
		InputPath:      "in.pcap",
		Interface:      "eth0",
		LogLevel:       logging.Debug,
		LogPath:        "/var/log/tsmon.log",
		MetricsAddress: ":9100",
		Multicast:      "239.0.0.1",
		Port:           5000,
		Quiet:          1,
		ReceiveTimeout: 500,
		RTP:            true,
		ShowCC:         true,
		StatsPeriod:    5,
	}

	got := Config{Logger: dl}
	got.Update(updateMap)
	if !cmp.Equal(want, got) {
		t.Errorf("configs not equal\nwant: %v\ngot: %v", want, got)
	}

	if got.Period() != 5*time.Second || got.Timeout() != 500*time.Millisecond || got.Gap() != 250*time.Millisecond {
		t.Errorf("unexpected durations: %v %v %v", got.Period(), got.Timeout(), got.Gap())
	}
}

func TestValidateBounds(t *testing.T) {
	dl := &dumbLogger{}
	c := Config{Logger: dl, Multicast: "239.0.0.1", Port: 70000, Quiet: 5, LogLevel: 42}
	if err := c.Validate(); err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if c.Port != defaultPort || c.Quiet != maxQuiet || c.LogLevel != defaultVerbosity {
		t.Errorf("bad values not defaulted: %+v", c)
	}
}
