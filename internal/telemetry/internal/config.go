package internal

import (
	"fmt"
	"strings"
	"time"
)

type ExportOption int

const (
	ExportOptionNone ExportOption = iota
	ExportOptionStdout
	ExportOptionGrpc
)

func (o ExportOption) String() string {
	switch o {
	case ExportOptionNone:
		return "none"
	case ExportOptionStdout:
		return "stdout"
	case ExportOptionGrpc:
		return "grpc"
	}
	return fmt.Sprintf("ExportOption(%d)", int(o))
}

func ParseExportOption(s string) (ExportOption, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ExportOptionNone, nil
	case "stdout":
		return ExportOptionStdout, nil
	case "grpc", "otlp":
		return ExportOptionGrpc, nil
	}
	return ExportOptionNone, fmt.Errorf("unknown export option %q", s)
}

type Config struct {
	ServiceName string `yaml:"serviceName,omitempty" mapstructure:"service_name"`

	MetricExportOption   ExportOption  `yaml:"metrics,omitempty" mapstructure:"metrics"`
	MetricExportInterval time.Duration `yaml:"metricExportInterval,omitempty" mapstructure:"metric_export_interval"`
	TraceExportOption    ExportOption  `yaml:"traces,omitempty" mapstructure:"traces"`
	TraceSamplingRate    float64       `yaml:"traceSamplingRate,omitempty" mapstructure:"trace_sampling_rate"`
}
