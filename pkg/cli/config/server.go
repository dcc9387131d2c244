package config

import (
	"time"

	"github.com/urfave/cli/v3"
)

// Server holds HTTP server configuration
type Server struct {
	Addr          string
	SweepInterval time.Duration
}

// Flags returns CLI flags for Server configuration
func (s *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Sources:     cli.EnvVars("LOTGATE_ADDR"),
			Destination: &s.Addr,
		},
		&cli.DurationFlag{
			Name:        "sweep-interval",
			Usage:       "Interval between auto-escalation sweeps",
			Value:       time.Minute,
			Sources:     cli.EnvVars("LOTGATE_SWEEP_INTERVAL"),
			Destination: &s.SweepInterval,
		},
	}
}
