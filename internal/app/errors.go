package service

import "errors"

// Sentinel kinds returned by Service methods.
var (
	ErrNotStarted        = errors.New("service not started")
	ErrBackpressure      = errors.New("ingestion queue full")
	ErrUnknownTeamSeason = errors.New("unknown team-season")
)
