// Package types contains common types used across the application
package types

import "time"

// Entry represents a curator leaderboard entry
type Entry struct {
	Rank    int     `json:"rank" yaml:"rank"`
	Address string  `json:"address" yaml:"address"`
	Score   float64 `json:"score" yaml:"score"`
}

// CuratorIndex is the per-address curator lookup. Unknown addresses carry zeros.
type CuratorIndex struct {
	Address             string  `json:"address" yaml:"address"`
	Rank                int     `json:"rank" yaml:"rank"`
	OverallIndex        float64 `json:"overallIndex" yaml:"overallIndex"`
	A1Score             float64 `json:"a1Score" yaml:"a1Score"`
	A2Score             float64 `json:"a2Score" yaml:"a2Score"`
	MitigationFactor    float64 `json:"mitigationFactor" yaml:"mitigationFactor"`
	D1DiversityWriters  float64 `json:"d1DiversityWriters" yaml:"d1DiversityWriters"`
	D2DiversityProjects float64 `json:"d2DiversityProjects" yaml:"d2DiversityProjects"`
	D3Recency           float64 `json:"d3Recency" yaml:"d3Recency"`
	TotalLikesGiven     int     `json:"totalLikesGiven" yaml:"totalLikesGiven"`
}

// Summary describes the snapshot the current scores were computed from.
type Summary struct {
	Projects   int       `json:"projects" yaml:"projects"`
	Items      int       `json:"items" yaml:"items"`
	Curators   int       `json:"curators" yaml:"curators"`
	Ranked     int       `json:"ranked" yaml:"ranked"`
	Version    uint64    `json:"version" yaml:"version"`
	ComputedAt time.Time `json:"computedAt" yaml:"computedAt"`
}
