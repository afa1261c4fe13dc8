package api

import (
	"encoding/json"
	"time"
)

type Region struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	LocalName string  `json:"local_name,omitempty"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
}

type ReportType struct {
	Type  string `json:"type"`
	Title string `json:"title"`
}

type Selection struct {
	Region string `json:"region"`
	Year   int    `json:"year"`
	Season string `json:"season,omitempty"`
	View   string `json:"view"`
}

// Metric carries a derived value; Value is null when the metric is N/A.
type Metric struct {
	Key     string   `json:"key"`
	Label   string   `json:"label"`
	Value   *float64 `json:"value"`
	Display string   `json:"display"`
	Unit    string   `json:"unit,omitempty"`
	Class   string   `json:"class,omitempty"`
}

type RegionMetrics struct {
	Region  Region   `json:"region"`
	Rank    int      `json:"rank,omitempty"`
	NoData  bool     `json:"no_data"`
	Metrics []Metric `json:"metrics"`
}

type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

type Section struct {
	Kind  string `json:"kind"`
	Title string `json:"title,omitempty"`
	Table *Table `json:"table,omitempty"`
	Text  string `json:"text,omitempty"`
}

type SummaryLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Alert struct {
	ID             string `json:"id"`
	Region         string `json:"region"`
	Metric         string `json:"metric"`
	Severity       string `json:"severity"`
	Message        string `json:"message"`
	Recommendation string `json:"recommendation,omitempty"`
}

type Report struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Title       string          `json:"title"`
	Selection   Selection       `json:"selection"`
	GeneratedAt time.Time       `json:"generated_at"`
	Sections    []Section       `json:"sections"`
	Summary     []SummaryLine   `json:"summary"`
	Alerts      []Alert         `json:"alerts"`
	Regions     []RegionMetrics `json:"regions"`
}

type AskRequest struct {
	Prompt string `json:"prompt"`
	Region string `json:"region,omitempty"`
	Year   int    `json:"year,omitempty"`
	Season string `json:"season,omitempty"`
}

type PredictRequest struct {
	Region string `json:"region"`
	Year   int    `json:"year"`
}

type AssistantResponse struct {
	Answer string          `json:"answer"`
	Raw    json.RawMessage `json:"raw,omitempty"`
}

type Error struct {
	Error string `json:"error"`
}
