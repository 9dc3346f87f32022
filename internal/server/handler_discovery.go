package server

import "net/http"

type endpointInfo struct {
	Path        string   `json:"path"`
	Methods     []string `json:"methods"`
	Description string   `json:"description"`
}

type discoveryResponse struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Endpoints   []endpointInfo `json:"endpoints"`
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, discoveryResponse{
		Name:        "Stage Monitor API",
		Version:     "v1",
		Description: "Tracks distributed query stage executions and serves aggregated execution summaries",
		Endpoints: []endpointInfo{
			{"/api/v1/stages", []string{"GET", "POST"}, "List live stage executions (GET accepts ?where= JS predicate) or register a new one"},
			{"/api/v1/stages/{id}/summary", []string{"GET"}, "Aggregated summary for one stage execution; ?unscheduled=true&query_done=<bool> for never-scheduled stages"},
			{"/api/v1/stages/{id}/state", []string{"POST"}, "Advance the stage state machine"},
			{"/api/v1/stages/{id}/tasks", []string{"GET", "POST"}, "Retained task reports / ingest a task report"},
			{"/api/v1/stages/{id}/scheduling", []string{"POST"}, "Record scheduler telemetry (split times, lifespans, scheduling-complete)"},
			{"/api/v1/stages/{id}/metrics", []string{"POST"}, "Record a stage-level runtime metric sample"},
			{"/api/v1/summaries", []string{"GET"}, "List finalized summaries from the store"},
			{"/api/v1/health", []string{"GET"}, "Server health and version"},
		},
	})
}
