// Package api provides the read-only HTTP API for inspecting a running
// simulation: clock and occupancy, traveler detail, completed journeys, and
// network geometry as GeoJSON.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wayfarer-sim/wayfarer/internal/engine"
	"github.com/wayfarer-sim/wayfarer/internal/route"
	"github.com/wayfarer-sim/wayfarer/internal/telemetry"
)

const defaultJourneyLimit = 100

// Server serves simulation state over HTTP. Handlers read model state
// directly; run them between ticks or accept slightly torn reads, as the
// model is not locked.
type Server struct {
	Model *engine.Model
	Store *telemetry.Store      // preferred journey source when set
	Sink  *telemetry.MemorySink // fallback journey source
	Port  int
}

// Router builds the endpoint table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/travelers", s.handleTravelers).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/travelers/{name}", s.handleTravelerDetail).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/journeys", s.handleJourneys).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/network/{mode}.geojson", s.handleNetworkGeoJSON).Methods(http.MethodGet)
	return r
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	go func() {
		slog.Info("api server listening", "addr", addr)
		if err := http.ListenAndServe(addr, s.Router()); err != nil {
			slog.Error("api server stopped", "error", err)
		}
	}()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encoding failed", "error", err)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	occ := s.Model.Occupancy()
	writeJSON(w, map[string]any{
		"day":       s.Model.Day(),
		"time":      s.Model.Now().String(),
		"travelers": len(s.Model.Travelers()),
		"en_route": map[string]int{
			"walking": occ[route.ModeWalk],
			"cycling": occ[route.ModeBike],
			"driving": occ[route.ModeDrive],
		},
	})
}

type travelerSummary struct {
	Name        string  `json:"name"`
	Home        string  `json:"home"`
	State       string  `json:"state"`
	Location    string  `json:"location"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Mode        string  `json:"mode,omitempty"`
	Destination string  `json:"destination,omitempty"`
}

func (s *Server) handleTravelers(w http.ResponseWriter, r *http.Request) {
	travelers := s.Model.Travelers()
	out := make([]travelerSummary, len(travelers))
	for i, t := range travelers {
		out[i] = travelerSummary{
			Name:        t.Name,
			Home:        t.Home,
			State:       string(t.State),
			Location:    t.Location,
			X:           t.Position[0],
			Y:           t.Position[1],
			Mode:        string(t.Mode()),
			Destination: t.Destination(),
		}
	}
	writeJSON(w, out)
}

func (s *Server) handleTravelerDetail(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	for _, t := range s.Model.Travelers() {
		if t.Name != name {
			continue
		}
		type choice struct {
			Day           int    `json:"day"`
			Time          string `json:"time"`
			Origin        string `json:"origin"`
			Destination   string `json:"destination"`
			Mode          string `json:"mode"`
			Justification string `json:"justification"`
		}
		choices := t.Memory.Choices()
		outChoices := make([]choice, len(choices))
		for i, c := range choices {
			outChoices[i] = choice{
				Day:           c.Day,
				Time:          c.Time.String(),
				Origin:        c.Origin,
				Destination:   c.Destination,
				Mode:          string(c.Mode),
				Justification: c.Justification,
			}
		}
		writeJSON(w, map[string]any{
			"name":           t.Name,
			"home":           t.Home,
			"description":    t.Description,
			"state":          string(t.State),
			"location":       t.Location,
			"has_bike":       t.HasBike,
			"has_car":        t.HasCar,
			"plan_remaining": t.PlanRemaining(),
			"mode":           string(t.Mode()),
			"destination":    t.Destination(),
			"mode_choices":   outChoices,
		})
		return
	}
	http.Error(w, "traveler not found", http.StatusNotFound)
}

func (s *Server) handleJourneys(w http.ResponseWriter, r *http.Request) {
	limit := defaultJourneyLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	if s.Store != nil {
		rows, err := s.Store.Recent(limit)
		if err != nil {
			http.Error(w, "journey query failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, rows)
		return
	}
	if s.Sink != nil {
		all := s.Sink.Journeys()
		if len(all) > limit {
			all = all[len(all)-limit:]
		}
		writeJSON(w, all)
		return
	}
	writeJSON(w, []telemetry.Journey{})
}

func (s *Server) handleNetworkGeoJSON(w http.ResponseWriter, r *http.Request) {
	mode := route.Mode(mux.Vars(r)["mode"])
	n := s.Model.Network(mode)
	if n == nil {
		http.Error(w, "unknown mode", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	if err := json.NewEncoder(w).Encode(n.EdgesGeoJSON()); err != nil {
		slog.Error("geojson encoding failed", "error", err)
	}
}
