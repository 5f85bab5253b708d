package server

import (
	"net/http"

	"connectrpc.com/connect"
)

const (
	SimulationServiceName = "pickleball.v1.SimulationService"
	RatingServiceName     = "pickleball.v1.RatingService"
)

const (
	SimulateMatchProcedure = "/pickleball.v1.SimulationService/SimulateMatch"
	RunBatchProcedure      = "/pickleball.v1.SimulationService/RunBatch"
	GetMatchProcedure      = "/pickleball.v1.SimulationService/GetMatch"
	ListMatchesProcedure   = "/pickleball.v1.SimulationService/ListMatches"
	RecordMatchProcedure   = "/pickleball.v1.RatingService/RecordMatch"
	GetProfileProcedure    = "/pickleball.v1.RatingService/GetProfile"
	GetHistoryProcedure    = "/pickleball.v1.RatingService/GetHistory"
)

// NewSimulationServiceHandler returns the path prefix to mount and the handler
// serving every SimulationService procedure under it.
func NewSimulationServiceHandler(s *PickleballServer, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withCodec(opts)
	simulateMatch := connect.NewUnaryHandler(SimulateMatchProcedure, s.SimulateMatch, opts...)
	runBatch := connect.NewUnaryHandler(RunBatchProcedure, s.RunBatch, opts...)
	getMatch := connect.NewUnaryHandler(GetMatchProcedure, s.GetMatch, opts...)
	listMatches := connect.NewUnaryHandler(ListMatchesProcedure, s.ListMatches, opts...)

	return "/" + SimulationServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case SimulateMatchProcedure:
			simulateMatch.ServeHTTP(w, r)
		case RunBatchProcedure:
			runBatch.ServeHTTP(w, r)
		case GetMatchProcedure:
			getMatch.ServeHTTP(w, r)
		case ListMatchesProcedure:
			listMatches.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

func NewRatingServiceHandler(s *PickleballServer, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withCodec(opts)
	recordMatch := connect.NewUnaryHandler(RecordMatchProcedure, s.RecordMatch, opts...)
	getProfile := connect.NewUnaryHandler(GetProfileProcedure, s.GetProfile, opts...)
	getHistory := connect.NewUnaryHandler(GetHistoryProcedure, s.GetHistory, opts...)

	return "/" + RatingServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case RecordMatchProcedure:
			recordMatch.ServeHTTP(w, r)
		case GetProfileProcedure:
			getProfile.ServeHTTP(w, r)
		case GetHistoryProcedure:
			getHistory.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

func withCodec(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
}
