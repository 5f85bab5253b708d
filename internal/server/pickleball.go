package server

import (
	"context"
	"errors"
	"pickleball-sim/internal/domain"
	"pickleball-sim/internal/middleware"
	"pickleball-sim/internal/service"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

type GetProfileRequest struct {
	PlayerID string `json:"player_id"`
}

type GetHistoryRequest struct {
	PlayerID string `json:"player_id"`
	Limit    int    `json:"limit"`
}

type GetHistoryResponse struct {
	History []domain.RatingHistory `json:"history"`
}

type GetMatchRequest struct {
	MatchID string `json:"match_id"`
}

type ListMatchesRequest struct {
	PlayerID string `json:"player_id"`
	Limit    int    `json:"limit"`
}

type ListMatchesResponse struct {
	Matches []domain.MatchRecord `json:"matches"`
}

type PickleballServer struct {
	simulationSvc *service.SimulationService
	ratingSvc     *service.RatingService
	logger        zerolog.Logger
}

func NewPickleballServer(simulationSvc *service.SimulationService, ratingSvc *service.RatingService, logger zerolog.Logger) *PickleballServer {
	return &PickleballServer{simulationSvc: simulationSvc, ratingSvc: ratingSvc, logger: logger}
}

func (s *PickleballServer) SimulateMatch(ctx context.Context, req *connect.Request[service.SimulateRequest]) (*connect.Response[service.SimulateResponse], error) {
	resp, err := s.simulationSvc.SimulateMatch(ctx, *req.Msg)
	if err != nil {
		return nil, s.toConnectError(ctx, "SimulateMatch", err)
	}
	return connect.NewResponse(resp), nil
}

func (s *PickleballServer) RunBatch(ctx context.Context, req *connect.Request[service.BatchRequest]) (*connect.Response[service.BatchSummary], error) {
	summary, err := s.simulationSvc.RunBatch(ctx, *req.Msg)
	if err != nil {
		return nil, s.toConnectError(ctx, "RunBatch", err)
	}
	return connect.NewResponse(summary), nil
}

func (s *PickleballServer) GetMatch(ctx context.Context, req *connect.Request[GetMatchRequest]) (*connect.Response[domain.MatchRecord], error) {
	if req.Msg.MatchID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("match_id is required"))
	}
	rec, err := s.simulationSvc.GetMatch(ctx, req.Msg.MatchID)
	if err != nil {
		return nil, s.toConnectError(ctx, "GetMatch", err)
	}
	return connect.NewResponse(rec), nil
}

func (s *PickleballServer) ListMatches(ctx context.Context, req *connect.Request[ListMatchesRequest]) (*connect.Response[ListMatchesResponse], error) {
	if req.Msg.PlayerID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("player_id is required"))
	}
	matches, err := s.simulationSvc.ListMatches(ctx, req.Msg.PlayerID, req.Msg.Limit)
	if err != nil {
		return nil, s.toConnectError(ctx, "ListMatches", err)
	}
	return connect.NewResponse(&ListMatchesResponse{Matches: matches}), nil
}

func (s *PickleballServer) RecordMatch(ctx context.Context, req *connect.Request[service.RecordMatchRequest]) (*connect.Response[service.RatingUpdate], error) {
	update, err := s.ratingSvc.RecordMatch(ctx, *req.Msg)
	if err != nil {
		return nil, s.toConnectError(ctx, "RecordMatch", err)
	}
	return connect.NewResponse(update), nil
}

func (s *PickleballServer) GetProfile(ctx context.Context, req *connect.Request[GetProfileRequest]) (*connect.Response[service.ProfileView], error) {
	if req.Msg.PlayerID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("player_id is required"))
	}
	profile, err := s.ratingSvc.GetProfile(ctx, req.Msg.PlayerID)
	if err != nil {
		return nil, s.toConnectError(ctx, "GetProfile", err)
	}
	return connect.NewResponse(profile), nil
}

func (s *PickleballServer) GetHistory(ctx context.Context, req *connect.Request[GetHistoryRequest]) (*connect.Response[GetHistoryResponse], error) {
	if req.Msg.PlayerID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("player_id is required"))
	}
	history, err := s.ratingSvc.GetHistory(ctx, req.Msg.PlayerID, req.Msg.Limit)
	if err != nil {
		return nil, s.toConnectError(ctx, "GetHistory", err)
	}
	return connect.NewResponse(&GetHistoryResponse{History: history}), nil
}

func (s *PickleballServer) toConnectError(ctx context.Context, procedure string, err error) error {
	code := connect.CodeInternal
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		code = connect.CodeInvalidArgument
	case errors.Is(err, service.ErrNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	}

	if code == connect.CodeInternal {
		s.logger.Error().
			Err(err).
			Str("procedure", procedure).
			Str("request_id", middleware.GetRequestID(ctx)).
			Msg("request failed")
	}
	return connect.NewError(code, err)
}
