package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/lifesync/internal/common"
	"github.com/dmitrijs2005/lifesync/internal/fieldmap"
	"github.com/dmitrijs2005/lifesync/internal/server/services"
	"github.com/dmitrijs2005/lifesync/internal/syncrpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors to gRPC codes. The client treats
// Unavailable and DeadlineExceeded as outages and anything else as a
// rejection of the single request.
func (s *GRPCServer) toStatus(ctx context.Context, method string, err error) error {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, common.ErrorUnavailable):
		s.logger.Error(ctx, "storage unavailable", "method", method, "error", err)
		return status.Error(codes.Unavailable, "storage unavailable")
	}
	s.logger.Error(ctx, "request failed", "method", method, "error", err)
	return status.Error(codes.Internal, "internal error")
}

func (s *GRPCServer) caller(ctx context.Context) (string, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "unauthenticated")
	}
	return userID, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *syncrpc.PingRequest) (*syncrpc.PingResponse, error) {
	return &syncrpc.PingResponse{ServerTime: fieldmap.FormatTime(s.now())}, nil
}

func (s *GRPCServer) Select(ctx context.Context, req *syncrpc.SelectRequest) (*syncrpc.SelectResponse, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := services.CheckOwner(userID, req.UserID); err != nil {
		return nil, s.toStatus(ctx, "Select", err)
	}

	var since *time.Time
	if req.Since != "" {
		t, err := fieldmap.ParseTime(req.Since)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "since: %v", err)
		}
		since = &t
	}

	rows, err := s.sync.Select(ctx, userID, req.Table, since)
	if err != nil {
		return nil, s.toStatus(ctx, "Select", err)
	}

	out := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, r)
	}
	s.logger.Debug(ctx, "select", "table", req.Table, "rows", len(out))

	return &syncrpc.SelectResponse{Rows: out}, nil
}

func (s *GRPCServer) Upsert(ctx context.Context, req *syncrpc.UpsertRequest) (*syncrpc.UpsertResponse, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.sync.Upsert(ctx, userID, req.Table, fieldmap.Row(req.Row)); err != nil {
		return nil, s.toStatus(ctx, "Upsert", err)
	}

	return &syncrpc.UpsertResponse{}, nil
}

func (s *GRPCServer) Delete(ctx context.Context, req *syncrpc.DeleteRequest) (*syncrpc.DeleteResponse, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	deleted, err := s.sync.Delete(ctx, userID, req.Table, fieldmap.Row(req.Row))
	if err != nil {
		return nil, s.toStatus(ctx, "Delete", err)
	}

	return &syncrpc.DeleteResponse{Deleted: deleted}, nil
}
