// Package grpc exposes the sync service over gRPC. Every method except Ping
// requires an access token in the "access_token" metadata key.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/lifesync/internal/fieldmap"
	"github.com/dmitrijs2005/lifesync/internal/logging"
	"github.com/dmitrijs2005/lifesync/internal/syncrpc"
	"google.golang.org/grpc"
)

// SyncService is the business logic behind the RPCs.
type SyncService interface {
	Select(ctx context.Context, userID, table string, since *time.Time) ([]fieldmap.Row, error)
	Upsert(ctx context.Context, userID, table string, row fieldmap.Row) error
	Delete(ctx context.Context, userID, table string, row fieldmap.Row) (bool, error)
}

type GRPCServer struct {
	syncrpc.UnimplementedSyncServiceServer
	address   string
	sync      SyncService
	logger    logging.Logger
	jwtSecret []byte
	now       func() time.Time
}

func NewGRPCServer(a string, l logging.Logger, ss SyncService, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		sync:      ss,
		jwtSecret: []byte(secretKey),
		now:       time.Now,
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.recoverInterceptor, s.accessTokenInterceptor))

	syncrpc.RegisterSyncServiceServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
