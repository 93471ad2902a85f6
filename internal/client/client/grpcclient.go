package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/lifesync/internal/common"
	"github.com/dmitrijs2005/lifesync/internal/fieldmap"
	"github.com/dmitrijs2005/lifesync/internal/syncrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      syncrpc.SyncServiceClient
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if s.accessToken != "" {
		ctx = withAccessToken(ctx, s.accessToken)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient prepares a lazy connection to the sync service. No network
// traffic happens until the first call.
func NewGRPCClient(endpointURL, accessToken string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, accessToken: accessToken}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = syncrpc.NewSyncServiceClient(conn)
	return c, nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	_, err := s.ServerTime(ctx)
	return err
}

// ServerTime asks the server for its clock. Sync watermarks are taken from
// it because the server stamps updated_at with the same clock.
func (s *GRPCClient) ServerTime(ctx context.Context) (time.Time, error) {
	resp, err := s.client.Ping(ctx, &syncrpc.PingRequest{})
	if err != nil {
		return time.Time{}, s.mapError(err)
	}

	t, err := fieldmap.ParseTime(resp.ServerTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: server time %q: %v", ErrRejected, resp.ServerTime, err)
	}
	return t, nil
}

// Select fetches the user's rows of a remote table, only those updated after
// since when it is set.
func (s *GRPCClient) Select(ctx context.Context, table, userID string, since *time.Time) ([]fieldmap.Row, error) {
	req := &syncrpc.SelectRequest{Table: table, UserID: userID}
	if since != nil {
		req.Since = fieldmap.FormatTime(*since)
	}

	resp, err := s.client.Select(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}

	rows := make([]fieldmap.Row, 0, len(resp.Rows))
	for _, r := range resp.Rows {
		rows = append(rows, fieldmap.Row(r))
	}
	return rows, nil
}

func (s *GRPCClient) Upsert(ctx context.Context, table string, row fieldmap.Row) error {
	if _, err := s.client.Upsert(ctx, &syncrpc.UpsertRequest{Table: table, Row: row}); err != nil {
		return s.mapError(err)
	}
	return nil
}

// Delete tombstones a row and reports whether the server had it.
func (s *GRPCClient) Delete(ctx context.Context, table string, row fieldmap.Row) (bool, error) {
	resp, err := s.client.Delete(ctx, &syncrpc.DeleteRequest{Table: table, Row: row})
	if err != nil {
		return false, s.mapError(err)
	}
	return resp.Deleted, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	default:
		return fmt.Errorf("%w: %s: %s", ErrRejected, st.Code(), st.Message())
	}
}
