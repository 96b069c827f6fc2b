package grpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/dmitrijs2005/jasmify/internal/commands"
	"github.com/dmitrijs2005/jasmify/internal/logging"
	"github.com/dmitrijs2005/jasmify/internal/netx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Dispatcher runs a named command.
type Dispatcher interface {
	Dispatch(ctx context.Context, command string, payload json.RawMessage) commands.Response
}

// TokenVerifier checks channel tokens.
type TokenVerifier interface {
	GetClientFromToken(token string) (string, error)
}

type GRPCServer struct {
	address        string
	dispatcher     Dispatcher
	tokens         TokenVerifier
	commandTimeout time.Duration
	logger         logging.Logger
}

func NewGRPCServer(address string, l logging.Logger, d Dispatcher, tokens TokenVerifier, commandTimeout time.Duration) *GRPCServer {
	return &GRPCServer{
		address:        address,
		dispatcher:     d,
		tokens:         tokens,
		commandTimeout: commandTimeout,
		logger:         l.With("module", "grpc_server"),
	}
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := netx.Listen(s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on an existing listener until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	RegisterCommandsServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}
	return nil
}

func (s *GRPCServer) Invoke(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	command, payload, err := decodeRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if s.commandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.commandTimeout)
		defer cancel()
	}

	s.logger.Debug(ctx, "command received", "command", command)
	resp := s.dispatcher.Dispatch(ctx, command, payload)

	out, err := encodeResponse(resp)
	if err != nil {
		s.logger.Error(ctx, "failed to encode response", "command", command, "error", err)
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return out, nil
}

func decodeRequest(req *structpb.Struct) (string, json.RawMessage, error) {
	fields := req.GetFields()

	cmd, ok := fields["command"]
	if !ok {
		return "", nil, fmt.Errorf("missing command")
	}
	sv, ok := cmd.GetKind().(*structpb.Value_StringValue)
	if !ok || sv.StringValue == "" {
		return "", nil, fmt.Errorf("command must be a non-empty string")
	}

	p, ok := fields["payload"]
	if !ok {
		return sv.StringValue, nil, nil
	}
	if _, isNull := p.GetKind().(*structpb.Value_NullValue); isNull {
		return sv.StringValue, nil, nil
	}
	if _, isStruct := p.GetKind().(*structpb.Value_StructValue); !isStruct {
		return "", nil, fmt.Errorf("payload must be an object")
	}

	payload, err := p.MarshalJSON()
	if err != nil {
		return "", nil, fmt.Errorf("payload: %w", err)
	}
	return sv.StringValue, payload, nil
}

func encodeResponse(resp commands.Response) (*structpb.Struct, error) {
	b, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}
