package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/jasmify/internal/common"
	"github.com/dmitrijs2005/jasmify/internal/netx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("core unavailable")
)

// CommandError is a failure reported in-band by the core.
type CommandError struct {
	Command string
	Message string
}

func (e *CommandError) Error() string {
	return e.Command + ": " + e.Message
}

// TokenSource issues channel tokens.
type TokenSource interface {
	GenerateToken(client string) (string, error)
}

type GRPCClient struct {
	name   string
	conn   *grpc.ClientConn
	tokens TokenSource
}

// NewGRPCClient connects lazily to the core at addr. name identifies the
// caller in the tokens it presents.
func NewGRPCClient(addr, name string, tokens TokenSource) (*GRPCClient, error) {
	target, err := netx.DialTarget(addr)
	if err != nil {
		return nil, err
	}
	return newGRPCClient(target, name, tokens)
}

func newGRPCClient(target, name string, tokens TokenSource, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{name: name, tokens: tokens}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return c, nil
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

// accessTokenInterceptor attaches a freshly minted token to every call.
func (c *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	token, err := c.tokens.GenerateToken(c.name)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	return invoker(withAccessToken(ctx, token), method, req, reply, cc, opts...)
}

// Call runs command with args (marshalled to a JSON object, may be nil) and
// decodes the result into out (may be nil).
func (c *GRPCClient) Call(ctx context.Context, command string, args any, out any) error {
	req, err := encodeRequest(command, args)
	if err != nil {
		return err
	}

	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, InvokeMethod, req, resp); err != nil {
		return c.mapError(err)
	}

	fields := resp.GetFields()
	if !fields["ok"].GetBoolValue() {
		return &CommandError{Command: command, Message: fields["error"].GetStringValue()}
	}

	if out == nil {
		return nil
	}
	result, ok := fields["result"]
	if !ok {
		return nil
	}
	b, err := result.MarshalJSON()
	if err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func encodeRequest(command string, args any) (*structpb.Struct, error) {
	m := map[string]any{"command": command}
	if args != nil {
		b, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		var payload map[string]any
		if err := json.Unmarshal(b, &payload); err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		m["payload"] = payload
	}
	return structpb.NewStruct(m)
}

func (c *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
