// Package clients - клиенты внешних сервисов.
package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	lookup "github.com/devabdallah1411/arabFilmsServer/internal/grpc"
	"github.com/devabdallah1411/arabFilmsServer/internal/service"
)

// ErrNotFound возвращается, когда удаленный каталог отвечает NotFound.
var ErrNotFound = errors.New("not found in remote catalog")

const callTimeout = 3 * time.Second

// UserInfo - публичные поля пользователя удаленного каталога.
type UserInfo struct {
	ID       string
	Username string
	Email    string
	Role     string
}

// WorkInfo - краткие сведения о работе.
type WorkInfo struct {
	ID          string
	Type        string
	NameEnglish string
	NameArabic  string
	Year        int
	CreatedBy   string
}

// LookupClient обращается к сервису catalog.v1.Lookup.
type LookupClient struct {
	conn   *grpc.ClientConn
	logger *slog.Logger
}

var _ service.WorkLookup = (*LookupClient)(nil)

// NewLookupClient создает клиент. Соединение устанавливается лениво при первом вызове.
func NewLookupClient(addr string, logger *slog.Logger, opts ...grpc.DialOption) (*LookupClient, error) {
	logger.Info("Connecting to catalog lookup gRPC", slog.String("address", addr))

	dialOpts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		logger.Error("Failed to create catalog lookup client", slog.String("address", addr), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create lookup client for %s: %w", addr, err)
	}
	return &LookupClient{conn: conn, logger: logger}, nil
}

func (c *LookupClient) invoke(ctx context.Context, method string, in, out interface{}) error {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	if err := c.conn.Invoke(callCtx, method, in, out); err != nil {
		st, _ := status.FromError(err)
		if st.Code() == codes.NotFound {
			return fmt.Errorf("%s: %w", method, ErrNotFound)
		}
		c.logger.ErrorContext(ctx, "gRPC lookup call failed",
			slog.String("method", method),
			slog.String("code", st.Code().String()),
			slog.String("error", st.Message()),
		)
		return fmt.Errorf("gRPC call %s failed: %w", method, err)
	}
	return nil
}

func (c *LookupClient) WorkExists(ctx context.Context, workID string) (bool, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.invoke(ctx, lookup.MethodCheckWorkExists, wrapperspb.String(workID), out); err != nil {
		return false, err
	}
	return out.GetValue(), nil
}

func (c *LookupClient) ExistingWorkIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	in := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(ids))}
	for _, id := range ids {
		in.Values = append(in.Values, structpb.NewStringValue(id))
	}
	out := new(structpb.ListValue)
	if err := c.invoke(ctx, lookup.MethodFilterExistingWorks, in, out); err != nil {
		return nil, err
	}
	existing := make([]string, 0, len(out.GetValues()))
	for _, v := range out.GetValues() {
		existing = append(existing, v.GetStringValue())
	}
	return existing, nil
}

func (c *LookupClient) GetUser(ctx context.Context, userID string) (*UserInfo, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, lookup.MethodGetUser, wrapperspb.String(userID), out); err != nil {
		return nil, err
	}
	f := out.GetFields()
	return &UserInfo{
		ID:       f["id"].GetStringValue(),
		Username: f["username"].GetStringValue(),
		Email:    f["email"].GetStringValue(),
		Role:     f["role"].GetStringValue(),
	}, nil
}

func (c *LookupClient) GetWorkInfo(ctx context.Context, workID string) (*WorkInfo, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, lookup.MethodGetWorkInfo, wrapperspb.String(workID), out); err != nil {
		return nil, err
	}
	f := out.GetFields()
	return &WorkInfo{
		ID:          f["id"].GetStringValue(),
		Type:        f["type"].GetStringValue(),
		NameEnglish: f["nameEnglish"].GetStringValue(),
		NameArabic:  f["nameArabic"].GetStringValue(),
		Year:        int(f["year"].GetNumberValue()),
		CreatedBy:   f["createdBy"].GetStringValue(),
	}, nil
}

// Close закрывает соединение.
func (c *LookupClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
