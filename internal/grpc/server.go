// Package grpc - внутренний gRPC-сервис справочных запросов о пользователях и работах
// для соседних сервисов. Сообщения - стандартные типы protobuf (wrapperspb, structpb).
package grpc

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
	"github.com/devabdallah1411/arabFilmsServer/internal/store"
)

const ServiceName = "catalog.v1.Lookup"

// Полные имена методов для клиентов.
const (
	MethodGetUser             = "/" + ServiceName + "/GetUser"
	MethodCheckWorkExists     = "/" + ServiceName + "/CheckWorkExists"
	MethodGetWorkInfo         = "/" + ServiceName + "/GetWorkInfo"
	MethodFilterExistingWorks = "/" + ServiceName + "/FilterExistingWorks"
)

// LookupServer - контракт сервиса.
type LookupServer interface {
	GetUser(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	CheckWorkExists(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	GetWorkInfo(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	// FilterExistingWorks возвращает подмножество переданных ID, для которых работа существует.
	FilterExistingWorks(ctx context.Context, req *structpb.ListValue) (*structpb.ListValue, error)
}

// ServiceDesc описывает сервис без сгенерированного кода.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LookupServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetUser", func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) },
			func(s LookupServer, ctx context.Context, in *wrapperspb.StringValue) (proto.Message, error) {
				return s.GetUser(ctx, in)
			}),
		unary("CheckWorkExists", func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) },
			func(s LookupServer, ctx context.Context, in *wrapperspb.StringValue) (proto.Message, error) {
				return s.CheckWorkExists(ctx, in)
			}),
		unary("GetWorkInfo", func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) },
			func(s LookupServer, ctx context.Context, in *wrapperspb.StringValue) (proto.Message, error) {
				return s.GetWorkInfo(ctx, in)
			}),
		unary("FilterExistingWorks", func() *structpb.ListValue { return new(structpb.ListValue) },
			func(s LookupServer, ctx context.Context, in *structpb.ListValue) (proto.Message, error) {
				return s.FilterExistingWorks(ctx, in)
			}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catalog/v1/lookup.proto",
}

// unary строит описание унарного метода так же, как это делает protoc-gen-go-grpc.
func unary[Req proto.Message](name string, newReq func() Req, call func(LookupServer, context.Context, Req) (proto.Message, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(LookupServer), ctx, req.(Req))
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// Register регистрирует сервис на gRPC-сервере.
func Register(s grpc.ServiceRegistrar, srv LookupServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Server реализует LookupServer поверх хранилищ.
type Server struct {
	users  store.UserStore
	works  store.WorkStore
	logger *slog.Logger
}

var _ LookupServer = (*Server)(nil)

func NewServer(users store.UserStore, works store.WorkStore, logger *slog.Logger) *Server {
	return &Server{users: users, works: works, logger: logger}
}

func requiredID(req *wrapperspb.StringValue, what string) (string, error) {
	id := strings.TrimSpace(req.GetValue())
	if id == "" {
		return "", status.Errorf(codes.InvalidArgument, "%s cannot be empty", what)
	}
	return id, nil
}

// GetUser возвращает публичные поля пользователя: id, username, email, role.
func (s *Server) GetUser(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	userID, err := requiredID(req, "user_id")
	if err != nil {
		s.logger.WarnContext(ctx, "gRPC GetUser called with empty user_id")
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, status.Errorf(codes.NotFound, "user not found with ID %s", userID)
		}
		s.logger.ErrorContext(ctx, "Failed to get user for gRPC GetUser", slog.String("userID", userID), slog.String("error", err.Error()))
		return nil, status.Error(codes.Internal, "failed to retrieve user")
	}
	return structpb.NewStruct(map[string]interface{}{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role.String(),
	})
}

func (s *Server) CheckWorkExists(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	workID, err := requiredID(req, "work_id")
	if err != nil {
		return nil, err
	}
	if _, err := s.works.GetOwner(ctx, workID); err != nil {
		if errors.Is(err, store.ErrWorkNotFound) {
			return wrapperspb.Bool(false), nil
		}
		s.logger.ErrorContext(ctx, "Failed to check work existence", slog.String("workID", workID), slog.String("error", err.Error()))
		return nil, status.Error(codes.Internal, "failed to check work existence")
	}
	return wrapperspb.Bool(true), nil
}

// GetWorkInfo возвращает краткие сведения о работе.
func (s *Server) GetWorkInfo(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	workID, err := requiredID(req, "work_id")
	if err != nil {
		return nil, err
	}
	work, err := s.works.GetByID(ctx, workID)
	if err != nil {
		if errors.Is(err, store.ErrWorkNotFound) {
			return nil, status.Errorf(codes.NotFound, "work not found with ID %s", workID)
		}
		s.logger.ErrorContext(ctx, "Failed to get work for gRPC GetWorkInfo", slog.String("workID", workID), slog.String("error", err.Error()))
		return nil, status.Error(codes.Internal, "failed to retrieve work")
	}
	return structpb.NewStruct(workInfo(work))
}

func workInfo(w *domain.Work) map[string]interface{} {
	return map[string]interface{}{
		"id":          w.ID,
		"type":        string(w.Type),
		"nameEnglish": w.NameEnglish,
		"nameArabic":  w.NameArabic,
		"year":        w.Year,
		"createdBy":   w.CreatedBy,
	}
}

func (s *Server) FilterExistingWorks(ctx context.Context, req *structpb.ListValue) (*structpb.ListValue, error) {
	ids := make([]string, 0, len(req.GetValues()))
	for _, v := range req.GetValues() {
		if id := strings.TrimSpace(v.GetStringValue()); id != "" {
			ids = append(ids, id)
		}
	}
	existing, err := s.works.ExistingIDs(ctx, ids)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to filter existing works", slog.String("error", err.Error()))
		return nil, status.Error(codes.Internal, "failed to check works")
	}
	out := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(existing))}
	for _, id := range existing {
		out.Values = append(out.Values, structpb.NewStringValue(id))
	}
	return out, nil
}

// LoggingInterceptor логирует каждый унарный вызов с кодом ответа и длительностью.
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.InfoContext(ctx, "gRPC call",
			slog.String("method", info.FullMethod),
			slog.String("code", status.Code(err).String()),
			slog.Duration("duration", time.Since(start)),
		)
		return resp, err
	}
}
