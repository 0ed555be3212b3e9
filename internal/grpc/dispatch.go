package grpcserver

import (
	"context"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"foodDeliveryAdmin/internal/auth"
	"foodDeliveryAdmin/models"
)

// DispatchServiceName is the gRPC service exposing the dispatch journal.
const DispatchServiceName = "foodadmin.v1.DispatchLog"

// Full method names of the dispatch journal service.
const (
	MethodListRecent  = "/" + DispatchServiceName + "/ListRecent"
	MethodListByOrder = "/" + DispatchServiceName + "/ListByOrder"
)

// DispatchLog is the read side of the dispatch journal.
type DispatchLog interface {
	ListRecent(ctx context.Context, limit int, beforeID int64) ([]models.DispatchRecord, error)
	ListByOrder(ctx context.Context, orderID string) ([]models.DispatchRecord, error)
}

// dispatchServer answers with google.protobuf.Struct messages:
//
//	ListRecent  {limit, before}  -> {records: [...]}
//	ListByOrder {orderId}        -> {records: [...]}
type dispatchServer struct {
	journal DispatchLog
	log     *slog.Logger
}

func (d *dispatchServer) listRecent(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	f := req.GetFields()
	limit, before := f["limit"].GetNumberValue(), f["before"].GetNumberValue()
	if limit < 0 || before < 0 {
		return nil, status.Error(codes.InvalidArgument, "limit and before must be non-negative")
	}
	recs, err := d.journal.ListRecent(ctx, int(limit), int64(before))
	if err != nil {
		d.log.Error("grpc_dispatch_log_failed", slog.String("user_id", p.UserID), slog.Any("err", err))
		return nil, status.Error(codes.Internal, "list dispatch log")
	}
	return recordsStruct(recs)
}

func (d *dispatchServer) listByOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	orderID := req.GetFields()["orderId"].GetStringValue()
	if orderID == "" {
		return nil, status.Error(codes.InvalidArgument, "orderId is required")
	}
	recs, err := d.journal.ListByOrder(ctx, orderID)
	if err != nil {
		d.log.Error("grpc_dispatch_log_failed", slog.String("user_id", p.UserID), slog.String("order_id", orderID), slog.Any("err", err))
		return nil, status.Error(codes.Internal, "list dispatch log")
	}
	return recordsStruct(recs)
}

func recordsStruct(recs []models.DispatchRecord) (*structpb.Struct, error) {
	list := make([]any, 0, len(recs))
	for _, r := range recs {
		list = append(list, map[string]any{
			"id":        r.ID,
			"action":    string(r.Action),
			"orderId":   r.OrderID,
			"agentId":   r.AgentID,
			"actor":     r.Actor,
			"outcome":   string(r.Outcome),
			"detail":    r.Detail,
			"createdAt": r.CreatedAt,
		})
	}
	out, err := structpb.NewStruct(map[string]any{"records": list})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode records: %v", err)
	}
	return out, nil
}

func structHandler(call func(*dispatchServer, context.Context, *structpb.Struct) (*structpb.Struct, error), fullMethod string) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		d := srv.(*dispatchServer)
		if interceptor == nil {
			return call(d, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(d, ctx, req.(*structpb.Struct))
		})
	}
}

// dispatchServiceDesc describes the journal service. Requests and replies are google.protobuf.Struct.
var dispatchServiceDesc = grpc.ServiceDesc{
	ServiceName: DispatchServiceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListRecent", Handler: structHandler((*dispatchServer).listRecent, MethodListRecent)},
		{MethodName: "ListByOrder", Handler: structHandler((*dispatchServer).listByOrder, MethodListByOrder)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "foodadmin/v1/dispatch_log.proto",
}
