package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const BookingServiceName = "rental.booking.v1.BookingService"

// Full method names, as seen by interceptors.
const (
	BookingService_CheckAvailability_FullMethodName = "/" + BookingServiceName + "/CheckAvailability"
	BookingService_ListBlocks_FullMethodName        = "/" + BookingServiceName + "/ListBlocks"
	BookingService_AddBlock_FullMethodName          = "/" + BookingServiceName + "/AddBlock"
	BookingService_RemoveBlock_FullMethodName       = "/" + BookingServiceName + "/RemoveBlock"
	BookingService_RequestBooking_FullMethodName    = "/" + BookingServiceName + "/RequestBooking"
	BookingService_ApproveRequest_FullMethodName    = "/" + BookingServiceName + "/ApproveRequest"
	BookingService_DeclineRequest_FullMethodName    = "/" + BookingServiceName + "/DeclineRequest"
	BookingService_CancelRequest_FullMethodName     = "/" + BookingServiceName + "/CancelRequest"
	BookingService_TransitionRequest_FullMethodName = "/" + BookingServiceName + "/TransitionRequest"
	BookingService_UpdateRequest_FullMethodName     = "/" + BookingServiceName + "/UpdateRequest"
	BookingService_GetRequest_FullMethodName        = "/" + BookingServiceName + "/GetRequest"
	BookingService_ListMyRentals_FullMethodName     = "/" + BookingServiceName + "/ListMyRentals"
	BookingService_ListMyLendings_FullMethodName    = "/" + BookingServiceName + "/ListMyLendings"
)

// BookingServiceServer is the server API for BookingService. Requests and
// responses are google.protobuf.Struct messages with snake_case fields.
type BookingServiceServer interface {
	CheckAvailability(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListBlocks(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddBlock(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemoveBlock(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RequestBooking(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ApproveRequest(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeclineRequest(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CancelRequest(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TransitionRequest(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateRequest(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRequest(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListMyRentals(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListMyLendings(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterBookingServiceServer(s grpc.ServiceRegistrar, srv BookingServiceServer) {
	s.RegisterService(&BookingService_ServiceDesc, srv)
}

type unaryMethod func(srv BookingServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

// unaryHandler adapts a method to grpc.MethodHandler the same way generated
// code does: decode, then run through the interceptor chain if one is set.
func unaryHandler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BookingServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(BookingServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var BookingService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: BookingServiceName,
	HandlerType: (*BookingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CheckAvailability",
			Handler:    unaryHandler(BookingService_CheckAvailability_FullMethodName, BookingServiceServer.CheckAvailability),
		},
		{
			MethodName: "ListBlocks",
			Handler:    unaryHandler(BookingService_ListBlocks_FullMethodName, BookingServiceServer.ListBlocks),
		},
		{
			MethodName: "AddBlock",
			Handler:    unaryHandler(BookingService_AddBlock_FullMethodName, BookingServiceServer.AddBlock),
		},
		{
			MethodName: "RemoveBlock",
			Handler:    unaryHandler(BookingService_RemoveBlock_FullMethodName, BookingServiceServer.RemoveBlock),
		},
		{
			MethodName: "RequestBooking",
			Handler:    unaryHandler(BookingService_RequestBooking_FullMethodName, BookingServiceServer.RequestBooking),
		},
		{
			MethodName: "ApproveRequest",
			Handler:    unaryHandler(BookingService_ApproveRequest_FullMethodName, BookingServiceServer.ApproveRequest),
		},
		{
			MethodName: "DeclineRequest",
			Handler:    unaryHandler(BookingService_DeclineRequest_FullMethodName, BookingServiceServer.DeclineRequest),
		},
		{
			MethodName: "CancelRequest",
			Handler:    unaryHandler(BookingService_CancelRequest_FullMethodName, BookingServiceServer.CancelRequest),
		},
		{
			MethodName: "TransitionRequest",
			Handler:    unaryHandler(BookingService_TransitionRequest_FullMethodName, BookingServiceServer.TransitionRequest),
		},
		{
			MethodName: "UpdateRequest",
			Handler:    unaryHandler(BookingService_UpdateRequest_FullMethodName, BookingServiceServer.UpdateRequest),
		},
		{
			MethodName: "GetRequest",
			Handler:    unaryHandler(BookingService_GetRequest_FullMethodName, BookingServiceServer.GetRequest),
		},
		{
			MethodName: "ListMyRentals",
			Handler:    unaryHandler(BookingService_ListMyRentals_FullMethodName, BookingServiceServer.ListMyRentals),
		},
		{
			MethodName: "ListMyLendings",
			Handler:    unaryHandler(BookingService_ListMyLendings_FullMethodName, BookingServiceServer.ListMyLendings),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rental/booking/v1/booking.proto",
}
