package rafflev1

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "raffle.v1.RaffleService"

type RaffleServiceServer interface {
	Enter(context.Context, *EnterRequest) (*EnterResponse, error)
	CheckUpkeep(context.Context, *CheckUpkeepRequest) (*CheckUpkeepResponse, error)
	PerformUpkeep(context.Context, *PerformUpkeepRequest) (*PerformUpkeepResponse, error)
	FulfillRandomWords(
		context.Context, *FulfillRandomWordsRequest,
	) (*FulfillRandomWordsResponse, error)
	ReissueDrawRequest(
		context.Context, *ReissueDrawRequestRequest,
	) (*ReissueDrawRequestResponse, error)
	GetInfo(context.Context, *GetInfoRequest) (*GetInfoResponse, error)
	GetPlayer(context.Context, *GetPlayerRequest) (*GetPlayerResponse, error)
	GetPlayers(context.Context, *GetPlayersRequest) (*GetPlayersResponse, error)
	GetBalance(context.Context, *GetBalanceRequest) (*GetBalanceResponse, error)
	Deposit(context.Context, *DepositRequest) (*DepositResponse, error)
	SetPayable(context.Context, *SetPayableRequest) (*SetPayableResponse, error)
	ListWinners(context.Context, *ListWinnersRequest) (*ListWinnersResponse, error)
	GetEventStream(*GetEventStreamRequest, RaffleService_GetEventStreamServer) error
}

type RaffleService_GetEventStreamServer interface {
	Send(*GetEventStreamResponse) error
	grpc.ServerStream
}

type raffleServiceGetEventStreamServer struct {
	grpc.ServerStream
}

func (x *raffleServiceGetEventStreamServer) Send(m *GetEventStreamResponse) error {
	return x.ServerStream.SendMsg(m)
}

func RegisterRaffleServiceServer(s grpc.ServiceRegistrar, srv RaffleServiceServer) {
	s.RegisterService(&RaffleService_ServiceDesc, srv)
}

var RaffleService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RaffleServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Enter",
			Handler:    unaryHandler("Enter", RaffleServiceServer.Enter),
		},
		{
			MethodName: "CheckUpkeep",
			Handler:    unaryHandler("CheckUpkeep", RaffleServiceServer.CheckUpkeep),
		},
		{
			MethodName: "PerformUpkeep",
			Handler:    unaryHandler("PerformUpkeep", RaffleServiceServer.PerformUpkeep),
		},
		{
			MethodName: "FulfillRandomWords",
			Handler: unaryHandler(
				"FulfillRandomWords", RaffleServiceServer.FulfillRandomWords,
			),
		},
		{
			MethodName: "ReissueDrawRequest",
			Handler: unaryHandler(
				"ReissueDrawRequest", RaffleServiceServer.ReissueDrawRequest,
			),
		},
		{
			MethodName: "GetInfo",
			Handler:    unaryHandler("GetInfo", RaffleServiceServer.GetInfo),
		},
		{
			MethodName: "GetPlayer",
			Handler:    unaryHandler("GetPlayer", RaffleServiceServer.GetPlayer),
		},
		{
			MethodName: "GetPlayers",
			Handler:    unaryHandler("GetPlayers", RaffleServiceServer.GetPlayers),
		},
		{
			MethodName: "GetBalance",
			Handler:    unaryHandler("GetBalance", RaffleServiceServer.GetBalance),
		},
		{
			MethodName: "Deposit",
			Handler:    unaryHandler("Deposit", RaffleServiceServer.Deposit),
		},
		{
			MethodName: "SetPayable",
			Handler:    unaryHandler("SetPayable", RaffleServiceServer.SetPayable),
		},
		{
			MethodName: "ListWinners",
			Handler:    unaryHandler("ListWinners", RaffleServiceServer.ListWinners),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "GetEventStream",
			Handler:       getEventStreamHandler,
			ServerStreams: true,
		},
	},
	Metadata: "raffle/v1/service.proto",
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryHandler[Req any, Res any](
	method string,
	call func(RaffleServiceServer, context.Context, *Req) (*Res, error),
) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(
		srv interface{}, ctx context.Context,
		dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor,
	) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RaffleServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod(method),
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(RaffleServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func getEventStreamHandler(srv interface{}, stream grpc.ServerStream) error {
	m := new(GetEventStreamRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(RaffleServiceServer).GetEventStream(
		m, &raffleServiceGetEventStreamServer{stream},
	)
}
