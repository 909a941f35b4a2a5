package rafflev1

import (
	"context"

	"google.golang.org/grpc"
)

type RaffleServiceClient interface {
	Enter(ctx context.Context, in *EnterRequest, opts ...grpc.CallOption) (*EnterResponse, error)
	CheckUpkeep(
		ctx context.Context, in *CheckUpkeepRequest, opts ...grpc.CallOption,
	) (*CheckUpkeepResponse, error)
	PerformUpkeep(
		ctx context.Context, in *PerformUpkeepRequest, opts ...grpc.CallOption,
	) (*PerformUpkeepResponse, error)
	FulfillRandomWords(
		ctx context.Context, in *FulfillRandomWordsRequest, opts ...grpc.CallOption,
	) (*FulfillRandomWordsResponse, error)
	ReissueDrawRequest(
		ctx context.Context, in *ReissueDrawRequestRequest, opts ...grpc.CallOption,
	) (*ReissueDrawRequestResponse, error)
	GetInfo(ctx context.Context, in *GetInfoRequest, opts ...grpc.CallOption) (*GetInfoResponse, error)
	GetPlayer(
		ctx context.Context, in *GetPlayerRequest, opts ...grpc.CallOption,
	) (*GetPlayerResponse, error)
	GetPlayers(
		ctx context.Context, in *GetPlayersRequest, opts ...grpc.CallOption,
	) (*GetPlayersResponse, error)
	GetBalance(
		ctx context.Context, in *GetBalanceRequest, opts ...grpc.CallOption,
	) (*GetBalanceResponse, error)
	Deposit(ctx context.Context, in *DepositRequest, opts ...grpc.CallOption) (*DepositResponse, error)
	SetPayable(
		ctx context.Context, in *SetPayableRequest, opts ...grpc.CallOption,
	) (*SetPayableResponse, error)
	ListWinners(
		ctx context.Context, in *ListWinnersRequest, opts ...grpc.CallOption,
	) (*ListWinnersResponse, error)
	GetEventStream(
		ctx context.Context, in *GetEventStreamRequest, opts ...grpc.CallOption,
	) (RaffleService_GetEventStreamClient, error)
}

type RaffleService_GetEventStreamClient interface {
	Recv() (*GetEventStreamResponse, error)
	grpc.ClientStream
}

type raffleServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewRaffleServiceClient returns a client that encodes every call with the
// json codec, whatever the options of the given connection.
func NewRaffleServiceClient(cc grpc.ClientConnInterface) RaffleServiceClient {
	return &raffleServiceClient{cc}
}

func (c *raffleServiceClient) Enter(
	ctx context.Context, in *EnterRequest, opts ...grpc.CallOption,
) (*EnterResponse, error) {
	out := new(EnterResponse)
	if err := c.invoke(ctx, "Enter", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *raffleServiceClient) CheckUpkeep(
	ctx context.Context, in *CheckUpkeepRequest, opts ...grpc.CallOption,
) (*CheckUpkeepResponse, error) {
	out := new(CheckUpkeepResponse)
	if err := c.invoke(ctx, "CheckUpkeep", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *raffleServiceClient) PerformUpkeep(
	ctx context.Context, in *PerformUpkeepRequest, opts ...grpc.CallOption,
) (*PerformUpkeepResponse, error) {
	out := new(PerformUpkeepResponse)
	if err := c.invoke(ctx, "PerformUpkeep", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *raffleServiceClient) FulfillRandomWords(
	ctx context.Context, in *FulfillRandomWordsRequest, opts ...grpc.CallOption,
) (*FulfillRandomWordsResponse, error) {
	out := new(FulfillRandomWordsResponse)
	if err := c.invoke(ctx, "FulfillRandomWords", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *raffleServiceClient) ReissueDrawRequest(
	ctx context.Context, in *ReissueDrawRequestRequest, opts ...grpc.CallOption,
) (*ReissueDrawRequestResponse, error) {
	out := new(ReissueDrawRequestResponse)
	if err := c.invoke(ctx, "ReissueDrawRequest", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *raffleServiceClient) GetInfo(
	ctx context.Context, in *GetInfoRequest, opts ...grpc.CallOption,
) (*GetInfoResponse, error) {
	out := new(GetInfoResponse)
	if err := c.invoke(ctx, "GetInfo", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *raffleServiceClient) GetPlayer(
	ctx context.Context, in *GetPlayerRequest, opts ...grpc.CallOption,
) (*GetPlayerResponse, error) {
	out := new(GetPlayerResponse)
	if err := c.invoke(ctx, "GetPlayer", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *raffleServiceClient) GetPlayers(
	ctx context.Context, in *GetPlayersRequest, opts ...grpc.CallOption,
) (*GetPlayersResponse, error) {
	out := new(GetPlayersResponse)
	if err := c.invoke(ctx, "GetPlayers", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *raffleServiceClient) GetBalance(
	ctx context.Context, in *GetBalanceRequest, opts ...grpc.CallOption,
) (*GetBalanceResponse, error) {
	out := new(GetBalanceResponse)
	if err := c.invoke(ctx, "GetBalance", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *raffleServiceClient) Deposit(
	ctx context.Context, in *DepositRequest, opts ...grpc.CallOption,
) (*DepositResponse, error) {
	out := new(DepositResponse)
	if err := c.invoke(ctx, "Deposit", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *raffleServiceClient) SetPayable(
	ctx context.Context, in *SetPayableRequest, opts ...grpc.CallOption,
) (*SetPayableResponse, error) {
	out := new(SetPayableResponse)
	if err := c.invoke(ctx, "SetPayable", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *raffleServiceClient) ListWinners(
	ctx context.Context, in *ListWinnersRequest, opts ...grpc.CallOption,
) (*ListWinnersResponse, error) {
	out := new(ListWinnersResponse)
	if err := c.invoke(ctx, "ListWinners", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *raffleServiceClient) GetEventStream(
	ctx context.Context, in *GetEventStreamRequest, opts ...grpc.CallOption,
) (RaffleService_GetEventStreamClient, error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	stream, err := c.cc.NewStream(
		ctx, &RaffleService_ServiceDesc.Streams[0], fullMethod("GetEventStream"), opts...,
	)
	if err != nil {
		return nil, err
	}
	x := &raffleServiceGetEventStreamClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

func (c *raffleServiceClient) invoke(
	ctx context.Context, method string, in, out interface{}, opts ...grpc.CallOption,
) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, fullMethod(method), in, out, opts...)
}

type raffleServiceGetEventStreamClient struct {
	grpc.ClientStream
}

func (x *raffleServiceGetEventStreamClient) Recv() (*GetEventStreamResponse, error) {
	m := new(GetEventStreamResponse)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}
