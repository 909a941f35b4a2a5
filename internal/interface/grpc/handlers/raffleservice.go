package handlers

import (
	"context"

	"github.com/ark-network/raffle/internal/core/application"
	rafflev1 "github.com/ark-network/raffle/pkg/api/raffle/v1"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type handler struct {
	svc application.Service

	eventsListenerHandler *broker[*rafflev1.GetEventStreamResponse]
}

func NewHandler(svc application.Service) rafflev1.RaffleServiceServer {
	h := &handler{
		svc:                   svc,
		eventsListenerHandler: newBroker[*rafflev1.GetEventStreamResponse](),
	}

	go h.listenToEvents()

	return h
}

func (h *handler) Enter(
	ctx context.Context, req *rafflev1.EnterRequest,
) (*rafflev1.EnterResponse, error) {
	if len(req.GetPlayer()) <= 0 {
		return nil, status.Error(codes.InvalidArgument, "missing player")
	}
	value, err := parseAmount(req.GetValue(), "value")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err := h.svc.Enter(ctx, req.GetPlayer(), value); err != nil {
		return nil, toStatus(err)
	}
	return &rafflev1.EnterResponse{}, nil
}

func (h *handler) CheckUpkeep(
	ctx context.Context, _ *rafflev1.CheckUpkeepRequest,
) (*rafflev1.CheckUpkeepResponse, error) {
	upkeepNeeded, err := h.svc.CheckUpkeep(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rafflev1.CheckUpkeepResponse{UpkeepNeeded: upkeepNeeded}, nil
}

func (h *handler) PerformUpkeep(
	ctx context.Context, _ *rafflev1.PerformUpkeepRequest,
) (*rafflev1.PerformUpkeepResponse, error) {
	requestId, err := h.svc.PerformUpkeep(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rafflev1.PerformUpkeepResponse{RequestId: requestId}, nil
}

func (h *handler) FulfillRandomWords(
	ctx context.Context, req *rafflev1.FulfillRandomWordsRequest,
) (*rafflev1.FulfillRandomWordsResponse, error) {
	words, err := parseRandomWords(req.GetRandomWords())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	signature, err := parseSignature(req.GetSignature())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err := h.svc.FulfillRandomWords(
		ctx, req.GetRequestId(), words, signature,
	); err != nil {
		return nil, toStatus(err)
	}
	return &rafflev1.FulfillRandomWordsResponse{}, nil
}

func (h *handler) ReissueDrawRequest(
	ctx context.Context, req *rafflev1.ReissueDrawRequestRequest,
) (*rafflev1.ReissueDrawRequestResponse, error) {
	if len(req.GetCaller()) <= 0 {
		return nil, status.Error(codes.InvalidArgument, "missing caller")
	}

	requestId, err := h.svc.ReissueDrawRequest(ctx, req.GetCaller())
	if err != nil {
		return nil, toStatus(err)
	}
	return &rafflev1.ReissueDrawRequestResponse{RequestId: requestId}, nil
}

func (h *handler) GetInfo(
	ctx context.Context, _ *rafflev1.GetInfoRequest,
) (*rafflev1.GetInfoResponse, error) {
	info, err := h.svc.GetInfo(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return toInfoResponse(info), nil
}

func (h *handler) GetPlayer(
	ctx context.Context, req *rafflev1.GetPlayerRequest,
) (*rafflev1.GetPlayerResponse, error) {
	if req.GetIndex() < 0 {
		return nil, status.Error(codes.InvalidArgument, "index must not be negative")
	}

	player, err := h.svc.GetPlayer(ctx, int(req.GetIndex()))
	if err != nil {
		return nil, status.Error(codes.OutOfRange, err.Error())
	}
	return &rafflev1.GetPlayerResponse{Player: player}, nil
}

func (h *handler) GetPlayers(
	ctx context.Context, _ *rafflev1.GetPlayersRequest,
) (*rafflev1.GetPlayersResponse, error) {
	players, err := h.svc.GetPlayers(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rafflev1.GetPlayersResponse{Players: players}, nil
}

func (h *handler) GetBalance(
	ctx context.Context, req *rafflev1.GetBalanceRequest,
) (*rafflev1.GetBalanceResponse, error) {
	if len(req.GetAddress()) <= 0 {
		return nil, status.Error(codes.InvalidArgument, "missing address")
	}

	account, err := h.svc.GetBalance(ctx, req.GetAddress())
	if err != nil {
		return nil, toStatus(err)
	}
	return &rafflev1.GetBalanceResponse{
		Address: account.Address,
		Balance: account.Balance.String(),
		Payable: !account.NotPayable,
	}, nil
}

func (h *handler) Deposit(
	ctx context.Context, req *rafflev1.DepositRequest,
) (*rafflev1.DepositResponse, error) {
	if len(req.GetAddress()) <= 0 {
		return nil, status.Error(codes.InvalidArgument, "missing address")
	}
	amount, err := parseAmount(req.GetAmount(), "amount")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err := h.svc.Deposit(ctx, req.GetAddress(), amount); err != nil {
		return nil, toStatus(err)
	}
	return &rafflev1.DepositResponse{}, nil
}

func (h *handler) SetPayable(
	ctx context.Context, req *rafflev1.SetPayableRequest,
) (*rafflev1.SetPayableResponse, error) {
	if len(req.GetAddress()) <= 0 {
		return nil, status.Error(codes.InvalidArgument, "missing address")
	}

	if err := h.svc.SetPayable(ctx, req.GetAddress(), req.GetPayable()); err != nil {
		return nil, toStatus(err)
	}
	return &rafflev1.SetPayableResponse{}, nil
}

func (h *handler) ListWinners(
	ctx context.Context, req *rafflev1.ListWinnersRequest,
) (*rafflev1.ListWinnersResponse, error) {
	if req.GetLimit() < 0 {
		return nil, status.Error(codes.InvalidArgument, "limit must not be negative")
	}

	winners, err := h.svc.ListWinners(ctx, int(req.GetLimit()))
	if err != nil {
		return nil, toStatus(err)
	}
	return &rafflev1.ListWinnersResponse{Winners: toWinners(winners)}, nil
}

func (h *handler) GetEventStream(
	_ *rafflev1.GetEventStreamRequest, stream rafflev1.RaffleService_GetEventStreamServer,
) error {
	listener := newListener[*rafflev1.GetEventStreamResponse](uuid.NewString())

	h.eventsListenerHandler.pushListener(listener)
	defer h.eventsListenerHandler.removeListener(listener.id)

	for {
		select {
		case <-stream.Context().Done():
			return nil
		case ev, ok := <-listener.ch:
			if !ok {
				return nil
			}
			if err := stream.Send(ev); err != nil {
				return err
			}
		}
	}
}

// listenToEvents forwards the events of the app service to the stream listeners
// in the order they are received.
func (h *handler) listenToEvents() {
	channel := h.svc.GetEventsChannel(context.Background())
	for event := range channel {
		ev := toEventResponse(event)
		if ev == nil {
			continue
		}

		log.Debugf(
			"forwarding %s event to %d listeners",
			event.GetType(), h.eventsListenerHandler.numListeners(),
		)
		h.eventsListenerHandler.broadcast(ev)
	}

	h.eventsListenerHandler.closeAll()
}
