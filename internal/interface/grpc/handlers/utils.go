package handlers

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/ark-network/raffle/internal/core/application"
	"github.com/ark-network/raffle/internal/core/domain"
	rafflev1 "github.com/ark-network/raffle/pkg/api/raffle/v1"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func parseAmount(amount, name string) (*big.Int, error) {
	if len(amount) <= 0 {
		return nil, fmt.Errorf("missing %s", name)
	}
	value, err := domain.ParseAmount(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %s", name, err)
	}
	return value, nil
}

func parseRandomWords(words []string) ([]*big.Int, error) {
	if len(words) <= 0 {
		return nil, fmt.Errorf("missing random words")
	}
	parsed := make([]*big.Int, 0, len(words))
	for _, w := range words {
		word, err := domain.ParseAmount(w)
		if err != nil {
			return nil, fmt.Errorf("invalid random word %s: %s", w, err)
		}
		parsed = append(parsed, word)
	}
	return parsed, nil
}

func parseSignature(signature string) ([]byte, error) {
	if len(signature) <= 0 {
		return nil, fmt.Errorf("missing signature")
	}
	buf, err := hex.DecodeString(signature)
	if err != nil {
		return nil, fmt.Errorf("invalid signature: %s", err)
	}
	return buf, nil
}

// toStatus maps the error kinds of the app service to grpc codes.
func toStatus(err error) error {
	var code codes.Code
	switch {
	case errors.Is(err, domain.ErrInvalidEntranceFee),
		errors.Is(err, domain.ErrInvalidAddress),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrMissingRandomWords):
		code = codes.InvalidArgument
	case errors.Is(err, domain.ErrNotOpen),
		errors.Is(err, domain.ErrTooEarly),
		errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrRequestNotExpired):
		code = codes.FailedPrecondition
	case errors.Is(err, domain.ErrUnauthorizedFulfiller),
		errors.Is(err, domain.ErrNotOperator):
		code = codes.PermissionDenied
	case errors.Is(err, domain.ErrUnknownRequest):
		code = codes.NotFound
	case errors.Is(err, domain.ErrTransferFailed):
		code = codes.Aborted
	default:
		code = codes.Internal
	}
	return status.Error(code, err.Error())
}

func toInfoResponse(info *application.RaffleInfo) *rafflev1.GetInfoResponse {
	var pending *rafflev1.PendingRequest
	if info.PendingRequest != nil {
		pending = &rafflev1.PendingRequest{
			RequestId: info.PendingRequest.RequestId,
			RoundId:   info.PendingRequest.RoundId,
			Timestamp: info.PendingRequest.Timestamp,
		}
	}
	return &rafflev1.GetInfoResponse{
		State:              info.State.String(),
		RoundId:            info.RoundId,
		EntranceFee:        info.EntranceFee.String(),
		Interval:           info.Interval,
		StartTimestamp:     info.StartTimestamp,
		Delta:              info.Delta,
		NumPlayers:         int64(info.NumPlayers),
		CollectedValue:     info.CollectedValue.String(),
		RecentWinner:       info.RecentWinner,
		Rounds:             info.Rounds,
		PendingRequest:     pending,
		UpkeepNeeded:       info.UpkeepNeeded,
		CoordinatorAddress: info.CoordinatorAddress,
		CoordinatorPubKey:  info.CoordinatorPubKey,
		Timestamp:          info.Timestamp,
	}
}

func toWinners(winners []domain.Winner) []rafflev1.Winner {
	list := make([]rafflev1.Winner, 0, len(winners))
	for _, w := range winners {
		list = append(list, rafflev1.Winner{
			RoundId:    w.RoundId,
			Address:    w.Address,
			Prize:      w.Prize.String(),
			RequestId:  w.RequestId,
			NumPlayers: int64(w.NumPlayers),
			Timestamp:  w.Timestamp,
		})
	}
	return list
}

func toEventResponse(event domain.RaffleEvent) *rafflev1.GetEventStreamResponse {
	switch e := event.(type) {
	case domain.RaffleInitialized:
		return &rafflev1.GetEventStreamResponse{
			RaffleInitialized: &rafflev1.RaffleInitializedEvent{
				RoundId:     e.RoundId,
				EntranceFee: e.EntranceFee.String(),
				Interval:    e.Interval,
				Timestamp:   e.Timestamp,
			},
		}
	case domain.EntryRecorded:
		return &rafflev1.GetEventStreamResponse{
			EntryRecorded: &rafflev1.EntryRecordedEvent{
				RoundId:   e.RoundId,
				Player:    e.Player,
				FeePaid:   e.FeePaid.String(),
				Timestamp: e.Timestamp,
			},
		}
	case domain.ClosingRequested:
		return &rafflev1.GetEventStreamResponse{
			ClosingRequested: &rafflev1.ClosingRequestedEvent{
				RoundId:   e.RoundId,
				RequestId: e.RequestId,
				Timestamp: e.Timestamp,
			},
		}
	case domain.DrawRequestReissued:
		return &rafflev1.GetEventStreamResponse{
			DrawRequestReissued: &rafflev1.DrawRequestReissuedEvent{
				RoundId:           e.RoundId,
				PreviousRequestId: e.PreviousRequestId,
				RequestId:         e.RequestId,
				Timestamp:         e.Timestamp,
			},
		}
	case domain.WinnerSelected:
		return &rafflev1.GetEventStreamResponse{
			WinnerSelected: &rafflev1.WinnerSelectedEvent{
				RoundId:     e.RoundId,
				RequestId:   e.RequestId,
				Winner:      e.Winner,
				WinnerIndex: int64(e.WinnerIndex),
				NumPlayers:  int64(e.NumPlayers),
				Prize:       e.Prize.String(),
				RandomWord:  e.RandomWord.String(),
				NextRoundId: e.NextRoundId,
				Timestamp:   e.Timestamp,
			},
		}
	default:
		return nil
	}
}
