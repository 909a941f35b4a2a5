package application_test

import (
	"context"
	"encoding/hex"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ark-network/raffle/internal/core/application"
	"github.com/ark-network/raffle/internal/core/domain"
	"github.com/ark-network/raffle/internal/core/ports"
	localcoordinator "github.com/ark-network/raffle/internal/infrastructure/coordinator/local"
	"github.com/ark-network/raffle/internal/infrastructure/db"
	watermillbus "github.com/ark-network/raffle/internal/infrastructure/eventbus/watermill"
	"github.com/ark-network/raffle/pkg/oracle"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	interval       = int64(30)
	keeperInterval = int64(10)
	requestTimeout = int64(600)
	operator       = "0x00000000000000000000000000000000000000aa"
)

var (
	startTime = time.Unix(1700000000, 0)
	players   = []string{
		"0x1111111111111111111111111111111111111111",
		"0x2222222222222222222222222222222222222222",
		"0x3333333333333333333333333333333333333333",
	}
	outsider = "0x4444444444444444444444444444444444444444"
	unit     = big.NewInt(1)
)

type testEnv struct {
	svc         application.Service
	coordinator *localcoordinator.Coordinator
	oracleKey   *secp256k1.PrivateKey
	clock       *clockwork.FakeClock
	scheduler   *mockedScheduler
}

func newConfig(entranceFee *big.Int) application.Config {
	return application.Config{
		EntranceFee:     entranceFee,
		Interval:        interval,
		KeeperInterval:  keeperInterval,
		RequestTimeout:  requestTimeout,
		OperatorAddress: operator,
		RandomnessRequest: ports.RandomnessRequest{
			KeyHash:          "0x474e34a077df58807dbe9c96d3c009b23b3c6d0cce433e59bbf5b34f823bc56c",
			SubscriptionId:   1,
			MinConfirmations: 3,
			CallbackGasLimit: 500000,
			NumWords:         1,
		},
	}
}

func newTestEnv(
	t *testing.T, entranceFee *big.Int, dbDir string, clock *clockwork.FakeClock,
) (*testEnv, error) {
	repoManager, err := db.NewService(db.ServiceConfig{
		EventStoreType:   "badger",
		DataStoreType:    "badger",
		EventStoreConfig: []interface{}{dbDir, nil},
		DataStoreConfig:  []interface{}{dbDir, nil},
	})
	require.NoError(t, err)

	eventBus, err := watermillbus.NewEventBus()
	require.NoError(t, err)

	key, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	coordinator, err := localcoordinator.NewCoordinator(localcoordinator.Config{
		OracleKey:        key,
		SubscriptionId:   1,
		FulfillmentDelay: -1,
		Clock:            clock,
	})
	require.NoError(t, err)

	scheduler := &mockedScheduler{}
	scheduler.On("ScheduleTask", keeperInterval, false, mock.Anything).Return(nil)
	scheduler.On("Start").Return()
	scheduler.On("Stop").Return()

	svc, err := application.NewService(
		newConfig(entranceFee), repoManager, coordinator, eventBus, scheduler, clock,
	)
	require.NoError(t, err)

	if err := svc.Start(); err != nil {
		coordinator.Close()
		eventBus.Close()
		repoManager.Close()
		return nil, err
	}

	return &testEnv{svc, coordinator, key, clock, scheduler}, nil
}

func setup(t *testing.T, entranceFee *big.Int) *testEnv {
	env, err := newTestEnv(t, entranceFee, "", clockwork.NewFakeClockAt(startTime))
	require.NoError(t, err)
	t.Cleanup(env.svc.Stop)
	return env
}

func (e *testEnv) fundAndEnter(t *testing.T, addresses ...string) {
	ctx := context.Background()
	info, err := e.svc.GetInfo(ctx)
	require.NoError(t, err)

	for _, addr := range addresses {
		require.NoError(t, e.svc.Deposit(ctx, addr, info.EntranceFee))
		require.NoError(t, e.svc.Enter(ctx, addr, info.EntranceFee))
	}
}

func (e *testEnv) sign(t *testing.T, requestId uint64, words []*big.Int) []byte {
	signature, err := oracle.SignFulfillment(e.oracleKey, requestId, words)
	require.NoError(t, err)
	return signature
}

func (e *testEnv) closeRound(t *testing.T) uint64 {
	e.clock.Advance(time.Duration(interval+1) * time.Second)
	requestId, err := e.svc.PerformUpkeep(context.Background())
	require.NoError(t, err)
	return requestId
}

func TestStart(t *testing.T) {
	env := setup(t, unit)
	ctx := context.Background()

	info, err := env.svc.GetInfo(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.OpenState, info.State)
	require.Equal(t, "1", info.EntranceFee.String())
	require.Equal(t, interval, info.Interval)
	require.Equal(t, startTime.Unix(), info.StartTimestamp)
	require.Zero(t, info.NumPlayers)
	require.Zero(t, info.CollectedValue.Sign())
	require.Nil(t, info.PendingRequest)
	require.False(t, info.UpkeepNeeded)
	require.Equal(t, env.coordinator.Address(), info.CoordinatorAddress)
	require.Equal(
		t, hex.EncodeToString(env.oracleKey.PubKey().SerializeCompressed()),
		info.CoordinatorPubKey,
	)

	env.scheduler.AssertCalled(t, "ScheduleTask", keeperInterval, false, mock.Anything)
	env.scheduler.AssertCalled(t, "Start")
}

func TestEnter(t *testing.T) {
	ctx := context.Background()
	entranceFee, _ := new(big.Int).SetString("1000000000000000", 10)

	t.Run("valid", func(t *testing.T) {
		env := setup(t, entranceFee)

		for i, player := range players {
			env.fundAndEnter(t, player)

			info, err := env.svc.GetInfo(ctx)
			require.NoError(t, err)
			require.Equal(t, i+1, info.NumPlayers)
			expected := new(big.Int).Mul(entranceFee, big.NewInt(int64(i+1)))
			require.Zero(t, expected.Cmp(info.CollectedValue))

			account, err := env.svc.GetBalance(ctx, player)
			require.NoError(t, err)
			require.Zero(t, account.Balance.Sign())

			got, err := env.svc.GetPlayer(ctx, i)
			require.NoError(t, err)
			require.Equal(t, player, got)
		}

		got, err := env.svc.GetPlayers(ctx)
		require.NoError(t, err)
		require.Equal(t, players, got)
	})

	t.Run("invalid", func(t *testing.T) {
		env := setup(t, entranceFee)
		funds := new(big.Int).Mul(entranceFee, big.NewInt(10))
		require.NoError(t, env.svc.Deposit(ctx, players[0], funds))

		lowFee, _ := new(big.Int).SetString("900000000000000", 10)
		fixtures := []struct {
			name        string
			player      string
			value       *big.Int
			expectedErr error
		}{
			{"fee too low", players[0], lowFee, domain.ErrInvalidEntranceFee},
			{"fee too high", players[0], funds, domain.ErrInvalidEntranceFee},
			{"no funds", outsider, entranceFee, domain.ErrInsufficientFunds},
			{"invalid address", "0x1234", entranceFee, domain.ErrInvalidAddress},
		}

		for _, f := range fixtures {
			t.Run(f.name, func(t *testing.T) {
				err := env.svc.Enter(ctx, f.player, f.value)
				require.ErrorIs(t, err, f.expectedErr)

				info, err := env.svc.GetInfo(ctx)
				require.NoError(t, err)
				require.Zero(t, info.NumPlayers)
				require.Zero(t, info.CollectedValue.Sign())

				account, err := env.svc.GetBalance(ctx, players[0])
				require.NoError(t, err)
				require.Zero(t, funds.Cmp(account.Balance))
			})
		}

		var feeErr domain.InvalidEntranceFeeError
		err := env.svc.Enter(ctx, players[0], lowFee)
		require.True(t, errors.As(err, &feeErr))
		require.Zero(t, entranceFee.Cmp(feeErr.EntranceFee))
	})

	t.Run("not open", func(t *testing.T) {
		env := setup(t, unit)
		env.fundAndEnter(t, players[0])
		env.closeRound(t)

		require.NoError(t, env.svc.Deposit(ctx, players[1], unit))
		err := env.svc.Enter(ctx, players[1], unit)
		require.ErrorIs(t, err, domain.ErrNotOpen)

		account, err := env.svc.GetBalance(ctx, players[1])
		require.NoError(t, err)
		require.Equal(t, "1", account.Balance.String())
	})
}

func TestPerformUpkeep(t *testing.T) {
	ctx := context.Background()

	t.Run("too early", func(t *testing.T) {
		env := setup(t, unit)
		env.fundAndEnter(t, players...)
		env.clock.Advance(10 * time.Second)

		upkeepNeeded, err := env.svc.CheckUpkeep(ctx)
		require.NoError(t, err)
		require.False(t, upkeepNeeded)

		requestId, err := env.svc.PerformUpkeep(ctx)
		require.ErrorIs(t, err, domain.ErrTooEarly)
		require.Zero(t, requestId)

		var tooEarlyErr domain.TooEarlyError
		require.True(t, errors.As(err, &tooEarlyErr))
		require.Equal(t, "3", tooEarlyErr.Balance.String())
		require.Equal(t, 3, tooEarlyErr.NumPlayers)
		require.Equal(t, domain.OpenState, tooEarlyErr.State)

		info, err := env.svc.GetInfo(ctx)
		require.NoError(t, err)
		require.Equal(t, domain.OpenState, info.State)
		require.Empty(t, env.coordinator.PendingRequests())
	})

	t.Run("no players", func(t *testing.T) {
		env := setup(t, unit)
		env.clock.Advance(time.Duration(interval+1) * time.Second)

		upkeepNeeded, err := env.svc.CheckUpkeep(ctx)
		require.NoError(t, err)
		require.False(t, upkeepNeeded)

		_, err = env.svc.PerformUpkeep(ctx)
		require.ErrorIs(t, err, domain.ErrTooEarly)
	})

	t.Run("valid", func(t *testing.T) {
		env := setup(t, unit)
		env.fundAndEnter(t, players[0])
		env.clock.Advance(time.Duration(interval) * time.Second)

		upkeepNeeded, err := env.svc.CheckUpkeep(ctx)
		require.NoError(t, err)
		require.True(t, upkeepNeeded)

		requestId, err := env.svc.PerformUpkeep(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(1), requestId)
		require.Equal(t, []uint64{1}, env.coordinator.PendingRequests())

		info, err := env.svc.GetInfo(ctx)
		require.NoError(t, err)
		require.Equal(t, domain.CalculatingState, info.State)
		require.NotNil(t, info.PendingRequest)
		require.Equal(t, requestId, info.PendingRequest.RequestId)
		require.Equal(t, info.RoundId, info.PendingRequest.RoundId)

		upkeepNeeded, err = env.svc.CheckUpkeep(ctx)
		require.NoError(t, err)
		require.False(t, upkeepNeeded)

		_, err = env.svc.PerformUpkeep(ctx)
		require.ErrorIs(t, err, domain.ErrTooEarly)
		require.Len(t, env.coordinator.PendingRequests(), 1)
	})

	t.Run("keeper", func(t *testing.T) {
		env := setup(t, unit)
		require.NotNil(t, env.scheduler.task)

		env.scheduler.task()
		info, err := env.svc.GetInfo(ctx)
		require.NoError(t, err)
		require.Equal(t, domain.OpenState, info.State)

		env.fundAndEnter(t, players[0])
		env.clock.Advance(time.Duration(interval+1) * time.Second)
		env.scheduler.task()

		info, err = env.svc.GetInfo(ctx)
		require.NoError(t, err)
		require.Equal(t, domain.CalculatingState, info.State)
	})
}

func TestFulfillRandomWords(t *testing.T) {
	ctx := context.Background()

	t.Run("end to end", func(t *testing.T) {
		env := setup(t, unit)
		eventsCh := env.svc.GetEventsChannel(ctx)

		env.fundAndEnter(t, players...)
		requestId := env.closeRound(t)

		env.clock.Advance(15 * time.Second)
		fulfilledAt := env.clock.Now().Unix()

		_, err := env.coordinator.FulfillRandomWordsWithOverride(
			ctx, requestId, []*big.Int{big.NewInt(7)},
		)
		require.NoError(t, err)

		// 7 mod 3 = 1, the second entrant wins the whole pot.
		winner, err := env.svc.GetBalance(ctx, players[1])
		require.NoError(t, err)
		require.Equal(t, "3", winner.Balance.String())
		for _, loser := range []string{players[0], players[2]} {
			account, err := env.svc.GetBalance(ctx, loser)
			require.NoError(t, err)
			require.Zero(t, account.Balance.Sign())
		}

		info, err := env.svc.GetInfo(ctx)
		require.NoError(t, err)
		require.Equal(t, domain.OpenState, info.State)
		require.Zero(t, info.NumPlayers)
		require.Zero(t, info.CollectedValue.Sign())
		require.Nil(t, info.PendingRequest)
		require.Equal(t, fulfilledAt, info.StartTimestamp)
		require.Equal(t, players[1], info.RecentWinner)
		require.Equal(t, uint64(1), info.Rounds)

		require.Eventually(t, func() bool {
			winners, err := env.svc.ListWinners(ctx, 10)
			return err == nil && len(winners) == 1
		}, 5*time.Second, 10*time.Millisecond)
		winners, err := env.svc.ListWinners(ctx, 10)
		require.NoError(t, err)
		require.Equal(t, players[1], winners[0].Address)
		require.Equal(t, "3", winners[0].Prize.String())
		require.Equal(t, requestId, winners[0].RequestId)

		types := make([]domain.EventType, 0)
		require.Eventually(t, func() bool {
			for {
				select {
				case event := <-eventsCh:
					types = append(types, event.GetType())
				default:
					return len(types) > 0 &&
						types[len(types)-1] == domain.EventTypeWinnerSelected
				}
			}
		}, 5*time.Second, 10*time.Millisecond)
		require.Equal(t, []domain.EventType{
			domain.EventTypeRaffleInitialized,
			domain.EventTypeEntryRecorded,
			domain.EventTypeEntryRecorded,
			domain.EventTypeEntryRecorded,
			domain.EventTypeClosingRequested,
			domain.EventTypeWinnerSelected,
		}, types)

		// The same delivery again is rejected and changes nothing.
		words := []*big.Int{big.NewInt(7)}
		err = env.svc.FulfillRandomWords(ctx, requestId, words, env.sign(t, requestId, words))
		require.ErrorIs(t, err, domain.ErrUnknownRequest)
		_, err = env.coordinator.FulfillRandomWords(ctx, requestId)
		require.ErrorIs(t, err, localcoordinator.ErrNonexistentRequest)

		winner, err = env.svc.GetBalance(ctx, players[1])
		require.NoError(t, err)
		require.Equal(t, "3", winner.Balance.String())
		replayed, err := env.svc.GetInfo(ctx)
		require.NoError(t, err)
		require.Equal(t, info.RoundId, replayed.RoundId)
		require.Equal(t, info.StartTimestamp, replayed.StartTimestamp)
		require.Equal(t, uint64(1), replayed.Rounds)
	})

	t.Run("generated words", func(t *testing.T) {
		env := setup(t, unit)
		env.fundAndEnter(t, players...)
		requestId := env.closeRound(t)

		fulfillment, err := env.coordinator.FulfillRandomWords(ctx, requestId)
		require.NoError(t, err)

		index := new(big.Int).Mod(fulfillment.Words[0], big.NewInt(3)).Int64()
		info, err := env.svc.GetInfo(ctx)
		require.NoError(t, err)
		require.Equal(t, players[index], info.RecentWinner)
	})

	t.Run("invalid", func(t *testing.T) {
		env := setup(t, unit)
		env.fundAndEnter(t, players...)
		requestId := env.closeRound(t)

		otherKey, err := secp256k1.GeneratePrivateKey()
		require.NoError(t, err)
		words := []*big.Int{big.NewInt(7)}
		forged, err := oracle.SignFulfillment(otherKey, requestId, words)
		require.NoError(t, err)

		fixtures := []struct {
			name        string
			requestId   uint64
			words       []*big.Int
			signature   []byte
			expectedErr error
		}{
			{
				name:        "missing signature",
				requestId:   requestId,
				words:       words,
				expectedErr: domain.ErrUnauthorizedFulfiller,
			},
			{
				name:        "signed by another key",
				requestId:   requestId,
				words:       words,
				signature:   forged,
				expectedErr: domain.ErrUnauthorizedFulfiller,
			},
			{
				name:        "words not signed",
				requestId:   requestId,
				words:       []*big.Int{big.NewInt(2)},
				signature:   env.sign(t, requestId, words),
				expectedErr: domain.ErrUnauthorizedFulfiller,
			},
			{
				name:        "unknown request",
				requestId:   requestId + 1,
				words:       words,
				signature:   env.sign(t, requestId+1, words),
				expectedErr: domain.ErrUnknownRequest,
			},
			{
				name:        "missing words",
				requestId:   requestId,
				words:       nil,
				signature:   env.sign(t, requestId, nil),
				expectedErr: domain.ErrMissingRandomWords,
			},
		}

		for _, f := range fixtures {
			t.Run(f.name, func(t *testing.T) {
				err := env.svc.FulfillRandomWords(ctx, f.requestId, f.words, f.signature)
				require.ErrorIs(t, err, f.expectedErr)

				info, err := env.svc.GetInfo(ctx)
				require.NoError(t, err)
				require.Equal(t, domain.CalculatingState, info.State)
				require.Equal(t, 3, info.NumPlayers)
				require.Equal(t, requestId, info.PendingRequest.RequestId)

				for _, player := range players {
					account, err := env.svc.GetBalance(ctx, player)
					require.NoError(t, err)
					require.Zero(t, account.Balance.Sign())
				}
			})
		}
	})

	t.Run("payout failure", func(t *testing.T) {
		env := setup(t, unit)
		env.fundAndEnter(t, players...)
		requestId := env.closeRound(t)
		require.NoError(t, env.svc.SetPayable(ctx, players[1], false))

		before, err := env.svc.GetInfo(ctx)
		require.NoError(t, err)

		words := []*big.Int{big.NewInt(7)}
		_, err = env.coordinator.FulfillRandomWordsWithOverride(ctx, requestId, words)
		require.ErrorIs(t, err, domain.ErrTransferFailed)
		require.ErrorIs(t, err, domain.ErrNotPayable)

		after, err := env.svc.GetInfo(ctx)
		require.NoError(t, err)
		require.Equal(t, domain.CalculatingState, after.State)
		require.Equal(t, before.NumPlayers, after.NumPlayers)
		require.Zero(t, before.CollectedValue.Cmp(after.CollectedValue))
		require.Equal(t, requestId, after.PendingRequest.RequestId)

		playersAfter, err := env.svc.GetPlayers(ctx)
		require.NoError(t, err)
		require.Equal(t, players, playersAfter)

		// The oracle still tracks the request and delivers it again once
		// the winner accepts value.
		require.Equal(t, []uint64{requestId}, env.coordinator.PendingRequests())
		require.NoError(t, env.svc.SetPayable(ctx, players[1], true))
		_, err = env.coordinator.FulfillRandomWordsWithOverride(ctx, requestId, words)
		require.NoError(t, err)
		require.Empty(t, env.coordinator.PendingRequests())

		winner, err := env.svc.GetBalance(ctx, players[1])
		require.NoError(t, err)
		require.Equal(t, "3", winner.Balance.String())
	})
}

func TestReissueDrawRequest(t *testing.T) {
	ctx := context.Background()
	env := setup(t, unit)
	env.fundAndEnter(t, players...)
	requestId := env.closeRound(t)

	_, err := env.svc.ReissueDrawRequest(ctx, operator)
	require.ErrorIs(t, err, domain.ErrRequestNotExpired)

	env.clock.Advance(time.Duration(requestTimeout+1) * time.Second)

	_, err = env.svc.ReissueDrawRequest(ctx, outsider)
	require.ErrorIs(t, err, domain.ErrNotOperator)

	newRequestId, err := env.svc.ReissueDrawRequest(ctx, operator)
	require.NoError(t, err)
	require.NotEqual(t, requestId, newRequestId)

	info, err := env.svc.GetInfo(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.CalculatingState, info.State)
	require.Equal(t, newRequestId, info.PendingRequest.RequestId)
	require.Equal(t, 3, info.NumPlayers)

	// The superseded request is no longer accepted.
	_, err = env.coordinator.FulfillRandomWordsWithOverride(
		ctx, requestId, []*big.Int{big.NewInt(7)},
	)
	require.ErrorIs(t, err, domain.ErrUnknownRequest)

	_, err = env.coordinator.FulfillRandomWordsWithOverride(
		ctx, newRequestId, []*big.Int{big.NewInt(7)},
	)
	require.NoError(t, err)

	info, err = env.svc.GetInfo(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.OpenState, info.State)
	require.Equal(t, players[1], info.RecentWinner)
}

func TestRestart(t *testing.T) {
	ctx := context.Background()
	dbDir := t.TempDir()
	clock := clockwork.NewFakeClockAt(startTime)

	env, err := newTestEnv(t, unit, dbDir, clock)
	require.NoError(t, err)
	env.fundAndEnter(t, players...)
	requestId := env.closeRound(t)
	env.svc.Stop()

	_, err = newTestEnv(t, big.NewInt(2), dbDir, clock)
	require.Error(t, err)

	env, err = newTestEnv(t, unit, dbDir, clock)
	require.NoError(t, err)
	defer env.svc.Stop()

	info, err := env.svc.GetInfo(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.CalculatingState, info.State)
	require.Equal(t, requestId, info.PendingRequest.RequestId)
	require.Equal(t, []uint64{requestId}, env.coordinator.PendingRequests())

	_, err = env.coordinator.FulfillRandomWordsWithOverride(
		ctx, requestId, []*big.Int{big.NewInt(7)},
	)
	require.NoError(t, err)

	winner, err := env.svc.GetBalance(ctx, players[1])
	require.NoError(t, err)
	require.Equal(t, "3", winner.Balance.String())
}

func TestNewService(t *testing.T) {
	fixtures := []struct {
		name        string
		modify      func(cfg *application.Config)
		expectedErr string
	}{
		{
			name:        "zero entrance fee",
			modify:      func(cfg *application.Config) { cfg.EntranceFee = big.NewInt(0) },
			expectedErr: "entrance fee must be positive",
		},
		{
			name:        "zero interval",
			modify:      func(cfg *application.Config) { cfg.Interval = 0 },
			expectedErr: "interval must be positive",
		},
		{
			name:        "no random words",
			modify:      func(cfg *application.Config) { cfg.RandomnessRequest.NumWords = 0 },
			expectedErr: "number of random words must be positive",
		},
	}

	for _, f := range fixtures {
		t.Run(f.name, func(t *testing.T) {
			cfg := newConfig(unit)
			f.modify(&cfg)
			svc, err := application.NewService(cfg, nil, nil, nil, nil, nil)
			require.EqualError(t, err, f.expectedErr)
			require.Nil(t, svc)
		})
	}

	cfg := newConfig(unit)
	cfg.OperatorAddress = "operator"
	_, err := application.NewService(cfg, nil, nil, nil, nil, nil)
	require.ErrorIs(t, err, domain.ErrInvalidAddress)
}
