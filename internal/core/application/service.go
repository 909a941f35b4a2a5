package application

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"sync"

	"github.com/ark-network/raffle/internal/core/domain"
	"github.com/ark-network/raffle/internal/core/ports"
	"github.com/ark-network/raffle/internal/metrics"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
)

const (
	raffleId = "main"
	// custodyAccount holds the value collected by the running round.
	custodyAccount = "raffle"

	eventsChannelSize = 64
)

type Service interface {
	Start() error
	Stop()
	Enter(ctx context.Context, player string, value *big.Int) error
	CheckUpkeep(ctx context.Context) (bool, error)
	PerformUpkeep(ctx context.Context) (uint64, error)
	// FulfillRandomWords accepts the random words of requestId only if
	// signature is the oracle signature over them.
	FulfillRandomWords(
		ctx context.Context, requestId uint64, words []*big.Int, signature []byte,
	) error
	ReissueDrawRequest(ctx context.Context, caller string) (uint64, error)
	GetInfo(ctx context.Context) (*RaffleInfo, error)
	GetPlayer(ctx context.Context, index int) (string, error)
	GetPlayers(ctx context.Context) ([]string, error)
	GetBalance(ctx context.Context, address string) (*domain.Account, error)
	Deposit(ctx context.Context, address string, amount *big.Int) error
	SetPayable(ctx context.Context, address string, payable bool) error
	ListWinners(ctx context.Context, limit int) ([]domain.Winner, error)
	GetEventsChannel(ctx context.Context) <-chan domain.RaffleEvent
}

type service struct {
	cfg      Config
	operator string

	repoManager ports.RepoManager
	coordinator ports.RandomnessCoordinator
	eventBus    ports.EventBus
	scheduler   ports.SchedulerService
	clock       clockwork.Clock

	// lock serializes every state-mutating operation.
	lock     *sync.Mutex
	eventsCh chan domain.RaffleEvent
}

func NewService(
	cfg Config,
	repoManager ports.RepoManager, coordinator ports.RandomnessCoordinator,
	eventBus ports.EventBus, scheduler ports.SchedulerService,
	clock clockwork.Clock,
) (Service, error) {
	if cfg.EntranceFee == nil || cfg.EntranceFee.Sign() <= 0 {
		return nil, fmt.Errorf("entrance fee must be positive")
	}
	if err := domain.ValidateAmount(cfg.EntranceFee); err != nil {
		return nil, err
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive")
	}
	if cfg.KeeperInterval < 0 {
		return nil, fmt.Errorf("keeper interval must not be negative")
	}
	if cfg.RandomnessRequest.NumWords <= 0 {
		return nil, fmt.Errorf("number of random words must be positive")
	}

	var operator string
	if len(cfg.OperatorAddress) > 0 {
		addr, err := domain.NormalizeAddress(cfg.OperatorAddress)
		if err != nil {
			return nil, fmt.Errorf("invalid operator address: %w", err)
		}
		operator = addr
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &service{
		cfg:         cfg,
		operator:    operator,
		repoManager: repoManager,
		coordinator: coordinator,
		eventBus:    eventBus,
		scheduler:   scheduler,
		clock:       clock,
		lock:        &sync.Mutex{},
		eventsCh:    make(chan domain.RaffleEvent, eventsChannelSize),
	}, nil
}

func (s *service) Start() error {
	log.Debug("starting app service")

	s.eventBus.RegisterEventsHandler(func(events []domain.RaffleEvent) {
		s.updateProjectionStore(events)
		s.observe(events)
		s.propagateEvents(events)
	})

	ctx := context.Background()
	raffle, err := s.loadOrInitRaffle(ctx)
	if err != nil {
		return err
	}

	s.coordinator.RegisterFulfillmentHandler(s.FulfillRandomWords)
	if raffle.IsCalculating() {
		requestId := raffle.PendingRequest.RequestId
		if err := s.coordinator.Resume(ctx, requestId, s.cfg.RandomnessRequest); err != nil {
			log.WithError(err).Warnf(
				"failed to resume randomness request %d, operator must reissue it", requestId,
			)
		}
	}
	metrics.ObserveRaffle(raffle)

	if s.cfg.KeeperInterval > 0 {
		if err := s.scheduler.ScheduleTask(s.cfg.KeeperInterval, false, s.runKeeper); err != nil {
			return fmt.Errorf("failed to schedule keeper: %s", err)
		}
	}
	s.scheduler.Start()

	log.Debugf(
		"raffle %s is %s, round %s with %d players",
		raffle.Id, raffle.State, raffle.RoundId, len(raffle.Players),
	)
	return nil
}

func (s *service) Stop() {
	s.scheduler.Stop()
	log.Debug("stopped keeper")
	s.coordinator.Close()
	log.Debug("closed randomness coordinator")
	s.eventBus.Close()
	log.Debug("closed event bus")
	s.repoManager.Close()
	log.Debug("closed connection to db")
	close(s.eventsCh)
}

func (s *service) Enter(ctx context.Context, player string, value *big.Int) error {
	address, err := domain.NormalizeAddress(player)
	if err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	var events []domain.RaffleEvent
	if err := s.repoManager.RunInTx(ctx, func(ctx context.Context) error {
		raffle, err := s.getRaffle(ctx)
		if err != nil {
			return err
		}

		events, err = raffle.Enter(address, value, s.now())
		if err != nil {
			return err
		}

		if err := s.repoManager.Accounts().Debit(ctx, address, value); err != nil {
			return err
		}
		if err := s.repoManager.Accounts().Credit(ctx, custodyAccount, value); err != nil {
			return err
		}

		_, err = s.repoManager.Events().Save(ctx, raffleId, events...)
		return err
	}); err != nil {
		logError(err, "entry of %s rejected", address)
		return err
	}

	log.Debugf("recorded entry of %s", address)
	s.publish(ctx, events)
	return nil
}

func (s *service) CheckUpkeep(ctx context.Context) (bool, error) {
	raffle, err := s.getRaffle(ctx)
	if err != nil {
		return false, err
	}
	return raffle.IsEligible(s.now()), nil
}

func (s *service) PerformUpkeep(ctx context.Context) (uint64, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	var (
		requestId uint64
		events    []domain.RaffleEvent
	)
	if err := s.repoManager.RunInTx(ctx, func(ctx context.Context) error {
		raffle, err := s.getRaffle(ctx)
		if err != nil {
			return err
		}

		now := s.now()
		if err := raffle.CanClose(now); err != nil {
			return err
		}

		requestId, err = s.requestRandomness(ctx, raffle)
		if err != nil {
			return err
		}

		events, err = raffle.Close(requestId, now)
		if err != nil {
			return err
		}

		_, err = s.repoManager.Events().Save(ctx, raffleId, events...)
		return err
	}); err != nil {
		logError(err, "failed to close round")
		return 0, err
	}

	log.Debugf("round closed, randomness requested with id %d", requestId)
	s.publish(ctx, events)
	return requestId, nil
}

func (s *service) FulfillRandomWords(
	ctx context.Context, requestId uint64, words []*big.Int, signature []byte,
) (err error) {
	defer func() { metrics.ObserveFulfillment(err) }()

	if err := s.authorizeFulfiller(requestId, words, signature); err != nil {
		logError(err, "rejected random words for request %d", requestId)
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	var (
		draw   *domain.Draw
		events []domain.RaffleEvent
	)
	if err := s.repoManager.RunInTx(ctx, func(ctx context.Context) error {
		raffle, err := s.getRaffle(ctx)
		if err != nil {
			return err
		}

		draw, err = s.consumeRandomWords(raffle, requestId, words)
		if err != nil {
			return err
		}

		if err := s.payout(ctx, draw.Winner, draw.Prize); err != nil {
			return err
		}

		events, err = raffle.CompleteDraw(draw, s.now())
		if err != nil {
			return err
		}

		_, err = s.repoManager.Events().Save(ctx, raffleId, events...)
		return err
	}); err != nil {
		logError(err, "failed to fulfill randomness request %d", requestId)
		return err
	}

	log.Infof(
		"round %s won by %s (index %d of %d), prize %s",
		draw.RoundId, draw.Winner, draw.WinnerIndex, draw.NumPlayers, draw.Prize,
	)
	s.publish(ctx, events)
	return nil
}

func (s *service) ReissueDrawRequest(ctx context.Context, caller string) (uint64, error) {
	if err := s.authorizeOperator(caller); err != nil {
		return 0, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	var (
		requestId uint64
		events    []domain.RaffleEvent
	)
	if err := s.repoManager.RunInTx(ctx, func(ctx context.Context) error {
		raffle, err := s.getRaffle(ctx)
		if err != nil {
			return err
		}

		now := s.now()
		if err := raffle.CanReissue(now, s.cfg.RequestTimeout); err != nil {
			return err
		}

		requestId, err = s.coordinator.RequestRandomWords(ctx, s.cfg.RandomnessRequest)
		if err != nil {
			return fmt.Errorf("failed to request random words: %w", err)
		}

		events, err = raffle.ReissueRequest(requestId, now, s.cfg.RequestTimeout)
		if err != nil {
			return err
		}

		_, err = s.repoManager.Events().Save(ctx, raffleId, events...)
		return err
	}); err != nil {
		logError(err, "failed to reissue randomness request")
		return 0, err
	}

	log.Infof("randomness request reissued with id %d", requestId)
	s.publish(ctx, events)
	return requestId, nil
}

func (s *service) GetInfo(ctx context.Context) (*RaffleInfo, error) {
	raffle, err := s.getRaffle(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var pending *domain.PendingRequest
	if raffle.PendingRequest != nil {
		p := *raffle.PendingRequest
		pending = &p
	}
	return &RaffleInfo{
		State:              raffle.State,
		RoundId:            raffle.RoundId,
		EntranceFee:        new(big.Int).Set(raffle.EntranceFee),
		Interval:           raffle.Interval,
		StartTimestamp:     raffle.StartTimestamp,
		Delta:              raffle.Delta(now),
		NumPlayers:         raffle.NumPlayers(),
		CollectedValue:     new(big.Int).Set(raffle.CollectedValue),
		RecentWinner:       raffle.RecentWinner,
		Rounds:             raffle.Rounds,
		PendingRequest:     pending,
		UpkeepNeeded:       raffle.IsEligible(now),
		CoordinatorAddress: s.coordinator.Address(),
		CoordinatorPubKey:  hex.EncodeToString(s.coordinator.PubKey().SerializeCompressed()),
		Timestamp:          now,
	}, nil
}

func (s *service) GetPlayer(ctx context.Context, index int) (string, error) {
	raffle, err := s.getRaffle(ctx)
	if err != nil {
		return "", err
	}
	return raffle.Player(index)
}

func (s *service) GetPlayers(ctx context.Context) ([]string, error) {
	raffle, err := s.getRaffle(ctx)
	if err != nil {
		return nil, err
	}
	return append([]string{}, raffle.Players...), nil
}

func (s *service) GetBalance(ctx context.Context, address string) (*domain.Account, error) {
	addr, err := domain.NormalizeAddress(address)
	if err != nil {
		return nil, err
	}
	return s.repoManager.Accounts().GetAccount(ctx, addr)
}

func (s *service) Deposit(ctx context.Context, address string, amount *big.Int) error {
	addr, err := domain.NormalizeAddress(address)
	if err != nil {
		return err
	}
	if err := domain.ValidateAmount(amount); err != nil {
		return err
	}
	if amount.Sign() == 0 {
		return fmt.Errorf("%w: amount must be positive", domain.ErrInvalidAmount)
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.repoManager.RunInTx(ctx, func(ctx context.Context) error {
		return s.repoManager.Accounts().Credit(ctx, addr, amount)
	}); err != nil {
		return err
	}

	log.Debugf("deposited %s to %s", amount, addr)
	return nil
}

func (s *service) SetPayable(ctx context.Context, address string, payable bool) error {
	addr, err := domain.NormalizeAddress(address)
	if err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	return s.repoManager.RunInTx(ctx, func(ctx context.Context) error {
		return s.repoManager.Accounts().SetPayable(ctx, addr, payable)
	})
}

func (s *service) ListWinners(ctx context.Context, limit int) ([]domain.Winner, error) {
	return s.repoManager.Winners().GetWinners(ctx, limit)
}

func (s *service) GetEventsChannel(_ context.Context) <-chan domain.RaffleEvent {
	return s.eventsCh
}

func (s *service) loadOrInitRaffle(ctx context.Context) (*domain.Raffle, error) {
	raffle, err := s.repoManager.Events().Load(ctx, raffleId)
	if err != nil {
		return nil, fmt.Errorf("failed to load raffle: %s", err)
	}

	if raffle != nil {
		if raffle.EntranceFee.Cmp(s.cfg.EntranceFee) != 0 {
			return nil, fmt.Errorf(
				"stored entrance fee %s does not match configured one %s",
				raffle.EntranceFee, s.cfg.EntranceFee,
			)
		}
		if raffle.Interval != s.cfg.Interval {
			return nil, fmt.Errorf(
				"stored interval %d does not match configured one %d",
				raffle.Interval, s.cfg.Interval,
			)
		}
		return raffle, nil
	}

	raffle = domain.NewRaffle(raffleId, s.cfg.EntranceFee, s.cfg.Interval)
	events, err := raffle.Initialize(s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repoManager.RunInTx(ctx, func(ctx context.Context) error {
		_, err := s.repoManager.Events().Save(ctx, raffleId, events...)
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to store raffle: %s", err)
	}

	log.Infof(
		"initialized raffle with entrance fee %s and interval %ds",
		s.cfg.EntranceFee, s.cfg.Interval,
	)
	s.publish(ctx, events)
	return raffle, nil
}

func (s *service) getRaffle(ctx context.Context) (*domain.Raffle, error) {
	raffle, err := s.repoManager.Events().Load(ctx, raffleId)
	if err != nil {
		return nil, err
	}
	if raffle == nil {
		return nil, fmt.Errorf("raffle not initialized")
	}
	return raffle, nil
}

func (s *service) authorizeOperator(caller string) error {
	if len(s.operator) <= 0 {
		return fmt.Errorf("%w: no operator configured", domain.ErrNotOperator)
	}
	addr, err := domain.NormalizeAddress(caller)
	if err != nil {
		return err
	}
	if addr != s.operator {
		return fmt.Errorf("%w: %s", domain.ErrNotOperator, addr)
	}
	return nil
}

func (s *service) publish(ctx context.Context, events []domain.RaffleEvent) {
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		log.WithError(err).Warn("failed to publish events")
	}
}

func (s *service) updateProjectionStore(events []domain.RaffleEvent) {
	ctx := context.Background()
	for _, event := range events {
		e, ok := event.(domain.WinnerSelected)
		if !ok {
			continue
		}

		winner := domain.Winner{
			RoundId:    e.RoundId,
			Address:    e.Winner,
			Prize:      e.Prize,
			RequestId:  e.RequestId,
			NumPlayers: e.NumPlayers,
			Timestamp:  e.Timestamp,
		}
		if err := withRetry(func() error {
			return s.repoManager.Winners().AddWinner(ctx, winner)
		}); err != nil {
			log.WithError(err).Warnf("failed to add winner of round %s", e.RoundId)
			continue
		}
		log.Debugf("added winner of round %s", e.RoundId)
	}
}

func (s *service) observe(events []domain.RaffleEvent) {
	metrics.ObserveEvents(events)
	if raffle, err := s.repoManager.Events().Load(context.Background(), raffleId); err == nil {
		metrics.ObserveRaffle(raffle)
	}
}

func (s *service) propagateEvents(events []domain.RaffleEvent) {
	for _, event := range events {
		select {
		case s.eventsCh <- event:
		default:
			log.Warnf("events channel full, dropped %s event", event.GetType())
		}
	}
}

func (s *service) now() int64 {
	return s.clock.Now().Unix()
}
