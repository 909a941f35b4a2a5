package domain

import (
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	UndefinedState RaffleState = iota
	OpenState
	CalculatingState
)

type RaffleState int

func (s RaffleState) String() string {
	switch s {
	case OpenState:
		return "OPEN"
	case CalculatingState:
		return "CALCULATING"
	default:
		return "UNDEFINED"
	}
}

// PendingRequest is the randomness request the raffle is waiting on while
// CALCULATING.
type PendingRequest struct {
	RequestId uint64
	RoundId   string
	Timestamp int64
}

// Draw is the outcome of a fulfillment, computed before any state changes.
type Draw struct {
	RequestId   uint64
	RoundId     string
	Winner      string
	WinnerIndex int
	NumPlayers  int
	Prize       *big.Int
	RandomWord  *big.Int
}

type Raffle struct {
	Id             string
	EntranceFee    *big.Int
	Interval       int64
	State          RaffleState
	RoundId        string
	Rounds         uint64
	Players        []string
	CollectedValue *big.Int
	StartTimestamp int64
	PendingRequest *PendingRequest
	RecentWinner   string
	Version        uint
	changes        []RaffleEvent
}

func NewRaffle(id string, entranceFee *big.Int, interval int64) *Raffle {
	return &Raffle{
		Id:             id,
		EntranceFee:    copyAmount(entranceFee),
		Interval:       interval,
		Players:        make([]string, 0),
		CollectedValue: new(big.Int),
		changes:        make([]RaffleEvent, 0),
	}
}

func NewRaffleFromEvents(events []RaffleEvent) *Raffle {
	r := &Raffle{
		Players:        make([]string, 0),
		CollectedValue: new(big.Int),
	}

	for _, event := range events {
		r.On(event, true)
	}

	r.changes = append([]RaffleEvent{}, events...)

	return r
}

// RaffleSnapshot is the raffle-level state carried from one round to the
// next. Together with the events of the current round it restores a Raffle.
type RaffleSnapshot struct {
	Id             string
	EntranceFee    *big.Int
	Interval       int64
	RoundId        string
	Rounds         uint64
	RecentWinner   string
	StartTimestamp int64
	Version        uint
}

// NewRaffleFromSnapshot restores an open round from its snapshot and then
// replays the events raised since the round started.
func NewRaffleFromSnapshot(snapshot RaffleSnapshot, events []RaffleEvent) *Raffle {
	r := &Raffle{
		Id:             snapshot.Id,
		EntranceFee:    copyAmount(snapshot.EntranceFee),
		Interval:       snapshot.Interval,
		State:          OpenState,
		RoundId:        snapshot.RoundId,
		Rounds:         snapshot.Rounds,
		Players:        make([]string, 0),
		CollectedValue: new(big.Int),
		StartTimestamp: snapshot.StartTimestamp,
		RecentWinner:   snapshot.RecentWinner,
		Version:        snapshot.Version,
	}

	for _, event := range events {
		r.On(event, true)
	}

	r.changes = append([]RaffleEvent{}, events...)

	return r
}

// Snapshot is only meaningful at the start of a round, right after the
// raffle is initialized or a winner is selected.
func (r *Raffle) Snapshot() RaffleSnapshot {
	return RaffleSnapshot{
		Id:             r.Id,
		EntranceFee:    copyAmount(r.EntranceFee),
		Interval:       r.Interval,
		RoundId:        r.RoundId,
		Rounds:         r.Rounds,
		RecentWinner:   r.RecentWinner,
		StartTimestamp: r.StartTimestamp,
		Version:        r.Version,
	}
}

func (r *Raffle) Events() []RaffleEvent {
	return r.changes
}

func (r *Raffle) On(event RaffleEvent, replayed bool) {
	switch e := event.(type) {
	case RaffleInitialized:
		r.Id = e.Id
		r.RoundId = e.RoundId
		r.EntranceFee = copyAmount(e.EntranceFee)
		r.Interval = e.Interval
		r.State = OpenState
		r.StartTimestamp = e.Timestamp
		r.Players = make([]string, 0)
		r.CollectedValue = new(big.Int)
	case EntryRecorded:
		r.Players = append(r.Players, e.Player)
		r.CollectedValue = new(big.Int).Add(r.CollectedValue, e.FeePaid)
	case ClosingRequested:
		r.State = CalculatingState
		r.PendingRequest = &PendingRequest{
			RequestId: e.RequestId,
			RoundId:   e.RoundId,
			Timestamp: e.Timestamp,
		}
	case DrawRequestReissued:
		r.PendingRequest = &PendingRequest{
			RequestId: e.RequestId,
			RoundId:   e.RoundId,
			Timestamp: e.Timestamp,
		}
	case WinnerSelected:
		r.RecentWinner = e.Winner
		r.Players = make([]string, 0)
		r.CollectedValue = new(big.Int)
		r.PendingRequest = nil
		r.State = OpenState
		r.StartTimestamp = e.Timestamp
		r.RoundId = e.NextRoundId
		r.Rounds++
	}

	if replayed {
		r.Version++
	}
}

// Initialize opens the first round.
func (r *Raffle) Initialize(now int64) ([]RaffleEvent, error) {
	if r.State != UndefinedState {
		return nil, fmt.Errorf("raffle %s already initialized", r.Id)
	}
	if r.EntranceFee == nil || r.EntranceFee.Sign() <= 0 {
		return nil, fmt.Errorf("entrance fee must be positive")
	}
	if err := ValidateAmount(r.EntranceFee); err != nil {
		return nil, err
	}
	if r.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive")
	}

	event := RaffleInitialized{
		Id:          r.Id,
		RoundId:     uuid.New().String(),
		EntranceFee: copyAmount(r.EntranceFee),
		Interval:    r.Interval,
		Timestamp:   now,
	}
	r.raise(event)

	return []RaffleEvent{event}, nil
}

// Enter records an entry for player paying value. The value must match the
// entrance fee exactly.
func (r *Raffle) Enter(player string, value *big.Int, now int64) ([]RaffleEvent, error) {
	if err := ValidateAmount(value); err != nil {
		return nil, err
	}
	if value.Cmp(r.EntranceFee) != 0 {
		return nil, InvalidEntranceFeeError{
			EntranceFee: copyAmount(r.EntranceFee),
			Value:       copyAmount(value),
		}
	}
	if r.State != OpenState {
		return nil, ErrNotOpen
	}
	collected := new(big.Int).Add(r.CollectedValue, value)
	if collected.Cmp(MaxUint256) > 0 {
		return nil, fmt.Errorf("%w: collected value overflows uint256", ErrInvalidAmount)
	}

	event := EntryRecorded{
		Id:        r.Id,
		RoundId:   r.RoundId,
		Player:    player,
		FeePaid:   copyAmount(value),
		Timestamp: now,
	}
	r.raise(event)

	return []RaffleEvent{event}, nil
}

// Delta returns the seconds elapsed since the round started.
func (r *Raffle) Delta(now int64) int64 {
	return now - r.StartTimestamp
}

// IsEligible reports whether the round can be closed at time now.
func (r *Raffle) IsEligible(now int64) bool {
	return r.State == OpenState &&
		r.Delta(now) >= r.Interval &&
		len(r.Players) > 0 &&
		r.CollectedValue.Sign() > 0
}

func (r *Raffle) CanClose(now int64) error {
	if r.IsEligible(now) {
		return nil
	}
	return TooEarlyError{
		Balance:    copyAmount(r.CollectedValue),
		NumPlayers: len(r.Players),
		State:      r.State,
	}
}

// Close moves the raffle to CALCULATING, bound to the given randomness request.
func (r *Raffle) Close(requestId uint64, now int64) ([]RaffleEvent, error) {
	if err := r.CanClose(now); err != nil {
		return nil, err
	}
	if r.PendingRequest != nil {
		return nil, InvariantError{"open raffle with a pending request"}
	}

	event := ClosingRequested{
		Id:        r.Id,
		RoundId:   r.RoundId,
		RequestId: requestId,
		Timestamp: now,
	}
	r.raise(event)

	return []RaffleEvent{event}, nil
}

// PickWinner selects the winner for the fulfillment of requestId without
// mutating the raffle.
func (r *Raffle) PickWinner(requestId uint64, words []*big.Int) (*Draw, error) {
	if r.State != CalculatingState || r.PendingRequest == nil ||
		r.PendingRequest.RequestId != requestId {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRequest, requestId)
	}
	if len(words) <= 0 || words[0] == nil {
		return nil, ErrMissingRandomWords
	}
	if words[0].Sign() < 0 {
		return nil, fmt.Errorf("%w: negative random word", ErrMissingRandomWords)
	}
	numPlayers := len(r.Players)
	if numPlayers <= 0 {
		return nil, InvariantError{"calculating raffle without players"}
	}

	index := new(big.Int).Mod(words[0], big.NewInt(int64(numPlayers)))
	winnerIndex := int(index.Int64())

	return &Draw{
		RequestId:   requestId,
		RoundId:     r.RoundId,
		Winner:      r.Players[winnerIndex],
		WinnerIndex: winnerIndex,
		NumPlayers:  numPlayers,
		Prize:       copyAmount(r.CollectedValue),
		RandomWord:  copyAmount(words[0]),
	}, nil
}

// CompleteDraw settles the draw and opens the next round.
func (r *Raffle) CompleteDraw(draw *Draw, now int64) ([]RaffleEvent, error) {
	if draw == nil {
		return nil, fmt.Errorf("missing draw")
	}
	if r.State != CalculatingState || r.PendingRequest == nil ||
		r.PendingRequest.RequestId != draw.RequestId {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRequest, draw.RequestId)
	}

	event := WinnerSelected{
		Id:          r.Id,
		RoundId:     r.RoundId,
		RequestId:   draw.RequestId,
		Winner:      draw.Winner,
		WinnerIndex: draw.WinnerIndex,
		NumPlayers:  draw.NumPlayers,
		Prize:       copyAmount(draw.Prize),
		RandomWord:  copyAmount(draw.RandomWord),
		NextRoundId: uuid.New().String(),
		Timestamp:   now,
	}
	r.raise(event)

	return []RaffleEvent{event}, nil
}

// CanReissue reports whether the pending request has been outstanding for
// longer than timeout seconds.
func (r *Raffle) CanReissue(now, timeout int64) error {
	if r.State != CalculatingState || r.PendingRequest == nil {
		return fmt.Errorf("%w: no pending request", ErrNotOpen)
	}
	if timeout <= 0 || now-r.PendingRequest.Timestamp <= timeout {
		return ErrRequestNotExpired
	}
	return nil
}

// ReissueRequest replaces the pending request with requestId. Fulfillments
// for the previous request are rejected from now on.
func (r *Raffle) ReissueRequest(requestId uint64, now, timeout int64) ([]RaffleEvent, error) {
	if err := r.CanReissue(now, timeout); err != nil {
		return nil, err
	}
	if requestId == r.PendingRequest.RequestId {
		return nil, InvariantError{"reissued request id matches the pending one"}
	}

	event := DrawRequestReissued{
		Id:                r.Id,
		RoundId:           r.RoundId,
		PreviousRequestId: r.PendingRequest.RequestId,
		RequestId:         requestId,
		Timestamp:         now,
	}
	r.raise(event)

	return []RaffleEvent{event}, nil
}

func (r *Raffle) IsOpen() bool {
	return r.State == OpenState
}

func (r *Raffle) IsCalculating() bool {
	return r.State == CalculatingState
}

func (r *Raffle) NumPlayers() int {
	return len(r.Players)
}

func (r *Raffle) Player(index int) (string, error) {
	if index < 0 || index >= len(r.Players) {
		return "", fmt.Errorf("player index %d out of range", index)
	}
	return r.Players[index], nil
}

func (r *Raffle) raise(event RaffleEvent) {
	if r.changes == nil {
		r.changes = make([]RaffleEvent, 0)
	}
	r.changes = append(r.changes, event)
	r.On(event, false)
}
