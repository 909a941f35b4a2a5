package domain

import "math/big"

const RaffleTopic = "raffle"

type EventType int

const (
	EventTypeUndefined EventType = iota
	EventTypeRaffleInitialized
	EventTypeEntryRecorded
	EventTypeClosingRequested
	EventTypeDrawRequestReissued
	EventTypeWinnerSelected
)

func (t EventType) String() string {
	switch t {
	case EventTypeRaffleInitialized:
		return "RaffleInitialized"
	case EventTypeEntryRecorded:
		return "EntryRecorded"
	case EventTypeClosingRequested:
		return "ClosingRequested"
	case EventTypeDrawRequestReissued:
		return "DrawRequestReissued"
	case EventTypeWinnerSelected:
		return "WinnerSelected"
	default:
		return "Undefined"
	}
}

type RaffleEvent interface {
	GetTopic() string
	GetType() EventType
}

func (e RaffleInitialized) GetTopic() string   { return RaffleTopic }
func (e EntryRecorded) GetTopic() string       { return RaffleTopic }
func (e ClosingRequested) GetTopic() string    { return RaffleTopic }
func (e DrawRequestReissued) GetTopic() string { return RaffleTopic }
func (e WinnerSelected) GetTopic() string      { return RaffleTopic }

func (e RaffleInitialized) GetType() EventType   { return EventTypeRaffleInitialized }
func (e EntryRecorded) GetType() EventType       { return EventTypeEntryRecorded }
func (e ClosingRequested) GetType() EventType    { return EventTypeClosingRequested }
func (e DrawRequestReissued) GetType() EventType { return EventTypeDrawRequestReissued }
func (e WinnerSelected) GetType() EventType      { return EventTypeWinnerSelected }

type RaffleInitialized struct {
	Id          string
	RoundId     string
	EntranceFee *big.Int
	Interval    int64
	Timestamp   int64
}

type EntryRecorded struct {
	Id        string
	RoundId   string
	Player    string
	FeePaid   *big.Int
	Timestamp int64
}

type ClosingRequested struct {
	Id        string
	RoundId   string
	RequestId uint64
	Timestamp int64
}

type DrawRequestReissued struct {
	Id                string
	RoundId           string
	PreviousRequestId uint64
	RequestId         uint64
	Timestamp         int64
}

type WinnerSelected struct {
	Id          string
	RoundId     string
	RequestId   uint64
	Winner      string
	WinnerIndex int
	NumPlayers  int
	Prize       *big.Int
	RandomWord  *big.Int
	NextRoundId string
	Timestamp   int64
}
