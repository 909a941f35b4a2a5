package domain

import (
	"encoding/json"
	"fmt"
)

type eventEnvelope struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

// MarshalEvents encodes a list of events so that their concrete type survives
// the round trip through a store or a message broker.
func MarshalEvents(events []RaffleEvent) ([]byte, error) {
	envelopes := make([]eventEnvelope, 0, len(events))
	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			return nil, err
		}
		envelopes = append(envelopes, eventEnvelope{event.GetType(), data})
	}
	return json.Marshal(envelopes)
}

func UnmarshalEvents(buf []byte) ([]RaffleEvent, error) {
	envelopes := make([]eventEnvelope, 0)
	if err := json.Unmarshal(buf, &envelopes); err != nil {
		return nil, err
	}

	events := make([]RaffleEvent, 0, len(envelopes))
	for _, envelope := range envelopes {
		event, err := decodeEvent(envelope)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func decodeEvent(envelope eventEnvelope) (RaffleEvent, error) {
	switch envelope.Type {
	case EventTypeRaffleInitialized:
		var event RaffleInitialized
		err := json.Unmarshal(envelope.Data, &event)
		return event, err
	case EventTypeEntryRecorded:
		var event EntryRecorded
		err := json.Unmarshal(envelope.Data, &event)
		return event, err
	case EventTypeClosingRequested:
		var event ClosingRequested
		err := json.Unmarshal(envelope.Data, &event)
		return event, err
	case EventTypeDrawRequestReissued:
		var event DrawRequestReissued
		err := json.Unmarshal(envelope.Data, &event)
		return event, err
	case EventTypeWinnerSelected:
		var event WinnerSelected
		err := json.Unmarshal(envelope.Data, &event)
		return event, err
	default:
		return nil, fmt.Errorf("unknown event type %d", envelope.Type)
	}
}
