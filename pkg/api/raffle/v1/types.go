package rafflev1

// Amounts travel as base-10 strings since they can exceed 64 bits.

type EnterRequest struct {
	Player string `json:"player"`
	Value  string `json:"value"`
}

type EnterResponse struct{}

type CheckUpkeepRequest struct{}

type CheckUpkeepResponse struct {
	UpkeepNeeded bool `json:"upkeepNeeded"`
}

type PerformUpkeepRequest struct{}

type PerformUpkeepResponse struct {
	RequestId uint64 `json:"requestId"`
}

type FulfillRandomWordsRequest struct {
	RequestId   uint64   `json:"requestId"`
	RandomWords []string `json:"randomWords"`
	// Signature is the hex DER signature of the oracle key over the request
	// id and the random words.
	Signature string `json:"signature"`
}

type FulfillRandomWordsResponse struct{}

type ReissueDrawRequestRequest struct {
	Caller string `json:"caller"`
}

type ReissueDrawRequestResponse struct {
	RequestId uint64 `json:"requestId"`
}

type GetInfoRequest struct{}

type PendingRequest struct {
	RequestId uint64 `json:"requestId"`
	RoundId   string `json:"roundId"`
	Timestamp int64  `json:"timestamp"`
}

type GetInfoResponse struct {
	State              string          `json:"state"`
	RoundId            string          `json:"roundId"`
	EntranceFee        string          `json:"entranceFee"`
	Interval           int64           `json:"interval"`
	StartTimestamp     int64           `json:"startTimestamp"`
	Delta              int64           `json:"delta"`
	NumPlayers         int64           `json:"numPlayers"`
	CollectedValue     string          `json:"collectedValue"`
	RecentWinner       string          `json:"recentWinner,omitempty"`
	Rounds             uint64          `json:"rounds"`
	PendingRequest     *PendingRequest `json:"pendingRequest,omitempty"`
	UpkeepNeeded       bool            `json:"upkeepNeeded"`
	CoordinatorAddress string          `json:"coordinatorAddress"`
	CoordinatorPubKey  string          `json:"coordinatorPubKey"`
	Timestamp          int64           `json:"timestamp"`
}

type GetPlayerRequest struct {
	Index int64 `json:"index"`
}

type GetPlayerResponse struct {
	Player string `json:"player"`
}

type GetPlayersRequest struct{}

type GetPlayersResponse struct {
	Players []string `json:"players"`
}

type GetBalanceRequest struct {
	Address string `json:"address"`
}

type GetBalanceResponse struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
	Payable bool   `json:"payable"`
}

type DepositRequest struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

type DepositResponse struct{}

type SetPayableRequest struct {
	Address string `json:"address"`
	Payable bool   `json:"payable"`
}

type SetPayableResponse struct{}

type ListWinnersRequest struct {
	Limit int64 `json:"limit"`
}

type Winner struct {
	RoundId    string `json:"roundId"`
	Address    string `json:"address"`
	Prize      string `json:"prize"`
	RequestId  uint64 `json:"requestId"`
	NumPlayers int64  `json:"numPlayers"`
	Timestamp  int64  `json:"timestamp"`
}

type ListWinnersResponse struct {
	Winners []Winner `json:"winners"`
}

type GetEventStreamRequest struct{}

// GetEventStreamResponse carries exactly one of the event fields.
type GetEventStreamResponse struct {
	RaffleInitialized   *RaffleInitializedEvent   `json:"raffleInitialized,omitempty"`
	EntryRecorded       *EntryRecordedEvent       `json:"entryRecorded,omitempty"`
	ClosingRequested    *ClosingRequestedEvent    `json:"closingRequested,omitempty"`
	DrawRequestReissued *DrawRequestReissuedEvent `json:"drawRequestReissued,omitempty"`
	WinnerSelected      *WinnerSelectedEvent      `json:"winnerSelected,omitempty"`
}

type RaffleInitializedEvent struct {
	RoundId     string `json:"roundId"`
	EntranceFee string `json:"entranceFee"`
	Interval    int64  `json:"interval"`
	Timestamp   int64  `json:"timestamp"`
}

type EntryRecordedEvent struct {
	RoundId   string `json:"roundId"`
	Player    string `json:"player"`
	FeePaid   string `json:"feePaid"`
	Timestamp int64  `json:"timestamp"`
}

type ClosingRequestedEvent struct {
	RoundId   string `json:"roundId"`
	RequestId uint64 `json:"requestId"`
	Timestamp int64  `json:"timestamp"`
}

type DrawRequestReissuedEvent struct {
	RoundId           string `json:"roundId"`
	PreviousRequestId uint64 `json:"previousRequestId"`
	RequestId         uint64 `json:"requestId"`
	Timestamp         int64  `json:"timestamp"`
}

type WinnerSelectedEvent struct {
	RoundId     string `json:"roundId"`
	RequestId   uint64 `json:"requestId"`
	Winner      string `json:"winner"`
	WinnerIndex int64  `json:"winnerIndex"`
	NumPlayers  int64  `json:"numPlayers"`
	Prize       string `json:"prize"`
	RandomWord  string `json:"randomWord"`
	NextRoundId string `json:"nextRoundId"`
	Timestamp   int64  `json:"timestamp"`
}

func (x *EnterRequest) GetPlayer() string {
	if x != nil {
		return x.Player
	}
	return ""
}

func (x *EnterRequest) GetValue() string {
	if x != nil {
		return x.Value
	}
	return ""
}

func (x *FulfillRandomWordsRequest) GetSignature() string {
	if x != nil {
		return x.Signature
	}
	return ""
}

func (x *FulfillRandomWordsRequest) GetRequestId() uint64 {
	if x != nil {
		return x.RequestId
	}
	return 0
}

func (x *FulfillRandomWordsRequest) GetRandomWords() []string {
	if x != nil {
		return x.RandomWords
	}
	return nil
}

func (x *ReissueDrawRequestRequest) GetCaller() string {
	if x != nil {
		return x.Caller
	}
	return ""
}

func (x *GetPlayerRequest) GetIndex() int64 {
	if x != nil {
		return x.Index
	}
	return 0
}

func (x *GetBalanceRequest) GetAddress() string {
	if x != nil {
		return x.Address
	}
	return ""
}

func (x *DepositRequest) GetAddress() string {
	if x != nil {
		return x.Address
	}
	return ""
}

func (x *DepositRequest) GetAmount() string {
	if x != nil {
		return x.Amount
	}
	return ""
}

func (x *SetPayableRequest) GetAddress() string {
	if x != nil {
		return x.Address
	}
	return ""
}

func (x *SetPayableRequest) GetPayable() bool {
	if x != nil {
		return x.Payable
	}
	return false
}

func (x *ListWinnersRequest) GetLimit() int64 {
	if x != nil {
		return x.Limit
	}
	return 0
}
