package localcoordinator

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ark-network/raffle/internal/core/ports"
	"github.com/ark-network/raffle/pkg/oracle"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
)

const (
	minRequestConfirmations = 3
	maxRequestConfirmations = 200
	maxNumWords             = 500
	preSeedLen              = 32
)

var (
	ErrNonexistentRequest  = errors.New("nonexistent request")
	ErrInvalidSubscription = errors.New("invalid subscription")
	ErrMissingHandler      = errors.New("missing fulfillment handler")
)

type Config struct {
	OracleKey      *secp256k1.PrivateKey
	SubscriptionId uint64
	// FulfillmentDelay is how long after a request the random words are
	// delivered. A negative delay disables automatic fulfillment.
	FulfillmentDelay time.Duration
	Clock            clockwork.Clock
}

type request struct {
	ports.RandomnessRequest
	preSeed    []byte
	timer      clockwork.Timer
	delivering bool
}

type Fulfillment struct {
	RequestId uint64
	Words     []*big.Int
	// Signature authenticates the delivery of Words for RequestId.
	Signature []byte
	Proof     Proof
}

type Coordinator struct {
	address string
	key     *secp256k1.PrivateKey
	delay   time.Duration
	clock   clockwork.Clock

	lock          *sync.Mutex
	subscriptions map[uint64]struct{}
	nextSubId     uint64
	requests      map[uint64]*request
	nextRequestId uint64
	handler       ports.FulfillmentHandler
	closed        bool
}

// NewCoordinator returns an in-process randomness coordinator that behaves
// like an oracle network: it allocates request ids starting from 1, delivers
// the random words of a request until the consumer accepts them once and
// rejects unknown ids.
func NewCoordinator(cfg Config) (*Coordinator, error) {
	if cfg.OracleKey == nil {
		return nil, fmt.Errorf("missing oracle key")
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	svc := &Coordinator{
		address:       oracle.Address(cfg.OracleKey.PubKey()),
		key:           cfg.OracleKey,
		delay:         cfg.FulfillmentDelay,
		clock:         cfg.Clock,
		lock:          &sync.Mutex{},
		subscriptions: make(map[uint64]struct{}),
		requests:      make(map[uint64]*request),
	}

	if cfg.SubscriptionId > 0 {
		svc.subscriptions[cfg.SubscriptionId] = struct{}{}
		svc.nextSubId = cfg.SubscriptionId
	} else {
		svc.CreateSubscription()
	}

	return svc, nil
}

func (s *Coordinator) Address() string {
	return s.address
}

func (s *Coordinator) PubKey() *secp256k1.PublicKey {
	return s.key.PubKey()
}

func (s *Coordinator) CreateSubscription() uint64 {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.nextSubId++
	s.subscriptions[s.nextSubId] = struct{}{}
	return s.nextSubId
}

func (s *Coordinator) RegisterFulfillmentHandler(handler ports.FulfillmentHandler) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.handler = handler
}

func (s *Coordinator) RequestRandomWords(
	_ context.Context, req ports.RandomnessRequest,
) (uint64, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return 0, fmt.Errorf("coordinator closed")
	}
	if err := s.validateRequest(req); err != nil {
		return 0, err
	}

	s.nextRequestId++
	requestId := s.nextRequestId
	if err := s.addRequest(requestId, req); err != nil {
		return 0, err
	}

	log.Debugf("coordinator: random words requested with id %d", requestId)
	return requestId, nil
}

func (s *Coordinator) Resume(
	_ context.Context, requestId uint64, req ports.RandomnessRequest,
) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return fmt.Errorf("coordinator closed")
	}
	if requestId == 0 {
		return fmt.Errorf("invalid request id 0")
	}
	if err := s.validateRequest(req); err != nil {
		return err
	}
	if _, ok := s.requests[requestId]; ok {
		return nil
	}

	if requestId > s.nextRequestId {
		s.nextRequestId = requestId
	}

	log.Debugf("coordinator: resumed request %d", requestId)
	return s.addRequest(requestId, req)
}

// FulfillRandomWords generates and delivers the random words of the given
// request. The request is consumed only if the consumer accepts them, so a
// rejected delivery can be retried.
func (s *Coordinator) FulfillRandomWords(
	ctx context.Context, requestId uint64,
) (*Fulfillment, error) {
	return s.fulfill(ctx, requestId, nil)
}

// FulfillRandomWordsWithOverride delivers the given words in place of the
// generated ones.
func (s *Coordinator) FulfillRandomWordsWithOverride(
	ctx context.Context, requestId uint64, words []*big.Int,
) (*Fulfillment, error) {
	if len(words) <= 0 {
		return nil, fmt.Errorf("missing random words")
	}
	return s.fulfill(ctx, requestId, words)
}

// PendingRequests returns the ids of the requests not yet fulfilled.
func (s *Coordinator) PendingRequests() []uint64 {
	s.lock.Lock()
	defer s.lock.Unlock()

	ids := make([]uint64, 0, len(s.requests))
	for id := range s.requests {
		ids = append(ids, id)
	}
	return ids
}

func (s *Coordinator) Close() {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.closed = true
	for _, req := range s.requests {
		if req.timer != nil {
			req.timer.Stop()
		}
	}
}

func (s *Coordinator) validateRequest(req ports.RandomnessRequest) error {
	if _, ok := s.subscriptions[req.SubscriptionId]; !ok {
		return fmt.Errorf("%w: %d", ErrInvalidSubscription, req.SubscriptionId)
	}
	if req.MinConfirmations < minRequestConfirmations ||
		req.MinConfirmations > maxRequestConfirmations {
		return fmt.Errorf(
			"invalid request confirmations %d, must be in range [%d, %d]",
			req.MinConfirmations, minRequestConfirmations, maxRequestConfirmations,
		)
	}
	if req.NumWords <= 0 || req.NumWords > maxNumWords {
		return fmt.Errorf(
			"invalid number of words %d, must be in range [1, %d]",
			req.NumWords, maxNumWords,
		)
	}
	if req.CallbackGasLimit <= 0 {
		return fmt.Errorf("invalid callback gas limit, must be positive")
	}
	return nil
}

func (s *Coordinator) addRequest(requestId uint64, req ports.RandomnessRequest) error {
	preSeed := make([]byte, preSeedLen)
	if _, err := rand.Read(preSeed); err != nil {
		return fmt.Errorf("failed to generate request seed: %s", err)
	}

	r := &request{RandomnessRequest: req, preSeed: preSeed}
	if s.delay >= 0 {
		r.timer = s.clock.AfterFunc(s.delay, func() {
			if _, err := s.FulfillRandomWords(context.Background(), requestId); err != nil {
				log.WithError(err).Warnf(
					"coordinator: failed to fulfill request %d", requestId,
				)
			}
		})
	}
	s.requests[requestId] = r
	return nil
}

func (s *Coordinator) fulfill(
	ctx context.Context, requestId uint64, override []*big.Int,
) (*Fulfillment, error) {
	s.lock.Lock()
	req, ok := s.requests[requestId]
	if !ok {
		s.lock.Unlock()
		return nil, ErrNonexistentRequest
	}
	if req.delivering {
		s.lock.Unlock()
		return nil, fmt.Errorf("request %d is already being fulfilled", requestId)
	}
	handler := s.handler
	if handler == nil {
		s.lock.Unlock()
		return nil, ErrMissingHandler
	}
	req.delivering = true
	if req.timer != nil {
		req.timer.Stop()
		req.timer = nil
	}
	s.lock.Unlock()

	fulfillment, err := s.makeFulfillment(requestId, req, override)
	if err == nil {
		err = handler(ctx, requestId, fulfillment.Words, fulfillment.Signature)
		if err != nil {
			err = fmt.Errorf("consumer rejected random words: %w", err)
		}
	}

	s.lock.Lock()
	req.delivering = false
	if err == nil {
		delete(s.requests, requestId)
	}
	s.lock.Unlock()

	if err != nil {
		return fulfillment, err
	}
	log.Debugf("coordinator: fulfilled request %d", requestId)
	return fulfillment, nil
}

func (s *Coordinator) makeFulfillment(
	requestId uint64, req *request, override []*big.Int,
) (*Fulfillment, error) {
	seed := requestSeed(req.KeyHash, requestId, req.preSeed)
	proofSig := ecdsa.Sign(s.key, seed).Serialize()

	words := override
	if words == nil {
		words = deriveWords(proofSig, req.NumWords)
	}

	signature, err := oracle.SignFulfillment(s.key, requestId, words)
	if err != nil {
		return nil, err
	}

	return &Fulfillment{
		RequestId: requestId,
		Words:     words,
		Signature: signature,
		Proof: Proof{
			RequestId: requestId,
			Seed:      seed,
			Signature: proofSig,
		},
	}, nil
}
