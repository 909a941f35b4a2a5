package localcoordinator_test

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ark-network/raffle/internal/core/ports"
	localcoordinator "github.com/ark-network/raffle/internal/infrastructure/coordinator/local"
	"github.com/ark-network/raffle/pkg/oracle"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

const (
	subscriptionId = uint64(1)
	keyHash        = "0x474e34a077df58807dbe9c96d3c009b23b3c6d0cce433e59bbf5b34f823bc56c"
)

var req = ports.RandomnessRequest{
	KeyHash:          keyHash,
	SubscriptionId:   subscriptionId,
	MinConfirmations: 3,
	CallbackGasLimit: 500000,
	NumWords:         1,
}

type delivery struct {
	requestId uint64
	words     []*big.Int
	signature []byte
}

type recorder struct {
	lock       sync.Mutex
	deliveries []delivery
	err        error
}

func (r *recorder) handle(
	_ context.Context, requestId uint64, words []*big.Int, signature []byte,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.deliveries = append(r.deliveries, delivery{requestId, words, signature})
	return r.err
}

func (r *recorder) setErr(err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.err = err
}

func (r *recorder) count() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.deliveries)
}

func newCoordinator(
	t *testing.T, delay time.Duration, clock clockwork.Clock,
) (*localcoordinator.Coordinator, *secp256k1.PrivateKey) {
	key, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	coordinator, err := localcoordinator.NewCoordinator(localcoordinator.Config{
		OracleKey:        key,
		SubscriptionId:   subscriptionId,
		FulfillmentDelay: delay,
		Clock:            clock,
	})
	require.NoError(t, err)
	t.Cleanup(coordinator.Close)
	return coordinator, key
}

func TestRequestRandomWords(t *testing.T) {
	ctx := context.Background()
	coordinator, _ := newCoordinator(t, -1, nil)

	t.Run("valid", func(t *testing.T) {
		for i := uint64(1); i <= 3; i++ {
			requestId, err := coordinator.RequestRandomWords(ctx, req)
			require.NoError(t, err)
			require.Equal(t, i, requestId)
		}
		require.Len(t, coordinator.PendingRequests(), 3)
	})

	t.Run("invalid", func(t *testing.T) {
		fixtures := []struct {
			name   string
			modify func(r *ports.RandomnessRequest)
		}{
			{"unknown subscription", func(r *ports.RandomnessRequest) { r.SubscriptionId = 99 }},
			{"too few confirmations", func(r *ports.RandomnessRequest) { r.MinConfirmations = 2 }},
			{"too many confirmations", func(r *ports.RandomnessRequest) { r.MinConfirmations = 201 }},
			{"no words", func(r *ports.RandomnessRequest) { r.NumWords = 0 }},
			{"too many words", func(r *ports.RandomnessRequest) { r.NumWords = 501 }},
			{"no gas", func(r *ports.RandomnessRequest) { r.CallbackGasLimit = 0 }},
		}

		for _, f := range fixtures {
			t.Run(f.name, func(t *testing.T) {
				r := req
				f.modify(&r)
				requestId, err := coordinator.RequestRandomWords(ctx, r)
				require.Error(t, err)
				require.Zero(t, requestId)
			})
		}
	})

	t.Run("new subscription", func(t *testing.T) {
		subId := coordinator.CreateSubscription()
		require.Equal(t, subscriptionId+1, subId)

		r := req
		r.SubscriptionId = subId
		_, err := coordinator.RequestRandomWords(ctx, r)
		require.NoError(t, err)
	})
}

func TestFulfillRandomWords(t *testing.T) {
	ctx := context.Background()

	t.Run("nonexistent request", func(t *testing.T) {
		coordinator, _ := newCoordinator(t, -1, nil)
		rec := &recorder{}
		coordinator.RegisterFulfillmentHandler(rec.handle)

		for _, id := range []uint64{0, 1} {
			_, err := coordinator.FulfillRandomWords(ctx, id)
			require.ErrorIs(t, err, localcoordinator.ErrNonexistentRequest)
			require.EqualError(t, err, "nonexistent request")
		}
		require.Zero(t, rec.count())
	})

	t.Run("at most once", func(t *testing.T) {
		coordinator, key := newCoordinator(t, -1, nil)
		rec := &recorder{}
		coordinator.RegisterFulfillmentHandler(rec.handle)

		r := req
		r.NumWords = 3
		requestId, err := coordinator.RequestRandomWords(ctx, r)
		require.NoError(t, err)

		fulfillment, err := coordinator.FulfillRandomWords(ctx, requestId)
		require.NoError(t, err)
		require.NotNil(t, fulfillment)
		require.Len(t, fulfillment.Words, 3)
		require.Equal(t, 1, rec.count())
		require.Equal(t, requestId, rec.deliveries[0].requestId)

		err = oracle.VerifyFulfillment(
			key.PubKey(), requestId, rec.deliveries[0].words, rec.deliveries[0].signature,
		)
		require.NoError(t, err)

		err = localcoordinator.VerifyProof(key.PubKey(), fulfillment.Proof, fulfillment.Words)
		require.NoError(t, err)

		tampered := append([]*big.Int{big.NewInt(7)}, fulfillment.Words[1:]...)
		err = localcoordinator.VerifyProof(key.PubKey(), fulfillment.Proof, tampered)
		require.Error(t, err)

		_, err = coordinator.FulfillRandomWords(ctx, requestId)
		require.ErrorIs(t, err, localcoordinator.ErrNonexistentRequest)
		require.Equal(t, 1, rec.count())
		require.Empty(t, coordinator.PendingRequests())
	})

	t.Run("rejected delivery", func(t *testing.T) {
		coordinator, _ := newCoordinator(t, -1, nil)
		rec := &recorder{err: fmt.Errorf("rejected")}
		coordinator.RegisterFulfillmentHandler(rec.handle)

		requestId, err := coordinator.RequestRandomWords(ctx, req)
		require.NoError(t, err)

		_, err = coordinator.FulfillRandomWords(ctx, requestId)
		require.Error(t, err)
		require.Equal(t, []uint64{requestId}, coordinator.PendingRequests())

		rec.setErr(nil)
		_, err = coordinator.FulfillRandomWords(ctx, requestId)
		require.NoError(t, err)
		require.Equal(t, 2, rec.count())
		require.Empty(t, coordinator.PendingRequests())

		_, err = coordinator.FulfillRandomWords(ctx, requestId)
		require.ErrorIs(t, err, localcoordinator.ErrNonexistentRequest)
		require.Equal(t, 2, rec.count())
	})

	t.Run("override", func(t *testing.T) {
		coordinator, _ := newCoordinator(t, -1, nil)
		rec := &recorder{}
		coordinator.RegisterFulfillmentHandler(rec.handle)

		requestId, err := coordinator.RequestRandomWords(ctx, req)
		require.NoError(t, err)

		_, err = coordinator.FulfillRandomWordsWithOverride(ctx, requestId, []*big.Int{big.NewInt(7)})
		require.NoError(t, err)
		require.Equal(t, 1, rec.count())
		require.Equal(t, "7", rec.deliveries[0].words[0].String())
	})

	t.Run("automatic", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		coordinator, _ := newCoordinator(t, 10*time.Second, clock)
		rec := &recorder{}
		coordinator.RegisterFulfillmentHandler(rec.handle)

		requestId, err := coordinator.RequestRandomWords(ctx, req)
		require.NoError(t, err)

		clock.Advance(5 * time.Second)
		require.Zero(t, rec.count())

		clock.Advance(5 * time.Second)
		require.Eventually(t, func() bool {
			return rec.count() == 1
		}, 5*time.Second, 10*time.Millisecond)
		require.Equal(t, requestId, rec.deliveries[0].requestId)
	})
}

func TestResume(t *testing.T) {
	ctx := context.Background()
	coordinator, _ := newCoordinator(t, -1, nil)
	rec := &recorder{}
	coordinator.RegisterFulfillmentHandler(rec.handle)

	err := coordinator.Resume(ctx, 5, req)
	require.NoError(t, err)

	requestId, err := coordinator.RequestRandomWords(ctx, req)
	require.NoError(t, err)
	require.Equal(t, uint64(6), requestId)

	_, err = coordinator.FulfillRandomWords(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, 1, rec.count())

	err = coordinator.Resume(ctx, 0, req)
	require.Error(t, err)
}

func TestAddress(t *testing.T) {
	key, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	coordinator, err := localcoordinator.NewCoordinator(localcoordinator.Config{
		OracleKey: key,
	})
	require.NoError(t, err)
	defer coordinator.Close()
	require.Equal(t, oracle.Address(key.PubKey()), coordinator.Address())
	require.Len(t, coordinator.Address(), 42)
	require.True(t, key.PubKey().IsEqual(coordinator.PubKey()))

	_, err = localcoordinator.NewCoordinator(localcoordinator.Config{})
	require.EqualError(t, err, "missing oracle key")
}
