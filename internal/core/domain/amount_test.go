package domain_test

import (
	"testing"

	"github.com/ark-network/raffle/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAddress(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		addr, err := domain.NormalizeAddress("0xAbCdEf0123456789aBcDeF0123456789ABCDEF01")
		require.NoError(t, err)
		require.Equal(t, "0xabcdef0123456789abcdef0123456789abcdef01", addr)
	})

	t.Run("invalid", func(t *testing.T) {
		fixtures := []string{
			"",
			"abcdef0123456789abcdef0123456789abcdef01",
			"0xabcdef",
			"0xzzcdef0123456789abcdef0123456789abcdef01",
			"0xabcdef0123456789abcdef0123456789abcdef0102",
		}
		for _, addr := range fixtures {
			_, err := domain.NormalizeAddress(addr)
			require.ErrorIs(t, err, domain.ErrInvalidAddress, addr)
		}
	})
}

func TestParseAmount(t *testing.T) {
	amount, err := domain.ParseAmount("1000000000000000")
	require.NoError(t, err)
	require.Equal(t, "1000000000000000", amount.String())

	amount, err = domain.ParseAmount(domain.MaxUint256.String())
	require.NoError(t, err)
	require.Zero(t, domain.MaxUint256.Cmp(amount))

	for _, s := range []string{"", "-1", "1.5", "0x10", "1" + domain.MaxUint256.String()} {
		_, err := domain.ParseAmount(s)
		require.ErrorIs(t, err, domain.ErrInvalidAmount, s)
	}
}
