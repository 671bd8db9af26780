package protocol_test

import (
	"errors"
	"math"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/khoangkhac118/namada/ledger/gas"
	"github.com/khoangkhac118/namada/ledger/protocol"
	"github.com/khoangkhac118/namada/model/address"
)

// branchFixture builds the single-address partial result one fold branch
// produces.
func branchFixture(addr address.Address, accepted bool, gasUsed uint64) protocol.VpsResult {
	branch := protocol.VpsResult{GasUsed: gasUsed}
	if accepted {
		branch.AcceptedVps = []address.Address{addr}
	} else {
		branch.RejectedVps = []address.Address{addr}
	}
	return branch
}

func addrAt(i int) address.Address {
	var payload [address.HashLength]byte
	payload[0] = byte(i)
	payload[1] = byte(i >> 8)
	return address.NewEstablished(payload)
}

func TestMergeVpsResults(t *testing.T) {
	t.Run("commutative", func(t *testing.T) {
		a := branchFixture(addrAt(1), true, 70)
		b := branchFixture(addrAt(2), false, 30)

		ab, err := protocol.MergeVpsResults(a, b)
		require.NoError(t, err)
		ba, err := protocol.MergeVpsResults(b, a)
		require.NoError(t, err)

		assert.Equal(t, ab.AcceptedVps, ba.AcceptedVps)
		assert.Equal(t, ab.RejectedVps, ba.RejectedVps)
		assert.Equal(t, ab.GasUsed, ba.GasUsed)
		assert.Equal(t, uint64(100), ab.GasUsed)
	})

	t.Run("any fold order", rapid.MakeCheck(func(rt *rapid.T) {
		n := rapid.IntRange(0, 16).Draw(rt, "branches")
		branches := make([]protocol.VpsResult, n)
		for i := range branches {
			branches[i] = branchFixture(
				addrAt(i),
				rapid.Bool().Draw(rt, "accepted"),
				rapid.Uint64Range(0, 1<<40).Draw(rt, "gas"),
			)
		}

		forward := protocol.VpsResult{}
		var err error
		for _, branch := range branches {
			forward, err = protocol.MergeVpsResults(forward, branch)
			require.NoError(rt, err)
		}
		backward := protocol.VpsResult{}
		for i := len(branches) - 1; i >= 0; i-- {
			backward, err = protocol.MergeVpsResults(branches[i], backward)
			require.NoError(rt, err)
		}

		assert.Equal(rt, forward.AcceptedVps, backward.AcceptedVps)
		assert.Equal(rt, forward.RejectedVps, backward.RejectedVps)
		assert.Equal(rt, forward.GasUsed, backward.GasUsed)
	}))

	t.Run("errors concatenate", func(t *testing.T) {
		a := branchFixture(addrAt(1), false, 0)
		a.Errors = multierror.Append(nil, errors.New("first"))
		b := branchFixture(addrAt(2), false, 0)
		b.Errors = multierror.Append(nil, errors.New("second"))

		merged, err := protocol.MergeVpsResults(a, b)
		require.NoError(t, err)
		require.NotNil(t, merged.Errors)
		assert.Len(t, merged.Errors.Errors, 2)
	})

	t.Run("no phantom error list", func(t *testing.T) {
		merged, err := protocol.MergeVpsResults(
			branchFixture(addrAt(1), true, 1),
			branchFixture(addrAt(2), true, 2),
		)
		require.NoError(t, err)
		assert.Nil(t, merged.Errors)
		assert.True(t, merged.IsAccepted())
	})

	t.Run("gas overflow is fatal", func(t *testing.T) {
		a := protocol.VpsResult{GasUsed: math.MaxUint64}
		b := protocol.VpsResult{GasUsed: 1}
		_, err := protocol.MergeVpsResults(a, b)
		require.ErrorIs(t, err, gas.ErrGasOverflow)
	})

	t.Run("rejection decides acceptance", func(t *testing.T) {
		merged, err := protocol.MergeVpsResults(
			branchFixture(addrAt(1), true, 0),
			branchFixture(addrAt(2), false, 0),
		)
		require.NoError(t, err)
		assert.False(t, merged.IsAccepted())
	})
}
