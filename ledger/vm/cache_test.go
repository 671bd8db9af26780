package vm_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoangkhac118/namada/ledger/vm"
	"github.com/khoangkhac118/namada/utils/unittest"
)

func TestCache(t *testing.T) {
	t.Run("compiles once per hash", func(t *testing.T) {
		cache, err := vm.NewCache[string](8)
		require.NoError(t, err)

		codeHash := unittest.HashFixture()
		compiles := 0
		compile := func() (string, error) {
			compiles++
			return "artifact", nil
		}

		for i := 0; i < 3; i++ {
			artifact, err := cache.GetOrCompile(codeHash, compile)
			require.NoError(t, err)
			assert.Equal(t, "artifact", artifact)
		}
		assert.Equal(t, 1, compiles)
		assert.True(t, cache.Contains(codeHash))
	})

	t.Run("failed compilation is not cached", func(t *testing.T) {
		cache, err := vm.NewCache[string](8)
		require.NoError(t, err)

		codeHash := unittest.HashFixture()
		boom := errors.New("compile failed")
		_, err = cache.GetOrCompile(codeHash, func() (string, error) { return "", boom })
		require.ErrorIs(t, err, boom)
		assert.False(t, cache.Contains(codeHash))
		assert.Equal(t, 0, cache.Len())
	})

	t.Run("evicts past capacity", func(t *testing.T) {
		cache, err := vm.NewCache[int](2)
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			_, err := cache.GetOrCompile(unittest.HashFixture(), func() (int, error) { return i, nil })
			require.NoError(t, err)
		}
		assert.Equal(t, 2, cache.Len())
	})
}
