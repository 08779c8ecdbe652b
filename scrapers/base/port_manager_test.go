package base

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortManager(t *testing.T) {
	pm := NewPortManager(9500, 2)

	a, err := pm.Acquire()
	require.NoError(t, err)
	b, err := pm.Acquire()
	require.NoError(t, err)
	assert.Equal(t, 9500, a)
	assert.Equal(t, 9501, b)

	_, err = pm.Acquire()
	assert.Error(t, err)

	pm.Release(a)
	c, err := pm.Acquire()
	require.NoError(t, err)
	assert.Equal(t, 9500, c)
}

func TestPortManager_Concurrent(t *testing.T) {
	pm := NewPortManager(9600, 8)
	ports := make(chan int, 8)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := pm.Acquire()
			assert.NoError(t, err)
			ports <- p
		}()
	}
	wg.Wait()
	close(ports)

	seen := map[int]bool{}
	for p := range ports {
		assert.False(t, seen[p], "port %d handed out twice", p)
		seen[p] = true
	}
	assert.Len(t, seen, 8)
}
