package utils

import (
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionMap(t *testing.T) {
	{ // Partition sizes
		getHisto := func(K, Np int) (histo map[int]int) {
			pm := NewPartitionMap(Np, K)
			histo = make(map[int]int)
			for np := 0; np < pm.ParallelDegree; np++ {
				kMin, kMax := pm.GetBucketRange(np)
				histo[kMax-kMin]++
			}
			return
		}
		getTotal := func(histo map[int]int) (total int) {
			for key, count := range histo {
				total += key * count
			}
			return
		}
		assert.Equal(t, map[int]int{0: 30, 1: 2}, getHisto(2, 32))
		assert.Equal(t, map[int]int{1: 32}, getHisto(32, 32))
		assert.Equal(t, map[int]int{8: 32}, getHisto(256, 32))
		assert.Equal(t, map[int]int{8: 1, 9: 31}, getHisto(287, 32))
		assert.Equal(t, 287, getTotal(getHisto(287, 32)))
		for n := 64; n < 2000; n++ {
			var (
				keys   [2]float64
				keyNum int
			)
			histo := getHisto(n, 32)
			for key := range histo {
				keys[keyNum] = float64(key)
				keyNum++
			}
			if keyNum == 2 {
				assert.Equal(t, 1., math.Abs(keys[0]-keys[1])) // Maximum imbalance of 1
			}
			assert.Equal(t, n, getTotal(histo))
		}
	}
	{ // Partitions tile the index range in order
		for maxIndex := 10; maxIndex < 200; maxIndex++ {
			pm := NewPartitionMap(5, maxIndex)
			var next int
			for bn := 0; bn < pm.ParallelDegree; bn++ {
				kMin, kMax := pm.GetBucketRange(bn)
				assert.Equal(t, next, kMin)
				assert.True(t, kMax >= kMin)
				next = kMax
			}
			assert.Equal(t, maxIndex, next)
		}
	}
	{ // Non-positive degree is clamped to serial
		pm := NewPartitionMap(0, 7)
		assert.Equal(t, 1, pm.ParallelDegree)
		kMin, kMax := pm.GetBucketRange(0)
		assert.Equal(t, 0, kMin)
		assert.Equal(t, 7, kMax)
	}
}

func TestParallelFor(t *testing.T) {
	for _, degree := range []int{1, 3, 8, 20} {
		var (
			K       = 17
			pm      = NewPartitionMap(degree, K)
			visited = make([]int32, K)
			calls   int32
		)
		pm.ParallelFor(func(bn, kMin, kMax int) {
			atomic.AddInt32(&calls, 1)
			for k := kMin; k < kMax; k++ {
				atomic.AddInt32(&visited[k], 1)
			}
		})
		for k := 0; k < K; k++ {
			assert.Equal(t, int32(1), visited[k], "degree %d, index %d", degree, k)
		}
		// Empty partitions are not run
		assert.Equal(t, int32(min(degree, K)), calls)
	}
}
