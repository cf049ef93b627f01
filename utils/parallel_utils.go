package utils

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

var ErrCancelled = errors.New("analysis cancelled")

type PartitionMap struct {
	MaxIndex       int // MaxIndex is partitioned into ParallelDegree partitions
	ParallelDegree int
	Partitions     [][2]int // Beginning and end index of partitions
}

func NewPartitionMap(ParallelDegree, maxIndex int) (pm *PartitionMap) {
	if ParallelDegree < 1 {
		ParallelDegree = 1
	}
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: ParallelDegree,
		Partitions:     make([][2]int, ParallelDegree),
	}
	for n := 0; n < ParallelDegree; n++ {
		pm.Partitions[n] = pm.Split1D(n)
	}
	return
}

// GetBucketRange returns the rows [kMin, kMax) of block bucketNum
func (pm *PartitionMap) GetBucketRange(bucketNum int) (kMin, kMax int) {
	kMin, kMax = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

// Split1D returns the rows of block threadNum. The first MaxIndex %
// ParallelDegree blocks hold one more row than the others.
func (pm *PartitionMap) Split1D(threadNum int) (bucket [2]int) {
	var (
		size  = pm.MaxIndex / pm.ParallelDegree
		extra = pm.MaxIndex % pm.ParallelDegree
	)
	bucket[0] = threadNum*size + min(threadNum, extra)
	bucket[1] = bucket[0] + size
	if threadNum < extra {
		bucket[1]++
	}
	return
}

// SetParallelDegree returns the number of row blocks to use for nItems rows.
// A ProcLimit of zero means all the available cores.
func SetParallelDegree(ProcLimit, nItems int) (NP int) {
	NP = runtime.NumCPU()
	if ProcLimit != 0 && ProcLimit < NP {
		NP = ProcLimit
	}
	if NP > nItems {
		NP = nItems
	}
	if NP < 1 {
		NP = 1
	}
	return
}

// CancelFlag is the cooperative cancellation flag polled by the block loops.
// The zero value is ready to use.
type CancelFlag struct {
	set atomic.Bool
}

func (cf *CancelFlag) Cancel()          { cf.set.Store(true) }
func (cf *CancelFlag) Reset()           { cf.set.Store(false) }
func (cf *CancelFlag) IsCancelled() bool { return cf.set.Load() }

// Watch trips the flag when ctx is done. The returned func releases the watcher.
func (cf *CancelFlag) Watch(ctx context.Context) (stop func()) {
	if ctx == nil || ctx.Done() == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			cf.Cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}

// BlockFunc processes the rows [iMin, iMax) of block np.
type BlockFunc func(np, iMin, iMax int) error

// ParallelFor splits nItems rows into contiguous blocks and runs fn on each
// block. With multiThread false the blocks run in order on the calling
// goroutine. All blocks are joined before return; the error of the lowest
// numbered failing block is returned.
func ParallelFor(pm *PartitionMap, multiThread bool, fn BlockFunc) (err error) {
	var (
		NP   = pm.ParallelDegree
		errs = make([]error, NP)
	)
	if !multiThread {
		for np := 0; np < NP; np++ {
			iMin, iMax := pm.GetBucketRange(np)
			if errs[np] = fn(np, iMin, iMax); errs[np] != nil {
				break
			}
		}
	} else {
		wg := sync.WaitGroup{}
		for np := 0; np < NP; np++ {
			wg.Add(1)
			go func(np int) {
				defer wg.Done()
				iMin, iMax := pm.GetBucketRange(np)
				errs[np] = fn(np, iMin, iMax)
			}(np)
		}
		wg.Wait()
	}
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return
}
