package spsc

import "sync/atomic"

func loadAcquire(p *uint64) uint64 {
	return atomic.LoadUint64(p)
}

func storeRelease(p *uint64, v uint64) {
	atomic.StoreUint64(p, v)
}
