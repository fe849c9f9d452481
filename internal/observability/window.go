package observability

import (
	"sync/atomic"
	"time"
)

type durationValue struct {
	v atomic.Int64
}

func newDurationValue(d time.Duration) *durationValue {
	dv := &durationValue{}
	dv.v.Store(int64(d))
	return dv
}

func (d *durationValue) Load() time.Duration { return time.Duration(d.v.Load()) }

func (d *durationValue) Store(v time.Duration) { d.v.Store(int64(v)) }
