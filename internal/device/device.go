// Package device provides the data-parallel compute device the rasterizer
// runs its kernels on. The execution model mirrors a GPU compute dispatch:
// a kernel is a stateless function of its unit index, Launch schedules one
// unit of work per index across a fixed worker pool, and returning from
// Launch is the synchronization barrier. Kernels must not allocate and must
// coordinate only through atomics, so they stay portable to a real device.
package device

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrDeviceUnavailable is returned when no compute device can be provisioned
// or when work is launched on a closed device. The caller owns the decision
// to fall back to a different execution path; this package has no fallback.
var ErrDeviceUnavailable = errors.New("compute device unavailable")

// Kernel is one unit of data-parallel work, invoked once per index in
// [0, n). Implementations must be safe to run concurrently with any other
// index and must not depend on invocation order.
type Kernel func(i int)

// Device schedules kernels across a fixed set of workers.
type Device struct {
	workers int
	closed  atomic.Bool
}

// Open probes the host and returns a device sized to it. workers <= 0 selects
// GOMAXPROCS. Open fails with ErrDeviceUnavailable if no worker can be
// provisioned.
func Open(workers int) (*Device, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers < 1 {
		return nil, fmt.Errorf("probing host for workers: %w", ErrDeviceUnavailable)
	}
	return &Device{workers: workers}, nil
}

// Workers returns the parallel width of the device.
func (d *Device) Workers() int { return d.workers }

// Close releases the device. Subsequent launches fail.
func (d *Device) Close() { d.closed.Store(true) }

// Launch runs kernel(i) for every i in [0, n) and returns once every unit has
// completed; the return is a full barrier. Units are distributed over the
// workers in contiguous chunks. n <= 0 is a no-op.
func (d *Device) Launch(n int, kernel Kernel) error {
	if d == nil || d.closed.Load() {
		return ErrDeviceUnavailable
	}
	if n <= 0 {
		return nil
	}

	workers := d.workers
	if workers > n {
		workers = n
	}
	chunk := n / workers
	rem := n % workers

	var wg sync.WaitGroup
	start := 0
	for w := 0; w < workers; w++ {
		size := chunk
		if w < rem {
			size++
		}
		lo, hi := start, start+size
		start = hi
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				kernel(i)
			}
		}()
	}
	wg.Wait()
	return nil
}
