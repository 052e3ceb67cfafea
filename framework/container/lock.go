package container

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
)

// instantiationLock is a mutex the holding goroutine may take again. It lets
// code running inside a resolution (factories, module hooks, injected
// functions) call the container directly without waiting on itself.
type instantiationLock struct {
	mu    sync.Mutex
	owner atomic.Uint64
}

// lock reports whether the calling goroutine already held the lock, in which
// case nothing was acquired.
func (l *instantiationLock) lock() (reentered bool) {
	g := goroutineID()
	if l.owner.Load() == g {
		return true
	}
	l.mu.Lock()
	l.owner.Store(g)
	return false
}

func (l *instantiationLock) unlock(reentered bool) {
	if reentered {
		return
	}
	l.owner.Store(0)
	l.mu.Unlock()
}

func (l *instantiationLock) heldByCaller() bool {
	return l.owner.Load() == goroutineID()
}

var goroutinePrefix = []byte("goroutine ")

// goroutineID parses the id out of the "goroutine N [status]:" header of the
// current stack.
func goroutineID() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, goroutinePrefix)
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		panic("container: cannot parse goroutine id from " + strconv.Quote(string(buf[:])))
	}
	return id
}
