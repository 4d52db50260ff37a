package sync

import (
	"runtime"

	"github.com/ikenchina/rootbar/pkg/log"
)

type Handler func(interface{})

func Recovery(hr ...Handler) {
	if r := recover(); r != nil {
		buf := make([]byte, 1<<16)
		n := runtime.Stack(buf, false)
		log.Errorf("panic : %v, Stack: %s", r, buf[0:n])
		for _, h := range hr {
			if h != nil {
				h(r)
			}
		}
	}
}

// SafeGo runs f on a new goroutine, a panic is logged and handed to
// panicCallBack instead of crashing the process.
func SafeGo(f func(), panicCallBack Handler) {
	go func() {
		defer Recovery(panicCallBack)
		f()
	}()
}
