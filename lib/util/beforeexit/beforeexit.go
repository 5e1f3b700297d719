package beforeexit

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/uuid"
)

var (
	mu    sync.Mutex
	toRun map[uuid.UUID]func()
	once  sync.Once
)

// Run will register a func to run before exit on receiving an interrupt.
// The order that tasks are run is undefined.
func Run(fn func()) uuid.UUID {
	once.Do(listen)

	id := uuid.New()
	mu.Lock()
	defer mu.Unlock()
	if toRun == nil {
		toRun = make(map[uuid.UUID]func())
	}
	toRun[id] = fn
	return id
}

func Cancel(id uuid.UUID) {
	mu.Lock()
	defer mu.Unlock()
	delete(toRun, id)
}

// Drain runs and removes every registered func.
func Drain() {
	mu.Lock()
	fns := make([]func(), 0, len(toRun))
	for id, fn := range toRun {
		fns = append(fns, fn)
		delete(toRun, id)
	}
	mu.Unlock()

	for _, fn := range fns {
		// ignore any panics in funcs
		func() {
			defer func() {
				recover()
			}()
			fn()
		}()
	}
}

func listen() {
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		Drain()
		os.Exit(1)
	}()
}
