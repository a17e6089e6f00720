package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var SafeExitInst *SafeExit

func InitSafeExit() {
	SafeExitInst = new(SafeExit)
	go SafeExitInst.ListenSignal()
}

// SafeExit runs the registered abort functions when the process is signalled.
type SafeExit struct {
	funcs []func()
	mu    sync.Mutex
}

func (s *SafeExit) Register(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.funcs = append(s.funcs, f)
}

// abort calls every registered function in order.
func (s *SafeExit) abort() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.funcs {
		f()
	}
}

func (s *SafeExit) ListenSignal() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	n := 0
	for sig := range sigs {
		n++
		if n > 1 {
			fmt.Printf("收到系统信号 %d, 强制退出\n", sig)
			os.Exit(1)
		}
		fmt.Printf("收到系统信号 %d, 正在停止任务, 请稍后\n", sig)
		s.abort()
	}
}
