// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package protoutil

import "sync"

// Lifecycle carries the start/stop guard every protocol application
// embeds, mirroring the teacher's started-bool-under-lock shape
// (networking/handler.NotificationForwarder). StartTime/StopTime are
// virtual-time bounds; events scheduled past StopTime are the kernel's
// concern, not the application's.
type Lifecycle struct {
	mu        sync.Mutex
	started   bool
	StartTime float64
	StopTime  float64
}

// Start marks the application started, returning false if it already was.
func (l *Lifecycle) Start() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return false
	}
	l.started = true
	return true
}

// Stop marks the application stopped, returning false if it already was.
func (l *Lifecycle) Stop() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.started {
		return false
	}
	l.started = false
	return true
}

// Running reports whether the application is between Start and Stop.
func (l *Lifecycle) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.started
}
