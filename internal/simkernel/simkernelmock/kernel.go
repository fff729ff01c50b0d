// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package simkernelmock provides a gomock-style hand-written double for
// simkernel.Kernel, for protocol unit tests that need to assert on
// Schedule/ScheduleNow calls without running a real event loop.
package simkernelmock

import (
	"reflect"

	"go.uber.org/mock/gomock"

	"github.com/luxfi/qns/internal/simkernel"
)

// Kernel is a mock of the simkernel.Kernel interface.
type Kernel struct {
	ctrl     *gomock.Controller
	recorder *KernelMockRecorder
}

// KernelMockRecorder is the recorder for Kernel.
type KernelMockRecorder struct {
	mock *Kernel
}

// NewKernel returns a new mock Kernel.
func NewKernel(ctrl *gomock.Controller) *Kernel {
	m := &Kernel{ctrl: ctrl}
	m.recorder = &KernelMockRecorder{mock: m}
	return m
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *Kernel) EXPECT() *KernelMockRecorder { return m.recorder }

func (m *Kernel) Now() float64 {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Now")
	return ret[0].(float64)
}

func (mr *KernelMockRecorder) Now() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Now", reflect.TypeOf((*Kernel)(nil).Now))
}

func (m *Kernel) Schedule(delay float64, cb simkernel.Callback) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Schedule", delay, cb)
}

func (mr *KernelMockRecorder) Schedule(delay, cb interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Schedule", reflect.TypeOf((*Kernel)(nil).Schedule), delay, cb)
}

func (m *Kernel) ScheduleNow(cb simkernel.Callback) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "ScheduleNow", cb)
}

func (mr *KernelMockRecorder) ScheduleNow(cb interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ScheduleNow", reflect.TypeOf((*Kernel)(nil).ScheduleNow), cb)
}

func (m *Kernel) StopAt(t float64) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "StopAt", t)
}

func (mr *KernelMockRecorder) StopAt(t interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "StopAt", reflect.TypeOf((*Kernel)(nil).StopAt), t)
}

func (m *Kernel) Run() {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Run")
}

func (mr *KernelMockRecorder) Run() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Run", reflect.TypeOf((*Kernel)(nil).Run))
}

func (m *Kernel) Destroy() {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Destroy")
}

func (mr *KernelMockRecorder) Destroy() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Destroy", reflect.TypeOf((*Kernel)(nil).Destroy))
}
