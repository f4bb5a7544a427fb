// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package efsp

import "time"

// WallClockTimer implements Timer over the real wall clock. It is not safe
// for concurrent use, matching every other type in this package.
type WallClockTimer struct {
	deadline time.Time
	armed    bool
}

// NewWallClockTimer returns an unarmed WallClockTimer; Start must be called
// before Remaining is meaningful.
func NewWallClockTimer() *WallClockTimer { return &WallClockTimer{} }

// Start arms the timer to expire timeoutMs from now.
func (w *WallClockTimer) Start(timeoutMs uint32) error {
	w.deadline = time.Now().Add(time.Duration(timeoutMs) * time.Millisecond)
	w.armed = true
	return nil
}

// Remaining returns the milliseconds left until the deadline armed by Start,
// floored at 0. Calling it before Start returns 0.
func (w *WallClockTimer) Remaining() (uint32, error) {
	if !w.armed {
		return 0, nil
	}
	d := time.Until(w.deadline)
	if d <= 0 {
		return 0, nil
	}
	ms := d.Milliseconds()
	if ms > int64(^uint32(0)) {
		ms = int64(^uint32(0))
	}
	return uint32(ms), nil
}
