// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package efsp

import (
	"errors"

	"code.hybscloud.com/iox"
)

// maxSOFRestartSpins bounds the number of internal "still waiting for SOF,
// restart the overall deadline and keep trying" iterations a single
// ReceiveChunk call may perform under the wait-for-SOF policy. The reference
// implementation restarts the deadline indefinitely in this state, which can
// starve bounded per-call work if a transport never delivers a SOF; this cap
// trades that for "the caller gets control back and can call ReceiveChunk
// again", which preserves the same indefinite patience across calls without
// an unbounded loop inside one.
const maxSOFRestartSpins = 64

// Receiver drains a ByteReceiver into a Decoder, under an overall deadline
// (Dtot) and a per-call (session) deadline (Dchk), optionally treating "still
// waiting for SOF" as exempt from the overall deadline.
type Receiver struct {
	dec     *Decoder
	scratch []byte
	f, r    int

	receiver ByteReceiver
	timer    Timer
	dtot     uint32
	dchk     uint32

	waitForSOF bool
	armed      bool
}

// RxOption configures optional Receiver behavior.
type RxOption func(*Receiver)

// WithWaitForSOF makes the overall deadline exempt noise received before the
// first SOF of a frame: each ReceiveChunk call still waiting for SOF restarts
// the overall deadline instead of letting it run out.
func WithWaitForSOF() RxOption {
	return func(r *Receiver) { r.waitForSOF = true }
}

// NewReceiver binds dec, a receive scratch buffer (capacity >= 1), a
// ByteReceiver, and a Timer. totalMs is the overall per-frame deadline
// (Dtot), perChunkMs the per-call budget (Dchk); both must be >= 1 and
// perChunkMs <= totalMs.
func NewReceiver(dec *Decoder, scratch []byte, receiver ByteReceiver, timer Timer, totalMs, perChunkMs uint32, opts ...RxOption) (*Receiver, error) {
	if dec == nil || receiver == nil || timer == nil {
		return nil, ErrBadPointer
	}
	if len(scratch) < 1 {
		return nil, ErrBadParam
	}
	if totalMs < 1 || perChunkMs < 1 || perChunkMs > totalMs {
		return nil, ErrBadParam
	}
	rv := &Receiver{
		dec:      dec,
		scratch:  scratch,
		receiver: receiver,
		timer:    timer,
		dtot:     totalMs,
		dchk:     perChunkMs,
	}
	for _, o := range opts {
		o(rv)
	}
	return rv, nil
}

// Initialized reports whether the receiver was constructed via NewReceiver.
func (rv *Receiver) Initialized() bool { return rv != nil && rv.dec != nil && rv.dec.Initialized() }

func (rv *Receiver) checkInit() error {
	if !rv.Initialized() {
		return ErrNoInitLib
	}
	return nil
}

// NewFrame resets the decoder for a new frame, keeping any already-received
// bytes still sitting in the scratch buffer so they get reparsed, and
// (re)starts the overall deadline.
func (rv *Receiver) NewFrame() error {
	if err := rv.checkInit(); err != nil {
		return err
	}
	if err := rv.dec.NewFrame(); err != nil {
		return err
	}
	if err := rv.timer.Start(rv.dtot); err != nil {
		return ErrTimerCallback
	}
	rv.armed = true
	return nil
}

// NewFrameAndClean is like NewFrame but also discards any unparsed bytes
// still sitting in the scratch buffer. Grounded on the C reference's
// eFSP_MSGRX_NewMsgNClean, which the distilled spec omits but which a caller
// resynchronizing after a protocol violation needs.
func (rv *Receiver) NewFrameAndClean() error {
	if err := rv.checkInit(); err != nil {
		return err
	}
	if err := rv.dec.NewFrame(); err != nil {
		return err
	}
	rv.r, rv.f = 0, 0
	if err := rv.timer.Start(rv.dtot); err != nil {
		return ErrTimerCallback
	}
	rv.armed = true
	return nil
}

// ReceiveChunk advances reception by at most perChunkMs of wall-clock, never
// past the overall totalMs budget measured from NewFrame/NewFrameAndClean
// (unless WithWaitForSOF is set and no SOF has arrived yet). It returns nil
// when per-chunk budget elapsed with more work remaining, ErrMessageReceived
// once a full frame decoded and its CRC verified, ErrBadFrame on a rejected
// frame, ErrFrameRestart when a mid-frame SOF aborted the frame in progress
// (returned at once under WithWaitForSOF; otherwise parsing continues within
// the same call while per-chunk budget remains, and ErrFrameRestart is
// returned only when the budget runs out right after it), ErrMessageTimeout
// once the overall deadline elapsed, or one of ErrRxCallback,
// ErrTimerCallback, ErrCorruptCtx, ErrNoInitLib, ErrNoInitMessage. When the
// per-chunk budget runs out right after the decoder reported ErrOutOfMem or
// ErrCRCCallback, that error is returned as is.
func (rv *Receiver) ReceiveChunk() error {
	if err := rv.checkInit(); err != nil {
		return err
	}
	if !rv.armed {
		return ErrNoInitMessage
	}

	baseline, err := rv.timer.Remaining()
	if err != nil {
		return ErrTimerCallback
	}

	var session uint32
	if rv.waitForSOF && rv.dec.IsWaitingSOF() {
		if err := rv.timer.Start(rv.dtot); err != nil {
			return ErrTimerCallback
		}
		baseline = rv.dtot
		session = rv.dchk
	} else {
		if baseline == 0 {
			return ErrMessageTimeout
		}
		session = minU32(rv.dchk, baseline)
	}

	spins := 0
	var spent uint32 // time used in this call before the latest deadline restart
	for {
		need := rv.dec.MostEfficientDataLen()
		if need == 0 {
			if rv.dec.IsFullMsgDecoded() {
				return ErrMessageReceived
			}
			return ErrBadFrame
		}
		if need > len(rv.scratch) {
			need = len(rv.scratch)
		}

		if rv.r >= rv.f {
			rv.r, rv.f = 0, 0
			n, rerr := rv.receiver.Receive(rv.scratch[:need], session)
			if rerr != nil && !errors.Is(rerr, iox.ErrWouldBlock) {
				return ErrRxCallback
			}
			if n > uint32(need) {
				return ErrCorruptCtx
			}
			rv.f = int(n)
		}

		var result error
		if rv.f > rv.r {
			used, ierr := rv.dec.InsertEncChunk(rv.scratch[rv.r:rv.f])
			rv.r += used
			result = ierr
		}

		remainNow, terr := rv.timer.Remaining()
		if terr != nil {
			return ErrTimerCallback
		}
		if remainNow > baseline {
			return ErrCorruptCtx
		}

		if rv.waitForSOF && errors.Is(result, ErrFrameRestart) {
			if err := rv.timer.Start(rv.dtot); err != nil {
				return ErrTimerCallback
			}
			return ErrFrameRestart
		}
		if rv.waitForSOF && rv.dec.IsWaitingSOF() && result == nil {
			spins++
			spent += baseline - remainNow
			if spins > maxSOFRestartSpins || spent >= rv.dchk {
				return nil
			}
			if err := rv.timer.Start(rv.dtot); err != nil {
				return ErrTimerCallback
			}
			baseline = rv.dtot
			session = rv.dchk - spent
			continue
		}

		if remainNow == 0 {
			return ErrMessageTimeout
		}
		elapsed := spent + baseline - remainNow
		if elapsed >= rv.dchk {
			return result
		}
		session = rv.dchk - elapsed
		if remainNow < session {
			session = remainNow
		}
	}
}
