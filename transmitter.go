// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package efsp

import (
	"errors"

	"code.hybscloud.com/iox"
)

// Transmitter pulls encoded bytes from an Encoder into a small transmit
// scratch buffer and hands them to a user Sender, under an overall deadline
// (Dtot) and a per-call (session) deadline (Dchk). SendChunk never does more
// than one Dchk's worth of work before returning.
type Transmitter struct {
	enc     *Encoder
	scratch []byte
	f, r    int
	encDone bool

	sender Sender
	timer  Timer
	dtot   uint32
	dchk   uint32

	armed bool
}

// NewTransmitter binds enc, a transmit scratch buffer (capacity >= 1), a
// Sender, and a Timer. totalMs is the overall per-frame deadline (Dtot),
// perChunkMs the per-call budget (Dchk); both must be >= 1 and
// perChunkMs <= totalMs.
func NewTransmitter(enc *Encoder, scratch []byte, sender Sender, timer Timer, totalMs, perChunkMs uint32) (*Transmitter, error) {
	if enc == nil || sender == nil || timer == nil {
		return nil, ErrBadPointer
	}
	if len(scratch) < 1 {
		return nil, ErrBadParam
	}
	if totalMs < 1 || perChunkMs < 1 || perChunkMs > totalMs {
		return nil, ErrBadParam
	}
	return &Transmitter{
		enc:     enc,
		scratch: scratch,
		sender:  sender,
		timer:   timer,
		dtot:    totalMs,
		dchk:    perChunkMs,
	}, nil
}

// Initialized reports whether the transmitter was constructed via NewTransmitter.
func (t *Transmitter) Initialized() bool { return t != nil && t.enc != nil && t.enc.Initialized() }

func (t *Transmitter) checkInit() error {
	if !t.Initialized() {
		return ErrNoInitLib
	}
	return nil
}

// NewMessage arms l bytes (already written via Encoder.PayloadSlot) for
// transmission and (re)starts the overall deadline.
func (t *Transmitter) NewMessage(l int) error {
	if err := t.checkInit(); err != nil {
		return err
	}
	if err := t.enc.NewMessage(l); err != nil {
		return err
	}
	t.r, t.f = 0, 0
	t.encDone = false
	if err := t.timer.Start(t.dtot); err != nil {
		return ErrTimerCallback
	}
	t.armed = true
	return nil
}

// RestartMessage re-sends the currently armed message from the beginning and
// restarts the overall deadline, without recomputing its CRC.
func (t *Transmitter) RestartMessage() error {
	if err := t.checkInit(); err != nil {
		return err
	}
	if !t.armed {
		return ErrNoInitMessage
	}
	if err := t.enc.RestartMessage(); err != nil {
		return err
	}
	t.r, t.f = 0, 0
	t.encDone = false
	if err := t.timer.Start(t.dtot); err != nil {
		return ErrTimerCallback
	}
	return nil
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

// SendChunk advances transmission of the armed message by at most perChunkMs
// of wall-clock, never past the overall totalMs budget measured from
// NewMessage/RestartMessage. It returns nil when per-chunk budget elapsed
// with more work remaining, ErrMessageSent on completion, ErrMessageTimeout
// once the overall deadline elapsed, or one of ErrTxCallback,
// ErrTimerCallback, ErrCorruptCtx, ErrNoInitLib, ErrNoInitMessage.
func (t *Transmitter) SendChunk() error {
	if err := t.checkInit(); err != nil {
		return err
	}
	if !t.armed {
		return ErrNoInitMessage
	}

	remainTot, err := t.timer.Remaining()
	if err != nil {
		return ErrTimerCallback
	}
	if remainTot == 0 {
		return ErrMessageTimeout
	}
	session := minU32(t.dchk, remainTot)

	for {
		if t.r >= t.f {
			t.r, t.f = 0, 0
			n, eerr := t.enc.GetChunk(t.scratch)
			t.f = n
			if eerr != nil && !errors.Is(eerr, ErrMessageEnded) {
				return eerr
			}
			t.encDone = errors.Is(eerr, ErrMessageEnded)
			if t.encDone && t.f == 0 {
				return ErrMessageSent
			}
		}

		sent, serr := t.sender.Send(t.scratch[t.r:t.f], session)
		if serr != nil && !errors.Is(serr, iox.ErrWouldBlock) {
			return ErrTxCallback
		}
		if sent > uint32(t.f-t.r) {
			return ErrCorruptCtx
		}
		t.r += int(sent)

		if t.encDone && t.r == t.f {
			// All scratch bytes shipped and the encoder has nothing more:
			// finalize before the timeout accounting below, so a message
			// that completes right as the deadline elapses is reported as
			// sent, not timed out.
			return ErrMessageSent
		}

		remainNow, terr := t.timer.Remaining()
		if terr != nil {
			return ErrTimerCallback
		}
		if remainNow > remainTot {
			return ErrCorruptCtx
		}
		if remainNow == 0 {
			return ErrMessageTimeout
		}

		elapsed := remainTot - remainNow
		if elapsed >= t.dchk {
			return nil
		}
		session = t.dchk - elapsed
		if remainNow < session {
			session = remainNow
		}
	}
}
