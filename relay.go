// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package efsp

// Relay repeats whole frames from a Receiver onto a Transmitter, one message
// at a time. It is a two-phase resumable state machine in the same shape as
// the teacher package's Forwarder: phase 0 drains a frame from the source
// link into the shared working buffer, phase 1 re-arms and drains it out the
// destination link, and RelayOnce does at most one chunk's worth of work per
// call so it composes with any cooperative main loop driving rx/tx directly.
//
// rx and tx must not share their scratch buffers, but MAY share the same
// CRC32 implementation. Relay owns no payload buffer of its own: it copies
// the bytes rx decoded into its working buffer straight into tx's
// PayloadSlot, so relaying a message costs one payload copy.
type Relay struct {
	rx *Receiver
	tx *Transmitter

	sending bool
}

// NewRelay binds a Receiver and a Transmitter. The caller must have already
// armed rx with NewFrame/NewFrameAndClean before the first RelayOnce call.
func NewRelay(rx *Receiver, tx *Transmitter) (*Relay, error) {
	if rx == nil || tx == nil {
		return nil, ErrBadPointer
	}
	return &Relay{rx: rx, tx: tx}, nil
}

// RelayOnce advances the in-flight relay by at most one chunk's worth of
// work. It returns nil while a phase is still in progress, ErrMessageSent
// once a full message has been received and retransmitted (rx is
// automatically re-armed with NewFrame for the next message before
// returning), or propagates any error from the underlying Receiver/
// Transmitter. ErrFrameRestart and ErrBadFrame from the receive phase
// re-arm rx via NewFrameAndClean before being returned, so the caller can
// simply keep calling RelayOnce to resynchronize.
func (rl *Relay) RelayOnce() error {
	if rl == nil || rl.rx == nil || rl.tx == nil {
		return ErrNoInitLib
	}

	if !rl.sending {
		err := rl.rx.ReceiveChunk()
		switch err {
		case nil:
			return nil
		case ErrMessageReceived:
			payload, l, derr := rl.rx.dec.DecodedData()
			if derr != nil {
				return derr
			}
			slot, _, serr := rl.tx.enc.PayloadSlot()
			if serr != nil {
				return serr
			}
			if l > len(slot) {
				return ErrBadParam
			}
			copy(slot, payload)
			if merr := rl.tx.NewMessage(l); merr != nil {
				return merr
			}
			rl.sending = true
			return nil
		case ErrFrameRestart, ErrBadFrame:
			if rerr := rl.rx.NewFrameAndClean(); rerr != nil {
				return rerr
			}
			return err
		default:
			return err
		}
	}

	err := rl.tx.SendChunk()
	if err == ErrMessageSent {
		rl.sending = false
		if rerr := rl.rx.NewFrame(); rerr != nil {
			return rerr
		}
		return ErrMessageSent
	}
	return err
}
