// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package efsp

import (
	"encoding/binary"
	"io"
)

// Encoder wraps a payload with the fixed CRC32+length header and drives a
// Stuffer over the result. The working buffer layout while a message is
// live is: [0:4) = CRC32 of [4:HeaderLen+L), [4:8) = L little-endian,
// [8:8+L) = caller's payload — the caller writes the payload in place via
// the slice returned by PayloadSlot, so there is no copy between "caller
// writes payload" and "stuffer reads header+payload".
type Encoder struct {
	buf     []byte
	crc     CRC32
	length  int // L, 0 when no message armed
	stuffer *Stuffer
}

// NewEncoder binds buf (capacity must be at least HeaderLen+1) and a CRC-32
// callback. No message is armed until NewMessage is called.
func NewEncoder(buf []byte, crc CRC32) (*Encoder, error) {
	if crc == nil {
		return nil, ErrBadPointer
	}
	if len(buf) < HeaderLen+1 {
		return nil, ErrBadParam
	}
	return &Encoder{buf: buf, crc: crc}, nil
}

// Initialized reports whether the encoder was constructed via NewEncoder.
func (e *Encoder) Initialized() bool { return e != nil && e.crc != nil }

func (e *Encoder) checkInit() error {
	if !e.Initialized() {
		return ErrNoInitLib
	}
	return nil
}

// PayloadSlot returns the subslice of the working buffer the caller must
// write the payload into, plus the maximum payload length it can hold.
func (e *Encoder) PayloadSlot() ([]byte, int, error) {
	if err := e.checkInit(); err != nil {
		return nil, 0, err
	}
	return e.buf[HeaderLen:], len(e.buf) - HeaderLen, nil
}

// NewMessage arms a message of length l, which must already be written into
// the slice returned by PayloadSlot. It computes and stores the CRC32 over
// the length field and payload, then (re)initializes the internal stuffer.
func (e *Encoder) NewMessage(l int) error {
	if err := e.checkInit(); err != nil {
		return err
	}
	maxLen := len(e.buf) - HeaderLen
	if l < 1 || l > maxLen {
		return ErrBadParam
	}
	binary.LittleEndian.PutUint32(e.buf[4:8], uint32(l))

	crc, err := e.crc.Checksum(0xFFFFFFFF, e.buf[4:HeaderLen+l])
	if err != nil {
		e.length = 0
		return ErrCRCCallback
	}
	binary.LittleEndian.PutUint32(e.buf[0:4], crc)
	e.length = l

	if e.stuffer == nil {
		s, serr := NewStuffer(e.buf[:HeaderLen+l])
		if serr != nil {
			return serr
		}
		e.stuffer = s
	} else if rerr := e.stuffer.Reset(e.buf[:HeaderLen+l]); rerr != nil {
		return rerr
	}
	return nil
}

// RestartMessage re-initializes the stuffer on the already-computed
// header+payload without recomputing the CRC. Fails with ErrNoInitMessage
// if no message has been armed yet.
func (e *Encoder) RestartMessage() error {
	if err := e.checkInit(); err != nil {
		return err
	}
	if e.length == 0 || e.stuffer == nil {
		return ErrNoInitMessage
	}
	e.stuffer.Restart()
	return nil
}

// RemainingEncodedLen reports how many more stuffed bytes GetChunk will
// produce before the message ends. Grounded on the C reference's
// eFSP_MSGE_GetRemByteToGet, which the distilled spec omits but the rest of
// the stack (and any caller sizing a transmit buffer ahead of time) can use.
func (e *Encoder) RemainingEncodedLen() (int, error) {
	if err := e.checkInit(); err != nil {
		return 0, err
	}
	if e.length == 0 || e.stuffer == nil {
		return 0, ErrNoInitMessage
	}
	return e.stuffer.RemainingLen(), nil
}

// GetChunk delegates to the internal stuffer: it fills dest completely while
// more encoded data remains (nil error), or returns fewer bytes plus
// ErrMessageEnded once the frame's EOF has been emitted.
func (e *Encoder) GetChunk(dest []byte) (int, error) {
	if err := e.checkInit(); err != nil {
		return 0, err
	}
	if e.length == 0 || e.stuffer == nil {
		return 0, ErrNoInitMessage
	}
	n, err := e.stuffer.GetChunk(dest)
	if err == io.EOF {
		return n, ErrMessageEnded
	}
	return n, err
}
