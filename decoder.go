// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package efsp

import (
	"encoding/binary"
	"io"
)

type decoderState uint8

const (
	decStateParsing decoderState = iota
	decStateFull
	decStateBad
)

// Decoder drives an Unstuffer over an escaped byte stream, parsing the
// CRC32+length header as soon as it is available, enforcing length
// consistency, and verifying the CRC32 once a frame ends. The internal
// unstuffer targets the full working buffer (header region included), the
// same in-place layout Encoder uses on the transmit side.
type Decoder struct {
	buf         []byte
	crc         CRC32
	un          *Unstuffer
	state       decoderState
	declaredLen int // valid once >= 0; -1 means "not yet known"
	termErr     error
}

// NewDecoder binds buf (capacity must be at least HeaderLen+1) and a CRC-32
// callback.
func NewDecoder(buf []byte, crc CRC32) (*Decoder, error) {
	if crc == nil {
		return nil, ErrBadPointer
	}
	if len(buf) < HeaderLen+1 {
		return nil, ErrBadParam
	}
	un, err := NewUnstuffer(buf)
	if err != nil {
		return nil, err
	}
	d := &Decoder{buf: buf, crc: crc, un: un}
	d.declaredLen = -1
	return d, nil
}

// Initialized reports whether the decoder was constructed via NewDecoder.
func (d *Decoder) Initialized() bool { return d != nil && d.crc != nil }

func (d *Decoder) checkInit() error {
	if !d.Initialized() {
		return ErrNoInitLib
	}
	return nil
}

// NewFrame resets the decoder to WAITING_SOF with an unknown declared
// length, ready to parse a new frame.
func (d *Decoder) NewFrame() error {
	if err := d.checkInit(); err != nil {
		return err
	}
	d.un.NewFrame()
	d.state = decStateParsing
	d.declaredLen = -1
	d.termErr = nil
	return nil
}

// IsWaitingSOF reports whether no SOF has been seen yet for the frame in
// progress.
func (d *Decoder) IsWaitingSOF() bool { return d.Initialized() && d.un.IsWaitingSOF() }

// IsFullMsgDecoded reports whether the current frame decoded and verified
// successfully.
func (d *Decoder) IsFullMsgDecoded() bool { return d.state == decStateFull }

// IsFrameBad reports whether the current frame was rejected.
func (d *Decoder) IsFrameBad() bool { return d.state == decStateBad }

// DecodedData returns the decoded payload slice and its length. Valid once
// IsFullMsgDecoded is true; before the header is fully parsed it returns a
// zero-length slice.
func (d *Decoder) DecodedData() ([]byte, int, error) {
	if err := d.checkInit(); err != nil {
		return nil, 0, err
	}
	if d.declaredLen < 0 {
		return nil, 0, nil
	}
	return d.buf[HeaderLen : HeaderLen+d.declaredLen], d.declaredLen, nil
}

// DecodedLen returns the declared payload length once the header has been
// parsed, or 0 if it is not yet known.
func (d *Decoder) DecodedLen() int {
	if d.declaredLen < 0 {
		return 0
	}
	return d.declaredLen
}

// MostEfficientDataLen returns the number of unstuffed bytes still needed to
// complete the frame, or 0 once the frame has ended or broken.
func (d *Decoder) MostEfficientDataLen() int {
	if d.state != decStateParsing {
		return 0
	}
	got := d.un.DecodedLen()
	if got < HeaderLen {
		return HeaderLen - got
	}
	expectedTotal := HeaderLen + d.declaredLen
	remaining := expectedTotal - got
	if remaining < 1 {
		remaining = 1 // still waiting on the EOF marker itself
	}
	return remaining
}

// InsertEncChunk feeds src through the unstuffer one logical byte at a time
// so the header can be parsed, and the declared length validated against
// buffer capacity, as early as possible (spec's ordering requirement: a
// corrupted length field is caught right after the header, before any
// further payload bytes are written).
//
// Once terminal (IsFullMsgDecoded or IsFrameBad), further calls are no-ops
// that return the same status, until NewFrame resets the decoder.
func (d *Decoder) InsertEncChunk(src []byte) (int, error) {
	if err := d.checkInit(); err != nil {
		return 0, err
	}
	if d.state == decStateFull {
		return 0, ErrMessageReceived
	}
	if d.state == decStateBad {
		return 0, d.termErr
	}

	pos := 0
	for pos < len(src) {
		n, err := d.un.InsertChunk(src[pos : pos+1])
		pos += n
		if err != nil {
			switch err {
			case ErrFrameRestart:
				d.declaredLen = -1
				return pos, ErrFrameRestart
			case ErrOutOfMem:
				d.state = decStateBad
				d.termErr = ErrOutOfMem
				return pos, ErrOutOfMem
			case ErrBadFrame:
				d.state = decStateBad
				d.termErr = ErrBadFrame
				return pos, ErrBadFrame
			case io.EOF:
				return pos, d.finish()
			default:
				d.state = decStateBad
				d.termErr = err
				return pos, err
			}
		}

		if d.declaredLen < 0 && d.un.DecodedLen() >= HeaderLen {
			l := int(binary.LittleEndian.Uint32(d.buf[4:8]))
			if l == 0 {
				d.state = decStateBad
				d.termErr = ErrBadFrame
				return pos, ErrBadFrame
			}
			if l > len(d.buf)-HeaderLen {
				d.state = decStateBad
				d.termErr = ErrOutOfMem
				return pos, ErrOutOfMem
			}
			d.declaredLen = l
		}
	}
	return pos, nil
}

// finish validates length-consistency and CRC once the unstuffer reports
// FRAME_ENDED, and sets the sticky terminal state/result.
func (d *Decoder) finish() error {
	expectedTotal := HeaderLen + d.declaredLen
	if d.declaredLen < 0 || d.un.DecodedLen() != expectedTotal {
		d.state = decStateBad
		d.termErr = ErrBadFrame
		return ErrBadFrame
	}

	crc, err := d.crc.Checksum(0xFFFFFFFF, d.buf[4:HeaderLen+d.declaredLen])
	if err != nil {
		d.state = decStateBad
		d.termErr = ErrCRCCallback
		return ErrCRCCallback
	}
	if crc != binary.LittleEndian.Uint32(d.buf[0:4]) {
		d.state = decStateBad
		d.termErr = ErrBadFrame
		return ErrBadFrame
	}
	d.state = decStateFull
	d.termErr = ErrMessageReceived
	return ErrMessageReceived
}
