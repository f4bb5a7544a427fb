// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package efsp

import "io"

// Stuffer and Unstuffer implement the byte-stuffing codec (BSTF/BUNSTF):
// they make SOF/EOF/ESC unambiguous inside a payload by escaping them, and
// undo that escaping on the far side. Both behave like a one-shot io.Reader:
// GetChunk/InsertChunk report completion with io.EOF, the same convention
// the teacher package's stream codec uses internally (internal.go's
// readStream/writeStream also terminate a message with io.EOF/io.ErrUnexpectedEOF).

type stuffPhase uint8

const (
	stuffPhaseSOF stuffPhase = iota
	stuffPhaseData
	stuffPhaseEscSecond
	stuffPhaseEOF
	stuffPhaseDone
)

// Stuffer maps a raw byte sequence b0..bN-1 to SOF, e(b0), e(b1), ..., e(bN-1), EOF
// where e(x) = x if x is not a marker byte, or ESC,(x^0x20) otherwise.
type Stuffer struct {
	raw   []byte
	i     int
	phase stuffPhase
	lit   byte // pending second half of an escape pair
}

// NewStuffer wraps raw for stuffing. raw must be non-empty; the Stuffer
// borrows it and the caller must not mutate it until the Stuffer is done or
// restarted.
func NewStuffer(raw []byte) (*Stuffer, error) {
	if len(raw) == 0 {
		return nil, ErrBadParam
	}
	s := &Stuffer{}
	s.Reset(raw)
	return s, nil
}

// Reset rebinds the stuffer to a (possibly new) raw buffer and restarts
// emission from SOF. raw must be non-empty.
func (s *Stuffer) Reset(raw []byte) error {
	if len(raw) == 0 {
		return ErrBadParam
	}
	s.raw = raw
	s.i = 0
	s.phase = stuffPhaseSOF
	s.lit = 0
	return nil
}

// Restart re-emits the same raw buffer from SOF without changing it.
func (s *Stuffer) Restart() {
	s.i = 0
	s.phase = stuffPhaseSOF
	s.lit = 0
}

// IsWaitingStart reports whether SOF has not yet been emitted.
func (s *Stuffer) IsWaitingStart() bool { return s.phase == stuffPhaseSOF }

// IsFinished reports whether EOF has already been emitted.
func (s *Stuffer) IsFinished() bool { return s.phase == stuffPhaseDone }

// MostEfficientLen returns the largest number of output bytes that can be
// produced right now without splitting an escape pair across calls.
func (s *Stuffer) MostEfficientLen() int {
	switch s.phase {
	case stuffPhaseSOF, stuffPhaseEscSecond, stuffPhaseEOF:
		return 1
	case stuffPhaseDone:
		return 0
	default: // stuffPhaseData
		if s.i >= len(s.raw) {
			return 1 // just EOF
		}
		b := s.raw[s.i]
		if b == sof || b == eof || b == esc {
			return 2 // ESC + escaped literal, cannot be split
		}
		run := 1
		for s.i+run < len(s.raw) {
			nb := s.raw[s.i+run]
			if nb == sof || nb == eof || nb == esc {
				break
			}
			run++
		}
		return run
	}
}

// RemainingLen returns the total number of output bytes GetChunk will still
// produce before EOF, across as many calls as it takes — unlike
// MostEfficientLen, which only reports the next unsplittable chunk.
func (s *Stuffer) RemainingLen() int {
	switch s.phase {
	case stuffPhaseDone:
		return 0
	case stuffPhaseEOF:
		return 1
	case stuffPhaseEscSecond:
		return 1 + remainingStuffedLen(s.raw[s.i:]) + 1
	case stuffPhaseSOF:
		return 1 + remainingStuffedLen(s.raw) + 1
	default: // stuffPhaseData
		return remainingStuffedLen(s.raw[s.i:]) + 1
	}
}

// remainingStuffedLen returns the stuffed length of raw on its own, with no
// SOF/EOF markers: len(raw) plus one extra byte per escaped marker byte.
func remainingStuffedLen(raw []byte) int {
	n := len(raw)
	for _, b := range raw {
		if b == sof || b == eof || b == esc {
			n++
		}
	}
	return n
}

// GetChunk appends encoded bytes into dest, filling it completely while more
// data remains (returns len(dest), nil), or returns fewer bytes and io.EOF
// once EOF has been emitted. Once done, further calls return (0, io.EOF)
// until Restart/Reset.
func (s *Stuffer) GetChunk(dest []byte) (int, error) {
	n := 0
	for n < len(dest) {
		switch s.phase {
		case stuffPhaseSOF:
			dest[n] = sof
			n++
			s.phase = stuffPhaseData
		case stuffPhaseData:
			if s.i >= len(s.raw) {
				s.phase = stuffPhaseEOF
				continue
			}
			b := s.raw[s.i]
			s.i++
			if b == sof || b == eof || b == esc {
				dest[n] = esc
				n++
				s.lit = b ^ 0x20
				s.phase = stuffPhaseEscSecond
			} else {
				dest[n] = b
				n++
			}
		case stuffPhaseEscSecond:
			dest[n] = s.lit
			n++
			s.phase = stuffPhaseData
		case stuffPhaseEOF:
			dest[n] = eof
			n++
			s.phase = stuffPhaseDone
		case stuffPhaseDone:
			return n, io.EOF
		}
	}
	if s.phase == stuffPhaseDone {
		return n, io.EOF
	}
	return n, nil
}

type unstuffPhase uint8

const (
	unstuffWaitingSOF unstuffPhase = iota
	unstuffInsideFrame
	unstuffAfterEsc
	unstuffTerminal
)

// Unstuffer consumes an escaped byte stream and emits unescaped bytes into a
// caller-owned destination buffer, reporting frame boundaries and protocol
// errors as it goes.
type Unstuffer struct {
	dest      []byte
	j         int
	phase     unstuffPhase
	termErr   error // sticky result once phase == unstuffTerminal
	restarted bool  // set for the duration of the InsertChunk call that restarted
}

// NewUnstuffer targets dest for decoded output. dest must be non-empty.
func NewUnstuffer(dest []byte) (*Unstuffer, error) {
	if len(dest) == 0 {
		return nil, ErrBadParam
	}
	u := &Unstuffer{dest: dest}
	u.NewFrame()
	return u, nil
}

// NewFrame resets the unstuffer to WAITING_SOF with an empty decoded length.
// Destination buffer contents are left untouched; callers decide whether to
// clear them.
func (u *Unstuffer) NewFrame() {
	u.j = 0
	u.phase = unstuffWaitingSOF
	u.termErr = nil
	u.restarted = false
}

// Rebind retargets the unstuffer at a new destination buffer and resets it,
// as NewFrame does.
func (u *Unstuffer) Rebind(dest []byte) error {
	if len(dest) == 0 {
		return ErrBadParam
	}
	u.dest = dest
	u.NewFrame()
	return nil
}

// DecodedLen returns the number of bytes written to dest so far.
func (u *Unstuffer) DecodedLen() int { return u.j }

// IsWaitingSOF reports whether no SOF has been seen yet for the current frame.
func (u *Unstuffer) IsWaitingSOF() bool { return u.phase == unstuffWaitingSOF }

// IsFrameEnded reports whether EOF has been accepted for a non-empty frame.
func (u *Unstuffer) IsFrameEnded() bool { return u.phase == unstuffTerminal && u.termErr == io.EOF }

// IsFrameBad reports whether the frame was rejected (stuffing violation or
// out-of-memory on the destination buffer).
func (u *Unstuffer) IsFrameBad() bool {
	return u.phase == unstuffTerminal && u.termErr != io.EOF
}

// MostEfficientLen returns how many more bytes the destination buffer can
// still absorb while a frame is in progress, or 0 when waiting for SOF or
// once the frame has ended/broken.
func (u *Unstuffer) MostEfficientLen() int {
	switch u.phase {
	case unstuffInsideFrame, unstuffAfterEsc:
		return len(u.dest) - u.j
	default:
		return 0
	}
}

// InsertChunk consumes src left to right until either all of it has been
// consumed (returns len(src), nil), or a terminal/transitional condition is
// hit: io.EOF (frame complete), ErrBadFrame, ErrOutOfMem, or ErrFrameRestart.
// In the latter cases the returned count is the number of bytes consumed,
// which is less than len(src) when bytes after the triggering one remain
// unparsed.
func (u *Unstuffer) InsertChunk(src []byte) (int, error) {
	if u.phase == unstuffTerminal {
		return 0, u.termErr
	}
	u.restarted = false

	for idx, b := range src {
		switch u.phase {
		case unstuffWaitingSOF:
			if b == sof {
				u.phase = unstuffInsideFrame
			}
			// else: discard, stay WAITING_SOF

		case unstuffInsideFrame:
			switch b {
			case sof:
				u.j = 0
				u.restarted = true
				return idx + 1, ErrFrameRestart
			case eof:
				if u.j > 0 {
					u.phase = unstuffTerminal
					u.termErr = io.EOF
					return idx + 1, io.EOF
				}
				u.phase = unstuffTerminal
				u.termErr = ErrBadFrame
				return idx + 1, ErrBadFrame
			case esc:
				u.phase = unstuffAfterEsc
			default:
				if u.j >= len(u.dest) {
					u.phase = unstuffTerminal
					u.termErr = ErrOutOfMem
					return idx + 1, ErrOutOfMem
				}
				u.dest[u.j] = b
				u.j++
			}

		case unstuffAfterEsc:
			switch b {
			case sof:
				u.j = 0
				u.phase = unstuffInsideFrame
				u.restarted = true
				return idx + 1, ErrFrameRestart
			case eof, esc:
				u.phase = unstuffTerminal
				u.termErr = ErrBadFrame
				return idx + 1, ErrBadFrame
			default:
				if u.j >= len(u.dest) {
					u.phase = unstuffTerminal
					u.termErr = ErrOutOfMem
					return idx + 1, ErrOutOfMem
				}
				u.dest[u.j] = b ^ 0x20
				u.j++
				u.phase = unstuffInsideFrame
			}
		}
	}
	return len(src), nil
}
