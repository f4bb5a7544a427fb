// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package efsp is an embedded framing protocol stack: it packages
// application payloads into self-delimited frames for transmission over an
// unreliable byte-stream transport (UART, USB-CDC, a virtual COM port, ...)
// and recovers them on the far side.
//
// Semantics and design:
//   - No dynamic allocation in the hot path: every context is bound to
//     caller-supplied buffers at construction time and reused across many
//     frames via NewMessage/NewFrame. There is no destructor; buffers simply
//     outlive the context that was given them.
//   - Single-threaded, cooperative: every call on a given context must come
//     from the same execution context. No internal locking is performed.
//   - Strict bounded per-call work: Transmitter.SendChunk and
//     Receiver.ReceiveChunk each do at most one per-chunk deadline's worth of
//     work before returning control to the caller; neither spins nor blocks
//     past the deadline it was given.
//   - Layered: Stuffer/Unstuffer do byte-escaping only; Encoder/Decoder add a
//     length+CRC header and drive the (un)stuffer; Transmitter/Receiver drive
//     Encoder/Decoder against user I/O and timer callbacks under two
//     deadlines (overall and per-chunk).
//
// Wire format (bit-exact):
//
//	frame    := SOF , stuffed(header || payload) , EOF
//	header   := crc32_le(4 bytes) || payload_len_le(4 bytes)
//	crc32    := CRC-32 over (payload_len_le || payload), seed 0xFFFFFFFF
//	stuffed(x) := concat over bytes b of x:
//	               b if b not in {SOF, EOF, ESC}
//	               ESC, (b XOR 0x20) otherwise
//
// SOF = 0xA1, EOF = 0xA2, ESC = 0xA3. A valid frame has payload_len >= 1.
// Any mid-frame SOF restarts the current frame; buffered bytes from the
// aborted frame are discarded. An ESC followed by EOF or ESC is a malformed
// frame; an ESC followed by SOF restarts the frame like any other mid-frame
// SOF; an ESC followed by any other byte x decodes to x XOR 0x20.
package efsp

// Wire marker bytes. Fixed by the protocol; not configurable.
const (
	sof byte = 0xA1
	eof byte = 0xA2
	esc byte = 0xA3
)

// HeaderLen is the size, in bytes, of the CRC32+length header that precedes
// every payload on the wire: 4 bytes CRC32 little-endian, then 4 bytes
// payload length little-endian.
const HeaderLen = 8
