// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package efsp

// This file replaces the C reference's (void*, fn_ptr) callback pairs with
// plain Go interfaces — one per capability (compute_crc, send_bytes,
// receive_bytes, start_timer/read_timer) — plus func-type adapters so a bare
// closure can satisfy them, the same http.HandlerFunc-style adapter the
// teacher package leans on for options (see options.go).

// CRC32 computes a running CRC-32 over data, continuing from seed. Encoder
// and Decoder both call it with seed = 0xFFFFFFFF over the header length
// field and the payload, per the wire format in doc.go. Implementations
// must use the same polynomial and reflection as the peer; this package
// treats it as a black box (see ErrCRCCallback).
type CRC32 interface {
	Checksum(seed uint32, data []byte) (uint32, error)
}

// CRC32Func adapts a plain function to CRC32.
type CRC32Func func(seed uint32, data []byte) (uint32, error)

func (f CRC32Func) Checksum(seed uint32, data []byte) (uint32, error) { return f(seed, data) }

// Sender moves bytes onto the wire. It must not move more than len(data)
// bytes and should not block past maxTimeMs; returning iox.ErrWouldBlock
// (instead of blocking) is not a failure — any bytes already moved before
// blocking are still reported via sent — see Transmitter.SendChunk.
type Sender interface {
	Send(data []byte, maxTimeMs uint32) (sent uint32, err error)
}

// SenderFunc adapts a plain function to Sender.
type SenderFunc func(data []byte, maxTimeMs uint32) (uint32, error)

func (f SenderFunc) Send(data []byte, maxTimeMs uint32) (uint32, error) { return f(data, maxTimeMs) }

// ByteReceiver moves bytes off the wire into dest. It must not report more
// than len(dest) bytes received and should not block past maxTimeMs;
// returning iox.ErrWouldBlock is treated the same way as Sender above: bytes
// already received before blocking are still reported. Named distinctly from
// the Receiver state machine (receiver.go), which is built on top of it.
type ByteReceiver interface {
	Receive(dest []byte, maxTimeMs uint32) (received uint32, err error)
}

// ByteReceiverFunc adapts a plain function to ByteReceiver.
type ByteReceiverFunc func(dest []byte, maxTimeMs uint32) (uint32, error)

func (f ByteReceiverFunc) Receive(dest []byte, maxTimeMs uint32) (uint32, error) {
	return f(dest, maxTimeMs)
}

// Timer implements a one-shot down-counter: Start arms it from timeoutMs,
// Remaining reports the monotonically non-increasing time left until the
// next Start. Transmitter and Receiver use it to enforce the overall and
// per-chunk deadlines (spec §4.5/§4.6); they never sleep or poll it in a
// loop within a single call.
type Timer interface {
	Start(timeoutMs uint32) error
	Remaining() (ms uint32, err error)
}
