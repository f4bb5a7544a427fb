// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package efsp

import (
	"errors"
	"io"
	"time"

	"code.hybscloud.com/iox"
)

// writeDeadliner and readDeadliner are satisfied by net.Conn and similar
// transports (serial port wrappers, os.File on most platforms). Adapters
// below use them, when available, to honor the maxTimeMs budget Transmitter/
// Receiver pass on every call; without one, a Send/Receive call may block
// past maxTimeMs, which is safe but defeats bounded per-call work.
type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

// NewStreamSender adapts an io.Writer to Sender. If w also implements
// SetWriteDeadline (as net.Conn does), each Send call bounds the underlying
// Write to maxTimeMs and turns a deadline-exceeded zero-progress Write into
// iox.ErrWouldBlock rather than a fatal error, so a Transmitter driven by a
// real socket or serial port behaves the same as one driven by a hand-rolled
// test fake.
func NewStreamSender(w io.Writer) Sender {
	return SenderFunc(func(data []byte, maxTimeMs uint32) (uint32, error) {
		if dl, ok := w.(writeDeadliner); ok {
			if err := dl.SetWriteDeadline(time.Now().Add(time.Duration(maxTimeMs) * time.Millisecond)); err != nil {
				return 0, err
			}
		}
		n, err := w.Write(data)
		if err != nil && n == 0 && isTimeout(err) {
			return 0, iox.ErrWouldBlock
		}
		return uint32(n), err
	})
}

// NewStreamReceiver adapts an io.Reader to ByteReceiver, with the same
// deadline-to-ErrWouldBlock translation NewStreamSender performs.
func NewStreamReceiver(r io.Reader) ByteReceiver {
	return ByteReceiverFunc(func(dest []byte, maxTimeMs uint32) (uint32, error) {
		if dl, ok := r.(readDeadliner); ok {
			if err := dl.SetReadDeadline(time.Now().Add(time.Duration(maxTimeMs) * time.Millisecond)); err != nil {
				return 0, err
			}
		}
		n, err := r.Read(dest)
		if err != nil && n == 0 && isTimeout(err) {
			return 0, iox.ErrWouldBlock
		}
		if err == io.EOF {
			return uint32(n), err
		}
		return uint32(n), err
	})
}

type timeouter interface {
	Timeout() bool
}

func isTimeout(err error) bool {
	var t timeouter
	return errors.As(err, &t) && t.Timeout()
}
