// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package efsp

import "errors"

// Error kinds shared by every layer of the stack (stuffer, unstuffer, encoder,
// decoder, transmitter, receiver). A given layer only ever returns the subset
// that applies to it; see each type's doc comment for which ones it uses.
//
// MESSAGEENDED / MESSAGERECEIVED / MESSAGESENDED / FRAMERESTART / MESSAGETIMEOUT
// are terminal or transitional statuses, not failures: callers compare against
// them with errors.Is the same way the teacher package treats ErrWouldBlock and
// ErrMore as control-flow signals rather than fatal conditions.
var (
	// ErrBadPointer reports a nil buffer or callback where one was required.
	ErrBadPointer = errors.New("efsp: bad pointer")

	// ErrBadParam reports an out-of-range parameter (zero length, deadlines
	// swapped, capacity too small for the header).
	ErrBadParam = errors.New("efsp: bad parameter")

	// ErrNoInitLib reports a context used before Init.
	ErrNoInitLib = errors.New("efsp: context not initialized")

	// ErrNoInitMessage reports Send/Restart called before a message was armed.
	ErrNoInitMessage = errors.New("efsp: no message armed")

	// ErrCorruptCtx reports an internal invariant violation: a tampered struct,
	// a callback that returned more bytes than it was asked to move, or a timer
	// that reported more time remaining than it was given. Fatal: the context
	// must be reinitialized.
	ErrCorruptCtx = errors.New("efsp: corrupt context")

	// ErrOutOfMem reports a declared payload length larger than the working
	// buffer can hold. Non-fatal: start a new frame with a bigger buffer.
	ErrOutOfMem = errors.New("efsp: declared length exceeds buffer capacity")

	// ErrBadFrame reports a stuffing-rule violation, a CRC mismatch, a length
	// mismatch, or an empty-payload header. Non-fatal: start a new frame.
	ErrBadFrame = errors.New("efsp: malformed frame")

	// ErrFrameRestart reports a mid-frame SOF: the decoder discarded whatever
	// it had buffered and resynchronized on the new SOF. Non-fatal.
	ErrFrameRestart = errors.New("efsp: frame restarted on inner SOF")

	// ErrMessageEnded reports that the encoder has emitted its EOF byte and has
	// nothing further to contribute until RestartMessage/NewMessage.
	ErrMessageEnded = errors.New("efsp: message fully encoded")

	// ErrMessageReceived reports a fully decoded, CRC-verified message.
	ErrMessageReceived = errors.New("efsp: message fully received")

	// ErrMessageSent reports a frame fully handed off to the transmit callback.
	ErrMessageSent = errors.New("efsp: message fully sent")

	// ErrMessageTimeout reports that the overall deadline elapsed before the
	// frame completed. Sticky: further calls on the same armed
	// message/frame keep returning it until a new one is armed.
	ErrMessageTimeout = errors.New("efsp: overall deadline exceeded")

	// ErrCRCCallback reports that the user-supplied CRC-32 callback failed.
	ErrCRCCallback = errors.New("efsp: crc callback error")

	// ErrTxCallback reports that the user-supplied send callback failed.
	ErrTxCallback = errors.New("efsp: send callback error")

	// ErrRxCallback reports that the user-supplied receive callback failed.
	ErrRxCallback = errors.New("efsp: receive callback error")

	// ErrTimerCallback reports that the user-supplied timer callback failed.
	ErrTimerCallback = errors.New("efsp: timer callback error")
)
