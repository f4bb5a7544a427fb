// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package efsp

// Link deadline profiles.
//
// Single source of truth — link kind → (Dtot, Dchk) in milliseconds. These
// are starting points, not requirements: NewTransmitter/NewReceiver accept
// any totalMs/perChunkMs pair satisfying 1 <= perChunkMs <= totalMs. Slower links
// need a longer Dtot to let a full frame cross; Dchk should stay small enough
// that a cooperative main loop servicing several links stays responsive.
type LinkKind uint8

const (
	// LinkUART9600 is a 9600bps UART: ~1ms/byte, generous overall budget.
	LinkUART9600 LinkKind = iota
	// LinkUART115200 is a 115200bps UART.
	LinkUART115200
	// LinkUSBCDC is a USB CDC-ACM virtual serial port.
	LinkUSBCDC
	// LinkLocalPipe is an in-process or loopback byte pipe (tests, IPC).
	LinkLocalPipe
)

// Deadlines returns the (totalMs, perChunkMs) pair conventionally used for
// the given link kind.
func (k LinkKind) Deadlines() (totalMs, perChunkMs uint32) {
	switch k {
	case LinkUART9600:
		return 2000, 200
	case LinkUART115200:
		return 500, 50
	case LinkUSBCDC:
		return 1000, 100
	case LinkLocalPipe:
		return 200, 20
	default:
		return 1000, 100
	}
}
