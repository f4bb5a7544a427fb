// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package efsp_test

import (
	"errors"
	"testing"

	"github.com/lorenzoRosin/embeddedFSP"
)

// TestCRC32FuncAdaptsPlainFunction checks CRC32Func satisfies CRC32 by
// forwarding seed/data through to the wrapped closure unchanged.
func TestCRC32FuncAdaptsPlainFunction(t *testing.T) {
	var gotSeed uint32
	var gotData []byte
	f := efsp.CRC32Func(func(seed uint32, data []byte) (uint32, error) {
		gotSeed, gotData = seed, data
		return seed ^ 0xdeadbeef, nil
	})

	var crc efsp.CRC32 = f
	out, err := crc.Checksum(0x1234, []byte("payload"))
	if err != nil {
		t.Fatal(err)
	}
	if out != 0x1234^0xdeadbeef {
		t.Fatalf("Checksum = %#x, want %#x", out, 0x1234^0xdeadbeef)
	}
	if gotSeed != 0x1234 || string(gotData) != "payload" {
		t.Fatalf("closure saw (%#x, %q)", gotSeed, gotData)
	}
}

func TestSenderFuncAdaptsPlainFunction(t *testing.T) {
	wantErr := errors.New("boom")
	f := efsp.SenderFunc(func(data []byte, maxTimeMs uint32) (uint32, error) {
		if maxTimeMs != 7 {
			t.Fatalf("maxTimeMs = %d, want 7", maxTimeMs)
		}
		return uint32(len(data)), wantErr
	})

	var s efsp.Sender = f
	n, err := s.Send([]byte{1, 2, 3}, 7)
	if n != 3 || !errors.Is(err, wantErr) {
		t.Fatalf("Send = (%d, %v), want (3, %v)", n, err, wantErr)
	}
}

func TestByteReceiverFuncAdaptsPlainFunction(t *testing.T) {
	f := efsp.ByteReceiverFunc(func(dest []byte, maxTimeMs uint32) (uint32, error) {
		return uint32(copy(dest, []byte{9, 8, 7})), nil
	})

	var r efsp.ByteReceiver = f
	dest := make([]byte, 3)
	n, err := r.Receive(dest, 0)
	if err != nil || n != 3 || dest[0] != 9 || dest[1] != 8 || dest[2] != 7 {
		t.Fatalf("Receive = (%v, %d, %v), want (nil, 3, [9 8 7])", err, n, dest)
	}
}
