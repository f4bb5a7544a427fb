// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package efsp_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/lorenzoRosin/embeddedFSP"
	"github.com/lorenzoRosin/embeddedFSP/internal/refcrc"
)

// TestRelayForwardsMessageEndToEnd drives a Relay across a fed-in encoded
// frame (as if received on one link) and checks the re-encoded bytes on the
// other side decode back to the same payload, one chunk of work per
// RelayOnce call, the same way a cooperative main loop would drive it.
func TestRelayForwardsMessageEndToEnd(t *testing.T) {
	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	inWire := encodeFrame(t, refcrc.IEEE{}, payload, 64)

	rxDec, err := efsp.NewDecoder(make([]byte, 64), refcrc.IEEE{})
	if err != nil {
		t.Fatal(err)
	}
	rx, err := efsp.NewReceiver(rxDec, make([]byte, 8), &scriptedByteReceiver{src: inWire, driverLen: 4}, &fakeTimer{}, 1000, 100)
	if err != nil {
		t.Fatal(err)
	}
	if err := rx.NewFrame(); err != nil {
		t.Fatal(err)
	}

	txEnc, err := efsp.NewEncoder(make([]byte, 64), refcrc.IEEE{})
	if err != nil {
		t.Fatal(err)
	}
	sender := &bufSender{}
	tx, err := efsp.NewTransmitter(txEnc, make([]byte, 8), sender, &fakeTimer{}, 1000, 100)
	if err != nil {
		t.Fatal(err)
	}

	relay, err := efsp.NewRelay(rx, tx)
	if err != nil {
		t.Fatal(err)
	}

	var last error
	for i := 0; i < 1000 && !errors.Is(last, efsp.ErrMessageSent); i++ {
		last = relay.RelayOnce()
		if last != nil && !errors.Is(last, efsp.ErrMessageSent) {
			t.Fatalf("RelayOnce: %v", last)
		}
	}
	if !errors.Is(last, efsp.ErrMessageSent) {
		t.Fatalf("relay never completed")
	}

	outDec, err := efsp.NewDecoder(make([]byte, 64), refcrc.IEEE{})
	if err != nil {
		t.Fatal(err)
	}
	if err := outDec.NewFrame(); err != nil {
		t.Fatal(err)
	}
	_, derr := outDec.InsertEncChunk(sender.out.Bytes())
	if !errors.Is(derr, efsp.ErrMessageReceived) {
		t.Fatalf("relayed bytes did not decode: %v", derr)
	}
	data, l, _ := outDec.DecodedData()
	if l != len(payload) || !bytes.Equal(data, payload) {
		t.Fatalf("relayed payload = %v (len %d), want %v", data, l, payload)
	}
}

func TestNewRelayRejectsNilArgs(t *testing.T) {
	if _, err := efsp.NewRelay(nil, nil); !errors.Is(err, efsp.ErrBadPointer) {
		t.Fatalf("expected ErrBadPointer, got %v", err)
	}
}
