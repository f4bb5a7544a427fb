// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package efsp_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/lorenzoRosin/embeddedFSP"
)

func stuffAll(t *testing.T, raw []byte, chunkLen int) []byte {
	t.Helper()
	s, err := efsp.NewStuffer(raw)
	if err != nil {
		t.Fatalf("NewStuffer: %v", err)
	}
	var out bytes.Buffer
	buf := make([]byte, chunkLen)
	for {
		n, err := s.GetChunk(buf)
		out.Write(buf[:n])
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("GetChunk: %v", err)
		}
	}
	if !s.IsFinished() {
		t.Fatalf("stuffer not finished after EOF")
	}
	return out.Bytes()
}

func TestStufferRoundTripAndExpansionBound(t *testing.T) {
	cases := [][]byte{
		{0x00},
		{0x01, 0x02},
		{0xA1, 0xA2, 0xA3},
		bytes.Repeat([]byte{0x55}, 64),
		append([]byte{0xA1}, bytes.Repeat([]byte{0x00}, 30)...),
	}
	for _, raw := range cases {
		for _, chunkLen := range []int{1, 2, 3, 7, 64} {
			out := stuffAll(t, raw, chunkLen)
			n := len(raw)
			if len(out) < n+2 || len(out) > 2*n+2 {
				t.Fatalf("raw=%v chunk=%d: stuffed len %d outside [%d,%d]", raw, chunkLen, len(out), n+2, 2*n+2)
			}
			if out[0] != 0xA1 || out[len(out)-1] != 0xA2 {
				t.Fatalf("raw=%v: missing SOF/EOF framing: %v", raw, out)
			}
		}
	}
}

func TestStufferChunkingIndependence(t *testing.T) {
	raw := []byte{0xA1, 0x10, 0xA2, 0x20, 0xA3, 0x30, 0x01}
	ref := stuffAll(t, raw, 1024)
	for _, chunkLen := range []int{1, 2, 3, 4, 5} {
		got := stuffAll(t, raw, chunkLen)
		if !bytes.Equal(ref, got) {
			t.Fatalf("chunkLen=%d produced different output: %x vs %x", chunkLen, got, ref)
		}
	}
}

func TestStufferDoneStaysEnded(t *testing.T) {
	s, err := efsp.NewStuffer([]byte{0x01})
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 16)
	n, err := s.GetChunk(buf)
	if err != io.EOF {
		t.Fatalf("expected io.EOF, got n=%d err=%v", n, err)
	}
	n, err = s.GetChunk(buf)
	if n != 0 || err != io.EOF {
		t.Fatalf("expected (0, io.EOF) once done, got (%d, %v)", n, err)
	}
	s.Restart()
	n, err = s.GetChunk(buf)
	if n == 0 || err != io.EOF {
		t.Fatalf("restart did not reproduce the frame: n=%d err=%v", n, err)
	}
}

func TestStufferRejectsEmptyRaw(t *testing.T) {
	if _, err := efsp.NewStuffer(nil); !errors.Is(err, efsp.ErrBadParam) {
		t.Fatalf("expected ErrBadParam, got %v", err)
	}
}

func TestStufferRemainingLenMatchesActualOutput(t *testing.T) {
	raw := []byte{0xA1, 0x00, 0xA2, 0xA3, 0x01, 0x02, 0x03}
	s, err := efsp.NewStuffer(raw)
	if err != nil {
		t.Fatal(err)
	}
	var total int
	buf := make([]byte, 1)
	for {
		before := s.RemainingLen()
		n, err := s.GetChunk(buf)
		total += n
		if before != 0 {
			// RemainingLen must shrink by exactly what was just produced.
			after := s.RemainingLen()
			if before-n != after {
				t.Fatalf("RemainingLen inconsistent: before=%d produced=%d after=%d", before, n, after)
			}
		}
		if err == io.EOF {
			break
		}
	}
	if s.RemainingLen() != 0 {
		t.Fatalf("RemainingLen should be 0 once done, got %d", s.RemainingLen())
	}
}

func unstuffAll(t *testing.T, encoded []byte, destCap int, chunkLen int) ([]byte, error) {
	t.Helper()
	dest := make([]byte, destCap)
	u, err := efsp.NewUnstuffer(dest)
	if err != nil {
		t.Fatalf("NewUnstuffer: %v", err)
	}
	pos := 0
	for pos < len(encoded) {
		end := pos + chunkLen
		if end > len(encoded) {
			end = len(encoded)
		}
		n, err := u.InsertChunk(encoded[pos:end])
		pos += n
		if err == io.EOF {
			return dest[:u.DecodedLen()], nil
		}
		if err != nil {
			return nil, err
		}
	}
	return nil, errors.New("stream exhausted before EOF")
}

func TestUnstufferRoundTrip(t *testing.T) {
	cases := [][]byte{
		{0x00},
		{0x01, 0x02},
		{0xA1, 0xA2, 0xA3},
		bytes.Repeat([]byte{0x55}, 64),
	}
	for _, raw := range cases {
		for _, chunkLen := range []int{1, 2, 5, 1024} {
			enc := stuffAll(t, raw, 1024)
			got, err := unstuffAll(t, enc, len(raw), chunkLen)
			if err != nil {
				t.Fatalf("raw=%v chunk=%d: %v", raw, chunkLen, err)
			}
			if !bytes.Equal(got, raw) {
				t.Fatalf("raw=%v chunk=%d: got %v", raw, chunkLen, got)
			}
		}
	}
}

func TestUnstufferMidFrameRestart(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x03}
	enc := stuffAll(t, raw, 1024)
	// A truncated frame cut off by a second SOF partway through, followed by
	// the whole frame: the restart discards the truncated bytes.
	withRestart := append([]byte{}, enc[:3]...)
	withRestart = append(withRestart, enc...) // enc[0] is the inner SOF

	dest := make([]byte, 16)
	u, err := efsp.NewUnstuffer(dest)
	if err != nil {
		t.Fatal(err)
	}
	n, err := u.InsertChunk(withRestart)
	if !errors.Is(err, efsp.ErrFrameRestart) {
		t.Fatalf("expected ErrFrameRestart, got n=%d err=%v", n, err)
	}
	rest := withRestart[n:]
	n2, err := u.InsertChunk(rest)
	if err != io.EOF {
		t.Fatalf("expected io.EOF after restart, got n=%d err=%v", n2, err)
	}
	if !bytes.Equal(dest[:u.DecodedLen()], raw) {
		t.Fatalf("decoded %v after restart, want %v", dest[:u.DecodedLen()], raw)
	}
}

func TestUnstufferBadEscape(t *testing.T) {
	// SOF, ESC, EOF (ESC followed by EOF is invalid), EOF
	frame := []byte{0xA1, 0xA3, 0xA2}
	dest := make([]byte, 16)
	u, err := efsp.NewUnstuffer(dest)
	if err != nil {
		t.Fatal(err)
	}
	_, err = u.InsertChunk(frame)
	if !errors.Is(err, efsp.ErrBadFrame) {
		t.Fatalf("expected ErrBadFrame, got %v", err)
	}
	if !u.IsFrameBad() {
		t.Fatalf("IsFrameBad should be true")
	}
	// Sticky until NewFrame.
	_, err = u.InsertChunk([]byte{0x00})
	if !errors.Is(err, efsp.ErrBadFrame) {
		t.Fatalf("expected sticky ErrBadFrame, got %v", err)
	}
	u.NewFrame()
	if u.IsFrameBad() || !u.IsWaitingSOF() {
		t.Fatalf("NewFrame did not reset state")
	}
}

func TestUnstufferOutOfMem(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x03}
	enc := stuffAll(t, raw, 1024)
	dest := make([]byte, 2) // too small
	u, err := efsp.NewUnstuffer(dest)
	if err != nil {
		t.Fatal(err)
	}
	_, err = u.InsertChunk(enc)
	if !errors.Is(err, efsp.ErrOutOfMem) {
		t.Fatalf("expected ErrOutOfMem, got %v", err)
	}
}

func TestUnstufferEmptyFrameIsBad(t *testing.T) {
	dest := make([]byte, 16)
	u, err := efsp.NewUnstuffer(dest)
	if err != nil {
		t.Fatal(err)
	}
	_, err = u.InsertChunk([]byte{0xA1, 0xA2}) // SOF immediately followed by EOF
	if !errors.Is(err, efsp.ErrBadFrame) {
		t.Fatalf("expected ErrBadFrame for empty frame, got %v", err)
	}
}
