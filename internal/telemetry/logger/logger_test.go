package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func captureOutput() (*bytes.Buffer, func()) {
	buf := new(bytes.Buffer)

	mu.Lock()
	originalOutput := output
	originalColor := useColor
	output = buf
	useColor = false
	mu.Unlock()
	reconfigure()

	cleanup := func() {
		mu.Lock()
		output = originalOutput
		useColor = originalColor
		mu.Unlock()
		reconfigure()
	}
	return buf, cleanup
}

func TestLevelFiltering(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("WARN")
	Info("should be filtered")
	Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "should be filtered") {
		t.Fatalf("expected INFO to be filtered at WARN level, got: %s", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Fatalf("expected WARN message in output, got: %s", out)
	}
}

func TestJSONFormat(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("DEBUG")
	SetFormat("json")
	Info("cache fill", "channel", "bossdb://col/exp/chan", "resolution", 0)

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("expected valid JSON line, got %q: %v", buf.String(), err)
	}
	if decoded["msg"] != "cache fill" {
		t.Fatalf("unexpected msg field: %v", decoded["msg"])
	}
	if decoded["channel"] != "bossdb://col/exp/chan" {
		t.Fatalf("unexpected channel field: %v", decoded["channel"])
	}

	SetFormat("text")
}

func TestInfoCtxAttachesLogContextFields(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("DEBUG")
	SetFormat("json")

	lc := NewLogContext("req-1").WithChannel("bossdb://col/exp/chan", 0).WithBlock("/cache", "0/x0_y0_z0")
	ctx := WithContext(context.Background(), lc)

	InfoCtx(ctx, "cache lookup")

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("expected valid JSON line: %v", err)
	}
	for _, key := range []string{KeyRequestID, KeyChannel, KeyResolution, KeyCacheRoot, KeyBlockKey} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("expected field %q in output %v", key, decoded)
		}
	}

	SetFormat("text")
}

func TestSetLevelIgnoresInvalidValue(t *testing.T) {
	SetLevel("DEBUG")
	before := Level(currentLevel.Load())
	SetLevel("NOT_A_LEVEL")
	if Level(currentLevel.Load()) != before {
		t.Fatalf("expected invalid SetLevel call to be a no-op")
	}
}
