package utils

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func TestClamp(t *testing.T) {
	test.That(t, Clamp(5, 0, 3), test.ShouldEqual, 3)
	test.That(t, Clamp(-1, 0, 3), test.ShouldEqual, 0)
	test.That(t, Clamp(0.5, 0., 1.), test.ShouldEqual, 0.5)
}

func TestUnitToUint8(t *testing.T) {
	test.That(t, UnitToUint8(0), test.ShouldEqual, uint8(0))
	test.That(t, UnitToUint8(1), test.ShouldEqual, uint8(255))
	test.That(t, UnitToUint8(1.7), test.ShouldEqual, uint8(255))
	test.That(t, UnitToUint8(-0.2), test.ShouldEqual, uint8(0))
	test.That(t, UnitToUint8(0.5), test.ShouldEqual, uint8(128))
}

func TestResetDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images")
	test.That(t, EnsureDir(dir), test.ShouldBeNil)
	stale := filepath.Join(dir, "frame_000.png")
	test.That(t, os.WriteFile(stale, []byte("x"), 0o600), test.ShouldBeNil)

	test.That(t, ResetDir(dir), test.ShouldBeNil)
	entries, err := os.ReadDir(dir)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, entries, test.ShouldBeEmpty)
}
