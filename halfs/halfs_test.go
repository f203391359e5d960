package halfs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Project-Muteki/nc1020/hal"
	"github.com/Project-Muteki/nc1020/halfs"
)

func seedVolumeImages(t *testing.T, dir string) {
	t.Helper()
	romSize := hal.RomPagesPerVolume * hal.PageSize
	bbsSize := hal.BbsPagesPerVolume * hal.BBSSize
	for v := 0; v < hal.Volumes; v++ {
		rom := make([]byte, romSize)
		rom[0] = byte(0x10 + v)
		if err := os.WriteFile(filepath.Join(dir, "rom"+string(rune('0'+v))+".img"), rom, 0o644); err != nil {
			t.Fatalf("seed rom%d: %v", v, err)
		}
		bbs := make([]byte, bbsSize)
		bbs[0] = byte(0x20 + v)
		if err := os.WriteFile(filepath.Join(dir, "bbs"+string(rune('0'+v))+".img"), bbs, 0o644); err != nil {
			t.Fatalf("seed bbs%d: %v", v, err)
		}
	}
}

func TestOpenCreatesWipedNorImage(t *testing.T) {
	dir := t.TempDir()
	seedVolumeImages(t, dir)

	p, err := halfs.Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	if !p.LoadNorPage(3) {
		t.Fatalf("LoadNorPage should succeed on a freshly created image")
	}
	for i, b := range p.Page() {
		if b != 0xFF {
			t.Fatalf("Page()[%d] = %#02x, want 0xFF on a freshly wiped NOR image", i, b)
		}
	}
}

func TestNorPageRoundTripsThroughSave(t *testing.T) {
	dir := t.TempDir()
	seedVolumeImages(t, dir)

	p, err := halfs.Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	p.LoadNorPage(0)
	p.Page()[10] = 0x42
	if !p.SaveNorPage(0) {
		t.Fatalf("SaveNorPage should succeed")
	}

	p.LoadNorPage(1)
	p.LoadNorPage(0)
	if p.Page()[10] != 0x42 {
		t.Fatalf("Page()[10] = %#02x, want 0x42 after reloading a saved page", p.Page()[10])
	}
}

func TestLoadRomPageReadsPerVolume(t *testing.T) {
	dir := t.TempDir()
	seedVolumeImages(t, dir)

	p, err := halfs.Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	if !p.LoadRomPage(1, 0) {
		t.Fatalf("LoadRomPage should succeed")
	}
	if p.Page()[0] != 0x11 {
		t.Fatalf("Page()[0] = %#02x, want 0x11 from volume 1's seeded ROM", p.Page()[0])
	}
}

func TestLoadBbsPageRefreshesShadowOnVolumeChange(t *testing.T) {
	dir := t.TempDir()
	seedVolumeImages(t, dir)

	p, err := halfs.Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	if !p.LoadBbsPage(2, 0) {
		t.Fatalf("LoadBbsPage should succeed")
	}
	if p.ShadowBBS()[0] != 0x22 {
		t.Fatalf("ShadowBBS()[0] = %#02x, want 0x22 from volume 2's seeded BBS", p.ShadowBBS()[0])
	}
}

func TestStateRoundTrip(t *testing.T) {
	dir := t.TempDir()
	seedVolumeImages(t, dir)

	p, err := halfs.Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	want := []byte{1, 2, 3, 4, 5}
	if !p.SaveState(want) {
		t.Fatalf("SaveState should succeed")
	}

	got := make([]byte, len(want))
	if !p.LoadState(got) {
		t.Fatalf("LoadState should succeed after a save")
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("LoadState mismatch at %d: got %#02x, want %#02x", i, got[i], want[i])
		}
	}
}

func TestOpenFailsWithoutVolumeImages(t *testing.T) {
	dir := t.TempDir()
	if _, err := halfs.Open(dir); err == nil {
		t.Fatalf("Open should fail when rom/bbs images are missing")
	}
}
