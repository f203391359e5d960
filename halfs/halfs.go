// Package halfs is a reference hal.Provider backed by plain files on disk:
// a NOR flash image, one ROM image and one BBS image per volume, and a
// single snapshot state file. It exists so the demo host in cmd/nc1020run
// has something real to pass to machine.Initialize; production hosts are
// free to implement hal.Provider some other way (memory-mapped images,
// a packed resource archive, and so on).
//
// Grounded on cartridgeloader.Loader's file-opening conventions, and on the
// dirty-bit page cache spec.md §5 allows for LoadNorPage/LoadRomPage: a
// page already resident in the in-memory cache is served without touching
// disk again.
package halfs

import (
	"io"
	"os"
	"path/filepath"

	"github.com/Project-Muteki/nc1020/curated"
	"github.com/Project-Muteki/nc1020/hal"
)

const (
	norFilename   = "nor.img"
	stateFilename = "state.bin"
)

func volumeFile(kind string, volume int) string {
	return kind + string(rune('0'+volume)) + ".img"
}

type bbsKey struct {
	volume, page int
}

// Provider is a file-backed hal.Provider. The zero value is not usable;
// construct one with Open.
type Provider struct {
	dir string

	norFile   *os.File
	romFiles  [hal.Volumes]*os.File
	bbsFiles  [hal.Volumes]*os.File
	statePath string

	norCache map[int][]byte
	romCache map[bbsKey][]byte
	bbsCache map[bbsKey][]byte

	page      [hal.PageSize]byte
	bbsBuf    [hal.BBSSize]byte
	shadowBuf [hal.BBSSize]byte

	shadowVolume int
	haveShadow   bool
}

// Open opens dir as a NC1020 image directory. nor.img is created (filled
// with 0xFF, matching a wiped NOR chip) if it does not already exist;
// rom<N>.img and bbs<N>.img for each of hal.Volumes volumes must already be
// present, since the core has no way to synthesize ROM or BBS content.
func Open(dir string) (*Provider, error) {
	p := &Provider{
		dir:       dir,
		statePath: filepath.Join(dir, stateFilename),
		norCache:  map[int][]byte{},
		romCache:  map[bbsKey][]byte{},
		bbsCache:  map[bbsKey][]byte{},
	}

	norPath := filepath.Join(dir, norFilename)
	nor, err := os.OpenFile(norPath, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, curated.Errorf("halfs: %v", err)
	}
	p.norFile = nor

	size := int64(hal.NorPages) * int64(hal.PageSize)
	fi, err := nor.Stat()
	if err != nil {
		return nil, curated.Errorf("halfs: %v", err)
	}
	if fi.Size() < size {
		if err := p.wipeFile(nor, size); err != nil {
			return nil, err
		}
	}

	for v := 0; v < hal.Volumes; v++ {
		rp := filepath.Join(dir, volumeFile("rom", v))
		rf, err := os.Open(rp)
		if err != nil {
			return nil, curated.Errorf("halfs: %v", err)
		}
		p.romFiles[v] = rf

		bp := filepath.Join(dir, volumeFile("bbs", v))
		bf, err := os.Open(bp)
		if err != nil {
			return nil, curated.Errorf("halfs: %v", err)
		}
		p.bbsFiles[v] = bf
	}

	return p, nil
}

// Close releases the open image file handles.
func (p *Provider) Close() error {
	var first error
	files := append([]*os.File{p.norFile}, p.romFiles[0], p.romFiles[1], p.romFiles[2], p.bbsFiles[0], p.bbsFiles[1], p.bbsFiles[2])
	for _, f := range files {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (p *Provider) wipeFile(f *os.File, size int64) error {
	buf := make([]byte, hal.PageSize)
	for i := range buf {
		buf[i] = 0xFF
	}
	for off := int64(0); off < size; off += int64(len(buf)) {
		if _, err := f.WriteAt(buf, off); err != nil {
			return curated.Errorf("halfs: %v", err)
		}
	}
	return nil
}

// LoadNorPage implements hal.Provider.
func (p *Provider) LoadNorPage(page int) bool {
	if page < 0 || page >= hal.NorPages {
		return false
	}
	if cached, ok := p.norCache[page]; ok {
		copy(p.page[:], cached)
		return true
	}
	off := int64(page) * int64(hal.PageSize)
	if _, err := p.norFile.ReadAt(p.page[:], off); err != nil && err != io.EOF {
		return false
	}
	cached := make([]byte, hal.PageSize)
	copy(cached, p.page[:])
	p.norCache[page] = cached
	return true
}

// SaveNorPage implements hal.Provider. It writes through to disk
// immediately and refreshes the in-memory cache entry for page.
func (p *Provider) SaveNorPage(page int) bool {
	if page < 0 || page >= hal.NorPages {
		return false
	}
	off := int64(page) * int64(hal.PageSize)
	if _, err := p.norFile.WriteAt(p.page[:], off); err != nil {
		return false
	}
	cached := make([]byte, hal.PageSize)
	copy(cached, p.page[:])
	p.norCache[page] = cached
	return true
}

// WipeNorFlash implements hal.Provider.
func (p *Provider) WipeNorFlash() bool {
	size := int64(hal.NorPages) * int64(hal.PageSize)
	if err := p.wipeFile(p.norFile, size); err != nil {
		return false
	}
	p.norCache = map[int][]byte{}
	return true
}

// LoadRomPage implements hal.Provider.
func (p *Provider) LoadRomPage(volume, page int) bool {
	if volume < 0 || volume >= hal.Volumes || page < 0 || page >= hal.RomPagesPerVolume {
		return false
	}
	key := bbsKey{volume, page}
	if cached, ok := p.romCache[key]; ok {
		copy(p.page[:], cached)
		return true
	}
	off := int64(page) * int64(hal.PageSize)
	if _, err := p.romFiles[volume].ReadAt(p.page[:], off); err != nil && err != io.EOF {
		return false
	}
	cached := make([]byte, hal.PageSize)
	copy(cached, p.page[:])
	p.romCache[key] = cached
	return true
}

// LoadBbsPage implements hal.Provider. ShadowBBS is refreshed from the
// volume's fixed shadow page (page 0) only when the volume changes; within
// the same volume it is left alone, per hal.Provider's contract.
func (p *Provider) LoadBbsPage(volume, page int) bool {
	if volume < 0 || volume >= hal.Volumes || page < 0 || page >= hal.BbsPagesPerVolume {
		return false
	}
	key := bbsKey{volume, page}
	if cached, ok := p.bbsCache[key]; ok {
		copy(p.bbsBuf[:], cached)
	} else {
		off := int64(page) * int64(hal.BBSSize)
		if _, err := p.bbsFiles[volume].ReadAt(p.bbsBuf[:], off); err != nil && err != io.EOF {
			return false
		}
		cached := make([]byte, hal.BBSSize)
		copy(cached, p.bbsBuf[:])
		p.bbsCache[key] = cached
	}

	if !p.haveShadow || p.shadowVolume != volume {
		shadowKey := bbsKey{volume, 0}
		if cached, ok := p.bbsCache[shadowKey]; ok {
			copy(p.shadowBuf[:], cached)
		} else {
			if _, err := p.bbsFiles[volume].ReadAt(p.shadowBuf[:], 0); err != nil && err != io.EOF {
				return false
			}
			cached := make([]byte, hal.BBSSize)
			copy(cached, p.shadowBuf[:])
			p.bbsCache[shadowKey] = cached
		}
		p.shadowVolume = volume
		p.haveShadow = true
	}

	return true
}

// SaveState implements hal.Provider.
func (p *Provider) SaveState(data []byte) bool {
	return os.WriteFile(p.statePath, data, 0o644) == nil
}

// LoadState implements hal.Provider.
func (p *Provider) LoadState(data []byte) bool {
	saved, err := os.ReadFile(p.statePath)
	if err != nil || len(saved) != len(data) {
		return false
	}
	copy(data, saved)
	return true
}

// Page implements hal.Provider.
func (p *Provider) Page() []byte { return p.page[:] }

// BBS implements hal.Provider.
func (p *Provider) BBS() []byte { return p.bbsBuf[:] }

// ShadowBBS implements hal.Provider.
func (p *Provider) ShadowBBS() []byte { return p.shadowBuf[:] }
