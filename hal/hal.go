// Package hal declares the contract between the NC1020 core and its host.
// Everything in this package is an interface; spec.md §1 places the actual
// on-disk format and physical I/O of ROM/NOR/BBS images, and the UI/event
// loop that drives the core, outside the core's scope. A host implements
// Provider (see the halfs package for a file-backed reference
// implementation) and passes it to machine.Initialize.
//
// Grounded on the teacher's hardware/memory/cpubus.Memory interface: a
// small, read/write-shaped interface that the rest of the hardware package
// programs against without knowing the concrete backing store.
package hal

// PageSize is the size in bytes of the NOR/ROM scratch buffer (Page()).
const PageSize = 0x8000

// BBSSize is the size in bytes of the BBS scratch buffers (BBS() and
// ShadowBBS()).
const BBSSize = 0x2000

// NorPages is the number of addressable NOR flash pages.
const NorPages = 0x20

// RomPagesPerVolume is the number of addressable ROM pages per volume.
const RomPagesPerVolume = 0x80

// BbsPagesPerVolume is the number of addressable BBS pages per volume.
const BbsPagesPerVolume = 0x10

// Volumes is the number of ROM/BBS volumes the hardware exposes.
const Volumes = 3

// Provider is implemented by the host. It supplies paged access to the
// ROM/NOR/BBS byte images and persists the opaque snapshot blob.
//
// Page()/BBS()/ShadowBBS() return the scratch buffers the core reads and
// writes through; per spec.md §5, a call to LoadNorPage/LoadRomPage leaves
// Page() aliasing the content of that page until the next Load* call, and a
// call to LoadBbsPage leaves BBS() aliasing that page's content. ShadowBBS()
// is populated as a side effect of LoadBbsPage and otherwise left alone.
type Provider interface {
	// LoadNorPage fills Page() with the contents of NOR flash page
	// 0 <= page < NorPages.
	LoadNorPage(page int) bool

	// SaveNorPage persists the current contents of Page() to NOR flash page
	// 0 <= page < NorPages. Implementations may defer the write with a
	// dirty-bit cache as long as the page reads back as written before the
	// next unrelated page is loaded into Page().
	SaveNorPage(page int) bool

	// WipeNorFlash sets every byte of the NOR image to 0xFF.
	WipeNorFlash() bool

	// LoadRomPage fills Page() with ROM page 0 <= page < RomPagesPerVolume
	// from volume 0 <= volume < Volumes.
	LoadRomPage(volume, page int) bool

	// LoadBbsPage fills BBS() with BBS page 0 <= page < BbsPagesPerVolume
	// from volume 0 <= volume < Volumes, and ensures ShadowBBS() holds that
	// volume's shadow BBS content.
	LoadBbsPage(volume, page int) bool

	// SaveState persists the opaque snapshot blob.
	SaveState(data []byte) bool

	// LoadState fills data with the previously persisted snapshot blob. It
	// must not validate the contents; the core does that.
	LoadState(data []byte) bool

	// Page is the 0x8000-byte NOR/ROM scratch buffer.
	Page() []byte

	// BBS is the 0x2000-byte BBS scratch buffer.
	BBS() []byte

	// ShadowBBS is the fixed 0x2000-byte shadow BBS buffer always mapped
	// into memory map slot 7.
	ShadowBBS() []byte
}
