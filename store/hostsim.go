package store

import (
	"encoding/binary"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/dragginzgame/icydb-go/icyerr"
)

// HostSim stands in for the canister host's stable-memory regions: a
// named byte blob per region that survives a simulated process
// restart. Production stable memory is a flat address space the host
// guarantees durability for; afero's in-memory filesystem gives tests
// the same "written bytes come back after the process object is
// discarded and rebuilt" property without needing real persistence.
type HostSim struct {
	fs afero.Fs
}

// NewHostSim creates a simulated host backed by a fresh in-memory
// filesystem: an empty stable-memory image, as at first canister install.
func NewHostSim() *HostSim {
	return &HostSim{fs: afero.NewMemMapFs()}
}

// Restart returns a new HostSim sharing the same underlying filesystem,
// modeling a canister upgrade/restart: stable memory persists, every
// heap data structure built on top of it does not. Callers
// rebuild their in-memory stores from LoadRegion after calling Restart.
func (h *HostSim) Restart() *HostSim {
	return &HostSim{fs: h.fs}
}

// SaveRegion durably writes data under name, replacing any prior
// contents.
func (h *HostSim) SaveRegion(name string, data []byte) error {
	f, err := h.fs.Create(regionPath(name))
	if err != nil {
		return icyerr.Wrap(err, icyerr.Internal, icyerr.OriginStore, "hostsim: create region "+name)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return icyerr.Wrap(err, icyerr.Internal, icyerr.OriginStore, "hostsim: write region "+name)
	}
	return nil
}

// LoadRegion reads back a region saved by SaveRegion, reporting false if
// the region has never been written (the canister's equivalent of an
// untouched stable-memory range).
func (h *HostSim) LoadRegion(name string) ([]byte, bool, error) {
	f, err := h.fs.Open(regionPath(name))
	if err != nil {
		return nil, false, nil
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, false, icyerr.Wrap(err, icyerr.Internal, icyerr.OriginStore, "hostsim: read region "+name)
	}
	return data, true, nil
}

func regionPath(name string) string { return "/regions/" + name }

// ExportBytes flattens every region the host currently holds into one
// self-contained blob, letting a caller persist an entire simulated
// stable-memory image to a single real file between process runs.
// ImportBytes reverses it into a fresh HostSim.
func (h *HostSim) ExportBytes() ([]byte, error) {
	if _, err := h.fs.Stat("/regions"); err != nil {
		return EncodeSnapshot(nil, nil), nil
	}

	var names []string
	err := afero.Walk(h.fs, "/regions", func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() {
			return nil
		}
		names = append(names, strings.TrimPrefix(path, "/regions/"))
		return nil
	})
	if err != nil {
		return nil, icyerr.Wrap(err, icyerr.Internal, icyerr.OriginStore, "hostsim: walk regions")
	}
	sort.Strings(names)

	keys := make([][]byte, len(names))
	vals := make([][]byte, len(names))
	for i, name := range names {
		data, ok, err := h.LoadRegion(name)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		keys[i] = []byte(name)
		vals[i] = data
	}
	return EncodeSnapshot(keys, vals), nil
}

// ImportBytes restores a blob produced by ExportBytes into this host,
// replacing any regions already present under the same names.
func (h *HostSim) ImportBytes(data []byte) error {
	names, vals, err := DecodeSnapshot(data)
	if err != nil {
		return err
	}
	for i, name := range names {
		if err := h.SaveRegion(string(name), vals[i]); err != nil {
			return err
		}
	}
	return nil
}

// EncodeSnapshot packs a set of byte-slice pairs (as produced by
// Ordered.Snapshot) into one region blob: count(4) + (len(4)‖bytes)*
// for keys, then the same for values, interleaved per entry.
func EncodeSnapshot(keys, vals [][]byte) []byte {
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, uint32(len(keys)))
	for i := range keys {
		out = appendLenPrefixed(out, keys[i])
		out = appendLenPrefixed(out, vals[i])
	}
	return out
}

// DecodeSnapshot reverses EncodeSnapshot.
func DecodeSnapshot(b []byte) (keys, vals [][]byte, err error) {
	if len(b) < 4 {
		return nil, nil, icyerr.Corrupt(icyerr.OriginStore, "truncated snapshot header")
	}
	count := binary.BigEndian.Uint32(b[:4])
	off := 4
	for i := uint32(0); i < count; i++ {
		var k, v []byte
		k, off, err = readLenPrefixed(b, off)
		if err != nil {
			return nil, nil, err
		}
		v, off, err = readLenPrefixed(b, off)
		if err != nil {
			return nil, nil, err
		}
		keys = append(keys, k)
		vals = append(vals, v)
	}
	return keys, vals, nil
}

func appendLenPrefixed(out, b []byte) []byte {
	lenBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBuf, uint32(len(b)))
	out = append(out, lenBuf...)
	return append(out, b...)
}

func readLenPrefixed(b []byte, off int) ([]byte, int, error) {
	if off+4 > len(b) {
		return nil, 0, icyerr.Corrupt(icyerr.OriginStore, "truncated snapshot entry length")
	}
	l := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if off+l > len(b) {
		return nil, 0, icyerr.Corrupt(icyerr.OriginStore, "truncated snapshot entry bytes")
	}
	return append([]byte(nil), b[off:off+l]...), off + l, nil
}
