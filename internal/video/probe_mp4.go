package video

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"
)

// MP4Prober reads duration and dimensions from the moov box of an ISO base
// media file. Sample data is never read.
type MP4Prober struct{}

// Probe implements Prober.
func (MP4Prober) Probe(ctx context.Context, path string) (meta *Metadata, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	if err := checkTopLevelBoxes(f); err != nil {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}

	// mp4ff panics on some malformed box trees.
	defer func() {
		if r := recover(); r != nil {
			meta, err = nil, fmt.Errorf("decode mp4: %v", r)
		}
	}()

	mp4File, err := mp4.DecodeFile(f, mp4.WithDecodeMode(mp4.DecModeLazyMdat))
	if err != nil {
		return nil, fmt.Errorf("decode mp4: %w", err)
	}

	moov := mp4File.Moov
	if moov == nil && mp4File.IsFragmented() && mp4File.Init != nil {
		moov = mp4File.Init.Moov
	}
	if moov == nil {
		return nil, errors.New("no moov box")
	}

	for _, trak := range moov.Traks {
		m, ok := metadataFromTrack(trak)
		if !ok {
			continue
		}
		if m.Duration <= 0 && moov.Mvhd != nil && moov.Mvhd.Timescale > 0 {
			m.Duration = float64(moov.Mvhd.Duration) / float64(moov.Mvhd.Timescale)
		}
		return m, nil
	}
	return nil, errors.New("no video track found")
}

func metadataFromTrack(trak *mp4.TrakBox) (*Metadata, bool) {
	if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
		return nil, false
	}

	meta := &Metadata{Source: "mp4ff"}
	if mdhd := trak.Mdia.Mdhd; mdhd != nil && mdhd.Timescale > 0 {
		meta.Duration = float64(mdhd.Duration) / float64(mdhd.Timescale)
	}

	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return meta, true
	}
	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		if vse, ok := child.(*mp4.VisualSampleEntryBox); ok {
			meta.Width = int(vse.Width)
			meta.Height = int(vse.Height)
			meta.Codec = vse.Type()
			break
		}
	}
	return meta, true
}

// checkTopLevelBoxes walks the top-level box headers and rejects a file
// whose boxes run past its end, before mp4ff allocates for them.
func checkTopLevelBoxes(f *os.File) error {
	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}
	fileSize := fi.Size()

	var hdr [16]byte
	for pos := int64(0); pos < fileSize; {
		if _, err := f.ReadAt(hdr[:8], pos); err != nil {
			return fmt.Errorf("read box header at %d: %w", pos, err)
		}
		size := int64(binary.BigEndian.Uint32(hdr[:4]))
		headerLen := int64(8)
		switch size {
		case 0:
			// Box extends to the end of the file.
			return nil
		case 1:
			if _, err := f.ReadAt(hdr[8:16], pos+8); err != nil {
				return fmt.Errorf("read large box size at %d: %w", pos, err)
			}
			size = int64(binary.BigEndian.Uint64(hdr[8:16]))
			headerLen = 16
		}
		if size < headerLen || size > fileSize-pos {
			return fmt.Errorf("corrupt %q box at %d: size %d exceeds file", hdr[4:8], pos, size)
		}
		pos += size
	}
	return nil
}
