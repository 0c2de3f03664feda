package raster

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"relief/internal/lib"
)

// Minimal GeoTIFF codec for elevation rasters: single-band, uncompressed,
// striped, IEEE float samples, georeferenced via ModelPixelScale and
// ModelTiepoint, no-data via the GDAL_NODATA ASCII tag. This is the subset
// the point-cloud engine emits and the compositor needs; anything else is
// rejected rather than guessed at.

const (
	tagImageWidth      = 256
	tagImageLength     = 257
	tagBitsPerSample   = 258
	tagCompression     = 259
	tagPhotometric     = 262
	tagStripOffsets    = 273
	tagSamplesPerPixel = 277
	tagRowsPerStrip    = 278
	tagStripByteCounts = 279
	tagPlanarConfig    = 284
	tagSampleFormat    = 339
	tagModelPixelScale = 33550
	tagModelTiepoint   = 33922
	tagGDALNoData      = 42113
)

const (
	typeASCII  = 2
	typeShort  = 3
	typeLong   = 4
	typeDouble = 12
)

var typeSizes = map[uint16]int{
	typeASCII:  1,
	typeShort:  2,
	typeLong:   4,
	typeDouble: 8,
}

// ReadGeoTIFF loads a raster from path
func ReadGeoTIFF(path string) (*Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, lib.ErrFileSystem("read", path, err)
	}
	g, err := decodeGeoTIFF(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// WriteGeoTIFF writes a raster to path as an uncompressed float32 GeoTIFF
func WriteGeoTIFF(path string, g *Grid) error {
	data := encodeGeoTIFF(g)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return lib.ErrFileSystem("write", path, err)
	}
	return nil
}

type ifdEntry struct {
	typ   uint16
	count uint32
	value []byte // inline value field or external value block
}

func decodeGeoTIFF(data []byte) (*Grid, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("not a TIFF file: truncated header")
	}
	var order binary.ByteOrder
	switch string(data[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("not a TIFF file: bad byte order mark")
	}
	if order.Uint16(data[2:4]) != 42 {
		return nil, fmt.Errorf("not a TIFF file: bad magic")
	}

	entries, err := readIFD(data, order, order.Uint32(data[4:8]))
	if err != nil {
		return nil, err
	}

	width := int(uintValue(entries, order, tagImageWidth, 0))
	height := int(uintValue(entries, order, tagImageLength, 0))
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("missing image dimensions")
	}
	if v := uintValue(entries, order, tagCompression, 1); v != 1 {
		return nil, fmt.Errorf("unsupported compression %d", v)
	}
	if v := uintValue(entries, order, tagSamplesPerPixel, 1); v != 1 {
		return nil, fmt.Errorf("unsupported band count %d", v)
	}
	bits := uintValue(entries, order, tagBitsPerSample, 0)
	format := uintValue(entries, order, tagSampleFormat, 1)
	if format != 3 || (bits != 32 && bits != 64) {
		return nil, fmt.Errorf("unsupported sample type (bits=%d format=%d)", bits, format)
	}

	offsets := uintValues(entries, order, tagStripOffsets)
	counts := uintValues(entries, order, tagStripByteCounts)
	if len(offsets) == 0 || len(offsets) != len(counts) {
		return nil, fmt.Errorf("malformed strip layout")
	}

	samples := make([]float64, 0, width*height)
	for i, off := range offsets {
		end := off + counts[i]
		if end > uint64(len(data)) {
			return nil, fmt.Errorf("strip %d extends past end of file", i)
		}
		strip := data[off:end]
		step := int(bits) / 8
		for p := 0; p+step <= len(strip); p += step {
			if bits == 32 {
				samples = append(samples, float64(math.Float32frombits(order.Uint32(strip[p:]))))
			} else {
				samples = append(samples, math.Float64frombits(order.Uint64(strip[p:])))
			}
		}
	}
	if len(samples) < width*height {
		return nil, fmt.Errorf("raster data truncated: %d of %d samples", len(samples), width*height)
	}

	scale := doubleValues(entries, order, tagModelPixelScale)
	tie := doubleValues(entries, order, tagModelTiepoint)
	cellX, cellY := 1.0, 1.0
	if len(scale) >= 2 {
		cellX, cellY = scale[0], math.Abs(scale[1])
	}
	originX, originY := 0.0, 0.0
	if len(tie) >= 6 {
		originX = tie[3] - tie[0]*cellX
		originY = tie[4] + tie[1]*cellY
	}

	nodata := DefaultNoData
	if s := asciiValue(entries, tagGDALNoData); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			nodata = v
		}
	}

	return &Grid{
		Width:   width,
		Height:  height,
		OriginX: originX,
		OriginY: originY,
		CellX:   cellX,
		CellY:   cellY,
		NoData:  nodata,
		Data:    samples[:width*height],
	}, nil
}

func readIFD(data []byte, order binary.ByteOrder, off uint32) (map[uint16]ifdEntry, error) {
	if int(off)+2 > len(data) {
		return nil, fmt.Errorf("IFD offset out of range")
	}
	n := int(order.Uint16(data[off : off+2]))
	entries := make(map[uint16]ifdEntry, n)
	pos := int(off) + 2
	for i := 0; i < n; i++ {
		if pos+12 > len(data) {
			return nil, fmt.Errorf("IFD truncated")
		}
		tag := order.Uint16(data[pos:])
		typ := order.Uint16(data[pos+2:])
		count := order.Uint32(data[pos+4:])
		size := typeSizes[typ]
		total := size * int(count)

		var value []byte
		if size == 0 {
			// unknown field type, skip
		} else if total <= 4 {
			value = data[pos+8 : pos+8+total]
		} else {
			voff := order.Uint32(data[pos+8:])
			if int(voff)+total > len(data) {
				return nil, fmt.Errorf("tag %d value out of range", tag)
			}
			value = data[voff : int(voff)+total]
		}
		entries[tag] = ifdEntry{typ: typ, count: count, value: value}
		pos += 12
	}
	return entries, nil
}

func uintValue(entries map[uint16]ifdEntry, order binary.ByteOrder, tag uint16, def uint64) uint64 {
	vs := uintValues(entries, order, tag)
	if len(vs) == 0 {
		return def
	}
	return vs[0]
}

func uintValues(entries map[uint16]ifdEntry, order binary.ByteOrder, tag uint16) []uint64 {
	e, ok := entries[tag]
	if !ok {
		return nil
	}
	out := make([]uint64, 0, e.count)
	for i := 0; i < int(e.count); i++ {
		switch e.typ {
		case typeShort:
			out = append(out, uint64(order.Uint16(e.value[i*2:])))
		case typeLong:
			out = append(out, uint64(order.Uint32(e.value[i*4:])))
		}
	}
	return out
}

func doubleValues(entries map[uint16]ifdEntry, order binary.ByteOrder, tag uint16) []float64 {
	e, ok := entries[tag]
	if !ok || e.typ != typeDouble {
		return nil
	}
	out := make([]float64, 0, e.count)
	for i := 0; i < int(e.count); i++ {
		out = append(out, math.Float64frombits(order.Uint64(e.value[i*8:])))
	}
	return out
}

func asciiValue(entries map[uint16]ifdEntry, tag uint16) string {
	e, ok := entries[tag]
	if !ok || e.typ != typeASCII {
		return ""
	}
	return strings.TrimRight(strings.TrimSpace(string(e.value)), "\x00 ")
}

// encodeGeoTIFF lays the file out as header, strip data, external tag
// values, then the IFD
func encodeGeoTIFF(g *Grid) []byte {
	order := binary.LittleEndian

	dataLen := g.Width * g.Height * 4
	nodata := append([]byte(strconv.FormatFloat(g.NoData, 'g', -1, 64)), 0)
	// pad past the 4-byte inline threshold so the value always lives in an
	// external block, and to even length per the TIFF alignment rule
	for len(nodata) <= 4 || len(nodata)%2 == 1 {
		nodata = append(nodata, 0)
	}

	stripOff := uint32(8)
	scaleOff := stripOff + uint32(dataLen)
	tieOff := scaleOff + 24
	nodataOff := tieOff + 48
	ifdOff := nodataOff + uint32(len(nodata))

	buf := make([]byte, 0, int(ifdOff)+2+14*12+4)

	// header
	buf = append(buf, 'I', 'I')
	buf = order.AppendUint16(buf, 42)
	buf = order.AppendUint32(buf, ifdOff)

	// single strip of float32 samples
	for _, v := range g.Data {
		buf = order.AppendUint32(buf, math.Float32bits(float32(v)))
	}

	// external tag values
	for _, v := range []float64{g.CellX, g.CellY, 0} {
		buf = order.AppendUint64(buf, math.Float64bits(v))
	}
	for _, v := range []float64{0, 0, 0, g.OriginX, g.OriginY, 0} {
		buf = order.AppendUint64(buf, math.Float64bits(v))
	}
	buf = append(buf, nodata...)

	// IFD, tags ascending
	type entry struct {
		tag, typ uint16
		count    uint32
		value    uint32
	}
	entries := []entry{
		{tagImageWidth, typeLong, 1, uint32(g.Width)},
		{tagImageLength, typeLong, 1, uint32(g.Height)},
		{tagBitsPerSample, typeShort, 1, 32},
		{tagCompression, typeShort, 1, 1},
		{tagPhotometric, typeShort, 1, 1},
		{tagStripOffsets, typeLong, 1, stripOff},
		{tagSamplesPerPixel, typeShort, 1, 1},
		{tagRowsPerStrip, typeLong, 1, uint32(g.Height)},
		{tagStripByteCounts, typeLong, 1, uint32(dataLen)},
		{tagPlanarConfig, typeShort, 1, 1},
		{tagSampleFormat, typeShort, 1, 3},
		{tagModelPixelScale, typeDouble, 3, scaleOff},
		{tagModelTiepoint, typeDouble, 6, tieOff},
		{tagGDALNoData, typeASCII, uint32(len(nodata)), nodataOff},
	}
	buf = order.AppendUint16(buf, uint16(len(entries)))
	for _, e := range entries {
		buf = order.AppendUint16(buf, e.tag)
		buf = order.AppendUint16(buf, e.typ)
		buf = order.AppendUint32(buf, e.count)
		if e.typ == typeShort && e.count == 1 {
			buf = order.AppendUint16(buf, uint16(e.value))
			buf = order.AppendUint16(buf, 0)
		} else {
			buf = order.AppendUint32(buf, e.value)
		}
	}
	buf = order.AppendUint32(buf, 0) // no next IFD

	return buf
}
