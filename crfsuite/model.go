// Package crfsuite reads CRFsuite first-order Markov CRF model files and
// tags item sequences with them.
//
// Only the model format and Viterbi decoding are implemented; training is
// out of scope. Models are memory-mapped and shared read-only, so a single
// Model serves any number of concurrent Taggers.
package crfsuite

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/edsrzf/mmap-go"
)

// ErrInvalidModel indicates data that is not a well-formed CRFsuite model.
var ErrInvalidModel = errors.New("crfsuite: invalid model")

const (
	headerSize  = 48
	chunkSize   = 12
	featureSize = 20

	featureState      = 0
	featureTransition = 1
)

// header is the fixed file header, little-endian.
type header struct {
	Magic        [4]byte
	Size         uint32
	Type         [4]byte
	Version      uint32
	NumFeatures  uint32
	NumLabels    uint32
	NumAttrs     uint32
	OffFeatures  uint32
	OffLabels    uint32
	OffAttrs     uint32
	OffLabelRefs uint32
	OffAttrRefs  uint32
}

type feature struct {
	typ    uint32
	src    uint32
	dst    uint32
	weight float64
}

// Model is a loaded CRFsuite model.
type Model struct {
	data []byte
	mm   mmap.MMap
	hdr  header

	labels *cqdb
	attrs  *cqdb

	// trans[i*numLabels+j] is the weight of moving from label i to label j.
	trans []float64

	closeOnce sync.Once
	closeErr  error
}

// Open memory-maps the model file at path.
func Open(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening model: %w", err)
	}
	defer f.Close()

	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mapping model: %w", err)
	}
	m, err := Load(mm)
	if err != nil {
		_ = mm.Unmap()
		return nil, err
	}
	m.mm = mm
	return m, nil
}

// Load parses a model held in memory. data must not be modified while the
// model is in use.
func Load(data []byte) (*Model, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: file too small for header (%d bytes)", ErrInvalidModel, len(data))
	}
	var hdr header
	if err := binary.Read(bytes.NewReader(data[:headerSize]), binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", ErrInvalidModel, err)
	}
	if string(hdr.Magic[:]) != "lCRF" {
		return nil, fmt.Errorf("%w: bad magic %q", ErrInvalidModel, hdr.Magic[:])
	}
	if string(hdr.Type[:]) != "FOMC" {
		return nil, fmt.Errorf("%w: unsupported model type %q", ErrInvalidModel, hdr.Type[:])
	}

	m := &Model{data: data, hdr: hdr}
	if err := m.checkLayout(); err != nil {
		return nil, err
	}

	var err error
	if m.labels, err = openCQDB(data[hdr.OffLabels:hdr.OffAttrs]); err != nil {
		return nil, fmt.Errorf("labels: %w", err)
	}
	if m.attrs, err = openCQDB(data[hdr.OffAttrs:hdr.OffLabelRefs]); err != nil {
		return nil, fmt.Errorf("attributes: %w", err)
	}
	if m.labels.num() < int(hdr.NumLabels) {
		return nil, fmt.Errorf("%w: %d label strings for %d labels", ErrInvalidModel, m.labels.num(), hdr.NumLabels)
	}

	if err := m.checkRefs(hdr.OffLabelRefs, hdr.NumLabels); err != nil {
		return nil, fmt.Errorf("label refs: %w", err)
	}
	if err := m.checkRefs(hdr.OffAttrRefs, hdr.NumAttrs); err != nil {
		return nil, fmt.Errorf("attribute refs: %w", err)
	}
	m.loadTransitions()
	return m, nil
}

func (m *Model) checkLayout() error {
	h := m.hdr
	size := uint64(len(m.data))
	offsets := []uint32{h.OffFeatures, h.OffLabels, h.OffAttrs, h.OffLabelRefs, h.OffAttrRefs}
	for _, off := range offsets {
		if off < headerSize || uint64(off)+chunkSize > size {
			return fmt.Errorf("%w: chunk offset %d outside file of %d bytes", ErrInvalidModel, off, size)
		}
	}
	if h.OffLabels > h.OffAttrs || h.OffAttrs > h.OffLabelRefs {
		return fmt.Errorf("%w: dictionary chunks out of order", ErrInvalidModel)
	}
	if string(m.data[h.OffFeatures:h.OffFeatures+4]) != "FEAT" {
		return fmt.Errorf("%w: missing feature chunk", ErrInvalidModel)
	}
	if uint64(h.OffFeatures)+chunkSize+featureSize*uint64(h.NumFeatures) > size {
		return fmt.Errorf("%w: %d features overrun the file", ErrInvalidModel, h.NumFeatures)
	}
	return nil
}

// checkRefs validates a feature-reference chunk holding n entries.
func (m *Model) checkRefs(off, n uint32) error {
	size := uint64(len(m.data))
	if uint64(off)+chunkSize+4*uint64(n) > size {
		return fmt.Errorf("%w: offset table overruns the file", ErrInvalidModel)
	}
	for i := range n {
		p := m.refOffset(off, i)
		if uint64(p)+4 > size {
			return fmt.Errorf("%w: entry %d out of range", ErrInvalidModel, i)
		}
		num := binary.LittleEndian.Uint32(m.data[p:])
		if uint64(p)+4+4*uint64(num) > size {
			return fmt.Errorf("%w: entry %d overruns the file", ErrInvalidModel, i)
		}
		for _, fid := range m.refs(off, i) {
			if fid >= m.hdr.NumFeatures {
				return fmt.Errorf("%w: entry %d references feature %d of %d", ErrInvalidModel, i, fid, m.hdr.NumFeatures)
			}
		}
	}
	return nil
}

func (m *Model) refOffset(chunk, i uint32) uint32 {
	return binary.LittleEndian.Uint32(m.data[chunk+chunkSize+4*i:])
}

// refs returns the feature ids listed for entry i of a reference chunk.
func (m *Model) refs(chunk, i uint32) []uint32 {
	p := m.refOffset(chunk, i)
	num := binary.LittleEndian.Uint32(m.data[p:])
	fids := make([]uint32, num)
	for j := range fids {
		fids[j] = binary.LittleEndian.Uint32(m.data[p+4+4*uint32(j):])
	}
	return fids
}

func (m *Model) feature(fid uint32) feature {
	p := m.hdr.OffFeatures + chunkSize + featureSize*fid
	le := binary.LittleEndian
	return feature{
		typ:    le.Uint32(m.data[p:]),
		src:    le.Uint32(m.data[p+4:]),
		dst:    le.Uint32(m.data[p+8:]),
		weight: math.Float64frombits(le.Uint64(m.data[p+12:])),
	}
}

func (m *Model) loadTransitions() {
	n := m.NumLabels()
	m.trans = make([]float64, n*n)
	for i := range uint32(n) {
		for _, fid := range m.refs(m.hdr.OffLabelRefs, i) {
			f := m.feature(fid)
			if f.typ != featureTransition || int(f.dst) >= n {
				continue
			}
			m.trans[int(i)*n+int(f.dst)] = f.weight
		}
	}
}

// NumLabels returns the number of output labels.
func (m *Model) NumLabels() int {
	return int(m.hdr.NumLabels)
}

// NumAttributes returns the number of attributes the model knows.
func (m *Model) NumAttributes() int {
	return int(m.hdr.NumAttrs)
}

// Labels returns the label strings in id order.
func (m *Model) Labels() []string {
	out := make([]string, m.NumLabels())
	for i := range out {
		out[i], _ = m.labels.str(i)
	}
	return out
}

// LabelID returns the id of label.
func (m *Model) LabelID(label string) (int, bool) {
	return m.labels.id(label)
}

// AttributeID returns the id of attr.
func (m *Model) AttributeID(attr string) (int, bool) {
	id, ok := m.attrs.id(attr)
	if !ok || id >= m.NumAttributes() {
		return 0, false
	}
	return id, true
}

// addState adds the state weights of attribute aid, scaled by value, to row.
func (m *Model) addState(row []float64, aid int, value float64) {
	for _, fid := range m.refs(m.hdr.OffAttrRefs, uint32(aid)) {
		f := m.feature(fid)
		if f.typ != featureState || int(f.dst) >= len(row) {
			continue
		}
		row[f.dst] += f.weight * value
	}
}

// Close unmaps the model file. It is safe to call more than once.
func (m *Model) Close() error {
	m.closeOnce.Do(func() {
		if m.mm != nil {
			m.closeErr = m.mm.Unmap()
		}
	})
	return m.closeErr
}
