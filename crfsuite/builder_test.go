package crfsuite

import (
	"encoding/binary"
	"math"
	"slices"
)

// modelSpec describes a model to serialise in the CRFsuite file format.
type modelSpec struct {
	labels []string
	attrs  []string
	// state[attr][label] and trans[from][to] are feature weights.
	state map[string]map[string]float64
	trans map[string]map[string]float64
}

type builtFeature struct {
	typ, src, dst uint32
	weight        float64
}

// build writes the model the way crfsuite's model writer lays it out.
func (s modelSpec) build() []byte {
	labelID := index(s.labels)
	attrID := index(s.attrs)

	var feats []builtFeature
	for _, a := range s.attrs {
		for _, l := range sortedKeys(s.state[a]) {
			feats = append(feats, builtFeature{featureState, attrID[a], labelID[l], s.state[a][l]})
		}
	}
	for _, from := range s.labels {
		for _, to := range sortedKeys(s.trans[from]) {
			feats = append(feats, builtFeature{featureTransition, labelID[from], labelID[to], s.trans[from][to]})
		}
	}

	labelRefs := make([][]uint32, len(s.labels))
	attrRefs := make([][]uint32, len(s.attrs))
	for fid, f := range feats {
		if f.typ == featureTransition {
			labelRefs[f.src] = append(labelRefs[f.src], uint32(fid))
		} else {
			attrRefs[f.src] = append(attrRefs[f.src], uint32(fid))
		}
	}

	featChunk := chunk("FEAT", uint32(len(feats)), func(b []byte) []byte {
		for _, f := range feats {
			b = u32(b, f.typ)
			b = u32(b, f.src)
			b = u32(b, f.dst)
			b = binary.LittleEndian.AppendUint64(b, math.Float64bits(f.weight))
		}
		return b
	})
	labelDB := buildCQDB(s.labels)
	attrDB := buildCQDB(s.attrs)

	offFeatures := uint32(headerSize)
	offLabels := offFeatures + uint32(len(featChunk))
	offAttrs := offLabels + uint32(len(labelDB))
	offLabelRefs := offAttrs + uint32(len(attrDB))
	labelRefChunk := refChunk("LFRF", offLabelRefs, labelRefs)
	offAttrRefs := offLabelRefs + uint32(len(labelRefChunk))
	attrRefChunk := refChunk("AFRF", offAttrRefs, attrRefs)
	total := offAttrRefs + uint32(len(attrRefChunk))

	b := make([]byte, 0, total)
	b = append(b, "lCRF"...)
	b = u32(b, total)
	b = append(b, "FOMC"...)
	b = u32(b, 100)
	b = u32(b, uint32(len(feats)))
	b = u32(b, uint32(len(s.labels)))
	b = u32(b, uint32(len(s.attrs)))
	b = u32(b, offFeatures)
	b = u32(b, offLabels)
	b = u32(b, offAttrs)
	b = u32(b, offLabelRefs)
	b = u32(b, offAttrRefs)
	b = append(b, featChunk...)
	b = append(b, labelDB...)
	b = append(b, attrDB...)
	b = append(b, labelRefChunk...)
	b = append(b, attrRefChunk...)
	return b
}

func chunk(id string, num uint32, body func([]byte) []byte) []byte {
	b := append([]byte(id), make([]byte, 8)...)
	binary.LittleEndian.PutUint32(b[8:], num)
	b = body(b)
	binary.LittleEndian.PutUint32(b[4:], uint32(len(b)))
	return b
}

// refChunk lays out an offset table followed by the reference lists. Offsets
// are absolute, so the chunk's own file offset is needed.
func refChunk(id string, at uint32, refs [][]uint32) []byte {
	return chunk(id, uint32(len(refs)), func(b []byte) []byte {
		p := at + chunkSize + 4*uint32(len(refs))
		for _, r := range refs {
			b = u32(b, p)
			p += 4 + 4*uint32(len(r))
		}
		for _, r := range refs {
			b = u32(b, uint32(len(r)))
			for _, fid := range r {
				b = u32(b, fid)
			}
		}
		return b
	})
}

// buildCQDB stores keys with ids equal to their index.
func buildCQDB(keys []string) []byte {
	type entry struct {
		hash, offset uint32
	}
	b := make([]byte, cqdbHeaderSize+cqdbTables*8)
	var tables [cqdbTables][]entry
	bwd := make([]uint32, len(keys))
	for id, k := range keys {
		off := uint32(len(b))
		bwd[id] = off
		b = u32(b, uint32(id))
		b = u32(b, uint32(len(k)+1))
		b = append(b, k...)
		b = append(b, 0)

		hv := hashlittle(append([]byte(k), 0), 0)
		tables[hv%cqdbTables] = append(tables[hv%cqdbTables], entry{hv, off})
	}

	le := binary.LittleEndian
	for t, entries := range tables {
		if len(entries) == 0 {
			continue
		}
		n := uint32(2 * len(entries))
		buckets := make([]entry, n)
		for _, e := range entries {
			k := (e.hash >> 8) % n
			for buckets[k].offset != 0 {
				k = (k + 1) % n
			}
			buckets[k] = e
		}
		le.PutUint32(b[cqdbHeaderSize+8*t:], uint32(len(b)))
		le.PutUint32(b[cqdbHeaderSize+8*t+4:], n)
		for _, e := range buckets {
			b = u32(b, e.hash)
			b = u32(b, e.offset)
		}
	}

	bwdOffset := uint32(len(b))
	for _, off := range bwd {
		b = u32(b, off)
	}

	copy(b, "CQDB")
	le.PutUint32(b[4:], uint32(len(b)))
	le.PutUint32(b[12:], cqdbByteOrder)
	le.PutUint32(b[16:], uint32(len(keys)))
	le.PutUint32(b[20:], bwdOffset)
	return b
}

func u32(b []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(b, v)
}

func index(keys []string) map[string]uint32 {
	m := make(map[string]uint32, len(keys))
	for i, k := range keys {
		m[k] = uint32(i)
	}
	return m
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
