package crfsuite

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	cqdbHeaderSize = 24
	cqdbTables     = 256
	cqdbByteOrder  = 0x62445371
)

type cqdbTable struct {
	offset uint32
	num    uint32
}

// cqdb is a read-only view of a constant quark database: a string to id
// hash map with a backward id to string array.
type cqdb struct {
	buf    []byte
	tables [cqdbTables]cqdbTable
	bwd    []uint32
}

func openCQDB(buf []byte) (*cqdb, error) {
	if len(buf) < cqdbHeaderSize+cqdbTables*8 {
		return nil, fmt.Errorf("%w: cqdb chunk too short (%d bytes)", ErrInvalidModel, len(buf))
	}
	if string(buf[:4]) != "CQDB" {
		return nil, fmt.Errorf("%w: bad cqdb magic %q", ErrInvalidModel, buf[:4])
	}
	le := binary.LittleEndian
	if bo := le.Uint32(buf[12:]); bo != cqdbByteOrder {
		return nil, fmt.Errorf("%w: unsupported cqdb byte order %#x", ErrInvalidModel, bo)
	}
	bwdSize := le.Uint32(buf[16:])
	bwdOffset := le.Uint32(buf[20:])

	db := &cqdb{buf: buf}
	for i := range db.tables {
		p := cqdbHeaderSize + 8*i
		t := cqdbTable{offset: le.Uint32(buf[p:]), num: le.Uint32(buf[p+4:])}
		if t.offset != 0 && uint64(t.offset)+8*uint64(t.num) > uint64(len(buf)) {
			return nil, fmt.Errorf("%w: cqdb table %d out of range", ErrInvalidModel, i)
		}
		db.tables[i] = t
	}

	if bwdOffset != 0 {
		if uint64(bwdOffset)+4*uint64(bwdSize) > uint64(len(buf)) {
			return nil, fmt.Errorf("%w: cqdb backward array out of range", ErrInvalidModel)
		}
		db.bwd = make([]uint32, bwdSize)
		for i := range db.bwd {
			db.bwd[i] = le.Uint32(buf[int(bwdOffset)+4*i:])
		}
	}
	return db, nil
}

// num returns the number of ids in the backward array.
func (db *cqdb) num() int {
	return len(db.bwd)
}

// id returns the id stored for key.
func (db *cqdb) id(key string) (int, bool) {
	k := make([]byte, len(key)+1)
	copy(k, key)
	hv := hashlittle(k, 0)

	t := db.tables[hv%cqdbTables]
	if t.num == 0 || t.offset == 0 {
		return 0, false
	}
	le := binary.LittleEndian
	for i, slot := uint32(0), (hv>>8)%t.num; i < t.num; i, slot = i+1, (slot+1)%t.num {
		p := t.offset + 8*slot
		hash, off := le.Uint32(db.buf[p:]), le.Uint32(db.buf[p+4:])
		if off == 0 {
			return 0, false
		}
		if hash != hv {
			continue
		}
		id, rec, ok := db.record(off)
		if ok && rec == key {
			return id, true
		}
	}
	return 0, false
}

// str returns the key stored for id.
func (db *cqdb) str(id int) (string, bool) {
	if id < 0 || id >= len(db.bwd) || db.bwd[id] == 0 {
		return "", false
	}
	_, s, ok := db.record(db.bwd[id])
	return s, ok
}

func (db *cqdb) record(off uint32) (int, string, bool) {
	if uint64(off)+8 > uint64(len(db.buf)) {
		return 0, "", false
	}
	le := binary.LittleEndian
	id := le.Uint32(db.buf[off:])
	size := le.Uint32(db.buf[off+4:])
	start := uint64(off) + 8
	if size == 0 || start+uint64(size) > uint64(len(db.buf)) {
		return 0, "", false
	}
	key := db.buf[start : start+uint64(size)]
	if i := bytes.IndexByte(key, 0); i >= 0 {
		key = key[:i]
	}
	return int(id), string(key), true
}
