package tokenizer

import (
	"errors"
	"fmt"
	"math"
	"os"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrInvalidModel indicates data that is not a SentencePiece ModelProto.
var ErrInvalidModel = errors.New("tokenizer: invalid sentencepiece model")

// PieceType mirrors ModelProto.SentencePiece.Type.
type PieceType int32

// Piece types.
const (
	PieceNormal      PieceType = 1
	PieceUnknown     PieceType = 2
	PieceControl     PieceType = 3
	PieceUserDefined PieceType = 4
	PieceUnused      PieceType = 5
	PieceByte        PieceType = 6
)

// ModelType mirrors TrainerSpec.ModelType.
type ModelType int32

// Model types.
const (
	ModelUnigram ModelType = 1
	ModelBPE     ModelType = 2
	ModelWord    ModelType = 3
	ModelChar    ModelType = 4
)

// ModelProto field numbers.
const (
	fieldPieces      protowire.Number = 1
	fieldTrainerSpec protowire.Number = 2

	fieldPiece     protowire.Number = 1
	fieldScore     protowire.Number = 2
	fieldPieceType protowire.Number = 3

	fieldModelType protowire.Number = 3
)

// Piece represents a vocabulary piece from the model.
type Piece struct {
	Piece string
	Score float32
	Type  PieceType
}

// Model represents a loaded SentencePiece model.
type Model struct {
	Pieces    []Piece
	ModelType ModelType
}

// LoadModel loads a SentencePiece model from a .model file.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}
	return ParseModel(data)
}

// ParseModel decodes a serialized ModelProto. Only the fields tokenization
// needs are kept; everything else is skipped.
func ParseModel(data []byte) (*Model, error) {
	m := &Model{ModelType: ModelUnigram}
	err := walk(data, func(num protowire.Number, typ protowire.Type, b []byte) error {
		switch {
		case num == fieldPieces && typ == protowire.BytesType:
			p, err := parsePiece(b)
			if err != nil {
				return fmt.Errorf("piece %d: %w", len(m.Pieces), err)
			}
			m.Pieces = append(m.Pieces, p)
		case num == fieldTrainerSpec && typ == protowire.BytesType:
			return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) error {
				if num == fieldModelType && typ == protowire.VarintType {
					v, _ := protowire.ConsumeVarint(b)
					m.ModelType = ModelType(v)
				}
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	if len(m.Pieces) == 0 {
		return nil, fmt.Errorf("%w: no pieces", ErrInvalidModel)
	}
	return m, nil
}

func parsePiece(data []byte) (Piece, error) {
	p := Piece{Type: PieceNormal}
	err := walk(data, func(num protowire.Number, typ protowire.Type, b []byte) error {
		switch {
		case num == fieldPiece && typ == protowire.BytesType:
			p.Piece = string(b)
		case num == fieldScore && typ == protowire.Fixed32Type:
			v, _ := protowire.ConsumeFixed32(b)
			p.Score = math.Float32frombits(v)
		case num == fieldPieceType && typ == protowire.VarintType:
			v, _ := protowire.ConsumeVarint(b)
			p.Type = PieceType(v)
		}
		return nil
	})
	return p, err
}

// walk calls fn for every field in a message. For length-delimited fields b
// is the payload; otherwise it is the raw encoded value.
func walk(data []byte, fn func(num protowire.Number, typ protowire.Type, b []byte) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		var value []byte
		if typ == protowire.BytesType {
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return fmt.Errorf("field %d: %w", num, protowire.ParseError(m))
			}
			value, n = v, m
		} else {
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
			}
			value = data[:n]
		}
		if err := fn(num, typ, value); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}
