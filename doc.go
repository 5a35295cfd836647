// Package sentsplit splits text into sentences with a per-character sequence
// tagger corrected by regex rules.
//
// # Quick Start
//
//	seg, err := sentsplit.New("en", sentsplit.WithModelDir("/opt/sentsplit"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer seg.Close()
//
//	sents, err := seg.Segment(ctx, "Hello world. This is a sentence.")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// ["Hello world.", " This is a sentence."]
//
// # Pipeline
//
// Each input is cut after every newline into fragments that are processed
// independently. A fragment has runs of whitespace collapsed, is turned into
// character features and tagged O or EOS by the labeler. The tags are then
// stretched back over the original characters, segment rules force
// boundaries, prevent rules remove them, and the boundary resolver emits
// sentences no shorter than mincut and no longer than maxcut.
//
// Without stripping, concatenating the sentences of an input reproduces the
// input exactly.
//
// # Labelers
//
// The model reference of a language selects the labeler backend:
//   - "punkt:<language>" uses the Punkt tokenizer with bundled training data.
//   - a path ending in ".onnx" uses a wtpsplit/SaT model and needs a
//     SentencePiece tokenizer (WithTokenizer).
//   - anything else is read as a CRFsuite model file.
//
// Relative model paths are resolved against WithModelDir, which defaults to
// $SENTSPLIT_MODEL_DIR. WithLabeler and WithBackend bypass model loading.
//
// # Thread Safety
//
// Segmenter is safe for concurrent use. It manages an internal pool of
// labelers, configurable via WithPoolSize.
package sentsplit
