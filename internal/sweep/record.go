package sweep

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

// SchemaVersion identifies the persisted record layout.
const SchemaVersion = 1

// ErrCorruptRecord flags a record whose digest does not match its content.
var ErrCorruptRecord = errors.New("record digest mismatch")

// RecordAnomaly is one non-settled seed in a persisted record.
type RecordAnomaly struct {
	Value  string `json:"value"`
	Kind   string `json:"kind"`
	Detail string `json:"detail,omitempty"`
}

// Record is the persisted form of one sweep. Witness values are decimal
// strings so they survive JSON number precision; histograms are keyed by
// decimal bucket. Digest is the xxhash64 of the canonical encoding, the
// record serialized with Digest empty.
type Record struct {
	Schema    int    `json:"schema"`
	X         uint64 `json:"x"`
	Lo        string `json:"lo"`
	Hi        string `json:"hi"`
	Rule      string `json:"rule"`
	Workers   int    `json:"workers"`
	ElapsedMS int64  `json:"elapsed_ms"`
	Cancelled bool   `json:"cancelled"`

	Processed uint64 `json:"processed"`
	Verified  uint64 `json:"verified"`

	MaxStoppingTime uint64 `json:"max_stopping_time"`
	MaxStoppingSeed string `json:"max_stopping_seed"`
	MaxPairWidth    int    `json:"max_pair_width"`
	MaxPairSeed     string `json:"max_pair_seed"`

	TotalG     uint64 `json:"total_g"`
	TotalP     uint64 `json:"total_p"`
	TotalK     uint64 `json:"total_k"`
	TotalPairs uint64 `json:"total_pairs"`
	TotalSteps uint64 `json:"total_steps"`

	ChainHist map[string]uint64 `json:"chain_hist"`
	DHist     map[string]uint64 `json:"d_hist"`

	Anomalies []RecordAnomaly `json:"anomalies"`

	Digest string `json:"digest"`
}

// NewRecord builds the persisted form of a sweep result, digest included.
func NewRecord(res *Result) *Record {
	rec := &Record{
		Schema:          SchemaVersion,
		X:               res.X,
		Lo:              strconv.FormatUint(res.Lo, 10),
		Hi:              strconv.FormatUint(res.Hi, 10),
		Rule:            res.Rule.String(),
		Workers:         res.Workers,
		ElapsedMS:       res.Elapsed.Milliseconds(),
		Cancelled:       res.Cancelled,
		Processed:       res.Processed,
		Verified:        res.Verified,
		MaxStoppingTime: res.MaxStop,
		MaxStoppingSeed: strconv.FormatUint(res.MaxStopSeed, 10),
		MaxPairWidth:    res.MaxPairs,
		MaxPairSeed:     strconv.FormatUint(res.MaxPairsSeed, 10),
		TotalG:          res.Stats.TotalG,
		TotalP:          res.Stats.TotalP,
		TotalK:          res.Stats.TotalK,
		TotalPairs:      res.Stats.TotalPairs,
		TotalSteps:      res.Stats.TotalSteps,
		ChainHist:       make(map[string]uint64),
		DHist:           make(map[string]uint64),
		Anomalies:       make([]RecordAnomaly, 0, len(res.Anomalies)),
	}
	for i, c := range res.Stats.CarryChainHist {
		if c != 0 {
			rec.ChainHist[strconv.Itoa(i)] = c
		}
	}
	for d, c := range res.DHist {
		rec.DHist[strconv.Itoa(d)] = c
	}
	for _, a := range res.Anomalies {
		rec.Anomalies = append(rec.Anomalies, RecordAnomaly{
			Value:  strconv.FormatUint(a.Seed, 10),
			Kind:   a.Kind,
			Detail: a.Detail,
		})
	}
	rec.Digest = rec.digest()
	return rec
}

// digest hashes the canonical encoding. Field order is fixed by the struct
// and JSON sorts map keys, so the encoding is deterministic.
func (r *Record) digest() string {
	c := *r
	c.Digest = ""
	b, err := json.Marshal(&c)
	if err != nil {
		panic("sweep: record encoding failed: " + err.Error())
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(b))
}

// Verify recomputes the digest and reports corruption.
func (r *Record) Verify() error {
	if got := r.digest(); got != r.Digest {
		return errors.Wrapf(ErrCorruptRecord, "stored %s, computed %s", r.Digest, got)
	}
	return nil
}

// Save writes the record as indented JSON.
func (r *Record) Save(path string) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding sweep record")
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return errors.Wrap(err, "writing sweep record")
	}
	return nil
}

// Load reads a record back and verifies its schema and digest.
func Load(path string) (*Record, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading sweep record")
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, errors.Wrap(err, "decoding sweep record")
	}
	if rec.Schema != SchemaVersion {
		return nil, errors.Errorf("unsupported record schema %d", rec.Schema)
	}
	if err := rec.Verify(); err != nil {
		return nil, errors.Wrap(err, path)
	}
	return &rec, nil
}
