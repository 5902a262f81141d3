// Package journal keeps the ordered, hash-chained list of records emitted by
// the registry and its ledgers, and forwards them to external sinks.
package journal

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/Ryfitz11/NFT-Tickets/internal/domain"
)

var ErrChainBroken = errors.New("journal: hash chain broken")

var encMode cbor.EncMode

func init() {
	opts := cbor.CoreDetEncOptions()
	// Address and Amount encode through MarshalText.
	opts.TextMarshaler = cbor.TextMarshalerTextString
	var err error
	encMode, err = opts.EncMode()
	if err != nil {
		panic("journal: cbor encoder: " + err.Error())
	}
}

// hashed is the part of a record covered by its hash.
type hashed struct {
	Seq       uint64            `cbor:"1,keyasint"`
	ID        string            `cbor:"2,keyasint"`
	Ledger    domain.Address    `cbor:"3,keyasint"`
	Kind      domain.RecordKind `cbor:"4,keyasint"`
	Timestamp int64             `cbor:"5,keyasint"`
	Payload   any               `cbor:"6,keyasint"`
}

// Hash returns the hex BLAKE3 digest of prev followed by the deterministic
// CBOR encoding of rec.
func Hash(prev string, rec domain.Record) (string, error) {
	body, err := encMode.Marshal(hashed{
		Seq:       rec.Seq,
		ID:        rec.ID,
		Ledger:    rec.Ledger,
		Kind:      rec.Kind,
		Timestamp: rec.Timestamp,
		Payload:   rec.Payload,
	})
	if err != nil {
		return "", fmt.Errorf("encode record %d: %w", rec.Seq, err)
	}
	h := blake3.New()
	_, _ = h.Write([]byte(prev))
	_, _ = h.Write(body)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Log is an append-only in-memory journal. It implements the emitter
// interface used by ledgers and the registry.
type Log struct {
	logger *slog.Logger

	mu       sync.Mutex
	records  []domain.Record
	byLedger map[domain.Address][]int
	head     string
	changed  chan struct{}
}

func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Log{
		logger:   logger,
		byLedger: make(map[domain.Address][]int),
		changed:  make(chan struct{}),
	}
}

// Emit appends rec. Encoding failures are logged; the record is still kept
// so that no state change goes unrecorded, and Verify will report it.
func (l *Log) Emit(rec domain.Record) {
	if _, err := l.Append(rec); err != nil {
		l.logger.Error("journal append", "kind", string(rec.Kind), "ledger", rec.Ledger.String(), "err", err)
	}
}

// Append assigns rec its sequence number, id and chain hashes and stores it.
func (l *Log) Append(rec domain.Record) (domain.Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.Seq = uint64(len(l.records)) + 1
	rec.PrevHash = l.head
	hash, err := Hash(l.head, rec)
	rec.Hash = hash

	l.byLedger[rec.Ledger] = append(l.byLedger[rec.Ledger], len(l.records))
	l.records = append(l.records, rec)
	if err == nil {
		l.head = hash
	}

	close(l.changed)
	l.changed = make(chan struct{})
	return rec, err
}

// Changed returns a channel closed on the next append.
func (l *Log) Changed() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.changed
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Head is the hash of the last record, empty for an empty log.
func (l *Log) Head() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.head
}

func (l *Log) All() []domain.Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.Record(nil), l.records...)
}

// Since returns the records with a sequence number greater than seq.
func (l *Log) Since(seq uint64) []domain.Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	if seq >= uint64(len(l.records)) {
		return nil
	}
	return append([]domain.Record(nil), l.records[seq:]...)
}

// Records returns the records of one ledger in emission order.
func (l *Log) Records(ledger domain.Address) []domain.Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx := l.byLedger[ledger]
	out := make([]domain.Record, len(idx))
	for i, n := range idx {
		out[i] = l.records[n]
	}
	return out
}

// Verify recomputes every hash and checks the chain links.
func (l *Log) Verify() error {
	return VerifyChain(l.All())
}

// VerifyChain checks a contiguous run of records starting at the genesis.
func VerifyChain(records []domain.Record) error {
	prev := ""
	for i, rec := range records {
		if rec.Seq != uint64(i)+1 {
			return fmt.Errorf("%w: record %d has seq %d", ErrChainBroken, i+1, rec.Seq)
		}
		if rec.PrevHash != prev {
			return fmt.Errorf("%w: seq %d prev hash mismatch", ErrChainBroken, rec.Seq)
		}
		want, err := Hash(prev, rec)
		if err != nil {
			return err
		}
		if rec.Hash != want {
			return fmt.Errorf("%w: seq %d hash mismatch", ErrChainBroken, rec.Seq)
		}
		prev = rec.Hash
	}
	return nil
}
