package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ryfitz11/NFT-Tickets/internal/domain"
)

// LedgerHead summarizes the stored records of one ledger.
type LedgerHead struct {
	Ledger    domain.Address
	LastEpoch int64
	LastSeq   uint64
	LastHash  string
	Count     int64
	UpdatedAt time.Time
}

// RecordRepository persists journaled records. It is a journal sink.
//
// Sequence numbers restart with every process, so each stored record is
// stamped with the boot epoch it was delivered in; history is ordered by
// (epoch, seq).
type RecordRepository struct {
	pool  *pgxpool.Pool
	q     querier
	epoch int64
}

func NewRecordRepository(pool *pgxpool.Pool) *RecordRepository {
	return &RecordRepository{pool: pool, q: querier{pool: pool}}
}

func (r *RecordRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *RecordRepository) Name() string { return "postgres" }

// Epoch is the boot epoch stamped on records delivered by this repository.
func (r *RecordRepository) Epoch() int64 { return r.epoch }

// Resume opens a new boot epoch and reports how many ledgers earlier runs
// stored a creation record for. A registry continuing from that count never
// reuses a stored ledger address. Call it once, before delivery starts.
func (r *RecordRepository) Resume(ctx context.Context) (uint64, error) {
	const query = `
SELECT
	COALESCE(MAX(epoch), 0) + 1,
	COUNT(*) FILTER (WHERE kind = $1)
FROM records`

	var epoch, ledgers int64
	if err := r.q.queryRow(ctx, query, string(domain.RecordEventCreated)).Scan(&epoch, &ledgers); err != nil {
		return 0, fmt.Errorf("resume record store: %w", err)
	}
	r.epoch = epoch
	return uint64(ledgers), nil
}

// Deliver stores rec and advances its ledger head atomically.
func (r *RecordRepository) Deliver(ctx context.Context, rec domain.Record) error {
	return r.WithTx(ctx, func(txCtx context.Context) error {
		_, err := r.AppendRecord(txCtx, rec)
		return err
	})
}

// AppendRecord inserts rec. A record id that is already stored is a no-op and
// reports false.
func (r *RecordRepository) AppendRecord(ctx context.Context, rec domain.Record) (bool, error) {
	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		return false, fmt.Errorf("encode payload: %w", err)
	}

	const insert = `
INSERT INTO records (id, epoch, seq, ledger, kind, occurred_at, payload, prev_hash, hash)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO NOTHING`

	tag, err := r.q.exec(ctx, insert,
		rec.ID, r.epoch, int64(rec.Seq), rec.Ledger.String(), string(rec.Kind),
		time.Unix(rec.Timestamp, 0).UTC(), payload, rec.PrevHash, rec.Hash,
	)
	if err != nil {
		return false, fmt.Errorf("insert record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	const head = `
INSERT INTO ledger_heads (ledger, last_epoch, last_seq, last_hash, record_count, updated_at)
VALUES ($1, $2, $3, $4, 1, NOW())
ON CONFLICT (ledger) DO UPDATE SET
	last_epoch = CASE WHEN (EXCLUDED.last_epoch, EXCLUDED.last_seq) >= (ledger_heads.last_epoch, ledger_heads.last_seq)
		THEN EXCLUDED.last_epoch ELSE ledger_heads.last_epoch END,
	last_seq = CASE WHEN (EXCLUDED.last_epoch, EXCLUDED.last_seq) >= (ledger_heads.last_epoch, ledger_heads.last_seq)
		THEN EXCLUDED.last_seq ELSE ledger_heads.last_seq END,
	last_hash = CASE WHEN (EXCLUDED.last_epoch, EXCLUDED.last_seq) >= (ledger_heads.last_epoch, ledger_heads.last_seq)
		THEN EXCLUDED.last_hash ELSE ledger_heads.last_hash END,
	record_count = ledger_heads.record_count + 1,
	updated_at = NOW()`

	if _, err := r.q.exec(ctx, head, rec.Ledger.String(), r.epoch, int64(rec.Seq), rec.Hash); err != nil {
		return false, fmt.Errorf("advance ledger head: %w", err)
	}
	return true, nil
}

// ListRecords returns a ledger's stored records in delivery order: by boot
// epoch, then sequence. Payloads come back as raw JSON.
func (r *RecordRepository) ListRecords(ctx context.Context, ledger domain.Address) ([]domain.Record, error) {
	const query = `
SELECT id, seq, ledger, kind, occurred_at, payload, prev_hash, hash
FROM records
WHERE ledger = $1
ORDER BY epoch, seq`

	rows, err := r.q.query(ctx, query, ledger.String())
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		var (
			rec        domain.Record
			seq        int64
			ledgerText string
			kind       string
			occurred   time.Time
			payload    []byte
		)
		if err := rows.Scan(&rec.ID, &seq, &ledgerText, &kind, &occurred, &payload, &rec.PrevHash, &rec.Hash); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		addr, err := domain.ParseAddress(ledgerText)
		if err != nil {
			return nil, fmt.Errorf("stored ledger %q: %w", ledgerText, err)
		}
		rec.Seq = uint64(seq)
		rec.Ledger = addr
		rec.Kind = domain.RecordKind(kind)
		rec.Timestamp = occurred.Unix()
		rec.Payload = json.RawMessage(payload)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return out, nil
}

// Head returns the stored head of ledger, or domain.ErrEventNotFound when no
// record of it has been stored.
func (r *RecordRepository) Head(ctx context.Context, ledger domain.Address) (LedgerHead, error) {
	const query = `
SELECT last_epoch, last_seq, last_hash, record_count, updated_at
FROM ledger_heads
WHERE ledger = $1`

	h := LedgerHead{Ledger: ledger}
	var seq int64
	err := r.q.queryRow(ctx, query, ledger.String()).Scan(&h.LastEpoch, &seq, &h.LastHash, &h.Count, &h.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LedgerHead{}, domain.ErrEventNotFound
		}
		return LedgerHead{}, fmt.Errorf("get ledger head: %w", err)
	}
	h.LastSeq = uint64(seq)
	return h, nil
}
