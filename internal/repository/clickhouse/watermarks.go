package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-feetracker/internal/model"
	"github.com/google/uuid"
)

// Watermark returns the last committed instant for stream. The boolean is false when none was ever written.
func (r *Repository) Watermark(ctx context.Context, stream model.Stream) (ts time.Time, found bool, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("watermark", err, start)
	}()

	const query = `
SELECT argMax(timestamp, updated_at)
FROM sync_watermarks
WHERE stream = ?
GROUP BY stream`

	rows, err := r.conn.Query(ctx, query, string(stream))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("query watermark: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return time.Time{}, false, fmt.Errorf("iterate watermark: %w", err)
		}
		return time.Time{}, false, nil
	}
	if err = rows.Scan(&ts); err != nil {
		return time.Time{}, false, fmt.Errorf("scan watermark: %w", err)
	}
	if err = rows.Err(); err != nil {
		return time.Time{}, false, fmt.Errorf("iterate watermark: %w", err)
	}
	return ts.UTC(), true, nil
}

// AdvanceWatermark sets the stream watermark to exactly ts.
func (r *Repository) AdvanceWatermark(ctx context.Context, stream model.Stream, ts time.Time) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("advance_watermark", err, start)
	}()

	const query = `
INSERT INTO sync_watermarks (
	id,
	stream,
	timestamp,
	updated_at
) VALUES`

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare watermark batch: %w", err)
	}
	if err = batch.Append(watermarkID(stream), string(stream), ts.UTC().Truncate(time.Second), r.now().UTC()); err != nil {
		_ = batch.Abort()
		return fmt.Errorf("append watermark: %w", err)
	}
	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert watermark: %w", err)
	}
	return nil
}

// watermarkID is stable per stream so every version row shares the logical row id.
func watermarkID(stream model.Stream) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("feetracker/watermark/"+string(stream)))
}
