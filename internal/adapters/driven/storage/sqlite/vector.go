package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/docuchat-labs/docuchat/internal/core/domain"
	"github.com/docuchat-labs/docuchat/internal/core/ports/driven"
)

// Ensure Store implements the vector store interface.
var _ driven.VectorStore = (*Store)(nil)

// InsertEmbedding stores the vector for a chunk, keyed by the chunk's
// internal row reference. The vector length must match the store's
// configured width; the underlying table does not enforce this, so the
// store does.
func (s *Store) InsertEmbedding(ctx context.Context, chunkID string, vector []float32) error {
	if !s.vectorTable {
		return fmt.Errorf("%w: %s", domain.ErrVectorSearchUnavailable, s.degradation)
	}
	if len(vector) != s.dims {
		return fmt.Errorf("%w: got %d, store configured for %d",
			domain.ErrDimensionMismatch, len(vector), s.dims)
	}

	return s.withConn(ctx, func(ctx context.Context, db *sql.DB) error {
		var rowid int64
		err := db.QueryRowContext(ctx, "SELECT rowid FROM chunks WHERE id = ?", chunkID).Scan(&rowid)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("chunk %s: %w", chunkID, domain.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("resolving chunk rowid: %w", err)
		}

		_, err = db.ExecContext(ctx,
			"INSERT INTO vss_embeddings (rowid, embedding) VALUES (?, ?)",
			rowid, encodeVector(vector))
		if isConstraint(err, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE) {
			return fmt.Errorf("embedding for chunk %s: %w", chunkID, domain.ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("inserting embedding: %w", err)
		}
		return nil
	})
}

// ==================== Vector Codec ====================

// The storage encoding is the interoperability contract: IEEE-754 single
// precision, little endian, native array order, no delimiters, no length
// prefix. Length is implied by the table's configured width.

// encodeVector converts a []float32 to its storage BLOB.
func encodeVector(vec []float32) []byte {
	if len(vec) == 0 {
		return nil
	}
	buf := make([]byte, len(vec)*4)
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeVector converts a storage BLOB back to []float32.
func decodeVector(data []byte) ([]float32, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding blob length %d (not a multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}

// cosineSimilarity computes the cosine similarity between two vectors of
// equal length. Zero-magnitude vectors yield a similarity of 0 rather
// than an error so a single degenerate row cannot fail a whole query.
func cosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", domain.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		normA += va * va
		normB += vb * vb
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// vecCosineSimilarityFn is the SQL scalar function behind accelerated
// ranking. Both arguments are embedding BLOBs.
func vecCosineSimilarityFn(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("%s: expected 2 arguments, got %d", vectorFunctionName, len(args))
	}

	a, err := blobToVector(args[0])
	if err != nil {
		return nil, err
	}
	b, err := blobToVector(args[1])
	if err != nil {
		return nil, err
	}
	if a == nil || b == nil {
		return nil, nil
	}

	return cosineSimilarity(a, b)
}

// blobToVector coerces a driver value to an embedding vector.
func blobToVector(arg driver.Value) ([]float32, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case []byte:
		return decodeVector(v)
	default:
		return nil, fmt.Errorf("%s: unsupported argument type %T, want BLOB", vectorFunctionName, arg)
	}
}
