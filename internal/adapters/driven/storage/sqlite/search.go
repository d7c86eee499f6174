package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/docuchat-labs/docuchat/internal/core/domain"
	"github.com/docuchat-labs/docuchat/internal/core/ports/driven"
)

// Ensure Store implements the search engine interface.
var _ driven.SearchEngine = (*Store)(nil)

// searchAcceleratedQuery ranks every stored embedding by similarity in
// SQL, truncates to the requested limit, and only then applies the
// threshold. Filtering after truncation means a generous threshold can
// never pull in rows beyond the top-N ranking.
const searchAcceleratedQuery = `
WITH matches AS (
	SELECT rowid, ` + vectorFunctionName + `(embedding, ?) AS similarity
	FROM vss_embeddings
	ORDER BY similarity DESC
	LIMIT ?
)
SELECT c.id, c.content, c.document_id, m.similarity, v.embedding
FROM matches m
JOIN chunks c ON c.rowid = m.rowid
JOIN vss_embeddings v ON v.rowid = m.rowid
WHERE m.similarity >= ?`

// SearchSimilar returns up to limit chunks ranked by cosine similarity
// to the query vector, keeping only results at or above the threshold.
// A nil thresholdOverride uses the store's default.
func (s *Store) SearchSimilar(ctx context.Context, query []float32, limit int, thresholdOverride *float64) ([]domain.SearchResult, error) {
	if !s.vectorTable {
		return nil, fmt.Errorf("%w: %s", domain.ErrVectorSearchUnavailable, s.degradation)
	}
	if len(query) != s.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, store configured for %d",
			domain.ErrDimensionMismatch, len(query), s.dims)
	}
	if limit <= 0 {
		return []domain.SearchResult{}, nil
	}

	threshold := s.defaultThreshold
	if thresholdOverride != nil {
		threshold = *thresholdOverride
	}

	var results []domain.SearchResult
	err := s.withConn(ctx, func(ctx context.Context, db *sql.DB) error {
		var err error
		if s.accelerated {
			results, err = s.searchAccelerated(ctx, db, query, limit, threshold)
		} else {
			results, err = s.searchBruteForce(ctx, db, query, limit, threshold)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	// Ranking already happened in the query or the scan; keep the
	// ordering guarantee explicit regardless of which path produced it.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	return results, nil
}

func (s *Store) searchAccelerated(ctx context.Context, db *sql.DB, query []float32, limit int, threshold float64) ([]domain.SearchResult, error) {
	rows, err := db.QueryContext(ctx, searchAcceleratedQuery, encodeVector(query), limit, threshold)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	results := []domain.SearchResult{}
	for rows.Next() {
		var r domain.SearchResult
		var blob []byte
		if err := rows.Scan(&r.ChunkID, &r.Content, &r.DocumentID, &r.Similarity, &blob); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		if r.Embedding, err = decodeVector(blob); err != nil {
			return nil, fmt.Errorf("chunk %s: %w", r.ChunkID, err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading search results: %w", err)
	}
	return results, nil
}

// searchBruteForce scans every stored embedding and ranks in Go. Used
// when the similarity function could not be registered with the driver;
// same results as the accelerated path, just slower on large stores.
func (s *Store) searchBruteForce(ctx context.Context, db *sql.DB, query []float32, limit int, threshold float64) ([]domain.SearchResult, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT c.id, c.content, c.document_id, v.embedding
		FROM vss_embeddings v
		JOIN chunks c ON c.rowid = v.rowid`)
	if err != nil {
		return nil, fmt.Errorf("scanning embeddings: %w", err)
	}
	defer rows.Close()

	var candidates []domain.SearchResult
	for rows.Next() {
		var r domain.SearchResult
		var blob []byte
		if err := rows.Scan(&r.ChunkID, &r.Content, &r.DocumentID, &blob); err != nil {
			return nil, fmt.Errorf("scanning embedding row: %w", err)
		}
		if r.Embedding, err = decodeVector(blob); err != nil {
			return nil, fmt.Errorf("chunk %s: %w", r.ChunkID, err)
		}
		if r.Similarity, err = cosineSimilarity(r.Embedding, query); err != nil {
			return nil, fmt.Errorf("chunk %s: %w", r.ChunkID, err)
		}
		candidates = append(candidates, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading embeddings: %w", err)
	}

	// Mirror the SQL path exactly: rank, truncate, then filter.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	results := []domain.SearchResult{}
	for _, r := range candidates {
		if r.Similarity >= threshold {
			results = append(results, r)
		}
	}
	return results, nil
}
