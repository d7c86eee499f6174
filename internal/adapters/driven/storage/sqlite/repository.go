package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/docuchat-labs/docuchat/internal/core/domain"
	"github.com/docuchat-labs/docuchat/internal/core/ports/driven"
)

// Ensure Store implements the repository interface.
var _ driven.DocumentStore = (*Store)(nil)

// InsertDocument stores a new document. A duplicate primary key surfaces
// as domain.ErrConflict; it is never swallowed.
func (s *Store) InsertDocument(ctx context.Context, doc *domain.Document) error {
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	return s.withConn(ctx, func(ctx context.Context, db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO documents (id, name, type, size, file_hash, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, doc.ID, doc.Name, doc.Type, doc.Size, nullString(doc.FileHash), doc.CreatedAt)

		if isConstraint(err, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE) {
			return fmt.Errorf("document %s: %w", doc.ID, domain.ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("inserting document: %w", err)
		}
		return nil
	})
}

// InsertChunks stores an ordered batch of chunks inside one transaction.
// Any single failure rolls back the entire batch; a concurrent reader
// never observes partial ingestion.
func (s *Store) InsertChunks(ctx context.Context, chunks []domain.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	err := s.withConn(ctx, func(ctx context.Context, db *sql.DB) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning transaction: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO chunks (id, document_id, content, created_at)
			VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing statement: %w", err)
		}
		defer stmt.Close()

		now := time.Now().UTC()
		for _, chunk := range chunks {
			createdAt := chunk.CreatedAt
			if createdAt.IsZero() {
				createdAt = now
			}
			if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID, chunk.Content, createdAt); err != nil {
				if isConstraint(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY) {
					return fmt.Errorf("chunk %s references document %s: %w",
						chunk.ID, chunk.DocumentID, domain.ErrNotFound)
				}
				if isConstraint(err, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE) {
					return fmt.Errorf("chunk %s: %w", chunk.ID, domain.ErrConflict)
				}
				return fmt.Errorf("inserting chunk: %w", err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// GetDocuments returns all documents ordered by creation time, most
// recent first.
func (s *Store) GetDocuments(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document
	err := s.withConn(ctx, func(ctx context.Context, db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `
			SELECT id, name, type, size, file_hash, created_at
			FROM documents
			ORDER BY created_at DESC, rowid DESC
		`)
		if err != nil {
			return fmt.Errorf("querying documents: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			doc, err := scanDocument(rows)
			if err != nil {
				return err
			}
			docs = append(docs, *doc)
		}

		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterating documents: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// FindDocumentByHash returns the first document with the given content
// hash, or nil when no document matches. Hashes are not unique; this is
// an exact-duplicate lookup used before re-ingesting identical content.
func (s *Store) FindDocumentByHash(ctx context.Context, hash string) (*domain.Document, error) {
	if hash == "" {
		return nil, nil
	}

	var doc *domain.Document
	err := s.withConn(ctx, func(ctx context.Context, db *sql.DB) error {
		row := db.QueryRowContext(ctx, `
			SELECT id, name, type, size, file_hash, created_at
			FROM documents WHERE file_hash = ? LIMIT 1
		`, hash)

		d, err := scanDocumentRow(row)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		doc = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// DeleteDocument removes a document, its chunks, and their embeddings in
// one transaction. The relational cascade only covers chunks; embeddings
// live in a separate row space and are deleted explicitly first. Deleting
// an unknown ID is a no-op success.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	return s.withConn(ctx, func(ctx context.Context, db *sql.DB) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning transaction: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck

		if s.vectorTable {
			rowids, err := chunkRowIDs(ctx, tx, id)
			if err != nil {
				return err
			}
			if len(rowids) > 0 {
				placeholders := strings.TrimSuffix(strings.Repeat("?,", len(rowids)), ",")
				args := make([]any, len(rowids))
				for i, rid := range rowids {
					args[i] = rid
				}
				if _, err := tx.ExecContext(ctx,
					"DELETE FROM vss_embeddings WHERE rowid IN ("+placeholders+")", args...); err != nil {
					return fmt.Errorf("deleting embeddings: %w", err)
				}
			}
		}

		// Chunks go with the document via the foreign-key cascade.
		if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id); err != nil {
			return fmt.Errorf("deleting document: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing transaction: %w", err)
		}
		return nil
	})
}

// chunkRowIDs resolves the internal row references of a document's chunks.
func chunkRowIDs(ctx context.Context, tx *sql.Tx, documentID string) ([]int64, error) {
	rows, err := tx.QueryContext(ctx, "SELECT rowid FROM chunks WHERE document_id = ?", documentID)
	if err != nil {
		return nil, fmt.Errorf("resolving chunk rowids: %w", err)
	}
	defer rows.Close()

	var rowids []int64
	for rows.Next() {
		var rid int64
		if err := rows.Scan(&rid); err != nil {
			return nil, fmt.Errorf("scanning chunk rowid: %w", err)
		}
		rowids = append(rowids, rid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunk rowids: %w", err)
	}
	return rowids, nil
}

// ==================== Helper Functions ====================

// nullString converts an empty string to NULL for optional columns.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// isConstraint reports whether err is a SQLite constraint violation with
// one of the given extended result codes.
func isConstraint(err error, codes ...int) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	for _, code := range codes {
		if se.Code() == code {
			return true
		}
	}
	return false
}

// scanDocument scans a document from *sql.Rows.
func scanDocument(rows *sql.Rows) (*domain.Document, error) {
	var doc domain.Document
	var fileHash sql.NullString
	var createdAt sql.NullTime

	if err := rows.Scan(&doc.ID, &doc.Name, &doc.Type, &doc.Size, &fileHash, &createdAt); err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.FileHash = fileHash.String
	if createdAt.Valid {
		doc.CreatedAt = createdAt.Time
	}
	return &doc, nil
}

// scanDocumentRow scans a document from *sql.Row.
func scanDocumentRow(row *sql.Row) (*domain.Document, error) {
	var doc domain.Document
	var fileHash sql.NullString
	var createdAt sql.NullTime

	if err := row.Scan(&doc.ID, &doc.Name, &doc.Type, &doc.Size, &fileHash, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.FileHash = fileHash.String
	if createdAt.Valid {
		doc.CreatedAt = createdAt.Time
	}
	return &doc, nil
}
