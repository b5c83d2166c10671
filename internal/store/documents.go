package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/christopherklint97/plantbill/internal/timesheet"
)

// InsertDocuments stores raw timesheet documents in one transaction.
// Documents without an id get a generated one; a document whose id is
// already stored replaces the stored body. It returns the ids in input order.
func (db *DB) InsertDocuments(ctx context.Context, source string, docs []timesheet.Document) ([]string, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO documents (id, entity_id, date, body, source) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			entity_id = excluded.entity_id,
			date = excluded.date,
			body = excluded.body,
			source = excluded.source,
			imported_at = CURRENT_TIMESTAMP`,
	)
	if err != nil {
		return nil, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		rec := timesheet.Normalize(doc)
		if rec.ID == "" {
			rec.ID = uuid.NewString()
			doc = withID(doc, rec.ID)
		}

		body, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encoding document %s: %w", rec.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, rec.ID, rec.EntityID, rec.Date, string(body), source); err != nil {
			return nil, fmt.Errorf("inserting document %s: %w", rec.ID, err)
		}
		ids = append(ids, rec.ID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing documents: %w", err)
	}
	return ids, nil
}

func withID(doc timesheet.Document, id string) timesheet.Document {
	out := make(timesheet.Document, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	out["id"] = id
	return out
}

// ListDocuments returns the documents dated from..to (inclusive, YYYY-MM-DD)
// in insertion order. An empty entityID matches every entity.
func (db *DB) ListDocuments(ctx context.Context, entityID, from, to string) ([]timesheet.Document, error) {
	query := `SELECT body FROM documents WHERE date >= ? AND date <= ?`
	args := []any{from, to}
	if entityID != "" {
		query += ` AND entity_id = ?`
		args = append(args, entityID)
	}
	query += ` ORDER BY seq ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []timesheet.Document
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		dec := json.NewDecoder(bytes.NewReader([]byte(body)))
		dec.UseNumber()
		var doc timesheet.Document
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding document: %w", err)
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// ListEntities returns the distinct entity ids with documents dated from..to.
func (db *DB) ListEntities(ctx context.Context, from, to string) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT DISTINCT entity_id FROM documents
		 WHERE entity_id != '' AND date >= ? AND date <= ?
		 ORDER BY entity_id ASC`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("querying entities: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning entity: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountDocuments returns the number of stored documents.
func (db *DB) CountDocuments(ctx context.Context) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}
