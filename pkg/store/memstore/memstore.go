// Package memstore is a go-memdb backed Store. Each write runs in a memdb
// write transaction, which gives single-document atomic read-modify-write;
// operations spanning documents are separate transactions.
package memstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"

	"p9e.in/sitecore/pkg/apperr"
	"p9e.in/sitecore/pkg/store"
)

const (
	tableProjects  = "projects"
	tableManpower  = "manpower"
	tableMaterials = "materials"
	tableProgress  = "progress_reports"
	tableFinances  = "finances"
	tableLocations = "staff_locations"

	indexID      = "id"
	indexKey     = "key"
	indexProject = "project"
)

// row is what memdb indexes. Key is the unique business identifier
// (project code, employee ID) and Project the referenced project, either
// of which may be empty.
type row[T any] struct {
	ID      string
	Key     string
	Project string
	Seq     uint64
	Value   T
}

func tableSchema(name string) *memdb.TableSchema {
	return &memdb.TableSchema{
		Name: name,
		Indexes: map[string]*memdb.IndexSchema{
			indexID: {
				Name:    indexID,
				Unique:  true,
				Indexer: &memdb.StringFieldIndex{Field: "ID"},
			},
			indexKey: {
				Name:         indexKey,
				AllowMissing: true,
				Indexer:      &memdb.StringFieldIndex{Field: "Key"},
			},
			indexProject: {
				Name:         indexProject,
				AllowMissing: true,
				Indexer:      &memdb.StringFieldIndex{Field: "Project"},
			},
		},
	}
}

func schema() *memdb.DBSchema {
	s := &memdb.DBSchema{Tables: map[string]*memdb.TableSchema{}}
	for _, name := range []string{tableProjects, tableManpower, tableMaterials, tableProgress, tableFinances, tableLocations} {
		s.Tables[name] = tableSchema(name)
	}
	return s
}

// Store implements store.Store in memory.
type Store struct {
	db  *memdb.MemDB
	seq uint64 // only touched inside write transactions
}

var _ store.Store = (*Store)(nil)

// New creates an empty store.
func New() (*Store, error) {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, fmt.Errorf("memstore: %w", err)
	}
	return &Store{db: db}, nil
}

// table binds a memdb table to an entity type.
type table[T any] struct {
	name    string
	entity  string
	keyName string // field reported on key collisions
	clone   func(T) T
	rowOf   func(*T) (id uuid.UUID, key, project string)
}

func (t table[T]) wrap(s *Store, v *T) *row[T] {
	id, key, project := t.rowOf(v)
	s.seq++
	return &row[T]{ID: id.String(), Key: key, Project: project, Seq: s.seq, Value: t.clone(*v)}
}

func (t table[T]) create(ctx context.Context, s *Store, v *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	txn := s.db.Txn(true)
	defer txn.Abort()

	id, key, _ := t.rowOf(v)
	existing, err := txn.First(t.name, indexID, id.String())
	if err != nil {
		return apperr.Internal("memstore lookup", err)
	}
	if existing != nil {
		return apperr.Conflict(t.entity, "id", id.String())
	}
	if key != "" {
		dup, err := txn.First(t.name, indexKey, key)
		if err != nil {
			return apperr.Internal("memstore lookup", err)
		}
		if dup != nil {
			return apperr.Conflict(t.entity, t.keyName, key)
		}
	}
	if err := txn.Insert(t.name, t.wrap(s, v)); err != nil {
		return apperr.Internal("memstore insert", err)
	}
	txn.Commit()
	return nil
}

func (t table[T]) get(ctx context.Context, s *Store, id uuid.UUID) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	txn := s.db.Txn(false)
	raw, err := txn.First(t.name, indexID, id.String())
	if err != nil {
		return nil, apperr.Internal("memstore lookup", err)
	}
	if raw == nil {
		return nil, apperr.NotFound(t.entity, id.String())
	}
	v := t.clone(raw.(*row[T]).Value)
	return &v, nil
}

// list returns matching rows newest first.
func (t table[T]) list(ctx context.Context, s *Store, index string, args []interface{}, keep func(*T) bool) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	txn := s.db.Txn(false)
	it, err := txn.Get(t.name, index, args...)
	if err != nil {
		return nil, apperr.Internal("memstore scan", err)
	}
	var rows []*row[T]
	for obj := it.Next(); obj != nil; obj = it.Next() {
		r := obj.(*row[T])
		if keep == nil || keep(&r.Value) {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Seq > rows[j].Seq })

	out := make([]T, 0, len(rows))
	for _, r := range rows {
		out = append(out, t.clone(r.Value))
	}
	return out, nil
}

func (t table[T]) update(ctx context.Context, s *Store, id uuid.UUID, fn store.Mutator[T]) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	txn := s.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(t.name, indexID, id.String())
	if err != nil {
		return nil, apperr.Internal("memstore lookup", err)
	}
	if raw == nil {
		return nil, apperr.NotFound(t.entity, id.String())
	}
	old := raw.(*row[T])
	v := t.clone(old.Value)
	if err := fn(&v); err != nil {
		return nil, err
	}

	next := t.wrap(s, &v)
	next.Seq = old.Seq
	if next.Key != old.Key && next.Key != "" {
		dup, err := txn.First(t.name, indexKey, next.Key)
		if err != nil {
			return nil, apperr.Internal("memstore lookup", err)
		}
		if dup != nil {
			return nil, apperr.Conflict(t.entity, t.keyName, next.Key)
		}
	}
	// Insert replaces the row with the same id and reindexes it
	if err := txn.Insert(t.name, next); err != nil {
		return nil, apperr.Internal("memstore insert", err)
	}
	txn.Commit()

	out := t.clone(v)
	return &out, nil
}

func (t table[T]) delete(ctx context.Context, s *Store, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	txn := s.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(t.name, indexID, id.String())
	if err != nil {
		return apperr.Internal("memstore lookup", err)
	}
	if raw == nil {
		return apperr.NotFound(t.entity, id.String())
	}
	if err := txn.Delete(t.name, raw); err != nil {
		return apperr.Internal("memstore delete", err)
	}
	txn.Commit()
	return nil
}

func idString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
