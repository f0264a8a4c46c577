package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// Document is a decoded snapshot plus its server timestamps.
type Document[T any] struct {
	ID         string
	Data       T
	CreateTime time.Time
	UpdateTime time.Time
}

// QueryBuilder narrows a collection query.
type QueryBuilder func(query firestore.Query) firestore.Query

// BaseRepository gives typed access to one collection. T must carry firestore struct tags.
type BaseRepository[T any] struct {
	provider   *Provider
	collection string
}

// NewBaseRepository binds a repository to collection.
func NewBaseRepository[T any](provider *Provider, collection string) *BaseRepository[T] {
	return &BaseRepository[T]{provider: provider, collection: strings.TrimSpace(collection)}
}

// Collection returns the bound collection name.
func (r *BaseRepository[T]) Collection() string { return r.collection }

// Create writes value under id and fails with a conflict if the document exists.
func (r *BaseRepository[T]) Create(ctx context.Context, id string, value T) error {
	doc, err := r.doc(ctx, id)
	if err != nil {
		return err
	}
	if _, err := doc.Create(ctx, value); err != nil {
		return WrapError(r.collection+".create", err)
	}
	return nil
}

// Get loads and decodes the document id.
func (r *BaseRepository[T]) Get(ctx context.Context, id string) (Document[T], error) {
	doc, err := r.doc(ctx, id)
	if err != nil {
		return Document[T]{}, err
	}
	snap, err := doc.Get(ctx)
	if err != nil {
		return Document[T]{}, WrapError(r.collection+".get", err)
	}
	return decode[T](snap)
}

// Query runs build against the collection and decodes every result.
func (r *BaseRepository[T]) Query(ctx context.Context, build QueryBuilder) ([]Document[T], error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	query := coll.Query
	if build != nil {
		query = build(query)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var docs []Document[T]
	for {
		snap, err := iter.Next()
		if isDone(err) {
			return docs, nil
		}
		if err != nil {
			return nil, WrapError(r.collection+".query", err)
		}
		doc, err := decode[T](snap)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
}

func decode[T any](snap *firestore.DocumentSnapshot) (Document[T], error) {
	var data T
	if err := snap.DataTo(&data); err != nil {
		return Document[T]{}, fmt.Errorf("firestore: decode document %s: %w", snap.Ref.ID, err)
	}
	return Document[T]{
		ID:         snap.Ref.ID,
		Data:       data,
		CreateTime: snap.CreateTime,
		UpdateTime: snap.UpdateTime,
	}, nil
}

func (r *BaseRepository[T]) coll(ctx context.Context) (*firestore.CollectionRef, error) {
	if r.provider == nil {
		return nil, errors.New("firestore: provider is nil")
	}
	if r.collection == "" {
		return nil, errors.New("firestore: collection name is required")
	}
	client, err := r.provider.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Collection(r.collection), nil
}

func (r *BaseRepository[T]) doc(ctx context.Context, id string) (*firestore.DocumentRef, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("firestore: document id is required")
	}
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	return coll.Doc(id), nil
}

func isDone(err error) bool {
	return errors.Is(err, iterator.Done)
}
