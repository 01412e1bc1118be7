package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"odontologia/models"
)

// FirestoreStore keeps the site document in Cloud Firestore, at
// siteContent/main.
type FirestoreStore struct {
	client     *firestore.Client
	ref        *firestore.DocumentRef
	retryDelay time.Duration
}

// NewFirestoreClient creates a Firestore client for the given project ID.
func NewFirestoreClient(ctx context.Context, projectID string, opts ...option.ClientOption) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	return client, nil
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{
		client:     client,
		ref:        client.Collection(models.DocumentCollection).Doc(models.DocumentID),
		retryDelay: 5 * time.Second,
	}
}

func (f *FirestoreStore) Close() error {
	return f.client.Close()
}

func (f *FirestoreStore) Get(ctx context.Context) (Snapshot, error) {
	snap, err := f.ref.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to get site document: %w", err)
	}
	return decodeSnapshot(snap)
}

func (f *FirestoreStore) Set(ctx context.Context, data models.SiteData) (int64, error) {
	res, err := f.ref.Set(ctx, data)
	if err != nil {
		return 0, fmt.Errorf("failed to set site document: %w", err)
	}
	return res.UpdateTime.UnixNano(), nil
}

func (f *FirestoreStore) Update(ctx context.Context, updates []Update) (int64, error) {
	fsUpdates := make([]firestore.Update, 0, len(updates))
	for _, u := range updates {
		// FieldPath instead of a dotted string: slot names carry dashes
		fsUpdates = append(fsUpdates, firestore.Update{FieldPath: firestore.FieldPath(u.Path), Value: u.Value})
	}

	res, err := f.ref.Update(ctx, fsUpdates)
	if status.Code(err) == codes.NotFound {
		return 0, ErrDocumentNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to update site document: %w", err)
	}
	return res.UpdateTime.UnixNano(), nil
}

func (f *FirestoreStore) Listen(ctx context.Context, onSnapshot func(Snapshot), onError func(error)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	subscribe := func(ctx context.Context) snapshotIterator {
		return firestoreIterator{f.ref.Snapshots(ctx)}
	}
	go listenWithRetry(ctx, subscribe, f.retryDelay, onSnapshot, onError)
	return cancel, nil
}

// snapshotIterator is the part of a document listener listenWithRetry needs.
type snapshotIterator interface {
	Next() (Snapshot, error)
	Stop()
}

type firestoreIterator struct {
	it *firestore.DocumentSnapshotIterator
}

func (i firestoreIterator) Next() (Snapshot, error) {
	snap, err := i.it.Next()
	if err != nil {
		return Snapshot{}, err
	}
	return decodeSnapshot(snap)
}

func (i firestoreIterator) Stop() { i.it.Stop() }

// errDecode marks a snapshot that arrived but could not be read; the
// subscription itself is still healthy.
type errDecode struct{ err error }

func (e errDecode) Error() string { return e.err.Error() }
func (e errDecode) Unwrap() error { return e.err }

// listenWithRetry consumes snapshots until ctx is done. An iterator is
// unusable after an error, so a failed subscription is reopened after delay.
func listenWithRetry(ctx context.Context, subscribe func(context.Context) snapshotIterator, delay time.Duration, onSnapshot func(Snapshot), onError func(error)) {
	for {
		it := subscribe(ctx)
		err := drain(ctx, it, onSnapshot, onError)
		it.Stop()
		if ctx.Err() != nil {
			return
		}

		onError(fmt.Errorf("site document listener failed, resubscribing in %s: %w", delay, err))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
	}
}

func drain(ctx context.Context, it snapshotIterator, onSnapshot func(Snapshot), onError func(error)) error {
	for {
		snap, err := it.Next()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var decodeErr errDecode
		if errors.As(err, &decodeErr) {
			onError(decodeErr.err)
			continue
		}
		if err != nil {
			return err
		}
		onSnapshot(snap)
	}
}

func decodeSnapshot(snap *firestore.DocumentSnapshot) (Snapshot, error) {
	if snap == nil || !snap.Exists() {
		return Snapshot{}, nil
	}

	var data models.SiteData
	if err := snap.DataTo(&data); err != nil {
		return Snapshot{}, errDecode{fmt.Errorf("failed to decode site document: %w", err)}
	}
	return Snapshot{Exists: true, Data: data, Version: snap.UpdateTime.UnixNano()}, nil
}
