package gcp

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/Lllllllleong/pdfsplit/internal/models"
)

// NewFirestoreClient creates and returns a new Firestore client for the given project ID.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return client, nil
}

// FirestoreJobStore keeps one document per split job.
type FirestoreJobStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreJobStore stores jobs in collection.
func NewFirestoreJobStore(client *firestore.Client, collection string) *FirestoreJobStore {
	return &FirestoreJobStore{client: client, collection: collection}
}

// FindByHash returns the ID of a job for a file with the same content.
func (s *FirestoreJobStore) FindByHash(ctx context.Context, fileHash string) (string, bool, error) {
	iter := s.client.Collection(s.collection).Where("fileHash", "==", fileHash).Limit(1).Documents(ctx)
	defer iter.Stop()
	doc, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query for duplicates: %w", err)
	}
	return doc.Ref.ID, true, nil
}

// Create writes the initial job document under id.
func (s *FirestoreJobStore) Create(ctx context.Context, id string, job models.Job) error {
	if _, err := s.client.Collection(s.collection).Doc(id).Set(ctx, job); err != nil {
		return fmt.Errorf("failed to create job document: %w", err)
	}
	return nil
}

// Update sets the given top-level fields on the job document.
func (s *FirestoreJobStore) Update(ctx context.Context, id string, fields map[string]any) error {
	updates := make([]firestore.Update, 0, len(fields))
	for path, value := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	if _, err := s.client.Collection(s.collection).Doc(id).Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to update job document: %w", err)
	}
	return nil
}
