package pending

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mysocial/auth-front/internal/crypto"
	"github.com/mysocial/auth-front/internal/log"
	"github.com/mysocial/auth-front/internal/params"
)

// pendingLoginEntity is the Firestore document shape. The login parameters
// travel encrypted: state, nonce, and code_challenge must not be readable
// from the datastore.
type pendingLoginEntity struct {
	Payload   string    `firestore:"payload"`
	ExpiresAt time.Time `firestore:"expiresAt"`
}

// FirestoreStore keys pending logins by a digest of their state token, for
// deployments where callbacks may land on a different instance than the one
// that started the flow. Documents expire after TTL; a CleanupManager sweeps
// the stragglers.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
	encryptor  crypto.Encryptor
}

// NewFirestoreStore creates a Firestore-backed pending-login store.
func NewFirestoreStore(ctx context.Context, projectID, database, collection string, encryptor crypto.Encryptor) (*FirestoreStore, error) {
	if encryptor == nil {
		return nil, fmt.Errorf("encryptor is required")
	}
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required")
	}
	if collection == "" {
		return nil, fmt.Errorf("collection is required")
	}

	var client *firestore.Client
	var err error
	if database != "" && database != "(default)" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, database)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return &FirestoreStore{
		client:     client,
		collection: collection,
		encryptor:  encryptor,
	}, nil
}

// docID derives the document key from the state token. The raw state never
// appears as a document ID.
func docID(state string) string {
	sum := sha256.Sum256([]byte(state))
	return hex.EncodeToString(sum[:])
}

// Put writes the encrypted pending login keyed by its state token.
func (fs *FirestoreStore) Put(_ http.ResponseWriter, r *http.Request, p *params.LoginParams) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal pending login: %w", err)
	}

	payload, err := fs.encryptor.Encrypt(string(data))
	if err != nil {
		return fmt.Errorf("failed to encrypt pending login: %w", err)
	}

	entity := pendingLoginEntity{
		Payload:   payload,
		ExpiresAt: time.Now().Add(TTL),
	}

	ctx := r.Context()
	if _, err := fs.client.Collection(fs.collection).Doc(docID(p.State)).Set(ctx, entity); err != nil {
		return fmt.Errorf("failed to store pending login: %w", err)
	}
	return nil
}

// Get returns the pending login for the given state. Unknown, expired, and
// undecryptable documents all read as absent.
func (fs *FirestoreStore) Get(r *http.Request, state string) (*params.LoginParams, bool) {
	if state == "" {
		return nil, false
	}

	ctx := r.Context()
	doc, err := fs.client.Collection(fs.collection).Doc(docID(state)).Get(ctx)
	if err != nil {
		if status.Code(err) != codes.NotFound {
			log.LogErrorWithFields("pending", "Firestore read failed", map[string]any{
				"error": err.Error(),
			})
		}
		return nil, false
	}

	var entity pendingLoginEntity
	if err := doc.DataTo(&entity); err != nil {
		log.LogWarnWithFields("pending", "Corrupt pending login document", map[string]any{
			"error": err.Error(),
		})
		return nil, false
	}

	if time.Now().After(entity.ExpiresAt) {
		return nil, false
	}

	plaintext, err := fs.encryptor.Decrypt(entity.Payload)
	if err != nil {
		log.LogWarnWithFields("pending", "Undecryptable pending login document", map[string]any{
			"error": err.Error(),
		})
		return nil, false
	}

	var p params.LoginParams
	if err := json.Unmarshal([]byte(plaintext), &p); err != nil {
		return nil, false
	}
	return &p, true
}

// Clear deletes the document for the given state. Deleting an unknown state
// is a no-op.
func (fs *FirestoreStore) Clear(_ http.ResponseWriter, r *http.Request, state string) {
	if state == "" {
		return
	}
	if _, err := fs.client.Collection(fs.collection).Doc(docID(state)).Delete(r.Context()); err != nil {
		log.LogWarnWithFields("pending", "Failed to clear pending login", map[string]any{
			"error": err.Error(),
		})
	}
}

// CleanupExpired deletes documents whose expiry has passed and returns the
// number removed. Firestore does not expire documents on its own; Get already
// ignores stale records, this reclaims the space.
func (fs *FirestoreStore) CleanupExpired(ctx context.Context) (int, error) {
	iter := fs.client.Collection(fs.collection).Where("expiresAt", "<", time.Now()).Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return count, fmt.Errorf("error iterating expired pending logins: %w", err)
		}
		if _, err := doc.Ref.Delete(ctx); err != nil {
			return count, fmt.Errorf("error deleting expired pending login: %w", err)
		}
		count++
	}
	return count, nil
}

// Close releases the underlying Firestore client.
func (fs *FirestoreStore) Close() error {
	return fs.client.Close()
}
