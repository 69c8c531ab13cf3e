// Package storage persists in-progress rule drafts so an operator can leave
// the editor and resume later. Persisted rules themselves live in the remote
// rule engine and are never cached here.
package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/shettyvedanth21/Factory-Copilot/internal/rules"
)

// DraftRecord is one saved draft. Payload is the serialized rules.Draft.
type DraftRecord struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"ownerId"`
	Name      string          `json:"name"`
	Payload   json.RawMessage `json:"payload"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Draft decodes the stored payload.
func (r DraftRecord) Draft() (rules.Draft, error) {
	var d rules.Draft
	if err := json.Unmarshal(r.Payload, &d); err != nil {
		return rules.Draft{}, err
	}
	return d, nil
}

type Repository struct {
	Store *Store
}

func NewRepository(store *Store) *Repository {
	return &Repository{Store: store}
}

// SaveDraft upserts a draft for its owner. An empty id creates a new record.
func (r *Repository) SaveDraft(ctx context.Context, ownerID, id string, draft rules.Draft) (DraftRecord, error) {
	payload, err := json.Marshal(draft)
	if err != nil {
		return DraftRecord{}, err
	}
	if id == "" {
		id = uuid.NewString()
	}
	_, err = r.Store.Pool.Exec(ctx, `
		INSERT INTO console_drafts (id, owner_id, name, payload, updated_at)
		VALUES ($1,$2,$3,$4,now())
		ON CONFLICT (id) DO UPDATE SET name=$3, payload=$4, updated_at=now()`,
		id, ownerID, draft.Name, payload,
	)
	if err != nil {
		return DraftRecord{}, err
	}
	return r.GetDraft(ctx, ownerID, id)
}

// GetDraft fetches one draft owned by ownerID.
func (r *Repository) GetDraft(ctx context.Context, ownerID, id string) (DraftRecord, error) {
	row := r.Store.Pool.QueryRow(ctx, `
		SELECT id, owner_id, name, payload, updated_at
		FROM console_drafts WHERE id=$1 AND owner_id=$2`, id, ownerID)
	var rec DraftRecord
	if err := row.Scan(&rec.ID, &rec.OwnerID, &rec.Name, &rec.Payload, &rec.UpdatedAt); err != nil {
		return DraftRecord{}, ErrNotFound
	}
	return rec, nil
}

// ListDrafts returns the owner's drafts, most recently touched first.
func (r *Repository) ListDrafts(ctx context.Context, ownerID string) ([]DraftRecord, error) {
	rows, err := r.Store.Pool.Query(ctx, `
		SELECT id, owner_id, name, payload, updated_at
		FROM console_drafts WHERE owner_id=$1 ORDER BY updated_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	results := []DraftRecord{}
	for rows.Next() {
		var rec DraftRecord
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &rec.Name, &rec.Payload, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		results = append(results, rec)
	}
	return results, nil
}

// DeleteDraft removes a draft, typically after a successful rule submission.
func (r *Repository) DeleteDraft(ctx context.Context, ownerID, id string) error {
	tag, err := r.Store.Pool.Exec(ctx, `DELETE FROM console_drafts WHERE id=$1 AND owner_id=$2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
