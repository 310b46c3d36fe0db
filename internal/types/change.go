package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Payload is the typed state carried by a pending change.
// Each category has exactly one payload variant.
type Payload interface {
	Category() Category
}

// HomepagePayload carries a full homepage document
type HomepagePayload struct {
	Config HomepageConfig `json:"config"`
}

// Category implements Payload
func (*HomepagePayload) Category() Category { return CategoryHomepage }

// SettingsPayload carries the full site settings document
type SettingsPayload struct {
	Settings SiteSettings `json:"settings"`
}

// Category implements Payload
func (*SettingsPayload) Category() Category { return CategorySettings }

// ContentPayload carries the markdown body of a single post
type ContentPayload struct {
	Slug    string `json:"slug" validate:"required,slug"`
	Content string `json:"content"`
}

// Category implements Payload
func (*ContentPayload) Category() Category { return CategoryContent }

// PendingChange is one uncommitted edit held by the admin ledger
type PendingChange struct {
	ID              string
	Category        Category
	Description     string
	Payload         Payload
	OriginalPayload Payload // nil when no prior state was captured
	CreatedAt       time.Time
}

// HasOriginal reports whether the change can be undone
func (c PendingChange) HasOriginal() bool {
	return c.OriginalPayload != nil
}

// Summary returns the one-line form used in commit messages and audit records
func (c PendingChange) Summary() string {
	return fmt.Sprintf("%s: %s", c.Category, c.Description)
}

type pendingChangeJSON struct {
	ID              string          `json:"id"`
	Category        Category        `json:"category"`
	Description     string          `json:"description"`
	Payload         json.RawMessage `json:"payload"`
	OriginalPayload json.RawMessage `json:"originalPayload,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// MarshalJSON implements json.Marshaler
func (c PendingChange) MarshalJSON() ([]byte, error) {
	out := pendingChangeJSON{
		ID:          c.ID,
		Category:    c.Category,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
	}

	var err error
	if out.Payload, err = json.Marshal(c.Payload); err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	if c.OriginalPayload != nil {
		if out.OriginalPayload, err = json.Marshal(c.OriginalPayload); err != nil {
			return nil, fmt.Errorf("failed to marshal original payload: %w", err)
		}
	}

	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler. The payload variant is chosen by category.
func (c *PendingChange) UnmarshalJSON(data []byte) error {
	var in pendingChangeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	if !in.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, in.Category)
	}

	payload, err := DecodePayload(in.Category, in.Payload)
	if err != nil {
		return fmt.Errorf("payload: %w", err)
	}
	if payload == nil {
		return fmt.Errorf("payload: %w", ErrPayloadMismatch)
	}

	original, err := DecodePayload(in.Category, in.OriginalPayload)
	if err != nil {
		return fmt.Errorf("originalPayload: %w", err)
	}

	*c = PendingChange{
		ID:              in.ID,
		Category:        in.Category,
		Description:     in.Description,
		Payload:         payload,
		OriginalPayload: original,
		CreatedAt:       in.CreatedAt,
	}
	return nil
}

// DecodePayload decodes raw into the payload variant of category.
// An absent or null raw value yields a nil payload.
func DecodePayload(category Category, raw json.RawMessage) (Payload, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var p Payload
	switch category {
	case CategoryHomepage:
		p = &HomepagePayload{}
	case CategorySettings:
		p = &SettingsPayload{}
	case CategoryContent:
		p = &ContentPayload{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPayloadMismatch, err)
	}
	return p, nil
}

// DeployRequest is the body of a batch deploy call
type DeployRequest struct {
	Changes []PendingChange `json:"changes"`
}

// DeployResponse is the result of a batch deploy call
type DeployResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	DeploymentID string `json:"deploymentId,omitempty"`
	ChangeCount  int    `json:"changeCount,omitempty"`
	Commit       string `json:"commit,omitempty"`
	Warning      string `json:"warning,omitempty"`
}

// AuditStatus is the status stored in an audit record
type AuditStatus string

const (
	AuditStatusPending AuditStatus = "pending"
)

// AuditRecord is the immutable log entry written for every batch deploy
type AuditRecord struct {
	DeploymentID string        `json:"deploymentId"`
	Timestamp    time.Time     `json:"timestamp"`
	Status       AuditStatus   `json:"status"`
	Changes      []AuditChange `json:"changes"`
}

// AuditChange summarises one change of a batch
type AuditChange struct {
	ID          string    `json:"id"`
	Category    Category  `json:"category"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// DeployEvent is emitted to deploy hooks after a batch was committed
type DeployEvent struct {
	DeploymentID string        `json:"deploymentId"`
	Outcome      string        `json:"outcome"`
	Commit       string        `json:"commit,omitempty"`
	Warning      string        `json:"warning,omitempty"`
	Changes      []AuditChange `json:"changes"`
	Timestamp    time.Time     `json:"timestamp"`
}
