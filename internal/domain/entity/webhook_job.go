package entity

// WebhookJob is a unit of webhook work handed from the HTTP handlers to the
// queue workers. EventID references the persisted WebhookEvent row.
type WebhookJob struct {
	EventID    string `json:"event_id"`
	Provider   string `json:"provider"`
	EventType  string `json:"event_type"`
	Operation  string `json:"operation,omitempty"`
	ResourceID string `json:"resource_id"`
	TenantID   string `json:"tenant_id,omitempty"`
}
