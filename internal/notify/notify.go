package notify

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"
)

const httpTimeout = 5 * time.Second

// Client delivers context-invalidation webhooks to the Juno context
// service so its cached memory references stay consistent. Delivery is
// best-effort and one-directional: failures are logged, never
// propagated to the memory operation that triggered them.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient creates a webhook client for the given context-service base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		http:    &http.Client{Timeout: httpTimeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// DeleteMemoryItem notifies the context service that an item was deleted.
func (c *Client) DeleteMemoryItem(id string) {
	c.post("/context/memory-deleted", map[string]string{"id": id})
}

// ClearMemory notifies the context service that a tier (or everything,
// scope "all") was cleared.
func (c *Client) ClearMemory(scope string) {
	c.post("/context/memory-cleared", map[string]string{"scope": scope})
}

func (c *Client) post(path string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("notify: encode %s: %v", path, err)
		return
	}
	resp, err := c.http.Post(c.baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("notify: POST %s: %v", path, err)
		return
	}
	resp.Body.Close()
	if resp.StatusCode >= 400 {
		log.Printf("notify: POST %s: status %d", path, resp.StatusCode)
	}
}

// LogNotifier stands in when no context service is configured. It keeps
// the notification contract observable in the daemon log.
type LogNotifier struct{}

func (LogNotifier) DeleteMemoryItem(id string) {
	log.Printf("context notify: memory item %s deleted", id)
}

func (LogNotifier) ClearMemory(scope string) {
	log.Printf("context notify: memory cleared (%s)", scope)
}
