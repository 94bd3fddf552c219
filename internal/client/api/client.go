package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pion/webrtc/v4"
)

// requestTimeout bounds the completion call so a stalled backend surfaces
// as a retryable error instead of waiting indefinitely.
const requestTimeout = 10 * time.Second

// JoinDetails is the one-shot join payload. Consume it exactly once: the
// token it carries is scoped to a single room entry.
type JoinDetails struct {
	URL                 string `json:"url"`
	Token               string `json:"token"`
	RoomName            string `json:"roomName"`
	ParticipantIdentity string `json:"participantIdentity"`
	IsInterviewer       bool   `json:"isInterviewer"`
	Counterpart         struct {
		Sender   string `json:"sender"`
		Receiver string `json:"receiver"`
	} `json:"counterpart"`
	ICEServers []webrtc.ICEServer `json:"iceServers"`
}

// Client talks to the interview service on behalf of one participant.
type Client struct {
	baseURL       string
	participantID string
	http          *http.Client
}

func NewClient(baseURL, participantID string) *Client {
	return &Client{
		baseURL:       baseURL,
		participantID: participantID,
		http:          &http.Client{Timeout: requestTimeout},
	}
}

// JoinRoom fetches the connection credentials for an interview room.
func (c *Client) JoinRoom(ctx context.Context, interviewID string) (*JoinDetails, error) {
	var details JoinDetails

	err := c.post(ctx, fmt.Sprintf("/api/v1/interviews/%s/join", interviewID), &details)
	if err != nil {
		return nil, fmt.Errorf("join room: %w", err)
	}

	return &details, nil
}

// CompleteInterview marks the interview finished server-side. Implements
// the finish.Completer contract.
func (c *Client) CompleteInterview(ctx context.Context, interviewID string) error {
	err := c.post(ctx, fmt.Sprintf("/api/v1/interviews/%s/complete", interviewID), nil)
	if err != nil {
		return fmt.Errorf("complete interview: %w", err)
	}

	return nil
}

func (c *Client) post(ctx context.Context, path string, out any) error {
	body, err := json.Marshal(map[string]string{"participant_id": c.participantID})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}

		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr.Error)
		}

		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
