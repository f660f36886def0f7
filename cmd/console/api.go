package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Action is one selectable option offered by the engine.
type Action struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Narration is one engine message.
type Narration struct {
	Text    string   `json:"text"`
	Image   string   `json:"image,omitempty"`
	Actions []Action `json:"actions,omitempty"`
}

type EventRequest struct {
	UserID string `json:"user_id"`
	Action string `json:"action"`
}

type EventResponse struct {
	Narrations []Narration `json:"narrations"`
}

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// sendEvent posts one action and returns the resulting narrations.
func sendEvent(client *http.Client, baseURL, userID, action string) ([]Narration, error) {
	jsonData, err := json.Marshal(EventRequest{UserID: userID, Action: action})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		baseURL+"/v1/event",
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to send event: %s", errorResp.Error)
	}

	var eventResp EventResponse
	if err := json.Unmarshal(body, &eventResp); err != nil {
		return nil, fmt.Errorf("failed to parse event response: %w", err)
	}
	return eventResp.Narrations, nil
}

// deleteSession restarts the game for a user.
func deleteSession(client *http.Client, baseURL, userID string) error {
	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/v1/session/%s", baseURL, userID), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
