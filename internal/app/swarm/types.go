package swarm

import "panquiz-swarm/internal/session"

type JoinRequest struct {
	PinCode    string `json:"pinCode"`
	PlayerName string `json:"playerName"`
	Owner      string `json:"owner,omitempty"`
	AutoAnswer bool   `json:"autoAnswer"`
}

type BulkJoinRequest struct {
	PinCode    string   `json:"pinCode"`
	BotNames   []string `json:"botNames"`
	Owner      string   `json:"owner,omitempty"`
	AutoAnswer bool     `json:"autoAnswer"`
}

type BulkJoinItem struct {
	Name      string `json:"name"`
	SessionID string `json:"session_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

type BulkJoinResponse struct {
	GameID string         `json:"game_id"`
	Items  []BulkJoinItem `json:"items"`
	Joined int            `json:"joined"`
	Failed int            `json:"failed"`
}

type SessionsResponse struct {
	Items []session.Snapshot `json:"items"`
}

type AnswerResult struct {
	Sent       bool `json:"sent"`
	WasCorrect bool `json:"was_correct"`
}

type BulkDisconnectResponse struct {
	Disconnected []string `json:"disconnected"`
	Missing      []string `json:"missing"`
}
