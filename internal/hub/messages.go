package hub

import (
	"encoding/json"
	"errors"
)

// Question is the payload of a ShowQuestion invocation. RightAnswer is an
// N-character bitmask over the answer slots, not an index.
type Question struct {
	QuestionNumber int      `json:"questionNumber"`
	Text           string   `json:"question"`
	Answers        []string `json:"answers"`
	RightAnswer    string   `json:"rightAnswer"`
	MaxAnswers     int      `json:"maxAnswers"`
}

// Restart is the decoded argument list of a PlayAgain invocation.
type Restart struct {
	OldGameID string
	NewGameID string
	Sequence  int
	NewPin    string
}

var errArguments = errors.New("hub: unexpected argument shape")

// ParseQuestion decodes the first argument of a ShowQuestion message.
func ParseQuestion(m *Message) (*Question, error) {
	if len(m.Arguments) < 1 {
		return nil, errArguments
	}
	var q Question
	if err := json.Unmarshal(m.Arguments[0], &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// ParseRestart decodes the arguments of a PlayAgain message.
func ParseRestart(m *Message) (*Restart, error) {
	if len(m.Arguments) < 4 {
		return nil, errArguments
	}
	var r Restart
	if err := json.Unmarshal(m.Arguments[0], &r.OldGameID); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(m.Arguments[1], &r.NewGameID); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(m.Arguments[2], &r.Sequence); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(m.Arguments[3], &r.NewPin); err != nil {
		return nil, err
	}
	return &r, nil
}

// ParseMedalCode decodes the ranking code of a ShowMedal message.
func ParseMedalCode(m *Message) (int, error) {
	if len(m.Arguments) < 1 {
		return 0, errArguments
	}
	var code int
	if err := json.Unmarshal(m.Arguments[0], &code); err != nil {
		return 0, err
	}
	return code, nil
}

// ParseDisconnected decodes the flag of a PlayerDisconnected message.
func ParseDisconnected(m *Message) (bool, error) {
	if len(m.Arguments) < 1 {
		return false, errArguments
	}
	var gone bool
	if err := json.Unmarshal(m.Arguments[0], &gone); err != nil {
		return false, err
	}
	return gone, nil
}
