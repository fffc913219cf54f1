package recordlog

import (
	"errors"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/schedulestore-go/shared/shell"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Command is the request to record a log. Its JSON form is the request body of the log endpoint.
type Command struct {
	ActionType   string          `json:"actionType"`
	CalendarName string          `json:"calendarName,omitempty"`
	EventName    string          `json:"eventName,omitempty"`
	EventTitle   string          `json:"eventTitle,omitempty"`
	Keyword      string          `json:"keyword,omitempty"`
	Summary      string          `json:"summary,omitempty"`
	Details      []DetailCommand `json:"details,omitempty"`
}

type DetailCommand struct {
	Field    string `json:"field"`
	Label    string `json:"label"`
	OldValue string `json:"oldValue,omitempty"`
	NewValue string `json:"newValue,omitempty"`
}

func (c Command) CommandType() string {
	return "RecordLog"
}

func BuildCommand(actionType string, details ...DetailCommand) Command {
	return Command{ActionType: actionType, Details: details}
}

// DecodeCommand reads a JSON command. An absent or empty body is an input error.
func DecodeCommand(body io.Reader) (Command, error) {
	if body == nil {
		return Command{}, shell.NewInputError("request body is required")
	}

	command := Command{}
	if err := json.NewDecoder(body).Decode(&command); err != nil {
		if errors.Is(err, io.EOF) {
			return Command{}, shell.NewInputError("request body is required")
		}

		return Command{}, shell.NewInputError("malformed request body: %v", err)
	}

	return command, nil
}
