package recordlog

import (
	"strings"
	"time"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
	"github.com/AntonStoeckl/schedulestore-go/shared/shell"
)

// GenerateNamePrefix is the prefix of generated log names.
const GenerateNamePrefix = "schedule-log-"

// BuildLog validates the command and creates the log to store.
//
// Text values are trimmed. Details with both field and label blank are dropped, and an empty
// detail list is stored as absent.
func BuildLog(command Command, operator string, now time.Time) (*schedulestore.Log, error) {
	actionType := strings.TrimSpace(command.ActionType)
	if actionType == "" {
		return nil, shell.NewInputError("actionType must not be blank")
	}

	operator = strings.TrimSpace(operator)
	if operator == "" {
		operator = shell.UnknownOperator
	}

	return &schedulestore.Log{
		Metadata: schedulestore.Metadata{GenerateName: GenerateNamePrefix},
		Spec: schedulestore.LogSpec{
			ActionType:   actionType,
			Operator:     operator,
			ActionAt:     now.UTC().Format(time.RFC3339Nano),
			CalendarName: strings.TrimSpace(command.CalendarName),
			EventName:    strings.TrimSpace(command.EventName),
			EventTitle:   strings.TrimSpace(command.EventTitle),
			Keyword:      strings.TrimSpace(command.Keyword),
			Summary:      strings.TrimSpace(command.Summary),
			Details:      mapDetails(command.Details),
		},
	}, nil
}

func mapDetails(details []DetailCommand) []schedulestore.ChangeDetail {
	var mapped []schedulestore.ChangeDetail

	for _, detail := range details {
		field := strings.TrimSpace(detail.Field)
		label := strings.TrimSpace(detail.Label)

		if field == "" && label == "" {
			continue
		}

		mapped = append(mapped, schedulestore.ChangeDetail{
			Field:    field,
			Label:    label,
			OldValue: strings.TrimSpace(detail.OldValue),
			NewValue: strings.TrimSpace(detail.NewValue),
		})
	}

	return mapped
}
