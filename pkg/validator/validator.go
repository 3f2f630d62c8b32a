package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

func FormatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, fieldError := range validationErrors {
			message := getFieldErrorMessage(fieldError)
			messages = append(messages, message)
		}
		return strings.Join(messages, "; ")
	}
	return err.Error()
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"GuildID":     "guild_id",
		"UserID":      "user_id",
		"ModeratorID": "moderator_id",
		"MessageID":   "message_id",
		"ChannelID":   "channel_id",
		"AuthorID":    "author_id",
		"RoleID":      "role_id",
		"Action":      "action",
		"Command":     "command",
		"Type":        "type",
		"Days":        "days",
		"Limit":       "limit",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}
