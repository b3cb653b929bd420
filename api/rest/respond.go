package rest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/habitquest/server/game/guild"
	"github.com/habitquest/server/game/nutrition"
	"github.com/habitquest/server/game/quest"
)

// statusFor maps service errors to HTTP status codes. Unknown errors
// are treated as internal.
func statusFor(err error) int {
	switch {
	case errors.Is(err, quest.ErrNotFound),
		errors.Is(err, guild.ErrNotFound),
		errors.Is(err, nutrition.ErrSupplementNotFound),
		errors.Is(err, nutrition.ErrRegimenNotFound):
		return http.StatusNotFound
	case errors.Is(err, quest.ErrInvalidTransition),
		errors.Is(err, guild.ErrQuestNotActive):
		return http.StatusConflict
	case errors.Is(err, quest.ErrTemplateInactive),
		errors.Is(err, quest.ErrLevelTooLow),
		errors.Is(err, quest.ErrUnknownStat),
		errors.Is(err, guild.ErrBadCapacity),
		errors.Is(err, nutrition.ErrInvalidMeal),
		errors.Is(err, nutrition.ErrInvalidTimeOfDay):
		return http.StatusBadRequest
	case errors.Is(err, guild.ErrNameTaken),
		errors.Is(err, guild.ErrAlreadyInGuild),
		errors.Is(err, guild.ErrGuildFull):
		return http.StatusConflict
	case errors.Is(err, guild.ErrNotMember),
		errors.Is(err, guild.ErrNotPermitted),
		errors.Is(err, guild.ErrInvalidJoinCode):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// errMessage hides internals for 500s, passes service messages otherwise.
func errMessage(err error, status int) string {
	if status == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}

// isUniqueViolation detects duplicate-key errors from common database drivers.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") ||
		strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "already exists")
}
