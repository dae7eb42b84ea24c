package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/transcodehub/transcodebot/internal/models"
)

const (
	callbackOpSubtitles  = "op:subtitles"
	callbackOpResolution = "op:resolution"
	callbackCancel       = "cancel"
	callbackResPrefix    = "res:"
	callbackSetPrefix    = "set:"
)

func operationKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Burn subtitles", callbackOpSubtitles),
			tgbotapi.NewInlineKeyboardButtonData("Change resolution", callbackOpResolution),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Cancel", callbackCancel),
		),
	)
}

func resolutionKeyboard() tgbotapi.InlineKeyboardMarkup {
	all := models.Resolutions()
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(all)/2+1)
	for i := 0; i < len(all); i += 2 {
		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(all[i].Label(), callbackResPrefix+string(all[i])),
		}
		if i+1 < len(all) {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(all[i+1].Label(), callbackResPrefix+string(all[i+1])))
		}
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Cancel", callbackCancel),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func cancelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Cancel", callbackCancel),
		),
	)
}

func settingsKeyboard(prefs *models.UserSettings) tgbotapi.InlineKeyboardMarkup {
	uploadLabel := "Receive as: video"
	uploadAction := callbackSetPrefix + "upload:document"
	if prefs.UploadType == models.UploadTypeDocument {
		uploadLabel = "Receive as: document"
		uploadAction = callbackSetPrefix + "upload:video"
	}

	notifyLabel := "Completion note: on"
	notifyAction := callbackSetPrefix + "notify:off"
	if !prefs.NotifyDone {
		notifyLabel = "Completion note: off"
		notifyAction = callbackSetPrefix + "notify:on"
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(uploadLabel, uploadAction),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(notifyLabel, notifyAction),
		),
	)
}
