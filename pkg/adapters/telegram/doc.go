// Package telegram connects the conversation engine to the Telegram Bot API via telebot.
//
// Inbound updates (text messages and inline button presses) become domain events;
// outbound domain.ActionRequest values become sendMessage, sendPhoto, deleteMessage and
// answerCallbackQuery calls.
package telegram
