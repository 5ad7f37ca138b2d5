package shopbot

// Version is the released version of the bot.
const Version = "0.1.0"
