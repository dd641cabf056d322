package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Command names.
const (
	CmdStart         = "start"
	CmdHelp          = "help"
	CmdMorph         = "morph"
	CmdBecomeChinese = "becomechinese"
	CmdChineseMode   = "chinesemode"
	CmdShodan        = "shodan"
	CmdShodanQuery   = "shodan_query"
	CmdShodanQryAlt  = "shodanquery"
)

// commandHandler is a function that handles a specific bot command.
type commandHandler func(ctx context.Context, msg *tgbotapi.Message)

// commandRegistry holds the mapping of command names to their handlers.
type commandRegistry struct {
	handlers map[string]commandHandler
}

// newCommandRegistry creates a new command registry for the bot.
func (b *Bot) newCommandRegistry() *commandRegistry {
	r := &commandRegistry{
		handlers: make(map[string]commandHandler),
	}

	r.handlers[CmdStart] = b.handleHelp
	r.handlers[CmdHelp] = b.handleHelp

	r.handlers[CmdMorph] = b.handleMorph
	r.handlers[CmdBecomeChinese] = b.handleBecomeChinese
	r.handlers[CmdChineseMode] = b.handleChineseMode

	r.handlers[CmdShodan] = b.handleShodan
	r.handlers[CmdShodanQuery] = b.handleShodanQuery
	r.handlers[CmdShodanQryAlt] = b.handleShodanQuery

	return r
}

// route handles the command routing for a message.
func (r *commandRegistry) route(ctx context.Context, msg *tgbotapi.Message) bool {
	if handler, ok := r.handlers[msg.Command()]; ok {
		handler(ctx, msg)

		return true
	}

	return false
}
