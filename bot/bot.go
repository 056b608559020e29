package bot

import (
	"fmt"

	"dragontiger/config"
	"dragontiger/events"
	"dragontiger/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Bot ties the Discord session to the game services
type Bot struct {
	config         *config.Config
	session        *discordgo.Session
	userService    service.UserService
	bettingService service.BettingService
	roundService   service.RoundService
	eventBus       *events.Bus
}

func New(cfg *config.Config, userService service.UserService, bettingService service.BettingService, roundService service.RoundService, eventBus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	bot := &Bot{
		config:         cfg,
		session:        dg,
		userService:    userService,
		bettingService: bettingService,
		roundService:   roundService,
		eventBus:       eventBus,
	}

	// Register slash command handlers
	dg.AddHandler(bot.handleCommands)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	log.Info("Discord bot connected")

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// Session exposes the underlying Discord session for the announcer
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "bet":
		b.handleBet(s, i)
	case "balance":
		b.handleBalance(s, i)
	case "round":
		b.handleRound(s, i)
	case "history":
		b.handleHistory(s, i)
	case "grant":
		b.handleGrant(s, i)
	}
}
