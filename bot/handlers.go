package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"dragontiger/bot/common"
	"dragontiger/models"
	"dragontiger/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// parseUserID converts the Discord string ID of the invoker to int64
func parseUserID(i *discordgo.InteractionCreate) (int64, error) {
	return strconv.ParseInt(i.Member.User.ID, 10, 64)
}

func (b *Bot) handleBet(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	userID, err := parseUserID(i)
	if err != nil {
		log.WithError(err).Errorf("Error parsing Discord ID %s", i.Member.User.ID)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var side string
	var amount int64
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "side":
			side = opt.StringValue()
		case "amount":
			amount = opt.IntValue()
		}
	}

	choice, err := models.ParseChoice(side)
	if err != nil {
		common.RespondWithError(s, i, "Pick Dragon, Tiger or Tie.")
		return
	}

	// First interaction creates the player with the starting balance
	if _, err := b.userService.GetOrCreateUser(ctx, userID); err != nil {
		log.WithError(err).Errorf("Error getting/creating user %d", userID)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	status, err := b.roundService.GetRoundStatus(ctx)
	if err != nil {
		log.WithError(err).Error("Error getting round status")
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	receipt, err := b.bettingService.PlaceBet(ctx, status.RoundID, userID, choice, amount)
	if err != nil {
		b.respondWithBetError(s, i, err)
		return
	}

	message := fmt.Sprintf("🎲 Bet accepted for round **#%d**: **%s points** on **%s**. Balance: **%s points**",
		receipt.RoundID, common.FormatBalance(receipt.Amount), receipt.Choice.Label(), common.FormatBalance(receipt.NewBalance))
	if err := common.RespondWithContent(s, i, message, false); err != nil {
		log.WithError(err).Error("Error responding to bet command")
	}
}

// respondWithBetError maps service errors to user-facing messages
func (b *Bot) respondWithBetError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	switch {
	case errors.Is(err, service.ErrRoundNotOpen):
		common.RespondWithError(s, i, "Betting is closed for this round. Wait for the next one.")
	case errors.Is(err, service.ErrAlreadyBet):
		common.RespondWithError(s, i, "You already placed a bet this round.")
	case errors.Is(err, service.ErrInsufficientFunds):
		common.RespondWithError(s, i, "You don't have enough points for that stake.")
	case errors.Is(err, service.ErrInvalidAmount):
		common.RespondWithError(s, i, "Stake must be a positive number of points.")
	case errors.Is(err, service.ErrInvalidChoice):
		common.RespondWithError(s, i, "Pick Dragon, Tiger or Tie.")
	default:
		log.WithError(err).Error("Error placing bet")
		common.RespondWithError(s, i, "Unable to place bet. Please try again.")
	}
}

func (b *Bot) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	userID, err := parseUserID(i)
	if err != nil {
		log.WithError(err).Errorf("Error parsing Discord ID %s", i.Member.User.ID)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	user, err := b.userService.GetOrCreateUser(ctx, userID)
	if err != nil {
		log.WithError(err).Errorf("Error getting user %d", userID)
		common.RespondWithError(s, i, "Unable to retrieve balance. Please try again.")
		return
	}

	message := fmt.Sprintf("<@%s>, your current balance: **%s points**", i.Member.User.ID, common.FormatBalance(user.Balance))
	if err := common.RespondWithContent(s, i, message, false); err != nil {
		log.WithError(err).Error("Error responding to balance command")
	}
}

func (b *Bot) handleRound(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	status, err := b.roundService.GetRoundStatus(ctx)
	if err != nil {
		log.WithError(err).Error("Error getting round status")
		common.RespondWithError(s, i, "Unable to retrieve round status. Please try again.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Round #%d", status.RoundID),
		Color: 0xC0392B,
	}

	if status.Phase == models.PhaseBetting {
		embed.Description = fmt.Sprintf("Betting is **open** — %d seconds remaining.", status.SecondsRemaining)
	} else {
		embed.Description = "Betting is **closed** — revealing shortly."
	}

	if status.LastResult != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Last result",
			Value: status.LastResult,
		})
	}

	if err := common.RespondWithEmbed(s, i, embed, false); err != nil {
		log.WithError(err).Error("Error responding to round command")
	}
}

func (b *Bot) handleHistory(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	outcomes, err := b.roundService.GetRecentOutcomes(ctx, 10)
	if err != nil {
		log.WithError(err).Error("Error getting recent outcomes")
		common.RespondWithError(s, i, "Unable to retrieve history. Please try again.")
		return
	}

	if len(outcomes) == 0 {
		common.RespondWithContent(s, i, "No rounds have settled yet.", true)
		return
	}

	var lines []string
	for _, o := range outcomes {
		lines = append(lines, fmt.Sprintf("`#%d` %s", o.RoundID, o.ResultText()))
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Recent rounds",
		Description: strings.Join(lines, "\n"),
		Color:       0xC0392B,
	}

	if err := common.RespondWithEmbed(s, i, embed, false); err != nil {
		log.WithError(err).Error("Error responding to history command")
	}
}

func (b *Bot) handleGrant(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	callerID, err := parseUserID(i)
	if err != nil {
		log.WithError(err).Errorf("Error parsing Discord ID %s", i.Member.User.ID)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	if !b.config.IsAdmin(callerID) {
		common.RespondWithError(s, i, "You are not allowed to use this command.")
		return
	}

	var amount int64
	var target *discordgo.User
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "user":
			target = opt.UserValue(s)
		case "amount":
			amount = opt.IntValue()
		}
	}

	if target == nil {
		common.RespondWithError(s, i, "Invalid target user.")
		return
	}

	targetID, err := strconv.ParseInt(target.ID, 10, 64)
	if err != nil {
		log.WithError(err).Errorf("Error parsing Discord ID %s", target.ID)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	// The target may never have interacted with the game yet
	if _, err := b.userService.GetOrCreateUser(ctx, targetID); err != nil {
		log.WithError(err).Errorf("Error getting/creating user %d", targetID)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	user, err := b.userService.Grant(ctx, targetID, amount)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			common.RespondWithError(s, i, "Grant amount must be non-zero.")
		case errors.Is(err, service.ErrInsufficientFunds):
			common.RespondWithError(s, i, "The player does not have enough points to deduct.")
		default:
			log.WithError(err).Errorf("Error granting %d points to user %d", amount, targetID)
			common.RespondWithError(s, i, "Unable to process grant. Please try again.")
		}
		return
	}

	message := fmt.Sprintf("✅ Granted **%s points** to <@%s>. New balance: **%s points**",
		common.FormatBalance(amount), target.ID, common.FormatBalance(user.Balance))
	if err := common.RespondWithContent(s, i, message, false); err != nil {
		log.WithError(err).Error("Error responding to grant command")
	}
}
