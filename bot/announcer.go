package bot

import (
	"fmt"
	"time"

	"dragontiger/bot/common"
	"dragontiger/models"
	"dragontiger/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Announcer posts round lifecycle messages to the game channel. It
// implements service.RoundNotifier.
type Announcer struct {
	session   *discordgo.Session
	channelID string
}

// NewAnnouncer creates an announcer for the configured game channel.
// An empty channel ID disables announcements.
func NewAnnouncer(session *discordgo.Session, channelID string) *Announcer {
	return &Announcer{
		session:   session,
		channelID: channelID,
	}
}

var _ service.RoundNotifier = (*Announcer)(nil)

func (a *Announcer) send(message string) {
	if a.channelID == "" {
		return
	}
	if _, err := a.session.ChannelMessageSend(a.channelID, message); err != nil {
		log.WithError(err).Error("Failed to send round announcement")
	}
}

func (a *Announcer) NotifyRoundClosed(roundID int64) {
	a.send(fmt.Sprintf("🔒 Round **#%d** is closed. Revealing the cards...", roundID))
}

func (a *Announcer) NotifyRoundSettled(summary service.RoundSettledNotification) {
	label := models.Choice(summary.WinningSide).Label()
	a.send(fmt.Sprintf("🃏 Round **#%d**: %s vs %s — **%s** wins! %d winner(s) paid **%s points**.",
		summary.RoundID, summary.DragonCard, summary.TigerCard, label,
		summary.TotalWinners, common.FormatBalance(summary.TotalPaid)))
}

func (a *Announcer) NotifyRoundOpened(roundID int64, deadline time.Time) {
	a.send(fmt.Sprintf("🎲 Round **#%d** is open! Betting closes %s.",
		roundID, common.FormatDiscordTimestamp(deadline, "R")))
}
