/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/mikeb26/baduk-td/tournament"
)

type TdSubCommand string

const (
	TdHelpCmd      TdSubCommand = "help"
	TdListCmd      TdSubCommand = "list"
	TdPairingsCmd  TdSubCommand = "pairings"
	TdStandingsCmd TdSubCommand = "standings"
)

func broadcastOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionBoolean,
		Name:        "broadcast",
		Description: "Share with the rest of the channel instead of only to you (default is false)",
		Required:    false,
	}
}

func tournamentOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "tournament",
		Description: "Tournament name or id (as returned by list)",
		Required:    true,
	}
}

func tdCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        string(TdCmd),
		Description: "Tournament director commands; try /td help to start",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(TdHelpCmd),
				Description: "Show usage for td",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(TdListCmd),
				Description: "List the club's tournaments",
				Options:     []*discordgo.ApplicationCommandOption{broadcastOption()},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(TdPairingsCmd),
				Description: "Get the pairings of a tournament round",
				Options: []*discordgo.ApplicationCommandOption{
					tournamentOption(),
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "round",
						Description: "Round number (default is the latest round)",
						Required:    false,
					},
					broadcastOption(),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(TdStandingsCmd),
				Description: "Get current standings for a tournament",
				Options: []*discordgo.ApplicationCommandOption{
					tournamentOption(),
					broadcastOption(),
				},
			},
		},
	}
}

func (b *bot) tdCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	data := inter.ApplicationCommandData()
	hdlr := b.tdHelpCmdHandler
	if len(data.Options) > 0 {
		if h, ok := b.tdSubCmdHdlrs[TdSubCommand(data.Options[0].Name)]; ok {
			hdlr = h
		}
	}
	return hdlr(ctx, inter)
}

func newResponse() *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	}
}

// subOptions are the options given to a /td subcommand.
type subOptions struct {
	tournament string
	round      int64
	broadcast  bool
}

func parseSubOptions(inter *discordgo.Interaction) subOptions {
	var so subOptions
	data := inter.ApplicationCommandData()
	if len(data.Options) == 0 {
		return so
	}
	for _, opt := range data.Options[0].Options {
		switch opt.Name {
		case "tournament":
			so.tournament = strings.TrimSpace(opt.StringValue())
		case "round":
			so.round = opt.IntValue()
		case "broadcast":
			so.broadcast = opt.BoolValue()
		}
	}

	return so
}

//go:embed help.md
var helpText string

func (b *bot) tdHelpCmdHandler(_ context.Context,
	_ *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	resp.Data.Content = truncateContent(helpText)

	return resp
}

func (b *bot) tdListCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	so := parseSubOptions(inter)

	ts, err := b.svc.ListTournaments(ctx)
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Error listing tournaments: %v", err)
		b.log.Warnf("discordbot.list: %v", resp.Data.Content)
		return resp
	}
	if len(ts) == 0 {
		resp.Data.Content = "No tournaments found."
		return resp
	}

	var sb strings.Builder
	for _, t := range ts {
		sb.WriteString(fmt.Sprintf("- **%v** (%v, %v, %v players)",
			t.Name, t.System, t.Status, len(t.Entrants)))
		if !t.StartDate.IsZero() {
			sb.WriteString(" " + t.StartDate.Format("2006-01-02"))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\nRun /td pairings <tournament> or /td standings <tournament> for details\n")
	resp.Data.Content = truncateContent(sb.String())
	if so.broadcast {
		resp.Data.Flags = 0
	}

	return resp
}

// snapshot resolves the tournament option for a subcommand. On failure the
// response already carries the message to show.
func (b *bot) snapshot(ctx context.Context, cmd string, so subOptions,
	resp *discordgo.InteractionResponse) *tournament.Snapshot {

	if so.tournament == "" {
		resp.Data.Content = "Please provide a tournament."
		return nil
	}
	t, err := b.svc.FindTournament(ctx, so.tournament)
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Error finding tournament %q: %v",
			so.tournament, err)
		b.log.Warnf("discordbot.%v: %v", cmd, resp.Data.Content)
		return nil
	}
	snap, err := b.svc.Snapshot(ctx, t.ID)
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Error loading tournament %v: %v",
			t.Name, err)
		b.log.Warnf("discordbot.%v: %v", cmd, resp.Data.Content)
		return nil
	}

	return snap
}

// tdPairingsCmdHandler handles the /td pairings command to display a
// round's pairings
func (b *bot) tdPairingsCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	so := parseSubOptions(inter)
	snap := b.snapshot(ctx, "pairings", so, resp)
	if snap == nil {
		return resp
	}
	if len(snap.Tournament.Rounds) == 0 {
		resp.Data.Content = fmt.Sprintf("No pairings posted yet for %v.",
			snap.Tournament.Name)
		return resp
	}

	// Wrap output in code block for monospace formatting in Discord
	resp.Data.Content = fmt.Sprintf("```\n%s```", truncateContent(
		tournament.BuildPairingsOutput(snap, int(so.round))))
	if so.broadcast {
		resp.Data.Flags = 0
	}

	return resp
}

// tdStandingsCmdHandler handles the /td standings command to display current
// standings
func (b *bot) tdStandingsCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	so := parseSubOptions(inter)
	snap := b.snapshot(ctx, "standings", so, resp)
	if snap == nil {
		return resp
	}

	resp.Data.Content = fmt.Sprintf("```\n%s```", truncateContent(
		tournament.BuildStandingsOutput(snap)))
	if so.broadcast {
		resp.Data.Flags = 0
	}

	return resp
}

// https://discord.com/developers/docs/resources/channel#start-thread-in-forum-or-media-channel-forum-and-media-thread-message-params-object
// limits messages to 2k characters
func truncateContent(s string) string {
	const MsgLimit = 1988 // keep space for newlines and markdown
	runes := []rune(s)
	if len(runes) > MsgLimit {
		s = fmt.Sprintf("%v...", string(runes[:MsgLimit]))
	}
	return s
}
