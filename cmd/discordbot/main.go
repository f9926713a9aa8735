/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/mikeb26/baduk-td/internal"
	"github.com/mikeb26/baduk-td/metrics"
	"github.com/mikeb26/baduk-td/store"
	"github.com/mikeb26/baduk-td/tournament"
)

type TopLevelCommand string

const TdCmd TopLevelCommand = "td"

type CmdHandler func(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse

// bot answers Discord interactions out of the tournament store.
type bot struct {
	svc    *tournament.Service
	log    logrus.FieldLogger
	pubKey ed25519.PublicKey

	topLevelCmdHdlrs map[TopLevelCommand]CmdHandler
	tdSubCmdHdlrs    map[TdSubCommand]CmdHandler
}

func newBot(svc *tournament.Service, pubKey ed25519.PublicKey,
	log logrus.FieldLogger) *bot {

	b := &bot{svc: svc, log: log, pubKey: pubKey}
	b.topLevelCmdHdlrs = map[TopLevelCommand]CmdHandler{
		TdCmd: b.tdCmdHandler,
	}
	b.tdSubCmdHdlrs = map[TdSubCommand]CmdHandler{
		TdHelpCmd:      b.tdHelpCmdHandler,
		TdListCmd:      b.tdListCmdHandler,
		TdPairingsCmd:  b.tdPairingsCmdHandler,
		TdStandingsCmd: b.tdStandingsCmdHandler,
	}

	return b
}

// routes serves the interactions endpoint and the scrape endpoint.
func (b *bot) routes(gatherer prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/DiscordBot/Interaction", b.interactionHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return mux
}

func (b *bot) interactionHandler(w http.ResponseWriter, r *http.Request) {
	log := b.log.WithField("remote", r.RemoteAddr)

	if !discordgo.VerifyInteraction(r, b.pubKey) {
		log.Warn("discordbot.int: failed to verify")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.WithError(err).Warn("discordbot.int: failed to read request body")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var inter discordgo.Interaction
	if err := inter.UnmarshalJSON(body); err != nil {
		log.WithError(err).Warn("discordbot.int: failed to unmarshal interaction")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	resp := &discordgo.InteractionResponse{}
	switch inter.Type {
	case discordgo.InteractionPing:
		resp.Type = discordgo.InteractionResponsePong
	case discordgo.InteractionApplicationCommand:
		name := inter.ApplicationCommandData().Name
		hdlr, ok := b.topLevelCmdHdlrs[TopLevelCommand(name)]
		if !ok {
			resp.Type = discordgo.InteractionResponseChannelMessageWithSource
			resp.Data = &discordgo.InteractionResponseData{
				Content: fmt.Sprintf("unknown command '%v'", name),
				Flags:   discordgo.MessageFlagsEphemeral,
			}
		} else {
			resp = hdlr(r.Context(), &inter)
		}
	default:
		log.WithField("type", inter.Type).
			Warn("discordbot.int: unimplemented interaction type")
		w.WriteHeader(http.StatusNotImplemented)
		return
	}

	rawResp, err := json.Marshal(resp)
	if err != nil {
		log.WithError(err).Error("discordbot.int: failed to marshal resp")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(rawResp); err != nil {
		log.WithError(err).Warn("discordbot.int: failed to write resp")
	}
}

func registerSlashCommands(client *discordgo.Session, cfg *internal.Config,
	log logrus.FieldLogger) {

	tdCmd := tdCommand()
	if cfg.DiscordCmdID == "" {
		cmd, err := client.ApplicationCommandCreate(cfg.DiscordAppID, "", tdCmd)
		if err != nil {
			log.WithError(err).Errorf("discordbot.reg: failed to register %v",
				tdCmd.Name)
			return
		}
		log.Infof("discordbot.reg: registered %v(cmdID:%v); set DISCORD_CMD_ID",
			cmd.Name, cmd.ID)
		return
	}

	cmd, err := client.ApplicationCommandEdit(cfg.DiscordAppID, "",
		cfg.DiscordCmdID, tdCmd)
	if err != nil {
		log.WithError(err).Errorf("discordbot.reg: failed to update %v",
			tdCmd.Name)
		return
	}
	log.Infof("discordbot.reg: updated %v(cmdID:%v)", cmd.Name, cmd.ID)
}

func main() {
	ctx := context.Background()

	cfg, err := internal.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	log := internal.NewLogger(cfg.LogLevel)

	pubKeyBytes, err := hex.DecodeString(cfg.DiscordPublicKey)
	if err != nil || len(pubKeyBytes) != ed25519.PublicKeySize {
		log.WithError(err).Fatal("discordbot.init: DISCORD_PUBLIC_KEY is not a valid ed25519 key")
	}

	st, err := store.Open(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("discordbot.init: unable to open tournament store")
	}
	opts, err := tournament.ConfigOptions(cfg)
	if err != nil {
		log.WithError(err).Fatal("discordbot.init: bad rating configuration")
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	opts.Log = log
	opts.Recorder = metrics.New(reg)
	b := newBot(tournament.NewService(st, opts),
		ed25519.PublicKey(pubKeyBytes), log)

	if cfg.DiscordToken != "" && cfg.DiscordAppID != "" {
		client, err := discordgo.New("Bot " + cfg.DiscordToken)
		if err != nil {
			log.WithError(err).Fatal("discordbot.init: failed to initialize discord client")
		}
		go registerSlashCommands(client, cfg, log)
	} else {
		log.Warn("discordbot.init: no bot token or app id; skipping command registration")
	}

	log.WithField("addr", cfg.ListenAddr).Info("discordbot.main: starting server")
	if err := http.ListenAndServe(cfg.ListenAddr, b.routes(reg)); err != nil {
		log.WithError(err).Fatal("discordbot.main: serve failed")
	}
}
