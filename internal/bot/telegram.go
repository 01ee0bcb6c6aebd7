package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"floatwatch/internal/domain"
	"floatwatch/internal/service"
	"floatwatch/pkg/logging"

	"github.com/sirupsen/logrus"
	tele "gopkg.in/telebot.v3"
)

const (
	snapUsage     = "Usage: /snap <item name> [fn|mw|ft|ww|bs] [normal|stattrak|souvenir]\nExample: /snap AK-47 | Redline ft stattrak"
	nameUsage     = "Usage: /name <item name> [wear] [category]"
	replyTimeout  = 60 * time.Second
	pollerTimeout = 10 * time.Second
)

// Resolver is the subset of the snapshot service the bot needs.
type Resolver interface {
	Resolve(ctx context.Context, req service.SnapshotRequest) (*domain.Snapshot, error)
	MarketName(req service.SnapshotRequest) (string, error)
}

// StartTelegramBot registers the bot commands and starts long polling in the
// background. It does nothing when token is empty.
func StartTelegramBot(token string, resolver Resolver, logger *logrus.Logger) {
	log := logging.Component(logger, "telegram")
	if token == "" {
		log.Info("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: pollerTimeout},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.WithError(err).Error("failed to create Telegram bot")
		return
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/snap", func(c tele.Context) error {
		req, err := parseRequest(c.Message().Payload)
		if err != nil {
			return c.Send(fmt.Sprintf("%v\n%s", err, snapUsage))
		}
		ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
		defer cancel()

		snap, err := resolver.Resolve(ctx, req)
		if err != nil {
			log.WithError(err).WithField("item", req.BaseName).Warn("snapshot failed")
			return c.Send(fmt.Sprintf("Error resolving %s: %v", req.BaseName, err))
		}
		return c.Send(formatSnapshot(snap))
	})

	b.Handle("/name", func(c tele.Context) error {
		req, err := parseRequest(c.Message().Payload)
		if err != nil {
			return c.Send(fmt.Sprintf("%v\n%s", err, nameUsage))
		}
		name, err := resolver.MarketName(req)
		if err != nil {
			return c.Send(err.Error())
		}
		return c.Send(name)
	})

	log.Info("Telegram bot started")
	go b.Start()
}

// parseRequest splits a command payload into an item name and optional
// trailing wear and category words. Trailing words are only consumed when
// they parse, so names ending in ordinary words stay intact.
func parseRequest(payload string) (service.SnapshotRequest, error) {
	fields := strings.Fields(payload)
	var req service.SnapshotRequest

	for len(fields) > 1 && (req.Wear == "" || req.Category == "") {
		last := fields[len(fields)-1]
		if req.Category == "" {
			if c, err := domain.ParseCategory(last); err == nil && c != "" {
				req.Category = c
				fields = fields[:len(fields)-1]
				continue
			}
		}
		if req.Wear == "" {
			if w, err := domain.ParseWear(last); err == nil && w != "" {
				req.Wear = w
				fields = fields[:len(fields)-1]
				continue
			}
		}
		break
	}

	req.BaseName = strings.Join(fields, " ")
	if req.BaseName == "" {
		return req, service.ErrEmptyName
	}
	return req, nil
}

func formatSnapshot(snap *domain.Snapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", snap.MarketHashName)
	if snap.UsedNameVariant != "" {
		fmt.Fprintf(&sb, "(via %s)\n", snap.UsedNameVariant)
	}
	fmt.Fprintf(&sb, "Source: %s\n", snap.Source)
	if snap.LowestAsk > 0 {
		fmt.Fprintf(&sb, "Lowest ask: $%.2f\n", snap.LowestAsk)
	} else {
		sb.WriteString("Lowest ask: none\n")
	}
	if snap.HighestBid != nil {
		qty := 0
		if snap.HighestBidQty != nil {
			qty = *snap.HighestBidQty
		}
		fmt.Fprintf(&sb, "Highest bid: $%.2f x%d\n", *snap.HighestBid, qty)
	} else {
		sb.WriteString("Highest bid: none\n")
	}
	fmt.Fprintf(&sb, "24h: %d sold, avg $%.2f", snap.Vol24h, snap.ASP24h)
	return sb.String()
}
