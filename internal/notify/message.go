package notify

import (
	"fmt"
	"strings"
	"time"

	"launchScope/internal/model"
	"launchScope/internal/tier"
)

const (
	colorChampion = 0xF1C40F
	colorHeavy    = 0xE67E22
	colorRegular  = 0x3498DB
)

func tierLabel(t tier.Tier) string {
	switch t {
	case tier.Champion:
		return "Champion"
	case tier.HeavyHitter:
		return "Heavy hitter"
	default:
		return "Creator"
	}
}

func tierColor(t tier.Tier) int {
	switch t {
	case tier.Champion:
		return colorChampion
	case tier.HeavyHitter:
		return colorHeavy
	default:
		return colorRegular
	}
}

func tokenSymbol(ev model.ClassifiedEvent) string {
	if ev.Token == nil || ev.Token.Symbol == "" {
		return "UNKNOWN"
	}
	return ev.Token.Symbol
}

func tokenName(ev model.ClassifiedEvent) string {
	if ev.Token == nil {
		return ""
	}
	return ev.Token.Name
}

func tokenAddress(ev model.ClassifiedEvent) string {
	if ev.Token == nil || ev.Token.TokenAddress == nil {
		return ""
	}
	return *ev.Token.TokenAddress
}

func creatorName(ev model.ClassifiedEvent, profile *model.CreatorProfile) string {
	if profile != nil && profile.Handle != nil && *profile.Handle != "" {
		return "@" + *profile.Handle
	}
	return ev.CreatorAddress()
}

func followers(profile *model.CreatorProfile) string {
	if profile == nil || profile.FollowerCount == nil {
		return "n/a"
	}
	return fmt.Sprintf("%d", *profile.FollowerCount)
}

func ticketPrice(profile *model.CreatorProfile) string {
	if profile == nil || profile.TicketPrice == nil {
		return "n/a"
	}
	return tier.TicketPrice(profile.TicketPrice).StringFixed(4)
}

// arenaContent renders the timeline post text.
func arenaContent(ev model.ClassifiedEvent, profile *model.CreatorProfile, t tier.Tier) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s launch: %s just deployed $%s", tierLabel(t), creatorName(ev, profile), tokenSymbol(ev))
	if name := tokenName(ev); name != "" {
		fmt.Fprintf(&b, " (%s)", name)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Followers: %s | Ticket: %s\n", followers(profile), ticketPrice(profile))
	if addr := tokenAddress(ev); addr != "" {
		fmt.Fprintf(&b, "Token: %s\n", addr)
	}
	fmt.Fprintf(&b, "Tx: %s", ev.Tx.Hash)
	return b.String()
}

// discordMessage renders the webhook embed.
func discordMessage(ev model.ClassifiedEvent, profile *model.CreatorProfile, t tier.Tier) DiscordMessage {
	title := fmt.Sprintf("New token $%s", tokenSymbol(ev))
	if name := tokenName(ev); name != "" {
		title = fmt.Sprintf("New token %s ($%s)", name, tokenSymbol(ev))
	}

	fields := []DiscordField{
		{Name: "Tier", Value: tierLabel(t), Inline: true},
		{Name: "Creator", Value: creatorName(ev, profile), Inline: true},
		{Name: "Followers", Value: followers(profile), Inline: true},
		{Name: "Ticket price", Value: ticketPrice(profile), Inline: true},
		{Name: "Wallet", Value: ev.CreatorAddress(), Inline: false},
	}
	if addr := tokenAddress(ev); addr != "" {
		fields = append(fields, DiscordField{Name: "Token", Value: addr, Inline: false})
	}
	if ev.Token != nil && ev.Token.TotalSupply != "" {
		fields = append(fields, DiscordField{Name: "Total supply", Value: ev.Token.TotalSupply, Inline: true})
	}
	fields = append(fields, DiscordField{Name: "Transaction", Value: ev.Tx.Hash, Inline: false})

	embed := DiscordEmbed{
		Title:  title,
		Color:  tierColor(t),
		Fields: fields,
	}
	if profile != nil && profile.Avatar != nil {
		embed.Thumbnail = &DiscordImage{URL: *profile.Avatar}
	}
	if !ev.Tx.BlockTimestamp.IsZero() {
		embed.Timestamp = ev.Tx.BlockTimestamp.UTC().Format(time.RFC3339)
	}
	return DiscordMessage{Username: "Launch Monitor", Embeds: []DiscordEmbed{embed}}
}
