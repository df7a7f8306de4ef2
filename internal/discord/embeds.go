package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/Nicolasvals/discord-bot-plantaciones/internal/domain"
)

// Embed colors.
const (
	colorGrowing  = 0x2ecc71
	colorComplete = 0x95a5a6
	colorLog      = 0x3498db
)

// buildPlantationEmbed renders the persistent status embed for one
// plantation. Deadlines use Discord's relative timestamps so the client
// keeps the countdown current between refreshes.
func buildPlantationEmbed(p domain.Plantation) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🌱 Plantación #%d", p.ID),
		Color: colorGrowing,
		Footer: &discordgo.MessageEmbedFooter{
			Text: FooterPlantaciones,
		},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Tipo", Value: kindLabel(p.Kind), Inline: true},
			{Name: "Dueño", Value: fmt.Sprintf("<@%s>", p.OwnerID), Inline: true},
		},
	}

	if p.Description != "" {
		embed.Description = p.Description
	}
	if p.ImageURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: p.ImageURL}
	}
	if p.Completed {
		embed.Color = colorComplete
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Estado", Value: "✅ Completada",
		})
		return embed
	}

	switch p.Kind {
	case domain.KindHarvest:
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{
				Name: "💧 Próximo riego", Value: deadlineLabel(p.NextWaterAt), Inline: true,
			},
			&discordgo.MessageEmbedField{
				Name: "🌾 Próxima cosecha", Value: deadlineLabel(p.NextHarvestAt), Inline: true,
			},
			&discordgo.MessageEmbedField{
				Name: "Progreso", Value: fmt.Sprintf("Riegos: %d • Cosechas: %d/%d", p.WaterCount, p.HarvestCount, domain.MaxHarvests),
			},
		)
	case domain.KindDuplicate:
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "🌿 Lista para cultivar", Value: deadlineLabel(p.ReadyAt), Inline: true,
		})
	}

	return embed
}

// buildListEmbed renders the /plantaciones overview.
func buildListEmbed(plantations []domain.Plantation) *discordgo.MessageEmbed {
	lines := make([]string, 0, len(plantations))
	for _, p := range plantations {
		var deadline string
		switch p.Kind {
		case domain.KindDuplicate:
			deadline = fmt.Sprintf("cultivar %s", deadlineLabel(p.ReadyAt))
		default:
			deadline = fmt.Sprintf("riego %s • cosecha %s",
				deadlineLabel(p.NextWaterAt), deadlineLabel(p.NextHarvestAt))
		}
		lines = append(lines, fmt.Sprintf("**#%d** %s — <@%s> — %s",
			p.ID, kindLabel(p.Kind), p.OwnerID, deadline))
	}

	return &discordgo.MessageEmbed{
		Title:       "🌱 Plantaciones activas",
		Description: strings.Join(lines, "\n"),
		Color:       colorGrowing,
		Footer: &discordgo.MessageEmbedFooter{
			Text: FooterPlantaciones,
		},
	}
}

// buildLogEmbed renders the activity log, newest entries last. Discord
// caps embed descriptions, so only the most recent entries are shown.
func buildLogEmbed(entries []domain.EventEntry) *discordgo.MessageEmbed {
	const maxEntries = 25

	start := 0
	if len(entries) > maxEntries {
		start = len(entries) - maxEntries
	}

	lines := make([]string, 0, len(entries)-start)
	for _, e := range entries[start:] {
		who := e.UserTag
		if who == "" {
			who = fmt.Sprintf("<@%s>", e.UserID)
		}
		lines = append(lines, fmt.Sprintf("<t:%d:d> <t:%d:T> — **%s** %s — %s",
			e.Timestamp.Unix(), e.Timestamp.Unix(), who, e.Action, e.Details))
	}

	return &discordgo.MessageEmbed{
		Title:       "📜 Registro de actividad",
		Description: strings.Join(lines, "\n"),
		Color:       colorLog,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%d entradas", len(entries)),
		},
	}
}

func kindLabel(kind domain.PlantationKind) string {
	switch kind {
	case domain.KindDuplicate:
		return "Duplicación"
	default:
		return "Cosecha"
	}
}

// deadlineLabel shows "Disponible" past the deadline, otherwise a
// self-updating relative timestamp.
func deadlineLabel(deadline time.Time) string {
	if !time.Now().Before(deadline) {
		return "✅ Disponible"
	}
	return fmt.Sprintf("<t:%d:R>", deadline.Unix())
}

// fmtRemaining renders a duration as HH:MM:SS, clamped at zero.
func fmtRemaining(d time.Duration) string {
	total := int(d.Seconds())
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
