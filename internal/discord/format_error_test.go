package discord

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Nicolasvals/discord-bot-plantaciones/internal/domain"
	"github.com/Nicolasvals/discord-bot-plantaciones/internal/plantation"
)

func TestFormatFriendlyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "not ready includes countdown",
			err:  domain.ErrNotReady{Action: "regar", Remaining: 90 * time.Minute},
			want: "01:30:00",
		},
		{
			name: "wrapped not ready still matches",
			err:  fmt.Errorf("action failed: %w", domain.ErrNotReady{Action: "cosechar", Remaining: time.Minute}),
			want: "cosechar",
		},
		{
			name: "not found",
			err:  domain.ErrPlantationNotFound,
			want: MsgPlantationNotFound,
		},
		{
			name: "already completed",
			err:  fmt.Errorf("%w: plantation 3", domain.ErrAlreadyCompleted),
			want: MsgAlreadyCompleted,
		},
		{
			name: "forbidden",
			err:  domain.ErrForbidden,
			want: MsgForbidden,
		},
		{
			name: "invalid action",
			err:  domain.ErrInvalidAction,
			want: MsgInvalidAction,
		},
		{
			name: "unknown error stays generic",
			err:  errors.New("connection reset"),
			want: MsgGenericError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, formatFriendlyError(tt.err), tt.want)
		})
	}
}

func TestConfirmAction(t *testing.T) {
	next := time.Now().Add(3 * time.Hour)

	t.Run("harvest in progress", func(t *testing.T) {
		result := &plantation.ActionResult{
			Plantation: domain.Plantation{ID: 5, HarvestCount: 2, NextHarvestAt: next},
		}
		msg := confirmAction(domain.ButtonActionHarvest, result)
		assert.Contains(t, msg, "2/3")
		assert.Contains(t, msg, "Próxima cosecha")
	})

	t.Run("final harvest", func(t *testing.T) {
		result := &plantation.ActionResult{
			Plantation: domain.Plantation{ID: 5, HarvestCount: 3},
			Completed:  true,
		}
		msg := confirmAction(domain.ButtonActionHarvest, result)
		assert.Contains(t, msg, "¡Completada!")
	})
}
