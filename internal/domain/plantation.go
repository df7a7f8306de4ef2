package domain

import "time"

// PlantationKind distinguishes the two plantation state machines.
type PlantationKind string

const (
	// KindHarvest is a plantation watered and harvested on independent timers.
	KindHarvest PlantationKind = "cosecha"
	// KindDuplicate is a seed-duplication plantation with a single ready timer.
	KindDuplicate PlantationKind = "duplicar"
)

// Phase names a deadline+alert pair within an entity.
type Phase string

const (
	PhaseWater    Phase = "water"
	PhaseHarvest  Phase = "harvest"
	PhaseReady    Phase = "ready"
	PhaseCooldown Phase = "cooldown"
)

// MaxHarvests is the harvest count at which a harvest plantation completes.
const MaxHarvests = 3

// Plantation is a timed entity tracked by the reconciliation loop.
// Kind selects which deadline fields are meaningful: harvest plantations
// use NextWaterAt/NextHarvestAt, duplicate plantations use ReadyAt.
type Plantation struct {
	ID          int            `json:"id"`
	Kind        PlantationKind `json:"kind"`
	Description string         `json:"description,omitempty"`
	ImageURL    string         `json:"image_url,omitempty"`
	OwnerID     string         `json:"owner_id"`
	CreatedAt   time.Time      `json:"created_at"`

	// EmbedChannelID hosts the pinned status embed, NotifyChannelID the alerts.
	EmbedChannelID  string     `json:"embed_channel_id"`
	NotifyChannelID string     `json:"notify_channel_id"`
	Primary         MessageRef `json:"primary,omitempty"`

	Completed bool `json:"completed"`

	// Harvest kind fields.
	NextWaterAt   time.Time  `json:"next_water_at,omitempty"`
	NextHarvestAt time.Time  `json:"next_harvest_at,omitempty"`
	WaterCount    int        `json:"water_count"`
	HarvestCount  int        `json:"harvest_count"`
	WaterAlert    AlertState `json:"water_alert"`
	HarvestAlert  AlertState `json:"harvest_alert"`

	// Duplicate kind fields.
	ReadyAt    time.Time  `json:"ready_at,omitempty"`
	ReadyAlert AlertState `json:"ready_alert"`
}

// NotifyChannel returns the channel alerts should go to, falling back to
// the embed channel when no dedicated alert channel was configured.
func (p Plantation) NotifyChannel() string {
	if p.NotifyChannelID != "" {
		return p.NotifyChannelID
	}
	return p.EmbedChannelID
}

// Alert returns the alert state for a phase.
func (p Plantation) Alert(phase Phase) AlertState {
	switch phase {
	case PhaseWater:
		return p.WaterAlert
	case PhaseHarvest:
		return p.HarvestAlert
	default:
		return p.ReadyAlert
	}
}
