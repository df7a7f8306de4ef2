package plantation

import "time"

// Growth intervals. Watering and harvesting run on independent clocks;
// duplication plantations ripen once and are then cultivated.
const (
	WaterInterval   = 2*time.Hour + 40*time.Minute
	HarvestInterval = 3 * time.Hour
	DuplicateReady  = 3 * time.Hour
)

// Action names used in ErrNotReady and metrics labels.
const (
	ActionWater     = "regar"
	ActionHarvest   = "cosechar"
	ActionCultivate = "cultivar"
	ActionDelete    = "borrar"
	ActionCreate    = "crear"
)

// Log messages
const (
	LogMsgPlantationCreated    = "Plantation created"
	LogMsgPlantationWatered    = "Plantation watered"
	LogMsgPlantationHarvested  = "Plantation harvested"
	LogMsgPlantationCultivated = "Plantation cultivated"
	LogMsgPlantationCompleted  = "Plantation completed"
	LogMsgPlantationDeleted    = "Plantation deleted"
)
