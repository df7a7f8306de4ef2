package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Button actions carried in component custom IDs, format "plant:<action>:<id>".
const (
	buttonScopePlant = "plant"

	ButtonActionWater     = "water"
	ButtonActionHarvest   = "harvest"
	ButtonActionCultivate = "cultivate"

	// ButtonClearLog is the admin button on the activity log view.
	ButtonClearLog = "log:clear"
)

// PlantButtonID builds the custom ID for a plantation action button.
func PlantButtonID(action string, id int) string {
	return fmt.Sprintf("%s:%s:%d", buttonScopePlant, action, id)
}

// ParsePlantButtonID extracts the action and plantation ID from a
// component custom ID. ok is false for IDs outside the plant scope.
func ParsePlantButtonID(customID string) (action string, id int, ok bool) {
	parts := strings.Split(customID, ":")
	if len(parts) != 3 || parts[0] != buttonScopePlant {
		return "", 0, false
	}
	id, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, false
	}
	return parts[1], id, true
}
