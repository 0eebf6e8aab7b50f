package messaging

import (
	"math"
	"slices"
	"strings"

	"pharmawaste/models"
)

// Savings is the projected disposal cost reduction used to personalize
// outreach copy. Email and SMS share this single estimate.
type Savings struct {
	Monthly int
	Annual  int
}

// EstimateSavings projects savings from the lead's volume band, facility
// type and waste mix.
func EstimateSavings(lead *models.Lead) Savings {
	base := map[string]float64{
		"small":      150,
		"medium":     400,
		"large":      800,
		"enterprise": 2000,
	}

	monthly, ok := base[lead.VolumeRange]
	if !ok {
		monthly = 200
	}

	switch {
	case lead.FacilityType == "hospital":
		monthly *= 2
	case strings.Contains(lead.FacilityType, "pharmacy"):
		monthly *= 1.5
	}

	// Waste types are a set; each multiplier applies at most once.
	if slices.Contains(lead.WasteTypes, "controlled") {
		monthly *= 1.3
	}
	if slices.Contains(lead.WasteTypes, "hazardous") {
		monthly *= 1.2
	}

	return Savings{
		Monthly: int(math.Round(monthly)),
		Annual:  int(math.Round(monthly * 12)),
	}
}
