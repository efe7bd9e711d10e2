package validation

import (
	"strings"

	"github.com/grigta/numbering/services/numbering-service/internal/models"
)

type CreateVirtualNumberInput struct {
	Number   string               `json:"number"`
	OwnerID  string               `json:"ownerId"`
	Features []string             `json:"features,omitempty"`
	Status   *models.NumberStatus `json:"status,omitempty"`
}

func ValidateCreateVirtualNumber(in CreateVirtualNumberInput) (CreateVirtualNumberInput, error) {
	var c collector

	in.Number = strings.TrimSpace(in.Number)
	in.OwnerID = strings.TrimSpace(in.OwnerID)

	if runeLen(in.Number) < MinNumberLength {
		c.add("number", "At least 10 digits are required")
	}

	if in.OwnerID == "" {
		c.add("ownerId", "User ID is required")
	}

	if in.Features != nil {
		seen := make(map[string]struct{}, len(in.Features))
		features := make([]string, 0, len(in.Features))
		for _, f := range in.Features {
			f = strings.TrimSpace(f)
			if !models.Feature(f).Valid() {
				c.add("features", "Invalid feature: "+f)
				continue
			}
			if _, dup := seen[f]; dup {
				continue
			}
			seen[f] = struct{}{}
			features = append(features, f)
		}
		in.Features = features
	}

	if in.Status != nil && !in.Status.Valid() {
		c.add("status", "Status must be one of active, inactive, pending")
	}

	if err := c.err(); err != nil {
		return CreateVirtualNumberInput{}, err
	}
	return in, nil
}
