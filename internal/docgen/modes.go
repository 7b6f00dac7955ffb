package docgen

import (
	"fmt"
	"strings"

	"github.com/harwoodlegal/casefile-backend/pkg/models"
)

// Mode selects how a template fans out into document instances. It changes
// only the iteration and naming; field resolution is identical in every
// mode.
type Mode string

const (
	// ModeAllClients produces one document listing every client.
	ModeAllClients Mode = "all_clients"
	// ModePerClient produces one name-qualified document per client.
	ModePerClient Mode = "per_client"
	// ModePerClientPerProvider produces one document per (client, provider)
	// pair; used for records-request letters.
	ModePerClientPerProvider Mode = "per_client_per_provider"
)

// Instance is one document to generate within a batch.
type Instance struct {
	Name     string // output document name, mode-qualified
	Client   models.Client
	Provider *models.MedicalProvider
}

// Instances expands a template into its batch items for the given mode.
// Clients arrive in selection order and instances follow it.
func Instances(mode Mode, template string, clients []models.Client, providers []models.MedicalProvider) ([]Instance, error) {
	if len(clients) == 0 {
		return nil, fmt.Errorf("no clients selected for %q", template)
	}

	switch mode {
	case ModeAllClients:
		// Primary client anchors the single document.
		return []Instance{{Name: template, Client: clients[0]}}, nil

	case ModePerClient:
		out := make([]Instance, 0, len(clients))
		for _, cl := range clients {
			out = append(out, Instance{
				Name:   fmt.Sprintf("%s - %s", template, displayName(cl)),
				Client: cl,
			})
		}
		return out, nil

	case ModePerClientPerProvider:
		if len(providers) == 0 {
			return nil, fmt.Errorf("no providers on file for %q", template)
		}
		out := make([]Instance, 0, len(clients)*len(providers))
		for _, cl := range clients {
			for i := range providers {
				p := providers[i]
				out = append(out, Instance{
					Name:     fmt.Sprintf("%s - %s - %s", template, displayName(cl), p.Name),
					Client:   cl,
					Provider: &p,
				})
			}
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unknown generation mode %q", mode)
	}
}

func displayName(cl models.Client) string {
	return strings.TrimSpace(cl.FirstName + " " + cl.LastName)
}
