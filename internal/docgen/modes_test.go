package docgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harwoodlegal/casefile-backend/pkg/models"
)

func TestInstances_AllClientsYieldsOne(t *testing.T) {
	clients := []models.Client{
		{FirstName: "Maria", LastName: "Santos"},
		{FirstName: "Luis", LastName: "Santos"},
	}

	got, err := Instances(ModeAllClients, "Demand Letter", clients, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Demand Letter", got[0].Name)
	assert.Equal(t, "Maria", got[0].Client.FirstName)
	assert.Nil(t, got[0].Provider)
}

func TestInstances_PerClientFollowsSelectionOrder(t *testing.T) {
	clients := []models.Client{
		{FirstName: "Luis", LastName: "Santos"},
		{FirstName: "Maria", LastName: "Santos"},
	}

	got, err := Instances(ModePerClient, "LOR", clients, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "LOR - Luis Santos", got[0].Name)
	assert.Equal(t, "LOR - Maria Santos", got[1].Name)
}

func TestInstances_PerClientPerProviderCrossProduct(t *testing.T) {
	clients := []models.Client{
		{FirstName: "Maria", LastName: "Santos"},
		{FirstName: "Luis", LastName: "Santos"},
	}
	providers := []models.MedicalProvider{
		{Name: "Harborview"},
		{Name: "Eastside PT"},
	}

	got, err := Instances(ModePerClientPerProvider, "Records Request", clients, providers)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "Records Request - Maria Santos - Harborview", got[0].Name)
	assert.Equal(t, "Records Request - Maria Santos - Eastside PT", got[1].Name)
	assert.Equal(t, "Records Request - Luis Santos - Harborview", got[2].Name)
	require.NotNil(t, got[3].Provider)
	assert.Equal(t, "Eastside PT", got[3].Provider.Name)
}

func TestInstances_ErrorCases(t *testing.T) {
	clients := []models.Client{{FirstName: "Maria", LastName: "Santos"}}

	_, err := Instances(ModePerClient, "LOR", nil, nil)
	assert.Error(t, err)

	_, err = Instances(ModePerClientPerProvider, "Records Request", clients, nil)
	assert.Error(t, err)

	_, err = Instances(Mode("bogus"), "LOR", clients, nil)
	assert.Error(t, err)
}
