package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredygallego8/wayuu-spanish-translator-sub001/internal/translation"
)

func TestNewLookupCommand(t *testing.T) {
	cmd := newLookupCommand()

	assert.Equal(t, "lookup <text>", cmd.Use)
	assert.NotNil(t, cmd.RunE)

	flag := cmd.Flags().Lookup("direction")
	require.NotNil(t, flag)
	assert.Equal(t, string(translation.DirectionWayuuToSpanish), flag.DefValue)

	// Unknown direction values are rejected by the flag itself.
	assert.Error(t, cmd.Flags().Set("direction", "english-to-wayuu"))
	assert.NoError(t, cmd.Flags().Set("direction", string(translation.DirectionSpanishToWayuu)))
}

func TestNewSyncCommand(t *testing.T) {
	cmd := newSyncCommand()

	assert.Equal(t, "sync", cmd.Use)
	assert.True(t, cmd.HasSubCommands())

	reload, _, err := cmd.Find([]string{"reload"})
	require.NoError(t, err)
	assert.NotNil(t, reload.Flags().Lookup("clear-cache"))

	datasetFlag := reload.Flags().Lookup("dataset")
	require.NotNil(t, datasetFlag)
	assert.Equal(t, string(translation.DatasetDictionary), datasetFlag.DefValue)
	assert.Error(t, reload.Flags().Set("dataset", "video"))

	status, _, err := cmd.Find([]string{"status"})
	require.NoError(t, err)
	assert.NotNil(t, status.RunE)
}

func TestNewAudioCommand(t *testing.T) {
	cmd := newAudioCommand()

	assert.Equal(t, "audio", cmd.Use)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"list", "search", "download", "download-all", "stats", "clear"}, names)

	list, _, err := cmd.Find([]string{"list"})
	require.NoError(t, err)
	assert.NotNil(t, list.Flags().Lookup("page"))
	assert.NotNil(t, list.Flags().Lookup("page-size"))
}

func TestNewSourcesCommand(t *testing.T) {
	cmd := newSourcesCommand()

	assert.Equal(t, "sources", cmd.Use)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"list", "add", "update", "toggle", "remove"}, names)

	add, _, err := cmd.Find([]string{"add"})
	require.NoError(t, err)
	assert.NotNil(t, add.Flags().Lookup("dataset"))
	assert.NotNil(t, add.Flags().Lookup("kind"))

	list, _, err := cmd.Find([]string{"list"})
	require.NoError(t, err)
	assert.NotNil(t, list.Flags().Lookup("all"))
	assert.NotNil(t, list.Flags().Lookup("kind"))
}
