package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsApplyWhenNoFile(t *testing.T) {
	t.Parallel()

	v := viper.New()

	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, defaultWindowDays, cfg.Analysis.WindowDays)
	assert.Equal(t, defaultPort, cfg.Server.Port)
	assert.Less(t, cfg.Analysis.KMeansMinK, cfg.Analysis.KMeansMaxK)
}

func TestLoad_RejectsInvalidPort(t *testing.T) {
	t.Parallel()

	v := viper.New()
	v.Set("server.port", 99999)

	_, err := Load(v, "")
	assert.ErrorIs(t, err, ErrInvalidPort)
}

func TestLoad_RejectsInvertedKMeansBounds(t *testing.T) {
	t.Parallel()

	v := viper.New()
	v.Set("analysis.kmeans_min_k", 8)
	v.Set("analysis.kmeans_max_k", 2)

	_, err := Load(v, "")
	assert.ErrorIs(t, err, ErrInvalidKMeansBounds)
}
