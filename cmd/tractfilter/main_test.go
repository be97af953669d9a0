package main

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"tractfilter/pkg/config"
)

func TestRunPhantom(t *testing.T) {
	for _, inputType := range []string{"scalar", "label"} {
		for _, mode := range []string{"overlap", "endpoints"} {
			t.Run(inputType+"/"+mode, func(t *testing.T) {
				cfg := config.DefaultConfig()
				cfg.Phantom.NumFibers = 50
				cfg.Phantom.GridSize = 16
				cfg.Extraction.Mode = mode
				cfg.Extraction.InputType = inputType
				cfg.Extraction.Labels = []int{1, 2}

				params, err := cfg.ExtractionParams()
				require.NoError(t, err)
				require.NoError(t, run(context.Background(), zerolog.Nop(), cfg, params))
			})
		}
	}
}
