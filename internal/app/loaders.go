package app

import (
	"github.com/vk/mlrcs/internal/hclplan"
	"github.com/vk/mlrcs/internal/plan"
	"github.com/vk/mlrcs/internal/tomlplan"
)

// coreLoaders returns every plan format compiled into the binary.
func coreLoaders() []plan.Loader {
	return []plan.Loader{
		hclplan.NewLoader(),
		tomlplan.NewLoader(),
	}
}
