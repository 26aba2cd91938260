package engine

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ResultFolder returns <root>/<strategy>/<config>/[<start>_<end>/]<data file>
// for one run. The time range folder only appears when the config restricts
// the window.
func ResultFolder(root string, strategyName string, configPath string, dataPath string, config BacktestEngineV1Config) string {
	strategyFolder := filepath.Join(root, strategyName)
	configFolder := filepath.Join(strategyFolder, trimExt(configPath))

	dataFolder := configFolder

	if config.StartTime.IsSome() || config.EndTime.IsSome() {
		startTimeStr := "all"
		endTimeStr := "all"

		if config.StartTime.IsSome() {
			startTimeStr = config.StartTime.Unwrap().Format("20060102")
		}

		if config.EndTime.IsSome() {
			endTimeStr = config.EndTime.Unwrap().Format("20060102")
		}

		dataFolder = filepath.Join(configFolder, fmt.Sprintf("%s_%s", startTimeStr, endTimeStr))
	}

	return filepath.Join(dataFolder, trimExt(dataPath))
}

func trimExt(path string) string {
	base := filepath.Base(path)

	return strings.TrimSuffix(base, filepath.Ext(base))
}
