package constants

import (
	"os"
	"time"
)

func GetIndexDir() string {
	path := os.Getenv("INDEX_PATH")
	if path != "" {
		return path
	}
	return "./out"
}

func GetMediaDir() string {
	return os.Getenv("MEDIA_PATH")
}

func GetAddr() string {
	addr := os.Getenv("TAPCHORD_ADDR")
	if addr != "" {
		return addr
	}
	return ":8080"
}

func GetLogLevel() string {
	level := os.Getenv("TAPCHORD_LOG_LEVEL")
	if level != "" {
		return level
	}
	return "info"
}

// GetMetadataEndpoint is empty when no metadata table is configured.
func GetMetadataEndpoint() string {
	return os.Getenv("TAPCHORD_METADATA_ENDPOINT")
}

func GetMetadataTable() string {
	table := os.Getenv("TAPCHORD_METADATA_TABLE")
	if table != "" {
		return table
	}
	return "tapchord-metadata"
}

const NumChannels = 128

const NormalGain = 0.15

const RampTimeConstant = 15 * time.Millisecond

const SampleRate = 44100

const AllScoresFile = "allScores.dat"

const FileNumToNameFile = "fileNumToName.dat"
