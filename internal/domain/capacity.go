package domain

import (
	"math"
	"math/rand/v2"
	"strconv"
)

const (
	MinAvailableMemory  = 10.0
	MaxAvailableMemory  = 64.0
	MinAvailableStorage = 10.0
	MaxAvailableStorage = 500.0
)

// Capacity is the simulated resource snapshot advertised in heartbeats.
// It is sampled once per session and never mutated afterwards.
type Capacity struct {
	AvailableMemory  float64  `json:"AvailableMemory"`
	AvailableStorage string   `json:"AvailableStorage"`
	AvailableGPU     string   `json:"AvailableGPU"`
	AvailableModels  []string `json:"AvailableModels"`
}

func NewCapacity(rng *rand.Rand) Capacity {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	memory := roundTo(uniform(rng, MinAvailableMemory, MaxAvailableMemory), 2)
	storage := uniform(rng, MinAvailableStorage, MaxAvailableStorage)

	return Capacity{
		AvailableMemory:  memory,
		AvailableStorage: strconv.FormatFloat(storage, 'f', 2, 64),
		AvailableGPU:     "",
		AvailableModels:  []string{},
	}
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return rng.Float64()*(hi-lo) + lo
}

func roundTo(value float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(value*scale) / scale
}
