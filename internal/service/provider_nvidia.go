package service

import (
	"encoding/json"
	"strings"
)

// NVIDIAStreamChunkParser parses NVIDIA-hosted chunks, which add reasoning_content
// (DeepSeek thinking) next to the regular delta
type NVIDIAStreamChunkParser struct{}

// ParseChunk converts NVIDIA/DeepSeek-specific chunk to generic StreamChunk
func (p *NVIDIAStreamChunkParser) ParseChunk(data []byte) (*StreamChunk, error) {
	var raw openAIChunk
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw.toStreamChunk(true), nil
}

// IsNVIDIAProvider checks if the base URL is NVIDIA API
func IsNVIDIAProvider(baseURL string) bool {
	return strings.TrimRight(baseURL, "/") == "https://integrate.api.nvidia.com/v1"
}
