package config

// ModelInfo holds pricing and limits for a known model. Prices are USD per
// million tokens.
type ModelInfo struct {
	Provider         string
	InputCPM         float64
	OutputCPM        float64
	MaxContextTokens int
	MaxOutputTokens  int
}

// Model name constants.
const (
	ModelGPT4o         = "gpt-4o"
	ModelGPT4oMini     = "gpt-4o-mini"
	ModelGPT41         = "gpt-4.1"
	ModelClaudeSonnet4 = "claude-sonnet-4-5"
	ModelClaudeHaiku   = "claude-3-5-haiku-latest"
	ModelGeminiFlash   = "gemini-2.5-flash"
	ModelGeminiPro     = "gemini-2.5-pro"
)

// KnownModels is the pricing table used for cost estimates. Azure
// deployments are looked up by deployment name and usually miss.
//
//nolint:gochecknoglobals // read-only lookup table
var KnownModels = map[string]ModelInfo{
	ModelGPT4o:         {Provider: ProviderOpenAI, InputCPM: 2.50, OutputCPM: 10.00, MaxContextTokens: 128000, MaxOutputTokens: 16384},
	ModelGPT4oMini:     {Provider: ProviderOpenAI, InputCPM: 0.15, OutputCPM: 0.60, MaxContextTokens: 128000, MaxOutputTokens: 16384},
	ModelGPT41:         {Provider: ProviderOpenAI, InputCPM: 2.00, OutputCPM: 8.00, MaxContextTokens: 1047576, MaxOutputTokens: 32768},
	ModelClaudeSonnet4: {Provider: ProviderAnthropic, InputCPM: 3.00, OutputCPM: 15.00, MaxContextTokens: 200000, MaxOutputTokens: 64000},
	ModelClaudeHaiku:   {Provider: ProviderAnthropic, InputCPM: 0.80, OutputCPM: 4.00, MaxContextTokens: 200000, MaxOutputTokens: 8192},
	ModelGeminiFlash:   {Provider: ProviderGoogle, InputCPM: 0.30, OutputCPM: 2.50, MaxContextTokens: 1048576, MaxOutputTokens: 65536},
	ModelGeminiPro:     {Provider: ProviderGoogle, InputCPM: 1.25, OutputCPM: 10.00, MaxContextTokens: 1048576, MaxOutputTokens: 65536},
}

// CalculateCost estimates the USD cost of one request. Unknown models cost 0.
func CalculateCost(model string, promptTokens, completionTokens int) float64 {
	info, ok := KnownModels[model]
	if !ok {
		return 0
	}
	return (float64(promptTokens)*info.InputCPM + float64(completionTokens)*info.OutputCPM) / 1_000_000
}
