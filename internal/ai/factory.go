package ai

import "fmt"

// Settings carries the provider credentials and model names from config.
type Settings struct {
	OpenAIAPIKey    string
	OpenAIModel     string
	AnthropicAPIKey string
	AnthropicModel  string
}

// NewAnalyzer constructs the analyzer for one provider name. Called at server
// startup for every provider the configuration enables.
func NewAnalyzer(provider string, s Settings) (Analyzer, error) {
	switch provider {
	case "openai":
		if s.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("provider openai requires OPENAI_API_KEY")
		}
		return NewOpenAIAnalyzer(s.OpenAIAPIKey, s.OpenAIModel), nil
	case "anthropic":
		if s.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("provider anthropic requires ANTHROPIC_API_KEY")
		}
		return NewAnthropicAnalyzer(s.AnthropicAPIKey, s.AnthropicModel), nil
	case "local":
		return NewLocalAnalyzer(), nil
	case "mock":
		return MockAnalyzer{}, nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of openai, anthropic, local, mock", provider)
	}
}
