package bedrock

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/RichardKnop/ragchat"
)

// codec encodes a prompt into a model family's InvokeModel body and extracts the completion
// from its response.
type codec struct {
	encode func(prompt string, params ragchat.GenerationParams) ([]byte, error)
	decode func(body []byte) (string, error)
}

var codecs = map[ragchat.Provider]codec{
	ragchat.ProviderBedrockAnthropic: {encode: encodeAnthropic, decode: decodeAnthropic},
	ragchat.ProviderBedrockTitan:     {encode: encodeTitan, decode: decodeTitan},
	ragchat.ProviderBedrockAI21:      {encode: encodeAI21, decode: decodeAI21},
}

type anthropicRequest struct {
	Prompt            string  `json:"prompt"`
	MaxTokensToSample int     `json:"max_tokens_to_sample"`
	Temperature       float64 `json:"temperature"`
}

type anthropicResponse struct {
	Completion string `json:"completion"`
}

const (
	humanPrompt     = "\n\nHuman: "
	assistantPrompt = "\n\nAssistant:"
)

func encodeAnthropic(prompt string, params ragchat.GenerationParams) ([]byte, error) {
	// Claude text completion models require the conversational framing.
	if !strings.HasPrefix(prompt, humanPrompt) {
		prompt = humanPrompt + prompt
	}
	if !strings.HasSuffix(prompt, assistantPrompt) {
		prompt += assistantPrompt
	}
	return json.Marshal(anthropicRequest{
		Prompt:            prompt,
		MaxTokensToSample: params.MaxTokens,
		Temperature:       params.Temperature,
	})
}

func decodeAnthropic(body []byte) (string, error) {
	var resp anthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshalling anthropic response: %w", err)
	}
	return strings.TrimSpace(resp.Completion), nil
}

type titanRequest struct {
	InputText            string                    `json:"inputText"`
	TextGenerationConfig titanTextGenerationConfig `json:"textGenerationConfig"`
}

type titanTextGenerationConfig struct {
	MaxTokenCount int     `json:"maxTokenCount"`
	Temperature   float64 `json:"temperature"`
}

type titanResponse struct {
	Results []struct {
		OutputText string `json:"outputText"`
	} `json:"results"`
}

func encodeTitan(prompt string, params ragchat.GenerationParams) ([]byte, error) {
	return json.Marshal(titanRequest{
		InputText: prompt,
		TextGenerationConfig: titanTextGenerationConfig{
			MaxTokenCount: params.MaxTokens,
			Temperature:   params.Temperature,
		},
	})
}

func decodeTitan(body []byte) (string, error) {
	var resp titanResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshalling titan response: %w", err)
	}
	if len(resp.Results) == 0 {
		return "", fmt.Errorf("titan response has no results")
	}
	return strings.TrimSpace(resp.Results[0].OutputText), nil
}

type ai21Request struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"maxTokens"`
	Temperature float64 `json:"temperature"`
}

type ai21Response struct {
	Completions []struct {
		Data struct {
			Text string `json:"text"`
		} `json:"data"`
	} `json:"completions"`
}

func encodeAI21(prompt string, params ragchat.GenerationParams) ([]byte, error) {
	return json.Marshal(ai21Request{
		Prompt:      prompt,
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
	})
}

func decodeAI21(body []byte) (string, error) {
	var resp ai21Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshalling ai21 response: %w", err)
	}
	if len(resp.Completions) == 0 {
		return "", fmt.Errorf("ai21 response has no completions")
	}
	return strings.TrimSpace(resp.Completions[0].Data.Text), nil
}
