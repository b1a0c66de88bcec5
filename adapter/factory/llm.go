package factory

import (
	"context"
	"fmt"

	"github.com/RichardKnop/ragchat"
	bedrockAdapter "github.com/RichardKnop/ragchat/adapter/bedrock"
	googlegenai "github.com/RichardKnop/ragchat/adapter/google-genai"
	hugotAdapter "github.com/RichardKnop/ragchat/adapter/hugot"
	openaiAdapter "github.com/RichardKnop/ragchat/adapter/openai"
)

// BuildLLM returns a generator for the selection. Any failure is a
// *ragchat.BackendUnavailableError naming the provider.
func (f *Factory) BuildLLM(ctx context.Context, selection ragchat.ModelSelection) (ragchat.Generator, error) {
	generator, err := f.buildLLM(ctx, selection)
	if err != nil {
		return nil, ragchat.Unavailable(string(selection.Provider), err)
	}
	return generator, nil
}

func (f *Factory) buildLLM(ctx context.Context, selection ragchat.ModelSelection) (ragchat.Generator, error) {
	switch selection.Provider {
	case ragchat.ProviderBedrockAnthropic, ragchat.ProviderBedrockTitan, ragchat.ProviderBedrockAI21:
		client, err := f.bedrockClient(ctx)
		if err != nil {
			return nil, err
		}
		return bedrockAdapter.New(
			client,
			bedrockAdapter.WithGenerativeModel(selection.Provider, selection.ModelID),
			bedrockAdapter.WithGenerationParams(selection.Params),
			bedrockAdapter.WithLogger(f.logger),
		)
	case ragchat.ProviderOpenAI:
		client, err := f.openaiClient()
		if err != nil {
			return nil, err
		}
		return openaiAdapter.New(
			client,
			openaiAdapter.WithModel(selection.ModelID),
			openaiAdapter.WithGenerationParams(selection.Params),
			openaiAdapter.WithLogger(f.logger),
		), nil
	case ragchat.ProviderGoogleGenAI:
		client, err := f.genaiClient(ctx)
		if err != nil {
			return nil, err
		}
		return googlegenai.New(
			client,
			googlegenai.WithGenerativeModel(selection.ModelID),
			googlegenai.WithGenerationParams(selection.Params),
			googlegenai.WithLogger(f.logger),
		), nil
	case ragchat.ProviderHugot:
		// Loading an ONNX model is expensive, so the pipeline is kept per model and output limit.
		key := fmt.Sprintf("hugot:generation:%s:%d", selection.ModelID, selection.Params.MaxTokens)
		return cached(f, key, func() (*hugotAdapter.Adapter, error) {
			session, err := f.hugotSession()
			if err != nil {
				return nil, err
			}
			return hugotAdapter.New(ctx, session, f.hugotOptions(
				hugotAdapter.WithGenerativeModelName(selection.ModelID),
				hugotAdapter.WithGenerationParams(selection.Params),
			)...)
		})
	default:
		return nil, fmt.Errorf("unsupported provider: %q", selection.Provider)
	}
}

func (f *Factory) hugotOptions(options ...hugotAdapter.Option) []hugotAdapter.Option {
	options = append(options, hugotAdapter.WithLogger(f.logger))
	if f.cfg.Hugot.ModelsDir != "" {
		options = append(options, hugotAdapter.WithModelsDir(f.cfg.Hugot.ModelsDir))
	}
	if f.cfg.Hugot.OnnxFilePath != "" {
		options = append(options, hugotAdapter.WithGenerativeModelOnnxFilePath(f.cfg.Hugot.OnnxFilePath))
	}
	if f.cfg.Hugot.ExternalDataPath != "" {
		options = append(options, hugotAdapter.WithGenerativeModelExternalDataPath(f.cfg.Hugot.ExternalDataPath))
	}
	return options
}
