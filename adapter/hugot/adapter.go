package hugot

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelineBackends"
	"github.com/knights-analytics/hugot/pipelines"
	"go.uber.org/zap"

	"github.com/RichardKnop/ragchat"
)

type modelConfig struct {
	name             string
	onnxFilePath     string
	externalDataPath string
}

type Adapter struct {
	session          *hugot.Session
	embedding        *pipelines.FeatureExtractionPipeline
	generative       *pipelines.TextGenerationPipeline
	embeddingConfig  modelConfig
	generativeConfig modelConfig
	params           ragchat.GenerationParams
	modelsDir        string
	logger           *zap.Logger
}

type Option func(*Adapter)

func WithEmbeddingModelName(name string) Option {
	return func(a *Adapter) {
		a.embeddingConfig.name = name
	}
}

func WithGenerativeModelName(name string) Option {
	return func(a *Adapter) {
		a.generativeConfig.name = name
	}
}

func WithGenerativeModelOnnxFilePath(path string) Option {
	return func(a *Adapter) {
		a.generativeConfig.onnxFilePath = path
	}
}

func WithGenerativeModelExternalDataPath(path string) Option {
	return func(a *Adapter) {
		a.generativeConfig.externalDataPath = path
	}
}

// WithGenerationParams sets the output token limit. Local generation is greedy so the
// temperature is ignored.
func WithGenerationParams(params ragchat.GenerationParams) Option {
	return func(a *Adapter) {
		a.params = params
	}
}

func WithModelsDir(path string) Option {
	return func(a *Adapter) {
		a.modelsDir = path
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

const (
	defaultModelsDir    = "/models"
	defaultOnnxFilePath = "onnx/model.onnx"
	defaultMaxTokens    = 1024
)

func New(ctx context.Context, session *hugot.Session, options ...Option) (*Adapter, error) {
	a := &Adapter{
		session:          session,
		embeddingConfig:  modelConfig{onnxFilePath: defaultOnnxFilePath},
		generativeConfig: modelConfig{onnxFilePath: defaultOnnxFilePath},
		params:           ragchat.GenerationParams{MaxTokens: defaultMaxTokens},
		modelsDir:        defaultModelsDir,
		logger:           zap.NewNop(),
	}

	for _, o := range options {
		o(a)
	}

	a.logger.Sugar().With(
		"embedding model", a.embeddingConfig.name,
		"generative model", a.generativeConfig.name,
		"max tokens", a.params.MaxTokens,
		"models dir", a.modelsDir,
	).Info("init hugot adapter")

	if err := a.init(ctx); err != nil {
		return nil, err
	}

	return a, nil
}

const adapterName = "hugot"

func (a *Adapter) Name() string {
	return adapterName
}

func (a *Adapter) init(ctx context.Context) error {
	if a.embeddingConfig.name == "" && a.generativeConfig.name == "" {
		return fmt.Errorf("either embedding model or generative model must be specified")
	}

	if a.embeddingConfig.name != "" {
		modelPath, err := a.ensureModel(a.embeddingConfig)
		if err != nil {
			return fmt.Errorf("failed to prepare embedding model: %w", err)
		}

		config := hugot.FeatureExtractionConfig{
			ModelPath: modelPath,
			Name:      pipelineName("embedding", a.embeddingConfig.name, 0),
		}

		a.embedding, err = hugot.NewPipeline(a.session, config)
		if err != nil {
			return fmt.Errorf("failed to create embedding pipeline: %w", err)
		}
	}

	if a.generativeConfig.name != "" {
		modelPath, err := a.ensureModel(a.generativeConfig)
		if err != nil {
			return fmt.Errorf("failed to prepare generative model: %w", err)
		}

		config := hugot.TextGenerationConfig{
			ModelPath:    modelPath,
			Name:         pipelineName("generation", a.generativeConfig.name, a.params.MaxTokens),
			OnnxFilename: a.generativeConfig.onnxFilePath,
			Options: []pipelineBackends.PipelineOption[*pipelines.TextGenerationPipeline]{
				pipelines.WithMaxTokens(a.params.MaxTokens),
				pipelines.WithGemmaTemplate(),
			},
		}

		a.generative, err = hugot.NewPipeline(a.session, config)
		if err != nil {
			return fmt.Errorf("failed to create generative pipeline: %w", err)
		}
	}

	return nil
}

// ensureModel returns the local path of the model, downloading it first when missing.
func (a *Adapter) ensureModel(config modelConfig) (string, error) {
	modelPath, err := checkModelExists(a.modelsDir, config.name)
	if err != nil {
		return "", err
	}
	if modelPath != "" {
		a.logger.Sugar().With("path", modelPath).Info("model already exists, skipping download")
		return modelPath, nil
	}

	a.logger.Sugar().With("model", config.name).Info("start downloading model")

	downloadOptions := hugot.NewDownloadOptions()
	downloadOptions.OnnxFilePath = config.onnxFilePath
	if config.externalDataPath != "" {
		downloadOptions.ExternalDataPath = config.externalDataPath
	}
	modelPath, err = hugot.DownloadModel(config.name, a.modelsDir, downloadOptions)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", config.name, err)
	}

	a.logger.Sugar().With("model", config.name).Info("downloaded model")

	return modelPath, nil
}

// Pipeline names must be unique within a session.
func pipelineName(kind, model string, maxTokens int) string {
	name := kind + ":" + model
	if maxTokens > 0 {
		name = fmt.Sprintf("%s:%d", name, maxTokens)
	}
	return name
}

func checkModelExists(destination, modelName string) (string, error) {
	modelP := modelName
	if strings.Contains(modelP, ":") {
		modelP = strings.Split(modelName, ":")[0]
	}
	modelPath := path.Join(destination, strings.ReplaceAll(modelP, "/", "_"))

	_, err := os.Stat(modelPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	return modelPath, nil
}
